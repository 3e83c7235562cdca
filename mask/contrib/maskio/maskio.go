// Copyright 2025 go-binmask Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package maskio saves and loads masks as single byte per pixel FITS
// images, and converts them to and from common raster formats.
package maskio

import (
	"errors"
	"fmt"

	"github.com/ajroetker/go-binmask/mask"
	"github.com/ajroetker/go-binmask/mask/contrib/fits"
)

// Reader is the read side of a structured image file.
type Reader interface {
	// MoveToExtension selects HDU n, 0 being the primary one.
	MoveToExtension(n int) error
	// Axes returns the extents of the current image, first axis first.
	Axes() ([]int, error)
	// ReadBytes reads the inclusive 1-based box lo..hi as one byte per pixel.
	ReadBytes(lo, hi []int) ([]byte, error)
	Close() error
}

// Writer is the write side of a structured image file.
type Writer interface {
	// WriteImage appends a width x height image of unsigned bytes.
	WriteImage(width, height int, data []byte, cards []fits.Card, comp fits.Compression) error
	Close() error
}

var (
	_ Reader = (*fits.File)(nil)
	_ Writer = (*fits.File)(nil)
)

// Mode selects how Save writes the file. Exactly one of ModeCreate and
// ModeExtend is required; at most one compression flag may be added, and
// only with ModeExtend.
type Mode uint

const (
	// ModeCreate creates the file, or truncates an existing one, and writes
	// the mask as the primary image.
	ModeCreate Mode = 1 << iota
	// ModeExtend appends the mask as an image extension of an existing file.
	ModeExtend
	ModeCompressGZIP
	ModeCompressRice
	ModeCompressHCompress
	ModeCompressPLIO
)

var compressions = []struct {
	mode Mode
	comp fits.Compression
}{
	{ModeCompressGZIP, fits.CompressGZIP},
	{ModeCompressRice, fits.CompressRice},
	{ModeCompressHCompress, fits.CompressHCompress},
	{ModeCompressPLIO, fits.CompressPLIO},
}

// compression validates mode and returns the compression it selects.
func (mode Mode) compression() (fits.Compression, error) {
	if mode&^(ModeCompressPLIO<<1-1) != 0 {
		return fits.CompressNone, fmt.Errorf("maskio: unknown mode bits %#x: %w", uint(mode), mask.ErrIllegalInput)
	}
	create, extend := mode&ModeCreate != 0, mode&ModeExtend != 0
	if create == extend {
		return fits.CompressNone, fmt.Errorf("maskio: mode %#x: need exactly one of create and extend: %w",
			uint(mode), mask.ErrIllegalInput)
	}
	comp := fits.CompressNone
	for _, c := range compressions {
		if mode&c.mode == 0 {
			continue
		}
		if comp != fits.CompressNone {
			return fits.CompressNone, fmt.Errorf("maskio: mode %#x: %s and %s requested: %w",
				uint(mode), comp, c.comp, mask.ErrIllegalInput)
		}
		comp = c.comp
	}
	if comp != fits.CompressNone && create {
		return fits.CompressNone, fmt.Errorf("maskio: %s compression needs extend mode: %w", comp, mask.ErrIllegalInput)
	}
	return comp, nil
}

// Save writes m to path as an unsigned 8 bit image followed by cards.
func Save(m *mask.Mask, path string, cards []fits.Card, mode Mode) (err error) {
	if m == nil || path == "" {
		return fmt.Errorf("maskio: save: %w", mask.ErrNullInput)
	}
	comp, err := mode.compression()
	if err != nil {
		return err
	}
	var f *fits.File
	if mode&ModeCreate != 0 {
		f, err = fits.Create(path)
	} else {
		f, err = fits.Append(path)
	}
	if err != nil {
		return fmt.Errorf("maskio: save: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return Encode(f, m, cards, comp)
}

// Encode writes m through w.
func Encode(w Writer, m *mask.Mask, cards []fits.Card, comp fits.Compression) error {
	if w == nil || m == nil {
		return fmt.Errorf("maskio: encode: %w", mask.ErrNullInput)
	}
	if err := w.WriteImage(m.Width(), m.Height(), m.Data(), cards, comp); err != nil {
		return fmt.Errorf("maskio: encode: %w", err)
	}
	mask.Logger().Debug("maskio: saved mask", "width", m.Width(), "height", m.Height(),
		"compression", comp, "count", m.Count())
	return nil
}
