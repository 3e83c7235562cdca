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

package maskio

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/ajroetker/go-binmask/mask"
)

// Format is a raster image format for Export.
type Format int

const (
	// FormatPNG is the default.
	FormatPNG Format = iota
	FormatTIFF
	FormatBMP
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatTIFF:
		return "tiff"
	case FormatBMP:
		return "bmp"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".bmp":
		return FormatBMP, nil
	default:
		return 0, fmt.Errorf("maskio: no raster format for %q: %w", path, mask.ErrUnsupportedMode)
	}
}

// Gray renders m as an 8 bit gray image, set pixels white. The mask origin
// is the lower-left corner, so row 1 of m becomes the last image row.
func Gray(m *mask.Mask) *image.Gray {
	w, h := m.Width(), m.Height()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 1; y <= h; y++ {
		dst := img.Pix[(h-y)*img.Stride : (h-y)*img.Stride+w]
		for x, v := range m.Row(y) {
			if v != 0 {
				dst[x] = 0xff
			}
		}
	}
	return img
}

// FromImage builds a mask from img: every pixel that is not black, or not
// fully transparent, is set.
func FromImage(img image.Image) (*mask.Mask, error) {
	if img == nil {
		return nil, fmt.Errorf("maskio: from image: %w", mask.ErrNullInput)
	}
	b := img.Bounds()
	m, err := mask.New(b.Dx(), b.Dy())
	if err != nil {
		return nil, fmt.Errorf("maskio: from image: %w", err)
	}
	h := b.Dy()
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < h; y++ {
			src := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
			dst := m.Row(h - y)
			for x, v := range src {
				if v != 0 {
					dst[x] = mask.One
				}
			}
		}
		return m, nil
	}
	for y := 0; y < h; y++ {
		dst := m.Row(h - y)
		for x := range dst {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if r|g|bl != 0 {
				dst[x] = mask.One
			}
		}
	}
	return m, nil
}

// Export encodes m to w in the given format.
func Export(w io.Writer, m *mask.Mask, format Format) error {
	if w == nil || m == nil {
		return fmt.Errorf("maskio: export: %w", mask.ErrNullInput)
	}
	img := Gray(m)
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatBMP:
		err = bmp.Encode(w, img)
	default:
		return fmt.Errorf("maskio: export: %s: %w", format, mask.ErrUnsupportedMode)
	}
	if err != nil {
		return fmt.Errorf("maskio: export %s: %w: %w", format, mask.ErrFileIO, err)
	}
	return nil
}

// Import decodes a PNG, TIFF or BMP image from r into a mask.
func Import(r io.Reader) (*mask.Mask, error) {
	if r == nil {
		return nil, fmt.Errorf("maskio: import: %w", mask.ErrNullInput)
	}
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("maskio: import: %w: %w", mask.ErrBadFileFormat, err)
	}
	mask.Logger().Debug("maskio: imported raster", "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return FromImage(img)
}

// ExportFile writes m to path in the format implied by its extension.
func ExportFile(path string, m *mask.Mask) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("maskio: export: %w: %w", mask.ErrFileIO, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("maskio: export: %w: %w", mask.ErrFileIO, cerr)
		}
	}()
	return Export(f, m, format)
}

// ImportFile reads a mask from a PNG, TIFF or BMP file.
func ImportFile(path string) (*mask.Mask, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("maskio: import: %w: %w", mask.ErrFileIO, err)
	}
	defer func() { _ = f.Close() }()
	return Import(f)
}
