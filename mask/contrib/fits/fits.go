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

// Package fits is a small FITS container for mask persistence.
//
// It reads image HDUs of any standard BITPIX, 2 or 3 axes, optionally tile
// compressed (ZIMAGE = T) with GZIP_1, RICE_1 or PLIO_1 and one tile per
// image row. It writes unsigned 8 bit 2-D images, either plain or tile
// compressed, as a new file or appended to an existing one. HCOMPRESS_1 is
// recognised but not implemented.
package fits

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ajroetker/go-binmask/mask"
)

// File is an open FITS file. The current HDU, selected with
// MoveToExtension, is the one Axes, Header and ReadBytes refer to.
//
// A File is not safe for concurrent use.
type File struct {
	path     string
	f        *os.File
	writable bool
	end      int64 // offset past the last HDU

	hdus []*hdu
	cur  int
}

// hdu is one parsed header and data unit.
type hdu struct {
	cards   []Card
	index   map[string]int // keyword to first card position
	dataOff int64
	dataLen int64
}

func newHDU(cards []Card) *hdu {
	h := &hdu{cards: cards, index: make(map[string]int, len(cards))}
	for i, c := range cards {
		if _, ok := h.index[c.Key]; !ok {
			h.index[c.Key] = i
		}
	}
	return h
}

func (h *hdu) value(key string) (any, bool) {
	i, ok := h.index[key]
	if !ok {
		return nil, false
	}
	return h.cards[i].Value, true
}

func (h *hdu) intVal(key string) (int, bool) {
	v, _ := h.value(key)
	n, ok := v.(int)
	return n, ok
}

func (h *hdu) floatVal(key string) (float64, bool) {
	v, _ := h.value(key)
	switch x := v.(type) {
	case int:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func (h *hdu) strVal(key string) (string, bool) {
	v, _ := h.value(key)
	s, ok := v.(string)
	return s, ok
}

func (h *hdu) boolVal(key string) bool {
	v, _ := h.value(key)
	b, _ := v.(bool)
	return b
}

// OpenRead opens path for reading and parses every HDU header.
func OpenRead(path string) (*File, error) {
	return open(path, os.O_RDONLY, false)
}

// Append opens an existing file for reading and for appending image
// extensions.
func Append(path string) (*File, error) {
	return open(path, os.O_RDWR, true)
}

// Create creates or truncates path. The first image written becomes the
// primary HDU.
func Create(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("fits: create: %w", mask.ErrNullInput)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("fits: create %s: %w: %w", path, mask.ErrFileIO, err)
	}
	mask.Logger().Debug("fits: created", "path", path)
	return &File{path: path, f: f, writable: true}, nil
}

func open(path string, flag int, writable bool) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("fits: open: %w", mask.ErrNullInput)
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("fits: open %s: %w: %w", path, mask.ErrFileIO, err)
	}
	ff := &File{path: path, f: f, writable: writable}
	if err := ff.scan(); err != nil {
		_ = f.Close()
		return nil, err
	}
	mask.Logger().Debug("fits: opened", "path", path, "hdus", len(ff.hdus), "writable", writable)
	return ff, nil
}

// scan parses the headers of every HDU in the file.
func (f *File) scan() error {
	st, err := f.f.Stat()
	if err != nil {
		return fmt.Errorf("fits: %s: %w: %w", f.path, mask.ErrFileIO, err)
	}
	size := st.Size()
	var off int64
	for off+BlockSize <= size {
		if len(f.hdus) > 0 {
			var magic [8]byte
			if _, err := f.f.ReadAt(magic[:], off); err != nil {
				return fmt.Errorf("fits: %s: %w: %w", f.path, mask.ErrFileIO, err)
			}
			if string(magic[:]) != "XTENSION" {
				// Trailing records that are not an extension are ignored.
				break
			}
		}
		h, next, err := f.readHeader(off)
		if err != nil {
			return err
		}
		if h.dataOff+h.dataLen > size {
			return fmt.Errorf("fits: %s: HDU %d data truncated: %w", f.path, len(f.hdus), mask.ErrBadFileFormat)
		}
		f.hdus = append(f.hdus, h)
		off = next
	}
	if len(f.hdus) == 0 {
		return fmt.Errorf("fits: %s: no primary header: %w", f.path, mask.ErrBadFileFormat)
	}
	f.end = min(off, size)
	return nil
}

// readHeader parses the header starting at off and returns the HDU and the
// offset of the next one.
func (f *File) readHeader(off int64) (*hdu, int64, error) {
	var cards []Card
	block := make([]byte, BlockSize)
	pos := off
	for {
		if _, err := f.f.ReadAt(block, pos); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, 0, fmt.Errorf("fits: %s: header without END: %w", f.path, mask.ErrBadFileFormat)
			}
			return nil, 0, fmt.Errorf("fits: %s: %w: %w", f.path, mask.ErrFileIO, err)
		}
		pos += BlockSize
		done := false
		for i := 0; i < cardsPerBlock; i++ {
			line := string(block[i*CardSize : (i+1)*CardSize])
			c := parseCard(line)
			if c.Key == "END" {
				done = true
				break
			}
			cards = append(cards, c)
		}
		if done {
			break
		}
	}

	h := newHDU(cards)
	first := "SIMPLE"
	if off > 0 {
		first = "XTENSION"
	}
	if len(cards) == 0 || cards[0].Key != first {
		return nil, 0, fmt.Errorf("fits: %s: header at %d does not start with %s: %w",
			f.path, off, first, mask.ErrBadFileFormat)
	}
	n, err := h.dataSize()
	if err != nil {
		return nil, 0, fmt.Errorf("fits: %s: %w", f.path, err)
	}
	h.dataOff = pos
	h.dataLen = n
	return h, pos + padded(n), nil
}

// dataSize returns the unpadded data unit size in bytes.
func (h *hdu) dataSize() (int64, error) {
	bitpix, ok := h.intVal("BITPIX")
	if !ok || bitpixBytes(bitpix) == 0 {
		return 0, fmt.Errorf("BITPIX %v: %w", bitpix, mask.ErrBadFileFormat)
	}
	naxis, ok := h.intVal("NAXIS")
	if !ok || naxis < 0 || naxis > 999 {
		return 0, fmt.Errorf("NAXIS %v: %w", naxis, mask.ErrBadFileFormat)
	}
	if naxis == 0 {
		return 0, nil
	}
	n := int64(1)
	for i := 1; i <= naxis; i++ {
		v, ok := h.intVal(fmt.Sprintf("NAXIS%d", i))
		if !ok || v < 0 {
			return 0, fmt.Errorf("NAXIS%d %v: %w", i, v, mask.ErrBadFileFormat)
		}
		n *= int64(v)
	}
	pcount, _ := h.intVal("PCOUNT")
	gcount, ok := h.intVal("GCOUNT")
	if !ok {
		gcount = 1
	}
	return int64(bitpixBytes(bitpix)) * int64(gcount) * (int64(pcount) + n), nil
}

func bitpixBytes(bitpix int) int {
	switch bitpix {
	case 8, 16, 32, 64:
		return bitpix / 8
	case -32, -64:
		return -bitpix / 8
	default:
		return 0
	}
}

func padded(n int64) int64 {
	return (n + BlockSize - 1) / BlockSize * BlockSize
}

// NumHDU returns the number of header and data units in the file.
func (f *File) NumHDU() int {
	return len(f.hdus)
}

// MoveToExtension selects HDU n: 0 is the primary HDU, n >= 1 the n-th
// extension.
func (f *File) MoveToExtension(n int) error {
	if n < 0 {
		return fmt.Errorf("fits: extension %d: %w", n, mask.ErrIllegalInput)
	}
	if n >= len(f.hdus) {
		return fmt.Errorf("fits: %s: extension %d of %d: %w", f.path, n, len(f.hdus)-1, mask.ErrDataNotFound)
	}
	f.cur = n
	return nil
}

func (f *File) current() (*hdu, error) {
	if f.f == nil {
		return nil, fmt.Errorf("fits: %s: %w: %w", f.path, mask.ErrFileIO, fs.ErrClosed)
	}
	if f.cur >= len(f.hdus) {
		return nil, fmt.Errorf("fits: %s: no HDU: %w", f.path, mask.ErrDataNotFound)
	}
	return f.hdus[f.cur], nil
}

// compressed reports whether h holds a tile compressed image.
func (h *hdu) compressed() bool {
	x, _ := h.strVal("XTENSION")
	return x == "BINTABLE" && h.boolVal("ZIMAGE")
}

// Axes returns the image extents of the current HDU, NAXIS1 first. For a
// tile compressed image these are the ZNAXISn values.
func (f *File) Axes() ([]int, error) {
	h, err := f.current()
	if err != nil {
		return nil, err
	}
	prefix := "NAXIS"
	if h.compressed() {
		prefix = "ZNAXIS"
	}
	naxis, ok := h.intVal(prefix)
	if !ok || naxis < 0 {
		return nil, fmt.Errorf("fits: %s: missing %s: %w", f.path, prefix, mask.ErrBadFileFormat)
	}
	axes := make([]int, naxis)
	for i := range axes {
		v, ok := h.intVal(fmt.Sprintf("%s%d", prefix, i+1))
		if !ok || v < 0 {
			return nil, fmt.Errorf("fits: %s: missing %s%d: %w", f.path, prefix, i+1, mask.ErrBadFileFormat)
		}
		axes[i] = v
	}
	return axes, nil
}

// Header returns a copy of the cards of the current HDU, without END.
func (f *File) Header() ([]Card, error) {
	h, err := f.current()
	if err != nil {
		return nil, err
	}
	return append([]Card(nil), h.cards...), nil
}

// Close releases the file. Closing twice is a no-op.
func (f *File) Close() error {
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	if err != nil {
		return fmt.Errorf("fits: close %s: %w: %w", f.path, mask.ErrFileIO, err)
	}
	return nil
}

// readAt reads len(b) bytes at off.
func (f *File) readAt(b []byte, off int64) error {
	if _, err := f.f.ReadAt(b, off); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("fits: %s: read past end: %w", f.path, mask.ErrBadFileFormat)
		}
		return fmt.Errorf("fits: %s: %w: %w", f.path, mask.ErrFileIO, err)
	}
	return nil
}
