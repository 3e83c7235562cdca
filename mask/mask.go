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

package mask

import (
	"bytes"
	"fmt"
	"strings"
)

// Pixel values.
const (
	Zero byte = 0
	One  byte = 1
)

// Mask is a dense binary image with one byte per pixel.
// Pixel (x, y), 1-based with the origin at the lower left, is stored at
// data[(x-1)+(y-1)*width].
//
// A nil *Mask is the null mask. Methods that can fail report ErrNullInput
// for it; accessors such as Width return zero.
type Mask struct {
	data   []byte
	width  int
	height int
}

// New creates a zero-filled mask of the given size.
// Both dimensions must be positive.
func New(width, height int) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("mask: new %dx%d: %w", width, height, ErrInvalidInput)
	}
	return newMask(width, height), nil
}

// newMask allocates without validation.
func newMask(width, height int) *Mask {
	return &Mask{
		data:   make([]byte, width*height),
		width:  width,
		height: height,
	}
}

// Wrap creates a mask around data without copying it. The mask takes
// ownership: the caller must not modify data except through the mask.
// data must hold exactly width*height bytes, each 0 or 1; the contents are
// not scanned.
func Wrap(width, height int, data []byte) (*Mask, error) {
	if data == nil {
		return nil, fmt.Errorf("mask: wrap: %w", ErrNullInput)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("mask: wrap %dx%d: %w", width, height, ErrInvalidInput)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("mask: wrap %dx%d over %d bytes: %w",
			width, height, len(data), ErrInvalidInput)
	}
	return &Mask{data: data, width: width, height: height}, nil
}

// Duplicate returns a deep copy of m.
func Duplicate(m *Mask) (*Mask, error) {
	if m == nil {
		return nil, fmt.Errorf("mask: duplicate: %w", ErrNullInput)
	}
	return m.Clone(), nil
}

// Clone returns a deep copy of m, or nil for a nil mask.
func (m *Mask) Clone() *Mask {
	if m == nil {
		return nil
	}
	c := &Mask{
		data:   make([]byte, len(m.data)),
		width:  m.width,
		height: m.height,
	}
	copy(c.data, m.data)
	return c
}

// Unwrap detaches and returns the pixel buffer. The mask is left empty
// (0x0) and must not be used further. Unwrap of a nil mask returns nil.
func (m *Mask) Unwrap() []byte {
	if m == nil {
		return nil
	}
	data := m.data
	m.data = nil
	m.width = 0
	m.height = 0
	return data
}

// Width returns the number of columns.
func (m *Mask) Width() int {
	if m == nil {
		return 0
	}
	return m.width
}

// Height returns the number of rows.
func (m *Mask) Height() int {
	if m == nil {
		return 0
	}
	return m.height
}

// Data returns the pixel buffer. Row y (1-based) is
// Data()[(y-1)*Width() : y*Width()].
func (m *Mask) Data() []byte {
	if m == nil {
		return nil
	}
	return m.data
}

// Row returns the pixels of row y (1-based), or nil if y is out of range.
func (m *Mask) Row(y int) []byte {
	if m == nil || y < 1 || y > m.height {
		return nil
	}
	return m.data[(y-1)*m.width : y*m.width]
}

// SameSize reports whether a and b have the same dimensions.
func SameSize(a, b *Mask) bool {
	return a.Width() == b.Width() && a.Height() == b.Height()
}

// Get returns the value of pixel (x, y).
func (m *Mask) Get(x, y int) (byte, error) {
	if m == nil {
		return 0, fmt.Errorf("mask: get: %w", ErrNullInput)
	}
	if x < 1 || x > m.width || y < 1 || y > m.height {
		return 0, fmt.Errorf("mask: get (%d,%d) of %dx%d: %w",
			x, y, m.width, m.height, ErrInvalidInput)
	}
	return m.data[(x-1)+(y-1)*m.width], nil
}

// Set sets pixel (x, y) to v, which must be Zero or One.
func (m *Mask) Set(x, y int, v byte) error {
	if m == nil {
		return fmt.Errorf("mask: set: %w", ErrNullInput)
	}
	if x < 1 || x > m.width || y < 1 || y > m.height {
		return fmt.Errorf("mask: set (%d,%d) of %dx%d: %w",
			x, y, m.width, m.height, ErrInvalidInput)
	}
	if v != Zero && v != One {
		return fmt.Errorf("mask: set value %d: %w", v, ErrInvalidInput)
	}
	m.data[(x-1)+(y-1)*m.width] = v
	return nil
}

// Fill sets every pixel to v, which must be Zero or One.
func (m *Mask) Fill(v byte) error {
	if m == nil {
		return fmt.Errorf("mask: fill: %w", ErrNullInput)
	}
	if v != Zero && v != One {
		return fmt.Errorf("mask: fill value %d: %w", v, ErrInvalidInput)
	}
	fillBytes(m.data, v)
	return nil
}

// Equal reports whether a and b have the same size and pixels.
// Two nil masks are equal.
func Equal(a, b *Mask) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.width == b.width && a.height == b.height && bytes.Equal(a.data, b.data)
}

// String renders the mask with the top row first, '1' for set pixels and
// '.' for clear ones. Intended for tests and debugging.
func (m *Mask) String() string {
	if m == nil {
		return "<nil>"
	}
	var sb strings.Builder
	sb.Grow((m.width + 1) * m.height)
	for y := m.height - 1; y >= 0; y-- {
		for _, v := range m.data[y*m.width : (y+1)*m.width] {
			if v != 0 {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('.')
			}
		}
		if y > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Parse builds a mask from the format produced by String: one line per row,
// top row first, with '1' for set pixels and '.' or '0' for clear ones.
// Blank lines and surrounding spaces are ignored.
func Parse(s string) (*Mask, error) {
	var rows []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("mask: parse: no rows: %w", ErrInvalidInput)
	}
	width := len(rows[0])
	m := newMask(width, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("mask: parse: row %d has %d columns, want %d: %w",
				i+1, len(row), width, ErrInvalidInput)
		}
		dst := m.data[(len(rows)-1-i)*width:]
		for x := 0; x < width; x++ {
			switch row[x] {
			case '1':
				dst[x] = One
			case '.', '0':
			default:
				return nil, fmt.Errorf("mask: parse: unexpected %q: %w", row[x], ErrInvalidInput)
			}
		}
	}
	return m, nil
}
