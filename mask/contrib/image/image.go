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

// Package image provides the numeric images that masks are built from.
//
// Image[T] stores one sample per pixel in rows padded to a whole number of
// 8-element groups, so row kernels can process full groups without a tail.
// Row 0 is the bottom row and corresponds to mask row 1. An image may carry a
// bad pixel map, itself a mask, flagging samples that must be ignored.
//
// Example usage:
//
//	img := image.NewImage[float32](640, 480)
//	for y := 0; y < img.Height(); y++ {
//	    row := img.RowSlice(y)
//	    // fill row
//	}
//	m, err := image.NewThresholdMask(img, 0.5, 2.0, mask.One)
package image

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/ajroetker/go-binmask/mask"
)

// Pixel is the set of sample types an Image can hold.
type Pixel interface {
	constraints.Integer | constraints.Float
}

// rowAlign is the row padding granularity in elements.
const rowAlign = 8

// Image is a single-channel 2D array with padded rows and an optional bad
// pixel map.
type Image[T Pixel] struct {
	data   []T
	width  int
	height int
	stride int // elements per row (includes padding)
	bpm    *mask.Mask
}

// NewImage creates a zero-filled image. Non-positive dimensions give an
// empty 0x0 image.
func NewImage[T Pixel](width, height int) *Image[T] {
	if width <= 0 || height <= 0 {
		return &Image[T]{}
	}
	stride := (width + rowAlign - 1) / rowAlign * rowAlign
	return &Image[T]{
		data:   make([]T, stride*height),
		width:  width,
		height: height,
		stride: stride,
	}
}

// Width returns the image width in pixels.
func (img *Image[T]) Width() int {
	return img.width
}

// Height returns the image height in pixels.
func (img *Image[T]) Height() int {
	return img.height
}

// Stride returns the number of elements per row (including padding).
func (img *Image[T]) Stride() int {
	return img.stride
}

// Row returns a mutable slice for row y, including the padding elements.
func (img *Image[T]) Row(y int) []T {
	if y < 0 || y >= img.height || img.data == nil {
		return nil
	}
	start := y * img.stride
	return img.data[start : start+img.stride]
}

// RowSlice returns a mutable slice for row y limited to the image width.
func (img *Image[T]) RowSlice(y int) []T {
	if y < 0 || y >= img.height || img.data == nil {
		return nil
	}
	start := y * img.stride
	return img.data[start : start+img.width]
}

// At returns the value at position (x, y), or zero outside the image.
func (img *Image[T]) At(x, y int) T {
	if x < 0 || x >= img.width || y < 0 || y >= img.height || img.data == nil {
		var zero T
		return zero
	}
	return img.data[y*img.stride+x]
}

// Set sets the value at position (x, y). It is a no-op outside the image.
func (img *Image[T]) Set(x, y int, value T) {
	if x < 0 || x >= img.width || y < 0 || y >= img.height || img.data == nil {
		return
	}
	img.data[y*img.stride+x] = value
}

// Clone creates a deep copy of the image and its bad pixel map.
func (img *Image[T]) Clone() *Image[T] {
	if img.data == nil {
		return NewImage[T](0, 0)
	}
	clone := &Image[T]{
		data:   make([]T, len(img.data)),
		width:  img.width,
		height: img.height,
		stride: img.stride,
		bpm:    img.bpm.Clone(),
	}
	copy(clone.data, img.data)
	return clone
}

// Fill sets all pixels to value.
func (img *Image[T]) Fill(value T) {
	for i := range img.data {
		img.data[i] = value
	}
}

// Rect is a rectangular region of an image.
type Rect struct {
	X0, Y0 int // lower-left corner (inclusive)
	X1, Y1 int // upper-right corner (exclusive)
}

// Width returns the rectangle width.
func (r Rect) Width() int {
	return r.X1 - r.X0
}

// Height returns the rectangle height.
func (r Rect) Height() int {
	return r.Y1 - r.Y0
}

// IsEmpty returns true if the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Bounds returns the bounding rectangle of the image.
func (img *Image[T]) Bounds() Rect {
	return Rect{X0: 0, Y0: 0, X1: img.width, Y1: img.height}
}

// Type tags the sample type of an image.
type Type int

const (
	TypeOther  Type = iota // any sample type not listed below
	TypeDouble             // float64
	TypeFloat              // float32
	TypeInt                // int32 or int
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeDouble:
		return "double"
	case TypeFloat:
		return "float"
	case TypeInt:
		return "int"
	default:
		return "other"
	}
}

// Type reports the sample type. Only TypeDouble, TypeFloat and TypeInt
// images can be thresholded into masks.
func (img *Image[T]) Type() Type {
	var zero T
	switch any(zero).(type) {
	case float64:
		return TypeDouble
	case float32:
		return TypeFloat
	case int32, int:
		return TypeInt
	default:
		return TypeOther
	}
}

// BadPixels returns the bad pixel map, or nil if no pixel was rejected.
// The map is width x height with pixel (x, y) at mask position (x+1, y+1).
func (img *Image[T]) BadPixels() *mask.Mask {
	return img.bpm
}

// SetBadPixels replaces the bad pixel map. bpm must match the image size;
// nil clears the map. The image keeps a reference to bpm.
func (img *Image[T]) SetBadPixels(bpm *mask.Mask) error {
	if bpm != nil && (bpm.Width() != img.width || bpm.Height() != img.height) {
		return fmt.Errorf("image: bad pixel map %dx%d for %dx%d image: %w",
			bpm.Width(), bpm.Height(), img.width, img.height, mask.ErrIncompatibleInput)
	}
	img.bpm = bpm
	return nil
}

// RejectPixel flags pixel (x, y) as bad, allocating the map on first use.
func (img *Image[T]) RejectPixel(x, y int) error {
	if x < 0 || x >= img.width || y < 0 || y >= img.height {
		return fmt.Errorf("image: reject (%d,%d) of %dx%d: %w",
			x, y, img.width, img.height, mask.ErrAccessOutOfRange)
	}
	if img.bpm == nil {
		bpm, err := mask.New(img.width, img.height)
		if err != nil {
			return err
		}
		img.bpm = bpm
	}
	return img.bpm.Set(x+1, y+1, mask.One)
}
