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

package morph

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/ajroetker/go-binmask/mask"
)

// paddedKernel holds the kernel rows zero-padded to whole words. Word i of
// row j covers kernel columns [8i, 8i+8); columns past the kernel width are
// zero so they mask out whatever the source load picked up there.
type paddedKernel struct {
	width, height int
	hx, hy        int
	words         int      // words per row
	rows          []uint64 // height*words, row j at rows[j*words:]
}

func newPaddedKernel(kernel *mask.Mask) *paddedKernel {
	w, h := kernel.Width(), kernel.Height()
	words := (w + mask.WordBytes - 1) / mask.WordBytes
	k := &paddedKernel{
		width:  w,
		height: h,
		hx:     w >> 1,
		hy:     h >> 1,
		words:  words,
		rows:   make([]uint64, h*words),
	}
	var buf [mask.WordBytes]byte
	data := kernel.Data()
	for j := 0; j < h; j++ {
		row := data[j*w : (j+1)*w]
		for i := 0; i < words; i++ {
			clear(buf[:])
			copy(buf[:], row[min(i*mask.WordBytes, w):])
			k.rows[j*words+i] = binary.LittleEndian.Uint64(buf[:])
		}
	}
	return k
}

// reflect returns the kernel mirrored through its centre.
func (k *paddedKernel) reflect() *paddedKernel {
	r := &paddedKernel{
		width:  k.width,
		height: k.height,
		hx:     k.hx,
		hy:     k.hy,
		words:  k.words,
		rows:   make([]uint64, len(k.rows)),
	}
	for j := 0; j < k.height; j++ {
		src := k.rows[j*k.words : (j+1)*k.words]
		dst := r.rows[(k.height-1-j)*k.words:]
		for x := 0; x < k.width; x++ {
			if src[x/mask.WordBytes]>>(8*(x%mask.WordBytes))&1 != 0 {
				rx := k.width - 1 - x
				dst[rx/mask.WordBytes] |= 1 << (8 * (rx % mask.WordBytes))
			}
		}
	}
	return r
}

// NewKernel returns a width x height structuring element with every element
// set. Both sides must be odd.
func NewKernel(width, height int) (*mask.Mask, error) {
	if width%2 == 0 || height%2 == 0 {
		return nil, fmt.Errorf("morph: kernel %dx%d has an even side: %w", width, height, mask.ErrInvalidInput)
	}
	k, err := mask.New(width, height)
	if err != nil {
		return nil, err
	}
	d := k.Data()
	for i := range d {
		d[i] = mask.One
	}
	return k, nil
}

// Reflect returns a copy of kernel mirrored through its centre. Point
// symmetric kernels are returned unchanged (as a copy).
func Reflect(kernel *mask.Mask) (*mask.Mask, error) {
	r, err := mask.Duplicate(kernel)
	if err != nil {
		return nil, fmt.Errorf("morph: reflect: %w", err)
	}
	// A half turn of a row-major buffer is a full reversal.
	slices.Reverse(r.Data())
	return r, nil
}
