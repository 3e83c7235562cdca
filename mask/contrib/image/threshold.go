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

package image

import (
	"fmt"

	"github.com/ajroetker/go-binmask/mask"
)

// ThresholdMask sets every pixel of dst to in where the image sample v
// satisfies lo < v < hi and the pixel is not flagged bad, and to the other
// mask value everywhere else. Both bounds are exclusive.
func ThresholdMask[T Pixel](dst *mask.Mask, img *Image[T], lo, hi float64, in byte) error {
	if dst == nil || img == nil {
		return fmt.Errorf("image: threshold: %w", mask.ErrNullInput)
	}
	if t := img.Type(); t == TypeOther {
		return fmt.Errorf("image: threshold: %T samples: %w", *new(T), mask.ErrUnsupportedMode)
	}
	if in != mask.Zero && in != mask.One {
		return fmt.Errorf("image: threshold: in value %d: %w", in, mask.ErrIllegalInput)
	}
	if dst.Width() != img.width || dst.Height() != img.height {
		return fmt.Errorf("image: threshold: mask %dx%d for %dx%d image: %w",
			dst.Width(), dst.Height(), img.width, img.height, mask.ErrIncompatibleInput)
	}

	out := in ^ mask.One
	d := dst.Data()
	var bad []byte
	if img.bpm != nil {
		bad = img.bpm.Data()
	}
	for y := 0; y < img.height; y++ {
		row := img.RowSlice(y)
		drow := d[y*img.width : (y+1)*img.width]
		for x, s := range row {
			v := float64(s)
			if lo < v && v < hi {
				drow[x] = in
			} else {
				drow[x] = out
			}
		}
		if bad != nil {
			brow := bad[y*img.width : (y+1)*img.width]
			for x, b := range brow {
				if b != 0 {
					drow[x] = out
				}
			}
		}
	}
	return nil
}

// NewThresholdMask allocates a mask of the image size and fills it with
// ThresholdMask.
func NewThresholdMask[T Pixel](img *Image[T], lo, hi float64, in byte) (*mask.Mask, error) {
	if img == nil {
		return nil, fmt.Errorf("image: threshold: %w", mask.ErrNullInput)
	}
	dst, err := mask.New(img.width, img.height)
	if err != nil {
		return nil, fmt.Errorf("image: threshold: %w", err)
	}
	if err := ThresholdMask(dst, img, lo, hi, in); err != nil {
		return nil, err
	}
	return dst, nil
}
