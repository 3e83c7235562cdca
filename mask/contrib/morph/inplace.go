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
	"fmt"

	"github.com/ajroetker/go-binmask/mask"
)

// Erode erodes m in place with kernel, zeroing the border.
func Erode(m, kernel *mask.Mask) error {
	return inPlace(m, kernel, Erosion)
}

// Dilate dilates m in place with kernel, zeroing the border.
func Dilate(m, kernel *mask.Mask) error {
	return inPlace(m, kernel, Dilation)
}

// Open opens m in place with kernel, zeroing the border.
func Open(m, kernel *mask.Mask) error {
	return inPlace(m, kernel, Opening)
}

// Close closes m in place with kernel, zeroing the border.
func Close(m, kernel *mask.Mask) error {
	return inPlace(m, kernel, Closing)
}

func inPlace(m, kernel *mask.Mask, op Operation) error {
	if m == nil {
		return fmt.Errorf("morph: %s: %w", op, mask.ErrNullInput)
	}
	out, err := mask.New(m.Width(), m.Height())
	if err != nil {
		return err
	}
	if err := Filter(out, m, kernel, op, BorderZero); err != nil {
		return err
	}
	copy(m.Data(), out.Data())
	return nil
}
