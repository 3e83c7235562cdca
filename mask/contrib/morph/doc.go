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

// Package morph implements binary morphology on masks: erosion, dilation,
// opening and closing with any odd-sized structuring element.
//
// Pixels are one byte each and exactly 0 or 1, so eight neighbours are tested
// with one 64-bit load. The kernel rows are zero-padded to whole words; a
// source word ANDed with a kernel word is non-zero iff a kernel element sits
// on a set source pixel. Erosion first XORs the source word with
// 0x0101010101010101 so the same test finds background pixels instead.
//
// Kernels up to 15 columns wide and 7 rows tall use specialised sweeps
// without inner branches. Larger kernels, or any kernel when BINMASK_NO_SIMD
// is set, use the general sweep. Both produce identical results.
//
// Example:
//
//	kernel, _ := morph.NewKernel(3, 3)
//	out, _ := mask.New(m.Width(), m.Height())
//	err := morph.Filter(out, m, kernel, morph.Opening, morph.BorderZero)
package morph
