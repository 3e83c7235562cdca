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

// Package mask provides a dense binary image (a "mask") stored one byte per
// pixel, together with the word-parallel set algebra and geometric
// transforms that operate on it.
//
// # Layout
//
// A Mask of width W and height H owns a flat buffer of W*H bytes, each
// exactly 0 or 1. Pixels are addressed FITS-style: x and y are 1-based and
// (1, 1) is the lower-left pixel, stored at offset 0. Row y occupies
// data[(y-1)*W : y*W].
//
//	m, _ := mask.New(640, 480)
//	_ = m.Set(3, 3, mask.One)
//	n := m.Count() // 1
//
// # Word-parallel processing
//
// Because every element is 0 or 1, eight pixels fit in one uint64 with a
// single meaningful bit per byte. Set algebra (And, Or, Xor, Not), counting
// and emptiness tests load whole words and fall back to bytes only for the
// last len%8 elements:
//
//   - NOT is XOR with 0x0101010101010101
//   - the number of ones in a word is (w * 0x0101010101010101) >> 56
//   - searches for the first 0 or 1 use bytes.IndexByte (memchr)
//
// # Dispatch
//
// The package detects at start-up whether the CPU has a hardware population
// count and selects the counting kernel accordingly. Set BINMASK_NO_SIMD=1 to
// force the portable SWAR kernels; sub-packages such as contrib/morph also
// honour it by disabling their specialised code paths.
//
// # Errors
//
// Failures are reported with the sentinel errors in errors.go, wrapped with
// context. Use errors.Is to classify them.
//
// # Sub-packages
//
//   - contrib/morph: erosion, dilation, opening and closing
//   - contrib/image: numeric images and threshold masks
//   - contrib/maskio: FITS persistence and image export
//   - contrib/fits: the FITS container used by maskio
//   - contrib/workerpool: persistent worker pool for batch processing
package mask
