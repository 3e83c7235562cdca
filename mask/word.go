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
	"encoding/binary"
	"math/bits"
)

// This file holds the word kernels shared by the rest of the package. Every
// kernel walks whole uint64 words first and finishes the remaining
// len%WordBytes elements one byte at a time.

const (
	// WordBytes is the number of pixels processed per word operation.
	WordBytes = 8

	// OnesPerByte has the value 1 in every byte lane. XOR with it negates
	// eight pixels; multiplying by it sums the byte lanes into the top byte.
	OnesPerByte uint64 = 0x0101010101010101
)

// swarBatch is the number of words whose byte lanes can be summed before the
// top-byte reduction overflows: 31 words * 8 lanes = 248 <= 255.
const swarBatch = 31

// countOnes returns the number of one-valued bytes in b.
// Selected in init according to the dispatch level.
var countOnes func(b []byte) int

func init() {
	if countOnes == nil {
		countOnes = countSWAR
	}
	if currentLevel != DispatchScalar {
		countOnes = countPOPCNT
	}
}

func loadWord(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

func storeWord(b []byte, w uint64) {
	binary.LittleEndian.PutUint64(b, w)
}

// popcountWord returns the number of one-valued bytes in a word whose lanes
// are each 0 or 1.
func popcountWord(w uint64) int {
	return int((w * OnesPerByte) >> 56)
}

// countSWAR adds up to swarBatch words lane-wise before reducing, so the
// multiply runs once per batch rather than once per word.
func countSWAR(b []byte) int {
	n := len(b)
	full := n - n%WordBytes
	count := 0
	i := 0
	for i < full {
		end := min(full, i+swarBatch*WordBytes)
		var acc uint64
		for ; i < end; i += WordBytes {
			acc += loadWord(b[i:])
		}
		count += popcountWord(acc)
	}
	for ; i < n; i++ {
		count += int(b[i])
	}
	return count
}

func countPOPCNT(b []byte) int {
	n := len(b)
	count := 0
	i := 0
	for ; i+WordBytes <= n; i += WordBytes {
		count += bits.OnesCount64(loadWord(b[i:]))
	}
	for ; i < n; i++ {
		count += int(b[i])
	}
	return count
}

func andBytes(dst, a, b []byte) {
	n := len(dst)
	i := 0
	for ; i+WordBytes <= n; i += WordBytes {
		storeWord(dst[i:], loadWord(a[i:])&loadWord(b[i:]))
	}
	for ; i < n; i++ {
		dst[i] = a[i] & b[i]
	}
}

func orBytes(dst, a, b []byte) {
	n := len(dst)
	i := 0
	for ; i+WordBytes <= n; i += WordBytes {
		storeWord(dst[i:], loadWord(a[i:])|loadWord(b[i:]))
	}
	for ; i < n; i++ {
		dst[i] = a[i] | b[i]
	}
}

func xorBytes(dst, a, b []byte) {
	n := len(dst)
	i := 0
	for ; i+WordBytes <= n; i += WordBytes {
		storeWord(dst[i:], loadWord(a[i:])^loadWord(b[i:]))
	}
	for ; i < n; i++ {
		dst[i] = a[i] ^ b[i]
	}
}

// xorPattern XORs every word of dst with pattern and every trailing byte with
// the low byte of pattern.
func xorPattern(dst []byte, pattern uint64) {
	n := len(dst)
	i := 0
	for ; i+WordBytes <= n; i += WordBytes {
		storeWord(dst[i:], loadWord(dst[i:])^pattern)
	}
	low := byte(pattern)
	for ; i < n; i++ {
		dst[i] ^= low
	}
}

// fillBytes sets every element of dst to v by doubling the filled prefix,
// which keeps the work inside the runtime's memmove.
func fillBytes(dst []byte, v byte) {
	if len(dst) == 0 {
		return
	}
	if v == 0 {
		clear(dst)
		return
	}
	dst[0] = v
	for filled := 1; filled < len(dst); filled *= 2 {
		copy(dst[filled:], dst[:filled])
	}
}
