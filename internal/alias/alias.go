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

// Package alias reports how two byte buffers share memory. Mask operations
// use it to pick same-buffer fast paths and to reject overlaps they cannot
// process correctly.
package alias

import "unsafe"

// AnyOverlap reports whether x and y share any element of memory.
func AnyOverlap(x, y []byte) bool {
	return len(x) > 0 && len(y) > 0 &&
		uintptr(unsafe.Pointer(&x[0])) <= uintptr(unsafe.Pointer(&y[len(y)-1])) &&
		uintptr(unsafe.Pointer(&y[0])) <= uintptr(unsafe.Pointer(&x[len(x)-1]))
}

// Same reports whether x and y are exactly the same region of memory.
func Same(x, y []byte) bool {
	return len(x) > 0 && len(x) == len(y) && &x[0] == &y[0]
}

// InexactOverlap reports whether x and y share memory at any non-corresponding
// index, i.e. they overlap without being the same region.
func InexactOverlap(x, y []byte) bool {
	return AnyOverlap(x, y) && !Same(x, y)
}

// Offset returns the signed distance in bytes from the start of x to the
// start of y. Only meaningful when both are non-empty and AnyOverlap(x, y).
func Offset(x, y []byte) int {
	return int(uintptr(unsafe.Pointer(&y[0])) - uintptr(unsafe.Pointer(&x[0])))
}
