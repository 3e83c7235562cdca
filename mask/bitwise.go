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
	"fmt"

	"github.com/ajroetker/go-binmask/internal/alias"
)

type bitwiseOp int

const (
	opAnd bitwiseOp = iota
	opOr
	opXor
)

func (op bitwiseOp) String() string {
	switch op {
	case opAnd:
		return "and"
	case opOr:
		return "or"
	default:
		return "xor"
	}
}

// And sets m to m AND other, pixel by pixel.
func (m *Mask) And(other *Mask) error {
	return bitwise(opAnd, m, m, other)
}

// Or sets m to m OR other, pixel by pixel.
func (m *Mask) Or(other *Mask) error {
	return bitwise(opOr, m, m, other)
}

// Xor sets m to m XOR other, pixel by pixel.
func (m *Mask) Xor(other *Mask) error {
	return bitwise(opXor, m, m, other)
}

// And writes a AND b into dst. dst may be a or b.
func And(dst, a, b *Mask) error {
	return bitwise(opAnd, dst, a, b)
}

// Or writes a OR b into dst. dst may be a or b.
func Or(dst, a, b *Mask) error {
	return bitwise(opOr, dst, a, b)
}

// Xor writes a XOR b into dst. dst may be a or b.
func Xor(dst, a, b *Mask) error {
	return bitwise(opXor, dst, a, b)
}

func bitwise(op bitwiseOp, dst, a, b *Mask) error {
	if dst == nil || a == nil || b == nil {
		return fmt.Errorf("mask: %s: %w", op, ErrNullInput)
	}
	if !SameSize(dst, a) || !SameSize(a, b) {
		return fmt.Errorf("mask: %s: sizes %dx%d, %dx%d and %dx%d differ: %w", op,
			dst.width, dst.height, a.width, a.height, b.width, b.height, ErrIncompatibleInput)
	}
	if alias.InexactOverlap(dst.data, a.data) || alias.InexactOverlap(dst.data, b.data) ||
		alias.InexactOverlap(a.data, b.data) {
		return fmt.Errorf("mask: %s: operands partially overlap: %w", op, ErrUnsupportedMode)
	}

	// x op x collapses to a fill or a copy.
	if alias.Same(a.data, b.data) {
		switch op {
		case opXor:
			clear(dst.data)
		default:
			if !alias.Same(dst.data, a.data) {
				copy(dst.data, a.data)
			}
		}
		return nil
	}

	switch op {
	case opAnd:
		andBytes(dst.data, a.data, b.data)
	case opOr:
		orBytes(dst.data, a.data, b.data)
	case opXor:
		xorBytes(dst.data, a.data, b.data)
	}
	return nil
}

// Not negates every pixel of m.
func (m *Mask) Not() error {
	if m == nil {
		return fmt.Errorf("mask: not: %w", ErrNullInput)
	}
	xorPattern(m.data, OnesPerByte)
	return nil
}

// XorScalar XORs every pixel of m with v, which must be Zero or One.
// XorScalar(One) is equivalent to Not.
func (m *Mask) XorScalar(v byte) error {
	if m == nil {
		return fmt.Errorf("mask: xor scalar: %w", ErrNullInput)
	}
	if v != Zero && v != One {
		return fmt.Errorf("mask: xor scalar %d: %w", v, ErrInvalidInput)
	}
	if v == Zero {
		return nil
	}
	xorPattern(m.data, OnesPerByte)
	return nil
}
