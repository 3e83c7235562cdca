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
	"errors"
	"math/rand/v2"
	"testing"
)

func TestBitwise(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	// Widths chosen to cover whole words, tails and tail-only buffers.
	for _, sz := range []struct{ w, h int }{{1, 1}, {3, 2}, {8, 1}, {13, 5}, {64, 3}} {
		a := randMask(rng, sz.w, sz.h, 0.5)
		b := randMask(rng, sz.w, sz.h, 0.5)

		ops := []struct {
			name string
			fn   func(dst, a, b *Mask) error
			ref  func(x, y byte) byte
		}{
			{"And", And, func(x, y byte) byte { return x & y }},
			{"Or", Or, func(x, y byte) byte { return x | y }},
			{"Xor", Xor, func(x, y byte) byte { return x ^ y }},
		}
		for _, op := range ops {
			dst := newMask(sz.w, sz.h)
			if err := op.fn(dst, a, b); err != nil {
				t.Fatalf("%s: %v", op.name, err)
			}
			for i := range dst.data {
				if want := op.ref(a.data[i], b.data[i]); dst.data[i] != want {
					t.Errorf("%s %dx%d [%d]: got %d, want %d", op.name, sz.w, sz.h, i, dst.data[i], want)
					break
				}
			}
		}

		// In-place methods match the three-operand form.
		want := newMask(sz.w, sz.h)
		_ = Or(want, a, b)
		got := a.Clone()
		if err := got.Or(b); err != nil {
			t.Fatal(err)
		}
		if !Equal(got, want) {
			t.Errorf("%dx%d: m.Or(b) differs from Or(dst, m, b)", sz.w, sz.h)
		}
	}
}

func TestBitwise_SelfOperand(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	a := randMask(rng, 19, 7, 0.5)
	orig := a.Clone()

	if err := a.And(a); err != nil {
		t.Fatal(err)
	}
	if !Equal(a, orig) {
		t.Error("A AND A changed A")
	}
	if err := a.Or(a); err != nil {
		t.Fatal(err)
	}
	if !Equal(a, orig) {
		t.Error("A OR A changed A")
	}

	// Same source buffer with a distinct destination takes the copy path.
	dst := newMask(19, 7)
	if err := And(dst, orig, orig); err != nil {
		t.Fatal(err)
	}
	if !Equal(dst, orig) {
		t.Error("And(dst, A, A) did not copy A")
	}

	if err := a.Xor(a); err != nil {
		t.Fatal(err)
	}
	if !a.IsEmpty() {
		t.Error("A XOR A is not empty")
	}
}

func TestBitwise_Errors(t *testing.T) {
	a := newMask(4, 4)
	b := newMask(4, 3)
	if err := a.And(nil); !errors.Is(err, ErrNullInput) {
		t.Errorf("And(nil): got %v, want ErrNullInput", err)
	}
	var null *Mask
	if err := null.Or(a); !errors.Is(err, ErrNullInput) {
		t.Errorf("nil.Or: got %v, want ErrNullInput", err)
	}
	if err := a.Xor(b); !errors.Is(err, ErrIncompatibleInput) {
		t.Errorf("Xor size mismatch: got %v, want ErrIncompatibleInput", err)
	}

	// Two masks viewing overlapping parts of one buffer.
	buf := make([]byte, 20)
	x, _ := Wrap(4, 4, buf[:16])
	y, _ := Wrap(4, 4, buf[4:20])
	if err := x.Or(y); !errors.Is(err, ErrUnsupportedMode) {
		t.Errorf("overlapping Or: got %v, want ErrUnsupportedMode", err)
	}
}

func TestNot(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	for _, n := range []int{1, 7, 8, 9, 100} {
		a := randMask(rng, n, 3, 0.5)
		orig := a.Clone()
		if err := a.Not(); err != nil {
			t.Fatal(err)
		}
		for i := range a.data {
			if a.data[i] != 1-orig.data[i] {
				t.Fatalf("Not width %d [%d]: got %d, want %d", n, i, a.data[i], 1-orig.data[i])
			}
		}
		if err := a.Not(); err != nil {
			t.Fatal(err)
		}
		if !Equal(a, orig) {
			t.Errorf("Not(Not(A)) != A for width %d", n)
		}
	}
}

func TestXorScalar(t *testing.T) {
	a := mustParse(t, "1.1.1.1.1")
	orig := a.Clone()
	if err := a.XorScalar(Zero); err != nil {
		t.Fatal(err)
	}
	if !Equal(a, orig) {
		t.Error("XorScalar(0) changed the mask")
	}
	if err := a.XorScalar(One); err != nil {
		t.Fatal(err)
	}
	if got, want := a.String(), ".1.1.1.1."; got != want {
		t.Errorf("XorScalar(1): got %q, want %q", got, want)
	}
	if err := a.XorScalar(2); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("XorScalar(2): got %v, want ErrInvalidInput", err)
	}
}
