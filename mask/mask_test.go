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

	"github.com/google/go-cmp/cmp"
)

// randMask returns a w x h mask whose pixels are set with probability p.
func randMask(rng *rand.Rand, w, h int, p float64) *Mask {
	m := newMask(w, h)
	for i := range m.data {
		if rng.Float64() < p {
			m.data[i] = One
		}
	}
	return m
}

func mustParse(t testing.TB, s string) *Mask {
	t.Helper()
	m, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return m
}

func TestNew(t *testing.T) {
	sizes := []struct{ w, h int }{{1, 1}, {3, 5}, {17, 9}, {640, 480}}
	for _, sz := range sizes {
		m, err := New(sz.w, sz.h)
		if err != nil {
			t.Fatalf("New(%d, %d): %v", sz.w, sz.h, err)
		}
		if m.Width() != sz.w || m.Height() != sz.h {
			t.Errorf("New(%d, %d): got %dx%d", sz.w, sz.h, m.Width(), m.Height())
		}
		if got := m.Count(); got != 0 {
			t.Errorf("New(%d, %d).Count: got %d, want 0", sz.w, sz.h, got)
		}
		if !m.IsEmpty() {
			t.Errorf("New(%d, %d).IsEmpty: got false, want true", sz.w, sz.h)
		}
	}
}

func TestNew_InvalidDimensions(t *testing.T) {
	for _, sz := range []struct{ w, h int }{{0, 1}, {1, 0}, {-3, 4}, {4, -3}} {
		if _, err := New(sz.w, sz.h); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("New(%d, %d): got %v, want ErrInvalidInput", sz.w, sz.h, err)
		}
	}
}

func TestWrap(t *testing.T) {
	data := []byte{0, 1, 1, 0, 0, 1}
	m, err := Wrap(3, 2, data)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	if got, _ := m.Get(2, 1); got != One {
		t.Errorf("Get(2, 1): got %d, want 1", got)
	}
	if got, _ := m.Get(3, 2); got != One {
		t.Errorf("Get(3, 2): got %d, want 1", got)
	}

	// Wrap does not copy.
	if err := m.Set(1, 1, One); err != nil {
		t.Fatal(err)
	}
	if data[0] != One {
		t.Error("Wrap copied the buffer")
	}

	if _, err := Wrap(3, 2, nil); !errors.Is(err, ErrNullInput) {
		t.Errorf("Wrap(nil): got %v, want ErrNullInput", err)
	}
	if _, err := Wrap(0, 2, data); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Wrap(0, 2): got %v, want ErrInvalidInput", err)
	}
	if _, err := Wrap(4, 2, data); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Wrap with short buffer: got %v, want ErrInvalidInput", err)
	}
}

func TestDuplicateAndUnwrap(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	m := randMask(rng, 13, 7, 0.5)

	d, err := Duplicate(m)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if !Equal(d, m) {
		t.Fatal("Duplicate differs from the original")
	}
	d.data[0] ^= 1
	if Equal(d, m) {
		t.Error("Duplicate shares its buffer with the original")
	}

	if _, err := Duplicate(nil); !errors.Is(err, ErrNullInput) {
		t.Errorf("Duplicate(nil): got %v, want ErrNullInput", err)
	}

	buf := m.Data()
	got := m.Unwrap()
	if &got[0] != &buf[0] {
		t.Error("Unwrap returned a different buffer")
	}
	if m.Width() != 0 || m.Height() != 0 || m.Data() != nil {
		t.Errorf("after Unwrap: got %dx%d with %d bytes, want empty", m.Width(), m.Height(), len(m.Data()))
	}

	var null *Mask
	if null.Unwrap() != nil {
		t.Error("Unwrap of nil mask should return nil")
	}
	if null.Clone() != nil {
		t.Error("Clone of nil mask should return nil")
	}
}

func TestGetSet(t *testing.T) {
	m, _ := New(4, 3)
	if err := m.Set(4, 3, One); err != nil {
		t.Fatalf("Set(4, 3): %v", err)
	}
	if m.data[len(m.data)-1] != One {
		t.Error("Set(4, 3) did not write the last element")
	}
	if err := m.Set(1, 2, One); err != nil {
		t.Fatal(err)
	}
	if m.data[4] != One {
		t.Error("Set(1, 2) did not write offset width")
	}

	tests := []struct {
		name string
		x, y int
		v    byte
	}{
		{"x too small", 0, 1, One},
		{"x too large", 5, 1, One},
		{"y too small", 1, 0, One},
		{"y too large", 1, 4, One},
		{"bad value", 1, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.Set(tt.x, tt.y, tt.v); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Set: got %v, want ErrInvalidInput", err)
			}
		})
	}
	if _, err := m.Get(5, 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Get(5, 1): got %v, want ErrInvalidInput", err)
	}

	var null *Mask
	if _, err := null.Get(1, 1); !errors.Is(err, ErrNullInput) {
		t.Errorf("nil Get: got %v, want ErrNullInput", err)
	}
	if err := null.Set(1, 1, One); !errors.Is(err, ErrNullInput) {
		t.Errorf("nil Set: got %v, want ErrNullInput", err)
	}
}

func TestFill(t *testing.T) {
	for _, n := range []int{1, 7, 8, 9, 33, 1000} {
		m := newMask(n, 1)
		if err := m.Fill(One); err != nil {
			t.Fatal(err)
		}
		if got := m.Count(); got != n {
			t.Errorf("Fill(One) on %d pixels: Count got %d, want %d", n, got, n)
		}
		if err := m.Fill(Zero); err != nil {
			t.Fatal(err)
		}
		if !m.IsEmpty() {
			t.Errorf("Fill(Zero) on %d pixels left set pixels", n)
		}
	}
	m := newMask(2, 2)
	if err := m.Fill(3); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Fill(3): got %v, want ErrInvalidInput", err)
	}
}

func TestRow(t *testing.T) {
	m := mustParse(t, `
		...
		1.1
		.1.`)
	if diff := cmp.Diff([]byte{0, 1, 0}, m.Row(1)); diff != "" {
		t.Errorf("Row(1) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte{1, 0, 1}, m.Row(2)); diff != "" {
		t.Errorf("Row(2) mismatch (-want +got):\n%s", diff)
	}
	if m.Row(0) != nil || m.Row(4) != nil {
		t.Error("out of range Row should return nil")
	}
}

func TestParseString(t *testing.T) {
	const s = "1..1\n.11.\n...."
	m := mustParse(t, s)
	if m.Width() != 4 || m.Height() != 3 {
		t.Fatalf("Parse: got %dx%d, want 4x3", m.Width(), m.Height())
	}
	// The first line is the top row.
	if got, _ := m.Get(1, 3); got != One {
		t.Errorf("Get(1, 3): got %d, want 1", got)
	}
	if got, _ := m.Get(1, 1); got != Zero {
		t.Errorf("Get(1, 1): got %d, want 0", got)
	}
	if got := m.String(); got != s {
		t.Errorf("String: got %q, want %q", got, s)
	}

	if _, err := Parse("11\n1"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ragged Parse: got %v, want ErrInvalidInput", err)
	}
	if _, err := Parse("1x"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad character Parse: got %v, want ErrInvalidInput", err)
	}
	if _, err := Parse("  \n"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty Parse: got %v, want ErrInvalidInput", err)
	}
}

func TestEqual(t *testing.T) {
	a := mustParse(t, "1.\n.1")
	b := mustParse(t, "1.\n.1")
	c := mustParse(t, "1..1")
	if !Equal(a, b) {
		t.Error("Equal(a, b): got false, want true")
	}
	if Equal(a, c) {
		t.Error("Equal with different sizes: got true, want false")
	}
	if !Equal(nil, nil) {
		t.Error("Equal(nil, nil): got false, want true")
	}
	if Equal(a, nil) {
		t.Error("Equal(a, nil): got true, want false")
	}
}

func TestErrIllegalInputIsInvalid(t *testing.T) {
	if !errors.Is(ErrIllegalInput, ErrInvalidInput) {
		t.Error("ErrIllegalInput should wrap ErrInvalidInput")
	}
}
