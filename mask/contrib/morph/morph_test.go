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
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-binmask/mask"
)

func randMask(t testing.TB, rng *rand.Rand, w, h int, p float64) *mask.Mask {
	t.Helper()
	data := make([]byte, w*h)
	for i := range data {
		if rng.Float64() < p {
			data[i] = mask.One
		}
	}
	m, err := mask.Wrap(w, h, data)
	require.NoError(t, err)
	return m
}

// randKernel returns a random kernel with at least one set element.
func randKernel(t testing.TB, rng *rand.Rand, w, h int) *mask.Mask {
	t.Helper()
	k := randMask(t, rng, w, h, 0.5)
	k.Data()[rng.IntN(w*h)] = mask.One
	return k
}

func parse(t testing.TB, s string) *mask.Mask {
	t.Helper()
	m, err := mask.Parse(s)
	require.NoError(t, err)
	return m
}

func newMask(t testing.TB, w, h int) *mask.Mask {
	t.Helper()
	m, err := mask.New(w, h)
	require.NoError(t, err)
	return m
}

// reference is a direct transcription of the erosion and dilation
// definitions, one pixel and one kernel element at a time.
func reference(dst, src, kernel *mask.Mask, erode bool, border Border) {
	w, h := src.Width(), src.Height()
	kw, kh := kernel.Width(), kernel.Height()
	hx, hy := kw/2, kh/2
	s, k, d := src.Data(), kernel.Data(), dst.Data()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < hx || x >= w-hx || y < hy || y >= h-hy {
				switch border {
				case BorderZero:
					d[x+y*w] = 0
				case BorderCopy:
					d[x+y*w] = s[x+y*w]
				}
				continue
			}
			all, any := true, false
			for j := 0; j < kh; j++ {
				for i := 0; i < kw; i++ {
					if k[i+j*kw] == 0 {
						continue
					}
					if s[(x-hx+i)+(y-hy+j)*w] == 1 {
						any = true
					} else {
						all = false
					}
				}
			}
			out := any
			if erode {
				out = all
			}
			var v byte
			if out {
				v = 1
			}
			if border == BorderCrop {
				d[(x-hx)+(y-hy)*(w-2*hx)] = v
			} else {
				d[x+y*w] = v
			}
		}
	}
}

// interiorEqual compares a and b on pixels at least mx columns and my rows
// away from the edge.
func interiorEqual(t *testing.T, a, b *mask.Mask, mx, my int, msg string) {
	t.Helper()
	require.True(t, mask.SameSize(a, b), "%s: sizes differ", msg)
	w, h := a.Width(), a.Height()
	da, db := a.Data(), b.Data()
	for y := my; y < h-my; y++ {
		for x := mx; x < w-mx; x++ {
			if da[x+y*w] != db[x+y*w] {
				t.Errorf("%s: pixel (%d,%d): got %d, want %d", msg, x+1, y+1, da[x+y*w], db[x+y*w])
				return
			}
		}
	}
}

var testKernels = []struct {
	name   string
	layout string
}{
	{"1x1", "1"},
	{"3x1", "111"},
	{"1x3", "1\n1\n1"},
	{"3x3", "111\n111\n111"},
	{"cross", ".1.\n111\n.1."},
	{"asym5x3", "11...\n.111.\n...11"},
	{"corner5x5", "1....\n.....\n.....\n.....\n....."},
	{"7x7ring", "1111111\n1.....1\n1.....1\n1.....1\n1.....1\n1.....1\n1111111"},
	{"9x3", "1.......1\n.1111111.\n1.......1"},
	{"15x1", "111111111111111"},
	{"17x3", "1...............1\n........1........\n1...............1"},
	{"3x9", "1.1\n...\n.1.\n...\n.1.\n...\n.1.\n...\n1.1"},
}

func TestFilter_SinglePixel(t *testing.T) {
	src := newMask(t, 5, 5)
	require.NoError(t, src.Set(3, 3, mask.One))
	kernel, err := NewKernel(3, 3)
	require.NoError(t, err)

	eroded := newMask(t, 5, 5)
	require.NoError(t, Filter(eroded, src, kernel, Erosion, BorderZero))
	assert.True(t, eroded.IsEmpty(), "erosion should remove an isolated pixel:\n%s", eroded)

	dilated := newMask(t, 5, 5)
	require.NoError(t, Filter(dilated, src, kernel, Dilation, BorderZero))
	want := ".....\n.111.\n.111.\n.111.\n....."
	assert.Equal(t, want, dilated.String())
}

func TestFilter_RowErosion(t *testing.T) {
	src := parse(t, "..1..")
	kernel := parse(t, "111")
	dst := newMask(t, 5, 1)
	require.NoError(t, Filter(dst, src, kernel, Erosion, BorderZero))
	assert.True(t, dst.IsEmpty(), "got %s", dst)
}

func TestFilter_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	borders := []Border{BorderNop, BorderZero, BorderCopy, BorderCrop}
	for _, tk := range testKernels {
		kernel := parse(t, tk.layout)
		k := newPaddedKernel(kernel)
		for _, sz := range []struct{ w, h int }{{17, 9}, {40, 12}} {
			if kernel.Width() > sz.w || kernel.Height() > sz.h {
				continue
			}
			src := randMask(t, rng, sz.w, sz.h, 0.6)
			for _, border := range borders {
				for _, erode := range []bool{true, false} {
					name := fmt.Sprintf("%s/%dx%d/%s/erode=%v", tk.name, sz.w, sz.h, border, erode)
					dw, dh := sz.w, sz.h
					if border == BorderCrop {
						dw, dh = sz.w-2*k.hx, sz.h-2*k.hy
					}
					init := randMask(t, rng, dw, dh, 0.5)

					want := init.Clone()
					reference(want, src, kernel, erode, border)

					op := Dilation
					if erode {
						op = Erosion
					}
					got := init.Clone()
					require.NoError(t, Filter(got, src, kernel, op, border), name)
					assert.Equal(t, want.String(), got.String(), "Filter %s", name)

					general := init.Clone()
					run(general, src, k, erode, border, rowGeneral)
					assert.Equal(t, want.String(), general.String(), "general sweep %s", name)
				}
			}
		}
	}
}

func TestSweepsAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for words := 1; words <= maxLadderWords; words++ {
		for hy := 0; hy <= maxLadderHY; hy++ {
			for _, kw := range []int{8*words - 7, 8*words - 1} {
				kh := 2*hy + 1
				kernel := randKernel(t, rng, kw, kh)
				k := newPaddedKernel(kernel)
				require.Equal(t, words, k.words)
				require.Equal(t, hy, k.hy)

				src := randMask(t, rng, 37, 23, 0.5)
				for _, erode := range []bool{true, false} {
					for _, border := range []Border{BorderZero, BorderCopy, BorderCrop} {
						dw, dh := 37, 23
						if border == BorderCrop {
							dw, dh = 37-2*k.hx, 23-2*k.hy
						}
						a := newMask(t, dw, dh)
						b := newMask(t, dw, dh)
						run(a, src, k, erode, border, rowGeneral)
						run(b, src, k, erode, border, ladder[words-1][hy])
						assert.True(t, mask.Equal(a, b),
							"kernel %dx%d erode=%v border=%s:\ngeneral\n%s\nladder\n%s", kw, kh, erode, border, a, b)
					}
				}
			}
		}
	}
}

func TestSelectRow(t *testing.T) {
	big := newPaddedKernel(newMask(t, 17, 3))
	_, path := selectRow(big)
	assert.Equal(t, "general", path)

	tall := newPaddedKernel(newMask(t, 3, 9))
	_, path = selectRow(tall)
	assert.Equal(t, "general", path)

	small := newPaddedKernel(newMask(t, 3, 3))
	_, path = selectRow(small)
	if mask.HasFastPaths() {
		assert.Equal(t, "ladder/w1h1", path)
	} else {
		assert.Equal(t, "general", path)
	}
}

func TestFilter_Borders(t *testing.T) {
	src := parse(t, `
		11111
		11111
		11111
		11111`)
	kernel, _ := NewKernel(3, 3)

	nop := newMask(t, 5, 4)
	require.NoError(t, Filter(nop, src, kernel, Erosion, BorderNop))
	assert.Equal(t, ".....\n.111.\n.111.\n.....", nop.String(), "nop leaves the border as it was")

	zero := newMask(t, 5, 4)
	_ = zero.Fill(mask.One)
	require.NoError(t, Filter(zero, src, kernel, Erosion, BorderZero))
	assert.Equal(t, ".....\n.111.\n.111.\n.....", zero.String())

	copied := newMask(t, 5, 4)
	require.NoError(t, Filter(copied, src, kernel, Erosion, BorderCopy))
	assert.Equal(t, src.String(), copied.String())

	cropped := newMask(t, 3, 2)
	require.NoError(t, Filter(cropped, src, kernel, Erosion, BorderCrop))
	assert.Equal(t, "111\n111", cropped.String())
}

func TestFilter_CropAllOps(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 11))
	sizes := []struct{ w, h int }{{5, 5}, {3, 3}, {17, 9}, {40, 12}}
	kernels := []struct{ w, h int }{{3, 3}, {3, 1}, {1, 3}, {5, 3}, {17, 3}}
	for _, op := range []Operation{Erosion, Dilation, Opening, Closing} {
		for _, sz := range sizes {
			for _, ks := range kernels {
				if ks.w > sz.w || ks.h > sz.h {
					continue
				}
				name := fmt.Sprintf("%s/%dx%d/k%dx%d", op, sz.w, sz.h, ks.w, ks.h)
				src := randMask(t, rng, sz.w, sz.h, 0.6)
				kernel := randKernel(t, rng, ks.w, ks.h)
				hx, hy := ks.w/2, ks.h/2

				cropped := newMask(t, sz.w-2*hx, sz.h-2*hy)
				require.NoError(t, Filter(cropped, src, kernel, op, BorderCrop), name)

				full := newMask(t, sz.w, sz.h)
				require.NoError(t, Filter(full, src, kernel, op, BorderCopy), name)
				want, err := full.Extract(hx+1, hy+1, sz.w-hx, sz.h-hy)
				require.NoError(t, err, name)
				assert.Equal(t, want.String(), cropped.String(), name)
			}
		}
	}
}

func TestFilter_OpeningNopBorder(t *testing.T) {
	src := parse(t, `
		1111111
		1111111
		1111111
		1111111
		1111111`)
	kernel, _ := NewKernel(3, 3)
	dst := newMask(t, 7, 5)
	require.NoError(t, Filter(dst, src, kernel, Opening, BorderNop))
	// The interior of an all-ones opening is all ones; the border is left
	// untouched by the second pass.
	assert.Equal(t, ".......\n.11111.\n.11111.\n.11111.\n.......", dst.String())
}

func TestFilter_Errors(t *testing.T) {
	src := newMask(t, 6, 5)
	dst := newMask(t, 6, 5)
	k3, _ := NewKernel(3, 3)

	tests := []struct {
		name             string
		dst, src, kernel *mask.Mask
		op               Operation
		border           Border
		want             error
	}{
		{"nil dst", nil, src, k3, Erosion, BorderZero, mask.ErrNullInput},
		{"nil src", dst, nil, k3, Erosion, BorderZero, mask.ErrNullInput},
		{"nil kernel", dst, src, nil, Erosion, BorderZero, mask.ErrNullInput},
		{"even width", dst, src, newMask(t, 2, 3), Erosion, BorderZero, mask.ErrInvalidInput},
		{"even height", dst, src, newMask(t, 3, 4), Dilation, BorderZero, mask.ErrInvalidInput},
		{"empty kernel", dst, src, newMask(t, 3, 3), Erosion, BorderZero, mask.ErrDataNotFound},
		{"kernel too wide", dst, src, parse(t, "1111111"), Erosion, BorderZero, mask.ErrAccessOutOfRange},
		{"kernel too tall", dst, src, parse(t, "1\n1\n1\n1\n1\n1\n1"), Erosion, BorderZero, mask.ErrAccessOutOfRange},
		{"size mismatch", newMask(t, 6, 4), src, k3, Erosion, BorderZero, mask.ErrIncompatibleInput},
		{"crop size", dst, src, k3, Erosion, BorderCrop, mask.ErrIncompatibleInput},
		{"bad border", dst, src, k3, Erosion, Border(9), mask.ErrUnsupportedMode},
		{"bad operation", dst, src, k3, Operation(9), BorderZero, mask.ErrUnsupportedMode},
		{"erode in place", src, src, k3, Erosion, BorderZero, mask.ErrUnsupportedMode},
		{"dilate in place", src, src, k3, Dilation, BorderCopy, mask.ErrUnsupportedMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Filter(tt.dst, tt.src, tt.kernel, tt.op, tt.border)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFilter_ShiftedSource(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for _, tk := range testKernels {
		kernel := parse(t, tk.layout)
		w, h := 20, 11
		if kernel.Width() > w || kernel.Height() > h {
			continue
		}
		hy := kernel.Height() / 2
		lead := (1 + hy) * w
		for _, op := range []Operation{Erosion, Dilation} {
			for _, border := range []Border{BorderZero, BorderCopy} {
				pattern := randMask(t, rng, w, h, 0.6)
				want := newMask(t, w, h)
				require.NoError(t, Filter(want, pattern, kernel, op, border))

				buf := make([]byte, lead+w*h)
				copy(buf[lead:], pattern.Data())
				src, err := mask.Wrap(w, h, buf[lead:])
				require.NoError(t, err)
				dst, err := mask.Wrap(w, h, buf[:w*h])
				require.NoError(t, err)

				require.NoError(t, Filter(dst, src, kernel, op, border), "%s %s %s", tk.name, op, border)
				assert.Equal(t, want.String(), dst.String(), "%s %s %s", tk.name, op, border)
			}
		}
	}
}

func TestFilter_RejectedOverlaps(t *testing.T) {
	w, h := 10, 8
	k3, _ := NewKernel(3, 3)
	buf := make([]byte, 3*w*h)

	// Source starts one row too early for a 3-row kernel.
	src, _ := mask.Wrap(w, h, buf[w:w+w*h])
	dst, _ := mask.Wrap(w, h, buf[:w*h])
	assert.ErrorIs(t, Filter(dst, src, k3, Erosion, BorderZero), mask.ErrUnsupportedMode)

	// Exactly the minimal lead is accepted.
	src, _ = mask.Wrap(w, h, buf[2*w:2*w+w*h])
	assert.NoError(t, Filter(dst, src, k3, Erosion, BorderZero))

	// Source before destination.
	src, _ = mask.Wrap(w, h, buf[:w*h])
	dst, _ = mask.Wrap(w, h, buf[2*w:2*w+w*h])
	assert.ErrorIs(t, Filter(dst, src, k3, Dilation, BorderZero), mask.ErrUnsupportedMode)

	// Cropped destination inside the source buffer.
	crop, _ := mask.Wrap(w-2, h-2, buf[2*w*h:2*w*h+(w-2)*(h-2)])
	src, _ = mask.Wrap(w, h, buf[2*w*h-w:3*w*h-w])
	assert.ErrorIs(t, Filter(crop, src, k3, Erosion, BorderCrop), mask.ErrUnsupportedMode)

	// Kernel inside the destination.
	other := make([]byte, w*h)
	other[4] = mask.One
	kernel, _ := mask.Wrap(3, 3, other[:9])
	dst, _ = mask.Wrap(w, h, other)
	plain := newMask(t, w, h)
	assert.ErrorIs(t, Filter(dst, plain, kernel, Erosion, BorderZero), mask.ErrUnsupportedMode)
	assert.ErrorIs(t, Filter(dst, plain, kernel, Opening, BorderZero), mask.ErrUnsupportedMode)
}

func TestFilter_OpeningInPlace(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	kernel := parse(t, "11...\n.111.\n...11")
	for _, op := range []Operation{Opening, Closing} {
		m := randMask(t, rng, 30, 20, 0.5)
		want := newMask(t, 30, 20)
		require.NoError(t, Filter(want, m, kernel, op, BorderCopy))
		require.NoError(t, Filter(m, m, kernel, op, BorderCopy), "%s", op)
		assert.Equal(t, want.String(), m.String(), "%s", op)
	}
}

func TestFilter_OpeningMatchesComposition(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	kernel := parse(t, "11...\n.111.\n...11")
	reflected, err := Reflect(kernel)
	require.NoError(t, err)
	src := randMask(t, rng, 25, 15, 0.6)

	steps := []struct {
		op            Operation
		first, second Operation
	}{
		{Opening, Erosion, Dilation},
		{Closing, Dilation, Erosion},
	}
	for _, st := range steps {
		got := newMask(t, 25, 15)
		require.NoError(t, Filter(got, src, kernel, st.op, BorderZero))

		tmp := newMask(t, 25, 15)
		want := newMask(t, 25, 15)
		require.NoError(t, Filter(tmp, src, kernel, st.first, BorderZero))
		require.NoError(t, Filter(want, tmp, reflected, st.second, BorderZero))
		assert.Equal(t, want.String(), got.String(), "%s", st.op)
	}
}

func TestInPlaceHelpers(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	kernel := parse(t, ".1.\n111\n.1.")
	helpers := []struct {
		op Operation
		fn func(m, kernel *mask.Mask) error
	}{
		{Erosion, Erode},
		{Dilation, Dilate},
		{Opening, Open},
		{Closing, Close},
	}
	for _, hp := range helpers {
		m := randMask(t, rng, 16, 9, 0.6)
		want := newMask(t, 16, 9)
		require.NoError(t, Filter(want, m, kernel, hp.op, BorderZero))
		require.NoError(t, hp.fn(m, kernel))
		assert.Equal(t, want.String(), m.String(), "%s", hp.op)
		assert.ErrorIs(t, hp.fn(nil, kernel), mask.ErrNullInput)
	}
}

func TestKernels(t *testing.T) {
	k, err := NewKernel(5, 3)
	require.NoError(t, err)
	assert.Equal(t, 15, k.Count())
	_, err = NewKernel(4, 3)
	assert.ErrorIs(t, err, mask.ErrInvalidInput)

	asym := parse(t, "11...\n.111.\n...1.")
	r, err := Reflect(asym)
	require.NoError(t, err)
	assert.Equal(t, ".1...\n.111.\n...11", r.String())

	rr, _ := Reflect(r)
	assert.True(t, mask.Equal(rr, asym), "Reflect twice should restore the kernel")

	_, err = Reflect(nil)
	assert.ErrorIs(t, err, mask.ErrNullInput)

	full, err := NewKernel(7, 5)
	require.NoError(t, err)
	assert.Equal(t, 35, full.Count(), "got\n%s", full)

	// Reflect agrees with a half turn for non-square kernels.
	for _, layout := range []string{"1....\n..1..\n....1\n.11..\n1...1", "11.....\n..1....\n.....11"} {
		kernel := parse(t, layout)
		turned := kernel.Clone()
		require.NoError(t, turned.Turn(2))
		got, err := Reflect(kernel)
		require.NoError(t, err)
		assert.Equal(t, turned.String(), got.String())
	}

	// The padded reflection used by opening and closing matches Reflect.
	rng := rand.New(rand.NewPCG(13, 14))
	for _, sz := range []struct{ w, h int }{{3, 3}, {9, 5}, {17, 3}} {
		kernel := randKernel(t, rng, sz.w, sz.h)
		want, _ := Reflect(kernel)
		assert.Equal(t, newPaddedKernel(want).rows, newPaddedKernel(kernel).reflect().rows,
			"%dx%d", sz.w, sz.h)
	}
}

func TestPaddedKernel(t *testing.T) {
	kernel := parse(t, "1.........1\n.1........1\n..1.......1")
	k := newPaddedKernel(kernel)
	assert.Equal(t, 2, k.words)
	assert.Equal(t, 5, k.hx)
	assert.Equal(t, 1, k.hy)
	assert.Len(t, k.rows, 6)
	// Bottom row is "..1.......1": bytes 2 and 10.
	assert.Equal(t, []uint64{1 << 16, 1 << 16}, k.rows[:2])
	// Top row is "1.........1": bytes 0 and 10.
	assert.Equal(t, []uint64{1, 1 << 16}, k.rows[4:6])
}

func TestLoadWord(t *testing.T) {
	b := []byte{1, 0, 1, 0, 1, 1, 0, 0, 1, 1}
	orig := slices.Clone(b)
	assert.Equal(t, uint64(0x0000010100010001), loadWord(b, 0))
	// Loads crossing the end read zeros past it.
	assert.Equal(t, uint64(0x0000010100000101), loadWord(b, 4))
	assert.Equal(t, uint64(0x0101), loadWord(b, 8))
	assert.Equal(t, orig, b, "loadWord must not modify its input")
}
