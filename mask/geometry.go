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
	"slices"

	"github.com/ajroetker/go-binmask/internal/alias"
)

// Turn rotates m clockwise by k quarter turns. Any k is accepted and reduced
// modulo 4, so Turn(-1) is a counter-clockwise quarter turn. Odd k swaps the
// width and height.
func (m *Mask) Turn(k int) error {
	if m == nil {
		return fmt.Errorf("mask: turn: %w", ErrNullInput)
	}
	k %= 4
	if k < 0 {
		k += 4
	}
	w, h := m.width, m.height
	switch k {
	case 0:
	case 2:
		slices.Reverse(m.data)
	case 1:
		src := slices.Clone(m.data)
		// Destination row y' is source column w-1-y', read bottom-up.
		for yp := 0; yp < w; yp++ {
			row := m.data[yp*h : (yp+1)*h]
			col := w - 1 - yp
			for xp := range row {
				row[xp] = src[col+xp*w]
			}
		}
		m.width, m.height = h, w
	case 3:
		src := slices.Clone(m.data)
		// Destination row y' is source column y', read top-down.
		for yp := 0; yp < w; yp++ {
			row := m.data[yp*h : (yp+1)*h]
			for xp := range row {
				row[xp] = src[yp+(h-1-xp)*w]
			}
		}
		m.width, m.height = h, w
	}
	return nil
}

// FlipAxis selects the mirror axis of Flip. The values follow the axis angle
// in multiples of 45 degrees.
type FlipAxis int

const (
	// FlipHorizontal mirrors about the horizontal axis: rows are swapped.
	FlipHorizontal FlipAxis = iota
	// FlipDiagonal mirrors about the main diagonal (x, y) -> (y, x).
	FlipDiagonal
	// FlipVertical mirrors about the vertical axis: columns are swapped.
	FlipVertical
	// FlipAntiDiagonal mirrors about the anti-diagonal.
	FlipAntiDiagonal
)

// String returns the axis name.
func (a FlipAxis) String() string {
	switch a {
	case FlipHorizontal:
		return "horizontal"
	case FlipDiagonal:
		return "diagonal"
	case FlipVertical:
		return "vertical"
	case FlipAntiDiagonal:
		return "anti-diagonal"
	default:
		return fmt.Sprintf("FlipAxis(%d)", int(a))
	}
}

// Flip mirrors m about the given axis. The diagonal flips swap the width and
// height of a non-square mask.
func (m *Mask) Flip(axis FlipAxis) error {
	if m == nil {
		return fmt.Errorf("mask: flip: %w", ErrNullInput)
	}
	w, h := m.width, m.height
	switch axis {
	case FlipHorizontal:
		tmp := make([]byte, w)
		for lo, hi := 0, h-1; lo < hi; lo, hi = lo+1, hi-1 {
			a := m.data[lo*w : (lo+1)*w]
			b := m.data[hi*w : (hi+1)*w]
			copy(tmp, a)
			copy(a, b)
			copy(b, tmp)
		}
	case FlipVertical:
		for y := 0; y < h; y++ {
			slices.Reverse(m.data[y*w : (y+1)*w])
		}
	case FlipDiagonal:
		if w == h {
			for y := 0; y < h; y++ {
				for x := 0; x < y; x++ {
					i, j := x+y*w, y+x*w
					m.data[i], m.data[j] = m.data[j], m.data[i]
				}
			}
			return nil
		}
		src := slices.Clone(m.data)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				m.data[y+x*h] = src[x+y*w]
			}
		}
		m.width, m.height = h, w
	case FlipAntiDiagonal:
		if w == h {
			n := w
			for y := 0; y < n; y++ {
				for x := 0; x+y < n-1; x++ {
					i, j := x+y*n, (n-1-y)+(n-1-x)*n
					m.data[i], m.data[j] = m.data[j], m.data[i]
				}
			}
			return nil
		}
		src := slices.Clone(m.data)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				m.data[(h-1-y)+(w-1-x)*h] = src[x+y*w]
			}
		}
		m.width, m.height = h, w
	default:
		return fmt.Errorf("mask: flip: unknown axis %d: %w", int(axis), ErrInvalidInput)
	}
	return nil
}

// Shift translates the content of m by (dx, dy): the pixel at (x, y) moves to
// (x+dx, y+dy). Pixels shifted out are lost and vacated pixels are set to 1.
// |dx| must be less than the width and |dy| less than the height.
func (m *Mask) Shift(dx, dy int) error {
	if m == nil {
		return fmt.Errorf("mask: shift: %w", ErrNullInput)
	}
	w, h := m.width, m.height
	if dx <= -w || dx >= w || dy <= -h || dy >= h {
		return fmt.Errorf("mask: shift (%d,%d) of %dx%d: %w", dx, dy, w, h, ErrIllegalInput)
	}
	if dx == 0 && dy == 0 {
		return nil
	}

	// Destination columns [x0, x1) receive source columns [x0-dx, x1-dx).
	x0, x1 := max(0, dx), min(w, w+dx)
	// Destination rows [y0, y1) receive source rows [y0-dy, y1-dy).
	y0, y1 := max(0, dy), min(h, h+dy)

	moveRow := func(y int) {
		d := m.data[y*w:]
		s := m.data[(y-dy)*w:]
		copy(d[x0:x1], s[x0-dx:x1-dx])
		fillBytes(d[:x0], One)
		fillBytes(d[x1:w], One)
	}
	// Walk away from the source rows so none is overwritten before it is read.
	if dy > 0 {
		for y := y1 - 1; y >= y0; y-- {
			moveRow(y)
		}
	} else {
		for y := y0; y < y1; y++ {
			moveRow(y)
		}
	}
	fillBytes(m.data[:y0*w], One)
	fillBytes(m.data[y1*w:], One)
	return nil
}

// Insert copies src into m with the lower-left pixel of src landing on
// (xpos, ypos). The inserted region is clipped to the bounds of m.
func (m *Mask) Insert(src *Mask, xpos, ypos int) error {
	if m == nil || src == nil {
		return fmt.Errorf("mask: insert: %w", ErrNullInput)
	}
	if xpos < 1 || xpos > m.width || ypos < 1 || ypos > m.height {
		return fmt.Errorf("mask: insert at (%d,%d) into %dx%d: %w",
			xpos, ypos, m.width, m.height, ErrInvalidInput)
	}
	if alias.Same(m.data, src.data) && xpos == 1 && ypos == 1 {
		return nil
	}
	if alias.AnyOverlap(m.data, src.data) {
		src = src.Clone()
	}

	nx := min(src.width, m.width-xpos+1)
	ny := min(src.height, m.height-ypos+1)
	if src.width == m.width && xpos == 1 {
		copy(m.data[(ypos-1)*m.width:], src.data[:ny*src.width])
		return nil
	}
	for j := 0; j < ny; j++ {
		d := m.data[(ypos-1+j)*m.width+xpos-1:]
		copy(d[:nx], src.data[j*src.width:])
	}
	return nil
}

// Extract returns a new mask holding the inclusive window
// (llx, lly)-(urx, ury) of m.
func (m *Mask) Extract(llx, lly, urx, ury int) (*Mask, error) {
	if m == nil {
		return nil, fmt.Errorf("mask: extract: %w", ErrNullInput)
	}
	if llx < 1 || lly < 1 || urx > m.width || ury > m.height || llx > urx || lly > ury {
		return nil, fmt.Errorf("mask: extract (%d,%d)-(%d,%d) of %dx%d: %w",
			llx, lly, urx, ury, m.width, m.height, ErrIllegalInput)
	}
	if out := m.extract(llx, lly, urx, ury); out != nil {
		return out, nil
	}
	return newMask(urx-llx+1, ury-lly+1), nil
}

// extract is Extract without validation. It returns nil when the window has
// no set pixel, so callers that only care about content can skip the
// allocation.
func (m *Mask) extract(llx, lly, urx, ury int) *Mask {
	_, first, found := m.firstWindow(llx, lly, urx, ury)
	if !found {
		return nil
	}
	out := newMask(urx-llx+1, ury-lly+1)
	// Rows below the first set pixel are already zero.
	skip := first - lly
	if m.fullRows(llx, urx) {
		copy(out.data[skip*out.width:], m.data[(first-1)*m.width:ury*m.width])
		return out
	}
	for y := first; y <= ury; y++ {
		row := (y - 1) * m.width
		copy(out.data[(y-lly)*out.width:], m.data[row+llx-1:row+urx])
	}
	return out
}

// Move splits m into nbCut x nbCut equal tiles and moves each tile to a new
// grid position. Tiles are numbered from 1 starting at the lower-left tile,
// left to right then bottom to top; tile t moves to position positions[t-1].
// positions must be a permutation of 1..nbCut*nbCut.
func (m *Mask) Move(nbCut int, positions []int) error {
	if m == nil || positions == nil {
		return fmt.Errorf("mask: move: %w", ErrNullInput)
	}
	if nbCut <= 0 || m.width%nbCut != 0 || m.height%nbCut != 0 {
		return fmt.Errorf("mask: move: %dx%d cannot be cut in %d: %w",
			m.width, m.height, nbCut, ErrIllegalInput)
	}
	tiles := nbCut * nbCut
	if len(positions) != tiles {
		return fmt.Errorf("mask: move: %d positions for %d tiles: %w",
			len(positions), tiles, ErrIllegalInput)
	}
	seen := make([]bool, tiles)
	for _, p := range positions {
		if p < 1 || p > tiles || seen[p-1] {
			return fmt.Errorf("mask: move: position %d is out of range or repeated: %w",
				p, ErrIllegalInput)
		}
		seen[p-1] = true
	}

	tw, th := m.width/nbCut, m.height/nbCut
	src := slices.Clone(m.data)
	for t, p := range positions {
		si, sj := t%nbCut, t/nbCut
		di, dj := (p-1)%nbCut, (p-1)/nbCut
		if si == di && sj == dj {
			continue
		}
		for r := 0; r < th; r++ {
			s := (sj*th+r)*m.width + si*tw
			d := (dj*th+r)*m.width + di*tw
			copy(m.data[d:d+tw], src[s:s+tw])
		}
	}
	return nil
}

// Subsample returns a new mask holding every xstep-th column and every
// ystep-th row of m, starting with pixel (1, 1).
func (m *Mask) Subsample(xstep, ystep int) (*Mask, error) {
	if m == nil {
		return nil, fmt.Errorf("mask: subsample: %w", ErrNullInput)
	}
	if xstep <= 0 || ystep <= 0 {
		return nil, fmt.Errorf("mask: subsample steps (%d,%d): %w", xstep, ystep, ErrIllegalInput)
	}
	nx := (m.width + xstep - 1) / xstep
	ny := (m.height + ystep - 1) / ystep
	out := newMask(nx, ny)
	for j := 0; j < ny; j++ {
		s := m.data[j*ystep*m.width:]
		d := out.data[j*nx : (j+1)*nx]
		if xstep == 1 {
			copy(d, s)
			continue
		}
		for i := range d {
			d[i] = s[i*xstep]
		}
	}
	return out, nil
}
