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
	"bytes"
	"fmt"
)

// CollapseDir selects the direction of Collapse.
type CollapseDir int

const (
	// CollapseRows ANDs all rows together into a single row.
	CollapseRows CollapseDir = 0
	// CollapseColumns ANDs all columns together into a single column.
	CollapseColumns CollapseDir = 1
)

// Collapse reduces m with a logical AND. CollapseRows returns a width x 1
// mask whose pixel x is set iff column x of m is entirely set;
// CollapseColumns returns a 1 x height mask whose pixel y is set iff row y
// is entirely set.
func (m *Mask) Collapse(dir CollapseDir) (*Mask, error) {
	if m == nil {
		return nil, fmt.Errorf("mask: collapse: %w", ErrNullInput)
	}
	switch dir {
	case CollapseRows:
		return m.collapseRows(), nil
	case CollapseColumns:
		return m.collapseColumns(), nil
	default:
		return nil, fmt.Errorf("mask: collapse: unknown direction %d: %w", int(dir), ErrIllegalInput)
	}
}

// collapseRows keeps the accumulator's live range [lo, hi) trimmed to its
// first and last set pixel, so later rows only touch columns that can still
// survive. Pixels outside the range are already zero.
func (m *Mask) collapseRows() *Mask {
	out := newMask(m.width, 1)
	acc := out.data
	copy(acc, m.data[:m.width])
	lo, hi := 0, m.width
	for y := 1; y < m.height; y++ {
		first := bytes.IndexByte(acc[lo:hi], One)
		if first < 0 {
			break
		}
		last := bytes.LastIndexByte(acc[lo:hi], One)
		lo, hi = lo+first, lo+last+1
		row := m.data[y*m.width:]
		andBytes(acc[lo:hi], acc[lo:hi], row[lo:hi])
	}
	return out
}

func (m *Mask) collapseColumns() *Mask {
	out := newMask(1, m.height)
	for y := range out.data {
		if bytes.IndexByte(m.data[y*m.width:(y+1)*m.width], Zero) < 0 {
			out.data[y] = One
		}
	}
	return out
}
