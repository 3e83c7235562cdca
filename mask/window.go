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
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// checkWindow validates an inclusive, 1-based window [llx,urx] x [lly,ury].
func (m *Mask) checkWindow(op string, llx, lly, urx, ury int) error {
	if m == nil {
		return fmt.Errorf("mask: %s: %w", op, ErrNullInput)
	}
	if llx > urx || lly > ury {
		return fmt.Errorf("mask: %s: window (%d,%d)-(%d,%d) is not ordered: %w",
			op, llx, lly, urx, ury, ErrIllegalInput)
	}
	if llx < 1 || lly < 1 || urx > m.width || ury > m.height {
		return fmt.Errorf("mask: %s: window (%d,%d)-(%d,%d) outside %dx%d: %w",
			op, llx, lly, urx, ury, m.width, m.height, ErrAccessOutOfRange)
	}
	return nil
}

// fullRows reports whether the window covers whole rows, in which case its
// pixels are contiguous in the buffer.
func (m *Mask) fullRows(llx, urx int) bool {
	return llx == 1 && urx == m.width
}

// Count returns the number of set pixels. A nil mask counts zero.
func (m *Mask) Count() int {
	if m == nil {
		return 0
	}
	return countOnes(m.data)
}

// CountWindow returns the number of set pixels in the inclusive window
// (llx, lly)-(urx, ury).
func (m *Mask) CountWindow(llx, lly, urx, ury int) (int, error) {
	if err := m.checkWindow("count window", llx, lly, urx, ury); err != nil {
		return 0, err
	}
	if m.fullRows(llx, urx) {
		return countOnes(m.data[(lly-1)*m.width : ury*m.width]), nil
	}
	count := 0
	for y := lly; y <= ury; y++ {
		row := (y - 1) * m.width
		count += countOnes(m.data[row+llx-1 : row+urx])
	}
	return count, nil
}

// IsEmpty reports whether no pixel is set. It stops at the first set pixel.
func (m *Mask) IsEmpty() bool {
	if m == nil {
		return true
	}
	return bytes.IndexByte(m.data, One) < 0
}

// IsEmptyWindow reports whether no pixel in the inclusive window is set.
func (m *Mask) IsEmptyWindow(llx, lly, urx, ury int) (bool, error) {
	if err := m.checkWindow("is empty window", llx, lly, urx, ury); err != nil {
		return false, err
	}
	_, _, found := m.firstWindow(llx, lly, urx, ury)
	return !found, nil
}

// FirstWindow returns the first set pixel of the window in buffer order
// (bottom row first, left to right). found is false for an empty window.
func (m *Mask) FirstWindow(llx, lly, urx, ury int) (x, y int, found bool, err error) {
	if err := m.checkWindow("first window", llx, lly, urx, ury); err != nil {
		return 0, 0, false, err
	}
	x, y, found = m.firstWindow(llx, lly, urx, ury)
	return x, y, found, nil
}

// firstWindow is FirstWindow without validation.
func (m *Mask) firstWindow(llx, lly, urx, ury int) (x, y int, found bool) {
	if m.fullRows(llx, urx) {
		start := (lly - 1) * m.width
		i := bytes.IndexByte(m.data[start:ury*m.width], One)
		if i < 0 {
			return 0, 0, false
		}
		i += start
		return i%m.width + 1, i/m.width + 1, true
	}
	for y := lly; y <= ury; y++ {
		row := (y - 1) * m.width
		if i := bytes.IndexByte(m.data[row+llx-1:row+urx], One); i >= 0 {
			return llx + i, y, true
		}
	}
	return 0, 0, false
}

// DumpWindow writes the pixels of the inclusive window to w as a table of
// "x y value" rows, bottom row first.
func (m *Mask) DumpWindow(w io.Writer, llx, lly, urx, ury int) error {
	if w == nil {
		return fmt.Errorf("mask: dump window: nil writer: %w", ErrNullInput)
	}
	if err := m.checkWindow("dump window", llx, lly, urx, ury); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#----- mask: %d <= x <= %d, %d <= y <= %d -----\n", llx, urx, lly, ury)
	fmt.Fprintf(bw, "\tX\tY\tvalue\n")
	for y := lly; y <= ury; y++ {
		row := m.data[(y-1)*m.width:]
		for x := llx; x <= urx; x++ {
			fmt.Fprintf(bw, "\t%d\t%d\t%d\n", x, y, row[x-1])
		}
	}
	// bufio keeps the first write error, so a single Flush check covers
	// every Fprintf above.
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("mask: dump window: %w: %w", ErrFileIO, err)
	}
	return nil
}
