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

	"github.com/ajroetker/go-binmask/internal/alias"
	"github.com/ajroetker/go-binmask/mask"
)

// Operation is a morphological filter.
type Operation int

const (
	// Erosion keeps a pixel iff every source pixel under the kernel's set
	// elements is set.
	Erosion Operation = iota
	// Dilation sets a pixel iff at least one source pixel under the
	// kernel's set elements is set.
	Dilation
	// Opening is an erosion followed by a dilation with the reflected
	// kernel. It removes foreground features smaller than the kernel.
	Opening
	// Closing is a dilation followed by an erosion with the reflected
	// kernel. It fills background holes smaller than the kernel.
	Closing
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case Erosion:
		return "erosion"
	case Dilation:
		return "dilation"
	case Opening:
		return "opening"
	case Closing:
		return "closing"
	default:
		return fmt.Sprintf("Operation(%d)", int(op))
	}
}

// Border selects what is written to destination pixels closer to the edge
// than the kernel half-size, where the kernel does not fit in the source.
type Border int

const (
	// BorderNop leaves border pixels of the destination untouched.
	BorderNop Border = iota
	// BorderZero sets border pixels to 0.
	BorderZero
	// BorderCopy copies border pixels from the source.
	BorderCopy
	// BorderCrop drops the border: the destination is smaller than the
	// source by twice the kernel half-size on each axis and holds only the
	// filtered interior.
	BorderCrop
)

// String returns the border mode name.
func (b Border) String() string {
	switch b {
	case BorderNop:
		return "nop"
	case BorderZero:
		return "zero"
	case BorderCopy:
		return "copy"
	case BorderCrop:
		return "crop"
	default:
		return fmt.Sprintf("Border(%d)", int(b))
	}
}

// Filter applies op to src with the structuring element kernel and writes
// the result to dst.
//
// The kernel must have odd width and height, at least one set element, and
// fit inside src. dst must have the size of src, or for BorderCrop the size
// of src minus 2*(kernel.Width()/2) columns and 2*(kernel.Height()/2) rows.
//
// For Erosion and Dilation, dst and src must not share memory, with one
// exception: src may lie inside the same buffer as dst when it starts at
// least (1+kernel.Height()/2) rows past the start of dst. Rows are produced
// bottom-up, so this layout never reads a row that has been overwritten.
// Opening and Closing go through a scratch mask and accept any overlap of
// dst and src. The kernel must never share memory with dst.
func Filter(dst, src, kernel *mask.Mask, op Operation, border Border) error {
	if dst == nil || src == nil || kernel == nil {
		return fmt.Errorf("morph: %s: %w", op, mask.ErrNullInput)
	}
	kw, kh := kernel.Width(), kernel.Height()
	if kw%2 == 0 || kh%2 == 0 {
		return fmt.Errorf("morph: %s: kernel %dx%d has an even side: %w", op, kw, kh, mask.ErrInvalidInput)
	}
	if kernel.IsEmpty() {
		return fmt.Errorf("morph: %s: kernel has no set element: %w", op, mask.ErrDataNotFound)
	}
	w, h := src.Width(), src.Height()
	if kw > w || kh > h {
		return fmt.Errorf("morph: %s: kernel %dx%d larger than source %dx%d: %w",
			op, kw, kh, w, h, mask.ErrAccessOutOfRange)
	}
	if op < Erosion || op > Closing {
		return fmt.Errorf("morph: unknown operation %d: %w", int(op), mask.ErrUnsupportedMode)
	}
	if border < BorderNop || border > BorderCrop {
		return fmt.Errorf("morph: %s: unknown border mode %d: %w", op, int(border), mask.ErrUnsupportedMode)
	}
	hx, hy := kw>>1, kh>>1
	wantW, wantH := w, h
	if border == BorderCrop {
		wantW, wantH = w-2*hx, h-2*hy
	}
	if dst.Width() != wantW || dst.Height() != wantH {
		return fmt.Errorf("morph: %s: destination %dx%d, want %dx%d for %s border: %w",
			op, dst.Width(), dst.Height(), wantW, wantH, border, mask.ErrIncompatibleInput)
	}
	if err := checkAlias(dst, src, kernel, op, border); err != nil {
		return err
	}

	k := newPaddedKernel(kernel)
	row, path := selectRow(k)
	mask.Logger().Debug("morph: filter",
		"op", op, "border", border,
		"kernel", fmt.Sprintf("%dx%d", kw, kh),
		"source", fmt.Sprintf("%dx%d", w, h),
		"path", path)

	switch op {
	case Erosion, Dilation:
		run(dst, src, k, op == Erosion, border, row)
	default:
		compose(dst, src, k, op, border)
	}
	return nil
}

// checkAlias enforces the memory-sharing rules documented on Filter.
func checkAlias(dst, src, kernel *mask.Mask, op Operation, border Border) error {
	if alias.AnyOverlap(dst.Data(), kernel.Data()) {
		return fmt.Errorf("morph: %s: kernel shares memory with destination: %w", op, mask.ErrUnsupportedMode)
	}
	if op != Erosion && op != Dilation {
		return nil
	}
	d, s := dst.Data(), src.Data()
	if !alias.AnyOverlap(d, s) {
		return nil
	}
	if border == BorderCrop {
		return fmt.Errorf("morph: %s: cropped destination shares memory with source: %w", op, mask.ErrUnsupportedMode)
	}
	lead := (1 + kernel.Height()>>1) * src.Width()
	if off := alias.Offset(d, s); off < lead {
		return fmt.Errorf("morph: %s: source starts %d bytes into destination, need at least %d: %w",
			op, off, lead, mask.ErrUnsupportedMode)
	}
	return nil
}

// compose runs opening or closing through one scratch mask. The first pass
// writes a well-defined border into the scratch so the second pass never
// reads stale pixels; the second pass uses the caller's border mode.
func compose(dst, src *mask.Mask, k *paddedKernel, op Operation, border Border) {
	scratch, _ := mask.New(src.Width(), src.Height())
	mask.Logger().Debug("morph: scratch allocated", "op", op,
		"size", fmt.Sprintf("%dx%d", scratch.Width(), scratch.Height()))

	first := border
	if border == BorderNop || border == BorderCrop {
		first = BorderCopy
	}
	firstErodes := op == Opening

	r := k.reflect()
	run(scratch, src, k, firstErodes, first, rowFor(k))
	run(dst, scratch, r, !firstErodes, border, rowFor(r))
}
