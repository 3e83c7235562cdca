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

package fits

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/ajroetker/go-binmask/mask"
)

// ReadBytes reads the box lo..hi of the current image and returns one byte
// per pixel, NAXIS1 varying fastest. lo and hi hold one 1-based inclusive
// bound per axis.
//
// Unscaled 8 bit samples are returned verbatim. Every other sample type
// becomes 1 where its physical value (BZERO + BSCALE*raw) is nonzero and
// not NaN, and 0 elsewhere.
func (f *File) ReadBytes(lo, hi []int) ([]byte, error) {
	h, err := f.current()
	if err != nil {
		return nil, err
	}
	axes, err := f.Axes()
	if err != nil {
		return nil, err
	}
	if len(axes) == 0 {
		return nil, fmt.Errorf("fits: %s: HDU %d has no data: %w", f.path, f.cur, mask.ErrDataNotFound)
	}
	if len(lo) != len(axes) || len(hi) != len(axes) {
		return nil, fmt.Errorf("fits: read box of %d/%d axes for a %d axis image: %w",
			len(lo), len(hi), len(axes), mask.ErrIllegalInput)
	}
	for i, n := range axes {
		if lo[i] < 1 || lo[i] > hi[i] || hi[i] > n {
			return nil, fmt.Errorf("fits: read axis %d range [%d, %d] outside [1, %d]: %w",
				i+1, lo[i], hi[i], n, mask.ErrIllegalInput)
		}
	}
	sc := scaling{scale: 1}
	if v, ok := h.floatVal("BSCALE"); ok {
		sc.scale = v
	}
	if v, ok := h.floatVal("BZERO"); ok {
		sc.zero = v
	}

	r := &boxReader{f: f, h: h, axes: axes, lo: lo, hi: hi, sc: sc}
	if h.compressed() {
		err = r.compressed()
	} else {
		err = r.plain()
	}
	if err != nil {
		return nil, err
	}
	mask.Logger().Debug("fits: read box", "path", f.path, "hdu", f.cur,
		"lo", lo, "hi", hi, "compressed", h.compressed())
	return r.out, nil
}

type scaling struct {
	scale, zero float64
}

func (s scaling) identity() bool {
	return s.scale == 1 && s.zero == 0
}

func (s scaling) pixel(raw float64) byte {
	v := s.zero + s.scale*raw
	if v != 0 && !math.IsNaN(v) {
		return mask.One
	}
	return mask.Zero
}

// boxReader walks the rows of a box. Every row is a contiguous run of
// NAXIS1 samples; the higher axes are stepped like an odometer.
type boxReader struct {
	f      *File
	h      *hdu
	axes   []int
	lo, hi []int
	sc     scaling
	out    []byte
}

// rows calls fn with the linear index of every image row in the box, in
// output order.
func (r *boxReader) rows(fn func(row int) error) error {
	idx := append([]int(nil), r.lo[1:]...)
	for {
		row, stride := 0, 1
		for k, v := range idx {
			row += (v - 1) * stride
			stride *= r.axes[k+1]
		}
		if err := fn(row); err != nil {
			return err
		}
		k := 0
		for ; k < len(idx); k++ {
			if idx[k] < r.hi[k+1] {
				idx[k]++
				break
			}
			idx[k] = r.lo[k+1]
		}
		if k == len(idx) {
			return nil
		}
	}
}

func (r *boxReader) plain() error {
	bitpix, _ := r.h.intVal("BITPIX")
	size := bitpixBytes(bitpix)
	n1 := r.axes[0]
	nx := r.hi[0] - r.lo[0] + 1
	raw := make([]byte, nx*size)
	return r.rows(func(row int) error {
		off := r.h.dataOff + (int64(row)*int64(n1)+int64(r.lo[0]-1))*int64(size)
		if err := r.f.readAt(raw, off); err != nil {
			return err
		}
		if bitpix == 8 && r.sc.identity() {
			r.out = append(r.out, raw...)
			return nil
		}
		for i := 0; i < nx; i++ {
			r.out = append(r.out, r.sc.pixel(rawSample(raw[i*size:], bitpix)))
		}
		return nil
	})
}

func rawSample(b []byte, bitpix int) float64 {
	switch bitpix {
	case -32:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
	case -64:
		return math.Float64frombits(binary.BigEndian.Uint64(b))
	default:
		return float64(sample(b, bitpix))
	}
}

// compressedLayout locates the compressed tiles of a ZIMAGE table.
type compressedLayout struct {
	comp      Compression
	zbitpix   int
	blocksize int
	bytepix   int

	rowLen   int   // NAXIS1, bytes per table row
	colOff   int   // offset of the descriptor in a table row
	wide     bool  // 64 bit Q descriptors
	elemSize int   // bytes per heap element
	heap     int64 // heap offset from the data start
}

func (r *boxReader) layout() (*compressedLayout, error) {
	h := r.h
	name, _ := h.strVal("ZCMPTYPE")
	comp, err := parseCompression(strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if comp == CompressHCompress {
		mask.Logger().Warn("fits: compression not implemented", "compression", comp, "path", r.f.path)
		return nil, fmt.Errorf("fits: %s: %w", comp, mask.ErrUnsupportedMode)
	}
	l := &compressedLayout{comp: comp, blocksize: riceBlockSize}
	l.zbitpix, _ = h.intVal("ZBITPIX")
	switch l.zbitpix {
	case 8, 16, 32:
	case 64:
		if comp != CompressGZIP {
			return nil, fmt.Errorf("fits: %s with ZBITPIX 64: %w", comp, mask.ErrUnsupportedMode)
		}
	default:
		return nil, fmt.Errorf("fits: compressed ZBITPIX %d: %w", l.zbitpix, mask.ErrUnsupportedMode)
	}
	l.bytepix = l.zbitpix / 8
	for i := 1; ; i++ {
		zname, ok := h.strVal(fmt.Sprintf("ZNAME%d", i))
		if !ok {
			break
		}
		zval, _ := h.intVal(fmt.Sprintf("ZVAL%d", i))
		switch strings.TrimSpace(zname) {
		case "BLOCKSIZE":
			l.blocksize = zval
		case "BYTEPIX":
			l.bytepix = zval
		}
	}
	if l.blocksize <= 0 {
		return nil, fmt.Errorf("fits: rice BLOCKSIZE %d: %w", l.blocksize, mask.ErrBadFileFormat)
	}

	// One tile per image row.
	for i := range r.axes {
		want := 1
		if i == 0 {
			want = r.axes[0]
		}
		if t, ok := h.intVal(fmt.Sprintf("ZTILE%d", i+1)); ok && t != want {
			return nil, fmt.Errorf("fits: ZTILE%d = %d, only row tiles are supported: %w",
				i+1, t, mask.ErrUnsupportedMode)
		}
	}

	l.rowLen, _ = h.intVal("NAXIS1")
	nrows, _ := h.intVal("NAXIS2")
	l.heap = int64(l.rowLen) * int64(nrows)
	if v, ok := h.intVal("THEAP"); ok {
		l.heap = int64(v)
	}
	tfields, _ := h.intVal("TFIELDS")
	found := false
	for i := 1; i <= tfields && !found; i++ {
		form, _ := h.strVal(fmt.Sprintf("TFORM%d", i))
		width, code, elem, err := parseTForm(form)
		if err != nil {
			return nil, err
		}
		ttype, _ := h.strVal(fmt.Sprintf("TTYPE%d", i))
		if strings.TrimSpace(ttype) == "COMPRESSED_DATA" {
			if code != 'P' && code != 'Q' {
				return nil, fmt.Errorf("fits: COMPRESSED_DATA column format %q: %w", form, mask.ErrBadFileFormat)
			}
			l.wide = code == 'Q'
			l.elemSize = elem
			found = true
			break
		}
		l.colOff += width
	}
	if !found {
		return nil, fmt.Errorf("fits: compressed image without COMPRESSED_DATA column: %w", mask.ErrBadFileFormat)
	}
	return l, nil
}

// parseTForm returns the byte width of a binary table column format, its
// type code and, for P/Q descriptors, the heap element size.
func parseTForm(form string) (width int, code byte, elem int, err error) {
	form = strings.TrimSpace(form)
	i := 0
	repeat := 0
	for i < len(form) && form[i] >= '0' && form[i] <= '9' {
		repeat = repeat*10 + int(form[i]-'0')
		i++
	}
	if i == 0 {
		repeat = 1
	}
	if i >= len(form) {
		return 0, 0, 0, fmt.Errorf("fits: column format %q: %w", form, mask.ErrBadFileFormat)
	}
	code = form[i]
	size := map[byte]int{'L': 1, 'B': 1, 'A': 1, 'I': 2, 'J': 4, 'K': 8, 'E': 4, 'D': 8, 'C': 8, 'M': 16}
	switch code {
	case 'X':
		return (repeat + 7) / 8, code, 0, nil
	case 'P', 'Q':
		if i+1 >= len(form) || size[form[i+1]] == 0 {
			return 0, 0, 0, fmt.Errorf("fits: column format %q: %w", form, mask.ErrBadFileFormat)
		}
		width = 8
		if code == 'Q' {
			width = 16
		}
		return repeat * width, code, size[form[i+1]], nil
	}
	if size[code] == 0 {
		return 0, 0, 0, fmt.Errorf("fits: column format %q: %w", form, mask.ErrBadFileFormat)
	}
	return repeat * size[code], code, 0, nil
}

func (r *boxReader) compressed() error {
	l, err := r.layout()
	if err != nil {
		return err
	}
	n1 := r.axes[0]
	x0, x1 := r.lo[0]-1, r.hi[0]
	desc := make([]byte, 16)
	return r.rows(func(row int) error {
		d := desc[:8]
		if l.wide {
			d = desc[:16]
		}
		if err := r.f.readAt(d, r.h.dataOff+int64(row)*int64(l.rowLen)+int64(l.colOff)); err != nil {
			return err
		}
		var count, off int64
		if l.wide {
			count = int64(binary.BigEndian.Uint64(d))
			off = int64(binary.BigEndian.Uint64(d[8:]))
		} else {
			count = int64(binary.BigEndian.Uint32(d))
			off = int64(binary.BigEndian.Uint32(d[4:]))
		}
		nbytes := count * int64(l.elemSize)
		if count < 0 || off < 0 || l.heap+off+nbytes > r.h.dataLen {
			return fmt.Errorf("fits: %s: tile %d outside the heap: %w", r.f.path, row, mask.ErrBadFileFormat)
		}
		src := make([]byte, nbytes)
		if err := r.f.readAt(src, r.h.dataOff+l.heap+off); err != nil {
			return err
		}
		tile, err := decodeTile(l.comp, src, n1, l.zbitpix, l.blocksize, l.bytepix)
		if err != nil {
			return fmt.Errorf("fits: %s: tile %d: %w", r.f.path, row, err)
		}
		for _, v := range tile[x0:x1] {
			if l.zbitpix == 8 && r.sc.identity() {
				r.out = append(r.out, byte(v))
			} else {
				r.out = append(r.out, r.sc.pixel(float64(v)))
			}
		}
		return nil
	})
}
