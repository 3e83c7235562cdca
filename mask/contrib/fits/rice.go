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
	"fmt"

	"github.com/ajroetker/go-binmask/mask"
)

// Rice parameters per sample width: fsbits is the width of the per-block
// split code, fsmax the split above which a block is stored verbatim.
type riceParams struct {
	fsbits, fsmax, bbits int
}

func riceParamsFor(bytepix int) (riceParams, error) {
	switch bytepix {
	case 1:
		return riceParams{fsbits: 3, fsmax: 6, bbits: 8}, nil
	case 2:
		return riceParams{fsbits: 4, fsmax: 14, bbits: 16}, nil
	case 4:
		return riceParams{fsbits: 5, fsmax: 25, bbits: 32}, nil
	default:
		return riceParams{}, fmt.Errorf("fits: rice: BYTEPIX %d: %w", bytepix, mask.ErrUnsupportedMode)
	}
}

type bitWriter struct {
	buf  []byte
	acc  uint64
	nacc int
}

func (w *bitWriter) write(v uint32, n int) {
	w.acc = w.acc<<n | uint64(v)&(1<<n-1)
	w.nacc += n
	for w.nacc >= 8 {
		w.nacc -= 8
		w.buf = append(w.buf, byte(w.acc>>w.nacc))
	}
}

func (w *bitWriter) flush() []byte {
	if w.nacc > 0 {
		w.buf = append(w.buf, byte(w.acc<<(8-w.nacc)))
		w.nacc = 0
	}
	return w.buf
}

type bitReader struct {
	buf  []byte
	pos  int // next bit
	bits int // len(buf)*8
}

func newBitReader(b []byte) *bitReader {
	return &bitReader{buf: b, bits: len(b) * 8}
}

func (r *bitReader) read(n int) (uint32, error) {
	if r.pos+n > r.bits {
		return 0, fmt.Errorf("fits: rice: stream truncated: %w", mask.ErrBadFileFormat)
	}
	var v uint32
	for i := 0; i < n; i++ {
		bit := r.buf[r.pos>>3] >> (7 - r.pos&7) & 1
		v = v<<1 | uint32(bit)
		r.pos++
	}
	return v, nil
}

// unary counts zero bits up to and including the terminating one.
func (r *bitReader) unary() (int, error) {
	n := 0
	for r.pos < r.bits {
		bit := r.buf[r.pos>>3] >> (7 - r.pos&7) & 1
		r.pos++
		if bit != 0 {
			return n, nil
		}
		n++
	}
	return 0, fmt.Errorf("fits: rice: stream truncated: %w", mask.ErrBadFileFormat)
}

// riceEncode compresses samples of bytepix bytes each (values are taken
// modulo the sample width) with the given block size.
func riceEncode(samples []uint32, bytepix, blocksize int) ([]byte, error) {
	p, err := riceParamsFor(bytepix)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, nil
	}
	valMask := uint32(1<<p.bbits - 1)
	w := &bitWriter{buf: make([]byte, 0, len(samples)*bytepix/2+8)}
	w.write(samples[0], p.bbits)

	last := samples[0] & valMask
	diff := make([]uint32, blocksize)
	for i := 0; i < len(samples); i += blocksize {
		n := min(blocksize, len(samples)-i)
		var sum uint64
		for j := 0; j < n; j++ {
			next := samples[i+j] & valMask
			d := signExtend((next-last)&valMask, p.bbits)
			diff[j] = uint32(d<<1^d>>31) & valMask
			sum += uint64(diff[j])
			last = next
		}
		dpsum := (float64(sum) - float64(n/2) - 1) / float64(n)
		if dpsum < 0 {
			dpsum = 0
		}
		psum := uint64(dpsum) >> 1
		fs := 0
		for ; psum > 0; fs++ {
			psum >>= 1
		}
		switch {
		case fs >= p.fsmax:
			w.write(uint32(p.fsmax+1), p.fsbits)
			for j := 0; j < n; j++ {
				w.write(diff[j], p.bbits)
			}
		case fs == 0 && sum == 0:
			w.write(0, p.fsbits)
		default:
			w.write(uint32(fs+1), p.fsbits)
			for j := 0; j < n; j++ {
				top := int(diff[j] >> fs)
				for ; top >= 32; top -= 32 {
					w.write(0, 32)
				}
				w.write(1, top+1)
				if fs > 0 {
					w.write(diff[j], fs)
				}
			}
		}
	}
	return w.flush(), nil
}

// riceDecode expands a stream written by riceEncode into n samples.
func riceDecode(src []byte, n, bytepix, blocksize int) ([]uint32, error) {
	p, err := riceParamsFor(bytepix)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	if n == 0 {
		return out, nil
	}
	valMask := uint32(1<<p.bbits - 1)
	r := newBitReader(src)
	last, err := r.read(p.bbits)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i += blocksize {
		end := min(i+blocksize, n)
		code, err := r.read(p.fsbits)
		if err != nil {
			return nil, err
		}
		fs := int(code) - 1
		for j := i; j < end; j++ {
			var d uint32
			switch {
			case fs < 0:
			case fs == p.fsmax:
				if d, err = r.read(p.bbits); err != nil {
					return nil, err
				}
			default:
				top, err := r.unary()
				if err != nil {
					return nil, err
				}
				low, err := r.read(fs)
				if err != nil {
					return nil, err
				}
				d = uint32(top)<<fs | low
			}
			// undo the zigzag mapping
			if d&1 == 0 {
				d >>= 1
			} else {
				d = ^(d >> 1)
			}
			last = (last + d) & valMask
			out[j] = last
		}
	}
	return out, nil
}

func signExtend(v uint32, bits int) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
