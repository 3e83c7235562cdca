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
	"encoding/binary"

	"github.com/ajroetker/go-binmask/mask"
)

// pass describes one erosion or dilation of src into dst.
//
// Both operations look for a "hit" under the kernel: erosion XORs the source
// word with inv = 0x0101...01 so a hit is a background pixel, dilation uses
// inv = 0 so a hit is a foreground pixel. The output is hit XOR erode.
type pass struct {
	dst      []byte
	dstWidth int // row stride of dst
	ox, oy   int // source coordinates of dst pixel (0, 0)

	src           []byte
	width, height int

	k     *paddedKernel
	inv   uint64
	erode bool
}

// rowFunc filters the interior pixels x in [hx, width-hx) of source row y.
type rowFunc func(p *pass, y int)

// loadWord reads the 8 bytes at b[off:]. Near the end of b the missing bytes
// read as zero; they always fall under zero kernel padding.
func loadWord(b []byte, off int) uint64 {
	if off+mask.WordBytes <= len(b) {
		return binary.LittleEndian.Uint64(b[off:])
	}
	var buf [mask.WordBytes]byte
	copy(buf[:], b[off:])
	return binary.LittleEndian.Uint64(buf[:])
}

func pixel(hit, erode bool) byte {
	if hit != erode {
		return mask.One
	}
	return mask.Zero
}

// rowGeneral is the reference sweep: any kernel size, early exit on the
// first kernel row with a hit.
func rowGeneral(p *pass, y int) {
	k := p.k
	w := p.width
	d := p.dst[(y-p.oy)*p.dstWidth:]
	base := (y - k.hy) * w
	for x := k.hx; x < w-k.hx; x++ {
		off := base + x - k.hx
		hit := false
	rows:
		for j := 0; j < k.height; j++ {
			kr := k.rows[j*k.words : (j+1)*k.words]
			for i, kw := range kr {
				if (loadWord(p.src, off+j*w+i*mask.WordBytes)^p.inv)&kw != 0 {
					hit = true
					break rows
				}
			}
		}
		d[x-p.ox] = pixel(hit, p.erode)
	}
}

// run performs one erosion or dilation, writing the bottom border rows
// first, then each interior row with its left and right border, then the
// top border rows. The bottom-up order is what makes the shifted-source
// layout accepted by Filter safe.
func run(dst, src *mask.Mask, k *paddedKernel, erode bool, border Border, row rowFunc) {
	p := &pass{
		dst:      dst.Data(),
		dstWidth: dst.Width(),
		src:      src.Data(),
		width:    src.Width(),
		height:   src.Height(),
		k:        k,
		erode:    erode,
	}
	if erode {
		p.inv = mask.OnesPerByte
	}
	if border == BorderCrop {
		p.ox, p.oy = k.hx, k.hy
	}

	for y := 0; y < k.hy; y++ {
		p.borderRow(y, border)
	}
	for y := k.hy; y < p.height-k.hy; y++ {
		p.borderEdges(y, border)
		row(p, y)
	}
	for y := p.height - k.hy; y < p.height; y++ {
		p.borderRow(y, border)
	}
}

// borderRow and borderEdges index dst with the source width, which is only
// valid for the modes that keep the border. BorderNop and BorderCrop write
// nothing here.
func (p *pass) borderRow(y int, border Border) {
	if border != BorderZero && border != BorderCopy {
		return
	}
	w := p.width
	switch border {
	case BorderZero:
		clear(p.dst[y*w : (y+1)*w])
	case BorderCopy:
		copy(p.dst[y*w:(y+1)*w], p.src[y*w:(y+1)*w])
	}
}

func (p *pass) borderEdges(y int, border Border) {
	hx, w := p.k.hx, p.width
	if hx == 0 || border != BorderZero && border != BorderCopy {
		return
	}
	d := p.dst[y*w : (y+1)*w]
	switch border {
	case BorderZero:
		clear(d[:hx])
		clear(d[w-hx:])
	case BorderCopy:
		s := p.src[y*w : (y+1)*w]
		copy(d[:hx], s[:hx])
		copy(d[w-hx:], s[w-hx:])
	}
}
