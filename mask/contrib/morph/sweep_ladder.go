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

	"github.com/ajroetker/go-binmask/mask"
)

// Small kernels (at most 2 words wide, i.e. 15 columns, and at most 7 rows)
// use a branch-free sweep: the kernel words live in a fixed-size array, every
// row is tested, and the hits are ORed together instead of breaking out
// early. For a 3x3 kernel that is three loads and three ANDs per pixel.
const (
	maxLadderWords = 2
	maxLadderHY    = 3
	maxLadderRows  = 2*maxLadderHY + 1
)

// shape identifies one rung of the ladder.
type shape struct {
	words int // kernel words per row, 1..maxLadderWords
	rows  int // kernel rows, 2*hy+1
}

// ladder holds the specialised sweeps, indexed by [words-1][hy].
var ladder [maxLadderWords][maxLadderHY + 1]rowFunc

func init() {
	for w := 1; w <= maxLadderWords; w++ {
		for hy := 0; hy <= maxLadderHY; hy++ {
			ladder[w-1][hy] = newLadderRow(shape{words: w, rows: 2*hy + 1})
		}
	}
}

// newLadderRow builds the sweep for one kernel shape.
func newLadderRow(s shape) rowFunc {
	if s.words == 1 {
		return func(p *pass, y int) {
			var kw [maxLadderRows]uint64
			copy(kw[:], p.k.rows[:s.rows])
			w, hx, inv := p.width, p.k.hx, p.inv
			d := p.dst[(y-p.oy)*p.dstWidth:]
			base := (y-p.k.hy)*w - hx
			for x := hx; x < w-hx; x++ {
				off := base + x
				var acc uint64
				for j := 0; j < s.rows; j++ {
					acc |= (loadWord(p.src, off+j*w) ^ inv) & kw[j]
				}
				d[x-p.ox] = pixel(acc != 0, p.erode)
			}
		}
	}
	return func(p *pass, y int) {
		var kw [maxLadderWords * maxLadderRows]uint64
		copy(kw[:], p.k.rows[:s.rows*maxLadderWords])
		w, hx, inv := p.width, p.k.hx, p.inv
		d := p.dst[(y-p.oy)*p.dstWidth:]
		base := (y-p.k.hy)*w - hx
		for x := hx; x < w-hx; x++ {
			off := base + x
			var acc uint64
			for j := 0; j < s.rows; j++ {
				o := off + j*w
				acc |= (loadWord(p.src, o)^inv)&kw[2*j] |
					(loadWord(p.src, o+mask.WordBytes)^inv)&kw[2*j+1]
			}
			d[x-p.ox] = pixel(acc != 0, p.erode)
		}
	}
}

// selectRow returns the sweep for k and a name for logging. The ladder is
// skipped when BINMASK_NO_SIMD is set or the CPU lacks fast word support.
func selectRow(k *paddedKernel) (rowFunc, string) {
	if mask.HasFastPaths() && k.words <= maxLadderWords && k.hy <= maxLadderHY {
		return ladder[k.words-1][k.hy], fmt.Sprintf("ladder/w%dh%d", k.words, k.hy)
	}
	return rowGeneral, "general"
}

func rowFor(k *paddedKernel) rowFunc {
	row, _ := selectRow(k)
	return row
}
