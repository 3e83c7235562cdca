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

// PLIO_1 stores each tile as an IRAF line list: a 7 word header followed by
// 16 bit instructions, opcode in the top 4 bits and a 12 bit operand.
const (
	plHeaderLen = 7
	plMaxData   = 4095

	plZeroRun    = 0 // N zero pixels
	plSetHigh    = 1 // high value = next word << 12 | data
	plIncHigh    = 2 // high value += data
	plDecHigh    = 3 // high value -= data
	plHighRun    = 4 // N pixels at the high value
	plZeroPix    = 5 // N-1 zeros then one pixel at the high value
	plIncHighPix = 6 // high value += data, then one pixel
	plDecHighPix = 7 // high value -= data, then one pixel

	// PLIO values must fit in 24 bits.
	plMaxValue = 1<<24 - 1
)

func plWord(op, data int) int16 {
	return int16(op<<12 | data)
}

// plioEncode converts one line of non-negative pixel values to a line list.
func plioEncode(px []int32) ([]int16, error) {
	ll := []int16{0, plHeaderLen, -100, 0, 0, 0, 0}
	if len(px) == 0 {
		return ll, nil
	}
	hi := int32(1)
	zeros := 0
	for i := 0; i < len(px); {
		v := px[i]
		if v < 0 || v > plMaxValue {
			return nil, fmt.Errorf("fits: plio: pixel value %d out of range: %w", v, mask.ErrIllegalInput)
		}
		if v == 0 {
			zeros++
			i++
			continue
		}
		run := 1
		for i+run < len(px) && px[i+run] == v {
			run++
		}
		i += run

		single := false
		if dv := v - hi; dv != 0 {
			hi = v
			switch {
			case dv > plMaxData || dv < -plMaxData:
				ll = append(ll, plWord(plSetHigh, int(v&plMaxData)), int16(v>>12))
			case run == 1 && zeros == 0:
				op := plIncHighPix
				if dv < 0 {
					op, dv = plDecHighPix, -dv
				}
				ll = append(ll, plWord(op, int(dv)))
				single = true
			case dv > 0:
				ll = append(ll, plWord(plIncHigh, int(dv)))
			default:
				ll = append(ll, plWord(plDecHigh, int(-dv)))
			}
		}
		if single {
			continue
		}
		if zeros > 0 {
			for ; zeros > plMaxData; zeros -= plMaxData {
				ll = append(ll, plWord(plZeroRun, plMaxData))
			}
			if run == 1 && zeros < plMaxData {
				ll = append(ll, plWord(plZeroPix, zeros+1))
				zeros = 0
				continue
			}
			ll = append(ll, plWord(plZeroRun, zeros))
			zeros = 0
		}
		for ; run > 0; run -= plMaxData {
			ll = append(ll, plWord(plHighRun, min(run, plMaxData)))
		}
	}
	for ; zeros > 0; zeros -= plMaxData {
		ll = append(ll, plWord(plZeroRun, min(zeros, plMaxData)))
	}
	ll[3] = int16(len(ll) % 32768)
	ll[4] = int16(len(ll) / 32768)
	return ll, nil
}

// plioDecode expands a line list into npix pixel values. Pixels the list
// does not cover are zero.
func plioDecode(ll []int16, npix int) ([]int32, error) {
	if len(ll) < 3 {
		return nil, fmt.Errorf("fits: plio: line list of %d words: %w", len(ll), mask.ErrBadFileFormat)
	}
	var length, first int
	if ll[2] > 0 {
		// old style header
		length, first = int(ll[2]), 3
	} else {
		if len(ll) < plHeaderLen {
			return nil, fmt.Errorf("fits: plio: short line list header: %w", mask.ErrBadFileFormat)
		}
		length = int(ll[4])<<15 + int(ll[3])
		first = int(ll[1])
	}
	if length > len(ll) || first < 0 || first > length {
		return nil, fmt.Errorf("fits: plio: line list length %d, have %d words: %w",
			length, len(ll), mask.ErrBadFileFormat)
	}

	out := make([]int32, npix)
	x := 0
	hi := int32(1)
	for ip := first; ip < length && x < npix; ip++ {
		w := uint16(ll[ip])
		op, data := int(w>>12), int(w&plMaxData)
		switch op {
		case plZeroRun, plHighRun, plZeroPix:
			end := min(x+data, npix)
			if op == plHighRun {
				for i := x; i < end; i++ {
					out[i] = hi
				}
			} else if op == plZeroPix && x+data <= npix && data > 0 {
				out[x+data-1] = hi
			}
			x += data
		case plSetHigh:
			if ip+1 >= length {
				return nil, fmt.Errorf("fits: plio: truncated set-high instruction: %w", mask.ErrBadFileFormat)
			}
			ip++
			hi = int32(ll[ip])<<12 | int32(data)
		case plIncHigh:
			hi += int32(data)
		case plDecHigh:
			hi -= int32(data)
		case plIncHighPix, plDecHighPix:
			if op == plIncHighPix {
				hi += int32(data)
			} else {
				hi -= int32(data)
			}
			if x < npix {
				out[x] = hi
			}
			x++
		default:
			return nil, fmt.Errorf("fits: plio: opcode %d: %w", op, mask.ErrBadFileFormat)
		}
	}
	return out, nil
}
