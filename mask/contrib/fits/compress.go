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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/ajroetker/go-binmask/mask"
)

// Compression selects the tile compression of a written image.
type Compression int

const (
	// CompressNone writes a plain image HDU.
	CompressNone Compression = iota
	CompressGZIP
	CompressRice
	CompressHCompress
	CompressPLIO
)

// String returns the ZCMPTYPE keyword value.
func (c Compression) String() string {
	switch c {
	case CompressNone:
		return "NONE"
	case CompressGZIP:
		return "GZIP_1"
	case CompressRice:
		return "RICE_1"
	case CompressHCompress:
		return "HCOMPRESS_1"
	case CompressPLIO:
		return "PLIO_1"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

func parseCompression(s string) (Compression, error) {
	for c := CompressGZIP; c <= CompressPLIO; c++ {
		if s == c.String() {
			return c, nil
		}
	}
	return CompressNone, fmt.Errorf("fits: compression %q: %w", s, mask.ErrUnsupportedMode)
}

const (
	riceBlockSize = 32
	riceBytePix   = 1
)

// tileCodec compresses one tile of 8 bit samples and expands tiles of
// zbitpix samples.
type tileCodec struct {
	comp      Compression
	blocksize int
	bytepix   int

	buf bytes.Buffer
	gz  *gzip.Writer
}

func newTileCodec(comp Compression) (*tileCodec, error) {
	switch comp {
	case CompressGZIP, CompressRice, CompressPLIO:
	case CompressHCompress:
		mask.Logger().Warn("fits: compression not implemented", "compression", comp)
		return nil, fmt.Errorf("fits: %s: %w", comp, mask.ErrUnsupportedMode)
	default:
		return nil, fmt.Errorf("fits: %s: %w", comp, mask.ErrUnsupportedMode)
	}
	return &tileCodec{comp: comp, blocksize: riceBlockSize, bytepix: riceBytePix}, nil
}

// tform is the variable length array column format for maxlen elements.
func (c *tileCodec) tform(maxlen int) string {
	if c.comp == CompressPLIO {
		return fmt.Sprintf("1PI(%d)", maxlen)
	}
	return fmt.Sprintf("1PB(%d)", maxlen)
}

// encode compresses a row of unsigned bytes and returns the heap bytes and
// the element count.
func (c *tileCodec) encode(row []byte) ([]byte, int, error) {
	switch c.comp {
	case CompressGZIP:
		c.buf.Reset()
		if c.gz == nil {
			c.gz = gzip.NewWriter(&c.buf)
		} else {
			c.gz.Reset(&c.buf)
		}
		if _, err := c.gz.Write(row); err != nil {
			return nil, 0, fmt.Errorf("fits: gzip: %w: %w", mask.ErrFileIO, err)
		}
		if err := c.gz.Close(); err != nil {
			return nil, 0, fmt.Errorf("fits: gzip: %w: %w", mask.ErrFileIO, err)
		}
		out := bytes.Clone(c.buf.Bytes())
		return out, len(out), nil
	case CompressRice:
		samples := make([]uint32, len(row))
		for i, b := range row {
			samples[i] = uint32(b)
		}
		out, err := riceEncode(samples, c.bytepix, c.blocksize)
		return out, len(out), err
	default:
		px := make([]int32, len(row))
		for i, b := range row {
			px[i] = int32(b)
		}
		ll, err := plioEncode(px)
		if err != nil {
			return nil, 0, err
		}
		out := make([]byte, 2*len(ll))
		for i, w := range ll {
			binary.BigEndian.PutUint16(out[2*i:], uint16(w))
		}
		return out, len(ll), nil
	}
}

// decodeTile expands one compressed tile into n samples. zbitpix is the
// integer sample width of the uncompressed image.
func decodeTile(comp Compression, src []byte, n, zbitpix, blocksize, bytepix int) ([]int64, error) {
	out := make([]int64, n)
	switch comp {
	case CompressGZIP:
		zr, err := gzip.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("fits: gzip tile: %w: %w", mask.ErrBadFileFormat, err)
		}
		size := zbitpix / 8
		raw := make([]byte, n*size)
		if _, err := io.ReadFull(zr, raw); err != nil {
			return nil, fmt.Errorf("fits: gzip tile: %w: %w", mask.ErrBadFileFormat, err)
		}
		for i := range out {
			out[i] = sample(raw[i*size:], zbitpix)
		}
	case CompressRice:
		vals, err := riceDecode(src, n, bytepix, blocksize)
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			if zbitpix == 8 {
				out[i] = int64(v)
			} else {
				out[i] = int64(signExtend(v, 8*bytepix))
			}
		}
	case CompressPLIO:
		ll := make([]int16, len(src)/2)
		for i := range ll {
			ll[i] = int16(binary.BigEndian.Uint16(src[2*i:]))
		}
		px, err := plioDecode(ll, n)
		if err != nil {
			return nil, err
		}
		for i, v := range px {
			out[i] = int64(v)
		}
	case CompressHCompress:
		mask.Logger().Warn("fits: compression not implemented", "compression", comp)
		return nil, fmt.Errorf("fits: %s tile: %w", comp, mask.ErrUnsupportedMode)
	default:
		return nil, fmt.Errorf("fits: %s tile: %w", comp, mask.ErrUnsupportedMode)
	}
	return out, nil
}

// sample decodes one big-endian integer sample.
func sample(b []byte, bitpix int) int64 {
	switch bitpix {
	case 8:
		return int64(b[0])
	case 16:
		return int64(int16(binary.BigEndian.Uint16(b)))
	case 32:
		return int64(int32(binary.BigEndian.Uint32(b)))
	default:
		return int64(binary.BigEndian.Uint64(b))
	}
}
