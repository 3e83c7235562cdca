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
	"strings"

	"github.com/ajroetker/go-binmask/mask"
)

// reservedKeys are written by WriteImage itself; user cards with these
// keywords are dropped.
var reservedKeys = map[string]bool{
	"SIMPLE": true, "XTENSION": true, "BITPIX": true, "NAXIS": true,
	"EXTEND": true, "PCOUNT": true, "GCOUNT": true, "END": true,
	"TFIELDS": true, "THEAP": true, "ZIMAGE": true, "ZBITPIX": true,
	"ZNAXIS": true, "ZCMPTYPE": true,
}

func reserved(key string) bool {
	if reservedKeys[key] {
		return true
	}
	for _, p := range []string{"NAXIS", "ZNAXIS", "ZTILE", "ZNAME", "ZVAL", "TTYPE", "TFORM"} {
		if strings.HasPrefix(key, p) && strings.TrimLeft(key[len(p):], "0123456789") == "" {
			return true
		}
	}
	return false
}

// WriteImage appends a width x height image of unsigned bytes, stored row by
// row with the first row at the bottom, followed by cards.
//
// The first image of a created file becomes the primary HDU. A compressed
// image is always written as a tile compressed extension, so on an empty
// file it is preceded by an empty primary HDU.
func (f *File) WriteImage(width, height int, data []byte, cards []Card, comp Compression) error {
	if f.f == nil {
		return fmt.Errorf("fits: write %s: file is closed: %w", f.path, mask.ErrFileIO)
	}
	if !f.writable {
		return fmt.Errorf("fits: write %s: opened read-only: %w", f.path, mask.ErrUnsupportedMode)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("fits: write %dx%d image: %w", width, height, mask.ErrIllegalInput)
	}
	if len(data) != width*height {
		return fmt.Errorf("fits: write %dx%d image from %d bytes: %w",
			width, height, len(data), mask.ErrIncompatibleInput)
	}
	var user []string
	for _, c := range cards {
		if reserved(c.Key) {
			mask.Logger().Debug("fits: dropped reserved keyword", "key", c.Key)
			continue
		}
		line, err := c.format()
		if err != nil {
			return err
		}
		user = append(user, line)
	}

	if comp == CompressNone {
		return f.writePlain(width, height, data, user)
	}
	codec, err := newTileCodec(comp)
	if err != nil {
		return err
	}
	if len(f.hdus) == 0 {
		primary := []Card{
			{Key: "SIMPLE", Value: true, Comment: "file does conform to FITS standard"},
			{Key: "BITPIX", Value: 8},
			{Key: "NAXIS", Value: 0},
			{Key: "EXTEND", Value: true},
		}
		if err := f.writeHDU(primary, nil, nil); err != nil {
			return err
		}
	}
	return f.writeCompressed(width, height, data, user, codec)
}

func (f *File) writePlain(width, height int, data []byte, user []string) error {
	var hdr []Card
	if len(f.hdus) == 0 {
		hdr = append(hdr, Card{Key: "SIMPLE", Value: true, Comment: "file does conform to FITS standard"})
	} else {
		hdr = append(hdr, Card{Key: "XTENSION", Value: "IMAGE", Comment: "image extension"})
	}
	hdr = append(hdr,
		Card{Key: "BITPIX", Value: 8, Comment: "unsigned 8 bit samples"},
		Card{Key: "NAXIS", Value: 2},
		Card{Key: "NAXIS1", Value: width},
		Card{Key: "NAXIS2", Value: height},
	)
	if len(f.hdus) == 0 {
		hdr = append(hdr, Card{Key: "EXTEND", Value: true})
	} else {
		hdr = append(hdr, Card{Key: "PCOUNT", Value: 0}, Card{Key: "GCOUNT", Value: 1})
	}
	return f.writeHDU(hdr, user, data)
}

func (f *File) writeCompressed(width, height int, data []byte, user []string, codec *tileCodec) error {
	desc := make([]byte, 8*height)
	var heap []byte
	maxlen := 0
	for y := 0; y < height; y++ {
		tile, count, err := codec.encode(data[y*width : (y+1)*width])
		if err != nil {
			return err
		}
		binary.BigEndian.PutUint32(desc[8*y:], uint32(count))
		binary.BigEndian.PutUint32(desc[8*y+4:], uint32(len(heap)))
		heap = append(heap, tile...)
		maxlen = max(maxlen, count)
	}

	hdr := []Card{
		{Key: "XTENSION", Value: "BINTABLE", Comment: "binary table extension"},
		{Key: "BITPIX", Value: 8},
		{Key: "NAXIS", Value: 2},
		{Key: "NAXIS1", Value: 8, Comment: "width of table in bytes"},
		{Key: "NAXIS2", Value: height, Comment: "number of tiles"},
		{Key: "PCOUNT", Value: len(heap), Comment: "heap size"},
		{Key: "GCOUNT", Value: 1},
		{Key: "TFIELDS", Value: 1},
		{Key: "TTYPE1", Value: "COMPRESSED_DATA"},
		{Key: "TFORM1", Value: codec.tform(maxlen)},
		{Key: "ZIMAGE", Value: true, Comment: "extension contains compressed image"},
		{Key: "ZBITPIX", Value: 8},
		{Key: "ZNAXIS", Value: 2},
		{Key: "ZNAXIS1", Value: width},
		{Key: "ZNAXIS2", Value: height},
		{Key: "ZTILE1", Value: width},
		{Key: "ZTILE2", Value: 1},
		{Key: "ZCMPTYPE", Value: codec.comp.String()},
	}
	if codec.comp == CompressRice {
		hdr = append(hdr,
			Card{Key: "ZNAME1", Value: "BLOCKSIZE"},
			Card{Key: "ZVAL1", Value: codec.blocksize},
			Card{Key: "ZNAME2", Value: "BYTEPIX"},
			Card{Key: "ZVAL2", Value: codec.bytepix},
		)
	}
	return f.writeHDU(hdr, user, append(desc, heap...))
}

// writeHDU writes a header made of hdr then user card images, followed by
// data, both padded to whole blocks, at the end of the file.
func (f *File) writeHDU(hdr []Card, user []string, data []byte) error {
	var sb strings.Builder
	for _, c := range hdr {
		line, err := c.format()
		if err != nil {
			return err
		}
		sb.WriteString(line)
	}
	for _, line := range user {
		sb.WriteString(line)
	}
	sb.WriteString(pad("END"))
	header := []byte(sb.String())
	for len(header)%BlockSize != 0 {
		header = append(header, ' ')
	}

	buf := make([]byte, len(header)+int(padded(int64(len(data)))))
	copy(buf, header)
	copy(buf[len(header):], data)
	if _, err := f.f.WriteAt(buf, f.end); err != nil {
		return fmt.Errorf("fits: write %s: %w: %w", f.path, mask.ErrFileIO, err)
	}

	cards := make([]Card, 0, len(hdr)+len(user))
	cards = append(cards, hdr...)
	for _, line := range user {
		cards = append(cards, parseCard(line))
	}
	h := newHDU(cards)
	h.dataOff = f.end + int64(len(header))
	h.dataLen = int64(len(data))
	f.hdus = append(f.hdus, h)
	f.end += int64(len(buf))

	mask.Logger().Debug("fits: wrote HDU", "path", f.path, "hdu", len(f.hdus)-1,
		"bytes", len(buf), "cards", len(cards))
	return nil
}
