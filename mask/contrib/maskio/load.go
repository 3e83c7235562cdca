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

package maskio

import (
	"errors"
	"fmt"

	"github.com/ajroetker/go-binmask/mask"
	"github.com/ajroetker/go-binmask/mask/contrib/fits"
)

// window is an inclusive 1-based pixel box.
type window struct {
	llx, lly, urx, ury int
}

// Load reads plane (0-based; 0 for 2-D images) of extension ext of the file
// at path. Nonzero samples become 1.
func Load(path string, plane, ext int) (*mask.Mask, error) {
	return loadFile(path, plane, ext, nil)
}

// LoadWindow is Load restricted to the pixels llx..urx, lly..ury (1-based,
// inclusive).
func LoadWindow(path string, plane, ext, llx, lly, urx, ury int) (*mask.Mask, error) {
	return loadFile(path, plane, ext, &window{llx, lly, urx, ury})
}

func loadFile(path string, plane, ext int, win *window) (m *mask.Mask, err error) {
	if path == "" {
		return nil, fmt.Errorf("maskio: load: %w", mask.ErrNullInput)
	}
	f, err := fits.OpenRead(path)
	if err != nil {
		return nil, fmt.Errorf("maskio: load: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			m, err = nil, errors.Join(err, cerr)
		}
	}()
	return decode(f, plane, ext, win)
}

// Decode reads plane of extension ext through r.
func Decode(r Reader, plane, ext int) (*mask.Mask, error) {
	return decode(r, plane, ext, nil)
}

// DecodeWindow reads the window llx..urx, lly..ury of plane of extension ext
// through r.
func DecodeWindow(r Reader, plane, ext, llx, lly, urx, ury int) (*mask.Mask, error) {
	return decode(r, plane, ext, &window{llx, lly, urx, ury})
}

func decode(r Reader, plane, ext int, win *window) (*mask.Mask, error) {
	if r == nil {
		return nil, fmt.Errorf("maskio: load: %w", mask.ErrNullInput)
	}
	if plane < 0 || ext < 0 {
		return nil, fmt.Errorf("maskio: load: plane %d of extension %d: %w", plane, ext, mask.ErrIllegalInput)
	}
	if err := r.MoveToExtension(ext); err != nil {
		return nil, fmt.Errorf("maskio: load: %w", err)
	}
	axes, err := r.Axes()
	if err != nil {
		return nil, fmt.Errorf("maskio: load: %w", err)
	}
	if len(axes) != 2 && len(axes) != 3 {
		return nil, fmt.Errorf("maskio: load: extension %d has %d axes, want 2 or 3: %w",
			ext, len(axes), mask.ErrDataNotFound)
	}
	for i, n := range axes {
		if n == 0 {
			return nil, fmt.Errorf("maskio: load: extension %d axis %d is empty: %w",
				ext, i+1, mask.ErrIncompatibleInput)
		}
	}
	nplanes := 1
	if len(axes) == 3 {
		nplanes = axes[2]
	}
	if plane >= nplanes {
		return nil, fmt.Errorf("maskio: load: plane %d of %d: %w", plane, nplanes, mask.ErrIllegalInput)
	}

	w := window{1, 1, axes[0], axes[1]}
	if win != nil {
		w = *win
		if w.llx < 1 || w.lly < 1 || w.urx < w.llx || w.ury < w.lly || w.urx > axes[0] || w.ury > axes[1] {
			return nil, fmt.Errorf("maskio: load: window (%d,%d)-(%d,%d) of a %dx%d image: %w",
				w.llx, w.lly, w.urx, w.ury, axes[0], axes[1], mask.ErrIllegalInput)
		}
	}
	lo, hi := []int{w.llx, w.lly}, []int{w.urx, w.ury}
	if len(axes) == 3 {
		lo, hi = append(lo, plane+1), append(hi, plane+1)
	}
	data, err := r.ReadBytes(lo, hi)
	if err != nil {
		return nil, fmt.Errorf("maskio: load: %w", err)
	}
	width, height := w.urx-w.llx+1, w.ury-w.lly+1
	if len(data) != width*height {
		return nil, fmt.Errorf("maskio: load: read %d bytes for a %dx%d window: %w",
			len(data), width, height, mask.ErrBadFileFormat)
	}
	for i, b := range data {
		if b != 0 {
			data[i] = mask.One
		}
	}
	m, err := mask.Wrap(width, height, data)
	if err != nil {
		return nil, fmt.Errorf("maskio: load: %w", err)
	}
	mask.Logger().Debug("maskio: loaded mask", "extension", ext, "plane", plane,
		"width", width, "height", height)
	return m, nil
}
