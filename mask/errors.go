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
	"errors"
	"fmt"
)

// Error taxonomy shared by mask and its sub-packages.
var (
	// ErrNullInput is returned when a required mask, image or buffer is nil.
	ErrNullInput = errors.New("mask: null input")

	// ErrInvalidInput is returned when an argument violates a documented
	// domain constraint, such as a non-positive dimension or an even kernel side.
	ErrInvalidInput = errors.New("mask: invalid input")

	// ErrIllegalInput is a refinement of ErrInvalidInput used for illegal
	// windows, steps, directions and flag combinations.
	// errors.Is(ErrIllegalInput, ErrInvalidInput) reports true.
	ErrIllegalInput = fmt.Errorf("mask: illegal input: %w", ErrInvalidInput)

	// ErrIncompatibleInput is returned when two otherwise valid operands
	// have mismatched sizes.
	ErrIncompatibleInput = errors.New("mask: incompatible input")

	// ErrAccessOutOfRange is returned when a window or kernel exceeds the
	// addressable extent.
	ErrAccessOutOfRange = errors.New("mask: access out of range")

	// ErrDataNotFound is returned for structurally absent data: an empty
	// kernel, or a file unit without image data.
	ErrDataNotFound = errors.New("mask: data not found")

	// ErrUnsupportedMode is returned for flag or aliasing combinations that
	// are not implemented.
	ErrUnsupportedMode = errors.New("mask: unsupported mode")

	// ErrFileIO is returned when reading or writing a sink or file fails.
	ErrFileIO = errors.New("mask: file i/o error")

	// ErrBadFileFormat is returned when a file does not have the expected
	// structure.
	ErrBadFileFormat = errors.New("mask: bad file format")
)
