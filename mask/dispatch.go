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
	"os"
	"strconv"
)

// DispatchLevel identifies the family of word kernels in use.
type DispatchLevel int

const (
	// DispatchScalar uses portable SWAR arithmetic only: popcounts are
	// computed with the multiply/top-byte identity and sub-packages use
	// their general code paths.
	DispatchScalar DispatchLevel = iota

	// DispatchPOPCNT indicates an x86-64 CPU with the POPCNT instruction.
	DispatchPOPCNT

	// DispatchNEON indicates an arm64 CPU with Advanced SIMD (vector CNT).
	DispatchNEON
)

// String returns a human-readable name for the dispatch level.
func (d DispatchLevel) String() string {
	switch d {
	case DispatchScalar:
		return "scalar"
	case DispatchPOPCNT:
		return "popcnt"
	case DispatchNEON:
		return "neon"
	default:
		return "unknown"
	}
}

// currentLevel is resolved during package variable initialisation so that
// every init function in the package already sees the final value.
var currentLevel = resolveLevel()

func resolveLevel() DispatchLevel {
	if NoSimdEnv() {
		return DispatchScalar
	}
	return detectLevel()
}

// CurrentLevel returns the dispatch level selected for this process.
func CurrentLevel() DispatchLevel {
	return currentLevel
}

// CurrentName returns the name of the current dispatch level, e.g. "popcnt".
func CurrentName() string {
	return currentLevel.String()
}

// HasFastPaths reports whether specialised code paths may be used.
// It is false when BINMASK_NO_SIMD is set or no hardware support was found.
func HasFastPaths() bool {
	return currentLevel != DispatchScalar
}

// NoSimdEnv checks if the BINMASK_NO_SIMD environment variable is set.
// When set, the portable kernels are used regardless of CPU capabilities.
// Useful for testing and debugging.
func NoSimdEnv() bool {
	val := os.Getenv("BINMASK_NO_SIMD")
	if val == "" {
		return false
	}
	// Any non-empty value is considered true, but also parse as bool
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}
