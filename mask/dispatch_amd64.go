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

//go:build amd64

package mask

import "golang.org/x/sys/cpu"

func detectLevel() DispatchLevel {
	// POPCNT shipped with Nehalem/Barcelona; bits.OnesCount64 lowers to it
	// when present, otherwise the SWAR multiply wins.
	if cpu.X86.HasPOPCNT {
		return DispatchPOPCNT
	}
	return DispatchScalar
}
