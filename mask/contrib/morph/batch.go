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
	"github.com/ajroetker/go-binmask/mask/contrib/workerpool"
)

// Job is one Filter call of a batch.
type Job struct {
	Dst, Src, Kernel *mask.Mask
	Op               Operation
	Border           Border
}

// Batch runs every job on pool and waits for all of them. Each job is a
// single-threaded Filter call; jobs run concurrently with each other, so no
// two jobs may write the same destination or write a mask another job reads.
// All jobs run even if some fail; the error joins every failure.
func Batch(pool *workerpool.Pool, jobs []Job) error {
	if pool == nil {
		return fmt.Errorf("morph: batch: nil pool: %w", mask.ErrNullInput)
	}
	mask.Logger().Debug("morph: batch", "jobs", len(jobs), "workers", pool.NumWorkers())
	return pool.ForEach(len(jobs), func(i int) error {
		j := jobs[i]
		if err := Filter(j.Dst, j.Src, j.Kernel, j.Op, j.Border); err != nil {
			return fmt.Errorf("morph: batch job %d: %w", i, err)
		}
		return nil
	})
}
