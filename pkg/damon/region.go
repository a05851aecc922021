// Copyright 2021 Intel Corporation. All Rights Reserved.
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

package damon

import "fmt"

// Region is a contiguous address range treated as a single access unit.
// A Region is owned by exactly one Target; ownership is positional (a
// Target's regions slice), never a back-pointer, per the "no back-pointers
// from region to target" design note.
type Region struct {
	AR             AddrRange
	SamplingAddr   uint64
	NrAccesses     uint32
	Age            uint32
	LastNrAccesses uint32
}

// NewRegion constructs a Region with zeroed counters, mirroring
// damon_new_region() in mm/damon.c.
func NewRegion(start, end uint64) *Region {
	return &Region{AR: NewAddrRange(start, end)}
}

// Size returns the number of bytes the region's address range covers.
func (r *Region) Size() uint64 {
	return r.AR.Size()
}

func (r *Region) String() string {
	return fmt.Sprintf("%s nr_accesses=%d age=%d", r.AR, r.NrAccesses, r.Age)
}

// AddRegionTail appends region to the end of target's region list,
// mirroring damon_add_region().
func AddRegionTail(region *Region, target *Target) {
	target.regions = append(target.regions, region)
}

// InsertRegion inserts region between prev and next, which must be
// adjacent siblings already present in target's region list (prev.AR.End
// <= region.AR.Start <= region.AR.End <= next.AR.Start). Mirrors
// damon_insert_region().
func InsertRegion(target *Target, region, prev, next *Region) error {
	prevIdx := target.indexOf(prev)
	nextIdx := target.indexOf(next)
	if prevIdx < 0 || nextIdx != prevIdx+1 {
		return fmt.Errorf("damon: insert_region: prev/next are not adjacent siblings")
	}
	target.regions = append(target.regions, nil)
	copy(target.regions[nextIdx+1:], target.regions[nextIdx:])
	target.regions[nextIdx] = region
	return nil
}

// DestroyRegion detaches region from target and releases it. Mirrors
// damon_destroy_region() (damon_del_region + damon_free_region).
func DestroyRegion(region *Region, target *Target) {
	idx := target.indexOf(region)
	if idx < 0 {
		return
	}
	target.regions = append(target.regions[:idx], target.regions[idx+1:]...)
}

// NthRegion returns the i'th region of target by slice index, mirroring
// the debugfs interface's nth_region() helper.
func NthRegion(target *Target, i int) *Region {
	if i < 0 || i >= len(target.regions) {
		return nil
	}
	return target.regions[i]
}
