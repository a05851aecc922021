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

// Target is a monitored address space. Its regions form an ordered,
// pairwise-disjoint partition maintained by Target's owning Context.
type Target struct {
	// ID is an opaque identifier, e.g. a pid for the vaddr primitive.
	// Its meaning is defined entirely by the context's primitive.
	ID uint64

	regions []*Region
}

// NewTarget constructs an empty Target, mirroring damon_new_target().
func NewTarget(id uint64) *Target {
	return &Target{ID: id}
}

// AddTarget appends t to the end of ctx's target list, mirroring
// damon_add_target().
func AddTarget(ctx *Context, t *Target) {
	ctx.targets = append(ctx.targets, t)
}

// DestroyTarget removes t from ctx and releases its regions, mirroring
// damon_destroy_target().
func DestroyTarget(ctx *Context, t *Target) {
	for i, ct := range ctx.targets {
		if ct == t {
			ctx.targets = append(ctx.targets[:i], ctx.targets[i+1:]...)
			return
		}
	}
}

// NrRegions returns the number of regions currently in t, mirroring
// damon_nr_regions().
func NrRegions(t *Target) int {
	return len(t.regions)
}

// Regions returns t's regions in address order. The returned slice
// aliases Target's internal storage and must not be mutated by callers
// outside the worker.
func (t *Target) Regions() []*Region {
	return t.regions
}

func (t *Target) indexOf(r *Region) int {
	for i, cand := range t.regions {
		if cand == r {
			return i
		}
	}
	return -1
}
