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

import (
	"fmt"
	"sort"
)

// AccessCheckOps is the pluggable primitive that gives "access" its
// address-space-specific meaning. Any method may be a no-op; the worker
// calls through an interface rather than nil-checking function pointers,
// so primitives that don't need a hook should just return nil/zero/true
// as documented per method.
type AccessCheckOps interface {
	// InitTargetRegions populates each target's region list. Called
	// once, before the first sample.
	InitTargetRegions(ctx *Context) error
	// UpdateTargetRegions re-synchronizes regions against the current
	// address-space map. Called every regions_update_interval.
	UpdateTargetRegions(ctx *Context) error
	// PrepareAccessChecks chooses a new random sampling address for
	// every region and marks its page "old". Called every
	// sample_interval.
	PrepareAccessChecks(ctx *Context)
	// CheckAccesses tests whether each region's sampled page is now
	// "young", incrementing NrAccesses where so, and returns the
	// maximum NrAccesses observed across all regions. Called every
	// sample_interval, after the sleep.
	CheckAccesses(ctx *Context) uint32
	// TargetValid reports whether monitoring should continue for t.
	// A primitive with no notion of liveness should always return
	// true.
	TargetValid(t *Target) bool
	// ApplyScheme performs the concrete action named by scheme on
	// region's address range.
	ApplyScheme(ctx *Context, t *Target, r *Region, scheme *Scheme) error
	// Cleanup releases primitive-owned state. Called once, after the
	// worker loop exits.
	Cleanup(ctx *Context)
}

// PrimitiveCreator constructs a new AccessCheckOps instance.
type PrimitiveCreator func() (AccessCheckOps, error)

var primitives = make(map[string]PrimitiveCreator)

// RegisterPrimitive registers a named primitive constructor, mirroring
// TrackerRegister in pkg/memtier/tracker.go.
func RegisterPrimitive(name string, creator PrimitiveCreator) {
	primitives[name] = creator
}

// PrimitiveList returns the names of all registered primitives, sorted.
func PrimitiveList() []string {
	keys := make([]string, 0, len(primitives))
	for k := range primitives {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewPrimitive constructs the named primitive.
func NewPrimitive(name string) (AccessCheckOps, error) {
	if creator, ok := primitives[name]; ok {
		return creator()
	}
	return nil, fmt.Errorf("damon: invalid primitive name %q", name)
}
