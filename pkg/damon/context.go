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
	"math/rand"
	"sync"
	"time"
)

// Attrs are a Context's time and region-count bounds.
type Attrs struct {
	// SampleInterval is the cadence, in microseconds, at which one
	// address per region is probed for access.
	SampleInterval uint64
	// AggrInterval is the period, in microseconds, over which
	// nr_accesses accumulates before being reset.
	AggrInterval uint64
	// RegionsUpdateInterval is the period, in microseconds, between
	// calls to the primitive's UpdateTargetRegions.
	RegionsUpdateInterval uint64
	// MinNrRegions is the number of regions the vaddr primitive's
	// initial partition gives each target; must be at least 3. Merging
	// may take a target below it.
	MinNrRegions uint64
	// MaxNrRegions gates splitting: regions are split only while the
	// total count across all targets is at most MaxNrRegions/2; must be
	// >= MinNrRegions.
	MaxNrRegions uint64
}

// Context is the top-level monitoring aggregate: its attributes, the
// targets and schemes it owns, and the primitive and callbacks that give
// the worker its behavior.
//
// Mutation of targets, schemes, primitive and attrs is permitted only
// when no worker is attached; once running, only the worker and its
// callbacks may mutate regions. The mutex below guards exactly the
// worker handle and stop flag, per the concurrency model in spec.md §5.
type Context struct {
	Attrs     Attrs
	Callbacks CallbackOps
	Record    RecordWriter

	primitive AccessCheckOps
	targets   []*Target
	schemes   []*Scheme

	rng *rand.Rand

	lastAggregation    time.Time
	lastRegionsUpdate  time.Time
	lastSplitNrRegions int

	mu   sync.Mutex
	stop bool
	done chan struct{} // non-nil while the worker is running
}

// NewContext constructs a Context with default attributes. Callers
// install a primitive with SetPrimitive and targets with SetTargets
// before Start; SetAttrs replaces the default attributes.
func NewContext() *Context {
	return &Context{
		Attrs: Attrs{
			SampleInterval:        5000,
			AggrInterval:          100000,
			RegionsUpdateInterval: 1000000,
			MinNrRegions:          10,
			MaxNrRegions:          1000,
		},
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SeedRandom reseeds the context's sampling-address/split-ratio random
// stream, for reproducible tests. The stream is worker-local: it is only
// ever touched from the worker goroutine, so no locking is needed (design
// note, spec.md §9).
func (ctx *Context) SeedRandom(seed int64) {
	ctx.rng = rand.New(rand.NewSource(seed))
}

// randUint64 returns a pseudo-random number in [lo, hi).
func (ctx *Context) randUint64(lo, hi uint64) uint64 {
	if ctx.rng == nil {
		ctx.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if hi <= lo {
		return lo
	}
	return lo + uint64(ctx.rng.Int63n(int64(hi-lo)))
}

// randIntn returns a pseudo-random int in [1, n].
func (ctx *Context) randIntn(n int) int {
	if ctx.rng == nil {
		ctx.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return 1 + ctx.rng.Intn(n)
}

// Primitive returns the context's access-check primitive.
func (ctx *Context) Primitive() AccessCheckOps {
	return ctx.primitive
}

// SetPrimitive installs the access-check primitive. Must not be called
// while a worker is attached.
func (ctx *Context) SetPrimitive(p AccessCheckOps) error {
	if ctx.Running() {
		return fmt.Errorf("damon: set primitive while running: %w", ErrBusy)
	}
	ctx.primitive = p
	return nil
}

// Targets returns the context's current targets in order.
func (ctx *Context) Targets() []*Target {
	return ctx.targets
}

// Schemes returns the context's current schemes in order.
func (ctx *Context) Schemes() []*Scheme {
	return ctx.schemes
}

// SetTargets destroys any existing targets and builds fresh ones, one per
// id, mirroring damon_set_targets(). Must not be called while a worker is
// attached.
func (ctx *Context) SetTargets(ids []uint64) error {
	if ctx.Running() {
		return fmt.Errorf("damon: set_targets while running: %w", ErrBusy)
	}
	ctx.targets = nil
	for _, id := range ids {
		t := NewTarget(id)
		AddTarget(ctx, t)
	}
	return nil
}

// SetAttrs validates and installs new monitoring attributes, mirroring
// damon_set_attrs(). Must not be called while a worker is attached.
func (ctx *Context) SetAttrs(attrs Attrs) error {
	if ctx.Running() {
		return fmt.Errorf("damon: set_attrs while running: %w", ErrBusy)
	}
	if attrs.MinNrRegions < 3 {
		return fmt.Errorf("damon: min_nr_regions (%d) must be at least 3: %w", attrs.MinNrRegions, ErrInvalid)
	}
	if attrs.MinNrRegions > attrs.MaxNrRegions {
		return fmt.Errorf("damon: min_nr_regions (%d) > max_nr_regions (%d): %w", attrs.MinNrRegions, attrs.MaxNrRegions, ErrInvalid)
	}
	ctx.Attrs = attrs
	return nil
}

// SetSchemes replaces the context's scheme list, mirroring
// damon_set_schemes(). Must not be called while a worker is attached.
func (ctx *Context) SetSchemes(schemes []*Scheme) error {
	if ctx.Running() {
		return fmt.Errorf("damon: set_schemes while running: %w", ErrBusy)
	}
	ctx.schemes = schemes
	return nil
}

// Running reports whether a worker is currently attached to ctx.
func (ctx *Context) Running() bool {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.done != nil
}

func (ctx *Context) requestStop() {
	ctx.mu.Lock()
	ctx.stop = true
	ctx.mu.Unlock()
}

func (ctx *Context) stopRequested() bool {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.stop
}
