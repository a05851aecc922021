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
	"sync/atomic"
)

// Action is the concrete operation a matching Scheme applies to a region.
type Action int

const (
	// WillNeed hints the region will be accessed soon.
	WillNeed Action = iota
	// Cold hints the region is unlikely to be accessed soon.
	Cold
	// PageOut requests the region be reclaimed.
	PageOut
	// HugePage requests transparent huge pages for the region.
	HugePage
	// NoHugePage requests huge pages be avoided for the region.
	NoHugePage
	// Migrate requests the region's pages be moved to MigrateNode via
	// move_pages(2), adapted from pkg/memtier's NUMA-tiering Mover.
	Migrate
	// Stat only accumulates statistics; no primitive call is made.
	Stat
)

func (a Action) String() string {
	switch a {
	case WillNeed:
		return "willneed"
	case Cold:
		return "cold"
	case PageOut:
		return "pageout"
	case HugePage:
		return "hugepage"
	case NoHugePage:
		return "nohugepage"
	case Migrate:
		return "migrate"
	case Stat:
		return "stat"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Scheme is a DAMOS operation scheme: a (size, access-count, age)
// predicate paired with an action, applied to every region matching all
// three ranges at each aggregation.
type Scheme struct {
	MinSz          uint64
	MaxSz          uint64
	MinNrAccesses  uint32
	MaxNrAccesses  uint32
	MinAge         uint32
	MaxAge         uint32
	Action         Action
	// MigrateNode is the target NUMA node for the Migrate action; unused
	// by every other action.
	MigrateNode int

	statCount uint64
	statSz    uint64
}

// NewScheme builds a Scheme with the given predicate ranges and action.
func NewScheme(minSz, maxSz uint64, minNrAccesses, maxNrAccesses uint32, minAge, maxAge uint32, action Action) *Scheme {
	return &Scheme{
		MinSz:         minSz,
		MaxSz:         maxSz,
		MinNrAccesses: minNrAccesses,
		MaxNrAccesses: maxNrAccesses,
		MinAge:        minAge,
		MaxAge:        maxAge,
		Action:        action,
	}
}

// Matches reports whether region satisfies every predicate range of s.
func (s *Scheme) Matches(r *Region) bool {
	sz := r.Size()
	return sz >= s.MinSz && sz <= s.MaxSz &&
		r.NrAccesses >= s.MinNrAccesses && r.NrAccesses <= s.MaxNrAccesses &&
		r.Age >= s.MinAge && r.Age <= s.MaxAge
}

// recordMatch bumps the scheme's cumulative stats after a successful
// apply_scheme call for region r.
func (s *Scheme) recordMatch(r *Region) {
	atomic.AddUint64(&s.statCount, 1)
	atomic.AddUint64(&s.statSz, r.Size())
}

// Stat returns the scheme's cumulative (match count, matched bytes).
func (s *Scheme) Stat() (count, sz uint64) {
	return atomic.LoadUint64(&s.statCount), atomic.LoadUint64(&s.statSz)
}

// applySchemes runs every (target, region, scheme) triple of ctx that
// matches, in scheme-list order, invoking the primitive's ApplyScheme hook
// except for the Stat action, which only accumulates. Mirrors spec.md
// §4.5 / the DAMOS aggregation step of kdamond_fn.
func applySchemes(ctx *Context) {
	if len(ctx.schemes) == 0 {
		return
	}
	for _, t := range ctx.targets {
		for _, r := range t.regions {
			for _, s := range ctx.schemes {
				if !s.Matches(r) {
					continue
				}
				if s.Action != Stat && ctx.primitive != nil {
					if err := ctx.primitive.ApplyScheme(ctx, t, r, s); err != nil {
						log.Warnf("apply_scheme %s on target %d region %s failed: %s", s.Action, t.ID, r.AR, err)
						continue
					}
				}
				s.recordMatch(r)
			}
		}
	}
}
