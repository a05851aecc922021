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

//go:build linux
// +build linux

package damon

import "fmt"

func init() {
	RegisterPrimitive("paddr", func() (AccessCheckOps, error) {
		return &PaddrPrimitive{}, nil
	})
}

// PaddrPrimitive is the physical-address access-check primitive. Unlike
// the vaddr primitive, it has no notion of per-process address spaces:
// a target's ID is not interpreted, each region's addresses are taken as
// physical addresses, and regions must be supplied by the caller via
// Context.SetTargets plus manual AddRegionTail calls, since there is no
// VMA layout to derive them from. Grounded on mm/damon/paddr.c, whose
// damon_pa_init_regions/damon_pa_update_regions are themselves no-ops
// for exactly this reason ("Users should set the initial monitoring
// target regions").
type PaddrPrimitive struct{}

// InitTargetRegions is a no-op: physical-address regions are supplied by
// the caller, mirroring damon_pa_init_regions().
func (p *PaddrPrimitive) InitTargetRegions(ctx *Context) error { return nil }

// UpdateTargetRegions is a no-op, mirroring damon_pa_update_regions().
func (p *PaddrPrimitive) UpdateTargetRegions(ctx *Context) error { return nil }

// PrepareAccessChecks picks a random sampling address within each region
// and marks its backing page idle, mirroring
// damon_pa_prepare_access_checks().
func (p *PaddrPrimitive) PrepareAccessChecks(ctx *Context) {
	for _, t := range ctx.targets {
		for _, r := range t.regions {
			if r.Size() == 0 {
				continue
			}
			r.SamplingAddr = r.AR.Start + AlignDown(ctx.randUint64(0, r.Size()), MinRegion)
			if err := setPageIdle(r.SamplingAddr / MinRegion); err != nil {
				log.Debugf("prepare_access_checks: pfn %d: %s", r.SamplingAddr/MinRegion, err)
			}
		}
	}
}

// CheckAccesses reads each region's sampled page's idle bit directly
// from /proc/kpageflags, treating the region's sampling address as
// already being a page frame number scaled by MinRegion, and returns the
// maximum NrAccesses observed. Mirrors damon_pa_check_accesses().
func (p *PaddrPrimitive) CheckAccesses(ctx *Context) uint32 {
	var maxNr uint32
	for _, t := range ctx.targets {
		for _, r := range t.regions {
			idle, err := pageIdle(r.SamplingAddr / MinRegion)
			if err == nil && !idle {
				r.NrAccesses++
			}
			if r.NrAccesses > maxNr {
				maxNr = r.NrAccesses
			}
		}
	}
	return maxNr
}

// TargetValid always returns true: physical address ranges have no
// liveness of their own to check, mirroring damon_pa_target_valid().
func (p *PaddrPrimitive) TargetValid(t *Target) bool { return true }

// ApplyScheme is unsupported for physical-address targets: there is no
// owning process to direct a process_madvise(2) call at.
func (p *PaddrPrimitive) ApplyScheme(ctx *Context, t *Target, r *Region, scheme *Scheme) error {
	return fmt.Errorf("damon: paddr primitive does not support apply_scheme action %s", scheme.Action)
}

// Cleanup is a no-op: PaddrPrimitive holds no per-target state.
func (p *PaddrPrimitive) Cleanup(ctx *Context) {}
