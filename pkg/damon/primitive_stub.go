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

func init() {
	RegisterPrimitive("stub", func() (AccessCheckOps, error) {
		return &StubPrimitive{}, nil
	})
}

// StubPrimitive is a no-op access-check primitive: every region is
// reported accessed on every sample, regardless of target or address.
// It requires no kernel support (no /proc/pid/pagemap, no
// process_madvise) and so is the primitive used by the package's own
// tests, mirroring the role TrackerStub plays in pkg/memtier.
type StubPrimitive struct{}

// InitTargetRegions leaves targets regionless; callers populate regions
// directly via AddRegionTail for deterministic tests.
func (p *StubPrimitive) InitTargetRegions(ctx *Context) error { return nil }

// UpdateTargetRegions is a no-op.
func (p *StubPrimitive) UpdateTargetRegions(ctx *Context) error { return nil }

// PrepareAccessChecks is a no-op: StubPrimitive needs no per-cycle state.
func (p *StubPrimitive) PrepareAccessChecks(ctx *Context) {}

// CheckAccesses marks every region of every target accessed this cycle.
func (p *StubPrimitive) CheckAccesses(ctx *Context) uint32 {
	var maxNr uint32
	for _, t := range ctx.targets {
		for _, r := range t.regions {
			r.NrAccesses++
			if r.NrAccesses > maxNr {
				maxNr = r.NrAccesses
			}
		}
	}
	return maxNr
}

// TargetValid always returns true.
func (p *StubPrimitive) TargetValid(t *Target) bool { return true }

// ApplyScheme does nothing and reports success, so applySchemes counts
// every match in the scheme's stats and those stats can be exercised in
// tests.
func (p *StubPrimitive) ApplyScheme(ctx *Context, t *Target, r *Region, scheme *Scheme) error {
	return nil
}

// Cleanup is a no-op.
func (p *StubPrimitive) Cleanup(ctx *Context) {}
