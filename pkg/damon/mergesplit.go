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

// kdamondMergeRegions merges adjacent regions with similar access
// frequencies across every target of ctx, mirroring
// kdamond_merge_regions()/damon_merge_regions_of() in mm/damon.c.
func kdamondMergeRegions(ctx *Context, threshold uint32) {
	for _, t := range ctx.targets {
		mergeRegionsOf(t, threshold)
	}
}

// mergeRegionsOf scans t's regions in order, merging cur into prev
// whenever they touch and their nr_accesses differ by at most threshold.
func mergeRegionsOf(t *Target, threshold uint32) {
	merged := make([]*Region, 0, len(t.regions))
	for _, r := range t.regions {
		if len(merged) > 0 {
			prev := merged[len(merged)-1]
			if prev.AR.End == r.AR.Start && diffU32(prev.NrAccesses, r.NrAccesses) <= threshold {
				mergeTwoRegions(prev, r)
				continue
			}
		}
		merged = append(merged, r)
	}
	t.regions = merged
}

// mergeTwoRegions folds r into l: l's counters become the size-weighted
// average of the two, l's range absorbs r's, and r is discarded. Mirrors
// damon_merge_two_regions().
func mergeTwoRegions(l, r *Region) {
	lSz, rSz := l.Size(), r.Size()
	total := lSz + rSz
	l.NrAccesses = uint32((uint64(l.NrAccesses)*lSz + uint64(r.NrAccesses)*rSz) / total)
	l.Age = uint32((uint64(l.Age)*lSz + uint64(r.Age)*rSz) / total)
	l.AR.End = r.AR.End
}

// kdamondSplitRegions splits every region in ctx into nr_subs pieces when
// the total region count across all targets is at most
// max_nr_regions/2, mirroring kdamond_split_regions(). The escape-the-
// local-minimum widening to 3 subregions when the total hasn't moved
// since the last split and is still well under max_nr_regions/3 is
// carried verbatim from the original.
func kdamondSplitRegions(ctx *Context) {
	total := 0
	for _, t := range ctx.targets {
		total += len(t.regions)
	}

	if uint64(total) > ctx.Attrs.MaxNrRegions/2 {
		return
	}

	nrSubs := 2
	if ctx.lastSplitNrRegions == total && uint64(total) < ctx.Attrs.MaxNrRegions/3 {
		nrSubs = 3
	}

	for _, t := range ctx.targets {
		splitRegionsOf(ctx, t, nrSubs)
	}
	ctx.lastSplitNrRegions = total
}

// splitRegionsOf splits every region of t into up to nrSubs pieces,
// mirroring damon_split_regions_of(). Each split picks sz_left as a
// random 10%-90% slice of the current piece's size, aligned down to
// MinRegion; the left piece then becomes the next candidate for another
// split, exactly as damon_split_region_at() chains.
func splitRegionsOf(ctx *Context, t *Target, nrSubs int) {
	out := make([]*Region, 0, len(t.regions)*nrSubs)
	for _, r := range t.regions {
		pieces := splitOneRegion(ctx, r, nrSubs)
		out = append(out, pieces...)
	}
	t.regions = out
}

// splitOneRegion repeatedly peels a right remainder off r, shrinking r in
// place to its own left sub-region, up to nrSubs-1 times, while r's
// current size still exceeds 2*MinRegion. Mirrors
// damon_split_regions_of()'s inner loop, which keeps re-splitting the
// same (shrinking) left region and chains each new right remainder in
// right after it via damon_split_region_at().
func splitOneRegion(ctx *Context, r *Region, nrSubs int) []*Region {
	sz := r.Size()
	remainders := make([]*Region, 0, nrSubs-1)

	for i := 0; i < nrSubs-1 && sz > 2*MinRegion; i++ {
		// Randomly select size of the left sub-region to be at least
		// 10 percent and at most 90% of the current region.
		k := uint64(ctx.randIntn(9)) // [1, 9]
		szLeft := AlignDown(k*sz/10, MinRegion)
		if szLeft == 0 || szLeft >= sz {
			continue
		}

		remainderStart := r.AR.Start + szLeft
		remainder := NewRegion(remainderStart, r.AR.End)
		remainder.NrAccesses = r.NrAccesses
		remainder.Age = r.Age
		remainder.LastNrAccesses = r.LastNrAccesses

		r.AR.End = remainderStart
		remainders = append(remainders, remainder)
		sz = r.Size()
	}

	pieces := make([]*Region, 0, len(remainders)+1)
	pieces = append(pieces, r)
	for i := len(remainders) - 1; i >= 0; i-- {
		pieces = append(pieces, remainders[i])
	}
	return pieces
}
