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

import "time"

// runWorker is the sampling loop: one goroutine per started Context,
// grounded step-for-step on kdamond_fn in mm/damon.c and mm/damon/core.c.
func runWorker(ctx *Context) {
	defer onWorkerExit(ctx)

	log.Infof("kdamond starts")

	if ctx.primitive != nil {
		if err := ctx.primitive.InitTargetRegions(ctx); err != nil {
			log.Errorf("init_target_regions failed: %s", err)
		}
	}
	ctx.lastAggregation = time.Now()
	ctx.lastRegionsUpdate = ctx.lastAggregation

	invoke(ctx, ctx.Callbacks.BeforeStart)

	for !kdamondNeedStop(ctx) {
		if ctx.primitive != nil {
			ctx.primitive.PrepareAccessChecks(ctx)
		}
		invoke(ctx, ctx.Callbacks.AfterSampling)

		sleepSampleInterval(ctx)

		var maxNrAccesses uint32
		if ctx.primitive != nil {
			maxNrAccesses = ctx.primitive.CheckAccesses(ctx)
		}

		now := time.Now()
		if uint64(now.Sub(ctx.lastAggregation).Microseconds()) >= ctx.Attrs.AggrInterval {
			invoke(ctx, ctx.Callbacks.AfterAggregation)

			threshold := maxNrAccesses / mergeThresholdDivisor
			kdamondMergeRegions(ctx, threshold)
			applySchemes(ctx)
			kdamondResetAggregated(ctx)
			kdamondSplitRegions(ctx)

			ctx.lastAggregation = now
		}

		if uint64(now.Sub(ctx.lastRegionsUpdate).Microseconds()) >= ctx.Attrs.RegionsUpdateInterval {
			if ctx.primitive != nil {
				if err := ctx.primitive.UpdateTargetRegions(ctx); err != nil {
					log.Warnf("update_target_regions failed, skipping this cycle: %s", err)
				}
			}
			ctx.lastRegionsUpdate = now
		}
	}

	for _, t := range ctx.targets {
		for _, r := range append([]*Region(nil), t.regions...) {
			DestroyRegion(r, t)
		}
	}

	invoke(ctx, ctx.Callbacks.BeforeTerminate)
	if ctx.primitive != nil {
		ctx.primitive.Cleanup(ctx)
	}

	log.Infof("kdamond finishes")
}

// sleepSampleInterval sleeps exactly sample_interval microseconds,
// mirroring usleep_range(sample_interval, sample_interval+1) — a tight,
// unconditional sleep between samples.
func sleepSampleInterval(ctx *Context) {
	time.Sleep(time.Duration(ctx.Attrs.SampleInterval) * time.Microsecond)
}

// kdamondNeedStop reports whether the worker should stop: either the
// caller requested it, or every target has become invalid. Vacuously true
// when there are no targets, mirroring kdamond_need_stop()'s "all targets
// dead" check over an empty task list.
func kdamondNeedStop(ctx *Context) bool {
	if ctx.stopRequested() {
		return true
	}
	for _, t := range ctx.targets {
		if ctx.primitive == nil || ctx.primitive.TargetValid(t) {
			return false
		}
	}
	return true
}

// kdamondResetAggregated zeroes nr_accesses for every region of every
// target, mirroring kdamond_reset_aggregated(). Before zeroing a region,
// updateRegionAge updates its age and snapshots nr_accesses into
// last_nr_accesses, so the snapshot is preserved.
func kdamondResetAggregated(ctx *Context) {
	for _, t := range ctx.targets {
		for _, r := range t.regions {
			updateRegionAge(r)
			r.NrAccesses = 0
		}
	}
}

// updateRegionAge increments a region's age for another aggregation
// interval survived "unchanged", or resets it to zero when nr_accesses
// changed significantly since the last aggregation, per the age-reset
// heuristic design note (spec.md §4.4 / §9).
func updateRegionAge(r *Region) {
	delta := diffU32(r.NrAccesses, r.LastNrAccesses)
	maxSeen := r.NrAccesses
	if r.LastNrAccesses > maxSeen {
		maxSeen = r.LastNrAccesses
	}
	threshold := maxSeen / defaultSignificantChangeDivisor
	if delta > threshold {
		r.Age = 0
	} else {
		r.Age++
	}
	r.LastNrAccesses = r.NrAccesses
}

func diffU32(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
