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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeTwoRegionsWeightsByNrAccesses(t *testing.T) {
	l := NewRegion(0, 100)
	l.NrAccesses = 10
	l.Age = 4
	r := NewRegion(100, 300) // twice the size of l
	r.NrAccesses = 40
	r.Age = 1

	mergeTwoRegions(l, r)

	require.Equal(t, uint64(0), l.AR.Start)
	require.Equal(t, uint64(300), l.AR.End)
	// (10*100 + 40*200) / 300 = 30
	require.Equal(t, uint32(30), l.NrAccesses)
	// (4*100 + 1*200) / 300 = 2
	require.Equal(t, uint32(2), l.Age)
}

func TestMergeRegionsOfMergesOnlyAdjacentSimilarRegions(t *testing.T) {
	target := NewTarget(1)
	a := NewRegion(0, 100)
	a.NrAccesses = 10
	b := NewRegion(100, 200) // adjacent to a, close nr_accesses
	b.NrAccesses = 12
	c := NewRegion(300, 400) // not adjacent to b (gap)
	c.NrAccesses = 13
	AddRegionTail(a, target)
	AddRegionTail(b, target)
	AddRegionTail(c, target)

	mergeRegionsOf(target, 5)

	require.Len(t, target.regions, 2)
	require.Equal(t, uint64(0), target.regions[0].AR.Start)
	require.Equal(t, uint64(200), target.regions[0].AR.End)
	require.Equal(t, uint64(300), target.regions[1].AR.Start)
}

func TestMergeRegionsOfLeavesDissimilarRegionsApart(t *testing.T) {
	target := NewTarget(1)
	a := NewRegion(0, 100)
	a.NrAccesses = 0
	b := NewRegion(100, 200)
	b.NrAccesses = 100
	AddRegionTail(a, target)
	AddRegionTail(b, target)

	mergeRegionsOf(target, 5)

	require.Len(t, target.regions, 2)
}

func TestKdamondSplitRegionsRespectsMaxNrRegionsGate(t *testing.T) {
	ctx := NewContext()
	ctx.SeedRandom(1)
	ctx.Attrs.MaxNrRegions = 4
	target := NewTarget(1)
	AddRegionTail(NewRegion(0, 4*MinRegion), target)
	AddRegionTail(NewRegion(4*MinRegion, 8*MinRegion), target)
	AddRegionTail(NewRegion(8*MinRegion, 12*MinRegion), target)
	AddTarget(ctx, target)

	// 3 regions > max_nr_regions/2 == 2, so no split should happen.
	kdamondSplitRegions(ctx)
	require.Len(t, target.regions, 3)
}

func TestKdamondSplitRegionsSplitsWhenBelowGate(t *testing.T) {
	ctx := NewContext()
	ctx.SeedRandom(1)
	ctx.Attrs.MaxNrRegions = 100
	target := NewTarget(1)
	AddRegionTail(NewRegion(0, 20*MinRegion), target)
	AddTarget(ctx, target)

	kdamondSplitRegions(ctx)

	require.Greater(t, len(target.regions), 1)
	// Regions must remain contiguous and in address order after a split.
	for i := 1; i < len(target.regions); i++ {
		require.Equal(t, target.regions[i-1].AR.End, target.regions[i].AR.Start)
	}
	require.Equal(t, uint64(0), target.regions[0].AR.Start)
	require.Equal(t, uint64(20*MinRegion), target.regions[len(target.regions)-1].AR.End)
}

func TestSplitOneRegionProducesAscendingAdjacentPieces(t *testing.T) {
	ctx := NewContext()
	ctx.SeedRandom(42)
	r := NewRegion(0, 30*MinRegion)
	r.NrAccesses = 7
	r.Age = 2

	pieces := splitOneRegion(ctx, r, 3)

	require.GreaterOrEqual(t, len(pieces), 1)
	require.Equal(t, uint64(0), pieces[0].AR.Start)
	require.Equal(t, uint64(30*MinRegion), pieces[len(pieces)-1].AR.End)
	for i := 1; i < len(pieces); i++ {
		require.Equal(t, pieces[i-1].AR.End, pieces[i].AR.Start)
		// Counters are carried forward from the region being split.
		require.Equal(t, uint32(7), pieces[i].NrAccesses)
		require.Equal(t, uint32(2), pieces[i].Age)
	}
}

func TestDiffU32(t *testing.T) {
	require.Equal(t, uint32(5), diffU32(10, 5))
	require.Equal(t, uint32(5), diffU32(5, 10))
	require.Equal(t, uint32(0), diffU32(5, 5))
}
