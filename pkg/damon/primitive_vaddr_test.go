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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvenSplitMatchesS2Scenario(t *testing.T) {
	// spec.md S2: [0, 0xA000) split into 3 pieces, last absorbs the
	// remainder. MinRegion here is the host page size, not the spec's
	// 0x1000, so scale the scenario's numbers by it.
	ar := AddrRange{Start: 0, End: 10 * MinRegion}
	out := evenSplit(ar, 3)
	require.Len(t, out, 3)
	require.Equal(t, AddrRange{Start: 0, End: 3 * MinRegion}, out[0].AR)
	require.Equal(t, AddrRange{Start: 3 * MinRegion, End: 6 * MinRegion}, out[1].AR)
	require.Equal(t, AddrRange{Start: 6 * MinRegion, End: 10 * MinRegion}, out[2].AR)
}

func TestEvenSplitStopsWhenNothingLeftToSplit(t *testing.T) {
	out := evenSplit(AddrRange{Start: 0, End: MinRegion}, 100)
	require.Equal(t, 1, len(out))
}

func TestBuildInitialRegionsThreeBigRegionsSplitsOnlyMiddle(t *testing.T) {
	big := []AddrRange{
		{Start: 0, End: MinRegion},
		{Start: 10 * MinRegion, End: 20 * MinRegion},
		{Start: 100 * MinRegion, End: 101 * MinRegion},
	}
	out := buildInitialRegions(big, 5)
	require.Len(t, out, 5)
	require.Equal(t, big[0], out[0].AR)
	require.Equal(t, big[2], out[4].AR)
	// The three middle pieces must exactly tile the middle big region,
	// contiguously and in address order.
	require.Equal(t, big[1].Start, out[1].AR.Start)
	require.Equal(t, big[1].End, out[3].AR.End)
	require.Equal(t, out[1].AR.End, out[2].AR.Start)
	require.Equal(t, out[2].AR.End, out[3].AR.Start)
}

func TestBuildInitialRegionsReachesMinNrRegionsWithFewerBigRegions(t *testing.T) {
	one := buildInitialRegions([]AddrRange{{Start: 0, End: 20 * MinRegion}}, 5)
	require.Len(t, one, 5)

	two := buildInitialRegions([]AddrRange{
		{Start: 0, End: 20 * MinRegion},
		{Start: 30 * MinRegion, End: 31 * MinRegion},
	}, 5)
	require.Len(t, two, 5)
}

func TestResyncRegionsDropsRegionsOutsideEveryBigRegion(t *testing.T) {
	target := NewTarget(1)
	stale := NewRegion(50*MinRegion, 51*MinRegion)
	AddRegionTail(stale, target)

	resyncRegions(target, []AddrRange{{Start: 0, End: MinRegion}})

	require.Len(t, target.regions, 1)
	require.NotSame(t, stale, target.regions[0])
	require.Equal(t, AddrRange{Start: 0, End: MinRegion}, target.regions[0].AR)
}

func TestResyncRegionsInsertsFreshRegionForUncoveredBigRegion(t *testing.T) {
	target := NewTarget(1)

	resyncRegions(target, []AddrRange{
		{Start: 0, End: MinRegion},
		{Start: 10 * MinRegion, End: 11 * MinRegion},
	})

	require.Len(t, target.regions, 2)
	require.Equal(t, AddrRange{Start: 0, End: MinRegion}, target.regions[0].AR)
	require.Equal(t, AddrRange{Start: 10 * MinRegion, End: 11 * MinRegion}, target.regions[1].AR)
}

func TestResyncRegionsStretchesBoundariesAndPreservesInnerRegions(t *testing.T) {
	target := NewTarget(1)
	first := NewRegion(2*MinRegion, 4*MinRegion)
	first.NrAccesses = 7
	inner := NewRegion(4*MinRegion, 6*MinRegion)
	inner.NrAccesses = 9
	inner.Age = 3
	last := NewRegion(6*MinRegion, 8*MinRegion)
	last.NrAccesses = 11
	AddRegionTail(first, target)
	AddRegionTail(inner, target)
	AddRegionTail(last, target)

	// The big region now spans wider than the old partition on both
	// ends; first/last must stretch to match while inner survives
	// untouched, counters and all.
	resyncRegions(target, []AddrRange{{Start: 0, End: 10 * MinRegion}})

	require.Len(t, target.regions, 3)
	require.Same(t, first, target.regions[0])
	require.Equal(t, uint64(0), target.regions[0].AR.Start)
	require.Equal(t, uint32(7), target.regions[0].NrAccesses)

	require.Same(t, inner, target.regions[1])
	require.Equal(t, AddrRange{Start: 4 * MinRegion, End: 6 * MinRegion}, target.regions[1].AR)
	require.Equal(t, uint32(9), target.regions[1].NrAccesses)
	require.Equal(t, uint32(3), target.regions[1].Age)

	require.Same(t, last, target.regions[2])
	require.Equal(t, 10*MinRegion, target.regions[2].AR.End)
	require.Equal(t, uint32(11), target.regions[2].NrAccesses)
}

func TestMadviseAdviceRejectsMigrateAndStat(t *testing.T) {
	_, err := madviseAdvice(Migrate)
	require.Error(t, err)
	_, err = madviseAdvice(Stat)
	require.Error(t, err)
}

func TestMadviseAdviceAcceptsKnownActions(t *testing.T) {
	for _, a := range []Action{WillNeed, Cold, PageOut, HugePage, NoHugePage} {
		_, err := madviseAdvice(a)
		require.NoError(t, err)
	}
}
