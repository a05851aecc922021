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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestWorkerRunsAggregationsWithStubPrimitive drives a real worker
// goroutine for a handful of aggregation cycles using StubPrimitive (so
// it needs no kernel access) and checks it actually aggregates and
// eventually stops cleanly.
func TestWorkerRunsAggregationsWithStubPrimitive(t *testing.T) {
	ctx := NewContext()
	primitive, err := NewPrimitive("stub")
	require.NoError(t, err)
	require.NoError(t, ctx.SetPrimitive(primitive))
	require.NoError(t, ctx.SetTargets([]uint64{1}))
	require.NoError(t, ctx.SetAttrs(Attrs{
		SampleInterval:        500, // microseconds
		AggrInterval:          2000,
		RegionsUpdateInterval: 1000000,
		MinNrRegions:          3,
		MaxNrRegions:          20,
	}))

	AddRegionTail(NewRegion(0, 10*MinRegion), ctx.targets[0])

	var aggregations int32
	ctx.Callbacks.AfterAggregation = func(ctx *Context) bool {
		atomic.AddInt32(&aggregations, 1)
		return atomic.LoadInt32(&aggregations) >= 3 // stop after 3 aggregations
	}

	require.NoError(t, Start([]*Context{ctx}))

	require.Eventually(t, func() bool {
		return !ctx.Running()
	}, 2*time.Second, time.Millisecond, "worker did not stop after requested aggregations")

	require.GreaterOrEqual(t, atomic.LoadInt32(&aggregations), int32(3))
}

func TestWorkerStopsWhenNoValidTargets(t *testing.T) {
	ctx := NewContext()
	primitive, err := NewPrimitive("stub")
	require.NoError(t, err)
	require.NoError(t, ctx.SetPrimitive(primitive))
	ctx.Attrs.SampleInterval = 500
	ctx.Attrs.AggrInterval = 100000
	ctx.Attrs.RegionsUpdateInterval = 100000
	// No targets at all: kdamondNeedStop is vacuously true.

	require.NoError(t, Start([]*Context{ctx}))
	require.Eventually(t, func() bool {
		return !ctx.Running()
	}, time.Second, time.Millisecond)
}
