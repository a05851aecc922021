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

func TestAddRegionTail(t *testing.T) {
	target := NewTarget(1)
	r1 := NewRegion(0, 100)
	r2 := NewRegion(100, 200)
	AddRegionTail(r1, target)
	AddRegionTail(r2, target)

	require.Equal(t, 2, NrRegions(target))
	require.Equal(t, r1, NthRegion(target, 0))
	require.Equal(t, r2, NthRegion(target, 1))
}

func TestInsertRegion(t *testing.T) {
	target := NewTarget(1)
	r1 := NewRegion(0, 100)
	r3 := NewRegion(200, 300)
	AddRegionTail(r1, target)
	AddRegionTail(r3, target)

	r2 := NewRegion(100, 200)
	require.NoError(t, InsertRegion(target, r2, r1, r3))
	require.Equal(t, []*Region{r1, r2, r3}, target.Regions())
}

func TestInsertRegionRejectsNonAdjacentSiblings(t *testing.T) {
	target := NewTarget(1)
	r1 := NewRegion(0, 100)
	r2 := NewRegion(100, 200)
	AddRegionTail(r1, target)
	AddRegionTail(r2, target)

	err := InsertRegion(target, NewRegion(50, 60), r2, r1)
	require.Error(t, err)
}

func TestDestroyRegion(t *testing.T) {
	target := NewTarget(1)
	r1 := NewRegion(0, 100)
	r2 := NewRegion(100, 200)
	AddRegionTail(r1, target)
	AddRegionTail(r2, target)

	DestroyRegion(r1, target)
	require.Equal(t, 1, NrRegions(target))
	require.Equal(t, r2, NthRegion(target, 0))
}

func TestNthRegionOutOfBounds(t *testing.T) {
	target := NewTarget(1)
	require.Nil(t, NthRegion(target, 0))
	require.Nil(t, NthRegion(target, -1))
}
