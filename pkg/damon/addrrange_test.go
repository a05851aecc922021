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

func TestNewAddrRangeSwapsReversedArgs(t *testing.T) {
	ar := NewAddrRange(100, 50)
	require.Equal(t, uint64(50), ar.Start)
	require.Equal(t, uint64(100), ar.End)
}

func TestAddrRangeSize(t *testing.T) {
	ar := NewAddrRange(0x1000, 0x4000)
	require.Equal(t, uint64(0x3000), ar.Size())
}

func TestAddrRangeEmpty(t *testing.T) {
	require.True(t, NewAddrRange(10, 10).Empty())
	require.False(t, NewAddrRange(10, 11).Empty())
}

func TestAddrRangeContains(t *testing.T) {
	ar := NewAddrRange(10, 20)
	require.True(t, ar.Contains(10))
	require.True(t, ar.Contains(19))
	require.False(t, ar.Contains(20))
	require.False(t, ar.Contains(9))
}

func TestAddrRangeIntersects(t *testing.T) {
	require.True(t, NewAddrRange(0, 10).Intersects(NewAddrRange(5, 15)))
	require.False(t, NewAddrRange(0, 10).Intersects(NewAddrRange(10, 20)))
	require.False(t, NewAddrRange(0, 10).Intersects(NewAddrRange(20, 30)))
}

func TestAlignDown(t *testing.T) {
	require.Equal(t, uint64(0x1000), AlignDown(0x1fff, 0x1000))
	require.Equal(t, uint64(0x2000), AlignDown(0x2000, 0x1000))
	require.Equal(t, uint64(0), AlignDown(0x500, 0x1000))
}
