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

func TestPaddrTargetValidAlwaysTrue(t *testing.T) {
	p := &PaddrPrimitive{}
	require.True(t, p.TargetValid(NewTarget(0)))
	require.True(t, p.TargetValid(NewTarget(12345)))
}

func TestPaddrApplySchemeAlwaysRejected(t *testing.T) {
	p := &PaddrPrimitive{}
	ctx := NewContext()
	target := NewTarget(0)
	r := NewRegion(0, MinRegion)
	s := NewScheme(0, MinRegion, 0, 1000, 0, 1000, Stat)

	err := p.ApplyScheme(ctx, target, r, s)
	require.Error(t, err)
}

func TestPaddrInitAndUpdateAreNoOps(t *testing.T) {
	p := &PaddrPrimitive{}
	ctx := NewContext()
	target := NewTarget(0)
	AddRegionTail(NewRegion(0, MinRegion), target)
	AddTarget(ctx, target)

	require.NoError(t, p.InitTargetRegions(ctx))
	require.NoError(t, p.UpdateTargetRegions(ctx))
	require.Len(t, ctx.Targets()[0].Regions(), 1)
}

func TestPaddrRegisteredUnderName(t *testing.T) {
	ops, err := NewPrimitive("paddr")
	require.NoError(t, err)
	_, ok := ops.(*PaddrPrimitive)
	require.True(t, ok)
}
