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

func TestAttrsConfigParse(t *testing.T) {
	c := AttrsConfig{
		SampleInterval:        "5ms",
		AggrInterval:          "100ms",
		RegionsUpdateInterval: "1s",
		MinNrRegions:          10,
		MaxNrRegions:          1000,
	}
	attrs, err := c.Parse()
	require.NoError(t, err)
	require.Equal(t, uint64(5000), attrs.SampleInterval)
	require.Equal(t, uint64(100000), attrs.AggrInterval)
	require.Equal(t, uint64(1000000), attrs.RegionsUpdateInterval)
}

func TestSchemeConfigParse(t *testing.T) {
	c := SchemeConfig{
		MinSz: "4k", MaxSz: "2M",
		MinNrAccesses: 5, MaxNrAccesses: 100,
		MinAge: "3", MaxAge: "10",
		Action: "pageout",
	}
	s, err := c.Parse()
	require.NoError(t, err)
	require.Equal(t, uint64(4*1024), s.MinSz)
	require.Equal(t, uint64(2*1024*1024), s.MaxSz)
	require.Equal(t, PageOut, s.Action)
	require.Equal(t, uint32(3), s.MinAge)
	require.Equal(t, uint32(10), s.MaxAge)
}

func TestSchemeConfigParseRejectsUnknownAction(t *testing.T) {
	c := SchemeConfig{MinSz: "0", MaxSz: "0", Action: "not-a-real-action"}
	_, err := c.Parse()
	require.Error(t, err)
}

func TestContextConfigNewContextWiresEverything(t *testing.T) {
	cc := ContextConfig{
		Primitive: "stub",
		Attrs: AttrsConfig{
			SampleInterval: "1ms", AggrInterval: "10ms", RegionsUpdateInterval: "1s",
			MinNrRegions: 3, MaxNrRegions: 10,
		},
		Targets: []uint64{1, 2},
		Schemes: []SchemeConfig{
			{MinSz: "0", MaxSz: "1G", MinNrAccesses: 0, MaxNrAccesses: 1000, Action: "stat"},
		},
	}

	ctx, err := cc.NewContext()
	require.NoError(t, err)
	require.Len(t, ctx.Targets(), 2)
	require.Len(t, ctx.Schemes(), 1)
	require.NotNil(t, ctx.Primitive())
}

func TestContextConfigNewContextRejectsUnknownPrimitive(t *testing.T) {
	cc := ContextConfig{Primitive: "no-such-primitive"}
	_, err := cc.NewContext()
	require.Error(t, err)
}
