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
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileRecordWriterWritesExpectedLayout(t *testing.T) {
	ctx := NewContext()
	target := NewTarget(42)
	r := NewRegion(0, MinRegion)
	r.NrAccesses = 7
	AddRegionTail(r, target)
	AddTarget(ctx, target)

	var buf bytes.Buffer
	rw := NewFileRecordWriter(&buf)
	require.NoError(t, rw.Write(ctx))

	// 8 (timestamp) + 4 (nr_targets) + 8 (id) + 4 (nr_regions) + 8+8+4 (one region)
	require.Equal(t, 8+4+8+4+8+8+4, buf.Len())

	b := buf.Bytes()
	nrTargets := binary.LittleEndian.Uint32(b[8:12])
	require.Equal(t, uint32(1), nrTargets)

	id := binary.LittleEndian.Uint64(b[12:20])
	require.Equal(t, uint64(42), id)

	nrRegions := binary.LittleEndian.Uint32(b[20:24])
	require.Equal(t, uint32(1), nrRegions)

	start := binary.LittleEndian.Uint64(b[24:32])
	end := binary.LittleEndian.Uint64(b[32:40])
	nrAccesses := binary.LittleEndian.Uint32(b[40:44])
	require.Equal(t, uint64(0), start)
	require.Equal(t, MinRegion, end)
	require.Equal(t, uint32(7), nrAccesses)
}

func TestRecordAfterAggregationInvokesWriter(t *testing.T) {
	ctx := NewContext()
	AddTarget(ctx, NewTarget(1))

	var buf bytes.Buffer
	hook := RecordAfterAggregation(NewFileRecordWriter(&buf))
	stop := hook(ctx)

	require.False(t, stop)
	require.Greater(t, buf.Len(), 0)
}
