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
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// RecordWriter persists one aggregation snapshot per call to Write,
// matching the on-disk layout the debugfs "damon_aggregated" tracepoint
// feeds to damo's record file: a timestamp, followed by each target's id
// and region list. Binary fields are little-endian, mirroring the
// pagemap/kpageflags parsing convention in pkg/memtier/proc.go.
type RecordWriter interface {
	Write(ctx *Context) error
}

// FileRecordWriter writes snapshots to an underlying io.Writer in the
// wire format:
//
//	int64   now (unix nanoseconds)
//	uint32  nr_targets
//	for each target:
//	  uint64  id
//	  uint32  nr_regions
//	  for each region:
//	    uint64  start
//	    uint64  end
//	    uint32  nr_accesses
type FileRecordWriter struct {
	w io.Writer
}

// NewFileRecordWriter wraps w as a RecordWriter.
func NewFileRecordWriter(w io.Writer) *FileRecordWriter {
	return &FileRecordWriter{w: w}
}

// Write appends one snapshot of ctx's current targets and regions.
func (rw *FileRecordWriter) Write(ctx *Context) error {
	if err := binary.Write(rw.w, binary.LittleEndian, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("damon: record: write timestamp: %w", err)
	}
	if err := binary.Write(rw.w, binary.LittleEndian, uint32(len(ctx.targets))); err != nil {
		return fmt.Errorf("damon: record: write nr_targets: %w", err)
	}
	for _, t := range ctx.targets {
		if err := binary.Write(rw.w, binary.LittleEndian, t.ID); err != nil {
			return fmt.Errorf("damon: record: write target id: %w", err)
		}
		if err := binary.Write(rw.w, binary.LittleEndian, uint32(len(t.regions))); err != nil {
			return fmt.Errorf("damon: record: write nr_regions: %w", err)
		}
		for _, r := range t.regions {
			if err := binary.Write(rw.w, binary.LittleEndian, r.AR.Start); err != nil {
				return fmt.Errorf("damon: record: write region start: %w", err)
			}
			if err := binary.Write(rw.w, binary.LittleEndian, r.AR.End); err != nil {
				return fmt.Errorf("damon: record: write region end: %w", err)
			}
			if err := binary.Write(rw.w, binary.LittleEndian, r.NrAccesses); err != nil {
				return fmt.Errorf("damon: record: write region nr_accesses: %w", err)
			}
		}
	}
	return nil
}

// RecordAfterAggregation returns a CallbackOps.AfterAggregation hook that
// feeds ctx's snapshot to rw on every aggregation, logging (not failing)
// on write error so a full disk doesn't stop monitoring.
func RecordAfterAggregation(rw RecordWriter) func(ctx *Context) bool {
	return func(ctx *Context) bool {
		if err := rw.Write(ctx); err != nil {
			log.Warnf("record write failed: %s", err)
		}
		return false
	}
}
