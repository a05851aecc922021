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
	"fmt"
	"os"
	"strconv"
	"strings"
)

// procVMAs returns the address ranges of every mapped VMA of pid, in
// ascending address order, parsed from /proc/pid/maps. Grounded on
// procMaps() in pkg/memtier/proc.go, but unlike that tracker-side helper
// this keeps every mapping (not only anonymous/heap ones): the vaddr
// primitive needs the full VMA layout to find the gaps the "three big
// regions" construction splits on.
func procVMAs(pid int) ([]AddrRange, error) {
	path := "/proc/" + strconv.Itoa(pid) + "/maps"
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("damon: read %s: %w", path, err)
	}

	var vmas []AddrRange
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		dash := strings.IndexByte(line, '-')
		space := strings.IndexByte(line, ' ')
		if dash <= 0 || space <= dash {
			continue
		}
		start, err := strconv.ParseUint(line[:dash], 16, 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseUint(line[dash+1:space], 16, 64)
		if err != nil || end < start {
			continue
		}
		vmas = append(vmas, AddrRange{Start: start, End: end})
	}
	return vmas, nil
}
