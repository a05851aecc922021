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
	"unsafe"

	"golang.org/x/sys/unix"
)

// mpolMFMove restricts move_pages(2) to pages exclusively owned by the
// calling process, mirroring MPOL_MF_MOVE in pkg/memtier/consts.go.
const mpolMFMove = 1 << 1

// movePages moves every page address in pages to node via move_pages(2),
// mirroring movePagesSyscall in pkg/memtier/move_linux.go. Unlike the
// teacher's version, this builds the nodes/status arrays as plain Go
// int32 slices instead of going through cgo's C.int, since nothing else
// in this package links against cgo.
func movePages(pid int, pages []uintptr, node int) error {
	count := len(pages)
	if count == 0 {
		return nil
	}
	nodes := make([]int32, count)
	status := make([]int32, count)
	for i := range nodes {
		nodes[i] = int32(node)
	}

	_, _, errno := unix.Syscall6(unix.SYS_MOVE_PAGES,
		uintptr(pid), uintptr(count),
		uintptr(unsafe.Pointer(&pages[0])),
		uintptr(unsafe.Pointer(&nodes[0])),
		uintptr(unsafe.Pointer(&status[0])),
		uintptr(mpolMFMove))
	if errno != 0 {
		return errno
	}
	return nil
}

// migrateRegion moves every page of r, in target, to scheme.MigrateNode:
// pages a scheme selects by access frequency are migrated the same way
// pages selected by heat class are elsewhere, via move_pages(2).
func migrateRegion(t *Target, r *Region, scheme *Scheme) error {
	pageSize := MinRegion
	nrPages := r.Size() / pageSize
	if nrPages == 0 {
		return nil
	}
	pages := make([]uintptr, nrPages)
	for i := range pages {
		pages[i] = uintptr(r.AR.Start + uint64(i)*pageSize)
	}
	if err := movePages(int(t.ID), pages, scheme.MigrateNode); err != nil {
		return fmt.Errorf("damon: migrate region %s of pid %d to node %d: %w", r.AR, t.ID, scheme.MigrateNode, err)
	}
	return nil
}
