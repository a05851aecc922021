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
	"encoding/binary"
	"fmt"
	"os"
)

// /proc/pid/pagemap and /proc/kpageflags bit layouts, from
// fs/proc/task_mmu.c and include/uapi/linux/kernel-page-flags.h.
// Grounded on the equivalent constant block in pkg/memtier/proc.go.
const (
	pmPFN     = (uint64(1) << 55) - 1
	pmPresent = uint64(1) << 63
	kpfIdle   = uint64(1) << 25
)

// pagemapPFN resolves the physical frame number backing addr in pid's
// address space, reading the 8-byte pagemap entry at the matching
// offset. Returns an error if the page is not currently present (e.g.
// swapped out), mirroring the PM_PRESENT check the kernel pagemap docs
// require before trusting the PFN bits.
func pagemapPFN(pid int, addr uint64) (uint64, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/pagemap", pid))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	pageSize := uint64(MinRegion)
	offset := int64((addr / pageSize) * 8)
	var buf [8]byte
	if _, err := f.ReadAt(buf[:], offset); err != nil {
		return 0, fmt.Errorf("damon: read pagemap at %#x: %w", addr, err)
	}
	entry := binary.LittleEndian.Uint64(buf[:])
	if entry&pmPresent == 0 {
		return 0, fmt.Errorf("damon: page at %#x not present", addr)
	}
	return entry & pmPFN, nil
}

// setPageIdle marks pfn idle via /sys/kernel/mm/page_idle/bitmap. Writing
// only ever sets bits that are 1 in the written word; bits left 0 are
// untouched, so a single targeted word is sufficient without a
// read-modify-write.
func setPageIdle(pfn uint64) error {
	f, err := os.OpenFile("/sys/kernel/mm/page_idle/bitmap", os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	word := make([]byte, 8)
	binary.LittleEndian.PutUint64(word, uint64(1)<<(pfn%64))
	_, err = f.WriteAt(word, int64((pfn/64)*8))
	return err
}

// pageIdle reads whether pfn is currently idle from /proc/kpageflags,
// mirroring the KPF_IDLE check in mm/damon/paddr.c's
// damon_get_page_state.
func pageIdle(pfn uint64) (bool, error) {
	f, err := os.Open("/proc/kpageflags")
	if err != nil {
		return false, err
	}
	defer f.Close()

	var buf [8]byte
	if _, err := f.ReadAt(buf[:], int64(pfn*8)); err != nil {
		return false, fmt.Errorf("damon: read kpageflags for pfn %d: %w", pfn, err)
	}
	flags := binary.LittleEndian.Uint64(buf[:])
	return flags&kpfIdle != 0, nil
}

// clearPageYoung marks the page backing (pid, addr) idle, the userspace
// equivalent of damon_va_mkold()'s pte young-bit clear: the next access
// will set the page accessed again, which CheckAccesses/pageYoung below
// detects by the idle bit having been cleared by hardware.
func clearPageYoung(pid int, addr uint64) {
	pfn, err := pagemapPFN(pid, addr)
	if err != nil {
		return
	}
	if err := setPageIdle(pfn); err != nil {
		log.Debugf("clear_page_young: pid %d addr %#x: %s", pid, addr, err)
	}
}

// pageYoung reports whether the page backing (pid, addr) has been
// accessed since it was last marked idle, mirroring damon_va_young()'s
// pte young-bit test.
func pageYoung(pid int, addr uint64) bool {
	pfn, err := pagemapPFN(pid, addr)
	if err != nil {
		return false
	}
	idle, err := pageIdle(pfn)
	if err != nil {
		return false
	}
	return !idle
}
