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
	"unsafe"

	"golang.org/x/sys/unix"
)

// pidfdOpen wraps the pidfd_open(2) syscall, mirroring PidfdOpenSyscall in
// pkg/memtier/madvise_linux.go.
func pidfdOpen(pid int, flags uint) (int, error) {
	ret, _, errno := unix.Syscall(unix.SYS_PIDFD_OPEN, uintptr(pid), uintptr(flags), 0)
	if errno != 0 {
		return -1, errno
	}
	return int(ret), nil
}

// iovec mirrors struct iovec { void *iov_base; size_t iov_len; } with
// iov_base kept as a raw uint64 rather than a Go pointer: the address
// belongs to the target process, not ours, so it must never be handed to
// the Go runtime as an actual *byte. Mirrors cIovec in
// pkg/memtier/madvise_linux.go, minus that file's cgo dependency.
type iovec struct {
	base uint64
	len  uint64
}

// processMadvise wraps the process_madvise(2) syscall against a set of
// address ranges in the process identified by pidfd, mirroring
// ProcessMadviseSyscall in pkg/memtier/madvise_linux.go.
func processMadvise(pidfd int, ranges []AddrRange, advice int) error {
	if len(ranges) == 0 {
		return nil
	}
	iovecs := make([]iovec, len(ranges))
	for i, ar := range ranges {
		iovecs[i] = iovec{base: ar.Start, len: ar.Size()}
	}

	iovecPtr := uintptr(unsafe.Pointer(&iovecs[0]))
	_, _, errno := unix.Syscall6(unix.SYS_PROCESS_MADVISE, uintptr(pidfd), iovecPtr, uintptr(len(iovecs)), uintptr(advice), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
