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

import "fmt"

// AddrRange is a half-open address range [Start, End). Both ends are
// expected to be aligned to MinRegion.
type AddrRange struct {
	Start uint64
	End   uint64
}

// NewAddrRange builds an AddrRange, swapping the arguments if given in
// reverse order, mirroring memtier's NewAddrRange.
func NewAddrRange(start, end uint64) AddrRange {
	if end < start {
		start, end = end, start
	}
	return AddrRange{Start: start, End: end}
}

// Size returns the number of bytes the range covers.
func (ar AddrRange) Size() uint64 {
	return ar.End - ar.Start
}

// Empty reports whether the range covers zero bytes.
func (ar AddrRange) Empty() bool {
	return ar.End <= ar.Start
}

// Contains reports whether addr falls within [Start, End).
func (ar AddrRange) Contains(addr uint64) bool {
	return addr >= ar.Start && addr < ar.End
}

// Intersects reports whether ar and other share at least one byte.
func (ar AddrRange) Intersects(other AddrRange) bool {
	return ar.Start < other.End && other.Start < ar.End
}

// AlignDown rounds addr down to the nearest multiple of align.
func AlignDown(addr, align uint64) uint64 {
	if align == 0 {
		return addr
	}
	return addr - (addr % align)
}

func (ar AddrRange) String() string {
	return fmt.Sprintf("[0x%x, 0x%x)", ar.Start, ar.End)
}
