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

/*

	Package damon implements a data-access monitoring engine: an
	adaptive partition of a target address space into regions, each
	carrying a running estimate of its access frequency.

	Component types

	1. Context (context.go) owns a set of Targets, a set of Schemes,
	monitoring attributes and an access-check primitive. Exactly one
	worker goroutine runs per started Context.

	2. Target (target.go) owns an ordered, disjoint partition of an
	address space into Regions (region.go). Regions are merged when
	neighbors look alike and split to recover resolution, bounded by
	the context's [min_nr_regions, max_nr_regions] (mergesplit.go).

	3. AccessCheckOps (primitive.go) is the pluggable primitive that
	gives "access" its address-space-specific meaning. Two
	implementations ship: primitive_vaddr.go walks a process's
	/proc/pid/maps and pagemap; primitive_paddr.go sets and reads the
	idle bit of each sampled page frame through the page_idle bitmap
	and /proc/kpageflags, without walking the pages' reverse mappings
	itself. primitive_stub.go is a no-op primitive for tests.

	4. Scheme (scheme.go) is a (size, access-count, age) predicate
	paired with an action, applied to every matching region at each
	aggregation (the DAMOS engine).

	5. The worker (worker.go) drives the primitive at sample_interval,
	aggregates at aggr_interval, and re-syncs regions at
	regions_update_interval, invoking Callbacks (callbacks.go) at each
	step.

	6. manager.go holds the process-wide running-context counter and
	the lock damon.Start holds to start a group of contexts atomically.
	damon.Stop does not take that lock; it stops the contexts one by
	one.
*/
package damon
