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

import "errors"

// Sentinel error kinds, matching the damon_* return codes of the
// programming interface: 0 on success, otherwise one of these.
var (
	// ErrInvalid is returned when a setter is called with parameters
	// that fail validation.
	ErrInvalid = errors.New("invalid argument")
	// ErrBusy is returned when an operation is forbidden because a
	// worker is currently attached to the context or context group.
	ErrBusy = errors.New("busy")
	// ErrNoMem is the kind for the allocation-failure return code. No
	// function of this package returns it: Go allocation failure is not
	// reported as an error.
	ErrNoMem = errors.New("out of memory")
	// ErrNoEnt is returned when Stop is called on a context that has
	// no running worker.
	ErrNoEnt = errors.New("no such worker")
)
