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
	"fmt"
	"sync"
	"time"
)

// manager encapsulates the process-wide state the original kernel
// implementation keeps as file-scope globals (damon_lock, nr_running_ctxs):
// a lock sequencing concurrent Start calls, and a running-context counter.
// Per the design note in spec.md §9, this is legitimate global state,
// deliberately kept in one place rather than scattered package vars.
type manager struct {
	mu            sync.Mutex
	nrRunningCtxs int
}

var globalManager = &manager{}

// NrRunningContexts returns the number of contexts with an attached
// worker, across the whole process.
func NrRunningContexts() int {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	return globalManager.nrRunningCtxs
}

// Start starts one worker per context in ctxs, atomically with respect to
// other Start calls. If any context in ctxs is already running,
// Start refuses the whole group with ErrBusy and starts nothing. Mirrors
// damon_start()'s "EBUSY if nr_running_ctxs" check, generalized to a
// per-call-group running check rather than the kernel's single
// process-wide flag, so independent callers may run independent context
// groups without colliding. Note this decouples the BUSY gate from
// NrRunningContexts(): a context from an unrelated, still-running group
// never blocks this call, even though NrRunningContexts() is nonzero.
func Start(ctxs []*Context) error {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()

	for _, ctx := range ctxs {
		if ctx.Running() {
			return fmt.Errorf("damon: start: context already running: %w", ErrBusy)
		}
	}

	for i, ctx := range ctxs {
		if err := startOne(ctx); err != nil {
			// Roll back the workers we already started, mirroring the
			// "stop everything that came up" caution damon_start()
			// leaves to the caller when __damon_start fails mid-loop.
			for _, started := range ctxs[:i] {
				_ = stopOne(started)
			}
			return err
		}
		globalManager.nrRunningCtxs++
	}
	return nil
}

// Stop requests every context in ctxs to stop, and waits for each
// worker to clear its handle, mirroring damon_stop().
func Stop(ctxs []*Context) error {
	for _, ctx := range ctxs {
		if err := stopOne(ctx); err != nil {
			return err
		}
	}
	return nil
}

func startOne(ctx *Context) error {
	ctx.mu.Lock()
	if ctx.done != nil {
		ctx.mu.Unlock()
		return fmt.Errorf("damon: start: already running: %w", ErrBusy)
	}
	ctx.stop = false
	ctx.done = make(chan struct{})
	ctx.mu.Unlock()

	go runWorker(ctx)
	return nil
}

func stopOne(ctx *Context) error {
	ctx.mu.Lock()
	done := ctx.done
	if done == nil {
		ctx.mu.Unlock()
		return fmt.Errorf("damon: stop: %w", ErrNoEnt)
	}
	ctx.stop = true
	ctx.mu.Unlock()

	sleep := time.Duration(ctx.Attrs.SampleInterval) * time.Microsecond
	if sleep <= 0 {
		sleep = time.Millisecond
	}
	for ctx.Running() {
		time.Sleep(sleep)
	}
	return nil
}

// onWorkerExit clears the worker handle and decrements the global
// running-context counter, mirroring kdamond_fn's tail: clearing
// ctx->kdamond under ctx->kdamond_lock, then nr_running_ctxs-- under
// damon_lock.
func onWorkerExit(ctx *Context) {
	ctx.mu.Lock()
	if ctx.done != nil {
		close(ctx.done)
		ctx.done = nil
	}
	ctx.mu.Unlock()

	globalManager.mu.Lock()
	if globalManager.nrRunningCtxs > 0 {
		globalManager.nrRunningCtxs--
	}
	globalManager.mu.Unlock()
}
