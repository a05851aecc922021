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

// CallbackOps are observation hooks invoked by the worker. Any field may
// be nil. A hook returning true requests the worker stop after completing
// the current iteration (kdamond_callback's "set_kdamond_stop" behavior).
type CallbackOps struct {
	BeforeStart      func(ctx *Context) bool
	AfterSampling    func(ctx *Context) bool
	AfterAggregation func(ctx *Context) bool
	BeforeTerminate  func(ctx *Context) bool
}

// invoke runs hook if non-nil and requests a stop on the context if it
// returns true, mirroring the kdamond_callback() macro in mm/damon/core.c.
func invoke(ctx *Context, hook func(ctx *Context) bool) {
	if hook == nil {
		return
	}
	if hook(ctx) {
		ctx.requestStop()
	}
}
