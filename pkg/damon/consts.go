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

import "os"

// MinRegion is the minimal region size. Every region's AddrRange is
// aligned to this, mirroring MIN_REGION (== PAGE_SIZE) in mm/damon.c.
var MinRegion = uint64(os.Getpagesize())

// defaultSignificantChangeDivisor implements the suggested "significant
// change" heuristic from the age-reset design note: a region's nr_accesses
// is considered significantly changed, resetting its age, when the
// absolute delta exceeds max(nr_accesses, last_nr_accesses) / this value.
const defaultSignificantChangeDivisor = 10

// mergeThresholdDivisor is the divisor applied to the cycle's
// max_nr_accesses to obtain the merge threshold (spec.md S3, mm/damon.c
// kdamond_merge_regions(ctx, max_nr_accesses / 10)).
const mergeThresholdDivisor = 10
