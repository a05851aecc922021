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
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseTimeDuration parses a DAMON-style attribute duration string such
// as "5ms" or "100us" into a time.Duration, mirroring parseTimeDuration
// in pkg/memtier/utils.go. Bare numbers are interpreted as seconds.
func ParseTimeDuration(s string) (time.Duration, error) {
	factor := float64(time.Second)
	suffixLen := 0
	switch {
	case strings.HasSuffix(s, "ns"):
		factor = 1
		suffixLen = 2
	case strings.HasSuffix(s, "us"):
		factor = 1000
		suffixLen = 2
	case strings.HasSuffix(s, "ms"):
		factor = 1000 * 1000
		suffixLen = 2
	case strings.HasSuffix(s, "s"):
		factor = 1000 * 1000 * 1000
		suffixLen = 1
	case strings.HasSuffix(s, "m"):
		factor = 1000 * 1000 * 1000 * 60
		suffixLen = 1
	case strings.HasSuffix(s, "h"):
		factor = 1000 * 1000 * 1000 * 60 * 60
		suffixLen = 1
	}
	numpart := s[0 : len(s)-suffixLen]
	f, err := strconv.ParseFloat(strings.TrimSpace(numpart), 64)
	if err != nil {
		return 0, fmt.Errorf("syntax error in time duration %q: %w, expected [0-9]+(ns|us|ms|s|m|h)?", s, err)
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("invalid time duration %q, number expected", s)
	}
	return time.Duration(f * factor), nil
}

// ParseBytes parses a byte-count string with an optional k/M/G/T (and
// optional trailing B) suffix into a plain byte count, mirroring
// ParseBytes in pkg/memtier/parse.go.
func ParseBytes(s string) (int64, error) {
	origS := s
	factor := int64(1)
	if len(s) == 0 {
		return 0, fmt.Errorf("syntax error in bytes: string is empty")
	}
	if s[len(s)-1] == 'B' {
		s = s[:len(s)-1]
	}
	if len(s) == 0 {
		return 0, fmt.Errorf("syntax error in bytes %q", origS)
	}
	numpart := s[:len(s)-1]
	switch c := s[len(s)-1]; {
	case c == 'k':
		factor = 1024
	case c == 'M':
		factor = 1024 * 1024
	case c == 'G':
		factor = 1024 * 1024 * 1024
	case c == 'T':
		factor = 1024 * 1024 * 1024 * 1024
	case '0' <= c && c <= '9':
		numpart = s
	default:
		return 0, fmt.Errorf("syntax error in bytes %q: unexpected unit %q", origS, c)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(numpart), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("syntax error in bytes %q: bad numeric part %q", origS, numpart)
	}
	return n * factor, nil
}
