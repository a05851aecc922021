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
	"encoding/json"
	"fmt"
)

// AttrsConfig is the YAML/JSON-friendly form of Attrs, with durations
// given as human-readable strings ("5ms") rather than raw microsecond
// integers, mirroring the *Config/SetConfigJson split pkg/memtier uses
// throughout (e.g. PolicyAgeConfig vs PolicyAge).
type AttrsConfig struct {
	SampleInterval        string `json:"sampleinterval" yaml:"sampleinterval"`
	AggrInterval          string `json:"aggrinterval" yaml:"aggrinterval"`
	RegionsUpdateInterval string `json:"regionsupdateinterval" yaml:"regionsupdateinterval"`
	MinNrRegions          uint64 `json:"minnrregions" yaml:"minnrregions"`
	MaxNrRegions          uint64 `json:"maxnrregions" yaml:"maxnrregions"`
}

// Parse converts c into Attrs, resolving its duration strings.
func (c AttrsConfig) Parse() (Attrs, error) {
	sample, err := ParseTimeDuration(c.SampleInterval)
	if err != nil {
		return Attrs{}, fmt.Errorf("damon: attrs.sampleinterval: %w", err)
	}
	aggr, err := ParseTimeDuration(c.AggrInterval)
	if err != nil {
		return Attrs{}, fmt.Errorf("damon: attrs.aggrinterval: %w", err)
	}
	regionsUpdate, err := ParseTimeDuration(c.RegionsUpdateInterval)
	if err != nil {
		return Attrs{}, fmt.Errorf("damon: attrs.regionsupdateinterval: %w", err)
	}
	return Attrs{
		SampleInterval:        uint64(sample.Microseconds()),
		AggrInterval:          uint64(aggr.Microseconds()),
		RegionsUpdateInterval: uint64(regionsUpdate.Microseconds()),
		MinNrRegions:          c.MinNrRegions,
		MaxNrRegions:          c.MaxNrRegions,
	}, nil
}

// SchemeConfig is the YAML/JSON-friendly form of Scheme.
type SchemeConfig struct {
	MinSz         string `json:"minsz" yaml:"minsz"`
	MaxSz         string `json:"maxsz" yaml:"maxsz"`
	MinNrAccesses uint32 `json:"minnraccesses" yaml:"minnraccesses"`
	MaxNrAccesses uint32 `json:"maxnraccesses" yaml:"maxnraccesses"`
	MinAge        string `json:"minage" yaml:"minage"`
	MaxAge        string `json:"maxage" yaml:"maxage"`
	Action        string `json:"action" yaml:"action"`
	MigrateNode   int    `json:"migratenode,omitempty" yaml:"migratenode,omitempty"`
}

var actionsByName = map[string]Action{
	"willneed":   WillNeed,
	"cold":       Cold,
	"pageout":    PageOut,
	"hugepage":   HugePage,
	"nohugepage": NoHugePage,
	"migrate":    Migrate,
	"stat":       Stat,
}

// Parse converts c into a Scheme. Ages are given as aggregation-interval
// counts, matching the kernel debugfs scheme line format's min_age/
// max_age fields (a plain non-negative integer, not a duration string).
func (c SchemeConfig) Parse() (*Scheme, error) {
	minSz, err := ParseBytes(c.MinSz)
	if err != nil {
		return nil, fmt.Errorf("damon: scheme.minsz: %w", err)
	}
	maxSz, err := ParseBytes(c.MaxSz)
	if err != nil {
		return nil, fmt.Errorf("damon: scheme.maxsz: %w", err)
	}
	action, ok := actionsByName[c.Action]
	if !ok {
		return nil, fmt.Errorf("damon: scheme.action: unknown action %q: %w", c.Action, ErrInvalid)
	}
	var minAge, maxAge uint64
	if c.MinAge != "" {
		if _, err := fmt.Sscanf(c.MinAge, "%d", &minAge); err != nil {
			return nil, fmt.Errorf("damon: scheme.minage: %w", err)
		}
	}
	if c.MaxAge != "" {
		if _, err := fmt.Sscanf(c.MaxAge, "%d", &maxAge); err != nil {
			return nil, fmt.Errorf("damon: scheme.maxage: %w", err)
		}
	} else {
		maxAge = uint64(^uint32(0))
	}
	s := NewScheme(uint64(minSz), uint64(maxSz), c.MinNrAccesses, c.MaxNrAccesses, uint32(minAge), uint32(maxAge), action)
	s.MigrateNode = c.MigrateNode
	return s, nil
}

// ContextConfig is the top-level, file-loadable configuration for one
// Context: its attributes, the primitive it should run under, the
// targets it should watch, and the schemes it should apply.
type ContextConfig struct {
	Primitive string         `json:"primitive" yaml:"primitive"`
	Attrs     AttrsConfig    `json:"attrs" yaml:"attrs"`
	Targets   []uint64       `json:"targets" yaml:"targets"`
	Schemes   []SchemeConfig `json:"schemes" yaml:"schemes"`
}

// NewContext builds and fully configures a Context from c, constructing
// and installing its primitive, attrs, targets and schemes, mirroring
// the Config->{Policy,Routines} assembly in cmd/memtierd/main.go's
// loadConfigFile.
func (c ContextConfig) NewContext() (*Context, error) {
	ctx := NewContext()

	primitive, err := NewPrimitive(c.Primitive)
	if err != nil {
		return nil, err
	}
	if err := ctx.SetPrimitive(primitive); err != nil {
		return nil, err
	}

	attrs, err := c.Attrs.Parse()
	if err != nil {
		return nil, err
	}
	if err := ctx.SetAttrs(attrs); err != nil {
		return nil, err
	}

	if err := ctx.SetTargets(c.Targets); err != nil {
		return nil, err
	}

	schemes := make([]*Scheme, 0, len(c.Schemes))
	for i, sc := range c.Schemes {
		s, err := sc.Parse()
		if err != nil {
			return nil, fmt.Errorf("damon: scheme %d: %w", i, err)
		}
		schemes = append(schemes, s)
	}
	if err := ctx.SetSchemes(schemes); err != nil {
		return nil, err
	}

	return ctx, nil
}

// GetConfigJson renders c as indented JSON, mirroring the
// *.GetConfigJson() convention used throughout pkg/memtier for
// "-config-dump-json" support.
func (c ContextConfig) GetConfigJson() (string, error) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
