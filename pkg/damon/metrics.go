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
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/damonitor/godamon/pkg/metrics"
)

// schemeCollector exposes, per registered Context, the cumulative match
// count and matched byte count of each of its schemes, plus the current
// region count of each target. Wired through pkg/metrics the same way
// any built-in collector is, via RegisterCollector/NewMetricGatherer.
type schemeCollector struct {
	nrRegions   *prometheus.Desc
	schemeCount *prometheus.Desc
	schemeSz    *prometheus.Desc

	ctxs []*Context
}

// NewSchemeCollector builds a prometheus.Collector over ctxs' schemes and
// target region counts.
func NewSchemeCollector(ctxs []*Context) prometheus.Collector {
	return &schemeCollector{
		nrRegions: prometheus.NewDesc(
			"damon_target_nr_regions",
			"Number of regions currently tracked for a target.",
			[]string{"target_id"}, nil),
		schemeCount: prometheus.NewDesc(
			"damon_scheme_applied_regions_total",
			"Cumulative number of regions a scheme's action has been applied to.",
			[]string{"action", "index"}, nil),
		schemeSz: prometheus.NewDesc(
			"damon_scheme_applied_bytes_total",
			"Cumulative bytes a scheme's action has been applied to.",
			[]string{"action", "index"}, nil),
		ctxs: ctxs,
	}
}

func (c *schemeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.nrRegions
	ch <- c.schemeCount
	ch <- c.schemeSz
}

func (c *schemeCollector) Collect(ch chan<- prometheus.Metric) {
	for _, ctx := range c.ctxs {
		for _, t := range ctx.Targets() {
			ch <- prometheus.MustNewConstMetric(c.nrRegions, prometheus.GaugeValue,
				float64(NrRegions(t)), strconv.FormatUint(t.ID, 10))
		}
		for i, s := range ctx.Schemes() {
			count, sz := s.Stat()
			idx := strconv.Itoa(i)
			ch <- prometheus.MustNewConstMetric(c.schemeCount, prometheus.CounterValue, float64(count), s.Action.String(), idx)
			ch <- prometheus.MustNewConstMetric(c.schemeSz, prometheus.CounterValue, float64(sz), s.Action.String(), idx)
		}
	}
}

// RegisterMetrics wires a schemeCollector over ctxs into the process-wide
// metric gatherer under the given name, mirroring how cmd/memtierd wires
// its own collectors during startup.
func RegisterMetrics(name string, ctxs []*Context) error {
	return metrics.RegisterCollector(name, func() (prometheus.Collector, error) {
		return NewSchemeCollector(ctxs), nil
	})
}
