// Copyright 2024 The Trace Core Authors
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
//
// SPDX-License-Identifier: Apache-2.0

// Package metrics instruments the spine and join packages with
// Prometheus vectors: a HistogramVec and CounterVec pair sharing a
// common latency bucket scheme and a label describing which instance
// is being measured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LatencyBuckets is shared across every histogram this package
// registers: fine-grained below 100ms, coarser above, since merge and
// propose/validate turns are expected to be sub-millisecond to
// low-millisecond.
var LatencyBuckets = []float64{
	.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5,
}

// LevelLabel names the spine level a measurement pertains to.
const LevelLabel = "level"

// Set bundles every metric this module records. A nil *Set disables
// recording entirely; every method on Set is a nil-safe no-op so hot
// paths can unconditionally call set.ObserveMergeDuration(...) etc.
type Set struct {
	mergeDuration     *prometheus.HistogramVec
	fuelSpent         *prometheus.CounterVec
	batchesInserted   *prometheus.CounterVec
	proposeExtensions prometheus.Counter
	validateDropped   prometheus.Counter
}

// NewSet registers a fresh Set of metrics against reg and returns it.
func NewSet(reg prometheus.Registerer) (*Set, error) {
	s := &Set{
		mergeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spine_merge_duration_seconds",
			Help:    "time spent applying fuel to a single in-progress merge",
			Buckets: LatencyBuckets,
		}, []string{LevelLabel}),
		fuelSpent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spine_fuel_spent_total",
			Help: "cumulative fuel debited across all merges, by level",
		}, []string{LevelLabel}),
		batchesInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spine_batches_inserted_total",
			Help: "number of batches admitted into the spine, by level",
		}, []string{LevelLabel}),
		proposeExtensions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "join_propose_extensions_total",
			Help: "number of (prefix, value) pairs emitted by propose",
		}),
		validateDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "join_validate_dropped_total",
			Help: "number of extensions dropped by validate due to a zero existence count",
		}),
	}
	for _, c := range []prometheus.Collector{
		s.mergeDuration, s.fuelSpent, s.batchesInserted, s.proposeExtensions, s.validateDropped,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ObserveMergeDuration records how long a single Merger.Work call took
// at the given spine level.
func (s *Set) ObserveMergeDuration(level int, seconds float64) {
	if s == nil {
		return
	}
	s.mergeDuration.WithLabelValues(levelLabel(level)).Observe(seconds)
}

// AddFuelSpent records fuel debited at the given level.
func (s *Set) AddFuelSpent(level int, fuel int64) {
	if s == nil {
		return
	}
	s.fuelSpent.WithLabelValues(levelLabel(level)).Add(float64(fuel))
}

// IncBatchesInserted records one batch admitted at the given level.
func (s *Set) IncBatchesInserted(level int) {
	if s == nil {
		return
	}
	s.batchesInserted.WithLabelValues(levelLabel(level)).Inc()
}

// AddProposeExtensions records n emitted (prefix, value) pairs.
func (s *Set) AddProposeExtensions(n int) {
	if s == nil {
		return
	}
	s.proposeExtensions.Add(float64(n))
}

// AddValidateDropped records n extensions dropped for lack of a match.
func (s *Set) AddValidateDropped(n int) {
	if s == nil {
		return
	}
	s.validateDropped.Add(float64(n))
}

func levelLabel(level int) string {
	// Small, fixed set of levels in practice (spine depth is O(log N));
	// avoid an import of strconv's more general machinery in the hot
	// path by special-casing the common single-digit case.
	if level >= 0 && level < len(levelStrings) {
		return levelStrings[level]
	}
	return fallbackLevelLabel(level)
}

var levelStrings = [...]string{
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"10", "11", "12", "13", "14", "15", "16", "17", "18", "19",
	"20", "21", "22", "23", "24", "25", "26", "27", "28", "29",
	"30", "31", "32", "33", "34", "35", "36", "37", "38", "39",
	"40", "41", "42", "43", "44", "45", "46", "47", "48", "49",
	"50", "51", "52", "53", "54", "55", "56", "57", "58", "59",
	"60", "61", "62", "63",
}

func fallbackLevelLabel(level int) string {
	// 64 levels covers a spine over 2^64 records; anything beyond that
	// is not reachable in practice, but format it rather than panic.
	neg := level < 0
	if neg {
		level = -level
	}
	buf := make([]byte, 0, 20)
	if level == 0 {
		buf = append(buf, '0')
	}
	for level > 0 {
		buf = append([]byte{byte('0' + level%10)}, buf...)
		level /= 10
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}
