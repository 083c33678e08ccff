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

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/trace-core/internal/metrics"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestNewSetRegistersEveryCollectorExactlyOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := metrics.NewSet(reg)
	require.NoError(t, err)
	// A vector only reports a family once it holds a labelled child, so
	// give each of the three vectors one before gathering.
	s.ObserveMergeDuration(0, 0.001)
	s.AddFuelSpent(0, 1)
	s.IncBatchesInserted(0)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 5)
}

func TestNewSetFailsOnASecondRegistrationAgainstTheSameRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewSet(reg)
	require.NoError(t, err)

	_, err = metrics.NewSet(reg)
	require.Error(t, err, "registering a second Set against the same Registerer should collide on metric names")
}

func TestNilSetMethodsAreNoOps(t *testing.T) {
	var s *metrics.Set
	require.NotPanics(t, func() {
		s.ObserveMergeDuration(0, 1.0)
		s.AddFuelSpent(0, 10)
		s.IncBatchesInserted(0)
		s.AddProposeExtensions(5)
		s.AddValidateDropped(2)
	})
}

func TestAddProposeExtensionsAccumulates(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := metrics.NewSet(reg)
	require.NoError(t, err)

	s.AddProposeExtensions(3)
	s.AddProposeExtensions(4)

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, fam := range families {
		if fam.GetName() == "join_propose_extensions_total" {
			found = true
			require.Equal(t, float64(7), fam.Metric[0].GetCounter().GetValue())
		}
	}
	require.True(t, found, "expected join_propose_extensions_total to be registered")
}

func TestIncBatchesInsertedLabelsByLevel(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := metrics.NewSet(reg)
	require.NoError(t, err)

	s.IncBatchesInserted(0)
	s.IncBatchesInserted(0)
	s.IncBatchesInserted(3)

	families, err := reg.Gather()
	require.NoError(t, err)
	var byLevel = map[string]float64{}
	for _, fam := range families {
		if fam.GetName() != "spine_batches_inserted_total" {
			continue
		}
		for _, m := range fam.Metric {
			for _, lp := range m.Label {
				if lp.GetName() == "level" {
					byLevel[lp.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	require.Equal(t, float64(2), byLevel["0"])
	require.Equal(t, float64(1), byLevel["3"])
}
