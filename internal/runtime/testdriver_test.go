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

package runtime_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/trace-core/diff"
	"github.com/cockroachdb/trace-core/internal/runtime"
	"github.com/cockroachdb/trace-core/lattice"
	"github.com/cockroachdb/trace-core/trace"
)

type key = trace.IntKey
type val = trace.IntKey
type tm = lattice.Instant
type wt = diff.IntDiff

func at(nanos int64) tm { return lattice.New(nanos, 0) }

func TestNewAssemblesARuntimeFromItsProviders(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt, err := runtime.New(reg)
	require.NoError(t, err)
	require.NotNil(t, rt)
	require.NotNil(t, rt.Logger)
	require.NotNil(t, rt.Metrics)
	require.NotNil(t, rt.Diagnostics)
}

func TestNewRegistersMetricsAgainstTheGivenRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := runtime.New(reg)
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families, "expected the runtime's metrics.Set to register at least one collector")
}

func TestTestDriverNewInputStartsAtTheMinimumFrontier(t *testing.T) {
	d := runtime.NewTestDriver[key, val, tm, wt](nil)
	in, arr := d.NewInput()
	defer arr.Release()

	frontier, _ := in.Frontier()
	require.True(t, frontier.Dominates(at(0)))
}

func TestTestDriverAdvanceToMakesSentUpdatesVisible(t *testing.T) {
	d := runtime.NewTestDriver[key, val, tm, wt](nil)
	in, arr := d.NewInput()
	defer arr.Release()

	in.Send(trace.Update[key, val, tm, wt]{Key: 1, Val: 10, Time: at(0), Diff: 1})
	in.Send(trace.Update[key, val, tm, wt]{Key: 2, Val: 20, Time: at(0), Diff: 1})
	require.NoError(t, in.AdvanceTo(at(1)))

	cur, err := arr.CursorThrough(lattice.NewAntichain(at(1)))
	require.NoError(t, err)

	count := 0
	for cur.KeyValid() {
		for cur.ValValid() {
			cur.MapTimes(func(t tm, d wt) { count++ })
			cur.StepVal()
		}
		cur.StepKey()
	}
	require.Equal(t, 2, count)

	frontier, _ := in.Frontier()
	require.False(t, frontier.Dominates(at(0)))
	require.True(t, frontier.Dominates(at(1)))
}

func TestTestDriverAdvanceToChainsFromThePriorUpper(t *testing.T) {
	d := runtime.NewTestDriver[key, val, tm, wt](nil)
	in, arr := d.NewInput()
	defer arr.Release()

	require.NoError(t, in.AdvanceTo(at(5)))
	// A second AdvanceTo must continue from the prior upper as its lower,
	// not restart from the zero frontier.
	require.NoError(t, in.AdvanceTo(at(10)))

	frontier, _ := in.Frontier()
	require.False(t, frontier.Dominates(at(5)))
	require.True(t, frontier.Dominates(at(10)))
}

func TestTestDriverAdvanceToTheSameTimeTwiceFails(t *testing.T) {
	d := runtime.NewTestDriver[key, val, tm, wt](nil)
	in, arr := d.NewInput()
	defer arr.Release()

	require.NoError(t, in.AdvanceTo(at(5)))
	// Repeating the same upper describes an empty time interval, which
	// the underlying spine rejects.
	require.Error(t, in.AdvanceTo(at(5)))
}

func TestTestDriverCloseEmptiesTheFrontierAndIsIdempotent(t *testing.T) {
	d := runtime.NewTestDriver[key, val, tm, wt](nil)
	in, arr := d.NewInput()
	defer arr.Release()

	require.NoError(t, in.Close())
	frontier, _ := in.Frontier()
	require.True(t, frontier.IsEmpty(), "closing an input should advance it past every time")

	// Close is safe to call twice: the second call must not attempt to
	// re-insert an already-closed upper frontier as a new batch lower.
	require.NoError(t, in.Close())
}
