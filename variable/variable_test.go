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

package variable_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/trace-core/arrange"
	"github.com/cockroachdb/trace-core/diff"
	"github.com/cockroachdb/trace-core/internal/engcfg"
	"github.com/cockroachdb/trace-core/lattice"
	"github.com/cockroachdb/trace-core/trace"
	"github.com/cockroachdb/trace-core/variable"
)

type (
	key = trace.IntKey
	val = trace.IntKey
	tm  = lattice.Instant
	wt  = diff.IntDiff
)

func at(nanos int64) tm { return lattice.New(nanos, 0) }

func frontierAt(nanos int64) lattice.Antichain[tm] { return lattice.NewAntichain(at(nanos)) }

func emptyArrangement(t *testing.T) *arrange.Arrangement[key, val, tm, wt] {
	t.Helper()
	a := arrange.New[key, val, tm, wt](engcfg.Defaults(), nil, nil)
	b := trace.NewBuilder[key, val, tm, wt](0)
	require.NoError(t, a.Insert(b.Done(frontierAt(0), frontierAt(1), frontierAt(0))))
	return a
}

func seededArrangement(t *testing.T, rows [][2]int64) *arrange.Arrangement[key, val, tm, wt] {
	t.Helper()
	a := arrange.New[key, val, tm, wt](engcfg.Defaults(), nil, nil)
	b := trace.NewBuilder[key, val, tm, wt](len(rows))
	for _, r := range rows {
		b.Push(trace.Update[key, val, tm, wt]{Key: key(r[0]), Val: val(r[1]), Time: at(0), Diff: 1})
	}
	require.NoError(t, a.Insert(b.Done(frontierAt(0), frontierAt(1), frontierAt(0))))
	return a
}

// TestFromCopiesSourceContentIntoAFreshCycle exercises From's seeding:
// the Variable's Cycle must hold the same updates as the source it was
// built from, as an independent arrangement the caller can advance on
// its own schedule.
func TestFromCopiesSourceContentIntoAFreshCycle(t *testing.T) {
	source := seededArrangement(t, [][2]int64{{1, 2}, {2, 3}})
	defer source.Release()

	v, err := variable.From(engcfg.Defaults(), nil, nil, source)
	require.NoError(t, err)

	cyc := v.Cycle()
	found := map[[2]int64]bool{}
	cyc.MapBatches(func(b trace.Batch[key, val, tm, wt]) {
		c := b.Cursor()
		for c.KeyValid() {
			for c.ValValid() {
				found[[2]int64{int64(c.Key()), int64(c.Val())}] = true
				c.StepVal()
			}
			c.StepKey()
		}
	})
	require.Equal(t, map[[2]int64]bool{{1, 2}: true, {2, 3}: true}, found)
	require.NoError(t, cyc.Release())

	empty := trace.NewBuilder[key, val, tm, wt](0)
	require.NoError(t, v.Set(empty.Done(frontierAt(1), frontierAt(2), frontierAt(0))))
}

// TestSetClosesTheVariableAndAppliesTheIncrement checks that the
// content visible through Cycle reflects Set's increment once Set has
// been called.
func TestSetClosesTheVariableAndAppliesTheIncrement(t *testing.T) {
	source := seededArrangement(t, [][2]int64{{1, 2}})
	defer source.Release()

	v, err := variable.From(engcfg.Defaults(), nil, nil, source)
	require.NoError(t, err)

	inc := trace.NewBuilder[key, val, tm, wt](1)
	inc.Push(trace.Update[key, val, tm, wt]{Key: 2, Val: 3, Time: at(1), Diff: 1})
	require.NoError(t, v.Set(inc.Done(frontierAt(1), frontierAt(2), frontierAt(0))))

	cyc := v.Cycle()
	found := map[[2]int64]bool{}
	cyc.MapBatches(func(b trace.Batch[key, val, tm, wt]) {
		c := b.Cursor()
		for c.KeyValid() {
			for c.ValValid() {
				found[[2]int64{int64(c.Key()), int64(c.Val())}] = true
				c.StepVal()
			}
			c.StepKey()
		}
	})
	require.Equal(t, map[[2]int64]bool{{1, 2}: true, {2, 3}: true}, found)
	require.NoError(t, cyc.Release())
}

// TestSetCalledTwicePanics matches the reference implementation's
// NewVariable, whose Drop panics with "unset new_variable" if set was
// never called; here the roles are reversed, since Go has no
// destructor to catch a missing call, so it is the second Set call
// that can be checked eagerly instead.
func TestSetCalledTwicePanics(t *testing.T) {
	source := emptyArrangement(t)
	defer source.Release()

	v, err := variable.From(engcfg.Defaults(), nil, nil, source)
	require.NoError(t, err)

	empty := trace.NewBuilder[key, val, tm, wt](0)
	require.NoError(t, v.Set(empty.Done(frontierAt(1), frontierAt(2), frontierAt(0))))

	require.Panics(t, func() {
		_ = v.Set(empty.Done(frontierAt(2), frontierAt(3), frontierAt(0)))
	})
}

// TestCycleCanBeReadRepeatedlyBeforeSet confirms Cycle is safe to call
// more than once while the Variable is still open, each call hitting
// the same underlying refcounted arrangement.
func TestCycleCanBeReadRepeatedlyBeforeSet(t *testing.T) {
	source := seededArrangement(t, [][2]int64{{1, 2}})
	defer source.Release()

	v, err := variable.From(engcfg.Defaults(), nil, nil, source)
	require.NoError(t, err)

	first := v.Cycle()
	second := v.Cycle()
	require.NoError(t, first.Release())
	require.NoError(t, second.Release())

	empty := trace.NewBuilder[key, val, tm, wt](0)
	require.NoError(t, v.Set(empty.Done(frontierAt(1), frontierAt(2), frontierAt(0))))
}
