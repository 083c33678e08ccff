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

package trace_test

import (
	"testing"

	"github.com/cockroachdb/trace-core/diff"
	"github.com/cockroachdb/trace-core/lattice"
	"github.com/cockroachdb/trace-core/trace"
	"github.com/stretchr/testify/require"
)

type update = trace.Update[trace.IntKey, trace.IntKey, lattice.Instant, diff.IntDiff]

func at(k, v int64, nanos int64, d int64) update {
	return update{
		Key:  trace.IntKey(k),
		Val:  trace.IntKey(v),
		Time: lattice.New(nanos, 0),
		Diff: diff.IntDiff(d),
	}
}

func fullFrontier() lattice.Antichain[lattice.Instant] {
	return lattice.NewAntichain(lattice.Zero())
}

func emptyFrontier() lattice.Antichain[lattice.Instant] {
	return lattice.NewAntichain[lattice.Instant]()
}

func frontierAtNanos(nanos int64) lattice.Antichain[lattice.Instant] {
	return lattice.NewAntichain(lattice.New(nanos, 0))
}

func TestBuilderSortsAndCoalesces(t *testing.T) {
	b := trace.NewBuilder[trace.IntKey, trace.IntKey, lattice.Instant, diff.IntDiff](0)
	b.Push(at(2, 1, 5, 1))
	b.Push(at(1, 1, 3, 1))
	b.Push(at(1, 1, 3, 1)) // duplicate (k,v,t): should sum to 2
	b.Push(at(1, 1, 4, -1))
	b.Push(at(1, 2, 1, -1))
	b.Push(at(1, 2, 1, 1)) // sums to zero: must vanish

	batch := b.Done(fullFrontier(), emptyFrontier(), fullFrontier())

	var got []update
	c := batch.Cursor()
	for c.KeyValid() {
		for c.ValValid() {
			c.MapTimes(func(time lattice.Instant, d diff.IntDiff) {
				got = append(got, update{Key: c.Key(), Val: c.Val(), Time: time, Diff: d})
			})
			c.StepVal()
		}
		c.StepKey()
	}

	require.Equal(t, []update{
		at(1, 1, 3, 2),
		at(1, 1, 4, -1),
		at(2, 1, 5, 1),
	}, got)
}

func TestBuilderEmptyBatchIsValid(t *testing.T) {
	b := trace.NewBuilder[trace.IntKey, trace.IntKey, lattice.Instant, diff.IntDiff](0)
	b.Push(at(1, 1, 1, 1))
	b.Push(at(1, 1, 1, -1))
	batch := b.Done(fullFrontier(), emptyFrontier(), fullFrontier())

	require.True(t, batch.IsEmpty())
	require.Equal(t, 0, batch.Len())
	require.False(t, batch.Cursor().KeyValid())
}

func TestCursorSeek(t *testing.T) {
	b := trace.NewBuilder[trace.IntKey, trace.IntKey, lattice.Instant, diff.IntDiff](0)
	for k := int64(0); k < 5; k++ {
		for v := int64(0); v < 3; v++ {
			b.Push(at(k, v, 1, 1))
		}
	}
	batch := b.Done(fullFrontier(), emptyFrontier(), fullFrontier())

	c := batch.Cursor()
	c.SeekKey(trace.IntKey(3))
	require.True(t, c.KeyValid())
	require.Equal(t, trace.IntKey(3), c.Key())

	c.SeekVal(trace.IntKey(2))
	require.True(t, c.ValValid())
	require.Equal(t, trace.IntKey(2), c.Val())

	c.StepVal()
	require.False(t, c.ValValid())

	c.StepKey()
	require.True(t, c.KeyValid())
	require.Equal(t, trace.IntKey(4), c.Key())

	c.SeekKey(trace.IntKey(99))
	require.False(t, c.KeyValid())
}
