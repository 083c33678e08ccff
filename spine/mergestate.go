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

package spine

import (
	"math"

	"github.com/cockroachdb/trace-core/diff"
	"github.com/cockroachdb/trace-core/lattice"
	"github.com/cockroachdb/trace-core/trace"
)

type mergeKind int

const (
	kindVacant mergeKind = iota
	kindSingle
	kindDoubleInProgress
	kindDoubleComplete
)

// mergeState is the state of a single layer of a Spine: empty, holding
// one batch, or holding two batches that are in the process of (or have
// finished) merging into one. A nil *trace.Batch within a non-vacant
// state stands for a structurally empty batch kept only for bookkeeping
// — it costs nothing to retain but still counts towards a layer's
// logical size for fueling purposes.
type mergeState[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]] struct {
	kind mergeKind

	single *trace.Batch[K, V, T, D]

	progA, progB *trace.Batch[K, V, T, D]
	merger       *trace.Merger[K, V, T, D]

	complete *trace.Batch[K, V, T, D]
}

func vacantState[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]]() mergeState[K, V, T, D] {
	return mergeState[K, V, T, D]{kind: kindVacant}
}

func (m mergeState[K, V, T, D]) length() int {
	switch m.kind {
	case kindSingle:
		if m.single == nil {
			return 0
		}
		return m.single.Len()
	case kindDoubleInProgress:
		return m.progA.Len() + m.progB.Len()
	case kindDoubleComplete:
		if m.complete == nil {
			return 0
		}
		return m.complete.Len()
	default:
		return 0
	}
}

func (m mergeState[K, V, T, D]) isVacant() bool { return m.kind == kindVacant }
func (m mergeState[K, V, T, D]) isSingle() bool { return m.kind == kindSingle }
func (m mergeState[K, V, T, D]) isDouble() bool {
	return m.kind == kindDoubleInProgress || m.kind == kindDoubleComplete
}
func (m mergeState[K, V, T, D]) isComplete() bool { return m.kind == kindDoubleComplete }

// take resets the receiver to vacant and returns its previous value.
func (m *mergeState[K, V, T, D]) take() mergeState[K, V, T, D] {
	old := *m
	*m = vacantState[K, V, T, D]()
	return old
}

// beginMerge starts merging two optional batches (nil standing for a
// structurally empty one) against frontier, the trace's current
// accumulation frontier, so the merge also compacts every time it
// emits. If either side is missing there is nothing to merge, so the
// result is immediately complete; a batch adopted this way keeps
// whatever compaction it already carries and is only advanced again
// once it actually takes part in a two-sided merge.
func beginMerge[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]](a, b *trace.Batch[K, V, T, D], frontier lattice.Antichain[T]) mergeState[K, V, T, D] {
	switch {
	case a != nil && b != nil:
		merger := trace.BeginMerge(*a, *b, frontier)
		return mergeState[K, V, T, D]{kind: kindDoubleInProgress, progA: a, progB: b, merger: merger}
	case a != nil:
		return mergeState[K, V, T, D]{kind: kindDoubleComplete, complete: a}
	case b != nil:
		return mergeState[K, V, T, D]{kind: kindDoubleComplete, complete: b}
	default:
		return mergeState[K, V, T, D]{kind: kindDoubleComplete}
	}
}

// work spends fuel on an in-progress merge, promoting it to complete
// once the merger finishes. It is a no-op for any other state.
func (m *mergeState[K, V, T, D]) work(fuel *int64) {
	if m.kind != kindDoubleInProgress {
		return
	}
	if m.merger.Work(fuel) {
		done := m.merger.Done()
		*m = mergeState[K, V, T, D]{kind: kindDoubleComplete, complete: &done}
	}
}

// forceComplete drives an in-progress merge to completion regardless of
// fuel, for callers (roll-up, close) that cannot leave a merge pending.
func (m *mergeState[K, V, T, D]) forceComplete() {
	fuel := int64(math.MaxInt64)
	m.work(&fuel)
}

// extract resets the receiver to vacant and returns whatever batch, if
// any, it held, forcing any in-progress merge to completion first.
func (m *mergeState[K, V, T, D]) extract() *trace.Batch[K, V, T, D] {
	old := m.take()
	switch old.kind {
	case kindSingle:
		return old.single
	case kindDoubleInProgress:
		(&old).forceComplete()
		return old.complete
	case kindDoubleComplete:
		return old.complete
	default:
		return nil
	}
}
