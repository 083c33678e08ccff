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

package trace

import (
	"github.com/cockroachdb/trace-core/diff"
	"github.com/cockroachdb/trace-core/lattice"
)

// Merger incrementally merges two Batches into one, consuming a caller
// supplied fuel budget on each call to Work so that the cost of
// compacting a Spine's layers can be amortized across many subsequent
// insertions instead of paid in one long pause.
//
// Both inputs are already sorted and coalesced, so merging is a single
// linear sweep comparing (Key, Val, Time). Every record's Time is
// advanced against frontier as it is emitted, and ties after advancing
// are coalesced (diffs summed, the pair dropped if the sum is zero) —
// the same compaction Builder.Done performs at construction, applied
// again here so a trace keeps compacting as its accumulation frontier
// moves forward. The monotonicity of AdvanceBy guarantees that records
// which collapse onto the same advanced time are always adjacent in
// merge order, so a single look-back at the last emitted record is
// enough to catch every coalescible run, however many inputs feed it.
type Merger[K Ordered[K], V Ordered[V], T Time[T], D diff.Diff[D]] struct {
	a, b []Update[K, V, T, D]
	i, j int
	out  []Update[K, V, T, D]

	frontier     lattice.Antichain[T]
	lower, upper lattice.Antichain[T]
	done         bool
}

// BeginMerge starts merging a and b against frontier, the accumulation
// frontier every emitted record's Time is advanced by before
// coalescing. b is expected to cover the time interval immediately
// following a's (i.e. a.Upper() meets b.Lower()), as is always the case
// for adjacent Spine layers; the result spans [a.Lower(), b.Upper()).
func BeginMerge[K Ordered[K], V Ordered[V], T Time[T], D diff.Diff[D]](a, b Batch[K, V, T, D], frontier lattice.Antichain[T]) *Merger[K, V, T, D] {
	return &Merger[K, V, T, D]{
		a:        a.updates,
		b:        b.updates,
		out:      make([]Update[K, V, T, D], 0, len(a.updates)+len(b.updates)),
		frontier: frontier,
		lower:    a.lower,
		upper:    b.upper,
	}
}

// Work advances the merge, spending up to *fuel units (one unit per
// merge step; a step that combines equal updates from both inputs
// counts once) and decrementing *fuel by however much was actually
// spent. It returns true once the merge is complete, at which point
// Done may be called.
func (m *Merger[K, V, T, D]) Work(fuel *int64) bool {
	elements := m.frontier.Elements()
	for *fuel > 0 && (m.i < len(m.a) || m.j < len(m.b)) {
		var next Update[K, V, T, D]
		switch {
		case m.i >= len(m.a):
			next = m.b[m.j]
			m.j++
		case m.j >= len(m.b):
			next = m.a[m.i]
			m.i++
		default:
			switch c := compareUpdate(m.a[m.i], m.b[m.j]); {
			case c < 0:
				next = m.a[m.i]
				m.i++
			case c > 0:
				next = m.b[m.j]
				m.j++
			default:
				next = m.a[m.i]
				next.Diff = m.a[m.i].Diff.Add(m.b[m.j].Diff)
				m.i++
				m.j++
			}
		}
		next.Time = lattice.AdvanceBy(next.Time, elements)
		m.append(next)
		*fuel--
	}
	m.done = m.i >= len(m.a) && m.j >= len(m.b)
	return m.done
}

// append adds next to the merged output, coalescing it into the
// previously emitted record if advancing has brought them to the same
// (Key, Val, Time); a coalesced sum of zero removes that record
// entirely rather than leaving a zero-diff entry behind.
func (m *Merger[K, V, T, D]) append(next Update[K, V, T, D]) {
	if n := len(m.out); n > 0 {
		last := &m.out[n-1]
		if last.Key.Compare(next.Key) == 0 && last.Val.Compare(next.Val) == 0 && last.Time.Compare(next.Time) == 0 {
			sum := last.Diff.Add(next.Diff)
			if sum.IsZero() {
				m.out = m.out[:n-1]
			} else {
				last.Diff = sum
			}
			return
		}
	}
	if !next.Diff.IsZero() {
		m.out = append(m.out, next)
	}
}

// Done returns the merged Batch. It panics unless Work has returned
// true.
func (m *Merger[K, V, T, D]) Done() Batch[K, V, T, D] {
	if !m.done {
		panic("trace: Merger.Done called before the merge was exhausted")
	}
	return Batch[K, V, T, D]{updates: m.out, lower: m.lower, upper: m.upper}
}

// compareUpdate orders two updates by (Key, Val, Time), the same order
// Builder.Done sorts by.
func compareUpdate[K Ordered[K], V Ordered[V], T Time[T], D diff.Diff[D]](a, b Update[K, V, T, D]) int {
	if c := a.Key.Compare(b.Key); c != 0 {
		return c
	}
	if c := a.Val.Compare(b.Val); c != 0 {
		return c
	}
	return a.Time.Compare(b.Time)
}
