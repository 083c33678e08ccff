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
	"sort"

	"github.com/cockroachdb/trace-core/diff"
	"github.com/cockroachdb/trace-core/lattice"
)

// Builder accumulates updates in any order and produces a single sorted,
// coalesced Batch from them. It is the only way to construct a Batch
// from scratch; Merger produces them from two existing Batches instead.
type Builder[K Ordered[K], V Ordered[V], T Time[T], D diff.Diff[D]] struct {
	updates []Update[K, V, T, D]
}

// NewBuilder returns an empty Builder, optionally pre-sized for n
// updates.
func NewBuilder[K Ordered[K], V Ordered[V], T Time[T], D diff.Diff[D]](n int) *Builder[K, V, T, D] {
	return &Builder[K, V, T, D]{updates: make([]Update[K, V, T, D], 0, n)}
}

// Push appends a single update. Order does not matter; Done sorts and
// coalesces everything pushed so far.
func (b *Builder[K, V, T, D]) Push(u Update[K, V, T, D]) {
	b.updates = append(b.updates, u)
}

// Done advances every pushed update's Time by since, then sorts and
// coalesces the result and returns the resulting Batch, valid over
// [lower, upper). The Builder must not be reused afterward.
//
// Coalescing sums the diffs of every update sharing a (Key, Val, Time)
// and discards the result if it sums to zero; no update is kept in
// preference to another, since a diff algebra has no single latest
// value to keep, only an accumulated one.
// Advancing first means two updates whose times were distinct but
// collapse under since end up coalesced too, not just exact duplicates.
func (b *Builder[K, V, T, D]) Done(lower, upper, since lattice.Antichain[T]) Batch[K, V, T, D] {
	elements := since.Elements()
	for i := range b.updates {
		b.updates[i].Time = lattice.AdvanceBy(b.updates[i].Time, elements)
	}

	sort.Slice(b.updates, func(i, j int) bool {
		return updateLess(b.updates[i], b.updates[j])
	})

	out := b.updates[:0]
	i := 0
	for i < len(b.updates) {
		j := i + 1
		acc := b.updates[i].Diff
		for j < len(b.updates) &&
			b.updates[j].Key.Compare(b.updates[i].Key) == 0 &&
			b.updates[j].Val.Compare(b.updates[i].Val) == 0 &&
			b.updates[j].Time.Compare(b.updates[i].Time) == 0 {
			acc = acc.Add(b.updates[j].Diff)
			j++
		}
		if !acc.IsZero() {
			u := b.updates[i]
			u.Diff = acc
			out = append(out, u)
		}
		i = j
	}

	return Batch[K, V, T, D]{updates: out, lower: lower, upper: upper}
}

// updateLess orders updates by (Key, Val, Time), the order every Batch
// and Cursor in this package assumes.
func updateLess[K Ordered[K], V Ordered[V], T Time[T], D diff.Diff[D]](a, b Update[K, V, T, D]) bool {
	if c := a.Key.Compare(b.Key); c != 0 {
		return c < 0
	}
	if c := a.Val.Compare(b.Val); c != 0 {
		return c < 0
	}
	return a.Time.Compare(b.Time) < 0
}
