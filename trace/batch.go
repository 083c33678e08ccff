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

// Update is a single (key, value, time, diff) quadruple: a record of a
// change in the multiplicity of (key, value) that took effect at time.
type Update[K Ordered[K], V Ordered[V], T Time[T], D diff.Diff[D]] struct {
	Key  K
	Val  V
	Time T
	Diff D
}

// Batch is an immutable, compacted collection of updates together with
// the half-open time interval [Lower, Upper) it describes. Within that
// interval the batch is a complete and correct description of every
// change to any (key, value) pair: nothing recorded in it will ever be
// retracted or restated except by a later batch whose Lower starts
// where this one's Upper ends.
//
// A Batch's updates are stored sorted by (Key, Val, Time) and coalesced:
// no two updates share all three fields, and no update carries a zero
// Diff. This is what lets Cursor binary-search within it and Merger
// produce a new sorted, coalesced Batch from two others in time
// proportional to their combined size.
type Batch[K Ordered[K], V Ordered[V], T Time[T], D diff.Diff[D]] struct {
	updates []Update[K, V, T, D]
	lower   lattice.Antichain[T]
	upper   lattice.Antichain[T]
}

// Len returns the number of updates in the batch.
func (b Batch[K, V, T, D]) Len() int { return len(b.updates) }

// Lower is the frontier before which this batch describes no changes.
func (b Batch[K, V, T, D]) Lower() lattice.Antichain[T] { return b.lower }

// Upper is the frontier at or after which this batch describes no
// changes.
func (b Batch[K, V, T, D]) Upper() lattice.Antichain[T] { return b.upper }

// IsEmpty reports whether the batch carries no updates. An empty batch
// still carries meaningful Lower/Upper frontiers and must not be
// discarded: Spine relies on empty batches to track progress.
func (b Batch[K, V, T, D]) IsEmpty() bool { return len(b.updates) == 0 }

// Cursor returns a new Cursor positioned at the first key of the
// batch.
func (b Batch[K, V, T, D]) Cursor() Cursor[K, V, T, D] {
	return newSliceCursor(b.updates)
}
