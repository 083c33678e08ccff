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

// Package trace implements the immutable, sorted, time-indexed Batch
// and its Builder, Cursor and Merger.
package trace

import "github.com/cockroachdb/trace-core/lattice"

// Ordered is implemented by any key or value type usable in a Batch: it
// must admit a total order, since a Batch's content is sorted by
// (key, value, time) and Cursor seeks rely on binary search over that
// order.
type Ordered[X any] interface {
	// Compare returns -1, 0, or 1 as the receiver is less than, equal
	// to, or greater than other.
	Compare(other X) int
}

// Time is the constraint satisfied by a Batch's timestamp type: it must
// be both a lattice.Lattice (so AdvanceBy/AltNeu/nested scopes work) and
// totally ordered (so a Batch can sort its contents). Compare must be
// consistent with LessEqual: it must be a linear extension of the
// partial order, so whenever a.LessEqual(b) and not lattice.Equal(a,b),
// Compare(a,b) must be < 0. Instant and AltNeu are totally ordered, so
// for them LessEqual and Compare agree directly; Product's LessEqual is
// componentwise and only partial, and its lexicographic Compare is a
// linear extension of it.
type Time[T any] interface {
	lattice.Lattice[T]
	Ordered[T]
}
