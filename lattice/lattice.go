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

// Package lattice defines the partial order on logical times that the
// rest of this module is parameterized over: a bounded lattice with
// join, meet, and the advance_by compaction operator.
package lattice

// Lattice is implemented by any type T that forms a bounded lattice:
// a partial order with a least upper bound (Join), a greatest lower
// bound (Meet), and distinguished Minimum/Maximum elements. Instances
// are F-bounded: T must implement Lattice[T].
//
// Implementations of Minimum and Maximum may (and typically do) ignore
// their receiver entirely; the method exists on T only because Go has
// no free functions parameterized solely by a type parameter's name.
type Lattice[T any] interface {
	// LessEqual reports whether the receiver is less than or equal to
	// other in the partial order.
	LessEqual(other T) bool
	// Join returns the least upper bound of the receiver and other.
	Join(other T) T
	// Meet returns the greatest lower bound of the receiver and other.
	Meet(other T) T
	// Minimum returns the bottom element of the lattice.
	Minimum() T
	// Maximum returns the top element of the lattice.
	Maximum() T
}

// Equal reports whether a and b denote the same point in the lattice,
// i.e. each is less-than-or-equal to the other.
func Equal[T Lattice[T]](a, b T) bool {
	return a.LessEqual(b) && b.LessEqual(a)
}

// AdvanceBy returns the unique largest t' >= self such that for every q
// dominated by the frontier, `self <= q` iff `t' <= q`.
//
// Algorithm: fold meet(acc, join(self, f)) over f in frontier, seeded
// with join(self, frontier[0]). An empty frontier means "nothing further
// will ever arrive", so every time collapses to Maximum.
func AdvanceBy[T Lattice[T]](self T, frontier []T) T {
	if len(frontier) == 0 {
		return self.Maximum()
	}
	acc := self.Join(frontier[0])
	for _, f := range frontier[1:] {
		acc = acc.Meet(self.Join(f))
	}
	return acc
}
