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

package lattice

// Antichain is a set of pairwise-incomparable times summarizing "what
// is still to come" — a frontier. It is kept reduced: no element
// dominates (is less-equal to) another.
type Antichain[T Lattice[T]] struct {
	elems []T
}

// NewAntichain builds a reduced Antichain from the given elements.
func NewAntichain[T Lattice[T]](elems ...T) Antichain[T] {
	var a Antichain[T]
	for _, e := range elems {
		a = a.Insert(e)
	}
	return a
}

// Elements returns the antichain's members. The caller must not modify
// the returned slice.
func (a Antichain[T]) Elements() []T {
	return a.elems
}

// IsEmpty reports whether the antichain has no elements, i.e. it
// represents "nothing further will ever happen" (used to signal a
// closed trace).
func (a Antichain[T]) IsEmpty() bool {
	return len(a.elems) == 0
}

// Insert adds t to the antichain, dropping any existing element that t
// dominates and skipping the insert entirely if some existing element
// already dominates t. Returns the (possibly) updated antichain.
func (a Antichain[T]) Insert(t T) Antichain[T] {
	kept := make([]T, 0, len(a.elems)+1)
	for _, e := range a.elems {
		if e.LessEqual(t) {
			// e already dominates or equals t; t adds nothing.
			return a
		}
		if !t.LessEqual(e) {
			kept = append(kept, e)
		}
		// else: e is dominated by t, drop it.
	}
	kept = append(kept, t)
	return Antichain[T]{elems: kept}
}

// Dominates reports whether t is dominated by the antichain: some
// element of the frontier is less-than-or-equal to t. An empty
// antichain dominates nothing.
func (a Antichain[T]) Dominates(t T) bool {
	for _, e := range a.elems {
		if e.LessEqual(t) {
			return true
		}
	}
	return false
}

// LessEqualAntichain reports whether every element of b is dominated by
// a, i.e. a "is behind or at" b. This is the ordering used to compare
// two frontiers (an antichain never regresses past one that is
// LessEqualAntichain of it).
func (a Antichain[T]) LessEqualAntichain(b Antichain[T]) bool {
	for _, e := range b.elems {
		if !a.Dominates(e) {
			return false
		}
	}
	return true
}

// Equal reports whether two antichains dominate the same set of times.
func (a Antichain[T]) Equal(b Antichain[T]) bool {
	return a.LessEqualAntichain(b) && b.LessEqualAntichain(a)
}
