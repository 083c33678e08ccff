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

// Package altneu refines a timestamp with a two-point "before or after
// the driving delta" tag, the ordering discipline a delta-join uses to
// give every relation in a multi-way join a deterministic position
// relative to the one currently changing, so that summing each
// relation's delta query over every join order counts each result the
// right number of times instead of double-counting or dropping it.
package altneu

import "github.com/cockroachdb/trace-core/lattice"

// Role is a relation's position relative to the delta driving a
// delta-query at a given outer time: Alt ("before") sorts beneath Neu
// ("after") only when the underlying times are otherwise equal.
type Role int

const (
	Alt Role = iota
	Neu
)

func (r Role) String() string {
	if r == Neu {
		return "neu"
	}
	return "alt"
}

// AltNeu lexicographically refines T with a Role, but only where it
// matters: when two times are equal, Role breaks the tie (Alt before
// Neu); when the times differ, Role is irrelevant and the comparison
// falls through to T's own order. This is deliberately not the
// componentwise product order lattice.Product implements — a
// delta-query's correctness depends on exactly this collapse of Role
// once time has already distinguished two points.
type AltNeu[T lattice.OrderedLattice[T]] struct {
	Time T
	Role Role
}

// EnterAlt lifts t into the Alt role, placing it strictly before the
// driving delta at the same outer time.
func EnterAlt[T lattice.OrderedLattice[T]](t T) AltNeu[T] {
	return AltNeu[T]{Time: t, Role: Alt}
}

// EnterNeu lifts t into the Neu role, placing it strictly after the
// driving delta at the same outer time.
func EnterNeu[T lattice.OrderedLattice[T]](t T) AltNeu[T] {
	return AltNeu[T]{Time: t, Role: Neu}
}

func (a AltNeu[T]) LessEqual(other AltNeu[T]) bool {
	if lattice.Equal(a.Time, other.Time) {
		return a.Role == Alt || other.Role == Neu
	}
	return a.Time.LessEqual(other.Time)
}

// Join returns the least upper bound: the join of the two times, with
// Role set to Neu if either operand whose time equals that join also
// carries Neu, and Alt otherwise (Alt being this two-point lattice's
// bottom).
func (a AltNeu[T]) Join(other AltNeu[T]) AltNeu[T] {
	t := a.Time.Join(other.Time)
	role := Alt
	if lattice.Equal(a.Time, t) && a.Role == Neu {
		role = Neu
	}
	if lattice.Equal(other.Time, t) && other.Role == Neu {
		role = Neu
	}
	return AltNeu[T]{Time: t, Role: role}
}

// Meet returns the greatest lower bound, dually to Join: Role is Alt if
// either operand whose time equals the meet also carries Alt, and Neu
// (this lattice's top) otherwise.
func (a AltNeu[T]) Meet(other AltNeu[T]) AltNeu[T] {
	t := a.Time.Meet(other.Time)
	role := Neu
	if lattice.Equal(a.Time, t) && a.Role == Alt {
		role = Alt
	}
	if lattice.Equal(other.Time, t) && other.Role == Alt {
		role = Alt
	}
	return AltNeu[T]{Time: t, Role: role}
}

func (a AltNeu[T]) Minimum() AltNeu[T] {
	var zero T
	return AltNeu[T]{Time: zero.Minimum(), Role: Alt}
}

func (a AltNeu[T]) Maximum() AltNeu[T] {
	var zero T
	return AltNeu[T]{Time: zero.Maximum(), Role: Neu}
}

// Compare gives AltNeu a total order matching LessEqual: by Time first,
// then by Role (Alt before Neu).
func (a AltNeu[T]) Compare(other AltNeu[T]) int {
	if c := a.Time.Compare(other.Time); c != 0 {
		return c
	}
	return int(a.Role) - int(other.Role)
}

var _ lattice.OrderedLattice[AltNeu[lattice.Instant]] = AltNeu[lattice.Instant]{}
