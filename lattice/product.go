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

// OrderedLattice is a Lattice whose elements are also totally ordered,
// the constraint the trace package's Batch requires of any timestamp
// type. All concrete lattices in this package satisfy it.
type OrderedLattice[T any] interface {
	Lattice[T]
	Compare(other T) int
}

// Product is the componentwise product of two lattices: join and meet
// operate independently on each coordinate, and its total order is
// lexicographic (Outer first, then Inner). This is the mechanism a
// nested dataflow scope uses to extend an outer time with an inner
// iteration counter; altneu.AltNeu builds its own lexicographic
// refinement directly rather than reusing Product, since Alt/Neu
// ordering is not componentwise, but Product is the general-purpose
// tool for any componentwise nesting (e.g. supplying an outer query
// time alongside a per-worker sequence number).
type Product[A OrderedLattice[A], B OrderedLattice[B]] struct {
	Outer A
	Inner B
}

// NewProduct builds a Product from its two coordinates.
func NewProduct[A OrderedLattice[A], B OrderedLattice[B]](outer A, inner B) Product[A, B] {
	return Product[A, B]{Outer: outer, Inner: inner}
}

func (p Product[A, B]) LessEqual(other Product[A, B]) bool {
	return p.Outer.LessEqual(other.Outer) && p.Inner.LessEqual(other.Inner)
}

func (p Product[A, B]) Join(other Product[A, B]) Product[A, B] {
	return Product[A, B]{
		Outer: p.Outer.Join(other.Outer),
		Inner: p.Inner.Join(other.Inner),
	}
}

func (p Product[A, B]) Meet(other Product[A, B]) Product[A, B] {
	return Product[A, B]{
		Outer: p.Outer.Meet(other.Outer),
		Inner: p.Inner.Meet(other.Inner),
	}
}

func (p Product[A, B]) Minimum() Product[A, B] {
	return Product[A, B]{Outer: p.Outer.Minimum(), Inner: p.Inner.Minimum()}
}

func (p Product[A, B]) Maximum() Product[A, B] {
	return Product[A, B]{Outer: p.Outer.Maximum(), Inner: p.Inner.Maximum()}
}

// Compare orders Products lexicographically by Outer then Inner.
func (p Product[A, B]) Compare(other Product[A, B]) int {
	if c := p.Outer.Compare(other.Outer); c != 0 {
		return c
	}
	return p.Inner.Compare(other.Inner)
}

var (
	_ Lattice[Product[Instant, Instant]]        = Product[Instant, Instant]{}
	_ OrderedLattice[Product[Instant, Instant]] = Product[Instant, Instant]{}
)
