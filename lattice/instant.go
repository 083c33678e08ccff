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

import (
	"fmt"
	"math"
)

// Instant is a totally-ordered logical time: a wall-clock nanosecond
// component plus a logical tie-breaker, modeled on the hybrid logical
// clock timestamps used elsewhere in this codebase's lineage to order
// changefeed-style events. Totally ordered scalars have Join = max and
// Meet = min.
type Instant struct {
	Nanos   int64
	Logical int32
}

// New builds an Instant from its two components.
func New(nanos int64, logical int32) Instant {
	return Instant{Nanos: nanos, Logical: logical}
}

// Zero is the bottom Instant.
func Zero() Instant { return Instant{} }

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater
// than b, ordering first by Nanos and then by Logical.
func Compare(a, b Instant) int {
	switch {
	case a.Nanos < b.Nanos:
		return -1
	case a.Nanos > b.Nanos:
		return 1
	case a.Logical < b.Logical:
		return -1
	case a.Logical > b.Logical:
		return 1
	default:
		return 0
	}
}

// Compare implements trace.Ordered.
func (t Instant) Compare(other Instant) int { return Compare(t, other) }

func (t Instant) LessEqual(other Instant) bool { return Compare(t, other) <= 0 }

func (t Instant) Join(other Instant) Instant {
	if Compare(t, other) >= 0 {
		return t
	}
	return other
}

func (t Instant) Meet(other Instant) Instant {
	if Compare(t, other) <= 0 {
		return t
	}
	return other
}

func (t Instant) Minimum() Instant { return Instant{} }

func (t Instant) Maximum() Instant {
	return Instant{Nanos: math.MaxInt64, Logical: math.MaxInt32}
}

func (t Instant) String() string {
	return fmt.Sprintf("%d.%d", t.Nanos, t.Logical)
}

var _ Lattice[Instant] = Instant{}
