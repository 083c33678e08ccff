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

// Package diff defines the weight algebra that update triples carry: a
// commutative monoid with a zero test, optionally extended with
// multiplication for the join-validation path.
package diff

// Diff is a commutative monoid: Add is associative and commutative, and
// there is an implicit identity (the value for which IsZero is true).
// Diffs of zero must never appear in a persisted batch; Builder drops
// them as it coalesces.
type Diff[D any] interface {
	Add(other D) D
	IsZero() bool
}

// Mul extends Diff with a multiplication that distributes over Add.
// propose/validate require Mul so that an extension's weight can be
// combined with a matched record's weight.
type Mul[D any] interface {
	Diff[D]
	Mul(other D) D
}
