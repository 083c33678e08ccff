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

package diff

// IntDiff is a bounded int64 difference. Add and Mul use ordinary
// machine-word arithmetic and therefore wrap around on overflow exactly
// like any other int64 expression; checking for that overflow is the
// caller's responsibility, not this type's. Callers that cannot
// tolerate silent wraparound should use BigDiff instead.
type IntDiff int64

func (d IntDiff) Add(other IntDiff) IntDiff { return d + other }
func (d IntDiff) IsZero() bool              { return d == 0 }
func (d IntDiff) Mul(other IntDiff) IntDiff { return d * other }

var (
	_ Diff[IntDiff] = IntDiff(0)
	_ Mul[IntDiff]  = IntDiff(0)
)
