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

import "math/big"

// BigDiff is an arbitrary-precision difference, for callers whose
// join/reduction depth makes IntDiff's silent int64 wraparound
// unacceptable.
type BigDiff struct {
	v *big.Int
}

// NewBigDiff wraps an int64 as a BigDiff.
func NewBigDiff(v int64) BigDiff {
	return BigDiff{v: big.NewInt(v)}
}

func (d BigDiff) Add(other BigDiff) BigDiff {
	return BigDiff{v: new(big.Int).Add(d.intOrZero(), other.intOrZero())}
}

func (d BigDiff) Mul(other BigDiff) BigDiff {
	return BigDiff{v: new(big.Int).Mul(d.intOrZero(), other.intOrZero())}
}

func (d BigDiff) IsZero() bool {
	return d.v == nil || d.v.Sign() == 0
}

// Int64 returns the value as an int64, for tests and display; it is
// not used by the engine itself.
func (d BigDiff) Int64() int64 {
	return d.intOrZero().Int64()
}

func (d BigDiff) intOrZero() *big.Int {
	if d.v == nil {
		return big.NewInt(0)
	}
	return d.v
}

func (d BigDiff) String() string {
	return d.intOrZero().String()
}

var (
	_ Diff[BigDiff] = BigDiff{}
	_ Mul[BigDiff]  = BigDiff{}
)
