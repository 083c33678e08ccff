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

package arrange

import (
	"github.com/cockroachdb/trace-core/diff"
	"github.com/cockroachdb/trace-core/lattice"
	"github.com/cockroachdb/trace-core/trace"
)

// EnterAt draws a Cursor over the arrangement's content up to upper
// with every time rewritten through lift, the mechanism a nested
// dataflow scope uses to give an outer relation its own refined
// timestamp type (typically altneu.EnterAlt or altneu.EnterNeu) without
// copying or re-arranging the relation itself.
func EnterAt[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], T2 trace.Time[T2], D diff.Diff[D]](
	a *Arrangement[K, V, T, D], upper lattice.Antichain[T], lift func(T) T2,
) (trace.Cursor[K, V, T2, D], error) {
	inner, err := a.CursorThrough(upper)
	if err != nil {
		return nil, err
	}
	return &liftedCursor[K, V, T, T2, D]{inner: inner, lift: lift}, nil
}

// liftedCursor adapts a Cursor[K,V,T,D] to present as Cursor[K,V,T2,D]
// by rewriting every time MapTimes reports through lift. Key and value
// traversal pass straight through.
type liftedCursor[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], T2 trace.Time[T2], D diff.Diff[D]] struct {
	inner trace.Cursor[K, V, T, D]
	lift  func(T) T2
}

func (c *liftedCursor[K, V, T, T2, D]) KeyValid() bool { return c.inner.KeyValid() }
func (c *liftedCursor[K, V, T, T2, D]) ValValid() bool { return c.inner.ValValid() }
func (c *liftedCursor[K, V, T, T2, D]) Key() K         { return c.inner.Key() }
func (c *liftedCursor[K, V, T, T2, D]) Val() V         { return c.inner.Val() }

func (c *liftedCursor[K, V, T, T2, D]) MapTimes(fn func(t T2, d D)) {
	c.inner.MapTimes(func(t T, d D) { fn(c.lift(t), d) })
}

func (c *liftedCursor[K, V, T, T2, D]) StepKey()       { c.inner.StepKey() }
func (c *liftedCursor[K, V, T, T2, D]) SeekKey(key K)  { c.inner.SeekKey(key) }
func (c *liftedCursor[K, V, T, T2, D]) StepVal()       { c.inner.StepVal() }
func (c *liftedCursor[K, V, T, T2, D]) SeekVal(val V)  { c.inner.SeekVal(val) }
func (c *liftedCursor[K, V, T, T2, D]) RewindKeys()    { c.inner.RewindKeys() }
func (c *liftedCursor[K, V, T, T2, D]) RewindVals()    { c.inner.RewindVals() }

var _ trace.Cursor[trace.IntKey, trace.IntKey, lattice.Instant, diff.IntDiff] = (*liftedCursor[trace.IntKey, trace.IntKey, lattice.Instant, lattice.Instant, diff.IntDiff])(nil)
