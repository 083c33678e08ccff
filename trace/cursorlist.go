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

package trace

import "github.com/cockroachdb/trace-core/diff"

// CursorList presents several Cursors, each over a different Batch, as
// a single logical Cursor over their union. This is what lets a Spine
// answer a query across all of its layers at once without first
// merging them into a single Batch.
type CursorList[K Ordered[K], V Ordered[V], T Time[T], D diff.Diff[D]] struct {
	cursors []Cursor[K, V, T, D]
	// active holds the indices into cursors that agree on the smallest
	// remaining key; it is recomputed whenever the list's position
	// changes.
	active []int
}

// NewCursorList builds a CursorList over the given cursors, each
// expected to start at its own RewindKeys position.
func NewCursorList[K Ordered[K], V Ordered[V], T Time[T], D diff.Diff[D]](cursors []Cursor[K, V, T, D]) *CursorList[K, V, T, D] {
	cl := &CursorList[K, V, T, D]{cursors: cursors}
	cl.minimizeKeys()
	return cl
}

func (cl *CursorList[K, V, T, D]) KeyValid() bool { return len(cl.active) > 0 }

func (cl *CursorList[K, V, T, D]) ValValid() bool {
	for _, idx := range cl.active {
		if cl.cursors[idx].ValValid() {
			return true
		}
	}
	return false
}

func (cl *CursorList[K, V, T, D]) Key() K { return cl.cursors[cl.active[0]].Key() }

func (cl *CursorList[K, V, T, D]) Val() V {
	best := -1
	for _, idx := range cl.active {
		c := cl.cursors[idx]
		if !c.ValValid() {
			continue
		}
		if best == -1 || c.Val().Compare(cl.cursors[best].Val()) < 0 {
			best = idx
		}
	}
	return cl.cursors[best].Val()
}

// MapTimes invokes fn once per (time, diff) recorded by any underlying
// cursor against the current (Key, Val) pair.
func (cl *CursorList[K, V, T, D]) MapTimes(fn func(t T, d D)) {
	val := cl.Val()
	for _, idx := range cl.active {
		c := cl.cursors[idx]
		if c.ValValid() && c.Val().Compare(val) == 0 {
			c.MapTimes(fn)
		}
	}
}

func (cl *CursorList[K, V, T, D]) StepKey() {
	for _, idx := range cl.active {
		cl.cursors[idx].StepKey()
	}
	cl.minimizeKeys()
}

func (cl *CursorList[K, V, T, D]) SeekKey(key K) {
	for _, c := range cl.cursors {
		c.SeekKey(key)
	}
	cl.minimizeKeys()
}

func (cl *CursorList[K, V, T, D]) StepVal() {
	val := cl.Val()
	for _, idx := range cl.active {
		c := cl.cursors[idx]
		if c.ValValid() && c.Val().Compare(val) == 0 {
			c.StepVal()
		}
	}
}

func (cl *CursorList[K, V, T, D]) SeekVal(val V) {
	for _, idx := range cl.active {
		cl.cursors[idx].SeekVal(val)
	}
}

func (cl *CursorList[K, V, T, D]) RewindKeys() {
	for _, c := range cl.cursors {
		c.RewindKeys()
	}
	cl.minimizeKeys()
}

func (cl *CursorList[K, V, T, D]) RewindVals() {
	for _, idx := range cl.active {
		cl.cursors[idx].RewindVals()
	}
}

// minimizeKeys recomputes the active set: the indices of every cursor
// currently positioned at the smallest key among all of them.
func (cl *CursorList[K, V, T, D]) minimizeKeys() {
	cl.active = cl.active[:0]
	var minKey K
	haveMin := false
	for i, c := range cl.cursors {
		if !c.KeyValid() {
			continue
		}
		switch {
		case !haveMin || c.Key().Compare(minKey) < 0:
			minKey = c.Key()
			haveMin = true
			cl.active = cl.active[:0]
			cl.active = append(cl.active, i)
		case c.Key().Compare(minKey) == 0:
			cl.active = append(cl.active, i)
		}
	}
}
