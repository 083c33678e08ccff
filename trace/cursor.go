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

import (
	"sort"

	"github.com/cockroachdb/trace-core/diff"
)

// Cursor walks a Batch's updates grouped first by Key and then by Val,
// exposing the times and diffs for the current (Key, Val) pair via
// MapTimes. Keys and, within a key, values are visited in ascending
// order. A freshly built Cursor is positioned at the first key (and its
// first value), so KeyValid is true unless the batch is empty.
type Cursor[K Ordered[K], V Ordered[V], T Time[T], D diff.Diff[D]] interface {
	// KeyValid reports whether the cursor is positioned at a valid key.
	KeyValid() bool
	// ValValid reports whether the cursor is positioned at a valid value
	// within the current key. Only meaningful when KeyValid is true.
	ValValid() bool
	// Key returns the current key. Panics if !KeyValid().
	Key() K
	// Val returns the current value. Panics if !ValValid().
	Val() V
	// MapTimes invokes fn once per (time, diff) recorded against the
	// current (Key, Val) pair, in ascending time order.
	MapTimes(fn func(t T, d D))
	// StepKey advances to the next key, positioning at its first value.
	StepKey()
	// SeekKey advances directly to the first key >= key.
	SeekKey(key K)
	// StepVal advances to the next value within the current key.
	StepVal()
	// SeekVal advances directly to the first value >= val within the
	// current key.
	SeekVal(val V)
	// RewindKeys returns the cursor to its initial position, at the first
	// key.
	RewindKeys()
	// RewindVals returns the cursor to the first value of the current
	// key.
	RewindVals()
}

// sliceCursor is the Cursor implementation backing a Batch: the updates
// slice is already sorted by (Key, Val, Time), so every traversal and
// seek operation is a binary search for a group boundary.
type sliceCursor[K Ordered[K], V Ordered[V], T Time[T], D diff.Diff[D]] struct {
	updates []Update[K, V, T, D]

	keyLo, keyHi int // [keyLo, keyHi) bounds the current key's updates
	valLo, valHi int // [valLo, valHi) bounds the current (key,val)'s updates
}

func newSliceCursor[K Ordered[K], V Ordered[V], T Time[T], D diff.Diff[D]](updates []Update[K, V, T, D]) *sliceCursor[K, V, T, D] {
	c := &sliceCursor[K, V, T, D]{updates: updates}
	c.RewindKeys()
	return c
}

func (c *sliceCursor[K, V, T, D]) KeyValid() bool { return c.keyLo < len(c.updates) }

func (c *sliceCursor[K, V, T, D]) ValValid() bool { return c.valLo < c.keyHi }

func (c *sliceCursor[K, V, T, D]) Key() K {
	return c.updates[c.keyLo].Key
}

func (c *sliceCursor[K, V, T, D]) Val() V {
	return c.updates[c.valLo].Val
}

func (c *sliceCursor[K, V, T, D]) MapTimes(fn func(t T, d D)) {
	if !c.ValValid() {
		return
	}
	for i := c.valLo; i < c.valHi; i++ {
		fn(c.updates[i].Time, c.updates[i].Diff)
	}
}

func (c *sliceCursor[K, V, T, D]) StepKey() {
	c.keyLo = c.keyHi
	c.setKeyBounds()
}

func (c *sliceCursor[K, V, T, D]) SeekKey(key K) {
	c.keyLo += sort.Search(len(c.updates)-c.keyLo, func(i int) bool {
		return c.updates[c.keyLo+i].Key.Compare(key) >= 0
	})
	c.setKeyBounds()
}

func (c *sliceCursor[K, V, T, D]) StepVal() {
	c.valLo = c.valHi
	c.setValBounds()
}

func (c *sliceCursor[K, V, T, D]) SeekVal(val V) {
	c.valLo += sort.Search(c.keyHi-c.valLo, func(i int) bool {
		return c.updates[c.valLo+i].Val.Compare(val) >= 0
	})
	c.setValBounds()
}

func (c *sliceCursor[K, V, T, D]) RewindKeys() {
	c.keyLo = 0
	c.setKeyBounds()
}

func (c *sliceCursor[K, V, T, D]) RewindVals() {
	c.valLo = c.keyLo
	c.setValBounds()
}

// setKeyBounds recomputes keyHi (the end of the current key's run) and
// resets the value position to the start of that run.
func (c *sliceCursor[K, V, T, D]) setKeyBounds() {
	if c.keyLo >= len(c.updates) {
		c.keyHi = c.keyLo
		c.valLo, c.valHi = c.keyLo, c.keyLo
		return
	}
	key := c.updates[c.keyLo].Key
	c.keyHi = c.keyLo + sort.Search(len(c.updates)-c.keyLo, func(i int) bool {
		return c.updates[c.keyLo+i].Key.Compare(key) > 0
	})
	c.RewindVals()
}

// setValBounds recomputes valHi (the end of the current value's run,
// bounded by the current key's range).
func (c *sliceCursor[K, V, T, D]) setValBounds() {
	if c.valLo >= c.keyHi {
		c.valHi = c.valLo
		return
	}
	val := c.updates[c.valLo].Val
	c.valHi = c.valLo + sort.Search(c.keyHi-c.valLo, func(i int) bool {
		return c.updates[c.valLo+i].Val.Compare(val) > 0
	})
}
