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

package join

import (
	"sort"
	"sync"

	"github.com/cockroachdb/trace-core/arrange"
	"github.com/cockroachdb/trace-core/diff"
	"github.com/cockroachdb/trace-core/internal/metrics"
	"github.com/cockroachdb/trace-core/internal/stopper"
	"github.com/cockroachdb/trace-core/trace"
)

// Turn is propose generalized into the cooperative, channel-driven
// shape a standing dataflow operator would have: changes arrive on In
// and are stashed rather than looked up immediately, since arranged
// may not yet hold every update up to their time. Only once arranged's
// frontier has passed a stashed change's time is it safe to resolve,
// so Step (or Run's background loop) re-checks the frontier and drains
// whatever has become ready, sorting the ready batch by key first so a
// single forward pass over the cursor resolves all of it without
// rewinding between lookups.
type Turn[P any, K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Mul[D]] struct {
	In  chan Change[P, T, D]
	Out chan Extension[P, V, T, D]

	arranged *arrange.Arrangement[K, V, T, D]
	metrics  *metrics.Set
	keyOf    func(P) K

	mu    sync.Mutex
	stash []Change[P, T, D]
}

// NewTurn allocates a Turn that resolves changes against arranged.
func NewTurn[P any, K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Mul[D]](
	arranged *arrange.Arrangement[K, V, T, D], m *metrics.Set, keyOf func(P) K,
) *Turn[P, K, V, T, D] {
	return &Turn[P, K, V, T, D]{
		In:       make(chan Change[P, T, D], 64),
		Out:      make(chan Extension[P, V, T, D], 64),
		arranged: arranged,
		metrics:  m,
		keyOf:    keyOf,
	}
}

// Push stashes a change for the next Step to consider, bypassing In.
// Tests that drive a Turn synchronously use this instead of a goroutine
// feeding the channel.
func (t *Turn[P, K, V, T, D]) Push(ch Change[P, T, D]) {
	t.mu.Lock()
	t.stash = append(t.stash, ch)
	t.mu.Unlock()
}

// Run launches the Turn's drain loop under ctx: every change received
// on In is stashed, and every time arranged's frontier advances Step is
// called to drain whatever has become ready. A well-behaved caller
// closes In or calls ctx.Stop to wind the loop down.
func (t *Turn[P, K, V, T, D]) Run(ctx *stopper.Context) {
	ctx.Go(func() error {
		_, changed := t.arranged.Frontier()
		for {
			select {
			case <-ctx.Stopping():
				return nil
			case <-ctx.Done():
				return nil
			case ch, ok := <-t.In:
				if !ok {
					return nil
				}
				t.Push(ch)
			case <-changed:
				_, changed = t.arranged.Frontier()
			}
			if err := t.Step(); err != nil {
				return err
			}
		}
	})
}

// Step drains every stashed change whose time arranged's current
// frontier has already passed, emitting matches onto Out. It returns
// immediately, without blocking, if nothing is ready yet.
func (t *Turn[P, K, V, T, D]) Step() error {
	upper, _ := t.arranged.Frontier()

	t.mu.Lock()
	var ready, remaining []Change[P, T, D]
	for _, ch := range t.stash {
		if upper.Dominates(ch.Time) {
			remaining = append(remaining, ch)
		} else {
			ready = append(ready, ch)
		}
	}
	t.stash = remaining
	t.mu.Unlock()

	if len(ready) == 0 {
		return nil
	}
	sort.Slice(ready, func(i, j int) bool {
		return t.keyOf(ready[i].Prefix).Compare(t.keyOf(ready[j].Prefix)) < 0
	})

	cur, err := t.arranged.CursorThrough(upper)
	if err != nil {
		return err
	}

	produced := 0
	for _, ch := range ready {
		key := t.keyOf(ch.Prefix)
		cur.SeekKey(key)
		if !cur.KeyValid() || cur.Key().Compare(key) != 0 {
			continue
		}
		for cur.ValValid() {
			val := cur.Val()
			cur.MapTimes(func(tm T, d D) {
				produced++
				t.Out <- Extension[P, V, T, D]{
					Prefix: ch.Prefix,
					Value:  val,
					Time:   ch.Time.Join(tm),
					Diff:   ch.Diff.Mul(d),
				}
			})
			cur.StepVal()
		}
	}
	t.metrics.AddProposeExtensions(produced)
	return nil
}

// ValidateTurn is validate generalized the same way: it wraps a Turn
// whose "prefix" is the candidate Extension itself, keyed by (prefix,
// value) against a relation arranged by its own full tuple, and strips
// the matched trace.Unit value back off before handing survivors to
// Out. ValidateTurn is built on the propose machinery (Turn); the
// plain Validate and ValidateCursor functions are not, and do their
// own per-extension key lookup.
type ValidateTurn[P any, V trace.Ordered[V], K trace.Ordered[K], T trace.Time[T], D diff.Mul[D]] struct {
	inner *Turn[Extension[P, V, T, D], K, trace.Unit, T, D]
	Out   chan Extension[P, V, T, D]
}

// NewValidateTurn allocates a ValidateTurn that checks candidates
// against arranged, a relation keyed on its own full tuple.
func NewValidateTurn[P any, V trace.Ordered[V], K trace.Ordered[K], T trace.Time[T], D diff.Mul[D]](
	arranged *arrange.Arrangement[K, trace.Unit, T, D], m *metrics.Set, keyOf func(prefix P, value V) K,
) *ValidateTurn[P, V, K, T, D] {
	inner := NewTurn[Extension[P, V, T, D], K, trace.Unit, T, D](arranged, m, func(ext Extension[P, V, T, D]) K {
		return keyOf(ext.Prefix, ext.Value)
	})
	return &ValidateTurn[P, V, K, T, D]{inner: inner, Out: make(chan Extension[P, V, T, D], cap(inner.Out))}
}

// Push stashes a candidate extension, framed as the inner Turn's own
// Change so that its Prefix carries the whole candidate.
func (vt *ValidateTurn[P, V, K, T, D]) Push(ext Extension[P, V, T, D]) {
	vt.inner.Push(Change[Extension[P, V, T, D], T, D]{Prefix: ext, Time: ext.Time, Diff: ext.Diff})
}

// Step drains the inner Turn and unwraps every survivor back into a
// plain Extension before forwarding it to Out.
func (vt *ValidateTurn[P, V, K, T, D]) Step() error {
	if err := vt.inner.Step(); err != nil {
		return err
	}
	for {
		select {
		case doubled := <-vt.inner.Out:
			vt.Out <- vt.unwrap(doubled)
		default:
			return nil
		}
	}
}

// Run launches the background drain loop the way Turn.Run does,
// unwrapping every survivor the inner Turn produces before forwarding
// it to Out.
func (vt *ValidateTurn[P, V, K, T, D]) Run(ctx *stopper.Context) {
	vt.inner.Run(ctx)
	ctx.Go(func() error {
		for {
			select {
			case <-ctx.Stopping():
				return nil
			case <-ctx.Done():
				return nil
			case doubled, ok := <-vt.inner.Out:
				if !ok {
					return nil
				}
				vt.Out <- vt.unwrap(doubled)
			}
		}
	})
}

func (vt *ValidateTurn[P, V, K, T, D]) unwrap(doubled Extension[Extension[P, V, T, D], trace.Unit, T, D]) Extension[P, V, T, D] {
	return Extension[P, V, T, D]{
		Prefix: doubled.Prefix.Prefix,
		Value:  doubled.Prefix.Value,
		Time:   doubled.Time,
		Diff:   doubled.Diff,
	}
}
