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

package runtime

import (
	"sync"

	"github.com/cockroachdb/trace-core/arrange"
	"github.com/cockroachdb/trace-core/diff"
	"github.com/cockroachdb/trace-core/internal/engcfg"
	"github.com/cockroachdb/trace-core/lattice"
	"github.com/cockroachdb/trace-core/trace"
)

// InputHandle is the write side of a collection an embedding runtime
// feeds this module: updates are staged with Send and only become
// visible to readers once AdvanceTo declares no more will arrive
// before a given time. A real dataflow runtime's own input operator
// plays this role; this module does not implement one itself, only the
// arrangement a real one would write into.
type InputHandle[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]] interface {
	Send(u trace.Update[K, V, T, D])
	AdvanceTo(t T) error
	Close() error
}

// FrontieredInput additionally exposes the frontier the handle has
// committed to — the signal propose, validate, and Turn wait on before
// treating a stashed change as resolvable.
type FrontieredInput[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]] interface {
	InputHandle[K, V, T, D]
	Frontier() (lattice.Antichain[T], <-chan struct{})
}

// ScopeBuilder models the piece of a real runtime's dataflow-building
// API this module's operators are constructed against: it hands back a
// fresh input and the Arrangement that input feeds, the way a Timely
// scope's new_input hands back a Stream and a handle to drive it.
type ScopeBuilder[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]] interface {
	NewInput() (FrontieredInput[K, V, T, D], *arrange.Arrangement[K, V, T, D])
}

// TestDriver is a minimal, in-memory ScopeBuilder used only by this
// module's own tests: it has no progress tracking across multiple
// inputs, no workers, and no scheduling beyond what each AdvanceTo call
// does synchronously.
type TestDriver[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]] struct {
	Runtime *Runtime
}

// NewTestDriver builds a TestDriver backed by rt, or a Discard-logging,
// metrics-disabled Runtime if rt is nil.
func NewTestDriver[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]](rt *Runtime) *TestDriver[K, V, T, D] {
	if rt == nil {
		rt = &Runtime{Config: engcfg.Defaults()}
	}
	return &TestDriver[K, V, T, D]{Runtime: rt}
}

// NewInput allocates a fresh Arrangement and a handle that stages
// updates into it.
func (d *TestDriver[K, V, T, D]) NewInput() (FrontieredInput[K, V, T, D], *arrange.Arrangement[K, V, T, D]) {
	var zero T
	arr := arrange.New[K, V, T, D](d.Runtime.Config, d.Runtime.Metrics, d.Runtime.Logger)
	in := &memInput[K, V, T, D]{arr: arr, lower: lattice.NewAntichain(zero.Minimum())}
	return in, arr
}

// memInput is the TestDriver's InputHandle implementation: it buffers
// Sends and turns each AdvanceTo into a single Batch insertion.
type memInput[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]] struct {
	mu      sync.Mutex
	arr     *arrange.Arrangement[K, V, T, D]
	pending []trace.Update[K, V, T, D]
	lower   lattice.Antichain[T]
	closed  bool
}

func (in *memInput[K, V, T, D]) Send(u trace.Update[K, V, T, D]) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pending = append(in.pending, u)
}

// AdvanceTo commits every update staged since the last AdvanceTo (or
// since the input was created) into a single Batch bounded by the
// handle's previous frontier and t, then adopts t as the new frontier.
func (in *memInput[K, V, T, D]) AdvanceTo(t T) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	upper := lattice.NewAntichain(t)
	b := trace.NewBuilder[K, V, T, D](len(in.pending))
	for _, u := range in.pending {
		b.Push(u)
	}
	in.pending = in.pending[:0]
	var zero T
	identity := lattice.NewAntichain(zero.Minimum())
	if err := in.arr.Insert(b.Done(in.lower, upper, identity)); err != nil {
		return err
	}
	in.lower = upper
	return nil
}

func (in *memInput[K, V, T, D]) Frontier() (lattice.Antichain[T], <-chan struct{}) {
	return in.arr.Frontier()
}

// Close commits anything still staged in a final batch whose upper is
// the empty frontier, declaring that nothing further will ever arrive;
// the input's frontier is empty afterwards. A second Close does nothing.
func (in *memInput[K, V, T, D]) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return nil
	}
	in.closed = true
	b := trace.NewBuilder[K, V, T, D](len(in.pending))
	for _, u := range in.pending {
		b.Push(u)
	}
	in.pending = nil
	var zero T
	upper := lattice.NewAntichain[T]()
	if err := in.arr.Insert(b.Done(in.lower, upper, lattice.NewAntichain(zero.Minimum()))); err != nil {
		return err
	}
	in.lower = upper
	return nil
}
