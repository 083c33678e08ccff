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

// Package variable implements the recursive-collection primitive a
// least-fixed-point computation (transitive closure, Datalog-style
// rules) is built from: a feedback arrangement seeded from a source
// collection, closed each round by supplying the increment the round
// computed.
package variable

import (
	"runtime"
	"sync"

	"github.com/cockroachdb/trace-core/arrange"
	"github.com/cockroachdb/trace-core/diff"
	"github.com/cockroachdb/trace-core/internal/engcfg"
	"github.com/cockroachdb/trace-core/internal/metrics"
	"github.com/cockroachdb/trace-core/internal/rtlog"
	"github.com/cockroachdb/trace-core/lattice"
	"github.com/cockroachdb/trace-core/trace"
)

type state int

const (
	stateOpen state = iota
	stateClosed
)

// Variable is a feedback edge: Cycle exposes the current accumulated
// value for downstream operators to read while the round's output is
// still being computed, and Set supplies the increment that round
// contributed, closing the loop for this round.
//
// A Variable must have Set called exactly once. Forgetting to call it
// is the Go analogue of the reference implementation's "dropped while
// Open is a bug": since Go has no deterministic destructors, this is
// enforced by a finalizer that logs rather than panics, since a panic
// raised from GC-triggered finalizer code at an unpredictable later
// point would be worse than the leak it is trying to catch.
type Variable[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]] struct {
	mu     sync.Mutex
	state  state
	cycle  *arrange.Arrangement[K, V, T, D]
	logger rtlog.Logger
}

// From allocates a Variable seeded with source's current content. The
// returned Variable's Cycle can be read immediately by the computation
// that will eventually call Set.
func From[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]](
	cfg engcfg.Config, m *metrics.Set, logger rtlog.Logger, source *arrange.Arrangement[K, V, T, D],
) (*Variable[K, V, T, D], error) {
	if logger == nil {
		logger = rtlog.Discard()
	}
	cycle := arrange.New[K, V, T, D](cfg, m, logger)

	var zero T
	identity := lattice.NewAntichain(zero.Minimum())

	var copyErr error
	source.MapBatches(func(b trace.Batch[K, V, T, D]) {
		if copyErr != nil {
			return
		}
		builder := trace.NewBuilder[K, V, T, D](b.Len())
		c := b.Cursor()
		for c.KeyValid() {
			for c.ValValid() {
				c.MapTimes(func(t T, d D) {
					builder.Push(trace.Update[K, V, T, D]{Key: c.Key(), Val: c.Val(), Time: t, Diff: d})
				})
				c.StepVal()
			}
			c.StepKey()
		}
		if copyErr = cycle.Insert(builder.Done(b.Lower(), b.Upper(), identity)); copyErr != nil {
			return
		}
	})
	if copyErr != nil {
		return nil, copyErr
	}

	v := &Variable[K, V, T, D]{state: stateOpen, cycle: cycle, logger: logger}
	runtime.SetFinalizer(v, func(v *Variable[K, V, T, D]) {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.state == stateOpen {
			v.logger.Warn("variable: garbage-collected without Set ever being called")
		}
	})
	return v, nil
}

// Cycle returns a new reference to the feedback arrangement; downstream
// operators should Release it when they are done reading.
func (v *Variable[K, V, T, D]) Cycle() *arrange.Arrangement[K, V, T, D] {
	return v.cycle.Acquire()
}

// Set supplies this round's increment — the portion of the computed
// result not already reflected in Cycle — closing the Variable. Calling
// Set a second time is a programmer error and panics, matching the
// state machine's Open -> Closed, terminal transition.
func (v *Variable[K, V, T, D]) Set(increment trace.Batch[K, V, T, D]) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == stateClosed {
		panic("variable: Set called on an already-closed Variable")
	}
	v.state = stateClosed
	runtime.SetFinalizer(v, nil)
	return v.cycle.Insert(increment)
}
