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

// Package arrange shares a single Spine across every operator that
// reads it, so a join against the same relation twice (the "propose"
// and "validate" halves of a lookup, say) does not maintain two copies
// of its trace.
package arrange

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/cockroachdb/trace-core/diff"
	"github.com/cockroachdb/trace-core/internal/engcfg"
	"github.com/cockroachdb/trace-core/internal/metrics"
	"github.com/cockroachdb/trace-core/internal/notify"
	"github.com/cockroachdb/trace-core/internal/rtlog"
	"github.com/cockroachdb/trace-core/lattice"
	"github.com/cockroachdb/trace-core/spine"
	"github.com/cockroachdb/trace-core/trace"
)

// Arrangement is a refcounted handle around a Spine. Every operator
// that reads the same relation holds its own Arrangement obtained via
// Acquire, and the underlying trace is only closed once the last
// holder calls Release.
type Arrangement[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]] struct {
	mu       sync.Mutex
	trace    *spine.Spine[K, V, T, D]
	refs     int
	frontier *notify.Var[lattice.Antichain[T]]
	logger   rtlog.Logger
}

// New allocates a fresh Arrangement with one outstanding reference.
func New[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]](cfg engcfg.Config, m *metrics.Set, logger rtlog.Logger) *Arrangement[K, V, T, D] {
	if logger == nil {
		logger = rtlog.Discard()
	}
	var zero T
	return &Arrangement[K, V, T, D]{
		trace:    spine.New[K, V, T, D](cfg, m, logger),
		refs:     1,
		frontier: notify.New(lattice.NewAntichain(zero.Minimum())),
		logger:   logger,
	}
}

// Acquire takes out an additional reference, returning the same handle.
func (a *Arrangement[K, V, T, D]) Acquire() *Arrangement[K, V, T, D] {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refs++
	return a
}

// Release drops a reference. The caller must not use the handle again
// after its last Release.
func (a *Arrangement[K, V, T, D]) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.refs <= 0 {
		return errors.New("arrange: Release called more times than Acquire")
	}
	a.refs--
	if a.refs == 0 {
		a.logger.Tracef("arrange: last reference released, closing trace")
		return a.trace.Close()
	}
	return nil
}

// Insert adds batch to the shared trace and republishes the resulting
// upper frontier to anyone waiting on Frontier's changed channel.
func (a *Arrangement[K, V, T, D]) Insert(batch trace.Batch[K, V, T, D]) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.trace.Insert(batch); err != nil {
		return err
	}
	a.frontier.Set(batch.Upper())
	return nil
}

// CursorThrough returns a Cursor over the shared trace's content up to
// upper. See Spine.CursorThrough.
func (a *Arrangement[K, V, T, D]) CursorThrough(upper lattice.Antichain[T]) (*trace.CursorList[K, V, T, D], error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.trace.CursorThrough(upper)
}

// AdvanceBy forwards to the shared trace. See Spine.AdvanceBy.
func (a *Arrangement[K, V, T, D]) AdvanceBy(frontier lattice.Antichain[T]) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trace.AdvanceBy(frontier)
}

// DistinguishSince forwards to the shared trace. See Spine.DistinguishSince.
func (a *Arrangement[K, V, T, D]) DistinguishSince(frontier lattice.Antichain[T]) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trace.DistinguishSince(frontier)
}

// MapBatches forwards to the shared trace. See Spine.MapBatches.
func (a *Arrangement[K, V, T, D]) MapBatches(fn func(trace.Batch[K, V, T, D])) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trace.MapBatches(fn)
}

// Frontier returns the arrangement's current upper frontier and a
// channel that closes the next time it changes, mirroring the
// notify.Var Get contract.
func (a *Arrangement[K, V, T, D]) Frontier() (lattice.Antichain[T], <-chan struct{}) {
	return a.frontier.Get()
}
