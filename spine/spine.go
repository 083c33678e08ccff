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

// Package spine implements a geometrically-layered trace: a small
// number of immutable batches that absorb new insertions by merging
// same-sized neighbors, with merge work spread across later insertions
// via a fuel budget rather than paid for in one large pause.
package spine

import (
	"math/bits"
	"time"

	"github.com/pkg/errors"

	"github.com/cockroachdb/trace-core/diff"
	"github.com/cockroachdb/trace-core/internal/engcfg"
	"github.com/cockroachdb/trace-core/internal/metrics"
	"github.com/cockroachdb/trace-core/internal/rtlog"
	"github.com/cockroachdb/trace-core/lattice"
	"github.com/cockroachdb/trace-core/trace"
)

// Spine is a trace: the accumulated history of every Batch ever
// inserted, organized so that a Cursor can be drawn over any prefix of
// it (see CursorThrough) without re-scanning the whole history.
type Spine[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]] struct {
	cfg     engcfg.Config
	metrics *metrics.Set
	logger  rtlog.Logger

	// advanceFrontier is the frontier beyond which the trace must
	// accumulate correctly; AdvanceBy moves it forward. An empty
	// advanceFrontier means the trace is closed: nothing further will
	// ever be asked of it, so its contents can be discarded outright.
	advanceFrontier lattice.Antichain[T]
	// throughFrontier is the frontier beyond which the trace must be
	// able to produce a cursor over a strict subset of its batches;
	// DistinguishSince moves it forward and may release batches for
	// merging that were held back to satisfy an earlier reader.
	throughFrontier lattice.Antichain[T]

	levels  []mergeState[K, V, T, D]
	pending []trace.Batch[K, V, T, D]
	upper   lattice.Antichain[T]
}

// New returns an empty Spine. metrics and logger may be nil, in which
// case observations are dropped and logging goes to the discard sink.
func New[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]](cfg engcfg.Config, m *metrics.Set, logger rtlog.Logger) *Spine[K, V, T, D] {
	if logger == nil {
		logger = rtlog.Discard()
	}
	var zero T
	start := lattice.NewAntichain(zero.Minimum())
	return &Spine[K, V, T, D]{
		cfg:             cfg,
		metrics:         m,
		logger:          logger,
		advanceFrontier: start,
		throughFrontier: start,
		upper:           start,
	}
}

// Insert adds batch to the trace. batch.Lower() must equal the trace's
// current upper frontier (the trace is a contiguous sequence of
// intervals) and batch.Lower() must differ from batch.Upper() (a batch
// describing no interval at all is a caller error, not a no-op).
//
// This performs the fueled maintenance work described in introduceBatch:
// existing merges are advanced, any layers that would collide with the
// new batch are rolled up, and the batch is filed at the layer matching
// its size.
func (s *Spine[K, V, T, D]) Insert(batch trace.Batch[K, V, T, D]) error {
	if batch.Lower().Equal(batch.Upper()) {
		return errors.New("spine: batch describes an empty time interval")
	}
	if !batch.Lower().Equal(s.upper) {
		return errors.New("spine: batch lower frontier does not continue the trace's upper frontier")
	}
	s.logger.Tracef("spine: inserting batch of %d updates", batch.Len())
	s.metrics.IncBatchesInserted(levelFor(batch.Len()))

	s.upper = batch.Upper()
	s.pending = append(s.pending, batch)
	s.considerMerges()
	return nil
}

// Close completes the trace with a final, structurally empty batch
// spanning from the current upper frontier to the empty (closed)
// frontier. A closed trace accepts no further insertions.
func (s *Spine[K, V, T, D]) Close() error {
	if s.upper.IsEmpty() {
		return nil
	}
	b := trace.NewBuilder[K, V, T, D](0)
	batch := b.Done(s.upper, lattice.NewAntichain[T](), s.advanceFrontier)
	return s.Insert(batch)
}

// AdvanceBy moves the trace's accumulation frontier forward. An empty
// frontier closes the trace's storage outright: every batch held is
// discarded, since nothing will ever again need to distinguish times
// within them.
func (s *Spine[K, V, T, D]) AdvanceBy(frontier lattice.Antichain[T]) {
	s.advanceFrontier = frontier
	if frontier.IsEmpty() {
		s.pending = nil
		s.levels = nil
	}
}

// DistinguishSince moves the trace's through frontier forward, allowing
// any pending batches whose upper it has reached to be folded into the
// merging layers.
func (s *Spine[K, V, T, D]) DistinguishSince(frontier lattice.Antichain[T]) {
	s.throughFrontier = frontier
	s.considerMerges()
}

// CursorThrough returns a Cursor over every update in the trace whose
// batch is wholly at or before upper, which must not regress behind the
// trace's throughFrontier.
func (s *Spine[K, V, T, D]) CursorThrough(upper lattice.Antichain[T]) (*trace.CursorList[K, V, T, D], error) {
	if s.advanceFrontier.IsEmpty() {
		return nil, errors.New("spine: trace is closed")
	}
	if !s.throughFrontier.LessEqualAntichain(upper) {
		return nil, errors.New("spine: upper precedes the trace's distinguish-since frontier")
	}

	var cursors []trace.Cursor[K, V, T, D]
	for i := len(s.levels) - 1; i >= 0; i-- {
		lvl := s.levels[i]
		switch lvl.kind {
		case kindDoubleInProgress:
			if !lvl.progA.IsEmpty() {
				cursors = append(cursors, lvl.progA.Cursor())
			}
			if !lvl.progB.IsEmpty() {
				cursors = append(cursors, lvl.progB.Cursor())
			}
		case kindDoubleComplete:
			if lvl.complete != nil && !lvl.complete.IsEmpty() {
				cursors = append(cursors, lvl.complete.Cursor())
			}
		case kindSingle:
			if lvl.single != nil && !lvl.single.IsEmpty() {
				cursors = append(cursors, lvl.single.Cursor())
			}
		}
	}

	for _, batch := range s.pending {
		if batch.IsEmpty() {
			continue
		}
		includeLower := batch.Lower().LessEqualAntichain(upper)
		includeUpper := batch.Upper().LessEqualAntichain(upper)
		if includeLower != includeUpper && !upper.Equal(batch.Lower()) {
			return nil, errors.New("spine: cursor upper straddles a pending batch")
		}
		if includeUpper {
			cursors = append(cursors, batch.Cursor())
		}
	}

	return trace.NewCursorList(cursors), nil
}

// MapBatches invokes fn once per batch held by the trace, from the
// highest layer down to layer 0, followed by any pending batches not
// yet merged in, in insertion order.
func (s *Spine[K, V, T, D]) MapBatches(fn func(trace.Batch[K, V, T, D])) {
	for i := len(s.levels) - 1; i >= 0; i-- {
		lvl := s.levels[i]
		switch lvl.kind {
		case kindDoubleInProgress:
			fn(*lvl.progA)
			fn(*lvl.progB)
		case kindDoubleComplete:
			if lvl.complete != nil {
				fn(*lvl.complete)
			}
		case kindSingle:
			if lvl.single != nil {
				fn(*lvl.single)
			}
		}
	}
	for _, b := range s.pending {
		fn(b)
	}
}

// Exert applies a bounded amount of maintenance work even in the
// absence of new insertions, so a trace with no further writes still
// eventually converges to its reduced form.
func (s *Spine[K, V, T, D]) Exert(effort int64) {
	s.tidyLayers()
	if s.reduced() {
		return
	}
	anyDouble := false
	for _, lvl := range s.levels {
		if lvl.isDouble() {
			anyDouble = true
			break
		}
	}
	if anyDouble {
		fuel := effort
		s.applyFuel(&fuel)
		return
	}
	s.introduceBatch(nil, levelFor(int(effort)))
}

// reduced reports whether the trace has at most one non-empty batch and
// no merge in progress, i.e. there is no maintenance work left to do
// beyond compaction.
func (s *Spine[K, V, T, D]) reduced() bool {
	nonEmpty := 0
	for _, lvl := range s.levels {
		if lvl.kind == kindDoubleInProgress {
			return false
		}
		if lvl.length() > 0 {
			nonEmpty++
			if nonEmpty > 1 {
				return false
			}
		}
	}
	return true
}

// considerMerges migrates batches from pending into the merging layers
// once the through frontier no longer requires holding them back.
func (s *Spine[K, V, T, D]) considerMerges() {
	for len(s.pending) > 0 && s.pending[0].Upper().LessEqualAntichain(s.throughFrontier) {
		batch := s.pending[0]
		s.pending = s.pending[1:]
		level := levelFor(batch.Len())
		s.introduceBatch(&batch, level)
	}
}

// introduceBatch is the five-step sequence that installs batch (or, if
// nil, a purely virtual quantity of fuel) at the given layer: fuel
// existing merges, roll up anything occupying lower layers out of the
// way, insert at the target layer, then tidy the top of the spine.
func (s *Spine[K, V, T, D]) introduceBatch(batch *trace.Batch[K, V, T, D], level int) {
	fuel := s.cfg.FuelFor(level)
	s.metrics.AddFuelSpent(level, fuel)

	s.applyFuel(&fuel)
	s.rollUp(level)
	s.insertAt(batch, level)
	s.tidyLayers()
}

// rollUp ensures layer index is vacant and ready to receive a batch by
// draining any occupied layers below it upward, completing merges as
// necessary so the roll-up never leaves two batches stacked at the same
// layer.
func (s *Spine[K, V, T, D]) rollUp(index int) {
	s.ensureLevels(index)

	anyOccupied := false
	for i := 0; i < index; i++ {
		if !s.levels[i].isVacant() {
			anyOccupied = true
			break
		}
	}
	if !anyOccupied {
		return
	}

	var merged *trace.Batch[K, V, T, D]
	for i := 0; i < index; i++ {
		s.insertAt(merged, i)
		merged = s.completeAt(i)
	}
	s.insertAt(merged, index)

	if s.levels[index].isDouble() {
		merged = s.completeAt(index)
		s.insertAt(merged, index+1)
	}
}

// applyFuel spends fuel on every in-progress merge, promoting any that
// finish into the next layer immediately; if that layer already holds a
// single batch, insertAt begins a merge with it there.
func (s *Spine[K, V, T, D]) applyFuel(fuel *int64) {
	for index := 0; index < len(s.levels); index++ {
		spend := *fuel
		inProgress := s.levels[index].kind == kindDoubleInProgress
		start := time.Now()
		s.levels[index].work(&spend)
		if inProgress {
			s.metrics.ObserveMergeDuration(index, time.Since(start).Seconds())
		}
		if s.levels[index].isComplete() {
			complete := s.completeAt(index)
			s.insertAt(complete, index+1)
		}
	}
}

// insertAt files batch at layer index, beginning a merge if the layer
// already holds a single batch. It panics if the layer holds an
// unfinished merge, which would mean rollUp/applyFuel failed to
// maintain the spine's invariant.
func (s *Spine[K, V, T, D]) insertAt(batch *trace.Batch[K, V, T, D], index int) {
	s.ensureLevels(index)

	old := s.levels[index].take()
	switch old.kind {
	case kindVacant:
		s.levels[index] = mergeState[K, V, T, D]{kind: kindSingle, single: batch}
	case kindSingle:
		s.logger.Tracef("spine: beginning merge at level %d", index)
		s.levels[index] = beginMerge(old.single, batch, s.advanceFrontier)
	default:
		panic("spine: attempted to insert a batch into an unfinished merge")
	}
}

// completeAt forces whatever is at layer index to completion and
// resets that layer to vacant, returning the resulting batch (nil if
// structurally empty).
func (s *Spine[K, V, T, D]) completeAt(index int) *trace.Batch[K, V, T, D] {
	if index >= len(s.levels) {
		return nil
	}
	return s.levels[index].extract()
}

// tidyLayers attempts to draw the topmost layer down to the level its
// actual size warrants, so a trace that has finished a burst of merging
// doesn't leave tall sparse layers sitting at the top of the spine.
func (s *Spine[K, V, T, D]) tidyLayers() {
	if len(s.levels) == 0 {
		return
	}
	length := len(s.levels)
	if !s.levels[length-1].isSingle() {
		return
	}

	appropriate := levelFor(s.levels[length-1].length())
	for appropriate < length-1 {
		switch s.levels[length-2].kind {
		case kindVacant:
			s.levels = removeLevel(s.levels, length-2)
			length = len(s.levels)
		case kindSingle:
			if s.levels[length-2].single == nil {
				s.levels = removeLevel(s.levels, length-2)
				length = len(s.levels)
				continue
			}
			batch := s.levels[length-2].single
			var smaller int64
			for i := 0; i < length-2; i++ {
				switch {
				case s.levels[i].isSingle():
					smaller += 1 << uint(i)
				case s.levels[i].isDouble():
					smaller += 2 << uint(i)
				}
			}
			if smaller <= (int64(1)<<uint(length))/s.cfg.InvasionDivisor {
				s.levels = removeLevel(s.levels, length-2)
				s.insertAt(batch, length-2)
			} else {
				s.levels[length-2] = mergeState[K, V, T, D]{kind: kindSingle, single: batch}
			}
			return
		default:
			return
		}
	}
}

func removeLevel[K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Diff[D]](levels []mergeState[K, V, T, D], i int) []mergeState[K, V, T, D] {
	return append(levels[:i], levels[i+1:]...)
}

func (s *Spine[K, V, T, D]) ensureLevels(index int) {
	for len(s.levels) <= index {
		s.levels = append(s.levels, vacantState[K, V, T, D]())
	}
}

// levelFor returns the spine layer a batch of n updates belongs at:
// the smallest level whose capacity (2^level) is at least n.
func levelFor(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}
