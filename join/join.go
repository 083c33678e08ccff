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

// Package join implements the propose/validate pair a worst-case
// optimal delta join is built from: propose extends a stream of
// partial matches by one attribute drawn from an arranged relation,
// and validate filters a stream of candidate extensions down to those
// an arranged relation actually contains.
//
// This module has no scheduler of its own, so Propose and Validate are
// plain functions over a batch of changes, called once per round by
// whatever is iterating the enclosing computation to a fixed point.
// Turn and ValidateTurn (turn.go) wrap the same lookups in a
// channel-driven operator that stashes changes until the arrangement's
// frontier has passed them.
package join

import (
	"github.com/cockroachdb/trace-core/arrange"
	"github.com/cockroachdb/trace-core/diff"
	"github.com/cockroachdb/trace-core/internal/metrics"
	"github.com/cockroachdb/trace-core/trace"
)

// Change is one partial match (a "prefix") observed with a diff at a
// time, the unit propose consumes and validate's input is built from.
type Change[P any, T any, D diff.Diff[D]] struct {
	Prefix P
	Time   T
	Diff   D
}

// Extension pairs a prefix with one candidate value for the next
// attribute of the query, the unit both propose and validate produce.
type Extension[P any, V trace.Ordered[V], T any, D diff.Diff[D]] struct {
	Prefix P
	Value  V
	Time   T
	Diff   D
}

// Propose extends every change's prefix with each value arranged
// reaches under keyOf(prefix), emitting one Extension per match. The
// output time is the lattice join of the change's time and the
// matched record's time: the extension is not valid until both of its
// constituent facts are.
func Propose[P any, K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Mul[D]](
	changes []Change[P, T, D],
	arranged *arrange.Arrangement[K, V, T, D],
	m *metrics.Set,
	keyOf func(P) K,
) ([]Extension[P, V, T, D], error) {
	if len(changes) == 0 {
		return nil, nil
	}
	upper, _ := arranged.Frontier()
	cur, err := arranged.CursorThrough(upper)
	if err != nil {
		return nil, err
	}
	return ProposeCursor(changes, cur, m, keyOf), nil
}

// ProposeCursor is Propose's core, operating directly against a Cursor
// instead of drawing one from an Arrangement. A nested delta-query
// scope that has already lifted an Arrangement's times through
// arrange.EnterAt calls this directly, since its Cursor's timestamp
// type no longer matches any single Arrangement's.
func ProposeCursor[P any, K trace.Ordered[K], V trace.Ordered[V], T trace.Time[T], D diff.Mul[D]](
	changes []Change[P, T, D],
	cur trace.Cursor[K, V, T, D],
	m *metrics.Set,
	keyOf func(P) K,
) []Extension[P, V, T, D] {
	var out []Extension[P, V, T, D]
	for _, ch := range changes {
		key := keyOf(ch.Prefix)
		cur.RewindKeys()
		cur.SeekKey(key)
		if !cur.KeyValid() || cur.Key().Compare(key) != 0 {
			continue
		}
		for cur.ValValid() {
			val := cur.Val()
			cur.MapTimes(func(t T, d D) {
				out = append(out, Extension[P, V, T, D]{
					Prefix: ch.Prefix,
					Value:  val,
					Time:   ch.Time.Join(t),
					Diff:   ch.Diff.Mul(d),
				})
			})
			cur.StepVal()
		}
	}
	m.AddProposeExtensions(len(out))
	return out
}

// Validate drops every Extension whose (prefix, value) pair, combined
// by keyOf into the full key a self-arranged relation is keyed on,
// does not actually exist in arranged. Surviving extensions have their
// diff multiplied by the matched record's and their time advanced to
// the join of both.
func Validate[P any, V trace.Ordered[V], K trace.Ordered[K], T trace.Time[T], D diff.Mul[D]](
	extensions []Extension[P, V, T, D],
	arranged *arrange.Arrangement[K, trace.Unit, T, D],
	m *metrics.Set,
	keyOf func(prefix P, value V) K,
) ([]Extension[P, V, T, D], error) {
	if len(extensions) == 0 {
		return nil, nil
	}
	upper, _ := arranged.Frontier()
	cur, err := arranged.CursorThrough(upper)
	if err != nil {
		return nil, err
	}
	return ValidateCursor(extensions, cur, m, keyOf), nil
}

// ValidateCursor is Validate's core, operating directly against a
// Cursor instead of drawing one from an Arrangement; see ProposeCursor.
func ValidateCursor[P any, V trace.Ordered[V], K trace.Ordered[K], T trace.Time[T], D diff.Mul[D]](
	extensions []Extension[P, V, T, D],
	cur trace.Cursor[K, trace.Unit, T, D],
	m *metrics.Set,
	keyOf func(prefix P, value V) K,
) []Extension[P, V, T, D] {
	var out []Extension[P, V, T, D]
	dropped := 0
	for _, ext := range extensions {
		key := keyOf(ext.Prefix, ext.Value)
		cur.RewindKeys()
		cur.SeekKey(key)
		if !cur.KeyValid() || cur.Key().Compare(key) != 0 || !cur.ValValid() {
			dropped++
			continue
		}
		matched := false
		cur.MapTimes(func(t T, d D) {
			matched = true
			out = append(out, Extension[P, V, T, D]{
				Prefix: ext.Prefix,
				Value:  ext.Value,
				Time:   ext.Time.Join(t),
				Diff:   ext.Diff.Mul(d),
			})
		})
		if !matched {
			dropped++
		}
	}
	m.AddValidateDropped(dropped)
	return out
}
