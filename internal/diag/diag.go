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

// Package diag provides a registry of named self-report callbacks that
// an embedding program can fill and expose on its own health endpoint.
// The registry is part of the runtime bundle; Spine and Arrangement do
// not register reporters themselves, and nothing in this module reads
// its own diagnostics.
package diag

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// A Reporter produces a JSON-marshalable snapshot of a component's
// internal state.
type Reporter func() any

// Diagnostics is a registry of Reporters, keyed by a dotted name
// (e.g. "spine.level0", "arrange.triangles").
type Diagnostics struct {
	mu        sync.Mutex
	reporters map[string]Reporter
}

// New returns an empty Diagnostics registry.
func New() *Diagnostics {
	return &Diagnostics{reporters: make(map[string]Reporter)}
}

// Register adds a Reporter under the given name. It is an error to
// register the same name twice.
func (d *Diagnostics) Register(name string, r Reporter) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, found := d.reporters[name]; found {
		return errors.Errorf("diag: %q already registered", name)
	}
	d.reporters[name] = r
	return nil
}

// Unregister removes a previously registered Reporter, if present.
func (d *Diagnostics) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.reporters, name)
}

// Snapshot evaluates every registered Reporter, in sorted name order,
// and returns the results keyed by name in a map (which has no order).
func (d *Diagnostics) Snapshot() map[string]any {
	d.mu.Lock()
	names := make([]string, 0, len(d.reporters))
	reporters := make(map[string]Reporter, len(d.reporters))
	for name, r := range d.reporters {
		names = append(names, name)
		reporters[name] = r
	}
	d.mu.Unlock()

	sort.Strings(names)
	out := make(map[string]any, len(names))
	for _, name := range names {
		out[name] = reporters[name]()
	}
	return out
}
