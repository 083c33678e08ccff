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

// Package stopper provides a small cooperative-shutdown primitive for
// the background goroutine this module runs on its own behalf (the
// join.Turn drain loop). A real dataflow runtime tears down a graph by
// closing inputs, which propagate empty frontiers; stopper.Context
// gives a goroutine that would otherwise be waiting on those frontiers
// a second, explicit way to unwind, as the tests do.
package stopper

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Context bundles a context.Context with a WaitGroup of goroutines
// launched through Go, and a "please stop soon" channel distinct from
// cancellation: Stopping() is closed by Stop(), Done() is closed when
// the context is canceled. A well-behaved goroutine selects on both.
type Context struct {
	context.Context
	cancel context.CancelFunc

	mu struct {
		sync.Mutex
		wg       sync.WaitGroup
		err      error
		stopping chan struct{}
		stopOnce sync.Once
	}
}

// WithContext creates a new Context as a child of parent.
func WithContext(parent context.Context) *Context {
	ctx, cancel := context.WithCancel(parent)
	ret := &Context{Context: ctx, cancel: cancel}
	ret.mu.stopping = make(chan struct{})
	return ret
}

// Go launches fn in a new goroutine tracked by the Context's WaitGroup.
// If fn returns a non-nil error, it is recorded (the first error wins)
// and the Context is canceled.
func (c *Context) Go(fn func() error) {
	c.mu.wg.Add(1)
	go func() {
		defer c.mu.wg.Done()
		if err := fn(); err != nil {
			c.mu.Lock()
			if c.mu.err == nil {
				c.mu.err = err
			}
			c.mu.Unlock()
			c.cancel()
		}
	}()
}

// Stopping returns a channel that is closed once Stop has been called.
// Unlike Done(), it does not imply the context has been canceled; it is
// a request to wind down promptly.
func (c *Context) Stopping() <-chan struct{} {
	return c.mu.stopping
}

// Stop requests a graceful shutdown and blocks until either every
// goroutine launched via Go has returned or the timeout elapses, in
// which case the Context is canceled outright and an error is returned.
func (c *Context) Stop(timeout time.Duration) error {
	c.mu.stopOnce.Do(func() { close(c.mu.stopping) })

	done := make(chan struct{})
	go func() {
		c.mu.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.cancel()
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.mu.err
	case <-time.After(timeout):
		c.cancel()
		return errors.Errorf("stopper: timed out after %s waiting for goroutines to exit", timeout)
	}
}

// Err returns the first error recorded by a goroutine passed to Go, if
// any has returned one.
func (c *Context) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mu.err
}
