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

package notify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/trace-core/internal/notify"
)

func TestVarGetReturnsTheInitialValue(t *testing.T) {
	v := notify.New(7)
	val, _ := v.Get()
	require.Equal(t, 7, val)
}

func TestVarSetWakesABlockedGetter(t *testing.T) {
	v := notify.New(0)
	_, changed := v.Get()

	done := make(chan int, 1)
	go func() {
		<-changed
		val, _ := v.Get()
		done <- val
	}()

	v.Set(42)

	select {
	case val := <-done:
		require.Equal(t, 42, val)
	case <-time.After(time.Second):
		t.Fatal("Set did not wake the blocked Get within a second")
	}
}

func TestVarChangedChannelIsReplacedOnEverySet(t *testing.T) {
	v := notify.New(0)
	_, first := v.Get()
	v.Set(1)
	_, second := v.Get()

	select {
	case <-first:
	default:
		t.Fatal("the channel handed out before Set should be closed")
	}
	select {
	case <-second:
		t.Fatal("the channel handed out after Set should still be open")
	default:
	}
}

func TestVarUpdateAppliesFnToTheCurrentValue(t *testing.T) {
	v := notify.New(10)
	v.Update(func(n int) int { return n + 5 })
	val, _ := v.Get()
	require.Equal(t, 15, val)
}
