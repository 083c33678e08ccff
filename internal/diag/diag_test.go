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

package diag_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/trace-core/internal/diag"
)

func TestSnapshotIsEmptyForAFreshRegistry(t *testing.T) {
	d := diag.New()
	require.Empty(t, d.Snapshot())
}

func TestSnapshotReflectsRegisteredReporters(t *testing.T) {
	d := diag.New()
	require.NoError(t, d.Register("spine.level0", func() any { return 3 }))
	require.NoError(t, d.Register("arrange.triangles", func() any { return "ok" }))

	snap := d.Snapshot()
	require.Equal(t, 3, snap["spine.level0"])
	require.Equal(t, "ok", snap["arrange.triangles"])
}

func TestRegisterRejectsADuplicateName(t *testing.T) {
	d := diag.New()
	require.NoError(t, d.Register("dup", func() any { return nil }))
	require.Error(t, d.Register("dup", func() any { return nil }))
}

func TestUnregisterRemovesTheReporter(t *testing.T) {
	d := diag.New()
	require.NoError(t, d.Register("dup", func() any { return nil }))
	d.Unregister("dup")
	require.Empty(t, d.Snapshot())

	// Unregistering something absent is a no-op, not an error.
	d.Unregister("never-registered")
}

func TestSnapshotCallsEachReporterAfresh(t *testing.T) {
	d := diag.New()
	n := 0
	require.NoError(t, d.Register("counter", func() any {
		n++
		return n
	}))

	require.Equal(t, 1, d.Snapshot()["counter"])
	require.Equal(t, 2, d.Snapshot()["counter"])
}
