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

package engcfg_test

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/trace-core/internal/engcfg"
)

func TestDefaultsArePreflightClean(t *testing.T) {
	cfg := engcfg.Defaults()
	require.NoError(t, cfg.Preflight())
}

func TestPreflightRejectsNonPositiveFields(t *testing.T) {
	base := engcfg.Defaults()

	zeroFuel := base
	zeroFuel.BaseFuel = 0
	require.Error(t, zeroFuel.Preflight())

	negMultiplier := base
	negMultiplier.EffortMultiplier = -1
	require.Error(t, negMultiplier.Preflight())

	zeroDivisor := base
	zeroDivisor.InvasionDivisor = 0
	require.Error(t, zeroDivisor.Preflight())
}

func TestFuelForDoublesPerLevelAndAppliesTheMultiplier(t *testing.T) {
	cfg := engcfg.Config{BaseFuel: 8, EffortMultiplier: 2.0, InvasionDivisor: 8}
	require.Equal(t, int64(16), cfg.FuelFor(0))
	require.Equal(t, int64(32), cfg.FuelFor(1))
	require.Equal(t, int64(64), cfg.FuelFor(2))
}

func TestBindFillsAZeroConfigWithDefaultsBeforeRegisteringFlags(t *testing.T) {
	var cfg engcfg.Config
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.Bind("engine.", flags)

	require.Equal(t, engcfg.Defaults(), cfg)
	require.NoError(t, flags.Set("engine.baseFuel", "16"))
	require.Equal(t, int64(16), cfg.BaseFuel)
}
