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

// Package engcfg holds the tunable knobs for the spine's fueling
// discipline. It follows the familiar Bind/Preflight shape so an
// embedding program can fold these flags into its own pflag.FlagSet
// without this module owning a CLI of its own.
package engcfg

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Config holds engine-wide tunables. The zero value is not valid; use
// Defaults() or Bind a flag set and call Preflight.
type Config struct {
	// BaseFuel is the per-record fuel constant in the spine's fuel
	// formula `fuel = BaseFuel << level * EffortMultiplier`.
	BaseFuel int64

	// EffortMultiplier scales the base fuel computed for every batch
	// insertion. Values above 1.0 trade more up-front CPU for faster
	// convergence to a reduced spine; values below 1.0 (but > 0) spread
	// merge work more thinly across subsequent Exert calls.
	EffortMultiplier float64

	// InvasionDivisor is the denominator in tidyLayers' migration guard:
	// a Single batch at the top level may migrate down only if the
	// weighted occupancy of lower levels is <= 2^length / InvasionDivisor.
	// A reference implementation hard-codes 8; it is exposed here as a
	// tunable instead.
	InvasionDivisor int64
}

// Defaults returns the engine's recommended tuning.
func Defaults() Config {
	return Config{
		BaseFuel:         8,
		EffortMultiplier: 1.0,
		InvasionDivisor:  8,
	}
}

// Bind registers flags for every field in Config onto flags, prefixed
// so multiple engines (e.g. one per worker) can share a flag set.
func (c *Config) Bind(prefix string, flags *pflag.FlagSet) {
	if c.BaseFuel == 0 && c.EffortMultiplier == 0 && c.InvasionDivisor == 0 {
		*c = Defaults()
	}
	flags.Int64Var(&c.BaseFuel, prefix+"baseFuel", c.BaseFuel,
		"fuel units of work charged per record introduced into the spine")
	flags.Float64Var(&c.EffortMultiplier, prefix+"effortMultiplier", c.EffortMultiplier,
		"multiplier applied to the base fuel formula on every batch insertion")
	flags.Int64Var(&c.InvasionDivisor, prefix+"invasionDivisor", c.InvasionDivisor,
		"denominator used by tidyLayers' downward-migration guard")
}

// Preflight validates the configuration, returning an error describing
// the first problem found.
func (c *Config) Preflight() error {
	if c.BaseFuel <= 0 {
		return errors.New("engcfg: BaseFuel must be positive")
	}
	if c.EffortMultiplier <= 0 {
		return errors.New("engcfg: EffortMultiplier must be positive")
	}
	if c.InvasionDivisor <= 0 {
		return errors.New("engcfg: InvasionDivisor must be positive")
	}
	return nil
}

// FuelFor returns the fuel budget for introducing a batch at the given
// spine level.
func (c Config) FuelFor(level int) int64 {
	base := c.BaseFuel << uint(level)
	return int64(float64(base) * c.EffortMultiplier)
}
