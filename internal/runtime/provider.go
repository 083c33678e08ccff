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

package runtime

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cockroachdb/trace-core/internal/diag"
	"github.com/cockroachdb/trace-core/internal/engcfg"
	"github.com/cockroachdb/trace-core/internal/metrics"
	"github.com/cockroachdb/trace-core/internal/rtlog"
)

// ProvideConfig returns the engine's default tuning, preflighted so a
// bad Default would fail fast instead of surfacing as a mysterious
// spine misbehavior later.
func ProvideConfig() (engcfg.Config, error) {
	cfg := engcfg.Defaults()
	if err := cfg.Preflight(); err != nil {
		return engcfg.Config{}, err
	}
	return cfg, nil
}

// ProvideLogger returns the logrus-backed Logger every other provider
// is narrated through.
func ProvideLogger() rtlog.Logger {
	return rtlog.New()
}

// ProvideDiagnostics returns a fresh, empty diagnostics registry.
func ProvideDiagnostics() *diag.Diagnostics {
	return diag.New()
}

// ProvideMetrics registers a fresh metrics.Set against reg.
func ProvideMetrics(reg prometheus.Registerer) (*metrics.Set, error) {
	return metrics.NewSet(reg)
}

// ProvideRuntime assembles the four ambient services into a Runtime.
func ProvideRuntime(cfg engcfg.Config, logger rtlog.Logger, m *metrics.Set, d *diag.Diagnostics) *Runtime {
	return &Runtime{Config: cfg, Logger: logger, Metrics: m, Diagnostics: d}
}
