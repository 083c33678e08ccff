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

// Package runtime bundles the ambient services this module's
// components use — engine tuning, structured logging, metrics, and
// diagnostics — into a single value, assembled by hand-written
// Wire-style providers (see wire.go and wire_gen.go). The arrange,
// spine and variable constructors take the config, metrics and logger
// as separate parameters, not a Runtime; TestDriver takes a Runtime
// and passes its fields on.
package runtime

import (
	"github.com/cockroachdb/trace-core/internal/diag"
	"github.com/cockroachdb/trace-core/internal/engcfg"
	"github.com/cockroachdb/trace-core/internal/metrics"
	"github.com/cockroachdb/trace-core/internal/rtlog"
)

// Runtime is the ambient service bundle; its fields are what the
// arrange, spine, and variable constructors take one by one.
type Runtime struct {
	Config      engcfg.Config
	Logger      rtlog.Logger
	Metrics     *metrics.Set
	Diagnostics *diag.Diagnostics
}
