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

//go:build wireinject
// +build wireinject

package runtime

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
)

// New assembles a Runtime from its providers, registering its metrics
// against reg. Run `go generate` to refresh wire_gen.go after changing
// the provider set below.
func New(reg prometheus.Registerer) (*Runtime, error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		ProvideDiagnostics,
		ProvideMetrics,
		ProvideRuntime,
	)
	return nil, nil
}
