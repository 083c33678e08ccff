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

// Package rtlog provides the structured-logging surface shared by the
// spine, arrange, and join packages. It exists so that those packages
// depend on a small interface rather than directly on logrus; this
// package itself is built on logrus, so importing the core still
// imports logrus.
package rtlog

import log "github.com/sirupsen/logrus"

// A Logger narrates non-fatal engine activity: merge progress, roll-up
// decisions, compaction outcomes. It is never consulted for control
// flow. Discard returns a Logger that drops everything.
type Logger interface {
	WithFields(fields Fields) Logger
	Trace(args ...any)
	Tracef(format string, args ...any)
	Debug(args ...any)
	Debugf(format string, args ...any)
	Warn(args ...any)
	WithError(err error) Logger
}

// Fields is re-exported so callers don't need to import logrus directly.
type Fields = log.Fields

// Standard wraps a *logrus.Entry to satisfy Logger. Construct it with
// New or Discard; a Standard with no entry is not usable.
type Standard struct {
	entry *log.Entry
}

// New returns a Logger backed by logrus's standard logger.
func New() Logger {
	return &Standard{entry: log.NewEntry(log.StandardLogger())}
}

// Discard returns a Logger that drops everything, used by tests and by
// callers that construct components without the ambient logging stack.
func Discard() Logger {
	l := log.New()
	l.SetOutput(discardWriter{})
	return &Standard{entry: log.NewEntry(l)}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func (s *Standard) WithFields(fields Fields) Logger {
	return &Standard{entry: s.entry.WithFields(fields)}
}

func (s *Standard) WithError(err error) Logger {
	return &Standard{entry: s.entry.WithError(err)}
}

func (s *Standard) Trace(args ...any)                 { s.entry.Trace(args...) }
func (s *Standard) Tracef(format string, args ...any)  { s.entry.Tracef(format, args...) }
func (s *Standard) Debug(args ...any)                  { s.entry.Debug(args...) }
func (s *Standard) Debugf(format string, args ...any)  { s.entry.Debugf(format, args...) }
func (s *Standard) Warn(args ...any)                   { s.entry.Warn(args...) }
