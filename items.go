// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package items is the root of the Items API service.
//
// The item store itself lives in package item, the HTTP surface in package
// endpoint and the reusable REST toolkit in package rest. This package only
// holds the logging entry points shared by all of them.
package items

import (
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

// Logger returns a [slog.Logger] whose records are emitted through the
// globally registered OpenTelemetry LoggerProvider.
func Logger(name string) *slog.Logger {
	return slog.New(LogHandler(name))
}

// LogHandler returns the [slog.Handler] backing [Logger].
func LogHandler(name string) slog.Handler {
	return otelslog.NewHandler(name)
}
