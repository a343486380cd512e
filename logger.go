// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlslasset

import (
	"log/slog"

	"github.com/gogpu/hlslasset/internal/logging"
)

// SetLogger configures the logger for hlslasset and its sub-packages.
// By default hlslasset produces no log output. Pass nil to disable logging.
//
// Log levels used by hlslasset:
//   - [slog.LevelDebug]: loader state transitions, compiler command lines
//   - [slog.LevelInfo]: registry loads, reloads
//   - [slog.LevelWarn]: compiler diagnostics, watcher errors
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logging.Logger()
}
