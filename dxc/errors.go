// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxc

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSpawn is matched by *SpawnError.
	ErrSpawn = errors.New("dxc: compiler could not be started")
	// ErrDiagnostic is matched by *DiagnosticError.
	ErrDiagnostic = errors.New("dxc: compiler reported diagnostics")
)

// SpawnError reports that the compiler process could not be started,
// so no output file can exist.
type SpawnError struct {
	// Bin is the compiler executable.
	Bin string

	// Source is the shader being compiled.
	Source string

	// Err is the underlying exec error.
	Err error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("dxc: failed to run %s for %s: %v", e.Bin, e.Source, e.Err)
}

// Unwrap returns the exec error.
func (e *SpawnError) Unwrap() error { return e.Err }

// Is reports whether target is ErrSpawn.
func (e *SpawnError) Is(target error) bool { return target == ErrSpawn }

// DiagnosticError is returned instead of success when the compiler ran but
// reported diagnostics and fail-fast is enabled.
type DiagnosticError struct {
	Outcome *Outcome
}

// Error implements the error interface.
func (e *DiagnosticError) Error() string {
	o := e.Outcome
	msg := strings.TrimSpace(o.Stderr)
	if msg == "" {
		msg = "no stderr output"
	}
	return fmt.Sprintf("dxc: %s (%s) exited with status %d: %s", o.Source, o.Profile, o.ExitCode, msg)
}

// Is reports whether target is ErrDiagnostic.
func (e *DiagnosticError) Is(target error) bool { return target == ErrDiagnostic }
