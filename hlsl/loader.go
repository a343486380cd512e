// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/hlslasset/assets"
	"github.com/gogpu/hlslasset/dxc"
	"github.com/gogpu/hlslasset/internal/logging"
	"github.com/gogpu/hlslasset/profile"
)

// Compiler compiles one source file. *dxc.Compiler implements it.
type Compiler interface {
	Compile(ctx context.Context, src string, p profile.Profile) (*dxc.Outcome, error)
}

// Loader is the assets.Loader for HLSL sources.
//
// Loading validates the profile, compiles the source next to itself and
// produces a SourceShader. Compiler diagnostics do not fail the load unless
// the compiler is configured to; the broken ".spv" shows up when it is
// loaded.
type Loader struct {
	compiler Compiler
	logger   *slog.Logger
	observer Observer
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// WithObserver registers a state transition callback.
func WithObserver(o Observer) LoaderOption {
	return func(ld *Loader) { ld.observer = o }
}

// NewLoader creates a Loader that compiles with c.
func NewLoader(c Compiler, opts ...LoaderOption) *Loader {
	l := &Loader{compiler: c}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Extensions implements assets.Loader.
func (*Loader) Extensions() []string { return []string{Extension} }

// Load implements assets.Loader. It blocks while the compiler runs.
func (l *Loader) Load(ctx context.Context, lc *assets.LoadContext) (any, error) {
	path := lc.FullPath()
	l.transition(path, StateRequested)

	var s Settings
	if err := lc.DecodeSettings(&s); err != nil {
		l.transition(path, StateRejected)
		return nil, err
	}
	p, err := profile.Parse(s.Profile)
	if err != nil {
		l.transition(path, StateRejected)
		return nil, fmt.Errorf("hlsl: %s: %w", lc.Path(), err)
	}

	l.transition(path, StateCompiling)
	if _, err := l.compiler.Compile(ctx, path, p); err != nil {
		switch {
		case errors.Is(err, dxc.ErrSpawn):
			l.transition(path, StateSpawnFailed)
		case errors.Is(err, dxc.ErrDiagnostic):
			l.transition(path, StateCompileFailed)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			l.transition(path, StateCancelled)
		default:
			l.transition(path, StateCompileFailed)
		}
		return nil, fmt.Errorf("hlsl: %s: %w", lc.Path(), err)
	}

	l.transition(path, StateProduced)
	return SourceShader{Path: path}, nil
}

func (l *Loader) transition(path string, s State) {
	logging.Or(l.logger).Debug("hlsl: load", "path", path, "state", s.String())
	if l.observer != nil {
		l.observer(path, s)
	}
}
