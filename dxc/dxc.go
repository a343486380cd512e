// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxc

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/hlslasset/internal/logging"
	"github.com/gogpu/hlslasset/profile"
)

const (
	// DefaultBin is the compiler looked up on PATH when none is configured.
	DefaultBin = "dxc"

	// OutputExt is the extension of compiled SPIR-V files.
	OutputExt = ".spv"
)

// OutputPath returns src with its extension replaced by OutputExt.
// A path without an extension gets OutputExt appended.
func OutputPath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + OutputExt
}

// Outcome describes one finished compiler run.
type Outcome struct {
	// Source is the HLSL file that was compiled.
	Source string

	// Output is where the compiler was told to write SPIR-V.
	Output string

	// Profile is the target profile.
	Profile profile.Profile

	// Args is the full argument list passed to the compiler.
	Args []string

	// ExitCode is the compiler exit status.
	ExitCode int

	// Stderr is everything the compiler wrote to its error stream.
	Stderr string

	// Duration is the wall time spent in the compiler.
	Duration time.Duration
}

// Diagnostic reports whether the compiler exited non-zero or wrote
// anything other than whitespace to stderr.
func (o *Outcome) Diagnostic() bool {
	return o.ExitCode != 0 || strings.TrimSpace(o.Stderr) != ""
}

// Compiler invokes dxc. It is safe for concurrent use.
type Compiler struct {
	bin              string
	extraArgs        []string
	failOnDiagnostic bool
	coalesce         bool
	runner           Runner
	logger           *slog.Logger

	pool  *semaphore.Weighted
	group singleflight.Group
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithBin sets the compiler executable.
func WithBin(bin string) Option {
	return func(c *Compiler) {
		if bin != "" {
			c.bin = bin
		}
	}
}

// WithExtraArgs appends arguments after the standard ones.
func WithExtraArgs(args ...string) Option {
	return func(c *Compiler) { c.extraArgs = append(c.extraArgs, args...) }
}

// WithFailOnDiagnostic makes Compile return a *DiagnosticError when the
// compiler reports diagnostics.
func WithFailOnDiagnostic(fail bool) Option {
	return func(c *Compiler) { c.failOnDiagnostic = fail }
}

// WithCoalesce lets concurrent Compile calls for the same source and
// profile share one compiler run.
func WithCoalesce(coalesce bool) Option {
	return func(c *Compiler) { c.coalesce = coalesce }
}

// WithMaxParallel bounds how many compiler processes run at once.
// n <= 0 keeps the default of GOMAXPROCS.
func WithMaxParallel(n int) Option {
	return func(c *Compiler) {
		if n > 0 {
			c.pool = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(c *Compiler) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithLogger sets the logger that receives compiler diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		bin:    DefaultBin,
		runner: ExecRunner{},
		pool:   semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bin returns the compiler executable.
func (c *Compiler) Bin() string { return c.bin }

// Args returns the compiler arguments for compiling src with p.
func (c *Compiler) Args(src string, p profile.Profile) []string {
	args := []string{
		src,
		"-T", p.String(),
		"-spirv",
		"-fvk-use-gl-layout",
		"-Fo", OutputPath(src),
	}
	if name, ok := p.EntryPoint(); ok {
		args = append(args, "-fspv-entrypoint-name="+name)
	}
	return append(args, c.extraArgs...)
}

// Command returns the full command line, executable first.
func (c *Compiler) Command(src string, p profile.Profile) []string {
	return append([]string{c.bin}, c.Args(src, p)...)
}

// Compile runs the compiler on src and blocks until it exits.
//
// ctx bounds only the wait for a free pool slot; once started, the
// compiler runs to completion.
func (c *Compiler) Compile(ctx context.Context, src string, p profile.Profile) (*Outcome, error) {
	if !c.coalesce {
		return c.compile(ctx, src, p)
	}

	v, err, shared := c.group.Do(src+"\x00"+p.String(), func() (any, error) {
		out, err := c.compile(ctx, src, p)
		return out, err
	})
	if shared {
		c.log().Debug("dxc: shared in-flight compile", "source", src, "profile", p.String())
	}
	out, _ := v.(*Outcome)
	return out, err
}

func (c *Compiler) compile(ctx context.Context, src string, p profile.Profile) (*Outcome, error) {
	if err := c.pool.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("dxc: waiting to compile %s: %w", src, err)
	}
	defer c.pool.Release(1)

	args := c.Args(src, p)
	log := c.log()
	log.Debug("dxc: compiling", "cmd", strings.Join(append([]string{c.bin}, args...), " "))

	start := time.Now()
	res, err := c.runner.Run(c.bin, args)
	if err != nil {
		return nil, &SpawnError{Bin: c.bin, Source: src, Err: err}
	}

	out := &Outcome{
		Source:   src,
		Output:   OutputPath(src),
		Profile:  p,
		Args:     args,
		ExitCode: res.ExitCode,
		Stderr:   string(res.Stderr),
		Duration: time.Since(start),
	}

	if !out.Diagnostic() {
		log.Debug("dxc: compiled", "source", src, "output", out.Output, "duration", out.Duration)
		return out, nil
	}

	log.Warn("dxc: compiler reported diagnostics",
		"source", src,
		"profile", p.String(),
		"exit", out.ExitCode,
		"stderr", strings.TrimSpace(out.Stderr))
	if c.failOnDiagnostic {
		return out, &DiagnosticError{Outcome: out}
	}
	return out, nil
}

func (c *Compiler) log() *slog.Logger { return logging.Or(c.logger) }
