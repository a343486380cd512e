// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config holds hlslasset runtime configuration.
//
// A Config starts from Default, can be read from a JSON file with Load, and
// can be adjusted with Options:
//
//	cfg, err := config.Load("hlslasset.json",
//	    config.WithCompilerPath("/opt/dxc/bin/dxc"),
//	    config.WithHotReload(config.HotReloadOff))
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"
)

const (
	// DefaultAssetRoot is the directory sources are resolved against.
	DefaultAssetRoot = "assets"
	// DefaultCompilerPath is the compiler looked up on PATH.
	DefaultCompilerPath = "dxc"
	// DefaultWatchDebounceMS is how long the watcher waits for writes to settle.
	DefaultWatchDebounceMS = 50
)

// HotReloadMode selects whether file watching is enabled.
type HotReloadMode string

const (
	// HotReloadAuto enables watching where the platform supports it.
	HotReloadAuto HotReloadMode = "auto"
	// HotReloadOn always enables watching.
	HotReloadOn HotReloadMode = "on"
	// HotReloadOff disables watching.
	HotReloadOff HotReloadMode = "off"
)

// Compiler configures the external compiler.
type Compiler struct {
	// Path is the compiler executable.
	Path string `json:"path"`

	// ExtraArgs are appended to every compiler command line.
	ExtraArgs []string `json:"extra_args,omitempty"`

	// FailOnDiagnostic fails a load when the compiler exits non-zero or
	// prints to stderr. Off by default: diagnostics are only logged.
	FailOnDiagnostic bool `json:"fail_on_diagnostic"`

	// MaxParallel bounds concurrent compiler processes.
	MaxParallel int `json:"max_parallel"`

	// Coalesce shares one compile between concurrent requests for the same
	// source and profile.
	Coalesce bool `json:"coalesce"`
}

// Config is the hlslasset configuration.
type Config struct {
	// AssetRoot is the directory asset paths are relative to.
	AssetRoot string `json:"asset_root"`

	Compiler Compiler `json:"compiler"`

	// HotReload selects file watching.
	HotReload HotReloadMode `json:"hot_reload"`

	// WatchDebounceMS delays reloads until writes settle.
	WatchDebounceMS int `json:"watch_debounce_ms"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		AssetRoot: DefaultAssetRoot,
		Compiler: Compiler{
			Path:        DefaultCompilerPath,
			MaxParallel: runtime.NumCPU(),
		},
		HotReload:       HotReloadAuto,
		WatchDebounceMS: DefaultWatchDebounceMS,
	}
}

// Option adjusts a Config.
type Option func(*Config)

// WithAssetRoot sets the asset root.
func WithAssetRoot(root string) Option {
	return func(c *Config) { c.AssetRoot = root }
}

// WithCompilerPath sets the compiler executable.
func WithCompilerPath(path string) Option {
	return func(c *Config) { c.Compiler.Path = path }
}

// WithExtraArgs appends compiler arguments.
func WithExtraArgs(args ...string) Option {
	return func(c *Config) { c.Compiler.ExtraArgs = append(c.Compiler.ExtraArgs, args...) }
}

// WithFailOnDiagnostic sets Compiler.FailOnDiagnostic.
func WithFailOnDiagnostic(fail bool) Option {
	return func(c *Config) { c.Compiler.FailOnDiagnostic = fail }
}

// WithMaxParallel sets Compiler.MaxParallel.
func WithMaxParallel(n int) Option {
	return func(c *Config) { c.Compiler.MaxParallel = n }
}

// WithCoalesce sets Compiler.Coalesce.
func WithCoalesce(coalesce bool) Option {
	return func(c *Config) { c.Compiler.Coalesce = coalesce }
}

// WithHotReload sets the hot reload mode.
func WithHotReload(mode HotReloadMode) Option {
	return func(c *Config) { c.HotReload = mode }
}

// WithWatchDebounce sets the watcher debounce.
func WithWatchDebounce(d time.Duration) Option {
	return func(c *Config) { c.WatchDebounceMS = int(d / time.Millisecond) }
}

// New returns Default with opts applied.
func New(opts ...Option) Config {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Load reads a JSON file over Default and applies opts on top.
// Fields absent from the file keep their defaults.
func Load(path string, opts ...Option) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.AssetRoot == "":
		return errors.New("config: asset_root is empty")
	case c.Compiler.Path == "":
		return errors.New("config: compiler.path is empty")
	case c.Compiler.MaxParallel < 0:
		return fmt.Errorf("config: compiler.max_parallel is negative (%d)", c.Compiler.MaxParallel)
	case c.WatchDebounceMS < 0:
		return fmt.Errorf("config: watch_debounce_ms is negative (%d)", c.WatchDebounceMS)
	}
	switch c.HotReload {
	case HotReloadAuto, HotReloadOn, HotReloadOff:
		return nil
	default:
		return fmt.Errorf("config: unknown hot_reload mode %q", c.HotReload)
	}
}

// WatchDebounce returns WatchDebounceMS as a duration.
func (c Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

// HotReloadAvailable resolves the hot reload mode for the running platform.
// Call it once at startup and pass the result on.
func (c Config) HotReloadAvailable() bool {
	return c.hotReloadAvailable(runtime.GOOS)
}

func (c Config) hotReloadAvailable(goos string) bool {
	switch c.HotReload {
	case HotReloadOn:
		return true
	case HotReloadOff:
		return false
	default:
		return canWatch(goos)
	}
}

// canWatch reports whether goos has a file system worth watching.
func canWatch(goos string) bool {
	switch goos {
	case "js", "wasip1", "ios", "android":
		return false
	default:
		return true
	}
}
