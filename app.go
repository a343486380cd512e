// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlslasset

import (
	"context"
	"fmt"

	"github.com/gogpu/hlslasset/assets"
	"github.com/gogpu/hlslasset/bytecode"
	"github.com/gogpu/hlslasset/config"
	"github.com/gogpu/hlslasset/dxc"
	"github.com/gogpu/hlslasset/hlsl"
	"github.com/gogpu/hlslasset/watch"
)

// App owns the shader pipeline of one application: the compiler, the asset
// server with the HLSL and SPIR-V loaders registered, the registry and,
// when hot reload is available, the file watcher.
type App struct {
	Config   config.Config
	Compiler *dxc.Compiler
	Assets   *assets.Server
	Shaders  *Registry

	// Watcher is nil when hot reload is unavailable.
	Watcher *watch.Watcher
}

// AppOption configures NewApp.
type AppOption func(*appOptions)

type appOptions struct {
	compiler []dxc.Option
	observer hlsl.Observer
}

// WithCompilerOptions appends options to the compiler built from the config.
func WithCompilerOptions(opts ...dxc.Option) AppOption {
	return func(o *appOptions) { o.compiler = append(o.compiler, opts...) }
}

// WithObserver reports HLSL loader state transitions to fn.
func WithObserver(fn hlsl.Observer) AppOption {
	return func(o *appOptions) { o.observer = fn }
}

// NewApp builds an App from cfg. Hot reload is resolved once here.
func NewApp(cfg config.Config, opts ...AppOption) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	compiler := dxc.New(append([]dxc.Option{
		dxc.WithBin(cfg.Compiler.Path),
		dxc.WithExtraArgs(cfg.Compiler.ExtraArgs...),
		dxc.WithFailOnDiagnostic(cfg.Compiler.FailOnDiagnostic),
		dxc.WithMaxParallel(cfg.Compiler.MaxParallel),
		dxc.WithCoalesce(cfg.Compiler.Coalesce),
	}, o.compiler...)...)

	server := assets.NewServer(cfg.AssetRoot)
	server.Register(hlsl.NewLoader(compiler, hlsl.WithObserver(o.observer)))
	server.Register(bytecode.Loader{})

	app := &App{
		Config:   cfg,
		Compiler: compiler,
		Assets:   server,
	}

	hot := cfg.HotReloadAvailable()
	var regOpts []RegistryOption
	if hot {
		w, err := watch.New(server, cfg.AssetRoot, watch.WithDebounce(cfg.WatchDebounce()))
		if err != nil {
			server.Close()
			return nil, fmt.Errorf("hlslasset: %w", err)
		}
		app.Watcher = w
		regOpts = append(regOpts, WithTracker(w))
	}
	app.Shaders = NewRegistry(hot, regOpts...)

	Logger().Info("hlslasset: ready", "root", cfg.AssetRoot, "compiler", compiler.Bin(), "hot_reload", hot)
	return app, nil
}

// LoadFromApp loads an HLSL source through app's registry and asset server.
func LoadFromApp(app *App, path, profile string) *assets.Handle {
	return app.Shaders.Load(app.Assets, path, profile)
}

// Build compiles the source at path and waits for the compiled bytecode.
//
// Unlike Load, Build waits for the compile to finish before the ".spv" is
// read, so it never observes a stale output file. While the registry
// holds the source with the same profile, Build reuses that compile.
func (a *App) Build(ctx context.Context, path, profile string) (*bytecode.Shader, error) {
	compiled := LoadFromApp(a, path, profile)

	src := a.Assets.LoadWithSettings(path, hlsl.Settings{Profile: profile})
	defer a.Assets.Release(src)
	if _, err := src.Wait(ctx); err != nil {
		return nil, err
	}
	a.Assets.Reload(compiled.Path())

	v, err := compiled.Wait(ctx)
	if err != nil {
		return nil, err
	}
	shader, ok := v.(*bytecode.Shader)
	if !ok {
		return nil, fmt.Errorf("hlslasset: %s: unexpected asset %T", compiled.Path(), v)
	}
	return shader, nil
}

// Close stops the watcher and waits for in-flight loads.
func (a *App) Close() error {
	var err error
	if a.Watcher != nil {
		err = a.Watcher.Close()
	}
	a.Assets.Close()
	return err
}
