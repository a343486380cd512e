// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command hlslc compiles HLSL shaders to SPIR-V with DXC.
//
// Usage:
//
//	hlslc [options] <source.hlsl>...
//
// Source paths are relative to the asset root.
//
// Examples:
//
//	hlslc -T ps_6_0 shaders/basic.hlsl         # Compile one pixel shader
//	hlslc -T vs_6_0 -j 4 shaders/*.hlsl        # Compile many, four at a time
//	hlslc -T ps_6_0 -watch shaders/basic.hlsl  # Recompile on change
//	hlslc -profiles                            # List supported profiles
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/hlslasset"
	"github.com/gogpu/hlslasset/bytecode"
	"github.com/gogpu/hlslasset/config"
	"github.com/gogpu/hlslasset/dxc"
	"github.com/gogpu/hlslasset/profile"
)

var (
	configPath   = flag.String("config", "", "JSON config file")
	root         = flag.String("root", "", "asset root (default: from config, \"assets\")")
	dxcPath      = flag.String("dxc", "", "compiler executable (default: from config, \"dxc\")")
	target       = flag.String("T", "", "target profile, e.g. ps_6_0")
	failFast     = flag.Bool("fail-on-diagnostic", false, "fail when the compiler reports diagnostics")
	parallel     = flag.Int("j", 0, "max parallel compiler processes (default: from config)")
	coalesce     = flag.Bool("coalesce", false, "share concurrent compiles of the same source and profile")
	watchSources = flag.Bool("watch", false, "keep running and recompile on change")
	listProfiles = flag.Bool("profiles", false, "list supported profiles and exit")
	verbose      = flag.Bool("v", false, "verbose logging")
	version      = flag.Bool("version", false, "print version")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("hlslc version %s\n", hlslasset.Version)
		return
	}
	if *listProfiles {
		printProfiles(os.Stdout)
		return
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(sources []string) error {
	if len(sources) == 0 {
		usage()
		return fmt.Errorf("no input file specified")
	}
	if _, err := profile.Parse(*target); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	hlslasset.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := hlslasset.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := build(ctx, app, sources); err != nil {
		return err
	}
	if !*watchSources {
		return nil
	}

	fmt.Fprintf(os.Stderr, "Watching %d source(s) under %s, press Ctrl+C to stop\n", len(sources), cfg.AssetRoot)
	<-ctx.Done()
	return nil
}

func loadConfig() (config.Config, error) {
	var opts []config.Option
	if *root != "" {
		opts = append(opts, config.WithAssetRoot(*root))
	}
	if *dxcPath != "" {
		opts = append(opts, config.WithCompilerPath(*dxcPath))
	}
	if *parallel > 0 {
		opts = append(opts, config.WithMaxParallel(*parallel))
	}
	if *failFast {
		opts = append(opts, config.WithFailOnDiagnostic(true))
	}
	if *coalesce {
		opts = append(opts, config.WithCoalesce(true))
	}
	if *watchSources {
		opts = append(opts, config.WithHotReload(config.HotReloadOn))
	} else {
		opts = append(opts, config.WithHotReload(config.HotReloadOff))
	}

	if *configPath == "" {
		cfg := config.New(opts...)
		return cfg, cfg.Validate()
	}
	return config.Load(*configPath, opts...)
}

// build compiles all sources concurrently and prints one line per source.
// Every source is attempted even when another fails.
func build(ctx context.Context, app *hlslasset.App, sources []string) error {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed int
	)
	for _, src := range sources {
		g.Go(func() error {
			shader, err := app.Build(ctx, src, *target)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "%s: %v\n", src, err)
				return nil
			}
			fmt.Println(summary(src, shader))
			return nil
		})
	}
	_ = g.Wait()

	if failed > 0 {
		return fmt.Errorf("%d of %d source(s) failed", failed, len(sources))
	}
	return nil
}

func summary(src string, s *bytecode.Shader) string {
	names := make([]string, 0, len(s.EntryPoints))
	for _, ep := range s.EntryPoints {
		names = append(names, ep.Name)
	}
	eps := "no entry points"
	if len(names) > 0 {
		eps = "entry points " + strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s -> %s (%d words, %s)", src, dxc.OutputPath(src), len(s.Words), eps)
}

func printProfiles(w io.Writer) {
	for _, p := range profile.All() {
		ep, ok := p.EntryPoint()
		if !ok {
			ep = "-"
		}
		fmt.Fprintf(w, "%-8s %-14s %-7s %s\n", p, p.Stage, p.Model, ep)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: hlslc [options] <source.hlsl>...\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  hlslc -T ps_6_0 shaders/basic.hlsl         Compile one shader\n")
	fmt.Fprintf(os.Stderr, "  hlslc -T vs_6_0 -j 4 shaders/*.hlsl        Compile many in parallel\n")
	fmt.Fprintf(os.Stderr, "  hlslc -T ps_6_0 -watch shaders/basic.hlsl  Recompile on change\n")
}
