// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlslasset

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/gogpu/hlslasset/assets"
	"github.com/gogpu/hlslasset/dxc"
	"github.com/gogpu/hlslasset/hlsl"
	"github.com/gogpu/hlslasset/internal/logging"
)

// AssetServer is the part of *assets.Server the registry uses.
type AssetServer interface {
	Load(path string) *assets.Handle
	LoadWithSettings(path string, settings any) *assets.Handle
	Release(h *assets.Handle) bool
}

// Tracker is told which asset paths to watch for changes.
type Tracker interface {
	Track(path string) error
}

// Registry maps HLSL source paths to the handle of their latest
// settings-tagged load, so a file watcher can reload them.
//
// The registry holds one entry per source path. A later load of the same
// path replaces the entry and releases the replaced handle on the server.
// Entries are never removed.
type Registry struct {
	hotReload bool
	tracker   Tracker
	logger    *slog.Logger

	mu      sync.RWMutex
	sources map[string]*assets.Handle
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithTracker sets the tracker notified of loaded sources.
func WithTracker(t Tracker) RegistryOption {
	return func(r *Registry) { r.tracker = t }
}

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates a registry. hotReload is the resolved platform
// capability; when false, Load only loads compiled bytecode.
func NewRegistry(hotReload bool, opts ...RegistryOption) *Registry {
	r := &Registry{
		hotReload: hotReload,
		sources:   make(map[string]*assets.Handle),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HotReload reports whether sources are loaded and retained.
func (r *Registry) HotReload() bool { return r.hotReload }

// Load requests compilation of the HLSL source at path with the given
// profile and returns the handle of the compiled ".spv" asset.
//
// With hot reload on, the source is loaded through server tagged with its
// profile, and the resulting handle is stored under path. The compiled
// output is loaded either way. Load never fails itself; errors surface on
// the returned handles.
func (r *Registry) Load(server AssetServer, path, profile string) *assets.Handle {
	output := dxc.OutputPath(path)

	if r.hotReload {
		src := server.LoadWithSettings(path, hlsl.Settings{Profile: profile})
		key := assets.CleanPath(path)

		r.mu.Lock()
		prev := r.sources[key]
		r.sources[key] = src
		r.mu.Unlock()

		// The registry holds one reference per entry. Dropping the
		// replaced one stops reloads of a profile no longer in use.
		if prev != nil {
			server.Release(prev)
		}

		r.track(key, assets.CleanPath(output))
		r.log().Info("registry: load", "path", key, "profile", profile)
	}

	return server.Load(output)
}

func (r *Registry) track(paths ...string) {
	if r.tracker == nil {
		return
	}
	for _, p := range paths {
		if err := r.tracker.Track(p); err != nil {
			r.log().Warn("registry: cannot watch", "path", p, "err", err)
		}
	}
}

// Handle returns the source handle stored for path, or nil.
func (r *Registry) Handle(path string) *assets.Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[assets.CleanPath(path)]
}

// Paths returns the registered source paths in sorted order.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.sources))
	for p := range r.sources {
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}

func (r *Registry) log() *slog.Logger { return logging.Or(r.logger) }
