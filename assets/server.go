// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/gogpu/hlslasset/internal/logging"
)

var (
	// ErrNoLoader is returned for a path whose extension has no loader.
	ErrNoLoader = errors.New("assets: no loader registered for extension")
	// ErrClosed is returned for loads requested after Close.
	ErrClosed = errors.New("assets: server closed")
)

// Server loads assets from a root directory.
type Server struct {
	root   string
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	nextID  uint64
	loaders map[string]Loader
	handles map[string]*Handle   // by key
	byPath  map[string][]*Handle // by cleaned path
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a Server reading assets under root.
func NewServer(root string, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		root:    root,
		ctx:     ctx,
		cancel:  cancel,
		loaders: make(map[string]Loader),
		handles: make(map[string]*Handle),
		byPath:  make(map[string][]*Handle),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the asset root directory.
func (s *Server) Root() string { return s.root }

// Register adds a loader for each of its extensions, replacing any loader
// previously registered for the same extension.
func (s *Server) Register(l Loader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ext := range l.Extensions() {
		s.loaders[normalizeExt(ext)] = l
	}
}

// Load requests p with no settings.
func (s *Server) Load(p string) *Handle {
	return s.LoadWithSettings(p, nil)
}

// LoadWithSettings requests p with the given settings. The request is
// deduplicated by load key; a new key starts loading immediately.
func (s *Server) LoadWithSettings(p string, settings any) *Handle {
	key, raw, keyErr := Key(p, settings)
	p = CleanPath(p)
	if keyErr != nil {
		// Unencodable settings fail the request without caching it.
		key = p + "#invalid"
	}

	s.mu.Lock()
	if h, ok := s.handles[key]; ok && keyErr == nil {
		h.refs++
		s.mu.Unlock()
		return h
	}
	s.nextID++
	h := newHandle(s.nextID, p, key, raw)
	if keyErr != nil || s.closed {
		s.mu.Unlock()
		err := keyErr
		if err == nil {
			err = ErrClosed
		}
		h.finish(h.begin(), nil, err)
		return h
	}
	h.refs = 1
	s.handles[key] = h
	s.byPath[p] = append(s.byPath[p], h)
	gen := h.begin()
	s.wg.Add(1)
	s.mu.Unlock()

	s.start(h, gen)
	return h
}

// Release drops one reference to h taken by Load or LoadWithSettings.
// When the last reference is gone the server forgets h: a later request
// for its key starts a new load and Reload no longer restarts it. A load
// already running is left to finish. Release reports whether h was
// forgotten.
func (s *Server) Release(h *Handle) bool {
	if h == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handles[h.key] != h {
		return false
	}
	h.refs--
	if h.refs > 0 {
		return false
	}
	delete(s.handles, h.key)
	hs := slices.DeleteFunc(s.byPath[h.path], func(o *Handle) bool { return o == h })
	if len(hs) == 0 {
		delete(s.byPath, h.path)
	} else {
		s.byPath[h.path] = hs
	}
	s.log().Debug("assets: released", "key", h.key)
	return true
}

// Reload re-runs every load of p and returns how many were restarted.
func (s *Server) Reload(p string) int {
	p = CleanPath(p)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	hs := append([]*Handle(nil), s.byPath[p]...)
	gens := make([]uint64, len(hs))
	for i, h := range hs {
		gens[i] = h.begin()
	}
	s.wg.Add(len(hs))
	s.mu.Unlock()

	for i, h := range hs {
		s.start(h, gens[i])
	}
	if len(hs) > 0 {
		s.log().Info("assets: reloading", "path", p, "handles", len(hs))
	}
	return len(hs)
}

// Loaded reports whether any load of p has been requested.
func (s *Server) Loaded(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byPath[CleanPath(p)]) > 0
}

// Paths returns the requested asset paths in sorted order.
func (s *Server) Paths() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.byPath))
	for p := range s.byPath {
		out = append(out, p)
	}
	s.mu.Unlock()
	sort.Strings(out)
	return out
}

// Wait blocks until all running loads have finished.
func (s *Server) Wait() { s.wg.Wait() }

// Close rejects new loads, cancels the context passed to loaders and waits
// for running loads to return.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

// start runs attempt gen of h. The caller has already added it to s.wg
// while holding s.mu, so Close cannot miss it.
func (s *Server) start(h *Handle, gen uint64) {
	go func() {
		defer s.wg.Done()
		v, err := s.run(h)
		if !h.finish(gen, v, err) {
			s.log().Debug("assets: dropped superseded load", "key", h.key, "gen", gen)
			return
		}
		if err != nil {
			s.log().Warn("assets: load failed", "path", h.path, "err", err)
			return
		}
		s.log().Debug("assets: loaded", "key", h.key, "gen", gen)
	}()
}

func (s *Server) run(h *Handle) (any, error) {
	ext := normalizeExt(path.Ext(h.path))

	s.mu.Lock()
	l, ok := s.loaders[ext]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (%s)", ErrNoLoader, ext, h.path)
	}

	lc := &LoadContext{root: s.root, path: h.path, settings: h.settings}
	return l.Load(s.ctx, lc)
}

func (s *Server) log() *slog.Logger { return logging.Or(s.logger) }

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
