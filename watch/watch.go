// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package watch reloads assets when their files change on disk.
//
// A Watcher tracks asset paths relative to an asset root. Writes to a
// tracked file are debounced and then reported to a Reloader, normally an
// *assets.Server.
package watch

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/hlslasset/assets"
	"github.com/gogpu/hlslasset/internal/logging"
)

// DefaultDebounce is used when no debounce is configured.
const DefaultDebounce = 50 * time.Millisecond

// ErrClosed is returned by Track after Close.
var ErrClosed = errors.New("watch: watcher closed")

// Reloader re-runs the loads of an asset path.
type Reloader interface {
	Reload(path string) int
}

// Watcher watches tracked asset files.
type Watcher struct {
	reloader Reloader
	root     string
	debounce time.Duration
	logger   *slog.Logger

	fs *fsnotify.Watcher

	mu      sync.Mutex
	tracked map[string]string // absolute file -> asset path
	dirs    map[string]bool
	timers  map[string]*time.Timer
	closed  bool

	done chan struct{}
	wg   sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long writes must settle before a reload.
// Zero reloads on every event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the watcher logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New starts a watcher for files under root.
func New(r Reloader, root string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	w := &Watcher{
		reloader: r,
		root:     abs,
		debounce: DefaultDebounce,
		fs:       fw,
		tracked:  make(map[string]string),
		dirs:     make(map[string]bool),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Track starts watching the asset at p. The file does not need to exist
// yet, but its directory does.
func (w *Watcher) Track(p string) error {
	p = assets.CleanPath(p)
	file := filepath.Join(w.root, filepath.FromSlash(p))
	dir := filepath.Dir(file)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if !w.dirs[dir] {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watch: %s: %w", p, err)
		}
		w.dirs[dir] = true
	}
	w.tracked[file] = p
	return nil
}

// Tracked reports whether p is tracked.
func (w *Watcher) Tracked(p string) bool {
	file := filepath.Join(w.root, filepath.FromSlash(assets.CleanPath(p)))
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.tracked[file]
	return ok
}

// Close stops watching. Pending debounced reloads are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for file, t := range w.timers {
		t.Stop()
		delete(w.timers, file)
	}
	w.mu.Unlock()

	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.changed(filepath.Clean(event.Name))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log().Warn("watch: error", "err", err)
		}
	}
}

func (w *Watcher) changed(file string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.tracked[file]
	if !ok || w.closed {
		return
	}
	if w.debounce <= 0 {
		go w.reload(p)
		return
	}
	if t, ok := w.timers[file]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[file] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, file)
		closed := w.closed
		w.mu.Unlock()
		if !closed {
			w.reload(p)
		}
	})
}

func (w *Watcher) reload(p string) {
	n := w.reloader.Reload(p)
	w.log().Info("watch: changed", "path", p, "reloaded", n)
}

func (w *Watcher) log() *slog.Logger { return logging.Or(w.logger) }
