// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package assets

import (
	"context"
	"encoding/json"
	"sync"
)

// State is the load state of a Handle.
type State uint8

const (
	// StateLoading means a load attempt is running.
	StateLoading State = iota

	// StateLoaded means the latest attempt produced a value.
	StateLoaded

	// StateFailed means the latest attempt returned an error.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Handle refers to one load key. It stays valid across reloads.
type Handle struct {
	id       uint64
	path     string
	key      string
	settings json.RawMessage

	refs int // guarded by Server.mu

	mu    sync.Mutex
	state State
	value any
	err   error
	gen   uint64
	done  chan struct{}
}

func newHandle(id uint64, path, key string, settings json.RawMessage) *Handle {
	return &Handle{
		id:       id,
		path:     path,
		key:      key,
		settings: settings,
		state:    StateLoading,
		done:     make(chan struct{}),
	}
}

// ID returns the server-unique handle id.
func (h *Handle) ID() uint64 { return h.id }

// Path returns the asset path.
func (h *Handle) Path() string { return h.path }

// Key returns the load key.
func (h *Handle) Key() string { return h.key }

// State returns the current state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Generation counts load attempts started for this handle.
func (h *Handle) Generation() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gen
}

// Value returns the most recently loaded value. A failed reload keeps the
// previous value.
func (h *Handle) Value() (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value, h.value != nil
}

// Err returns the error of the latest attempt, or nil.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Wait blocks until no attempt is running, then returns the value and the
// error of the latest attempt.
func (h *Handle) Wait(ctx context.Context) (any, error) {
	for {
		h.mu.Lock()
		if h.state != StateLoading {
			v, err := h.value, h.err
			h.mu.Unlock()
			return v, err
		}
		ch := h.done
		h.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// begin starts a new attempt and returns its generation.
func (h *Handle) begin() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateLoading {
		h.done = make(chan struct{})
		h.state = StateLoading
	}
	h.gen++
	return h.gen
}

// finish records the result of attempt gen. Results of attempts that have
// since been superseded are dropped.
func (h *Handle) finish(gen uint64, v any, err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.gen {
		return false
	}
	if err != nil {
		h.state = StateFailed
	} else {
		h.state = StateLoaded
		h.value = v
	}
	h.err = err
	close(h.done)
	return true
}

// Get returns the handle's value as T.
func Get[T any](h *Handle) (T, bool) {
	v, ok := h.Value()
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
