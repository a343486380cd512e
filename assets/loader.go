// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Loader turns a file into an asset value.
type Loader interface {
	// Extensions lists the file extensions handled, without the dot.
	Extensions() []string

	// Load produces the asset. It may block.
	Load(ctx context.Context, lc *LoadContext) (any, error)
}

// LoadContext is passed to a Loader for one load attempt.
type LoadContext struct {
	root     string
	path     string
	settings json.RawMessage
}

// Path returns the asset path relative to the server root, slash-separated.
func (lc *LoadContext) Path() string { return lc.path }

// Root returns the server root directory.
func (lc *LoadContext) Root() string { return lc.root }

// FullPath returns the on-disk path of the asset.
func (lc *LoadContext) FullPath() string {
	return filepath.Join(lc.root, filepath.FromSlash(lc.path))
}

// Settings returns the JSON-encoded settings of the request, or nil.
func (lc *LoadContext) Settings() json.RawMessage { return lc.settings }

// DecodeSettings decodes the request settings into v.
// v is left untouched when the request carried no settings.
func (lc *LoadContext) DecodeSettings(v any) error {
	if len(lc.settings) == 0 {
		return nil
	}
	if err := json.Unmarshal(lc.settings, v); err != nil {
		return fmt.Errorf("assets: decode settings for %s: %w", lc.path, err)
	}
	return nil
}

// Read returns the asset file contents.
func (lc *LoadContext) Read() ([]byte, error) {
	return os.ReadFile(lc.FullPath())
}
