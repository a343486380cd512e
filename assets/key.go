// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
)

// CleanPath normalizes an asset path to slash-separated clean form.
func CleanPath(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// Key returns the load key for path and settings along with the encoded
// settings. With nil settings the key is the cleaned path.
func Key(p string, settings any) (string, json.RawMessage, error) {
	p = CleanPath(p)
	if settings == nil {
		return p, nil, nil
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return "", nil, fmt.Errorf("assets: encode settings for %s: %w", p, err)
	}
	sum := sha256.Sum256(raw)
	return p + "#" + hex.EncodeToString(sum[:8]), raw, nil
}
