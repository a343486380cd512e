// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package assets is a small asynchronous asset server.
//
// Loaders are registered by file extension. A load request is identified by
// its path and, when given, its settings: the settings are JSON-encoded and
// hashed into the load key, so loading one path with two different settings
// values produces two independent handles. Requesting an existing key returns
// the existing handle.
//
// Every load runs on its own goroutine. Reload re-runs all loads of a path,
// which is how file watching drives hot reload.
//
//	srv := assets.NewServer("assets")
//	srv.Register(myLoader{})
//	h := srv.LoadWithSettings("shaders/basic.hlsl", hlsl.Settings{Profile: "ps_6_0"})
//	v, err := h.Wait(ctx)
package assets
