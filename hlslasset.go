// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlslasset compiles HLSL shaders to SPIR-V as assets.
//
// Sources are compiled on demand by the external DXC compiler through the
// asset server, and the resulting ".spv" files are loaded as
// bytecode.Shader assets. The [Registry] remembers which sources were
// requested so that edits on disk can trigger a recompile.
//
// Example usage:
//
//	app, err := hlslasset.NewApp(config.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Close()
//
//	h := hlslasset.LoadFromApp(app, "shaders/basic.hlsl", "ps_6_0")
//	v, err := h.Wait(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	shader := v.(*bytecode.Shader)
//
// Supported profiles are listed by profile.All:
//   - ps, vs, gs, hs, ds, cs: shader model 6.0 to 6.7
//   - lib: 6.1 to 6.7
//   - ms, as: 6.5 to 6.7
//
// Pixel shaders must name their entry point "fragment" and vertex shaders
// "vertex". Other stages use the compiler default.
package hlslasset

// Version is the module version.
const Version = "0.1.0"
