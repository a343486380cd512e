// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package profile describes DXC target profiles.
//
// A profile token such as "ps_6_0" names a pipeline stage and a Shader
// Model version. Only the stage and version pairs that the asset pipeline
// accepts are valid:
//   - ps, vs, gs, hs, ds, cs: Shader Model 6.0 through 6.7
//   - lib: Shader Model 6.1 through 6.7
//   - ms, as: Shader Model 6.5 through 6.7
//
// The stage decides the entry-point name the compiler is told to emit.
// Pixel shaders use "fragment", vertex shaders use "vertex", and every other
// stage keeps the compiler default.
//
// # Usage
//
//	p, err := profile.Parse("ps_6_0")
//	if err != nil {
//	    return err // errors.Is(err, profile.ErrInvalidProfile)
//	}
//	name, ok := p.EntryPoint() // "fragment", true
package profile
