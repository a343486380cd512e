// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl loads HLSL shader sources as assets.
//
// The Loader handles ".hlsl" files. Each request carries Settings with a
// DXC target profile; the profile is part of the load key, so the same
// source loaded for two stages is compiled twice.
//
// # Load states
//
// A load moves through these states:
//
//	Requested -> Compiling -> Produced
//	Requested -> Compiling -> SpawnFailed
//	Requested -> Compiling -> CompileFailed  (fail-on-diagnostic only)
//	Requested -> Compiling -> Cancelled      (server closed while waiting)
//	Requested -> Rejected                    (invalid profile)
//
// Transitions are logged at debug level and reported to the Observer set
// with WithObserver.
//
// # Usage
//
//	server := assets.NewServer("assets")
//	server.Register(hlsl.NewLoader(dxc.New()))
//
//	h := server.LoadWithSettings("shaders/basic.hlsl", hlsl.Settings{Profile: "ps_6_0"})
//	v, err := h.Wait(ctx)
//
// The produced SourceShader only records the compiled source. The SPIR-V is
// written to "shaders/basic.spv" and loaded separately, see package bytecode.
package hlsl
