// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

// Extension is the source file extension handled by Loader.
const Extension = "hlsl"

// Settings are the per-request loader settings. They are part of the load
// key, so one source loaded with two profiles is two separate requests.
type Settings struct {
	// Profile is a DXC target profile token such as "ps_6_0".
	// It defaults to empty, which fails validation.
	Profile string `json:"profile"`
}

// SourceShader is the asset produced by Loader. It records which source was
// compiled; the SPIR-V itself is loaded separately from the ".spv" file.
type SourceShader struct {
	// Path is the on-disk source path handed to the compiler.
	Path string
}
