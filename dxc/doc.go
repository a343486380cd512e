// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package dxc runs the DirectX Shader Compiler to turn HLSL sources into
// SPIR-V files.
//
// The compiler is an external executable invoked as:
//
//	dxc <source> -T <profile> -spirv -fvk-use-gl-layout -Fo <output> [-fspv-entrypoint-name=<name>]
//
// The output path is the source path with its extension replaced by ".spv".
//
// # Failure model
//
// Only a compiler that cannot be started is an error ([SpawnError]). A
// compiler that starts and then exits non-zero, or prints to stderr, produces
// an [Outcome] whose Diagnostic method reports true; the text is logged at
// Warn level and Compile still succeeds. A broken compile surfaces later,
// when the ".spv" file is loaded. [WithFailOnDiagnostic] turns diagnostics
// into a [DiagnosticError] instead.
//
// # Blocking
//
// Compile blocks until the compiler process exits. There is no timeout and
// a running compiler is never cancelled. Concurrent Compile calls share a
// bounded pool sized by [WithMaxParallel], so a slow compile holds one slot
// rather than the caller's scheduler.
package dxc
