// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package profile

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/hlsl"
)

// Stage is the pipeline stage half of a profile.
type Stage uint8

// Stages accepted in profile tokens.
const (
	// StageUnknown is the zero value and never appears in a valid profile.
	StageUnknown Stage = iota

	// StagePixel is "ps". Entry point is forced to "fragment".
	StagePixel

	// StageVertex is "vs". Entry point is forced to "vertex".
	StageVertex

	// StageGeometry is "gs".
	StageGeometry

	// StageHull is "hs" (tessellation control).
	StageHull

	// StageDomain is "ds" (tessellation evaluation).
	StageDomain

	// StageCompute is "cs".
	StageCompute

	// StageLibrary is "lib". Requires Shader Model 6.1.
	StageLibrary

	// StageMesh is "ms". Requires Shader Model 6.5.
	StageMesh

	// StageAmplification is "as". Requires Shader Model 6.5.
	StageAmplification
)

// stages lists the valid stages in token order.
var stages = [...]Stage{
	StagePixel, StageVertex, StageGeometry, StageHull, StageDomain,
	StageCompute, StageLibrary, StageMesh, StageAmplification,
}

// String returns a human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StagePixel:
		return "pixel"
	case StageVertex:
		return "vertex"
	case StageGeometry:
		return "geometry"
	case StageHull:
		return "hull"
	case StageDomain:
		return "domain"
	case StageCompute:
		return "compute"
	case StageLibrary:
		return "library"
	case StageMesh:
		return "mesh"
	case StageAmplification:
		return "amplification"
	default:
		return "unknown"
	}
}

// Prefix returns the token prefix for the stage, such as "ps" or "lib".
func (s Stage) Prefix() string {
	switch s {
	case StagePixel:
		return "ps"
	case StageVertex:
		return "vs"
	case StageGeometry:
		return "gs"
	case StageHull:
		return "hs"
	case StageDomain:
		return "ds"
	case StageCompute:
		return "cs"
	case StageLibrary:
		return "lib"
	case StageMesh:
		return "ms"
	case StageAmplification:
		return "as"
	default:
		return ""
	}
}

// EntryPoint returns the entry-point name forced for this stage.
// ok is false when the compiler default should be kept.
func (s Stage) EntryPoint() (name string, ok bool) {
	switch s {
	case StagePixel:
		return "fragment", true
	case StageVertex:
		return "vertex", true
	default:
		return "", false
	}
}

// MinModel returns the oldest Shader Model accepted for the stage.
func (s Stage) MinModel() hlsl.ShaderModel {
	switch s {
	case StageLibrary:
		return hlsl.ShaderModel6_1
	case StageMesh, StageAmplification:
		return hlsl.ShaderModel6_5
	default:
		return hlsl.ShaderModel6_0
	}
}

// GPUStage maps the stage onto the WebGPU stage set.
// Stages WebGPU has no equivalent for map to gputypes.ShaderStageNone.
func (s Stage) GPUStage() gputypes.ShaderStage {
	switch s {
	case StageVertex:
		return gputypes.ShaderStageVertex
	case StagePixel:
		return gputypes.ShaderStageFragment
	case StageCompute:
		return gputypes.ShaderStageCompute
	default:
		return gputypes.ShaderStageNone
	}
}

// stageForPrefix returns the stage whose Prefix is p.
func stageForPrefix(p string) (Stage, bool) {
	for _, s := range stages {
		if s.Prefix() == p {
			return s, true
		}
	}
	return StageUnknown, false
}
