// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package profile

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/hlsl"
)

// documented is the full list of accepted tokens, written out by hand.
var documented = []string{
	"ps_6_0", "ps_6_1", "ps_6_2", "ps_6_3", "ps_6_4", "ps_6_5", "ps_6_6", "ps_6_7",
	"vs_6_0", "vs_6_1", "vs_6_2", "vs_6_3", "vs_6_4", "vs_6_5", "vs_6_6", "vs_6_7",
	"gs_6_0", "gs_6_1", "gs_6_2", "gs_6_3", "gs_6_4", "gs_6_5", "gs_6_6", "gs_6_7",
	"hs_6_0", "hs_6_1", "hs_6_2", "hs_6_3", "hs_6_4", "hs_6_5", "hs_6_6", "hs_6_7",
	"ds_6_0", "ds_6_1", "ds_6_2", "ds_6_3", "ds_6_4", "ds_6_5", "ds_6_6", "ds_6_7",
	"cs_6_0", "cs_6_1", "cs_6_2", "cs_6_3", "cs_6_4", "cs_6_5", "cs_6_6", "cs_6_7",
	"lib_6_1", "lib_6_2", "lib_6_3", "lib_6_4", "lib_6_5", "lib_6_6", "lib_6_7",
	"ms_6_5", "ms_6_6", "ms_6_7",
	"as_6_5", "as_6_6", "as_6_7",
}

func TestAll_MatchesDocumentedList(t *testing.T) {
	all := All()
	if len(all) != len(documented) {
		t.Fatalf("All() returned %d profiles, want %d", len(all), len(documented))
	}
	for i, p := range all {
		if p.String() != documented[i] {
			t.Errorf("All()[%d] = %q, want %q", i, p.String(), documented[i])
		}
	}
}

func TestParse_AcceptsEveryDocumentedToken(t *testing.T) {
	for _, token := range documented {
		t.Run(token, func(t *testing.T) {
			p, err := Parse(token)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", token, err)
			}
			if p.String() != token {
				t.Errorf("Parse(%q).String() = %q", token, p.String())
			}
		})
	}
}

func TestValidate_EntryPoint(t *testing.T) {
	tests := []struct {
		token     string
		wantStage Stage
		wantName  string
	}{
		{"ps_6_0", StagePixel, "fragment"},
		{"ps_6_7", StagePixel, "fragment"},
		{"vs_6_0", StageVertex, "vertex"},
		{"vs_6_3", StageVertex, "vertex"},
		{"gs_6_2", StageGeometry, ""},
		{"hs_6_0", StageHull, ""},
		{"ds_6_4", StageDomain, ""},
		{"cs_6_6", StageCompute, ""},
		{"lib_6_1", StageLibrary, ""},
		{"ms_6_5", StageMesh, ""},
		{"as_6_7", StageAmplification, ""},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			stage, name, err := Validate(tt.token)
			if err != nil {
				t.Fatalf("Validate(%q) error: %v", tt.token, err)
			}
			if stage != tt.wantStage {
				t.Errorf("stage = %v, want %v", stage, tt.wantStage)
			}
			if name != tt.wantName {
				t.Errorf("entry point = %q, want %q", name, tt.wantName)
			}
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		token string
		kind  ErrorKind
	}{
		{"", ErrEmptyProfile},
		{"ps", ErrMalformedVersion},
		{"ps_6", ErrMalformedVersion},
		{"ps_6_0_1", ErrMalformedVersion},
		{"ps_60", ErrMalformedVersion},
		{"ps_6_x", ErrMalformedVersion},
		{"xs_6_0", ErrUnknownStage},
		{"PS_6_0", ErrUnknownStage},
		{"ps6_0", ErrUnknownStage},
		{"_6_0", ErrUnknownStage},
		{"ps_5_1", ErrUnsupportedModel},
		{"ps_6_8", ErrUnsupportedModel},
		{"vs_7_0", ErrUnsupportedModel},
		{"lib_6_0", ErrUnsupportedModel},
		{"ms_6_4", ErrUnsupportedModel},
		{"as_6_0", ErrUnsupportedModel},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			_, err := Parse(tt.token)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.token)
			}
			if !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("errors.Is(err, ErrInvalidProfile) = false for %v", err)
			}
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not *Error", err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", perr.Kind, tt.kind)
			}
			if perr.Token != tt.token {
				t.Errorf("Token = %q, want %q", perr.Token, tt.token)
			}
		})
	}
}

func TestValidate_RejectsWithZeroStage(t *testing.T) {
	stage, name, err := Validate("zz_1_0")
	if err == nil {
		t.Fatal("expected error")
	}
	if stage != StageUnknown || name != "" {
		t.Errorf("Validate() = (%v, %q), want zero values", stage, name)
	}
}

func TestStage_MinModel(t *testing.T) {
	tests := []struct {
		stage Stage
		want  hlsl.ShaderModel
	}{
		{StagePixel, hlsl.ShaderModel6_0},
		{StageCompute, hlsl.ShaderModel6_0},
		{StageLibrary, hlsl.ShaderModel6_1},
		{StageMesh, hlsl.ShaderModel6_5},
		{StageAmplification, hlsl.ShaderModel6_5},
	}
	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			if got := tt.stage.MinModel(); got != tt.want {
				t.Errorf("MinModel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStage_GPUStage(t *testing.T) {
	tests := []struct {
		stage Stage
		want  gputypes.ShaderStage
	}{
		{StageVertex, gputypes.ShaderStageVertex},
		{StagePixel, gputypes.ShaderStageFragment},
		{StageCompute, gputypes.ShaderStageCompute},
		{StageGeometry, gputypes.ShaderStageNone},
		{StageMesh, gputypes.ShaderStageNone},
		{StageUnknown, gputypes.ShaderStageNone},
	}
	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			if got := tt.stage.GPUStage(); got != tt.want {
				t.Errorf("GPUStage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStage_Strings(t *testing.T) {
	if StageUnknown.String() != "unknown" || StageUnknown.Prefix() != "" {
		t.Errorf("StageUnknown = (%q, %q)", StageUnknown.String(), StageUnknown.Prefix())
	}
	if StageAmplification.Prefix() != "as" {
		t.Errorf("StageAmplification.Prefix() = %q", StageAmplification.Prefix())
	}
	if _, ok := StageUnknown.EntryPoint(); ok {
		t.Error("StageUnknown should not force an entry point")
	}
}

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{ErrEmptyProfile, "EmptyProfile"},
		{ErrUnknownStage, "UnknownStage"},
		{ErrMalformedVersion, "MalformedVersion"},
		{ErrUnsupportedModel, "UnsupportedModel"},
		{ErrorKind(255), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("ErrorKind.String() = %q, want %q", got, tt.want)
			}
		})
	}
}
