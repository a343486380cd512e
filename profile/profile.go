// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package profile

import (
	"strings"

	"github.com/gogpu/naga/hlsl"
)

// MaxModel is the newest Shader Model accepted in a profile.
const MaxModel = hlsl.ShaderModel6_7

// Profile is a validated DXC target profile.
type Profile struct {
	// Stage is the pipeline stage.
	Stage Stage

	// Model is the Shader Model version.
	Model hlsl.ShaderModel
}

// String returns the profile token, for example "ps_6_0".
func (p Profile) String() string {
	return p.Stage.Prefix() + "_" + p.Model.ProfileSuffix()
}

// EntryPoint returns the entry-point name forced for the profile's stage.
func (p Profile) EntryPoint() (name string, ok bool) {
	return p.Stage.EntryPoint()
}

// Parse validates a profile token.
// Any failure returns a *Error matching ErrInvalidProfile.
func Parse(token string) (Profile, error) {
	if token == "" {
		return Profile{}, newError(ErrEmptyProfile, token, "no profile given")
	}

	prefix, version, found := strings.Cut(token, "_")
	if !found {
		return Profile{}, newError(ErrMalformedVersion, token, "expected <stage>_<major>_<minor>")
	}

	stage, ok := stageForPrefix(prefix)
	if !ok {
		return Profile{}, newError(ErrUnknownStage, token, "unknown stage prefix "+strings.TrimSpace(prefix))
	}

	if !wellFormed(version) {
		return Profile{}, newError(ErrMalformedVersion, token, "expected <major>_<minor>, got "+version)
	}

	for sm := stage.MinModel(); sm <= MaxModel; sm++ {
		if sm.ProfileSuffix() == version {
			return Profile{Stage: stage, Model: sm}, nil
		}
	}

	return Profile{}, newError(ErrUnsupportedModel, token,
		stage.String()+" shaders accept "+stage.MinModel().String()+" to "+MaxModel.String())
}

// Validate checks a profile token and returns its stage and entry-point
// override. name is empty when the compiler default is kept.
func Validate(token string) (stage Stage, name string, err error) {
	p, err := Parse(token)
	if err != nil {
		return StageUnknown, "", err
	}
	name, _ = p.EntryPoint()
	return p.Stage, name, nil
}

// All returns every valid profile, grouped by stage in token order.
func All() []Profile {
	out := make([]Profile, 0, 64)
	for _, s := range stages {
		for sm := s.MinModel(); sm <= MaxModel; sm++ {
			out = append(out, Profile{Stage: s, Model: sm})
		}
	}
	return out
}

// wellFormed reports whether v is a single digit, an underscore, and a
// single digit.
func wellFormed(v string) bool {
	return len(v) == 3 && isDigit(v[0]) && v[1] == '_' && isDigit(v[2])
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
