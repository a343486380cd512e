// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package profile

import (
	"errors"
	"fmt"
)

// ErrInvalidProfile is matched by every *Error via errors.Is.
var ErrInvalidProfile = errors.New("invalid profile")

// ErrorKind categorizes profile validation failures.
type ErrorKind uint8

const (
	// ErrEmptyProfile indicates no profile was supplied.
	ErrEmptyProfile ErrorKind = iota

	// ErrUnknownStage indicates the token prefix names no known stage.
	ErrUnknownStage

	// ErrMalformedVersion indicates the version part is not "<major>_<minor>".
	ErrMalformedVersion

	// ErrUnsupportedModel indicates a well-formed version outside the range
	// accepted for the stage.
	ErrUnsupportedModel
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrEmptyProfile:
		return "EmptyProfile"
	case ErrUnknownStage:
		return "UnknownStage"
	case ErrMalformedVersion:
		return "MalformedVersion"
	case ErrUnsupportedModel:
		return "UnsupportedModel"
	default:
		return "Unknown"
	}
}

// Error reports why a profile token was rejected.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Token is the rejected profile token.
	Token string

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("profile %s %q: %s", e.Kind, e.Token, e.Message)
}

// Is reports whether target is ErrInvalidProfile.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidProfile
}

func newError(kind ErrorKind, token, message string) *Error {
	return &Error{Kind: kind, Token: token, Message: message}
}
