// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package bytecode loads compiled SPIR-V modules.
//
// The loader reads a ".spv" file, checks the header and collects the module's
// entry points so renderer code can pick the right one per stage. It does not
// validate the module beyond its instruction framing.
package bytecode

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/hlslasset/assets"
)

// Extension is the compiled shader file extension.
const Extension = "spv"

// headerWords is the size of the SPIR-V module header.
const headerWords = 5

var (
	// ErrTruncated is returned for data too short to be a module or whose
	// length is not a whole number of words.
	ErrTruncated = errors.New("bytecode: truncated SPIR-V module")
	// ErrBadMagic is returned when the first word is not the SPIR-V magic number.
	ErrBadMagic = errors.New("bytecode: not a SPIR-V module")
	// ErrMalformed is returned for broken instruction framing.
	ErrMalformed = errors.New("bytecode: malformed SPIR-V instruction stream")
)

// Version is the SPIR-V version declared in the header.
type Version struct {
	Major uint8
	Minor uint8
}

// String returns "major.minor".
func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// EntryPoint is one OpEntryPoint of a module.
type EntryPoint struct {
	Name  string
	Model spirv.ExecutionModel
	Stage gputypes.ShaderStage
}

// Shader is a decoded SPIR-V module.
type Shader struct {
	// Path is the asset path the module was loaded from.
	Path string

	// Words is the module in host word order, ready for a driver.
	Words []uint32

	Version   Version
	Generator uint32
	Bound     uint32

	EntryPoints []EntryPoint
}

// EntryPoint returns the entry point called name.
func (s *Shader) EntryPoint(name string) (EntryPoint, bool) {
	for _, ep := range s.EntryPoints {
		if ep.Name == name {
			return ep, true
		}
	}
	return EntryPoint{}, false
}

// Stages returns the union of all entry point stages.
func (s *Shader) Stages() gputypes.ShaderStages {
	var out gputypes.ShaderStages
	for _, ep := range s.EntryPoints {
		out |= ep.Stage
	}
	return out
}

// Decode parses a SPIR-V binary in either byte order.
func Decode(data []byte) (*Shader, error) {
	if len(data) < headerWords*4 || len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	switch {
	case words[0] == spirv.MagicNumber:
	case bits.ReverseBytes32(words[0]) == spirv.MagicNumber:
		for i := range words {
			words[i] = bits.ReverseBytes32(words[i])
		}
	default:
		return nil, fmt.Errorf("%w: magic %#08x", ErrBadMagic, words[0])
	}

	s := &Shader{
		Words: words,
		Version: Version{
			Major: uint8(words[1] >> 16),
			Minor: uint8(words[1] >> 8),
		},
		Generator: words[2],
		Bound:     words[3],
	}

	for i := headerWords; i < len(words); {
		count := int(words[i] >> 16)
		op := spirv.OpCode(words[i] & 0xffff)
		if count == 0 || i+count > len(words) {
			return nil, fmt.Errorf("%w: word %d", ErrMalformed, i)
		}
		if op == spirv.OpEntryPoint {
			ep, err := decodeEntryPoint(words[i+1 : i+count])
			if err != nil {
				return nil, fmt.Errorf("%w: word %d: %v", ErrMalformed, i, err)
			}
			s.EntryPoints = append(s.EntryPoints, ep)
		}
		i += count
	}
	return s, nil
}

// decodeEntryPoint reads ExecutionModel, function id and the name literal.
func decodeEntryPoint(operands []uint32) (EntryPoint, error) {
	if len(operands) < 3 {
		return EntryPoint{}, errors.New("OpEntryPoint too short")
	}
	name, ok := decodeString(operands[2:])
	if !ok {
		return EntryPoint{}, errors.New("unterminated entry point name")
	}
	model := spirv.ExecutionModel(operands[0])
	return EntryPoint{Name: name, Model: model, Stage: stageFor(model)}, nil
}

// decodeString reads a nul-terminated literal packed little-endian into words.
func decodeString(words []uint32) (string, bool) {
	buf := make([]byte, 0, len(words)*4)
	for _, w := range words {
		for b := 0; b < 4; b++ {
			c := byte(w >> (8 * b))
			if c == 0 {
				return string(buf), true
			}
			buf = append(buf, c)
		}
	}
	return "", false
}

func stageFor(m spirv.ExecutionModel) gputypes.ShaderStage {
	switch m {
	case spirv.ExecutionModelVertex:
		return gputypes.ShaderStageVertex
	case spirv.ExecutionModelFragment:
		return gputypes.ShaderStageFragment
	case spirv.ExecutionModelGLCompute:
		return gputypes.ShaderStageCompute
	default:
		return gputypes.ShaderStageNone
	}
}

// Loader is the assets.Loader for ".spv" files.
type Loader struct{}

// Extensions implements assets.Loader.
func (Loader) Extensions() []string { return []string{Extension} }

// Load implements assets.Loader.
func (Loader) Load(_ context.Context, lc *assets.LoadContext) (any, error) {
	data, err := lc.Read()
	if err != nil {
		return nil, fmt.Errorf("bytecode: %w", err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", lc.Path(), err)
	}
	s.Path = lc.Path()
	return s, nil
}
