// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// spvinfo - SPIR-V module summary
// Prints the header and entry points of compiled shaders.
package main

import (
	"fmt"
	"os"

	"github.com/gogpu/hlslasset/bytecode"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: spvinfo <file.spv>...")
		os.Exit(1)
	}

	failed := false
	for _, path := range os.Args[1:] {
		if err := describe(path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func describe(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	s, err := bytecode.Decode(data)
	if err != nil {
		return err
	}

	fmt.Printf("; %s\n", path)
	fmt.Printf("; Version: %s\n", s.Version)
	fmt.Printf("; Generator: 0x%08x\n", s.Generator)
	fmt.Printf("; Bound: %d\n", s.Bound)
	fmt.Printf("; Words: %d\n", len(s.Words))
	for _, ep := range s.EntryPoints {
		fmt.Printf("OpEntryPoint %d %q ; %s\n", ep.Model, ep.Name, ep.Stage)
	}
	return nil
}
