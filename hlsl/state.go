// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

// State is a step of a single load request.
//
//	Requested -> Compiling -> Produced
//	Requested -> Compiling -> SpawnFailed
//	Requested -> Compiling -> CompileFailed   (fail-fast diagnostics only)
//	Requested -> Compiling -> Cancelled       (server closed while waiting)
//	Requested -> Rejected                     (invalid profile)
type State uint8

const (
	// StateRequested is entered when the asset server starts the load.
	StateRequested State = iota
	// StateCompiling is entered once the profile is valid and the compiler is asked to run.
	StateCompiling
	// StateProduced means the compiler ran and a SourceShader was produced.
	StateProduced
	// StateSpawnFailed means the compiler process could not be started.
	StateSpawnFailed
	// StateCompileFailed means the compiler returned an error after starting,
	// in practice diagnostics with fail-fast on.
	StateCompileFailed
	// StateRejected means the settings or profile were invalid; nothing was spawned.
	StateRejected
	// StateCancelled means the load context ended before the compiler started.
	StateCancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StateCompiling:
		return "compiling"
	case StateProduced:
		return "produced"
	case StateSpawnFailed:
		return "spawn-failed"
	case StateCompileFailed:
		return "compile-failed"
	case StateRejected:
		return "rejected"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s >= StateProduced && s <= StateCancelled
}

// Observer is called on every state transition of every request.
// It runs on the loading goroutine and must not block.
type Observer func(path string, s State)
