// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxc

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/hlslasset/profile"
)

// fakeRunner records invocations and returns a canned result.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	res   Result
	err   error
}

func (f *fakeRunner) Run(bin string, args []string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{bin}, args...))
	return f.res, f.err
}

func mustProfile(t *testing.T, token string) profile.Profile {
	t.Helper()
	p, err := profile.Parse(token)
	if err != nil {
		t.Fatalf("profile.Parse(%q): %v", token, err)
	}
	return p
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"shaders/basic.hlsl", "shaders/basic.spv"},
		{"assets/shaders/a.b.hlsl", "assets/shaders/a.b.spv"},
		{"noext", "noext.spv"},
		{"dir.v2/noext", "dir.v2/noext.spv"},
		{"/abs/path/x.HLSL", "/abs/path/x.spv"},
		{"already.spv", "already.spv"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := OutputPath(tt.src)
			if got != tt.want {
				t.Errorf("OutputPath(%q) = %q, want %q", tt.src, got, tt.want)
			}
			if again := OutputPath(got); again != got {
				t.Errorf("OutputPath not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestArgs_PixelShader(t *testing.T) {
	c := New()
	got := c.Args("shaders/basic.hlsl", mustProfile(t, "ps_6_0"))
	want := []string{
		"shaders/basic.hlsl",
		"-T", "ps_6_0",
		"-spirv",
		"-fvk-use-gl-layout",
		"-Fo", "shaders/basic.spv",
		"-fspv-entrypoint-name=fragment",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Args() =\n  %q\nwant\n  %q", got, want)
	}
}

func TestArgs_EntryPointOverride(t *testing.T) {
	tests := []struct {
		token string
		want  string // empty: no override flag
	}{
		{"ps_6_5", "-fspv-entrypoint-name=fragment"},
		{"vs_6_0", "-fspv-entrypoint-name=vertex"},
		{"cs_6_0", ""},
		{"gs_6_1", ""},
		{"lib_6_3", ""},
		{"ms_6_5", ""},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			args := New().Args("a.hlsl", mustProfile(t, tt.token))
			var flags []string
			for _, a := range args {
				if strings.HasPrefix(a, "-fspv-entrypoint-name=") {
					flags = append(flags, a)
				}
			}
			switch {
			case tt.want == "" && len(flags) != 0:
				t.Errorf("unexpected entry point flags %q", flags)
			case tt.want != "" && (len(flags) != 1 || flags[0] != tt.want):
				t.Errorf("entry point flags = %q, want [%q]", flags, tt.want)
			}
		})
	}
}

func TestCommand_CustomBinAndExtraArgs(t *testing.T) {
	c := New(WithBin("/opt/dxc/bin/dxc"), WithExtraArgs("-O3", "-Zi"))
	got := c.Command("a.hlsl", mustProfile(t, "cs_6_0"))
	if got[0] != "/opt/dxc/bin/dxc" {
		t.Errorf("Command()[0] = %q", got[0])
	}
	if !slices.Equal(got[len(got)-2:], []string{"-O3", "-Zi"}) {
		t.Errorf("extra args not appended: %q", got)
	}
	if c.Bin() != "/opt/dxc/bin/dxc" {
		t.Errorf("Bin() = %q", c.Bin())
	}
	if New(WithBin("")).Bin() != DefaultBin {
		t.Error("WithBin(\"\") should keep the default")
	}
}

func TestCompile_Success(t *testing.T) {
	r := &fakeRunner{}
	c := New(WithRunner(r))

	out, err := c.Compile(context.Background(), "shaders/basic.hlsl", mustProfile(t, "ps_6_0"))
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if out.Diagnostic() {
		t.Error("clean run should not be a diagnostic")
	}
	if out.Output != "shaders/basic.spv" {
		t.Errorf("Output = %q", out.Output)
	}
	if len(r.calls) != 1 || r.calls[0][0] != DefaultBin {
		t.Fatalf("calls = %q", r.calls)
	}
	if !slices.Equal(r.calls[0][1:], out.Args) {
		t.Errorf("runner args %q != outcome args %q", r.calls[0][1:], out.Args)
	}
}

func TestCompile_SpawnFailure(t *testing.T) {
	cause := errors.New("exec: \"dxc\": executable file not found in $PATH")
	c := New(WithRunner(&fakeRunner{err: cause}))

	out, err := c.Compile(context.Background(), "a.hlsl", mustProfile(t, "vs_6_0"))
	if err == nil {
		t.Fatal("expected spawn error")
	}
	if out != nil {
		t.Errorf("outcome = %+v, want nil", out)
	}
	if !errors.Is(err, ErrSpawn) {
		t.Errorf("errors.Is(err, ErrSpawn) = false: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("spawn error should unwrap to the exec error: %v", err)
	}
	var se *SpawnError
	if !errors.As(err, &se) || se.Source != "a.hlsl" || se.Bin != DefaultBin {
		t.Errorf("SpawnError = %+v", se)
	}
}

func TestCompile_DiagnosticIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := &fakeRunner{res: Result{ExitCode: 1, Stderr: []byte("basic.hlsl:3:1: error: unknown type name 'flaot4'\n")}}
	c := New(WithRunner(r), WithLogger(logger))

	out, err := c.Compile(context.Background(), "basic.hlsl", mustProfile(t, "ps_6_0"))
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if !out.Diagnostic() || out.ExitCode != 1 {
		t.Errorf("outcome = %+v, want diagnostic with exit 1", out)
	}
	logged := buf.String()
	if !strings.Contains(logged, "level=WARN") || !strings.Contains(logged, "flaot4") {
		t.Errorf("warning log missing diagnostic text: %q", logged)
	}
}

func TestCompile_FailOnDiagnostic(t *testing.T) {
	r := &fakeRunner{res: Result{ExitCode: 2, Stderr: []byte("fatal")}}
	c := New(WithRunner(r), WithFailOnDiagnostic(true))

	out, err := c.Compile(context.Background(), "a.hlsl", mustProfile(t, "cs_6_0"))
	if !errors.Is(err, ErrDiagnostic) {
		t.Fatalf("err = %v, want ErrDiagnostic", err)
	}
	if errors.Is(err, ErrSpawn) {
		t.Error("diagnostic error must not match ErrSpawn")
	}
	if out == nil || out.ExitCode != 2 {
		t.Errorf("outcome = %+v, want exit 2", out)
	}
	if !strings.Contains(err.Error(), "fatal") {
		t.Errorf("error text %q should include stderr", err.Error())
	}
}

func TestOutcome_Diagnostic(t *testing.T) {
	tests := []struct {
		name string
		o    Outcome
		want bool
	}{
		{"clean", Outcome{}, false},
		{"newline only", Outcome{Stderr: "\n"}, false},
		{"warning text", Outcome{Stderr: "warning: implicit truncation"}, true},
		{"exit code", Outcome{ExitCode: 1}, true},
		{"killed", Outcome{ExitCode: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.o.Diagnostic(); got != tt.want {
				t.Errorf("Diagnostic() = %v, want %v", got, tt.want)
			}
		})
	}
}

// gateRunner blocks every Run until release is closed.
type gateRunner struct {
	started chan struct{}
	release chan struct{}
	running atomic.Int32
	peak    atomic.Int32
	calls   atomic.Int32
}

func newGateRunner() *gateRunner {
	return &gateRunner{started: make(chan struct{}, 64), release: make(chan struct{})}
}

func (g *gateRunner) Run(string, []string) (Result, error) {
	g.calls.Add(1)
	n := g.running.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	g.started <- struct{}{}
	<-g.release
	g.running.Add(-1)
	return Result{}, nil
}

func TestCompile_MaxParallel(t *testing.T) {
	g := newGateRunner()
	c := New(WithRunner(g), WithMaxParallel(2))
	p := mustProfile(t, "cs_6_0")

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := c.Compile(context.Background(), string(rune('a'+i))+".hlsl", p); err != nil {
				t.Errorf("Compile: %v", err)
			}
		}(i)
	}

	<-g.started
	<-g.started
	select {
	case <-g.started:
		t.Fatal("a third compile started while the pool was full")
	case <-time.After(50 * time.Millisecond):
	}
	close(g.release)
	wg.Wait()

	if got := g.peak.Load(); got != 2 {
		t.Errorf("peak concurrency = %d, want 2", got)
	}
	if got := g.calls.Load(); got != 6 {
		t.Errorf("calls = %d, want 6", got)
	}
}

func TestCompile_PoolWaitHonorsContext(t *testing.T) {
	g := newGateRunner()
	c := New(WithRunner(g), WithMaxParallel(1))
	p := mustProfile(t, "cs_6_0")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Compile(context.Background(), "busy.hlsl", p)
	}()
	<-g.started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Compile(ctx, "waiting.hlsl", p)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrSpawn) {
		t.Error("pool wait failure is not a spawn error")
	}

	close(g.release)
	<-done
}

func TestCompile_Coalesce(t *testing.T) {
	tests := []struct {
		name      string
		coalesce  bool
		wantCalls int32
	}{
		{"off", false, 2},
		{"on", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGateRunner()
			c := New(WithRunner(g), WithCoalesce(tt.coalesce), WithMaxParallel(4))
			p := mustProfile(t, "ps_6_0")

			var wg sync.WaitGroup
			outs := make([]*Outcome, 2)
			for i := range outs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					out, err := c.Compile(context.Background(), "same.hlsl", p)
					if err != nil {
						t.Errorf("Compile: %v", err)
					}
					outs[i] = out
				}(i)
				if i == 0 {
					<-g.started
				}
			}

			// Give the second caller time to join or start its own run.
			time.Sleep(50 * time.Millisecond)
			close(g.release)
			wg.Wait()

			if got := g.calls.Load(); got != tt.wantCalls {
				t.Errorf("runner calls = %d, want %d", got, tt.wantCalls)
			}
			if outs[0] == nil || outs[1] == nil {
				t.Fatal("both callers should get an outcome")
			}
			if tt.coalesce && outs[0] != outs[1] {
				t.Error("coalesced callers should share one outcome")
			}
		})
	}
}
