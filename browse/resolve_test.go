// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/srcbrowse/buildgraph"
	"go.chromium.org/infra/build/srcbrowse/config"
)

// fakeDeps maps translation units to recorded headers.
type fakeDeps map[string][]string

func (d fakeDeps) Headers(tu string) ([]string, bool) {
	h, ok := d[tu]
	return h, ok
}

func resolveGraph(t *testing.T) *buildgraph.Graph {
	t.Helper()
	g, err := buildgraph.New(&buildgraph.Manifest{
		BuildDir: "out",
		VariantDirs: []buildgraph.VariantDir{
			{Dir: "out/pre", Source: "src"},
		},
		Toolchain: []string{"tools/wrap-g++", "/usr/bin/ar"},
		Targets: []buildgraph.Target{
			{
				Name:    "prog",
				Sources: []string{"src/main.cpp", "README"},
				Deps:    []string{"libutil", "codegen"},
				Objects: []buildgraph.CompileCommand{
					{
						Output:    "out/main.o",
						Source:    "src/main.cpp",
						Directory: ".",
						Arguments: []string{"g++", "-c", "src/main.cpp", "-o", "out/main.o"},
					},
				},
			},
			{
				Name:    "libutil",
				Sources: []string{"src/util.cpp", "src/util.h", "tools/wrap-g++"},
				Objects: []buildgraph.CompileCommand{
					{
						Output:    "out/util.o",
						Source:    "src/util.cpp",
						Directory: ".",
						Arguments: []string{"g++", "-c", "src/util.cpp", "-o", "out/util.o"},
					},
				},
			},
			{
				Name:    "codegen",
				Sources: []string{"out/pre/gen.cpp"},
			},
			{
				Name:    "other",
				Sources: []string{"other/only.cpp"},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func resolveProfile() *config.Profile {
	return &config.Profile{
		Name:     "cscope",
		Suffixes: []string{"", ".c", ".cpp", ".h"},
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	g := resolveGraph(t)
	p := NewPath(t.TempDir(), PathVariants(g.VariantDirs()), false)
	deps := fakeDeps{
		"src/main.cpp": {"src/util.h", "include/config.h", "/usr/include/stdio.h"},
	}
	rs, err := Resolve(ctx, p, g, deps, resolveProfile(), []string{"prog"}, g.Toolchain())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	wantTargets := []string{"codegen", "libutil", "prog"}
	if diff := cmp.Diff(wantTargets, rs.Targets); diff != "" {
		t.Errorf("Targets diff -want +got:\n%s", diff)
	}
	wantFiles := []string{
		"README",
		"include/config.h",
		"src/gen.cpp",
		"src/main.cpp",
		"src/util.cpp",
		"src/util.h",
		"/usr/include/stdio.h",
	}
	if diff := cmp.Diff(wantFiles, rs.Files); diff != "" {
		t.Errorf("Files diff -want +got:\n%s", diff)
	}
	// targets contribute commands in sorted target order.
	if len(rs.Commands) != 2 || rs.Commands[0].Output != "out/util.o" || rs.Commands[1].Output != "out/main.o" {
		t.Errorf("Commands=%v; want util.o then main.o", rs.Commands)
	}
}

func TestResolve_All(t *testing.T) {
	ctx := context.Background()
	g := resolveGraph(t)
	p := NewPath(t.TempDir(), PathVariants(g.VariantDirs()), false)
	rs, err := Resolve(ctx, p, g, fakeDeps{}, resolveProfile(), nil, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	wantTargets := []string{"codegen", "libutil", "other", "prog"}
	if diff := cmp.Diff(wantTargets, rs.Targets); diff != "" {
		t.Errorf("Targets diff -want +got:\n%s", diff)
	}
	// no toolchain exclusion: the wrapper is extensionless and kept.
	found := false
	for _, f := range rs.Files {
		if f == "tools/wrap-g++" {
			found = true
		}
	}
	if !found {
		t.Errorf("Files=%v; want tools/wrap-g++ included without toolchain exclusion", rs.Files)
	}
}

func TestResolve_NilDeps(t *testing.T) {
	ctx := context.Background()
	g := resolveGraph(t)
	p := NewPath(t.TempDir(), PathVariants(g.VariantDirs()), false)
	rs, err := Resolve(ctx, p, g, nil, resolveProfile(), []string{"libutil"}, g.Toolchain())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{"src/util.cpp", "src/util.h"}
	if diff := cmp.Diff(want, rs.Files); diff != "" {
		t.Errorf("Files diff -want +got:\n%s", diff)
	}
}

func TestResolve_PreferPreprocessed(t *testing.T) {
	ctx := context.Background()
	g := resolveGraph(t)
	p := NewPath(t.TempDir(), PathVariants(g.VariantDirs()), false)
	profile := resolveProfile()
	profile.PreferPreprocessed = true
	rs, err := Resolve(ctx, p, g, nil, profile, []string{"prog"}, g.Toolchain())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{
		"README",
		"out/main.ii",
		"out/util.ii",
		"src/gen.cpp",
		"src/util.h",
	}
	if diff := cmp.Diff(want, rs.Files); diff != "" {
		t.Errorf("Files diff -want +got:\n%s", diff)
	}
}

func TestResolve_UnknownTarget(t *testing.T) {
	ctx := context.Background()
	g := resolveGraph(t)
	p := NewPath(t.TempDir(), nil, false)
	_, err := Resolve(ctx, p, g, nil, resolveProfile(), []string{"nosuch"}, nil)
	if !errors.Is(err, buildgraph.ErrNoTarget) {
		t.Errorf("Resolve=%v; want ErrNoTarget", err)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	ctx := context.Background()
	g := resolveGraph(t)
	p := NewPath(t.TempDir(), PathVariants(g.VariantDirs()), false)
	deps := fakeDeps{
		"src/main.cpp": {"src/util.h", "include/config.h"},
	}
	// target order and repetition must not change the result.
	first, err := Resolve(ctx, p, g, deps, resolveProfile(), []string{"prog", "libutil"}, g.Toolchain())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, names := range [][]string{
		{"libutil", "prog"},
		{"prog", "libutil", "prog"},
		{"prog", "libutil"},
	} {
		rs, err := Resolve(ctx, p, g, deps, resolveProfile(), names, g.Toolchain())
		if err != nil {
			t.Fatalf("Resolve(%q): %v", names, err)
		}
		if diff := cmp.Diff(first.Files, rs.Files); diff != "" {
			t.Errorf("Files(%q) diff -first +got:\n%s", names, diff)
		}
		if diff := cmp.Diff(first.Targets, rs.Targets); diff != "" {
			t.Errorf("Targets(%q) diff -first +got:\n%s", names, diff)
		}
	}
}
