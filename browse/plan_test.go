// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/srcbrowse/buildgraph"
	"go.chromium.org/infra/build/srcbrowse/config"
)

func TestBuildPlan_Cscope(t *testing.T) {
	p := NewPath(t.TempDir(), nil, false)
	profile := DefaultConfig().Tools["cscope"]
	profile.Includes = []string{"include"}
	rs := &ResolvedSet{
		Files: []string{"dir with space/b.c", "include/a.h", "src/a.cpp"},
	}
	plan, err := BuildPlan(p, profile, rs, 1<<20)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Cmds) != 1 {
		t.Fatalf("got %d cmds; want 1", len(plan.Cmds))
	}
	cmd := plan.Cmds[0]
	wantArgs := []string{"cscope", "-b", "-q", "-k", "-I", "include", "-f", "cscope.out", "-i", "-"}
	if diff := cmp.Diff(wantArgs, cmd.Args); diff != "" {
		t.Errorf("Args diff -want +got:\n%s", diff)
	}
	if cmd.Desc != "CSCOPE cscope.out" {
		t.Errorf("Desc=%q; want %q", cmd.Desc, "CSCOPE cscope.out")
	}
	if cmd.ExecRoot != p.Root {
		t.Errorf("ExecRoot=%q; want %q", cmd.ExecRoot, p.Root)
	}
	wantStdin := "\"dir with space/b.c\"\ninclude/a.h\nsrc/a.cpp\n"
	if got := string(cmd.Stdin); got != wantStdin {
		t.Errorf("Stdin=%q; want %q", got, wantStdin)
	}
	wantNamefile := "-q\n-k\n-I include\n\"dir with space/b.c\"\ninclude/a.h\nsrc/a.cpp\n"
	if got := string(plan.Artifacts["cscope.files"]); got != wantNamefile {
		t.Errorf("cscope.files=%q; want %q", got, wantNamefile)
	}
	wantOutputs := []string{"cscope.files", "cscope.out", "cscope.out.in", "cscope.out.po"}
	if diff := cmp.Diff(wantOutputs, plan.Outputs); diff != "" {
		t.Errorf("Outputs diff -want +got:\n%s", diff)
	}
	if plan.GuardFile != "" {
		t.Errorf("GuardFile=%q; want none", plan.GuardFile)
	}
}

func TestBuildPlan_Ctags(t *testing.T) {
	p := NewPath(t.TempDir(), nil, false)
	profile := DefaultConfig().Tools["ctags"]
	rs := &ResolvedSet{Files: []string{"src/a.cpp"}}
	plan, err := BuildPlan(p, profile, rs, 1<<20)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Cmds) != 1 {
		t.Fatalf("got %d cmds; want 1", len(plan.Cmds))
	}
	wantArgs := []string{"ctags", "-f", "tags", "-L", "-"}
	if diff := cmp.Diff(wantArgs, plan.Cmds[0].Args); diff != "" {
		t.Errorf("Args diff -want +got:\n%s", diff)
	}
	if got := string(plan.Cmds[0].Stdin); got != "src/a.cpp\n" {
		t.Errorf("Stdin=%q; want %q", got, "src/a.cpp\n")
	}
	if diff := cmp.Diff([]string{"tags"}, plan.Outputs); diff != "" {
		t.Errorf("Outputs diff -want +got:\n%s", diff)
	}
	if len(plan.Artifacts) != 0 {
		t.Errorf("Artifacts=%v; want none", plan.Artifacts)
	}
}

func TestBuildPlan_Gtags(t *testing.T) {
	p := NewPath(t.TempDir(), nil, false)
	profile := DefaultConfig().Tools["gtags"]
	rs := &ResolvedSet{Files: []string{"src/a.cpp"}}
	plan, err := BuildPlan(p, profile, rs, 1<<20)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Cmds) != 1 {
		t.Fatalf("got %d cmds; want 1", len(plan.Cmds))
	}
	cmd := plan.Cmds[0]
	// the database directory is a trailing positional argument.
	if diff := cmp.Diff([]string{"gtags", "."}, cmd.Args); diff != "" {
		t.Errorf("Args diff -want +got:\n%s", diff)
	}
	if cmd.Stdin != nil {
		t.Errorf("Stdin=%q; want none", cmd.Stdin)
	}
	if plan.GuardFile != "gtags.files" {
		t.Errorf("GuardFile=%q; want gtags.files", plan.GuardFile)
	}
	wantOutputs := []string{"GPATH", "GRTAGS", "GTAGS"}
	if diff := cmp.Diff(wantOutputs, plan.Outputs); diff != "" {
		t.Errorf("Outputs diff -want +got:\n%s", diff)
	}
}

func TestBuildPlan_GtagsConfig(t *testing.T) {
	p := NewPath(t.TempDir(), nil, false)
	profile := DefaultConfig().Tools["gtags"]
	profile.ConfigFile = "gtags.conf"
	rs := &ResolvedSet{Files: []string{"src/a.cpp"}}
	plan, err := BuildPlan(p, profile, rs, 1<<20)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	wantArgs := []string{"gtags", "--gtagsconf", "gtags.conf", "."}
	if diff := cmp.Diff(wantArgs, plan.Cmds[0].Args); diff != "" {
		t.Errorf("Args diff -want +got:\n%s", diff)
	}
}

func TestBuildPlan_Formats(t *testing.T) {
	p := NewPath(t.TempDir(), nil, false)
	profile := &config.Profile{
		Name:       "cflow",
		Kind:       config.CallGrapher,
		Command:    "cflow",
		Flags:      []string{"--all"},
		Transport:  config.ArgvList,
		SymbolFlag: "--symbol",
		Symbols:    []string{"__inline:=inline"},
		OutputFlag: "--output",
		Output:     "callgraph.cflow",
		Formats: map[string][]string{
			"":         nil,
			".reverse": {"--reverse"},
			".xref":    {"--xref"},
		},
		Suffixes: []string{".c"},
	}
	rs := &ResolvedSet{Files: []string{"src/a.c", "src/b.c"}}
	plan, err := BuildPlan(p, profile, rs, 1<<20)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	var args [][]string
	for _, cmd := range plan.Cmds {
		args = append(args, cmd.Args)
	}
	want := [][]string{
		{"cflow", "--all", "--symbol", "__inline:=inline", "--output", "callgraph.cflow", "src/a.c", "src/b.c"},
		{"cflow", "--all", "--symbol", "__inline:=inline", "--reverse", "--output", "callgraph.reverse.cflow", "src/a.c", "src/b.c"},
		{"cflow", "--all", "--symbol", "__inline:=inline", "--xref", "--output", "callgraph.xref.cflow", "src/a.c", "src/b.c"},
	}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Errorf("Args diff -want +got:\n%s", diff)
	}
	wantOutputs := []string{"callgraph.cflow", "callgraph.reverse.cflow", "callgraph.xref.cflow"}
	if diff := cmp.Diff(wantOutputs, plan.Outputs); diff != "" {
		t.Errorf("Outputs diff -want +got:\n%s", diff)
	}
	if got, want := plan.Cmds[1].Desc, "CFLOW callgraph.reverse.cflow"; got != want {
		t.Errorf("Desc=%q; want %q", got, want)
	}
}

func TestProfileOutputs(t *testing.T) {
	cfg := DefaultConfig()
	for _, tc := range []struct {
		tool string
		want []string
	}{
		{tool: "ctags", want: []string{"tags"}},
		{tool: "cscope", want: []string{"cscope.files", "cscope.out", "cscope.out.in", "cscope.out.po"}},
		{tool: "gtags", want: []string{"GPATH", "GRTAGS", "GTAGS"}},
		{tool: "cflow", want: []string{"callgraph.cflow", "callgraph.reverse.cflow", "callgraph.xref.cflow"}},
		{tool: "compdb", want: []string{"compile_commands.json"}},
	} {
		if diff := cmp.Diff(tc.want, ProfileOutputs(cfg.Tools[tc.tool])); diff != "" {
			t.Errorf("ProfileOutputs(%s) diff -want +got:\n%s", tc.tool, diff)
		}
	}
}

// ProfileOutputs and a planned run must agree on the artifact list.
func TestProfileOutputs_MatchesPlan(t *testing.T) {
	p := NewPath(t.TempDir(), nil, false)
	rs := &ResolvedSet{Files: []string{"src/a.c"}}
	for tool, profile := range DefaultConfig().Tools {
		plan, err := BuildPlan(p, profile, rs, 1<<20)
		if err != nil {
			t.Fatalf("BuildPlan(%s): %v", tool, err)
		}
		if diff := cmp.Diff(ProfileOutputs(profile), plan.Outputs); diff != "" {
			t.Errorf("%s outputs diff -static +planned:\n%s", tool, diff)
		}
	}
}

func TestBuildPlan_ArgumentLimit(t *testing.T) {
	p := NewPath(t.TempDir(), nil, false)
	rs := &ResolvedSet{Files: []string{"src/a.c"}}

	_, err := BuildPlan(p, DefaultConfig().Tools["cflow"], rs, 1)
	var lerr *ArgumentLimitError
	if !errors.As(err, &lerr) {
		t.Fatalf("BuildPlan=%v; want *ArgumentLimitError", err)
	}
	if lerr.Tool != "cflow" || lerr.Limit != 1 {
		t.Errorf("ArgumentLimitError=%+v; want tool cflow, limit 1", lerr)
	}

	// stdin-list transports have no argv budget to blow.
	if _, err := BuildPlan(p, DefaultConfig().Tools["cscope"], rs, 1); err != nil {
		t.Errorf("BuildPlan(cscope)=%v; want nil", err)
	}
}

func TestBuildPlan_Compdb(t *testing.T) {
	p := NewPath(t.TempDir(), nil, false)
	profile := DefaultConfig().Tools["compdb"]
	rs := &ResolvedSet{
		Commands: []buildgraph.CompileCommand{
			{
				Output:    "out/a.o",
				Source:    "src/a.cpp",
				Directory: ".",
				Arguments: []string{"g++", "-c", "src/a.cpp", "-o", "out/a.o"},
			},
		},
	}
	plan, err := BuildPlan(p, profile, rs, 1<<20)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Cmds) != 0 {
		t.Errorf("got %d cmds; want none for a compdb writer", len(plan.Cmds))
	}
	if diff := cmp.Diff([]string{"compile_commands.json"}, plan.Outputs); diff != "" {
		t.Errorf("Outputs diff -want +got:\n%s", diff)
	}
	if len(plan.Artifacts["compile_commands.json"]) == 0 {
		t.Error("compile_commands.json artifact is empty")
	}
}
