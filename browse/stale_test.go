// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/srcbrowse/buildgraph"
	"go.chromium.org/infra/build/srcbrowse/config"
)

func writeAt(t *testing.T, root, fname string, mtime time.Time) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(fname))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(fname), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(full, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestCollectInputs(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	p := NewPath(root, nil, false)
	writeAt(t, root, ".cflowrc", time.Now())
	cfg := &config.Config{ConfigFile: ".srcbrowse.star"}
	profile := &config.Profile{
		Name: "cflow",
		// a path with a separator is declared as is, resolved or not.
		Command:    "./tools/cflow",
		ConfigFile: ".cflowrc",
		Output:     "callgraph.cflow",
	}
	got, err := CollectInputs(ctx, p, cfg, profile, buildgraph.DefaultManifestName, []string{"out/b.d", "out/a.d"}, []string{"src/main.c", "include/main.h"})
	if err != nil {
		t.Fatalf("CollectInputs: %v", err)
	}
	want := []Input{
		{Kind: "config", Path: ".srcbrowse.star"},
		{Kind: "deps", Path: "out/a.d"},
		{Kind: "deps", Path: "out/b.d"},
		{Kind: "manifest", Path: buildgraph.DefaultManifestName},
		{Kind: "source", Path: "include/main.h"},
		{Kind: "source", Path: "src/main.c"},
		{Kind: "tool", Path: "./tools/cflow"},
		{Kind: "toolconfig", Path: ".cflowrc"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CollectInputs diff -want +got:\n%s", diff)
	}
}

func TestCollectInputs_Missing(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	p := NewPath(root, nil, false)
	profile := &config.Profile{
		Name:       "cflow",
		Command:    "srcbrowse-no-such-tool",
		ConfigFile: "no/such.rc",
		Output:     "callgraph.cflow",
	}
	got, err := CollectInputs(ctx, p, nil, profile, "", nil, nil)
	if err != nil {
		t.Fatalf("CollectInputs: %v", err)
	}
	// uninstalled tool and absent tool config contribute nothing.
	if len(got) != 0 {
		t.Errorf("CollectInputs=%v; want none", got)
	}
}

func TestIsStale(t *testing.T) {
	root := t.TempDir()
	p := NewPath(root, nil, false)
	old := time.Now().Add(-2 * time.Hour)
	mid := time.Now().Add(-time.Hour)

	inputs := []Input{
		{Kind: "manifest", Path: ".srcbrowse_targets.json"},
		{Kind: "deps", Path: "no/such.d"}, // missing inputs are skipped
	}
	writeAt(t, root, ".srcbrowse_targets.json", old)

	stale, reason, err := IsStale(p, []string{"tags"}, inputs)
	if err != nil || !stale {
		t.Errorf("IsStale=%v, %q, %v; want stale for a missing output", stale, reason, err)
	}
	if !strings.Contains(reason, "missing tags") {
		t.Errorf("reason=%q; want missing tags", reason)
	}

	writeAt(t, root, "tags", mid)
	stale, reason, err = IsStale(p, []string{"tags"}, inputs)
	if err != nil || stale {
		t.Errorf("IsStale=%v, %q, %v; want fresh", stale, reason, err)
	}

	writeAt(t, root, ".srcbrowse_targets.json", time.Now())
	stale, reason, err = IsStale(p, []string{"tags"}, inputs)
	if err != nil || !stale {
		t.Errorf("IsStale=%v, %q, %v; want stale after a manifest change", stale, reason, err)
	}
	if !strings.Contains(reason, ".srcbrowse_targets.json") {
		t.Errorf("reason=%q; want the manifest named", reason)
	}
}

func TestIsStale_OldestOutput(t *testing.T) {
	root := t.TempDir()
	p := NewPath(root, nil, false)
	old := time.Now().Add(-2 * time.Hour)
	mid := time.Now().Add(-time.Hour)

	// the input is newer than one of the side outputs.
	writeAt(t, root, "GTAGS", time.Now())
	writeAt(t, root, "GRTAGS", old)
	writeAt(t, root, ".srcbrowse_targets.json", mid)
	inputs := []Input{{Kind: "manifest", Path: ".srcbrowse_targets.json"}}

	stale, reason, err := IsStale(p, []string{"GTAGS", "GRTAGS"}, inputs)
	if err != nil || !stale {
		t.Errorf("IsStale=%v, %q, %v; want stale against the oldest output", stale, reason, err)
	}
}
