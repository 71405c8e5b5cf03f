// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/srcbrowse/config"
)

func scanProfile(roots ...string) *config.Profile {
	return &config.Profile{
		Name:      "gtags",
		Transport: config.DirScan,
		ScanRoots: roots,
		Suffixes:  []string{".cpp", ".h"},
	}
}

func TestValidateScan(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	p := NewPath(root, nil, false)
	now := time.Now()
	writeAt(t, root, ".gitignore", now)
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("gen/\n"), 0644); err != nil {
		t.Fatal(err)
	}
	writeAt(t, root, "src/a.cpp", now)
	writeAt(t, root, "gen/x.cpp", now)

	got, err := ValidateScan(ctx, p, scanProfile("."), []string{"src/a.cpp", "/usr/include/stdio.h"})
	if err != nil {
		t.Fatalf("ValidateScan: %v", err)
	}
	want := []string{
		"/usr/include/stdio.h: outside the project, not covered by the gtags scan",
		"gen/x.cpp: gitignored, but the gtags scan will index it",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ValidateScan diff -want +got:\n%s", diff)
	}
}

func TestValidateScan_Roots(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	p := NewPath(root, nil, false)
	got, err := ValidateScan(ctx, p, scanProfile("nosuch"), []string{"lib/c.cpp"})
	if err != nil {
		t.Fatalf("ValidateScan: %v", err)
	}
	want := []string{
		"lib/c.cpp: outside the scan roots of gtags",
		"nosuch: scan root of gtags does not exist",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ValidateScan diff -want +got:\n%s", diff)
	}
}

func TestValidateScan_Truncated(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	p := NewPath(root, nil, false)
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("gen/\n"), 0644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < maxScanWarnings+5; i++ {
		writeAt(t, root, fmt.Sprintf("gen/f%02d.cpp", i), time.Now())
	}
	got, err := ValidateScan(ctx, p, scanProfile("."), nil)
	if err != nil {
		t.Fatalf("ValidateScan: %v", err)
	}
	if len(got) != maxScanWarnings+1 {
		t.Fatalf("ValidateScan returned %d findings; want %d", len(got), maxScanWarnings+1)
	}
	if last := got[len(got)-1]; !strings.Contains(last, "5 more scan findings") {
		t.Errorf("last finding=%q; want the truncation summary", last)
	}
}
