// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"

	"go.chromium.org/infra/build/srcbrowse/config"
)

func TestNamefileContent(t *testing.T) {
	profile := DefaultConfig().Tools["cscope"].Clone()
	profile.Includes = []string{"include", "third party/include"}
	files := []string{
		"src/a b.c",
		"src/a.c",
		`src/q"uote.c`,
		"/abs/include/sys.h",
	}
	got := NamefileContent(profile, files)
	g := goldie.New(t)
	g.Assert(t, t.Name(), got)
}

func TestNamefileContent_Mirror(t *testing.T) {
	profile := DefaultConfig().Tools["cscope"].Clone()
	files := []string{
		"src/z.c",
		"src/a dir/b.c",
		"src/a.c",
	}
	first := NamefileContent(profile, files)
	second := NamefileContent(profile, files)
	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("repeated render differs (-first +second):\n%s", diff)
	}
	// the file block preserves the given order byte for byte.
	lines := strings.Split(strings.TrimSuffix(string(first), "\n"), "\n")
	var decoded []string
	for _, line := range lines {
		if strings.HasPrefix(line, "-") {
			continue
		}
		f, err := UnquotePath(line)
		if err != nil {
			t.Fatalf("UnquotePath(%q): %v", line, err)
		}
		decoded = append(decoded, f)
	}
	if diff := cmp.Diff(files, decoded); diff != "" {
		t.Errorf("file block diff -want +got:\n%s", diff)
	}
}

func TestNamefileContent_Flags(t *testing.T) {
	for _, tc := range []struct {
		name    string
		profile *config.Profile
		want    string
	}{
		{
			name: "joined value",
			profile: &config.Profile{
				Flags:         []string{"-p2", "-b"},
				NamefileFlags: []string{"-p"},
			},
			want: "-p2\nsrc/a.c\n",
		},
		{
			name: "no persisted flags",
			profile: &config.Profile{
				Flags: []string{"--format=2"},
			},
			want: "src/a.c\n",
		},
		{
			name: "includes need the flag allowed",
			profile: &config.Profile{
				IncludeFlag: "-I",
				Includes:    []string{"include"},
			},
			want: "src/a.c\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := NamefileContent(tc.profile, []string{"src/a.c"})
			if diff := cmp.Diff(tc.want, string(got)); diff != "" {
				t.Errorf("NamefileContent diff -want +got:\n%s", diff)
			}
		})
	}
}
