// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package makeutil

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestParseDeps(t *testing.T) {
	for _, tc := range []struct {
		name     string
		depsfile []byte
		want     []string
	}{
		{
			name:     "simple",
			depsfile: []byte("foo.o:\tbar baz qux"),
			want: []string{
				"bar",
				"baz",
				"qux",
			},
		},
		{
			name:     "spaceinname",
			depsfile: []byte(`foo\ bar.o: baz\ qux`),
			want: []string{
				"baz qux",
			},
		},
		{
			name:     "newlinewhitespaces",
			depsfile: []byte("foo.o :\tbar\\\n\tbaz\\\r\n  qux"),
			want: []string{
				"bar",
				"baz",
				"qux",
			},
		},
		{
			name:     "backslashes",
			depsfile: []byte("foo\\bar.o: baz\\qux\\\n  quux\\corge"),
			want: []string{
				`baz\qux`,
				`quux\corge`,
			},
		},
		{
			name: "multi",
			depsfile: []byte(`obj/lib/libident.rlib: ../../lib/src/lib.rs ../../lib/src/tables.rs

../../lib/src/lib.rs:
../../lib/src/tables.rs:
`),
			want: []string{
				"../../lib/src/lib.rs",
				"../../lib/src/tables.rs",
			},
		},
		{
			name: "duplicates",
			depsfile: []byte(`a.o: a.c common.h
b.o: b.c common.h
`),
			want: []string{
				"a.c",
				"common.h",
				"b.c",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseDeps(tc.depsfile)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseDeps(%q) -want +got:\n%s", tc.depsfile, diff)
			}
		})
	}
}

func TestParseRecords(t *testing.T) {
	for _, tc := range []struct {
		name     string
		depsfile []byte
		want     []Record
	}{
		{
			name:     "single",
			depsfile: []byte("a.o: a.c a.h\n"),
			want: []Record{
				{Targets: []string{"a.o"}, Inputs: []string{"a.c", "a.h"}},
			},
		},
		{
			name:     "continuation",
			depsfile: []byte("a.o: a.c \\\n a.h\n"),
			want: []Record{
				{Targets: []string{"a.o"}, Inputs: []string{"a.c", "a.h"}},
			},
		},
		{
			name:     "multitarget",
			depsfile: []byte("a.o a.d: a.c a.h\n"),
			want: []Record{
				{Targets: []string{"a.o", "a.d"}, Inputs: []string{"a.c", "a.h"}},
			},
		},
		{
			name: "phony",
			depsfile: []byte(`a.o: a.c a.h
a.h:
`),
			want: []Record{
				{Targets: []string{"a.o"}, Inputs: []string{"a.c", "a.h"}},
				{Targets: []string{"a.h"}},
			},
		},
		{
			name:     "nocolon",
			depsfile: []byte("garbage without rule\n"),
			want:     nil,
		},
		{
			name:     "empty",
			depsfile: nil,
			want:     nil,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseRecords(tc.depsfile)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseRecords(%q) -want +got:\n%s", tc.depsfile, diff)
			}
		})
	}
}

func TestParseRecordsFile(t *testing.T) {
	fsys := fstest.MapFS{
		"out/a.d": &fstest.MapFile{
			Data: []byte("a.o: ../src/a.cpp ../src/a.h\n"),
		},
	}
	got, err := ParseRecordsFile(fsys, "out/a.d")
	if err != nil {
		t.Fatalf("ParseRecordsFile(%q)=%v; want nil err", "out/a.d", err)
	}
	want := []Record{
		{Targets: []string{"a.o"}, Inputs: []string{"../src/a.cpp", "../src/a.h"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseRecordsFile(%q) -want +got:\n%s", "out/a.d", diff)
	}

	_, err = ParseRecordsFile(fsys, "out/missing.d")
	if err == nil {
		t.Errorf("ParseRecordsFile(%q)=nil err; want error", "out/missing.d")
	}

	got, err = ParseRecordsFile(fsys, "")
	if err != nil || got != nil {
		t.Errorf("ParseRecordsFile(%q)=%v, %v; want nil, nil", "", got, err)
	}
}
