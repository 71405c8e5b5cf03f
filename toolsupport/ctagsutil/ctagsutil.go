// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ctagsutil provides the ctags tool profile.
// It works with both Exuberant and Universal ctags.
package ctagsutil

import (
	"go.chromium.org/infra/build/srcbrowse/config"
)

// DefaultProfile returns the default ctags profile, reading the
// source list from stdin.
func DefaultProfile() *config.Profile {
	return &config.Profile{
		Name:      "ctags",
		Kind:      config.TagGenerator,
		Command:   "ctags",
		Transport: config.StdinList,
		// -L - reads the source list from stdin.
		StdinFlags: []string{"-L", "-"},
		OutputFlag: "-f",
		Output:     "tags",
		Suffixes: []string{
			"", ".c", ".y", ".l", ".i",
			".c++", ".cc", ".cp", ".cpp", ".cxx", ".C",
			".h", ".h++", ".hh", ".hp", ".hpp", ".hxx", ".H",
			".tcc",
		},
	}
}
