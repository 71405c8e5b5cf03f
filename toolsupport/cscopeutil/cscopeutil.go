// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cscopeutil provides the cscope tool profile.
// https://cscope.sourceforge.net/
package cscopeutil

import (
	"go.chromium.org/infra/build/srcbrowse/config"
)

// DefaultProfile returns the default cscope profile: build a kernel
// mode (-k) cross reference database with inverted indexes (-q),
// reading the source list from stdin.
func DefaultProfile() *config.Profile {
	return &config.Profile{
		Name:      "cscope",
		Kind:      config.CrossReferencer,
		Command:   "cscope",
		Flags:     []string{"-b", "-q", "-k"},
		Transport: config.StdinList,
		// -i - reads the source list from stdin.
		StdinFlags:  []string{"-i", "-"},
		IncludeFlag: "-I",
		OutputFlag:  "-f",
		Output:      "cscope.out",
		// -q writes inverted index files next to the database.
		SideOutputs: []string{".in", ".po"},
		Namefile:    "cscope.files",
		// flags cscope accepts inside a namefile.
		NamefileFlags: []string{"-I", "-c", "-k", "-p", "-q", "-T"},
		Suffixes: []string{
			"", ".c", ".y", ".l", ".i",
			".c++", ".cc", ".cp", ".cpp", ".cxx", ".C",
			".h", ".h++", ".hh", ".hp", ".hpp", ".hxx", ".H",
			".tcc",
		},
	}
}
