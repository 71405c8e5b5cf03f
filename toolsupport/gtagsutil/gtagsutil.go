// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gtagsutil provides the GNU GLOBAL gtags tool profile.
// https://www.gnu.org/software/global/
package gtagsutil

import (
	"go.chromium.org/infra/build/srcbrowse/config"
)

// DefaultProfile returns the default gtags profile.
//
// gtags discovers sources with its own recursive scan and takes the
// database directory as a trailing positional argument. A gtags.files
// in the scan directory would silently replace the scan with a stale
// persisted list, so it is declared as a guard file and moved aside
// for the duration of the run.
func DefaultProfile() *config.Profile {
	return &config.Profile{
		Name:         "gtags",
		Kind:         config.TagGenerator,
		Command:      "gtags",
		Transport:    config.DirScan,
		ScanRoots:    []string{"."},
		GuardFile:    "gtags.files",
		ConfigFlag:   "--gtagsconf",
		Output:       "GTAGS",
		OutputDirArg: true,
		SideOutputs:  []string{"GRTAGS", "GPATH"},
		Suffixes: []string{
			"", ".c", ".y", ".l", ".i",
			".c++", ".cc", ".cp", ".cpp", ".cxx", ".C",
			".h", ".h++", ".hh", ".hp", ".hpp", ".hxx", ".H",
			".tcc",
		},
	}
}
