// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"go.chromium.org/infra/build/srcbrowse/config"
	"go.chromium.org/infra/build/srcbrowse/toolsupport/cflowutil"
	"go.chromium.org/infra/build/srcbrowse/toolsupport/cscopeutil"
	"go.chromium.org/infra/build/srcbrowse/toolsupport/ctagsutil"
	"go.chromium.org/infra/build/srcbrowse/toolsupport/gtagsutil"
)

// DefaultConfig returns the built-in tool profiles, before any config
// file or environment overrides.
func DefaultConfig() *config.Config {
	return &config.Config{
		Tools: map[string]*config.Profile{
			"ctags":  ctagsutil.DefaultProfile(),
			"cscope": cscopeutil.DefaultProfile(),
			"gtags":  gtagsutil.DefaultProfile(),
			"cflow":  cflowutil.DefaultProfile(),
			"compdb": compdbProfile(),
		},
		DepsSuffix: ".d",
	}
}

// compdbProfile is the compilation database writer. It has no
// external command; the database is generated from the build graph's
// compile commands.
func compdbProfile() *config.Profile {
	return &config.Profile{
		Name:   "compdb",
		Kind:   config.CompDBWriter,
		Output: "compile_commands.json",
		Style:  "command",
		Suffixes: []string{
			".c", ".m", ".C", ".cc", ".cpp", ".cxx", ".c++", ".C++", ".mm",
		},
	}
}
