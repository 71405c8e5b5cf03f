// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cflowutil provides the GNU cflow tool profile.
// https://www.gnu.org/software/cflow/
package cflowutil

import (
	"os"
	"path/filepath"

	"go.chromium.org/infra/build/srcbrowse/config"
)

// glibc function decorations cflow would otherwise take for callees.
var symbols = []string{
	"__inline:=inline",
	"__inline__:=inline",
	"__gnu_inline__:=inline",
	"__always_inline__:=inline",
	"__const__:=const",
	"__const:=const",
	"__restrict:=",
	"__extension__:qualifier",
	"__attribute__:wrapper",
	"__packed:wrapper",
	"__BEGIN_DECLS:wrapper",
	"__END_DECLS:wrapper",
	"__END_NAMESPACE_STD:wrapper",
	"__BEGIN_NAMESPACE_STD:wrapper",
	"__USING_NAMESPACE_STD:wrapper",
	"__THROW:wrapper",
	"__REDIRECT:wrapper",
	"__asm__:wrapper",
	"__nonnull:wrapper",
	"__nonnull__:wrapper",
	"__wur:wrapper",
	"__warnattr:wrapper",
	"__fortify_function:wrapper",
	"__artificial__:qualifier",
	"__leaf__:qualifier",
	"__nothrow__:qualifier",
	"__pure__:qualifier",
	"__asm__:qualifier",
}

// DefaultProfile returns the default cflow profile: direct, reverse
// and cross reference call trees over the whole source set.
//
// cflow reads $HOME/.cflowrc on its own; the file is declared so a
// change to it marks generated call graphs stale.
func DefaultProfile() *config.Profile {
	p := &config.Profile{
		Name:        "cflow",
		Kind:        config.CallGrapher,
		Command:     "cflow",
		Flags:       []string{"--all", "--omit-symbol-name"},
		Transport:   config.ArgvList,
		IncludeFlag: "-I",
		DefineFlag:  "-D",
		SymbolFlag:  "--symbol",
		Symbols:     append([]string(nil), symbols...),
		OutputFlag:  "--output",
		Output:      "callgraph.cflow",
		Formats: map[string][]string{
			"":         nil,
			".reverse": {"--reverse"},
			".xref":    {"--xref"},
		},
		Suffixes: []string{
			".c", ".y",
			"", ".c++", ".cc", ".cp", ".cpp", ".cxx",
			".h", ".h++", ".hh", ".hp", ".hpp", ".hxx",
			".C", ".H", ".tcc",
		},
	}
	if home, err := os.UserHomeDir(); err == nil {
		p.ConfigFile = filepath.Join(home, ".cflowrc")
	}
	return p
}
