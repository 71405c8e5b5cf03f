// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Srcbrowse builds source navigation indexes from an exported C/C++
// build graph: ctags and GNU GLOBAL tag databases, cscope cross
// references, cflow call graphs and clang compilation databases.
package main

import (
	"os"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/infra/build/srcbrowse/subcmd/callgraph"
	"go.chromium.org/infra/build/srcbrowse/subcmd/compdb"
	"go.chromium.org/infra/build/srcbrowse/subcmd/gen"
	"go.chromium.org/infra/build/srcbrowse/subcmd/help"
	"go.chromium.org/infra/build/srcbrowse/subcmd/inputs"
	"go.chromium.org/infra/build/srcbrowse/subcmd/sources"
	"go.chromium.org/infra/build/srcbrowse/subcmd/tags"
	"go.chromium.org/infra/build/srcbrowse/subcmd/version"
	"go.chromium.org/infra/build/srcbrowse/subcmd/watch"
	"go.chromium.org/infra/build/srcbrowse/subcmd/xref"
)

// srcbrowseVersion is stamped by the release build with
// -ldflags="-X main.srcbrowseVersion=...".
var srcbrowseVersion = "dev"

func newApplication() *subcommands.DefaultApplication {
	return &subcommands.DefaultApplication{
		Name:  "srcbrowse",
		Title: "source index generator for C/C++ build graphs",
		Commands: []*subcommands.Command{
			gen.Cmd(),
			tags.Cmd(),
			xref.Cmd(),
			callgraph.Cmd(),
			compdb.Cmd(),
			watch.Cmd(),
			sources.Cmd(),
			inputs.Cmd(),
			version.Cmd(srcbrowseVersion),
			help.Cmd(),
		},
	}
}

func main() {
	os.Exit(srcbrowseMain())
}

func srcbrowseMain() int {
	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Fatalf("panic: %v\n%s", r, buf)
		}
	}()

	return subcommands.Run(newApplication(), nil)
}
