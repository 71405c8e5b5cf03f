// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gen provides the gen subcommand.
package gen

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/maruel/subcommands"

	"go.chromium.org/infra/build/srcbrowse/execute/localexec"
	"go.chromium.org/infra/build/srcbrowse/project"
)

const usage = `generate every configured index artifact

 $ srcbrowse gen [-C <dir>] [-tools ctags,cscope,...] [-only_stale] [targets...]

Resolves the source file set of the targets (all targets when none
are given) and generates the artifacts of every configured tool, or
of the -tools subset. Tools run concurrently; one tool's failure
does not stop the others, and all failures are reported at the end.

-only_stale regenerates only artifacts older than one of their
inputs: the manifest, the config files, the tool binary, the
dependency record files or the resolved sources.
`

// Cmd returns the Command for the `gen` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "gen [-C <dir>] [-tools <names>] [-only_stale] [targets...]",
		ShortDesc: "generate every configured index artifact",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	project   project.Flags
	tools     string
	onlyStale bool
	dryRun    bool
}

func (c *run) init() {
	c.project.Register(&c.Flags)
	c.Flags.StringVar(&c.tools, "tools", "", "comma separated tool names to run; default is every configured tool")
	c.Flags.BoolVar(&c.onlyStale, "only_stale", false, "skip tools whose artifacts are newer than all of their inputs")
	c.Flags.BoolVar(&c.dryRun, "n", false, "print what would be written and run, without running it")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	proj, err := project.Open(ctx, &c.project)
	if err != nil {
		return err
	}
	var names []string
	if c.tools != "" {
		for _, name := range strings.Split(c.tools, ",") {
			names = append(names, strings.TrimSpace(name))
		}
	}
	profiles, err := proj.Tools(names)
	if err != nil {
		return err
	}
	b, err := proj.Builder(ctx, localexec.LocalExec{}, c.onlyStale, c.dryRun)
	if err != nil {
		return err
	}
	return b.BuildAll(ctx, profiles, args)
}
