// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package inputs provides the inputs subcommand declaring the stale
// inputs of generated artifacts.
package inputs

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/maruel/subcommands"

	"go.chromium.org/infra/build/srcbrowse/project"
)

const usage = `print the stale inputs of a tool's artifacts

 $ srcbrowse inputs [-C <dir>] [-tool <name>] [targets...]

Prints one "kind<TAB>path" line per file whose change invalidates
the tool's generated artifacts: the build graph manifest, the loaded
config files, the tool binary, the dependency record files and the
resolved sources. Paths are root relative, or absolute for files
outside the project. The output is sorted and deterministic, meant
for a host build system to wire artifact regeneration into its own
dependency tracking.
`

// Cmd returns the Command for the `inputs` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "inputs [-C <dir>] [-tool <name>] [targets...]",
		ShortDesc: "print the stale inputs of a tool's artifacts",
		LongDesc:  usage,
		Advanced:  true,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	project project.Flags
	tool    string
}

func (c *run) init() {
	c.project.Register(&c.Flags)
	c.Flags.StringVar(&c.tool, "tool", "ctags", "tool whose artifact inputs are declared")
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
	profile, err := proj.Config.Tool(c.tool)
	if err != nil {
		return err
	}
	rs, err := proj.Resolve(ctx, profile, args)
	if err != nil {
		return err
	}
	inputs, err := proj.Inputs(ctx, profile, rs.Files)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for _, in := range inputs {
		fmt.Fprintf(w, "%s\t%s\n", in.Kind, in.Path)
	}
	return nil
}
