// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package tags provides the tags subcommand.
package tags

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/maruel/subcommands"

	"go.chromium.org/infra/build/srcbrowse/config"
	"go.chromium.org/infra/build/srcbrowse/execute/localexec"
	"go.chromium.org/infra/build/srcbrowse/project"
)

const usage = `generate the symbol definition index

 $ srcbrowse tags [-C <dir>] [-tool ctags|gtags] [-o <file>] [targets...]

Resolves the source file set of the targets (all targets when none
are given) from the build graph manifest and runs the tag generator
over it. The resolved set covers declared sources plus every header
recorded by the compiler for the group's translation units.
`

// Cmd returns the Command for the `tags` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "tags [-C <dir>] [-tool ctags|gtags] [-o <file>] [targets...]",
		ShortDesc: "generate the symbol definition index",
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

	project project.Flags
	tool    string
	output  string
	dryRun  bool
}

func (c *run) init() {
	c.project.Register(&c.Flags)
	c.Flags.StringVar(&c.tool, "tool", "ctags", "tag generator to run: ctags or gtags")
	c.Flags.StringVar(&c.output, "o", "", "output path, root relative; default is the tool profile output")
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
	profile, err := proj.Config.Tool(c.tool)
	if err != nil {
		return err
	}
	if profile.Kind != config.TagGenerator {
		return fmt.Errorf("%s is a %s, not a tag generator", profile.Name, profile.Kind)
	}
	profile = profile.Clone()
	if c.output != "" {
		profile.Output = c.output
	}
	b, err := proj.Builder(ctx, localexec.LocalExec{}, false, c.dryRun)
	if err != nil {
		return err
	}
	_, err = b.Build(ctx, profile, args)
	return err
}
