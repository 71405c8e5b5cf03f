// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package sources provides the sources subcommand for debugging
// source set resolution.
package sources

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

const usage = `print the resolved source file set

 $ srcbrowse sources [-C <dir>] [-tool <name>] [targets...]

Prints the source file set that would be handed to the tool for the
targets (all targets when none are given), one path per line, in
invocation order: project relative files first, then absolute ones.
Useful to check suffix filtering, variant directory rewriting and
dependency record coverage without running anything.
`

// Cmd returns the Command for the `sources` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "sources [-C <dir>] [-tool <name>] [targets...]",
		ShortDesc: "print the resolved source file set",
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
	targets bool
}

func (c *run) init() {
	c.project.Register(&c.Flags)
	c.Flags.StringVar(&c.tool, "tool", "cscope", "tool profile whose suffix filter applies")
	c.Flags.BoolVar(&c.targets, "targets", false, "print the expanded target group instead of the files")
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
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	lines := rs.Files
	if c.targets {
		lines = rs.Targets
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}
