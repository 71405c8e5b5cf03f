// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package compdb provides the compdb subcommand.
package compdb

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

const usage = `write the JSON compilation database

 $ srcbrowse compdb [-C <dir>] [-style command|arguments] [-o <file>] [targets...]

Writes compile_commands.json for the targets (all targets when none
are given) from the compile commands recorded in the build graph
manifest. No external tool runs; the file is written atomically.

Generating the database typically wants variant directory paths kept
literal, so each entry points at the file the compiler really read;
pass -keep_variant_dir or set keep_variant_dir in the config file.
`

// Cmd returns the Command for the `compdb` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "compdb [-C <dir>] [-style command|arguments] [-o <file>] [targets...]",
		ShortDesc: "write the JSON compilation database",
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

	project       project.Flags
	tool          string
	output        string
	style         string
	absoluteFiles bool
	dryRun        bool
}

func (c *run) init() {
	c.project.Register(&c.Flags)
	c.Flags.StringVar(&c.tool, "tool", "compdb", "compilation database profile to use")
	c.Flags.StringVar(&c.output, "o", "", "output path, root relative; default compile_commands.json")
	c.Flags.StringVar(&c.style, "style", "", "entry style: command (one shell string) or arguments (argv array)")
	c.Flags.BoolVar(&c.absoluteFiles, "absolute_files", false, "emit absolute file fields")
	c.Flags.BoolVar(&c.dryRun, "n", false, "print what would be written, without writing it")
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
	if profile.Kind != config.CompDBWriter {
		return fmt.Errorf("%s is a %s, not a compilation database writer", profile.Name, profile.Kind)
	}
	profile = profile.Clone()
	if c.output != "" {
		profile.Output = c.output
	}
	if c.style != "" {
		if c.style != "command" && c.style != "arguments" {
			return fmt.Errorf("-style %q: want command or arguments", c.style)
		}
		profile.Style = c.style
	}
	if c.absoluteFiles {
		profile.AbsoluteFiles = true
	}
	b, err := proj.Builder(ctx, localexec.LocalExec{}, false, c.dryRun)
	if err != nil {
		return err
	}
	_, err = b.Build(ctx, profile, args)
	return err
}
