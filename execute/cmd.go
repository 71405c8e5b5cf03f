// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package execute runs commands.
package execute

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"go.chromium.org/infra/build/srcbrowse/toolsupport/shutil"
)

// Executor is an interface to run the cmd.
type Executor interface {
	Run(ctx context.Context, cmd *Cmd) error
}

// Cmd includes all the information required to run one indexing tool
// invocation.
type Cmd struct {
	// ID is used as a unique identifier for this invocation in logs.
	// It does not have to be human-readable, so using a UUID is fine.
	ID string

	// Desc is a short, human-readable identifier that is shown to the
	// user when referencing this invocation in a log file.
	// Example: "CSCOPE cscope.out"
	Desc string

	// ToolName is the name of the tool profile that generated this
	// invocation. Example: "cscope" or "ctags".
	ToolName string

	// Args holds command line arguments.
	Args []string

	// Env specifies the environment of the process.
	// nil means the process inherits the current environment.
	Env []string

	// ExecRoot is the project root directory of the cmd.
	ExecRoot string

	// Dir specifies the working directory of the cmd,
	// relative to ExecRoot.
	Dir string

	// Stdin is fed to the process standard input when non empty.
	// Tools taking their file list on stdin read it from here.
	Stdin []byte

	// Outputs are files the cmd writes, relative to ExecRoot.
	Outputs []string

	stdoutWriter, stderrWriter io.Writer
	stdoutBuffer, stderrBuffer bytes.Buffer

	result *Result
}

// Result is the outcome of one finished invocation.
type Result struct {
	ExitCode int
	Started  time.Time
	Duration time.Duration
	// MaxRSS is the peak resident set size of the process in
	// platform units, or 0 where not available.
	MaxRSS int64
}

// String returns an ID of the cmd.
func (c *Cmd) String() string {
	return c.ID
}

// Command returns a command line string.
func (c *Cmd) Command() string {
	return shutil.Join(c.Args)
}

// SetStdoutWriter sets w for stdout.
func (c *Cmd) SetStdoutWriter(w io.Writer) {
	c.stdoutWriter = w
}

// SetStderrWriter sets w for stderr.
func (c *Cmd) SetStderrWriter(w io.Writer) {
	c.stderrWriter = w
}

// StdoutWriter returns a writer set for stdout.
func (c *Cmd) StdoutWriter() io.Writer {
	c.stdoutBuffer.Reset()
	if c.stdoutWriter == nil {
		return &c.stdoutBuffer
	}
	return io.MultiWriter(c.stdoutWriter, &c.stdoutBuffer)
}

// StderrWriter returns a writer set for stderr.
func (c *Cmd) StderrWriter() io.Writer {
	c.stderrBuffer.Reset()
	if c.stderrWriter == nil {
		return &c.stderrBuffer
	}
	return io.MultiWriter(c.stderrWriter, &c.stderrBuffer)
}

// Stdout returns stdout output of the cmd.
func (c *Cmd) Stdout() []byte {
	return c.stdoutBuffer.Bytes()
}

// Stderr returns stderr output of the cmd.
func (c *Cmd) Stderr() []byte {
	return c.stderrBuffer.Bytes()
}

// SetResult sets the result of the cmd.
func (c *Cmd) SetResult(result *Result) {
	c.result = result
}

// Result returns the result of the cmd, or nil before it ran.
func (c *Cmd) Result() *Result {
	return c.result
}

// ExitError is an error of cmd exit.
type ExitError struct {
	ExitCode int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("exit=%d", e.ExitCode)
}
