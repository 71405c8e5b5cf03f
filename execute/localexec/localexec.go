// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package localexec implements local command execution.
package localexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/srcbrowse/execute"
)

// LocalExec implements execute.Executor interface that runs commands
// locally.
type LocalExec struct{}

// Run runs cmd with LocalExec.
func Run(ctx context.Context, cmd *execute.Cmd) error {
	return LocalExec{}.Run(ctx, cmd)
}

// Run runs a cmd.
func (LocalExec) Run(ctx context.Context, cmd *execute.Cmd) error {
	res, stdout, stderr, err := run(ctx, cmd)
	if err != nil {
		return err
	}
	cmd.StdoutWriter().Write(stdout)
	cmd.StderrWriter().Write(stderr)
	cmd.SetResult(res)

	log.Debugf("%s exit=%d stdout=%d stderr=%d duration=%s maxrss=%d", cmd.ID, res.ExitCode, len(stdout), len(stderr), res.Duration, res.MaxRSS)

	if res.ExitCode != 0 {
		return &execute.ExitError{ExitCode: res.ExitCode}
	}
	return nil
}

func run(ctx context.Context, cmd *execute.Cmd) (*execute.Result, []byte, []byte, error) {
	if len(cmd.Args) == 0 {
		return nil, nil, nil, fmt.Errorf("no arguments in the command. ID: %s", cmd.ID)
	}
	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Env = cmd.Env
	c.Dir = filepath.Join(cmd.ExecRoot, cmd.Dir)
	if len(cmd.Stdin) > 0 {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	s := time.Now()
	err := c.Start()
	if err == nil {
		err = c.Wait()
	}
	d := time.Since(s)

	res := &execute.Result{
		ExitCode: exitCode(err),
		Started:  s,
		Duration: d,
		MaxRSS:   maxRSS(c),
	}
	errOut := stderr.Bytes()
	if res.ExitCode != 0 {
		errOut = append(errOut, []byte(fmt.Sprintf("\ncmd: %q dir: %q error: %v", cmd.Args, cmd.Dir, err))...)
	}
	return res, stdout.Bytes(), errOut, nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var eerr *exec.ExitError
	if !errors.As(err, &eerr) {
		return 1
	}
	if w, ok := eerr.ProcessState.Sys().(syscall.WaitStatus); ok {
		return w.ExitStatus()
	}
	return 1
}
