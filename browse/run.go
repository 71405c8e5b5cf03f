// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/srcbrowse/execute"
)

// ToolError is an error of one failed tool invocation.
type ToolError struct {
	Tool   string
	Desc   string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Desc, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Desc, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Runner executes plans.
type Runner struct {
	Path     *Path
	Executor execute.Executor

	// DryRun reports what would be written and run, without touching
	// anything.
	DryRun bool
}

// Run writes the plan's artifacts and runs its invocations.
// Artifacts are written atomically before any tool starts. Format
// invocations run concurrently; a failing one does not stop its
// siblings and all failures are reported.
func (r *Runner) Run(ctx context.Context, plan *Plan) error {
	if r.DryRun {
		return r.dryRun(plan)
	}
	runID := uuid.New().String()
	log.Debugf("run %s: %s over %d files", runID, plan.ToolName, len(plan.Files))

	for _, fname := range sortedKeys(plan.Artifacts) {
		full := filepath.Join(r.Path.Root, filepath.FromSlash(fname))
		if err := WriteFileAtomic(full, plan.Artifacts[fname], 0644); err != nil {
			return err
		}
		log.Infof("wrote %s", fname)
	}
	for _, cmd := range plan.Cmds {
		for _, out := range cmd.Outputs {
			dir := filepath.Dir(filepath.Join(r.Path.Root, filepath.FromSlash(out)))
			if err := os.MkdirAll(dir, 0755); err != nil {
				return &ArtifactWriteError{Path: out, Err: err}
			}
		}
	}

	restore, err := r.guard(plan.GuardFile, runID)
	if err != nil {
		return err
	}
	defer restore()

	var mu sync.Mutex
	var errs []error
	var g errgroup.Group
	for i, cmd := range plan.Cmds {
		cmd := cmd
		cmd.ID = fmt.Sprintf("%s/%d", runID, i)
		g.Go(func() error {
			if err := r.runCmd(ctx, cmd); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return errors.Join(errs...)
}

func (r *Runner) runCmd(ctx context.Context, cmd *execute.Cmd) error {
	log.Infof("%s: %s", cmd.Desc, cmd.Command())
	err := r.Executor.Run(ctx, cmd)
	if err != nil {
		return &ToolError{
			Tool:   cmd.ToolName,
			Desc:   cmd.Desc,
			Stderr: firstLine(cmd.Stderr()),
			Err:    err,
		}
	}
	return nil
}

func (r *Runner) dryRun(plan *Plan) error {
	for _, fname := range sortedKeys(plan.Artifacts) {
		log.Infof("would write %s (%d bytes)", fname, len(plan.Artifacts[fname]))
	}
	if plan.GuardFile != "" {
		log.Infof("would move %s aside during the scan", plan.GuardFile)
	}
	for _, cmd := range plan.Cmds {
		log.Infof("%s: %s", cmd.Desc, cmd.Command())
	}
	return nil
}

// guard moves the tool's guard file aside so a directory scan is not
// hijacked by a stale persisted file list, and returns the restore
// function.
func (r *Runner) guard(fname, runID string) (func(), error) {
	if fname == "" {
		return func() {}, nil
	}
	full := filepath.Join(r.Path.Root, filepath.FromSlash(fname))
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return func() {}, nil
		}
		return nil, err
	}
	tmp := full + ".srcbrowse-" + runID
	if err := os.Rename(full, tmp); err != nil {
		return nil, err
	}
	log.Debugf("moved %s aside during the scan", fname)
	return func() {
		if err := os.Rename(tmp, full); err != nil {
			log.Errorf("restore %s: %v", fname, err)
		}
	}, nil
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstLine(b []byte) string {
	b = bytes.TrimSpace(b)
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
