// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/srcbrowse/config"
)

// Builder generates index artifacts for tool profiles over one
// build graph: resolve the source set, plan the invocations, run
// them.
type Builder struct {
	Path   *Path
	Graph  Graph
	Deps   DepsStore
	Runner *Runner

	// Toolchain binaries are dropped from resolved sets.
	Toolchain []string

	// ArgLimit is the command line byte budget. Zero means the
	// platform limit.
	ArgLimit int

	// SkipFresh skips a tool whose artifacts are all newer than
	// its declared inputs.
	SkipFresh bool

	// Staleness declaration inputs; see CollectInputs.
	Config    *config.Config
	Manifest  string
	DepsFiles []string
}

// Build generates the profile's artifacts for the target group.
// The returned plan reports what ran; it is nil when SkipFresh
// found the artifacts up to date.
func (b *Builder) Build(ctx context.Context, profile *config.Profile, targets []string) (*Plan, error) {
	rs, err := Resolve(ctx, b.Path, b.Graph, b.Deps, profile, targets, b.Toolchain)
	if err != nil {
		return nil, err
	}
	limit := b.ArgLimit
	if limit == 0 {
		limit = ArgumentLimit()
	}
	plan, err := BuildPlan(b.Path, profile, rs, limit)
	if err != nil {
		return nil, err
	}
	if b.SkipFresh {
		inputs, err := CollectInputs(ctx, b.Path, b.Config, profile, b.Manifest, b.DepsFiles, rs.Files)
		if err != nil {
			return nil, err
		}
		stale, reason, err := IsStale(b.Path, plan.Outputs, inputs)
		if err != nil {
			return nil, err
		}
		if !stale {
			log.Infof("%s: up to date", profile.Name)
			return nil, nil
		}
		log.Debugf("%s: stale: %s", profile.Name, reason)
	}
	if profile.Transport == config.DirScan {
		warnings, err := ValidateScan(ctx, b.Path, profile, rs.Files)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			log.Warnf("%s: scan validation: %v", profile.Name, err)
		}
		for _, w := range warnings {
			log.Warnf("%s: %s", profile.Name, w)
		}
	}
	if err := b.Runner.Run(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// BuildAll builds every profile for the target group concurrently.
// One tool's failure does not stop the others; all failures are
// reported together, each wrapped with its tool name.
func (b *Builder) BuildAll(ctx context.Context, profiles []*config.Profile, targets []string) error {
	var mu sync.Mutex
	var errs []error
	var g errgroup.Group
	for _, profile := range profiles {
		profile := profile
		g.Go(func() error {
			if _, err := b.Build(ctx, profile, targets); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", profile.Name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return errors.Join(errs...)
}
