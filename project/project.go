// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package project opens everything a subcommand needs to work on one
// source tree: the exported build graph, the tool configuration and
// the compiler dependency records.
package project

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/srcbrowse/browse"
	"go.chromium.org/infra/build/srcbrowse/buildgraph"
	"go.chromium.org/infra/build/srcbrowse/config"
	"go.chromium.org/infra/build/srcbrowse/depstore"
	"go.chromium.org/infra/build/srcbrowse/execute"
)

// DefaultConfigName is the config file loaded from the project root
// when -config is not given.
const DefaultConfigName = ".srcbrowse.star"

// Flags are the project flags shared by every subcommand.
type Flags struct {
	Dir         string
	Manifest    string
	ConfigFile  string
	DepsDir     string
	KeepVariant bool
	LogLevel    string
}

// Register declares the shared flags on fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Dir, "C", ".", "project root directory")
	fs.StringVar(&f.Manifest, "manifest", buildgraph.DefaultManifestName, "build graph manifest, relative to the project root")
	fs.StringVar(&f.ConfigFile, "config", "", "starlark config file, relative to the project root; default "+DefaultConfigName+" when present")
	fs.StringVar(&f.DepsDir, "deps_dir", "", "directory scanned for compiler dependency files; default is the manifest build dir")
	fs.BoolVar(&f.KeepVariant, "keep_variant_dir", false, "keep build variant paths literal instead of rewriting them to the mirrored source location")
	fs.StringVar(&f.LogLevel, "log_level", "info", "log level: debug, info, warn or error")
}

// Project is an opened project root.
type Project struct {
	Root string
	// Manifest is the manifest path, root relative.
	Manifest string
	// DepsDir is the scanned dependency directory, root relative,
	// "" when the project has none.
	DepsDir string

	Config *config.Config
	Graph  *buildgraph.Graph
	Path   *browse.Path
	Deps   *depstore.Store
}

// Open loads the project under flags.Dir: the optional .env file,
// the tool configuration with its overrides, the build graph
// manifest and the dependency records.
func Open(ctx context.Context, flags *Flags) (*Project, error) {
	if flags.LogLevel != "" {
		lvl, err := log.ParseLevel(flags.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("-log_level: %w", err)
		}
		log.SetLevel(lvl)
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		log.Debugf("buildinfo: %s %s %s", bi.Main.Path, bi.Main.Version, bi.GoVersion)
	}
	root, err := filepath.Abs(flags.Dir)
	if err != nil {
		return nil, err
	}
	config.LoadEnv(root)

	cfg := browse.DefaultConfig()
	cfgName := flags.ConfigFile
	if cfgName == "" {
		if _, err := os.Stat(filepath.Join(root, DefaultConfigName)); err == nil {
			cfgName = DefaultConfigName
		}
	}
	if cfgName != "" {
		if err := config.Load(filepath.Join(root, filepath.FromSlash(cfgName)), cfg); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	manifest := flags.Manifest
	if manifest == "" {
		manifest = buildgraph.DefaultManifestName
	}
	g, err := buildgraph.Load(filepath.Join(root, filepath.FromSlash(manifest)))
	if err != nil {
		return nil, err
	}
	keep := cfg.KeepVariant || flags.KeepVariant
	p := browse.NewPath(root, browse.PathVariants(g.VariantDirs()), keep)
	if cfg.ConfigFile != "" {
		// declared as a stale input, so root relative like the rest.
		if rel, err := p.Normalize("", cfg.ConfigFile); err == nil {
			cfg.ConfigFile = rel
		}
	}

	depsDir := flags.DepsDir
	if depsDir == "" {
		depsDir = cfg.DepsDir
	}
	if depsDir == "" {
		depsDir = g.BuildDir()
	}
	var deps *depstore.Store
	if depsDir != "" {
		deps, err = depstore.New(p, depsDir, cfg.DepsSuffix)
		if err != nil {
			return nil, err
		}
		if err := deps.Scan(ctx); err != nil {
			return nil, err
		}
		log.Debugf("project: %d dependency records under %s", deps.Len(), depsDir)
	} else {
		log.Warnf("project: no deps directory; recorded headers are unavailable")
	}
	log.Debugf("project: root=%s manifest=%s config=%q targets=%d", root, manifest, cfg.ConfigFile, len(g.Targets()))
	return &Project{
		Root:     root,
		Manifest: manifest,
		DepsDir:  depsDir,
		Config:   cfg,
		Graph:    g,
		Path:     p,
		Deps:     deps,
	}, nil
}

// deps returns the store behind the resolver interface. A missing
// store must become an untyped nil there, or the nil check in the
// resolver never fires.
func (p *Project) deps() browse.DepsStore {
	if p.Deps == nil {
		return nil
	}
	return p.Deps
}

// depsFiles lists the dependency record files for staleness
// declarations.
func (p *Project) depsFiles(ctx context.Context) ([]string, error) {
	if p.Deps == nil {
		return nil, nil
	}
	return p.Deps.Files(ctx)
}

// Resolve resolves the source file set of the named targets for the
// profile.
func (p *Project) Resolve(ctx context.Context, profile *config.Profile, targets []string) (*browse.ResolvedSet, error) {
	return browse.Resolve(ctx, p.Path, p.Graph, p.deps(), profile, targets, p.Graph.Toolchain())
}

// Builder returns a builder generating artifacts in this project.
// skipFresh skips tools whose artifacts are newer than their inputs.
func (p *Project) Builder(ctx context.Context, executor execute.Executor, skipFresh, dryRun bool) (*browse.Builder, error) {
	depsFiles, err := p.depsFiles(ctx)
	if err != nil {
		return nil, err
	}
	return &browse.Builder{
		Path:      p.Path,
		Graph:     p.Graph,
		Deps:      p.deps(),
		Runner:    &browse.Runner{Path: p.Path, Executor: executor, DryRun: dryRun},
		Toolchain: p.Graph.Toolchain(),
		SkipFresh: skipFresh,
		Config:    p.Config,
		Manifest:  p.Manifest,
		DepsFiles: depsFiles,
	}, nil
}

// Inputs declares the staleness inputs of the profile's artifacts.
// sources is the resolved source set.
func (p *Project) Inputs(ctx context.Context, profile *config.Profile, sources []string) ([]browse.Input, error) {
	depsFiles, err := p.depsFiles(ctx)
	if err != nil {
		return nil, err
	}
	return browse.CollectInputs(ctx, p.Path, p.Config, profile, p.Manifest, depsFiles, sources)
}

// Tools returns the named tool profiles, or every configured one
// sorted by name when names is empty.
func (p *Project) Tools(names []string) ([]*config.Profile, error) {
	if len(names) == 0 {
		for name := range p.Config.Tools {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	profiles := make([]*config.Profile, 0, len(names))
	for _, name := range names {
		profile, err := p.Config.Tool(name)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}
