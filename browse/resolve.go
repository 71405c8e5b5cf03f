// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"context"
	"path"
	"strings"

	"bitbucket.org/creachadair/stringset"
	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/srcbrowse/buildgraph"
	"go.chromium.org/infra/build/srcbrowse/config"
)

// Graph provides read access to the host build graph.
// *buildgraph.Graph implements it.
type Graph interface {
	// Expand returns the target group for names: the named targets
	// plus every target they transitively depend on, sorted. An
	// empty names list expands to all targets.
	Expand(names []string) ([]string, error)
	// DeclaredSources returns the direct source list declared for
	// the target.
	DeclaredSources(target string) ([]string, error)
	// CompileCommands returns the compile commands of the target's
	// objects.
	CompileCommands(target string) ([]buildgraph.CompileCommand, error)
}

// PathVariants converts the manifest's variant directory mappings
// into path rewrite rules for NewPath.
func PathVariants(vs []buildgraph.VariantDir) []VariantDir {
	out := make([]VariantDir, len(vs))
	for i, v := range vs {
		out[i] = VariantDir{Dir: v.Dir, Source: v.Source}
	}
	return out
}

// DepsStore reports compiler emitted dependencies.
// *depstore.Store implements it.
type DepsStore interface {
	// Headers returns additional inputs recorded for the translation
	// unit. ok is false when no record mentions it, which is
	// different from a record with no headers.
	Headers(tu string) ([]string, bool)
}

// ResolvedSet is the source file set of a target group, resolved for
// one tool profile.
type ResolvedSet struct {
	// Targets is the expanded target group, sorted.
	Targets []string
	// Files are the matched source files: project relative files
	// first, then absolute ones, each group ordered, no duplicates.
	Files []string
	// Commands are the compile commands of the group, in manifest
	// order per target.
	Commands []buildgraph.CompileCommand
}

// Resolve collects the source file set of the named targets for the
// profile: declared sources of every target in the expanded group,
// the compile command inputs, and the headers recorded for each
// translation unit, filtered by the profile suffix list.
//
// deps may be nil when no dependency records are available; headers
// are then left out, as before the first build. toolchain lists
// compiler and archiver binaries to drop from the set.
func Resolve(ctx context.Context, p *Path, g Graph, deps DepsStore, profile *config.Profile, names []string, toolchain []string) (*ResolvedSet, error) {
	targets, err := g.Expand(names)
	if err != nil {
		return nil, err
	}
	excluded := stringset.New()
	for _, bin := range toolchain {
		e, err := p.Normalize("", bin)
		if err != nil {
			return nil, err
		}
		excluded.Add(e)
	}
	suffixes := Suffixes(profile.Suffixes)
	seen := stringset.New()
	var files []string
	add := func(dir, fname string) error {
		f, err := p.Normalize(dir, fname)
		if err != nil {
			return err
		}
		if excluded.Contains(f) || !suffixes.Accepts(f) || seen.Contains(f) {
			return nil
		}
		seen.Add(f)
		files = append(files, f)
		return nil
	}
	var commands []buildgraph.CompileCommand
	norecord := 0
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		declared, err := g.DeclaredSources(target)
		if err != nil {
			return nil, err
		}
		for _, src := range declared {
			if err := add("", src); err != nil {
				return nil, err
			}
		}
		ccs, err := g.CompileCommands(target)
		if err != nil {
			return nil, err
		}
		commands = append(commands, ccs...)
		for _, cc := range ccs {
			if err := add("", cc.Source); err != nil {
				return nil, err
			}
			if deps == nil {
				continue
			}
			tu, err := p.Normalize("", cc.Source)
			if err != nil {
				return nil, err
			}
			headers, ok := deps.Headers(tu)
			if !ok {
				log.Debugf("resolve: no dependency record for %s", tu)
				norecord++
				continue
			}
			for _, h := range headers {
				if err := add("", h); err != nil {
					return nil, err
				}
			}
		}
	}
	if norecord > 0 {
		log.Infof("resolve: %d translation units without dependency records; headers may be incomplete", norecord)
	}
	if profile.PreferPreprocessed {
		files = preferPreprocessed(p, files, commands)
	}
	SortPaths(files)
	log.Debugf("resolve: %s: %d files for %d targets", profile.Name, len(files), len(targets))
	return &ResolvedSet{
		Targets:  targets,
		Files:    files,
		Commands: commands,
	}, nil
}

// preferPreprocessed replaces each translation unit that has a
// compile command with the preprocessed form the compiler captures
// under -save-temps=obj: the object path with a .i extension for C
// and .ii otherwise.
func preferPreprocessed(p *Path, files []string, commands []buildgraph.CompileCommand) []string {
	pre := make(map[string]string, len(commands))
	for _, cc := range commands {
		src, err := p.Normalize("", cc.Source)
		if err != nil {
			continue
		}
		obj, err := p.Normalize("", cc.Output)
		if err != nil {
			continue
		}
		stem := strings.TrimSuffix(obj, path.Ext(obj))
		if path.Ext(src) == ".c" {
			pre[src] = stem + ".i"
		} else {
			pre[src] = stem + ".ii"
		}
	}
	seen := stringset.New()
	out := files[:0]
	for _, f := range files {
		if r, ok := pre[f]; ok {
			f = r
		}
		if seen.Contains(f) {
			continue
		}
		seen.Add(f)
		out = append(out, f)
	}
	return out
}
