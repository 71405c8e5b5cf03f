// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package buildgraph reads the target graph exported by the host
// build engine.
//
// srcbrowse never inspects build rules itself; the engine writes a
// JSON manifest of targets, their declared sources and their compile
// commands, and this package answers graph queries against it.
package buildgraph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	graphlib "github.com/dominikbraun/graph"
)

// DefaultManifestName is the manifest file name the host build
// engine writes at the project root.
const DefaultManifestName = ".srcbrowse_targets.json"

// ErrNoTarget is an error when a target is not found in the graph.
var ErrNoTarget = errors.New("target not found")

// VariantDir maps a build variant directory to the source directory
// it mirrors.
type VariantDir struct {
	Dir    string `json:"dir"`
	Source string `json:"source,omitempty"`
}

// CompileCommand describes how one object file is compiled from one
// translation unit. Directory is where the compiler ran, root
// relative; Arguments is the full argv.
type CompileCommand struct {
	Output    string   `json:"output"`
	Source    string   `json:"source"`
	Directory string   `json:"directory"`
	Arguments []string `json:"arguments"`
}

// Target is one node of the build graph.
type Target struct {
	Name    string           `json:"name"`
	Sources []string         `json:"sources,omitempty"`
	Deps    []string         `json:"deps,omitempty"`
	Objects []CompileCommand `json:"objects,omitempty"`
}

// Manifest is the on-disk shape of the exported build graph.
type Manifest struct {
	BuildDir    string       `json:"build_dir,omitempty"`
	VariantDirs []VariantDir `json:"variant_dirs,omitempty"`
	// Toolchain lists compiler and archiver binaries; the resolver
	// drops them from collected source sets.
	Toolchain []string `json:"toolchain,omitempty"`
	Targets   []Target `json:"targets"`
}

// Graph answers build graph queries against a loaded manifest.
type Graph struct {
	m       *Manifest
	g       graphlib.Graph[string, string]
	targets map[string]*Target
	names   []string // sorted
}

// Load reads a manifest file and builds the graph.
func Load(fname string) (*Graph, error) {
	b, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := json.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", fname, err)
	}
	g, err := New(m)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", fname, err)
	}
	return g, nil
}

// New builds the graph for the manifest.
// Dependency cycles are tolerated; expansion visits each target once.
func New(m *Manifest) (*Graph, error) {
	g := graphlib.New(graphlib.StringHash, graphlib.Directed())
	targets := make(map[string]*Target, len(m.Targets))
	names := make([]string, 0, len(m.Targets))
	for i := range m.Targets {
		t := &m.Targets[i]
		if t.Name == "" {
			return nil, errors.New("target with empty name")
		}
		if _, dup := targets[t.Name]; dup {
			return nil, fmt.Errorf("duplicate target %q", t.Name)
		}
		targets[t.Name] = t
		names = append(names, t.Name)
		if err := g.AddVertex(t.Name); err != nil {
			return nil, err
		}
	}
	for i := range m.Targets {
		t := &m.Targets[i]
		for _, dep := range t.Deps {
			if dep == t.Name {
				continue
			}
			if _, ok := targets[dep]; !ok {
				return nil, fmt.Errorf("%w: %q (dep of %q)", ErrNoTarget, dep, t.Name)
			}
			if err := g.AddEdge(t.Name, dep); err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
				return nil, err
			}
		}
	}
	sort.Strings(names)
	return &Graph{m: m, g: g, targets: targets, names: names}, nil
}

// BuildDir returns the manifest's build directory, root relative.
func (g *Graph) BuildDir() string { return g.m.BuildDir }

// VariantDirs returns the manifest's variant directory mappings.
func (g *Graph) VariantDirs() []VariantDir { return g.m.VariantDirs }

// Toolchain returns compiler and archiver binary paths.
func (g *Graph) Toolchain() []string { return g.m.Toolchain }

// Targets returns all target names, sorted.
func (g *Graph) Targets() []string { return slices.Clone(g.names) }

// DeclaredSources returns the direct source list declared for the
// target, in manifest order.
func (g *Graph) DeclaredSources(target string) ([]string, error) {
	t, ok := g.targets[target]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoTarget, target)
	}
	return slices.Clone(t.Sources), nil
}

// CompileCommands returns the compile commands of the target's
// objects, in manifest order.
func (g *Graph) CompileCommands(target string) ([]CompileCommand, error) {
	t, ok := g.targets[target]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoTarget, target)
	}
	return slices.Clone(t.Objects), nil
}

// Expand returns the target group for names: the named targets plus
// every target they transitively depend on, sorted. An empty names
// list expands to all targets.
func (g *Graph) Expand(names []string) ([]string, error) {
	if len(names) == 0 {
		return g.Targets(), nil
	}
	seen := make(map[string]bool)
	for _, name := range names {
		if _, ok := g.targets[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoTarget, name)
		}
		if seen[name] {
			continue
		}
		err := graphlib.DFS(g.g, name, func(v string) bool {
			seen[v] = true
			return false
		})
		if err != nil {
			return nil, err
		}
	}
	group := make([]string, 0, len(seen))
	for name := range seen {
		group = append(group, name)
	}
	sort.Strings(group)
	return group, nil
}
