// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package browse is the core package of srcbrowse.
//
// It resolves the exact set of sources that feed a build target group,
// constructs deterministic invocations of external source indexing tools
// (tag generators, cross referencers, call graphers), and writes the
// auxiliary artifacts those tools and the host build engine consume.
package browse

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// PathError indicates a source path that cannot be normalized.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("bad source path %q: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// VariantDir maps a build variant directory back to the source
// directory it mirrors. Dir and Source are root relative slash paths.
// An empty Source maps the variant directory to the project root.
type VariantDir struct {
	Dir    string
	Source string
}

// Path manages source paths for one project root.
//
// Normalized paths are slash separated, root relative when under the
// project root and absolute otherwise, with no "." or ".." segments.
// Normalization is lexical; symlinks are not resolved.
type Path struct {
	// Root is the absolute path of the project root.
	Root string

	// Variants are build variant directories, rewritten back to
	// their source directories unless KeepVariant is set.
	Variants []VariantDir

	// KeepVariant keeps paths under a variant directory literal.
	// Compilation database writers want the literal path because
	// that is where the compiler actually ran.
	KeepVariant bool
}

// NewPath creates a Path for the project root.
// Longer variant prefixes take precedence over shorter ones.
func NewPath(root string, variants []VariantDir, keepVariant bool) *Path {
	vs := make([]VariantDir, len(variants))
	for i, v := range variants {
		vs[i] = VariantDir{
			Dir:    strings.Trim(path.Clean(filepath.ToSlash(v.Dir)), "/"),
			Source: strings.Trim(path.Clean(filepath.ToSlash(v.Source)), "/"),
		}
		if vs[i].Source == "." {
			vs[i].Source = ""
		}
	}
	sort.Slice(vs, func(i, j int) bool {
		return len(vs[i].Dir) > len(vs[j].Dir)
	})
	return &Path{
		Root:     filepath.Clean(root),
		Variants: vs,
	}
}

// Normalize normalizes fname into canonical source path form.
// A relative fname is interpreted relative to dir, a root relative
// directory ("" means the project root itself).
func (p *Path) Normalize(dir, fname string) (string, error) {
	if fname == "" {
		return "", &PathError{Path: fname, Err: errors.New("empty path")}
	}
	if strings.IndexByte(fname, 0) >= 0 {
		return "", &PathError{Path: fname, Err: errors.New("NUL in path")}
	}
	var abs string
	if filepath.IsAbs(fname) {
		abs = filepath.Clean(fname)
	} else {
		abs = filepath.Join(p.Root, filepath.FromSlash(dir), filepath.FromSlash(fname))
	}
	rel, err := filepath.Rel(p.Root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		// outside the project root. keep absolute.
		return filepath.ToSlash(abs), nil
	}
	r := filepath.ToSlash(rel)
	if !p.KeepVariant {
		r = p.rewriteVariant(r)
	}
	return r, nil
}

func (p *Path) rewriteVariant(fname string) string {
	for _, v := range p.Variants {
		if v.Dir == "" {
			continue
		}
		switch {
		case fname == v.Dir:
			if v.Source == "" {
				return "."
			}
			return v.Source
		case strings.HasPrefix(fname, v.Dir+"/"):
			return path.Join(v.Source, fname[len(v.Dir)+1:])
		}
	}
	return fname
}

// IsAbsPath reports whether a normalized source path is absolute,
// i.e. outside the project root.
func IsAbsPath(fname string) bool {
	return strings.HasPrefix(fname, "/") || filepath.IsAbs(filepath.FromSlash(fname))
}

// ComparePaths orders normalized source paths. Root relative paths
// come before absolute ones, lexicographic within each group, so
// project sources lead and system headers trail in every artifact.
func ComparePaths(a, b string) int {
	absA, absB := IsAbsPath(a), IsAbsPath(b)
	if absA != absB {
		if absB {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// SortPaths sorts normalized source paths in ComparePaths order.
func SortPaths(paths []string) {
	slices.SortFunc(paths, ComparePaths)
}
