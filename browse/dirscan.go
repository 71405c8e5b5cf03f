// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bitbucket.org/creachadair/stringset"
	gitignore "github.com/sabhiram/go-gitignore"

	"go.chromium.org/infra/build/srcbrowse/config"
)

// scan findings beyond this are summarized.
const maxScanWarnings = 20

// ValidateScan reports coverage problems of a directory-scan tool
// against the resolved source set: resolved files its scan will
// miss, and gitignored files it will index anyway. Findings are
// warnings, not errors; a scan legitimately picks up sources the
// build graph does not know about.
func ValidateScan(ctx context.Context, p *Path, profile *config.Profile, files []string) ([]string, error) {
	resolved := stringset.New(files...)
	suffixes := Suffixes(profile.Suffixes)
	var warnings []string
	for _, f := range files {
		if IsAbsPath(f) {
			warnings = append(warnings, fmt.Sprintf("%s: outside the project, not covered by the %s scan", f, profile.Name))
			continue
		}
		if !underAny(f, profile.ScanRoots) {
			warnings = append(warnings, fmt.Sprintf("%s: outside the scan roots of %s", f, profile.Name))
		}
	}
	ign, err := gitignore.CompileIgnoreFile(filepath.Join(p.Root, ".gitignore"))
	if err != nil {
		// no ignore rules to check against.
		ign = nil
	}
	for _, root := range profile.ScanRoots {
		dir := filepath.Join(p.Root, filepath.FromSlash(root))
		if _, serr := os.Stat(dir); errors.Is(serr, fs.ErrNotExist) {
			warnings = append(warnings, fmt.Sprintf("%s: scan root of %s does not exist", root, profile.Name))
			continue
		}
		if ign != nil {
			err := filepath.WalkDir(dir, func(fname string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if cerr := ctx.Err(); cerr != nil {
					return cerr
				}
				if d.IsDir() {
					if d.Name() == ".git" {
						return filepath.SkipDir
					}
					return nil
				}
				rel, err := p.Normalize("", fname)
				if err != nil {
					return err
				}
				if !suffixes.Accepts(rel) || resolved.Contains(rel) {
					return nil
				}
				if ign.MatchesPath(rel) {
					warnings = append(warnings, fmt.Sprintf("%s: gitignored, but the %s scan will index it", rel, profile.Name))
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}
	sort.Strings(warnings)
	if len(warnings) > maxScanWarnings {
		n := len(warnings) - maxScanWarnings
		warnings = append(warnings[:maxScanWarnings], fmt.Sprintf("... and %d more scan findings", n))
	}
	return warnings, nil
}

func underAny(fname string, roots []string) bool {
	for _, root := range roots {
		if root == "." || root == "" {
			return true
		}
		if fname == root || strings.HasPrefix(fname, root+"/") {
			return true
		}
	}
	return false
}
