// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"encoding/json"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"bitbucket.org/creachadair/stringset"

	"go.chromium.org/infra/build/srcbrowse/config"
	"go.chromium.org/infra/build/srcbrowse/toolsupport/shutil"
)

// compdbEntry is one record of a compilation database.
// https://clang.llvm.org/docs/JSONCompilationDatabase.html
type compdbEntry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
	Output    string   `json:"output,omitempty"`
}

// compdbContent renders compile_commands.json for the resolved set.
// The profile style selects a single "command" string or an
// "arguments" vector per record.
func compdbContent(p *Path, profile *config.Profile, rs *ResolvedSet) ([]byte, error) {
	suffixes := Suffixes(profile.Suffixes)
	entries := make([]compdbEntry, 0, len(rs.Commands))
	seen := stringset.New()
	for _, cc := range rs.Commands {
		if len(cc.Arguments) == 0 {
			continue
		}
		src, err := p.Normalize("", cc.Source)
		if err != nil {
			return nil, err
		}
		if !suffixes.Accepts(src) {
			continue
		}
		out, err := p.Normalize("", cc.Output)
		if err != nil {
			return nil, err
		}
		dir := path.Clean(cc.Directory)
		if dir == "" {
			dir = "."
		}
		key := dir + "\x00" + src + "\x00" + out
		if seen.Contains(key) {
			continue
		}
		seen.Add(key)
		var absDir, file, output string
		if IsAbsPath(dir) {
			// cannot relativize against a foreign directory.
			absDir = dir
			file = absUnder(p.Root, src)
			output = absUnder(p.Root, out)
		} else {
			absDir = filepath.ToSlash(filepath.Join(p.Root, filepath.FromSlash(dir)))
			file = relTo(dir, src)
			output = relTo(dir, out)
		}
		if profile.AbsoluteFiles {
			file = absUnder(p.Root, src)
		}
		e := compdbEntry{
			Directory: absDir,
			File:      file,
			Output:    output,
		}
		if profile.Style == "arguments" {
			e.Arguments = cc.Arguments
		} else {
			e.Command = shutil.Join(cc.Arguments)
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].File != entries[j].File {
			return entries[i].File < entries[j].File
		}
		return entries[i].Output < entries[j].Output
	})
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// absUnder returns p absolute, joining project relative paths to the
// root.
func absUnder(root, p string) string {
	if IsAbsPath(p) {
		return p
	}
	return filepath.ToSlash(filepath.Join(root, filepath.FromSlash(p)))
}

// relTo returns the clean project relative path to, relative to the
// from directory. Absolute paths stay as is.
func relTo(from, to string) string {
	if IsAbsPath(to) || from == "." || from == "" {
		return to
	}
	prefix := from + "/"
	if strings.HasPrefix(to, prefix) {
		return to[len(prefix):]
	}
	up := strings.Count(from, "/") + 1
	return strings.Repeat("../", up) + to
}
