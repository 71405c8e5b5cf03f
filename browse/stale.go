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
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/srcbrowse/config"
)

// Input is one file whose change invalidates generated artifacts.
type Input struct {
	// Kind is one of "manifest", "config", "toolconfig", "tool",
	// "deps", "source".
	Kind string
	// Path is root relative, or absolute for files outside the
	// project.
	Path string
}

// CollectInputs lists the staleness inputs of one tool profile: the
// build graph manifest, the loaded config file, the tool's own
// config file when present, the resolved tool binary, every
// dependency record file, and the resolved source set itself.
// Sorted by kind, then path.
func CollectInputs(ctx context.Context, p *Path, cfg *config.Config, profile *config.Profile, manifest string, depsFiles, sources []string) ([]Input, error) {
	var inputs []Input
	if manifest != "" {
		inputs = append(inputs, Input{Kind: "manifest", Path: manifest})
	}
	if cfg != nil && cfg.ConfigFile != "" {
		inputs = append(inputs, Input{Kind: "config", Path: cfg.ConfigFile})
	}
	if profile.ConfigFile != "" {
		// tools read their own config implicitly; it counts only
		// when it exists.
		if _, err := os.Stat(absUnder(p.Root, profile.ConfigFile)); err == nil {
			inputs = append(inputs, Input{Kind: "toolconfig", Path: profile.ConfigFile})
		}
	}
	if bin := toolBinary(profile.Command); bin != "" {
		inputs = append(inputs, Input{Kind: "tool", Path: bin})
	}
	for _, f := range depsFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inputs = append(inputs, Input{Kind: "deps", Path: f})
	}
	for _, f := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inputs = append(inputs, Input{Kind: "source", Path: f})
	}
	sort.Slice(inputs, func(i, j int) bool {
		if inputs[i].Kind != inputs[j].Kind {
			return inputs[i].Kind < inputs[j].Kind
		}
		return inputs[i].Path < inputs[j].Path
	})
	return inputs, nil
}

// toolBinary resolves the tool executable, so artifacts regenerate
// after a tool upgrade. Empty when the tool is not installed.
func toolBinary(command string) string {
	if command == "" {
		return ""
	}
	if strings.ContainsRune(command, os.PathSeparator) || strings.ContainsRune(command, '/') {
		return command
	}
	bin, err := exec.LookPath(command)
	if err != nil {
		log.Debugf("stale: %s not installed: %v", command, err)
		return ""
	}
	return bin
}

// IsStale reports whether outputs must be regenerated: an output is
// missing, or some input is newer than the oldest output. Missing
// inputs are skipped; a first build with no dependency records is
// not an error.
func IsStale(p *Path, outputs []string, inputs []Input) (bool, string, error) {
	if len(outputs) == 0 {
		return true, "no outputs planned", nil
	}
	var oldest time.Time
	for i, out := range outputs {
		info, err := os.Stat(absUnder(p.Root, out))
		if errors.Is(err, fs.ErrNotExist) {
			return true, fmt.Sprintf("missing %s", out), nil
		}
		if err != nil {
			return false, "", err
		}
		if i == 0 || info.ModTime().Before(oldest) {
			oldest = info.ModTime()
		}
	}
	for _, in := range inputs {
		info, err := os.Stat(absUnder(p.Root, in.Path))
		if err != nil {
			log.Debugf("stale: skip %s %s: %v", in.Kind, in.Path, err)
			continue
		}
		if info.ModTime().After(oldest) {
			return true, fmt.Sprintf("%s %s is newer", in.Kind, in.Path), nil
		}
	}
	return false, "", nil
}
