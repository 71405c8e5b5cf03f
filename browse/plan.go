// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"path"
	"sort"
	"strings"

	"go.chromium.org/infra/build/srcbrowse/config"
	"go.chromium.org/infra/build/srcbrowse/execute"
)

// Plan is one tool's invocations and support artifacts over a
// resolved source set. Building a plan touches no files; the same
// inputs plan the same bytes and argv, so plans can be diffed and
// dry run.
type Plan struct {
	ToolName string

	// Files is the source list the plan covers.
	Files []string

	// Cmds are the invocations to run, one per output format.
	// Command IDs are assigned at run time.
	Cmds []*execute.Cmd

	// Artifacts maps root relative paths to rendered content,
	// written before any invocation runs.
	Artifacts map[string][]byte

	// Outputs are all artifact paths the plan produces, sorted.
	Outputs []string

	// GuardFile is moved aside while the tool scans directories.
	GuardFile string
}

// BuildPlan plans the profile's invocations over the resolved set.
// limit is the command line byte budget, normally ArgumentLimit();
// an argv-list transport that cannot fit returns ArgumentLimitError.
func BuildPlan(p *Path, profile *config.Profile, rs *ResolvedSet, limit int) (*Plan, error) {
	plan := &Plan{
		ToolName:  profile.Name,
		Files:     rs.Files,
		Artifacts: map[string][]byte{},
	}
	output := path.Clean(profile.Output)

	if profile.Kind == config.CompDBWriter {
		b, err := compdbContent(p, profile, rs)
		if err != nil {
			return nil, err
		}
		plan.Artifacts[output] = b
		plan.Outputs = []string{output}
		return plan, nil
	}

	if profile.Namefile != "" {
		nf := path.Clean(profile.Namefile)
		plan.Artifacts[nf] = NamefileContent(profile, rs.Files)
		plan.Outputs = append(plan.Outputs, nf)
	}
	if profile.Transport == config.DirScan {
		plan.GuardFile = profile.GuardFile
	}

	// argv prefix shared by every format invocation.
	prefix := []string{profile.Command}
	prefix = append(prefix, profile.Flags...)
	for _, inc := range profile.Includes {
		prefix = append(prefix, profile.IncludeFlag, inc)
	}
	for _, def := range profile.Defines {
		prefix = append(prefix, profile.DefineFlag, def)
	}
	for _, sym := range profile.Symbols {
		prefix = append(prefix, profile.SymbolFlag, sym)
	}
	if profile.ConfigFlag != "" && profile.ConfigFile != "" {
		prefix = append(prefix, profile.ConfigFlag, profile.ConfigFile)
	}

	var stdin []byte
	if profile.Transport == config.StdinList {
		stdin = listPayload(rs.Files)
	}

	for _, key := range formatKeys(profile.Formats) {
		out := formatOutput(output, key)
		args := append([]string(nil), prefix...)
		args = append(args, profile.Formats[key]...)
		if !profile.OutputDirArg && profile.OutputFlag != "" {
			args = append(args, profile.OutputFlag, out)
		}
		switch profile.Transport {
		case config.ArgvList:
			args = append(args, rs.Files...)
		case config.StdinList:
			args = append(args, profile.StdinFlags...)
		case config.DirScan:
		}
		if profile.OutputDirArg {
			// gtags convention: the database directory is a
			// trailing positional argument.
			args = append(args, path.Dir(out))
		}
		if profile.Transport == config.ArgvList {
			if n := argvSize(args, nil); n > limit {
				return nil, &ArgumentLimitError{Tool: profile.Name, Size: n, Limit: limit}
			}
		}
		cmd := &execute.Cmd{
			Desc:     strings.ToUpper(profile.Name) + " " + out,
			ToolName: profile.Name,
			Args:     args,
			ExecRoot: p.Root,
			Stdin:    stdin,
			Outputs:  outputPaths(out, profile.SideOutputs),
		}
		plan.Cmds = append(plan.Cmds, cmd)
		plan.Outputs = append(plan.Outputs, cmd.Outputs...)
	}
	sort.Strings(plan.Outputs)
	return plan, nil
}

// ProfileOutputs lists every artifact path the profile produces,
// sorted, without resolving anything. Watchers use it to tell the
// tools' own outputs apart from source edits.
func ProfileOutputs(profile *config.Profile) []string {
	output := path.Clean(profile.Output)
	if profile.Kind == config.CompDBWriter {
		return []string{output}
	}
	var outs []string
	if profile.Namefile != "" {
		outs = append(outs, path.Clean(profile.Namefile))
	}
	for _, key := range formatKeys(profile.Formats) {
		outs = append(outs, outputPaths(formatOutput(output, key), profile.SideOutputs)...)
	}
	sort.Strings(outs)
	return outs
}

// formatKeys returns the format names in invocation order.
func formatKeys(formats map[string][]string) []string {
	if len(formats) == 0 {
		return []string{""}
	}
	keys := make([]string, 0, len(formats))
	for k := range formats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatOutput inserts the format key before the output extension:
// callgraph.cflow with key ".reverse" becomes callgraph.reverse.cflow.
func formatOutput(output, key string) string {
	if key == "" {
		return output
	}
	ext := path.Ext(output)
	return strings.TrimSuffix(output, ext) + key + ext
}

// outputPaths lists the artifacts of one invocation: dotted side
// outputs append to the primary path (cscope.out.in), others are
// siblings in its directory (GRTAGS).
func outputPaths(output string, side []string) []string {
	outs := []string{output}
	for _, s := range side {
		if strings.HasPrefix(s, ".") {
			outs = append(outs, output+s)
		} else {
			outs = append(outs, path.Join(path.Dir(output), s))
		}
	}
	return outs
}

// listPayload renders the file list fed to a stdin-list tool, one
// quoted path per line.
func listPayload(files []string) []byte {
	var sb strings.Builder
	for _, f := range files {
		sb.WriteString(QuotePath(f))
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}
