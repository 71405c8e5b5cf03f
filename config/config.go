// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config provides typed tool profiles for srcbrowse.
//
// A configuration is built once per run: tool defaults, then an
// optional Starlark config file on top, then environment variable
// overrides. It is read only afterwards.
package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/srcbrowse/toolsupport/shutil"
)

// Kind identifies one of the fixed tool variants.
type Kind int

const (
	// TagGenerator produces a symbol definition index (ctags, gtags).
	TagGenerator Kind = iota
	// CrossReferencer produces a symbol usage index (cscope).
	CrossReferencer
	// CallGrapher produces call tree listings (cflow).
	CallGrapher
	// CompDBWriter produces a JSON compilation database.
	CompDBWriter
)

func (k Kind) String() string {
	switch k {
	case TagGenerator:
		return "tag-generator"
	case CrossReferencer:
		return "cross-referencer"
	case CallGrapher:
		return "call-grapher"
	case CompDBWriter:
		return "compdb-writer"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Transport selects how the resolved source list reaches the tool.
type Transport int

const (
	// ArgvList appends sources as trailing command line arguments.
	ArgvList Transport = iota
	// StdinList feeds sources one per line on standard input.
	StdinList
	// DirScan passes scan root directories and lets the tool
	// discover files by its own recursion.
	DirScan
)

func (t Transport) String() string {
	switch t {
	case ArgvList:
		return "argv-list"
	case StdinList:
		return "stdin-list"
	case DirScan:
		return "directory-scan"
	}
	return fmt.Sprintf("transport(%d)", int(t))
}

// ParseTransport parses a transport name used in config files.
func ParseTransport(s string) (Transport, error) {
	switch s {
	case "argv-list":
		return ArgvList, nil
	case "stdin-list":
		return StdinList, nil
	case "directory-scan":
		return DirScan, nil
	}
	return 0, fmt.Errorf("unknown transport %q", s)
}

// Profile is the static configuration of one external tool.
// Not every field applies to every tool; the defaults in
// toolsupport/*util show which ones a tool uses.
type Profile struct {
	Name string
	Kind Kind

	// Command is the executable name or path. The environment
	// variable matching the upper cased tool name overrides it.
	Command string

	// Flags are static flags, always first on the command line.
	Flags []string

	// Suffixes is the ordered file suffix allow-list. "" matches
	// extensionless names, "*" disables filtering.
	Suffixes []string

	Transport Transport

	// IncludeFlag precedes each Includes entry (e.g. "-I").
	IncludeFlag string
	Includes    []string

	// DefineFlag precedes each Defines entry (e.g. "-D").
	DefineFlag string
	Defines    []string

	// SymbolFlag precedes each Symbols entry (cflow "--symbol").
	SymbolFlag string
	Symbols    []string

	// ConfigFlag selects ConfigFile on the command line. Tools that
	// read their config file implicitly leave ConfigFlag empty; the
	// file is still declared as a stale input.
	ConfigFlag string
	ConfigFile string

	// OutputFlag precedes the primary output path.
	OutputFlag string
	// Output is the primary artifact path, root relative.
	Output string
	// OutputDirArg appends the output's directory as a trailing
	// positional argument (gtags dbpath convention) instead of
	// using OutputFlag.
	OutputDirArg bool
	// SideOutputs are additional artifacts the tool writes next to
	// Output (cscope -q inverted indexes, gtags GRTAGS/GPATH).
	SideOutputs []string

	// StdinFlags make the tool read the source list from standard
	// input (cscope "-i -", ctags "-L -"). Appended only for the
	// stdin-list transport.
	StdinFlags []string

	// Formats maps an output name infix to extra flags; each entry
	// is one invocation (cflow direct/reverse/xref trees). Empty
	// means a single invocation with no extra flags.
	Formats map[string][]string

	// Namefile is the companion list file, "" for none.
	Namefile string
	// NamefileFlags is the flag subset persisted into the namefile.
	NamefileFlags []string

	// GuardFile is moved aside while a directory scan runs, so the
	// tool does not prefer a stale persisted file list over its
	// own recursive scan.
	GuardFile string
	// ScanRoots are directory scan roots, root relative.
	ScanRoots []string

	// PreferPreprocessed replaces a translation unit with its
	// captured preprocessed form (.i/.ii) when the build graph
	// recorded one for it.
	PreferPreprocessed bool

	// Style selects compilation database records carrying a single
	// "command" string or an "arguments" vector.
	Style string
	// AbsoluteFiles emits absolute file fields in the compilation
	// database.
	AbsoluteFiles bool
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	q := *p
	q.Flags = append([]string(nil), p.Flags...)
	q.Suffixes = append([]string(nil), p.Suffixes...)
	q.Includes = append([]string(nil), p.Includes...)
	q.Defines = append([]string(nil), p.Defines...)
	q.Symbols = append([]string(nil), p.Symbols...)
	q.SideOutputs = append([]string(nil), p.SideOutputs...)
	q.StdinFlags = append([]string(nil), p.StdinFlags...)
	q.NamefileFlags = append([]string(nil), p.NamefileFlags...)
	q.ScanRoots = append([]string(nil), p.ScanRoots...)
	if p.Formats != nil {
		q.Formats = make(map[string][]string, len(p.Formats))
		for k, v := range p.Formats {
			q.Formats[k] = append([]string(nil), v...)
		}
	}
	return &q
}

// Config is the orchestrator configuration for one project.
type Config struct {
	// Tools maps tool name to profile.
	Tools map[string]*Profile

	// KeepVariant keeps build variant directory paths literal
	// instead of rewriting them to the mirrored source location.
	KeepVariant bool

	// DepsDir overrides the directory scanned for compiler
	// dependency files; "" uses the manifest build directory.
	DepsDir string
	// DepsSuffix is the dependency file suffix.
	DepsSuffix string

	// ConfigFile is the Starlark file the config was loaded from,
	// "" when running on defaults only. Declared as a stale input
	// of every artifact.
	ConfigFile string
}

// Tool returns the profile for the tool name.
func (c *Config) Tool(name string) (*Profile, error) {
	p, ok := c.Tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return p, nil
}

// ApplyEnv applies environment variable overrides: the upper cased
// tool name overrides the tool command ($CSCOPE, $CTAGS, ...).
// An override may carry flags, e.g. CSCOPE="cscope -d"; they are
// prepended to the profile flags.
func (c *Config) ApplyEnv(getenv func(string) string) {
	for name, p := range c.Tools {
		if p.Kind == CompDBWriter {
			continue
		}
		v := getenv(strings.ToUpper(name))
		if v == "" {
			continue
		}
		args, err := shutil.Split(v)
		if err != nil || len(args) == 0 {
			log.Warnf("config: $%s=%q not usable as a command: %v", strings.ToUpper(name), v, err)
			continue
		}
		p.Command = args[0]
		if len(args) > 1 {
			p.Flags = append(args[1:], p.Flags...)
		}
	}
}

// Validate checks configuration shape before any invocation is built.
func (c *Config) Validate() error {
	if c.DepsSuffix != "" && !strings.HasPrefix(c.DepsSuffix, ".") {
		return fmt.Errorf(`deps_suffix %q: want leading "."`, c.DepsSuffix)
	}
	for name, p := range c.Tools {
		if err := p.validate(); err != nil {
			return fmt.Errorf("tools[%q]: %w", name, err)
		}
	}
	return nil
}

func (p *Profile) validate() error {
	if p.Name == "" {
		return fmt.Errorf("missing name")
	}
	if p.Kind != CompDBWriter && p.Command == "" {
		return fmt.Errorf("missing command")
	}
	if p.Output == "" {
		return fmt.Errorf("missing output")
	}
	switch p.Transport {
	case ArgvList, StdinList:
	case DirScan:
		if len(p.ScanRoots) == 0 {
			return fmt.Errorf("directory-scan without scan_roots")
		}
	default:
		return fmt.Errorf("unknown transport %v", p.Transport)
	}
	if p.Transport == StdinList && len(p.StdinFlags) == 0 {
		return fmt.Errorf("stdin-list without stdin_flags")
	}
	switch p.Style {
	case "", "command", "arguments":
	default:
		return fmt.Errorf(`style %q: want "command" or "arguments"`, p.Style)
	}
	if len(p.Includes) > 0 && p.IncludeFlag == "" {
		return fmt.Errorf("includes without include_flag")
	}
	if len(p.Defines) > 0 && p.DefineFlag == "" {
		return fmt.Errorf("defines without define_flag")
	}
	if len(p.Symbols) > 0 && p.SymbolFlag == "" {
		return fmt.Errorf("symbols without symbol_flag")
	}
	return nil
}
