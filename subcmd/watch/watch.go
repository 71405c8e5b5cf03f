// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package watch provides the watch subcommand: keep index artifacts
// fresh while sources change.
package watch

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/creachadair/stringset"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/maruel/subcommands"

	"go.chromium.org/infra/build/srcbrowse/browse"
	"go.chromium.org/infra/build/srcbrowse/config"
	"go.chromium.org/infra/build/srcbrowse/depstore"
	"go.chromium.org/infra/build/srcbrowse/execute/localexec"
	"go.chromium.org/infra/build/srcbrowse/project"
)

const usage = `regenerate index artifacts whenever their inputs change

 $ srcbrowse watch [-C <dir>] [-tools <names>] [targets...]

Generates every stale artifact once, then watches the project tree
and regenerates artifacts whose inputs changed: sources and headers,
dependency record files, the build graph manifest and the config
files. A manifest or config change reloads the whole project.

Changes are debounced so a compile touching hundreds of dependency
files triggers one regeneration, not hundreds. The tools' own output
files are ignored. Runs until interrupted.
`

const defaultDebounce = 500 * time.Millisecond

// directories never watched.
var skippedDirs = map[string]bool{
	".git": true,
}

// Cmd returns the Command for the `watch` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "watch [-C <dir>] [-tools <names>] [targets...]",
		ShortDesc: "regenerate index artifacts whenever their inputs change",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	project  project.Flags
	tools    string
	debounce time.Duration
	dryRun   bool
}

func (c *run) init() {
	c.project.Register(&c.Flags)
	c.Flags.StringVar(&c.tools, "tools", "", "comma separated tool names to keep fresh; default is every configured tool")
	c.Flags.DurationVar(&c.debounce, "debounce", defaultDebounce, "settle time after a change before regenerating")
	c.Flags.BoolVar(&c.dryRun, "n", false, "print what would be written and run, without running it")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	w := &watcher{
		flags:    &c.project,
		debounce: c.debounce,
		dryRun:   c.dryRun,
		targets:  args,
	}
	if c.tools != "" {
		for _, name := range strings.Split(c.tools, ",") {
			w.tools = append(w.tools, strings.TrimSpace(name))
		}
	}
	if err := w.open(ctx); err != nil {
		return err
	}
	w.build(ctx)
	return w.loop(ctx)
}

// watcher regenerates artifacts when watched inputs change.
type watcher struct {
	flags    *project.Flags
	tools    []string
	targets  []string
	debounce time.Duration
	dryRun   bool

	proj     *project.Project
	profiles []*config.Profile

	// reload holds the files forcing a full project reload, root
	// relative: the manifest and the config files.
	reload stringset.Set
	// outputs holds the artifacts the tools themselves write;
	// rebuilding on those would spin.
	outputs    stringset.Set
	suffixes   []browse.Suffixes
	depsSuffix string

	// reopen records that a reload file changed; the next build
	// reopens the project first.
	reopen bool
}

// open loads the project and derives the event filters from it.
func (w *watcher) open(ctx context.Context) error {
	proj, err := project.Open(ctx, w.flags)
	if err != nil {
		return err
	}
	profiles, err := proj.Tools(w.tools)
	if err != nil {
		return err
	}
	w.proj = proj
	w.profiles = profiles
	w.reload = stringset.New(proj.Manifest)
	if proj.Config.ConfigFile != "" {
		w.reload.Add(proj.Config.ConfigFile)
	}
	w.outputs = stringset.New()
	w.suffixes = w.suffixes[:0]
	for _, profile := range profiles {
		if profile.ConfigFile != "" {
			w.reload.Add(profile.ConfigFile)
		}
		w.outputs.Add(browse.ProfileOutputs(profile)...)
		if profile.GuardFile != "" {
			w.outputs.Add(profile.GuardFile)
		}
		w.suffixes = append(w.suffixes, browse.Suffixes(profile.Suffixes))
	}
	w.depsSuffix = proj.Config.DepsSuffix
	if w.depsSuffix == "" {
		w.depsSuffix = depstore.DefaultSuffix
	}
	return nil
}

// build regenerates stale artifacts. Failures are logged; the watch
// keeps running.
func (w *watcher) build(ctx context.Context) {
	if w.reopen {
		if err := w.open(ctx); err != nil {
			// stays pending; the next change retries the reload.
			log.Errorf("watch: reload: %v", err)
			return
		}
		w.reopen = false
	} else if w.proj.Deps != nil {
		if err := w.proj.Deps.Scan(ctx); err != nil {
			log.Errorf("watch: deps rescan: %v", err)
			return
		}
	}
	b, err := w.proj.Builder(ctx, localexec.LocalExec{}, true, w.dryRun)
	if err != nil {
		log.Errorf("watch: %v", err)
		return
	}
	if err := b.BuildAll(ctx, w.profiles, w.targets); err != nil {
		log.Errorf("watch: %v", err)
	}
}

// loop watches the project tree until the context is canceled.
func (w *watcher) loop(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := addWatchDirs(fw, w.proj.Root); err != nil {
		return err
	}
	log.Infof("watching %s (%d dirs)", w.proj.Root, len(fw.WatchList()))

	debounce := time.NewTimer(w.debounce)
	debounce.Stop()
	defer debounce.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				addIfDirectory(fw, event.Name)
			}
			if !w.relevant(event) {
				continue
			}
			log.Debugf("watch: %s", event)
			debounce.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warnf("watch: %v", err)
		case <-debounce.C:
			w.build(ctx)
		}
	}
}

// relevant reports whether the event can invalidate an artifact.
func (w *watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	rel, err := w.proj.Path.Normalize("", event.Name)
	if err != nil {
		return false
	}
	if w.outputs.Contains(rel) {
		return false
	}
	if w.reload.Contains(rel) {
		w.reopen = true
		return true
	}
	if strings.HasSuffix(rel, w.depsSuffix) {
		return true
	}
	for _, s := range w.suffixes {
		if s.Accepts(rel) {
			return true
		}
	}
	return false
}

// addWatchDirs watches every directory under root. fsnotify watches
// are not recursive; each directory is added on its own.
func addWatchDirs(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(fname string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skippedDirs[d.Name()] {
			return filepath.SkipDir
		}
		return fw.Add(fname)
	})
}

// addIfDirectory starts watching a newly created directory tree.
func addIfDirectory(fw *fsnotify.Watcher, fname string) {
	info, err := os.Stat(fname)
	if err != nil || !info.IsDir() {
		return
	}
	if err := addWatchDirs(fw, fname); err != nil {
		log.Warnf("watch: %s: %v", fname, err)
	}
}
