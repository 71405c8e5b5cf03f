// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package depstore collects compiler emitted dependency files.
//
// A build configured with dependency output (e.g. gcc -MMD) leaves a
// make style record per object next to it in the build directory.
// The store scans those records and answers which headers a
// translation unit pulled in, so tag and cross reference sets can
// include headers the build graph never declares.
//
// The store distinguishes "no headers" from "no record": a
// translation unit that was never compiled with dependency output is
// unknown, not header free.
package depstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"bitbucket.org/creachadair/stringset"
	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"go.chromium.org/infra/build/srcbrowse/browse"
	"go.chromium.org/infra/build/srcbrowse/toolsupport/makeutil"
)

// DefaultSuffix is the dependency file suffix compilers emit by
// convention.
const DefaultSuffix = ".d"

// parsed dependency files kept across rescans.
const cacheSize = 4096

type depRecord struct {
	tu      string
	headers []string
}

type cacheEntry struct {
	mtime time.Time
	size  int64
	recs  []depRecord
}

// Store indexes dependency records found under one directory.
type Store struct {
	p *browse.Path
	// literal keeps variant paths as is. Record inputs are indexed
	// by resolver identity through p, but the dependency files
	// themselves are physical build artifacts and must be named by
	// the path that exists on disk.
	literal *browse.Path
	dir     string // root relative; relative record paths resolve against it
	suffix  string

	cache *lru.Cache[string, cacheEntry]

	mu      sync.Mutex
	headers map[string][]string
	nfiles  int
}

// New creates a store scanning dir for files with the given suffix.
// dir is relative to p.Root; relative paths inside records are
// interpreted relative to dir, matching a compiler run there.
func New(p *browse.Path, dir, suffix string) (*Store, error) {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	cache, err := lru.New[string, cacheEntry](cacheSize)
	if err != nil {
		return nil, err
	}
	literal := *p
	literal.KeepVariant = true
	return &Store{
		p:       p,
		literal: &literal,
		dir:     dir,
		suffix:  suffix,
		cache:   cache,
	}, nil
}

// Scan rebuilds the index from the files currently on disk.
// A missing directory is not an error; it just leaves every
// translation unit unknown, as before the first build.
func (s *Store) Scan(ctx context.Context) error {
	sets := make(map[string]stringset.Set)
	nfiles := 0
	root := s.dir
	if !filepath.IsAbs(root) {
		root = filepath.Join(s.p.Root, root)
	}
	err := filepath.WalkDir(root, func(fname string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), s.suffix) {
			return nil
		}
		nfiles++
		recs, err := s.records(fname, d)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			set, ok := sets[rec.tu]
			if !ok {
				set = stringset.New()
				sets[rec.tu] = set
			}
			set.Add(rec.headers...)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugf("depstore: %s not found, no dependency records", root)
		err = nil
	}
	if err != nil {
		return err
	}
	headers := make(map[string][]string, len(sets))
	for tu, set := range sets {
		headers[tu] = set.Elements()
	}
	log.Debugf("depstore: %d translation units from %d files in %s", len(headers), nfiles, root)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers = headers
	s.nfiles = nfiles
	return nil
}

// records returns the parsed records of one dependency file, reusing
// the cached parse when size and mtime are unchanged.
func (s *Store) records(fname string, d fs.DirEntry) ([]depRecord, error) {
	info, err := d.Info()
	if err != nil {
		return nil, err
	}
	if e, ok := s.cache.Get(fname); ok && e.size == info.Size() && e.mtime.Equal(info.ModTime()) {
		return e.recs, nil
	}
	recs, err := s.parse(fname)
	if err != nil {
		return nil, err
	}
	s.cache.Add(fname, cacheEntry{
		mtime: info.ModTime(),
		size:  info.Size(),
		recs:  recs,
	})
	return recs, nil
}

func (s *Store) parse(fname string) ([]depRecord, error) {
	b, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	var recs []depRecord
	for _, rec := range makeutil.ParseRecords(b) {
		if len(rec.Inputs) == 0 {
			// phony or input free record, nothing to index.
			continue
		}
		tu, err := s.p.Normalize(s.dir, rec.Inputs[0])
		if err != nil {
			log.Warnf("depstore: %s: bad record input %q: %v", fname, rec.Inputs[0], err)
			continue
		}
		var headers []string
		for _, in := range rec.Inputs[1:] {
			h, err := s.p.Normalize(s.dir, in)
			if err != nil {
				log.Warnf("depstore: %s: bad record input %q: %v", fname, in, err)
				continue
			}
			headers = append(headers, h)
		}
		recs = append(recs, depRecord{tu: tu, headers: headers})
	}
	return recs, nil
}

// Headers returns the headers recorded for the translation unit.
// ok reports whether any record mentions tu; a known record with no
// headers returns (nil, true).
func (s *Store) Headers(tu string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	headers, ok := s.headers[tu]
	return slices.Clone(headers), ok
}

// Len returns the number of translation units with records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.headers)
}

// Files returns the dependency files indexed by the last Scan, root
// relative where possible, sorted. They participate in staleness
// checks of generated artifacts.
func (s *Store) Files(ctx context.Context) ([]string, error) {
	root := s.dir
	if !filepath.IsAbs(root) {
		root = filepath.Join(s.p.Root, root)
	}
	var files []string
	err := filepath.WalkDir(root, func(fname string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), s.suffix) {
			return nil
		}
		p, err := s.literal.Normalize("", fname)
		if err != nil {
			return err
		}
		files = append(files, p)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
	}
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}
