// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"path"
	"strings"
)

// Suffixes is the ordered allow-list of file name suffixes a tool
// accepts. The empty string matches names without an extension
// (extensionless system headers). "*" anywhere in the list accepts
// every name, disabling filtering for the tool.
type Suffixes []string

// Match reports whether fname is accepted and returns the matched
// suffix. The longest matching suffix wins so that suffix keyed
// lookups (compile command selection) pick the most specific entry.
// Exclusion is routine filtering, not an error.
func (s Suffixes) Match(fname string) (string, bool) {
	base := path.Base(fname)
	var best string
	var ok bool
	for _, suf := range s {
		switch suf {
		case "*":
			if !ok {
				best, ok = suf, true
			}
		case "":
			if !ok && !hasExt(base) {
				best, ok = suf, true
			}
		default:
			if !strings.HasSuffix(base, suf) {
				continue
			}
			if !ok || best == "*" || best == "" || len(suf) > len(best) {
				best, ok = suf, true
			}
		}
	}
	return best, ok
}

// Accepts reports whether fname passes the suffix filter.
func (s Suffixes) Accepts(fname string) bool {
	_, ok := s.Match(fname)
	return ok
}

// hasExt reports whether base has a file extension. A name whose
// only dot is the leading one (".gitignore") has no extension.
func hasExt(base string) bool {
	i := strings.LastIndexByte(base, '.')
	return i > 0
}
