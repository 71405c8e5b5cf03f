// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"strings"

	"go.chromium.org/infra/build/srcbrowse/config"
)

// NamefileContent renders the persisted companion list file of a
// profile, in the layout cscope expects of cscope.files: the flags
// the tool accepts inside the file one per line, then include
// directives, then the quoted file list.
//
// files must be the resolved set's files, in resolved order, so the
// namefile mirrors the list the triggering invocation used and an
// unchanged source set rewrites byte identical.
func NamefileContent(profile *config.Profile, files []string) []byte {
	var sb strings.Builder
	for _, flag := range profile.Flags {
		if persistedFlag(profile.NamefileFlags, flag) {
			sb.WriteString(flag)
			sb.WriteByte('\n')
		}
	}
	if profile.IncludeFlag != "" && persistedFlag(profile.NamefileFlags, profile.IncludeFlag) {
		for _, inc := range profile.Includes {
			sb.WriteString(profile.IncludeFlag)
			sb.WriteByte(' ')
			sb.WriteString(QuotePath(inc))
			sb.WriteByte('\n')
		}
	}
	for _, f := range files {
		sb.WriteString(QuotePath(f))
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// persistedFlag reports whether the flag may appear inside the
// namefile. Allow entries match exactly or as a prefix, for flags
// with joined values like -p2.
func persistedFlag(allow []string, flag string) bool {
	for _, a := range allow {
		if flag == a || strings.HasPrefix(flag, a) {
			return true
		}
	}
	return false
}
