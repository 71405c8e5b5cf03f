// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build unix

package browse

import (
	"golang.org/x/sys/unix"
)

// ArgumentLimit returns the command line byte budget for one exec.
// The kernel allows a quarter of the stack limit for argument and
// environment strings.
func ArgumentLimit() int {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_STACK, &rlim); err != nil {
		return defaultArgLimit
	}
	limit := rlim.Cur / 4
	if limit < minArgLimit {
		return minArgLimit
	}
	if limit > maxArgLimit {
		return maxArgLimit
	}
	return int(limit)
}
