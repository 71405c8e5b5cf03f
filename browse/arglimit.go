// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"fmt"
	"os"
)

const (
	// fallback when the platform limit cannot be read.
	defaultArgLimit = 2 << 20

	minArgLimit = 128 << 10
	maxArgLimit = 16 << 20

	// per string pointer slot in the exec arg block.
	ptrSize = 8
)

// ArgumentLimitError reports a planned command line over the
// platform argument budget.
type ArgumentLimitError struct {
	Tool  string
	Size  int
	Limit int
}

func (e *ArgumentLimitError) Error() string {
	return fmt.Sprintf("%s: command line needs %d bytes, over the %d byte limit; use a stdin-list or directory-scan transport", e.Tool, e.Size, e.Limit)
}

// argvSize returns the exec cost of args and env in bytes, counting
// string bytes, NUL terminators and pointer slots. nil env means the
// inherited environment.
func argvSize(args, env []string) int {
	if env == nil {
		env = os.Environ()
	}
	n := 0
	for _, a := range args {
		n += len(a) + 1 + ptrSize
	}
	for _, e := range env {
		n += len(e) + 1 + ptrSize
	}
	return n
}
