// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"fmt"
	"strings"
)

// QuotePath encodes a source path for line oriented tool input
// (stdin lists and namefiles). A path containing a space, double
// quote or backslash is wrapped in double quotes with internal
// double quotes and backslashes escaped by a preceding backslash.
// cscope parses exactly this form; a misquoted line makes the tool
// silently misparse file boundaries.
func QuotePath(fname string) string {
	if !strings.ContainsAny(fname, " \"\\") {
		return fname
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(fname); i++ {
		switch fname[i] {
		case '"', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteByte(fname[i])
	}
	sb.WriteByte('"')
	return sb.String()
}

// UnquotePath decodes a line produced by QuotePath.
func UnquotePath(line string) (string, error) {
	if !strings.HasPrefix(line, `"`) {
		return line, nil
	}
	if len(line) < 2 || !strings.HasSuffix(line, `"`) {
		return "", fmt.Errorf("unterminated quoted path %q", line)
	}
	var sb strings.Builder
	for i := 1; i < len(line)-1; i++ {
		c := line[i]
		switch c {
		case '\\':
			i++
			if i >= len(line)-1 {
				return "", fmt.Errorf("unterminated escape in %q", line)
			}
			c = line[i]
		case '"':
			return "", fmt.Errorf("unescaped quote in %q", line)
		}
		sb.WriteByte(c)
	}
	return sb.String(), nil
}
