// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil provides utilities for shell command lines.
package shutil

import (
	"errors"
	"fmt"
	"strings"
)

func safe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '@', '%', '+', '=', ':', ',', '.', '/', '-', '_':
		return true
	}
	return false
}

// Escape quotes s for a POSIX shell command line.
func Escape(s string) string {
	if s == "" {
		return "''"
	}
	needs := false
	for i := 0; i < len(s); i++ {
		if !safe(s[i]) {
			needs = true
			break
		}
	}
	if !needs {
		return s
	}
	// single quotes pass everything except the quote itself.
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Join joins command line args to a single string, quoted so the
// result can be pasted back into a shell.
func Join(args []string) string {
	escaped := make([]string, 0, len(args))
	for _, arg := range args {
		escaped = append(escaped, Escape(arg))
	}
	return strings.Join(escaped, " ")
}

// Split splits a command line into argv.
// It understands double and single quotes and backslash escapes, and
// returns an error for metacharacters that would need a real shell.
func Split(cmdline string) ([]string, error) {
	var args []string
	var sb strings.Builder
	cur := false // mid-argument, so "" survives as an arg
	escaped := false
	quote := byte(0)
	for i := 0; i < len(cmdline); i++ {
		ch := cmdline[i]
		switch {
		case escaped:
			sb.WriteByte(ch)
			escaped = false
		case quote == '\'':
			if ch == '\'' {
				quote = 0
			} else {
				sb.WriteByte(ch)
			}
		case quote == '"':
			switch ch {
			case '"':
				quote = 0
			case '\\':
				escaped = true
			default:
				sb.WriteByte(ch)
			}
		case ch == '\\':
			escaped = true
			cur = true
		case ch == '\'' || ch == '"':
			quote = ch
			cur = true
		case ch == ' ' || ch == '\t':
			if cur {
				args = append(args, sb.String())
				sb.Reset()
				cur = false
			}
		case strings.IndexByte(";&|<>$#`", ch) >= 0:
			return nil, fmt.Errorf("cmdline contains shell metachar %c", ch)
		default:
			sb.WriteByte(ch)
			cur = true
		}
	}
	if escaped {
		return nil, errors.New("unterminated escape")
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if cur {
		args = append(args, sb.String())
	}
	if len(args) > 0 && strings.Contains(args[0], "=") {
		// a VAR=x prefix would need a shell to apply.
		return nil, fmt.Errorf("argv[0] is env set %q", args[0])
	}
	return args, nil
}
