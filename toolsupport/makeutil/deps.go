// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package makeutil provides utilities for make style dependency files.
package makeutil

import (
	"bytes"
	"io/fs"
	"strings"

	"github.com/charmbracelet/log"
)

// Record is one rule of a make style dependency file.
//
//	<target> ...: <input> ...
//
// Compilers emit one record per translation unit (gcc/clang -MD),
// plus phony records with no inputs when -MP is used.
type Record struct {
	Targets []string
	Inputs  []string
}

// ParseRecordsFile parses *.d file in fname on fsys into records.
func ParseRecordsFile(fsys fs.FS, fname string) ([]Record, error) {
	if fname == "" {
		return nil, nil
	}
	b, err := fs.ReadFile(fsys, fname)
	if err != nil {
		return nil, err
	}
	recs := ParseRecords(b)
	log.Debugf("deps %s => %d records", fname, len(recs))
	return recs, nil
}

// ParseRecords parses deps and returns its records.
//
// Inputs are space separated.
// '\'+newline is space.
// '\'+space is escaped space (not separator).
// Other backslashes are kept as is.
func ParseRecords(b []byte) []Record {
	var recs []Record
	for len(b) > 0 {
		var line []byte
		line, b = nextLine(b)
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		i := bytes.IndexByte(line, ':')
		if i < 0 {
			continue
		}
		targets := tokens(line[:i])
		if len(targets) == 0 {
			continue
		}
		recs = append(recs, Record{
			Targets: targets,
			Inputs:  tokens(line[i+1:]),
		})
	}
	return recs
}

// ParseDeps parses deps and returns a list of inputs.
// Inputs of all records are merged, first occurrence wins.
func ParseDeps(b []byte) []string {
	var inputs []string
	seen := make(map[string]bool)
	for _, rec := range ParseRecords(b) {
		for _, in := range rec.Inputs {
			if seen[in] {
				continue
			}
			seen[in] = true
			inputs = append(inputs, in)
		}
	}
	return inputs
}

// nextLine cuts the next logical line.
// '\'+newline does not terminate a line.
func nextLine(b []byte) (line, rest []byte) {
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case '\\':
			if i+1 < len(b) && b[i+1] == '\n' {
				i++
				continue
			}
			if i+2 < len(b) && b[i+1] == '\r' && b[i+2] == '\n' {
				i += 2
				continue
			}
		case '\n':
			return b[:i], b[i+1:]
		}
	}
	return b, nil
}

func tokens(s []byte) []string {
	var token string
	var tokens []string
	for len(s) > 0 {
		token, s = nextToken(s)
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func nextToken(s []byte) (string, []byte) {
	var sb strings.Builder
	// skip spaces
skipSpaces:
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '\n' {
			i++
			continue
		}
		if s[i] == '\\' && i+2 < len(s) && s[i+1] == '\r' && s[i+2] == '\n' {
			i += 2
			continue
		}
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			s = s[i:]
			break skipSpaces
		}
	}
	// extract next space not escaped
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case ' ':
				sb.WriteByte(s[i])
			case '\r', '\n':
				// '\'+newline is space
				return sb.String(), s[i+1:]
			default:
				sb.WriteByte('\\')
				sb.WriteByte(s[i])
			}
			continue
		}
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			return sb.String(), s[i+1:]
		}
		sb.WriteByte(s[i])
	}
	return sb.String(), nil
}
