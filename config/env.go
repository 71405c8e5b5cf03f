// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// LoadEnv loads the optional .env file from the project root into
// the process environment, so ctx.env.get in the config file and
// tool command overrides ($CSCOPE, $CTAGS, ...) see project local
// settings. Variables already set in the environment win.
func LoadEnv(root string) {
	fname := filepath.Join(root, ".env")
	if err := godotenv.Load(fname); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		log.Warnf("failed to load %s: %v", fname, err)
	}
}
