// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browse

import (
	"fmt"
	"os"
	"path/filepath"
)

// ArtifactWriteError reports a failure writing a generated artifact.
type ArtifactWriteError struct {
	Path string
	Err  error
}

func (e *ArtifactWriteError) Error() string {
	return fmt.Sprintf("write artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactWriteError) Unwrap() error { return e.Err }

// WriteFileAtomic writes data to fname so readers never observe a
// partial file: content lands in a temp file in the same directory
// and replaces fname with a rename.
func WriteFileAtomic(fname string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(fname)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &ArtifactWriteError{Path: fname, Err: err}
	}
	f, err := os.CreateTemp(dir, filepath.Base(fname)+".tmp*")
	if err != nil {
		return &ArtifactWriteError{Path: fname, Err: err}
	}
	tmp := f.Name()
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp, mode)
	}
	if err == nil {
		err = os.Rename(tmp, fname)
	}
	if err != nil {
		os.Remove(tmp)
		return &ArtifactWriteError{Path: fname, Err: err}
	}
	return nil
}
