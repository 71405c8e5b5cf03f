// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build windows

package browse

// ArgumentLimit returns the command line byte budget for one exec.
// CreateProcess caps the command line at 32767 UTF-16 units.
func ArgumentLimit() int {
	return 32767
}
