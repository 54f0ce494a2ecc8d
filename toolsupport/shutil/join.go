// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil provides quoting helpers for command line args that are
// passed through Xcode build settings.
package shutil

import "strings"

// Join joins already quoted args to a single string.
func Join(args []string) string {
	return strings.Join(args, " ")
}

// Quote quotes arg with single quotes if it contains a space.
// Xcode splits flag build settings on spaces, honoring single quotes.
func Quote(arg string) string {
	if !strings.Contains(arg, " ") {
		return arg
	}
	return "'" + arg + "'"
}

// Unquote strips single quotes wrapping arg, if any.
// It is the inverse of Quote, and also converts a line of a bazel params file
// in `shell` format to `multiline` format.
func Unquote(arg string) string {
	if len(arg) >= 2 && strings.HasPrefix(arg, "'") && strings.HasSuffix(arg, "'") {
		return arg[1 : len(arg)-1]
	}
	return arg
}
