// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package xcodeutil provides utilities to express bazel execroot relative
// paths and flags as Xcode build settings.
package xcodeutil

import "strings"

var placeholders = strings.NewReplacer(
	// Use Xcode set `DEVELOPER_DIR`
	"__BAZEL_XCODE_DEVELOPER_DIR__", "$(DEVELOPER_DIR)",
	// Use Xcode set `SDKROOT`
	"__BAZEL_XCODE_SDKROOT__", "$(SDKROOT)",
)

// SubstitutePlaceholders replaces bazel's Xcode placeholders in s
// with the Xcode build setting references.
func SubstitutePlaceholders(s string) string {
	return placeholders.Replace(s)
}

// BuildSettingPath returns path expressed relative to Xcode build setting
// variables.
// Applying it to its own result returns the same string.
func BuildSettingPath(path string) string {
	if p, ok := trimDir(path, "bazel-out"); ok {
		return "$(BAZEL_OUT)" + p
	}
	if p, ok := trimDir(path, "external"); ok {
		return "$(BAZEL_EXTERNAL)" + p
	}
	if p, ok := trimDir(path, ".."); ok {
		return "$(BAZEL_EXTERNAL)" + p
	}
	if path == "." {
		// execroot, since includes can reference "external/" and "bazel-out/".
		return "$(PROJECT_DIR)"
	}
	s := SubstitutePlaceholders(path)
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "$(") {
		return s
	}
	return "$(SRCROOT)/" + s
}

// trimDir returns path without the leading dir if path is dir or in dir.
// The returned path keeps its leading "/".
func trimDir(path, dir string) (string, bool) {
	if path == dir {
		return "", true
	}
	if strings.HasPrefix(path, dir+"/") {
		return path[len(dir):], true
	}
	return "", false
}
