// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package swiftutil

import "strings"

// skipArgs maps swiftc flags to the number of args to drop, including
// the flag itself.
var skipArgs = map[string]int{
	// Xcode sets output paths.
	"-emit-module-path": 2,
	"-emit-object":      1,
	"-output-file-map":  2,

	// Xcode sets these, and no way to unset them.
	"-enable-bare-slash-regex": 1,
	"-module-name":             2,
	"-num-threads":             2,
	"-parse-as-library":        1,
	"-sdk":                     2,
	"-target":                  2,

	"-module-cache-path": 2,

	"-debug-prefix-map":  2,
	"-file-prefix-map":   2,
	"-gline-tables-only": 1,

	"-index-ignore-system-modules": 1,
	"-index-store-path":            2,

	"-enable-batch-mode": 1,

	"-emit-symbol-graph-dir": 2,

	// handled by previousArg.
	"-swift-version": 1,

	// re-added only if the following arg is kept.
	"-Xfrontend": 1,

	// swift worker specific.
	"-Xwrapped-swift": 1,
}

// skipFrontendArgs is skipArgs for args passed with -Xfrontend.
var skipFrontendArgs = map[string]int{
	"-color-diagnostics": 1,

	"-no-clang-module-breadcrumbs":    1,
	"-no-serialize-debugging-options": 1,
	"-serialize-debugging-options":    1,

	"-emit-symbol-graph": 1,
}

var compilationModes = map[string]string{
	"-incremental":                  "singlefile",
	"-no-whole-module-optimization": "singlefile",
	"-whole-module-optimization":    "wholemodule",
	"-wmo":                          "wholemodule",
}

// clangSearchPathArgs are clang search path flags, in match order.
// once reports whether the recorded arg is deduplicated.
var clangSearchPathArgs = []struct {
	flag string
	once bool
}{
	{flag: "-F", once: true},
	{flag: "-I", once: true},
	{flag: "-iquote", once: false},
	{flag: "-isystem", once: false},
}

func clangSearchPathArg(flag string) (once, ok bool) {
	for _, a := range clangSearchPathArgs {
		if a.flag == flag {
			return a.once, true
		}
	}
	return false, false
}

// frontendPathArgs are -Xfrontend flags whose next -Xfrontend arg is a path.
var frontendPathArgs = map[string]bool{
	// overlays
	"-explicit-swift-module-map-file": true,
	"-vfsoverlay":                     true,

	// plugins
	"-load-plugin-executable": true,
	"-load-plugin-library":    true,
}

// rootArg returns arg up to the first "=".
func rootArg(arg string) string {
	root, _, _ := strings.Cut(arg, "=")
	return root
}
