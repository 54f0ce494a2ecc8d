// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

import "strings"

// skipArgs maps clang flags to the number of args to drop, including
// the flag itself.
var skipArgs = map[string]int{
	// Xcode sets these, and no way to unset them.
	"-isysroot":                       2,
	"-mios-simulator-version-min":     1,
	"-miphoneos-version-min":          1,
	"-mmacosx-version-min":            1,
	"-mtvos-simulator-version-min":    1,
	"-mtvos-version-min":              1,
	"-mwatchos-simulator-version-min": 1,
	"-mwatchos-version-min":           1,
	"-target":                         2,

	// Xcode sets input and output paths.
	"-c": 2,
	"-o": 2,

	// set by the project generator.
	"-fobjc-arc":    1,
	"-fno-objc-arc": 1,

	"-MD": 1,
	"-MF": 2,

	"-index-ignore-system-symbols": 1,
	"-index-store-path":            2,

	"-fdebug-prefix-map": 2,

	"-fcolor-diagnostics": 1,

	// wrapped_clang specific.
	"DEBUG_PREFIX_MAP_PWD": 1,
}

// absolutePathArgs are flags whose path is not resolved relative to
// -working-directory.
var absolutePathArgs = []string{
	"--config",
	"-ivfsoverlay",
}

func isAbsolutePathArg(arg string) bool {
	for _, flag := range absolutePathArgs {
		if arg == flag {
			return true
		}
	}
	return false
}

// rootArg returns arg up to the first "=".
func rootArg(arg string) string {
	root, _, _ := strings.Cut(arg, "=")
	return root
}
