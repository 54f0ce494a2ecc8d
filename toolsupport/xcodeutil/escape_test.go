// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package xcodeutil

import "testing"

func TestEscapeForDebugSettings(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{in: "-I$(BAZEL_OUT)/x", want: "-I$(BAZEL_OUT)/x"},
		{in: "-DNAME=a b", want: `-DNAME=a\ b`},
		{in: `-DNAME="v"`, want: `-DNAME=\"v\"`},
	} {
		if got := EscapeForDebugSettings(tc.in); got != tc.want {
			t.Errorf("EscapeForDebugSettings(%q)=%q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestPBXProjEscape(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{in: "", want: `""`},
		{in: "YES", want: "YES"},
		{in: "$(BAZEL_OUT)/x", want: `"$(BAZEL_OUT)/x"`},
		{in: "1,2", want: `"1,2"`},
		{in: "path/to/Info.plist", want: "path/to/Info.plist"},
		{in: "a//b", want: `"a//b"`},
		{in: "a___b", want: `"a___b"`},
		{in: `-D"x" -I a`, want: `"-D\"x\" -I a"`},
		{in: "a\nb\tc\\", want: `"a\nb\tc\\"`},
	} {
		if got := PBXProjEscape(tc.in); got != tc.want {
			t.Errorf("PBXProjEscape(%q)=%q; want %q", tc.in, got, tc.want)
		}
	}
}
