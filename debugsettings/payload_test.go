// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package debugsettings

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOrderedSet(t *testing.T) {
	var s OrderedSet
	if !s.Add("$(BAZEL_OUT)/a") {
		t.Errorf("Add(a)=false; want true")
	}
	if !s.Add("$(BAZEL_OUT)/b") {
		t.Errorf("Add(b)=false; want true")
	}
	if s.Add("$(BAZEL_OUT)/a") {
		t.Errorf("Add(a) again=true; want false")
	}
	if diff := cmp.Diff([]string{"$(BAZEL_OUT)/a", "$(BAZEL_OUT)/b"}, s.Items()); diff != "" {
		t.Errorf("Items() diff -want +got:\n%s", diff)
	}
	if !s.Contains("$(BAZEL_OUT)/b") || s.Contains("$(BAZEL_OUT)/c") {
		t.Errorf("Contains mismatch for %q", s.Items())
	}

	var single OrderedSet
	single.Add("/x")
	single.Add("/x")
	if single.Len() != 1 {
		t.Errorf("Len()=%d; want 1", single.Len())
	}
}

func TestCollector_Merge(t *testing.T) {
	c := NewCollector()
	c.AddClangArg("-I$(BAZEL_OUT)/self", true)
	c.AddClangArg("-DSELF=1", false)
	c.AddSwiftInclude("$(BAZEL_OUT)/self")

	a := &Payload{
		ClangArgs: []string{
			"-I/x",
			"-iquote/q",
			"-I$(BAZEL_OUT)/self",
			"-Wno-error",
		},
		FrameworkIncludes: []string{"/fw"},
		SwiftIncludes:     []string{"$(BAZEL_OUT)/a", "$(BAZEL_OUT)/self"},
	}
	b := &Payload{
		ClangArgs: []string{
			"-Wno-error",
			"-I/x",
			"-iquote/q",
			"-DSELF=1",
			"-fmodule-map-file=$(BAZEL_OUT)/b.modulemap",
			"-ivfsoverlay/overlay.yaml",
		},
		FrameworkIncludes: []string{"/fw", "/fw2"},
		SwiftIncludes:     []string{"$(BAZEL_OUT)/b", "$(BAZEL_OUT)/a"},
	}
	c.Merge(a)
	c.Merge(b)
	c.Merge(b)

	want := &Payload{
		ClangArgs: []string{
			"-I$(BAZEL_OUT)/self",
			"-DSELF=1",
			// a
			"-I/x",
			"-iquote/q",
			"-Wno-error",
			// b
			"-Wno-error",
			"-iquote/q",
			"-fmodule-map-file=$(BAZEL_OUT)/b.modulemap",
			"-ivfsoverlay/overlay.yaml",
			// b again
			"-Wno-error",
			"-iquote/q",
		},
		FrameworkIncludes: []string{"/fw", "/fw2"},
		SwiftIncludes:     []string{"$(BAZEL_OUT)/self", "$(BAZEL_OUT)/a", "$(BAZEL_OUT)/b"},
	}
	if diff := cmp.Diff(want, c.Payload()); diff != "" {
		t.Errorf("Payload() diff -want +got:\n%s", diff)
	}
}

func TestCollector_OnceRuleAcrossDependencies(t *testing.T) {
	c := NewCollector()
	c.Merge(&Payload{ClangArgs: []string{"-DA", "-I/x"}})
	c.Merge(&Payload{ClangArgs: []string{"-I/x", "-DB"}})
	want := []string{"-DA", "-I/x", "-DB"}
	if diff := cmp.Diff(want, c.Payload().ClangArgs); diff != "" {
		t.Errorf("ClangArgs diff -want +got:\n%s", diff)
	}
}

func TestCollector_OwnDefinesSkipTransitive(t *testing.T) {
	c := NewCollector()
	c.AddClangArg("-DA", false)
	c.AddClangArg("-DA", false)
	c.Merge(&Payload{ClangArgs: []string{"-DA", "-DB"}})
	want := []string{"-DA", "-DA", "-DB"}
	if diff := cmp.Diff(want, c.Payload().ClangArgs); diff != "" {
		t.Errorf("ClangArgs diff -want +got:\n%s", diff)
	}
}
