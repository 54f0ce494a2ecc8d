// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package lldbmodule

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/xcsettings/debugsettings"
)

func TestParseKeyedFiles(t *testing.T) {
	got, err := ParseKeyedFiles([]string{"k1", "f1", "k2", "f2"})
	if err != nil {
		t.Fatalf("ParseKeyedFiles(...)=_, %v; want nil err", err)
	}
	want := []KeyedFile{{Key: "k1", File: "f1"}, {Key: "k2", File: "f2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseKeyedFiles(...) diff -want +got:\n%s", diff)
	}

	_, err = ParseKeyedFiles([]string{"k1", "f1", "k2"})
	if err == nil || !strings.Contains(err.Error(), "must be <key> and <file> pairs") {
		t.Errorf("ParseKeyedFiles(odd)=_, %v; want pairs error", err)
	}
}

func TestRender(t *testing.T) {
	got := string(Render([]KeyedSettings{
		{
			Key: "x86_64-apple-ios-simulator App.app/App",
			Settings: &debugsettings.Payload{
				ClangArgs:     []string{"-I$(BAZEL_OUT)/a", `-DA=a\ b`},
				SwiftIncludes: []string{"$(BAZEL_OUT)/s"},
			},
		},
		{
			Key: "arm64-apple-ios-simulator App.app/App",
			Settings: &debugsettings.Payload{
				FrameworkIncludes: []string{"$(BAZEL_OUT)/f1", "$(BAZEL_OUT)/f2"},
			},
		},
	}))
	want := `_SETTINGS = {
    "arm64-apple-ios-simulator App.app/App": {
        "c": "",
        "f": [
            "$(BAZEL_OUT)/f1",
            "$(BAZEL_OUT)/f2",
        ],
    },
    "x86_64-apple-ios-simulator App.app/App": {
        "c": "-I$(BAZEL_OUT)/a -DA=a\ b",
        "s": [
            "$(BAZEL_OUT)/s",
        ],
    },
}
`
	if !strings.Contains(got, want) {
		t.Errorf("Render(...)=%q; want to contain %q", got, want)
	}
	if !strings.HasPrefix(got, "#!/usr/bin/python3\n") {
		t.Errorf("Render(...) doesn't start with shebang: %q", got[:min(len(got), 40)])
	}
	if !strings.Contains(got, "def __lldb_init_module(debugger, _internal_dict):") {
		t.Errorf("Render(...) doesn't define __lldb_init_module")
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	write := func(name string, p *debugsettings.Payload) string {
		fname := filepath.Join(dir, name)
		if err := os.WriteFile(fname, p.Marshal(), 0644); err != nil {
			t.Fatal(err)
		}
		return fname
	}
	b := write("b", &debugsettings.Payload{ClangArgs: []string{"-DB"}})
	a := write("a", &debugsettings.Payload{ClangArgs: []string{"-DA"}})

	got, err := Generate(ctx, debugsettings.Decoder{}, []KeyedFile{
		{Key: "k-b", File: b},
		{Key: "k-a", File: a},
	})
	if err != nil {
		t.Fatalf("Generate(ctx, ...)=_, %v; want nil err", err)
	}
	s := string(got)
	ia := strings.Index(s, `"k-a": {`+"\n"+`        "c": "-DA",`)
	ib := strings.Index(s, `"k-b": {`+"\n"+`        "c": "-DB",`)
	if ia < 0 || ib < 0 || ia > ib {
		t.Errorf("Generate(ctx, ...)=%q; want k-a then k-b", s)
	}

	_, err = Generate(ctx, debugsettings.Decoder{}, []KeyedFile{
		{Key: "k-missing", File: filepath.Join(dir, "missing")},
	})
	if err == nil {
		t.Errorf("Generate(ctx, missing)=_, nil; want err")
	}
}
