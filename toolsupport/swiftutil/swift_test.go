// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package swiftutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/xcsettings/argstream"
	"go.chromium.org/infra/build/xcsettings/debugsettings"
	"go.chromium.org/infra/build/xcsettings/toolsupport/xcodeutil"
)

func withPrefix(args ...string) []string {
	return append(append([]string(nil), prefixArgs...), args...)
}

func TestTranslate(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name         string
		args         []string
		opts         Options
		wantArgs     []string
		wantSettings []xcodeutil.Setting
		wantDebug    *debugsettings.Payload
		wantDebugged bool
	}{
		{
			name: "swift version and include",
			args: []string{
				"swift_worker", "clang",
				"-swift-version", "5.0",
				"-I", "bazel-out/x",
				"-g",
				argstream.Separator,
			},
			opts:     Options{IncludeSelfDebugSettings: true},
			wantArgs: withPrefix("-I", "$(BAZEL_OUT)/x"),
			wantDebug: &debugsettings.Payload{
				SwiftIncludes: []string{"$(BAZEL_OUT)/x"},
			},
			wantDebugged: true,
		},
		{
			name: "skip",
			args: []string{
				"swift_worker", "clang",
				"-module-name", "Lib",
				"-emit-object",
				"-target", "arm64-apple-ios15.0-simulator",
				"-sdk", "__BAZEL_XCODE_SDKROOT__",
				"-index-store-path=bazel-out/idx", "ignored",
				"-Xwrapped-swift=-debug-prefix-pwd-is-dot",
				"Sources/A.swift",
				"-DDEBUG",
				argstream.Separator,
			},
			wantArgs:  withPrefix("-DDEBUG"),
			wantDebug: &debugsettings.Payload{},
		},
		{
			name: "swift version and compilation mode",
			args: []string{
				"swift_worker", "clang",
				"-swift-version", "6",
				"-wmo",
				"-enable-testing",
			},
			wantArgs: withPrefix("-enable-testing"),
			wantSettings: []xcodeutil.Setting{
				{Key: "SWIFT_VERSION", Value: "6"},
				{Key: "SWIFT_COMPILATION_MODE", Value: "wholemodule"},
			},
			wantDebug: &debugsettings.Payload{},
		},
		{
			name: "search paths",
			args: []string{
				"swift_worker", "clang",
				"-Iexternal/dep",
				"-F", "__BAZEL_XCODE_DEVELOPER_DIR__/Platforms/Library/Frameworks",
				"-Fbazel-out/fw",
				"-vfsoverlay", "bazel-out/a.yaml",
				"-vfsoverlay=bazel-out/b.yaml",
				"-DNOT_SWIFT",
				"-Xfrontend", "-vfsoverlay", "-Xfrontend", "bazel-out/c.yaml",
				argstream.Separator,
			},
			opts: Options{IncludeSelfDebugSettings: true},
			wantArgs: withPrefix(
				"-I$(BAZEL_EXTERNAL)/dep",
				"-F", "$(DEVELOPER_DIR)/Platforms/Library/Frameworks",
				"-F$(BAZEL_OUT)/fw",
				"-vfsoverlay", "$(BAZEL_OUT)/a.yaml",
				"-vfsoverlay$(BAZEL_OUT)/b.yaml",
				"-DNOT_SWIFT",
				"-Xfrontend", "-vfsoverlay", "-Xfrontend", "$(BAZEL_OUT)/c.yaml",
			),
			wantDebug: &debugsettings.Payload{
				FrameworkIncludes: []string{
					"$(DEVELOPER_DIR)/Platforms/Library/Frameworks",
					"$(BAZEL_OUT)/fw",
				},
				SwiftIncludes: []string{"$(BAZEL_EXTERNAL)/dep"},
			},
		},
		{
			name: "clang args",
			args: []string{
				"swift_worker", "clang",
				"-Xcc", "-fmodule-map-file=bazel-out/a.modulemap",
				"-Xcc", "-fmodule-map-file=bazel-out/a.modulemap",
				"-Xcc", "-DFOO=a b",
				"-Xcc", "-DFOO=a b",
				"-Xcc", "-Iexternal/inc",
				"-Xcc", "-I", "-Xcc", "external/inc",
				"-Xcc", "-iquote", "-Xcc", ".",
				"-Xcc", "-iquote.",
				"-Xcc", "-ivfsoverlay", "-Xcc", "bazel-out/o.yaml",
				"-Xcc", "-ivfsoverlay=bazel-out/p.yaml",
				"-Xcc", "-Wno-error",
				argstream.Separator,
			},
			opts: Options{IncludeSelfDebugSettings: true},
			wantArgs: withPrefix(
				"-Xcc", "-fmodule-map-file=$(BAZEL_OUT)/a.modulemap",
				"-Xcc", "-fmodule-map-file=$(BAZEL_OUT)/a.modulemap",
				"-Xcc", "'-DFOO=a b'",
				"-Xcc", "'-DFOO=a b'",
				"-Xcc", "-I", "-Xcc", "$(BAZEL_EXTERNAL)/inc",
				"-Xcc", "-I", "-Xcc", "$(BAZEL_EXTERNAL)/inc",
				"-Xcc", "-iquote", "-Xcc", "$(PROJECT_DIR)",
				"-Xcc", "-iquote", "-Xcc", "$(PROJECT_DIR)",
				"-Xcc", "-ivfsoverlay", "-Xcc", "$(BAZEL_OUT)/o.yaml",
				"-Xcc", "-ivfsoverlay$(BAZEL_OUT)/p.yaml",
				"-Xcc", "-Wno-error",
			),
			wantDebug: &debugsettings.Payload{
				ClangArgs: []string{
					"-fmodule-map-file=$(BAZEL_OUT)/a.modulemap",
					`-DFOO=a\ b`,
					`-DFOO=a\ b`,
					"-I$(BAZEL_EXTERNAL)/inc",
					"-iquote$(PROJECT_DIR)",
					"-iquote$(PROJECT_DIR)",
					"-ivfsoverlay$(BAZEL_OUT)/o.yaml",
					"-ivfsoverlay$(BAZEL_OUT)/p.yaml",
					"-Wno-error",
				},
			},
		},
		{
			name: "clang args not included",
			args: []string{
				"swift_worker", "clang",
				"-Xcc", "-Iexternal/inc",
				"-I", "bazel-out/x",
				argstream.Separator,
			},
			wantArgs: withPrefix(
				"-Xcc", "-I", "-Xcc", "$(BAZEL_EXTERNAL)/inc",
				"-I", "$(BAZEL_OUT)/x",
			),
			wantDebug: &debugsettings.Payload{},
		},
		{
			name: "frontend args",
			args: []string{
				"swift_worker", "clang",
				"-Xfrontend", "-color-diagnostics",
				"-Xfrontend", "-serialize-debugging-options",
				"-Xfrontend", "-load-plugin-executable", "-Xfrontend", "bazel-out/plugin#Macros",
				"-Xfrontend", "-explicit-swift-module-map-file", "-Xfrontend", "bazel-out/map.json",
				"-Xfrontend", "-enable-experimental-feature", "-Xfrontend", "Macros",
				"-Xfrontend", "-internalize-at-link=__BAZEL_XCODE_SDKROOT__",
				argstream.Separator,
			},
			wantArgs: withPrefix(
				"-Xfrontend", "-load-plugin-executable", "-Xfrontend", "$(BAZEL_OUT)/plugin#Macros",
				"-Xfrontend", "-explicit-swift-module-map-file", "-Xfrontend", "$(BAZEL_OUT)/map.json",
				"-Xfrontend", "-enable-experimental-feature", "-Xfrontend", "Macros",
				"-Xfrontend", "-internalize-at-link=$(SDKROOT)",
			),
			wantDebug: &debugsettings.Payload{},
		},
		{
			name: "previews",
			args: []string{
				"swift_worker", "clang",
				argstream.Separator,
			},
			opts: Options{
				PreviewsFrameworkPaths: `"$(BUILD_DIR)/a" "$(BUILD_DIR)/b"`,
				PreviewsIncludePath:    "bazel-out/previews",
			},
			wantArgs: withPrefix("$(PREVIEWS_SWIFT_INCLUDE__$(ENABLE_PREVIEWS))"),
			wantSettings: []xcodeutil.Setting{
				{Key: "PREVIEW_FRAMEWORK_PATHS", Value: `"\"$(BUILD_DIR)/a\" \"$(BUILD_DIR)/b\""`},
				{Key: "PREVIEWS_SWIFT_INCLUDE__", Value: `""`},
				{Key: "PREVIEWS_SWIFT_INCLUDE__NO", Value: `""`},
				{Key: "PREVIEWS_SWIFT_INCLUDE__YES", Value: `"-I$(BAZEL_OUT)/previews"`},
			},
			wantDebug: &debugsettings.Payload{},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := argstream.Slice(tc.args)
			var settings xcodeutil.Settings
			got, err := Translate(ctx, &src, &settings, tc.opts)
			if err != nil {
				t.Fatalf("Translate(ctx, %q, ...)=_, %v; want nil err", tc.args, err)
			}
			if !got.Present {
				t.Errorf("Present=false; want true")
			}
			if diff := cmp.Diff(tc.wantArgs, got.Args); diff != "" {
				t.Errorf("Args diff -want +got:\n%s", diff)
			}
			if got.HasDebugInfo != tc.wantDebugged {
				t.Errorf("HasDebugInfo=%t; want %t", got.HasDebugInfo, tc.wantDebugged)
			}
			if diff := cmp.Diff(tc.wantDebug, got.DebugSettings); diff != "" {
				t.Errorf("DebugSettings diff -want +got:\n%s", diff)
			}
			wantSettings := append(tc.wantSettings, xcodeutil.Setting{
				Key:   "OTHER_SWIFT_FLAGS",
				Value: xcodeutil.PBXProjEscape(strings.Join(tc.wantArgs, " ")),
			})
			if diff := cmp.Diff(sortSettings(wantSettings), settings.Sorted()); diff != "" {
				t.Errorf("settings diff -want +got:\n%s", diff)
			}
		})
	}
}

func sortSettings(settings []xcodeutil.Setting) []xcodeutil.Setting {
	var s xcodeutil.Settings
	for _, setting := range settings {
		s.Add(setting.Key, setting.Value)
	}
	return s.Sorted()
}

func TestTranslate_NoSwift(t *testing.T) {
	ctx := context.Background()
	for _, args := range [][]string{
		{argstream.Separator, "bazel-out/c.params", "wrapped_clang"},
		nil,
	} {
		src := argstream.Slice(args)
		var settings xcodeutil.Settings
		got, err := Translate(ctx, &src, &settings, Options{
			IncludeSelfDebugSettings: true,
			TransitiveDebugSettings:  []string{"does-not-exist"},
			PreviewsIncludePath:      "bazel-out/previews",
		})
		if err != nil {
			t.Fatalf("Translate(ctx, %q, ...)=_, %v; want nil err", args, err)
		}
		if got.Present {
			t.Errorf("Present=true; want false")
		}
		if settings.Len() != 0 {
			t.Errorf("settings=%v; want empty", settings.Sorted())
		}
		if diff := cmp.Diff(&debugsettings.Payload{}, got.DebugSettings); diff != "" {
			t.Errorf("DebugSettings diff -want +got:\n%s", diff)
		}
	}
}

func TestTranslate_StopsAtSeparator(t *testing.T) {
	ctx := context.Background()
	src := argstream.Slice{
		"swift_worker", "clang",
		"-DA",
		argstream.Separator,
		"bazel-out/c.params",
	}
	var settings xcodeutil.Settings
	_, err := Translate(ctx, &src, &settings, Options{})
	if err != nil {
		t.Fatalf("Translate(ctx, ...)=_, %v; want nil err", err)
	}
	if diff := cmp.Diff(argstream.Slice{"bazel-out/c.params"}, src); diff != "" {
		t.Errorf("remaining args diff -want +got:\n%s", diff)
	}
}

func TestTranslate_Transitive(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	write := func(name string, p *debugsettings.Payload) string {
		fname := filepath.Join(dir, name)
		if err := os.WriteFile(fname, p.Marshal(), 0644); err != nil {
			t.Fatal(err)
		}
		return fname
	}
	a := write("a.swift_debug_settings", &debugsettings.Payload{
		ClangArgs:     []string{"-I$(BAZEL_OUT)/x", "-DA"},
		SwiftIncludes: []string{"$(BAZEL_OUT)/a"},
	})
	b := write("b.swift_debug_settings", &debugsettings.Payload{
		ClangArgs:         []string{"-I$(BAZEL_OUT)/x", "-DB"},
		FrameworkIncludes: []string{"$(BAZEL_OUT)/fw"},
		SwiftIncludes:     []string{"$(BAZEL_OUT)/b", "$(BAZEL_OUT)/self"},
	})

	src := argstream.Slice{
		"swift_worker", "clang",
		"-Xcc", "-Ibazel-out/x",
		"-Xcc", "-DA",
		"-I", "bazel-out/self",
		argstream.Separator,
	}
	var settings xcodeutil.Settings
	got, err := Translate(ctx, &src, &settings, Options{
		IncludeSelfDebugSettings: true,
		TransitiveDebugSettings:  []string{a, b},
	})
	if err != nil {
		t.Fatalf("Translate(ctx, ...)=_, %v; want nil err", err)
	}
	want := &debugsettings.Payload{
		ClangArgs:         []string{"-I$(BAZEL_OUT)/x", "-DA", "-DB"},
		FrameworkIncludes: []string{"$(BAZEL_OUT)/fw"},
		SwiftIncludes:     []string{"$(BAZEL_OUT)/self", "$(BAZEL_OUT)/a", "$(BAZEL_OUT)/b"},
	}
	if diff := cmp.Diff(want, got.DebugSettings); diff != "" {
		t.Errorf("DebugSettings diff -want +got:\n%s", diff)
	}
}

func TestTranslate_TransitiveError(t *testing.T) {
	ctx := context.Background()
	fname := filepath.Join(t.TempDir(), "bad.swift_debug_settings")
	if err := os.WriteFile(fname, []byte("1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	src := argstream.Slice{"swift_worker", "clang", argstream.Separator}
	var settings xcodeutil.Settings
	_, err := Translate(ctx, &src, &settings, Options{
		TransitiveDebugSettings: []string{fname},
	})
	if err == nil || !strings.Contains(err.Error(), "too few clang args. found 0, expected 1") {
		t.Errorf("Translate(ctx, ...)=_, %v; want too few clang args error", err)
	}
}
