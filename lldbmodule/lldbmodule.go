// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package lldbmodule generates an lldb python module that applies
// the Swift debug settings of the stopped module.
package lldbmodule

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"go.chromium.org/infra/build/xcsettings/debugsettings"
)

// KeyedFile is a debug settings file of a module.
type KeyedFile struct {
	// Key is "<versionless-triple> <executable-path>" of the module.
	Key  string
	File string
}

// KeyedSettings are the debug settings of a module.
type KeyedSettings struct {
	Key      string
	Settings *debugsettings.Payload
}

// ParseKeyedFiles parses `<key> <file>` pairs.
func ParseKeyedFiles(args []string) ([]KeyedFile, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("<keys-and-files> must be <key> and <file> pairs")
	}
	files := make([]KeyedFile, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		files = append(files, KeyedFile{Key: args[i], File: args[i+1]})
	}
	return files, nil
}

// Generate decodes files concurrently with d, and returns the lldb module.
func Generate(ctx context.Context, d debugsettings.Decoder, files []KeyedFile) ([]byte, error) {
	fnames := make([]string, 0, len(files))
	for _, f := range files {
		fnames = append(fnames, f.File)
	}
	payloads, err := d.DecodeFiles(ctx, fnames)
	if err != nil {
		return nil, err
	}
	settings := make([]KeyedSettings, 0, len(files))
	for i, f := range files {
		settings = append(settings, KeyedSettings{Key: f.Key, Settings: payloads[i]})
	}
	return Render(settings), nil
}

// Render returns the lldb module with settings, sorted by key.
func Render(settings []KeyedSettings) []byte {
	settings = append([]KeyedSettings(nil), settings...)
	sort.SliceStable(settings, func(i, j int) bool {
		return settings[i].Key < settings[j].Key
	})
	var buf bytes.Buffer
	buf.WriteString(header)
	for _, s := range settings {
		writeSettings(&buf, s)
	}
	buf.WriteString(footer)
	return buf.Bytes()
}

func writeSettings(buf *bytes.Buffer, s KeyedSettings) {
	fmt.Fprintf(buf, "    \"%s\": {\n", s.Key)
	fmt.Fprintf(buf, "        \"c\": \"%s\",\n", strings.Join(s.Settings.ClangArgs, " "))
	writeList(buf, "f", s.Settings.FrameworkIncludes)
	writeList(buf, "s", s.Settings.SwiftIncludes)
	buf.WriteString("    },\n")
}

func writeList(buf *bytes.Buffer, name string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(buf, "        \"%s\": [\n", name)
	for _, v := range values {
		fmt.Fprintf(buf, "            \"%s\",\n", v)
	}
	buf.WriteString("        ],\n")
}

const header = `#!/usr/bin/python3

"""An lldb module that registers a stop hook to set swift settings."""

import lldb
import re

# Order matters, it needs to be from the most nested to the least
_BUNDLE_EXTENSIONS = [
    ".framework",
    ".xctest",
    ".appex",
    ".bundle",
    ".app",
]

_TRIPLE_MATCH = re.compile(r"([^-]+-[^-]+)(-\D+)[^-]*(-.*)?")

_SETTINGS = {
`

const footer = `}

def __lldb_init_module(debugger, _internal_dict):
    # Register the stop hook when this module is loaded in lldb
    ci = debugger.GetCommandInterpreter()
    res = lldb.SBCommandReturnObject()
    ci.HandleCommand(
        "target stop-hook add -P swift_debug_settings.StopHook",
        res,
    )
    if not res.Succeeded():
        print(f"""\
Failed to register Swift debug options stop hook:

{res.GetError()}
Please file a bug report here: \
https://github.com/MobileNativeFoundation/rules_xcodeproj/issues/new?template=bug.md
""")
        return

def _get_relative_executable_path(module):
    for extension in _BUNDLE_EXTENSIONS:
        prefix, _, suffix = module.rpartition(extension)
        if prefix:
            return prefix.split("/")[-1] + extension + suffix
    return module.split("/")[-1]

class StopHook:
    "An lldb stop hook class, that sets swift settings for the current module."

    def __init__(self, _target, _extra_args, _internal_dict):
        pass

    def handle_stop(self, exe_ctx, _stream):
        "Method that is called when the user stops in lldb."
        module = exe_ctx.frame.module
        if not module:
            return

        module_name = module.file.__get_fullpath__()
        versionless_triple = _TRIPLE_MATCH.sub(r"\1\2\3", module.GetTriple())
        executable_path = _get_relative_executable_path(module_name)
        key = f"{versionless_triple} {executable_path}"

        settings = _SETTINGS.get(key)

        if settings:
            frameworks = " ".join([
                f'"{path}"'
                for path in settings.get("f", [])
            ])
            if frameworks:
                lldb.debugger.HandleCommand(
                    f"settings set -- target.swift-framework-search-paths {frameworks}",
                )
            else:
                lldb.debugger.HandleCommand(
                    "settings clear target.swift-framework-search-paths",
                )

            includes = " ".join([
                f'"{path}"'
                for path in settings.get("s", [])
            ])
            if includes:
                lldb.debugger.HandleCommand(
                    f"settings set -- target.swift-module-search-paths {includes}",
                )
            else:
                lldb.debugger.HandleCommand(
                    "settings clear target.swift-module-search-paths",
                )

            clang = settings.get("c")
            if clang:
                lldb.debugger.HandleCommand(
                    f"settings set -- target.swift-extra-clang-flags '{clang}'",
                )
            else:
                lldb.debugger.HandleCommand(
                    "settings clear target.swift-extra-clang-flags",
                )

        return True

`
