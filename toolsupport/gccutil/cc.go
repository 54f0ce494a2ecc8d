// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gccutil translates clang command lines of C and C++ compiles
// to Xcode build settings and compile params files.
package gccutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.chromium.org/infra/build/xcsettings/argstream"
	"go.chromium.org/infra/build/xcsettings/o11y/clog"
	"go.chromium.org/infra/build/xcsettings/toolsupport/shutil"
	"go.chromium.org/infra/build/xcsettings/toolsupport/xcodeutil"
)

// prefixArgs are always the first args of a params file.
var prefixArgs = []string{
	"-working-directory",
	"$(PROJECT_DIR)",
	"-ivfsoverlay",
	"$(OBJROOT)/bazel-out-overlay.yaml",
}

// Lang is a language compiled by clang, and the names of its build settings.
type Lang struct {
	// Name is used in logs.
	Name string
	// ParamsFileSetting is the setting of the params file path.
	ParamsFileSetting string
	// FlagsSetting is the setting of the compiler flags.
	FlagsSetting string
	// ASanFlagsSetting is the prefix of the settings selected by
	// CLANG_ADDRESS_SANITIZER.
	ASanFlagsSetting string
	// ParamsFileName is the params file name in DERIVED_FILE_DIR.
	ParamsFileName string
}

var (
	// C is the C language (and Objective-C).
	C = Lang{
		Name:              "c",
		ParamsFileSetting: "C_PARAMS_FILE",
		FlagsSetting:      "OTHER_CFLAGS",
		ASanFlagsSetting:  "ASAN_OTHER_CFLAGS__",
		ParamsFileName:    "c.compile.params",
	}

	// CXX is the C++ language (and Objective-C++).
	CXX = Lang{
		Name:              "cxx",
		ParamsFileSetting: "CXX_PARAMS_FILE",
		FlagsSetting:      "OTHER_CPLUSPLUSFLAGS",
		ASanFlagsSetting:  "ASAN_OTHER_CPLUSPLUSFLAGS__",
		ParamsFileName:    "cxx.compile.params",
	}
)

// Params is a translated C or C++ compile.
type Params struct {
	// OutputPath is the path of the params file, relative to
	// the execution root.
	OutputPath string

	// Args are the params file args.
	Args []string

	// HasDebugInfo reports whether -g was passed.
	HasDebugInfo bool

	// FortifySourceLevel is the level of the last -D_FORTIFY_SOURCE,
	// or 0 if not defined.
	FortifySourceLevel int
}

// Content returns the params file content, one arg per line.
func (p *Params) Content() []byte {
	var buf bytes.Buffer
	for _, arg := range p.Args {
		buf.WriteString(arg)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Translate reads a C or C++ section from src, and adds build settings
// of lang to settings.
//
// The section is `<params-output-path> <wrapper> args... ---`.
// It returns nil Params if the section starts with argstream.Separator
// or src has no more args.
// The params file is not written; the caller writes Content to OutputPath.
func Translate(ctx context.Context, src argstream.Source, lang Lang, settings *xcodeutil.Settings) (*Params, error) {
	outputPath, err := src.Next(ctx)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if outputPath == argstream.Separator {
		return nil, nil
	}
	// wrapper, i.e. `wrapped_clang_pp`.
	_, err = src.Next(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	p, err := TranslateArgs(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%s args: %w", lang.Name, err)
	}
	p.OutputPath = outputPath
	lang.addSettings(settings, p)
	return p, nil
}

func (lang Lang) addSettings(settings *xcodeutil.Settings, p *Params) {
	settings.Add(lang.ParamsFileSetting, fmt.Sprintf(`"$(BAZEL_OUT)%s"`, strings.TrimPrefix(p.OutputPath, "bazel-out")))
	paramsFile := "@$(DERIVED_FILE_DIR)/" + lang.ParamsFileName
	if p.FortifySourceLevel <= 0 {
		settings.Add(lang.FlagsSetting, strconv.Quote(paramsFile))
		return
	}
	// ASan doesn't work with -D_FORTIFY_SOURCE.
	settings.Add(lang.ASanFlagsSetting, fmt.Sprintf(`"$(%sNO)"`, lang.ASanFlagsSetting))
	settings.Add(lang.ASanFlagsSetting+"NO", fmt.Sprintf(`"%s -D_FORTIFY_SOURCE=%d"`, paramsFile, p.FortifySourceLevel))
	settings.Add(lang.ASanFlagsSetting+"YES", strconv.Quote(paramsFile))
	settings.Add(lang.FlagsSetting, fmt.Sprintf(`"$(%s$(CLANG_ADDRESS_SANITIZER))"`, lang.ASanFlagsSetting))
}

// TranslateArgs reads clang args from src until argstream.Separator, and
// returns the params file args.
func TranslateArgs(ctx context.Context, src argstream.Source) (*Params, error) {
	p := &Params{
		Args: append([]string(nil), prefixArgs...),
	}
	var previousArg string
	skipNext := 0
	for {
		arg, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if arg == argstream.Separator {
			break
		}
		if skipNext > 0 {
			skipNext--
			continue
		}
		p.translate(ctx, arg, previousArg, &skipNext)
		previousArg = arg
	}
	return p, nil
}

func (p *Params) translate(ctx context.Context, arg, previousArg string, skipNext *int) {
	if n, ok := skipArgs[rootArg(arg)]; ok {
		if clog.V(ctx, 2) {
			clog.Infof(ctx, "skip %s (%d args)", arg, n)
		}
		*skipNext = n - 1
		return
	}
	if arg == "-g" {
		p.HasDebugInfo = true
		return
	}
	if v, ok := strings.CutPrefix(arg, "-D_FORTIFY_SOURCE="); ok {
		level, err := strconv.Atoi(v)
		if err != nil {
			level = 1
		}
		p.FortifySourceLevel = level
		return
	}

	// -ivfsoverlay and --config don't apply -working-directory.
	for _, flag := range absolutePathArgs {
		path, ok := strings.CutPrefix(arg, flag)
		if !ok {
			continue
		}
		if path == "" {
			p.Args = append(p.Args, arg)
			return
		}
		// keep the "=" form.
		sep := ""
		if v, ok := strings.CutPrefix(path, "="); ok {
			sep, path = "=", v
		}
		p.Args = append(p.Args, shutil.Quote(flag+sep+xcodeutil.BuildSettingPath(path)))
		return
	}
	if isAbsolutePathArg(previousArg) {
		p.Args = append(p.Args, shutil.Quote(xcodeutil.BuildSettingPath(arg)))
		return
	}
	p.Args = append(p.Args, shutil.Quote(xcodeutil.SubstitutePlaceholders(arg)))
}
