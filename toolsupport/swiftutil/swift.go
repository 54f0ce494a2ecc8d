// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package swiftutil translates swiftc command lines to Xcode build settings.
package swiftutil

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.chromium.org/infra/build/xcsettings/argstream"
	"go.chromium.org/infra/build/xcsettings/debugsettings"
	"go.chromium.org/infra/build/xcsettings/o11y/clog"
	"go.chromium.org/infra/build/xcsettings/toolsupport/shutil"
	"go.chromium.org/infra/build/xcsettings/toolsupport/xcodeutil"
)

// prefixArgs are always the first args of OTHER_SWIFT_FLAGS.
// The stubbed swiftc used for indexing sets -working-directory incorrectly,
// and bazel-out paths are mapped by the overlay.
var prefixArgs = []string{
	"-Xcc",
	"-working-directory",
	"-Xcc",
	"$(PROJECT_DIR)",
	"-working-directory",
	"$(PROJECT_DIR)",

	"-Xcc",
	"-ivfsoverlay$(OBJROOT)/bazel-out-overlay.yaml",
	"-vfsoverlay",
	"$(OBJROOT)/bazel-out-overlay.yaml",
}

// Options controls the Swift translation.
type Options struct {
	// IncludeSelfDebugSettings records the target's own search paths
	// and clang args into the debug settings.
	IncludeSelfDebugSettings bool

	// TransitiveDebugSettings are debug settings files of dependencies,
	// merged in this order after the target's own.
	TransitiveDebugSettings []string

	PreviewsFrameworkPaths string
	PreviewsIncludePath    string

	// Decoder decodes TransitiveDebugSettings.
	Decoder debugsettings.Decoder
}

// Result is the result of Translate.
type Result struct {
	// Present reports whether the Swift section had a compiler command line.
	Present bool

	// HasDebugInfo reports whether -g was passed.
	HasDebugInfo bool

	// Args are the args of OTHER_SWIFT_FLAGS.
	Args []string

	// DebugSettings are the debug settings of the target, merged with
	// the transitive ones.
	DebugSettings *debugsettings.Payload
}

// Translate reads the Swift section from src, and adds build settings
// to settings.
//
// The section is `<tool> <tool-arg> args... ---`. If it starts with
// argstream.Separator, the target has no Swift args; nothing is added
// and the transitive debug settings are not merged.
func Translate(ctx context.Context, src argstream.Source, settings *xcodeutil.Settings, opts Options) (*Result, error) {
	tool, err := src.Next(ctx)
	if errors.Is(err, io.EOF) || (err == nil && tool == argstream.Separator) {
		return &Result{DebugSettings: &debugsettings.Payload{}}, nil
	}
	if err != nil {
		return nil, err
	}
	// tool arg, i.e. `clang`.
	_, err = src.Next(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	t := &translator{
		ctx:         ctx,
		settings:    settings,
		includeSelf: opts.IncludeSelfDebugSettings,
		args:        append([]string(nil), prefixArgs...),
		debug:       debugsettings.NewCollector(),
	}
	if opts.PreviewsFrameworkPaths != "" {
		settings.Add("PREVIEW_FRAMEWORK_PATHS", xcodeutil.PBXProjEscape(opts.PreviewsFrameworkPaths))
	}
	if opts.PreviewsIncludePath != "" {
		settings.Add("PREVIEWS_SWIFT_INCLUDE__", `""`)
		settings.Add("PREVIEWS_SWIFT_INCLUDE__NO", `""`)
		settings.Add("PREVIEWS_SWIFT_INCLUDE__YES", xcodeutil.PBXProjEscape("-I"+xcodeutil.BuildSettingPath(opts.PreviewsIncludePath)))
		t.args = append(t.args, "$(PREVIEWS_SWIFT_INCLUDE__$(ENABLE_PREVIEWS))")
	}

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
		if t.skipNext > 0 {
			t.skipNext--
			continue
		}
		t.translate(arg)
	}

	err = opts.Decoder.MergeFiles(ctx, t.debug, opts.TransitiveDebugSettings)
	if err != nil {
		return nil, err
	}
	settings.Add("OTHER_SWIFT_FLAGS", xcodeutil.PBXProjEscape(shutil.Join(t.args)))
	return &Result{
		Present:       true,
		HasDebugInfo:  t.hasDebugInfo,
		Args:          t.args,
		DebugSettings: t.debug.Payload(),
	}, nil
}

// state is the lookbehind state of the translation.
type state struct {
	previousArg string
	// previousClangArg is the previous -Xcc arg, while the args
	// in between are only -Xcc.
	previousClangArg string
	// previousFrontendArg is the previous -Xfrontend arg, while the args
	// in between are only -Xfrontend.
	previousFrontendArg string
	skipNext            int
}

type translator struct {
	state

	ctx         context.Context
	settings    *xcodeutil.Settings
	includeSelf bool

	args         []string
	debug        *debugsettings.Collector
	hasDebugInfo bool
}

func (t *translator) translate(arg string) {
	isClangArg := t.previousArg == "-Xcc"
	isFrontendArg := t.previousArg == "-Xfrontend"
	defer t.track(arg, isClangArg, isFrontendArg)

	if arg == "-Xcc" {
		t.args = append(t.args, arg)
		return
	}
	if isClangArg {
		t.clangArg(arg)
		return
	}
	if n, ok := skipArgs[rootArg(arg)]; ok {
		t.skip(arg, n)
		return
	}
	if isFrontendArg {
		if n, ok := skipFrontendArgs[rootArg(arg)]; ok {
			t.skip(arg, n)
			return
		}
		t.args = append(t.args, "-Xfrontend")
		t.frontendArg(arg)
		return
	}
	if arg == "-g" {
		t.hasDebugInfo = true
		return
	}
	if !strings.HasPrefix(arg, "-") && strings.HasSuffix(arg, ".swift") {
		// sources are set in the Xcode project.
		return
	}
	t.swiftArg(arg)
}

func (t *translator) track(arg string, isClangArg, isFrontendArg bool) {
	if isClangArg {
		t.previousClangArg = arg
	} else if arg != "-Xcc" {
		t.previousClangArg = ""
	}
	if isFrontendArg {
		t.previousFrontendArg = arg
	} else if arg != "-Xfrontend" {
		t.previousFrontendArg = ""
	}
	t.previousArg = arg
}

func (t *translator) skip(arg string, n int) {
	if clog.V(t.ctx, 2) {
		clog.Infof(t.ctx, "skip %s (%d args)", arg, n)
	}
	t.skipNext = n - 1
}

func (t *translator) add(arg string) {
	t.args = append(t.args, shutil.Quote(arg))
}

func (t *translator) addClangDebugArg(arg string, once bool) {
	if !t.includeSelf {
		return
	}
	t.debug.AddClangArg(xcodeutil.EscapeForDebugSettings(arg), once)
}

func (t *translator) addSwiftInclude(path string) {
	if !t.includeSelf {
		return
	}
	t.debug.AddSwiftInclude(xcodeutil.EscapeForDebugSettings(path))
}

func (t *translator) addFrameworkInclude(path string) {
	if !t.includeSelf {
		return
	}
	t.debug.AddFrameworkInclude(xcodeutil.EscapeForDebugSettings(path))
}

func (t *translator) swiftArg(arg string) {
	if mode, ok := compilationModes[arg]; ok {
		t.settings.Add("SWIFT_COMPILATION_MODE", mode)
		return
	}
	if t.previousArg == "-swift-version" {
		// 5.0 is the default.
		if arg != "5.0" {
			t.settings.Add("SWIFT_VERSION", arg)
		}
		return
	}
	if path, ok := strings.CutPrefix(arg, "-I"); ok {
		if path == "" {
			t.args = append(t.args, arg)
			return
		}
		path = xcodeutil.BuildSettingPath(path)
		t.add("-I" + path)
		t.addSwiftInclude(path)
		return
	}
	if t.previousArg == "-I" {
		path := xcodeutil.BuildSettingPath(arg)
		t.add(path)
		t.addSwiftInclude(path)
		return
	}
	if t.previousArg == "-F" {
		path := xcodeutil.BuildSettingPath(arg)
		t.add(path)
		t.addFrameworkInclude(path)
		return
	}
	if path, ok := strings.CutPrefix(arg, "-F"); ok {
		if path == "" {
			t.args = append(t.args, arg)
			return
		}
		path = xcodeutil.BuildSettingPath(path)
		t.add("-F" + path)
		t.addFrameworkInclude(path)
		return
	}
	if t.vfsoverlayArg(arg) {
		return
	}
	if t.previousArg == "-vfsoverlay" {
		t.add(xcodeutil.BuildSettingPath(arg))
		return
	}
	t.add(xcodeutil.SubstitutePlaceholders(arg))
}

// vfsoverlayArg handles -vfsoverlay with an attached path, and reports
// whether arg was -vfsoverlay.
func (t *translator) vfsoverlayArg(arg string) bool {
	path, ok := strings.CutPrefix(arg, "-vfsoverlay")
	if !ok {
		return false
	}
	if path == "" {
		t.args = append(t.args, arg)
		return true
	}
	path = strings.TrimPrefix(path, "=")
	t.add("-vfsoverlay" + xcodeutil.BuildSettingPath(path))
	return true
}

func (t *translator) clangArg(arg string) {
	if path, ok := strings.CutPrefix(arg, "-fmodule-map-file="); ok {
		arg = "-fmodule-map-file=" + xcodeutil.BuildSettingPath(path)
		t.add(arg)
		t.addClangDebugArg(arg, true)
		return
	}
	if strings.HasPrefix(arg, "-D") {
		arg = xcodeutil.SubstitutePlaceholders(arg)
		t.add(arg)
		t.addClangDebugArg(arg, false)
		return
	}
	for _, sp := range clangSearchPathArgs {
		path, ok := strings.CutPrefix(arg, sp.flag)
		if !ok {
			continue
		}
		if path == "" {
			t.args = append(t.args, arg)
			return
		}
		path = xcodeutil.BuildSettingPath(path)
		t.args = append(t.args, sp.flag, "-Xcc")
		t.add(path)
		t.addClangDebugArg(sp.flag+path, sp.once)
		return
	}
	if once, ok := clangSearchPathArg(t.previousClangArg); ok {
		path := xcodeutil.BuildSettingPath(arg)
		t.add(path)
		t.addClangDebugArg(t.previousClangArg+path, once)
		return
	}

	// -ivfsoverlay doesn't apply -working-directory.
	if t.previousClangArg == "-ivfsoverlay" {
		path := xcodeutil.BuildSettingPath(arg)
		t.add(path)
		t.addClangDebugArg("-ivfsoverlay"+path, true)
		return
	}
	if path, ok := strings.CutPrefix(arg, "-ivfsoverlay"); ok {
		if path == "" {
			t.args = append(t.args, arg)
			return
		}
		path = strings.TrimPrefix(path, "=")
		arg = "-ivfsoverlay" + xcodeutil.BuildSettingPath(path)
		t.add(arg)
		t.addClangDebugArg(arg, true)
		return
	}

	arg = xcodeutil.SubstitutePlaceholders(arg)
	t.add(arg)
	t.addClangDebugArg(arg, false)
}

func (t *translator) frontendArg(arg string) {
	if frontendPathArgs[t.previousFrontendArg] {
		t.add(xcodeutil.BuildSettingPath(arg))
		return
	}
	if t.vfsoverlayArg(arg) {
		return
	}
	t.add(xcodeutil.SubstitutePlaceholders(arg))
}
