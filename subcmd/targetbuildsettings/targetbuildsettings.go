// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package targetbuildsettings is target-build-settings subcommand to
// generate Xcode build settings and Swift debug settings of a target.
package targetbuildsettings

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"runtime"
	"time"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/xcsettings/argstream"
	"go.chromium.org/infra/build/xcsettings/debugsettings"
	"go.chromium.org/infra/build/xcsettings/o11y/clog"
	"go.chromium.org/infra/build/xcsettings/osfs"
	"go.chromium.org/infra/build/xcsettings/sync/semaphore"
	"go.chromium.org/infra/build/xcsettings/targetsettings"
	"go.chromium.org/infra/build/xcsettings/ui"
)

const usage = `generate build settings of a target

 $ xcsettings target-build-settings [-colorize] \
     <build-settings-output-path> \
     <swift-debug-settings-output-path> \
     [<include-self-swift-debug-settings> <transitive-swift-debug-setting-paths>... ---] \
     <device-family> <extension-safe> <generates-dsyms> \
     <info-plist> <entitlements> <skip-codesigning> \
     <certificate-name> <provisioning-profile-name> <team-id> \
     <provisioning-profile-is-xcode-managed> \
     <previews-framework-paths> <previews-include-path> \
     <swift-tool> <swift-tool-arg> <swift-args>... --- \
     <c-params-output-path> <c-wrapper> <c-args>... --- \
     <cxx-params-output-path> <cxx-wrapper> <cxx-args>... ---

<swift-debug-settings-output-path> is followed by the include-self flag and
transitive debug settings paths only when it is not empty.
A language section of just "---" means the target doesn't compile it.
Args "@<file>" are expanded to the lines of <file>.
`

// Cmd returns the Command for the `target-build-settings` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "target-build-settings <args>...",
		ShortDesc: "generate build settings of a target",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	colorize          bool
	decodeConcurrency int
}

func (c *run) init() {
	c.Flags.BoolVar(&c.colorize, "colorize", ui.IsTerminal(), "colorize error messages")
	c.Flags.IntVar(&c.decodeConcurrency, "decode_concurrency", runtime.NumCPU()*2, "max concurrent reads of transitive swift debug settings")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	u := ui.New(a.GetErr(), c.colorize)
	err := c.run(ctx, args)
	if err != nil {
		clog.Errorf(ctx, "target-build-settings failed: %v", err)
		u.Errorf("%v", err)
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(a.GetErr(), "%s\n", usage)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	started := time.Now()
	inv, err := parseArgs(args)
	if err != nil {
		return err
	}
	output := inv.buildSettingsOutputPath
	if output == "" {
		output = inv.swiftDebugSettingsOutputPath
	}
	ctx = clog.WithLabels(ctx, map[string]string{"output": output})
	fs := osfs.New("target-build-settings")
	inv.opts.Decoder = debugsettings.Decoder{
		FS:        fs,
		Semaphore: semaphore.New("debugsettings-decode", c.decodeConcurrency),
	}
	src := argstream.New(ctx, fs, inv.args)
	result, err := targetsettings.Generate(ctx, src, inv.opts)
	src.Close()
	if err != nil {
		return err
	}
	err = write(ctx, fs, inv, result)
	if err != nil {
		return err
	}
	clog.Infof(ctx, "done in %s: %s", time.Since(started).Round(time.Millisecond), fs.Stats())
	return nil
}

// write writes outputs. It is called only when every output was generated,
// and renames nothing unless every output was written.
func write(ctx context.Context, fs *osfs.OSFS, inv *invocation, result *targetsettings.Result) error {
	var files []osfs.File
	if inv.buildSettingsOutputPath != "" {
		files = append(files, osfs.File{Name: inv.buildSettingsOutputPath, Data: result.BuildSettings.Marshal()})
	}
	if inv.swiftDebugSettingsOutputPath != "" {
		files = append(files, osfs.File{Name: inv.swiftDebugSettingsOutputPath, Data: result.DebugSettings.Marshal()})
	}
	for _, p := range result.ParamsFiles {
		files = append(files, osfs.File{Name: p.Path, Data: p.Content})
	}
	return fs.WriteFilesAtomic(ctx, files)
}
