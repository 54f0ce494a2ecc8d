// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package swiftdebugsettings is swift-debug-settings subcommand to generate
// the lldb module that applies Swift debug settings.
package swiftdebugsettings

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"runtime"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/xcsettings/debugsettings"
	"go.chromium.org/infra/build/xcsettings/lldbmodule"
	"go.chromium.org/infra/build/xcsettings/o11y/clog"
	"go.chromium.org/infra/build/xcsettings/osfs"
	"go.chromium.org/infra/build/xcsettings/sync/semaphore"
	"go.chromium.org/infra/build/xcsettings/ui"
)

const usage = `generate lldb module for swift debug settings

 $ xcsettings swift-debug-settings [-colorize] <output-path> (<key> <file>)...

<key> is "<versionless-triple> <executable-path>" of a module, and
<file> is its swift debug settings file generated by target-build-settings.
`

// Cmd returns the Command for the `swift-debug-settings` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "swift-debug-settings <output-path> (<key> <file>)...",
		ShortDesc: "generate lldb module for swift debug settings",
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
	c.Flags.IntVar(&c.decodeConcurrency, "decode_concurrency", runtime.NumCPU()*2, "max concurrent reads of swift debug settings")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		clog.Errorf(ctx, "swift-debug-settings failed: %v", err)
		ui.New(a.GetErr(), c.colorize).Errorf("%v", err)
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(a.GetErr(), "%s\n", usage)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing <output-path>: %w", flag.ErrHelp)
	}
	outputPath := args[0]
	ctx = clog.WithLabels(ctx, map[string]string{"output": outputPath})
	files, err := lldbmodule.ParseKeyedFiles(args[1:])
	if err != nil {
		return fmt.Errorf("%w: %w", err, flag.ErrHelp)
	}
	fs := osfs.New("swift-debug-settings")
	d := debugsettings.Decoder{
		FS:        fs,
		Semaphore: semaphore.New("debugsettings-decode", c.decodeConcurrency),
	}
	content, err := lldbmodule.Generate(ctx, d, files)
	if err != nil {
		return err
	}
	err = fs.WriteFileAtomic(ctx, outputPath, content)
	if err != nil {
		return err
	}
	clog.Infof(ctx, "wrote lldb module for %d modules: %s", len(files), fs.Stats())
	return nil
}
