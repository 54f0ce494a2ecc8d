// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package help provides help subcommand.
package help

import (
	"flag"
	"fmt"
	"io"

	"github.com/maruel/subcommands"
)

const argsHelp = `
Arguments of target-build-settings may be read from params files with
@<path>, one argument per line. Compiler args are given in three sections,
Swift then C then C++, each terminated by "---". An empty section is a
single "---".
`

// Cmd returns the Command for the `help` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "help [<command>|-advanced]",
		ShortDesc: "prints help about a command",
		LongDesc:  "Prints commands, argument conventions and global flags, or help about a specific command.",
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.Flags.BoolVar(&c.advanced, "advanced", false, "show advanced commands")
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase
	advanced bool
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) > 0 {
		return subcommands.CmdHelp.CommandRun().Run(a, args, env)
	}
	w := a.GetOut()
	subcommands.Usage(w, a, c.advanced)
	printGlobal(w, flag.CommandLine)
	return 0
}

func printGlobal(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprint(w, argsHelp)
	fmt.Fprintln(w, "\nGlobal flags:")
	out := fs.Output()
	defer fs.SetOutput(out)
	fs.SetOutput(w)
	fs.PrintDefaults()
}
