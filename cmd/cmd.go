// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"os"

	"github.com/matt-FFFFFF/watchmux/cmd/run"
	"github.com/matt-FFFFFF/watchmux/cmd/validate"
	"github.com/urfave/cli/v3"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		validate.ValidateCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "watchmux",
	Description: `Watchmux runs any number of commands or shell scripts in parallel and
multiplexes their output to a single stdout, each line prefixed with the
process title. A process can be gated on a wait_for command that must succeed
before the main command starts. Watchmux exits when all processes complete,
or on Ctrl-C.

The process list is a YAML file:

processes:
  - title: api
    cmd: make run-api
    type: shell
    wait_for: ./scripts/wait-for-db.sh
    env:
      PORT: "8080"`,
	Usage:     "watchmux run -c myfile.yaml",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}
