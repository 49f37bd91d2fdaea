// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/watchmux/internal/config"
	"github.com/matt-FFFFFF/watchmux/internal/orchestrator"
	"github.com/matt-FFFFFF/watchmux/internal/runner"
	"github.com/urfave/cli/v3"
)

const (
	configFlag = "config"
	graceFlag  = "grace"
)

// RunCmd is the command that runs the configured processes and multiplexes
// their output.
var RunCmd = &cli.Command{
	Name:        "run",
	Description: "Run the processes defined in the config file and multiplex their output to stdout.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage:   "Path to the config file, or - for stdin. Defaults to " + config.RcFileName + " in the current directory.",
		},
		&cli.DurationFlag{
			Name:        graceFlag,
			Usage:       "How long a process is given to exit after SIGTERM before it is killed",
			Value:       runner.DefaultGracePeriod,
			DefaultText: runner.DefaultGracePeriod.String(),
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	specs, err := config.Load(cmd.String(configFlag))
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to resolve config: %s", err.Error()), 1)
	}

	o, err := orchestrator.New(specs,
		orchestrator.WithOutput(cmd.Writer),
		orchestrator.WithGracePeriod(cmd.Duration(graceFlag)),
	)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if err := o.Run(ctx); err != nil {
		return cli.Exit(fmt.Sprintf("failed to run watch processes: %s", err.Error()), 1)
	}

	return nil
}
