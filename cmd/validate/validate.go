// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package validate

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/watchmux/internal/config"
	"github.com/urfave/cli/v3"
)

const configFlag = "config"

// ValidateCmd is the command that checks the config file without running
// anything, printing the parsed process list.
var ValidateCmd = &cli.Command{
	Name:        "validate",
	Description: "Validate the config file and print the parsed process list without running anything.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage:   "Path to the config file, or - for stdin. Defaults to " + config.RcFileName + " in the current directory.",
		},
	},
	Action: actionFunc,
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	specs, err := config.Load(cmd.String(configFlag))
	if err != nil {
		return cli.Exit(fmt.Sprintf("config is invalid: %s", err.Error()), 1)
	}

	fmt.Fprintf(cmd.Writer, "config is valid: %d process(es)\n", len(specs))

	for _, spec := range specs {
		waitFor := ""
		if spec.WaitFor != "" {
			waitFor = fmt.Sprintf(" wait_for=%q", spec.WaitFor)
		}

		fmt.Fprintf(cmd.Writer, "  %s: type=%s%s cmd=%q\n", spec.Title, spec.Kind, waitFor, spec.Command)
	}

	return nil
}
