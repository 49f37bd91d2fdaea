// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"errors"
	"os/exec"

	"github.com/matt-FFFFFF/watchmux/internal/ctxlog"
	"github.com/matt-FFFFFF/watchmux/internal/procspec"
)

// runPrecondition executes the spec's wait_for command via the shell
// interpreter and blocks until it exits. The command's own output is
// discarded; it exists purely as a gate. There is no timeout: a readiness
// check is allowed to poll for as long as it needs. Cancelling the context
// kills the precondition process.
func runPrecondition(ctx context.Context, spec *procspec.Spec) error {
	logger := ctxlog.Logger(ctx).With("title", spec.Title)
	logger.Debug("running wait_for command", "waitFor", spec.WaitFor)

	cmd := exec.CommandContext(ctx, defaultShell(ctx), shellSwitch(), spec.WaitFor)
	cmd.Env = mergedEnv(spec.Env)

	err := cmd.Run()
	if err == nil {
		logger.Debug("wait_for command succeeded")
		return nil
	}

	// A kill caused by context cancellation is shutdown, not failure.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logger.Debug("wait_for command failed", "exitCode", exitErr.ExitCode())
		return &PreconditionError{ExitCode: exitErr.ExitCode()}
	}

	return errors.Join(ErrCouldNotStartProcess, err)
}
