// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"errors"
	"fmt"
)

var (
	// ErrCommandNotFound is returned when the executable cannot be resolved via the search path.
	ErrCommandNotFound = errors.New("command not found")
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrChildIo is returned when reading a child process's output stream fails.
	ErrChildIo = errors.New("failed to read process output")
)

// PreconditionError is returned when a wait_for command exits non-zero.
// The spec's main command is never started.
type PreconditionError struct {
	ExitCode int
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("wait_for command failed with exit code %d, cannot proceed to run command", e.ExitCode)
}
