// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/matt-FFFFFF/watchmux/internal/color"
	"github.com/matt-FFFFFF/watchmux/internal/ctxlog"
	"github.com/matt-FFFFFF/watchmux/internal/mux"
	"github.com/matt-FFFFFF/watchmux/internal/procspec"
)

const (
	// DefaultGracePeriod is how long a child process is given to exit after
	// SIGTERM before it is forcefully killed.
	DefaultGracePeriod = 5 * time.Second

	// maxLineSize is the largest single output line the scanner will accept.
	maxLineSize = 1024 * 1024
)

// Runner drives one spec through its full lifecycle.
type Runner struct {
	record *procspec.RunRecord
	mux    *mux.Multiplexer
	color  color.Code
	grace  time.Duration
}

// Option implements a functional options pattern for Runner.
type Option func(*Runner)

// WithGracePeriod sets the termination grace period for the child process.
func WithGracePeriod(d time.Duration) Option {
	return func(r *Runner) {
		r.grace = d
	}
}

// New creates a Runner for the given record, sending output to m with the
// given title color.
func New(record *procspec.RunRecord, m *mux.Multiplexer, c color.Code, opts ...Option) *Runner {
	r := &Runner{
		record: record,
		mux:    m,
		color:  c,
		grace:  DefaultGracePeriod,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes the spec: wait_for gate first, then the main command, streaming
// each output line to the multiplexer. It blocks until the record reaches a
// terminal state. Errors are local to this spec; they are recorded on the run
// record and surfaced as diagnostic lines, never returned.
func (r *Runner) Run(ctx context.Context) {
	spec := r.record.Spec()
	logger := ctxlog.Logger(ctx).With("title", spec.Title)

	if spec.WaitFor != "" {
		r.record.AwaitPrecondition()

		if err := runPrecondition(ctx, spec); err != nil {
			if ctx.Err() != nil {
				logger.Debug("shutdown during wait_for")
				r.record.Terminate()

				return
			}

			logger.Debug("wait_for failed, command will not run", "error", err)
			r.record.Fail(err)
			r.mux.SendError(spec.Title, r.color, err)

			return
		}
	}

	cmd, err := r.buildCmd(ctx, spec)
	if err != nil {
		r.failToStart(ctx, spec, err)

		return
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.failToStart(ctx, spec, errors.Join(ErrFailedToCreatePipe, err))

		return
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		r.failToStart(ctx, spec, errors.Join(ErrFailedToCreatePipe, err))

		return
	}

	if err := cmd.Start(); err != nil {
		logger.Debug("spawn failed", "error", err)
		r.failToStart(ctx, spec, errors.Join(ErrCouldNotStartProcess, err))

		return
	}

	logger.Debug("process started", "pid", cmd.Process.Pid)
	r.record.Start()

	// Both output streams are scanned concurrently; each complete line is
	// handed to the multiplexer in the order it becomes available.
	var wg sync.WaitGroup

	scanErrs := make(chan error, 2)

	for _, pipe := range []io.Reader{stdout, stderr} {
		wg.Add(1)

		go func(pipe io.Reader) {
			defer wg.Done()

			if err := r.scanLines(pipe, spec); err != nil {
				scanErrs <- err
			}
		}(pipe)
	}

	wg.Wait()
	close(scanErrs)

	waitErr := cmd.Wait()

	// A process that exited cleanly just as shutdown was requested is still a
	// completion; only a wait error under a cancelled context is a termination.
	if ctx.Err() != nil && waitErr != nil {
		logger.Debug("process terminated by shutdown")
		r.record.Terminate()

		return
	}

	if scanErr := <-scanErrs; scanErr != nil {
		scanErr = errors.Join(ErrChildIo, scanErr)
		r.mux.SendError(spec.Title, r.color, scanErr)

		// Treat an output read failure as the process having exited: keep the
		// exit code when the process state is known, otherwise record failure.
		if cmd.ProcessState == nil {
			r.record.Fail(scanErr)
			return
		}
	}

	var exitErr *exec.ExitError

	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		r.record.Fail(waitErr)
		r.mux.SendError(spec.Title, r.color, waitErr)

		return
	}

	exitCode := cmd.ProcessState.ExitCode()

	logger.Debug("process finished", "exitCode", exitCode)
	r.record.Complete(exitCode)
}

// failToStart settles the record when the command could not be started. A
// shutdown arriving before the process starts terminates the record without
// emitting a diagnostic line; any other cause fails the record and is
// surfaced on the output stream.
func (r *Runner) failToStart(ctx context.Context, spec *procspec.Spec, err error) {
	if ctx.Err() != nil {
		r.record.Terminate()

		return
	}

	r.record.Fail(err)
	r.mux.SendError(spec.Title, r.color, err)
}

// buildCmd constructs the exec.Cmd for the spec's kind. Shell specs are
// passed whole to the shell interpreter; direct specs are split into an
// executable name and arguments, with the executable resolved via the
// search path.
func (r *Runner) buildCmd(ctx context.Context, spec *procspec.Spec) (*exec.Cmd, error) {
	var cmd *exec.Cmd

	switch spec.Kind {
	case procspec.KindShell:
		cmd = exec.CommandContext(ctx, defaultShell(ctx), shellSwitch(), spec.Command)
	case procspec.KindDirect:
		fields := strings.Fields(spec.Command)
		if len(fields) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrCommandNotFound, spec.Command)
		}

		path, err := exec.LookPath(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrCommandNotFound, fields[0])
		}

		cmd = exec.CommandContext(ctx, path, fields[1:]...)
	default:
		return nil, fmt.Errorf("%w: %s", procspec.ErrUnknownKind, spec.Kind)
	}

	cmd.Env = mergedEnv(spec.Env)

	// On shutdown, ask the process to exit with SIGTERM; WaitDelay force-kills
	// it when the grace period expires. Every child is reaped by cmd.Wait.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM) //nolint:wrapcheck
	}
	cmd.WaitDelay = r.grace

	return cmd, nil
}

// scanLines reads one output stream line by line. A final partial line with
// no trailing terminator is flushed as a normal line when the stream closes.
func (r *Runner) scanLines(pipe io.Reader, spec *procspec.Spec) error {
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)

	for scanner.Scan() {
		if !spec.Log {
			continue
		}

		r.mux.Send(mux.Line{
			Title: spec.Title,
			Text:  scanner.Text(),
			Color: r.color,
		})
	}

	return scanner.Err() //nolint:wrapcheck
}

// mergedEnv overlays the spec's environment onto the inherited one. Later
// entries win on key collision, so the spec's value takes precedence.
func mergedEnv(overlay map[string]string) []string {
	env := os.Environ()

	for k, v := range overlay {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	return env
}
