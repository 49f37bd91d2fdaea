// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"bytes"
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/watchmux/internal/mux"
	"github.com/matt-FFFFFF/watchmux/internal/procspec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// syncBuffer guards a bytes.Buffer shared between the multiplexer's consumer
// goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

// runSpec drives a single spec to a terminal state and returns its record and
// the multiplexed output.
func runSpec(ctx context.Context, t *testing.T, spec *procspec.Spec, opts ...Option) (*procspec.RunRecord, string) {
	t.Helper()

	buf := &syncBuffer{}
	m := mux.New(buf)
	rec := procspec.NewRunRecord(spec)

	New(rec, m, 0, opts...).Run(ctx)
	require.NoError(t, m.Close())

	return rec, buf.String()
}

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("test requires a POSIX shell")
	}
}

func TestRunnerDirectCommand(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	rec, out := runSpec(context.Background(), t, &procspec.Spec{
		Title:   "echo",
		Command: "echo hi",
		Kind:    procspec.KindDirect,
		Log:     true,
	})

	assert.Equal(t, procspec.StateCompleted, rec.State())
	assert.Equal(t, 0, rec.ExitCode())
	assert.Equal(t, "echo | hi\n", out)
}

func TestRunnerShellScript(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	rec, out := runSpec(context.Background(), t, &procspec.Spec{
		Title: "script",
		Command: `for i in 1 2 3; do
  echo "line $i"
done`,
		Kind: procspec.KindShell,
		Log:  true,
	})

	assert.Equal(t, procspec.StateCompleted, rec.State())
	assert.Equal(t, "script | line 1\nscript | line 2\nscript | line 3\n", out)
}

func TestRunnerNonZeroExitIsCompleted(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	rec, _ := runSpec(context.Background(), t, &procspec.Spec{
		Title:   "fail",
		Command: "exit 7",
		Kind:    procspec.KindShell,
		Log:     true,
	})

	assert.Equal(t, procspec.StateCompleted, rec.State())
	assert.Equal(t, 7, rec.ExitCode())
}

func TestRunnerCommandNotFound(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec, out := runSpec(context.Background(), t, &procspec.Spec{
		Title:   "bad",
		Command: "nonexistent-binary-xyz",
		Kind:    procspec.KindDirect,
		Log:     true,
	})

	assert.Equal(t, procspec.StateFailed, rec.State())
	require.ErrorIs(t, rec.Reason(), ErrCommandNotFound)
	assert.Contains(t, out, "bad | [error] ")
}

func TestRunnerStderrIsMultiplexed(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	_, out := runSpec(context.Background(), t, &procspec.Spec{
		Title:   "err",
		Command: "echo oops >&2",
		Kind:    procspec.KindShell,
		Log:     true,
	})

	assert.Equal(t, "err | oops\n", out)
}

func TestRunnerPartialFinalLine(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	_, out := runSpec(context.Background(), t, &procspec.Spec{
		Title:   "partial",
		Command: "printf 'no newline'",
		Kind:    procspec.KindShell,
		Log:     true,
	})

	assert.Equal(t, "partial | no newline\n", out)
}

func TestRunnerLogDisabled(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	rec, out := runSpec(context.Background(), t, &procspec.Spec{
		Title:   "quiet",
		Command: "echo should not appear",
		Kind:    procspec.KindShell,
		Log:     false,
	})

	assert.Equal(t, procspec.StateCompleted, rec.State())
	assert.Empty(t, out)
}

func TestRunnerEnvOverlayWins(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	t.Setenv("WATCHMUX_TEST_VAR", "inherited")

	_, out := runSpec(context.Background(), t, &procspec.Spec{
		Title:   "env",
		Command: `echo "$WATCHMUX_TEST_VAR $WATCHMUX_TEST_EXTRA"`,
		Kind:    procspec.KindShell,
		Log:     true,
		Env: map[string]string{
			"WATCHMUX_TEST_VAR":   "overlay",
			"WATCHMUX_TEST_EXTRA": "added",
		},
	})

	assert.Equal(t, "env | overlay added\n", out)
}

func TestRunnerWaitFor(t *testing.T) {
	skipOnWindows(t)

	t.Run("success gates command", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		rec, out := runSpec(context.Background(), t, &procspec.Spec{
			Title:   "gated",
			Command: "echo ran",
			Kind:    procspec.KindShell,
			Log:     true,
			WaitFor: "true",
		})

		assert.Equal(t, procspec.StateCompleted, rec.State())
		assert.Equal(t, "gated | ran\n", out)
	})

	t.Run("failure prevents command", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		rec, out := runSpec(context.Background(), t, &procspec.Spec{
			Title:   "gated",
			Command: "echo ran",
			Kind:    procspec.KindShell,
			Log:     true,
			WaitFor: "exit 2",
		})

		assert.Equal(t, procspec.StateFailed, rec.State())

		var pErr *PreconditionError

		require.ErrorAs(t, rec.Reason(), &pErr)
		assert.Equal(t, 2, pErr.ExitCode)
		assert.NotContains(t, out, "gated | ran")
		assert.Contains(t, out, "gated | [error] ")
	})

	t.Run("output is discarded", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		_, out := runSpec(context.Background(), t, &procspec.Spec{
			Title:   "gated",
			Command: "echo ran",
			Kind:    procspec.KindShell,
			Log:     true,
			WaitFor: "echo gate noise",
		})

		assert.Equal(t, "gated | ran\n", out)
	})
}

func TestRunnerShutdownWhileRunning(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	rec, _ := runSpec(ctx, t, &procspec.Spec{
		Title:   "sleeper",
		Command: "sleep 30",
		Kind:    procspec.KindShell,
		Log:     true,
	}, WithGracePeriod(time.Second))

	assert.Equal(t, procspec.StateTerminated, rec.State())
	assert.Less(t, time.Since(start), 10*time.Second, "process should be reaped well before it finishes sleeping")
}

func TestRunnerShutdownBeforeStart(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, out := runSpec(ctx, t, &procspec.Spec{
		Title:   "never",
		Command: "sleep 30",
		Kind:    procspec.KindShell,
		Log:     true,
	})

	assert.Equal(t, procspec.StateTerminated, rec.State(), "a record caught by shutdown before its process starts is terminated, not failed")
	assert.Empty(t, out, "shutdown before start must not produce a diagnostic line")
}

func TestRunnerShutdownDuringWaitFor(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	rec, out := runSpec(ctx, t, &procspec.Spec{
		Title:   "waiting",
		Command: "echo ran",
		Kind:    procspec.KindShell,
		Log:     true,
		WaitFor: "sleep 30",
	})

	assert.Equal(t, procspec.StateTerminated, rec.State())
	assert.NotContains(t, out, "waiting | ran")
}
