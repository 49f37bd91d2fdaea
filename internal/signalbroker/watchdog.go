package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/watchmux/internal/ctxlog"
)

// exitFunc allows mocking os.Exit in tests.
var exitFunc = os.Exit

// forcedExitCode is the process exit code used when a second signal forces
// termination during an unresponsive shutdown.
const forcedExitCode = 130

// Watch monitors the signal channel and handles signals.
// The first signal cancels the context, which starts a graceful shutdown of
// every running process. A second signal of the same type forces the process
// to exit immediately.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	sigMap := make(map[os.Signal]struct{})
	for sig := range sigCh {
		if _, ok := sigMap[sig]; ok {
			ctxlog.Logger(ctx).Info("watchdog", "detail", "received second signal of type, forcefully terminating", "signal", sig.String())
			exitFunc(forcedExitCode)

			return
		}

		ctxlog.Logger(ctx).Info("watchdog", "detail", "received signal, shutting down", "signal", sig.String())

		sigMap[sig] = struct{}{}

		cancel()
	}
}
