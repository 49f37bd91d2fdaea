// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/matt-FFFFFF/watchmux/internal/ctxlog"
	"github.com/matt-FFFFFF/watchmux/internal/mux"
	"github.com/matt-FFFFFF/watchmux/internal/procspec"
	"github.com/matt-FFFFFF/watchmux/internal/runner"
)

// ErrTooManyProcesses is returned when the process list exceeds the
// concurrency ceiling. The orchestrator fails fast before anything is
// spawned; queuing beyond the ceiling is out of scope.
var ErrTooManyProcesses = fmt.Errorf("process list exceeds the limit of %d concurrent processes", procspec.MaxConcurrent)

// Orchestrator runs a set of process specs to completion.
type Orchestrator struct {
	specs   []*procspec.Spec
	records []*procspec.RunRecord
	out     io.Writer
	grace   time.Duration
}

// Option implements a functional options pattern for Orchestrator.
type Option func(*Orchestrator)

// WithOutput sets the writer the multiplexed output is written to.
// The default is stdout.
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) {
		o.out = w
	}
}

// WithGracePeriod sets the termination grace period passed to every runner.
func WithGracePeriod(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.grace = d
	}
}

// New creates an Orchestrator for the given specs, admitting them against the
// concurrency ceiling. One run record is created per spec.
func New(specs []*procspec.Spec, opts ...Option) (*Orchestrator, error) {
	if len(specs) > procspec.MaxConcurrent {
		return nil, ErrTooManyProcesses
	}

	o := &Orchestrator{
		specs:   specs,
		records: make([]*procspec.RunRecord, 0, len(specs)),
		out:     os.Stdout,
		grace:   runner.DefaultGracePeriod,
	}

	for _, opt := range opts {
		opt(o)
	}

	for _, spec := range specs {
		o.records = append(o.records, procspec.NewRunRecord(spec))
	}

	return o, nil
}

// Records returns the run records, one per spec, in spec order.
func (o *Orchestrator) Records() []*procspec.RunRecord {
	return o.records
}

// Run starts one runner per spec and blocks until every run record has reached
// a terminal state. When the context is cancelled, every runner terminates its
// child process and Run still waits for all of them to settle, so no child is
// left unreaped. Individual process failures and exit codes do not produce an
// error; only orchestration-level problems do.
func (o *Orchestrator) Run(ctx context.Context) error {
	logger := ctxlog.Logger(ctx)
	logger.Debug("starting processes", "count", len(o.specs))

	m := mux.New(o.out)

	var wg sync.WaitGroup

	for i, rec := range o.records {
		wg.Add(1)

		r := runner.New(rec, m, mux.TitleColor(i), runner.WithGracePeriod(o.grace))

		go func() {
			defer wg.Done()
			r.Run(ctx)
		}()
	}

	settled := make(chan struct{})

	go func() {
		defer close(settled)
		wg.Wait()
	}()

	// Wait for all runners to settle or an interrupt, whichever comes first.
	// On interrupt the runners observe the same context and terminate their
	// children; we still wait for every record to settle before closing the
	// output stream.
	select {
	case <-settled:
		logger.Debug("all processes reached a terminal state")
	case <-ctx.Done():
		logger.Info("shutdown requested, terminating processes")
		<-settled
		logger.Debug("all processes settled after shutdown")
	}

	return m.Close()
}
