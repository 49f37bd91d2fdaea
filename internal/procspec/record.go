// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package procspec

import (
	"sync"
)

// State is the lifecycle state of a RunRecord.
type State int

const (
	// StatePending means the record has been created but nothing has been spawned.
	StatePending State = iota
	// StateAwaitingPrecondition means the spec's wait_for command is running.
	StateAwaitingPrecondition
	// StateRunning means the main command is running.
	StateRunning
	// StateCompleted means the main command exited; any exit code, including non-zero.
	StateCompleted
	// StateFailed means the spec never ran to completion: precondition failure,
	// spawn failure, or an I/O failure reading its output.
	StateFailed
	// StateTerminated means the process was stopped by a shutdown request.
	StateTerminated
)

// String returns the display name of the State.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAwaitingPrecondition:
		return "awaiting-precondition"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can occur from s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateTerminated
}

// RunRecord tracks the lifecycle of a single Spec. Transitions are guarded:
// the state machine is forward-only and an illegal transition is refused
// rather than applied. Safe for concurrent use.
type RunRecord struct {
	mu       sync.Mutex
	spec     *Spec
	state    State
	exitCode int
	reason   error
}

// NewRunRecord creates a RunRecord for the given spec in StatePending.
func NewRunRecord(spec *Spec) *RunRecord {
	return &RunRecord{
		spec:  spec,
		state: StatePending,
	}
}

// Spec returns the spec this record tracks.
func (r *RunRecord) Spec() *Spec {
	return r.spec
}

// State returns the current state.
func (r *RunRecord) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// ExitCode returns the recorded exit code. Only meaningful once the record
// has reached StateCompleted.
func (r *RunRecord) ExitCode() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.exitCode
}

// Reason returns the failure reason, or nil. Only meaningful once the record
// has reached StateFailed.
func (r *RunRecord) Reason() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.reason
}

// AwaitPrecondition transitions Pending -> AwaitingPrecondition.
func (r *RunRecord) AwaitPrecondition() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePending {
		return false
	}

	r.state = StateAwaitingPrecondition

	return true
}

// Start transitions Pending or AwaitingPrecondition -> Running.
func (r *RunRecord) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePending && r.state != StateAwaitingPrecondition {
		return false
	}

	r.state = StateRunning

	return true
}

// Complete transitions Running -> Completed and records the exit code.
func (r *RunRecord) Complete(exitCode int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRunning {
		return false
	}

	r.state = StateCompleted
	r.exitCode = exitCode

	return true
}

// Fail transitions any non-terminal state -> Failed and records the reason.
func (r *RunRecord) Fail(reason error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Terminal() {
		return false
	}

	r.state = StateFailed
	r.reason = reason

	return true
}

// Terminate transitions any non-terminal state -> Terminated.
func (r *RunRecord) Terminate() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Terminal() {
		return false
	}

	r.state = StateTerminated

	return true
}
