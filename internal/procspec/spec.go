// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package procspec

import (
	"errors"
	"fmt"
	"regexp"
)

// MaxConcurrent is the hard ceiling on simultaneously active processes,
// counting both precondition checks and main commands.
const MaxConcurrent = 1024

var (
	// ErrEmptyTitle is returned when a spec has no title.
	ErrEmptyTitle = errors.New("process title must not be empty")
	// ErrEmptyCommand is returned when a spec has no command.
	ErrEmptyCommand = errors.New("process cmd must not be empty")
	// ErrInvalidEnvKey is returned when an environment key is not a valid variable name.
	ErrInvalidEnvKey = errors.New("invalid environment variable name")
	// ErrUnknownKind is returned when an unknown process type string is encountered.
	ErrUnknownKind = errors.New("unknown process type")
)

// envKeyRegexp matches valid environment variable names.
var envKeyRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Kind determines how a spec's command line is executed.
type Kind int

const (
	// KindDirect executes the command directly, resolving the executable via the search path.
	KindDirect Kind = iota
	// KindShell passes the whole command text to a shell interpreter, permitting multi-line scripts.
	KindShell
)

const (
	kindDirectStr  = "cmd"
	kindShellStr   = "shell"
	kindUnknownStr = "unknown"
)

// String returns the configuration string for the Kind.
func (k Kind) String() string {
	switch k {
	case KindDirect:
		return kindDirectStr
	case KindShell:
		return kindShellStr
	default:
		return kindUnknownStr
	}
}

// NewKind creates a Kind from its configuration string.
// The empty string is the default, KindDirect.
func NewKind(s string) (Kind, error) {
	switch s {
	case kindDirectStr, "":
		return KindDirect, nil
	case kindShellStr:
		return KindShell, nil
	default:
		return Kind(-1), fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Spec is the immutable description of one watched process.
type Spec struct {
	Title   string            // Display label prefixed to every output line.
	Command string            // The command line or shell script body.
	Kind    Kind              // How Command is executed.
	Log     bool              // Whether the process's output is multiplexed.
	WaitFor string            // Optional gating command; must succeed before Command starts.
	Env     map[string]string // Overlay onto the inherited environment.
}

// Validate checks the spec for construction-time errors. All violations are
// joined so a user sees every problem with the entry at once.
func (s *Spec) Validate() error {
	var errs []error

	if s.Title == "" {
		errs = append(errs, ErrEmptyTitle)
	}

	if s.Command == "" {
		errs = append(errs, ErrEmptyCommand)
	}

	for k := range s.Env {
		if !envKeyRegexp.MatchString(k) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidEnvKey, k))
		}
	}

	return errors.Join(errs...)
}
