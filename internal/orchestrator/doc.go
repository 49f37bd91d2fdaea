// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package orchestrator owns the full set of process specs. It admits them
// against the concurrency ceiling, starts one runner per spec, wires every
// runner to the output multiplexer, and waits for either all run records to
// reach a terminal state or the context to be cancelled by an interrupt.
package orchestrator
