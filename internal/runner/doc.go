// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runner owns the lifecycle of a single watched process: the optional
// wait_for gating command, spawning the main command, streaming its output
// line by line to the multiplexer, and terminating the child on shutdown.
// Each runner mutates only its own run record.
package runner
