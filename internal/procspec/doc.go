// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package procspec defines the immutable description of a watched process and
// the per-process run record. A Spec is created once from configuration and
// validated before anything is spawned. A RunRecord tracks the lifecycle of a
// single spec through a forward-only state machine; it is mutated only by the
// runner that owns it and read by the orchestrator.
package procspec
