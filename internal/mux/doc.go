// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package mux serializes line output from any number of concurrent producers
// into a single writer. All producers send Line values into one channel owned
// by a single consumer goroutine; because only the consumer ever touches the
// writer, each line is written atomically with respect to every other line.
// Lines from the same producer keep their relative order; lines from
// different producers may interleave arbitrarily.
package mux
