// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads the watchmux process list from a YAML document. The
// document can come from an explicit file path, from stdin ("-"), or from a
// .watchmuxrc.yaml file in the current directory. Every entry is validated
// before anything is spawned; all invalid entries are reported together and
// the program refuses to start.
package config
