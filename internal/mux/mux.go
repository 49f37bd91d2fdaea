// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package mux

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/matt-FFFFFF/watchmux/internal/color"
)

const (
	// lineBuffer is the capacity of the line channel shared by all producers.
	lineBuffer = 1024
	// delimiter separates the title prefix from the line content.
	delimiter = " | "
	// errorTag marks diagnostic lines produced by the orchestration itself
	// rather than by the process.
	errorTag = "[error] "
)

// ErrOutputWrite is returned when the output stream could not be written to.
var ErrOutputWrite = errors.New("failed to write to output stream")

// titlePalette holds the colors assigned to process titles, in rotation.
var titlePalette = []color.Code{
	color.FgCyan,
	color.FgGreen,
	color.FgYellow,
	color.FgMagenta,
	color.FgBlue,
	color.FgHiCyan,
	color.FgHiGreen,
	color.FgHiYellow,
	color.FgHiMagenta,
	color.FgHiBlue,
}

// TitleColor returns the palette color for the i-th process.
func TitleColor(i int) color.Code {
	return titlePalette[i%len(titlePalette)]
}

// Line is one line of output attributed to a titled producer.
type Line struct {
	Title string     // Producer's display label.
	Text  string     // Line content, without trailing newline.
	Color color.Code // Color applied to the title prefix.
	Diag  bool       // Diagnostic line, tagged with errorTag.
}

// Multiplexer serializes Line values from concurrent producers into a single
// writer. Create one with New; it must be closed with Close to flush and stop
// the consumer goroutine.
type Multiplexer struct {
	w     io.Writer
	lines chan Line
	done  chan struct{}

	mu   sync.Mutex
	werr error
}

// New creates a Multiplexer writing to w and starts its consumer goroutine.
func New(w io.Writer) *Multiplexer {
	m := &Multiplexer{
		w:     w,
		lines: make(chan Line, lineBuffer),
		done:  make(chan struct{}),
	}

	go m.consume()

	return m
}

// Send queues one line for output. It must not be called after Close.
func (m *Multiplexer) Send(line Line) {
	m.lines <- line
}

// SendError queues a diagnostic line of the form "<title> | [error] <reason>".
func (m *Multiplexer) SendError(title string, c color.Code, reason error) {
	m.Send(Line{Title: title, Text: reason.Error(), Color: c, Diag: true})
}

// Close stops accepting lines, waits for the consumer to drain every queued
// line, and returns the first write error encountered, if any.
// All producers must have finished sending before Close is called.
func (m *Multiplexer) Close() error {
	close(m.lines)
	<-m.done

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.werr
}

func (m *Multiplexer) consume() {
	defer close(m.done)

	for line := range m.lines {
		if _, err := io.WriteString(m.w, format(line)); err != nil {
			m.setErr(errors.Join(ErrOutputWrite, err))
		}
	}
}

func (m *Multiplexer) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.werr == nil {
		m.werr = err
	}
}

func format(line Line) string {
	text := line.Text
	if line.Diag {
		text = errorTag + text
	}

	// A Reset color means an uncolored title.
	title := line.Title
	if line.Color != color.Reset {
		title = color.Colorize(title, line.Color)
	}

	return fmt.Sprintf("%s%s%s\n", title, delimiter, text)
}
