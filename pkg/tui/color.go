// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tui colours terminal output for the yopts driver and tools.
package tui

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var isTerminalFn = term.IsTerminal

// Style is a set of terminal attributes.
type Style []color.Attribute

var (
	StyleError   = Style{color.FgRed, color.Bold}
	StyleHeading = Style{color.Bold}
	StyleOK      = Style{color.FgGreen}
	StyleWarn    = Style{color.FgYellow}
	StyleDim     = Style{color.FgHiBlack}
)

// Colorizer styles text when its writer is a colour-capable terminal. The
// zero value never styles.
type Colorizer struct {
	Enabled bool
}

// NewColorizer returns a Colorizer for w. Colour is enabled only when w is a
// terminal, NO_COLOR is unset and TERM is neither empty nor "dumb".
func NewColorizer(w io.Writer) Colorizer {
	return ForceColorizer(IsTerminal(w))
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminalFn(int(f.Fd()))
}

// ForceColorizer skips terminal detection but still honours NO_COLOR and
// TERM.
func ForceColorizer(enabled bool) Colorizer {
	if !enabled {
		return Colorizer{}
	}
	if os.Getenv("NO_COLOR") != "" {
		return Colorizer{}
	}
	if t := os.Getenv("TERM"); t == "" || t == "dumb" {
		return Colorizer{}
	}
	return Colorizer{Enabled: true}
}

// Wrap styles text when colour is enabled.
func (z Colorizer) Wrap(s Style, text string) string {
	if !z.Enabled || len(s) == 0 {
		return text
	}
	// color decides on its own from os.Stdout; the Colorizer already has.
	c := color.New(s...)
	c.EnableColor()
	return c.Sprint(text)
}

func (z Colorizer) Error(text string) string { return z.Wrap(StyleError, text) }

func (z Colorizer) Heading(text string) string { return z.Wrap(StyleHeading, text) }

func (z Colorizer) Dim(text string) string { return z.Wrap(StyleDim, text) }

func (z Colorizer) OK(text string) string { return z.Wrap(StyleOK, text) }

func (z Colorizer) Warn(text string) string { return z.Wrap(StyleWarn, text) }
