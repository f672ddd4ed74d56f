// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yeetrun/yopts/pkg/argv"
	"github.com/yeetrun/yopts/pkg/tui"
)

// Drive parses args like a program's main function would. On a parse error
// it writes "prog: message" to stderr and returns an error matching both
// ErrShown and the *Error. On a help request it writes usage to stdout and
// returns ErrHelp.
func (s *Schema[R]) Drive(prog string, args []string, style argv.Style, stdout, stderr io.Writer) (*R, error) {
	rec, err := s.Parse(args, style)
	if err != nil {
		c := tui.NewColorizer(stderr)
		fmt.Fprintf(stderr, "%s %v\n", c.Error(prog+":"), err)
		return nil, fmt.Errorf("%w: %w", ErrShown, err)
	}
	if s.reg.HelpRequested(rec) {
		writeHelp(stdout, prog, s.reg, rec)
		return rec, ErrHelp
	}
	return rec, nil
}

func writeHelp(w io.Writer, prog string, r *Registry, rec any) {
	c := tui.NewColorizer(w)
	var b strings.Builder
	b.WriteString(c.Heading("Usage:"))
	b.WriteByte(' ')
	b.WriteString(prog)
	for _, name := range r.CommandPath(rec) {
		b.WriteByte(' ')
		b.WriteString(name)
	}
	b.WriteString(" [OPTIONS]\n\n")
	b.WriteString(r.SelfUsage(rec))
	b.WriteByte('\n')
	if list, ok := r.SelfCommandList(rec); ok {
		b.WriteByte('\n')
		b.WriteString(c.Heading("Available commands:"))
		b.WriteByte('\n')
		b.WriteString(list)
		b.WriteByte('\n')
	}
	io.WriteString(w, b.String())
}

// ExitCode maps a Drive error to a process exit status: 0 for success and
// help requests, 2 for everything else.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, ErrHelp) {
		return 0
	}
	return 2
}

// ParseArgsOrExit parses the process arguments. It exits with status 0
// after printing help and status 2 after printing an error.
func (s *Schema[R]) ParseArgsOrExit(style argv.Style) *R {
	prog := filepath.Base(os.Args[0])
	rec, err := s.Drive(prog, os.Args[1:], style, os.Stdout, os.Stderr)
	if err != nil {
		os.Exit(ExitCode(err))
	}
	return rec
}
