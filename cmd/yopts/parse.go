// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/yeetrun/yopts/pkg/argv"
	"github.com/yeetrun/yopts/pkg/declfile"
	"github.com/yeetrun/yopts/pkg/tui"
	"github.com/yeetrun/yopts/pkg/yopts"
)

type loaded struct {
	spec   *declfile.Spec
	schema *yopts.Schema[declfile.Record]
	style  argv.Style
}

func load(path string) (*loaded, error) {
	spec, err := declfile.Load(path)
	if err != nil {
		return nil, err
	}
	style, err := spec.ParseStyle()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	schema, err := spec.Schema()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Printf("loaded %s: %d fields, %d commands, %v", path, len(spec.Fields), len(spec.Commands), style)
	return &loaded{spec: spec, schema: schema, style: style}, nil
}

func runParse(e *env, o *parseOpts) error {
	l, err := load(o.Spec)
	if err != nil {
		return err
	}
	out := o.output()
	// The sh output is meant for eval, so usage and errors go to stderr and
	// the shell is told how to exit.
	helpOut := e.stdout
	if out.format == formatSh {
		helpOut = e.stderr
	}
	rec, err := l.schema.Drive(l.spec.Name, o.Args, l.style, helpOut, e.stderr)
	if err != nil {
		code := yopts.ExitCode(err)
		if out.format == formatSh {
			fmt.Fprintf(e.stdout, "exit %d\n", code)
		}
		return &exitError{code: code}
	}
	log.Printf("parsed %d arguments", len(o.Args))
	return out.write(e.stdout, rec)
}

func runUsage(e *env, o *usageOpts) error {
	l, err := load(o.Spec)
	if err != nil {
		return err
	}
	c := tui.NewColorizer(e.stdout)
	var b strings.Builder
	if o.Name != nil {
		u, ok := l.schema.CommandUsage(*o.Name)
		if !ok {
			return e.failf(2, "%s has no command %q", l.spec.Name, *o.Name)
		}
		fmt.Fprintf(&b, "%s %s %s [OPTIONS]\n\n%s\n", c.Heading("Usage:"), l.spec.Name, *o.Name, u)
	} else {
		fmt.Fprintf(&b, "%s %s [OPTIONS]\n\n%s\n", c.Heading("Usage:"), l.spec.Name, l.schema.Usage())
		if list, ok := l.schema.CommandList(); ok {
			fmt.Fprintf(&b, "\n%s\n%s\n", c.Heading("Available commands:"), list)
		}
	}
	_, err = fmt.Fprint(e.stdout, b.String())
	return err
}

func runCheck(e *env, o *checkOpts) error {
	c := tui.NewColorizer(e.stdout)
	failed := 0
	for _, path := range o.Files {
		l, err := load(path)
		if err != nil {
			failed++
			fmt.Fprintf(e.stderr, "%s %v\n", e.color.Error("FAIL"), err)
			continue
		}
		if !o.Quiet {
			fmt.Fprintf(e.stdout, "%s %s (%d fields, %d commands)\n", c.OK("ok"), path, len(l.spec.Fields), len(l.spec.Commands))
		}
	}
	if failed > 0 {
		return &exitError{code: 1}
	}
	return nil
}
