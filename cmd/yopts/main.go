// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command yopts parses command lines against option declaration files, for
// use from shell scripts:
//
//	eval "$(yopts parse -s deploy.toml -- "$@")"
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/yeetrun/yopts/pkg/argv"
	"github.com/yeetrun/yopts/pkg/tui"
	"github.com/yeetrun/yopts/pkg/yopts"
)

// version is overridden at link time.
var version = "0.3.0"

type options struct {
	_       struct{} `help:"Parse command lines against option declaration files."`
	Help    bool     `help:"print help message"`
	Verbose bool     `help:"log diagnostics to stderr"`
	Command *command `yopts:"command,required"`
}

type command struct {
	Parse   *parseOpts   `help:"Parse arguments and print the result"`
	Usage   *usageOpts   `help:"Print the usage of a declaration"`
	Check   *checkOpts   `help:"Validate declaration files"`
	Batch   *batchOpts   `help:"Parse every line of a file"`
	Version *versionOpts `help:"Print the version"`
}

type parseOpts struct {
	Help   bool         `help:"print help message"`
	Spec   string       `short:"s" yopts:"required" meta:"FILE" help:"declaration file"`
	Format outputFormat `short:"f" default:"sh" meta:"FORMAT" help:"output format: sh, json, yaml or go"`
	Prefix string       `short:"p" help:"variable name prefix for sh output"`
	Arrays bool         `short:"a" help:"write sequences as bash arrays"`
	Export bool         `short:"e" help:"prefix sh assignments with export"`
	Args   []string     `yopts:"free" help:"arguments to parse, after --"`
}

func (o *parseOpts) output() output {
	return output{format: o.Format, prefix: o.Prefix, arrays: o.Arrays, export: o.Export}
}

type usageOpts struct {
	Help bool    `help:"print help message"`
	Spec string  `short:"s" yopts:"required" meta:"FILE" help:"declaration file"`
	Name *string `yopts:"free" help:"print the usage of this command instead"`
}

type checkOpts struct {
	Help  bool     `help:"print help message"`
	Quiet bool     `help:"only report failures"`
	Files []string `yopts:"free,required" help:"declaration files"`
}

type batchOpts struct {
	Help   bool         `help:"print help message"`
	Spec   string       `short:"s" yopts:"required" meta:"FILE" help:"declaration file"`
	Jobs   int          `short:"j" default:"4" meta:"N" help:"parse N lines at a time"`
	Format outputFormat `short:"f" default:"sh" meta:"FORMAT" help:"output format: sh, json, yaml or go"`
	Prefix string       `short:"p" help:"variable name prefix for sh output"`
	Export bool         `short:"e" help:"prefix sh assignments with export"`
	File   string       `yopts:"free,required" help:"file of command lines, - for stdin"`
}

func (o *batchOpts) output() output {
	return output{format: o.Format, prefix: o.Prefix, export: o.Export}
}

type versionOpts struct {
	Help      bool   `help:"print help message"`
	Satisfies string `meta:"CONSTRAINT" help:"exit 1 unless the version satisfies CONSTRAINT"`
}

// exitError carries a process exit status for a failure that has already
// been reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// env is the process environment a subcommand runs in.
type env struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	color          tui.Colorizer
}

// failf reports a failure on stderr and returns an exitError with code.
func (e *env) failf(code int, format string, args ...any) error {
	fmt.Fprintf(e.stderr, "%s %s\n", e.color.Error("yopts:"), fmt.Sprintf(format, args...))
	return &exitError{code: code}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	schema := yopts.MustSchemaOf[options]()
	opts, err := schema.Drive("yopts", args, argv.AllOptions, stdout, stderr)
	if err != nil {
		return yopts.ExitCode(err)
	}

	log.SetFlags(0)
	log.SetPrefix("yopts: ")
	log.SetOutput(io.Discard)
	if opts.Verbose {
		log.SetOutput(stderr)
	}

	e := &env{stdin: stdin, stdout: stdout, stderr: stderr, color: tui.NewColorizer(stderr)}
	c := opts.Command
	switch {
	case c.Parse != nil:
		err = runParse(e, c.Parse)
	case c.Usage != nil:
		err = runUsage(e, c.Usage)
	case c.Check != nil:
		err = runCheck(e, c.Check)
	case c.Batch != nil:
		err = runBatch(e, c.Batch)
	case c.Version != nil:
		err = runVersion(e, c.Version)
	}
	var ee *exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ee):
		return ee.code
	}
	fmt.Fprintf(stderr, "%s %v\n", e.color.Error("yopts:"), err)
	return 1
}

func runVersion(e *env, o *versionOpts) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("bad version %q: %w", version, err)
	}
	if o.Satisfies == "" {
		fmt.Fprintln(e.stdout, v.String())
		return nil
	}
	c, err := semver.NewConstraint(o.Satisfies)
	if err != nil {
		return e.failf(2, "invalid constraint %q: %v", o.Satisfies, err)
	}
	if ok, errs := c.Validate(v); !ok {
		for _, err := range errs {
			log.Printf("%v", err)
		}
		return &exitError{code: 1}
	}
	return nil
}
