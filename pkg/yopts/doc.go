// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package yopts parses command line arguments into typed records.
//
// A record type is described by a table of Fields. Build turns the table
// into a Registry: the option names, free-argument slots and subcommand
// table of the type, plus its usage text. The Registry then drives the
// tokenizer in package argv and writes each value into the record.
//
// There are two ways to write the table.
//
// # Typed declarations
//
// Slots bind a field to its storage through an accessor function, with no
// reflection:
//
//	type Opts struct {
//	    Help    bool
//	    Verbose bool
//	    Jobs    int
//	    Files   []string
//	}
//
//	var schema = yopts.MustSchema[Opts](yopts.Decl{
//	    Fields: []yopts.Field{
//	        {Name: "help", Slot: yopts.Var(func(o *Opts) *bool { return &o.Help }, nil)},
//	        {Name: "verbose", Slot: yopts.Var(func(o *Opts) *bool { return &o.Verbose }, nil)},
//	        {Name: "jobs", Default: "4", Slot: yopts.Var(func(o *Opts) *int { return &o.Jobs }, nil)},
//	        {Name: "files", Free: true, Slot: yopts.List(func(o *Opts) *[]string { return &o.Files }, nil)},
//	    },
//	})
//
// # Struct tags
//
// SchemaOf derives the same table from struct tags:
//
//	type Opts struct {
//	    Help    bool     `help:"Print this message"`
//	    Verbose bool     `help:"Enable verbose output"`
//	    Jobs    int      `default:"4" help:"Parallel jobs"`
//	    Files   []string `yopts:"free"`
//	}
//
//	opts := yopts.MustSchemaOf[Opts]().ParseArgsOrExit(argv.AllOptions)
//
// # Subcommands
//
// A command field holds a pointer to a union struct with one pointer per
// subcommand. After parsing, at most one of them is non-nil. The first free
// argument that has no other slot selects the subcommand, and every
// argument after it is parsed by that subcommand's own Registry.
//
// # Errors
//
// Parse failures are *Error values whose Kind identifies the condition;
// compare with errors.Is against ErrMissingRequired and friends. Invalid
// declarations are reported as *ConfigError by Build, never while parsing.
package yopts
