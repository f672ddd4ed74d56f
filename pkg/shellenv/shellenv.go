// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shellenv renders parsed declaration records as shell variable
// assignments.
package shellenv

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/iancoleman/strcase"
	"github.com/kballard/go-shellquote"
	"github.com/yeetrun/yopts/pkg/declfile"
)

// Options controls how assignments are written.
type Options struct {
	// Prefix is prepended to every variable name, joined with '_'.
	Prefix string
	// Arrays writes sequences as bash arrays instead of a single string of
	// quoted words.
	Arrays bool
	// Export prefixes each line with "export ".
	Export bool
}

// Key returns the variable name for field under prefix.
func Key(prefix, field string) string {
	key := strcase.ToScreamingSnake(field)
	if prefix == "" {
		return key
	}
	return strcase.ToScreamingSnake(prefix) + "_" + key
}

// Write writes one assignment per field of rec. Optional fields that were
// not given are skipped. The selected command is written as PREFIX_COMMAND
// and its fields under PREFIX_<COMMAND>.
func Write(w io.Writer, rec *declfile.Record, opts Options) error {
	bw := bufio.NewWriter(w)
	writeRecord(bw, rec, opts.Prefix, opts)
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, rec *declfile.Record, prefix string, opts Options) {
	for _, name := range rec.Names() {
		v, _ := rec.Get(name)
		if v == nil {
			continue
		}
		typ, _ := rec.Type(name)
		words := rec.Words(name)
		var value string
		switch {
		case !typ.Seq():
			value = shellquote.Join(words...)
		case opts.Arrays:
			value = "(" + shellquote.Join(words...) + ")"
		default:
			value = shellquote.Join(shellquote.Join(words...))
		}
		assign(w, Key(prefix, name), value, opts)
	}
	if name, sub := rec.Command(); sub != nil {
		assign(w, Key(prefix, declfile.CommandField), shellquote.Join(name), opts)
		writeRecord(w, sub, Key(prefix, name), opts)
	}
}

func assign(w *bufio.Writer, key, value string, opts Options) {
	if opts.Export {
		w.WriteString("export ")
	}
	fmt.Fprintf(w, "%s=%s\n", key, value)
}

// WriteFile writes the assignments of rec to the env file at name.
func WriteFile(name string, rec *declfile.Record, opts Options) error {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := Write(f, rec, opts); err != nil {
		return fmt.Errorf("failed to write env: %v", err)
	}
	return f.Close()
}
