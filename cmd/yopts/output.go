// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kr/pretty"
	"github.com/yeetrun/yopts/pkg/declfile"
	"github.com/yeetrun/yopts/pkg/shellenv"
	"gopkg.in/yaml.v3"
)

type outputFormat string

const (
	formatSh   outputFormat = "sh"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
	formatGo   outputFormat = "go"
)

func (f *outputFormat) UnmarshalText(b []byte) error {
	switch v := outputFormat(b); v {
	case formatSh, formatJSON, formatYAML, formatGo:
		*f = v
		return nil
	}
	return fmt.Errorf("unknown output format %q", b)
}

// output renders parsed records.
type output struct {
	format outputFormat
	prefix string
	arrays bool
	export bool
	// compact writes JSON on a single line.
	compact bool
}

func (o output) write(w io.Writer, rec *declfile.Record) error {
	switch o.format {
	case formatJSON:
		enc := json.NewEncoder(w)
		if !o.compact {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(rec.Map())
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rec.Map()); err != nil {
			return err
		}
		return enc.Close()
	case formatGo:
		_, err := pretty.Fprintf(w, "%# v\n", rec.Map())
		return err
	}
	return shellenv.Write(w, rec, shellenv.Options{
		Prefix: o.prefix,
		Arrays: o.arrays,
		Export: o.export,
	})
}
