// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/yeetrun/yopts/pkg/tui"
	"golang.org/x/sync/errgroup"
)

type batchLine struct {
	n    int
	args []string
}

type batchResult struct {
	out []byte
	err error
}

// readLines splits each non-blank, non-comment line of r into words using
// shell quoting rules.
func readLines(r io.Reader) ([]batchLine, error) {
	var lines []batchLine
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args, err := shellquote.Split(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		lines = append(lines, batchLine{n: n, args: args})
	}
	return lines, sc.Err()
}

func runBatch(e *env, o *batchOpts) error {
	if o.Jobs < 1 {
		return e.failf(2, "--jobs must be at least 1, got %d", o.Jobs)
	}
	l, err := load(o.Spec)
	if err != nil {
		return err
	}
	r := e.stdin
	if o.File != "-" {
		f, err := os.Open(o.File)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	lines, err := readLines(r)
	if err != nil {
		return fmt.Errorf("%s: %w", o.File, err)
	}
	log.Printf("parsing %d lines with %d jobs", len(lines), o.Jobs)

	tick, stop := func() {}, func() {}
	if tui.IsTerminal(e.stderr) && len(lines) > 1 {
		p := tui.NewProgress(e.stderr, "lines", len(lines), tui.WithColor(e.color))
		p.Start()
		defer p.Stop()
		tick, stop = func() { p.Add(1) }, p.Stop
	}

	out := o.output()
	out.compact = true
	results := make([]batchResult, len(lines))
	var g errgroup.Group
	g.SetLimit(o.Jobs)
	for i, ln := range lines {
		g.Go(func() error {
			defer tick()
			rec, err := l.schema.Parse(ln.args, l.style)
			if err != nil {
				results[i].err = err
				return nil
			}
			var buf bytes.Buffer
			if err := out.write(&buf, rec); err != nil {
				return fmt.Errorf("line %d: %w", ln.n, err)
			}
			results[i].out = buf.Bytes()
			return nil
		})
	}
	err = g.Wait()
	stop()
	if err != nil {
		return err
	}

	failed := 0
	for i, res := range results {
		n := lines[i].n
		if res.err != nil {
			failed++
			fmt.Fprintf(e.stderr, "%s line %d: %v\n", e.color.Error(l.spec.Name+":"), n, res.err)
			continue
		}
		switch out.format {
		case formatSh:
			fmt.Fprintf(e.stdout, "# line %d\n", n)
		case formatYAML:
			fmt.Fprintln(e.stdout, "---")
		}
		e.stdout.Write(res.out)
	}
	if failed > 0 {
		log.Printf("%d of %d lines failed", failed, len(lines))
		return &exitError{code: 2}
	}
	return nil
}
