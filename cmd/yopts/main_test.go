// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const greet = "testdata/greet.toml"

func lines(s ...string) string { return strings.Join(s, "\n") + "\n" }

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		stdin      string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:     "parse sh",
			args:     []string{"parse", "-s", greet, "--", "--loud", "Ann"},
			wantCode: 0,
			wantStdout: lines(
				"HELP=false",
				"LOUD=true",
				"TIMES=1",
				"WHO=Ann",
			),
		},
		{
			name:     "parse sh prefix export",
			args:     []string{"parse", "-s", greet, "-p", "g", "-e", "--", "-t", "2", "Ann Lee"},
			wantCode: 0,
			wantStdout: lines(
				"export G_HELP=false",
				"export G_LOUD=false",
				"export G_TIMES=2",
				"export G_WHO='Ann Lee'",
			),
		},
		{
			name:     "parse json",
			args:     []string{"parse", "-s", greet, "-f", "json", "--", "Ann"},
			wantCode: 0,
			wantStdout: lines(
				"{",
				`  "help": false,`,
				`  "loud": false,`,
				`  "times": 1,`,
				`  "who": "Ann"`,
				"}",
			),
		},
		{
			name:     "parse yaml",
			args:     []string{"parse", "-s", greet, "-f", "yaml", "--", "-l", "Ann"},
			wantCode: 0,
			wantStdout: lines(
				"help: false",
				"loud: true",
				"times: 1",
				"who: Ann",
			),
		},
		{
			name:       "parse error sh",
			args:       []string{"parse", "-s", greet, "--", "--nope", "Ann"},
			wantCode:   2,
			wantStdout: "exit 2\n",
			wantStderr: "greet: unrecognized option `--nope`\n",
		},
		{
			name:       "parse missing free",
			args:       []string{"parse", "-s", greet, "-f", "json"},
			wantCode:   2,
			wantStderr: "greet: missing required free argument\n",
		},
		{
			name:       "bad format",
			args:       []string{"parse", "-s", greet, "--format", "xml"},
			wantCode:   2,
			wantStderr: "yopts: invalid argument to option `--format`: unknown output format \"xml\"\n",
		},
		{
			name:       "missing spec option",
			args:       []string{"parse"},
			wantCode:   2,
			wantStderr: "yopts: missing required option `--spec`\n",
		},
		{
			name:       "missing command",
			args:       nil,
			wantCode:   2,
			wantStderr: "yopts: missing required command\n",
		},
		{
			name:       "spec not found",
			args:       []string{"parse", "-s", "testdata/missing.toml"},
			wantCode:   1,
			wantStderr: "yopts: open testdata/missing.toml: no such file or directory\n",
		},
		{
			name:       "check",
			args:       []string{"check", greet},
			wantCode:   0,
			wantStdout: "ok testdata/greet.toml (4 fields, 0 commands)\n",
		},
		{
			name:     "check quiet",
			args:     []string{"check", "--quiet", greet},
			wantCode: 0,
		},
		{
			name:       "version",
			args:       []string{"version"},
			wantCode:   0,
			wantStdout: "0.3.0\n",
		},
		{
			name:     "version satisfied",
			args:     []string{"version", "--satisfies", ">= 0.2, < 1"},
			wantCode: 0,
		},
		{
			name:     "version unsatisfied",
			args:     []string{"version", "--satisfies", "^1.0"},
			wantCode: 1,
		},
		{
			name:     "batch stdin json",
			args:     []string{"batch", "-s", greet, "-f", "json", "-"},
			stdin:    "Ann\n-l Bob\n",
			wantCode: 0,
			wantStdout: lines(
				`{"help":false,"loud":false,"times":1,"who":"Ann"}`,
				`{"help":false,"loud":true,"times":1,"who":"Bob"}`,
			),
		},
		{
			name:       "batch jobs",
			args:       []string{"batch", "-s", greet, "-j", "0", "-"},
			wantCode:   2,
			wantStderr: "yopts: --jobs must be at least 1, got 0\n",
		},
		{
			name:       "batch bad quoting",
			args:       []string{"batch", "-s", greet, "-"},
			stdin:      "'Ann\n",
			wantCode:   1,
			wantStderr: "yopts: -: line 1: Unterminated single-quoted string\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, strings.NewReader(tt.stdin), &stdout, &stderr)
			if code != tt.wantCode {
				t.Errorf("run(%q) = %d, want %d; stderr: %s", tt.args, code, tt.wantCode, stderr.String())
			}
			if diff := cmp.Diff(tt.wantStdout, stdout.String()); diff != "" {
				t.Errorf("stdout mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantStderr, stderr.String()); diff != "" {
				t.Errorf("stderr mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunHelp(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantStdout []string
		wantStderr []string
	}{
		{
			name:       "top level",
			args:       []string{"-h"},
			wantStdout: []string{"Usage: yopts [OPTIONS]", "Available commands:", "  batch", "Parse every line of a file"},
		},
		{
			name:       "subcommand",
			args:       []string{"parse", "--help"},
			wantStdout: []string{"Usage: yopts parse [OPTIONS]", "-s, --spec FILE", "-f, --format FORMAT", "(default: sh)"},
		},
		{
			name:       "spec help sh",
			args:       []string{"parse", "-s", greet, "--", "-h"},
			wantStdout: []string{"exit 0"},
			wantStderr: []string{"Usage: greet [OPTIONS]", "Print a greeting", "Positional arguments:", "  who"},
		},
		{
			name:       "spec help json",
			args:       []string{"parse", "-s", greet, "-f", "json", "--", "-h"},
			wantStdout: []string{"Usage: greet [OPTIONS]", "  -l, --loud"},
		},
		{
			name:       "usage",
			args:       []string{"usage", "-s", greet},
			wantStdout: []string{"Usage: greet [OPTIONS]", "Optional arguments:", "  -t, --times TIMES", "(default: 1)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, strings.NewReader(""), &stdout, &stderr); code != 0 {
				t.Fatalf("run(%q) = %d, want 0; stderr: %s", tt.args, code, stderr.String())
			}
			for _, want := range tt.wantStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout = %q, want it to contain %q", stdout.String(), want)
				}
			}
			for _, want := range tt.wantStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr = %q, want it to contain %q", stderr.String(), want)
				}
			}
		})
	}
}

func TestBatchFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"batch", "-s", greet, "-j", "2", "testdata/lines.txt"}, nil, &stdout, &stderr)
	if code != 2 {
		t.Errorf("run = %d, want 2", code)
	}
	want := lines(
		"# line 2",
		"HELP=false",
		"LOUD=false",
		"TIMES=1",
		"WHO=Ann",
		"# line 3",
		"HELP=false",
		"LOUD=true",
		"TIMES=1",
		"WHO='Bob Smith'",
		"# line 5",
		"HELP=false",
		"LOUD=false",
		"TIMES=3",
		"WHO=Cy",
	)
	if diff := cmp.Diff(want, stdout.String()); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
	if got, want := stderr.String(), "greet: line 6: unrecognized option `--bogus`\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}

func TestCheckFailure(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"check", greet, "testdata/bad.toml"}, nil, &stdout, &stderr)
	if code != 1 {
		t.Errorf("run = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), `FAIL failed to parse testdata/bad.toml: bad: field "when": unknown type "date"`) {
		t.Errorf("stderr = %q", stderr.String())
	}
	if got, want := stdout.String(), "ok testdata/greet.toml (4 fields, 0 commands)\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestUsageCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"usage", "-s", greet, "deploy"}, nil, &stdout, &stderr)
	if code != 2 {
		t.Errorf("run = %d, want 2", code)
	}
	if got, want := stderr.String(), "yopts: greet has no command \"deploy\"\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}
