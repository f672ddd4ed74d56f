// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopts

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func lines(l ...string) string { return strings.Join(l, "\n") }

func TestUsage(t *testing.T) {
	type opts struct {
		Alpha                                  bool     `help:"alpha help"`
		Bravo                                  string   `yopts:"no_short" help:"bravo help"`
		Charlie                                bool     `yopts:"no_long" help:"charlie help"`
		Delta                                  int32    `help:"delta help" meta:"X"`
		Echo                                   []string `help:"echo help" meta:"Y"`
		Foxtrot                                uint32   `help:"foxtrot help" meta:"Z" default:"99"`
		VeryVeryLongOptionWithVeryVeryLongName bool     `yopts:"no_short" help:"long option help"`
	}
	type tupleOpts struct {
		Alpha   struct{} `help:"alpha help"`
		Bravo   [1]int32 `help:"bravo help"`
		Charlie [2]int32 `help:"charlie help"`
		Delta   [3]int32 `help:"delta help"`
		Echo    [4]int32 `help:"echo help"`
	}
	type freeOpts struct {
		A      uint32 `yopts:"free" help:"a help"`
		B      uint32 `yopts:"free" help:"b help"`
		C      uint32 `yopts:"free" help:"c help"`
		Option bool   `help:"option help"`
	}
	type docOpts struct {
		_    struct{} `doc:"type-level help comment"`
		Free int32    `yopts:"free" doc:"free help comment"`
		Foo  int32    `doc:"help comment"`
		Bar  int32    `doc:"help comment" help:"help attribute"`
	}
	type multilineOpts struct {
		_   struct{} `doc:"type-level help comment\nsecond line of text\n"`
		Foo int32    `doc:"help comment\nnot shown"`
	}
	type bareOpts struct {
		Quiet bool
		Name  string `default:"anon"`
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "options",
			got:  MustSchemaOf[opts]().Usage(),
			want: lines(
				"Optional arguments:",
				"  -a, --alpha      alpha help",
				"  --bravo BRAVO    bravo help",
				"  -c               charlie help",
				"  -d, --delta X    delta help",
				"  -e, --echo Y     echo help",
				"  -f, --foxtrot Z  foxtrot help (default: 99)",
				"  --very-very-long-option-with-very-very-long-name",
				"                   long option help",
			),
		},
		{
			name: "tuples",
			got:  MustSchemaOf[tupleOpts]().Usage(),
			want: lines(
				"Optional arguments:",
				"  -a, --alpha        alpha help",
				"  -b, --bravo BRAVO  bravo help",
				"  -c, --charlie CHARLIE VALUE",
				"                     charlie help",
				"  -d, --delta DELTA VALUE0 VALUE1",
				"                     delta help",
				"  -e, --echo ECHO VALUE0 VALUE1 VALUE2",
				"                     echo help",
			),
		},
		{
			name: "free",
			got:  MustSchemaOf[freeOpts]().Usage(),
			want: lines(
				"Positional arguments:",
				"  a             a help",
				"  b             b help",
				"  c             c help",
				"",
				"Optional arguments:",
				"  -o, --option  option help",
			),
		},
		{
			name: "doc",
			got:  MustSchemaOf[docOpts]().Usage(),
			want: lines(
				"type-level help comment",
				"",
				"Positional arguments:",
				"  free           free help comment",
				"",
				"Optional arguments:",
				"  -f, --foo FOO  help comment",
				"  -b, --bar BAR  help attribute",
			),
		},
		{
			name: "doc-multiline",
			got:  MustSchemaOf[multilineOpts]().Usage(),
			want: lines(
				"type-level help comment",
				"second line of text",
				"",
				"Optional arguments:",
				"  -f, --foo FOO  help comment",
			),
		},
		{
			name: "no-help",
			got:  MustSchemaOf[bareOpts]().Usage(),
			want: lines(
				"Optional arguments:",
				"  -q, --quiet",
				"  -n, --name NAME   (default: anon)",
			),
		},
		{
			name: "empty",
			got:  MustSchemaOf[noOpts]().Usage(),
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got); diff != "" {
				t.Errorf("usage mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDocCommandList(t *testing.T) {
	type cmd struct {
		Alpha *noOpts `doc:"help comment"`
		Bravo *noOpts `doc:"help comment" help:"help attribute"`
	}
	type opts struct {
		Cmd *cmd `yopts:"command"`
	}
	got, _ := MustSchemaOf[opts]().CommandList()
	want := lines(
		"  alpha  help comment",
		"  bravo  help attribute",
	)
	if got != want {
		t.Errorf("CommandList() = %q, want %q", got, want)
	}
}

func TestColumn(t *testing.T) {
	tests := []struct {
		widths []int
		want   int
	}{
		{nil, minColumn},
		{[]int{3}, minColumn},
		{[]int{12, 17}, 17},
		{[]int{12, 31}, 12},
		{[]int{30}, 30},
		{[]int{45, 50}, minColumn},
	}
	for _, tt := range tests {
		if got := column(tt.widths); got != tt.want {
			t.Errorf("column(%v) = %d, want %d", tt.widths, got, tt.want)
		}
	}
}

func TestUsageMultibyteShort(t *testing.T) {
	type opts struct {
		Eta string `short:"é" yopts:"no_long" meta:"LONGMETAVAL" help:"eta help"`
		B   bool   `yopts:"no_long" help:"b help"`
	}
	want := lines(
		"Optional arguments:",
		"  -é LONGMETAVAL eta help",
		"  -b              b help",
	)
	if diff := cmp.Diff(want, MustSchemaOf[opts]().Usage()); diff != "" {
		t.Errorf("usage mismatch (-want +got):\n%s", diff)
	}
}

func TestUsageDeterministic(t *testing.T) {
	type opts struct {
		Level int    `short:"l" help:"log level" default:"3"`
		Out   string `help:"output file"`
	}
	s := MustSchemaOf[opts]()
	first := s.Usage()
	for range 10 {
		if got := MustSchemaOf[opts]().Usage(); got != first {
			t.Fatalf("Usage() changed between calls: %q vs %q", got, first)
		}
	}
}
