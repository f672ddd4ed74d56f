// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestForceColorizer(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		noColor string
		term    string
		want    bool
	}{
		{name: "disabled", enabled: false, term: "xterm", want: false},
		{name: "xterm", enabled: true, term: "xterm", want: true},
		{name: "no-color", enabled: true, noColor: "1", term: "xterm", want: false},
		{name: "dumb", enabled: true, term: "dumb", want: false},
		{name: "no-term", enabled: true, term: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("TERM", tt.term)
			if got := ForceColorizer(tt.enabled).Enabled; got != tt.want {
				t.Errorf("ForceColorizer(%v).Enabled = %v, want %v", tt.enabled, got, tt.want)
			}
		})
	}
}

func TestNewColorizerNonTerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "xterm")
	if NewColorizer(&bytes.Buffer{}).Enabled {
		t.Errorf("NewColorizer(buffer).Enabled = true, want false")
	}

	old := isTerminalFn
	isTerminalFn = func(int) bool { return true }
	defer func() { isTerminalFn = old }()
	if !NewColorizer(os.Stderr).Enabled {
		t.Errorf("NewColorizer(terminal).Enabled = false, want true")
	}
	if IsTerminal(&bytes.Buffer{}) {
		t.Errorf("IsTerminal(buffer) = true, want false")
	}
}

func TestWrap(t *testing.T) {
	if got := (Colorizer{}).Error("boom"); got != "boom" {
		t.Errorf("disabled Error = %q, want %q", got, "boom")
	}
	want := color.New(StyleError...)
	want.EnableColor()
	got := Colorizer{Enabled: true}.Error("boom")
	if got != want.Sprint("boom") {
		t.Errorf("enabled Error = %q, want %q", got, want.Sprint("boom"))
	}
	if !strings.HasPrefix(got, "\x1b[31;1m") || !strings.Contains(got, "boom") {
		t.Errorf("enabled Error = %q, want red bold escape before the text", got)
	}
	if got := (Colorizer{Enabled: true}).Wrap(nil, "x"); got != "x" {
		t.Errorf("Wrap(nil) = %q, want %q", got, "x")
	}
}
