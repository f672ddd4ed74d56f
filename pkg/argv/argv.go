// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package argv splits a flat argument list into classified tokens.
//
// It follows POSIX-like conventions: short options may be clustered
// ("-abc"), a short option may carry its value in the same argument
// ("-ofile"), long options may carry a value after "=" ("--out=file"),
// and a bare "--" ends option processing.
package argv

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind classifies a token.
type Kind int

const (
	// Short is a single-character option, e.g. "-v" or one rune of "-abc".
	Short Kind = iota + 1
	// Long is a long option without an attached value, e.g. "--verbose".
	Long
	// LongWithArg is a long option with an "="-attached value, e.g. "--out=x".
	LongWithArg
	// Free is a positional value.
	Free
)

func (k Kind) String() string {
	switch k {
	case Short:
		return "short"
	case Long:
		return "long"
	case LongWithArg:
		return "long-with-arg"
	case Free:
		return "free"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Opt is a single token produced by a Parser.
type Opt struct {
	Kind  Kind
	Short rune   // set for Short
	Name  string // set for Long and LongWithArg
	Value string // set for LongWithArg and Free
}

// ShortOpt returns a Short token.
func ShortOpt(c rune) Opt { return Opt{Kind: Short, Short: c} }

// LongOpt returns a Long token.
func LongOpt(name string) Opt { return Opt{Kind: Long, Name: name} }

// LongArgOpt returns a LongWithArg token.
func LongArgOpt(name, value string) Opt { return Opt{Kind: LongWithArg, Name: name, Value: value} }

// FreeOpt returns a Free token.
func FreeOpt(value string) Opt { return Opt{Kind: Free, Value: value} }

// String returns the form used to name the option in messages: "-c" for
// short options, "--name" for long options and "free" for free arguments.
func (o Opt) String() string {
	switch o.Kind {
	case Short:
		return "-" + string(o.Short)
	case Long, LongWithArg:
		return "--" + o.Name
	default:
		return "free"
	}
}

// Style controls when the parser stops recognizing options.
type Style int

const (
	// AllOptions recognizes options anywhere before a "--".
	AllOptions Style = iota
	// StopAtFirstFree treats everything after the first free argument as free.
	StopAtFirstFree
)

func (s Style) String() string {
	switch s {
	case AllOptions:
		return "all-options"
	case StopAtFirstFree:
		return "stop-at-first-free"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle parses the String form of a Style. The empty string selects
// AllOptions.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all-options", "all_options", "alloptions":
		return AllOptions, nil
	case "stop-at-first-free", "stop_at_first_free", "stopatfirstfree":
		return StopAtFirstFree, nil
	}
	return AllOptions, fmt.Errorf("unknown parsing style %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler so styles can be read
// from configuration files.
func (s *Style) UnmarshalText(b []byte) error {
	v, err := ParseStyle(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Style) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Parser produces tokens from an argument list. The zero value is an
// exhausted parser; use New.
//
// A Parser is not safe for concurrent use.
type Parser struct {
	args  []string
	pos   int
	style Style

	// cluster holds the runes of a short-option cluster that have not been
	// emitted yet. inCluster is true while a cluster is being walked, even
	// once cluster is empty.
	cluster   string
	inCluster bool

	terminated bool
}

// New returns a Parser over args. args must not include the program name.
func New(args []string, style Style) *Parser {
	return &Parser{args: args, style: style}
}

// Style returns the parsing style.
func (p *Parser) Style() Style { return p.style }

// Terminated reports whether option processing has ended, after which
// every token is Free.
func (p *Parser) Terminated() bool { return p.terminated }

func (p *Parser) nextRaw() (string, bool) {
	if p.pos >= len(p.args) {
		return "", false
	}
	a := p.args[p.pos]
	p.pos++
	return a, true
}

// NextOpt returns the next token, or false once the input is exhausted.
func (p *Parser) NextOpt() (Opt, bool) {
	if p.inCluster {
		if p.cluster != "" {
			r, size := utf8.DecodeRuneInString(p.cluster)
			p.cluster = p.cluster[size:]
			return ShortOpt(r), true
		}
		p.inCluster = false
	}

	if p.terminated {
		a, ok := p.nextRaw()
		if !ok {
			return Opt{}, false
		}
		return FreeOpt(a), true
	}

	a, ok := p.nextRaw()
	if !ok {
		return Opt{}, false
	}

	switch {
	case a == "-":
		if p.style == StopAtFirstFree {
			p.terminated = true
		}
		return FreeOpt(a), true
	case a == "--":
		p.terminated = true
		next, ok := p.nextRaw()
		if !ok {
			return Opt{}, false
		}
		return FreeOpt(next), true
	case strings.HasPrefix(a, "--"):
		if name, value, found := strings.Cut(a[2:], "="); found {
			return LongArgOpt(name, value), true
		}
		return LongOpt(a[2:]), true
	case strings.HasPrefix(a, "-"):
		r, size := utf8.DecodeRuneInString(a[1:])
		p.cluster = a[1+size:]
		p.inCluster = true
		return ShortOpt(r), true
	default:
		if p.style == StopAtFirstFree {
			p.terminated = true
		}
		return FreeOpt(a), true
	}
}

// NextArg returns the value for an option that requires one. If a short
// cluster is being walked and still has runes left, the whole remainder is
// returned ("-ofile" gives "file"); otherwise the next raw argument is
// consumed. It returns false if no argument remains.
func (p *Parser) NextArg() (string, bool) {
	if p.inCluster {
		rest := p.cluster
		p.cluster, p.inCluster = "", false
		if rest != "" {
			return rest, true
		}
	}
	return p.nextRaw()
}

// Clone returns an independent copy of the parser state. The underlying
// argument slice is shared and never modified.
func (p *Parser) Clone() *Parser {
	c := *p
	return &c
}

// Remaining returns the arguments that have not been consumed. A partially
// walked short cluster is returned first, re-prefixed with "-".
func (p *Parser) Remaining() []string {
	var out []string
	if p.inCluster && p.cluster != "" {
		out = append(out, "-"+p.cluster)
	}
	if p.pos < len(p.args) {
		out = append(out, p.args[p.pos:]...)
	}
	return out
}
