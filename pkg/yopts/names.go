// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopts

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
)

// commandName converts a CamelCase identifier into a command name. Every
// rune that is not lower case starts a new hyphen-separated, lower-cased
// segment, so "FooBar" becomes "foo-bar" and "FooXYZ" becomes "foo-x-y-z".
func commandName(ident string) string {
	var b strings.Builder
	for _, r := range ident {
		if unicode.IsLower(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// fieldName converts a Go identifier into the snake_case name options are
// derived from.
func fieldName(ident string) string {
	return strcase.ToSnake(ident)
}

func longName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// shortName picks the first rune of name, or its upper-case form if the
// first is taken. It returns 0 if both are taken.
func shortName(name string, taken []rune) rune {
	first, _ := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError {
		return 0
	}
	if !slices.Contains(taken, first) {
		return first
	}
	upper := unicode.ToUpper(first)
	if upper == first || slices.Contains(taken, upper) {
		return 0
	}
	return upper
}

// metaName is the usage placeholder for a value-taking option. Tuples add
// one placeholder per extra value.
func metaName(name string, arity int) string {
	meta := strings.ToUpper(strings.ReplaceAll(name, "_", "-"))
	switch {
	case arity == 2:
		meta += " VALUE"
	case arity > 2:
		for i := 0; i < arity-1; i++ {
			meta += fmt.Sprintf(" VALUE%d", i)
		}
	}
	return meta
}

func validLong(name string) bool {
	return name != "" && !strings.HasPrefix(name, "-") && !strings.ContainsFunc(name, unicode.IsSpace)
}

func validShort(r rune) bool {
	return r != '-' && !unicode.IsSpace(r)
}

// firstLine returns the first line of a doc comment.
func firstLine(doc string) string {
	doc = strings.TrimLeft(doc, " \t")
	line, _, _ := strings.Cut(doc, "\n")
	return strings.TrimRight(line, " \t\r")
}
