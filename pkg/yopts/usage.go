// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopts

import (
	"strings"
)

const (
	minColumn = 8
	maxColumn = 30
)

func (o *option) width() int {
	w := 2 + 2 // leading and trailing spaces
	if o.short != 0 {
		w += 2
	}
	if o.long != "" {
		w += 2 + len(o.long)
	}
	if o.short != 0 && o.long != "" {
		w += 2
	}
	if o.meta != "" {
		w += 1 + len(o.meta)
	}
	return w
}

func (o *option) usage(col int) string {
	var b strings.Builder
	b.WriteString("  ")
	if o.short != 0 {
		b.WriteByte('-')
		b.WriteRune(o.short)
	}
	if o.short != 0 && o.long != "" {
		b.WriteString(", ")
	}
	if o.long != "" {
		b.WriteString("--")
		b.WriteString(o.long)
	}
	if o.meta != "" {
		b.WriteByte(' ')
		b.WriteString(o.meta)
	}
	if o.help != "" || o.def != "" {
		pad(&b, col)
	}
	b.WriteString(o.help)
	if o.def != "" {
		b.WriteString(" (default: ")
		b.WriteString(o.def)
		b.WriteByte(')')
	}
	return b.String()
}

// pad moves the line in b to column col, or onto a new line indented to
// col when the line is already too long.
func pad(b *strings.Builder, col int) {
	line := b.String()
	if i := strings.LastIndexByte(line, '\n'); i >= 0 {
		line = line[i+1:]
	}
	if len(line) < col {
		b.WriteString(strings.Repeat(" ", col-len(line)))
		return
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", col))
}

// column returns the help column for a set of entry widths. Entries wider
// than maxColumn do not widen the column; they wrap instead.
func column(widths []int) int {
	w := 0
	for _, x := range widths {
		if x <= maxColumn && x > w {
			w = x
		}
	}
	return min(max(w, minColumn), maxColumn)
}

func (r *Registry) makeUsage() string {
	var b strings.Builder
	if r.help != "" {
		b.WriteString(r.help)
		b.WriteByte('\n')
	}

	var fw, ow []int
	for _, fs := range r.frees {
		fw = append(fw, 2+len(fs.field)+2)
	}
	for _, o := range r.options {
		ow = append(ow, o.width())
	}
	col := max(column(fw), column(ow))

	if len(r.frees) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("Positional arguments:\n")
		for _, fs := range r.frees {
			var line strings.Builder
			line.WriteString("  ")
			line.WriteString(fs.field)
			if fs.help != "" {
				pad(&line, col)
				line.WriteString(fs.help)
			}
			b.WriteString(line.String())
			b.WriteByte('\n')
		}
	}

	if len(r.options) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("Optional arguments:\n")
		for _, o := range r.options {
			b.WriteString(o.usage(col))
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func makeCommandUsage(vs []*variant) string {
	widths := make([]int, len(vs))
	for i, v := range vs {
		widths[i] = len(v.name) + 4
	}
	col := column(widths)

	var b strings.Builder
	for _, v := range vs {
		var line strings.Builder
		line.WriteString("  ")
		line.WriteString(v.name)
		if v.help != "" {
			pad(&line, col)
			line.WriteString(v.help)
		}
		b.WriteString(line.String())
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}
