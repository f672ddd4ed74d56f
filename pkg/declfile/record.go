// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package declfile

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/Masterminds/semver/v3"
)

// layout is the compiled shape of one Spec, shared by all its records.
type layout struct {
	names    []string
	types    []Type
	index    map[string]int
	commands []string
}

func (l *layout) newRecord() *Record {
	r := &Record{layout: l, cells: make([]any, len(l.types))}
	for i, t := range l.types {
		r.cells[i] = elems[t.Elem].cell(t.Shape)
	}
	return r
}

// Record holds the parsed values of one Spec, in declaration order.
type Record struct {
	layout *layout
	cells  []any
	cmd    *Selection
}

// Selection is the command union of a Record. At most one entry is set.
type Selection struct {
	recs []*Record
}

func (s *Selection) at(i, n int) **Record {
	if s.recs == nil {
		s.recs = make([]*Record, n)
	}
	return &s.recs[i]
}

// Names returns the field names in declaration order.
func (r *Record) Names() []string {
	return append([]string(nil), r.layout.names...)
}

// Type returns the declared type of the named field.
func (r *Record) Type(name string) (Type, bool) {
	i, ok := r.layout.index[name]
	if !ok {
		return Type{}, false
	}
	return r.layout.types[i], true
}

// Get returns the value of the named field. Optional fields that were not
// given are nil.
func (r *Record) Get(name string) (any, bool) {
	i, ok := r.layout.index[name]
	if !ok {
		return nil, false
	}
	v := reflect.ValueOf(r.cells[i]).Elem()
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, true
		}
		return v.Elem().Interface(), true
	}
	return v.Interface(), true
}

// Words returns the value of the named field as strings: one per element
// for sequences, none for an unset optional.
func (r *Record) Words(name string) []string {
	v, ok := r.Get(name)
	if !ok || v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []string{FormatValue(v)}
	}
	out := make([]string, rv.Len())
	for i := range out {
		out[i] = FormatValue(rv.Index(i).Interface())
	}
	return out
}

// Command returns the chosen command and its record.
func (r *Record) Command() (string, *Record) {
	if r.cmd == nil {
		return "", nil
	}
	for i, sub := range r.cmd.recs {
		if sub != nil {
			return r.layout.commands[i], sub
		}
	}
	return "", nil
}

// Map returns the record as plain values suitable for JSON or YAML
// encoding. Numbers and booleans keep their type, everything else is
// formatted. The chosen command is stored under "command" and its record
// under the command name.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.layout.names)+2)
	for _, name := range r.layout.names {
		v, _ := r.Get(name)
		m[name] = plain(v)
	}
	if name, sub := r.Command(); sub != nil {
		m["command"] = name
		m[name] = sub.Map()
	}
	return m
}

func plain(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = plain(rv.Index(i).Interface())
		}
		return out
	case reflect.Bool, reflect.Float32, reflect.Float64:
		return v
	case reflect.Int, reflect.Uint:
		return v
	}
	return FormatValue(v)
}

// FormatValue renders a field value the way it would be written on a command
// line.
func FormatValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case url.URL:
		return v.String()
	case semver.Version:
		return v.String()
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}
