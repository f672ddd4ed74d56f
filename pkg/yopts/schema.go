// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopts

import (
	"fmt"
	"os"
	"reflect"

	"github.com/yeetrun/yopts/pkg/argv"
)

// Schema is a Registry bound to the record type R.
type Schema[R any] struct {
	reg   *Registry
	alloc func() any
}

// NewSchema builds the registry for d, whose slots must all be declared for
// record type R.
func NewSchema[R any](d Decl) (*Schema[R], error) {
	return NewSchemaFunc[R](d, func() *R { return new(R) })
}

// NewSchemaFunc is like NewSchema but records are created with alloc. It
// lets record types that need initialisation, such as maps, be parsed.
func NewSchemaFunc[R any](d Decl, alloc func() *R) (*Schema[R], error) {
	if err := checkRecordType(d, reflect.TypeFor[R]()); err != nil {
		return nil, err
	}
	reg, err := Build(d)
	if err != nil {
		return nil, err
	}
	return &Schema[R]{reg: reg, alloc: func() any { return alloc() }}, nil
}

// recordTyped is implemented by slots built with the typed constructors.
type recordTyped interface {
	recordType() reflect.Type
}

// checkRecordType rejects slots declared for a record type other than rt, so
// that the mismatch surfaces before any argument is parsed.
func checkRecordType(d Decl, rt reflect.Type) error {
	for _, f := range d.Fields {
		s, ok := f.Slot.(recordTyped)
		if !ok {
			continue
		}
		if got := s.recordType(); got != rt {
			return &ConfigError{Type: d.Name, Field: f.Name, Msg: fmt.Sprintf("slot declared for %v, not %v", got, rt)}
		}
	}
	return nil
}

// MustSchema is like NewSchema but panics on an invalid declaration.
func MustSchema[R any](d Decl) *Schema[R] {
	s, err := NewSchema[R](d)
	if err != nil {
		panic(err)
	}
	return s
}

// Registry returns the underlying registry.
func (s *Schema[R]) Registry() *Registry { return s.reg }

// New returns a fresh, unparsed record.
func (s *Schema[R]) New() *R { return s.alloc().(*R) }

// Parse parses args, which must not include the program name.
func (s *Schema[R]) Parse(args []string, style argv.Style) (*R, error) {
	return s.ParseFrom(argv.New(args, style))
}

// ParseDefault parses args in the AllOptions style.
func (s *Schema[R]) ParseDefault(args []string) (*R, error) {
	return s.Parse(args, argv.AllOptions)
}

// ParseArgs parses the process arguments, without the program name.
func (s *Schema[R]) ParseArgs(style argv.Style) (*R, error) {
	return s.Parse(os.Args[1:], style)
}

// ParseFrom parses the arguments remaining in p.
func (s *Schema[R]) ParseFrom(p *argv.Parser) (*R, error) {
	rec := s.New()
	if err := s.reg.ParseInto(p, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Schema[R]) HelpRequested(rec *R) bool { return s.reg.HelpRequested(rec) }

func (s *Schema[R]) CommandName(rec *R) (string, bool) { return s.reg.CommandName(rec) }

func (s *Schema[R]) CommandPath(rec *R) []string { return s.reg.CommandPath(rec) }

func (s *Schema[R]) SelfUsage(rec *R) string { return s.reg.SelfUsage(rec) }

func (s *Schema[R]) SelfCommandList(rec *R) (string, bool) { return s.reg.SelfCommandList(rec) }

func (s *Schema[R]) Usage() string { return s.reg.Usage() }

func (s *Schema[R]) CommandList() (string, bool) { return s.reg.CommandList() }

func (s *Schema[R]) CommandUsage(name string) (string, bool) { return s.reg.CommandUsage(name) }
