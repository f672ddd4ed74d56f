// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopts

import (
	"fmt"
	"reflect"

	"github.com/yeetrun/yopts/pkg/argv"
)

// commandSlot is implemented by slots of ShapeCommand.
type commandSlot interface {
	Slot
	table() *commandTable
	// selected returns the chosen variant and its payload record, if any.
	selected(rec any) (*variant, any)
	// choose stores payload as the chosen variant.
	choose(rec any, v *variant, payload any)
}

// variant is the type-erased form of one subcommand.
type variant struct {
	index int
	name  string
	help  string
	reg   *Registry
	alloc func() any
}

type commandTable struct {
	variants []*variant
	byName   map[string]*variant
	usage    string
}

func newCommandTable(vs []*variant) (*commandTable, error) {
	t := &commandTable{variants: vs, byName: make(map[string]*variant, len(vs))}
	for _, v := range vs {
		if v.name == "" {
			return nil, &ConfigError{Msg: fmt.Sprintf("command variant %d has no name", v.index)}
		}
		if v.reg == nil {
			return nil, &ConfigError{Field: v.name, Msg: "command variant has no options schema"}
		}
		if _, dup := t.byName[v.name]; dup {
			return nil, &ConfigError{Field: v.name, Msg: "duplicate command name"}
		}
		t.byName[v.name] = v
	}
	t.usage = makeCommandUsage(vs)
	return t, nil
}

// parse delegates the rest of p to the variant called name.
func (t *commandTable) parse(name string, p *argv.Parser) (*variant, any, error) {
	v, ok := t.byName[name]
	if !ok {
		return nil, nil, &Error{Kind: UnrecognizedCommand, Value: name}
	}
	payload := v.alloc()
	if err := v.reg.ParseInto(p, payload); err != nil {
		return nil, nil, err
	}
	return v, payload, nil
}

func (t *commandTable) commandUsage(name string) (string, bool) {
	v, ok := t.byName[name]
	if !ok {
		return "", false
	}
	return v.reg.Usage(), true
}

// Variant is one subcommand of a command union E. E is normally a struct
// with one pointer field per subcommand; exactly one is set after parsing.
type Variant[E any] struct {
	ident string
	name  string
	help  string
	doc   string
	reg   *Registry
	alloc func() any
	load  func(*E) any
	store func(*E, any)
}

// Sub declares a subcommand. ident is the CamelCase identifier the command
// name derives from; get returns the union field holding its options.
func Sub[E, P any](ident string, get func(*E) **P, schema *Schema[P]) Variant[E] {
	return Variant[E]{
		ident: ident,
		reg:   schema.reg,
		alloc: schema.alloc,
		load: func(e *E) any {
			if p := *get(e); p != nil {
				return p
			}
			return nil
		},
		store: func(e *E, payload any) {
			*get(e) = payload.(*P)
		},
	}
}

// Named overrides the derived command name.
func (v Variant[E]) Named(name string) Variant[E] {
	v.name = name
	return v
}

// WithHelp sets the help text shown in the command list.
func (v Variant[E]) WithHelp(help string) Variant[E] {
	v.help = help
	return v
}

// WithDoc sets doc text, used for the command list when no help is set.
func (v Variant[E]) WithDoc(doc string) Variant[E] {
	v.doc = doc
	return v
}

// CommandSet is the table of subcommands of union type E.
type CommandSet[E any] struct {
	variants []Variant[E]
	t        *commandTable
}

// NewCommands builds a CommandSet. Names must be unique.
func NewCommands[E any](variants ...Variant[E]) (*CommandSet[E], error) {
	vs := make([]*variant, len(variants))
	for i, v := range variants {
		name := v.name
		if name == "" {
			name = commandName(v.ident)
		}
		help := v.help
		if help == "" {
			help = firstLine(v.doc)
		}
		vs[i] = &variant{index: i, name: name, help: help, reg: v.reg, alloc: v.alloc}
	}
	t, err := newCommandTable(vs)
	if err != nil {
		return nil, err
	}
	return &CommandSet[E]{variants: variants, t: t}, nil
}

// MustCommands is like NewCommands but panics on error.
func MustCommands[E any](variants ...Variant[E]) *CommandSet[E] {
	c, err := NewCommands(variants...)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse reads a command name from p and parses the remaining arguments as
// that command's options.
func (c *CommandSet[E]) Parse(p *argv.Parser) (*E, error) {
	name, ok := p.NextArg()
	if !ok {
		return nil, &Error{Kind: MissingCommand}
	}
	return c.ParseCommand(name, p)
}

// ParseCommand parses the remaining arguments as the options of the command
// called name.
func (c *CommandSet[E]) ParseCommand(name string, p *argv.Parser) (*E, error) {
	v, payload, err := c.t.parse(name, p)
	if err != nil {
		return nil, err
	}
	e := new(E)
	c.variants[v.index].store(e, payload)
	return e, nil
}

// Usage returns the command list: one aligned line per command.
func (c *CommandSet[E]) Usage() string { return c.t.usage }

// CommandUsage returns the usage of the named command.
func (c *CommandSet[E]) CommandUsage(name string) (string, bool) {
	return c.t.commandUsage(name)
}

// Names returns the command names in declaration order.
func (c *CommandSet[E]) Names() []string {
	out := make([]string, len(c.t.variants))
	for i, v := range c.t.variants {
		out[i] = v.name
	}
	return out
}

func (c *CommandSet[E]) selected(e *E) (*variant, any) {
	if e == nil {
		return nil, nil
	}
	for i, v := range c.variants {
		if p := v.load(e); p != nil {
			return c.t.variants[i], p
		}
	}
	return nil, nil
}

// Name returns the name of the command chosen in e.
func (c *CommandSet[E]) Name(e *E) (string, bool) {
	v, _ := c.selected(e)
	if v == nil {
		return "", false
	}
	return v.name, true
}

// HelpRequested reports whether the chosen command requested help.
func (c *CommandSet[E]) HelpRequested(e *E) bool {
	v, p := c.selected(e)
	return v != nil && v.reg.HelpRequested(p)
}

// SelfUsage returns the usage of the innermost chosen command.
func (c *CommandSet[E]) SelfUsage(e *E) string {
	v, p := c.selected(e)
	if v == nil {
		return c.t.usage
	}
	return v.reg.SelfUsage(p)
}

// Commands declares a command slot. The record field is a pointer to the
// union so that it stays nil when no command is given.
func Commands[R, E any](get func(*R) **E, set *CommandSet[E]) Slot {
	return &commandsSlot[R, E]{get: get, set: set}
}

type commandsSlot[R, E any] struct {
	get func(*R) **E
	set *CommandSet[E]
}

func (s *commandsSlot[R, E]) Shape() Shape { return ShapeCommand }

func (s *commandsSlot[R, E]) Arity() int { return -1 }

func (s *commandsSlot[R, E]) Custom() bool { return false }

func (s *commandsSlot[R, E]) Numeric() bool { return false }

func (s *commandsSlot[R, E]) Bind(rec any) Binder {
	return unsupportedBinder{}
}

func (s *commandsSlot[R, E]) recordType() reflect.Type { return reflect.TypeFor[R]() }

func (s *commandsSlot[R, E]) table() *commandTable { return s.set.t }

func (s *commandsSlot[R, E]) selected(rec any) (*variant, any) {
	return s.set.selected(*s.get(record[R](rec)))
}

func (s *commandsSlot[R, E]) choose(rec any, v *variant, payload any) {
	e := new(E)
	s.set.variants[v.index].store(e, payload)
	*s.get(record[R](rec)) = e
}

// unsupportedBinder backs slots that are never bound to option values.
type unsupportedBinder struct {
	noFlag
	noSeq
}

func (unsupportedBinder) Set([]string) error {
	return fmt.Errorf("field cannot hold option values")
}
