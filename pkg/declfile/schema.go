// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package declfile

import (
	"fmt"
	"strings"

	"github.com/yeetrun/yopts/pkg/argv"
	"github.com/yeetrun/yopts/pkg/yopts"
)

// CommandField is the name of the field holding a Spec's subcommand.
const CommandField = "command"

// ParseStyle returns the tokenizer style declared by the Spec.
func (s *Spec) ParseStyle() (argv.Style, error) {
	return argv.ParseStyle(s.Style)
}

func (s *Spec) policy() (yopts.Policy, error) {
	switch strings.ToLower(s.Policy) {
	case "", "strict":
		return yopts.Policy{}, nil
	case "core":
		return yopts.Core, nil
	}
	return yopts.Policy{}, fmt.Errorf("%s: unknown policy %q", s.Name, s.Policy)
}

// Schema compiles the Spec and its commands.
func (s *Spec) Schema() (*yopts.Schema[Record], error) {
	schema, _, err := s.compile()
	return schema, err
}

func (s *Spec) compile() (*yopts.Schema[Record], *layout, error) {
	if err := s.validate(); err != nil {
		return nil, nil, err
	}
	policy, err := s.policy()
	if err != nil {
		return nil, nil, err
	}
	l := &layout{index: make(map[string]int, len(s.Fields))}
	d := yopts.Decl{
		Name:       s.Name,
		Help:       s.Help,
		Doc:        s.Doc,
		NoHelpFlag: s.NoHelpFlag,
		NoLong:     s.NoLong,
		NoShort:    s.NoShort,
		NoMulti:    s.NoMulti,
		Required:   s.Required,
		Policy:     policy,
	}
	for i, fs := range s.Fields {
		t, _ := ParseType(fs.Type)
		if _, dup := l.index[fs.Name]; dup {
			return nil, nil, fmt.Errorf("%s: duplicate field %q", s.Name, fs.Name)
		}
		l.names = append(l.names, fs.Name)
		l.types = append(l.types, t)
		l.index[fs.Name] = i
		d.Fields = append(d.Fields, fs.field(t, i))
	}

	if len(s.Commands) > 0 {
		set, err := s.commandSet(l)
		if err != nil {
			return nil, nil, err
		}
		d.Fields = append(d.Fields, yopts.Field{
			Name:        CommandField,
			Slot:        yopts.Commands(func(r *Record) **Selection { return &r.cmd }, set),
			Required:    !s.OptionalCommand,
			NotRequired: s.OptionalCommand,
		})
	}

	schema, err := yopts.NewSchemaFunc(d, l.newRecord)
	if err != nil {
		return nil, nil, err
	}
	return schema, l, nil
}

func (s *Spec) commandSet(l *layout) (*yopts.CommandSet[Selection], error) {
	n := len(s.Commands)
	variants := make([]yopts.Variant[Selection], n)
	for i, c := range s.Commands {
		sub, _, err := c.compile()
		if err != nil {
			return nil, err
		}
		l.commands = append(l.commands, c.Name)
		variants[i] = yopts.Sub(c.Name, func(sel *Selection) **Record { return sel.at(i, n) }, sub).
			Named(c.Name).
			WithHelp(c.Help).
			WithDoc(c.Doc)
	}
	return yopts.NewCommands(variants...)
}

func (fs FieldSpec) field(t Type, i int) yopts.Field {
	f := yopts.Field{
		Name:        fs.Name,
		Slot:        elems[t.Elem].slot(t, i),
		Help:        fs.Help,
		Doc:         fs.Doc,
		Long:        fs.Long,
		NoLong:      fs.NoLong,
		NoShort:     fs.NoShort,
		Free:        fs.Free,
		Count:       t.Shape == Count,
		HelpFlag:    fs.HelpFlag,
		NoHelpFlag:  fs.NoHelpFlag,
		Required:    fs.Required,
		NotRequired: fs.NotRequired,
		NoMulti:     fs.NoMulti,
		Meta:        fs.Meta,
		Default:     fs.Default,
	}
	if fs.Short != "" {
		f.Short = []rune(fs.Short)[0]
	}
	return f
}
