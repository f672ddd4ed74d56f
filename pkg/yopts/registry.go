// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopts

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

// action is the mutation an option or free slot performs.
type action int

const (
	actSwitch action = iota
	actCount
	actSet
	actSetOption
	actPush
)

func (a action) String() string {
	switch a {
	case actSwitch:
		return "switch"
	case actCount:
		return "count"
	case actSet:
		return "set"
	case actSetOption:
		return "set-option"
	case actPush:
		return "push"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

type option struct {
	field    string
	long     string
	short    rune
	noShort  bool
	action   action
	arity    int
	required int // index into Registry.required, -1 if optional
	helpFlag bool
	help     string
	meta     string
	def      string
	slot     Slot
}

// takesArg reports whether the option consumes at least one value.
func (o *option) takesArg() bool {
	switch o.action {
	case actSwitch, actCount:
		return false
	}
	return o.arity != 0
}

// display is the name used in missing-requirement errors.
func (o *option) display() string {
	if o.long != "" {
		return "--" + o.long
	}
	return "-" + string(o.short)
}

type freeSlot struct {
	field    string
	action   action
	required int
	help     string
	slot     Slot
}

type commandField struct {
	field    string
	required int
	slot     commandSlot
}

type requirement struct {
	kind   ErrorKind
	option string
}

type defaulter struct {
	field string
	lit   string
	fn    func(rec any) error
	slot  Slot
	push  bool
	arity int
}

// Registry is the constant table of options, free slots and the command
// slot for one record type. It is safe for concurrent use once built.
type Registry struct {
	name   string
	help   string
	policy Policy

	options   []*option
	long      map[string]*option
	short     map[rune]*option
	helpFlags []*option

	frees []*freeSlot // every free slot, for usage
	fixed []*freeSlot // free slots filled positionally
	tail  *freeSlot   // final accumulating free slot

	command  *commandField
	required []requirement
	defaults []defaulter

	usage string
}

// Build validates d and returns its Registry.
func Build(d Decl) (*Registry, error) {
	b := &builder{
		decl: d,
		reg: &Registry{
			name:   d.Name,
			policy: d.Policy,
			long:   make(map[string]*option),
			short:  make(map[rune]*option),
		},
	}
	b.reg.help = d.Help
	if b.reg.help == "" {
		b.reg.help = strings.TrimSpace(d.Doc)
	}
	for _, f := range d.Fields {
		if err := b.add(f); err != nil {
			return nil, err
		}
	}
	if err := b.finish(); err != nil {
		return nil, err
	}
	return b.reg, nil
}

// MustBuild is like Build but panics on an invalid declaration.
func MustBuild(d Decl) *Registry {
	r, err := Build(d)
	if err != nil {
		panic(err)
	}
	return r
}

type builder struct {
	decl       Decl
	reg        *Registry
	longs      []string
	shorts     []rune
	optRequire []*option
}

func (b *builder) errorf(field, format string, args ...any) error {
	return &ConfigError{Type: b.decl.Name, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// check rejects attribute combinations that cannot be satisfied.
func (b *builder) check(f *Field) error {
	excl := func(a, c string) error {
		return b.errorf(f.Name, "`%s` and `%s` are mutually exclusive", a, c)
	}
	isCommand := f.Slot != nil && f.Slot.Shape() == ShapeCommand
	if isCommand {
		for _, c := range []struct {
			set  bool
			name string
		}{
			{f.Free, "free"},
			{f.Default != "", "default"},
			{f.Multi != "", "multi"},
			{f.Long != "", "long"},
			{f.Short != 0, "short"},
			{f.Count, "count"},
			{f.HelpFlag, "help_flag"},
			{f.NoHelpFlag, "no_help_flag"},
			{f.NoShort, "no_short"},
			{f.NoLong, "no_long"},
			{f.NoMulti, "no_multi"},
			{f.Help != "", "help"},
			{f.Meta != "", "meta"},
		} {
			if c.set {
				return excl("command", c.name)
			}
		}
	}
	if f.Free {
		for _, c := range []struct {
			set  bool
			name string
		}{
			{f.Default != "", "default"},
			{f.Long != "", "long"},
			{f.Short != 0, "short"},
			{f.Count, "count"},
			{f.HelpFlag, "help_flag"},
			{f.NoHelpFlag, "no_help_flag"},
			{f.NoShort, "no_short"},
			{f.NoLong, "no_long"},
			{f.Meta != "", "meta"},
		} {
			if c.set {
				return excl("free", c.name)
			}
		}
	}
	switch {
	case f.Multi != "" && f.NoMulti:
		return excl("multi", "no_multi")
	case f.HelpFlag && f.NoHelpFlag:
		return excl("help_flag", "no_help_flag")
	case f.NoShort && f.Short != 0:
		return excl("no_short", "short")
	case f.NoLong && f.Long != "":
		return excl("no_long", "long")
	case f.Required && f.NotRequired:
		return excl("required", "not_required")
	case f.Count && f.Slot != nil && f.Slot.Custom():
		return excl("count", "parse")
	case f.Default != "" && f.DefaultFunc != nil:
		return excl("default", "default_expr")
	}
	return nil
}

// applyTypeDefaults folds the Decl-level attributes into f.
func (b *builder) applyTypeDefaults(f *Field) {
	d := b.decl
	if !f.HelpFlag && d.NoHelpFlag {
		f.NoHelpFlag = true
	}
	if f.Short == 0 && d.NoShort {
		f.NoShort = true
	}
	if f.Long == "" && d.NoLong {
		f.NoLong = true
	}
	if f.Multi == "" && d.NoMulti && f.Slot.Shape() != ShapeAccumulator {
		f.NoMulti = true
	}
	if f.NotRequired {
		f.Required = false
	} else if d.Required {
		f.Required = true
	}
}

func (b *builder) require(kind ErrorKind) int {
	b.reg.required = append(b.reg.required, requirement{kind: kind})
	return len(b.reg.required) - 1
}

func (b *builder) add(f Field) error {
	if f.Name == "" {
		return b.errorf("", "field has no name")
	}
	if f.Slot == nil {
		return b.errorf(f.Name, "field has no storage slot")
	}
	if err := b.check(&f); err != nil {
		return err
	}
	b.applyTypeDefaults(&f)

	help := f.Help
	if help == "" {
		help = firstLine(f.Doc)
	}

	switch {
	case f.Default != "":
		b.reg.defaults = append(b.reg.defaults, defaulter{
			field: f.Name,
			lit:   f.Default,
			slot:  f.Slot,
			push:  (f.Slot.Shape() == ShapeSequence && !f.NoMulti) || f.Slot.Shape() == ShapeAccumulator,
			arity: f.Slot.Arity(),
		})
	case f.DefaultFunc != nil:
		b.reg.defaults = append(b.reg.defaults, defaulter{field: f.Name, fn: f.DefaultFunc})
	}

	if f.Slot.Shape() == ShapeCommand {
		return b.addCommand(f)
	}
	if f.Free {
		return b.addFree(f, help)
	}
	return b.addOption(f, help)
}

func (b *builder) addCommand(f Field) error {
	cs, ok := f.Slot.(commandSlot)
	if !ok {
		return b.errorf(f.Name, "command slot must be created with Commands")
	}
	if b.reg.command != nil {
		return b.errorf(f.Name, "duplicate declaration of `command` field")
	}
	if len(b.reg.frees) > 0 {
		return b.errorf(f.Name, "`command` and `free` options are mutually exclusive")
	}
	cf := &commandField{field: f.Name, required: -1, slot: cs}
	if f.Required {
		cf.required = b.require(MissingRequiredCommand)
	}
	b.reg.command = cf
	return nil
}

func (b *builder) addFree(f Field, help string) error {
	if b.reg.command != nil {
		return b.errorf(f.Name, "`command` and `free` options are mutually exclusive")
	}
	if n := len(b.reg.frees); n > 0 && b.reg.frees[n-1].action == actPush {
		return b.errorf(f.Name, "only the final `free` option may accumulate values")
	}
	if f.Slot.Arity() >= 0 {
		return b.errorf(f.Name, "`free` fields cannot be tuples")
	}
	fs := &freeSlot{field: f.Name, required: -1, help: help, slot: f.Slot}
	switch s := f.Slot.Shape(); {
	case s == ShapeOptional:
		fs.action = actSetOption
	case s == ShapeSequence && !f.NoMulti, s == ShapeAccumulator:
		fs.action = actPush
	default:
		fs.action = actSet
	}
	if f.Required {
		fs.required = b.require(MissingRequiredFree)
	}
	b.reg.frees = append(b.reg.frees, fs)
	return nil
}

func (b *builder) addOption(f Field, help string) error {
	o := &option{
		field:    f.Name,
		long:     f.Long,
		short:    f.Short,
		noShort:  f.NoShort,
		arity:    f.Slot.Arity(),
		required: -1,
		help:     help,
		meta:     f.Meta,
		def:      f.Default,
		slot:     f.Slot,
	}
	if o.long == "" && !f.NoLong {
		o.long = longName(f.Name)
	}
	if o.long != "" {
		if !validLong(o.long) {
			return b.errorf(f.Name, "not a valid long option: %q", o.long)
		}
		for _, l := range b.longs {
			if l == o.long {
				return b.errorf(f.Name, "duplicate option name `--%s`", o.long)
			}
		}
		b.longs = append(b.longs, o.long)
	}
	if o.short != 0 {
		if !validShort(o.short) {
			return b.errorf(f.Name, "not a valid short option: %q", o.short)
		}
		for _, s := range b.shorts {
			if s == o.short {
				return b.errorf(f.Name, "duplicate option name `-%c`", o.short)
			}
		}
		b.shorts = append(b.shorts, o.short)
	}

	shape := f.Slot.Shape()
	switch {
	case f.Count:
		if !f.Slot.Numeric() {
			return b.errorf(f.Name, "`count` requires a numeric field")
		}
		o.action = actCount
	case shape == ShapeBool:
		o.action = actSwitch
	case shape == ShapeOptional:
		o.action = actSetOption
	case shape == ShapeSequence && !f.NoMulti, shape == ShapeAccumulator:
		o.action = actPush
	default:
		o.action = actSet
	}

	autoHelp := !f.NoHelpFlag && !b.decl.Policy.NoAutoHelp && o.long == "help"
	if f.HelpFlag || autoHelp {
		if o.action != actSwitch {
			return b.errorf(f.Name, "help flag must be a boolean switch")
		}
		o.helpFlag = true
		b.reg.helpFlags = append(b.reg.helpFlags, o)
	}

	if o.takesArg() {
		if o.meta == "" {
			o.meta = metaName(f.Name, o.arity)
		}
	} else if o.meta != "" {
		return b.errorf(f.Name, "`meta` value is invalid for this field")
	}

	if f.Required {
		b.optRequire = append(b.optRequire, o)
	}
	b.reg.options = append(b.reg.options, o)
	return nil
}

func (b *builder) finish() error {
	r := b.reg

	// Automatic short names are assigned only after every explicit one has
	// been reserved, so explicit names always win.
	if !r.policy.NoAutoShort {
		for _, o := range r.options {
			if o.short != 0 || o.noShort {
				continue
			}
			if s := shortName(o.field, b.shorts); s != 0 {
				o.short = s
				b.shorts = append(b.shorts, s)
			}
		}
	}

	for _, o := range r.options {
		if o.long == "" && o.short == 0 {
			return b.errorf(o.field, "option has no long or short flags")
		}
		if o.long != "" {
			r.long[o.long] = o
		}
		if o.short != 0 {
			r.short[o.short] = o
		}
	}
	for _, o := range b.optRequire {
		o.required = len(r.required)
		r.required = append(r.required, requirement{kind: MissingRequired, option: o.display()})
	}

	r.fixed = r.frees
	if n := len(r.frees); n > 0 && r.frees[n-1].action == actPush {
		r.fixed = r.frees[:n-1]
		r.tail = r.frees[n-1]
	}

	r.usage = r.makeUsage()
	return nil
}

// apply stores the default literal into rec.
func (d defaulter) apply(rec any) error {
	b := d.slot.Bind(rec)
	if !d.push && d.arity < 0 {
		return b.Set([]string{d.lit})
	}
	words, err := shellquote.Split(d.lit)
	if err != nil {
		return err
	}
	if !d.push {
		return b.Set(words)
	}
	n := d.arity
	if n <= 0 {
		n = 1
	}
	if len(words)%n != 0 {
		return fmt.Errorf("expected a multiple of %d values, got %d", n, len(words))
	}
	for i := 0; i < len(words); i += n {
		if err := b.Push(words[i : i+n]); err != nil {
			return err
		}
	}
	return nil
}
