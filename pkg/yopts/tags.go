// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopts

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"
)

// registries caches the tag-derived Registry of each record type.
var registries sync.Map // reflect.Type -> *tagEntry

type tagEntry struct {
	reg *Registry
	err error
}

var errorType = reflect.TypeFor[error]()

// SchemaOf derives a Schema from the struct tags of R. The result is cached
// per type, so calling it repeatedly is cheap.
//
// Recognised tags:
//
//	flag:"name"        long name; "-" skips the field
//	short:"x"          short name
//	help:"text"        usage help
//	doc:"text"         help fallback; only the first line is used
//	default:"literal"  parsed like an argument before parsing starts
//	default_expr:"M"   method M on *R returns the default value
//	meta:"NAME"        value placeholder in usage
//	multi:"M"          method M on the field's pointer accumulates values
//	parse:"from_str=M" method M on *R converts an argument (try_from_str=M
//	                   for a conversion that may fail)
//	yopts:"a,b"        free, required, not_required, count, help_flag,
//	                   no_help_flag, no_short, no_long, no_multi, command
//
// Type-level attributes go on a blank field:
//
//	_ struct{} `yopts:"no_short,required" help:"Type help"`
//
// Besides the flags above, a type-level yopts tag accepts core,
// ignore_unknown, ignore_extra_free, no_auto_help and no_auto_short.
//
// A command field has type *U, where U is a struct of pointers to the
// subcommand records. Union fields take name, help and doc tags.
func SchemaOf[R any]() (*Schema[R], error) {
	reg, err := registryOf(reflect.TypeFor[R](), nil)
	if err != nil {
		return nil, err
	}
	return &Schema[R]{reg: reg, alloc: func() any { return new(R) }}, nil
}

// MustSchemaOf is like SchemaOf but panics on an invalid declaration.
func MustSchemaOf[R any]() *Schema[R] {
	s, err := SchemaOf[R]()
	if err != nil {
		panic(err)
	}
	return s
}

func registryOf(t reflect.Type, visiting []reflect.Type) (*Registry, error) {
	if e, ok := registries.Load(t); ok {
		e := e.(*tagEntry)
		return e.reg, e.err
	}
	for _, v := range visiting {
		if v == t {
			return nil, &ConfigError{Type: t.Name(), Msg: "command type refers back to itself"}
		}
	}
	d, err := declOf(t, append(visiting, t))
	var reg *Registry
	if err == nil {
		reg, err = Build(d)
	}
	e, _ := registries.LoadOrStore(t, &tagEntry{reg: reg, err: err})
	return e.(*tagEntry).reg, e.(*tagEntry).err
}

func declOf(t reflect.Type, visiting []reflect.Type) (Decl, error) {
	if t.Kind() != reflect.Struct {
		return Decl{}, &ConfigError{Type: t.String(), Msg: "record type must be a struct"}
	}
	d := Decl{Name: t.Name()}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Name == "_" {
			if err := typeAttrs(&d, sf.Tag); err != nil {
				return Decl{}, err
			}
			continue
		}
		if !sf.IsExported() || sf.Tag.Get("flag") == "-" {
			continue
		}
		f, err := fieldOf(t, sf, visiting)
		if err != nil {
			return Decl{}, err
		}
		d.Fields = append(d.Fields, f)
	}
	return d, nil
}

func typeAttrs(d *Decl, tag reflect.StructTag) error {
	d.Help = tag.Get("help")
	d.Doc = tag.Get("doc")
	for _, flag := range tagFlags(tag) {
		switch flag {
		case "no_help_flag":
			d.NoHelpFlag = true
		case "no_long":
			d.NoLong = true
		case "no_short":
			d.NoShort = true
		case "no_multi":
			d.NoMulti = true
		case "required":
			d.Required = true
		case "core":
			d.Policy = Core
		case "ignore_unknown":
			d.Policy.IgnoreUnknown = true
		case "ignore_extra_free":
			d.Policy.IgnoreExtraFree = true
		case "no_auto_help":
			d.Policy.NoAutoHelp = true
		case "no_auto_short":
			d.Policy.NoAutoShort = true
		default:
			return &ConfigError{Type: d.Name, Msg: fmt.Sprintf("unexpected type attribute %q", flag)}
		}
	}
	return nil
}

func tagFlags(tag reflect.StructTag) []string {
	var out []string
	for _, s := range strings.Split(tag.Get("yopts"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func fieldOf(rt reflect.Type, sf reflect.StructField, visiting []reflect.Type) (Field, error) {
	f := Field{
		Name:    fieldName(sf.Name),
		Long:    sf.Tag.Get("flag"),
		Help:    sf.Tag.Get("help"),
		Doc:     sf.Tag.Get("doc"),
		Meta:    sf.Tag.Get("meta"),
		Default: sf.Tag.Get("default"),
		Multi:   sf.Tag.Get("multi"),
	}
	bad := func(format string, args ...any) error {
		return &ConfigError{Type: rt.Name(), Field: f.Name, Msg: fmt.Sprintf(format, args...)}
	}
	if s := sf.Tag.Get("short"); s != "" {
		r, n := utf8.DecodeRuneInString(s)
		if n != len(s) {
			return Field{}, bad("short name must be a single character: %q", s)
		}
		f.Short = r
	}
	command := false
	for _, flag := range tagFlags(sf.Tag) {
		switch flag {
		case "free":
			f.Free = true
		case "required":
			f.Required = true
		case "not_required":
			f.NotRequired = true
		case "count":
			f.Count = true
		case "help_flag":
			f.HelpFlag = true
		case "no_help_flag":
			f.NoHelpFlag = true
		case "no_short":
			f.NoShort = true
		case "no_long":
			f.NoLong = true
		case "no_multi":
			f.NoMulti = true
		case "command":
			command = true
		default:
			return Field{}, bad("unexpected attribute %q", flag)
		}
	}

	if command {
		s, err := commandSlotOf(sf, visiting)
		if err != nil {
			return Field{}, bad("%v", err)
		}
		f.Slot = s
		return f, nil
	}

	s, err := valueSlotOf(rt, sf, f.Multi)
	if err != nil {
		return Field{}, bad("%v", err)
	}
	f.Slot = s

	if name := sf.Tag.Get("default_expr"); name != "" {
		fn, err := defaultExprOf(rt, sf, name)
		if err != nil {
			return Field{}, bad("%v", err)
		}
		f.DefaultFunc = fn
	}
	return f, nil
}

// defaultExprOf binds method name on *R, returning the field's type.
func defaultExprOf(rt reflect.Type, sf reflect.StructField, name string) (func(rec any) error, error) {
	m, ok := reflect.PointerTo(rt).MethodByName(name)
	if !ok {
		return nil, fmt.Errorf("default_expr method %s not found on *%s", name, rt.Name())
	}
	mt := m.Type
	if mt.NumIn() != 1 || mt.NumOut() != 1 || !mt.Out(0).AssignableTo(sf.Type) {
		return nil, fmt.Errorf("default_expr method %s must have signature func() %v", name, sf.Type)
	}
	index := sf.Index
	return func(rec any) error {
		rv := reflect.ValueOf(rec)
		out := m.Func.Call([]reflect.Value{rv})
		rv.Elem().FieldByIndex(index).Set(out[0])
		return nil
	}, nil
}

// refSlot is a Slot over a struct field found by reflection. group is the
// type of the value one occurrence produces (T, [N]T or struct{}) and elem
// the type each argument converts to. whole is set when parse produces the
// entire sequence from one argument rather than one element.
type refSlot struct {
	shape   Shape
	arity   int
	numeric bool
	index   []int
	group   reflect.Type
	elem    reflect.Type
	full    reflect.Type
	parse   *reflect.Method
	try     bool
	whole   bool
	add     *reflect.Method
}

func (s *refSlot) Shape() Shape { return s.shape }

func (s *refSlot) Arity() int { return s.arity }

func (s *refSlot) Custom() bool { return s.parse != nil }

func (s *refSlot) Numeric() bool { return s.numeric }

func (s *refSlot) Bind(rec any) Binder {
	rv := reflect.ValueOf(rec)
	return &refBinder{s: s, recv: rv, field: rv.Elem().FieldByIndex(s.index)}
}

var emptyStruct = reflect.TypeFor[struct{}]()

func valueSlotOf(rt reflect.Type, sf reflect.StructField, multi string) (*refSlot, error) {
	ft := sf.Type
	s := &refSlot{arity: -1, index: sf.Index, full: ft}

	if p := sf.Tag.Get("parse"); p != "" {
		kind, name, ok := strings.Cut(p, "=")
		if !ok || (kind != "from_str" && kind != "try_from_str") {
			return nil, fmt.Errorf("parse attribute must be from_str=Method or try_from_str=Method, got %q", p)
		}
		m, ok := reflect.PointerTo(rt).MethodByName(name)
		if !ok {
			return nil, fmt.Errorf("parse method %s not found on *%s", name, rt.Name())
		}
		s.parse = &m
		s.try = kind == "try_from_str"
	}

	if multi != "" {
		m, ok := reflect.PointerTo(ft).MethodByName(multi)
		if !ok {
			return nil, fmt.Errorf("multi method %s not found on *%v", multi, ft)
		}
		if m.Type.NumIn() != 2 || m.Type.NumOut() != 0 {
			return nil, fmt.Errorf("multi method %s must take exactly one argument", multi)
		}
		s.shape = ShapeAccumulator
		s.add = &m
		s.setGroup(m.Type.In(1))
		return s, s.checkElem()
	}

	switch {
	case ft.Kind() == reflect.Bool && s.parse == nil:
		s.shape = ShapeBool
		s.group, s.elem = ft, ft
		return s, nil
	case ft.Kind() == reflect.Pointer:
		s.shape = ShapeOptional
		s.setGroup(ft.Elem())
	case ft.Kind() == reflect.Slice:
		s.shape = ShapeSequence
		s.setGroup(ft.Elem())
	default:
		s.shape = ShapeScalar
		s.setGroup(ft)
		s.numeric = isNumeric(ft)
	}
	return s, s.checkElem()
}

// setGroup records the per-occurrence type g, deriving tuple arity from
// arrays and empty structs.
func (s *refSlot) setGroup(g reflect.Type) {
	s.group = g
	s.elem = g
	switch {
	case g.Kind() == reflect.Array:
		s.arity = g.Len()
		s.elem = g.Elem()
	case g == emptyStruct:
		s.arity = 0
	}
}

func (s *refSlot) checkElem() error {
	if s.arity == 0 {
		return nil
	}
	if s.parse != nil {
		mt := s.parse.Type
		outs := 1
		if s.try {
			outs = 2
		}
		if mt.NumOut() > 0 && s.shape == ShapeSequence && s.arity < 0 && mt.Out(0).AssignableTo(s.full) {
			s.whole = true
		}
		if mt.NumIn() != 2 || mt.In(1).Kind() != reflect.String || mt.NumOut() != outs ||
			!(s.whole || mt.Out(0).AssignableTo(s.elem)) || (s.try && !mt.Out(1).Implements(errorType)) {
			return fmt.Errorf("parse method %s has the wrong signature for %v", s.parse.Name, s.elem)
		}
		return nil
	}
	if !canConvert(s.elem) {
		return fmt.Errorf("unsupported field type %v", s.elem)
	}
	return nil
}

type refBinder struct {
	s     *refSlot
	recv  reflect.Value
	field reflect.Value
}

func (b *refBinder) Switch() {
	if b.field.Kind() == reflect.Bool {
		b.field.SetBool(true)
	}
}

func (b *refBinder) Incr() { increment(b.field) }

func (b *refBinder) Enabled() bool {
	return b.field.Kind() == reflect.Bool && b.field.Bool()
}

func (b *refBinder) conv(arg string) (reflect.Value, error) {
	if m := b.s.parse; m != nil {
		out := m.Func.Call([]reflect.Value{b.recv, reflect.ValueOf(arg)})
		if b.s.try && !out[1].IsNil() {
			return reflect.Value{}, out[1].Interface().(error)
		}
		return out[0], nil
	}
	v := reflect.New(b.s.elem).Elem()
	if err := setValue(v, arg); err != nil {
		return reflect.Value{}, err
	}
	return v, nil
}

// value builds the value of one occurrence from vals.
func (b *refBinder) value(vals []string) (reflect.Value, error) {
	s := b.s
	if s.arity < 0 {
		arg, err := wantOne(vals)
		if err != nil {
			return reflect.Value{}, err
		}
		return b.conv(arg)
	}
	if len(vals) != s.arity {
		return reflect.Value{}, fmt.Errorf("expected %d values, got %d", s.arity, len(vals))
	}
	out := reflect.New(s.group).Elem()
	if s.group.Kind() != reflect.Array {
		return out, nil
	}
	for i, arg := range vals {
		v, err := b.conv(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(v)
	}
	return out, nil
}

func (b *refBinder) Set(vals []string) error {
	switch b.s.shape {
	case ShapeOptional:
		v, err := b.value(vals)
		if err != nil {
			return err
		}
		p := reflect.New(b.s.group)
		p.Elem().Set(v)
		b.field.Set(p)
		return nil
	case ShapeSequence:
		if b.s.arity >= 0 {
			b.field.SetZero()
			return b.Push(vals)
		}
		arg, err := wantOne(vals)
		if err != nil {
			return err
		}
		if b.s.whole {
			v, err := b.conv(arg)
			if err != nil {
				return err
			}
			b.field.Set(v)
			return nil
		}
		out := reflect.MakeSlice(b.field.Type(), 0, 0)
		for _, part := range strings.Split(arg, ",") {
			v, err := b.conv(part)
			if err != nil {
				return err
			}
			out = reflect.Append(out, v)
		}
		b.field.Set(out)
		return nil
	case ShapeAccumulator:
		return b.Push(vals)
	}
	v, err := b.value(vals)
	if err != nil {
		return err
	}
	b.field.Set(v)
	return nil
}

func (b *refBinder) Push(vals []string) error {
	v, err := b.value(vals)
	if err != nil {
		return err
	}
	switch b.s.shape {
	case ShapeSequence:
		if b.s.whole {
			b.field.Set(reflect.AppendSlice(b.field, v))
			return nil
		}
		b.field.Set(reflect.Append(b.field, v))
		return nil
	case ShapeAccumulator:
		b.s.add.Func.Call([]reflect.Value{b.field.Addr(), v})
		return nil
	}
	return errors.New("field cannot accumulate values")
}

// refCommandSlot is a command Slot over a *U union field.
type refCommandSlot struct {
	index  []int
	union  reflect.Type
	fields [][]int
	t      *commandTable
}

func commandSlotOf(sf reflect.StructField, visiting []reflect.Type) (*refCommandSlot, error) {
	ft := sf.Type
	if ft.Kind() != reflect.Pointer || ft.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("command field must be a pointer to a struct of subcommands, got %v", ft)
	}
	ut := ft.Elem()
	s := &refCommandSlot{index: sf.Index, union: ut}
	var vs []*variant
	for i := 0; i < ut.NumField(); i++ {
		vf := ut.Field(i)
		if !vf.IsExported() {
			continue
		}
		pt := vf.Type
		if pt.Kind() != reflect.Pointer || pt.Elem().Kind() != reflect.Struct {
			return nil, fmt.Errorf("subcommand %s must be a pointer to a struct, got %v", vf.Name, pt)
		}
		reg, err := registryOf(pt.Elem(), visiting)
		if err != nil {
			return nil, err
		}
		name := vf.Tag.Get("name")
		if name == "" {
			name = commandName(vf.Name)
		}
		help := vf.Tag.Get("help")
		if help == "" {
			help = firstLine(vf.Tag.Get("doc"))
		}
		elem := pt.Elem()
		vs = append(vs, &variant{
			index: len(vs),
			name:  name,
			help:  help,
			reg:   reg,
			alloc: func() any { return reflect.New(elem).Interface() },
		})
		s.fields = append(s.fields, vf.Index)
	}
	t, err := newCommandTable(vs)
	if err != nil {
		return nil, err
	}
	s.t = t
	return s, nil
}

func (s *refCommandSlot) Shape() Shape { return ShapeCommand }

func (s *refCommandSlot) Arity() int { return -1 }

func (s *refCommandSlot) Custom() bool { return false }

func (s *refCommandSlot) Numeric() bool { return false }

func (s *refCommandSlot) Bind(rec any) Binder { return unsupportedBinder{} }

func (s *refCommandSlot) table() *commandTable { return s.t }

func (s *refCommandSlot) selected(rec any) (*variant, any) {
	u := reflect.ValueOf(rec).Elem().FieldByIndex(s.index)
	if u.IsNil() {
		return nil, nil
	}
	for i, idx := range s.fields {
		if p := u.Elem().FieldByIndex(idx); !p.IsNil() {
			return s.t.variants[i], p.Interface()
		}
	}
	return nil, nil
}

func (s *refCommandSlot) choose(rec any, v *variant, payload any) {
	u := reflect.New(s.union)
	u.Elem().FieldByIndex(s.fields[v.index]).Set(reflect.ValueOf(payload))
	reflect.ValueOf(rec).Elem().FieldByIndex(s.index).Set(u)
}
