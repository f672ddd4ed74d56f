// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopts

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Shape is the declared type shape of a field's storage.
type Shape int

const (
	// ShapeScalar holds one value, replaced on every occurrence.
	ShapeScalar Shape = iota
	// ShapeBool is a boolean switch.
	ShapeBool
	// ShapeOptional holds an absent-or-present value.
	ShapeOptional
	// ShapeSequence accumulates one element per occurrence.
	ShapeSequence
	// ShapeAccumulator accumulates through a named method.
	ShapeAccumulator
	// ShapeCommand holds the selected subcommand.
	ShapeCommand
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeBool:
		return "bool"
	case ShapeOptional:
		return "optional"
	case ShapeSequence:
		return "sequence"
	case ShapeAccumulator:
		return "accumulator"
	case ShapeCommand:
		return "command"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Slot describes the storage behind one declared field and binds it to a
// concrete record at parse time. Slots are created with Var, Optional,
// List, Tuple, OptionalTuple, ListTuple, Multi and Commands, or by SchemaOf.
type Slot interface {
	Shape() Shape
	// Arity is the number of values one occurrence consumes for tuple
	// shapes, or -1 if the storage is not a tuple.
	Arity() int
	// Custom reports whether a user-supplied parse function is attached.
	Custom() bool
	// Numeric reports whether the storage can back a count option.
	Numeric() bool
	// Bind returns the storage inside rec, which is a pointer to the
	// record type the slot was declared for.
	Bind(rec any) Binder
}

// Binder mutates one field of one record.
type Binder interface {
	// Switch sets a boolean to true.
	Switch()
	// Incr adds one to a numeric value.
	Incr()
	// Set replaces the value. vals holds one string, or Arity strings for
	// tuples.
	Set(vals []string) error
	// Push appends one element built from vals.
	Push(vals []string) error
	// Enabled reports whether a boolean is true.
	Enabled() bool
}

// Parse converts one argument string. A nil Parse selects the generic
// conversion, which understands strings, booleans, numbers, durations, URLs,
// UUIDs, semantic versions, Port and encoding.TextUnmarshaler.
type Parse[T any] func(string) (T, error)

// FromStr adapts an infallible conversion.
func FromStr[T any](f func(string) T) Parse[T] {
	return func(s string) (T, error) { return f(s), nil }
}

// TryFromStr adapts a fallible conversion.
func TryFromStr[T any](f func(string) (T, error)) Parse[T] {
	return Parse[T](f)
}

func (p Parse[T]) one(s string) (T, error) {
	if p == nil {
		return convert[T](s)
	}
	return p(s)
}

func (p Parse[T]) all(vals []string) ([]T, error) {
	out := make([]T, 0, len(vals))
	for _, s := range vals {
		v, err := p.one(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// slot is the Slot used by the typed constructors.
type slot struct {
	rec     reflect.Type
	shape   Shape
	arity   int
	custom  bool
	numeric bool
	bind    func(rec any) Binder
}

func (s *slot) Shape() Shape { return s.shape }

func (s *slot) Arity() int { return s.arity }

func (s *slot) Custom() bool { return s.custom }

func (s *slot) Numeric() bool { return s.numeric }

func (s *slot) Bind(rec any) Binder { return s.bind(rec) }

func (s *slot) recordType() reflect.Type { return s.rec }

func record[R any](rec any) *R {
	r, ok := rec.(*R)
	if !ok {
		panic(fmt.Sprintf("yopts: slot declared for *%v bound to %T", reflect.TypeFor[R](), rec))
	}
	return r
}

// Var declares a single value of type T. A bool with a nil parse function
// becomes a switch that takes no argument.
func Var[R, T any](get func(*R) *T, parse Parse[T]) Slot {
	t := reflect.TypeFor[T]()
	shape := ShapeScalar
	if t.Kind() == reflect.Bool && parse == nil {
		shape = ShapeBool
	}
	return &slot{
		rec:     reflect.TypeFor[R](),
		shape:   shape,
		arity:   -1,
		custom:  parse != nil,
		numeric: isNumeric(t),
		bind: func(rec any) Binder {
			return &varBinder[T]{p: get(record[R](rec)), parse: parse}
		},
	}
}

// Optional declares a value that is nil until given.
func Optional[R, T any](get func(*R) **T, parse Parse[T]) Slot {
	return &slot{
		rec:    reflect.TypeFor[R](),
		shape:  ShapeOptional,
		arity:  -1,
		custom: parse != nil,
		bind: func(rec any) Binder {
			return &optBinder[T]{p: get(record[R](rec)), parse: parse}
		},
	}
}

// List declares a sequence that gains one element per occurrence.
func List[R, T any](get func(*R) *[]T, parse Parse[T]) Slot {
	return &slot{
		rec:    reflect.TypeFor[R](),
		shape:  ShapeSequence,
		arity:  -1,
		custom: parse != nil,
		bind: func(rec any) Binder {
			return &listBinder[T]{p: get(record[R](rec)), parse: parse}
		},
	}
}

// Tuple declares a fixed group of n values taken as n separate arguments.
// With n == 0 the option takes no argument.
func Tuple[R, T any](get func(*R) *[]T, n int, parse Parse[T]) Slot {
	return &slot{
		rec:    reflect.TypeFor[R](),
		shape:  ShapeScalar,
		arity:  n,
		custom: parse != nil,
		bind: func(rec any) Binder {
			return &tupleBinder[T]{p: get(record[R](rec)), n: n, parse: parse}
		},
	}
}

// OptionalTuple is Tuple whose storage stays nil until given.
func OptionalTuple[R, T any](get func(*R) *[]T, n int, parse Parse[T]) Slot {
	s := Tuple(get, n, parse).(*slot)
	s.shape = ShapeOptional
	return s
}

// ListTuple declares a sequence of fixed groups of n values.
func ListTuple[R, T any](get func(*R) *[][]T, n int, parse Parse[T]) Slot {
	return &slot{
		rec:    reflect.TypeFor[R](),
		shape:  ShapeSequence,
		arity:  n,
		custom: parse != nil,
		bind: func(rec any) Binder {
			return &listTupleBinder[T]{p: get(record[R](rec)), n: n, parse: parse}
		},
	}
}

// Multi declares a container of type C that accumulates values through add,
// the Go counterpart of an explicitly named accumulation method.
func Multi[R, C, T any](get func(*R) *C, add func(*C, T), parse Parse[T]) Slot {
	return &slot{
		rec:    reflect.TypeFor[R](),
		shape:  ShapeAccumulator,
		arity:  -1,
		custom: parse != nil,
		bind: func(rec any) Binder {
			return &multiBinder[C, T]{p: get(record[R](rec)), add: add, parse: parse}
		},
	}
}

// noSeq is embedded by binders that do not accumulate.
type noSeq struct{}

func (noSeq) Push([]string) error {
	return errors.New("field cannot accumulate values")
}

// noFlag is embedded by binders that are neither switches nor counters.
type noFlag struct{}

func (noFlag) Switch() {}

func (noFlag) Incr() {}

func (noFlag) Enabled() bool { return false }

func wantOne(vals []string) (string, error) {
	if len(vals) != 1 {
		return "", fmt.Errorf("expected 1 value, got %d", len(vals))
	}
	return vals[0], nil
}

type varBinder[T any] struct {
	p     *T
	parse Parse[T]
}

func (b *varBinder[T]) Switch() {
	v := reflect.ValueOf(b.p).Elem()
	if v.Kind() == reflect.Bool {
		v.SetBool(true)
	}
}

func (b *varBinder[T]) Incr() { increment(reflect.ValueOf(b.p).Elem()) }

func (b *varBinder[T]) Enabled() bool {
	v := reflect.ValueOf(b.p).Elem()
	return v.Kind() == reflect.Bool && v.Bool()
}

func (b *varBinder[T]) Set(vals []string) error {
	s, err := wantOne(vals)
	if err != nil {
		return err
	}
	v, err := b.parse.one(s)
	if err != nil {
		return err
	}
	*b.p = v
	return nil
}

func (b *varBinder[T]) Push([]string) error {
	return noSeq{}.Push(nil)
}

type optBinder[T any] struct {
	noFlag
	noSeq
	p     **T
	parse Parse[T]
}

func (b *optBinder[T]) Set(vals []string) error {
	s, err := wantOne(vals)
	if err != nil {
		return err
	}
	v, err := b.parse.one(s)
	if err != nil {
		return err
	}
	*b.p = &v
	return nil
}

type listBinder[T any] struct {
	noFlag
	p     *[]T
	parse Parse[T]
}

func (b *listBinder[T]) Push(vals []string) error {
	s, err := wantOne(vals)
	if err != nil {
		return err
	}
	v, err := b.parse.one(s)
	if err != nil {
		return err
	}
	*b.p = append(*b.p, v)
	return nil
}

// Set replaces the whole list from a comma-separated value. It backs
// sequence fields declared no_multi.
func (b *listBinder[T]) Set(vals []string) error {
	s, err := wantOne(vals)
	if err != nil {
		return err
	}
	out, err := b.parse.all(strings.Split(s, ","))
	if err != nil {
		return err
	}
	*b.p = out
	return nil
}

type tupleBinder[T any] struct {
	noFlag
	noSeq
	p     *[]T
	n     int
	parse Parse[T]
}

func (b *tupleBinder[T]) Set(vals []string) error {
	if len(vals) != b.n {
		return fmt.Errorf("expected %d values, got %d", b.n, len(vals))
	}
	out, err := b.parse.all(vals)
	if err != nil {
		return err
	}
	*b.p = out
	return nil
}

type listTupleBinder[T any] struct {
	noFlag
	p     *[][]T
	n     int
	parse Parse[T]
}

func (b *listTupleBinder[T]) Push(vals []string) error {
	if len(vals) != b.n {
		return fmt.Errorf("expected %d values, got %d", b.n, len(vals))
	}
	out, err := b.parse.all(vals)
	if err != nil {
		return err
	}
	*b.p = append(*b.p, out)
	return nil
}

func (b *listTupleBinder[T]) Set(vals []string) error {
	*b.p = nil
	return b.Push(vals)
}

type multiBinder[C, T any] struct {
	noFlag
	p     *C
	add   func(*C, T)
	parse Parse[T]
}

func (b *multiBinder[C, T]) Push(vals []string) error {
	s, err := wantOne(vals)
	if err != nil {
		return err
	}
	v, err := b.parse.one(s)
	if err != nil {
		return err
	}
	b.add(b.p, v)
	return nil
}

func (b *multiBinder[C, T]) Set(vals []string) error {
	return b.Push(vals)
}
