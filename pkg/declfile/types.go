// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package declfile

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/yeetrun/yopts/pkg/yopts"
)

// Shape is how a declared field stores its values.
type Shape int

const (
	Scalar Shape = iota
	Count
	List
	Optional
	Tuple
)

// Type is a parsed field type such as "int", "list:url" or "tuple:string:2".
type Type struct {
	Shape Shape
	Elem  string
	// Arity is the tuple size. It is zero for other shapes.
	Arity int
}

func (t Type) String() string {
	switch t.Shape {
	case Count:
		return "count"
	case List:
		return "list:" + t.Elem
	case Optional:
		return "optional:" + t.Elem
	case Tuple:
		return fmt.Sprintf("tuple:%s:%d", t.Elem, t.Arity)
	}
	return t.Elem
}

// Seq reports whether values of t are sequences.
func (t Type) Seq() bool { return t.Shape == List || t.Shape == Tuple }

// ParseType parses a field type. The element types are bool, string, int,
// uint, float, duration, url, uuid, semver and port; the empty string means
// string.
func ParseType(s string) (Type, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	var t Type
	switch parts[0] {
	case "count":
		if len(parts) != 1 {
			return t, fmt.Errorf("invalid type %q", s)
		}
		return Type{Shape: Count, Elem: "int"}, nil
	case "list", "optional":
		if len(parts) != 2 {
			return t, fmt.Errorf("invalid type %q: want %s:<type>", s, parts[0])
		}
		t.Shape = List
		if parts[0] == "optional" {
			t.Shape = Optional
		}
		t.Elem = parts[1]
	case "tuple":
		if len(parts) != 3 {
			return t, fmt.Errorf("invalid type %q: want tuple:<type>:<n>", s)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 0 {
			return t, fmt.Errorf("invalid tuple size %q", parts[2])
		}
		t = Type{Shape: Tuple, Elem: parts[1], Arity: n}
	default:
		if len(parts) != 1 {
			return t, fmt.Errorf("invalid type %q", s)
		}
		t.Elem = parts[0]
	}
	if t.Elem == "" {
		t.Elem = "string"
	}
	if _, ok := elems[t.Elem]; !ok {
		return t, fmt.Errorf("unknown type %q", t.Elem)
	}
	return t, nil
}

// elemKind creates storage cells and slots for one element type.
type elemKind interface {
	cell(Shape) any
	slot(t Type, i int) yopts.Slot
}

type elem[T any] struct{}

func (elem[T]) cell(s Shape) any {
	switch s {
	case List, Tuple:
		return new([]T)
	case Optional:
		return new(*T)
	}
	return new(T)
}

func (elem[T]) slot(t Type, i int) yopts.Slot {
	switch t.Shape {
	case List:
		return yopts.List[Record, T](func(r *Record) *[]T { return r.cells[i].(*[]T) }, nil)
	case Tuple:
		return yopts.Tuple[Record, T](func(r *Record) *[]T { return r.cells[i].(*[]T) }, t.Arity, nil)
	case Optional:
		return yopts.Optional[Record, T](func(r *Record) **T { return r.cells[i].(**T) }, nil)
	}
	return yopts.Var[Record, T](func(r *Record) *T { return r.cells[i].(*T) }, nil)
}

var elems = map[string]elemKind{
	"bool":     elem[bool]{},
	"string":   elem[string]{},
	"int":      elem[int]{},
	"uint":     elem[uint]{},
	"float":    elem[float64]{},
	"duration": elem[time.Duration]{},
	"url":      elem[url.URL]{},
	"uuid":     elem[uuid.UUID]{},
	"semver":   elem[semver.Version]{},
	"port":     elem[yopts.Port]{},
}
