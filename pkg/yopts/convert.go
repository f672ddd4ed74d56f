// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopts

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
)

// Port is a TCP/UDP port number. Values outside 0-65535 are rejected with a
// friendlier message than the generic uint16 conversion.
type Port uint16

var (
	portType       = reflect.TypeOf(Port(0))
	durationType   = reflect.TypeOf(time.Duration(0))
	urlType        = reflect.TypeOf(url.URL{})
	uuidType       = reflect.TypeOf(uuid.UUID{})
	semverType     = reflect.TypeOf(semver.Version{})
	unmarshalerTyp = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// parsePortValue parses a port value from string with user-friendly error messages.
func parsePortValue(value string) (Port, error) {
	portVal, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return 0, fmt.Errorf("port must be between 0 and 65535, got %q", value)
		}
		return 0, fmt.Errorf("invalid port value %q", value)
	}
	return Port(portVal), nil
}

// convert parses s into a new value of type T using the generic from-string
// conversion.
func convert[T any](s string) (T, error) {
	var v T
	err := setValue(reflect.ValueOf(&v).Elem(), s)
	return v, err
}

// canConvert reports whether setValue knows how to produce a value of type t.
func canConvert(t reflect.Type) bool {
	if reflect.PointerTo(t).Implements(unmarshalerTyp) {
		return true
	}
	switch t {
	case portType, durationType, urlType, uuidType, semverType:
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Pointer:
		return canConvert(t.Elem())
	case reflect.Slice:
		return canConvert(t.Elem())
	}
	return false
}

// setValue sets field from a single string. Slices are filled from a
// comma-separated list; this is only reached for sequence fields declared
// no_multi without a custom parse function.
func setValue(field reflect.Value, value string) error {
	if field.Type() == portType {
		port, err := parsePortValue(value)
		if err != nil {
			return err
		}
		field.SetUint(uint64(port))
		return nil
	}

	switch field.Type() {
	case uuidType:
		id, err := uuid.Parse(value)
		if err != nil {
			return fmt.Errorf("invalid UUID %q: %w", value, err)
		}
		field.Set(reflect.ValueOf(id))
		return nil
	case semverType:
		v, err := semver.NewVersion(value)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", value, err)
		}
		field.Set(reflect.ValueOf(*v))
		return nil
	case urlType:
		u, err := url.Parse(value)
		if err != nil {
			return fmt.Errorf("invalid URL %q: %w", value, err)
		}
		field.Set(reflect.ValueOf(*u))
		return nil
	}

	if field.Kind() != reflect.Pointer && field.CanAddr() {
		if u, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return u.UnmarshalText([]byte(value))
		}
	}

	switch field.Kind() {
	case reflect.Slice:
		parts := strings.Split(value, ",")
		vals := make([]string, 0, len(parts))
		for _, part := range parts {
			if part == "" {
				continue
			}
			vals = append(vals, part)
		}
		slice := reflect.MakeSlice(field.Type(), len(vals), len(vals))
		for i, v := range vals {
			if err := setValue(slice.Index(i), v); err != nil {
				return err
			}
		}
		field.Set(slice)
		return nil

	case reflect.String:
		field.SetString(value)
		return nil

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid bool value %q: %w", value, err)
		}
		field.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", value, err)
			}
			field.SetInt(int64(d))
			return nil
		}

		i, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid int value %q: %w", value, err)
		}
		field.SetInt(i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid uint value %q: %w", value, err)
		}
		field.SetUint(u)
		return nil

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float value %q: %w", value, err)
		}
		field.SetFloat(f)
		return nil

	case reflect.Pointer:
		newValue := reflect.New(field.Type().Elem())
		if err := setValue(newValue.Elem(), value); err != nil {
			return err
		}
		field.Set(newValue)
		return nil

	case reflect.Struct:
		return fmt.Errorf("unsupported struct type %s", field.Type())

	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
}

// isNumeric reports whether t can be incremented by a count option.
func isNumeric(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return t != durationType
	}
	return false
}

// increment adds one to a numeric value.
func increment(v reflect.Value) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(v.Int() + 1)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(v.Uint() + 1)
	case reflect.Float32, reflect.Float64:
		v.SetFloat(v.Float() + 1)
	}
}
