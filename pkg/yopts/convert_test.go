// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopts

import (
	"net"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
)

func TestConvert(t *testing.T) {
	if got, err := convert[int8]("-12"); err != nil || got != -12 {
		t.Errorf("convert[int8](-12) = %v, %v", got, err)
	}
	if got, err := convert[float32]("2.5"); err != nil || got != 2.5 {
		t.Errorf("convert[float32](2.5) = %v, %v", got, err)
	}
	if got, err := convert[time.Duration]("90s"); err != nil || got != 90*time.Second {
		t.Errorf("convert[Duration](90s) = %v, %v", got, err)
	}
	if got, err := convert[bool]("true"); err != nil || !got {
		t.Errorf("convert[bool](true) = %v, %v", got, err)
	}
	if got, err := convert[*int]("5"); err != nil || got == nil || *got != 5 {
		t.Errorf("convert[*int](5) = %v, %v", got, err)
	}
	if got, err := convert[url.URL]("https://example.com/x"); err != nil || got.Path != "/x" {
		t.Errorf("convert[url.URL] = %v, %v", got, err)
	}
	if got, err := convert[semver.Version]("v1.4.0-rc.1"); err != nil || got.Prerelease() != "rc.1" {
		t.Errorf("convert[semver.Version] = %v, %v", got, err)
	}
	id := uuid.New()
	if got, err := convert[uuid.UUID](id.String()); err != nil || got != id {
		t.Errorf("convert[uuid.UUID] = %v, %v", got, err)
	}
	if got, err := convert[net.IP]("10.0.0.1"); err != nil || !got.Equal(net.IPv4(10, 0, 0, 1)) {
		t.Errorf("convert[net.IP] = %v, %v", got, err)
	}
	if got, err := convert[[]int]("1,2,,3"); err != nil || !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("convert[[]int] = %v, %v", got, err)
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name string
		err  func() error
		want string
	}{
		{"int range", func() error { _, err := convert[int8]("300"); return err }, `invalid int value "300"`},
		{"uint", func() error { _, err := convert[uint]("-1"); return err }, `invalid uint value "-1"`},
		{"port range", func() error { _, err := convert[Port]("70000"); return err }, "port must be between 0 and 65535"},
		{"port", func() error { _, err := convert[Port]("http"); return err }, `invalid port value "http"`},
		{"uuid", func() error { _, err := convert[uuid.UUID]("nope"); return err }, `invalid UUID "nope"`},
		{"semver", func() error { _, err := convert[semver.Version]("x.y"); return err }, `invalid version "x.y"`},
		{"duration", func() error { _, err := convert[time.Duration]("soon"); return err }, `invalid duration "soon"`},
		{"chan", func() error { _, err := convert[chan int]("x"); return err }, "unsupported field type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.err()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestCanConvert(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want bool
	}{
		{reflect.TypeFor[string](), true},
		{reflect.TypeFor[*uint16](), true},
		{reflect.TypeFor[[]float64](), true},
		{reflect.TypeFor[net.IP](), true},
		{reflect.TypeFor[Port](), true},
		{reflect.TypeFor[map[string]int](), false},
		{reflect.TypeFor[struct{ X int }](), false},
		{reflect.TypeFor[func()](), false},
	}
	for _, tt := range tests {
		if got := canConvert(tt.typ); got != tt.want {
			t.Errorf("canConvert(%v) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestIncrement(t *testing.T) {
	var (
		i int16   = 2
		u uint    = 0
		f float64 = 0.5
	)
	for _, p := range []any{&i, &u, &f} {
		v := reflect.ValueOf(p).Elem()
		if !isNumeric(v.Type()) {
			t.Fatalf("isNumeric(%v) = false, want true", v.Type())
		}
		increment(v)
	}
	if i != 3 || u != 1 || f != 1.5 {
		t.Errorf("increment = %v %v %v, want 3 1 1.5", i, u, f)
	}
	if isNumeric(reflect.TypeFor[time.Duration]()) {
		t.Error("isNumeric(Duration) = true, want false")
	}
	if isNumeric(reflect.TypeFor[string]()) {
		t.Error("isNumeric(string) = true, want false")
	}
}
