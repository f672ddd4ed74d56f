// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package declfile

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeetrun/yopts/pkg/argv"
	"github.com/yeetrun/yopts/pkg/yopts"
)

func loadSchema(t *testing.T, path string) *yopts.Schema[Record] {
	t.Helper()
	spec, err := Load(path)
	require.NoError(t, err)
	schema, err := spec.Schema()
	require.NoError(t, err)
	return schema
}

func TestLoad(t *testing.T) {
	for _, path := range []string{"testdata/deploy.toml", "testdata/deploy.yaml"} {
		t.Run(path, func(t *testing.T) {
			spec, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "deploy", spec.Name)
			assert.Equal(t, "Deploy a service", spec.Help)
			require.Len(t, spec.Fields, 5)
			assert.Equal(t, "count", spec.Fields[0].Type)
			assert.Equal(t, "30s", spec.Fields[1].Default)
			require.Len(t, spec.Commands, 2)
			assert.Equal(t, "push", spec.Commands[0].Name)
			require.Len(t, spec.Commands[0].Fields, 2)
			assert.True(t, spec.Commands[0].Fields[0].Free)
			assert.Equal(t, "1", spec.Commands[1].Fields[0].Default)
		})
	}
}

func TestParseRecord(t *testing.T) {
	schema := loadSchema(t, "testdata/deploy.toml")

	rec, err := schema.ParseDefault([]string{"-vv", "-T", "a", "--tag=b", "-p", "8080", "push", "v1.2.3", "-f"})
	require.NoError(t, err)

	assert.Equal(t, []string{"verbose", "timeout", "tag", "port", "help"}, rec.Names())
	v, ok := rec.Get("verbose")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	v, _ = rec.Get("timeout")
	assert.Equal(t, 30*time.Second, v)
	v, _ = rec.Get("tag")
	assert.Equal(t, []string{"a", "b"}, v)
	v, _ = rec.Get("port")
	assert.Equal(t, yopts.Port(8080), v)
	assert.Equal(t, []string{"8080"}, rec.Words("port"))

	name, sub := rec.Command()
	require.Equal(t, "push", name)
	require.NotNil(t, sub)
	v, _ = sub.Get("version")
	ver, ok := v.(semver.Version)
	require.True(t, ok, "version is %T", v)
	assert.Equal(t, uint64(2), ver.Minor())
	v, _ = sub.Get("force")
	assert.Equal(t, true, v)

	_, ok = rec.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"push"}, schema.CommandPath(rec))
}

func TestParseRecordDefaults(t *testing.T) {
	schema := loadSchema(t, "testdata/deploy.yaml")

	rec, err := schema.ParseDefault([]string{"rollback"})
	require.NoError(t, err)
	v, _ := rec.Get("port")
	assert.Nil(t, v)
	assert.Nil(t, rec.Words("port"))
	name, sub := rec.Command()
	assert.Equal(t, "rollback", name)
	v, _ = sub.Get("steps")
	assert.Equal(t, 1, v)
}

func TestParseRecordErrors(t *testing.T) {
	schema := loadSchema(t, "testdata/deploy.toml")

	tests := []struct {
		name string
		args []string
		kind yopts.ErrorKind
	}{
		{"missing command", nil, yopts.MissingRequiredCommand},
		{"bad command", []string{"launch"}, yopts.UnrecognizedCommand},
		{"missing version", []string{"push"}, yopts.MissingRequiredFree},
		{"bad port", []string{"-p", "99999", "rollback"}, yopts.FailedParse},
		{"bad version", []string{"push", "one"}, yopts.FailedParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.ParseDefault(tt.args)
			var perr *yopts.Error
			require.True(t, errors.As(err, &perr), "error %v is not a *yopts.Error", err)
			assert.Equal(t, tt.kind, perr.Kind)
		})
	}
}

func TestHelpSkipsRequired(t *testing.T) {
	schema := loadSchema(t, "testdata/deploy.toml")
	rec, err := schema.ParseDefault([]string{"-h"})
	require.NoError(t, err)
	assert.True(t, schema.HelpRequested(rec))
	assert.Contains(t, schema.Usage(), "  -v, --verbose")
	list, ok := schema.CommandList()
	require.True(t, ok)
	assert.Contains(t, list, "Roll back to a previous release")
}

func TestMap(t *testing.T) {
	schema := loadSchema(t, "testdata/deploy.toml")
	rec, err := schema.ParseDefault([]string{"-T", "x", "rollback", "--steps", "3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"verbose": 0,
		"timeout": "30s",
		"tag":     []any{"x"},
		"port":    nil,
		"help":    false,
		"command": "rollback",
		"rollback": map[string]any{
			"steps": 3,
		},
	}, rec.Map())
}

func TestFormatValue(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	tests := []struct {
		v    any
		want string
	}{
		{"a b", "a b"},
		{url.URL{Scheme: "http", Host: "proxy:3128"}, "http://proxy:3128"},
		{*semver.MustParse("1.2.3"), "1.2.3"},
		{90 * time.Second, "1m30s"},
		{id, id.String()},
		{uint(7), "7"},
		{true, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.v))
	}
}

func TestElementTypes(t *testing.T) {
	spec, err := Parse([]byte(`
name = "types"
[[field]]
name = "id"
type = "uuid"
[[field]]
name = "endpoint"
type = "url"
[[field]]
name = "ratio"
type = "float"
[[field]]
name = "size"
type = "uint"
[[field]]
name = "pair"
type = "tuple:int:2"
`), TOML)
	require.NoError(t, err)
	schema, err := spec.Schema()
	require.NoError(t, err)

	id := uuid.New()
	rec, err := schema.ParseDefault([]string{
		"--id", id.String(),
		"--endpoint", "https://example.com/api",
		"--ratio", "0.25",
		"--size", "12",
		"--pair", "3", "4",
	})
	require.NoError(t, err)

	v, _ := rec.Get("id")
	assert.Equal(t, id, v)
	v, _ = rec.Get("endpoint")
	u := v.(url.URL)
	assert.Equal(t, "example.com", u.Host)
	assert.Equal(t, []string{"https://example.com/api"}, rec.Words("endpoint"))
	v, _ = rec.Get("ratio")
	assert.Equal(t, 0.25, v)
	v, _ = rec.Get("size")
	assert.Equal(t, uint(12), v)
	assert.Equal(t, []string{"3", "4"}, rec.Words("pair"))

	typ, ok := rec.Type("pair")
	require.True(t, ok)
	assert.True(t, typ.Seq())
	assert.Equal(t, "tuple:int:2", typ.String())
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{in: "", want: Type{Elem: "string"}},
		{in: "int", want: Type{Elem: "int"}},
		{in: "count", want: Type{Shape: Count, Elem: "int"}},
		{in: "list:url", want: Type{Shape: List, Elem: "url"}},
		{in: "optional:semver", want: Type{Shape: Optional, Elem: "semver"}},
		{in: "tuple:string:3", want: Type{Shape: Tuple, Elem: "string", Arity: 3}},
		{in: "tuple:string", wantErr: true},
		{in: "tuple:string:-1", wantErr: true},
		{in: "list", wantErr: true},
		{in: "complex", wantErr: true},
		{in: "count:int", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpecErrors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		format Format
		want   string
	}{
		{"unknown key", "name = \"x\"\nbogus = 1\n", TOML, `unknown key "bogus"`},
		{"unknown yaml key", "name: x\nbogus: 1\n", YAML, "field bogus not found"},
		{"bad type", "[[field]]\nname = \"a\"\ntype = \"map\"\n", TOML, `unknown type "map"`},
		{"no name", "[[field]]\ntype = \"int\"\n", TOML, "field without a name"},
		{"long short", "[[field]]\nname = \"a\"\nshort = \"ab\"\n", TOML, "single character"},
		{"nameless command", "[[command]]\nhelp = \"x\"\n", TOML, "command without a name"},
		{"command field", "[[field]]\nname = \"command\"\n[[command]]\nname = \"run\"\n", TOML, `field "command" clashes with command "run"`},
		{"field named like command", "field:\n  - name: run\ncommand:\n  - name: run\n", YAML, `field "run" clashes with command "run"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), tt.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want string
	}{
		{"policy", Spec{Name: "x", Policy: "loose"}, `unknown policy "loose"`},
		{"duplicate", Spec{Name: "x", Fields: []FieldSpec{{Name: "a"}, {Name: "a"}}}, `duplicate field "a"`},
		{"meta on switch", Spec{Name: "x", Fields: []FieldSpec{{Name: "a", Type: "bool", Meta: "X"}}}, "`meta` value is invalid"},
		{"free and command", Spec{
			Name:     "x",
			Fields:   []FieldSpec{{Name: "a", Free: true}},
			Commands: []*Spec{{Name: "run"}},
		}, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.Schema()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStyle(t *testing.T) {
	spec := &Spec{
		Name:   "x",
		Style:  "stop-at-first-free",
		Fields: []FieldSpec{{Name: "flag", Type: "bool"}, {Name: "rest", Type: "list:string", Free: true}},
	}
	style, err := spec.ParseStyle()
	require.NoError(t, err)
	assert.Equal(t, argv.StopAtFirstFree, style)

	schema, err := spec.Schema()
	require.NoError(t, err)
	rec, err := schema.Parse([]string{"a", "--flag"}, style)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "--flag"}, rec.Words("rest"))
	v, _ := rec.Get("flag")
	assert.Equal(t, false, v)
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"a.toml": TOML,
		"a.YML":  YAML,
		"a.yaml": YAML,
		"a.json": YAML,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatOf("a.ini")
	assert.Error(t, err)
}
