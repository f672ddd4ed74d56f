// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package declfile loads option declarations from TOML or YAML documents
// and turns them into yopts schemas over a dynamic Record.
package declfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a declaration document.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

// FormatOf picks the format from a file extension. JSON documents are read
// as YAML.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml", ".json":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown declaration format for %q", path)
}

// Spec declares one record type: its fields and, optionally, the
// subcommands that may follow them.
type Spec struct {
	Name   string `toml:"name" yaml:"name"`
	Help   string `toml:"help,omitempty" yaml:"help,omitempty"`
	Doc    string `toml:"doc,omitempty" yaml:"doc,omitempty"`
	Style  string `toml:"style,omitempty" yaml:"style,omitempty"`
	Policy string `toml:"policy,omitempty" yaml:"policy,omitempty"`

	NoHelpFlag bool `toml:"no_help_flag,omitempty" yaml:"no_help_flag,omitempty"`
	NoLong     bool `toml:"no_long,omitempty" yaml:"no_long,omitempty"`
	NoShort    bool `toml:"no_short,omitempty" yaml:"no_short,omitempty"`
	NoMulti    bool `toml:"no_multi,omitempty" yaml:"no_multi,omitempty"`
	Required   bool `toml:"required,omitempty" yaml:"required,omitempty"`

	// OptionalCommand allows the command to be omitted.
	OptionalCommand bool `toml:"optional_command,omitempty" yaml:"optional_command,omitempty"`

	Fields   []FieldSpec `toml:"field,omitempty" yaml:"field,omitempty"`
	Commands []*Spec     `toml:"command,omitempty" yaml:"command,omitempty"`
}

// FieldSpec declares one field. Type is one of the names listed in
// ParseType; it defaults to string.
type FieldSpec struct {
	Name string `toml:"name" yaml:"name"`
	Type string `toml:"type,omitempty" yaml:"type,omitempty"`
	Help string `toml:"help,omitempty" yaml:"help,omitempty"`
	Doc  string `toml:"doc,omitempty" yaml:"doc,omitempty"`

	Long    string `toml:"long,omitempty" yaml:"long,omitempty"`
	NoLong  bool   `toml:"no_long,omitempty" yaml:"no_long,omitempty"`
	Short   string `toml:"short,omitempty" yaml:"short,omitempty"`
	NoShort bool   `toml:"no_short,omitempty" yaml:"no_short,omitempty"`

	Free        bool `toml:"free,omitempty" yaml:"free,omitempty"`
	Required    bool `toml:"required,omitempty" yaml:"required,omitempty"`
	NotRequired bool `toml:"not_required,omitempty" yaml:"not_required,omitempty"`
	HelpFlag    bool `toml:"help_flag,omitempty" yaml:"help_flag,omitempty"`
	NoHelpFlag  bool `toml:"no_help_flag,omitempty" yaml:"no_help_flag,omitempty"`
	NoMulti     bool `toml:"no_multi,omitempty" yaml:"no_multi,omitempty"`

	Meta    string `toml:"meta,omitempty" yaml:"meta,omitempty"`
	Default string `toml:"default,omitempty" yaml:"default,omitempty"`
}

// Load reads the declaration file at path.
func Load(path string) (*Spec, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes a declaration document. Unknown keys are rejected.
func Parse(data []byte, format Format) (*Spec, error) {
	var s Spec
	switch format {
	case TOML:
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
		}
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown declaration format %q", format)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// validate checks what the document itself can get wrong. Everything else
// is reported by yopts when the schema is built.
func (s *Spec) validate() error {
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%s: field without a name", s.Name)
		}
		if _, err := ParseType(f.Type); err != nil {
			return fmt.Errorf("%s: field %q: %w", s.Name, f.Name, err)
		}
		if f.Short != "" && len([]rune(f.Short)) != 1 {
			return fmt.Errorf("%s: field %q: short name %q must be a single character", s.Name, f.Name, f.Short)
		}
	}
	for _, c := range s.Commands {
		if c == nil || c.Name == "" {
			return fmt.Errorf("%s: command without a name", s.Name)
		}
		for _, f := range s.Fields {
			if f.Name == CommandField || f.Name == c.Name {
				return fmt.Errorf("%s: field %q clashes with command %q", s.Name, f.Name, c.Name)
			}
		}
		if err := c.validate(); err != nil {
			return err
		}
	}
	return nil
}
