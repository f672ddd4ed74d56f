// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopts

// Field is the normalized declaration of one record field. A table of
// Fields, wrapped in a Decl, is everything Build needs to produce a
// Registry.
type Field struct {
	// Name is the field identifier in snake_case. Long names, short names,
	// meta names and free-argument display names derive from it.
	Name string
	// Slot is the field's storage. It is required.
	Slot Slot

	// Help is shown in usage. Doc is used when Help is empty.
	Help string
	Doc  string

	// Long overrides the long name derived from Name. NoLong suppresses it.
	Long   string
	NoLong bool
	// Short sets the short name. NoShort suppresses the automatic one.
	Short   rune
	NoShort bool

	// Free binds the field to a positional slot instead of an option.
	Free bool
	// Count increments the field each time the option is given.
	Count bool

	// HelpFlag marks the field as a help flag. A field whose long name is
	// "help" is one unless NoHelpFlag is set.
	HelpFlag   bool
	NoHelpFlag bool

	Required    bool
	NotRequired bool

	// Multi names the accumulation method of a Multi slot; it appears in
	// configuration errors only. NoMulti makes a sequence take a single
	// value that replaces the whole sequence.
	Multi   string
	NoMulti bool

	// Meta is the value placeholder shown in usage.
	Meta string

	// Default is a literal converted like a command line value before
	// parsing starts. Tuple and sequence defaults are split into words
	// using shell quoting rules.
	Default string
	// DefaultFunc runs once before parsing starts, with the record being
	// filled. It is the deferred-expression counterpart to Default.
	DefaultFunc func(rec any) error
}

// DefaultTo adapts a value supplier into a Field.DefaultFunc.
func DefaultTo[R, T any](get func(*R) *T, supply func() T) func(rec any) error {
	return func(rec any) error {
		*get(record[R](rec)) = supply()
		return nil
	}
}

// Policy relaxes parsing rules. The zero value is strict.
type Policy struct {
	// IgnoreUnknown skips unrecognized options instead of failing.
	IgnoreUnknown bool
	// IgnoreExtraFree drops free arguments that have no slot.
	IgnoreExtraFree bool
	// NoAutoHelp disables treating a field named "help" as a help flag.
	NoAutoHelp bool
	// NoAutoShort disables automatic short names.
	NoAutoShort bool
}

// Core is the lenient policy: unknown options and extra free arguments are
// ignored and no names or help flags are implied.
var Core = Policy{
	IgnoreUnknown:   true,
	IgnoreExtraFree: true,
	NoAutoHelp:      true,
	NoAutoShort:     true,
}

// Decl declares one record type.
type Decl struct {
	// Name is used in configuration errors.
	Name string
	// Help (or, if empty, Doc) is printed above the argument sections.
	Help string
	Doc  string

	// Type-level defaults applied to every field.
	NoHelpFlag bool
	NoLong     bool
	NoShort    bool
	NoMulti    bool
	Required   bool

	Policy Policy
	Fields []Field
}
