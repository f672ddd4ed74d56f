// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopts

import (
	"errors"
	"fmt"
)

// ErrorKind identifies one of the conditions a parse can fail with.
type ErrorKind int

const (
	// FailedParse: an option or free argument value failed to convert.
	FailedParse ErrorKind = iota + 1
	// FailedParseDefault: a declared default literal failed to convert.
	FailedParseDefault
	// InsufficientArguments: a fixed-arity option ran out of values.
	InsufficientArguments
	// MissingArgument: an option requiring a value was last on the line.
	MissingArgument
	// MissingCommand: a command name was expected but input ended.
	MissingCommand
	// MissingRequired: a required option was never given.
	MissingRequired
	// MissingRequiredCommand: a required command was never given.
	MissingRequiredCommand
	// MissingRequiredFree: a required free argument was never given.
	MissingRequiredFree
	// UnexpectedArgument: "--opt=value" on an option that takes no value.
	UnexpectedArgument
	// UnexpectedSingleArgument: "--opt=value" on a multi-value option.
	UnexpectedSingleArgument
	// UnexpectedFree: a free argument with nowhere to go.
	UnexpectedFree
	// UnrecognizedCommand: a command name matched no variant.
	UnrecognizedCommand
	// UnrecognizedLongOption: "--name" matched no option.
	UnrecognizedLongOption
	// UnrecognizedShortOption: "-c" matched no option.
	UnrecognizedShortOption
)

var kindNames = map[ErrorKind]string{
	FailedParse:              "FailedParse",
	FailedParseDefault:       "FailedParseDefault",
	InsufficientArguments:    "InsufficientArguments",
	MissingArgument:          "MissingArgument",
	MissingCommand:           "MissingCommand",
	MissingRequired:          "MissingRequired",
	MissingRequiredCommand:   "MissingRequiredCommand",
	MissingRequiredFree:      "MissingRequiredFree",
	UnexpectedArgument:       "UnexpectedArgument",
	UnexpectedSingleArgument: "UnexpectedSingleArgument",
	UnexpectedFree:           "UnexpectedFree",
	UnrecognizedCommand:      "UnrecognizedCommand",
	UnrecognizedLongOption:   "UnrecognizedLongOption",
	UnrecognizedShortOption:  "UnrecognizedShortOption",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned by every parse failure. Only the fields relevant to
// Kind are set.
type Error struct {
	Kind ErrorKind

	// Option is the option as the user wrote it ("-n", "--number"), or the
	// field name for free arguments and defaults.
	Option string
	// Value is the offending free argument, command name or default literal.
	Value string
	// Expected and Found count values for fixed-arity options.
	Expected int
	Found    int
	// Err is the underlying conversion error, if any.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case FailedParse:
		return fmt.Sprintf("invalid argument to option `%s`: %s", e.Option, e.msg())
	case FailedParseDefault:
		return fmt.Sprintf("invalid default value for `%s` (%q): %s", e.Option, e.Value, e.msg())
	case InsufficientArguments:
		return fmt.Sprintf("insufficient arguments to option `%s`: expected %d; found %d", e.Option, e.Expected, e.Found)
	case MissingArgument:
		return fmt.Sprintf("missing argument to option `%s`", e.Option)
	case MissingCommand:
		return "missing command name"
	case MissingRequired:
		return fmt.Sprintf("missing required option `%s`", e.Option)
	case MissingRequiredCommand:
		return "missing required command"
	case MissingRequiredFree:
		return "missing required free argument"
	case UnexpectedArgument:
		return fmt.Sprintf("option `%s` does not accept an argument", e.Option)
	case UnexpectedSingleArgument:
		return fmt.Sprintf("option `%s` expects %d arguments; found 1", e.Option, e.Expected)
	case UnexpectedFree:
		return fmt.Sprintf("unexpected free argument `%s`", e.Value)
	case UnrecognizedCommand:
		return fmt.Sprintf("unrecognized command `%s`", e.Value)
	case UnrecognizedLongOption:
		return fmt.Sprintf("unrecognized option `--%s`", e.Option)
	case UnrecognizedShortOption:
		return fmt.Sprintf("unrecognized option `-%s`", e.Option)
	}
	return e.Kind.String()
}

func (e *Error) msg() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind. This lets callers
// match against the Err* sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for matching with errors.Is. They carry no context.
var (
	ErrFailedParse              = &Error{Kind: FailedParse}
	ErrFailedParseDefault       = &Error{Kind: FailedParseDefault}
	ErrInsufficientArguments    = &Error{Kind: InsufficientArguments}
	ErrMissingArgument          = &Error{Kind: MissingArgument}
	ErrMissingCommand           = &Error{Kind: MissingCommand}
	ErrMissingRequired          = &Error{Kind: MissingRequired}
	ErrMissingRequiredCommand   = &Error{Kind: MissingRequiredCommand}
	ErrMissingRequiredFree      = &Error{Kind: MissingRequiredFree}
	ErrUnexpectedArgument       = &Error{Kind: UnexpectedArgument}
	ErrUnexpectedSingleArgument = &Error{Kind: UnexpectedSingleArgument}
	ErrUnexpectedFree           = &Error{Kind: UnexpectedFree}
	ErrUnrecognizedCommand      = &Error{Kind: UnrecognizedCommand}
	ErrUnrecognizedLongOption   = &Error{Kind: UnrecognizedLongOption}
	ErrUnrecognizedShortOption  = &Error{Kind: UnrecognizedShortOption}
)

// ErrHelp is returned by Schema.Drive after usage has been printed in
// response to a help flag.
var ErrHelp = errors.New("help requested")

// ErrShown is returned by Schema.Drive after a parse error has been printed.
// The underlying *Error is still reachable with errors.As.
var ErrShown = errors.New("error displayed")

// ConfigError reports an invalid declaration. It is produced while building
// a Registry, never while parsing arguments.
type ConfigError struct {
	Type  string // declared record name, may be empty
	Field string // offending field, may be empty
	Msg   string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Type != "" && e.Field != "":
		return fmt.Sprintf("yopts: %s.%s: %s", e.Type, e.Field, e.Msg)
	case e.Field != "":
		return fmt.Sprintf("yopts: %s: %s", e.Field, e.Msg)
	case e.Type != "":
		return fmt.Sprintf("yopts: %s: %s", e.Type, e.Msg)
	}
	return "yopts: " + e.Msg
}

func failedParse(option string, err error) *Error {
	return &Error{Kind: FailedParse, Option: option, Err: err}
}
