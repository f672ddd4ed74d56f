// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopts

import (
	"github.com/yeetrun/yopts/pkg/argv"
)

// ParseInto fills rec, a pointer to the record type r was declared for, from
// the tokens remaining in p. Defaults are applied first. Parsing stops at
// the first error; rec may then be partially filled.
func (r *Registry) ParseInto(p *argv.Parser, rec any) error {
	for _, d := range r.defaults {
		if err := d.run(rec); err != nil {
			return err
		}
	}

	st := &parseState{reg: r, p: p, rec: rec, seen: make([]bool, len(r.required))}
	if err := st.loop(); err != nil {
		return err
	}
	if r.HelpRequested(rec) {
		return nil
	}
	for i, ok := range st.seen {
		if ok {
			continue
		}
		req := r.required[i]
		return &Error{Kind: req.kind, Option: req.option}
	}
	return nil
}

func (d defaulter) run(rec any) error {
	if d.fn != nil {
		return d.fn(rec)
	}
	if err := d.apply(rec); err != nil {
		return &Error{Kind: FailedParseDefault, Option: d.field, Value: d.lit, Err: err}
	}
	return nil
}

// parseState is the per-call state of one ParseInto.
type parseState struct {
	reg   *Registry
	p     *argv.Parser
	rec   any
	seen  []bool
	nfree int
}

func (s *parseState) mark(i int) {
	if i >= 0 {
		s.seen[i] = true
	}
}

func (s *parseState) loop() error {
	r := s.reg
	for {
		tok, ok := s.p.NextOpt()
		if !ok {
			return nil
		}
		switch tok.Kind {
		case argv.Short:
			o, ok := r.short[tok.Short]
			if !ok {
				if r.policy.IgnoreUnknown {
					continue
				}
				return &Error{Kind: UnrecognizedShortOption, Option: string(tok.Short)}
			}
			if err := s.run(o, tok, nil); err != nil {
				return err
			}
		case argv.Long, argv.LongWithArg:
			o, ok := r.long[tok.Name]
			if !ok {
				if r.policy.IgnoreUnknown {
					continue
				}
				return &Error{Kind: UnrecognizedLongOption, Option: tok.Name}
			}
			var attached *string
			if tok.Kind == argv.LongWithArg {
				switch {
				case !o.takesArg():
					return &Error{Kind: UnexpectedArgument, Option: tok.String()}
				case o.arity >= 2:
					return &Error{Kind: UnexpectedSingleArgument, Option: tok.String(), Expected: o.arity}
				}
				attached = &tok.Value
			}
			if err := s.run(o, tok, attached); err != nil {
				return err
			}
		case argv.Free:
			done, err := s.free(tok.Value)
			if err != nil || done {
				return err
			}
		}
	}
}

// run performs o's action. attached is the value given with "--name=value".
func (s *parseState) run(o *option, tok argv.Opt, attached *string) error {
	display := tok.String()
	b := o.slot.Bind(s.rec)
	s.mark(o.required)

	switch o.action {
	case actSwitch:
		b.Switch()
		return nil
	case actCount:
		b.Incr()
		return nil
	}

	vals, err := s.values(o, display, attached)
	if err != nil {
		return err
	}
	if o.action == actPush {
		err = b.Push(vals)
	} else {
		err = b.Set(vals)
	}
	if err != nil {
		return failedParse(display, err)
	}
	return nil
}

// values collects the arguments one occurrence of o consumes.
func (s *parseState) values(o *option, display string, attached *string) ([]string, error) {
	if attached != nil {
		return []string{*attached}, nil
	}
	if o.arity < 0 {
		v, ok := s.p.NextArg()
		if !ok {
			return nil, &Error{Kind: MissingArgument, Option: display}
		}
		return []string{v}, nil
	}
	vals := make([]string, 0, o.arity)
	for len(vals) < o.arity {
		v, ok := s.p.NextArg()
		if !ok {
			return nil, &Error{Kind: InsufficientArguments, Option: display, Expected: o.arity, Found: len(vals)}
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// free dispatches a free argument. It reports done when a command consumed
// the rest of the input.
func (s *parseState) free(value string) (done bool, err error) {
	r := s.reg
	switch {
	case s.nfree < len(r.fixed):
		fs := r.fixed[s.nfree]
		s.nfree++
		return false, s.fill(fs, value)
	case r.tail != nil:
		return false, s.fill(r.tail, value)
	case r.command != nil:
		cmd := r.command
		v, payload, err := cmd.slot.table().parse(value, s.p)
		if err != nil {
			return false, err
		}
		cmd.slot.choose(s.rec, v, payload)
		s.mark(cmd.required)
		return true, nil
	case r.policy.IgnoreExtraFree:
		return false, nil
	}
	return false, &Error{Kind: UnexpectedFree, Value: value}
}

func (s *parseState) fill(fs *freeSlot, value string) error {
	b := fs.slot.Bind(s.rec)
	var err error
	if fs.action == actPush {
		err = b.Push([]string{value})
	} else {
		err = b.Set([]string{value})
	}
	if err != nil {
		return failedParse(fs.field, err)
	}
	s.mark(fs.required)
	return nil
}

// HelpRequested reports whether a help flag is set in rec or in the
// selected subcommand, recursively.
func (r *Registry) HelpRequested(rec any) bool {
	for _, o := range r.helpFlags {
		if o.slot.Bind(rec).Enabled() {
			return true
		}
	}
	if v, payload := r.selected(rec); v != nil {
		return v.reg.HelpRequested(payload)
	}
	return false
}

func (r *Registry) selected(rec any) (*variant, any) {
	if r.command == nil {
		return nil, nil
	}
	return r.command.slot.selected(rec)
}

// CommandName returns the name of the subcommand selected in rec.
func (r *Registry) CommandName(rec any) (string, bool) {
	v, _ := r.selected(rec)
	if v == nil {
		return "", false
	}
	return v.name, true
}

// CommandPath returns the names of the selected subcommands, outermost first.
func (r *Registry) CommandPath(rec any) []string {
	var path []string
	for {
		v, payload := r.selected(rec)
		if v == nil {
			return path
		}
		path = append(path, v.name)
		r, rec = v.reg, payload
	}
}

// Usage returns the usage text of the record type.
func (r *Registry) Usage() string { return r.usage }

// SelfUsage returns the usage text of the innermost selected subcommand,
// or of r itself if none is selected.
func (r *Registry) SelfUsage(rec any) string {
	if v, payload := r.selected(rec); v != nil {
		return v.reg.SelfUsage(payload)
	}
	return r.usage
}

// CommandList returns the aligned list of r's subcommands.
func (r *Registry) CommandList() (string, bool) {
	if r.command == nil {
		return "", false
	}
	return r.command.slot.table().usage, true
}

// SelfCommandList returns the command list of the innermost selected
// subcommand, or of r itself if none is selected.
func (r *Registry) SelfCommandList(rec any) (string, bool) {
	if v, payload := r.selected(rec); v != nil {
		return v.reg.SelfCommandList(payload)
	}
	return r.CommandList()
}

// CommandUsage returns the usage text of the named subcommand.
func (r *Registry) CommandUsage(name string) (string, bool) {
	if r.command == nil {
		return "", false
	}
	return r.command.slot.table().commandUsage(name)
}
