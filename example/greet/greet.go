// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yeetrun/yopts/pkg/argv"
	"github.com/yeetrun/yopts/pkg/yopts"
)

type mainOpts struct {
	Help    bool
	Command *greetCommand
}

type greetCommand struct {
	Print *printOpts
	Serve *serveOpts
}

// printOpts is declared with the typed builder.
type printOpts struct {
	Help  bool
	Shout bool
	Times int
	Every time.Duration
	Names []string
}

// serveOpts is declared with struct tags.
type serveOpts struct {
	Help bool       `help:"print help message"`
	Addr string     `short:"a" default:":8080" help:"listen address"`
	Port yopts.Port `yopts:"no_short" help:"listen port, overrides the one in --addr"`
	Env  bool       `help:"serve the process environment at /env"`
}

var printSchema = yopts.MustSchema[printOpts](yopts.Decl{
	Name: "print",
	Help: "Print a greeting to each name, repeatedly.",
	Fields: []yopts.Field{
		{Name: "help", Slot: yopts.Var(func(o *printOpts) *bool { return &o.Help }, nil), Help: "print help message"},
		{Name: "shout", Slot: yopts.Var(func(o *printOpts) *bool { return &o.Shout }, nil), Help: "greet in capitals"},
		{Name: "times", Slot: yopts.Var(func(o *printOpts) *int { return &o.Times }, nil), Default: "1", Help: "repeat count, 0 for forever"},
		{Name: "every", Slot: yopts.Var(func(o *printOpts) *time.Duration { return &o.Every }, nil), Default: "2s", Meta: "DURATION", Help: "pause between greetings"},
		{Name: "names", Slot: yopts.List(func(o *printOpts) *[]string { return &o.Names }, nil), Free: true, Help: "who to greet"},
	},
})

var schema = yopts.MustSchema[mainOpts](yopts.Decl{
	Name: "greet",
	Fields: []yopts.Field{
		{Name: "help", Slot: yopts.Var(func(o *mainOpts) *bool { return &o.Help }, nil), Help: "print help message"},
		{
			Name:     "command",
			Required: true,
			Slot: yopts.Commands(func(o *mainOpts) **greetCommand { return &o.Command }, yopts.MustCommands(
				yopts.Sub("Print", func(c *greetCommand) **printOpts { return &c.Print }, printSchema).
					WithHelp("Print greetings"),
				yopts.Sub("Serve", func(c *greetCommand) **serveOpts { return &c.Serve }, yopts.MustSchemaOf[serveOpts]()).
					WithHelp("Serve greetings over HTTP"),
			)),
		},
	},
})

func greeting(name string, shout bool) string {
	if name == "" {
		name = "World"
	}
	s := fmt.Sprintf("Hello, %s!", name)
	if shout {
		s = strings.ToUpper(s)
	}
	return s
}

func main() {
	opts := schema.ParseArgsOrExit(argv.AllOptions)
	switch c := opts.Command; {
	case c.Print != nil:
		runPrint(c.Print)
	case c.Serve != nil:
		if err := runServe(c.Serve); err != nil {
			log.Fatal(err)
		}
	}
}

func runPrint(o *printOpts) {
	names := o.Names
	if len(names) == 0 {
		names = []string{""}
	}
	for i := 0; o.Times == 0 || i < o.Times; i++ {
		if i > 0 {
			time.Sleep(o.Every)
		}
		for _, name := range names {
			fmt.Println(greeting(name, o.Shout))
		}
	}
}

func runServe(o *serveOpts) error {
	addr := o.Addr
	if o.Port != 0 {
		host, _, _ := strings.Cut(addr, ":")
		addr = fmt.Sprintf("%s:%d", host, o.Port)
	}
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if o.Env && r.URL.Path == "/env" {
			fmt.Fprintln(w, os.Environ())
			return
		}
		fmt.Fprintln(w, greeting(strings.Trim(r.URL.Path, "/"), false))
	}))
}
