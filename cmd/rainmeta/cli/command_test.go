// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func noop(context.Context, []string) error { return nil }

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "rainmeta",
		Subcommands: []*Command{
			{
				Name: "encode",
				Run: func(ctx context.Context, args []string) error {
					called = "encode"
					return nil
				},
			},
			{
				Name: "decode",
				Run: func(ctx context.Context, args []string) error {
					called = "decode"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"decode"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "decode" {
		t.Errorf("dispatched to %q, want %q", called, "decode")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "rainmeta",
		Subcommands: []*Command{
			{
				Name: "schema",
				Subcommands: []*Command{
					{
						Name: "show",
						Run: func(ctx context.Context, args []string) error {
							called = "schema show"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"schema", "show", "authoring-meta-v2"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "schema show" {
		t.Errorf("dispatched to %q, want %q", called, "schema show")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "authoring-meta-v2" {
		t.Errorf("args = %v, want [authoring-meta-v2]", receivedArgs)
	}
}

func TestCommand_Execute_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "marker")

	var got any
	root := &Command{
		Name: "rainmeta",
		Subcommands: []*Command{
			{
				Name: "resolve",
				Run: func(ctx context.Context, args []string) error {
					got = ctx.Value(key{})
					return nil
				},
			},
		},
	}

	if err := root.Execute(ctx, []string{"resolve"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got != "marker" {
		t.Errorf("context value = %v, want marker", got)
	}
}

func TestCommand_Execute_RunWithPositionalArgs(t *testing.T) {
	var received []string
	command := &Command{
		Name: "schema",
		Subcommands: []*Command{
			{Name: "show", Run: noop},
		},
		Run: func(ctx context.Context, args []string) error {
			received = args
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"shwo"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(received) != 1 || received[0] != "shwo" {
		t.Errorf("args = %v, want [shwo]", received)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var subgraph string
	var target string

	command := &Command{
		Name: "resolve",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
			flagSet.StringVar(&subgraph, "subgraph", "https://default.example", "subgraph URL")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"--subgraph", "https://custom.example", "0xabcd"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if subgraph != "https://custom.example" {
		t.Errorf("subgraph = %q, want %q", subgraph, "https://custom.example")
	}
	if target != "0xabcd" {
		t.Errorf("target = %q, want %q", target, "0xabcd")
	}
}

func TestCommand_Execute_HelpAfterArgs(t *testing.T) {
	ran := false
	command := &Command{
		Name: "decode",
		Flags: func() *pflag.FlagSet {
			return pflag.NewFlagSet("decode", pflag.ContinueOnError)
		},
		Run: func(ctx context.Context, args []string) error {
			ran = true
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"doc.bin", "--help"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if ran {
		t.Error("Run was called for --help")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "decode",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("decode", pflag.ContinueOnError)
			flagSet.Bool("json", false, "output as JSON")
			flagSet.Bool("hex", false, "input is hex")
			return flagSet
		},
		Run: noop,
	}

	err := command.Execute(context.Background(), []string{"--jsno"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --json") {
		t.Errorf("error = %q, want suggestion for '--json'", errStr)
	}
	if !strings.Contains(errStr, "jsno") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "decode",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("decode", pflag.ContinueOnError)
			flagSet.Bool("json", false, "output as JSON")
			return flagSet
		},
		Run: noop,
	}

	err := command.Execute(context.Background(), []string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "rainmeta",
		Subcommands: []*Command{
			{Name: "encode"},
			{Name: "decode"},
			{Name: "validate"},
		},
	}

	err := root.Execute(context.Background(), []string{"valdiate"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"validate\"") {
		t.Errorf("error = %q, want suggestion for 'validate'", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "rainmeta",
		Subcommands: []*Command{
			{Name: "encode"},
			{Name: "decode"},
		},
	}

	err := root.Execute(context.Background(), []string{"zzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not contain suggestion for distant input", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:    "rainmeta",
				Summary: "Rain meta document tooling",
				Subcommands: []*Command{
					{Name: "decode", Summary: "Decode a document"},
				},
			}

			if err := root.Execute(context.Background(), []string{helpArg}); err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "rainmeta",
		Subcommands: []*Command{
			{Name: "decode", Summary: "Decode a document"},
		},
	}

	err := root.Execute(context.Background(), []string{})
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "rainmeta",
		Description: "Encode, decode and resolve Rain meta documents.",
		Subcommands: []*Command{
			{Name: "encode", Summary: "Build a document from a manifest"},
			{Name: "decode", Summary: "Decode and validate a document"},
		},
		Examples: []Example{
			{
				Description: "Decode a hex document",
				Command:     "rainmeta decode --hex doc.hex",
			},
			{
				Description: "Resolve a meta by hash",
				Command:     "rainmeta resolve 0x1234",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Encode, decode and resolve Rain meta documents.",
		"Usage:",
		"rainmeta <command> [flags]",
		"Commands:",
		"encode",
		"Build a document from a manifest",
		"decode",
		"Decode and validate a document",
		"Examples:",
		"rainmeta decode --hex doc.hex",
		"rainmeta resolve 0x1234",
		"Run 'rainmeta <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	command := &Command{
		Name:    "decode",
		Summary: "Decode and validate a document",
		Usage:   "rainmeta decode [flags] [file]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("decode", pflag.ContinueOnError)
			flagSet.Bool("hex", false, "input is hex encoded")
			flagSet.Bool("json", false, "output as JSON")
			return flagSet
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"rainmeta decode [flags] [file]",
		"Flags:",
		"--hex",
		"--json",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "rainmeta"}
	schema := &Command{Name: "schema", parent: root}
	show := &Command{Name: "show", parent: schema}

	if got := root.fullName(); got != "rainmeta" {
		t.Errorf("root.fullName() = %q, want %q", got, "rainmeta")
	}
	if got := schema.fullName(); got != "rainmeta schema" {
		t.Errorf("schema.fullName() = %q, want %q", got, "rainmeta schema")
	}
	if got := show.fullName(); got != "rainmeta schema show" {
		t.Errorf("show.fullName() = %q, want %q", got, "rainmeta schema show")
	}
}
