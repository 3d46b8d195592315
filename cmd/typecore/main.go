// Command typecore queries the type checker from the command line: it
// orders types, lists supertypes and trait implementations, resolves
// attributes and types calls against the builtin prelude.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/diagnostics"
)

var version = "0.1.0"

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if os.Getenv("TYPECORE_TEST_MODE") == "1" {
		config.IsTestMode = true
	}
	color := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr, color))
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, color bool) int {
	cmd := newApp(stdout, stderr)
	if err := cmd.Run(ctx, args); err != nil {
		printError(stderr, err, color && !cmd.Bool("no-color"))
		return 1
	}
	return 0
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "typecore",
		Usage:     "query the type checker",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to " + config.SettingsFileName},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "dump", Usage: "dump the resulting types"},
			&cli.BoolFlag{Name: "no-color", Usage: "never colour diagnostics"},
		},
		Commands: []*cli.Command{
			{
				Name:      "sort",
				Usage:     "order types so that subtypes come first",
				ArgsUsage: "TYPE...",
				Action:    sortAction,
			},
			{
				Name:      "supers",
				Usage:     "list the nominal supertype contexts of a type",
				ArgsUsage: "TYPE",
				Action:    supersAction,
			},
			{
				Name:      "impls",
				Usage:     "list the implementations of a trait",
				ArgsUsage: "TRAIT",
				Action:    implsAction,
			},
			{
				Name:      "attr",
				Usage:     "resolve an attribute of a value of the given type",
				ArgsUsage: "TYPE NAME",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "private", Usage: "request private access"},
				},
				Action: attrAction,
			},
			{
				Name:      "call",
				Usage:     "type a call with arguments of the given types",
				ArgsUsage: "NAME [TYPE...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "recv", Usage: "receiver type; NAME is then a method"},
					&cli.StringSliceFlag{Name: "kw", Usage: "keyword argument as name=TYPE"},
				},
				Action: callAction,
			},
			{
				Name:   "config",
				Usage:  "print the effective settings",
				Action: configAction,
			},
		},
	}
}

func printError(w io.Writer, err error, color bool) {
	msg := err.Error()
	if color {
		if _, ok := diagnostics.As(err); ok {
			msg = "\x1b[31m" + msg + "\x1b[0m"
		}
	}
	fmt.Fprintln(w, msg)
}
