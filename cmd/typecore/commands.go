package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v3"

	"github.com/funvibe/typecore/internal/analyzer"
	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/prelude"
	"github.com/funvibe/typecore/internal/symbols"
	"github.com/funvibe/typecore/internal/typesystem"
)

// session is one checker over a fresh prelude, configured from the
// command line.
type session struct {
	c    *analyzer.Checker
	out  io.Writer
	dump bool
}

func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	path := cmd.String("config")
	if path == "" {
		found, err := config.FindSettings(".")
		if err != nil {
			return nil, err
		}
		path = found
	}
	settings := config.DefaultSettings()
	if path != "" {
		s, err := config.LoadSettings(path)
		if err != nil {
			return nil, err
		}
		settings = s
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		settings.LogLevel = lvl
	}
	return settings, nil
}

func newSession(cmd *cli.Command) (*session, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	root := cmd.Root()
	tree := symbols.NewTree(settings.MaxScopeDepth)
	prelude.Init(tree)
	c := analyzer.New(tree,
		analyzer.WithSettings(settings),
		analyzer.WithLogger(config.NewLogger(settings.LogLevel, root.ErrWriter)),
	)
	return &session{c: c, out: root.Writer, dump: cmd.Bool("dump")}, nil
}

func (s *session) types(srcs []string) ([]typesystem.Type, error) {
	out := make([]typesystem.Type, 0, len(srcs))
	for _, src := range srcs {
		t, err := parseType(s.c, src)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *session) print(t typesystem.Type) {
	fmt.Fprintln(s.out, s.c.Format(t))
	if s.dump {
		spew.Fdump(s.out, t)
	}
}

func requireArgs(cmd *cli.Command, n int) error {
	if cmd.NArg() < n {
		return fmt.Errorf("%s: expected %s", cmd.Name, cmd.ArgsUsage)
	}
	return nil
}

func sortAction(_ context.Context, cmd *cli.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	ts, err := s.types(cmd.Args().Slice())
	if err != nil {
		return err
	}
	sorted := s.c.SortTypes(ts)
	names := make([]string, len(sorted))
	for i, t := range sorted {
		names[i] = s.c.Format(t)
	}
	fmt.Fprintln(s.out, strings.Join(names, ", "))
	return nil
}

func supersAction(_ context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	t, err := parseType(s.c, cmd.Args().First())
	if err != nil {
		return err
	}
	ctxs, ok := s.c.NominalSupertypeContexts(t)
	if !ok {
		return fmt.Errorf("%s has no nominal context", s.c.Format(t))
	}
	for _, ctx := range ctxs {
		fmt.Fprintf(s.out, "%s\t%s\n", s.c.Format(ctx.Type), s.c.Tree().Get(ctx.Scope).Name)
	}
	return nil
}

func implsAction(_ context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	t, err := parseType(s.c, cmd.Args().First())
	if err != nil {
		return err
	}
	if !s.c.IsTrait(t) {
		return fmt.Errorf("%s is not a trait", s.c.Format(t))
	}
	for _, ti := range symbols.SortedTraitImpls(s.c.TraitImpls(t)) {
		fmt.Fprintf(s.out, "%s <: %s\n", s.c.Format(ti.SubType), s.c.Format(ti.SupTrait))
	}
	return nil
}

func attrAction(_ context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 2); err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	t, err := parseType(s.c, cmd.Args().Get(0))
	if err != nil {
		return err
	}
	name := ast.NewPublicIdent(cmd.Args().Get(1), nil)
	if cmd.Bool("private") {
		name = ast.NewIdent(name.Name, nil)
	}
	got, err := s.c.AttributeType(ast.NewIdent("value", t), name)
	if err != nil {
		return err
	}
	s.print(got)
	return nil
}

func callAction(_ context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	args := cmd.Args().Slice()
	call := &ast.Call{Obj: ast.NewIdent(args[0], nil)}
	if recv := cmd.String("recv"); recv != "" {
		t, err := parseType(s.c, recv)
		if err != nil {
			return err
		}
		call.Obj = ast.NewIdent("recv", t)
		call.AttrName = ast.NewPublicIdent(args[0], nil)
	}
	pos, err := s.types(args[1:])
	if err != nil {
		return err
	}
	for i, t := range pos {
		call.Pos = append(call.Pos, ast.Pos(ast.NewIdent(fmt.Sprintf("arg%d", i), t)))
	}
	for _, kw := range cmd.StringSlice("kw") {
		name, src, ok := strings.Cut(kw, "=")
		if !ok {
			return fmt.Errorf("keyword argument %q: expected name=TYPE", kw)
		}
		t, err := parseType(s.c, src)
		if err != nil {
			return err
		}
		call.Kw = append(call.Kw, ast.Kw(name, ast.NewIdent(name, t)))
	}
	ret, err := s.c.Check(call)
	if err != nil {
		return err
	}
	s.print(s.c.Coerce(ret))
	return nil
}

func configAction(_ context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	data, err := settings.Marshal()
	if err != nil {
		return fmt.Errorf("rendering settings: %w", err)
	}
	_, err = cmd.Root().Writer.Write(data)
	return err
}
