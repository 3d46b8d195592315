package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/funvibe/typecore/internal/analyzer"
	"github.com/funvibe/typecore/internal/diagnostics"
	"github.com/funvibe/typecore/internal/token"
	"github.com/funvibe/typecore/internal/typesystem"
)

// typeParser reads the type notation accepted on the command line:
//
//	Int
//	Array(Int, 3)
//	Int or Str
//	{x: Int, y: Str}
//	Module("path")
//
// `and` binds tighter than `or`. Names are resolved in the checker's scope.
type typeParser struct {
	c   *analyzer.Checker
	s   scanner.Scanner
	tok rune
	src string
}

func parseType(c *analyzer.Checker, src string) (typesystem.Type, error) {
	p := &typeParser{c: c, src: src}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings
	p.s.Error = func(*scanner.Scanner, string) {}
	p.next()
	t, err := p.union()
	if err != nil {
		return nil, err
	}
	if p.tok != scanner.EOF {
		return nil, p.errorf("unexpected %q", p.s.TokenText())
	}
	return t, nil
}

func (p *typeParser) next() { p.tok = p.s.Scan() }

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("type %q, column %d: %s", p.src, p.s.Position.Column, fmt.Sprintf(format, args...))
}

func (p *typeParser) keyword(kw string) bool {
	return p.tok == scanner.Ident && p.s.TokenText() == kw
}

func (p *typeParser) expect(r rune) error {
	if p.tok != r {
		return p.errorf("expected %q", string(r))
	}
	p.next()
	return nil
}

func (p *typeParser) union() (typesystem.Type, error) {
	l, err := p.intersection()
	if err != nil {
		return nil, err
	}
	for p.keyword("or") {
		p.next()
		r, err := p.intersection()
		if err != nil {
			return nil, err
		}
		l = typesystem.TOr{L: l, R: r}
	}
	return l, nil
}

func (p *typeParser) intersection() (typesystem.Type, error) {
	l, err := p.atom()
	if err != nil {
		return nil, err
	}
	for p.keyword("and") {
		p.next()
		r, err := p.atom()
		if err != nil {
			return nil, err
		}
		l = typesystem.TAnd{L: l, R: r}
	}
	return l, nil
}

func (p *typeParser) atom() (typesystem.Type, error) {
	switch p.tok {
	case '(':
		p.next()
		t, err := p.union()
		if err != nil {
			return nil, err
		}
		return t, p.expect(')')
	case '{':
		return p.record()
	case scanner.Ident:
		return p.named()
	}
	return nil, p.errorf("expected a type")
}

func (p *typeParser) record() (typesystem.Type, error) {
	p.next()
	fields := map[string]typesystem.Type{}
	for p.tok != '}' {
		if p.tok != scanner.Ident {
			return nil, p.errorf("expected a field name")
		}
		name := p.s.TokenText()
		p.next()
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		t, err := p.union()
		if err != nil {
			return nil, err
		}
		fields[name] = t
		if p.tok != ',' {
			break
		}
		p.next()
	}
	if err := p.expect('}'); err != nil {
		return nil, err
	}
	return typesystem.Record(fields), nil
}

func (p *typeParser) named() (typesystem.Type, error) {
	name := p.s.TokenText()
	p.next()
	td, ok := p.c.Tree().RecGetType(p.c.Scope(), name)
	if !ok {
		similar := p.c.Tree().SimilarName(p.c.Scope(), name, p.c.Settings().SuggestionLimit(name))
		return nil, diagnostics.UnknownType(token.Unknown, p.c.Namespace(), name, similar)
	}
	decl, isPoly := td.Type.(typesystem.TPoly)
	if !isPoly {
		return td.Type, nil
	}
	if err := p.expect('('); err != nil {
		return nil, fmt.Errorf("%s takes %d parameter(s): %w", name, len(decl.Params), err)
	}
	var params []typesystem.TyParam
	for p.tok != ')' {
		tp, err := p.param()
		if err != nil {
			return nil, err
		}
		params = append(params, tp)
		if p.tok != ',' {
			break
		}
		p.next()
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	if len(params) != len(decl.Params) {
		return nil, p.errorf("%s takes %d parameter(s), got %d", name, len(decl.Params), len(params))
	}
	return typesystem.Poly(name, params...), nil
}

func (p *typeParser) param() (typesystem.TyParam, error) {
	switch p.tok {
	case scanner.Int:
		n, err := strconv.ParseInt(p.s.TokenText(), 10, 64)
		if err != nil {
			return nil, p.errorf("bad integer: %v", err)
		}
		p.next()
		return typesystem.ValueParam(typesystem.IntValue(n)), nil
	case scanner.String:
		s, err := strconv.Unquote(p.s.TokenText())
		if err != nil {
			return nil, p.errorf("bad string: %v", err)
		}
		p.next()
		return typesystem.ValueParam(typesystem.StrValue(s)), nil
	}
	t, err := p.union()
	if err != nil {
		return nil, err
	}
	return typesystem.TypeParam(t), nil
}
