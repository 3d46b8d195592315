package ast

import (
	"strings"

	"github.com/funvibe/typecore/internal/token"
	"github.com/funvibe/typecore/internal/typesystem"
)

// Ident is a variable or attribute name. Vis is the visibility the access
// requests: `x` is private, `.x` is public.
type Ident struct {
	Name     string
	Vis      Visibility
	Type     typesystem.Type
	Location token.Location
}

func NewIdent(name string, t typesystem.Type) *Ident {
	return &Ident{Name: name, Vis: Private, Type: t}
}

// NewPublicIdent builds an identifier requesting public access.
func NewPublicIdent(name string, t typesystem.Type) *Ident {
	return &Ident{Name: name, Vis: Public, Type: t}
}

func (i *Ident) expressionNode()          {}
func (i *Ident) Loc() token.Location      { return i.Location }
func (i *Ident) RefType() typesystem.Type { return i.Type }

func (i *Ident) String() string {
	if i.Vis == Public {
		return "." + i.Name
	}
	return i.Name
}

// IsProcedural reports whether the name marks a procedure (`print!`).
func (i *Ident) IsProcedural() bool { return strings.HasSuffix(i.Name, "!") }

// Attr is `Obj.Ident`.
type Attr struct {
	Obj      Expression
	Ident    *Ident
	Type     typesystem.Type
	Location token.Location
}

func (a *Attr) expressionNode()          {}
func (a *Attr) RefType() typesystem.Type { return a.Type }

func (a *Attr) Loc() token.Location {
	if a.Location.IsUnknown() {
		return token.Concat(a.Obj.Loc(), a.Ident.Loc())
	}
	return a.Location
}

func (a *Attr) String() string { return a.Obj.String() + "." + a.Ident.Name }

// Literal is a constant. Its type defaults to the value's class.
type Literal struct {
	Value    typesystem.Value
	Type     typesystem.Type
	Location token.Location
}

func NewLiteral(v typesystem.Value) *Literal { return &Literal{Value: v} }

func (l *Literal) expressionNode()     {}
func (l *Literal) Loc() token.Location { return l.Location }
func (l *Literal) String() string      { return l.Value.String() }

func (l *Literal) RefType() typesystem.Type {
	if l.Type != nil {
		return l.Type
	}
	return l.Value.Class()
}

// Lambda is an anonymous subroutine whose parameters and result are typed.
type Lambda struct {
	Params   []*Ident
	Return   typesystem.Type
	Kind     typesystem.SubrKind
	Location token.Location
}

func (l *Lambda) expressionNode()     {}
func (l *Lambda) Loc() token.Location { return l.Location }

func (l *Lambda) String() string {
	names := make([]string, len(l.Params))
	for i, p := range l.Params {
		names[i] = p.Name
	}
	return "(" + strings.Join(names, ", ") + ") " + l.Kind.Arrow() + " ..."
}

func (l *Lambda) RefType() typesystem.Type {
	params := make([]typesystem.ParamTy, len(l.Params))
	for i, p := range l.Params {
		params[i] = typesystem.Param(p.Name, p.Type)
	}
	return typesystem.TSubr{Kind: l.Kind, NonDefault: params, Return: l.Return}
}

// PosArg is a positional call argument.
type PosArg struct {
	Expr Expression
}

func Pos(e Expression) PosArg { return PosArg{Expr: e} }

// KwArg is a `name := expr` call argument.
type KwArg struct {
	Keyword *Ident
	Expr    Expression
}

func Kw(name string, e Expression) KwArg {
	return KwArg{Keyword: &Ident{Name: name, Location: e.Loc()}, Expr: e}
}

// Call is `Obj(args)` or `Obj.AttrName(args)`.
type Call struct {
	Obj      Expression
	AttrName *Ident
	Pos      []PosArg
	Kw       []KwArg
	Location token.Location
}

func (c *Call) Loc() token.Location {
	if c.Location.IsUnknown() {
		return c.Obj.Loc()
	}
	return c.Location
}

func (c *Call) String() string {
	var sb strings.Builder
	sb.WriteString(c.Obj.String())
	if c.AttrName != nil {
		sb.WriteString(".")
		sb.WriteString(c.AttrName.Name)
	}
	sb.WriteString("(")
	var args []string
	for _, a := range c.Pos {
		args = append(args, a.Expr.String())
	}
	for _, a := range c.Kw {
		args = append(args, a.Keyword.Name+" := "+a.Expr.String())
	}
	sb.WriteString(strings.Join(args, ", "))
	sb.WriteString(")")
	return sb.String()
}
