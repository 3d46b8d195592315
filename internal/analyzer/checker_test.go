package analyzer

import (
	"sort"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/diagnostics"
	"github.com/funvibe/typecore/internal/prelude"
	"github.com/funvibe/typecore/internal/symbols"
	"github.com/funvibe/typecore/internal/typesystem"
)

var (
	nat   = typesystem.Nat
	intT  = typesystem.Int
	float = typesystem.Float
	str   = typesystem.Str
	boolT = typesystem.Bool
	none  = typesystem.NoneType
)

func newChecker(t *testing.T, opts ...Option) *Checker {
	t.Helper()
	tree := symbols.NewTree(0)
	prelude.Init(tree)
	return New(tree, opts...)
}

// typed is an expression whose type is already known.
func typed(name string, t typesystem.Type) *ast.Ident {
	return ast.NewIdent(name, t)
}

func lit(v typesystem.Value) *ast.Literal { return ast.NewLiteral(v) }

func natLit(i int64) *ast.Literal { return lit(typesystem.IntValue(i)) }

func array(elem typesystem.Type, n int64) typesystem.TPoly {
	return prelude.ArrayOf(elem, typesystem.ValueParam(typesystem.IntValue(n)))
}

func call(name string, args ...ast.Expression) *ast.Call {
	c := &ast.Call{Obj: ast.NewIdent(name, nil)}
	for _, a := range args {
		c.Pos = append(c.Pos, ast.Pos(a))
	}
	return c
}

// requireKind fails unless err is a diagnostic of kind.
func requireKind(t *testing.T, err error, kind diagnostics.Kind) *diagnostics.DiagnosticError {
	t.Helper()
	require.Error(t, err)
	de, ok := diagnostics.As(err)
	require.True(t, ok, "not a diagnostic: %s", spew.Sdump(err))
	require.Equal(t, kind, de.Kind(), de.Error())
	return de
}

// defineClass registers a class C <: Obj in the checker's module with the
// given public members.
func defineClass(c *Checker, name string, members map[string]typesystem.Type) *symbols.Scope {
	tree := c.Tree()
	typ := typesystem.Mono(name)
	s := tree.NewTypeScope(c.Scope(), typ, symbols.KindClass)
	tree.AddSuperClass(s.ID, typesystem.Obj)
	for _, m := range sortedKeys(members) {
		tree.DefineLocal(s.ID, m, members[m], ast.Public)
	}
	tree.RegisterMonoType(c.Scope(), typ, s.ID, ast.Public)
	return s
}

func sortedKeys(m map[string]typesystem.Type) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
