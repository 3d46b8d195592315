package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/diagnostics"
	"github.com/funvibe/typecore/internal/typesystem"
)

func TestBinaryOperators(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		lhs, rhs ast.Expression
		want     typesystem.Type
	}{
		{"nat plus nat", "+", natLit(1), natLit(2), nat},
		{"int plus nat", "+", typed("i", intT), natLit(2), intT},
		{"nat plus int", "+", natLit(1), typed("i", intT), intT},
		{"nat minus nat", "-", natLit(3), natLit(2), intT},
		{"str times nat", "*", lit(typesystem.StrValue("ab")), natLit(3), str},
		{"str concat", "+", lit(typesystem.StrValue("a")), lit(typesystem.StrValue("b")), str},
		{"ordering", "<", natLit(1), natLit(2), boolT},
		{"equality", "==", lit(typesystem.StrValue("a")), lit(typesystem.StrValue("b")), boolT},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newChecker(t)
			got, err := c.BinOpType(tt.op, tt.lhs, tt.rhs)
			require.NoError(t, err)
			assert.True(t, c.Store().Equal(tt.want, got), "want %s, got %s", tt.want, c.Format(got))
		})
	}
}

func TestBinaryOperatorWithoutImplementation(t *testing.T) {
	c := newChecker(t)
	_, err := c.BinOpType("+", lit(typesystem.StrValue("a")), natLit(1))
	requireKind(t, err, diagnostics.KindTypeMismatch)

	_, err = c.BinOpType("<", lit(typesystem.NoneValue()), lit(typesystem.NoneValue()))
	requireKind(t, err, diagnostics.KindTypeMismatch)
}

func TestUnaryOperators(t *testing.T) {
	c := newChecker(t)

	got, err := c.UnaryOpType("-", natLit(3))
	require.NoError(t, err)
	assert.Equal(t, intT, got)

	got, err = c.UnaryOpType("not", lit(typesystem.BoolValue(true)))
	require.NoError(t, err)
	assert.Equal(t, boolT, got)

	_, err = c.UnaryOpType("not", natLit(1))
	requireKind(t, err, diagnostics.KindTypeMismatch)
}

func TestArrayLengthArithmetic(t *testing.T) {
	c := newChecker(t)
	got, err := c.Check(call("concat", typed("l", array(intT, 2)), typed("r", array(intT, 3))))
	require.NoError(t, err)
	assert.Equal(t, "Array(Int, 5)", got.String())
}

func TestFirstInfersElementThroughSeq(t *testing.T) {
	c := newChecker(t)
	got, err := c.Check(call("first", typed("xs", array(intT, 3))))
	require.NoError(t, err)
	assert.Equal(t, intT, c.Store().Resolve(got))
}

func TestProcedureMethodUpdatesReceiver(t *testing.T) {
	c := newChecker(t)
	arr := c.Tree().DefineLocal(c.Scope(), "arr", array(intT, 3), ast.Private)

	got, err := c.Check(&ast.Call{
		Obj:      ast.NewIdent("arr", nil),
		AttrName: ast.NewPublicIdent("push!", nil),
		Pos:      []ast.PosArg{ast.Pos(natLit(1))},
	})
	require.NoError(t, err)
	assert.Equal(t, none, got)
	assert.Equal(t, "Array(Int, 4)", arr.Type.String())

	_, err = c.Check(&ast.Call{
		Obj:      ast.NewIdent("arr", nil),
		AttrName: ast.NewPublicIdent("push!", nil),
		Pos:      []ast.PosArg{ast.Pos(lit(typesystem.StrValue("x")))},
	})
	requireKind(t, err, diagnostics.KindTypeMismatch)
	assert.Equal(t, "Array(Int, 4)", arr.Type.String(), "a failed call leaves the binding alone")
}

func TestMethodCallBindsReceiver(t *testing.T) {
	c := newChecker(t)

	got, err := c.Check(&ast.Call{Obj: typed("i", intT), AttrName: ast.NewPublicIdent("abs", nil)})
	require.NoError(t, err)
	assert.Equal(t, nat, got)

	got, err = c.Check(&ast.Call{Obj: natLit(3), AttrName: ast.NewPublicIdent("succ", nil)})
	require.NoError(t, err)
	assert.Equal(t, intT, got, "Nat inherits Int's methods")

	got, err = c.Check(&ast.Call{Obj: lit(typesystem.StrValue("a,b")), AttrName: ast.NewPublicIdent("split", nil)})
	require.NoError(t, err)
	assert.Equal(t, "Array", typesystem.QualName(got))
}

func TestMethodCallOnTypeValueKeepsSelf(t *testing.T) {
	c := newChecker(t)
	got, err := c.Check(&ast.Call{
		Obj:      ast.NewIdent("Int", nil),
		AttrName: ast.NewPublicIdent("abs", nil),
		Pos:      []ast.PosArg{ast.Pos(natLit(4))},
	})
	require.NoError(t, err)
	assert.Equal(t, nat, got)
}

func TestIfWithoutElseYieldsOptional(t *testing.T) {
	c := newChecker(t)
	then := &ast.Lambda{Return: nat}

	ret, err := c.Check(&ast.Call{
		Obj: ast.NewIdent("if", nil),
		Pos: []ast.PosArg{ast.Pos(lit(typesystem.BoolValue(true))), ast.Pos(then)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Nat or NoneType", c.Coerce(ret).String())
}

func TestArity(t *testing.T) {
	c := newChecker(t)

	_, err := c.Check(call("id", natLit(1), natLit(2)))
	requireKind(t, err, diagnostics.KindTooManyArguments)

	_, err = c.Check(call("concat", typed("l", array(intT, 2))))
	de := requireKind(t, err, diagnostics.KindMissingArguments)
	assert.Contains(t, de.Message, "r")

	_, err = c.Check(&ast.Call{
		Obj: ast.NewIdent("id", nil),
		Pos: []ast.PosArg{ast.Pos(natLit(1))},
		Kw:  []ast.KwArg{ast.Kw("x", natLit(2))},
	})
	requireKind(t, err, diagnostics.KindDuplicateArgument)

	_, err = c.Check(&ast.Call{
		Obj: ast.NewIdent("id", nil),
		Pos: []ast.PosArg{ast.Pos(natLit(1))},
		Kw:  []ast.KwArg{ast.Kw("y", natLit(2))},
	})
	requireKind(t, err, diagnostics.KindUnexpectedKeyword)

	// keywords never stand in for non-default parameters
	_, err = c.Check(&ast.Call{
		Obj: ast.NewIdent("id", nil),
		Kw:  []ast.KwArg{ast.Kw("x", natLit(2))},
	})
	de = requireKind(t, err, diagnostics.KindMissingArguments)
	assert.Contains(t, de.Message, "x")

	_, err = c.Check(&ast.Call{
		Obj: ast.NewIdent("concat", nil),
		Pos: []ast.PosArg{ast.Pos(typed("l", array(intT, 2)))},
		Kw:  []ast.KwArg{ast.Kw("r", typed("r", array(intT, 3)))},
	})
	de = requireKind(t, err, diagnostics.KindMissingArguments)
	assert.Contains(t, de.Message, "r")
}

func TestDuplicateDefaultArgument(t *testing.T) {
	c := newChecker(t)
	cond := lit(typesystem.BoolValue(true))
	then := &ast.Lambda{Return: nat}
	other := &ast.Lambda{Return: str}

	tests := []struct {
		name string
		pos  []ast.PosArg
		kw   []ast.KwArg
	}{
		{
			name: "keyword twice",
			pos:  []ast.PosArg{ast.Pos(cond), ast.Pos(then)},
			kw:   []ast.KwArg{ast.Kw("else", other), ast.Kw("else", other)},
		},
		{
			name: "positional then keyword",
			pos:  []ast.PosArg{ast.Pos(cond), ast.Pos(then), ast.Pos(other)},
			kw:   []ast.KwArg{ast.Kw("else", other)},
		},
		{
			name: "keyword naming a positional parameter",
			pos:  []ast.PosArg{ast.Pos(cond), ast.Pos(then)},
			kw:   []ast.KwArg{ast.Kw("then", then)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Check(&ast.Call{Obj: ast.NewIdent("if", nil), Pos: tt.pos, Kw: tt.kw})
			requireKind(t, err, diagnostics.KindDuplicateArgument)
		})
	}

	ret, err := c.Check(&ast.Call{
		Obj: ast.NewIdent("if", nil),
		Pos: []ast.PosArg{ast.Pos(cond), ast.Pos(then)},
		Kw:  []ast.KwArg{ast.Kw("else", other)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Nat or Str", c.Coerce(ret).String())
}

func TestVariadicParameter(t *testing.T) {
	c := newChecker(t)
	got, err := c.Check(call("print!", natLit(1), lit(typesystem.StrValue("a")), typed("xs", array(intT, 0))))
	require.NoError(t, err)
	assert.Equal(t, none, got)
}

func TestCallingNonSubroutine(t *testing.T) {
	c := newChecker(t)
	c.Tree().DefineLocal(c.Scope(), "n", nat, ast.Private)
	_, err := c.Check(call("n"))
	requireKind(t, err, diagnostics.KindNotCallable)

	_, err = c.Check(call("nope"))
	requireKind(t, err, diagnostics.KindNoSuchVariable)
}

func TestFreeCalleeIsInferred(t *testing.T) {
	c := newChecker(t)
	f := freshVar(c)

	ret, err := c.Check(&ast.Call{Obj: typed("f", f), Pos: []ast.PosArg{ast.Pos(natLit(1))}})
	require.NoError(t, err)
	subr, ok := c.Store().Deref(f).(typesystem.TSubr)
	require.True(t, ok)
	assert.Equal(t, typesystem.FuncKind, subr.Kind)
	require.Len(t, subr.NonDefault, 1)
	assert.Equal(t, nat, subr.NonDefault[0].Type)
	assert.Equal(t, ret, subr.Return)
}

func TestMatch(t *testing.T) {
	c := newChecker(t)
	onInt := &ast.Lambda{Params: []*ast.Ident{ast.NewIdent("i", intT)}, Return: str}
	onStr := &ast.Lambda{Params: []*ast.Ident{ast.NewIdent("s", str)}, Return: nat}

	got, err := c.Check(call("match", typed("x", intT), onInt, onStr))
	require.NoError(t, err)
	assert.Equal(t, "Str or Nat", got.String())

	_, err = c.Check(call("match", typed("x", float), onInt))
	requireKind(t, err, diagnostics.KindMatchArmMismatch)
}

func TestFailedCallRollsBackStore(t *testing.T) {
	c := newChecker(t)
	s := c.Store()
	c.Tree().DefineLocal(c.Scope(), "g", typesystem.Func([]typesystem.ParamTy{
		typesystem.Param("a", intT),
		typesystem.Param("b", str),
	}, none), ast.Private)
	v := freshVar(c)
	before := s.Cell(v.ID)

	// a constrains v before b fails
	_, err := c.Check(call("g", typed("x", v), natLit(1)))
	requireKind(t, err, diagnostics.KindTypeMismatch)
	assert.True(t, s.SameState(before, s.Cell(v.ID)))

	_, err = c.Check(call("g", typed("x", v), lit(typesystem.StrValue("b"))))
	require.NoError(t, err)
	_, sup, _ := mustSubSup(t, c, v)
	assert.Equal(t, intT, sup)
}
