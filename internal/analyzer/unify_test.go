package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/diagnostics"
	"github.com/funvibe/typecore/internal/prelude"
	"github.com/funvibe/typecore/internal/token"
	"github.com/funvibe/typecore/internal/typesystem"
)

func freshVar(c *Checker) typesystem.TFree {
	return c.Store().FreshType(c.Level(), typesystem.NewTypeOf(typesystem.TypeT))
}

func TestSubUnifyTightensBounds(t *testing.T) {
	c := newChecker(t)
	s := c.Store()
	v := freshVar(c)

	require.NoError(t, c.SubUnify(nat, v, token.Unknown, "x"))
	con, ok := s.Constraint(v.ID)
	require.True(t, ok)
	sub, sup, _ := con.SubSup()
	assert.Equal(t, nat, sub)
	assert.True(t, typesystem.IsObj(sup))

	require.NoError(t, c.SubUnify(v, intT, token.Unknown, "x"))
	con, _ = s.Constraint(v.ID)
	sub, sup, _ = con.SubSup()
	assert.Equal(t, nat, sub)
	assert.Equal(t, intT, sup)

	requireKind(t, c.SubUnify(str, v, token.Unknown, "x"), diagnostics.KindTypeMismatch)

	require.NoError(t, c.SubUnify(v, nat, token.Unknown, "x"))
	assert.Equal(t, nat, s.Deref(v), "bounds met, so the variable is fixed")
}

func TestGenericFunctionCoercesToCommonSupertype(t *testing.T) {
	c := newChecker(t)
	// f|T|(a: T, b: T) -> T
	c.Tree().DefineLocal(c.Scope(), "f", typesystem.TForall{
		Bounds: []typesystem.Bound{{Kind: typesystem.InstanceOf, Name: "T", Type: typesystem.TypeT}},
		Body: typesystem.Func([]typesystem.ParamTy{
			typesystem.Param("a", typesystem.QVar("T")),
			typesystem.Param("b", typesystem.QVar("T")),
		}, typesystem.QVar("T")),
	}, ast.Private)

	ret, err := c.Check(call("f", natLit(1), typed("i", intT)))
	require.NoError(t, err)
	assert.Equal(t, intT, c.Coerce(ret))
}

func TestUnifyRejectsInfiniteType(t *testing.T) {
	c := newChecker(t)
	s := c.Store()
	v := freshVar(c)
	before := s.Cell(v.ID)

	err := c.Unify(v, prelude.ArrayOf(v, typesystem.ValueParam(typesystem.IntValue(3))), token.Unknown, "xs")
	requireKind(t, err, diagnostics.KindTypeMismatch)
	assert.True(t, s.SameState(before, s.Cell(v.ID)), "failed unification leaves the store untouched")
}

func TestSelfReferentialUpperBoundIsSuperCyclic(t *testing.T) {
	c := newChecker(t)
	s := c.Store()
	v := freshVar(c)

	require.NoError(t, c.SubUnify(v, prelude.Add(v), token.Unknown, "x"))
	con, ok := s.Constraint(v.ID)
	require.True(t, ok)
	assert.Equal(t, typesystem.SuperCyclic, con.Cyclicity())
	_, sup, _ := con.SubSup()
	assert.Equal(t, "Add", typesystem.QualName(sup))
	assert.True(t, s.Occurs(v.ID, sup))
}

// A variable bounded by itself on both sides must stay unbound and every
// comparison against it must terminate.
func TestBothCyclicVariableStaysUnbound(t *testing.T) {
	c := newChecker(t)
	s := c.Store()
	v := freshVar(c)
	arr := prelude.ArrayOf(v, typesystem.ValueParam(typesystem.IntValue(3)))

	require.NoError(t, c.SubUnify(v, typesystem.TOr{L: arr, R: none}, token.Unknown, "x"))
	require.NoError(t, c.SubUnify(arr, v, token.Unknown, "x"))

	con, ok := s.Constraint(v.ID)
	require.True(t, ok)
	assert.Equal(t, typesystem.BothCyclic, con.Cyclicity())

	assert.True(t, c.SupertypeOf(typesystem.Obj, v))
	assert.False(t, c.SupertypeOf(intT, v))
	assert.False(t, c.SubtypeOf(v, str))

	c.Coerce(v)
	_, _, unbound := s.UnboundVar(v)
	assert.True(t, unbound, "cyclic variables are not coerced")
}

func TestMergeVariablesKeepsOuterLevel(t *testing.T) {
	c := newChecker(t)
	s := c.Store()
	outer := s.FreshType(1, typesystem.NewSandwiched(nat, typesystem.Obj, typesystem.NotCyclic))
	inner := s.FreshType(3, typesystem.NewSandwiched(typesystem.Never, intT, typesystem.NotCyclic))

	require.NoError(t, c.SubUnify(outer, inner, token.Unknown, "x"))
	assert.Equal(t, outer, s.Deref(inner))
	con, ok := s.Constraint(outer.ID)
	require.True(t, ok)
	sub, sup, _ := con.SubSup()
	assert.Equal(t, nat, sub)
	assert.Equal(t, intT, sup)
}

func TestMergeVariablesWithDisjointBoundsFails(t *testing.T) {
	c := newChecker(t)
	s := c.Store()
	a := s.FreshType(1, typesystem.NewSandwiched(str, typesystem.Obj, typesystem.NotCyclic))
	b := s.FreshType(1, typesystem.NewSandwiched(typesystem.Never, intT, typesystem.NotCyclic))

	requireKind(t, c.SubUnify(a, b, token.Unknown, "x"), diagnostics.KindTypeMismatch)
	_, _, unbound := s.UnboundVar(b)
	assert.True(t, unbound)
}

func TestSubUnifyThroughTraitImplementation(t *testing.T) {
	c := newChecker(t)
	s := c.Store()
	r := freshVar(c)

	require.NoError(t, c.SubUnify(str, prelude.Mul(r), token.Unknown, "x"))
	assert.Equal(t, nat, s.Deref(r))
}

func TestSubUnifyTriesFartherNominalSupers(t *testing.T) {
	c := newChecker(t)

	// Nat's own Add(Nat) is nearest; Add(Int) comes through Int
	require.NoError(t, c.SubUnify(nat, prelude.Add(intT), token.Unknown, "x"))

	r := freshVar(c)
	require.NoError(t, c.SubUnify(nat, prelude.Add(r), token.Unknown, "x"))
	assert.Equal(t, nat, c.Store().Deref(r), "without a call the nearest super wins")
}

func TestChoicesAdvanceLikeAnOdometer(t *testing.T) {
	ch := newChoices()
	assert.Equal(t, 0, ch.pick("a", 2))
	assert.Equal(t, 0, ch.pick("b", 3))
	assert.Equal(t, 0, ch.pick("c", 1), "a single candidate is no choice")

	var seen [][2]int
	for {
		seen = append(seen, [2]int{ch.picks["a"], ch.picks["b"]})
		if !ch.advance() {
			break
		}
		ch.pick("a", 2)
		ch.pick("b", 3)
	}
	assert.Equal(t, [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}, seen)
}

func TestUnifyParamSolvesAddition(t *testing.T) {
	c := newChecker(t)
	s := c.Store()
	n := s.FreshParam(c.Level(), typesystem.NewTypeOf(nat))
	sum := typesystem.TPBinOp{Op: typesystem.OpAdd, L: n, R: typesystem.ValueParam(typesystem.IntValue(2))}

	require.NoError(t, c.UnifyParam(sum, typesystem.ValueParam(typesystem.IntValue(5)), token.Unknown, "N"))
	assert.Equal(t, typesystem.ValueParam(typesystem.IntValue(3)), s.ResolveParam(n))
}

func TestUnifyParamChecksValueClass(t *testing.T) {
	c := newChecker(t)
	s := c.Store()
	n := s.FreshParam(c.Level(), typesystem.NewTypeOf(nat))

	err := c.UnifyParam(n, typesystem.ValueParam(typesystem.IntValue(-1)), token.Unknown, "N")
	requireKind(t, err, diagnostics.KindTypeMismatch)
	_, _, unbound := s.UnboundParam(n)
	assert.True(t, unbound)
}

func TestSubUnifySubroutines(t *testing.T) {
	c := newChecker(t)
	s := c.Store()
	p, r := freshVar(c), freshVar(c)
	concrete := typesystem.Func([]typesystem.ParamTy{typesystem.Param("x", intT)}, nat)
	open := typesystem.Func([]typesystem.ParamTy{typesystem.Param("x", p)}, r)

	require.NoError(t, c.SubUnify(concrete, open, token.Unknown, "f"))
	pSub, pSup, _ := mustSubSup(t, c, p)
	assert.True(t, typesystem.IsNever(pSub))
	assert.Equal(t, intT, pSup)
	rSub, _, _ := mustSubSup(t, c, r)
	assert.Equal(t, nat, rSub)
	assert.Equal(t, 2, len(s.FreeVarsOf(open)))
}

func mustSubSup(t *testing.T, c *Checker, v typesystem.TFree) (typesystem.Type, typesystem.Type, bool) {
	t.Helper()
	con, ok := c.Store().Constraint(v.ID)
	require.True(t, ok)
	return con.SubSup()
}
