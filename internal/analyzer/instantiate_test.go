package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/typecore/internal/prelude"
	"github.com/funvibe/typecore/internal/symbols"
	"github.com/funvibe/typecore/internal/typesystem"
)

func TestInstantiateSharesNames(t *testing.T) {
	c := newChecker(t)
	poly := typesystem.TForall{
		Bounds: []typesystem.Bound{{Kind: typesystem.InstanceOf, Name: "T", Type: typesystem.TypeT}},
		Body: typesystem.Func([]typesystem.ParamTy{
			typesystem.Param("a", typesystem.QVar("T")),
			typesystem.Param("b", typesystem.QVar("T")),
		}, typesystem.QVar("T")),
	}

	first, ok := c.Instantiate(poly).(typesystem.TSubr)
	require.True(t, ok)
	a, ok := first.NonDefault[0].Type.(typesystem.TFree)
	require.True(t, ok)
	assert.Equal(t, a, first.NonDefault[1].Type)
	assert.Equal(t, a, first.Return)
	assert.Equal(t, "T", c.Store().Cell(a.ID).Name)

	second := c.Instantiate(poly).(typesystem.TSubr)
	assert.NotEqual(t, a, second.Return, "each instantiation is fresh")
}

func TestInstantiateSelfReferentialBound(t *testing.T) {
	c := newChecker(t)
	// |T <: Add(T)| T
	poly := typesystem.TForall{
		Bounds: []typesystem.Bound{{Kind: typesystem.SubtypeOf, Name: "T", Type: prelude.Add(typesystem.QVar("T"))}},
		Body:   typesystem.QVar("T"),
	}

	v, ok := c.Instantiate(poly).(typesystem.TFree)
	require.True(t, ok)
	con, ok := c.Store().Constraint(v.ID)
	require.True(t, ok)
	assert.Equal(t, typesystem.SuperCyclic, con.Cyclicity())
	assert.True(t, c.SubtypeOf(nat, prelude.Add(nat)))
}

func TestGeneralizeQuantifiesInnerVariables(t *testing.T) {
	c := newChecker(t)
	outer := freshVar(c)

	c.EnterScope("f", symbols.KindFunc)
	assert.Equal(t, typesystem.TopLevel+1, c.Level())
	inner := freshVar(c)
	bounded := c.Store().FreshNamedType("N", c.Level(), typesystem.NewSandwiched(typesystem.Never, intT, typesystem.NotCyclic))
	c.LeaveScope()

	g := c.Generalize(typesystem.Func([]typesystem.ParamTy{
		typesystem.Param("x", inner),
		typesystem.Param("n", bounded),
		typesystem.Param("o", outer),
	}, inner))
	forall, ok := g.(typesystem.TForall)
	require.True(t, ok)
	require.Len(t, forall.Bounds, 2)
	assert.Equal(t, typesystem.Bound{Kind: typesystem.InstanceOf, Name: "A", Type: typesystem.TypeT}, forall.Bounds[0])
	assert.Equal(t, typesystem.Bound{Kind: typesystem.SubtypeOf, Name: "N", Type: intT}, forall.Bounds[1])

	body := forall.Body.(typesystem.TSubr)
	assert.Equal(t, typesystem.QVar("A"), body.Return)
	assert.Equal(t, outer, body.NonDefault[2].Type, "variables of the enclosing level stay free")

	same := typesystem.Func([]typesystem.ParamTy{typesystem.Param("o", outer)}, outer)
	assert.True(t, c.Store().Equal(same, c.Generalize(same)), "nothing to quantify")
}

func TestLeaveScopeWithoutEnterPanics(t *testing.T) {
	c := newChecker(t)
	assert.Panics(t, func() { c.LeaveScope() })
}

func TestLiftVars(t *testing.T) {
	c := newChecker(t)
	s := c.Store()
	v := freshVar(c)
	w := freshVar(c)
	s.Link(w.ID, typesystem.TRef{Inner: v})

	c.LiftVars(typesystem.Func([]typesystem.ParamTy{typesystem.Param("x", w)}, none))
	assert.Equal(t, c.Level()+1, s.Cell(v.ID).Level, "lifting follows links")
}
