package typesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeStrings(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Int, "Int"},
		{Poly("Array", TypeParam(Int), ValueParam(IntValue(3))), "Array(Int, 3)"},
		{Record(map[string]Type{"y": Str, "x": Int}), "{x: Int, y: Str}"},
		{TOr{L: Int, R: Str}, "Int or Str"},
		{TRefMut{Before: Int, After: Nat}, "RefMut(Int ~> Nat)"},
		{Func([]ParamTy{Param("a", Int)}, Str), "(a: Int) -> Str"},
		{TSubr{Kind: ProcKind, Defaults: []ParamTy{DefaultParam("end", Str, Str)}, Return: NoneType}, "(end := Str) => NoneType"},
		{TForall{Bounds: []Bound{{Kind: SubtypeOf, Name: "T", Type: Poly("Add", TypeParam(Int))}}, Body: Func([]ParamTy{Param("x", QVar("T"))}, QVar("T"))}, "|T <: Add(Int)|(x: 'T) -> 'T"},
		{Enum(Nat, IntValue(1), IntValue(2)), "{1, 2}"},
		{TProj{Lhs: QVar("L"), Rhs: "Output"}, "'L.Output"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestSubstApplyShadowing(t *testing.T) {
	s := NewSubst().BindType("T", Int).BindParam("N", ValueParam(IntValue(2)))
	arr := Poly("Array", TypeParam(QVar("T")), TPQVar{Name: "N"})
	assert.Equal(t, "Array(Int, 2)", arr.Apply(s).String())

	inner := TForall{Bounds: []Bound{{Kind: SubtypeOf, Name: "T", Type: Obj}}, Body: QVar("T")}
	assert.Equal(t, inner.String(), inner.Apply(s).String(), "bound names are not substituted")
}

func TestQuantifiedVars(t *testing.T) {
	f := Func([]ParamTy{Param("a", QVar("T")), Param("b", Poly("Array", TypeParam(QVar("U")), TPQVar{Name: "N"}))}, QVar("T"))
	assert.Equal(t, []string{"T", "U", "N"}, f.QuantifiedVars())

	all := TForall{Bounds: []Bound{{Name: "T", Type: Obj}}, Body: f}
	assert.Equal(t, []string{"U", "N"}, all.QuantifiedVars())
}

func TestEvalOps(t *testing.T) {
	v, ok := EvalBinOp(OpAdd, IntValue(2), IntValue(3))
	require.True(t, ok)
	assert.Equal(t, IntValue(5), v)
	_, ok = EvalBinOp(OpDiv, IntValue(1), IntValue(0))
	assert.False(t, ok)
	v, ok = EvalUnaryOp(OpNeg, IntValue(4))
	require.True(t, ok)
	assert.Equal(t, IntValue(-4), v)
	assert.Equal(t, Nat, IntValue(4).Class())
	assert.Equal(t, Int, IntValue(-4).Class())
}

func TestHolds(t *testing.T) {
	nat := PredCmp{Op: CmpGreaterEq, Var: "I", Rhs: ValueParam(IntValue(0))}
	ok, decided := Holds(nat, IntValue(3))
	assert.True(t, decided)
	assert.True(t, ok)
	ok, decided = Holds(nat, IntValue(-1))
	assert.True(t, decided)
	assert.False(t, ok)

	enum := Enum(Nat, IntValue(1), IntValue(2))
	vals, isEnum := enum.EnumValues()
	require.True(t, isEnum)
	assert.Len(t, vals, 2)
	ok, _ = Holds(enum.Preds[0], IntValue(2))
	assert.True(t, ok)
}

func TestQualName(t *testing.T) {
	assert.Equal(t, "Array", QualName(Poly("Array", TypeParam(Int))))
	assert.Equal(t, "Func", QualName(Func(nil, Int)))
	assert.Equal(t, "Int", QualName(TRefMut{Before: Int}))
	assert.Equal(t, "Record", QualName(Record(nil)))
}

func TestEqualOrderInsensitiveUnion(t *testing.T) {
	s := NewStore()
	assert.True(t, s.Equal(TOr{L: Int, R: Str}, TOr{L: Str, R: Int}))
	assert.False(t, s.Equal(TOr{L: Int, R: Str}, TAnd{L: Int, R: Str}))
	assert.True(t, s.Equal(Enum(Nat, IntValue(1), IntValue(2)), Enum(Nat, IntValue(2), IntValue(1))))
}
