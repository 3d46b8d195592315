package prelude

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/symbols"
	"github.com/funvibe/typecore/internal/typesystem"
)

func newTree(t *testing.T) *symbols.Tree {
	t.Helper()
	tree := symbols.NewTree(0)
	Init(tree)
	return tree
}

func TestNumericHierarchy(t *testing.T) {
	tree := newTree(t)
	chain := []string{config.BoolTypeName, config.NatTypeName, config.IntTypeName, config.FloatTypeName, config.ObjTypeName}
	for i := 0; i < len(chain)-1; i++ {
		td, ok := tree.RecGetMonoType(symbols.RootID, chain[i])
		require.True(t, ok, chain[i])
		supers := tree.Get(td.Scope).SuperClasses
		require.Len(t, supers, 1, chain[i])
		assert.Equal(t, chain[i+1], typesystem.QualName(supers[0]))
	}
	td, ok := tree.RecGetMonoType(symbols.RootID, config.StrTypeName)
	require.True(t, ok)
	assert.Equal(t, []typesystem.Type{typesystem.Obj}, tree.Get(td.Scope).SuperClasses)
}

func TestEveryMonoClassRegistered(t *testing.T) {
	tree := newTree(t)
	root := tree.Root()
	for _, def := range monoClasses {
		_, ok := root.MonoTypes[def.typ.Name]
		assert.True(t, ok, def.typ.Name)
		assert.Equal(t, typesystem.ClassT, root.Locals[def.typ.Name].Type)
	}
	for _, name := range []string{config.ArrayTypeName, config.ModuleTypeName, config.AddTraitName, config.SeqTraitName} {
		_, ok := root.PolyTypes[name]
		assert.True(t, ok, name)
	}
	assert.Equal(t, typesystem.TraitT, root.Locals[config.EqTraitName].Type)
}

func TestTraitImpls(t *testing.T) {
	tree := newTree(t)
	adds := symbols.SortedTraitImpls(tree.RecGetTraitImpls(symbols.RootID, config.AddTraitName))
	var names []string
	for _, ti := range adds {
		names = append(names, ti.Hash())
	}
	assert.Contains(t, names, "Int <: Add(Int)")
	assert.Contains(t, names, "Nat <: Add(Nat)")
	assert.Contains(t, names, "Str <: Add(Str)")

	seqs := symbols.SortedTraitImpls(tree.RecGetTraitImpls(symbols.RootID, config.SeqTraitName))
	require.Len(t, seqs, 1)
	assert.Equal(t, "Array('T, N) <: Seq('T)", seqs[0].Hash())
}

func TestOutputConsts(t *testing.T) {
	tree := newTree(t)
	td, ok := tree.RecGetMonoType(symbols.RootID, config.NatTypeName)
	require.True(t, ok)
	outputs := map[string]string{}
	for _, defs := range tree.Get(td.Scope).MethodsList {
		if c, ok := tree.Get(defs.Scope).Consts[config.OutputAssocName]; ok {
			outputs[defs.ImplTrait.String()] = c.String()
		}
	}
	assert.Equal(t, map[string]string{
		"Add(Nat)": "Nat",
		"Sub(Nat)": "Int",
		"Mul(Nat)": "Nat",
	}, outputs)
}

func TestFunctionsAndMethodIndex(t *testing.T) {
	tree := newTree(t)
	for _, name := range []string{config.PrintProcName, config.LenFuncName, config.IdFuncName, config.IfFuncName,
		config.MatchFuncName, config.ImportFuncName, "__add__", "__eq__", "__lt__", "True", "None"} {
		_, _, ok := tree.RecGetVar(symbols.RootID, name)
		assert.True(t, ok, name)
	}
	vi, _, _ := tree.RecGetVar(symbols.RootID, config.PrintProcName)
	subr, ok := vi.Type.(typesystem.TSubr)
	require.True(t, ok)
	assert.Equal(t, typesystem.ProcKind, subr.Kind)
	require.NotNil(t, subr.Var)

	root := tree.Root()
	require.Len(t, root.MethodToTraits["to_str"], 1)
	assert.Equal(t, Show, root.MethodToTraits["to_str"][0].Definition)
	require.Len(t, root.MethodToClasses["abs"], 1)
	assert.Equal(t, typesystem.Int, root.MethodToClasses["abs"][0].Definition)
}
