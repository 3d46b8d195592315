package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/diagnostics"
	"github.com/funvibe/typecore/internal/typesystem"
)

// setParent re-parents a scope to build a cycle for the depth guard.
func (t *Tree) setParent(id, parent ScopeID) {
	t.Get(id).Parent = parent
}

func TestChainFallsBackToRoot(t *testing.T) {
	tree := NewTree(0)
	mod := tree.NewModule("")
	cls := tree.NewScope(mod.ID, "C", KindClass)
	fn := tree.NewScope(cls.ID, "f", KindFunc)

	assert.Equal(t, config.DefaultModuleNamespace+"::C::f", fn.Name)
	assert.Equal(t, []ScopeID{fn.ID, cls.ID, mod.ID, RootID}, tree.Ancestors(fn.ID))
	assert.Equal(t, NoScope, tree.Next(RootID))

	assert.Equal(t, mod.ID, tree.ModuleOf(fn.ID))
	assert.Equal(t, mod.ID, tree.ModuleOf(mod.ID))
	assert.Equal(t, NoScope, tree.ModuleOf(RootID))
}

func TestWalkDepthGuard(t *testing.T) {
	tree := NewTree(4)
	mod := tree.NewModule("m")
	a := tree.NewScope(mod.ID, "a", KindFunc)
	b := tree.NewScope(a.ID, "b", KindFunc)
	tree.setParent(a.ID, b.ID)

	defer func() {
		_, ok := recover().(*diagnostics.InvariantError)
		assert.True(t, ok, "a scope cycle must trip the depth guard")
	}()
	tree.Ancestors(b.ID)
}

func TestRecGetVarShadowing(t *testing.T) {
	tree := NewTree(0)
	tree.DefineLocal(RootID, "x", typesystem.Str, ast.Public)
	mod := tree.NewModule("m")
	tree.DefineLocal(mod.ID, "x", typesystem.Int, ast.Private)
	fn := tree.NewScope(mod.ID, "f", KindFunc)
	tree.AddParam(fn.ID, "y", typesystem.Nat)

	vi, at, ok := tree.RecGetVar(fn.ID, "x")
	require.True(t, ok)
	assert.Equal(t, typesystem.Int, vi.Type)
	assert.Equal(t, mod.ID, at)

	vi, at, ok = tree.RecGetVar(fn.ID, "y")
	require.True(t, ok)
	assert.Equal(t, Parameter, vi.Kind)
	assert.Equal(t, fn.ID, at)

	_, _, ok = tree.RecGetVar(fn.ID, "z")
	assert.False(t, ok)
}

func TestRegisterMonoTypeIndexes(t *testing.T) {
	tree := NewTree(0)
	eq := tree.NewTypeScope(RootID, typesystem.Mono("Eq"), KindTrait)
	tree.DeclareVar(eq.ID, "__eq__", typesystem.Func(nil, typesystem.Bool), ast.Public)
	tree.RegisterMonoType(RootID, typesystem.Mono("Eq"), eq.ID, ast.Public)

	intScope := tree.NewTypeScope(RootID, typesystem.Int, KindClass)
	tree.AddSuperTrait(intScope.ID, typesystem.Mono("Eq"))
	tree.DefineLocal(intScope.ID, "abs", typesystem.Func(nil, typesystem.Nat), ast.Public)
	methods := tree.NewScope(intScope.ID, "methods", KindMethodDefs)
	tree.DefineLocal(methods.ID, "succ", typesystem.Func(nil, typesystem.Int), ast.Public)
	tree.RegisterMethods(intScope.ID, nil, methods.ID)
	tree.RegisterMonoType(RootID, typesystem.Int, intScope.ID, ast.Public)

	root := tree.Root()
	assert.Equal(t, typesystem.TraitT, root.Locals["Eq"].Type)
	assert.Equal(t, typesystem.ClassT, root.Locals["Int"].Type)
	require.Len(t, root.MethodToTraits["__eq__"], 1)
	assert.Equal(t, typesystem.Mono("Eq"), root.MethodToTraits["__eq__"][0].Definition)
	require.Len(t, root.MethodToClasses["abs"], 1)
	require.Len(t, root.MethodToClasses["succ"], 1)

	impls := tree.RecGetTraitImpls(RootID, "Eq")
	assert.True(t, impls.Contains(TraitInstance{SubType: typesystem.Int, SupTrait: typesystem.Mono("Eq")}))

	vi, ok := tree.CurrentScopeVar(intScope.ID, "succ")
	require.True(t, ok, "methods scopes are searched")
	assert.Equal(t, "() -> Int", vi.Type.String())
}

func TestTraitImplsAccumulate(t *testing.T) {
	tree := NewTree(0)
	show := typesystem.Mono("Show")
	tree.RegisterTraitImpl(RootID, typesystem.Int, show)
	mod := tree.NewModule("m")
	tree.RegisterTraitImpl(mod.ID, typesystem.Str, show)
	fn := tree.NewScope(mod.ID, "f", KindFunc)

	impls := SortedTraitImpls(tree.RecGetTraitImpls(fn.ID, "Show"))
	require.Len(t, impls, 2)
	assert.Equal(t, "Int <: Show", impls[0].Hash())
	assert.Equal(t, "Str <: Show", impls[1].Hash())
}

func TestRecGetTypeAndPatches(t *testing.T) {
	tree := NewTree(0)
	arr := typesystem.Poly("Array", typesystem.TypeParam(typesystem.QVar("T")))
	arrScope := tree.NewTypeScope(RootID, arr, KindClass)
	tree.RegisterPolyType(RootID, arr, arrScope.ID, ast.Public)
	mod := tree.NewModule("m")
	patch := tree.NewScope(mod.ID, "IntExt", KindPatch)
	tree.RegisterPatch(mod.ID, "IntExt", typesystem.Int, patch.ID)

	td, ok := tree.RecGetType(mod.ID, "Array")
	require.True(t, ok)
	assert.Equal(t, arrScope.ID, td.Scope)
	_, ok = tree.RecGetMonoType(mod.ID, "Array")
	assert.False(t, ok)

	patches := tree.RecGetPatches(mod.ID)
	require.Len(t, patches, 1)
	assert.Equal(t, typesystem.Int, patches[0].Base)
	assert.Equal(t, typesystem.Int, tree.Get(patch.ID).Self)
}

func TestMethodCandidatesPreferTraits(t *testing.T) {
	tree := NewTree(0)
	root := tree.Root()
	root.MethodToClasses["m"] = []MethodType{{Definition: typesystem.Int, Method: typesystem.Func(nil, typesystem.Int)}}
	mod := tree.NewModule("m")
	tree.Get(mod.ID).MethodToTraits["m"] = []MethodType{{Definition: typesystem.Mono("T"), Method: typesystem.Func(nil, typesystem.Str)}}

	cands := tree.RecGetMethodCandidates(mod.ID, "m")
	require.Len(t, cands, 1)
	assert.Equal(t, typesystem.Mono("T"), cands[0].Definition)
	assert.Len(t, tree.RecGetMethodCandidates(RootID, "m"), 1)
	assert.Empty(t, tree.RecGetMethodCandidates(mod.ID, "nope"))
}

func TestSimilarName(t *testing.T) {
	tree := NewTree(0)
	mod := tree.NewModule("m")
	tree.DefineLocal(mod.ID, "name", typesystem.Str, ast.Private)
	tree.DefineLocal(mod.ID, "count", typesystem.Nat, ast.Private)

	assert.Equal(t, "name", tree.SimilarName(mod.ID, "nmae", 2))
	assert.Equal(t, "", tree.SimilarName(mod.ID, "zzzzzz", 2))
	assert.Equal(t, "None", tree.SimilarName(mod.ID, "nil", 1))
	assert.Equal(t, "Int", tree.SimilarName(mod.ID, "int", 1))
}

func TestClosestNameTies(t *testing.T) {
	assert.Equal(t, "x", ClosestName("z", []string{"y", "x"}, 1))
	assert.Equal(t, "", ClosestName("zz", []string{"y", "x"}, 1))
	assert.Equal(t, "", ClosestName("x", []string{"x"}, 3))
}
