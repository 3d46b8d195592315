// Package prelude populates the builtin root scope: primitive classes,
// the numeric hierarchy, builtin traits with their implementations,
// operator functions and a handful of free functions.
package prelude

import (
	"sort"

	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/symbols"
	"github.com/funvibe/typecore/internal/typesystem"
)

// Shorthands used by the tables below.
var (
	obj   = typesystem.Obj
	boolT = typesystem.Bool
	nat   = typesystem.Nat
	intT  = typesystem.Int
	float = typesystem.Float
	str   = typesystem.Str
	none  = typesystem.NoneType

	qT    = typesystem.QVar("T")
	qSelf = typesystem.QVar("Self")
	qR    = typesystem.QVar("R")
	qN    = typesystem.TPQVar{Name: "N"}
	qM    = typesystem.TPQVar{Name: "M"}
)

func tp(t typesystem.Type) typesystem.TyParam { return typesystem.TypeParam(t) }

// ArrayOf builds Array(elem, n).
func ArrayOf(elem typesystem.Type, n typesystem.TyParam) typesystem.TPoly {
	return typesystem.Poly(config.ArrayTypeName, tp(elem), n)
}

// Trait type constructors.
func Add(r typesystem.Type) typesystem.TPoly { return typesystem.Poly(config.AddTraitName, tp(r)) }
func Sub(r typesystem.Type) typesystem.TPoly { return typesystem.Poly(config.SubTraitName, tp(r)) }
func Mul(r typesystem.Type) typesystem.TPoly { return typesystem.Poly(config.MulTraitName, tp(r)) }
func Seq(t typesystem.Type) typesystem.TPoly { return typesystem.Poly(config.SeqTraitName, tp(t)) }

var (
	Eq   = typesystem.Mono(config.EqTraitName)
	Ord  = typesystem.Mono(config.OrdTraitName)
	Show = typesystem.Mono(config.ShowTraitName)
)

type classDef struct {
	typ    typesystem.TMono
	supers []typesystem.Type
}

// Declaration order matters only for readability; lookups are by name.
var monoClasses = []classDef{
	{typesystem.Obj, nil},
	{typesystem.Never, nil},
	{typesystem.TypeT, []typesystem.Type{obj}},
	{typesystem.ClassT, []typesystem.Type{typesystem.TypeT}},
	{typesystem.TraitT, []typesystem.Type{typesystem.TypeT}},
	{typesystem.NoneType, []typesystem.Type{obj}},
	{typesystem.Float, []typesystem.Type{obj}},
	{typesystem.Int, []typesystem.Type{float}},
	{typesystem.Nat, []typesystem.Type{intT}},
	{typesystem.Bool, []typesystem.Type{nat}},
	{typesystem.Str, []typesystem.Type{obj}},
	{typesystem.FuncT, []typesystem.Type{obj}},
	{typesystem.ProcT, []typesystem.Type{obj}},
	{typesystem.QFuncT, []typesystem.Type{obj}},
	{typesystem.RecordT, []typesystem.Type{obj}},
	{typesystem.RecordTyT, []typesystem.Type{typesystem.TypeT}},
}

// operatorImpl is one `Class: Trait(Rhs)` implementation with its Output.
type operatorImpl struct {
	trait  func(typesystem.Type) typesystem.TPoly
	method string
	rhs    typesystem.Type
	output typesystem.Type
}

var operatorImpls = map[string][]operatorImpl{
	config.NatTypeName: {
		{Add, "__add__", nat, nat},
		{Sub, "__sub__", nat, intT},
		{Mul, "__mul__", nat, nat},
	},
	config.IntTypeName: {
		{Add, "__add__", intT, intT},
		{Sub, "__sub__", intT, intT},
		{Mul, "__mul__", intT, intT},
	},
	config.FloatTypeName: {
		{Add, "__add__", float, float},
		{Sub, "__sub__", float, float},
		{Mul, "__mul__", float, float},
	},
	config.StrTypeName: {
		{Add, "__add__", str, str},
		{Mul, "__mul__", nat, str},
	},
}

// Classes implementing Eq, Ord and Show directly.
var (
	eqClasses   = []string{config.NoneTypeName, config.BoolTypeName, config.IntTypeName, config.FloatTypeName, config.StrTypeName}
	ordClasses  = []string{config.IntTypeName, config.FloatTypeName, config.StrTypeName}
	showClasses = []string{config.NoneTypeName, config.BoolTypeName, config.NatTypeName, config.IntTypeName, config.FloatTypeName, config.StrTypeName}
)

func self(t typesystem.Type) typesystem.ParamTy { return typesystem.Param(config.SelfParamName, t) }

// classMethods are plain members of a class scope.
var classMethods = map[string]map[string]typesystem.Type{
	config.IntTypeName: {
		"abs":  typesystem.Func([]typesystem.ParamTy{self(intT)}, nat),
		"succ": typesystem.Func([]typesystem.ParamTy{self(intT)}, intT),
	},
	config.NatTypeName: {
		"times!": typesystem.Proc([]typesystem.ParamTy{self(nat), typesystem.Param("p", typesystem.Proc(nil, none))}, none),
	},
	config.FloatTypeName: {
		"round": typesystem.Func([]typesystem.ParamTy{self(float)}, intT),
	},
	config.StrTypeName: {
		"upper": typesystem.Func([]typesystem.ParamTy{self(str)}, str),
		"split": typesystem.TSubr{
			Kind:       typesystem.FuncKind,
			NonDefault: []typesystem.ParamTy{self(str)},
			Defaults:   []typesystem.ParamTy{typesystem.DefaultParam("sep", str, str)},
			Return:     ArrayOf(str, qN),
		},
	},
}

// Init registers every builtin into the tree's root scope.
func Init(tree *symbols.Tree) {
	registerTraits(tree)
	for _, def := range monoClasses {
		registerClass(tree, def)
	}
	registerArray(tree)
	registerModule(tree)
	registerOperators(tree)
	registerFunctions(tree)
}

func registerTraits(tree *symbols.Tree) {
	cmp := func(trait typesystem.Type, ret typesystem.Type) typesystem.Type {
		return typesystem.TForall{
			Bounds: []typesystem.Bound{{Kind: typesystem.SubtypeOf, Name: "Self", Type: trait}},
			Body:   typesystem.Func([]typesystem.ParamTy{self(qSelf), typesystem.Param("other", qSelf)}, ret),
		}
	}

	// Eq, Ord, Show
	eq := tree.NewTypeScope(symbols.RootID, Eq, symbols.KindTrait)
	tree.DeclareVar(eq.ID, "__eq__", cmp(Eq, boolT), ast.Public)
	tree.RegisterMonoType(symbols.RootID, Eq, eq.ID, ast.Private)

	ord := tree.NewTypeScope(symbols.RootID, Ord, symbols.KindTrait)
	tree.AddSuperTrait(ord.ID, Eq)
	tree.DeclareVar(ord.ID, "__lt__", cmp(Ord, boolT), ast.Public)
	tree.RegisterMonoType(symbols.RootID, Ord, ord.ID, ast.Private)

	show := tree.NewTypeScope(symbols.RootID, Show, symbols.KindTrait)
	tree.DeclareVar(show.ID, "to_str", typesystem.TForall{
		Bounds: []typesystem.Bound{{Kind: typesystem.SubtypeOf, Name: "Self", Type: Show}},
		Body:   typesystem.Func([]typesystem.ParamTy{self(qSelf)}, str),
	}, ast.Public)
	tree.RegisterMonoType(symbols.RootID, Show, show.ID, ast.Private)

	// Add(R), Sub(R), Mul(R): one method each, result in the Output const.
	binTraits := []struct {
		ctor   func(typesystem.Type) typesystem.TPoly
		method string
	}{
		{Add, "__add__"},
		{Sub, "__sub__"},
		{Mul, "__mul__"},
	}
	for _, bt := range binTraits {
		decl := bt.ctor(qR)
		s := tree.NewTypeScope(symbols.RootID, decl, symbols.KindTrait)
		tree.DeclareVar(s.ID, bt.method, typesystem.TForall{
			Bounds: []typesystem.Bound{{Kind: typesystem.SubtypeOf, Name: "Self", Type: decl}},
			Body: typesystem.Func(
				[]typesystem.ParamTy{self(qSelf), typesystem.Param("rhs", qR)},
				typesystem.TProj{Lhs: qSelf, Rhs: config.OutputAssocName},
			),
		}, ast.Public)
		tree.DeclareVar(s.ID, config.OutputAssocName, typesystem.TypeT, ast.Public)
		tree.RegisterPolyType(symbols.RootID, decl, s.ID, ast.Private)
	}

	// Seq(T)
	seq := Seq(qT)
	s := tree.NewTypeScope(symbols.RootID, seq, symbols.KindTrait)
	tree.DeclareVar(s.ID, "get", typesystem.TForall{
		Bounds: []typesystem.Bound{{Kind: typesystem.SubtypeOf, Name: "Self", Type: seq}},
		Body:   typesystem.Func([]typesystem.ParamTy{self(qSelf), typesystem.Param("idx", nat)}, qT),
	}, ast.Public)
	tree.RegisterPolyType(symbols.RootID, seq, s.ID, ast.Private)
}

func sortedMethodNames(m map[string]typesystem.Type) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func registerClass(tree *symbols.Tree, def classDef) {
	name := def.typ.Name
	s := tree.NewTypeScope(symbols.RootID, def.typ, symbols.KindClass)
	for _, sup := range def.supers {
		tree.AddSuperClass(s.ID, sup)
	}
	for _, mname := range sortedMethodNames(classMethods[name]) {
		tree.DefineLocal(s.ID, mname, classMethods[name][mname], ast.Public)
	}

	if contains(eqClasses, name) {
		tree.AddSuperTrait(s.ID, Eq)
		m := methodsScope(tree, s.ID, Eq)
		tree.DefineLocal(m, "__eq__", typesystem.Func([]typesystem.ParamTy{self(def.typ), typesystem.Param("other", def.typ)}, boolT), ast.Public)
	}
	if contains(ordClasses, name) {
		tree.AddSuperTrait(s.ID, Ord)
		m := methodsScope(tree, s.ID, Ord)
		tree.DefineLocal(m, "__lt__", typesystem.Func([]typesystem.ParamTy{self(def.typ), typesystem.Param("other", def.typ)}, boolT), ast.Public)
	}
	if contains(showClasses, name) {
		tree.AddSuperTrait(s.ID, Show)
		m := methodsScope(tree, s.ID, Show)
		tree.DefineLocal(m, "to_str", typesystem.Func([]typesystem.ParamTy{self(def.typ)}, str), ast.Public)
	}
	for _, impl := range operatorImpls[name] {
		trait := impl.trait(impl.rhs)
		tree.AddSuperTrait(s.ID, trait)
		m := methodsScope(tree, s.ID, trait)
		tree.DefineLocal(m, impl.method, typesystem.Func(
			[]typesystem.ParamTy{self(def.typ), typesystem.Param("rhs", impl.rhs)}, impl.output), ast.Public)
		tree.DefineConst(m, config.OutputAssocName, tp(impl.output))
	}
	tree.RegisterMonoType(symbols.RootID, def.typ, s.ID, ast.Private)
}

func methodsScope(tree *symbols.Tree, classScope symbols.ScopeID, trait typesystem.Type) symbols.ScopeID {
	m := tree.NewScope(classScope, trait.String(), symbols.KindMethodDefs)
	m.Self = tree.Get(classScope).Self
	tree.RegisterMethods(classScope, trait, m.ID)
	return m.ID
}

// Array(T, N) is a sequence of N elements of T.
func registerArray(tree *symbols.Tree) {
	arr := ArrayOf(qT, qN)
	s := tree.NewTypeScope(symbols.RootID, arr, symbols.KindClass)
	tree.AddSuperClass(s.ID, obj)
	tree.AddSuperTrait(s.ID, Seq(qT))
	tree.DefineLocal(s.ID, "push!", typesystem.Proc([]typesystem.ParamTy{
		self(typesystem.TRefMut{Before: arr, After: ArrayOf(qT, typesystem.TPBinOp{Op: typesystem.OpAdd, L: qN, R: typesystem.ValueParam(typesystem.IntValue(1))})}),
		typesystem.Param("elem", qT),
	}, none), ast.Public)
	tree.DefineLocal(s.ID, "len", typesystem.Func([]typesystem.ParamTy{self(typesystem.TRef{Inner: arr})}, nat), ast.Public)

	m := methodsScope(tree, s.ID, Seq(qT))
	tree.DefineLocal(m, "get", typesystem.Func([]typesystem.ParamTy{self(arr), typesystem.Param("idx", nat)}, qT), ast.Public)
	tree.RegisterPolyType(symbols.RootID, arr, s.ID, ast.Private)
}

// Module(Path) is the type of an imported module.
func registerModule(tree *symbols.Tree) {
	mod := typesystem.Poly(config.ModuleTypeName, typesystem.TPQVar{Name: "Path"})
	s := tree.NewTypeScope(symbols.RootID, mod, symbols.KindClass)
	tree.AddSuperClass(s.ID, obj)
	tree.RegisterPolyType(symbols.RootID, mod, s.ID, ast.Private)
}

var binOpTraits = map[string]func(typesystem.Type) typesystem.TPoly{
	"__add__": Add,
	"__sub__": Sub,
	"__mul__": Mul,
}

// Operator functions. `a + b` is checked as `__add__(a, b)`.
func registerOperators(tree *symbols.Tree) {
	for _, name := range []string{"__add__", "__sub__", "__mul__"} {
		trait := binOpTraits[name]
		tree.DefineLocal(symbols.RootID, name, typesystem.TForall{
			Bounds: []typesystem.Bound{
				{Kind: typesystem.InstanceOf, Name: "R", Type: typesystem.TypeT},
				{Kind: typesystem.SubtypeOf, Name: "L", Type: trait(qR)},
			},
			Body: typesystem.Func(
				[]typesystem.ParamTy{typesystem.Param("lhs", typesystem.QVar("L")), typesystem.Param("rhs", qR)},
				typesystem.TProj{Lhs: typesystem.QVar("L"), Rhs: config.OutputAssocName},
			),
		}, ast.Private)
	}
	cmp := func(bound typesystem.Type) typesystem.Type {
		return typesystem.TForall{
			Bounds: []typesystem.Bound{{Kind: typesystem.SubtypeOf, Name: "T", Type: bound}},
			Body:   typesystem.Func([]typesystem.ParamTy{typesystem.Param("lhs", qT), typesystem.Param("rhs", qT)}, boolT),
		}
	}
	for _, name := range []string{"__eq__", "__ne__"} {
		tree.DefineLocal(symbols.RootID, name, cmp(Eq), ast.Private)
	}
	for _, name := range []string{"__lt__", "__le__", "__gt__", "__ge__"} {
		tree.DefineLocal(symbols.RootID, name, cmp(Ord), ast.Private)
	}
	tree.DefineLocal(symbols.RootID, "__neg__", typesystem.TForall{
		Bounds: []typesystem.Bound{{Kind: typesystem.SubtypeOf, Name: "T", Type: intT}},
		Body:   typesystem.Func([]typesystem.ParamTy{typesystem.Param("val", qT)}, intT),
	}, ast.Private)
	tree.DefineLocal(symbols.RootID, "__pos__", typesystem.TForall{
		Bounds: []typesystem.Bound{{Kind: typesystem.SubtypeOf, Name: "T", Type: float}},
		Body:   typesystem.Func([]typesystem.ParamTy{typesystem.Param("val", qT)}, qT),
	}, ast.Private)
	tree.DefineLocal(symbols.RootID, "__not__", typesystem.Func([]typesystem.ParamTy{typesystem.Param("val", boolT)}, boolT), ast.Private)
}

func registerFunctions(tree *symbols.Tree) {
	tree.DefineLocal(symbols.RootID, "True", boolT, ast.Private)
	tree.DefineLocal(symbols.RootID, "False", boolT, ast.Private)
	tree.DefineLocal(symbols.RootID, "None", none, ast.Private)

	// print!(*objs: Obj) => NoneType
	tree.DefineLocal(symbols.RootID, config.PrintProcName, typesystem.TSubr{
		Kind:   typesystem.ProcKind,
		Var:    &typesystem.ParamTy{Name: "objs", Type: obj},
		Return: none,
	}, ast.Private)

	// len|T, N: Nat|(s: Ref(Array(T, N))) -> Nat
	tree.DefineLocal(symbols.RootID, config.LenFuncName, typesystem.TForall{
		Bounds: []typesystem.Bound{
			{Kind: typesystem.InstanceOf, Name: "T", Type: typesystem.TypeT},
			{Kind: typesystem.InstanceOf, Name: "N", Type: nat},
		},
		Body: typesystem.Func([]typesystem.ParamTy{typesystem.Param("s", typesystem.TRef{Inner: ArrayOf(qT, qN)})}, nat),
	}, ast.Private)

	// id|T|(x: T) -> T
	tree.DefineLocal(symbols.RootID, config.IdFuncName, typesystem.TForall{
		Bounds: []typesystem.Bound{{Kind: typesystem.InstanceOf, Name: "T", Type: typesystem.TypeT}},
		Body:   typesystem.Func([]typesystem.ParamTy{typesystem.Param("x", qT)}, qT),
	}, ast.Private)

	// if|T|(cond: Bool, then: () -> T, else := () -> T) -> T
	// An omitted else branch yields None.
	tree.DefineLocal(symbols.RootID, config.IfFuncName, typesystem.TForall{
		Bounds: []typesystem.Bound{{Kind: typesystem.InstanceOf, Name: "T", Type: typesystem.TypeT}},
		Body: typesystem.TSubr{
			Kind: typesystem.FuncKind,
			NonDefault: []typesystem.ParamTy{
				typesystem.Param("cond", boolT),
				typesystem.Param("then", typesystem.Func(nil, qT)),
			},
			Defaults: []typesystem.ParamTy{
				typesystem.DefaultParam("else", typesystem.Func(nil, qT), typesystem.Func(nil, none)),
			},
			Return: qT,
		},
	}, ast.Private)

	// first|T, S <: Seq(T)|(s: S) -> T
	tree.DefineLocal(symbols.RootID, "first", typesystem.TForall{
		Bounds: []typesystem.Bound{
			{Kind: typesystem.InstanceOf, Name: "T", Type: typesystem.TypeT},
			{Kind: typesystem.SubtypeOf, Name: "S", Type: Seq(qT)},
		},
		Body: typesystem.Func([]typesystem.ParamTy{typesystem.Param("s", typesystem.QVar("S"))}, qT),
	}, ast.Private)

	// concat|T, M: Nat, N: Nat|(l: Array(T, M), r: Array(T, N)) -> Array(T, M + N)
	tree.DefineLocal(symbols.RootID, "concat", typesystem.TForall{
		Bounds: []typesystem.Bound{
			{Kind: typesystem.InstanceOf, Name: "T", Type: typesystem.TypeT},
			{Kind: typesystem.InstanceOf, Name: "M", Type: nat},
			{Kind: typesystem.InstanceOf, Name: "N", Type: nat},
		},
		Body: typesystem.Func(
			[]typesystem.ParamTy{typesystem.Param("l", ArrayOf(qT, qM)), typesystem.Param("r", ArrayOf(qT, qN))},
			ArrayOf(qT, typesystem.TPBinOp{Op: typesystem.OpAdd, L: qM, R: qN}),
		),
	}, ast.Private)

	// match and import are typed by the checker itself; these are the
	// signatures reported when they are used as values.
	tree.DefineLocal(symbols.RootID, config.MatchFuncName, typesystem.TSubr{
		Kind:       typesystem.FuncKind,
		NonDefault: []typesystem.ParamTy{typesystem.Param("obj", obj)},
		Var:        &typesystem.ParamTy{Name: "arms", Type: typesystem.FuncT},
		Return:     obj,
	}, ast.Private)
	tree.DefineLocal(symbols.RootID, config.ImportFuncName,
		typesystem.Func([]typesystem.ParamTy{typesystem.Param("path", str)}, typesystem.Poly(config.ModuleTypeName, typesystem.TPQVar{Name: "Path"})), ast.Private)
}
