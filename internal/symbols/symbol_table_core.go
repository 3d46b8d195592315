package symbols

import (
	"github.com/hashicorp/go-set/v2"

	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/typesystem"
)

// ScopeID indexes a scope in its Tree.
type ScopeID int

const (
	NoScope ScopeID = -1
	RootID  ScopeID = 0
)

type ScopeKind int

const (
	KindBuiltins ScopeKind = iota
	KindModule
	KindClass
	KindTrait
	KindPatch
	KindMethodDefs
	KindFunc
	KindProc
	KindInstant
)

var scopeKindNames = map[ScopeKind]string{
	KindBuiltins:   "builtins",
	KindModule:     "module",
	KindClass:      "class",
	KindTrait:      "trait",
	KindPatch:      "patch",
	KindMethodDefs: "methods",
	KindFunc:       "func",
	KindProc:       "proc",
	KindInstant:    "instant",
}

func (k ScopeKind) String() string { return scopeKindNames[k] }

func (k ScopeKind) IsClass() bool { return k == KindClass }
func (k ScopeKind) IsTrait() bool { return k == KindTrait }

// IsType reports whether the scope describes a nominal type.
func (k ScopeKind) IsType() bool {
	return k == KindClass || k == KindTrait || k == KindPatch
}

func (k ScopeKind) IsSubr() bool {
	return k == KindFunc || k == KindProc || k == KindInstant
}

type VarKind int

const (
	Builtin VarKind = iota
	Defined
	Declared
	Parameter
)

// VarInfo describes one binding.
type VarInfo struct {
	Type typesystem.Type
	Vis  ast.Visibility
	Kind VarKind
	// ImplOf is the trait a method binding implements, if any.
	ImplOf typesystem.Type
	// DefinedIn is the scope owning the binding.
	DefinedIn ScopeID
}

// Param is a named parameter of a subroutine scope.
type Param struct {
	Name string
	Info *VarInfo
}

// TypeDef is a registered nominal type and the scope holding its members.
type TypeDef struct {
	Type  typesystem.Type
	Scope ScopeID
}

// TraitInstance records that SubType implements SupTrait.
type TraitInstance struct {
	SubType  typesystem.Type
	SupTrait typesystem.Type
}

func (ti TraitInstance) Hash() string {
	return ti.SubType.String() + " <: " + ti.SupTrait.String()
}

func (ti TraitInstance) String() string { return ti.Hash() }

// TraitImplSet is the set type used by trait-implementation indexes.
type TraitImplSet = set.HashSet[TraitInstance, string]

func NewTraitImplSet(items ...TraitInstance) *TraitImplSet {
	s := set.NewHashSet[TraitInstance, string](len(items))
	for _, ti := range items {
		s.Insert(ti)
	}
	return s
}

// MethodType pairs the type defining a method with the method's type.
type MethodType struct {
	Definition typesystem.Type
	Method     typesystem.Type
}

// MethodDefs attaches a block of methods to a type, optionally as the
// implementation of a trait.
type MethodDefs struct {
	ImplTrait typesystem.Type
	Scope     ScopeID
}

// Patch adds methods to an existing base type from outside its definition.
type Patch struct {
	Name  string
	Base  typesystem.Type
	Scope ScopeID
}

// Scope is one node of the scope tree.
type Scope struct {
	ID     ScopeID
	Name   string
	Kind   ScopeKind
	Parent ScopeID
	// Self is the type described by a class, trait, patch or methods scope.
	Self typesystem.Type

	Locals          map[string]*VarInfo
	Decls           map[string]*VarInfo
	Params          []Param
	MonoTypes       map[string]TypeDef
	PolyTypes       map[string]TypeDef
	Patches         map[string]Patch
	TraitImpls      map[string]*TraitImplSet
	MethodToTraits  map[string][]MethodType
	MethodToClasses map[string][]MethodType
	Consts          map[string]typesystem.TyParam
	SuperClasses    []typesystem.Type
	SuperTraits     []typesystem.Type
	MethodsList     []MethodDefs
}

func newScope(id ScopeID, name string, kind ScopeKind, parent ScopeID) *Scope {
	return &Scope{
		ID:              id,
		Name:            name,
		Kind:            kind,
		Parent:          parent,
		Locals:          make(map[string]*VarInfo),
		Decls:           make(map[string]*VarInfo),
		MonoTypes:       make(map[string]TypeDef),
		PolyTypes:       make(map[string]TypeDef),
		Patches:         make(map[string]Patch),
		TraitImpls:      make(map[string]*TraitImplSet),
		MethodToTraits:  make(map[string][]MethodType),
		MethodToClasses: make(map[string][]MethodType),
		Consts:          make(map[string]typesystem.TyParam),
	}
}

// Param returns a parameter binding by name.
func (s *Scope) Param(name string) (*VarInfo, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p.Info, true
		}
	}
	return nil, false
}
