package symbols

import (
	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/typesystem"
)

func (t *Tree) DefineLocal(id ScopeID, name string, typ typesystem.Type, vis ast.Visibility) *VarInfo {
	kind := Defined
	if id == RootID {
		kind = Builtin
	}
	vi := &VarInfo{Type: typ, Vis: vis, Kind: kind, DefinedIn: id}
	t.Get(id).Locals[name] = vi
	return vi
}

// DeclareVar records a signature without a value, e.g. a trait method.
func (t *Tree) DeclareVar(id ScopeID, name string, typ typesystem.Type, vis ast.Visibility) *VarInfo {
	vi := &VarInfo{Type: typ, Vis: vis, Kind: Declared, DefinedIn: id}
	t.Get(id).Decls[name] = vi
	return vi
}

func (t *Tree) AddParam(id ScopeID, name string, typ typesystem.Type) *VarInfo {
	vi := &VarInfo{Type: typ, Vis: ast.Private, Kind: Parameter, DefinedIn: id}
	s := t.Get(id)
	s.Params = append(s.Params, Param{Name: name, Info: vi})
	return vi
}

func (t *Tree) DefineConst(id ScopeID, name string, value typesystem.TyParam) {
	t.Get(id).Consts[name] = value
}

func (t *Tree) AddSuperClass(typeScope ScopeID, sup typesystem.Type) {
	s := t.Get(typeScope)
	s.SuperClasses = append(s.SuperClasses, sup)
}

func (t *Tree) AddSuperTrait(typeScope ScopeID, sup typesystem.Type) {
	s := t.Get(typeScope)
	s.SuperTraits = append(s.SuperTraits, sup)
}

// NewTypeScope creates the member scope of a class or trait declared in
// parent. The scope's Self is typ.
func (t *Tree) NewTypeScope(parent ScopeID, typ typesystem.Type, kind ScopeKind) *Scope {
	s := t.NewScope(parent, typesystem.QualName(typ), kind)
	s.Self = typ
	return s
}

// RegisterMonoType makes a non-parametric type visible in scope `in`.
// The type's name becomes a binding of its meta type, its super traits are
// recorded as trait implementations and its members are indexed for
// method-name dispatch.
func (t *Tree) RegisterMonoType(in ScopeID, typ typesystem.TMono, typeScope ScopeID, vis ast.Visibility) {
	t.Get(in).MonoTypes[typ.Name] = TypeDef{Type: typ, Scope: typeScope}
	t.registerTypeCommon(in, typ, typeScope, vis)
}

// RegisterPolyType is RegisterMonoType for parametric types. typ carries
// the declared parameters as quantified variables, e.g. Array('T).
func (t *Tree) RegisterPolyType(in ScopeID, typ typesystem.TPoly, typeScope ScopeID, vis ast.Visibility) {
	t.Get(in).PolyTypes[typ.Name] = TypeDef{Type: typ, Scope: typeScope}
	t.registerTypeCommon(in, typ, typeScope, vis)
}

func (t *Tree) registerTypeCommon(in ScopeID, typ typesystem.Type, typeScope ScopeID, vis ast.Visibility) {
	ts := t.Get(typeScope)
	meta := typesystem.ClassT
	if ts.Kind.IsTrait() {
		meta = typesystem.TraitT
	}
	name := typesystem.QualName(typ)
	t.DefineLocal(in, name, meta, vis)
	for _, sup := range ts.SuperTraits {
		t.RegisterTraitImpl(in, typ, sup)
	}
	t.indexMethods(in, typ, ts)
}

func (t *Tree) indexMethods(in ScopeID, typ typesystem.Type, ts *Scope) {
	target := t.Get(in)
	for _, name := range sortedKeys(ts.Decls) {
		target.MethodToTraits[name] = append(target.MethodToTraits[name], MethodType{Definition: typ, Method: ts.Decls[name].Type})
	}
	for _, name := range sortedKeys(ts.Locals) {
		target.MethodToClasses[name] = append(target.MethodToClasses[name], MethodType{Definition: typ, Method: ts.Locals[name].Type})
	}
	for _, defs := range ts.MethodsList {
		ms := t.Get(defs.Scope)
		for _, name := range sortedKeys(ms.Locals) {
			target.MethodToClasses[name] = append(target.MethodToClasses[name], MethodType{Definition: typ, Method: ms.Locals[name].Type})
		}
	}
}

// RegisterTraitImpl records that sub implements trait in scope `in`.
func (t *Tree) RegisterTraitImpl(in ScopeID, sub, trait typesystem.Type) {
	s := t.Get(in)
	key := typesystem.QualName(trait)
	impls, ok := s.TraitImpls[key]
	if !ok {
		impls = NewTraitImplSet()
		s.TraitImpls[key] = impls
	}
	impls.Insert(TraitInstance{SubType: sub, SupTrait: trait})
}

// RegisterMethods attaches a methods scope to a type scope. When implTrait
// is set the methods implement that trait.
func (t *Tree) RegisterMethods(typeScope ScopeID, implTrait typesystem.Type, methods ScopeID) {
	s := t.Get(typeScope)
	s.MethodsList = append(s.MethodsList, MethodDefs{ImplTrait: implTrait, Scope: methods})
}

// RegisterPatch makes a patch of base visible in scope `in`.
func (t *Tree) RegisterPatch(in ScopeID, name string, base typesystem.Type, patchScope ScopeID) {
	t.Get(patchScope).Self = base
	t.Get(in).Patches[name] = Patch{Name: name, Base: base, Scope: patchScope}
}
