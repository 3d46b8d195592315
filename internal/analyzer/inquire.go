package analyzer

import (
	"sort"
	"strings"

	"github.com/hashicorp/go-set/v2"

	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/diagnostics"
	"github.com/funvibe/typecore/internal/symbols"
	"github.com/funvibe/typecore/internal/typesystem"
)

// NominalCtx is a nominal type together with the scope holding its
// members. For poly types, Type carries the actual parameters.
type NominalCtx struct {
	Type  typesystem.Type
	Scope symbols.ScopeID
}

// Access selects how RecGetVarType treats visibility failures.
type Access int

const (
	// LocalAccess keeps searching outward past an invisible binding.
	LocalAccess Access = iota
	// AttrAccess stops at the first binding found.
	AttrAccess
)

// lookupTypeDef finds a type by name. "path.Name" is looked up in the
// module registered for path.
func (c *Checker) lookupTypeDef(name string) (symbols.TypeDef, bool) {
	if i := strings.LastIndex(name, "."); i > 0 {
		mod, ok := c.modules.Lookup(name[:i])
		if !ok {
			return symbols.TypeDef{}, false
		}
		return c.tree.RecGetType(mod, name[i+1:])
	}
	return c.tree.RecGetType(c.scope, name)
}

func (c *Checker) typeDef(t typesystem.Type) (symbols.TypeDef, bool) {
	name, ok := nominalName(t)
	if !ok {
		return symbols.TypeDef{}, false
	}
	return c.lookupTypeDef(name)
}

// declSubst maps the quantified parameters of a declared poly type to the
// parameters of an actual instance of it.
func (c *Checker) declSubst(decl, actual typesystem.Type) typesystem.Subst {
	s := typesystem.NewSubst()
	dp, ok := decl.(typesystem.TPoly)
	if !ok {
		return s
	}
	ap, ok := c.store.Deref(actual).(typesystem.TPoly)
	if !ok || len(ap.Params) != len(dp.Params) {
		return s
	}
	for i, p := range dp.Params {
		switch p := p.(type) {
		case typesystem.TPQVar:
			s = s.BindParam(p.Name, c.store.DerefParam(ap.Params[i]))
		case typesystem.TPType:
			if q, ok := p.Type.(typesystem.TQVar); ok {
				s = s.BindParam(q.Name, c.store.DerefParam(ap.Params[i]))
			}
		}
	}
	return s
}

// nominalSupers lists the declared super classes and traits of t with
// t's parameters substituted.
func (c *Checker) nominalSupers(t typesystem.Type) []typesystem.Type {
	td, ok := c.typeDef(t)
	if !ok {
		return nil
	}
	s := c.declSubst(td.Type, t)
	scope := c.tree.Get(td.Scope)
	out := make([]typesystem.Type, 0, len(scope.SuperClasses)+len(scope.SuperTraits))
	for _, sup := range scope.SuperClasses {
		out = append(out, sup.Apply(s))
	}
	for _, sup := range scope.SuperTraits {
		out = append(out, sup.Apply(s))
	}
	return out
}

// implsOf lists the instances of trait traitName implemented by t itself,
// with t's parameters substituted.
func (c *Checker) implsOf(t typesystem.Type, traitName string) []typesystem.Type {
	name := typesystem.QualName(t)
	var out []typesystem.Type
	for _, ti := range symbols.SortedTraitImpls(c.tree.RecGetTraitImpls(c.scope, traitName)) {
		if typesystem.QualName(ti.SubType) != name {
			continue
		}
		out = append(out, ti.SupTrait.Apply(c.declSubst(ti.SubType, t)))
	}
	return out
}

// NominalSupertypeContexts returns t's own context followed by the
// contexts of its super classes and traits, then the patches whose base
// is a supertype of t. It reports false when t has no nominal context.
func (c *Checker) NominalSupertypeContexts(t typesystem.Type) ([]NominalCtx, bool) {
	seen := set.New[symbols.ScopeID](8)
	var out []NominalCtx
	if !c.collectContexts(t, seen, &out, 0) {
		return nil, false
	}
	for _, p := range c.tree.RecGetPatches(c.scope) {
		if c.SupertypeOf(p.Base, t) && seen.Insert(p.Scope) {
			out = append(out, NominalCtx{Type: p.Base, Scope: p.Scope})
		}
	}
	return out, true
}

func (c *Checker) collectContexts(t typesystem.Type, seen *set.Set[symbols.ScopeID], out *[]NominalCtx, depth int) bool {
	if depth > maxCompareDepth {
		return false
	}
	d := depth + 1
	t = c.store.Deref(t)
	switch x := t.(type) {
	case typesystem.TFree:
		_, cell, ok := c.store.UnboundVar(x)
		if !ok {
			return false
		}
		_, sup, _ := bounds(cell)
		return c.collectContexts(sup, seen, out, d)
	case typesystem.TRefinement:
		return c.collectContexts(x.Base, seen, out, d)
	case typesystem.TRef:
		return c.collectContexts(x.Inner, seen, out, d)
	case typesystem.TRefMut:
		return c.collectContexts(x.Before, seen, out, d)
	case typesystem.TAnd:
		l := c.collectContexts(x.L, seen, out, d)
		r := c.collectContexts(x.R, seen, out, d)
		return l || r
	case typesystem.TOr:
		return c.collectOrContexts(x, seen, out, d)
	case typesystem.TSubr, typesystem.TForall, typesystem.TRecord:
		return c.collectContexts(c.nominalClassOf(x), seen, out, d)
	case typesystem.TMono, typesystem.TPoly:
		td, ok := c.typeDef(x)
		if !ok {
			return false
		}
		if !seen.Insert(td.Scope) {
			return true
		}
		*out = append(*out, NominalCtx{Type: x, Scope: td.Scope})
		for _, sup := range c.nominalSupers(x) {
			c.collectContexts(sup, seen, out, d)
		}
		return true
	}
	return false
}

// collectOrContexts handles `L or R`, which has contexts only when both
// sides are unbound variables or refinements of one base.
func (c *Checker) collectOrContexts(t typesystem.TOr, seen *set.Set[symbols.ScopeID], out *[]NominalCtx, d int) bool {
	_, lcell, lok := c.store.UnboundVar(t.L)
	_, rcell, rok := c.store.UnboundVar(t.R)
	if lok && rok {
		_, lsup, _ := bounds(lcell)
		_, rsup, _ := bounds(rcell)
		return c.collectContexts(c.Union(lsup, rsup), seen, out, d)
	}
	lr, lok := c.store.Deref(t.L).(typesystem.TRefinement)
	rr, rok := c.store.Deref(t.R).(typesystem.TRefinement)
	if lok && rok && c.store.Equal(lr.Base, rr.Base) {
		return c.collectContexts(lr.Base, seen, out, d)
	}
	return false
}

// NominalTypeContext returns the context of t alone.
func (c *Checker) NominalTypeContext(t typesystem.Type) (NominalCtx, bool) {
	t = c.store.Deref(t)
	switch t.(type) {
	case typesystem.TSubr, typesystem.TForall, typesystem.TRecord:
		t = c.nominalClassOf(t)
	}
	td, ok := c.typeDef(t)
	if !ok {
		return NominalCtx{}, false
	}
	return NominalCtx{Type: t, Scope: td.Scope}, true
}

// ExprType is the type of an expression. An identifier without a type is
// looked up in the current scope chain.
func (c *Checker) ExprType(e ast.Expression) (typesystem.Type, error) {
	if t := e.RefType(); t != nil {
		return t, nil
	}
	if ident, ok := e.(*ast.Ident); ok {
		return c.VarType(ident)
	}
	if attr, ok := e.(*ast.Attr); ok {
		return c.AttributeType(attr.Obj, attr.Ident)
	}
	return typesystem.Obj, nil
}

// VarType resolves a plain name from the current scope.
func (c *Checker) VarType(ident *ast.Ident) (typesystem.Type, error) {
	return c.RecGetVarType(c.scope, ident, LocalAccess)
}

// RecGetVarType searches from scope outward. With LocalAccess an
// invisible binding is skipped; with AttrAccess its visibility error is
// returned.
func (c *Checker) RecGetVarType(from symbols.ScopeID, ident *ast.Ident, access Access) (typesystem.Type, error) {
	var visErr error
	for _, id := range c.tree.Ancestors(from) {
		vi, ok := c.tree.CurrentScopeVar(id, ident.Name)
		if !ok {
			continue
		}
		if err := c.VisibilityCheck(ident, vi, c.Namespace()); err != nil {
			if access == AttrAccess {
				return nil, err
			}
			if visErr == nil {
				visErr = err
			}
			continue
		}
		return vi.Type, nil
	}
	if visErr != nil {
		return nil, visErr
	}
	similar := c.tree.SimilarName(from, ident.Name, c.suggestionLimit(ident.Name))
	if access == AttrAccess {
		return nil, diagnostics.NoAttributeInScope(ident.Loc(), c.Namespace(), c.tree.Get(from).Name, ident.Name, similar)
	}
	return nil, diagnostics.NoSuchVariable(ident.Loc(), c.Namespace(), ident.Name, similar)
}

// VisibilityCheck accepts a binding when the requested visibility matches
// the declared one. Private bindings are further restricted to the
// defining namespace and the namespaces nested in it.
func (c *Checker) VisibilityCheck(ident *ast.Ident, vi *symbols.VarInfo, namespace string) error {
	if ident.Vis != vi.Vis {
		return diagnostics.Visibility(ident.Loc(), namespace, ident.Name, vi.Vis.IsPrivate())
	}
	if !vi.Vis.IsPrivate() || vi.DefinedIn == symbols.RootID || namespace == config.BuiltinsNamespace {
		return nil
	}
	def := c.tree.Get(vi.DefinedIn).Name
	if namespace == def || strings.HasPrefix(namespace, def+"::") {
		return nil
	}
	return diagnostics.Visibility(ident.Loc(), namespace, ident.Name, true)
}

// attrStep returns a nil type and nil error when it does not apply to
// the object.
type attrStep func(obj ast.Expression, objT typesystem.Type, ident *ast.Ident) (typesystem.Type, error)

// firstAttr runs the steps in order. A not-found error moves on to the
// next step; any other error is returned at once. When every step misses,
// the first not-found error is reported.
func (c *Checker) firstAttr(obj ast.Expression, ident *ast.Ident, steps ...attrStep) (typesystem.Type, error) {
	objT, err := c.ExprType(obj)
	if err != nil {
		return nil, err
	}
	var first error
	for _, step := range steps {
		t, err := step(obj, objT, ident)
		if t != nil {
			return t, nil
		}
		if err == nil {
			continue
		}
		if !diagnostics.IsNotFound(err) {
			return nil, err
		}
		if first == nil {
			first = err
		}
	}
	if first == nil {
		similar := c.tree.SimilarName(c.scope, ident.Name, c.suggestionLimit(ident.Name))
		first = diagnostics.NoSuchAttribute(ident.Loc(), c.Namespace(), c.show(objT), ident.Name, similar)
	}
	return nil, first
}

// AttributeType resolves obj.ident through the record fields, the
// singular scope and the nominal contexts in turn. Type names in those
// steps already resolve along the outer chain. The method index is not
// consulted, so a lookup never narrows the object's type.
func (c *Checker) AttributeType(obj ast.Expression, ident *ast.Ident) (typesystem.Type, error) {
	return c.firstAttr(obj, ident, c.recordAttr, c.singularAttr, c.nominalAttr)
}

// CalleeType is the type of the called object, or of its method attrName.
func (c *Checker) CalleeType(obj ast.Expression, attrName *ast.Ident) (typesystem.Type, error) {
	if attrName == nil {
		return c.ExprType(obj)
	}
	return c.firstAttr(obj, attrName, c.recordAttr, c.nominalAttr, c.singularAttr, c.chainAttr)
}

func (c *Checker) recordOf(t typesystem.Type) (typesystem.TRecord, bool) {
	switch x := c.store.Deref(t).(type) {
	case typesystem.TRecord:
		return x, true
	case typesystem.TRef:
		return c.recordOf(x.Inner)
	case typesystem.TRefMut:
		return c.recordOf(x.Before)
	case typesystem.TRefinement:
		return c.recordOf(x.Base)
	}
	return typesystem.TRecord{}, false
}

func (c *Checker) recordAttr(_ ast.Expression, objT typesystem.Type, ident *ast.Ident) (typesystem.Type, error) {
	rec, ok := c.recordOf(objT)
	if !ok {
		return nil, nil
	}
	if t, ok := rec.Fields[ident.Name]; ok {
		return t, nil
	}
	similar := symbols.ClosestName(ident.Name, rec.FieldNames(), c.suggestionLimit(ident.Name))
	return nil, diagnostics.NoSuchAttribute(ident.Loc(), c.Namespace(), c.show(objT), ident.Name, similar)
}

// singularScope is the scope an expression denotes by itself: a module
// value or an identifier naming a type.
func (c *Checker) singularScope(obj ast.Expression, objT typesystem.Type) (symbols.ScopeID, bool) {
	objT = c.store.Deref(objT)
	if p, ok := objT.(typesystem.TPoly); ok && p.Name == config.ModuleTypeName && len(p.Params) == 1 {
		if v, ok := c.store.DerefParam(p.Params[0]).(typesystem.TPValue); ok && v.Value.Kind == typesystem.StrValueKind {
			return c.modules.Lookup(v.Value.Str)
		}
	}
	ident, ok := obj.(*ast.Ident)
	if !ok || !isMetaType(objT) {
		return symbols.NoScope, false
	}
	td, ok := c.lookupTypeDef(ident.Name)
	return td.Scope, ok
}

func isMetaType(t typesystem.Type) bool {
	m, ok := t.(typesystem.TMono)
	return ok && (m == typesystem.TypeT || m == typesystem.ClassT || m == typesystem.TraitT)
}

// isTypeValue reports whether obj is a type used as a value, e.g. `Int`
// in `Int.abs(x)`.
func (c *Checker) isTypeValue(obj ast.Expression, objT typesystem.Type) bool {
	_, ok := obj.(*ast.Ident)
	return ok && isMetaType(c.store.Deref(objT))
}

func (c *Checker) singularAttr(obj ast.Expression, objT typesystem.Type, ident *ast.Ident) (typesystem.Type, error) {
	id, ok := c.singularScope(obj, objT)
	if !ok {
		return nil, nil
	}
	vi, ok := c.tree.CurrentScopeVar(id, ident.Name)
	if !ok {
		similar := c.tree.SimilarAttr(id, ident.Name, c.suggestionLimit(ident.Name))
		return nil, diagnostics.NoAttributeInScope(ident.Loc(), c.Namespace(), c.tree.Get(id).Name, ident.Name, similar)
	}
	if err := c.VisibilityCheck(ident, vi, c.Namespace()); err != nil {
		return nil, err
	}
	return vi.Type, nil
}

func (c *Checker) nominalAttr(_ ast.Expression, objT typesystem.Type, ident *ast.Ident) (typesystem.Type, error) {
	ctxs, ok := c.NominalSupertypeContexts(objT)
	if !ok || len(ctxs) == 0 {
		return nil, nil
	}
	for _, ctx := range ctxs {
		vi, ok := c.tree.CurrentScopeVar(ctx.Scope, ident.Name)
		if !ok {
			continue
		}
		if err := c.VisibilityCheck(ident, vi, c.Namespace()); err != nil {
			return nil, err
		}
		decl := c.tree.Get(ctx.Scope).Self
		if decl == nil {
			return vi.Type, nil
		}
		return vi.Type.Apply(c.declSubst(decl, ctx.Type)), nil
	}
	similar := c.tree.SimilarAttr(ctxs[0].Scope, ident.Name, c.suggestionLimit(ident.Name))
	return nil, diagnostics.NoSuchAttribute(ident.Loc(), c.Namespace(), c.show(objT), ident.Name, similar)
}

func (c *Checker) chainAttr(_ ast.Expression, objT typesystem.Type, ident *ast.Ident) (typesystem.Type, error) {
	return c.MethodTypeByName(objT, ident)
}

// MethodTypeByName finds a method through the method-name index. All
// candidates must agree on one method type; the receiver is then
// sub-unified with the defining type.
func (c *Checker) MethodTypeByName(objT typesystem.Type, ident *ast.Ident) (typesystem.Type, error) {
	cands := c.tree.RecGetMethodCandidates(c.scope, ident.Name)
	if len(cands) == 0 {
		similar := c.tree.SimilarName(c.scope, ident.Name, c.suggestionLimit(ident.Name))
		return nil, diagnostics.NoSuchAttribute(ident.Loc(), c.Namespace(), c.show(objT), ident.Name, similar)
	}
	first := cands[0]
	for _, cand := range cands[1:] {
		if !c.store.Equal(cand.Method, first.Method) {
			definers := make([]string, len(cands))
			for i, d := range cands {
				definers[i] = d.Definition.String()
			}
			sort.Strings(definers)
			return nil, diagnostics.AmbiguousMethod(ident.Loc(), c.Namespace(), ident.Name, definers)
		}
	}
	inst := c.instantiateShared(first.Definition, first.Method)
	if err := c.SubUnify(objT, inst[0], ident.Loc(), ident.Name); err != nil {
		return nil, err
	}
	c.logger.Debug("method found by name", "name", ident.Name, "definer", first.Definition.String())
	return inst[1], nil
}

// TraitImpls returns the implementations of t visible from the current
// scope. For `L and R` only sub types implementing both sides remain;
// `L or R` takes the implementations of either.
func (c *Checker) TraitImpls(t typesystem.Type) *symbols.TraitImplSet {
	t = c.store.Deref(t)
	switch x := t.(type) {
	case typesystem.TAnd:
		l, r := c.TraitImpls(x.L), c.TraitImpls(x.R)
		out := symbols.NewTraitImplSet()
		for _, li := range symbols.SortedTraitImpls(l) {
			for _, ri := range symbols.SortedTraitImpls(r) {
				if c.store.Equal(li.SubType, ri.SubType) {
					out.Insert(symbols.TraitInstance{SubType: li.SubType, SupTrait: c.Intersection(li.SupTrait, ri.SupTrait)})
				}
			}
		}
		return out
	case typesystem.TOr:
		out := c.TraitImpls(x.L)
		out.InsertSet(c.TraitImpls(x.R))
		return out
	}
	out := symbols.NewTraitImplSet()
	for _, ti := range symbols.SortedTraitImpls(c.tree.RecGetTraitImpls(c.scope, typesystem.QualName(t))) {
		if c.Related(ti.SupTrait, t) {
			out.Insert(ti)
		}
	}
	return out
}

// projectionCandidates are the implementations of an unbound variable's
// upper bound.
func (c *Checker) projectionCandidates(t typesystem.Type) []symbols.TraitInstance {
	_, cell, ok := c.store.UnboundVar(t)
	if !ok {
		return nil
	}
	_, sup, _ := bounds(cell)
	if typesystem.IsObj(sup) {
		return nil
	}
	return symbols.SortedTraitImpls(c.TraitImpls(sup))
}

// ProjectionCandidates names the types that could satisfy an unbound
// variable's upper bound.
func (c *Checker) ProjectionCandidates(t typesystem.Type) []string {
	var out []string
	for _, ti := range c.projectionCandidates(t) {
		out = append(out, ti.SubType.String())
	}
	return out
}

func (c *Checker) IsClass(t typesystem.Type) bool {
	td, ok := c.typeDef(c.store.Deref(t))
	return ok && c.tree.Get(td.Scope).Kind.IsClass()
}

func (c *Checker) IsTrait(t typesystem.Type) bool {
	td, ok := c.typeDef(c.store.Deref(t))
	return ok && c.tree.Get(td.Scope).Kind.IsTrait()
}

// RecGetSelfType is the type described by the nearest enclosing class,
// trait, patch or methods scope.
func (c *Checker) RecGetSelfType() (typesystem.Type, bool) {
	for _, id := range c.tree.Ancestors(c.scope) {
		if self := c.tree.Get(id).Self; self != nil {
			return self, true
		}
	}
	return nil, false
}

func (c *Checker) GetMod(path string) (symbols.ScopeID, bool) {
	return c.modules.Lookup(path)
}
