package analyzer

import (
	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/diagnostics"
	"github.com/funvibe/typecore/internal/typesystem"
)

// Comparisons recurse through bounds and nominal supertypes; past this
// depth two types are reported unrelated.
const maxCompareDepth = 64

// Ordering is the result of Cmp.
type Ordering int

const (
	Less Ordering = iota
	Equal
	Greater
	NotRelated
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "<"
	case Equal:
		return "=="
	case Greater:
		return ">"
	}
	return "!="
}

// SupertypeOf reports whether lhs :> rhs. Unbound variables are compared
// optimistically: the result is true when some solution of the variable
// makes the relation hold.
func (c *Checker) SupertypeOf(lhs, rhs typesystem.Type) bool {
	return c.supertypeOf(lhs, rhs, 0)
}

// SubtypeOf reports whether lhs <: rhs.
func (c *Checker) SubtypeOf(lhs, rhs typesystem.Type) bool {
	return c.supertypeOf(rhs, lhs, 0)
}

// Related reports whether either type is a supertype of the other.
func (c *Checker) Related(a, b typesystem.Type) bool {
	return c.SupertypeOf(a, b) || c.SubtypeOf(a, b)
}

func (c *Checker) Cmp(lhs, rhs typesystem.Type) Ordering {
	if c.store.Equal(lhs, rhs) {
		return Equal
	}
	sup, sub := c.SupertypeOf(lhs, rhs), c.SubtypeOf(lhs, rhs)
	switch {
	case sup && sub:
		return Equal
	case sup:
		return Greater
	case sub:
		return Less
	}
	return NotRelated
}

// Union is the least common supertype when one of the two absorbs the
// other, else `a or b`.
func (c *Checker) Union(a, b typesystem.Type) typesystem.Type {
	a, b = c.store.Deref(a), c.store.Deref(b)
	switch {
	case c.store.Equal(a, b):
		return a
	case typesystem.IsNever(a):
		return b
	case typesystem.IsNever(b):
		return a
	case typesystem.IsObj(a) || typesystem.IsObj(b):
		return typesystem.Obj
	}
	if !c.store.HasUnboundVar(a) && !c.store.HasUnboundVar(b) {
		if c.SupertypeOf(a, b) {
			return a
		}
		if c.SupertypeOf(b, a) {
			return b
		}
	}
	return typesystem.TOr{L: a, R: b}
}

// Intersection is the greatest common subtype when one of the two is a
// subtype of the other, else `a and b`.
func (c *Checker) Intersection(a, b typesystem.Type) typesystem.Type {
	a, b = c.store.Deref(a), c.store.Deref(b)
	switch {
	case c.store.Equal(a, b):
		return a
	case typesystem.IsObj(a):
		return b
	case typesystem.IsObj(b):
		return a
	case typesystem.IsNever(a) || typesystem.IsNever(b):
		return typesystem.Never
	}
	if !c.store.HasUnboundVar(a) && !c.store.HasUnboundVar(b) {
		if c.SubtypeOf(a, b) {
			return a
		}
		if c.SubtypeOf(b, a) {
			return b
		}
	}
	return typesystem.TAnd{L: a, R: b}
}

// bounds returns the sandwich of an unbound type cell. A TypeOf cell is
// a plain type variable.
func bounds(cell typesystem.FreeKind[typesystem.Type]) (typesystem.Type, typesystem.Type, typesystem.Cyclicity) {
	switch cell.Constraint.Kind() {
	case typesystem.Sandwiched:
		sub, sup, _ := cell.Constraint.SubSup()
		return sub, sup, cell.Constraint.Cyclicity()
	case typesystem.TypeOf:
		return typesystem.Never, typesystem.Obj, typesystem.NotCyclic
	}
	diagnostics.Invariantf("%s has no constraint while solving", cell)
	return nil, nil, typesystem.NotCyclic
}

func (c *Checker) supertypeOf(lhs, rhs typesystem.Type, depth int) bool {
	if depth > maxCompareDepth {
		return false
	}
	d := depth + 1
	lhs, rhs = c.store.Deref(lhs), c.store.Deref(rhs)
	if c.store.Equal(lhs, rhs) {
		return true
	}

	if _, cell, ok := c.store.UnboundVar(rhs); ok {
		if cell.Constraint.Kind() == typesystem.TypeOf {
			return true
		}
		sub, _, _ := bounds(cell)
		return c.supertypeOf(lhs, sub, d)
	}
	if _, cell, ok := c.store.UnboundVar(lhs); ok {
		if typ, ok := cell.Constraint.TypeOfType(); ok && cell.Constraint.Kind() == typesystem.TypeOf {
			return c.supertypeOf(typ, c.metaTypeOf(rhs), d)
		}
		_, sup, _ := bounds(cell)
		return c.supertypeOf(sup, rhs, d)
	}

	switch {
	case typesystem.IsObj(lhs) || typesystem.IsNever(rhs):
		return true
	case typesystem.IsNever(lhs) || typesystem.IsObj(rhs):
		return false
	}

	if r, ok := rhs.(typesystem.TOr); ok {
		return c.supertypeOf(lhs, r.L, d) && c.supertypeOf(lhs, r.R, d)
	}
	if l, ok := lhs.(typesystem.TAnd); ok {
		return c.supertypeOf(l.L, rhs, d) && c.supertypeOf(l.R, rhs, d)
	}
	if l, ok := lhs.(typesystem.TOr); ok {
		return c.supertypeOf(l.L, rhs, d) || c.supertypeOf(l.R, rhs, d)
	}
	if r, ok := rhs.(typesystem.TAnd); ok {
		return c.supertypeOf(lhs, r.L, d) || c.supertypeOf(lhs, r.R, d)
	}

	switch r := rhs.(type) {
	case typesystem.TRef:
		return c.supertypeOf(lhs, r.Inner, d)
	case typesystem.TRefMut:
		return c.supertypeOf(lhs, r.Before, d)
	case typesystem.TProj:
		if t, ok := c.EvalProj(r.Lhs, r.Rhs); ok {
			return c.supertypeOf(lhs, t, d)
		}
		return false
	}
	switch l := lhs.(type) {
	case typesystem.TRef:
		return c.supertypeOf(l.Inner, rhs, d)
	case typesystem.TRefMut:
		return c.supertypeOf(l.Before, rhs, d)
	case typesystem.TProj:
		if t, ok := c.EvalProj(l.Lhs, l.Rhs); ok {
			return c.supertypeOf(t, rhs, d)
		}
		return false
	}

	if r, ok := rhs.(typesystem.TRefinement); ok {
		if l, ok := lhs.(typesystem.TRefinement); ok {
			return c.refinementSupertypeOf(l, r, d)
		}
		if vals, ok := r.EnumValues(); ok && len(vals) > 0 {
			all := true
			for _, v := range vals {
				if !c.supertypeOf(lhs, v.Class(), d) {
					all = false
					break
				}
			}
			if all {
				return true
			}
		}
		return c.supertypeOf(lhs, r.Base, d)
	}
	if l, ok := lhs.(typesystem.TRefinement); ok {
		return len(l.Preds) == 0 && c.supertypeOf(l.Base, rhs, d)
	}

	switch l := lhs.(type) {
	case typesystem.TRecord:
		r, ok := rhs.(typesystem.TRecord)
		if !ok {
			return false
		}
		for name, lt := range l.Fields {
			rt, ok := r.Fields[name]
			if !ok || !c.supertypeOf(lt, rt, d) {
				return false
			}
		}
		return true
	case typesystem.TSubr:
		r, ok := rhs.(typesystem.TSubr)
		return ok && c.subrSupertypeOf(l, r, d)
	case typesystem.TForall:
		r, ok := rhs.(typesystem.TForall)
		return ok && len(l.Bounds) == len(r.Bounds) && c.supertypeOf(l.Body, r.Body, d)
	case typesystem.TQVar:
		return false
	}

	switch rhs.(type) {
	case typesystem.TSubr, typesystem.TForall, typesystem.TRecord:
		return c.supertypeOf(lhs, c.nominalClassOf(rhs), d)
	}
	return c.nominalSupertypeOf(lhs, rhs, d)
}

// subrSupertypeOf: parameters are contravariant, the return covariant.
// A procedure type is a supertype of a function type, not the reverse.
func (c *Checker) subrSupertypeOf(l, r typesystem.TSubr, d int) bool {
	if l.Kind == typesystem.FuncKind && r.Kind == typesystem.ProcKind {
		return false
	}
	if len(l.NonDefault) != len(r.NonDefault) {
		return false
	}
	for i := range l.NonDefault {
		if !c.supertypeOf(r.NonDefault[i].Type, l.NonDefault[i].Type, d) {
			return false
		}
	}
	if l.Var != nil {
		if r.Var == nil || !c.supertypeOf(r.Var.Type, l.Var.Type, d) {
			return false
		}
	}
	for _, lp := range l.Defaults {
		rp, ok := findParam(r.Defaults, lp.Name)
		if !ok || !c.supertypeOf(rp.Type, lp.Type, d) {
			return false
		}
	}
	return c.supertypeOf(l.Return, r.Return, d)
}

func findParam(params []typesystem.ParamTy, name string) (typesystem.ParamTy, bool) {
	for _, p := range params {
		if p.Name == name {
			return p, true
		}
	}
	return typesystem.ParamTy{}, false
}

// refinementSupertypeOf checks the bases, then that every value of an
// enumerated rhs satisfies lhs's predicates.
func (c *Checker) refinementSupertypeOf(l, r typesystem.TRefinement, d int) bool {
	if !c.supertypeOf(l.Base, r.Base, d) {
		return false
	}
	if len(l.Preds) == 0 {
		return true
	}
	vals, ok := r.EnumValues()
	if !ok {
		return false
	}
	for _, v := range vals {
		for _, p := range l.Preds {
			holds, decided := typesystem.Holds(p, v)
			if !decided || !holds {
				return false
			}
		}
	}
	return true
}

func (c *Checker) nominalSupertypeOf(lhs, rhs typesystem.Type, d int) bool {
	lname, lok := nominalName(lhs)
	rname, rok := nominalName(rhs)
	if !lok || !rok {
		return false
	}
	if lname == rname {
		return c.paramsRelated(lhs, rhs, d)
	}
	for _, sup := range c.nominalSupers(rhs) {
		if c.supertypeOf(lhs, sup, d) {
			return true
		}
	}
	for _, sup := range c.implsOf(rhs, lname) {
		if c.supertypeOf(lhs, sup, d) {
			return true
		}
	}
	return false
}

// paramsRelated compares the parameters of two instances of the same
// poly type invariantly.
func (c *Checker) paramsRelated(lhs, rhs typesystem.Type, d int) bool {
	lp, _ := lhs.(typesystem.TPoly)
	rp, _ := rhs.(typesystem.TPoly)
	if len(lp.Params) != len(rp.Params) {
		return false
	}
	for i := range lp.Params {
		if !c.paramRelated(lp.Params[i], rp.Params[i], d) {
			return false
		}
	}
	return true
}

func (c *Checker) paramRelated(l, r typesystem.TyParam, d int) bool {
	l, r = c.store.DerefParam(l), c.store.DerefParam(r)
	if c.store.EqualParam(l, r) {
		return true
	}
	if c.openParam(l) || c.openParam(r) {
		return true
	}
	lt, lok := l.(typesystem.TPType)
	rt, rok := r.(typesystem.TPType)
	if lok && rok {
		return c.supertypeOf(lt.Type, rt.Type, d) && c.supertypeOf(rt.Type, lt.Type, d)
	}
	le, lchanged := c.evalParam(l)
	re, rchanged := c.evalParam(r)
	if lchanged || rchanged {
		return c.paramRelated(le, re, d)
	}
	return false
}

// openParam reports whether p still stands for an unknown: an unbound
// parameter, a quantified name, or a type that is one of those.
func (c *Checker) openParam(p typesystem.TyParam) bool {
	switch x := p.(type) {
	case typesystem.TPFree:
		_, _, ok := c.store.UnboundParam(x)
		return ok
	case typesystem.TPQVar:
		return true
	case typesystem.TPType:
		if _, ok := x.Type.(typesystem.TQVar); ok {
			return true
		}
	}
	return false
}

func nominalName(t typesystem.Type) (string, bool) {
	switch t := t.(type) {
	case typesystem.TMono:
		return t.Name, true
	case typesystem.TPoly:
		return t.Name, true
	}
	return "", false
}

// nominalClassOf is the builtin class standing for a structural type.
func (c *Checker) nominalClassOf(t typesystem.Type) typesystem.Type {
	switch t := t.(type) {
	case typesystem.TSubr:
		if t.Kind == typesystem.ProcKind {
			return typesystem.ProcT
		}
		return typesystem.FuncT
	case typesystem.TForall:
		return typesystem.QFuncT
	case typesystem.TRecord:
		for _, ft := range t.Fields {
			if !c.store.Equal(ft, typesystem.TypeT) {
				return typesystem.RecordT
			}
		}
		return typesystem.RecordTyT
	}
	return t
}

// metaTypeOf is the type of t seen as a value: ClassType for classes,
// TraitType for traits, Type otherwise.
func (c *Checker) metaTypeOf(t typesystem.Type) typesystem.Type {
	if td, ok := c.typeDef(t); ok {
		if c.tree.Get(td.Scope).Kind.IsTrait() {
			return typesystem.TraitT
		}
		return typesystem.ClassT
	}
	if typesystem.QualName(t) == config.RecordTypeName {
		return typesystem.RecordTyT
	}
	return typesystem.TypeT
}
