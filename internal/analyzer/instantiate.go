package analyzer

import (
	"fmt"

	"github.com/funvibe/typecore/internal/diagnostics"
	"github.com/funvibe/typecore/internal/symbols"
	"github.com/funvibe/typecore/internal/typesystem"
)

// Instantiate replaces the quantified variables of t with fresh free
// variables at the current level. Occurrences of one name share a
// variable.
func (c *Checker) Instantiate(t typesystem.Type) typesystem.Type {
	return c.instantiateShared(t)[0]
}

// instantiateShared instantiates several types with one name table, so
// a name quantified in two of them becomes one variable.
func (c *Checker) instantiateShared(ts ...typesystem.Type) []typesystem.Type {
	in := &instantiator{
		c:      c,
		types:  map[string]typesystem.TFree{},
		params: map[string]typesystem.TPFree{},
	}
	out := make([]typesystem.Type, len(ts))
	for i, t := range ts {
		out[i] = in.typ(t)
	}
	return out
}

type instantiator struct {
	c      *Checker
	types  map[string]typesystem.TFree
	params map[string]typesystem.TPFree
}

func (in *instantiator) typ(t typesystem.Type) typesystem.Type {
	return typesystem.MapType(t, in.mapType, in.mapParam)
}

func (in *instantiator) mapType(t typesystem.Type) (typesystem.Type, bool) {
	switch x := t.(type) {
	case typesystem.TForall:
		return in.forall(x), true
	case typesystem.TQVar:
		return in.typeVar(x.Name), true
	}
	return nil, false
}

func (in *instantiator) mapParam(p typesystem.TyParam) (typesystem.TyParam, bool) {
	if q, ok := p.(typesystem.TPQVar); ok {
		return in.paramVar(q.Name), true
	}
	return nil, false
}

func (in *instantiator) typeVar(name string) typesystem.Type {
	if v, ok := in.types[name]; ok {
		return v
	}
	v := in.c.store.FreshNamedType(name, in.c.level, typesystem.NewTypeOf(typesystem.TypeT))
	in.types[name] = v
	return v
}

func (in *instantiator) paramVar(name string) typesystem.TyParam {
	if p, ok := in.params[name]; ok {
		return p
	}
	if v, ok := in.types[name]; ok {
		return typesystem.TypeParam(v)
	}
	p := in.c.store.FreshNamedParam(name, in.c.level, typesystem.NewTypeOf(typesystem.Obj))
	in.params[name] = p
	return p
}

// forall allocates every bound first so bounds may refer to each other,
// then fills in the constraints.
func (in *instantiator) forall(t typesystem.TForall) typesystem.Type {
	store := in.c.store
	for _, b := range t.Bounds {
		if b.Kind == typesystem.SubtypeOf || isMetaType(b.Type) {
			in.types[b.Name] = store.FreshNamedType(b.Name, in.c.level, typesystem.NewUninited())
		} else {
			in.params[b.Name] = store.FreshNamedParam(b.Name, in.c.level, typesystem.NewUninited())
		}
	}
	for _, b := range t.Bounds {
		bt := in.typ(b.Type)
		if v, ok := in.types[b.Name]; ok {
			if b.Kind == typesystem.InstanceOf {
				store.UpdateConstraint(v.ID, typesystem.NewTypeOf(bt))
				continue
			}
			cyc := typesystem.NotCyclic
			if store.Occurs(v.ID, bt) {
				cyc = typesystem.SuperCyclic
			}
			store.UpdateConstraint(v.ID, typesystem.NewSubtypeOf(bt, cyc))
			continue
		}
		store.UpdateParamConstraint(in.params[b.Name].ID, typesystem.NewTypeOf(bt))
	}
	return in.typ(t.Body)
}

// Generalize quantifies the unbound variables of t created deeper than
// the current level, keeping their upper bounds.
func (c *Checker) Generalize(t typesystem.Type) typesystem.Type {
	t = c.store.Resolve(t)
	names := map[int]string{}
	var ids []int
	for _, id := range c.store.FreeVarsOf(t) {
		cell := c.store.Cell(id)
		if cell.Level <= c.level {
			continue
		}
		name := cell.Name
		if name == "" {
			name = generatedName(len(ids))
		}
		names[id] = name
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return t
	}
	quantify := func(x typesystem.Type) typesystem.Type {
		return typesystem.MapType(x, func(y typesystem.Type) (typesystem.Type, bool) {
			if f, ok := y.(typesystem.TFree); ok {
				if name, ok := names[f.ID]; ok {
					return typesystem.QVar(name), true
				}
			}
			return nil, false
		}, nil)
	}
	bs := make([]typesystem.Bound, 0, len(ids))
	for _, id := range ids {
		cell := c.store.Cell(id)
		b := typesystem.Bound{Kind: typesystem.InstanceOf, Name: names[id], Type: typesystem.TypeT}
		if sup, ok := cell.Constraint.Sup(); ok && !typesystem.IsObj(sup) {
			b = typesystem.Bound{Kind: typesystem.SubtypeOf, Name: names[id], Type: quantify(c.store.Resolve(sup))}
		} else if typ, ok := cell.Constraint.TypeOfType(); ok {
			b.Type = typ
		}
		bs = append(bs, b)
	}
	return typesystem.TForall{Bounds: bs, Body: quantify(t)}
}

func generatedName(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("T%d", i)
}

// EnterScope opens a child scope of the current one and moves one level
// deeper.
func (c *Checker) EnterScope(name string, kind symbols.ScopeKind) symbols.ScopeID {
	s := c.tree.NewScope(c.scope, name, kind)
	c.scopes = append(c.scopes, c.scope)
	c.scope = s.ID
	c.level++
	return s.ID
}

func (c *Checker) LeaveScope() {
	if len(c.scopes) == 0 {
		diagnostics.Invariantf("LeaveScope without EnterScope in %s", c.Namespace())
	}
	c.scope = c.scopes[len(c.scopes)-1]
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.level--
}

// LiftVars raises the level of every free variable in t.
func (c *Checker) LiftVars(t typesystem.Type) {
	c.store.LiftIn(t)
}

// Coerce fixes each unbound variable of t to its lower bound, or to its
// upper bound when nothing is known from below. Cyclic variables are left
// unbound.
func (c *Checker) Coerce(t typesystem.Type) typesystem.Type {
	for _, id := range c.store.FreeVarsOf(t) {
		con, ok := c.store.Constraint(id)
		if !ok || con.Kind() != typesystem.Sandwiched || con.Cyclicity().IsCyclic() {
			continue
		}
		sub, sup, _ := con.SubSup()
		switch {
		case !typesystem.IsNever(sub):
			c.store.Link(id, sub)
		case !typesystem.IsObj(sup):
			c.store.Link(id, sup)
		}
	}
	return c.store.Resolve(t)
}
