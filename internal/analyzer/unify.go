package analyzer

import (
	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/diagnostics"
	"github.com/funvibe/typecore/internal/token"
	"github.com/funvibe/typecore/internal/typesystem"
)

// SubUnify constrains sub <: sup. Free variables on either side get their
// bounds tightened; a variable is linked only when its bounds meet. On
// failure the store is left as it was.
func (c *Checker) SubUnify(sub, sup typesystem.Type, loc token.Location, name string) error {
	m := c.store.Mark()
	if err := c.subUnify(sub, sup, loc, name, 0); err != nil {
		c.store.Rollback(m)
		return err
	}
	c.store.Commit(m)
	return nil
}

// Unify makes l and r equal: SubUnify in both directions.
func (c *Checker) Unify(l, r typesystem.Type, loc token.Location, name string) error {
	m := c.store.Mark()
	if err := c.unify(l, r, loc, name, 0); err != nil {
		c.store.Rollback(m)
		return err
	}
	c.store.Commit(m)
	return nil
}

func (c *Checker) unify(l, r typesystem.Type, loc token.Location, name string, depth int) error {
	if err := c.subUnify(l, r, loc, name, depth); err != nil {
		return err
	}
	return c.subUnify(r, l, loc, name, depth)
}

func (c *Checker) mismatch(sub, sup typesystem.Type, loc token.Location, name string) error {
	cands := c.ProjectionCandidates(sup)
	cands = append(cands, c.ProjectionCandidates(sub)...)
	return diagnostics.TypeMismatch(loc, c.Namespace(), name, c.show(sup), c.show(sub), cands...)
}

func (c *Checker) subUnify(sub, sup typesystem.Type, loc token.Location, name string, depth int) error {
	if depth > maxCompareDepth {
		return c.mismatch(sub, sup, loc, name)
	}
	d := depth + 1
	sub, sup = c.store.Deref(sub), c.store.Deref(sup)
	if c.store.Equal(sub, sup) {
		return nil
	}
	if !c.SubtypeOf(sub, sup) {
		return c.mismatch(sub, sup, loc, name)
	}
	subV, subCell, subFree := c.store.UnboundVar(sub)
	supV, supCell, supFree := c.store.UnboundVar(sup)
	switch {
	case subFree && supFree:
		return c.mergeVars(subV, subCell, supV, supCell, loc, name)
	case supFree:
		return c.tightenSub(supV, supCell, sub, loc, name, d)
	case subFree:
		return c.tightenSup(subV, subCell, sup, loc, name, d)
	}
	return c.subUnifyStructural(sub, sup, loc, name, d)
}

// mergeVars handles ?a <: ?b. Both end up as one variable bounded by the
// union of the lower bounds and the intersection of the upper bounds; the
// variable with the lower level survives.
func (c *Checker) mergeVars(a typesystem.TFree, ac typesystem.FreeKind[typesystem.Type], b typesystem.TFree, bc typesystem.FreeKind[typesystem.Type], loc token.Location, name string) error {
	aSub, aSup, aCyc := bounds(ac)
	bSub, bSup, bCyc := bounds(bc)
	sub := c.Union(aSub, bSub)
	sup := c.Intersection(aSup, bSup)
	if !c.SubtypeOf(sub, sup) {
		return c.mismatch(a, b, loc, name)
	}
	keep, other, level := a, b, ac.Level
	if bc.Level < ac.Level {
		keep, other, level = b, a, bc.Level
	}
	c.store.Link(other.ID, keep)
	cyc := aCyc.Combine(bCyc)
	if c.store.Occurs(keep.ID, sub) {
		cyc = cyc.Combine(typesystem.SubCyclic)
	}
	if c.store.Occurs(keep.ID, sup) {
		cyc = cyc.Combine(typesystem.SuperCyclic)
	}
	c.store.UpdateLevelIn(sub, level)
	c.store.UpdateLevelIn(sup, level)
	c.logger.Debug("variables merged", "kept", keep.ID, "linked", other.ID, "sub", c.show(sub), "sup", c.show(sup))
	if !cyc.IsCyclic() && c.store.Equal(sub, sup) {
		return c.linkChecked(keep, sub, loc, name)
	}
	c.store.UpdateConstraint(keep.ID, typesystem.NewSandwiched(sub, sup, cyc))
	return nil
}

// tightenSup handles ?v <: sup by lowering the upper bound of ?v.
func (c *Checker) tightenSup(v typesystem.TFree, cell typesystem.FreeKind[typesystem.Type], sup typesystem.Type, loc token.Location, name string, d int) error {
	sub, oldSup, cyc := bounds(cell)
	if c.store.Occurs(v.ID, sup) {
		cyc = cyc.Combine(typesystem.SuperCyclic)
	}
	newSup := c.Intersection(oldSup, sup)
	if !c.SubtypeOf(sub, newSup) {
		return c.mismatch(v, sup, loc, name)
	}
	c.store.UpdateLevelIn(sup, cell.Level)
	if c.store.Equal(sub, newSup) {
		return c.linkChecked(v, sub, loc, name)
	}
	c.store.UpdateConstraint(v.ID, typesystem.NewSandwiched(sub, newSup, cyc))
	c.logger.Debug("bound tightened", "var", v.ID, "sup", c.show(newSup), "cyclicity", cyc.String())
	if !typesystem.IsNever(sub) && !cyc.IsCyclic() && c.store.HasUnboundVar(newSup) {
		return c.subUnify(sub, newSup, loc, name, d)
	}
	return nil
}

// tightenSub handles sub <: ?v by raising the lower bound of ?v.
func (c *Checker) tightenSub(v typesystem.TFree, cell typesystem.FreeKind[typesystem.Type], sub typesystem.Type, loc token.Location, name string, d int) error {
	oldSub, sup, cyc := bounds(cell)
	if c.store.Occurs(v.ID, sub) {
		cyc = cyc.Combine(typesystem.SubCyclic)
	}
	newSub := c.Union(oldSub, sub)
	if !c.SubtypeOf(newSub, sup) {
		return c.mismatch(sub, v, loc, name)
	}
	c.store.UpdateLevelIn(sub, cell.Level)
	if c.store.Equal(newSub, sup) {
		return c.linkChecked(v, sup, loc, name)
	}
	c.store.UpdateConstraint(v.ID, typesystem.NewSandwiched(newSub, sup, cyc))
	c.logger.Debug("bound tightened", "var", v.ID, "sub", c.show(newSub), "cyclicity", cyc.String())
	if !typesystem.IsObj(sup) && !cyc.IsCyclic() && (c.store.HasUnboundVar(sup) || c.store.HasUnboundVar(newSub)) {
		return c.subUnify(newSub, sup, loc, name, d)
	}
	return nil
}

// linkChecked links v to t unless t contains v, which would make an
// infinite type.
func (c *Checker) linkChecked(v typesystem.TFree, t typesystem.Type, loc token.Location, name string) error {
	if c.store.Occurs(v.ID, t) {
		return c.mismatch(v, t, loc, name)
	}
	c.store.Link(v.ID, t)
	return nil
}

func (c *Checker) subUnifyStructural(sub, sup typesystem.Type, loc token.Location, name string, d int) error {
	switch r := sup.(type) {
	case typesystem.TRef:
		return c.subUnify(sub, r.Inner, loc, name, d)
	case typesystem.TRefMut:
		return c.subUnify(sub, r.Before, loc, name, d)
	case typesystem.TProj:
		if t, ok := c.EvalProj(r.Lhs, r.Rhs); ok {
			return c.subUnify(sub, t, loc, name, d)
		}
		return nil
	}
	switch l := sub.(type) {
	case typesystem.TRef:
		return c.subUnify(l.Inner, sup, loc, name, d)
	case typesystem.TRefMut:
		return c.subUnify(l.Before, sup, loc, name, d)
	case typesystem.TProj:
		if t, ok := c.EvalProj(l.Lhs, l.Rhs); ok {
			return c.subUnify(t, sup, loc, name, d)
		}
		return nil
	}

	if l, ok := sub.(typesystem.TOr); ok {
		if err := c.subUnify(l.L, sup, loc, name, d); err != nil {
			return err
		}
		return c.subUnify(l.R, sup, loc, name, d)
	}
	if r, ok := sup.(typesystem.TAnd); ok {
		if err := c.subUnify(sub, r.L, loc, name, d); err != nil {
			return err
		}
		return c.subUnify(sub, r.R, loc, name, d)
	}
	if r, ok := sup.(typesystem.TOr); ok {
		return c.tryEach(sub, sup, loc, name, d, [2]typesystem.Type{sub, r.L}, [2]typesystem.Type{sub, r.R})
	}
	if l, ok := sub.(typesystem.TAnd); ok {
		return c.tryEach(sub, sup, loc, name, d, [2]typesystem.Type{l.L, sup}, [2]typesystem.Type{l.R, sup})
	}

	if l, ok := sub.(typesystem.TRefinement); ok {
		if r, ok := sup.(typesystem.TRefinement); ok {
			return c.subUnify(l.Base, r.Base, loc, name, d)
		}
		return c.subUnify(l.Base, sup, loc, name, d)
	}
	if r, ok := sup.(typesystem.TRefinement); ok {
		return c.subUnify(sub, r.Base, loc, name, d)
	}

	switch l := sub.(type) {
	case typesystem.TSubr:
		if r, ok := sup.(typesystem.TSubr); ok {
			return c.subUnifySubr(l, r, loc, name, d)
		}
		return nil
	case typesystem.TRecord:
		r, ok := sup.(typesystem.TRecord)
		if !ok {
			return nil
		}
		for _, field := range r.FieldNames() {
			lt, ok := l.Fields[field]
			if !ok {
				return c.mismatch(sub, sup, loc, name)
			}
			if err := c.subUnify(lt, r.Fields[field], loc, name, d); err != nil {
				return err
			}
		}
		return nil
	}

	supPoly, ok := sup.(typesystem.TPoly)
	if !ok {
		return nil
	}
	if subPoly, ok := sub.(typesystem.TPoly); ok && subPoly.Name == supPoly.Name {
		return c.unifyParams(subPoly, supPoly, loc, name, d)
	}
	cands := c.findNominalSupers(sub, supPoly.Name)
	if len(cands) == 0 {
		return c.mismatch(sub, sup, loc, name)
	}
	for _, found := range cands[c.choices.pick(c.store.Format(sub)+" <: "+supPoly.Name, len(cands)):] {
		m := c.store.Mark()
		if err := c.unifyParams(found, supPoly, loc, name, d); err == nil {
			c.store.Commit(m)
			return nil
		}
		c.store.Rollback(m)
	}
	return c.mismatch(sub, sup, loc, name)
}

// tryEach attempts the pairs in order and keeps the first that unifies.
func (c *Checker) tryEach(sub, sup typesystem.Type, loc token.Location, name string, d int, pairs ...[2]typesystem.Type) error {
	for _, p := range pairs {
		m := c.store.Mark()
		if err := c.subUnify(p[0], p[1], loc, name, d); err == nil {
			c.store.Commit(m)
			return nil
		}
		c.store.Rollback(m)
	}
	return c.mismatch(sub, sup, loc, name)
}

func (c *Checker) subUnifySubr(sub, sup typesystem.TSubr, loc token.Location, name string, d int) error {
	for i := range sup.NonDefault {
		if i >= len(sub.NonDefault) {
			return c.mismatch(sub, sup, loc, name)
		}
		if err := c.subUnify(sup.NonDefault[i].Type, sub.NonDefault[i].Type, loc, name, d); err != nil {
			return err
		}
	}
	if sup.Var != nil && sub.Var != nil {
		if err := c.subUnify(sup.Var.Type, sub.Var.Type, loc, name, d); err != nil {
			return err
		}
	}
	for _, sp := range sup.Defaults {
		if p, ok := findParam(sub.Defaults, sp.Name); ok {
			if err := c.subUnify(sp.Type, p.Type, loc, name, d); err != nil {
				return err
			}
		}
	}
	return c.subUnify(sub.Return, sup.Return, loc, name, d)
}

// findNominalSupers searches the super classes and trait implementations
// of t breadth first for instances of the type named name, nearest first.
func (c *Checker) findNominalSupers(t typesystem.Type, name string) []typesystem.TPoly {
	var found []typesystem.TPoly
	seen := map[string]bool{}
	queue := []typesystem.Type{t}
	for steps := 0; len(queue) > 0 && steps < maxCompareDepth*4; steps++ {
		cur := queue[0]
		queue = queue[1:]
		next := append(c.nominalSupers(cur), c.implsOf(cur, name)...)
		for _, sup := range next {
			key := sup.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			if p, ok := sup.(typesystem.TPoly); ok && p.Name == name {
				found = append(found, p)
				continue
			}
			queue = append(queue, sup)
		}
	}
	return found
}

func (c *Checker) unifyParams(sub, sup typesystem.TPoly, loc token.Location, name string, d int) error {
	if len(sub.Params) != len(sup.Params) {
		return c.mismatch(sub, sup, loc, name)
	}
	for i := range sub.Params {
		if err := c.unifyParam(sub.Params[i], sup.Params[i], loc, name, d); err != nil {
			return err
		}
	}
	return nil
}

// UnifyParam makes two type parameters equal.
func (c *Checker) UnifyParam(l, r typesystem.TyParam, loc token.Location, name string) error {
	m := c.store.Mark()
	if err := c.unifyParam(l, r, loc, name, 0); err != nil {
		c.store.Rollback(m)
		return err
	}
	c.store.Commit(m)
	return nil
}

// SubUnifyParam constrains l <: r. Only type parameters have a subtype
// order; any other pair must be equal.
func (c *Checker) SubUnifyParam(l, r typesystem.TyParam, loc token.Location, name string) error {
	lt, lok := c.store.DerefParam(l).(typesystem.TPType)
	rt, rok := c.store.DerefParam(r).(typesystem.TPType)
	if lok && rok {
		return c.SubUnify(lt.Type, rt.Type, loc, name)
	}
	return c.UnifyParam(l, r, loc, name)
}

func (c *Checker) unifyParam(l, r typesystem.TyParam, loc token.Location, name string, d int) error {
	if d > maxCompareDepth {
		return c.paramMismatch(l, r, loc, name)
	}
	l, r = c.store.DerefParam(l), c.store.DerefParam(r)
	if c.store.EqualParam(l, r) {
		return nil
	}
	if f, cell, ok := c.store.UnboundParam(l); ok {
		return c.linkParam(f, cell, r, loc, name)
	}
	if f, cell, ok := c.store.UnboundParam(r); ok {
		return c.linkParam(f, cell, l, loc, name)
	}
	lt, lok := l.(typesystem.TPType)
	rt, rok := r.(typesystem.TPType)
	if lok && rok {
		return c.unify(lt.Type, rt.Type, loc, name, d+1)
	}
	le, lchanged := c.evalParam(l)
	re, rchanged := c.evalParam(r)
	if lchanged || rchanged {
		return c.unifyParam(le, re, loc, name, d+1)
	}
	if b, ok := l.(typesystem.TPBinOp); ok {
		if v, ok := r.(typesystem.TPValue); ok {
			return c.solveBinOp(b, v, loc, name)
		}
	}
	if b, ok := r.(typesystem.TPBinOp); ok {
		if v, ok := l.(typesystem.TPValue); ok {
			return c.solveBinOp(b, v, loc, name)
		}
	}
	return c.paramMismatch(l, r, loc, name)
}

// linkParam binds an unbound parameter, checking a value against the
// class its constraint requires.
func (c *Checker) linkParam(f typesystem.TPFree, cell typesystem.FreeKind[typesystem.TyParam], to typesystem.TyParam, loc token.Location, name string) error {
	if typ, ok := cell.Constraint.TypeOfType(); ok && cell.Constraint.Kind() == typesystem.TypeOf {
		if v, ok := to.(typesystem.TPValue); ok && !c.SupertypeOf(typ, v.Value.Class()) {
			return c.paramMismatch(f, to, loc, name)
		}
	}
	c.store.LinkParam(f.ID, to)
	return nil
}

// solveBinOp solves `?n + k == v`, `k + ?n == v` and `?n - k == v` for ?n.
func (c *Checker) solveBinOp(b typesystem.TPBinOp, v typesystem.TPValue, loc token.Location, name string) error {
	if v.Value.Kind != typesystem.IntValueKind {
		return c.paramMismatch(b, v, loc, name)
	}
	free, known, left := b.L, b.R, true
	if _, _, ok := c.store.UnboundParam(free); !ok {
		free, known, left = b.R, b.L, false
	}
	f, cell, ok := c.store.UnboundParam(free)
	k, kok := c.store.DerefParam(known).(typesystem.TPValue)
	if !ok || !kok || k.Value.Kind != typesystem.IntValueKind {
		return c.paramMismatch(b, v, loc, name)
	}
	var solved int64
	switch {
	case b.Op == typesystem.OpAdd:
		solved = v.Value.Int - k.Value.Int
	case b.Op == typesystem.OpSub && left:
		solved = v.Value.Int + k.Value.Int
	default:
		return c.paramMismatch(b, v, loc, name)
	}
	return c.linkParam(f, cell, typesystem.ValueParam(typesystem.IntValue(solved)), loc, name)
}

func (c *Checker) paramMismatch(l, r typesystem.TyParam, loc token.Location, name string) error {
	return diagnostics.TypeMismatch(loc, c.Namespace(), name,
		shown(c.store.ResolveParam(r).String()), shown(c.store.ResolveParam(l).String()))
}

// Reunify replaces the type of the binding obj refers to after a call
// changed it. Expressions that are not plain names are left alone.
func (c *Checker) Reunify(obj ast.Expression, after typesystem.Type, loc token.Location) error {
	ident, ok := obj.(*ast.Ident)
	if !ok {
		return nil
	}
	vi, _, found := c.tree.RecGetVar(c.scope, ident.Name)
	if !found {
		similar := c.tree.SimilarName(c.scope, ident.Name, c.suggestionLimit(ident.Name))
		return diagnostics.NoSuchVariable(loc, c.Namespace(), ident.Name, similar)
	}
	before := vi.Type
	if f, _, ok := c.store.UnboundVar(before); ok {
		if err := c.linkChecked(f, after, loc, ident.Name); err != nil {
			return err
		}
	}
	vi.Type = after
	ident.Type = after
	c.logger.Debug("binding reunified", "name", ident.Name, "before", c.show(before), "after", c.show(after))
	return nil
}
