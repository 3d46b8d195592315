package analyzer

import (
	"github.com/funvibe/typecore/internal/typesystem"
)

// EvalTParams resolves the links in t, computes type-level arithmetic
// over known values and replaces projections that can be resolved.
func (c *Checker) EvalTParams(t typesystem.Type) typesystem.Type {
	return c.evalTParams(t, 0)
}

func (c *Checker) evalTParams(t typesystem.Type, depth int) typesystem.Type {
	if depth > maxCompareDepth {
		return t
	}
	t = c.store.Resolve(t)
	return typesystem.MapType(t, func(x typesystem.Type) (typesystem.Type, bool) {
		p, ok := x.(typesystem.TProj)
		if !ok {
			return nil, false
		}
		lhs := c.evalTParams(p.Lhs, depth+1)
		if r, ok := c.EvalProj(lhs, p.Rhs); ok {
			return c.evalTParams(r, depth+1), true
		}
		return typesystem.TProj{Lhs: lhs, Rhs: p.Rhs}, true
	}, func(p typesystem.TyParam) (typesystem.TyParam, bool) {
		switch p.(type) {
		case typesystem.TPBinOp, typesystem.TPUnaryOp:
			out, _ := c.evalParam(p)
			return out, true
		}
		return nil, false
	})
}

// EvalParam evaluates a type parameter as far as its operands are known.
func (c *Checker) EvalParam(p typesystem.TyParam) typesystem.TyParam {
	out, _ := c.evalParam(p)
	return out
}

// evalParam also reports whether evaluation changed p.
func (c *Checker) evalParam(p typesystem.TyParam) (typesystem.TyParam, bool) {
	p = c.store.ResolveParam(p)
	var out typesystem.TyParam
	switch x := p.(type) {
	case typesystem.TPBinOp:
		l, _ := c.evalParam(x.L)
		r, _ := c.evalParam(x.R)
		out = typesystem.TPBinOp{Op: x.Op, L: l, R: r}
		lv, lok := l.(typesystem.TPValue)
		rv, rok := r.(typesystem.TPValue)
		if lok && rok {
			if v, ok := typesystem.EvalBinOp(x.Op, lv.Value, rv.Value); ok {
				out = typesystem.ValueParam(v)
			}
		}
	case typesystem.TPUnaryOp:
		v, _ := c.evalParam(x.Val)
		out = typesystem.TPUnaryOp{Op: x.Op, Val: v}
		if vv, ok := v.(typesystem.TPValue); ok {
			if r, ok := typesystem.EvalUnaryOp(x.Op, vv.Value); ok {
				out = typesystem.ValueParam(r)
			}
		}
	case typesystem.TPType:
		out = typesystem.TypeParam(c.EvalTParams(x.Type))
	default:
		return p, false
	}
	return out, !c.store.EqualParam(p, out)
}

// EvalProj resolves the associated constant rhs of lhs. It reports false
// when no implementation defines it yet.
func (c *Checker) EvalProj(lhs typesystem.Type, rhs string) (typesystem.Type, bool) {
	return c.evalProj(lhs, rhs, nil, 0)
}

func (c *Checker) evalProj(lhs typesystem.Type, rhs string, trait typesystem.Type, depth int) (typesystem.Type, bool) {
	if depth > maxCompareDepth {
		return nil, false
	}
	lhs = c.store.Deref(lhs)
	if _, cell, ok := c.store.UnboundVar(lhs); ok {
		sub, sup, _ := bounds(cell)
		if !typesystem.IsNever(sub) {
			if typesystem.IsObj(sup) {
				sup = nil
			}
			return c.evalProj(sub, rhs, sup, depth+1)
		}
		cands := c.projectionCandidates(lhs)
		if len(cands) != 1 {
			return nil, false
		}
		return c.evalProj(cands[0].SubType, rhs, cands[0].SupTrait, depth+1)
	}
	ctxs, ok := c.NominalSupertypeContexts(lhs)
	if !ok {
		return nil, false
	}
	for _, ctx := range ctxs {
		scope := c.tree.Get(ctx.Scope)
		s := typesystem.NewSubst()
		if scope.Self != nil {
			s = c.declSubst(scope.Self, ctx.Type)
		}
		if trait == nil {
			if v, ok := scope.Consts[rhs]; ok {
				if t, ok := paramAsType(v.Apply(s)); ok {
					return t, true
				}
			}
		}
		for _, defs := range scope.MethodsList {
			if trait != nil && (defs.ImplTrait == nil || !c.implMatches(defs.ImplTrait.Apply(s), trait)) {
				continue
			}
			if v, ok := c.tree.Get(defs.Scope).Consts[rhs]; ok {
				if t, ok := paramAsType(v.Apply(s)); ok {
					return t, true
				}
			}
		}
	}
	return nil, false
}

// implMatches reports whether an implemented trait can be the wanted one.
func (c *Checker) implMatches(impl, want typesystem.Type) bool {
	want = c.store.Deref(want)
	if typesystem.QualName(impl) != typesystem.QualName(want) {
		return false
	}
	if _, ok := want.(typesystem.TPoly); !ok {
		return true
	}
	return c.paramsRelated(impl, want, 0)
}

func paramAsType(p typesystem.TyParam) (typesystem.Type, bool) {
	if t, ok := p.(typesystem.TPType); ok {
		return t.Type, true
	}
	return nil, false
}
