package typesystem

// Equal reports structural identity of two types after resolving links.
// Unbound variables are equal only to themselves.
func (s *Store) Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	a, b = s.Deref(a), s.Deref(b)
	switch x := a.(type) {
	case TMono:
		y, ok := b.(TMono)
		return ok && x.Name == y.Name
	case TFree:
		y, ok := b.(TFree)
		return ok && x.ID == y.ID
	case TQVar:
		y, ok := b.(TQVar)
		return ok && x.Name == y.Name
	case TPoly:
		y, ok := b.(TPoly)
		if !ok || x.Name != y.Name || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if !s.EqualParam(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return true
	case TRefinement:
		y, ok := b.(TRefinement)
		if !ok || !s.Equal(x.Base, y.Base) || len(x.Preds) != len(y.Preds) {
			return false
		}
		if xv, ok := x.EnumValues(); ok {
			yv, ok := y.EnumValues()
			return ok && sameValueSet(xv, yv)
		}
		if x.Var != y.Var {
			return false
		}
		for i := range x.Preds {
			if mapPred(x.Preds[i], s.ResolveParam).String() != mapPred(y.Preds[i], s.ResolveParam).String() {
				return false
			}
		}
		return true
	case TRef:
		y, ok := b.(TRef)
		return ok && s.Equal(x.Inner, y.Inner)
	case TRefMut:
		y, ok := b.(TRefMut)
		return ok && s.Equal(x.Before, y.Before) && s.Equal(x.After, y.After)
	case TAnd:
		y, ok := b.(TAnd)
		return ok && ((s.Equal(x.L, y.L) && s.Equal(x.R, y.R)) || (s.Equal(x.L, y.R) && s.Equal(x.R, y.L)))
	case TOr:
		y, ok := b.(TOr)
		return ok && ((s.Equal(x.L, y.L) && s.Equal(x.R, y.R)) || (s.Equal(x.L, y.R) && s.Equal(x.R, y.L)))
	case TProj:
		y, ok := b.(TProj)
		return ok && x.Rhs == y.Rhs && s.Equal(x.Lhs, y.Lhs)
	case TSubr:
		y, ok := b.(TSubr)
		if !ok || x.Kind != y.Kind || len(x.NonDefault) != len(y.NonDefault) ||
			len(x.Defaults) != len(y.Defaults) || (x.Var == nil) != (y.Var == nil) {
			return false
		}
		for i := range x.NonDefault {
			if !s.Equal(x.NonDefault[i].Type, y.NonDefault[i].Type) {
				return false
			}
		}
		for i := range x.Defaults {
			if x.Defaults[i].Name != y.Defaults[i].Name || !s.Equal(x.Defaults[i].Type, y.Defaults[i].Type) {
				return false
			}
		}
		if x.Var != nil && !s.Equal(x.Var.Type, y.Var.Type) {
			return false
		}
		return s.Equal(x.Return, y.Return)
	case TForall:
		y, ok := b.(TForall)
		if !ok || len(x.Bounds) != len(y.Bounds) {
			return false
		}
		for i := range x.Bounds {
			bx, by := x.Bounds[i], y.Bounds[i]
			if bx.Kind != by.Kind || bx.Name != by.Name || !s.Equal(bx.Type, by.Type) {
				return false
			}
		}
		return s.Equal(x.Body, y.Body)
	case TRecord:
		y, ok := b.(TRecord)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for k, xt := range x.Fields {
			yt, ok := y.Fields[k]
			if !ok || !s.Equal(xt, yt) {
				return false
			}
		}
		return true
	}
	return false
}

// EqualParam reports structural identity of two type parameters.
func (s *Store) EqualParam(a, b TyParam) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	a, b = s.DerefParam(a), s.DerefParam(b)
	switch x := a.(type) {
	case TPType:
		y, ok := b.(TPType)
		return ok && s.Equal(x.Type, y.Type)
	case TPValue:
		y, ok := b.(TPValue)
		return ok && x.Value == y.Value
	case TPFree:
		y, ok := b.(TPFree)
		return ok && x.ID == y.ID
	case TPQVar:
		y, ok := b.(TPQVar)
		return ok && x.Name == y.Name
	case TPBinOp:
		y, ok := b.(TPBinOp)
		return ok && x.Op == y.Op && s.EqualParam(x.L, y.L) && s.EqualParam(x.R, y.R)
	case TPUnaryOp:
		y, ok := b.(TPUnaryOp)
		return ok && x.Op == y.Op && s.EqualParam(x.Val, y.Val)
	}
	return false
}

func sameValueSet(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for _, v := range a {
		found := false
		for _, w := range b {
			if v == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
