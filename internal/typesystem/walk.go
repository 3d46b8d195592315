package typesystem

// children returns the direct type and type-parameter components of t.
// Free variables are leaves; following their links is the Store's job.
func children(t Type) ([]Type, []TyParam) {
	switch t := t.(type) {
	case TPoly:
		return nil, t.Params
	case TRefinement:
		var params []TyParam
		for _, p := range t.Preds {
			params = append(params, predParams(p)...)
		}
		return []Type{t.Base}, params
	case TRef:
		return []Type{t.Inner}, nil
	case TRefMut:
		if t.After != nil {
			return []Type{t.Before, t.After}, nil
		}
		return []Type{t.Before}, nil
	case TAnd:
		return []Type{t.L, t.R}, nil
	case TOr:
		return []Type{t.L, t.R}, nil
	case TProj:
		return []Type{t.Lhs}, nil
	case TSubr:
		var out []Type
		for _, p := range t.AllParams() {
			out = append(out, p.Type)
			if p.Default != nil {
				out = append(out, p.Default)
			}
		}
		return append(out, t.Return), nil
	case TForall:
		out := make([]Type, 0, len(t.Bounds)+1)
		for _, b := range t.Bounds {
			out = append(out, b.Type)
		}
		return append(out, t.Body), nil
	case TRecord:
		out := make([]Type, 0, len(t.Fields))
		for _, k := range t.FieldNames() {
			out = append(out, t.Fields[k])
		}
		return out, nil
	}
	return nil, nil
}

func paramChildren(p TyParam) ([]Type, []TyParam) {
	switch p := p.(type) {
	case TPType:
		return []Type{p.Type}, nil
	case TPBinOp:
		return nil, []TyParam{p.L, p.R}
	case TPUnaryOp:
		return nil, []TyParam{p.Val}
	}
	return nil, nil
}

func predParams(p Predicate) []TyParam {
	switch p := p.(type) {
	case PredCmp:
		return []TyParam{p.Rhs}
	case PredAnd:
		return append(predParams(p.L), predParams(p.R)...)
	case PredOr:
		return append(predParams(p.L), predParams(p.R)...)
	}
	return nil
}

// MapType rebuilds t bottom-up, replacing every sub-tree for which f
// returns true. Params are rebuilt with mapParam when it is not nil.
func MapType(t Type, f func(Type) (Type, bool), mapParam func(TyParam) (TyParam, bool)) Type {
	if t == nil {
		return nil
	}
	if r, ok := f(t); ok {
		return r
	}
	rec := func(x Type) Type { return MapType(x, f, mapParam) }
	recP := func(p TyParam) TyParam { return MapParam(p, f, mapParam) }
	switch t := t.(type) {
	case TPoly:
		params := make([]TyParam, len(t.Params))
		for i, p := range t.Params {
			params[i] = recP(p)
		}
		return TPoly{Name: t.Name, Params: params}
	case TRefinement:
		preds := make([]Predicate, len(t.Preds))
		for i, p := range t.Preds {
			preds[i] = mapPred(p, recP)
		}
		return TRefinement{Var: t.Var, Base: rec(t.Base), Preds: preds}
	case TRef:
		return TRef{Inner: rec(t.Inner)}
	case TRefMut:
		out := TRefMut{Before: rec(t.Before)}
		if t.After != nil {
			out.After = rec(t.After)
		}
		return out
	case TAnd:
		return TAnd{L: rec(t.L), R: rec(t.R)}
	case TOr:
		return TOr{L: rec(t.L), R: rec(t.R)}
	case TProj:
		return TProj{Lhs: rec(t.Lhs), Rhs: t.Rhs}
	case TSubr:
		mp := func(p ParamTy) ParamTy {
			out := ParamTy{Name: p.Name, Type: rec(p.Type)}
			if p.Default != nil {
				out.Default = rec(p.Default)
			}
			return out
		}
		out := TSubr{Kind: t.Kind, Return: rec(t.Return)}
		for _, p := range t.NonDefault {
			out.NonDefault = append(out.NonDefault, mp(p))
		}
		if t.Var != nil {
			v := mp(*t.Var)
			out.Var = &v
		}
		for _, p := range t.Defaults {
			out.Defaults = append(out.Defaults, mp(p))
		}
		return out
	case TForall:
		bounds := make([]Bound, len(t.Bounds))
		for i, b := range t.Bounds {
			bounds[i] = Bound{Kind: b.Kind, Name: b.Name, Type: rec(b.Type)}
		}
		return TForall{Bounds: bounds, Body: rec(t.Body)}
	case TRecord:
		fields := make(map[string]Type, len(t.Fields))
		for k, v := range t.Fields {
			fields[k] = rec(v)
		}
		return TRecord{Fields: fields}
	}
	return t
}

// MapParam is MapType for type parameters.
func MapParam(p TyParam, f func(Type) (Type, bool), mapParam func(TyParam) (TyParam, bool)) TyParam {
	if p == nil {
		return nil
	}
	if mapParam != nil {
		if r, ok := mapParam(p); ok {
			return r
		}
	}
	recP := func(x TyParam) TyParam { return MapParam(x, f, mapParam) }
	switch p := p.(type) {
	case TPType:
		return TPType{Type: MapType(p.Type, f, mapParam)}
	case TPBinOp:
		return TPBinOp{Op: p.Op, L: recP(p.L), R: recP(p.R)}
	case TPUnaryOp:
		return TPUnaryOp{Op: p.Op, Val: recP(p.Val)}
	}
	return p
}

func mapPred(p Predicate, f func(TyParam) TyParam) Predicate {
	switch p := p.(type) {
	case PredCmp:
		return PredCmp{Op: p.Op, Var: p.Var, Rhs: f(p.Rhs)}
	case PredAnd:
		return PredAnd{L: mapPred(p.L, f), R: mapPred(p.R, f)}
	case PredOr:
		return PredOr{L: mapPred(p.L, f), R: mapPred(p.R, f)}
	}
	return p
}
