package typesystem

// Subst maps quantified variable names to their replacements.
// Types replaces TQVar, Params replaces TPQVar.
type Subst struct {
	Types  map[string]Type
	Params map[string]TyParam
}

func NewSubst() Subst {
	return Subst{Types: map[string]Type{}, Params: map[string]TyParam{}}
}

func (s Subst) BindType(name string, t Type) Subst {
	if s.Types == nil {
		s.Types = map[string]Type{}
	}
	s.Types[name] = t
	return s
}

func (s Subst) BindParam(name string, p TyParam) Subst {
	if s.Params == nil {
		s.Params = map[string]TyParam{}
	}
	s.Params[name] = p
	return s
}

func (s Subst) IsEmpty() bool {
	return len(s.Types) == 0 && len(s.Params) == 0
}

// Compose returns a substitution applying s2 first, then s1.
func (s1 Subst) Compose(s2 Subst) Subst {
	out := NewSubst()
	for k, v := range s2.Types {
		out.Types[k] = v.Apply(s1)
	}
	for k, v := range s2.Params {
		out.Params[k] = v.Apply(s1)
	}
	for k, v := range s1.Types {
		if _, ok := out.Types[k]; !ok {
			out.Types[k] = v
		}
	}
	for k, v := range s1.Params {
		if _, ok := out.Params[k]; !ok {
			out.Params[k] = v
		}
	}
	return out
}

func (s Subst) lookupType(name string) (Type, bool) {
	if t, ok := s.Types[name]; ok {
		return t, true
	}
	if p, ok := s.Params[name]; ok {
		if tp, ok := p.(TPType); ok {
			return tp.Type, true
		}
	}
	return nil, false
}

func (s Subst) lookupParam(name string) (TyParam, bool) {
	if p, ok := s.Params[name]; ok {
		return p, true
	}
	if t, ok := s.Types[name]; ok {
		return TPType{Type: t}, true
	}
	return nil, false
}

// without returns a copy of s that leaves the given names untouched.
func (s Subst) without(names []string) Subst {
	hit := false
	for _, n := range names {
		_, inT := s.Types[n]
		_, inP := s.Params[n]
		if inT || inP {
			hit = true
			break
		}
	}
	if !hit {
		return s
	}
	out := NewSubst()
	for k, v := range s.Types {
		out.Types[k] = v
	}
	for k, v := range s.Params {
		out.Params[k] = v
	}
	for _, n := range names {
		delete(out.Types, n)
		delete(out.Params, n)
	}
	return out
}
