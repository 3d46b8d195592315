package symbols

import (
	"sort"

	"github.com/funvibe/typecore/internal/typesystem"
)

// RecGetMonoType finds a mono type by name from `from` outward.
func (t *Tree) RecGetMonoType(from ScopeID, name string) (TypeDef, bool) {
	var out TypeDef
	found := t.Walk(from, func(s *Scope) bool {
		td, ok := s.MonoTypes[name]
		if ok {
			out = td
		}
		return ok
	})
	return out, found
}

func (t *Tree) RecGetPolyType(from ScopeID, name string) (TypeDef, bool) {
	var out TypeDef
	found := t.Walk(from, func(s *Scope) bool {
		td, ok := s.PolyTypes[name]
		if ok {
			out = td
		}
		return ok
	})
	return out, found
}

// RecGetType finds a mono or poly type by name; the nearest scope wins.
func (t *Tree) RecGetType(from ScopeID, name string) (TypeDef, bool) {
	var out TypeDef
	found := t.Walk(from, func(s *Scope) bool {
		if td, ok := s.MonoTypes[name]; ok {
			out = td
			return true
		}
		if td, ok := s.PolyTypes[name]; ok {
			out = td
			return true
		}
		return false
	})
	return out, found
}

func (t *Tree) RecGetConst(from ScopeID, name string) (typesystem.TyParam, bool) {
	var out typesystem.TyParam
	found := t.Walk(from, func(s *Scope) bool {
		c, ok := s.Consts[name]
		if ok {
			out = c
		}
		return ok
	})
	return out, found
}

// RecGetPatches lists the patches visible from `from`, nearest scope first.
func (t *Tree) RecGetPatches(from ScopeID) []Patch {
	var out []Patch
	t.Walk(from, func(s *Scope) bool {
		for _, name := range sortedKeys(s.Patches) {
			out = append(out, s.Patches[name])
		}
		return false
	})
	return out
}

// CurrentScopeVar looks a name up in one scope: locals, declarations,
// parameters, then the attached methods scopes.
func (t *Tree) CurrentScopeVar(id ScopeID, name string) (*VarInfo, bool) {
	s := t.Get(id)
	if vi, ok := s.Locals[name]; ok {
		return vi, true
	}
	if vi, ok := s.Decls[name]; ok {
		return vi, true
	}
	if vi, ok := s.Param(name); ok {
		return vi, true
	}
	for _, defs := range s.MethodsList {
		ms := t.Get(defs.Scope)
		if vi, ok := ms.Locals[name]; ok {
			return vi, true
		}
		if vi, ok := ms.Decls[name]; ok {
			return vi, true
		}
	}
	return nil, false
}

// RecGetVar walks outward for a binding and reports the scope it was found in.
func (t *Tree) RecGetVar(from ScopeID, name string) (*VarInfo, ScopeID, bool) {
	var vi *VarInfo
	at := NoScope
	found := t.Walk(from, func(s *Scope) bool {
		v, ok := t.CurrentScopeVar(s.ID, name)
		if ok {
			vi, at = v, s.ID
		}
		return ok
	})
	return vi, at, found
}

// RecGetTraitImpls returns the implementations of a trait visible from
// `from`. Scopes do not shadow implementations; results accumulate.
func (t *Tree) RecGetTraitImpls(from ScopeID, traitName string) *TraitImplSet {
	out := NewTraitImplSet()
	t.Walk(from, func(s *Scope) bool {
		if impls, ok := s.TraitImpls[traitName]; ok {
			out.InsertSet(impls)
		}
		return false
	})
	return out
}

// AllTraitImpls returns every implementation visible from `from`.
func (t *Tree) AllTraitImpls(from ScopeID) *TraitImplSet {
	out := NewTraitImplSet()
	t.Walk(from, func(s *Scope) bool {
		for _, impls := range s.TraitImpls {
			out.InsertSet(impls)
		}
		return false
	})
	return out
}

// RecGetMethodCandidates returns the definers of a method name from the
// nearest scope that indexes it, traits before classes.
func (t *Tree) RecGetMethodCandidates(from ScopeID, name string) []MethodType {
	var out []MethodType
	t.Walk(from, func(s *Scope) bool {
		if cands, ok := s.MethodToTraits[name]; ok && len(cands) > 0 {
			out = cands
			return true
		}
		if cands, ok := s.MethodToClasses[name]; ok && len(cands) > 0 {
			out = cands
			return true
		}
		return false
	})
	return out
}

// SortedTraitImpls returns the set's members ordered by hash.
func SortedTraitImpls(s *TraitImplSet) []TraitInstance {
	out := s.Slice()
	sort.Slice(out, func(i, j int) bool { return out[i].Hash() < out[j].Hash() })
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
