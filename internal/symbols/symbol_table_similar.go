package symbols

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

var similarAliases = map[string]string{
	"true":  "True",
	"false": "False",
	"nil":   "None",
	"null":  "None",
	"int":   "Int",
	"nat":   "Nat",
	"str":   "Str",
	"bool":  "Bool",
	"float": "Float",
}

// SimilarName suggests a visible binding close to name, or "" when none is
// within limit edits.
func (t *Tree) SimilarName(from ScopeID, name string, limit int) string {
	if alias, ok := similarAliases[name]; ok {
		return alias
	}
	var names []string
	t.Walk(from, func(s *Scope) bool {
		names = append(names, t.scopeNames(s.ID)...)
		return false
	})
	return ClosestName(name, names, limit)
}

// SimilarAttr suggests a member of a single scope close to name.
func (t *Tree) SimilarAttr(id ScopeID, name string, limit int) string {
	return ClosestName(name, t.scopeNames(id), limit)
}

func (t *Tree) scopeNames(id ScopeID) []string {
	s := t.Get(id)
	names := append(sortedKeys(s.Locals), sortedKeys(s.Decls)...)
	for _, p := range s.Params {
		names = append(names, p.Name)
	}
	for _, defs := range s.MethodsList {
		ms := t.Get(defs.Scope)
		names = append(names, sortedKeys(ms.Locals)...)
		names = append(names, sortedKeys(ms.Decls)...)
	}
	return names
}

// ClosestName returns the candidate with the smallest edit distance to
// name, ties broken lexically. Exact matches are skipped.
func ClosestName(name string, candidates []string, limit int) string {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	best, bestDist := "", limit+1
	for _, c := range sorted {
		if c == name {
			continue
		}
		if d := levenshtein.ComputeDistance(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
