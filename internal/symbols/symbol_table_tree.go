package symbols

import (
	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/diagnostics"
)

// Tree is the arena of all scopes of a compilation. Scope 0 is the builtin
// root; module scopes have no parent and fall back to the root.
type Tree struct {
	scopes   []*Scope
	maxDepth int
}

// NewTree creates a tree holding only the empty builtin root.
// maxDepth bounds outward walks; zero selects the default.
func NewTree(maxDepth int) *Tree {
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxScopeDepth
	}
	t := &Tree{maxDepth: maxDepth}
	t.scopes = append(t.scopes, newScope(RootID, config.BuiltinsNamespace, KindBuiltins, NoScope))
	return t
}

func (t *Tree) Root() *Scope { return t.scopes[RootID] }

func (t *Tree) Len() int { return len(t.scopes) }

func (t *Tree) Get(id ScopeID) *Scope {
	if id < 0 || int(id) >= len(t.scopes) {
		diagnostics.Invariantf("unknown scope %d", id)
	}
	return t.scopes[id]
}

// NewModule adds a top-level module scope.
func (t *Tree) NewModule(name string) *Scope {
	if name == "" {
		name = config.DefaultModuleNamespace
	}
	s := newScope(ScopeID(len(t.scopes)), name, KindModule, NoScope)
	t.scopes = append(t.scopes, s)
	return s
}

// NewScope adds a scope nested in parent. Its name is qualified with the
// parent's name, e.g. <module>::C::f.
func (t *Tree) NewScope(parent ScopeID, name string, kind ScopeKind) *Scope {
	p := t.Get(parent)
	qual := name
	if parent != RootID {
		qual = p.Name + "::" + name
	}
	s := newScope(ScopeID(len(t.scopes)), qual, kind, parent)
	t.scopes = append(t.scopes, s)
	return s
}

// Next returns the scope searched after id: its parent, or the builtin
// root for a parentless scope. NoScope ends the chain.
func (t *Tree) Next(id ScopeID) ScopeID {
	s := t.Get(id)
	if s.Parent != NoScope {
		return s.Parent
	}
	if id != RootID {
		return RootID
	}
	return NoScope
}

// Walk calls fn on id and each outer scope until fn returns true or the
// chain ends. It reports whether fn stopped the walk.
func (t *Tree) Walk(id ScopeID, fn func(*Scope) bool) bool {
	for depth := 0; id != NoScope; depth++ {
		if depth > t.maxDepth {
			diagnostics.Invariantf("scope chain from %q exceeds %d scopes", t.Get(id).Name, t.maxDepth)
		}
		if fn(t.Get(id)) {
			return true
		}
		id = t.Next(id)
	}
	return false
}

// Ancestors returns id followed by every outer scope.
func (t *Tree) Ancestors(id ScopeID) []ScopeID {
	var out []ScopeID
	t.Walk(id, func(s *Scope) bool {
		out = append(out, s.ID)
		return false
	})
	return out
}

// ModuleOf returns the module enclosing id, or NoScope for scopes outside
// any module.
func (t *Tree) ModuleOf(id ScopeID) ScopeID {
	for _, a := range t.Ancestors(id) {
		if t.Get(a).Kind == KindModule {
			return a
		}
	}
	return NoScope
}
