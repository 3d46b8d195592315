package typesystem

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-set/v2"

	"github.com/funvibe/typecore/internal/diagnostics"
)

// Store is the arena of free-variable cells of one inference pass.
// Types refer to cells by id (TFree, TPFree); every mutation happens here
// and is visible to every holder of the id.
//
// A Store is not safe for concurrent use.
type Store struct {
	types  arena[Type]
	params arena[TyParam]
	marks  int
}

func NewStore() *Store {
	return &Store{}
}

// Mark is a journal position returned by Store.Mark.
type Mark struct {
	types, params int
	depth         int
}

// Mark starts recording cell mutations so they can be rolled back.
// Marks nest and must be closed in LIFO order with Commit or Rollback.
func (s *Store) Mark() Mark {
	s.marks++
	return Mark{types: len(s.types.journal), params: len(s.params.journal), depth: s.marks}
}

// Rollback restores every cell mutated since m.
func (s *Store) Rollback(m Mark) {
	s.checkMark(m)
	s.types.rollback(m.types)
	s.params.rollback(m.params)
	s.marks--
}

// Commit keeps the mutations made since m.
func (s *Store) Commit(m Mark) {
	s.checkMark(m)
	s.marks--
	if s.marks == 0 {
		s.types.journal = s.types.journal[:0]
		s.params.journal = s.params.journal[:0]
	}
}

func (s *Store) checkMark(m Mark) {
	if m.depth != s.marks {
		diagnostics.Invariantf("store mark closed out of order (mark %d, open %d)", m.depth, s.marks)
	}
}

func (s *Store) recording() bool { return s.marks > 0 }

func (s *Store) FreshType(level Level, c Constraint) TFree {
	return TFree{ID: s.types.fresh("", level, c)}
}

func (s *Store) FreshNamedType(name string, level Level, c Constraint) TFree {
	return TFree{ID: s.types.fresh(name, level, c)}
}

func (s *Store) FreshParam(level Level, c Constraint) TPFree {
	return TPFree{ID: s.params.fresh("", level, c)}
}

func (s *Store) FreshNamedParam(name string, level Level, c Constraint) TPFree {
	return TPFree{ID: s.params.fresh(name, level, c)}
}

// Len returns the number of type cells allocated so far.
func (s *Store) Len() int { return len(s.types.cells) }

// Cell returns a copy of a type cell's state.
func (s *Store) Cell(id int) FreeKind[Type] { return *s.types.get(id) }

func (s *Store) ParamCell(id int) FreeKind[TyParam] { return *s.params.get(id) }

// Snapshot is Cell under the name used by undo tests and diagnostics.
func (s *Store) Snapshot(id int) FreeKind[Type] { return s.Cell(id) }

// SameState reports whether two snapshots of a cell are identical.
func (s *Store) SameState(a, b FreeKind[Type]) bool {
	if a.State != b.State || a.ID != b.ID || a.Name != b.Name || a.Level != b.Level {
		return false
	}
	if !s.sameConstraint(a.Constraint, b.Constraint) {
		return false
	}
	if a.IsLinked() && !s.Equal(a.Link, b.Link) {
		return false
	}
	if (a.Previous == nil) != (b.Previous == nil) {
		return false
	}
	if a.Previous != nil {
		return s.SameState(*a.Previous, *b.Previous)
	}
	return true
}

func (s *Store) sameConstraint(a, b Constraint) bool {
	if a.kind != b.kind || a.cyclicity != b.cyclicity {
		return false
	}
	switch a.kind {
	case Sandwiched:
		return s.Equal(a.sub, b.sub) && s.Equal(a.sup, b.sup)
	case TypeOf:
		return s.Equal(a.typ, b.typ)
	}
	return true
}

// Deref follows the link chain of a free variable.
func (s *Store) Deref(t Type) Type {
	for steps := 0; ; steps++ {
		f, ok := t.(TFree)
		if !ok {
			return t
		}
		cell := s.types.get(f.ID)
		if !cell.IsLinked() {
			return t
		}
		if steps > len(s.types.cells) {
			diagnostics.Invariantf("link cycle through ?%d", f.ID)
		}
		t = cell.Link
	}
}

// DerefParam follows the link chain of a free type parameter. A linked
// TPType holding a free type is dereffed as well.
func (s *Store) DerefParam(p TyParam) TyParam {
	for steps := 0; ; steps++ {
		switch x := p.(type) {
		case TPFree:
			cell := s.params.get(x.ID)
			if !cell.IsLinked() {
				return p
			}
			if steps > len(s.params.cells) {
				diagnostics.Invariantf("link cycle through param ?%d", x.ID)
			}
			p = cell.Link
		case TPType:
			return TPType{Type: s.Deref(x.Type)}
		default:
			return p
		}
	}
}

// UnboundVar returns the unbound cell t refers to after deref.
func (s *Store) UnboundVar(t Type) (TFree, FreeKind[Type], bool) {
	f, ok := s.Deref(t).(TFree)
	if !ok {
		return TFree{}, FreeKind[Type]{}, false
	}
	cell := *s.types.get(f.ID)
	return f, cell, cell.IsUnbound()
}

// UnboundParam returns the unbound param cell p refers to after deref.
func (s *Store) UnboundParam(p TyParam) (TPFree, FreeKind[TyParam], bool) {
	f, ok := s.DerefParam(p).(TPFree)
	if !ok {
		return TPFree{}, FreeKind[TyParam]{}, false
	}
	cell := *s.params.get(f.ID)
	return f, cell, cell.IsUnbound()
}

// LinkedType returns the type a linked cell resolves to.
func (s *Store) LinkedType(id int) (Type, bool) {
	cell := s.types.get(id)
	if !cell.IsLinked() {
		return nil, false
	}
	return cell.Link, true
}

func (s *Store) Constraint(id int) (Constraint, bool) {
	cell := s.types.get(id)
	if !cell.IsUnbound() {
		return Constraint{}, false
	}
	return cell.Constraint, true
}

func (s *Store) ParamConstraint(id int) (Constraint, bool) {
	cell := s.params.get(id)
	if !cell.IsUnbound() {
		return Constraint{}, false
	}
	return cell.Constraint, true
}

// Level returns the level of an unbound cell, or of the linked type's
// outermost unbound variable.
func (s *Store) Level(id int) (Level, bool) {
	t := s.Deref(TFree{ID: id})
	f, ok := t.(TFree)
	if !ok {
		return s.levelIn(t)
	}
	return s.types.get(f.ID).Level, true
}

func (s *Store) levelIn(t Type) (Level, bool) {
	var min Level
	found := false
	for _, id := range s.FreeVarsOf(t) {
		if l := s.types.get(id).Level; !found || l < min {
			min, found = l, true
		}
	}
	return min, found
}

// Link resolves a cell to a type. Linking to the cell itself, or again to
// an identical type, is a no-op.
func (s *Store) Link(id int, to Type) {
	if f, ok := s.Deref(to).(TFree); ok && f.ID == id {
		return
	}
	cell := s.types.get(id)
	if cell.IsLinked() && s.Equal(cell.Link, to) {
		return
	}
	level := cell.Level
	unbound := cell.IsUnbound()
	s.types.set(id, FreeKind[Type]{State: Linked, ID: cell.ID, Name: cell.Name, Level: cell.Level, Link: to}, s.recording())
	if unbound {
		s.UpdateLevelIn(to, level)
	}
}

func (s *Store) LinkParam(id int, to TyParam) {
	if f, ok := s.DerefParam(to).(TPFree); ok && f.ID == id {
		return
	}
	cell := s.params.get(id)
	if cell.IsLinked() && s.EqualParam(cell.Link, to) {
		return
	}
	level := cell.Level
	unbound := cell.IsUnbound()
	s.params.set(id, FreeKind[TyParam]{State: Linked, ID: cell.ID, Name: cell.Name, Level: cell.Level, Link: to}, s.recording())
	if unbound {
		s.updateLevelInParam(to, level, newVisited())
	}
}

// UndoableLink links a cell speculatively. It panics when linking a cell to
// itself or when a speculative link on the cell is already pending.
func (s *Store) UndoableLink(id int, to Type) {
	cell := s.types.get(id)
	self := false
	if f, ok := s.Deref(to).(TFree); ok && f.ID == id {
		self = true
	}
	if cell.State == Linked && s.Equal(cell.Link, to) {
		self = true
	}
	s.types.undoableLink(id, to, self, s.recording())
}

// Undo restores the state a cell had before UndoableLink.
// It panics if the cell is not speculatively linked.
func (s *Store) Undo(id int) {
	s.types.undo(id, s.recording())
}

func (s *Store) UndoableLinkParam(id int, to TyParam) {
	self := false
	if f, ok := s.DerefParam(to).(TPFree); ok && f.ID == id {
		self = true
	}
	s.params.undoableLink(id, to, self, s.recording())
}

func (s *Store) UndoParam(id int) {
	s.params.undo(id, s.recording())
}

// UpdateConstraint replaces the constraint of an unbound cell.
func (s *Store) UpdateConstraint(id int, c Constraint) {
	cell := s.types.get(id)
	if !cell.IsUnbound() {
		return
	}
	next := *cell
	next.Constraint = c
	s.types.set(id, next, s.recording())
}

func (s *Store) UpdateParamConstraint(id int, c Constraint) {
	cell := s.params.get(id)
	if !cell.IsUnbound() {
		return
	}
	next := *cell
	next.Constraint = c
	s.params.set(id, next, s.recording())
}

// UpdateLevel lowers the level of an unbound cell. A higher level is
// ignored. Linked cells pass the level on to the linked type.
func (s *Store) UpdateLevel(id int, level Level) {
	s.updateLevel(id, level, newVisited())
}

func (s *Store) updateLevel(id int, level Level, v *visited) {
	if !v.types.Insert(id) {
		return
	}
	cell := s.types.get(id)
	switch cell.State {
	case Unbound, NamedUnbound:
		if level < cell.Level {
			next := *cell
			next.Level = level
			s.types.set(id, next, s.recording())
		}
	case Linked:
		s.updateLevelIn(cell.Link, level, v)
	}
}

// UpdateLevelIn lowers the level of every free variable in t.
func (s *Store) UpdateLevelIn(t Type, level Level) {
	s.updateLevelIn(t, level, newVisited())
}

func (s *Store) updateLevelIn(t Type, level Level, v *visited) {
	if f, ok := t.(TFree); ok {
		s.updateLevel(f.ID, level, v)
		return
	}
	ts, ps := children(t)
	for _, c := range ts {
		s.updateLevelIn(c, level, v)
	}
	for _, p := range ps {
		s.updateLevelInParam(p, level, v)
	}
}

func (s *Store) UpdateParamLevel(id int, level Level) {
	s.updateParamLevel(id, level, newVisited())
}

func (s *Store) updateParamLevel(id int, level Level, v *visited) {
	if !v.params.Insert(id) {
		return
	}
	cell := s.params.get(id)
	switch cell.State {
	case Unbound, NamedUnbound:
		if level < cell.Level {
			next := *cell
			next.Level = level
			s.params.set(id, next, s.recording())
		}
	case Linked:
		s.updateLevelInParam(cell.Link, level, v)
	}
}

func (s *Store) updateLevelInParam(p TyParam, level Level, v *visited) {
	if f, ok := p.(TPFree); ok {
		s.updateParamLevel(f.ID, level, v)
		return
	}
	ts, ps := paramChildren(p)
	for _, c := range ts {
		s.updateLevelIn(c, level, v)
	}
	for _, c := range ps {
		s.updateLevelInParam(c, level, v)
	}
}

// Lift raises an unbound cell's level by one and lifts its bounds.
// A linked cell lifts the linked type.
func (s *Store) Lift(id int) {
	s.lift(id, newVisited())
}

// LiftIn lifts every free variable in t.
func (s *Store) LiftIn(t Type) {
	s.liftIn(t, newVisited())
}

func (s *Store) lift(id int, v *visited) {
	if !v.types.Insert(id) {
		return
	}
	cell := s.types.get(id)
	if cell.IsLinked() {
		s.liftIn(cell.Link, v)
		return
	}
	if cell.Level != GenericLevel {
		next := *cell
		next.Level++
		s.types.set(id, next, s.recording())
	}
	c := s.types.get(id).Constraint
	c.mapTypes(func(t Type) Type {
		s.liftIn(t, v)
		return t
	})
}

func (s *Store) liftIn(t Type, v *visited) {
	if f, ok := t.(TFree); ok {
		s.lift(f.ID, v)
		return
	}
	ts, ps := children(t)
	for _, c := range ts {
		s.liftIn(c, v)
	}
	for _, p := range ps {
		s.liftInParam(p, v)
	}
}

func (s *Store) liftInParam(p TyParam, v *visited) {
	if f, ok := p.(TPFree); ok {
		if !v.params.Insert(f.ID) {
			return
		}
		cell := s.params.get(f.ID)
		if cell.IsLinked() {
			s.liftInParam(cell.Link, v)
			return
		}
		if cell.Level != GenericLevel {
			next := *cell
			next.Level++
			s.params.set(f.ID, next, s.recording())
		}
		return
	}
	ts, ps := paramChildren(p)
	for _, c := range ts {
		s.liftIn(c, v)
	}
	for _, c := range ps {
		s.liftInParam(c, v)
	}
}

type visited struct {
	types  *set.Set[int]
	params *set.Set[int]
}

func newVisited() *visited {
	return &visited{types: set.New[int](8), params: set.New[int](4)}
}

// Occurs reports whether the cell id is reachable from t through links.
// Bounds of other unbound cells are not followed.
func (s *Store) Occurs(id int, t Type) bool {
	return s.occurs(id, t, newVisited())
}

func (s *Store) occurs(id int, t Type, v *visited) bool {
	if f, ok := t.(TFree); ok {
		if f.ID == id {
			return true
		}
		if !v.types.Insert(f.ID) {
			return false
		}
		if link, ok := s.LinkedType(f.ID); ok {
			return s.occurs(id, link, v)
		}
		return false
	}
	ts, ps := children(t)
	for _, c := range ts {
		if s.occurs(id, c, v) {
			return true
		}
	}
	for _, p := range ps {
		if s.occursParam(id, p, v) {
			return true
		}
	}
	return false
}

func (s *Store) occursParam(id int, p TyParam, v *visited) bool {
	if f, ok := p.(TPFree); ok {
		if !v.params.Insert(f.ID) {
			return false
		}
		cell := s.params.get(f.ID)
		if cell.IsLinked() {
			return s.occursParam(id, cell.Link, v)
		}
		return false
	}
	ts, ps := paramChildren(p)
	for _, c := range ts {
		if s.occurs(id, c, v) {
			return true
		}
	}
	for _, c := range ps {
		if s.occursParam(id, c, v) {
			return true
		}
	}
	return false
}

// FreeVarsOf lists the unbound type cells reachable from t, in order of
// first occurrence.
func (s *Store) FreeVarsOf(t Type) []int {
	var out []int
	v := newVisited()
	var walk func(Type)
	var walkP func(TyParam)
	walk = func(t Type) {
		if f, ok := t.(TFree); ok {
			if !v.types.Insert(f.ID) {
				return
			}
			if link, ok := s.LinkedType(f.ID); ok {
				walk(link)
				return
			}
			out = append(out, f.ID)
			return
		}
		ts, ps := children(t)
		for _, c := range ts {
			walk(c)
		}
		for _, p := range ps {
			walkP(p)
		}
	}
	walkP = func(p TyParam) {
		if f, ok := p.(TPFree); ok {
			if !v.params.Insert(f.ID) {
				return
			}
			if cell := s.params.get(f.ID); cell.IsLinked() {
				walkP(cell.Link)
			}
			return
		}
		ts, ps := paramChildren(p)
		for _, c := range ts {
			walk(c)
		}
		for _, c := range ps {
			walkP(c)
		}
	}
	walk(t)
	return out
}

// FreeParamsOf lists the unbound param cells reachable from t.
func (s *Store) FreeParamsOf(t Type) []int {
	var out []int
	seen := set.New[int](4)
	resolved := s.Resolve(t)
	var walkP func(TyParam)
	var walk func(Type)
	walk = func(t Type) {
		ts, ps := children(t)
		for _, c := range ts {
			walk(c)
		}
		for _, p := range ps {
			walkP(p)
		}
	}
	walkP = func(p TyParam) {
		if f, ok := p.(TPFree); ok {
			if seen.Insert(f.ID) {
				out = append(out, f.ID)
			}
			return
		}
		ts, ps := paramChildren(p)
		for _, c := range ts {
			walk(c)
		}
		for _, c := range ps {
			walkP(c)
		}
	}
	walk(resolved)
	return out
}

// HasUnboundVar reports whether t still depends on an unresolved cell.
func (s *Store) HasUnboundVar(t Type) bool {
	return len(s.FreeVarsOf(t)) > 0 || len(s.FreeParamsOf(t)) > 0
}

// Resolve replaces every linked cell in t by what it is linked to.
func (s *Store) Resolve(t Type) Type {
	return s.resolve(t, 0)
}

func (s *Store) resolve(t Type, depth int) Type {
	if depth > len(s.types.cells)+len(s.params.cells)+1 {
		diagnostics.Invariantf("resolving %s does not terminate", t)
	}
	return MapType(t, func(x Type) (Type, bool) {
		if f, ok := x.(TFree); ok {
			if link, ok := s.LinkedType(f.ID); ok {
				return s.resolve(link, depth+1), true
			}
			return x, true
		}
		return nil, false
	}, func(p TyParam) (TyParam, bool) {
		if f, ok := p.(TPFree); ok {
			if cell := s.params.get(f.ID); cell.IsLinked() {
				return s.resolveParam(cell.Link, depth+1), true
			}
			return p, true
		}
		return nil, false
	})
}

// ResolveParam is Resolve for type parameters.
func (s *Store) ResolveParam(p TyParam) TyParam {
	return s.resolveParam(p, 0)
}

func (s *Store) resolveParam(p TyParam, depth int) TyParam {
	if f, ok := p.(TPFree); ok {
		if cell := s.params.get(f.ID); cell.IsLinked() {
			if depth > len(s.params.cells) {
				diagnostics.Invariantf("resolving %s does not terminate", p)
			}
			return s.resolveParam(cell.Link, depth+1)
		}
		return p
	}
	switch x := p.(type) {
	case TPType:
		return TPType{Type: s.resolve(x.Type, depth+1)}
	case TPBinOp:
		return TPBinOp{Op: x.Op, L: s.resolveParam(x.L, depth+1), R: s.resolveParam(x.R, depth+1)}
	case TPUnaryOp:
		return TPUnaryOp{Op: x.Op, Val: s.resolveParam(x.Val, depth+1)}
	}
	return p
}

// Format prints t with links resolved and the constraints of its unbound
// variables listed, e.g. "Array(?3) where ?3(<: Int)".
func (s *Store) Format(t Type) string {
	resolved := s.Resolve(t)
	vars := s.FreeVarsOf(resolved)
	if len(vars) == 0 {
		return resolved.String()
	}
	var parts []string
	for _, id := range vars {
		cell := s.types.get(id)
		if c := cell.Constraint; c.kind == Sandwiched && IsNever(c.sub) && IsObj(c.sup) {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", TFree{ID: id}, cell.Constraint))
	}
	if len(parts) == 0 {
		return resolved.String()
	}
	return resolved.String() + " where " + strings.Join(parts, ", ")
}
