package typesystem

import (
	"fmt"

	"github.com/funvibe/typecore/internal/diagnostics"
)

type FreeState int

const (
	Unbound FreeState = iota
	NamedUnbound
	Linked
	UndoableLinked
)

// FreeKind is the state of one free-variable cell.
type FreeKind[T any] struct {
	State      FreeState
	ID         int
	Name       string
	Level      Level
	Constraint Constraint
	// Link is set for Linked and UndoableLinked cells.
	Link T
	// Previous is the state an UndoableLinked cell returns to on undo.
	Previous *FreeKind[T]
}

func (k FreeKind[T]) IsLinked() bool {
	return k.State == Linked || k.State == UndoableLinked
}

func (k FreeKind[T]) IsUnbound() bool {
	return k.State == Unbound || k.State == NamedUnbound
}

func (k FreeKind[T]) String() string {
	name := k.Name
	if name == "" {
		name = fmt.Sprintf("?%d", k.ID)
	}
	switch k.State {
	case Linked:
		return fmt.Sprintf("%s => %v", name, k.Link)
	case UndoableLinked:
		return fmt.Sprintf("%s ~> %v", name, k.Link)
	}
	return fmt.Sprintf("%s(%s)[%d]", name, k.Constraint, k.Level)
}

type journalEntry[T any] struct {
	id   int
	prev FreeKind[T]
}

// arena owns the cells of one kind. Ids are 1-based indexes.
type arena[T any] struct {
	cells   []FreeKind[T]
	journal []journalEntry[T]
}

func (a *arena[T]) fresh(name string, level Level, c Constraint) int {
	id := len(a.cells) + 1
	state := Unbound
	if name != "" {
		state = NamedUnbound
	}
	a.cells = append(a.cells, FreeKind[T]{State: state, ID: id, Name: name, Level: level, Constraint: c})
	return id
}

func (a *arena[T]) get(id int) *FreeKind[T] {
	if id < 1 || id > len(a.cells) {
		diagnostics.Invariantf("unknown free variable ?%d", id)
	}
	return &a.cells[id-1]
}

func (a *arena[T]) set(id int, k FreeKind[T], record bool) {
	cell := a.get(id)
	if record {
		a.journal = append(a.journal, journalEntry[T]{id: id, prev: *cell})
	}
	*cell = k
}

func (a *arena[T]) rollback(pos int) {
	for i := len(a.journal) - 1; i >= pos; i-- {
		e := a.journal[i]
		a.cells[e.id-1] = e.prev
	}
	a.journal = a.journal[:pos]
}

func (a *arena[T]) undoableLink(id int, to T, linkedToSelf, record bool) {
	cell := a.get(id)
	if linkedToSelf {
		diagnostics.Invariantf("?%d: link to self", id)
	}
	if cell.State == UndoableLinked {
		diagnostics.Invariantf("?%d: speculative link already pending", id)
	}
	prev := *cell
	a.set(id, FreeKind[T]{
		State:    UndoableLinked,
		ID:       cell.ID,
		Name:     cell.Name,
		Level:    cell.Level,
		Link:     to,
		Previous: &prev,
	}, record)
}

func (a *arena[T]) undo(id int, record bool) {
	cell := a.get(id)
	if cell.State != UndoableLinked || cell.Previous == nil {
		diagnostics.Invariantf("?%d: cannot undo a cell that is not speculatively linked", id)
	}
	a.set(id, *cell.Previous, record)
}
