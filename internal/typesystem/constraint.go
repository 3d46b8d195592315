package typesystem

import (
	"fmt"
	"math"
)

// Level is the generalization depth of a free variable. Lower is more global.
type Level int

const (
	TopLevel     Level = 1
	GenericLevel Level = math.MaxInt
)

// Cyclicity records whether a variable's bound refers back to the variable.
type Cyclicity int

const (
	NotCyclic Cyclicity = iota
	SubCyclic
	SuperCyclic
	BothCyclic
)

func (c Cyclicity) IsCyclic() bool { return c != NotCyclic }

func (c Cyclicity) IsSuperCyclic() bool { return c == SuperCyclic || c == BothCyclic }

// Combine joins two cyclicities. NotCyclic is the identity and any two
// different cyclic tags give BothCyclic.
func (c Cyclicity) Combine(other Cyclicity) Cyclicity {
	switch {
	case c == NotCyclic:
		return other
	case other == NotCyclic:
		return c
	case c == other:
		return c
	}
	return BothCyclic
}

func (c Cyclicity) String() string {
	switch c {
	case SubCyclic:
		return "Sub"
	case SuperCyclic:
		return "Super"
	case BothCyclic:
		return "Both"
	}
	return "Not"
}

type ConstraintKind int

const (
	Uninited ConstraintKind = iota
	Sandwiched
	TypeOf
)

// Constraint is what is known about an unbound variable.
type Constraint struct {
	kind      ConstraintKind
	sub, sup  Type
	typ       Type
	cyclicity Cyclicity
}

// NewSandwiched constrains a variable to sub <: ?T <: sup.
func NewSandwiched(sub, sup Type, cyc Cyclicity) Constraint {
	return Constraint{kind: Sandwiched, sub: sub, sup: sup, cyclicity: cyc}
}

func NewSubtypeOf(sup Type, cyc Cyclicity) Constraint {
	return NewSandwiched(Never, sup, cyc)
}

func NewSupertypeOf(sub Type, cyc Cyclicity) Constraint {
	return NewSandwiched(sub, Obj, cyc)
}

// NewTypeOf constrains the values of a variable to have type t.
// A variable of type Type is a plain type variable, Never <: ?T <: Obj.
func NewTypeOf(t Type) Constraint {
	if m, ok := t.(TMono); ok && m == TypeT {
		return NewSandwiched(Never, Obj, NotCyclic)
	}
	return Constraint{kind: TypeOf, typ: t}
}

func NewUninited() Constraint { return Constraint{kind: Uninited} }

func (c Constraint) Kind() ConstraintKind { return c.kind }

func (c Constraint) IsUninited() bool { return c.kind == Uninited }

func (c Constraint) Sub() (Type, bool) {
	if c.kind != Sandwiched {
		return nil, false
	}
	return c.sub, true
}

func (c Constraint) Sup() (Type, bool) {
	if c.kind != Sandwiched {
		return nil, false
	}
	return c.sup, true
}

func (c Constraint) SubSup() (Type, Type, bool) {
	if c.kind != Sandwiched {
		return nil, nil, false
	}
	return c.sub, c.sup, true
}

// TypeOfType returns the type of the variable's values. Sandwiched(Never, Obj)
// counts as TypeOf(Type).
func (c Constraint) TypeOfType() (Type, bool) {
	switch c.kind {
	case TypeOf:
		return c.typ, true
	case Sandwiched:
		if IsNever(c.sub) && IsObj(c.sup) {
			return TypeT, true
		}
	}
	return nil, false
}

func (c Constraint) Cyclicity() Cyclicity {
	if c.kind != Sandwiched {
		return NotCyclic
	}
	return c.cyclicity
}

func (c Constraint) WithCyclicity(cyc Cyclicity) Constraint {
	if c.kind == Sandwiched {
		c.cyclicity = cyc
	}
	return c
}

func (c Constraint) mapTypes(f func(Type) Type) Constraint {
	switch c.kind {
	case Sandwiched:
		c.sub = f(c.sub)
		c.sup = f(c.sup)
	case TypeOf:
		c.typ = f(c.typ)
	}
	return c
}

func (c Constraint) String() string {
	switch c.kind {
	case Sandwiched:
		switch {
		case IsNever(c.sub) && IsObj(c.sup):
			return ": Type"
		case IsNever(c.sub):
			return fmt.Sprintf("<: %s", c.sup)
		case IsObj(c.sup):
			return fmt.Sprintf(":> %s", c.sub)
		}
		return fmt.Sprintf(":> %s, <: %s", c.sub, c.sup)
	case TypeOf:
		return fmt.Sprintf(": %s", c.typ)
	}
	return "<uninited>"
}
