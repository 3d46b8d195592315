package typesystem

import (
	"fmt"
	"strconv"

	"github.com/funvibe/typecore/internal/config"
)

type ValueKind int

const (
	NoneValueKind ValueKind = iota
	IntValueKind
	StrValueKind
	BoolValueKind
)

// Value is a compile-time constant usable as a type parameter.
type Value struct {
	Kind ValueKind
	Int  int64
	Str  string
	Bool bool
}

func IntValue(i int64) Value  { return Value{Kind: IntValueKind, Int: i} }
func StrValue(s string) Value { return Value{Kind: StrValueKind, Str: s} }
func BoolValue(b bool) Value  { return Value{Kind: BoolValueKind, Bool: b} }
func NoneValue() Value        { return Value{Kind: NoneValueKind} }

func (v Value) String() string {
	switch v.Kind {
	case IntValueKind:
		return strconv.FormatInt(v.Int, 10)
	case StrValueKind:
		return strconv.Quote(v.Str)
	case BoolValueKind:
		if v.Bool {
			return "True"
		}
		return "False"
	}
	return "None"
}

// Class returns the most specific builtin class of the value.
func (v Value) Class() Type {
	switch v.Kind {
	case IntValueKind:
		if v.Int >= 0 {
			return Nat
		}
		return Int
	case StrValueKind:
		return Str
	case BoolValueKind:
		return Bool
	}
	return NoneType
}

// TyParam is a parameter of a polymorphic type: a type, a constant value,
// a free parameter variable or an expression over them.
type TyParam interface {
	String() string
	Apply(Subst) TyParam
	QuantifiedVars() []string
}

type TPType struct {
	Type Type
}

func TypeParam(t Type) TPType { return TPType{Type: t} }

func (p TPType) String() string           { return p.Type.String() }
func (p TPType) Apply(s Subst) TyParam    { return TPType{Type: p.Type.Apply(s)} }
func (p TPType) QuantifiedVars() []string { return p.Type.QuantifiedVars() }

type TPValue struct {
	Value Value
}

func ValueParam(v Value) TPValue { return TPValue{Value: v} }

func (p TPValue) String() string           { return p.Value.String() }
func (p TPValue) Apply(Subst) TyParam      { return p }
func (p TPValue) QuantifiedVars() []string { return nil }

// TPFree is a free type-parameter variable, stored in the Store's param arena.
type TPFree struct {
	ID int
}

func (p TPFree) String() string {
	if config.IsTestMode {
		return "?_"
	}
	return fmt.Sprintf("?%d", p.ID)
}

func (p TPFree) Apply(Subst) TyParam      { return p }
func (p TPFree) QuantifiedVars() []string { return nil }

// TPQVar is a quantified value parameter, e.g. N in Array(T, N).
type TPQVar struct {
	Name string
}

func (p TPQVar) String() string { return p.Name }

func (p TPQVar) Apply(s Subst) TyParam {
	if r, ok := s.lookupParam(p.Name); ok {
		return r
	}
	return p
}

func (p TPQVar) QuantifiedVars() []string { return []string{p.Name} }

type OpKind int

const (
	OpAdd OpKind = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
)

var opSymbols = map[OpKind]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpMod: "%",
	OpNeg: "-",
}

func (op OpKind) String() string { return opSymbols[op] }

type TPBinOp struct {
	Op   OpKind
	L, R TyParam
}

func (p TPBinOp) String() string {
	return fmt.Sprintf("%s %s %s", p.L, p.Op, p.R)
}

func (p TPBinOp) Apply(s Subst) TyParam {
	return TPBinOp{Op: p.Op, L: p.L.Apply(s), R: p.R.Apply(s)}
}

func (p TPBinOp) QuantifiedVars() []string {
	return uniqueNames(append(p.L.QuantifiedVars(), p.R.QuantifiedVars()...))
}

type TPUnaryOp struct {
	Op  OpKind
	Val TyParam
}

func (p TPUnaryOp) String() string           { return fmt.Sprintf("%s%s", p.Op, p.Val) }
func (p TPUnaryOp) Apply(s Subst) TyParam    { return TPUnaryOp{Op: p.Op, Val: p.Val.Apply(s)} }
func (p TPUnaryOp) QuantifiedVars() []string { return p.Val.QuantifiedVars() }

// EvalBinOp computes an integer operation over two values.
func EvalBinOp(op OpKind, l, r Value) (Value, bool) {
	if l.Kind != IntValueKind || r.Kind != IntValueKind {
		if op == OpAdd && l.Kind == StrValueKind && r.Kind == StrValueKind {
			return StrValue(l.Str + r.Str), true
		}
		return Value{}, false
	}
	switch op {
	case OpAdd:
		return IntValue(l.Int + r.Int), true
	case OpSub:
		return IntValue(l.Int - r.Int), true
	case OpMul:
		return IntValue(l.Int * r.Int), true
	case OpDiv:
		if r.Int == 0 {
			return Value{}, false
		}
		return IntValue(l.Int / r.Int), true
	case OpMod:
		if r.Int == 0 {
			return Value{}, false
		}
		return IntValue(l.Int % r.Int), true
	}
	return Value{}, false
}

// EvalUnaryOp computes a unary operation over a value.
func EvalUnaryOp(op OpKind, v Value) (Value, bool) {
	if op == OpNeg && v.Kind == IntValueKind {
		return IntValue(-v.Int), true
	}
	return Value{}, false
}
