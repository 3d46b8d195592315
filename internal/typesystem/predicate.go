package typesystem

import "fmt"

// Predicate constrains the bound variable of a refinement type.
type Predicate interface {
	String() string
	Apply(Subst) Predicate
	QuantifiedVars() []string
}

type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNotEq
	CmpGreaterEq
	CmpLessEq
)

var cmpSymbols = map[CmpOp]string{
	CmpEq:        "==",
	CmpNotEq:     "!=",
	CmpGreaterEq: ">=",
	CmpLessEq:    "<=",
}

func (op CmpOp) String() string { return cmpSymbols[op] }

// PredCmp is `Var op Rhs`.
type PredCmp struct {
	Op  CmpOp
	Var string
	Rhs TyParam
}

func (p PredCmp) String() string { return fmt.Sprintf("%s %s %s", p.Var, p.Op, p.Rhs) }

func (p PredCmp) Apply(s Subst) Predicate {
	return PredCmp{Op: p.Op, Var: p.Var, Rhs: p.Rhs.Apply(s)}
}

func (p PredCmp) QuantifiedVars() []string { return p.Rhs.QuantifiedVars() }

type PredAnd struct {
	L, R Predicate
}

func (p PredAnd) String() string          { return fmt.Sprintf("(%s and %s)", p.L, p.R) }
func (p PredAnd) Apply(s Subst) Predicate { return PredAnd{L: p.L.Apply(s), R: p.R.Apply(s)} }
func (p PredAnd) QuantifiedVars() []string {
	return uniqueNames(append(p.L.QuantifiedVars(), p.R.QuantifiedVars()...))
}

type PredOr struct {
	L, R Predicate
}

func (p PredOr) String() string          { return fmt.Sprintf("(%s or %s)", p.L, p.R) }
func (p PredOr) Apply(s Subst) Predicate { return PredOr{L: p.L.Apply(s), R: p.R.Apply(s)} }
func (p PredOr) QuantifiedVars() []string {
	return uniqueNames(append(p.L.QuantifiedVars(), p.R.QuantifiedVars()...))
}

// Holds evaluates the predicate for a concrete value of the bound variable.
// The second result is false when the predicate cannot be decided.
func Holds(p Predicate, v Value) (bool, bool) {
	switch p := p.(type) {
	case PredCmp:
		rhs, ok := p.Rhs.(TPValue)
		if !ok {
			return false, false
		}
		switch p.Op {
		case CmpEq:
			return v == rhs.Value, true
		case CmpNotEq:
			return v != rhs.Value, true
		case CmpGreaterEq, CmpLessEq:
			if v.Kind != IntValueKind || rhs.Value.Kind != IntValueKind {
				return false, false
			}
			if p.Op == CmpGreaterEq {
				return v.Int >= rhs.Value.Int, true
			}
			return v.Int <= rhs.Value.Int, true
		}
	case PredAnd:
		l, lok := Holds(p.L, v)
		r, rok := Holds(p.R, v)
		if lok && !l || rok && !r {
			return false, true
		}
		return l && r, lok && rok
	case PredOr:
		l, lok := Holds(p.L, v)
		r, rok := Holds(p.R, v)
		if lok && l || rok && r {
			return true, true
		}
		return false, lok && rok
	}
	return false, false
}
