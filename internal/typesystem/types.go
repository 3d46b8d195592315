package typesystem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/typecore/internal/config"
)

// Type is the interface for all types in our system.
type Type interface {
	String() string
	Apply(Subst) Type
	// QuantifiedVars lists quantified variable names occurring unbound in the type.
	QuantifiedVars() []string
}

// TMono is a named nominal type (e.g. Int, Str, Obj).
type TMono struct {
	Name string
}

func Mono(name string) TMono { return TMono{Name: name} }

var (
	Obj       = Mono(config.ObjTypeName)
	Never     = Mono(config.NeverTypeName)
	TypeT     = Mono(config.TypeTypeName)
	ClassT    = Mono(config.ClassTypeName)
	TraitT    = Mono(config.TraitTypeName)
	NoneType  = Mono(config.NoneTypeName)
	Bool      = Mono(config.BoolTypeName)
	Nat       = Mono(config.NatTypeName)
	Int       = Mono(config.IntTypeName)
	Float     = Mono(config.FloatTypeName)
	Str       = Mono(config.StrTypeName)
	FuncT     = Mono(config.FuncTypeName)
	ProcT     = Mono(config.ProcTypeName)
	QFuncT    = Mono(config.QuantifiedFuncTypeName)
	RecordT   = Mono(config.RecordTypeName)
	RecordTyT = Mono(config.RecordMetaTypeName)
)

func (t TMono) String() string           { return t.Name }
func (t TMono) Apply(Subst) Type         { return t }
func (t TMono) QuantifiedVars() []string { return nil }

// IsObj reports whether t is literally Obj (no deref).
func IsObj(t Type) bool {
	m, ok := t.(TMono)
	return ok && m.Name == config.ObjTypeName
}

// IsNever reports whether t is literally Never (no deref).
func IsNever(t Type) bool {
	m, ok := t.(TMono)
	return ok && m.Name == config.NeverTypeName
}

// TPoly is a parametric nominal type (e.g. Array(Int, 3)).
type TPoly struct {
	Name   string
	Params []TyParam
}

func Poly(name string, params ...TyParam) TPoly {
	return TPoly{Name: name, Params: params}
}

func (t TPoly) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s(%s)", t.Name, strings.Join(parts, ", "))
}

func (t TPoly) Apply(s Subst) Type {
	params := make([]TyParam, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Apply(s)
	}
	return TPoly{Name: t.Name, Params: params}
}

func (t TPoly) QuantifiedVars() []string {
	var out []string
	for _, p := range t.Params {
		out = append(out, p.QuantifiedVars()...)
	}
	return uniqueNames(out)
}

// ModuleType is the type of an imported module value.
func ModuleType(path string) TPoly {
	return Poly(config.ModuleTypeName, ValueParam(StrValue(path)))
}

// TQVar is a quantified type variable of a polymorphic signature.
type TQVar struct {
	Name string
}

func QVar(name string) TQVar { return TQVar{Name: name} }

func (t TQVar) String() string { return "'" + t.Name }

func (t TQVar) Apply(s Subst) Type {
	if r, ok := s.lookupType(t.Name); ok {
		return r
	}
	return t
}

func (t TQVar) QuantifiedVars() []string { return []string{t.Name} }

// TFree is a free type variable. The cell it names lives in a Store.
type TFree struct {
	ID int
}

func (t TFree) String() string {
	if config.IsTestMode {
		return "?_"
	}
	return fmt.Sprintf("?%d", t.ID)
}

func (t TFree) Apply(Subst) Type         { return t }
func (t TFree) QuantifiedVars() []string { return nil }

// TRefinement is {Var: Base | Preds...}; predicates are conjoined.
type TRefinement struct {
	Var   string
	Base  Type
	Preds []Predicate
}

// Enum builds the refinement type of a finite set of values.
func Enum(base Type, values ...Value) TRefinement {
	const v = "_"
	var pred Predicate
	for _, val := range values {
		eq := PredCmp{Op: CmpEq, Var: v, Rhs: ValueParam(val)}
		if pred == nil {
			pred = eq
		} else {
			pred = PredOr{L: pred, R: eq}
		}
	}
	r := TRefinement{Var: v, Base: base}
	if pred != nil {
		r.Preds = []Predicate{pred}
	}
	return r
}

func (t TRefinement) String() string {
	if vals, ok := t.EnumValues(); ok {
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = v.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	preds := make([]string, len(t.Preds))
	for i, p := range t.Preds {
		preds[i] = p.String()
	}
	return fmt.Sprintf("{%s: %s | %s}", t.Var, t.Base, strings.Join(preds, " and "))
}

func (t TRefinement) Apply(s Subst) Type {
	preds := make([]Predicate, len(t.Preds))
	for i, p := range t.Preds {
		preds[i] = p.Apply(s)
	}
	return TRefinement{Var: t.Var, Base: t.Base.Apply(s), Preds: preds}
}

func (t TRefinement) QuantifiedVars() []string {
	out := t.Base.QuantifiedVars()
	for _, p := range t.Preds {
		out = append(out, p.QuantifiedVars()...)
	}
	return uniqueNames(out)
}

// EnumValues returns the values of a refinement made only of equality
// alternatives, e.g. {1, 2}.
func (t TRefinement) EnumValues() ([]Value, bool) {
	if len(t.Preds) != 1 {
		return nil, false
	}
	var vals []Value
	var collect func(p Predicate) bool
	collect = func(p Predicate) bool {
		switch p := p.(type) {
		case PredCmp:
			v, ok := p.Rhs.(TPValue)
			if p.Op != CmpEq || p.Var != t.Var || !ok {
				return false
			}
			vals = append(vals, v.Value)
			return true
		case PredOr:
			return collect(p.L) && collect(p.R)
		}
		return false
	}
	if !collect(t.Preds[0]) {
		return nil, false
	}
	return vals, true
}

// TRef is an immutable reference to a value of Inner.
type TRef struct {
	Inner Type
}

func (t TRef) String() string           { return fmt.Sprintf("Ref(%s)", t.Inner) }
func (t TRef) Apply(s Subst) Type       { return TRef{Inner: t.Inner.Apply(s)} }
func (t TRef) QuantifiedVars() []string { return t.Inner.QuantifiedVars() }

// TRefMut is a mutable reference. After, when set, is the type the
// referent has once a call through this reference returns.
type TRefMut struct {
	Before Type
	After  Type
}

func (t TRefMut) String() string {
	if t.After == nil {
		return fmt.Sprintf("RefMut(%s)", t.Before)
	}
	return fmt.Sprintf("RefMut(%s ~> %s)", t.Before, t.After)
}

func (t TRefMut) Apply(s Subst) Type {
	out := TRefMut{Before: t.Before.Apply(s)}
	if t.After != nil {
		out.After = t.After.Apply(s)
	}
	return out
}

func (t TRefMut) QuantifiedVars() []string {
	out := t.Before.QuantifiedVars()
	if t.After != nil {
		out = append(out, t.After.QuantifiedVars()...)
	}
	return uniqueNames(out)
}

// TAnd is the intersection of two types.
type TAnd struct {
	L, R Type
}

func (t TAnd) String() string           { return fmt.Sprintf("%s and %s", wrapBinary(t.L), wrapBinary(t.R)) }
func (t TAnd) Apply(s Subst) Type       { return TAnd{L: t.L.Apply(s), R: t.R.Apply(s)} }
func (t TAnd) QuantifiedVars() []string { return uniqueNames(append(t.L.QuantifiedVars(), t.R.QuantifiedVars()...)) }

// TOr is the union of two types.
type TOr struct {
	L, R Type
}

func (t TOr) String() string           { return fmt.Sprintf("%s or %s", wrapBinary(t.L), wrapBinary(t.R)) }
func (t TOr) Apply(s Subst) Type       { return TOr{L: t.L.Apply(s), R: t.R.Apply(s)} }
func (t TOr) QuantifiedVars() []string { return uniqueNames(append(t.L.QuantifiedVars(), t.R.QuantifiedVars()...)) }

func wrapBinary(t Type) string {
	switch t.(type) {
	case TAnd, TOr, TSubr, TForall:
		return "(" + t.String() + ")"
	}
	return t.String()
}

// TProj is an associated member of another type, e.g. L.Output.
type TProj struct {
	Lhs Type
	Rhs string
}

func (t TProj) String() string           { return fmt.Sprintf("%s.%s", wrapBinary(t.Lhs), t.Rhs) }
func (t TProj) Apply(s Subst) Type       { return TProj{Lhs: t.Lhs.Apply(s), Rhs: t.Rhs} }
func (t TProj) QuantifiedVars() []string { return t.Lhs.QuantifiedVars() }

type SubrKind int

const (
	FuncKind SubrKind = iota
	ProcKind
)

func (k SubrKind) Arrow() string {
	if k == ProcKind {
		return "=>"
	}
	return "->"
}

func (k SubrKind) String() string {
	if k == ProcKind {
		return config.ProcTypeName
	}
	return config.FuncTypeName
}

// ParamTy is one parameter of a subroutine type. Default holds the type of
// the default-value expression and is set only for default parameters.
type ParamTy struct {
	Name    string
	Type    Type
	Default Type
}

func (p ParamTy) String() string {
	switch {
	case p.Name == "":
		return p.Type.String()
	case p.Default != nil:
		return fmt.Sprintf("%s := %s", p.Name, p.Type)
	default:
		return fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
}

func (p ParamTy) apply(s Subst) ParamTy {
	out := ParamTy{Name: p.Name, Type: p.Type.Apply(s)}
	if p.Default != nil {
		out.Default = p.Default.Apply(s)
	}
	return out
}

// TSubr is a function (Func) or procedure (Proc) type.
type TSubr struct {
	Kind       SubrKind
	NonDefault []ParamTy
	Var        *ParamTy
	Defaults   []ParamTy
	Return     Type
}

// Func builds a function type with only non-default parameters.
func Func(params []ParamTy, ret Type) TSubr {
	return TSubr{Kind: FuncKind, NonDefault: params, Return: ret}
}

// Proc builds a procedure type with only non-default parameters.
func Proc(params []ParamTy, ret Type) TSubr {
	return TSubr{Kind: ProcKind, NonDefault: params, Return: ret}
}

// Param builds a non-default parameter.
func Param(name string, t Type) ParamTy { return ParamTy{Name: name, Type: t} }

// DefaultParam builds a default parameter whose default expression has type def.
func DefaultParam(name string, t, def Type) ParamTy {
	return ParamTy{Name: name, Type: t, Default: def}
}

func (t TSubr) String() string {
	var parts []string
	for _, p := range t.NonDefault {
		parts = append(parts, p.String())
	}
	if t.Var != nil {
		parts = append(parts, "*"+t.Var.String())
	}
	for _, p := range t.Defaults {
		parts = append(parts, p.String())
	}
	return fmt.Sprintf("(%s) %s %s", strings.Join(parts, ", "), t.Kind.Arrow(), t.Return)
}

func (t TSubr) Apply(s Subst) Type {
	out := TSubr{Kind: t.Kind, Return: t.Return.Apply(s)}
	for _, p := range t.NonDefault {
		out.NonDefault = append(out.NonDefault, p.apply(s))
	}
	if t.Var != nil {
		v := t.Var.apply(s)
		out.Var = &v
	}
	for _, p := range t.Defaults {
		out.Defaults = append(out.Defaults, p.apply(s))
	}
	return out
}

func (t TSubr) QuantifiedVars() []string {
	var out []string
	for _, p := range t.AllParams() {
		out = append(out, p.Type.QuantifiedVars()...)
		if p.Default != nil {
			out = append(out, p.Default.QuantifiedVars()...)
		}
	}
	out = append(out, t.Return.QuantifiedVars()...)
	return uniqueNames(out)
}

// AllParams returns non-default, variadic and default parameters in order.
func (t TSubr) AllParams() []ParamTy {
	out := make([]ParamTy, 0, len(t.NonDefault)+len(t.Defaults)+1)
	out = append(out, t.NonDefault...)
	if t.Var != nil {
		out = append(out, *t.Var)
	}
	return append(out, t.Defaults...)
}

// SelfParam returns the receiver parameter of a method type.
func (t TSubr) SelfParam() (ParamTy, bool) {
	if len(t.NonDefault) > 0 && t.NonDefault[0].Name == config.SelfParamName {
		return t.NonDefault[0], true
	}
	return ParamTy{}, false
}

// IsMethod reports whether the first parameter is the receiver.
func (t TSubr) IsMethod() bool {
	_, ok := t.SelfParam()
	return ok
}

type BoundKind int

const (
	// SubtypeOf: Name <: Type
	SubtypeOf BoundKind = iota
	// InstanceOf: Name : Type
	InstanceOf
)

// Bound declares one quantified variable of a TForall.
type Bound struct {
	Kind BoundKind
	Name string
	Type Type
}

func (b Bound) String() string {
	if b.Kind == InstanceOf {
		return fmt.Sprintf("%s: %s", b.Name, b.Type)
	}
	return fmt.Sprintf("%s <: %s", b.Name, b.Type)
}

// TForall is a universally quantified type.
type TForall struct {
	Bounds []Bound
	Body   Type
}

func (t TForall) String() string {
	parts := make([]string, len(t.Bounds))
	for i, b := range t.Bounds {
		parts[i] = b.String()
	}
	return fmt.Sprintf("|%s|%s", strings.Join(parts, ", "), t.Body)
}

func (t TForall) Apply(s Subst) Type {
	inner := s.without(t.boundNames())
	bounds := make([]Bound, len(t.Bounds))
	for i, b := range t.Bounds {
		bounds[i] = Bound{Kind: b.Kind, Name: b.Name, Type: b.Type.Apply(inner)}
	}
	return TForall{Bounds: bounds, Body: t.Body.Apply(inner)}
}

func (t TForall) QuantifiedVars() []string {
	bound := make(map[string]bool, len(t.Bounds))
	for _, name := range t.boundNames() {
		bound[name] = true
	}
	var out []string
	for _, b := range t.Bounds {
		out = append(out, b.Type.QuantifiedVars()...)
	}
	out = append(out, t.Body.QuantifiedVars()...)
	var free []string
	for _, name := range out {
		if !bound[name] {
			free = append(free, name)
		}
	}
	return uniqueNames(free)
}

func (t TForall) boundNames() []string {
	names := make([]string, len(t.Bounds))
	for i, b := range t.Bounds {
		names[i] = b.Name
	}
	return names
}

// TRecord is a structural record type.
type TRecord struct {
	Fields map[string]Type
}

func Record(fields map[string]Type) TRecord { return TRecord{Fields: fields} }

// FieldNames returns the record's keys in sorted order.
func (t TRecord) FieldNames() []string {
	keys := make([]string, 0, len(t.Fields))
	for k := range t.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t TRecord) String() string {
	keys := t.FieldNames()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, t.Fields[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (t TRecord) Apply(s Subst) Type {
	fields := make(map[string]Type, len(t.Fields))
	for k, v := range t.Fields {
		fields[k] = v.Apply(s)
	}
	return TRecord{Fields: fields}
}

func (t TRecord) QuantifiedVars() []string {
	var out []string
	for _, k := range t.FieldNames() {
		out = append(out, t.Fields[k].QuantifiedVars()...)
	}
	return uniqueNames(out)
}

// QualName is the name used to index trait implementations and nominal
// contexts: the constructor name without parameters.
func QualName(t Type) string {
	switch t := t.(type) {
	case TMono:
		return t.Name
	case TPoly:
		return t.Name
	case TRef:
		return QualName(t.Inner)
	case TRefMut:
		return QualName(t.Before)
	case TRefinement:
		return QualName(t.Base)
	case TSubr:
		return t.Kind.String()
	case TForall:
		return config.QuantifiedFuncTypeName
	case TRecord:
		return config.RecordTypeName
	case TOr:
		return config.OrTypeName
	}
	return t.String()
}

func uniqueNames(names []string) []string {
	if len(names) < 2 {
		return names
	}
	seen := make(map[string]bool, len(names))
	out := names[:0:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
