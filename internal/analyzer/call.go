package analyzer

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-set/v2"

	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/diagnostics"
	"github.com/funvibe/typecore/internal/token"
	"github.com/funvibe/typecore/internal/typesystem"
)

var binOpFuncs = map[string]string{
	"+":  "__add__",
	"-":  "__sub__",
	"*":  "__mul__",
	"==": "__eq__",
	"!=": "__ne__",
	"<":  "__lt__",
	"<=": "__le__",
	">":  "__gt__",
	">=": "__ge__",
}

var unaryOpFuncs = map[string]string{
	"-":   "__neg__",
	"+":   "__pos__",
	"not": "__not__",
}

// BindCall types the call obj(pos..., kw...) or obj.attrName(...). The
// store is rolled back when binding fails.
//
// When a type matches several instances of a nominal super, e.g. Nat is
// both Add(Nat) and, through Int, Add(Int), the nearest is tried first and
// the call is retried with the next one if a later argument fails to bind.
// The error of the first attempt is reported.
func (c *Checker) BindCall(obj ast.Expression, attrName *ast.Ident, pos []ast.PosArg, kw []ast.KwArg) (typesystem.Type, error) {
	outer := c.choices
	c.choices = newChoices()
	defer func() { c.choices = outer }()

	var first error
	for attempt := 0; attempt < maxCallAttempts; attempt++ {
		m := c.store.Mark()
		c.choices.reset()
		t, err := c.bindCall(obj, attrName, pos, kw)
		if err == nil {
			c.store.Commit(m)
			return t, nil
		}
		c.store.Rollback(m)
		if first == nil {
			first = err
		}
		if de, ok := diagnostics.As(err); !ok || de.Kind() != diagnostics.KindTypeMismatch || !c.choices.advance() {
			break
		}
		c.logger.Debug("retrying call", "callee", calleeName(obj, attrName), "attempt", attempt+1)
	}
	return nil, first
}

// BinOpType types `lhs op rhs` as a call of the operator's function.
func (c *Checker) BinOpType(op string, lhs, rhs ast.Expression) (typesystem.Type, error) {
	name, ok := binOpFuncs[op]
	if !ok {
		return nil, diagnostics.NoSuchVariable(lhs.Loc(), c.Namespace(), op, "")
	}
	callee := &ast.Ident{Name: name, Vis: ast.Private, Location: token.Concat(lhs.Loc(), rhs.Loc())}
	return c.BindCall(callee, nil, []ast.PosArg{ast.Pos(lhs), ast.Pos(rhs)}, nil)
}

// UnaryOpType types `op val`.
func (c *Checker) UnaryOpType(op string, val ast.Expression) (typesystem.Type, error) {
	name, ok := unaryOpFuncs[op]
	if !ok {
		return nil, diagnostics.NoSuchVariable(val.Loc(), c.Namespace(), op, "")
	}
	callee := &ast.Ident{Name: name, Vis: ast.Private, Location: val.Loc()}
	return c.BindCall(callee, nil, []ast.PosArg{ast.Pos(val)}, nil)
}

func calleeName(obj ast.Expression, attrName *ast.Ident) string {
	if attrName != nil {
		return obj.String() + "." + attrName.Name
	}
	return obj.String()
}

func (c *Checker) bindCall(obj ast.Expression, attrName *ast.Ident, pos []ast.PosArg, kw []ast.KwArg) (typesystem.Type, error) {
	loc := obj.Loc()
	if attrName != nil {
		loc = token.Concat(loc, attrName.Loc())
	}
	if ident, ok := obj.(*ast.Ident); ok && attrName == nil {
		switch ident.Name {
		case config.MatchFuncName:
			return c.bindMatch(loc, pos)
		case config.ImportFuncName:
			if t, ok, err := c.bindImport(pos); ok {
				return t, err
			}
		}
	}

	name := calleeName(obj, attrName)
	callee, err := c.CalleeType(obj, attrName)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("callee found", "callee", name, "type", c.show(callee))

	if v, _, ok := c.store.UnboundVar(callee); ok {
		return c.bindFreeCallee(v, name, loc, pos, kw)
	}
	inst := c.store.Deref(c.Instantiate(callee))
	c.logger.Debug("instantiated", "callee", name, "type", c.show(inst))
	subr, ok := inst.(typesystem.TSubr)
	if !ok {
		return nil, diagnostics.NotCallable(loc, c.Namespace(), name, c.show(inst))
	}

	objT, err := c.ExprType(obj)
	if err != nil {
		return nil, err
	}
	params := subr
	self, hasSelf := subr.SelfParam()
	bindSelf := attrName != nil && hasSelf && !c.isTypeValue(obj, objT)
	if bindSelf {
		if err := c.SubUnify(objT, self.Type, loc, name+"::"+self.Name); err != nil {
			return nil, err
		}
		params.NonDefault = subr.NonDefault[1:]
	}

	if err := c.checkArity(params, name, loc, pos, kw); err != nil {
		return nil, err
	}
	passed := set.New[string](len(pos) + len(kw))
	if err := c.bindPositional(params, name, pos, passed); err != nil {
		return nil, err
	}
	if err := c.bindKeywords(params, name, kw, passed); err != nil {
		return nil, err
	}
	if err := c.checkDefaults(params, name, loc, passed); err != nil {
		return nil, err
	}
	c.logger.Debug("substituted", "callee", name, "type", c.show(subr))

	ret := c.EvalTParams(subr.Return)
	c.logger.Debug("params evaluated", "callee", name, "return", c.show(ret))

	if bindSelf {
		if rm, ok := c.store.Deref(self.Type).(typesystem.TRefMut); ok && rm.After != nil {
			after := c.EvalTParams(rm.After)
			if err := c.Reunify(obj, after, loc); err != nil {
				return nil, err
			}
			c.logger.Debug("propagated", "callee", name, "after", c.show(after))
		}
	}
	return ret, nil
}

// checkArity compares the argument counts with the parameters left after
// the receiver was bound. Keywords only fill defaults, so every
// non-default parameter must be given positionally.
func (c *Checker) checkArity(params typesystem.TSubr, name string, loc token.Location, pos []ast.PosArg, kw []ast.KwArg) error {
	n, m := len(params.NonDefault), len(params.Defaults)
	if params.Var == nil && len(pos) > n+m {
		return diagnostics.TooManyArguments(loc, c.Namespace(), name, n+m, len(pos), len(kw))
	}
	if len(pos) >= n {
		return nil
	}
	missing := make([]string, 0, n-len(pos))
	for _, p := range params.NonDefault[len(pos):] {
		missing = append(missing, p.Name)
	}
	return diagnostics.MissingArguments(loc, c.Namespace(), name, missing)
}

// bindPositional binds arguments left to right: non-default parameters,
// then the variadic parameter, then defaults by position.
func (c *Checker) bindPositional(params typesystem.TSubr, name string, pos []ast.PosArg, passed *set.Set[string]) error {
	n := len(params.NonDefault)
	for i, arg := range pos {
		var p typesystem.ParamTy
		variadic := false
		switch {
		case i < n:
			p = params.NonDefault[i]
		case params.Var != nil:
			p, variadic = *params.Var, true
		default:
			p = params.Defaults[i-n]
		}
		if !variadic && p.Name != "" && !passed.Insert(p.Name) {
			return diagnostics.DuplicateArgument(arg.Expr.Loc(), c.Namespace(), name, p.Name)
		}
		if err := c.bindArg(arg.Expr, p, name); err != nil {
			return err
		}
	}
	return nil
}

// bindKeywords binds keyword arguments against the default parameters.
// A name already consumed by any earlier argument is a duplicate.
func (c *Checker) bindKeywords(params typesystem.TSubr, name string, kw []ast.KwArg, passed *set.Set[string]) error {
	for _, arg := range kw {
		if passed.Contains(arg.Keyword.Name) {
			return diagnostics.DuplicateArgument(arg.Keyword.Loc(), c.Namespace(), name, arg.Keyword.Name)
		}
		p, ok := findParam(params.Defaults, arg.Keyword.Name)
		if !ok {
			return diagnostics.UnexpectedKeyword(arg.Keyword.Loc(), c.Namespace(), name, arg.Keyword.Name)
		}
		passed.Insert(p.Name)
		if err := c.bindArg(arg.Expr, p, name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) bindArg(arg ast.Expression, p typesystem.ParamTy, callee string) error {
	at, err := c.ExprType(arg)
	if err != nil {
		return err
	}
	return c.SubUnify(at, p.Type, arg.Loc(), callee+"::"+p.Name)
}

// checkDefaults checks the default value of every default parameter the
// call left out against the parameter type.
func (c *Checker) checkDefaults(params typesystem.TSubr, name string, loc token.Location, passed *set.Set[string]) error {
	for _, p := range params.Defaults {
		if passed.Contains(p.Name) || p.Default == nil {
			continue
		}
		if err := c.SubUnify(p.Default, p.Type, loc, name+"::"+p.Name); err != nil {
			return err
		}
	}
	return nil
}

// bindFreeCallee links a callee of unknown type to a subroutine type
// built from the arguments.
func (c *Checker) bindFreeCallee(v typesystem.TFree, name string, loc token.Location, pos []ast.PosArg, kw []ast.KwArg) (typesystem.Type, error) {
	subr := typesystem.TSubr{Kind: typesystem.FuncKind}
	if strings.HasSuffix(name, "!") {
		subr.Kind = typesystem.ProcKind
	}
	for _, a := range pos {
		at, err := c.ExprType(a.Expr)
		if err != nil {
			return nil, err
		}
		subr.NonDefault = append(subr.NonDefault, typesystem.Param("", at))
	}
	for _, a := range kw {
		at, err := c.ExprType(a.Expr)
		if err != nil {
			return nil, err
		}
		subr.NonDefault = append(subr.NonDefault, typesystem.Param(a.Keyword.Name, at))
	}
	ret := c.store.FreshType(c.level, typesystem.NewTypeOf(typesystem.TypeT))
	subr.Return = ret
	if !c.SupertypeOf(v, subr) {
		return nil, c.mismatch(subr, v, loc, name)
	}
	if err := c.linkChecked(v, subr, loc, name); err != nil {
		return nil, err
	}
	c.logger.Debug("callee inferred", "callee", name, "type", c.show(subr))
	return ret, nil
}

// bindMatch types match(target, arm...). The arms' parameter types must
// cover the target; the result is the union of the arms' results.
func (c *Checker) bindMatch(loc token.Location, pos []ast.PosArg) (typesystem.Type, error) {
	if len(pos) == 0 {
		return nil, diagnostics.MissingArguments(loc, c.Namespace(), config.MatchFuncName, []string{"obj"})
	}
	target, err := c.ExprType(pos[0].Expr)
	if err != nil {
		return nil, err
	}
	var covered, result typesystem.Type = typesystem.Never, typesystem.Never
	for _, arm := range pos[1:] {
		at, err := c.ExprType(arm.Expr)
		if err != nil {
			return nil, err
		}
		subr, ok := c.store.Deref(at).(typesystem.TSubr)
		if !ok || len(subr.NonDefault) != 1 {
			return nil, diagnostics.TypeMismatch(arm.Expr.Loc(), c.Namespace(), config.MatchFuncName,
				shown("(Obj) -> Obj"), c.show(at))
		}
		covered = c.Union(covered, subr.NonDefault[0].Type)
		result = c.Union(result, subr.Return)
	}
	if err := c.SubUnify(target, covered, loc, config.MatchFuncName); err != nil {
		return nil, diagnostics.MatchArmMismatch(loc, c.Namespace(), c.show(target), c.show(covered))
	}
	return result, nil
}

// bindImport handles import("path") with a literal path. It reports false
// for any other argument list so the call is bound normally.
func (c *Checker) bindImport(pos []ast.PosArg) (typesystem.Type, bool, error) {
	if len(pos) != 1 {
		return nil, false, nil
	}
	lit, ok := pos[0].Expr.(*ast.Literal)
	if !ok || lit.Value.Kind != typesystem.StrValueKind {
		return nil, false, nil
	}
	if _, err := c.modules.Open(c.tree, c.tree.ModuleOf(c.scope), lit.Value.Str); err != nil {
		return nil, true, fmt.Errorf("importing %q: %w", lit.Value.Str, err)
	}
	return typesystem.ModuleType(lit.Value.Str), true, nil
}
