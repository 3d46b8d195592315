package diagnostics

import (
	"fmt"
	"strings"

	"github.com/funvibe/typecore/internal/token"
)

func TypeMismatch(loc token.Location, namespace, name string, expected, found fmt.Stringer, candidates ...string) *DiagnosticError {
	e := NewError(ErrT001, loc, name, namespace, "the type of %s is mismatched: expected %s, found %s", orAnon(name), expected, found)
	e.Expected = expected
	e.Found = found
	return e.WithSuggestions(candidates...)
}

func NoSuchVariable(loc token.Location, namespace, name, similar string) *DiagnosticError {
	return NewError(ErrT002, loc, name, namespace, "%s is not defined", name).WithSuggestions(similar)
}

func NoSuchAttribute(loc token.Location, namespace string, obj fmt.Stringer, name, similar string) *DiagnosticError {
	return NewError(ErrT003, loc, name, namespace, "%s has no attribute %s", obj, name).WithSuggestions(similar)
}

// NoAttributeInScope is reported when a module or type path has no such member.
func NoAttributeInScope(loc token.Location, namespace, scopeName, name, similar string) *DiagnosticError {
	return NewError(ErrT003, loc, name, namespace, "%s has no attribute %s", scopeName, name).WithSuggestions(similar)
}

func Visibility(loc token.Location, namespace, name string, private bool) *DiagnosticError {
	vis := "public"
	if private {
		vis = "private"
	}
	return NewError(ErrT004, loc, name, namespace, "%s is %s and cannot be accessed here", name, vis)
}

func TooManyArguments(loc token.Location, namespace, callee string, expected, posGiven, kwGiven int) *DiagnosticError {
	return NewError(ErrT005, loc, callee, namespace,
		"too many arguments for %s: expected at most %d, given %d positional and %d keyword",
		callee, expected, posGiven, kwGiven)
}

func MissingArguments(loc token.Location, namespace, callee string, missing []string) *DiagnosticError {
	return NewError(ErrT006, loc, callee, namespace, "%s is missing %d argument(s): %s",
		callee, len(missing), strings.Join(missing, ", "))
}

func DuplicateArgument(loc token.Location, namespace, callee, param string) *DiagnosticError {
	return NewError(ErrT007, loc, param, namespace, "%s got multiple values for argument %s", callee, param)
}

func UnexpectedKeyword(loc token.Location, namespace, callee, keyword string) *DiagnosticError {
	return NewError(ErrT008, loc, keyword, namespace, "%s got an unexpected keyword argument %s", callee, keyword)
}

func AmbiguousMethod(loc token.Location, namespace, name string, definers []string) *DiagnosticError {
	return NewError(ErrT009, loc, name, namespace, "%s is ambiguous: defined by %s", name, strings.Join(definers, ", "))
}

func MatchArmMismatch(loc token.Location, namespace string, target, arms fmt.Stringer) *DiagnosticError {
	e := NewError(ErrT010, loc, "match", namespace, "match target of type %s is not covered by arms %s", target, arms)
	e.Expected = arms
	e.Found = target
	return e
}

func NotCallable(loc token.Location, namespace, name string, t fmt.Stringer) *DiagnosticError {
	return NewError(ErrT011, loc, name, namespace, "%s of type %s is not callable", name, t)
}

func UnknownType(loc token.Location, namespace, name, similar string) *DiagnosticError {
	return NewError(ErrT012, loc, name, namespace, "type %s is not defined", name).WithSuggestions(similar)
}

func orAnon(name string) string {
	if name == "" {
		return "the expression"
	}
	return name
}
