// Package diagnostics defines the errors reported by the type checker.
package diagnostics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/typecore/internal/token"
)

type ErrorCode string

const (
	ErrT001 ErrorCode = "T001" // type mismatch
	ErrT002 ErrorCode = "T002" // no such variable
	ErrT003 ErrorCode = "T003" // no such attribute
	ErrT004 ErrorCode = "T004" // visibility violation
	ErrT005 ErrorCode = "T005" // too many arguments
	ErrT006 ErrorCode = "T006" // missing arguments
	ErrT007 ErrorCode = "T007" // duplicate argument
	ErrT008 ErrorCode = "T008" // unexpected keyword argument
	ErrT009 ErrorCode = "T009" // ambiguous method
	ErrT010 ErrorCode = "T010" // match arm mismatch
	ErrT011 ErrorCode = "T011" // not callable
	ErrT012 ErrorCode = "T012" // unknown type
)

// Kind groups error codes for propagation decisions.
type Kind int

const (
	KindTypeMismatch Kind = iota
	KindNoSuchVariable
	KindNoSuchAttribute
	KindVisibility
	KindTooManyArguments
	KindMissingArguments
	KindDuplicateArgument
	KindUnexpectedKeyword
	KindAmbiguousMethod
	KindMatchArmMismatch
	KindNotCallable
	KindUnknownType
)

var kindNames = map[Kind]string{
	KindTypeMismatch:      "TypeMismatch",
	KindNoSuchVariable:    "NoSuchVariable",
	KindNoSuchAttribute:   "NoSuchAttribute",
	KindVisibility:        "VisibilityViolation",
	KindTooManyArguments:  "TooManyArguments",
	KindMissingArguments:  "MissingArguments",
	KindDuplicateArgument: "DuplicateArgument",
	KindUnexpectedKeyword: "UnexpectedKeywordArgument",
	KindAmbiguousMethod:   "AmbiguousMethod",
	KindMatchArmMismatch:  "MatchArmMismatch",
	KindNotCallable:       "NotCallable",
	KindUnknownType:       "UnknownType",
}

var codeKinds = map[ErrorCode]Kind{
	ErrT001: KindTypeMismatch,
	ErrT002: KindNoSuchVariable,
	ErrT003: KindNoSuchAttribute,
	ErrT004: KindVisibility,
	ErrT005: KindTooManyArguments,
	ErrT006: KindMissingArguments,
	ErrT007: KindDuplicateArgument,
	ErrT008: KindUnexpectedKeyword,
	ErrT009: KindAmbiguousMethod,
	ErrT010: KindMatchArmMismatch,
	ErrT011: KindNotCallable,
	ErrT012: KindUnknownType,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// DiagnosticError is the error value returned by every checker entry point.
type DiagnosticError struct {
	Code ErrorCode
	Loc  token.Location
	// Name is the identifier or expression text the error is about.
	Name string
	// Namespace is the scope the failing lookup ran in.
	Namespace string
	Message   string
	// Expected and Found are set for mismatches.
	Expected    fmt.Stringer
	Found       fmt.Stringer
	Suggestions []string
}

func (e *DiagnosticError) Kind() Kind {
	return codeKinds[e.Code]
}

func (e *DiagnosticError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] %s", e.Loc, e.Code, e.Message)
	if e.Namespace != "" {
		fmt.Fprintf(&sb, " (in %s)", e.Namespace)
	}
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&sb, "; did you mean: %s?", strings.Join(e.Suggestions, ", "))
	}
	return sb.String()
}

// WithSuggestions returns e with suggestions appended, skipping empty entries.
func (e *DiagnosticError) WithSuggestions(s ...string) *DiagnosticError {
	for _, v := range s {
		if v != "" {
			e.Suggestions = append(e.Suggestions, v)
		}
	}
	return e
}

// NewError builds a diagnostic with a formatted message.
func NewError(code ErrorCode, loc token.Location, name, namespace string, format string, args ...any) *DiagnosticError {
	return &DiagnosticError{
		Code:      code,
		Loc:       loc,
		Name:      name,
		Namespace: namespace,
		Message:   fmt.Sprintf(format, args...),
	}
}

// As extracts a DiagnosticError from err.
func As(err error) (*DiagnosticError, bool) {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// KindOf returns the kind of a diagnostic error. The second result is false
// for errors that are not diagnostics.
func KindOf(err error) (Kind, bool) {
	de, ok := As(err)
	if !ok {
		return 0, false
	}
	return de.Kind(), true
}

// IsNotFound reports whether err is a lookup failure that lets the
// caller try the next scope or strategy.
func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && (k == KindNoSuchVariable || k == KindNoSuchAttribute)
}

// Is reports whether err is a diagnostic of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
