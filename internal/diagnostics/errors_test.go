package diagnostics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/typecore/internal/token"
)

type typeName string

func (n typeName) String() string { return string(n) }

func TestKindClassification(t *testing.T) {
	loc := token.At("a.er", 3, 1, 4)
	tests := []struct {
		err      error
		kind     Kind
		notFound bool
	}{
		{TypeMismatch(loc, "<module>", "x", typeName("Int"), typeName("Str")), KindTypeMismatch, false},
		{NoSuchVariable(loc, "<module>", "x", ""), KindNoSuchVariable, true},
		{NoSuchAttribute(loc, "<module>", typeName("{x: Int}"), "z", "x"), KindNoSuchAttribute, true},
		{Visibility(loc, "<module>", "x", true), KindVisibility, false},
		{TooManyArguments(loc, "<module>", "f", 1, 2, 0), KindTooManyArguments, false},
		{MissingArguments(loc, "<module>", "f", []string{"a"}), KindMissingArguments, false},
		{DuplicateArgument(loc, "<module>", "f", "a"), KindDuplicateArgument, false},
		{UnexpectedKeyword(loc, "<module>", "f", "q"), KindUnexpectedKeyword, false},
		{AmbiguousMethod(loc, "<module>", "m", []string{"A", "B"}), KindAmbiguousMethod, false},
		{MatchArmMismatch(loc, "<module>", typeName("Int"), typeName("Str")), KindMatchArmMismatch, false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			k, ok := KindOf(tt.err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, k)
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
		})
	}
}

func TestWrappedDiagnostic(t *testing.T) {
	inner := NoSuchVariable(token.Unknown, "<module>", "nmae", "name")
	err := fmt.Errorf("resolving call: %w", inner)
	assert.True(t, IsNotFound(err))
	de, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"name"}, de.Suggestions)
	assert.Contains(t, err.Error(), "did you mean: name?")
}

func TestPlainErrorIsNotDiagnostic(t *testing.T) {
	_, ok := KindOf(fmt.Errorf("boom"))
	assert.False(t, ok)
	assert.False(t, IsNotFound(fmt.Errorf("boom")))
}

func TestInvariantfPanics(t *testing.T) {
	defer func() {
		r := recover()
		ie, ok := r.(*InvariantError)
		require.True(t, ok)
		assert.Contains(t, ie.Error(), "cannot undo ?1")
	}()
	Invariantf("cannot undo ?%d", 1)
}
