package diagnostics

import "fmt"

// InvariantError marks a state the checker considers impossible.
// It is only ever raised with panic and must not be recovered as control flow.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "internal invariant violated: " + e.Message
}

// Invariantf panics with an InvariantError.
func Invariantf(format string, args ...any) {
	panic(&InvariantError{Message: fmt.Sprintf(format, args...)})
}
