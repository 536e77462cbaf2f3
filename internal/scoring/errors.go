package scoring

import (
	"errors"
	"fmt"
)

// ErrInvalidInput matches any InvalidInputError via errors.Is.
var ErrInvalidInput = errors.New("invalid score input")

// InvalidInputError reports a component count the strategy cannot accept.
// A strategy never truncates or pads input to make it fit.
type InvalidInputError struct {
	Strategy string
	Expected int // exact count; for open-arity strategies the minimum
	Actual   int
	AtLeast  bool
}

func (e *InvalidInputError) Error() string {
	want := fmt.Sprintf("%d", e.Expected)
	if e.AtLeast {
		want = fmt.Sprintf("at least %d", e.Expected)
	}
	return fmt.Sprintf("%s: expected %s components, got %d", e.Strategy, want, e.Actual)
}

// Is reports whether target is ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
