package classify

import (
	"errors"
	"fmt"
)

var (
	// ErrClassificationGap matches ClassificationGapError via errors.Is.
	ErrClassificationGap = errors.New("classification gap")
	// ErrInvalidTable matches InvalidTableError via errors.Is.
	ErrInvalidTable = errors.New("invalid classification table")
)

// ClassificationGapError means a score inside a table's covered span matched
// no range. With a mandatory default this can only come from a hole between
// authored ranges, so it is an internal invariant violation.
type ClassificationGapError struct {
	Table string
	Score float64
}

func (e *ClassificationGapError) Error() string {
	return fmt.Sprintf("table %q: no range covers score %g", e.Table, e.Score)
}

// Is reports whether target is ErrClassificationGap.
func (e *ClassificationGapError) Is(target error) bool {
	return target == ErrClassificationGap
}

// InvalidTableError describes why a table could not be constructed.
type InvalidTableError struct {
	Table  string
	Reason string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("table %q: %s", e.Table, e.Reason)
}

// Is reports whether target is ErrInvalidTable.
func (e *InvalidTableError) Is(target error) bool {
	return target == ErrInvalidTable
}
