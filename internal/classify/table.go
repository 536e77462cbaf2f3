package classify

import (
	"fmt"
	"math"
	"sort"
)

// #region range

// Range maps scores in [Lower, Upper) to Label.
type Range struct {
	Lower float64
	Upper float64
	Label string
}

// Contains reports whether score falls in [Lower, Upper). A range whose
// Upper is +Inf is unbounded above and also holds +Inf itself.
func (r Range) Contains(score float64) bool {
	if score < r.Lower || math.IsNaN(score) {
		return false
	}
	return score < r.Upper || math.IsInf(r.Upper, 1)
}

// #endregion

// #region table

// Table is an ordered set of ranges plus a mandatory default label.
// Ranges are held in descending order of Lower and never change after
// construction.
type Table struct {
	name         string
	ranges       []Range
	defaultLabel string
}

// NewTable validates and builds a table. Ranges may be given in any order;
// they must each carry a label, satisfy Lower < Upper and must not overlap.
func NewTable(name, defaultLabel string, ranges ...Range) (*Table, error) {
	if defaultLabel == "" {
		return nil, &InvalidTableError{Table: name, Reason: "default label is required"}
	}

	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Lower > sorted[j].Lower
	})

	for i, r := range sorted {
		if r.Label == "" {
			return nil, &InvalidTableError{Table: name, Reason: fmt.Sprintf("range [%g, %g) has no label", r.Lower, r.Upper)}
		}
		if math.IsNaN(r.Lower) || math.IsNaN(r.Upper) || !(r.Lower < r.Upper) {
			return nil, &InvalidTableError{Table: name, Reason: fmt.Sprintf("range %q: lower %g must be below upper %g", r.Label, r.Lower, r.Upper)}
		}
		if i > 0 {
			above := sorted[i-1]
			if r.Upper > above.Lower {
				return nil, &InvalidTableError{Table: name, Reason: fmt.Sprintf("range %q overlaps %q", r.Label, above.Label)}
			}
		}
	}

	return &Table{name: name, ranges: sorted, defaultLabel: defaultLabel}, nil
}

// MustTable is NewTable for package-level tables; it panics on an invalid table.
func MustTable(name, defaultLabel string, ranges ...Range) *Table {
	t, err := NewTable(name, defaultLabel, ranges...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table's display name, e.g. "4.0 Scale".
func (t *Table) Name() string { return t.name }

// Default returns the catch-all label.
func (t *Table) Default() string { return t.defaultLabel }

// Ranges returns a copy of the ranges in scan order.
func (t *Table) Ranges() []Range {
	out := make([]Range, len(t.ranges))
	copy(out, t.ranges)
	return out
}

// Labels returns every label the table can produce, default last.
func (t *Table) Labels() []string {
	out := make([]string, 0, len(t.ranges)+1)
	for _, r := range t.ranges {
		out = append(out, r.Label)
	}
	return append(out, t.defaultLabel)
}

// #endregion

// #region classify

// Classify maps score to exactly one label. Ranges are scanned in
// descending order of Lower and the first match wins; anything unmatched,
// NaN included, takes the default label.
func (t *Table) Classify(score float64) string {
	for _, r := range t.ranges {
		if r.Contains(score) {
			return r.Label
		}
	}
	return t.defaultLabel
}

// ClassifyStrict is Classify, except that a score lying between the lowest
// Lower and the highest Upper that no range claims is reported as a
// ClassificationGapError instead of falling to the default.
func (t *Table) ClassifyStrict(score float64) (string, error) {
	for _, r := range t.ranges {
		if r.Contains(score) {
			return r.Label, nil
		}
	}
	if len(t.ranges) > 0 {
		lo := t.ranges[len(t.ranges)-1].Lower
		hi := t.ranges[0].Upper
		if score >= lo && score < hi {
			return "", &ClassificationGapError{Table: t.name, Score: score}
		}
	}
	return t.defaultLabel, nil
}

// Gaps returns the uncovered intervals between adjacent ranges.
func (t *Table) Gaps() []Range {
	var gaps []Range
	for i := 1; i < len(t.ranges); i++ {
		above, below := t.ranges[i-1], t.ranges[i]
		if below.Upper < above.Lower {
			gaps = append(gaps, Range{Lower: below.Upper, Upper: above.Lower})
		}
	}
	return gaps
}

// #endregion
