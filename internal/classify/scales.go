package classify

import (
	"fmt"
	"math"
)

// ScaleID identifies a built-in classification table.
type ScaleID string

const (
	ScaleFour ScaleID = "four"
	ScaleFive ScaleID = "five"
)

// #region built-in-scales

// FourScale is the A-F letter scale. The A band is unbounded above, so
// any score of 90 or more, +Inf included, is an A.
var FourScale = MustTable("4.0 Scale", "F",
	Range{Lower: 90, Upper: math.Inf(1), Label: "A"},
	Range{Lower: 80, Upper: 90, Label: "B"},
	Range{Lower: 70, Upper: 80, Label: "C"},
	Range{Lower: 60, Upper: 70, Label: "D"},
)

// FiveScale is the AA-FF two-letter scale. The AA band is unbounded
// above, so any score of 85 or more, +Inf included, is an AA.
var FiveScale = MustTable("5.0 Scale", "FF",
	Range{Lower: 85, Upper: math.Inf(1), Label: "AA"},
	Range{Lower: 75, Upper: 85, Label: "BA"},
	Range{Lower: 65, Upper: 75, Label: "BB"},
	Range{Lower: 55, Upper: 65, Label: "CB"},
	Range{Lower: 45, Upper: 55, Label: "CC"},
)

var builtins = map[ScaleID]*Table{
	ScaleFour: FourScale,
	ScaleFive: FiveScale,
}

// Builtins returns a fresh copy of the built-in tables keyed by ID.
func Builtins() map[ScaleID]*Table {
	out := make(map[ScaleID]*Table, len(builtins))
	for id, t := range builtins {
		out[id] = t
	}
	return out
}

// Lookup returns the built-in table for id.
func Lookup(id ScaleID) (*Table, error) {
	t, ok := builtins[id]
	if !ok {
		return nil, fmt.Errorf("unknown scale %q", id)
	}
	return t, nil
}

// #endregion
