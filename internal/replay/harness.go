package replay

import (
	"github.com/danielpatrickdp/gradepipe/internal/evaluator"
	"github.com/danielpatrickdp/gradepipe/internal/ledger"
)

// #region types
// Action labels the outcome of re-grading one entry.
type Action string

const (
	ActionUnchanged Action = "unchanged"
	ActionChanged   Action = "changed"
	ActionError     Action = "error"
)

// Change captures the outcome of re-grading one recorded entry.
type Change struct {
	EntryID   string
	StudentID string
	Action    Action
	Reason    string

	OldScore float64
	OldLabel string
	NewScore float64
	NewLabel string

	// Err is set when the new evaluator rejected the recorded inputs.
	Err error
}

// Summary provides aggregate stats from a regrade run.
type Summary struct {
	Total     int
	Changed   int
	Unchanged int
	Errors    int

	// Transitions counts label moves keyed "old->new".
	Transitions map[string]int
}

// #endregion types

// #region regrade
// Regrade runs every entry's recorded inputs through ev and compares the
// outcome with what was recorded. Nothing is written back.
func Regrade(entries []ledger.Entry, ev *evaluator.Evaluator) ([]Change, Summary) {
	changes := make([]Change, 0, len(entries))

	for _, e := range entries {
		c := Change{
			EntryID:   e.ID,
			StudentID: e.StudentID,
			OldScore:  e.Score,
			OldLabel:  e.Label,
		}

		res, err := ev.Evaluate(e.Input)
		if err != nil {
			c.Action = ActionError
			c.Reason = err.Error()
			c.Err = err
			changes = append(changes, c)
			continue
		}

		c.NewScore = res.Score
		c.NewLabel = res.Label
		if res.Label == e.Label {
			c.Action = ActionUnchanged
			c.Reason = "label kept: " + res.Label
		} else {
			c.Action = ActionChanged
			c.Reason = e.Label + "->" + res.Label
		}
		changes = append(changes, c)
	}

	return changes, Summarize(changes)
}

// Summarize computes aggregate stats from regrade changes.
func Summarize(changes []Change) Summary {
	s := Summary{
		Total:       len(changes),
		Transitions: make(map[string]int),
	}
	for _, c := range changes {
		switch c.Action {
		case ActionChanged:
			s.Changed++
			s.Transitions[c.OldLabel+"->"+c.NewLabel]++
		case ActionUnchanged:
			s.Unchanged++
		case ActionError:
			s.Errors++
		}
	}
	return s
}

// #endregion regrade
