package scoring

// #region component

// Component is one named numeric part of a score input (e.g. "midterm").
type Component struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// #endregion

// #region score-input

// ScoreInput is an ordered sequence of named components.
// Order matters for positional strategies such as Weighted.
type ScoreInput []Component

// Input builds a ScoreInput from name/value pairs, preserving order.
func Input(components ...Component) ScoreInput {
	out := make(ScoreInput, len(components))
	copy(out, components)
	return out
}

// ExamInput is the two-component midterm/final input used by the built-in strategies.
func ExamInput(midterm, final float64) ScoreInput {
	return ScoreInput{
		{Name: "midterm", Value: midterm},
		{Name: "final", Value: final},
	}
}

// Values returns the component values in order.
func (in ScoreInput) Values() []float64 {
	vals := make([]float64, len(in))
	for i, c := range in {
		vals[i] = c.Value
	}
	return vals
}

// Names returns the component names in order.
func (in ScoreInput) Names() []string {
	names := make([]string, len(in))
	for i, c := range in {
		names[i] = c.Name
	}
	return names
}

// #endregion

// #region strategy-id

// StrategyID identifies a built-in scoring strategy.
type StrategyID string

const (
	StrategyEqual      StrategyID = "equal"
	StrategyStandard   StrategyID = "standard"
	StrategyFinalHeavy StrategyID = "final_heavy"
)

// #endregion
