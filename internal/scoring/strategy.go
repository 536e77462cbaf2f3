package scoring

import (
	"fmt"
	"math"
	"strings"
)

// #region strategy

// Strategy reduces a ScoreInput to a single scalar.
// Implementations are deterministic and free of side effects.
type Strategy interface {
	CalculateScore(in ScoreInput) (float64, error)
	Describe() string
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc struct {
	Name string
	Fn   func(ScoreInput) (float64, error)
}

// CalculateScore calls the wrapped function.
func (f StrategyFunc) CalculateScore(in ScoreInput) (float64, error) {
	return f.Fn(in)
}

// Describe returns the configured name.
func (f StrategyFunc) Describe() string {
	return f.Name
}

// #endregion

// #region equal-weight

// EqualWeight is the arithmetic mean over every component, any arity >= 1.
type EqualWeight struct{}

// CalculateScore averages all component values.
func (EqualWeight) CalculateScore(in ScoreInput) (float64, error) {
	if len(in) == 0 {
		return 0, &InvalidInputError{Strategy: "equal", Expected: 1, Actual: 0, AtLeast: true}
	}
	var sum float64
	for _, c := range in {
		sum += c.Value
	}
	return sum / float64(len(in)), nil
}

// Describe names the weighting.
func (EqualWeight) Describe() string {
	return "Equal weight (arithmetic mean of all components)"
}

// #endregion

// #region weighted

// Weighted applies fixed positional coefficients. The coefficients are
// copied at construction and never change afterwards. They are expected to
// sum to 1.0; that is the caller's responsibility and is not checked here.
type Weighted struct {
	name    string
	labels  []string
	weights []float64
}

// NewWeighted creates a positional weighted strategy.
func NewWeighted(name string, weights ...float64) *Weighted {
	w := make([]float64, len(weights))
	copy(w, weights)
	return &Weighted{name: name, weights: w}
}

// NewNamedWeighted creates a weighted strategy whose positions carry
// component names, used only for the description.
func NewNamedWeighted(name string, labels []string, weights []float64) *Weighted {
	w := NewWeighted(name, weights...)
	w.labels = append([]string(nil), labels...)
	return w
}

// Weights returns a copy of the coefficients.
func (w *Weighted) Weights() []float64 {
	out := make([]float64, len(w.weights))
	copy(out, w.weights)
	return out
}

// CalculateScore returns the component-wise weighted sum.
// The input must carry exactly len(weights) components.
func (w *Weighted) CalculateScore(in ScoreInput) (float64, error) {
	if len(in) != len(w.weights) {
		return 0, &InvalidInputError{Strategy: w.name, Expected: len(w.weights), Actual: len(in)}
	}
	var sum float64
	for i, c := range in {
		sum += c.Value * w.weights[i]
	}
	return sum, nil
}

// Describe lists the weights, e.g. "Standard (40% midterm, 60% final)".
func (w *Weighted) Describe() string {
	parts := make([]string, len(w.weights))
	for i, wt := range w.weights {
		label := fmt.Sprintf("c%d", i+1)
		if i < len(w.labels) && w.labels[i] != "" {
			label = w.labels[i]
		}
		parts[i] = fmt.Sprintf("%g%% %s", math.Round(wt*1e4)/1e2, label)
	}
	return fmt.Sprintf("%s (%s)", w.name, strings.Join(parts, ", "))
}

// #endregion

// #region built-ins

var examLabels = []string{"midterm", "final"}

// Standard weighs the midterm at 40% and the final at 60%.
var Standard = NewNamedWeighted("Standard", examLabels, []float64{0.4, 0.6})

// FinalHeavy weighs the midterm at 30% and the final at 70%.
var FinalHeavy = NewNamedWeighted("Final heavy", examLabels, []float64{0.3, 0.7})

var builtins = map[StrategyID]Strategy{
	StrategyEqual:      EqualWeight{},
	StrategyStandard:   Standard,
	StrategyFinalHeavy: FinalHeavy,
}

// Builtins returns a fresh copy of the built-in strategies keyed by ID.
func Builtins() map[StrategyID]Strategy {
	out := make(map[StrategyID]Strategy, len(builtins))
	for id, s := range builtins {
		out[id] = s
	}
	return out
}

// Lookup returns the built-in strategy for id.
func Lookup(id StrategyID) (Strategy, error) {
	s, ok := builtins[id]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", id)
	}
	return s, nil
}

// #endregion
