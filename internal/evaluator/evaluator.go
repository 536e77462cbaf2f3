package evaluator

// #region imports
import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/gradepipe/internal/classify"
	"github.com/danielpatrickdp/gradepipe/internal/scoring"
)

// #endregion

// #region errors

// ErrMissingDependency matches MissingDependencyError via errors.Is.
var ErrMissingDependency = errors.New("missing dependency")

// MissingDependencyError is returned when a collaborator is nil.
type MissingDependencyError struct {
	Dependency string // "strategy" | "table"
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("evaluator: %s is required", e.Dependency)
}

// Is reports whether target is ErrMissingDependency.
func (e *MissingDependencyError) Is(target error) bool {
	return target == ErrMissingDependency
}

// #endregion

// #region result

// Result is the output of one evaluation.
type Result struct {
	Score    float64
	Label    string
	Strategy string // strategy description at evaluation time
	Scale    string // table name at evaluation time
}

// #endregion

// #region evaluator-struct

// Evaluator composes one scoring strategy with one classification table.
// Evaluate only reads; SetStrategy and SetTable write and must not race
// with Evaluate. Callers that swap collaborators under concurrent reads
// supply their own locking.
type Evaluator struct {
	strategy scoring.Strategy
	table    *classify.Table
}

// New creates an evaluator. Both collaborators are required.
func New(strategy scoring.Strategy, table *classify.Table) (*Evaluator, error) {
	if missing(strategy) {
		return nil, &MissingDependencyError{Dependency: "strategy"}
	}
	if table == nil {
		return nil, &MissingDependencyError{Dependency: "table"}
	}
	return &Evaluator{strategy: strategy, table: table}, nil
}

// missing reports whether s cannot score anything: a nil interface, a nil
// *Weighted, or a StrategyFunc without a function.
func missing(s scoring.Strategy) bool {
	switch v := s.(type) {
	case nil:
		return true
	case *scoring.Weighted:
		return v == nil
	case scoring.StrategyFunc:
		return v.Fn == nil
	case *scoring.StrategyFunc:
		return v == nil || v.Fn == nil
	}
	return false
}

// #endregion

// #region evaluate

// Evaluate scores the input and classifies the score.
func (e *Evaluator) Evaluate(in scoring.ScoreInput) (Result, error) {
	score, err := e.strategy.CalculateScore(in)
	if err != nil {
		return Result{}, fmt.Errorf("calculate score: %w", err)
	}
	return Result{
		Score:    score,
		Label:    e.table.Classify(score),
		Strategy: e.strategy.Describe(),
		Scale:    e.table.Name(),
	}, nil
}

// #endregion

// #region accessors

// Strategy returns the current scoring strategy.
func (e *Evaluator) Strategy() scoring.Strategy { return e.strategy }

// Table returns the current classification table.
func (e *Evaluator) Table() *classify.Table { return e.table }

// SetStrategy replaces the scoring strategy. The table is untouched.
func (e *Evaluator) SetStrategy(s scoring.Strategy) error {
	if missing(s) {
		return &MissingDependencyError{Dependency: "strategy"}
	}
	e.strategy = s
	return nil
}

// SetTable replaces the classification table. The strategy is untouched.
func (e *Evaluator) SetTable(t *classify.Table) error {
	if t == nil {
		return &MissingDependencyError{Dependency: "table"}
	}
	e.table = t
	return nil
}

// #endregion
