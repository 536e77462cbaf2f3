package orchestrator

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielpatrickdp/gradepipe/internal/classify"
	"github.com/danielpatrickdp/gradepipe/internal/evaluator"
	"github.com/danielpatrickdp/gradepipe/internal/ledger"
	"github.com/danielpatrickdp/gradepipe/internal/metrics"
	"github.com/danielpatrickdp/gradepipe/internal/notify"
	"github.com/danielpatrickdp/gradepipe/internal/replay"
	"github.com/danielpatrickdp/gradepipe/internal/scoring"
)

// #endregion

// #region orchestrator-struct

// Orchestrator is the top-level coordinator: it grades submissions,
// records them, counts them and pushes results to the notifier.
type Orchestrator struct {
	mu       sync.RWMutex // guards evaluator collaborators
	eval     *evaluator.Evaluator
	ledger   *ledger.Ledger
	notifier notify.Notifier
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// #endregion

// #region constructor

// ErrMissingLedger is returned by New when no ledger is supplied.
var ErrMissingLedger = errors.New("orchestrator: ledger is required")

// New creates a fully wired orchestrator.
func New(d Deps) (*Orchestrator, error) {
	if d.Evaluator == nil {
		return nil, &evaluator.MissingDependencyError{Dependency: "evaluator"}
	}
	if d.Ledger == nil {
		return nil, ErrMissingLedger
	}
	if d.Notifier == nil {
		d.Notifier = notify.Discard
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Orchestrator{
		eval:     d.Evaluator,
		ledger:   d.Ledger,
		notifier: d.Notifier,
		metrics:  d.Metrics,
		log:      d.Logger,
	}, nil
}

// Metrics returns the orchestrator's metrics.
func (o *Orchestrator) Metrics() *metrics.Metrics { return o.metrics }

// Ledger returns the orchestrator's ledger.
func (o *Orchestrator) Ledger() *ledger.Ledger { return o.ledger }

// #endregion

// #region grade

// Grade evaluates one submission, records it and notifies. A failed
// notification is logged and counted; it does not fail the grade.
func (o *Orchestrator) Grade(ctx context.Context, studentID string, in scoring.ScoreInput) (GradeResult, error) {
	if err := ctx.Err(); err != nil {
		return GradeResult{}, err
	}

	o.mu.RLock()
	res, err := o.eval.Evaluate(in)
	o.mu.RUnlock()
	if err != nil {
		o.metrics.ObserveError(errorKind(err))
		o.log.Warn("evaluation failed", "student", studentID, "error", err)
		return GradeResult{}, fmt.Errorf("grade %s: %w", studentID, err)
	}

	entry, err := o.ledger.Record(ledger.Entry{
		StudentID: studentID,
		Input:     in,
		Score:     res.Score,
		Label:     res.Label,
		Strategy:  res.Strategy,
		Scale:     res.Scale,
	})
	if err != nil {
		o.metrics.ObserveError("ledger")
		return GradeResult{}, fmt.Errorf("grade %s: %w", studentID, err)
	}
	o.metrics.ObserveEvaluation(res.Scale, res.Label, res.Score)

	o.log.Info("graded",
		"student", studentID, "score", res.Score, "label", res.Label,
		"strategy", res.Strategy, "scale", res.Scale, "entry", entry.ID)

	out := GradeResult{Result: res, EntryID: entry.ID, StudentID: studentID}

	msg := notify.FormatResult(o.displayName(studentID), res)
	attempts, err := deliver(ctx, o.notifier, notify.Subject, msg)
	if err != nil {
		o.metrics.ObserveNotifyFailure()
		o.log.Error("notification failed", "student", studentID, "attempts", attempts, "error", err)
		return out, nil
	}
	out.Notified = true
	return out, nil
}

func (o *Orchestrator) displayName(studentID string) string {
	s, err := o.ledger.GetStudent(studentID)
	if err != nil {
		return studentID
	}
	if name := s.FullName(); name != "" {
		return name
	}
	return studentID
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, scoring.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, classify.ErrClassificationGap):
		return "classification_gap"
	case errors.Is(err, evaluator.ErrMissingDependency):
		return "missing_dependency"
	default:
		return "other"
	}
}

// #endregion

// #region swap

// SwapStrategy replaces the scoring strategy for subsequent grades.
func (o *Orchestrator) SwapStrategy(s scoring.Strategy) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.eval.SetStrategy(s); err != nil {
		return err
	}
	o.log.Info("strategy swapped", "strategy", s.Describe())
	return nil
}

// SwapTable replaces the classification table for subsequent grades.
func (o *Orchestrator) SwapTable(t *classify.Table) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.eval.SetTable(t); err != nil {
		return err
	}
	o.log.Info("scale swapped", "scale", t.Name())
	return nil
}

// Current returns the active strategy and table.
func (o *Orchestrator) Current() (scoring.Strategy, *classify.Table) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.eval.Strategy(), o.eval.Table()
}

// #endregion

// #region regrade

// Regrade re-evaluates every recorded entry under a what-if evaluator.
// A nil strategy or table keeps the active one. The ledger is not changed.
func (o *Orchestrator) Regrade(ctx context.Context, s scoring.Strategy, t *classify.Table) ([]replay.Change, replay.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, replay.Summary{}, err
	}

	cur, curTable := o.Current()
	if s == nil {
		s = cur
	}
	if t == nil {
		t = curTable
	}
	ev, err := evaluator.New(s, t)
	if err != nil {
		return nil, replay.Summary{}, err
	}

	entries, err := o.ledger.All()
	if err != nil {
		return nil, replay.Summary{}, fmt.Errorf("regrade: %w", err)
	}

	changes, sum := replay.Regrade(entries, ev)
	o.log.Info("regrade complete",
		"total", sum.Total, "changed", sum.Changed, "errors", sum.Errors)
	return changes, sum, nil
}

// #endregion
