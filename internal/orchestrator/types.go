package orchestrator

import (
	"log/slog"

	"github.com/danielpatrickdp/gradepipe/internal/evaluator"
	"github.com/danielpatrickdp/gradepipe/internal/ledger"
	"github.com/danielpatrickdp/gradepipe/internal/metrics"
	"github.com/danielpatrickdp/gradepipe/internal/notify"
)

// #region deps

// Deps are the collaborators an Orchestrator is assembled from.
// Evaluator and Ledger are required; the rest fall back to no-op or
// default values.
type Deps struct {
	Evaluator *evaluator.Evaluator
	Ledger    *ledger.Ledger
	Notifier  notify.Notifier
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// #endregion

// #region results

// GradeResult is the outcome of grading one submission.
type GradeResult struct {
	evaluator.Result
	EntryID   string
	StudentID string
	Notified  bool
}

// #endregion
