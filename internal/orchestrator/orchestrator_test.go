package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/gradepipe/internal/classify"
	"github.com/danielpatrickdp/gradepipe/internal/evaluator"
	"github.com/danielpatrickdp/gradepipe/internal/ledger"
	"github.com/danielpatrickdp/gradepipe/internal/metrics"
	"github.com/danielpatrickdp/gradepipe/internal/notify"
	"github.com/danielpatrickdp/gradepipe/internal/replay"
	"github.com/danielpatrickdp/gradepipe/internal/scoring"
	"github.com/danielpatrickdp/gradepipe/internal/transcript"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOrchestrator(t *testing.T, n notify.Notifier) *Orchestrator {
	t.Helper()
	ev, err := evaluator.New(scoring.Standard, classify.FourScale)
	require.NoError(t, err)
	l, err := ledger.Open()
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	o, err := New(Deps{Evaluator: ev, Ledger: l, Notifier: n, Logger: quietLogger()})
	require.NoError(t, err)
	return o
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Deps{})
	assert.ErrorIs(t, err, evaluator.ErrMissingDependency)

	ev, err := evaluator.New(scoring.Standard, classify.FourScale)
	require.NoError(t, err)
	_, err = New(Deps{Evaluator: ev})
	assert.ErrorIs(t, err, ErrMissingLedger)
}

func TestGrade_RecordsAndNotifies(t *testing.T) {
	var buf bytes.Buffer
	ch, err := notify.NewChannel(notify.ChannelEmail, &buf, quietLogger())
	require.NoError(t, err)
	o := newOrchestrator(t, ch)

	require.NoError(t, o.Ledger().PutStudent(transcript.Student{ID: "s1", FirstName: "Ada", LastName: "Byron"}))

	res, err := o.Grade(context.Background(), "s1", scoring.ExamInput(80, 90))
	require.NoError(t, err)
	assert.InDelta(t, 86.0, res.Score, 1e-9)
	assert.Equal(t, "B", res.Label)
	assert.True(t, res.Notified)
	assert.NotEmpty(t, res.EntryID)

	assert.Contains(t, buf.String(), "Ada Byron - Average: 86.00, Letter: B")

	entries, err := o.Ledger().ListByStudent("s1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, res.EntryID, entries[0].ID)
	assert.Equal(t, "4.0 Scale", entries[0].Scale)
}

func TestGrade_InvalidInputNotRecorded(t *testing.T) {
	o := newOrchestrator(t, nil)

	_, err := o.Grade(context.Background(), "s1", scoring.Input(scoring.Component{Name: "x", Value: 1}))
	require.Error(t, err)
	assert.ErrorIs(t, err, scoring.ErrInvalidInput)

	all, err := o.Ledger().All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGrade_NotificationFailureDoesNotFail(t *testing.T) {
	var calls atomic.Int32
	failing := notify.NotifierFunc(func(context.Context, string, string) error {
		calls.Add(1)
		return errors.New("smtp down")
	})
	o := newOrchestrator(t, failing)

	res, err := o.Grade(context.Background(), "s1", scoring.ExamInput(95, 95))
	require.NoError(t, err)
	assert.Equal(t, "A", res.Label)
	assert.False(t, res.Notified)
	assert.Equal(t, int32(maxNotifyAttempts), calls.Load())

	families, err := o.Metrics().Registry.Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "gradepipe_notification_failures_total" {
			found = true
			assert.Equal(t, 1.0, f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}

func TestGrade_RetryRecovers(t *testing.T) {
	var calls atomic.Int32
	flaky := notify.NotifierFunc(func(context.Context, string, string) error {
		if calls.Add(1) == 1 {
			return errors.New("transient")
		}
		return nil
	})
	o := newOrchestrator(t, flaky)

	res, err := o.Grade(context.Background(), "s1", scoring.ExamInput(50, 50))
	require.NoError(t, err)
	assert.True(t, res.Notified)
	assert.Equal(t, "F", res.Label)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGrade_NonFiniteScoreRecorded(t *testing.T) {
	var buf bytes.Buffer
	ch, err := notify.NewChannel(notify.ChannelEmail, &buf, quietLogger())
	require.NoError(t, err)
	o := newOrchestrator(t, ch)

	res, err := o.Grade(context.Background(), "s1", scoring.ExamInput(math.Inf(1), 90))
	require.NoError(t, err)
	assert.True(t, math.IsInf(res.Score, 1))
	assert.Equal(t, "A", res.Label)
	assert.True(t, res.Notified)
	assert.Contains(t, buf.String(), "Letter: A")

	entries, err := o.Ledger().ListByStudent("s1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, math.IsInf(entries[0].Score, 1))
	assert.True(t, math.IsInf(entries[0].Input[0].Value, 1))

	// Regrading the recorded entry reproduces it.
	_, sum, err := o.Regrade(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Unchanged)
}

func TestGrade_CancelledContext(t *testing.T) {
	o := newOrchestrator(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Grade(ctx, "s1", scoring.ExamInput(80, 90))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSwap(t *testing.T) {
	o := newOrchestrator(t, nil)
	ctx := context.Background()

	require.NoError(t, o.SwapStrategy(scoring.EqualWeight{}))
	require.NoError(t, o.SwapTable(classify.FiveScale))

	res, err := o.Grade(ctx, "s1", scoring.ExamInput(80, 90))
	require.NoError(t, err)
	assert.InDelta(t, 85.0, res.Score, 1e-9)
	assert.Equal(t, "AA", res.Label)

	assert.Error(t, o.SwapStrategy(nil))
	assert.Error(t, o.SwapTable(nil))

	s, tbl := o.Current()
	assert.Equal(t, scoring.EqualWeight{}.Describe(), s.Describe())
	assert.Equal(t, classify.FiveScale, tbl)
}

func TestSwap_ConcurrentWithGrade(t *testing.T) {
	o := newOrchestrator(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, err := o.Grade(ctx, "s", scoring.ExamInput(float64(i*10), float64(j*10)))
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 10; j++ {
			if j%2 == 0 {
				assert.NoError(t, o.SwapStrategy(scoring.FinalHeavy))
			} else {
				assert.NoError(t, o.SwapStrategy(scoring.Standard))
			}
		}
	}()
	wg.Wait()

	all, err := o.Ledger().All()
	require.NoError(t, err)
	assert.Len(t, all, 80)
}

func TestRegrade(t *testing.T) {
	o := newOrchestrator(t, nil)
	ctx := context.Background()

	_, err := o.Grade(ctx, "s1", scoring.ExamInput(70, 100)) // 88 B
	require.NoError(t, err)
	_, err = o.Grade(ctx, "s2", scoring.ExamInput(40, 40)) // 40 F
	require.NoError(t, err)

	changes, sum, err := o.Regrade(ctx, scoring.FinalHeavy, nil)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, replay.ActionChanged, changes[0].Action)
	assert.Equal(t, "A", changes[0].NewLabel)
	assert.Equal(t, replay.ActionUnchanged, changes[1].Action)
	assert.Equal(t, 1, sum.Transitions["B->A"])

	// The active evaluator and the ledger are untouched.
	s, _ := o.Current()
	assert.Equal(t, scoring.Standard.Describe(), s.Describe())
	counts, err := o.Ledger().LabelCounts("4.0 Scale")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"B": 1, "F": 1}, counts)
}

func TestMetricsCountEvaluations(t *testing.T) {
	m := metrics.New()
	ev, err := evaluator.New(scoring.Standard, classify.FourScale)
	require.NoError(t, err)
	l, err := ledger.Open()
	require.NoError(t, err)
	defer l.Close()

	o, err := New(Deps{Evaluator: ev, Ledger: l, Metrics: m, Logger: quietLogger()})
	require.NoError(t, err)

	_, err = o.Grade(context.Background(), "s1", scoring.ExamInput(80, 90))
	require.NoError(t, err)
	_, _ = o.Grade(context.Background(), "s1", scoring.ScoreInput{})

	n, err := testutil.GatherAndCount(m.Registry, "gradepipe_evaluations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = testutil.GatherAndCount(m.Registry, "gradepipe_evaluation_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
