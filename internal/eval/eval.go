package eval

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/gradepipe/internal/classify"
	"github.com/danielpatrickdp/gradepipe/internal/scoring"
)

// #region harness
// Harness audits a scoring strategy and classification table before use.
type Harness struct {
	config AuditConfig
}

// NewHarness creates an audit harness with the given configuration.
func NewHarness(config AuditConfig) *Harness {
	return &Harness{config: config}
}

// Run checks the pair and returns pass/fail with metrics. The weight-sum
// check only applies to weighted strategies and is informational: weights
// that do not sum to 1.0 are the caller's call.
func (h *Harness) Run(strategy scoring.Strategy, table *classify.Table) AuditResult {
	var metrics []AuditMetric
	var failReasons []string

	// 1. Weight sum
	if w, ok := strategy.(*scoring.Weighted); ok {
		sum := 0.0
		for _, x := range w.Weights() {
			sum += x
		}
		metrics = append(metrics, AuditMetric{
			Name:  "weight_sum",
			Value: sum,
			Pass:  math.Abs(sum-1.0) <= h.config.WeightTolerance,
		})
	}

	// 2. Totality over probes and every boundary
	probes := h.probes(table)
	labels := make(map[string]bool)
	for _, l := range table.Labels() {
		labels[l] = true
	}
	unknown := 0
	for _, p := range probes {
		if got := table.Classify(p); got == "" || !labels[got] {
			unknown++
		}
	}
	metrics = append(metrics, AuditMetric{
		Name:     "totality",
		Value:    float64(len(probes) - unknown),
		Pass:     unknown == 0,
		Blocking: true,
	})
	if unknown > 0 {
		failReasons = append(failReasons, fmt.Sprintf("%d of %d probes produced no label", unknown, len(probes)))
	}

	// 3. Inclusive lower bounds
	for _, r := range table.Ranges() {
		if math.IsInf(r.Lower, -1) {
			continue
		}
		got := table.Classify(r.Lower)
		pass := got == r.Label
		metrics = append(metrics, AuditMetric{
			Name:     fmt.Sprintf("boundary_%s", r.Label),
			Value:    r.Lower,
			Pass:     pass,
			Blocking: true,
		})
		if !pass {
			failReasons = append(failReasons, fmt.Sprintf("lower bound %g classified as %q, want %q", r.Lower, got, r.Label))
		}
	}

	// 4. Gaps between authored ranges
	gaps := 0
	for _, p := range probes {
		if _, err := table.ClassifyStrict(p); err != nil {
			gaps++
		}
	}
	gapCount := len(table.Gaps())
	metrics = append(metrics, AuditMetric{
		Name:     "gaps",
		Value:    float64(gapCount),
		Pass:     gapCount == 0 && gaps == 0,
		Blocking: true,
	})
	if gapCount > 0 || gaps > 0 {
		failReasons = append(failReasons, fmt.Sprintf("%d uncovered interval(s) between ranges", gapCount))
	}

	reason := "all checks passed"
	if len(failReasons) > 0 {
		reason = fmt.Sprintf("audit failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("audit failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return AuditResult{
		Passed:  len(failReasons) == 0,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion harness

// #region helpers
// probes returns the configured probes plus each finite bound and the
// value just below it.
func (h *Harness) probes(table *classify.Table) []float64 {
	out := append([]float64(nil), h.config.Probes...)
	for _, r := range table.Ranges() {
		for _, b := range []float64{r.Lower, r.Upper} {
			if math.IsInf(b, 0) {
				continue
			}
			out = append(out, b, math.Nextafter(b, math.Inf(-1)))
		}
	}
	return out
}

// #endregion helpers
