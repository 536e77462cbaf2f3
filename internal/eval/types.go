package eval

import "math"

// #region audit-config
// AuditConfig holds thresholds for auditing a strategy/table pair.
type AuditConfig struct {
	WeightTolerance float64   // weight sums within this of 1.0 pass
	Probes          []float64 // extra scores to classify on top of the table's own boundaries
}

// DefaultAuditConfig returns the probes every table must survive.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		WeightTolerance: 1e-9,
		Probes: []float64{
			math.Inf(-1), -1e9, -1, 0, 50, 100, 1e9, math.Inf(1), math.NaN(),
		},
	}
}

// #endregion audit-config

// #region audit-metric
// AuditMetric captures a single audit check result.
type AuditMetric struct {
	Name     string
	Value    float64
	Pass     bool
	Blocking bool // informational checks never fail the audit
}

// #endregion audit-metric

// #region audit-result
// AuditResult is the output of an audit run.
type AuditResult struct {
	Passed  bool
	Metrics []AuditMetric
	Reason  string
}

// #endregion audit-result
