package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"GRADEPIPE_CONFIG", "GRADEPIPE_STRATEGY", "GRADEPIPE_SCALE", "GRADEPIPE_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestEvaluate(t *testing.T) {
	out, err := run(t, "evaluate", "--quiet", "80", "90")
	require.NoError(t, err)
	assert.Contains(t, out, "Score:    86.00")
	assert.Contains(t, out, "Label:    B")
	assert.Contains(t, out, "Scale:    4.0 Scale")
}

func TestEvaluate_NotifiesConfiguredChannels(t *testing.T) {
	out, err := run(t, "evaluate", "--student", "Ada", "--scale", "five", "--strategy", "equal", "80", "90")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada - Average: 85.00, Letter: AA")
	assert.Contains(t, out, "Label:    AA")
}

func TestEvaluate_InfiniteScore(t *testing.T) {
	out, err := run(t, "evaluate", "--quiet", "Inf", "90")
	require.NoError(t, err)
	assert.Contains(t, out, "Score:    +Inf")
	assert.Contains(t, out, "Label:    A")
}

func TestEvaluate_Rejects(t *testing.T) {
	_, err := run(t, "evaluate", "eighty")
	assert.Error(t, err)

	_, err = run(t, "evaluate", "--quiet", "80")
	assert.Error(t, err, "standard strategy needs two components")

	_, err = run(t, "evaluate", "--strategy", "vibes", "80", "90")
	assert.Error(t, err)
}

const rosterYAML = `
students:
  - id: s1
    first_name: Ada
    last_name: Byron
    scores: [{name: midterm, value: 70}, {name: final, value: 100}]
  - id: s2
    first_name: Alan
    last_name: Turing
    scores: [{name: midterm, value: 40}, {name: final, value: 40}]
`

func TestBatch_WithRegrade(t *testing.T) {
	path := writeFile(t, "roster.yaml", rosterYAML)

	out, err := run(t, "batch", "--file", path, "--regrade-strategy", "final_heavy")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Byron")
	assert.Contains(t, out, "88.00")
	assert.Contains(t, out, "s1  B (88.00) -> A (91.00)")
	assert.Contains(t, out, "B->A")
	assert.Contains(t, out, "changed 1 of 2, errors 0")
}

func TestBatch_Metrics(t *testing.T) {
	path := writeFile(t, "roster.yaml", rosterYAML)

	out, err := run(t, "batch", "--file", path, "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, `gradepipe_evaluations_total{label="B",scale="4.0 Scale"} 1`)
	assert.Contains(t, out, `gradepipe_evaluations_total{label="F",scale="4.0 Scale"} 1`)
}

func TestBatch_ContinueOnError(t *testing.T) {
	path := writeFile(t, "roster.yaml", rosterYAML+`
  - id: s3
    first_name: Grace
    last_name: Hopper
    scores: [{name: only, value: 99}]
`)

	_, err := run(t, "batch", "--file", path)
	assert.Error(t, err)

	out, err := run(t, "batch", "--file", path, "--continue-on-error", "--workers", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Grace Hopper")
	assert.Contains(t, out, "failed 1")
}

func TestBatch_RequiresFile(t *testing.T) {
	_, err := run(t, "batch")
	assert.Error(t, err)
}

func TestRank_Cheapest(t *testing.T) {
	out, err := run(t, "rank", "--scorer", "cheapest")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], "hostel-d")
	assert.Contains(t, lines[4], "hotel-c")
}

func TestRank_UnknownScorer(t *testing.T) {
	_, err := run(t, "rank", "--scorer", "random")
	assert.Error(t, err)
}

func TestGPA(t *testing.T) {
	path := writeFile(t, "transcript.yaml", `
student: {id: s1, first_name: Ada, last_name: Byron}
scale: five
courses:
  - {code: CS101, name: Programming, credit: 4, label: AA}
  - {code: MA101, name: Calculus, credit: 2, score: 70}
`)
	out, err := run(t, "gpa", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Byron")
	assert.Contains(t, out, "BB")
	assert.Contains(t, out, "Credits: 6")
	assert.Contains(t, out, "GPA:     3.75")
}

func TestAudit_BuiltIns(t *testing.T) {
	out, err := run(t, "audit", "--scale", "five")
	require.NoError(t, err)
	assert.Contains(t, out, "totality")
}

func TestListings(t *testing.T) {
	out, err := run(t, "scales")
	require.NoError(t, err)
	assert.Contains(t, out, "four: 4.0 Scale")
	assert.Contains(t, out, "[90, +inf)")
	assert.Contains(t, out, "FF     otherwise")

	out, err = run(t, "strategies")
	require.NoError(t, err)
	assert.Contains(t, out, "standard")
	assert.Contains(t, out, "Standard (40% midterm, 60% final)")
}
