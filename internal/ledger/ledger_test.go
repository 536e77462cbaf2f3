package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/gradepipe/internal/scoring"
	"github.com/danielpatrickdp/gradepipe/internal/transcript"
)

func openLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestStudents_PutAndGet(t *testing.T) {
	l := openLedger(t)

	require.NoError(t, l.PutStudent(transcript.Student{ID: "1", FirstName: "John", LastName: "Mark"}))
	got, err := l.GetStudent("1")
	require.NoError(t, err)
	assert.Equal(t, "John Mark", got.FullName())

	// Upsert keeps a single row.
	require.NoError(t, l.PutStudent(transcript.Student{ID: "1", FirstName: "Johnny", LastName: "Mark"}))
	got, err = l.GetStudent("1")
	require.NoError(t, err)
	assert.Equal(t, "Johnny", got.FirstName)
}

func TestStudents_NotFound(t *testing.T) {
	l := openLedger(t)
	_, err := l.GetStudent("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStudents_RequiresID(t *testing.T) {
	l := openLedger(t)
	assert.Error(t, l.PutStudent(transcript.Student{FirstName: "Anon"}))
}

func TestRecord_AssignsIDAndTime(t *testing.T) {
	l := openLedger(t)

	before := time.Now().UTC()
	e, err := l.Record(Entry{
		StudentID: "1",
		Input:     scoring.ExamInput(80, 90),
		Score:     86,
		Label:     "B",
		Strategy:  "Standard (40% midterm, 60% final)",
		Scale:     "4.0 Scale",
	})
	require.NoError(t, err)

	_, err = uuid.Parse(e.ID)
	assert.NoError(t, err)
	assert.False(t, e.CreatedAt.Before(before))

	all, err := l.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, e.ID, all[0].ID)
	assert.Equal(t, scoring.ExamInput(80, 90), all[0].Input)
	assert.Equal(t, 86.0, all[0].Score)
	assert.True(t, e.CreatedAt.Equal(all[0].CreatedAt))
}

func TestRecord_NonFiniteRoundTrip(t *testing.T) {
	l := openLedger(t)

	in := scoring.ExamInput(math.Inf(1), 90)
	_, err := l.Record(Entry{StudentID: "1", Input: in, Score: math.Inf(1), Label: "A", Scale: "4.0 Scale"})
	require.NoError(t, err)
	_, err = l.Record(Entry{StudentID: "1", Input: scoring.ExamInput(math.NaN(), math.Inf(-1)), Score: math.NaN(), Label: "F", Scale: "4.0 Scale"})
	require.NoError(t, err)

	all, err := l.All()
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.True(t, math.IsInf(all[0].Score, 1))
	assert.Equal(t, in, all[0].Input)

	assert.True(t, math.IsNaN(all[1].Score))
	assert.True(t, math.IsNaN(all[1].Input[0].Value))
	assert.True(t, math.IsInf(all[1].Input[1].Value, -1))
	assert.Equal(t, "midterm", all[1].Input[0].Name)
}

func TestQuery_CorruptRowsReported(t *testing.T) {
	tests := []struct {
		name    string
		score   string
		created string
		want    string
	}{
		{"bad-time", "86", "yesterday", "parse created_at"},
		{"bad-score", "eighty", "2026-01-02T03:04:05Z", "parse score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := openLedger(t)
			_, err := l.db.Exec(
				`INSERT INTO evaluations (id, student_id, inputs_json, score, label, strategy, scale, created_at)
				 VALUES ('x', 's1', 'null', ?, 'B', 'Standard', '4.0 Scale', ?)`,
				tt.score, tt.created)
			require.NoError(t, err)

			_, err = l.All()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestListByStudent_Order(t *testing.T) {
	l := openLedger(t)

	for i, label := range []string{"C", "B", "A"} {
		_, err := l.Record(Entry{StudentID: "s1", Score: float64(70 + i*10), Label: label, Scale: "4.0 Scale"})
		require.NoError(t, err)
	}
	_, err := l.Record(Entry{StudentID: "s2", Score: 50, Label: "F", Scale: "4.0 Scale"})
	require.NoError(t, err)

	got, err := l.ListByStudent("s1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "C", got[0].Label)
	assert.Equal(t, "A", got[2].Label)

	none, err := l.ListByStudent("nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLabelCounts(t *testing.T) {
	l := openLedger(t)

	for _, e := range []Entry{
		{StudentID: "a", Score: 95, Label: "A", Scale: "4.0 Scale"},
		{StudentID: "b", Score: 91, Label: "A", Scale: "4.0 Scale"},
		{StudentID: "c", Score: 50, Label: "F", Scale: "4.0 Scale"},
		{StudentID: "d", Score: 90, Label: "AA", Scale: "5.0 Scale"},
	} {
		_, err := l.Record(e)
		require.NoError(t, err)
	}

	counts, err := l.LabelCounts("4.0 Scale")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 2, "F": 1}, counts)
}

func TestLedgers_AreIndependent(t *testing.T) {
	a := openLedger(t)
	b := openLedger(t)

	_, err := a.Record(Entry{StudentID: "1", Score: 80, Label: "B", Scale: "4.0 Scale"})
	require.NoError(t, err)

	all, err := b.All()
	require.NoError(t, err)
	assert.Empty(t, all)
}
