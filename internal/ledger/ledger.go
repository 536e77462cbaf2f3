package ledger

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/gradepipe/internal/scoring"
	"github.com/danielpatrickdp/gradepipe/internal/transcript"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS students (
	id          TEXT PRIMARY KEY,
	first_name  TEXT NOT NULL,
	last_name   TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluations (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	student_id  TEXT NOT NULL,
	inputs_json TEXT NOT NULL,
	score       TEXT NOT NULL,
	label       TEXT NOT NULL,
	strategy    TEXT NOT NULL,
	scale       TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluations_student ON evaluations(student_id);
`
// #endregion schema

// #region types

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Entry is one recorded evaluation.
type Entry struct {
	ID        string
	StudentID string
	Input     scoring.ScoreInput
	Score     float64
	Label     string
	Strategy  string
	Scale     string
	CreatedAt time.Time
}

// #endregion types

// #region ledger-struct

// Ledger keeps students and evaluation outcomes in an in-memory SQLite
// database. Its lifetime is the owner's: nothing is written to disk and
// Close discards everything.
type Ledger struct {
	db *sql.DB
}

// Open creates an empty in-memory ledger.
func Open() (*Ledger, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Every connection to ":memory:" is a separate database; pin to one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close releases the database and all recorded data.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// #endregion ledger-struct

// #region students

// PutStudent inserts or updates a student.
func (l *Ledger) PutStudent(s transcript.Student) error {
	if s.ID == "" {
		return errors.New("put student: id is required")
	}
	_, err := l.db.Exec(
		`INSERT INTO students (id, first_name, last_name, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET first_name = excluded.first_name, last_name = excluded.last_name`,
		s.ID, s.FirstName, s.LastName, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put student %s: %w", s.ID, err)
	}
	return nil
}

// GetStudent reads a student by ID.
func (l *Ledger) GetStudent(id string) (transcript.Student, error) {
	var s transcript.Student
	err := l.db.QueryRow(
		`SELECT id, first_name, last_name FROM students WHERE id = ?`, id,
	).Scan(&s.ID, &s.FirstName, &s.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return transcript.Student{}, fmt.Errorf("student %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return transcript.Student{}, fmt.Errorf("get student %s: %w", id, err)
	}
	return s, nil
}

// #endregion students

// #region record

// Record stores an evaluation, assigning its ID and, when unset, CreatedAt.
func (l *Ledger) Record(e Entry) (Entry, error) {
	inputs, err := encodeInputs(e.Input)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal inputs: %w", err)
	}
	e.ID = uuid.New().String()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err = l.db.Exec(
		`INSERT INTO evaluations (id, student_id, inputs_json, score, label, strategy, scale, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.StudentID, string(inputs), formatFloat(e.Score), e.Label, e.Strategy, e.Scale,
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert evaluation: %w", err)
	}
	return e, nil
}

// #endregion record

// #region queries

// ListByStudent returns a student's evaluations in recording order.
func (l *Ledger) ListByStudent(studentID string) ([]Entry, error) {
	return l.query(`
		SELECT id, student_id, inputs_json, score, label, strategy, scale, created_at
		FROM evaluations WHERE student_id = ? ORDER BY seq`, studentID)
}

// All returns every evaluation in recording order.
func (l *Ledger) All() ([]Entry, error) {
	return l.query(`
		SELECT id, student_id, inputs_json, score, label, strategy, scale, created_at
		FROM evaluations ORDER BY seq`)
}

// LabelCounts returns how many evaluations landed on each label for a scale.
func (l *Ledger) LabelCounts(scale string) (map[string]int, error) {
	rows, err := l.db.Query(
		`SELECT label, COUNT(*) FROM evaluations WHERE scale = ? GROUP BY label`, scale)
	if err != nil {
		return nil, fmt.Errorf("label counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("scan label count: %w", err)
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

func (l *Ledger) query(q string, args ...any) ([]Entry, error) {
	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var inputs, score, created string
		if err := rows.Scan(&e.ID, &e.StudentID, &inputs, &score, &e.Label, &e.Strategy, &e.Scale, &created); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		if e.Input, err = decodeInputs([]byte(inputs)); err != nil {
			return nil, fmt.Errorf("unmarshal inputs %s: %w", e.ID, err)
		}
		if e.Score, err = strconv.ParseFloat(score, 64); err != nil {
			return nil, fmt.Errorf("parse score %s: %w", e.ID, err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion queries

// #region encoding

// Scores and component values are stored as text so that NaN and the
// infinities survive the round trip; JSON numbers cannot carry them.

type storedComponent struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func encodeInputs(in scoring.ScoreInput) ([]byte, error) {
	if in == nil {
		return []byte("null"), nil
	}
	out := make([]storedComponent, len(in))
	for i, c := range in {
		out[i] = storedComponent{Name: c.Name, Value: formatFloat(c.Value)}
	}
	return json.Marshal(out)
}

func decodeInputs(b []byte) (scoring.ScoreInput, error) {
	var stored []storedComponent
	if err := json.Unmarshal(b, &stored); err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}
	in := make(scoring.ScoreInput, len(stored))
	for i, c := range stored {
		v, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", c.Name, err)
		}
		in[i] = scoring.Component{Name: c.Name, Value: v}
	}
	return in, nil
}

// #endregion encoding
