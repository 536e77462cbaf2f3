package transcript

import (
	"errors"
	"fmt"
)

// #region types

// Student identifies a graded student.
type Student struct {
	ID        string `yaml:"id" json:"id"`
	FirstName string `yaml:"first_name" json:"first_name"`
	LastName  string `yaml:"last_name" json:"last_name"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// Course is a creditable course.
type Course struct {
	Code   string `yaml:"code" json:"code"`
	Name   string `yaml:"name" json:"name"`
	Credit int    `yaml:"credit" json:"credit"`
}

// Entry is one graded course on a transcript.
type Entry struct {
	Course Course
	Label  string
}

// #endregion

// #region point-scales

// ErrUnknownLabel is returned when a label has no grade-point value.
var ErrUnknownLabel = errors.New("unknown grade label")

// PointScale maps labels to grade points.
type PointScale map[string]float64

// FourPoints pairs with the A-F letter scale.
var FourPoints = PointScale{"A": 4.0, "B": 3.0, "C": 2.0, "D": 1.0, "F": 0}

// FivePoints pairs with the AA-FF scale. BB sits between BA and CB.
var FivePoints = PointScale{"AA": 4.0, "BA": 3.5, "BB": 3.25, "CB": 3.0, "CC": 2.5, "FF": 0}

// Points returns the grade points for label.
func (p PointScale) Points(label string) (float64, error) {
	v, ok := p[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return v, nil
}

// #endregion

// #region transcript

// Transcript collects graded courses for one student.
type Transcript struct {
	Student Student
	entries []Entry
}

// New creates an empty transcript.
func New(s Student) *Transcript {
	return &Transcript{Student: s}
}

// Add records a course grade. A later grade for the same course code
// replaces the earlier one.
func (t *Transcript) Add(c Course, label string) {
	for i, e := range t.entries {
		if e.Course.Code == c.Code {
			t.entries[i] = Entry{Course: c, Label: label}
			return
		}
	}
	t.entries = append(t.entries, Entry{Course: c, Label: label})
}

// Entries returns a copy of the graded courses in insertion order.
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Credits returns the total credits attempted.
func (t *Transcript) Credits() int {
	total := 0
	for _, e := range t.entries {
		total += e.Course.Credit
	}
	return total
}

// GPA returns the credit-weighted grade point average. An empty transcript
// or one with zero total credits has a GPA of 0.
func (t *Transcript) GPA(scale PointScale) (float64, error) {
	var totalPoints float64
	totalCredits := 0
	for _, e := range t.entries {
		pts, err := scale.Points(e.Label)
		if err != nil {
			return 0, fmt.Errorf("course %s: %w", e.Course.Code, err)
		}
		totalPoints += pts * float64(e.Course.Credit)
		totalCredits += e.Course.Credit
	}
	if totalCredits == 0 {
		return 0, nil
	}
	return totalPoints / float64(totalCredits), nil
}

// #endregion
