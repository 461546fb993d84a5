package models

import "time"

// ExamType is the phase of a scheduled exam.
type ExamType string

const (
	ExamTypePre   ExamType = "pre"
	ExamTypeFinal ExamType = "final"
)

// ValidExamType reports whether the exam type is a known phase.
func ValidExamType(t ExamType) bool {
	return t == ExamTypePre || t == ExamTypeFinal
}

// ExamEvent is an administrator-scheduled calendar entry. AccountEmail is a
// snapshot taken at creation time and never refreshed afterwards.
type ExamEvent struct {
	ID           string    `db:"id" json:"id"`
	AccountID    string    `db:"account_id" json:"account_id"`
	AccountEmail string    `db:"account_email" json:"account_email"`
	Date         time.Time `db:"event_date" json:"date"`
	Lesson       string    `db:"lesson" json:"lesson"`
	ExamType     ExamType  `db:"exam_type" json:"exam_type"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ExamEventView decorates an event with display-only derivations.
type ExamEventView struct {
	ExamEvent
	IsUpcoming bool `json:"is_upcoming"`
}
