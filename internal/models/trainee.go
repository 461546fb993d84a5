package models

import (
	"time"

	"github.com/lib/pq"
)

// ExamFlags are the independent opt-in markers on an enrollment.
type ExamFlags struct {
	Pre   bool `json:"pre"`
	Final bool `json:"final"`
}

// Trainee is the enrollment record, keyed by account id.
type Trainee struct {
	ID        string         `db:"id" json:"id"`
	Email     string         `db:"email" json:"email"`
	Group     Group          `db:"group" json:"group"`
	Period    string         `db:"period" json:"period"`
	Lessons   pq.StringArray `db:"lessons" json:"lessons"`
	ExamPre   bool           `db:"exam_pre" json:"-"`
	ExamFinal bool           `db:"exam_final" json:"-"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// Exams folds the flat flag columns into the wire shape.
func (t *Trainee) Exams() ExamFlags {
	return ExamFlags{Pre: t.ExamPre, Final: t.ExamFinal}
}

// HasLesson reports set membership on the enrolled lessons.
func (t *Trainee) HasLesson(code string) bool {
	for _, l := range t.Lessons {
		if l == code {
			return true
		}
	}
	return false
}

// TraineeFilter captures roster filter criteria. Empty values mean "show all".
type TraineeFilter struct {
	Group    Group
	Period   string
	Page     int
	PageSize int
}
