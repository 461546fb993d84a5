package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skyprep/aviation-exam-api/internal/models"
)

// CalendarRepository handles persistence of scheduled exam events.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs the repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// Create appends a new exam event. Duplicate (account, lesson, exam type)
// combinations are allowed.
func (r *CalendarRepository) Create(ctx context.Context, event *models.ExamEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO calendar_events (id, account_id, account_email, event_date, lesson, exam_type, notes, created_at) VALUES (:id, :account_id, :account_email, :event_date, :lesson, :exam_type, :notes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create exam event: %w", err)
	}
	return nil
}

// GetByID returns a single exam event.
func (r *CalendarRepository) GetByID(ctx context.Context, id string) (*models.ExamEvent, error) {
	const query = `SELECT id, account_id, account_email, event_date, lesson, exam_type, notes, created_at FROM calendar_events WHERE id = $1 LIMIT 1`
	var event models.ExamEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find exam event: %w", err)
	}
	return &event, nil
}

// Delete removes an exam event, reporting whether a row existed.
func (r *CalendarRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM calendar_events WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete exam event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete exam event: %w", err)
	}
	return affected > 0, nil
}

// ListSorted returns all events ascending by date with a stable tie-break on
// creation order.
func (r *CalendarRepository) ListSorted(ctx context.Context) ([]models.ExamEvent, error) {
	const query = `SELECT id, account_id, account_email, event_date, lesson, exam_type, notes, created_at FROM calendar_events ORDER BY event_date ASC, created_at ASC, id ASC`
	var events []models.ExamEvent
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list exam events: %w", err)
	}
	return events, nil
}
