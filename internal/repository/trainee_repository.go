package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/skyprep/aviation-exam-api/internal/models"
)

const traineeColumns = `id, email, "group", period, lessons, exam_pre, exam_final, created_at, updated_at`

// TraineeRepository handles persistence of enrollment records.
type TraineeRepository struct {
	db *sqlx.DB
}

// NewTraineeRepository constructs the repository.
func NewTraineeRepository(db *sqlx.DB) *TraineeRepository {
	return &TraineeRepository{db: db}
}

// FindByID returns the enrollment record for an account.
func (r *TraineeRepository) FindByID(ctx context.Context, id string) (*models.Trainee, error) {
	query := fmt.Sprintf(`SELECT %s FROM trainees WHERE id = $1 LIMIT 1`, traineeColumns)
	var trainee models.Trainee
	if err := r.db.GetContext(ctx, &trainee, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find trainee by id: %w", err)
	}
	return &trainee, nil
}

// Create inserts a new enrollment record.
func (r *TraineeRepository) Create(ctx context.Context, trainee *models.Trainee) error {
	now := time.Now().UTC()
	if trainee.CreatedAt.IsZero() {
		trainee.CreatedAt = now
	}
	trainee.UpdatedAt = now
	if trainee.Lessons == nil {
		trainee.Lessons = pq.StringArray{}
	}
	const query = `INSERT INTO trainees (id, email, "group", period, lessons, exam_pre, exam_final, created_at, updated_at) VALUES (:id, :email, :group, :period, :lessons, :exam_pre, :exam_final, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, trainee); err != nil {
		return fmt.Errorf("create trainee: %w", err)
	}
	return nil
}

// UpdateSelection replaces the lesson set and exam flags, bumping updated_at.
func (r *TraineeRepository) UpdateSelection(ctx context.Context, id string, lessons []string, exams models.ExamFlags, updatedAt time.Time) error {
	const query = `UPDATE trainees SET lessons = $2, exam_pre = $3, exam_final = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, pq.StringArray(lessons), exams.Pre, exams.Final, updatedAt); err != nil {
		return fmt.Errorf("update trainee selection: %w", err)
	}
	return nil
}

// List returns a filtered page of the roster plus the filtered total.
func (r *TraineeRepository) List(ctx context.Context, filter models.TraineeFilter) ([]models.Trainee, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Group != "" {
		conditions = append(conditions, fmt.Sprintf(`"group" = $%d`, len(args)+1))
		args = append(args, filter.Group)
	}
	if filter.Period != "" {
		conditions = append(conditions, fmt.Sprintf("period = $%d", len(args)+1))
		args = append(args, filter.Period)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM trainees%s ORDER BY created_at ASC, id ASC LIMIT %d OFFSET %d`, traineeColumns, clause, size, (page-1)*size)
	var trainees []models.Trainee
	if err := r.db.SelectContext(ctx, &trainees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list trainees: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM trainees" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count trainees: %w", err)
	}

	return trainees, total, nil
}

// ListAll returns the full enrollment collection, in registration order.
func (r *TraineeRepository) ListAll(ctx context.Context) ([]models.Trainee, error) {
	query := fmt.Sprintf(`SELECT %s FROM trainees ORDER BY created_at ASC, id ASC`, traineeColumns)
	var trainees []models.Trainee
	if err := r.db.SelectContext(ctx, &trainees, query); err != nil {
		return nil, fmt.Errorf("list all trainees: %w", err)
	}
	return trainees, nil
}
