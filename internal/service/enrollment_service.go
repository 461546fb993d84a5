package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/skyprep/aviation-exam-api/internal/models"
	appErrors "github.com/skyprep/aviation-exam-api/pkg/errors"
)

type traineeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Trainee, error)
	Create(ctx context.Context, trainee *models.Trainee) error
	UpdateSelection(ctx context.Context, id string, lessons []string, exams models.ExamFlags, updatedAt time.Time) error
}

type accountReader interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

// RegisterEnrollmentRequest describes enrollment creation.
type RegisterEnrollmentRequest struct {
	AccountID string       `json:"account_id" validate:"required"`
	Email     string       `json:"email" validate:"required,email"`
	Group     models.Group `json:"group" validate:"required"`
	Period    string       `json:"period" validate:"required"`
}

// SaveSelectionRequest is the full-replace course selection payload. Callers
// resend the complete desired lesson set each time.
type SaveSelectionRequest struct {
	Lessons []string         `json:"lessons"`
	Exams   models.ExamFlags `json:"exams"`
}

// SelectionView is what the course selection surface edits.
type SelectionView struct {
	Group   models.Group     `json:"group"`
	Period  string           `json:"period"`
	Lessons []string         `json:"lessons"`
	Exams   models.ExamFlags `json:"exams"`
}

// ProfileView is the trainee home payload.
type ProfileView struct {
	Email         string           `json:"email"`
	EmailVerified bool             `json:"email_verified"`
	Group         models.Group     `json:"group"`
	Period        string           `json:"period"`
	LessonCount   int              `json:"lesson_count"`
	Exams         models.ExamFlags `json:"exams"`
	RegisteredAt  time.Time        `json:"registered_at"`
}

// EnrollmentService manages a trainee's enrollment record.
type EnrollmentService struct {
	repo      traineeRepository
	accounts  accountReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo traineeRepository, accounts accountReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, accounts: accounts, validator: validate, logger: logger}
}

// Register creates an enrollment record with an empty lesson selection.
// Course selection happens as a separate follow-up step.
func (s *EnrollmentService) Register(ctx context.Context, req RegisterEnrollmentRequest) (*models.Trainee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if !models.ValidGroup(req.Group) {
		return nil, appErrors.Clone(appErrors.ErrInvalidGroup, "unknown training group")
	}
	if !models.ValidPeriod(req.Group, req.Period) {
		return nil, appErrors.Clone(appErrors.ErrInvalidPeriod, "period is not valid for the group")
	}

	trainee := &models.Trainee{
		ID:      req.AccountID,
		Email:   req.Email,
		Group:   req.Group,
		Period:  req.Period,
		Lessons: pq.StringArray{},
	}
	if err := s.repo.Create(ctx, trainee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment record")
	}
	return trainee, nil
}

// LoadForEditing returns the current selection, or an empty default when no
// record exists yet so the editing surface can cold-start safely.
func (s *EnrollmentService) LoadForEditing(ctx context.Context, accountID string) (*SelectionView, error) {
	trainee, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &SelectionView{Lessons: []string{}}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment record")
	}
	return selectionView(trainee), nil
}

// SaveSelection replaces the lesson set and exam flags wholesale. Validation
// runs before any write; on failure the prior record is untouched.
func (s *EnrollmentService) SaveSelection(ctx context.Context, accountID string, req SaveSelectionRequest) (*SelectionView, error) {
	if len(req.Lessons) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptySelection, "at least one lesson must be selected")
	}

	trainee, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnknownAccount, "no enrollment record for account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment record")
	}

	lessons, err := normalizeLessons(trainee.Group, req.Lessons)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateSelection(ctx, accountID, lessons, req.Exams, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save selection")
	}

	trainee.Lessons = lessons
	trainee.ExamPre = req.Exams.Pre
	trainee.ExamFinal = req.Exams.Final
	trainee.UpdatedAt = now
	return selectionView(trainee), nil
}

// Profile composes the trainee home payload from the account and the
// enrollment record.
func (s *EnrollmentService) Profile(ctx context.Context, accountID string) (*ProfileView, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnknownAccount, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	trainee, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnknownAccount, "no enrollment record for account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment record")
	}

	return &ProfileView{
		Email:         account.Email,
		EmailVerified: account.EmailVerified,
		Group:         trainee.Group,
		Period:        trainee.Period,
		LessonCount:   len(trainee.Lessons),
		Exams:         trainee.Exams(),
		RegisteredAt:  trainee.CreatedAt,
	}, nil
}

func selectionView(t *models.Trainee) *SelectionView {
	lessons := make([]string, len(t.Lessons))
	copy(lessons, t.Lessons)
	return &SelectionView{
		Group:   t.Group,
		Period:  t.Period,
		Lessons: lessons,
		Exams:   t.Exams(),
	}
}

// normalizeLessons enforces catalog membership and set semantics, preserving
// first-occurrence order.
func normalizeLessons(group models.Group, lessons []string) ([]string, error) {
	catalog := make(map[string]struct{})
	for _, code := range models.CourseCodesFor(group) {
		catalog[code] = struct{}{}
	}

	seen := make(map[string]struct{}, len(lessons))
	out := make([]string, 0, len(lessons))
	for _, code := range lessons {
		if _, ok := catalog[code]; !ok {
			return nil, appErrors.Clone(appErrors.ErrInvalidLesson, "lesson "+code+" is not part of the group catalog")
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}
