package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skyprep/aviation-exam-api/internal/models"
	appErrors "github.com/skyprep/aviation-exam-api/pkg/errors"
)

type calendarRepository interface {
	Create(ctx context.Context, event *models.ExamEvent) error
	GetByID(ctx context.Context, id string) (*models.ExamEvent, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListSorted(ctx context.Context) ([]models.ExamEvent, error)
}

type enrollmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Trainee, error)
}

// CreateExamEventRequest describes the admin payload for scheduling an exam.
type CreateExamEventRequest struct {
	AccountID string `json:"account_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Lesson    string `json:"lesson" validate:"required"`
	ExamType  string `json:"exam_type" validate:"required"`
	Notes     string `json:"notes"`
	ActorID   string `json:"-"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// ScheduleService manages administrator-created exam events.
type ScheduleService struct {
	repo        calendarRepository
	enrollments enrollmentReader
	audit       auditWriter
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewScheduleService constructs the service.
func NewScheduleService(repo calendarRepository, enrollments enrollmentReader, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		repo:        repo,
		enrollments: enrollments,
		audit:       audit,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// Create schedules an exam for an enrolled trainee. The trainee's email is
// snapshotted onto the event at creation time and never refreshed.
func (s *ScheduleService) Create(ctx context.Context, req CreateExamEventRequest) (*models.ExamEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMissingField.Code, appErrors.ErrMissingField.Status, "account, date and lesson are required")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be formatted YYYY-MM-DD")
	}

	examType := models.ExamType(req.ExamType)
	if !models.ValidExamType(examType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam type must be pre or final")
	}

	trainee, err := s.enrollments.FindByID(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnknownAccount, "no enrollment record for account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment record")
	}

	if !trainee.HasLesson(req.Lesson) {
		return nil, appErrors.Clone(appErrors.ErrInvalidLesson, "trainee is not enrolled in lesson "+req.Lesson)
	}

	event := &models.ExamEvent{
		AccountID:    trainee.ID,
		AccountEmail: trainee.Email,
		Date:         date,
		Lesson:       req.Lesson,
		ExamType:     examType,
	}
	if req.Notes != "" {
		notes := req.Notes
		event.Notes = &notes
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam event")
	}

	s.writeAudit(ctx, req.ActorID, models.AuditActionExamCreate, event.ID, req.IP, req.UserAgent, eventDetail(event))

	return event, nil
}

// Delete removes an exam event. The removed event's summary goes into the
// audit trail, since the row itself is gone afterwards.
func (s *ScheduleService) Delete(ctx context.Context, id, actorID, ip, userAgent string) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam event")
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam event")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "exam event not found")
	}

	s.writeAudit(ctx, actorID, models.AuditActionExamDelete, id, ip, userAgent, eventDetail(event))

	return nil
}

// ListSorted returns all events ascending by date. Equal dates keep creation
// order. is_upcoming marks events dated today or later, for display emphasis
// only.
func (s *ScheduleService) ListSorted(ctx context.Context) ([]models.ExamEventView, error) {
	events, err := s.repo.ListSorted(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exam events")
	}

	today := truncateToDate(s.now().UTC())
	views := make([]models.ExamEventView, len(events))
	for i, event := range events {
		views[i] = models.ExamEventView{
			ExamEvent:  event,
			IsUpcoming: !truncateToDate(event.Date).Before(today),
		}
	}
	return views, nil
}

func (s *ScheduleService) writeAudit(ctx context.Context, actorID, action, eventID, ip, userAgent, detail string) {
	if s.audit == nil {
		return
	}
	var accountID *string
	if actorID != "" {
		accountID = &actorID
	}
	if err := s.audit.Create(ctx, &models.AuditLog{
		AccountID:  accountID,
		Action:     action,
		Resource:   "calendar",
		ResourceID: &eventID,
		Detail:     []byte(detail),
		IPAddress:  ip,
		UserAgent:  userAgent,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func eventDetail(event *models.ExamEvent) string {
	return fmt.Sprintf(`{"account_id":%q,"lesson":%q,"exam_type":%q,"date":%q}`,
		event.AccountID, event.Lesson, event.ExamType, event.Date.Format("2006-01-02"))
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
