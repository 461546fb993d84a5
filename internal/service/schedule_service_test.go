package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skyprep/aviation-exam-api/internal/models"
	appErrors "github.com/skyprep/aviation-exam-api/pkg/errors"
)

type mockCalendarStore struct {
	events  []models.ExamEvent
	deleted []string
}

func (m *mockCalendarStore) Create(ctx context.Context, event *models.ExamEvent) error {
	if event.ID == "" {
		event.ID = "evt-" + event.Lesson
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *mockCalendarStore) GetByID(ctx context.Context, id string) (*models.ExamEvent, error) {
	for _, e := range m.events {
		if e.ID == id {
			event := e
			return &event, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockCalendarStore) Delete(ctx context.Context, id string) (bool, error) {
	for i, e := range m.events {
		if e.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			m.deleted = append(m.deleted, id)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCalendarStore) ListSorted(ctx context.Context) ([]models.ExamEvent, error) {
	return m.events, nil
}

func newScheduleFixture(store *mockCalendarStore, trainees *mockTraineeStore) (*ScheduleService, *mockAudit) {
	audit := &mockAudit{}
	svc := NewScheduleService(store, trainees, audit, validator.New(), zap.NewNop())
	return svc, audit
}

func enrolledTrainee() *mockTraineeStore {
	return &mockTraineeStore{byID: map[string]*models.Trainee{
		"a1": {ID: "a1", Email: "pilot@example.com", Group: models.GroupPPL, Period: "PPL aktif", Lessons: pq.StringArray{"10", "50"}},
	}}
}

func TestCreateExamEvent(t *testing.T) {
	store := &mockCalendarStore{}
	svc, audit := newScheduleFixture(store, enrolledTrainee())

	event, err := svc.Create(context.Background(), CreateExamEventRequest{
		AccountID: "a1",
		Date:      "2025-06-15",
		Lesson:    "50",
		ExamType:  "pre",
		Notes:     "saat 10:00",
		ActorID:   "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "pilot@example.com", event.AccountEmail)
	assert.Equal(t, models.ExamTypePre, event.ExamType)
	require.NotNil(t, event.Notes)
	assert.Equal(t, "saat 10:00", *event.Notes)
	require.Len(t, store.events, 1)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionExamCreate, audit.logs[0].Action)
}

func TestCreateExamEventMissingFields(t *testing.T) {
	store := &mockCalendarStore{}
	svc, _ := newScheduleFixture(store, enrolledTrainee())

	_, err := svc.Create(context.Background(), CreateExamEventRequest{
		AccountID: "a1",
		Lesson:    "50",
		ExamType:  "pre",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMissingField.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.events)
}

func TestCreateExamEventUnknownAccount(t *testing.T) {
	store := &mockCalendarStore{}
	svc, _ := newScheduleFixture(store, &mockTraineeStore{})

	_, err := svc.Create(context.Background(), CreateExamEventRequest{
		AccountID: "ghost",
		Date:      "2025-06-15",
		Lesson:    "50",
		ExamType:  "pre",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnknownAccount.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.events)
}

func TestCreateExamEventLessonNotEnrolled(t *testing.T) {
	store := &mockCalendarStore{}
	svc, _ := newScheduleFixture(store, enrolledTrainee())

	_, err := svc.Create(context.Background(), CreateExamEventRequest{
		AccountID: "a1",
		Date:      "2025-06-15",
		Lesson:    "90",
		ExamType:  "final",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidLesson.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.events)
}

func TestCreateExamEventBadDate(t *testing.T) {
	svc, _ := newScheduleFixture(&mockCalendarStore{}, enrolledTrainee())

	_, err := svc.Create(context.Background(), CreateExamEventRequest{
		AccountID: "a1",
		Date:      "15.06.2025",
		Lesson:    "50",
		ExamType:  "pre",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDeleteExamEvent(t *testing.T) {
	store := &mockCalendarStore{events: []models.ExamEvent{
		{ID: "evt-1", AccountID: "a1", Lesson: "50", ExamType: models.ExamTypePre, Date: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
	}}
	svc, audit := newScheduleFixture(store, enrolledTrainee())

	require.NoError(t, svc.Delete(context.Background(), "evt-1", "admin-1", "127.0.0.1", "test"))
	assert.Empty(t, store.events)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionExamDelete, audit.logs[0].Action)

	// The audit trail keeps the removed event's summary.
	assert.JSONEq(t, `{"account_id":"a1","lesson":"50","exam_type":"pre","date":"2025-06-15"}`, string(audit.logs[0].Detail))

	err := svc.Delete(context.Background(), "evt-1", "admin-1", "127.0.0.1", "test")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListSortedUpcomingFlag(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }
	store := &mockCalendarStore{events: []models.ExamEvent{
		{ID: "past", Date: day(9)},
		{ID: "today", Date: day(10)},
		{ID: "future", Date: day(11)},
	}}
	svc, _ := newScheduleFixture(store, enrolledTrainee())
	svc.now = func() time.Time { return time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC) }

	views, err := svc.ListSorted(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.False(t, views[0].IsUpcoming)
	assert.True(t, views[1].IsUpcoming)
	assert.True(t, views[2].IsUpcoming)
}

func TestListSortedKeepsStoreOrder(t *testing.T) {
	same := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	store := &mockCalendarStore{events: []models.ExamEvent{
		{ID: "first", Date: same},
		{ID: "second", Date: same},
	}}
	svc, _ := newScheduleFixture(store, enrolledTrainee())

	views, err := svc.ListSorted(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", views[0].ID)
	assert.Equal(t, "second", views[1].ID)
}
