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

type mockTraineeStore struct {
	byID       map[string]*models.Trainee
	all        []models.Trainee
	listErr    error
	updateCnt  int
	lastUpdate struct {
		id      string
		lessons []string
		exams   models.ExamFlags
	}
}

func (m *mockTraineeStore) FindByID(ctx context.Context, id string) (*models.Trainee, error) {
	t, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (m *mockTraineeStore) Create(ctx context.Context, trainee *models.Trainee) error {
	if m.byID == nil {
		m.byID = make(map[string]*models.Trainee)
	}
	m.byID[trainee.ID] = trainee
	return nil
}

func (m *mockTraineeStore) UpdateSelection(ctx context.Context, id string, lessons []string, exams models.ExamFlags, updatedAt time.Time) error {
	m.updateCnt++
	m.lastUpdate.id = id
	m.lastUpdate.lessons = lessons
	m.lastUpdate.exams = exams
	if t, ok := m.byID[id]; ok {
		t.Lessons = pq.StringArray(lessons)
		t.ExamPre = exams.Pre
		t.ExamFinal = exams.Final
		t.UpdatedAt = updatedAt
	}
	return nil
}

func (m *mockTraineeStore) List(ctx context.Context, filter models.TraineeFilter) ([]models.Trainee, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.all, len(m.all), nil
}

func (m *mockTraineeStore) ListAll(ctx context.Context) ([]models.Trainee, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.all, nil
}

func newEnrollmentFixture(store *mockTraineeStore, accounts *mockAccountStore) *EnrollmentService {
	return NewEnrollmentService(store, accounts, validator.New(), zap.NewNop())
}

func TestRegisterCreatesEmptySelection(t *testing.T) {
	store := &mockTraineeStore{}
	svc := newEnrollmentFixture(store, &mockAccountStore{})

	trainee, err := svc.Register(context.Background(), RegisterEnrollmentRequest{
		AccountID: "a1",
		Email:     "pilot@example.com",
		Group:     models.GroupPPL,
		Period:    "PPL aktif",
	})
	require.NoError(t, err)
	assert.Empty(t, trainee.Lessons)
	assert.False(t, trainee.ExamPre)
	assert.False(t, trainee.ExamFinal)
	require.Contains(t, store.byID, "a1")
}

func TestRegisterRejectsUnknownGroup(t *testing.T) {
	svc := newEnrollmentFixture(&mockTraineeStore{}, &mockAccountStore{})

	_, err := svc.Register(context.Background(), RegisterEnrollmentRequest{
		AccountID: "a1",
		Email:     "pilot@example.com",
		Group:     "CPL",
		Period:    "PPL aktif",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidGroup.Code, appErrors.FromError(err).Code)
}

func TestRegisterRejectsForeignPeriod(t *testing.T) {
	svc := newEnrollmentFixture(&mockTraineeStore{}, &mockAccountStore{})

	_, err := svc.Register(context.Background(), RegisterEnrollmentRequest{
		AccountID: "a1",
		Email:     "pilot@example.com",
		Group:     models.GroupPPL,
		Period:    "ATPL aktif",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidPeriod.Code, appErrors.FromError(err).Code)
}

func TestSelectionRoundTrip(t *testing.T) {
	store := &mockTraineeStore{}
	svc := newEnrollmentFixture(store, &mockAccountStore{})

	_, err := svc.Register(context.Background(), RegisterEnrollmentRequest{
		AccountID: "a1",
		Email:     "pilot@example.com",
		Group:     models.GroupPPL,
		Period:    "PPL aktif",
	})
	require.NoError(t, err)

	saved, err := svc.SaveSelection(context.Background(), "a1", SaveSelectionRequest{
		Lessons: []string{"10", "20"},
		Exams:   models.ExamFlags{Pre: true, Final: false},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20"}, saved.Lessons)

	view, err := svc.LoadForEditing(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20"}, view.Lessons)
	assert.True(t, view.Exams.Pre)
	assert.False(t, view.Exams.Final)
}

func TestSaveSelectionEmptyLeavesRecordUntouched(t *testing.T) {
	store := &mockTraineeStore{byID: map[string]*models.Trainee{
		"a1": {ID: "a1", Group: models.GroupPPL, Period: "PPL aktif", Lessons: pq.StringArray{"10"}},
	}}
	svc := newEnrollmentFixture(store, &mockAccountStore{})

	_, err := svc.SaveSelection(context.Background(), "a1", SaveSelectionRequest{Lessons: []string{}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptySelection.Code, appErrors.FromError(err).Code)
	assert.Zero(t, store.updateCnt)
	assert.Equal(t, pq.StringArray{"10"}, store.byID["a1"].Lessons)
}

func TestSaveSelectionRejectsOffCatalogLesson(t *testing.T) {
	store := &mockTraineeStore{byID: map[string]*models.Trainee{
		"a1": {ID: "a1", Group: models.GroupPPL, Period: "PPL aktif"},
	}}
	svc := newEnrollmentFixture(store, &mockAccountStore{})

	// 21 exists only in the ATPL catalog.
	_, err := svc.SaveSelection(context.Background(), "a1", SaveSelectionRequest{Lessons: []string{"10", "21"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidLesson.Code, appErrors.FromError(err).Code)
	assert.Zero(t, store.updateCnt)
}

func TestSaveSelectionDeduplicates(t *testing.T) {
	store := &mockTraineeStore{byID: map[string]*models.Trainee{
		"a1": {ID: "a1", Group: models.GroupPPL, Period: "PPL aktif"},
	}}
	svc := newEnrollmentFixture(store, &mockAccountStore{})

	saved, err := svc.SaveSelection(context.Background(), "a1", SaveSelectionRequest{
		Lessons: []string{"20", "10", "20"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"20", "10"}, saved.Lessons)
}

func TestSaveSelectionUnknownAccount(t *testing.T) {
	svc := newEnrollmentFixture(&mockTraineeStore{}, &mockAccountStore{})

	_, err := svc.SaveSelection(context.Background(), "missing", SaveSelectionRequest{Lessons: []string{"10"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnknownAccount.Code, appErrors.FromError(err).Code)
}

func TestLoadForEditingColdStart(t *testing.T) {
	svc := newEnrollmentFixture(&mockTraineeStore{}, &mockAccountStore{})

	view, err := svc.LoadForEditing(context.Background(), "fresh")
	require.NoError(t, err)
	assert.NotNil(t, view.Lessons)
	assert.Empty(t, view.Lessons)
}

func TestProfileComposition(t *testing.T) {
	registered := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := &mockTraineeStore{byID: map[string]*models.Trainee{
		"a1": {ID: "a1", Group: models.GroupATPL, Period: "ATPL aktif", Lessons: pq.StringArray{"10", "21", "22"}, ExamPre: true, CreatedAt: registered},
	}}
	accounts := &mockAccountStore{accountByEmail: &models.Account{ID: "a1", Email: "pilot@example.com", EmailVerified: true}}
	svc := newEnrollmentFixture(store, accounts)

	profile, err := svc.Profile(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "pilot@example.com", profile.Email)
	assert.True(t, profile.EmailVerified)
	assert.Equal(t, models.GroupATPL, profile.Group)
	assert.Equal(t, 3, profile.LessonCount)
	assert.True(t, profile.Exams.Pre)
	assert.Equal(t, registered, profile.RegisteredAt)
}
