package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skyprep/aviation-exam-api/internal/models"
	appErrors "github.com/skyprep/aviation-exam-api/pkg/errors"
	"github.com/skyprep/aviation-exam-api/pkg/export"
)

type recordingRenderer struct {
	dataset export.Dataset
}

func (r *recordingRenderer) Render(data export.Dataset) ([]byte, error) {
	r.dataset = data
	return []byte("csv"), nil
}

type recordingPDFRenderer struct {
	dataset export.Dataset
	title   string
}

func (r *recordingPDFRenderer) Render(data export.Dataset, title string) ([]byte, error) {
	r.dataset = data
	r.title = title
	return []byte("pdf"), nil
}

func rosterFixture(store *mockTraineeStore) (*RosterService, *recordingRenderer, *recordingPDFRenderer) {
	csv := &recordingRenderer{}
	pdf := &recordingPDFRenderer{}
	svc := NewRosterService(store, csv, pdf, zap.NewNop(), RosterConfig{})
	svc.now = func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) }
	return svc, csv, pdf
}

func TestRosterListDefaultsPagination(t *testing.T) {
	store := &mockTraineeStore{all: []models.Trainee{{ID: "t1"}}}
	svc, _, _ := rosterFixture(store)

	trainees, pagination, err := svc.List(context.Background(), models.TraineeFilter{})
	require.NoError(t, err)
	assert.Len(t, trainees, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestRosterListRejectsUnknownGroup(t *testing.T) {
	svc, _, _ := rosterFixture(&mockTraineeStore{})

	_, _, err := svc.List(context.Background(), models.TraineeFilter{Group: "CPL"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidGroup.Code, appErrors.FromError(err).Code)
}

func TestExportCSVDataset(t *testing.T) {
	created := time.Date(2025, 2, 14, 8, 0, 0, 0, time.UTC)
	store := &mockTraineeStore{all: []models.Trainee{
		{Email: "pilot@example.com", Group: models.GroupPPL, Period: "PPL aktif", Lessons: pq.StringArray{"10", "50"}, ExamPre: true, CreatedAt: created},
	}}
	svc, csv, _ := rosterFixture(store)

	file, err := svc.Export(context.Background(), models.TraineeFilter{}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "kullanicilar_2025-06-10.csv", file.Name)
	assert.Equal(t, "text/csv", file.ContentType)

	assert.Equal(t, []string{"E-posta", "Grup", "Dönem", "Ders Sayısı", "Dersler", "Ön Sınav", "Son Sınav", "Kayıt Tarihi"}, csv.dataset.Headers)
	require.Len(t, csv.dataset.Rows, 1)
	row := csv.dataset.Rows[0]
	assert.Equal(t, "pilot@example.com", row["E-posta"])
	assert.Equal(t, "2", row["Ders Sayısı"])
	assert.Equal(t, "10, 50", row["Dersler"])
	assert.Equal(t, "Evet", row["Ön Sınav"])
	assert.Equal(t, "Hayır", row["Son Sınav"])
	assert.Equal(t, "14.02.2025", row["Kayıt Tarihi"])
}

func TestExportDefaultsToCSV(t *testing.T) {
	svc, _, _ := rosterFixture(&mockTraineeStore{})

	file, err := svc.Export(context.Background(), models.TraineeFilter{}, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(file.Name, ".csv"))
}

func TestExportPDFTitle(t *testing.T) {
	svc, _, pdf := rosterFixture(&mockTraineeStore{all: []models.Trainee{{Email: "pilot@example.com"}}})

	file, err := svc.Export(context.Background(), models.TraineeFilter{}, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "Kullanıcı Listesi", pdf.title)
}

func TestExportUnknownFormat(t *testing.T) {
	svc, _, _ := rosterFixture(&mockTraineeStore{})

	_, err := svc.Export(context.Background(), models.TraineeFilter{}, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportRejectsUnknownGroup(t *testing.T) {
	svc, _, _ := rosterFixture(&mockTraineeStore{})

	_, err := svc.Export(context.Background(), models.TraineeFilter{Group: "CPL"}, ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidGroup.Code, appErrors.FromError(err).Code)
}

func TestExportFiltersFullSet(t *testing.T) {
	store := &mockTraineeStore{all: []models.Trainee{
		{Email: "ppl@example.com", Group: models.GroupPPL, Period: "PPL aktif"},
		{Email: "atpl@example.com", Group: models.GroupATPL, Period: "ATPL aktif"},
		{Email: "done@example.com", Group: models.GroupATPL, Period: "ATPL akademik tamamlamış"},
	}}
	svc, csv, _ := rosterFixture(store)

	_, err := svc.Export(context.Background(), models.TraineeFilter{Group: models.GroupATPL, Period: "ATPL aktif"}, ExportFormatCSV)
	require.NoError(t, err)
	require.Len(t, csv.dataset.Rows, 1)
	assert.Equal(t, "atpl@example.com", csv.dataset.Rows[0]["E-posta"])
}
