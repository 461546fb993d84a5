package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skyprep/aviation-exam-api/internal/models"
	appErrors "github.com/skyprep/aviation-exam-api/pkg/errors"
	"github.com/skyprep/aviation-exam-api/pkg/export"
)

type rosterRepository interface {
	List(ctx context.Context, filter models.TraineeFilter) ([]models.Trainee, int, error)
	ListAll(ctx context.Context) ([]models.Trainee, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered roster download.
type ExportFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// RosterConfig tunes export rendering.
type RosterConfig struct {
	FilenamePrefix string
	DateFormat     string
}

// RosterService serves the filtered trainee listing and its export
// projection. Projections are recomputed from the store on every request.
type RosterService struct {
	repo   rosterRepository
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
	cfg    RosterConfig
}

// NewRosterService constructs the service.
func NewRosterService(repo rosterRepository, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger, cfg RosterConfig) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FilenamePrefix == "" {
		cfg.FilenamePrefix = "kullanicilar"
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = "02.01.2006"
	}
	return &RosterService{repo: repo, csv: csv, pdf: pdf, logger: logger, now: time.Now, cfg: cfg}
}

// List returns a page of the roster with pagination metadata.
func (s *RosterService) List(ctx context.Context, filter models.TraineeFilter) ([]models.Trainee, *models.Pagination, error) {
	if filter.Group != "" && !models.ValidGroup(filter.Group) {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidGroup, "unknown training group")
	}

	trainees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list trainees")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return trainees, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Export renders the complete filtered roster (no pagination) as a download.
// Column headers and flag labels match the operators' spreadsheet.
func (s *RosterService) Export(ctx context.Context, filter models.TraineeFilter, format ExportFormat) (*ExportFile, error) {
	if filter.Group != "" && !models.ValidGroup(filter.Group) {
		return nil, appErrors.Clone(appErrors.ErrInvalidGroup, "unknown training group")
	}

	trainees, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainees")
	}

	dataset := s.buildDataset(filterTrainees(trainees, filter))

	stamp := s.now().UTC().Format("2006-01-02")
	switch format {
	case ExportFormatCSV, "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			Name:        fmt.Sprintf("%s_%s.csv", s.cfg.FilenamePrefix, stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset, "Kullanıcı Listesi")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			Name:        fmt.Sprintf("%s_%s.pdf", s.cfg.FilenamePrefix, stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// buildDataset is an order-preserving map over the filtered records.
func (s *RosterService) buildDataset(trainees []models.Trainee) export.Dataset {
	headers := []string{"E-posta", "Grup", "Dönem", "Ders Sayısı", "Dersler", "Ön Sınav", "Son Sınav", "Kayıt Tarihi"}
	rows := make([]map[string]string, 0, len(trainees))
	for _, t := range trainees {
		rows = append(rows, map[string]string{
			"E-posta":      t.Email,
			"Grup":         string(t.Group),
			"Dönem":        t.Period,
			"Ders Sayısı":  strconv.Itoa(len(t.Lessons)),
			"Dersler":      strings.Join(t.Lessons, ", "),
			"Ön Sınav":     localizedBool(t.ExamPre),
			"Son Sınav":    localizedBool(t.ExamFinal),
			"Kayıt Tarihi": t.CreatedAt.Format(s.cfg.DateFormat),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func filterTrainees(trainees []models.Trainee, filter models.TraineeFilter) []models.Trainee {
	out := make([]models.Trainee, 0, len(trainees))
	for _, t := range trainees {
		if filter.Group != "" && t.Group != filter.Group {
			continue
		}
		if filter.Period != "" && t.Period != filter.Period {
			continue
		}
		out = append(out, t)
	}
	return out
}

func localizedBool(v bool) string {
	if v {
		return "Evet"
	}
	return "Hayır"
}
