package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/skyprep/aviation-exam-api/internal/models"
	appErrors "github.com/skyprep/aviation-exam-api/pkg/errors"
)

type traineeLister interface {
	ListAll(ctx context.Context) ([]models.Trainee, error)
}

// DashboardService derives the admin dashboard summary. Every call re-reads
// the full enrollment collection; nothing is cached or incrementally
// materialised.
type DashboardService struct {
	trainees traineeLister
	logger   *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(trainees traineeLister, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{trainees: trainees, logger: logger}
}

// Overview computes the headline counts. "Active" is a deliberate substring
// match on the period label, not an exact period comparison.
func (s *DashboardService) Overview(ctx context.Context) (*models.DashboardStats, error) {
	trainees, err := s.trainees.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment records")
	}

	stats := &models.DashboardStats{TotalTrainees: len(trainees)}
	for _, t := range trainees {
		switch t.Group {
		case models.GroupPPL:
			stats.PPLTrainees++
		case models.GroupATPL:
			stats.ATPLTrainees++
		}
		if strings.Contains(t.Period, "aktif") {
			stats.ActiveTrainees++
		}
	}
	return stats, nil
}
