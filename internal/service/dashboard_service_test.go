package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skyprep/aviation-exam-api/internal/models"
)

func TestDashboardOverviewCounters(t *testing.T) {
	store := &mockTraineeStore{all: []models.Trainee{
		{ID: "t1", Group: models.GroupPPL, Period: "PPL aktif"},
		{ID: "t2", Group: models.GroupATPL, Period: "ATPL akademik tamamlamış"},
		{ID: "t3", Group: models.GroupATPL, Period: "ATPL aktif"},
	}}
	svc := NewDashboardService(store, zap.NewNop())

	stats, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTrainees)
	assert.Equal(t, 1, stats.PPLTrainees)
	assert.Equal(t, 2, stats.ATPLTrainees)
	assert.Equal(t, 2, stats.ActiveTrainees)
}

func TestDashboardOverviewEmpty(t *testing.T) {
	svc := NewDashboardService(&mockTraineeStore{}, zap.NewNop())

	stats, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTrainees)
	assert.Zero(t, stats.ActiveTrainees)
}
