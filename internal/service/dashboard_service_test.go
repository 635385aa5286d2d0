package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/model"
	"shiftdesk/internal/repository"
)

func setupTestDashboard(t *testing.T, cache Cache) (*dashboardService, *fixture) {
	t.Helper()
	f := newFixture(t)
	svc := NewDashboardService(f.cfg, f.repo, cache, f.logger).(*dashboardService)
	// 2024-03-04 为周一
	svc.now = func() time.Time { return time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC) }

	f.m.dashboard.leave = repository.StatusCounts{PendingTL: 2, PendingWFM: 1, Approved: 4}
	f.m.dashboard.swap = repository.StatusCounts{PendingAcceptance: 1}
	f.m.dashboard.approved = 3
	f.m.dashboard.shiftCounts = []repository.ShiftCount{
		{Date: mustParseDate(t, "2024-03-04"), ShiftType: "morning", Count: 1},
		{Date: mustParseDate(t, "2024-03-05"), ShiftType: "morning", Count: 2},
	}
	f.m.distribution.settings = []model.DistributionSetting{
		{DayOfWeek: 1, ShiftType: "morning", RequiredHeadcount: 2},
		{DayOfWeek: 2, ShiftType: "morning", RequiredHeadcount: 2},
		{DayOfWeek: 7, ShiftType: "night", RequiredHeadcount: 0},
	}
	return svc, f
}

func TestDashboardStats_DefaultRange(t *testing.T) {
	svc, f := setupTestDashboard(t, nil)

	stats, err := svc.Stats(context.Background(), callerOf(f.wfm), &dto.DashboardRequest{})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-04", stats.From)
	assert.Equal(t, "2024-03-10", stats.To)
	assert.Equal(t, int64(2), stats.LeaveRequests.PendingTL)
	assert.Equal(t, int64(1), stats.SwapRequests.PendingAcceptance)
	assert.Equal(t, int64(3), stats.ApprovedLeaveCount)
	assert.Equal(t, int64(3), stats.ShiftsByType["morning"])

	require.Len(t, stats.CoverageGaps, 1)
	assert.Equal(t, dto.CoverageGap{Date: "2024-03-04", ShiftType: "morning", Required: 2, Scheduled: 1, Shortfall: 1}, stats.CoverageGaps[0])
}

func TestDashboardStats_UsesCache(t *testing.T) {
	cache := newFakeCache()
	svc, f := setupTestDashboard(t, cache)
	ctx := context.Background()

	first, err := svc.Stats(ctx, callerOf(f.wfm), &dto.DashboardRequest{})
	require.NoError(t, err)
	second, err := svc.Stats(ctx, callerOf(f.wfm), &dto.DashboardRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, f.m.dashboard.calls, "第二次应命中缓存")
	assert.Equal(t, first.CoverageGaps, second.CoverageGaps)
	assert.Equal(t, first.ShiftsByType, second.ShiftsByType)
	assert.Contains(t, cache.data, "dashboard::2024-03-04:2024-03-10")

	// 业务变更后缓存失效
	newEventSink(f.repo, cache, f.logger).invalidateStats(ctx)
	_, err = svc.Stats(ctx, callerOf(f.wfm), &dto.DashboardRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, f.m.dashboard.calls)
}

func TestDashboardStats_Scope(t *testing.T) {
	cache := newFakeCache()
	svc, f := setupTestDashboard(t, cache)
	ctx := context.Background()

	_, err := svc.Stats(ctx, callerOf(f.lead), &dto.DashboardRequest{TeamID: "team-b"})
	require.NoError(t, err)
	assert.Contains(t, cache.data, "dashboard:team-a:2024-03-04:2024-03-10", "组长固定查看本团队")

	_, err = svc.Stats(ctx, Caller{UserID: "u-x", Role: model.RoleAgent}, &dto.DashboardRequest{})
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = svc.Stats(ctx, callerOf(f.wfm), &dto.DashboardRequest{From: "2024-01-01", To: "2024-06-01"})
	assert.ErrorIs(t, err, ErrDateRangeTooLong)
}

func TestCoverageGaps_SundayIsSeven(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	gaps := coverageGaps(sunday, sunday, nil, []model.DistributionSetting{
		{DayOfWeek: 7, ShiftType: "night", RequiredHeadcount: 1},
		{DayOfWeek: 7, ShiftType: "evening", RequiredHeadcount: 2},
		{DayOfWeek: 6, ShiftType: "morning", RequiredHeadcount: 3},
	})

	require.Len(t, gaps, 2)
	assert.Equal(t, "evening", gaps[0].ShiftType, "同一天按班次类型排序")
	assert.Equal(t, int64(2), gaps[0].Shortfall)
	assert.Equal(t, "night", gaps[1].ShiftType)
}
