package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fsdevblog/linkstats/internal/models"
	"github.com/fsdevblog/linkstats/internal/repositories/rmocks"
)

func TestBuildOverview(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)
	twoMonthsAgo := now.AddDate(0, -2, 0)
	lastWeek := now.AddDate(0, 0, -7)

	links := []models.Link{
		{
			ID: "old-active", ShortCode: "code0001", Title: "Old",
			CreatedAt: twoMonthsAgo,
			Status:    models.LinkStatusActive,
			Clicks:    100,
			DailyStats: []models.DailyStat{
				// Клики глубокой давности, вне месячного окна.
				{Date: models.DayOf(twoMonthsAgo), Clicks: 80},
				// И немного недавних.
				{Date: models.DayOf(lastWeek), Clicks: 20},
			},
			AnalyticsLog: []models.ClickEvent{
				{Device: "desktop", Browser: "Firefox", Country: "Germany"},
				{Device: "mobile", Browser: "Chrome", Country: "Germany"},
			},
		},
		{
			ID: "new-inactive", ShortCode: "code0002", Title: "New",
			CreatedAt: lastWeek,
			Status:    models.LinkStatusInactive,
			Clicks:    10,
			DailyStats: []models.DailyStat{
				{Date: models.DayOf(lastWeek), Clicks: 10},
			},
		},
		{
			ID: "dormant", ShortCode: "code0003",
			CreatedAt: twoMonthsAgo,
			Status:    models.LinkStatusActive,
			Clicks:    5,
			DailyStats: []models.DailyStat{
				{Date: models.DayOf(twoMonthsAgo), Clicks: 5},
			},
		},
	}

	overview := buildOverview(links, now)

	assert.Equal(t, int64(3), overview.TotalURLs)
	assert.Equal(t, int64(115), overview.TotalClicks)
	// По статусу активны две, по недавним кликам тоже две, но наборы разные.
	assert.Equal(t, int64(2), overview.ActiveURLs)
	assert.Equal(t, int64(2), overview.RecentlyActiveURLs)

	// База месяц назад: 2 ссылки, сейчас 3.
	assert.InDelta(t, 50.0, overview.URLGrowth, 0.001)
	// За месяц пришло 30 кликов при базе 85.
	assert.InDelta(t, 35.29, overview.ClickGrowth, 0.001)

	require.Len(t, overview.TopLinks, 3)
	assert.Equal(t, "old-active", overview.TopLinks[0].ID)
	assert.Equal(t, int64(100), overview.TopLinks[0].Clicks)
	assert.Equal(t, "new-inactive", overview.TopLinks[1].ID)

	assert.Equal(t, int64(2), overview.Countries["Germany"])
	assert.Equal(t, int64(1), overview.Devices["desktop"])
	assert.Equal(t, int64(1), overview.Browsers["Chrome"])
}

func TestBuildOverview_Empty(t *testing.T) {
	overview := buildOverview(nil, time.Now())

	assert.Zero(t, overview.TotalURLs)
	assert.Zero(t, overview.TotalClicks)
	// Нулевая база трактуется как рост в 100%.
	assert.InDelta(t, 100.0, overview.URLGrowth, 0.001)
	assert.InDelta(t, 100.0, overview.ClickGrowth, 0.001)
	assert.Empty(t, overview.TopLinks)
}

func TestBuildOverview_TopLimit(t *testing.T) {
	now := time.Now()
	links := make([]models.Link, ReportTopLinksLimit+3)
	for i := range links {
		links[i] = models.Link{
			ID:        fmt.Sprintf("link-%d", i),
			CreatedAt: now,
			Clicks:    int64(i),
		}
	}

	overview := buildOverview(links, now)

	require.Len(t, overview.TopLinks, ReportTopLinksLimit)
	assert.Equal(t, int64(ReportTopLinksLimit+2), overview.TopLinks[0].Clicks)
}

func TestGrowthPercent(t *testing.T) {
	tests := []struct {
		current  int64
		baseline int64
		want     float64
	}{
		{current: 10, baseline: 0, want: 100},
		{current: 0, baseline: 0, want: 100},
		{current: 15, baseline: 10, want: 50},
		{current: 10, baseline: 10, want: 0},
		{current: 5, baseline: 10, want: -50},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, growthPercent(tt.current, tt.baseline), 0.001,
			"growthPercent(%d, %d)", tt.current, tt.baseline)
	}
}

func TestReportService_BuildOverview(t *testing.T) {
	repoMock := new(rmocks.LinkRepoMock)
	repoMock.On("GetAllByOwner", mock.Anything, "owner-1").Return([]models.Link{
		{ID: "link-1", Clicks: 3, Status: models.LinkStatusActive, CreatedAt: time.Now()},
	}, nil)
	service := NewReportService(repoMock, zap.NewNop())

	overview, err := service.BuildOverview(t.Context(), "owner-1")

	require.NoError(t, err)
	assert.Equal(t, int64(1), overview.TotalURLs)
	assert.Equal(t, int64(3), overview.TotalClicks)
	repoMock.AssertExpectations(t)
}
