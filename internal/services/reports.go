package services

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fsdevblog/linkstats/internal/models"
	"github.com/fsdevblog/linkstats/internal/repositories"
)

// ReportTopLinksLimit размер топа ссылок в портфельном отчете.
const ReportTopLinksLimit = 5

// recentWindowDays окно «недавней» активности.
const recentWindowDays = 30

// TopLink строка топа ссылок.
type TopLink struct {
	ID          string `json:"id"`
	ShortCode   string `json:"shortCode"`
	Title       string `json:"title"`
	OriginalURL string `json:"originalUrl"`
	Clicks      int64  `json:"clicks"`
}

// Overview портфельный отчет по всем ссылкам владельца.
// ActiveURLs и RecentlyActiveURLs — два разных определения «активной»
// ссылки (по статусу и по недавним кликам); обе метрики сохранены
// намеренно, не сливать.
type Overview struct {
	TotalURLs          int64 `json:"totalUrls"`
	TotalClicks        int64 `json:"totalClicks"`
	ActiveURLs         int64 `json:"activeUrls"`         // status == active
	RecentlyActiveURLs int64 `json:"recentlyActiveUrls"` // клик за последние 30 дней

	URLGrowth   float64 `json:"urlGrowth"`   // % к базе месячной давности
	ClickGrowth float64 `json:"clickGrowth"` // % к базе месячной давности

	TopLinks []TopLink `json:"topLinks"`

	Devices   models.CategoryCounts `json:"devices"`
	Browsers  models.CategoryCounts `json:"browsers"`
	Countries models.CategoryCounts `json:"countries"`
}

// ReportService строит кросс-ссылочные отчеты. Чтения — eventually
// consistent снапшоты: транзакций через несколько ссылок нет.
type ReportService struct {
	repo   repositories.LinkRepository
	logger *zap.Logger
}

func NewReportService(repo repositories.LinkRepository, logger *zap.Logger) *ReportService {
	return &ReportService{
		repo:   repo,
		logger: logger.With(zap.String("module", "services/reports")),
	}
}

// BuildOverview собирает отчет по всем ссылкам владельца.
func (s *ReportService) BuildOverview(ctx context.Context, ownerID string) (*Overview, error) {
	links, err := s.repo.GetAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, ErrUnknown
	}
	return buildOverview(links, time.Now()), nil
}

func buildOverview(links []models.Link, now time.Time) *Overview {
	monthAgo := now.AddDate(0, -1, 0)
	recentCutoff := models.DayOf(now).AddDate(0, 0, -recentWindowDays+1)

	overview := &Overview{
		TotalURLs: int64(len(links)),
		Devices:   make(models.CategoryCounts),
		Browsers:  make(models.CategoryCounts),
		Countries: make(models.CategoryCounts),
	}

	var baselineURLs int64
	var recentMonthClicks int64

	for i := range links {
		link := &links[i]
		overview.TotalClicks += link.Clicks

		if link.Status == models.LinkStatusActive {
			overview.ActiveURLs++
		}
		if !link.CreatedAt.After(monthAgo) {
			baselineURLs++
		}

		recentlyActive := false
		for j := range link.DailyStats {
			d := &link.DailyStats[j]
			if d.Date.After(monthAgo) {
				recentMonthClicks += d.Clicks
			}
			if !d.Date.Before(recentCutoff) && d.Clicks > 0 {
				recentlyActive = true
			}
		}
		if recentlyActive {
			overview.RecentlyActiveURLs++
		}

		for j := range link.AnalyticsLog {
			ev := &link.AnalyticsLog[j]
			overview.Devices.Inc(ev.Device)
			overview.Browsers.Inc(ev.Browser)
			overview.Countries.Inc(ev.Country)
		}
	}

	overview.URLGrowth = growthPercent(overview.TotalURLs, baselineURLs)
	overview.ClickGrowth = growthPercent(overview.TotalClicks, overview.TotalClicks-recentMonthClicks)
	overview.TopLinks = topLinks(links, ReportTopLinksLimit)
	return overview
}

// growthPercent (current − baseline) / baseline × 100.
// Нулевая база определена как рост в 100%.
func growthPercent(current, baseline int64) float64 {
	if baseline == 0 {
		return 100
	}
	return math.Round(float64(current-baseline)/float64(baseline)*100*100) / 100
}

func topLinks(links []models.Link, n int) []TopLink {
	sorted := make([]models.Link, len(links))
	copy(sorted, links)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Clicks > sorted[j].Clicks
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	result := make([]TopLink, 0, len(sorted))
	for i := range sorted {
		result = append(result, TopLink{
			ID:          sorted[i].ID,
			ShortCode:   sorted[i].ShortCode,
			Title:       sorted[i].Title,
			OriginalURL: sorted[i].OriginalURL,
			Clicks:      sorted[i].Clicks,
		})
	}
	return result
}
