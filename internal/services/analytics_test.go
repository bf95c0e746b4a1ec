package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fsdevblog/linkstats/internal/models"
	"github.com/fsdevblog/linkstats/internal/repositories"
	"github.com/fsdevblog/linkstats/internal/repositories/rmocks"
)

const testUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// locatorStub отдает фиксированную геопривязку для любого адреса.
type locatorStub struct {
	info *models.GeoInfo
	err  error
}

func (l *locatorStub) Lookup(_ context.Context, _ string) (*models.GeoInfo, error) {
	return l.info, l.err
}

// applyClickRepo применяет мутации к одной ссылке в памяти,
// сериализация не его забота.
type applyClickRepo struct {
	rmocks.LinkRepoMock
	mu   sync.Mutex
	link *models.Link
}

func (r *applyClickRepo) ApplyClick(_ context.Context, _ string, mutate func(*models.Link) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return mutate(r.link)
}

func TestAnalyticsService_Record(t *testing.T) {
	link := &models.Link{ID: "link-1", Status: models.LinkStatusActive}
	repo := &applyClickRepo{link: link}
	locator := &locatorStub{info: &models.GeoInfo{Country: "Germany", City: "Berlin"}}
	service := NewAnalyticsService(repo, locator, zap.NewNop())

	err := service.Record(t.Context(), "link-1", models.DefaultSettings(), RawClick{
		Timestamp:      time.Now(),
		IPAddress:      "8.8.8.8",
		UserAgent:      testUserAgent,
		Referrer:       "https://google.com",
		AcceptLanguage: "de-DE,de;q=0.9",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), link.Clicks)
	assert.Equal(t, int64(1), link.UniqueClicks)
	require.Len(t, link.AnalyticsLog, 1)

	ev := link.AnalyticsLog[0]
	assert.Equal(t, "https://google.com", ev.Referrer)
	assert.Equal(t, "desktop", ev.Device)
	assert.Equal(t, "Chrome", ev.Browser)
	assert.Equal(t, "Windows", ev.OS)
	assert.Equal(t, "de-DE", ev.Language)
	assert.Equal(t, "Germany", ev.Country)
	assert.Equal(t, "Berlin", ev.City)
}

func TestAnalyticsService_Record_SettingsOff(t *testing.T) {
	link := &models.Link{ID: "link-1", Status: models.LinkStatusActive}
	repo := &applyClickRepo{link: link}
	locator := &locatorStub{info: &models.GeoInfo{Country: "Germany"}}
	service := NewAnalyticsService(repo, locator, zap.NewNop())

	settings := models.LinkSettings{} // весь трекинг выключен

	err := service.Record(t.Context(), "link-1", settings, RawClick{
		IPAddress:      "8.8.8.8",
		UserAgent:      testUserAgent,
		Referrer:       "https://google.com",
		AcceptLanguage: "de-DE",
	})

	require.NoError(t, err)
	require.Len(t, link.AnalyticsLog, 1)

	ev := link.AnalyticsLog[0]
	assert.Empty(t, ev.Referrer)
	assert.Empty(t, ev.Device)
	assert.Empty(t, ev.Browser)
	assert.Empty(t, ev.Country)
	// Базовые поля пишутся всегда.
	assert.Equal(t, "8.8.8.8", ev.IPAddress)
	assert.Equal(t, testUserAgent, ev.UserAgent)
}

func TestAnalyticsService_Record_GeoFailureDegrades(t *testing.T) {
	link := &models.Link{ID: "link-1", Status: models.LinkStatusActive}
	repo := &applyClickRepo{link: link}
	locator := &locatorStub{err: assert.AnError}
	service := NewAnalyticsService(repo, locator, zap.NewNop())

	err := service.Record(t.Context(), "link-1", models.DefaultSettings(), RawClick{
		IPAddress: "8.8.8.8",
		UserAgent: testUserAgent,
	})

	require.NoError(t, err)
	require.Len(t, link.AnalyticsLog, 1)
	assert.Empty(t, link.AnalyticsLog[0].Country)
}

func TestAnalyticsService_Record_NotFound(t *testing.T) {
	repoMock := new(rmocks.LinkRepoMock)
	repoMock.On("ApplyClick", mock.Anything, "missing", mock.Anything).
		Return(repositories.ErrNotFound)
	service := NewAnalyticsService(repoMock, nil, zap.NewNop())

	err := service.Record(t.Context(), "missing", models.DefaultSettings(), RawClick{IPAddress: "8.8.8.8"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestAnalyticsService_Record_Concurrent(t *testing.T) {
	link := &models.Link{ID: "link-1", Status: models.LinkStatusActive}
	repo := &applyClickRepo{link: link}
	service := NewAnalyticsService(repo, nil, zap.NewNop())

	const workers = 20
	const clicksPerWorker = 10

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range clicksPerWorker {
				_ = service.Record(context.Background(), "link-1", models.LinkSettings{}, RawClick{
					IPAddress: "10.0.0.1",
				})
			}
		}()
	}
	wg.Wait()

	// Ни один инкремент не потерян.
	assert.Equal(t, int64(workers*clicksPerWorker), link.Clicks)
	assert.Equal(t, int64(1), link.UniqueClicks)
}
