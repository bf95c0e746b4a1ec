package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fsdevblog/linkstats/internal/geo"
	"github.com/fsdevblog/linkstats/internal/models"
	"github.com/fsdevblog/linkstats/internal/repositories"
	"github.com/fsdevblog/linkstats/internal/uaparse"
)

// RawClick сырые данные перехода, собранные шлюзом из запроса.
type RawClick struct {
	Timestamp      time.Time
	IPAddress      string
	UserAgent      string
	Referrer       string
	AcceptLanguage string
	TimeOnPage     *float64
	ExitPage       string
}

// AnalyticsService записывает события переходов в агрегат ссылки.
// Мутации одной ссылки сериализованы замком по ее id: конкурентные
// редиректы популярной ссылки не теряют инкременты.
type AnalyticsService struct {
	repo    repositories.LinkRepository
	locator geo.Locator // nil — геолокация выключена
	locks   keyedMutex
	logger  *zap.Logger
}

func NewAnalyticsService(
	repo repositories.LinkRepository,
	locator geo.Locator,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		repo:    repo,
		locator: locator,
		logger:  logger.With(zap.String("module", "services/analytics")),
	}
}

// Record обогащает сырое событие согласно настройкам ссылки и применяет
// его к агрегату. Статус ссылки здесь не перепроверяется: шлюз обязан
// применить политику редиректа до вызова. Ошибка персиста возвращается
// вызывающему без ретраев.
func (s *AnalyticsService) Record(
	ctx context.Context,
	linkID string,
	settings models.LinkSettings,
	raw RawClick,
) error {
	// Обогащение (в том числе поход в геосервис) выполняется до захвата
	// замка и транзакции хранилища.
	ev := s.buildEvent(ctx, settings, raw)

	unlock := s.locks.Lock(linkID)
	defer unlock()

	err := s.repo.ApplyClick(ctx, linkID, func(link *models.Link) error {
		link.RecordClick(ev)
		link.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errors.Wrapf(ErrRecordNotFound, "link %s not found", linkID)
		}
		return errors.Wrapf(ErrUnknown, "record click for link %s", linkID)
	}
	return nil
}

// buildEvent собирает ClickEvent из сырых данных. Выключенные настройкой
// поля просто не заполняются; сбои классификации и геолокации молча
// деградируют до пустых значений.
func (s *AnalyticsService) buildEvent(
	ctx context.Context,
	settings models.LinkSettings,
	raw RawClick,
) models.ClickEvent {
	ev := models.ClickEvent{
		Timestamp:  raw.Timestamp,
		IPAddress:  raw.IPAddress,
		UserAgent:  raw.UserAgent,
		TimeOnPage: raw.TimeOnPage,
		ExitPage:   raw.ExitPage,
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	if settings.TrackReferrer {
		ev.Referrer = raw.Referrer
	}

	if settings.TrackDeviceInfo {
		c := uaparse.Classify(raw.UserAgent, raw.AcceptLanguage)
		ev.Device = c.Device
		ev.Browser = c.Browser
		ev.BrowserVersion = c.BrowserVersion
		ev.OS = c.OS
		ev.Platform = c.Platform
		ev.Language = c.Language
	}

	if settings.TrackLocation && s.locator != nil {
		info, geoErr := s.locator.Lookup(ctx, raw.IPAddress)
		if geoErr != nil {
			s.logger.Debug("geo lookup failed", zap.String("ip", raw.IPAddress), zap.Error(geoErr))
		} else if info != nil {
			ev.Country = info.Country
			ev.City = info.City
			ev.Region = info.Region
			ev.Timezone = info.Timezone
			ev.Coordinates = info.Coordinates
		}
	}
	return ev
}
