package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fsdevblog/linkstats/internal/cache"
	"github.com/fsdevblog/linkstats/internal/db"
	"github.com/fsdevblog/linkstats/internal/geo"
	"github.com/fsdevblog/linkstats/internal/notify"
	"github.com/fsdevblog/linkstats/internal/repositories"
	"github.com/fsdevblog/linkstats/internal/repositories/memstore"
	"github.com/fsdevblog/linkstats/internal/repositories/pg"
	"github.com/fsdevblog/linkstats/internal/repositories/sql"
)

type ServiceType string

const (
	ServiceTypePostgres ServiceType = "postgres"
	ServiceTypeSQLite   ServiceType = "sqlite"
	ServiceTypeInMemory ServiceType = "inMemory"
)

type Services struct {
	LinkService      *LinkService
	AnalyticsService *AnalyticsService
	ReportService    *ReportService
	PingService      *PingService
}

// Deps внешние зависимости сервисного слоя. ResolveCache, Locator и
// Notifier опциональны.
type Deps struct {
	ResolveCache *cache.ResolveCache
	Locator      geo.Locator
	Notifier     notify.Notifier
	Logger       *zap.Logger
	RepoLogger   *logrus.Logger
}

// Factory собирает сервисы поверх подключения, созданного db.NewConnectionFactory.
func Factory(conn any, sType ServiceType, deps Deps) (*Services, error) {
	var repo repositories.LinkRepository
	var pinger Pinger

	switch sType {
	case ServiceTypePostgres:
		pool, ok := conn.(*pgxpool.Pool)
		if !ok {
			return nil, errors.New("invalid connection type. expected *pgxpool.Pool")
		}
		repo = pg.NewLinkRepo(pool, deps.RepoLogger)
		pinger = pool
	case ServiceTypeSQLite:
		gormDB, ok := conn.(*gorm.DB)
		if !ok {
			return nil, errors.New("invalid connection type. expected *gorm.DB")
		}
		repo = sql.NewLinkRepo(gormDB, deps.RepoLogger)
		pinger = &gormPinger{db: gormDB}
	case ServiceTypeInMemory:
		store, ok := conn.(*db.MemoryStorage)
		if !ok {
			return nil, errors.New("invalid connection type. expected *db.MemoryStorage")
		}
		repo = memstore.NewLinkRepo(store, deps.RepoLogger)
		pinger = noopPinger{}
	default:
		return nil, fmt.Errorf("unknown service type: %s", sType)
	}

	return &Services{
		LinkService:      NewLinkService(repo, deps.ResolveCache, deps.Notifier, deps.Logger),
		AnalyticsService: NewAnalyticsService(repo, deps.Locator, deps.Logger),
		ReportService:    NewReportService(repo, deps.Logger),
		PingService:      NewPingService(pinger),
	}, nil
}

type gormPinger struct {
	db *gorm.DB
}

func (p *gormPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx) //nolint:wrapcheck
}

type noopPinger struct{}

func (noopPinger) Ping(_ context.Context) error {
	return nil
}
