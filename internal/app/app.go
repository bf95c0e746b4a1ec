package app

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fsdevblog/linkstats/internal/cache"
	"github.com/fsdevblog/linkstats/internal/config"
	"github.com/fsdevblog/linkstats/internal/controllers"
	"github.com/fsdevblog/linkstats/internal/db"
	"github.com/fsdevblog/linkstats/internal/geo"
	"github.com/fsdevblog/linkstats/internal/logs"
	"github.com/fsdevblog/linkstats/internal/notify"
	"github.com/fsdevblog/linkstats/internal/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config       config.Config
	services     *services.Services
	resolveCache *cache.ResolveCache
	Logger       *zap.Logger
}

func New(ctx context.Context, conf config.Config) (*App, error) {
	logger := logs.MustNew()

	resolveCache, cacheErr := initResolveCache(ctx, conf, logger)
	if cacheErr != nil {
		return nil, errors.Wrap(cacheErr, "init resolve cache")
	}

	appServices, servicesErr := initServices(ctx, conf, resolveCache, logger)
	if servicesErr != nil {
		return nil, errors.Wrap(servicesErr, "init services")
	}

	return &App{
		config:       conf,
		services:     appServices,
		resolveCache: resolveCache,
		Logger:       logger,
	}, nil
}

// Must вызывает панику если произошла ошибка.
func Must(a *App, err error) *App {
	if err != nil {
		panic(err)
	}
	return a
}

// Run запускает web сервер и блокируется до SIGINT/SIGTERM либо ошибки
// сервера. На выходе сервер дренируется в пределах shutdownTimeout.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router := controllers.SetupRouter(controllers.RouterParams{
		Services:  a.services,
		BaseURL:   a.config.BaseURL,
		JWTSecret: []byte(a.config.JWTSecret),
		Logger:    a.Logger,
	})

	server := &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Shutdown command received")
	case serverErr = <-errChan:
		a.Logger.Error("server error", zap.Error(serverErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		a.Logger.Error("server shutdown error", zap.Error(shutdownErr))
	}
	if a.resolveCache != nil {
		if closeErr := a.resolveCache.Close(); closeErr != nil {
			a.Logger.Error("resolve cache close error", zap.Error(closeErr))
		}
	}

	return serverErr
}

// initServices создает подключение к хранилищу и собирает сервисный слой.
func initServices(
	ctx context.Context,
	conf config.Config,
	resolveCache *cache.ResolveCache,
	logger *zap.Logger,
) (*services.Services, error) {
	factoryConf := db.FactoryConfig{StorageType: whatIsDBStorageType(&conf)}
	if conf.DatabaseDSN != "" {
		factoryConf.PostgresDSN = &conf.DatabaseDSN
	}
	if conf.SQLitePath != "" {
		factoryConf.SqliteDBPath = &conf.SQLitePath
	}

	dbConn, connErr := db.NewConnectionFactory(ctx, factoryConf)
	if connErr != nil {
		return nil, connErr //nolint:wrapcheck
	}

	deps := services.Deps{
		ResolveCache: resolveCache,
		Notifier:     notify.NewLogNotifier(logger),
		Logger:       logger,
		RepoLogger:   config.InitRepoLogger(),
	}
	if conf.GeoEndpoint != "" {
		deps.Locator = geo.NewHTTPLocator(conf.GeoEndpoint)
	}

	appServices, servErr := services.Factory(dbConn, whatIsServiceType(&conf), deps)
	if servErr != nil {
		return nil, servErr //nolint:wrapcheck
	}
	return appServices, nil
}

// initResolveCache подключает redis кеш резолва. Пустой адрес означает
// работу без кеша.
func initResolveCache(ctx context.Context, conf config.Config, logger *zap.Logger) (*cache.ResolveCache, error) {
	if conf.RedisAddr == "" {
		return nil, nil //nolint:nilnil
	}
	return cache.NewResolveCache(ctx, cache.Config{ //nolint:wrapcheck
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
		TTL:      conf.ResolveCacheTTL,
	}, logger)
}

func whatIsDBStorageType(conf *config.Config) db.StorageType {
	if conf.DatabaseDSN != "" {
		return db.StorageTypePostgres
	}
	if conf.SQLitePath != "" {
		return db.StorageTypeSQLite
	}
	return db.StorageTypeInMemory
}

func whatIsServiceType(conf *config.Config) services.ServiceType {
	if conf.DatabaseDSN != "" {
		return services.ServiceTypePostgres
	}
	if conf.SQLitePath != "" {
		return services.ServiceTypeSQLite
	}
	return services.ServiceTypeInMemory
}
