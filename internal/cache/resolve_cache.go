// Package cache кеширует резолв короткого кода на границе редиректа.
// Кеш строго best-effort: недоступный redis означает поход в хранилище,
// а не ошибку пользователю.
package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fsdevblog/linkstats/internal/models"
)

const keyPrefix = "resolve:"

// Resolution все что нужно шлюзу редиректа для обслуживания перехода,
// без счетчиков и аналитики (они мутируют на каждом клике и в кеше
// мгновенно протухали бы).
type Resolution struct {
	LinkID      string              `json:"linkId"`
	OriginalURL string              `json:"originalUrl"`
	ShortCode   string              `json:"shortCode"`
	CustomAlias string              `json:"customAlias,omitempty"`
	Status      models.LinkStatus   `json:"status"`
	IsExpired   bool                `json:"isExpired"`
	ExpiresAt   *time.Time          `json:"expiresAt,omitempty"`
	Settings    models.LinkSettings `json:"settings"`
}

// Redirectable применяет политику редиректа к кешированному резолву.
func (r *Resolution) Redirectable(now time.Time) bool {
	if r.Status == models.LinkStatusExpired || r.Status == models.LinkStatusBlocked {
		return false
	}
	if r.ExpiresAt != nil && !r.ExpiresAt.After(now) {
		return false
	}
	return true
}

// ResolveCache кеш код → Resolution поверх redis.
type ResolveCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewResolveCache(ctx context.Context, conf Config, logger *zap.Logger) (*ResolveCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrapf(err, "ping redis at %s", conf.Addr)
	}
	return &ResolveCache{
		client: client,
		ttl:    conf.TTL,
		logger: logger.With(zap.String("module", "cache/resolve")),
	}, nil
}

// Get возвращает кешированный резолв кода, либо nil при промахе/ошибке.
func (c *ResolveCache) Get(ctx context.Context, code string) *Resolution {
	raw, err := c.client.Get(ctx, keyPrefix+code).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("cache get failed", zap.String("code", code), zap.Error(err))
		}
		return nil
	}
	var res Resolution
	if unmErr := json.Unmarshal(raw, &res); unmErr != nil {
		c.logger.Warn("cache entry is corrupted", zap.String("code", code), zap.Error(unmErr))
		return nil
	}
	return &res
}

func (c *ResolveCache) Set(ctx context.Context, code string, res *Resolution) {
	raw, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("cache marshal failed", zap.String("code", code), zap.Error(err))
		return
	}
	if setErr := c.client.Set(ctx, keyPrefix+code, raw, c.ttl).Err(); setErr != nil {
		c.logger.Debug("cache set failed", zap.String("code", code), zap.Error(setErr))
	}
}

// Invalidate снимает резолвы кодов. Вызывается на обновлении, удалении
// и ленивом истечении ссылки.
func (c *ResolveCache) Invalidate(ctx context.Context, codes ...string) {
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		if code != "" {
			keys = append(keys, keyPrefix+code)
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Debug("cache invalidate failed", zap.Strings("codes", codes), zap.Error(err))
	}
}

func (c *ResolveCache) Close() error {
	return c.client.Close() //nolint:wrapcheck
}
