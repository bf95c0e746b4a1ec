package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/fsdevblog/linkstats/internal/models"
)

// brokenCache возвращает кеш, у которого redis гарантированно недоступен.
// Все операции должны деградировать молча, без паник и ошибок наружу.
func brokenCache(t *testing.T) *ResolveCache {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return &ResolveCache{
		client: client,
		ttl:    time.Minute,
		logger: zap.NewNop(),
	}
}

func TestResolveCache_DegradesWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	c := brokenCache(t)

	assert.Nil(t, c.Get(ctx, "abc123"))

	assert.NotPanics(t, func() {
		c.Set(ctx, "abc123", &Resolution{LinkID: "l-1", OriginalURL: "https://example.com", ShortCode: "abc123"})
	})
	assert.NotPanics(t, func() {
		c.Invalidate(ctx, "abc123", "", "alias")
	})
}

func TestResolveCache_InvalidateEmpty(t *testing.T) {
	c := brokenCache(t)
	// пустой список кодов не должен трогать redis вообще
	c.Invalidate(context.Background())
}

func TestResolution_Redirectable(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		res  Resolution
		want bool
	}{
		{"active without deadline", Resolution{Status: models.LinkStatusActive}, true},
		{"active with future deadline", Resolution{Status: models.LinkStatusActive, ExpiresAt: &future}, true},
		{"active with past deadline", Resolution{Status: models.LinkStatusActive, ExpiresAt: &past}, false},
		{"expired status", Resolution{Status: models.LinkStatusExpired}, false},
		{"blocked status", Resolution{Status: models.LinkStatusBlocked}, false},
		{"inactive is still redirectable", Resolution{Status: models.LinkStatusInactive}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.Redirectable(now))
		})
	}
}
