package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresConnection создает новый пул подключений к PostgreSQL.
//
// Параметры:
//   - ctx: контекст выполнения
//   - dsn: строка подключения к базе данных (Data Source Name)
//
// Возвращает:
//   - *pgxpool.Pool: пул подключений к PostgreSQL
//   - error: ошибка создания подключения
func NewPostgresConnection(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, confErr := pgxpool.ParseConfig(dsn)
	if confErr != nil {
		return nil, fmt.Errorf("failed to parse config: %w", confErr)
	}
	pool, poolErr := pgxpool.NewWithConfig(ctx, poolConfig)
	if poolErr != nil {
		return nil, fmt.Errorf("failed to create pool: %w", poolErr)
	}
	return pool, nil
}

// да да, знаю что нужно миграции прикрутить людские). Обязательно сделаю.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS links (
    id UUID PRIMARY KEY,
    created_at timestamp with time zone DEFAULT now(),
    updated_at timestamp with time zone DEFAULT now(),
    owner_id VARCHAR(36) NOT NULL,
    original_url VARCHAR(2048) NOT NULL,
    short_code VARCHAR(16) NOT NULL,
    custom_alias VARCHAR(30),
    title VARCHAR(255) NOT NULL DEFAULT '',
    description VARCHAR(1024) NOT NULL DEFAULT '',
    tags JSONB NOT NULL DEFAULT '[]',
    status VARCHAR(16) NOT NULL DEFAULT 'active',
    is_expired BOOLEAN NOT NULL DEFAULT FALSE,
    expires_at timestamp with time zone,
    clicks BIGINT NOT NULL DEFAULT 0,
    unique_clicks BIGINT NOT NULL DEFAULT 0,
    unique_visitors JSONB NOT NULL DEFAULT '{}',
    analytics_log JSONB NOT NULL DEFAULT '[]',
    daily_stats JSONB NOT NULL DEFAULT '[]',
    settings JSONB NOT NULL DEFAULT '{}'
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_links_short_code ON links (short_code);
CREATE UNIQUE INDEX IF NOT EXISTS idx_links_custom_alias ON links (custom_alias) WHERE custom_alias IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_links_owner_created ON links (owner_id, created_at);
`

// MigratePostgres накатывает схему прямо из приложения.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err //nolint:wrapcheck
}
