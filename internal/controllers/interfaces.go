package controllers

import (
	"context"

	"github.com/fsdevblog/linkstats/internal/cache"
	"github.com/fsdevblog/linkstats/internal/models"
	"github.com/fsdevblog/linkstats/internal/repositories"
	"github.com/fsdevblog/linkstats/internal/services"
)

type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

// LinkManager операции дашборда над ссылками владельца.
type LinkManager interface {
	Create(ctx context.Context, ownerID string, params services.CreateLinkParams) (*models.Link, error)
	GetForOwner(ctx context.Context, id string, ownerID string) (*models.Link, error)
	List(ctx context.Context, ownerID string, filter repositories.ListFilter) ([]models.Link, int64, error)
	Update(ctx context.Context, id string, ownerID string, params services.UpdateLinkParams) (*models.Link, error)
	Delete(ctx context.Context, id string, ownerID string) error
}

// LinkResolver резолв кода на границе редиректа.
type LinkResolver interface {
	Resolve(ctx context.Context, code string) (*cache.Resolution, error)
	MarkExpired(ctx context.Context, linkID string)
}

// ClickRecorder запись события перехода в агрегат ссылки.
type ClickRecorder interface {
	Record(ctx context.Context, linkID string, settings models.LinkSettings, raw services.RawClick) error
}

// ReportBuilder портфельный отчет по всем ссылкам владельца.
type ReportBuilder interface {
	BuildOverview(ctx context.Context, ownerID string) (*services.Overview, error)
}
