package smocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fsdevblog/linkstats/internal/cache"
	"github.com/fsdevblog/linkstats/internal/models"
	"github.com/fsdevblog/linkstats/internal/repositories"
	"github.com/fsdevblog/linkstats/internal/services"
)

// LinkManagerMock мок CRUD операций дашборда.
type LinkManagerMock struct {
	mock.Mock
}

func (m *LinkManagerMock) Create(
	ctx context.Context,
	ownerID string,
	params services.CreateLinkParams,
) (*models.Link, error) {
	args := m.Called(ctx, ownerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *LinkManagerMock) GetForOwner(ctx context.Context, id string, ownerID string) (*models.Link, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *LinkManagerMock) List(
	ctx context.Context,
	ownerID string,
	filter repositories.ListFilter,
) ([]models.Link, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).([]models.Link), args.Get(1).(int64), args.Error(2) //nolint:wrapcheck,errcheck
}

func (m *LinkManagerMock) Update(
	ctx context.Context,
	id string,
	ownerID string,
	params services.UpdateLinkParams,
) (*models.Link, error) {
	args := m.Called(ctx, id, ownerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *LinkManagerMock) Delete(ctx context.Context, id string, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

// LinkResolverMock мок резолва на границе редиректа.
type LinkResolverMock struct {
	mock.Mock
}

func (m *LinkResolverMock) Resolve(ctx context.Context, code string) (*cache.Resolution, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*cache.Resolution), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *LinkResolverMock) MarkExpired(ctx context.Context, linkID string) {
	m.Called(ctx, linkID)
}

// ClickRecorderMock мок записи событий перехода.
type ClickRecorderMock struct {
	mock.Mock
}

func (m *ClickRecorderMock) Record(
	ctx context.Context,
	linkID string,
	settings models.LinkSettings,
	raw services.RawClick,
) error {
	args := m.Called(ctx, linkID, settings, raw)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

// ReportBuilderMock мок построителя отчетов.
type ReportBuilderMock struct {
	mock.Mock
}

func (m *ReportBuilderMock) BuildOverview(ctx context.Context, ownerID string) (*services.Overview, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*services.Overview), args.Error(1) //nolint:wrapcheck,errcheck
}

// ConnCheckerMock мок проверки соединения с хранилищем.
type ConnCheckerMock struct {
	mock.Mock
}

func (m *ConnCheckerMock) CheckConnection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0) //nolint:wrapcheck,errcheck
}
