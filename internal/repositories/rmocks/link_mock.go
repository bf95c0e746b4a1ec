package rmocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fsdevblog/linkstats/internal/models"
	"github.com/fsdevblog/linkstats/internal/repositories"
)

// LinkRepoMock мок repositories.LinkRepository для тестов сервисного слоя.
type LinkRepoMock struct {
	mock.Mock
}

func (m *LinkRepoMock) Create(ctx context.Context, link *models.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (m *LinkRepoMock) GetByID(ctx context.Context, id string) (*models.Link, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *LinkRepoMock) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *LinkRepoMock) ListByOwner(
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

func (m *LinkRepoMock) GetAllByOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).([]models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *LinkRepoMock) Update(ctx context.Context, link *models.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (m *LinkRepoMock) UpdateStatus(
	ctx context.Context,
	id string,
	status models.LinkStatus,
	isExpired bool,
) error {
	args := m.Called(ctx, id, status, isExpired)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (m *LinkRepoMock) Delete(ctx context.Context, id string, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (m *LinkRepoMock) ApplyClick(
	ctx context.Context,
	id string,
	mutate func(*models.Link) error,
) error {
	args := m.Called(ctx, id, mutate)
	return args.Error(0) //nolint:wrapcheck,errcheck
}
