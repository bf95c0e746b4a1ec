package sql

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fsdevblog/linkstats/internal/models"
	"github.com/fsdevblog/linkstats/internal/repositories"
)

// LinkRepo репозиторий ссылок поверх gorm (sqlite).
type LinkRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewLinkRepo(db *gorm.DB, logger *logrus.Logger) *LinkRepo {
	return &LinkRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/link"),
	}
}

func (r *LinkRepo) Create(ctx context.Context, link *models.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		converted := convertErrorType(err)
		if !errors.Is(converted, repositories.ErrDuplicateKey) {
			r.logger.WithError(err).Errorf("failed to create link %s", link.ShortCode)
		}
		return converted
	}
	return nil
}

func (r *LinkRepo) GetByID(ctx context.Context, id string) (*models.Link, error) {
	var link models.Link
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		r.logger.WithError(err).Errorf("failed to get link by id %s", id)
		return nil, repositories.ErrUnknown
	}
	return &link, nil
}

func (r *LinkRepo) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	var link models.Link
	err := r.db.WithContext(ctx).
		Where("short_code = ? OR custom_alias = ?", code, code).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		r.logger.WithError(err).Errorf("failed to get link by code %s", code)
		return nil, repositories.ErrUnknown
	}
	return &link, nil
}

func (r *LinkRepo) ListByOwner(
	ctx context.Context,
	ownerID string,
	filter repositories.ListFilter,
) ([]models.Link, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Link{}).Where("owner_id = ?", ownerID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("original_url LIKE ? OR title LIKE ?", pattern, pattern)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.WithError(err).Error("failed to count links")
		return nil, 0, repositories.ErrUnknown
	}

	var links []models.Link
	err := query.Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&links).Error
	if err != nil {
		r.logger.WithError(err).Error("failed to list links")
		return nil, 0, repositories.ErrUnknown
	}
	return links, total, nil
}

func (r *LinkRepo) GetAllByOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	var links []models.Link
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&links).Error
	if err != nil {
		r.logger.WithError(err).Errorf("failed to get links of owner %s", ownerID)
		return nil, repositories.ErrUnknown
	}
	return links, nil
}

func (r *LinkRepo) Update(ctx context.Context, link *models.Link) error {
	if err := r.db.WithContext(ctx).Save(link).Error; err != nil {
		converted := convertErrorType(err)
		if !errors.Is(converted, repositories.ErrDuplicateKey) {
			r.logger.WithError(err).Errorf("failed to update link %s", link.ID)
		}
		return converted
	}
	return nil
}

func (r *LinkRepo) UpdateStatus(
	ctx context.Context,
	id string,
	status models.LinkStatus,
	isExpired bool,
) error {
	err := r.db.WithContext(ctx).Model(&models.Link{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "is_expired": isExpired}).Error
	if err != nil {
		r.logger.WithError(err).Errorf("failed to update status of link %s", id)
		return repositories.ErrUnknown
	}
	return nil
}

func (r *LinkRepo) Delete(ctx context.Context, id string, ownerID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Link{})
	if result.Error != nil {
		r.logger.WithError(result.Error).Errorf("failed to delete link %s", id)
		return repositories.ErrUnknown
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// ApplyClick применяет мутацию клика в транзакции read-modify-write.
// Сериализацию конкурентных кликов одной ссылки обеспечивает
// вызывающий сервис (замок по id ссылки).
func (r *LinkRepo) ApplyClick(ctx context.Context, id string, mutate func(*models.Link) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link models.Link
		if getErr := tx.Where("id = ?", id).First(&link).Error; getErr != nil {
			return getErr
		}
		if mutErr := mutate(&link); mutErr != nil {
			return mutErr
		}
		return tx.Save(&link).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repositories.ErrNotFound
		}
		r.logger.WithError(err).Errorf("failed to apply click to link %s", id)
		return repositories.ErrUnknown
	}
	return nil
}
