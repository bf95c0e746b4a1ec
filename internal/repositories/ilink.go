package repositories

import (
	"context"
	"time"

	"github.com/fsdevblog/linkstats/internal/models"
)

// ListFilter параметры выборки ссылок владельца.
type ListFilter struct {
	Status      models.LinkStatus
	Search      string // подстрока в originalUrl/title
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PerPage     int
}

// Пагинация по умолчанию.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Limit нормализованный размер страницы.
func (f ListFilter) Limit() int {
	switch {
	case f.PerPage <= 0:
		return DefaultPerPage
	case f.PerPage > MaxPerPage:
		return MaxPerPage
	default:
		return f.PerPage
	}
}

// Offset смещение страницы.
func (f ListFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit()
}

// LinkRepository хранилище агрегатов Link.
type LinkRepository interface {
	// Create сохраняет новую ссылку. Конфликт shortCode/customAlias
	// возвращается как ErrDuplicateKey (гонка разруливается уникальным
	// констрейнтом хранилища, не предварительной проверкой).
	Create(ctx context.Context, link *models.Link) error
	// GetByID находит ссылку по идентификатору.
	GetByID(ctx context.Context, id string) (*models.Link, error)
	// GetByCode находит ссылку по shortCode ЛИБО customAlias.
	GetByCode(ctx context.Context, code string) (*models.Link, error)
	// ListByOwner возвращает страницу ссылок владельца (сортировка по
	// дате создания, новые первыми) и общее количество под фильтром.
	ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]models.Link, int64, error)
	// GetAllByOwner возвращает все ссылки владельца. Сразу пачкой,
	// для кросс-ссылочных отчетов.
	GetAllByOwner(ctx context.Context, ownerID string) ([]models.Link, error)
	// Update перезаписывает агрегат целиком.
	Update(ctx context.Context, link *models.Link) error
	// UpdateStatus меняет только статус и флаг истечения.
	UpdateStatus(ctx context.Context, id string, status models.LinkStatus, isExpired bool) error
	// Delete удаляет ссылку владельца. Чужая или отсутствующая ссылка — ErrNotFound.
	Delete(ctx context.Context, id string, ownerID string) error
	// ApplyClick атомарно применяет мутацию клика к агрегату:
	// читает, вызывает mutate, персистит.
	ApplyClick(ctx context.Context, id string, mutate func(*models.Link) error) error
}
