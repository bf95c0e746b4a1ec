package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/linkstats/internal/db"
	"github.com/fsdevblog/linkstats/internal/db/memory"
	"github.com/fsdevblog/linkstats/internal/models"
	"github.com/fsdevblog/linkstats/internal/repositories"
)

// LinkRepo репозиторий ссылок в памяти. Агрегаты лежат в переданном
// хранилище по id; индекс код → id живет в отдельном внутреннем
// хранилище, чтобы резолвить короткий код и алиас одним лукапом.
type LinkRepo struct {
	links  *db.MemoryStorage
	codes  *memory.MStorage
	mu     sync.Mutex
	logger *logrus.Entry
}

func NewLinkRepo(store *db.MemoryStorage, logger *logrus.Logger) *LinkRepo {
	return &LinkRepo{
		links:  store,
		codes:  memory.NewMemStorage(),
		logger: logger.WithField("module", "repository/memstore/link"),
	}
}

func (r *LinkRepo) Create(ctx context.Context, link *models.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Сначала проверяем занятость кодов, затем пишем: мутекс репозитория
	// делает пару проверка+вставка атомарной.
	codes := []string{link.ShortCode}
	if aliasOf(link) != "" {
		codes = append(codes, aliasOf(link))
	}
	for _, code := range codes {
		if r.codes.IsExist(code) {
			return repositories.ErrDuplicateKey
		}
	}

	if err := memory.Set[models.Link](ctx, link.ID, link, r.links.MStorage); err != nil {
		return r.convertError(err, "create link")
	}
	for _, code := range codes {
		id := link.ID
		if err := memory.Set[string](ctx, code, &id, r.codes); err != nil {
			return r.convertError(err, "index code")
		}
	}
	return nil
}

func (r *LinkRepo) GetByID(ctx context.Context, id string) (*models.Link, error) {
	link, err := memory.Get[models.Link](ctx, id, r.links.MStorage)
	if err != nil {
		return nil, r.convertError(err, "get link by id")
	}
	return link, nil
}

func (r *LinkRepo) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	id, err := memory.Get[string](ctx, code, r.codes)
	if err != nil {
		return nil, r.convertError(err, "resolve code")
	}
	return r.GetByID(ctx, *id)
}

func (r *LinkRepo) ListByOwner(
	ctx context.Context,
	ownerID string,
	filter repositories.ListFilter,
) ([]models.Link, int64, error) {
	matched := r.filterByOwner(ctx, ownerID, &filter)
	total := int64(len(matched))

	offset := filter.Offset()
	if offset >= len(matched) {
		return []models.Link{}, total, nil
	}
	end := offset + filter.Limit()
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *LinkRepo) GetAllByOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	return r.filterByOwner(ctx, ownerID, nil), nil
}

// filterByOwner собирает ссылки владельца под фильтром, новые первыми.
func (r *LinkRepo) filterByOwner(
	ctx context.Context,
	ownerID string,
	filter *repositories.ListFilter,
) []models.Link {
	all := memory.GetAll[models.Link](ctx, r.links.MStorage)

	var matched = make([]models.Link, 0, len(all))
	for _, link := range all {
		if link.OwnerID != ownerID {
			continue
		}
		if filter != nil && !matchesFilter(&link, filter) {
			continue
		}
		matched = append(matched, link)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}

func matchesFilter(link *models.Link, filter *repositories.ListFilter) bool {
	if filter.Status != "" && link.Status != filter.Status {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(link.OriginalURL), needle) &&
			!strings.Contains(strings.ToLower(link.Title), needle) {
			return false
		}
	}
	if filter.CreatedFrom != nil && link.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && link.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	return true
}

func (r *LinkRepo) Update(ctx context.Context, link *models.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := memory.Get[models.Link](ctx, link.ID, r.links.MStorage)
	if err != nil {
		return r.convertError(err, "update link")
	}

	// Алиас мог смениться: индекс старого кода снимаем, новый занимаем.
	if aliasOf(current) != aliasOf(link) {
		if aliasOf(link) != "" && r.codes.IsExist(aliasOf(link)) {
			return repositories.ErrDuplicateKey
		}
		if aliasOf(current) != "" {
			r.codes.Delete(aliasOf(current))
		}
		if aliasOf(link) != "" {
			id := link.ID
			if setErr := memory.Set[string](ctx, aliasOf(link), &id, r.codes); setErr != nil {
				return r.convertError(setErr, "index alias")
			}
		}
	}

	if setErr := memory.Set[models.Link](ctx, link.ID, link, r.links.MStorage, memory.WithOverwrite()); setErr != nil {
		return r.convertError(setErr, "update link")
	}
	return nil
}

func aliasOf(link *models.Link) string {
	if link.CustomAlias == nil {
		return ""
	}
	return *link.CustomAlias
}

func (r *LinkRepo) UpdateStatus(
	ctx context.Context,
	id string,
	status models.LinkStatus,
	isExpired bool,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, err := memory.Get[models.Link](ctx, id, r.links.MStorage)
	if err != nil {
		return r.convertError(err, "update link status")
	}
	link.Status = status
	link.IsExpired = isExpired
	if setErr := memory.Set[models.Link](ctx, id, link, r.links.MStorage, memory.WithOverwrite()); setErr != nil {
		return r.convertError(setErr, "update link status")
	}
	return nil
}

func (r *LinkRepo) Delete(ctx context.Context, id string, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, err := memory.Get[models.Link](ctx, id, r.links.MStorage)
	if err != nil {
		return r.convertError(err, "delete link")
	}
	if link.OwnerID != ownerID {
		return repositories.ErrNotFound
	}

	r.links.Delete(id)
	r.codes.Delete(link.ShortCode)
	if aliasOf(link) != "" {
		r.codes.Delete(aliasOf(link))
	}
	return nil
}

func (r *LinkRepo) ApplyClick(ctx context.Context, id string, mutate func(*models.Link) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, err := memory.Get[models.Link](ctx, id, r.links.MStorage)
	if err != nil {
		return r.convertError(err, "apply click")
	}
	if mutErr := mutate(link); mutErr != nil {
		return mutErr
	}
	if setErr := memory.Set[models.Link](ctx, id, link, r.links.MStorage, memory.WithOverwrite()); setErr != nil {
		return r.convertError(setErr, "apply click")
	}
	return nil
}

func (r *LinkRepo) convertError(err error, msg string) error {
	switch {
	case errors.Is(err, memory.ErrNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, memory.ErrDuplicateKey):
		return repositories.ErrDuplicateKey
	default:
		r.logger.WithError(err).Error(msg)
		return repositories.ErrUnknown
	}
}
