package services

import (
	"context"
	"crypto/md5" //nolint:gosec
	"encoding/base64"
	"net/url"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fsdevblog/linkstats/internal/cache"
	"github.com/fsdevblog/linkstats/internal/models"
	"github.com/fsdevblog/linkstats/internal/notify"
	"github.com/fsdevblog/linkstats/internal/repositories"
)

// hostnameRegex в соответствии с `RFC 1123` за исключением - исключает корневые доменные имена (без зоны).
var hostnameRegex = regexp.MustCompile(`^([a-zA-Z0-9](-?[a-zA-Z0-9])*\.)+([a-zA-Z0-9](-?[a-zA-Z0-9])*)$`)

// aliasRegex допустимые символы пользовательского алиаса.
var aliasRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)

// reservedCodes коды занятые маршрутами приложения.
var reservedCodes = map[string]struct{}{
	"api":  {},
	"ping": {},
}

// LinkService сервис CRUD операций над ссылками и резолва кода на
// границе редиректа.
type LinkService struct {
	repo     repositories.LinkRepository
	cache    *cache.ResolveCache // может быть nil, кеш опционален
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewLinkService(
	repo repositories.LinkRepository,
	resolveCache *cache.ResolveCache,
	notifier notify.Notifier,
	logger *zap.Logger,
) *LinkService {
	return &LinkService{
		repo:     repo,
		cache:    resolveCache,
		notifier: notifier,
		logger:   logger.With(zap.String("module", "services/link")),
	}
}

// CreateLinkParams параметры создания ссылки.
type CreateLinkParams struct {
	URL         string
	CustomAlias string
	Title       string
	Description string
	Tags        []string
	ExpiresAt   *time.Time
	Settings    *models.LinkSettings
}

// Create валидирует параметры и создает ссылку. Гонка за короткий код
// разруливается уникальным констрейнтом хранилища: на коллизию
// сгенерированного кода делается повторная попытка с новой солью, на
// занятый алиас возвращается ErrConflict.
func (s *LinkService) Create(ctx context.Context, ownerID string, params CreateLinkParams) (*models.Link, error) {
	parsedURL, urlErr := validateURL(params.URL)
	if urlErr != nil {
		return nil, urlErr
	}
	if aliasErr := validateAlias(params.CustomAlias); aliasErr != nil {
		return nil, aliasErr
	}
	if params.ExpiresAt != nil && !params.ExpiresAt.After(time.Now()) {
		return nil, errors.Wrap(ErrValidation, "expiresAt must be in the future")
	}

	settings := models.DefaultSettings()
	if params.Settings != nil {
		settings = *params.Settings
	}

	var delta uint = 1
	var deltaMax uint = 10

	for {
		if delta >= deltaMax {
			return nil, errors.Wrap(ErrUnknown, "generateShortCode loop limit for url")
		}
		link := &models.Link{
			ID:          uuid.NewString(),
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
			OwnerID:     ownerID,
			OriginalURL: parsedURL.String(),
			ShortCode:   generateShortCode(parsedURL.String(), delta, models.ShortCodeLength),
			Title:       params.Title,
			Description: params.Description,
			Tags:        params.Tags,
			Status:      models.LinkStatusActive,
			ExpiresAt:   params.ExpiresAt,
			Settings:    settings,
		}
		if params.CustomAlias != "" {
			alias := params.CustomAlias
			link.CustomAlias = &alias
		}

		if createErr := s.repo.Create(ctx, link); createErr != nil {
			if errors.Is(createErr, repositories.ErrDuplicateKey) {
				// Либо занят алиас, либо коллизия сгенерированного кода.
				if params.CustomAlias != "" && s.codeTaken(ctx, params.CustomAlias) {
					return nil, errors.Wrapf(ErrConflict, "alias %s", params.CustomAlias)
				}
				delta++
				continue
			}
			return nil, ErrUnknown
		}
		return link, nil
	}
}

func (s *LinkService) codeTaken(ctx context.Context, code string) bool {
	_, err := s.repo.GetByCode(ctx, code)
	return err == nil
}

// GetForOwner возвращает ссылку владельца, лениво проверяя истечение:
// именно здесь протухшая ссылка получает статус expired при просмотре
// дашборда.
func (s *LinkService) GetForOwner(ctx context.Context, id string, ownerID string) (*models.Link, error) {
	link, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrRecordNotFound, "link %s not found", id)
		}
		return nil, ErrUnknown
	}
	if link.OwnerID != ownerID {
		return nil, errors.Wrapf(ErrRecordNotFound, "link %s not found", id)
	}
	s.expireIfNeeded(ctx, link)
	return link, nil
}

// List возвращает страницу ссылок владельца.
func (s *LinkService) List(
	ctx context.Context,
	ownerID string,
	filter repositories.ListFilter,
) ([]models.Link, int64, error) {
	links, total, err := s.repo.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, 0, ErrUnknown
	}
	for i := range links {
		s.expireIfNeeded(ctx, &links[i])
	}
	return links, total, nil
}

// UpdateLinkParams изменяемые владельцем поля. Nil значение означает
// «не трогать».
type UpdateLinkParams struct {
	Title       *string
	Description *string
	Tags        []string
	Settings    *models.LinkSettings
	Status      *models.LinkStatus
}

func (s *LinkService) Update(
	ctx context.Context,
	id string,
	ownerID string,
	params UpdateLinkParams,
) (*models.Link, error) {
	link, err := s.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		link.Title = *params.Title
	}
	if params.Description != nil {
		link.Description = *params.Description
	}
	if params.Tags != nil {
		link.Tags = params.Tags
	}
	if params.Settings != nil {
		link.Settings = *params.Settings
	}
	if params.Status != nil {
		// blocked выставляется только административно.
		switch *params.Status {
		case models.LinkStatusActive:
			// Реактивация с прошедшим дедлайном невозможна: ссылка тут же
			// истекла бы снова на первом доступе.
			if link.ExpiresAt != nil && !link.ExpiresAt.After(time.Now()) {
				return nil, errors.Wrapf(ErrExpired, "link %s deadline has passed", id)
			}
			link.Status = models.LinkStatusActive
			link.IsExpired = false
		case models.LinkStatusInactive:
			link.Status = models.LinkStatusInactive
		case models.LinkStatusExpired:
			link.Status = models.LinkStatusExpired
			link.IsExpired = true
		default:
			return nil, errors.Wrapf(ErrValidation, "status %s is not settable", *params.Status)
		}
	}
	link.UpdatedAt = time.Now()

	if updErr := s.repo.Update(ctx, link); updErr != nil {
		return nil, ErrUnknown
	}
	s.invalidateResolve(ctx, link)
	return link, nil
}

func (s *LinkService) Delete(ctx context.Context, id string, ownerID string) error {
	link, err := s.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if delErr := s.repo.Delete(ctx, id, ownerID); delErr != nil {
		if errors.Is(delErr, repositories.ErrNotFound) {
			return errors.Wrapf(ErrRecordNotFound, "link %s not found", id)
		}
		return ErrUnknown
	}
	s.invalidateResolve(ctx, link)
	return nil
}

// Resolve находит ссылку по короткому коду либо алиасу. Сначала кеш,
// затем хранилище с прогревом кеша.
func (s *LinkService) Resolve(ctx context.Context, code string) (*cache.Resolution, error) {
	if s.cache != nil {
		if res := s.cache.Get(ctx, code); res != nil {
			return res, nil
		}
	}

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrRecordNotFound, "code %s not found", code)
		}
		return nil, ErrUnknown
	}

	res := resolutionOf(link)
	if s.cache != nil {
		s.cache.Set(ctx, code, res)
	}
	return res, nil
}

// MarkExpired персистит ленивый переход active → expired, найденный на
// границе редиректа поверх кешированного резолва.
func (s *LinkService) MarkExpired(ctx context.Context, linkID string) {
	link, err := s.repo.GetByID(ctx, linkID)
	if err != nil {
		s.logger.Warn("mark expired: link fetch failed", zap.String("linkID", linkID), zap.Error(err))
		return
	}
	s.expireIfNeeded(ctx, link)
}

// expireIfNeeded выполняет ленивую проверку истечения и, если статус
// сменился этим вызовом, персистит переход, снимает резолв из кеша и
// шлет уведомление владельцу.
func (s *LinkService) expireIfNeeded(ctx context.Context, link *models.Link) {
	_, changed := link.CheckExpiration(time.Now())
	if !changed {
		return
	}
	if err := s.repo.UpdateStatus(ctx, link.ID, link.Status, link.IsExpired); err != nil {
		s.logger.Warn("persist expiration failed", zap.String("linkID", link.ID), zap.Error(err))
		return
	}
	s.invalidateResolve(ctx, link)
	if s.notifier != nil {
		s.notifier.LinkExpired(ctx, link)
	}
}

func (s *LinkService) invalidateResolve(ctx context.Context, link *models.Link) {
	if s.cache == nil {
		return
	}
	codes := []string{link.ShortCode}
	if link.CustomAlias != nil {
		codes = append(codes, *link.CustomAlias)
	}
	s.cache.Invalidate(ctx, codes...)
}

func resolutionOf(link *models.Link) *cache.Resolution {
	res := &cache.Resolution{
		LinkID:      link.ID,
		OriginalURL: link.OriginalURL,
		ShortCode:   link.ShortCode,
		Status:      link.Status,
		IsExpired:   link.IsExpired,
		ExpiresAt:   link.ExpiresAt,
		Settings:    link.Settings,
	}
	if link.CustomAlias != nil {
		res.CustomAlias = *link.CustomAlias
	}
	return res
}

// generateShortCode генерирует код ссылки нужной длины на основе delta.
func generateShortCode(rawURL string, delta uint, length int) string {
	// Добавляем счетчик к срезу (для избежания коллизий)
	b := []byte(rawURL)
	b = append(b, byte(delta))

	hash := md5.Sum(b) //nolint:gosec
	encoded := base64.URLEncoding.EncodeToString(hash[:])
	return encoded[:length]
}

// validateURL проверяет, является ли строка корректным URL.
func validateURL(rawURL string) (*url.URL, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)

	if err != nil {
		return nil, errors.Wrap(ErrValidation, "invalid URL format")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.Wrap(ErrValidation, "URL must have http or https scheme")
	}

	if parsedURL.Host == "" {
		return nil, errors.Wrap(ErrValidation, "URL must have a host")
	}

	if parsedURL.Hostname() != "localhost" && !hostnameRegex.MatchString(parsedURL.Hostname()) {
		return nil, errors.Wrap(ErrValidation, "invalid hostname")
	}

	return parsedURL, nil
}

// validateAlias проверяет пользовательский алиас. Пустой алиас валиден
// (будет сгенерирован короткий код).
func validateAlias(alias string) error {
	if alias == "" {
		return nil
	}
	if !aliasRegex.MatchString(alias) {
		return errors.Wrap(ErrValidation, "alias must be 3-30 chars of [a-zA-Z0-9_-]")
	}
	if _, reserved := reservedCodes[alias]; reserved {
		return errors.Wrapf(ErrValidation, "alias %s is reserved", alias)
	}
	return nil
}
