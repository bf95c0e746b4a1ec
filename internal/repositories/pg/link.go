// Package pg реализует репозиторий ссылок поверх PostgreSQL (pgx).
// Аналитические части агрегата хранятся jsonb колонками; мутация клика
// выполняется внутри транзакции с блокировкой строки, так что
// конкурентные клики по одной ссылке не теряют инкременты.
package pg

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/linkstats/internal/models"
	"github.com/fsdevblog/linkstats/internal/repositories"
)

const pgUniqueViolation = "23505"

type LinkRepo struct {
	pool   *pgxpool.Pool
	logger *logrus.Entry
}

func NewLinkRepo(pool *pgxpool.Pool, logger *logrus.Logger) *LinkRepo {
	return &LinkRepo{
		pool:   pool,
		logger: logger.WithField("module", "repository/pg/link"),
	}
}

const linkColumns = `id, created_at, updated_at, owner_id, original_url, short_code, custom_alias,
	title, description, tags, status, is_expired, expires_at, clicks, unique_clicks,
	unique_visitors, analytics_log, daily_stats, settings`

func (r *LinkRepo) Create(ctx context.Context, link *models.Link) error {
	blobs, err := marshalAggregate(link)
	if err != nil {
		r.logger.WithError(err).Error("failed to marshal link aggregate")
		return repositories.ErrUnknown
	}

	_, execErr := r.pool.Exec(ctx, `
		INSERT INTO links (`+linkColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		link.ID, link.CreatedAt, link.UpdatedAt, link.OwnerID, link.OriginalURL,
		link.ShortCode, link.CustomAlias, link.Title, link.Description, blobs.tags,
		link.Status, link.IsExpired, link.ExpiresAt, link.Clicks, link.UniqueClicks,
		blobs.visitors, blobs.log, blobs.daily, blobs.settings,
	)
	if execErr != nil {
		return r.convertError(execErr, "create link")
	}
	return nil
}

func (r *LinkRepo) GetByID(ctx context.Context, id string) (*models.Link, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+linkColumns+` FROM links WHERE id = $1`, id)
	return r.scanLink(row, "get link by id")
}

func (r *LinkRepo) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM links WHERE short_code = $1 OR custom_alias = $1`, code)
	return r.scanLink(row, "get link by code")
}

func (r *LinkRepo) ListByOwner(
	ctx context.Context,
	ownerID string,
	filter repositories.ListFilter,
) ([]models.Link, int64, error) {
	where := `owner_id = $1
		AND ($2 = '' OR status = $2)
		AND ($3 = '' OR original_url ILIKE '%' || $3 || '%' OR title ILIKE '%' || $3 || '%')
		AND ($4::timestamptz IS NULL OR created_at >= $4)
		AND ($5::timestamptz IS NULL OR created_at <= $5)`
	args := []any{ownerID, string(filter.Status), filter.Search, filter.CreatedFrom, filter.CreatedTo}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM links WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, r.convertError(err, "count links")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+linkColumns+` FROM links WHERE `+where+`
		ORDER BY created_at DESC LIMIT $6 OFFSET $7`,
		append(args, filter.Limit(), filter.Offset())...,
	)
	if err != nil {
		return nil, 0, r.convertError(err, "list links")
	}
	defer rows.Close()

	links, collectErr := r.collectLinks(rows)
	if collectErr != nil {
		return nil, 0, collectErr
	}
	return links, total, nil
}

func (r *LinkRepo) GetAllByOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+linkColumns+` FROM links WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, r.convertError(err, "get links by owner")
	}
	defer rows.Close()

	return r.collectLinks(rows)
}

func (r *LinkRepo) Update(ctx context.Context, link *models.Link) error {
	return r.update(ctx, r.pool, link)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *LinkRepo) update(ctx context.Context, ex execer, link *models.Link) error {
	blobs, err := marshalAggregate(link)
	if err != nil {
		r.logger.WithError(err).Error("failed to marshal link aggregate")
		return repositories.ErrUnknown
	}

	tag, execErr := ex.Exec(ctx, `
		UPDATE links SET
			updated_at = now(), original_url = $2, custom_alias = $3, title = $4,
			description = $5, tags = $6, status = $7, is_expired = $8, expires_at = $9,
			clicks = $10, unique_clicks = $11, unique_visitors = $12, analytics_log = $13,
			daily_stats = $14, settings = $15
		WHERE id = $1`,
		link.ID, link.OriginalURL, link.CustomAlias, link.Title, link.Description,
		blobs.tags, link.Status, link.IsExpired, link.ExpiresAt, link.Clicks,
		link.UniqueClicks, blobs.visitors, blobs.log, blobs.daily, blobs.settings,
	)
	if execErr != nil {
		return r.convertError(execErr, "update link")
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *LinkRepo) UpdateStatus(
	ctx context.Context,
	id string,
	status models.LinkStatus,
	isExpired bool,
) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE links SET status = $2, is_expired = $3, updated_at = now() WHERE id = $1`,
		id, status, isExpired)
	if err != nil {
		return r.convertError(err, "update link status")
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *LinkRepo) Delete(ctx context.Context, id string, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM links WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return r.convertError(err, "delete link")
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// ApplyClick читает агрегат под SELECT ... FOR UPDATE, применяет мутацию
// и пишет обратно в рамках одной транзакции.
func (r *LinkRepo) ApplyClick(ctx context.Context, id string, mutate func(*models.Link) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.convertError(err, "begin click tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx, `SELECT `+linkColumns+` FROM links WHERE id = $1 FOR UPDATE`, id)
	link, scanErr := r.scanLink(row, "lock link for click")
	if scanErr != nil {
		return scanErr
	}

	if mutErr := mutate(link); mutErr != nil {
		return mutErr
	}

	if updErr := r.update(ctx, tx, link); updErr != nil {
		return updErr
	}
	if commitErr := tx.Commit(ctx); commitErr != nil {
		return r.convertError(commitErr, "commit click tx")
	}
	return nil
}

// aggregateBlobs jsonb представление аналитических полей агрегата.
type aggregateBlobs struct {
	tags     []byte
	visitors []byte
	log      []byte
	daily    []byte
	settings []byte
}

func marshalAggregate(link *models.Link) (*aggregateBlobs, error) {
	var blobs aggregateBlobs
	var err error

	if blobs.tags, err = json.Marshal(orEmptySlice(link.Tags)); err != nil {
		return nil, errors.Wrap(err, "marshal tags")
	}
	visitors := link.UniqueVisitors
	if visitors == nil {
		visitors = map[string]*models.VisitorEntry{}
	}
	if blobs.visitors, err = json.Marshal(visitors); err != nil {
		return nil, errors.Wrap(err, "marshal visitors")
	}
	if blobs.log, err = json.Marshal(orEmptySlice(link.AnalyticsLog)); err != nil {
		return nil, errors.Wrap(err, "marshal analytics log")
	}
	if blobs.daily, err = json.Marshal(orEmptySlice(link.DailyStats)); err != nil {
		return nil, errors.Wrap(err, "marshal daily stats")
	}
	if blobs.settings, err = json.Marshal(link.Settings); err != nil {
		return nil, errors.Wrap(err, "marshal settings")
	}
	return &blobs, nil
}

func orEmptySlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (r *LinkRepo) scanLink(row pgx.Row, msg string) (*models.Link, error) {
	var link models.Link
	var blobs aggregateBlobs

	err := row.Scan(
		&link.ID, &link.CreatedAt, &link.UpdatedAt, &link.OwnerID, &link.OriginalURL,
		&link.ShortCode, &link.CustomAlias, &link.Title, &link.Description, &blobs.tags,
		&link.Status, &link.IsExpired, &link.ExpiresAt, &link.Clicks, &link.UniqueClicks,
		&blobs.visitors, &blobs.log, &blobs.daily, &blobs.settings,
	)
	if err != nil {
		return nil, r.convertError(err, msg)
	}

	if err = unmarshalAggregate(&link, &blobs); err != nil {
		r.logger.WithError(err).Error(msg)
		return nil, repositories.ErrUnknown
	}
	return &link, nil
}

func unmarshalAggregate(link *models.Link, blobs *aggregateBlobs) error {
	if err := json.Unmarshal(blobs.tags, &link.Tags); err != nil {
		return errors.Wrap(err, "unmarshal tags")
	}
	if err := json.Unmarshal(blobs.visitors, &link.UniqueVisitors); err != nil {
		return errors.Wrap(err, "unmarshal visitors")
	}
	if err := json.Unmarshal(blobs.log, &link.AnalyticsLog); err != nil {
		return errors.Wrap(err, "unmarshal analytics log")
	}
	if err := json.Unmarshal(blobs.daily, &link.DailyStats); err != nil {
		return errors.Wrap(err, "unmarshal daily stats")
	}
	if err := json.Unmarshal(blobs.settings, &link.Settings); err != nil {
		return errors.Wrap(err, "unmarshal settings")
	}
	return nil
}

func (r *LinkRepo) collectLinks(rows pgx.Rows) ([]models.Link, error) {
	var links []models.Link
	for rows.Next() {
		link, err := r.scanLink(rows, "scan link row")
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		return nil, r.convertError(err, "iterate link rows")
	}
	return links, nil
}

func (r *LinkRepo) convertError(err error, msg string) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return repositories.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		return repositories.ErrDuplicateKey
	default:
		r.logger.WithError(err).Error(msg)
		return repositories.ErrUnknown
	}
}
