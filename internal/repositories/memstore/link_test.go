package memstore

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/linkstats/internal/db"
	"github.com/fsdevblog/linkstats/internal/models"
	"github.com/fsdevblog/linkstats/internal/repositories"
)

func newTestRepo() *LinkRepo {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLinkRepo(db.NewMemStorage(), logger)
}

func makeLink(id, ownerID, code string) *models.Link {
	return &models.Link{
		ID:          id,
		OwnerID:     ownerID,
		OriginalURL: "https://example.com/" + code,
		ShortCode:   code,
		Status:      models.LinkStatusActive,
		CreatedAt:   time.Now(),
		Settings:    models.DefaultSettings(),
	}
}

func TestLinkRepo_CreateAndResolve(t *testing.T) {
	repo := newTestRepo()
	alias := "my-alias"
	link := makeLink("link-1", "owner-1", "abc12345")
	link.CustomAlias = &alias

	require.NoError(t, repo.Create(t.Context(), link))

	byID, err := repo.GetByID(t.Context(), "link-1")
	require.NoError(t, err)
	assert.Equal(t, link.OriginalURL, byID.OriginalURL)

	byCode, err := repo.GetByCode(t.Context(), "abc12345")
	require.NoError(t, err)
	assert.Equal(t, "link-1", byCode.ID)

	byAlias, err := repo.GetByCode(t.Context(), "my-alias")
	require.NoError(t, err)
	assert.Equal(t, "link-1", byAlias.ID)
}

func TestLinkRepo_Create_DuplicateCode(t *testing.T) {
	repo := newTestRepo()
	require.NoError(t, repo.Create(t.Context(), makeLink("link-1", "owner-1", "abc12345")))

	err := repo.Create(t.Context(), makeLink("link-2", "owner-2", "abc12345"))
	assert.ErrorIs(t, err, repositories.ErrDuplicateKey)
}

func TestLinkRepo_GetByCode_NotFound(t *testing.T) {
	repo := newTestRepo()
	_, err := repo.GetByCode(t.Context(), "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestLinkRepo_ListByOwner(t *testing.T) {
	repo := newTestRepo()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)

	for i, code := range []string{"code0001", "code0002", "code0003"} {
		link := makeLink("link-"+code, "owner-1", code)
		link.CreatedAt = base.AddDate(0, 0, i)
		link.Title = "Page " + code
		require.NoError(t, repo.Create(t.Context(), link))
	}
	require.NoError(t, repo.Create(t.Context(), makeLink("foreign", "owner-2", "code0004")))

	t.Run("all owner links, newest first", func(t *testing.T) {
		links, total, err := repo.ListByOwner(t.Context(), "owner-1", repositories.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, links, 3)
		assert.Equal(t, "link-code0003", links[0].ID)
		assert.Equal(t, "link-code0001", links[2].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		links, total, err := repo.ListByOwner(t.Context(), "owner-1", repositories.ListFilter{Page: 2, PerPage: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, links, 1)
		assert.Equal(t, "link-code0001", links[0].ID)
	})

	t.Run("search filter", func(t *testing.T) {
		links, _, err := repo.ListByOwner(t.Context(), "owner-1", repositories.ListFilter{Search: "code0002"})
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "link-code0002", links[0].ID)
	})

	t.Run("created range filter", func(t *testing.T) {
		from := base.AddDate(0, 0, 1)
		links, _, err := repo.ListByOwner(t.Context(), "owner-1", repositories.ListFilter{CreatedFrom: &from})
		require.NoError(t, err)
		assert.Len(t, links, 2)
	})
}

func TestLinkRepo_Update_AliasReindex(t *testing.T) {
	repo := newTestRepo()
	oldAlias := "old-alias"
	link := makeLink("link-1", "owner-1", "abc12345")
	link.CustomAlias = &oldAlias
	require.NoError(t, repo.Create(t.Context(), link))

	newAlias := "new-alias"
	updated := *link
	updated.CustomAlias = &newAlias
	require.NoError(t, repo.Update(t.Context(), &updated))

	_, err := repo.GetByCode(t.Context(), "old-alias")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	byNew, err := repo.GetByCode(t.Context(), "new-alias")
	require.NoError(t, err)
	assert.Equal(t, "link-1", byNew.ID)
}

func TestLinkRepo_Delete(t *testing.T) {
	repo := newTestRepo()
	require.NoError(t, repo.Create(t.Context(), makeLink("link-1", "owner-1", "abc12345")))

	t.Run("foreign owner", func(t *testing.T) {
		err := repo.Delete(t.Context(), "link-1", "owner-2")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("owner delete frees the code", func(t *testing.T) {
		require.NoError(t, repo.Delete(t.Context(), "link-1", "owner-1"))

		_, err := repo.GetByID(t.Context(), "link-1")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		// Код освободился для повторного использования.
		assert.NoError(t, repo.Create(t.Context(), makeLink("link-2", "owner-1", "abc12345")))
	})
}

func TestLinkRepo_ApplyClick(t *testing.T) {
	repo := newTestRepo()
	require.NoError(t, repo.Create(t.Context(), makeLink("link-1", "owner-1", "abc12345")))

	err := repo.ApplyClick(t.Context(), "link-1", func(link *models.Link) error {
		link.RecordClick(models.ClickEvent{IPAddress: "10.0.0.1"})
		return nil
	})
	require.NoError(t, err)

	link, err := repo.GetByID(t.Context(), "link-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.Clicks)
	assert.Equal(t, int64(1), link.UniqueClicks)
	require.Len(t, link.AnalyticsLog, 1)
}

func TestLinkRepo_UpdateStatus(t *testing.T) {
	repo := newTestRepo()
	require.NoError(t, repo.Create(t.Context(), makeLink("link-1", "owner-1", "abc12345")))

	require.NoError(t, repo.UpdateStatus(t.Context(), "link-1", models.LinkStatusExpired, true))

	link, err := repo.GetByID(t.Context(), "link-1")
	require.NoError(t, err)
	assert.Equal(t, models.LinkStatusExpired, link.Status)
	assert.True(t, link.IsExpired)
}
