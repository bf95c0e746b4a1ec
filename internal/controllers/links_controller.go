package controllers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"

	"github.com/fsdevblog/linkstats/internal/models"
	"github.com/fsdevblog/linkstats/internal/repositories"
	"github.com/fsdevblog/linkstats/internal/services"
)

// qrImageSize размер стороны PNG с QR кодом в пикселях.
const qrImageSize = 256

// LinksController CRUD и статистика ссылок владельца.
type LinksController struct {
	links   LinkManager
	baseURL *url.URL
}

func NewLinksController(links LinkManager, baseURL *url.URL) *LinksController {
	return &LinksController{
		links:   links,
		baseURL: baseURL,
	}
}

type createLinkRequest struct {
	URL         string               `json:"url" binding:"required"`
	CustomAlias string               `json:"customAlias"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Tags        []string             `json:"tags"`
	ExpiresAt   *time.Time           `json:"expiresAt"`
	Settings    *models.LinkSettings `json:"settings"`
}

type updateLinkRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Tags        []string             `json:"tags"`
	Settings    *models.LinkSettings `json:"settings"`
	Status      *models.LinkStatus   `json:"status"`
}

// linkResponse ссылка в ответе API. Реестр посетителей и сырой лог
// наружу не отдаются, сводка строится отдельным полем.
type linkResponse struct {
	ID           string              `json:"id"`
	ShortCode    string              `json:"shortCode"`
	CustomAlias  string              `json:"customAlias,omitempty"`
	ShortURL     string              `json:"shortUrl"`
	OriginalURL  string              `json:"originalUrl"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Tags         []string            `json:"tags,omitempty"`
	Status       models.LinkStatus   `json:"status"`
	IsExpired    bool                `json:"isExpired"`
	ExpiresAt    *time.Time          `json:"expiresAt,omitempty"`
	Clicks       int64               `json:"clicks"`
	UniqueClicks int64               `json:"uniqueClicks"`
	Settings     models.LinkSettings `json:"settings"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`

	Summary *models.LinkSummary `json:"summary,omitempty"`
}

type listLinksResponse struct {
	Links   []linkResponse `json:"links"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"perPage"`
}

// Create обрабатывает POST /api/links.
func (c *LinksController) Create(ctx *gin.Context) {
	var req createLinkRequest
	if bindErr := ctx.ShouldBindJSON(&req); bindErr != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": bindErr.Error()})
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	link, err := c.links.Create(reqCtx, currentOwnerID(ctx), services.CreateLinkParams{
		URL:         req.URL,
		CustomAlias: req.CustomAlias,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		ExpiresAt:   req.ExpiresAt,
		Settings:    req.Settings,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, c.linkResponseOf(ctx, link, nil))
}

// List обрабатывает GET /api/links с пагинацией и фильтрами.
func (c *LinksController) List(ctx *gin.Context) {
	filter := repositories.ListFilter{
		Status: models.LinkStatus(ctx.Query("status")),
		Search: ctx.Query("search"),
	}
	filter.Page, _ = parseIntQuery(ctx, "page")
	filter.PerPage, _ = parseIntQuery(ctx, "perPage")
	filter.CreatedFrom = parseTimeQuery(ctx, "createdFrom")
	filter.CreatedTo = parseTimeQuery(ctx, "createdTo")

	reqCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	links, total, err := c.links.List(reqCtx, currentOwnerID(ctx), filter)
	if err != nil {
		respondError(ctx, err)
		return
	}

	resp := listLinksResponse{
		Links:   make([]linkResponse, 0, len(links)),
		Total:   total,
		Page:    max(filter.Page, 1),
		PerPage: filter.Limit(),
	}
	for i := range links {
		resp.Links = append(resp.Links, c.linkResponseOf(ctx, &links[i], nil))
	}
	ctx.JSON(http.StatusOK, resp)
}

// Get обрабатывает GET /api/links/:id. Вместе с ссылкой отдается сводка
// за окно по умолчанию.
func (c *LinksController) Get(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	link, err := c.links.GetForOwner(reqCtx, ctx.Param("id"), currentOwnerID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, c.linkResponseOf(ctx, link, link.Summarize(DefaultSummaryDays)))
}

// Stats обрабатывает GET /api/links/:id/stats?days=N.
func (c *LinksController) Stats(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	link, err := c.links.GetForOwner(reqCtx, ctx.Param("id"), currentOwnerID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, link.Summarize(summaryDays(ctx)))
}

// Update обрабатывает PATCH /api/links/:id. Непереданные поля не трогаются.
func (c *LinksController) Update(ctx *gin.Context) {
	var req updateLinkRequest
	if bindErr := ctx.ShouldBindJSON(&req); bindErr != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": bindErr.Error()})
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	link, err := c.links.Update(reqCtx, ctx.Param("id"), currentOwnerID(ctx), services.UpdateLinkParams{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Settings:    req.Settings,
		Status:      req.Status,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, c.linkResponseOf(ctx, link, nil))
}

// Delete обрабатывает DELETE /api/links/:id.
func (c *LinksController) Delete(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	if err := c.links.Delete(reqCtx, ctx.Param("id"), currentOwnerID(ctx)); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// QRCode обрабатывает GET /api/links/:id/qr и отдает PNG с QR кодом
// короткой ссылки.
func (c *LinksController) QRCode(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	link, err := c.links.GetForOwner(reqCtx, ctx.Param("id"), currentOwnerID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	png, encErr := qrcode.Encode(getShortURL(ctx.Request, c.baseURL, link.Code()), qrcode.Medium, qrImageSize)
	if encErr != nil {
		_ = ctx.Error(errors.Wrap(encErr, "qr encode"))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": ErrInternal.Error()})
		return
	}
	ctx.Data(http.StatusOK, "image/png", png)
}

func (c *LinksController) linkResponseOf(ctx *gin.Context, link *models.Link, summary *models.LinkSummary) linkResponse {
	resp := linkResponse{
		ID:           link.ID,
		ShortCode:    link.ShortCode,
		ShortURL:     getShortURL(ctx.Request, c.baseURL, link.Code()),
		OriginalURL:  link.OriginalURL,
		Title:        link.Title,
		Description:  link.Description,
		Tags:         link.Tags,
		Status:       link.Status,
		IsExpired:    link.IsExpired,
		ExpiresAt:    link.ExpiresAt,
		Clicks:       link.Clicks,
		UniqueClicks: link.UniqueClicks,
		Settings:     link.Settings,
		CreatedAt:    link.CreatedAt,
		UpdatedAt:    link.UpdatedAt,
		Summary:      summary,
	}
	if link.CustomAlias != nil {
		resp.CustomAlias = *link.CustomAlias
	}
	return resp
}
