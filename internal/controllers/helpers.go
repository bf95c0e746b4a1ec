package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/linkstats/internal/controllers/middlewares"
	"github.com/fsdevblog/linkstats/internal/models"
)

const (
	DefaultRequestTimeout = 3 * time.Second

	// DefaultSummaryDays окно сводки по умолчанию.
	DefaultSummaryDays = 30
)

// getShortURL собирает полную короткую ссылку. При отсутствии baseURL
// хост берется из запроса.
func getShortURL(r *http.Request, baseURL *url.URL, code string) string {
	if baseURL == nil {
		var scheme = "http"
		if r.TLS != nil {
			scheme = "https"
		}
		return fmt.Sprintf("%s://%s/%s", scheme, r.Host, code)
	}
	return fmt.Sprintf("%s/%s", baseURL, code)
}

// summaryDays извлекает параметр days, ограничивая его глубиной хранения
// дневных агрегатов.
func summaryDays(ctx *gin.Context) int {
	raw := ctx.Query("days")
	if raw == "" {
		return DefaultSummaryDays
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return DefaultSummaryDays
	}
	if days > models.DailyStatsLimit {
		return models.DailyStatsLimit
	}
	return days
}

// currentOwnerID идентификатор аутентифицированного владельца. Маршруты
// под AuthMiddleware гарантируют наличие клеймов в контексте.
func currentOwnerID(ctx *gin.Context) string {
	claims := middlewares.CurrentUser(ctx)
	if claims == nil {
		return ""
	}
	return claims.ID
}

// parseIntQuery возвращает числовой query параметр и признак его наличия.
func parseIntQuery(ctx *gin.Context, name string) (int, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return val, true
}

// parseTimeQuery парсит RFC3339 либо YYYY-MM-DD query параметр.
func parseTimeQuery(ctx *gin.Context, name string) *time.Time {
	raw := ctx.Query(name)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}
