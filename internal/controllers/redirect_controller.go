package controllers

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fsdevblog/linkstats/internal/cache"
	"github.com/fsdevblog/linkstats/internal/models"
	"github.com/fsdevblog/linkstats/internal/services"
)

// clickRecordTimeout бюджет фоновой записи события перехода. Запись
// живет дольше самого запроса (контекст запроса от нее отвязан).
const clickRecordTimeout = 10 * time.Second

// InterstitialRenderer пользовательский рендер промежуточной страницы
// для ссылок с redirectType interstitial.
type InterstitialRenderer interface {
	Render(ctx *gin.Context, res *cache.Resolution)
}

var delayedPageTmpl = template.Must(template.New("delayed").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.Delay}};url={{.URL}}">
<title>Redirecting...</title>
</head>
<body>
<p>You are being redirected. <a href="{{.URL}}">Click here</a> if nothing happens.</p>
</body>
</html>
`))

// RedirectController шлюз редиректа. Резолвит код, применяет политику
// доступности, пишет событие перехода в фоне и отвечает согласно
// настройкам ссылки.
type RedirectController struct {
	links    LinkResolver
	clicks   ClickRecorder
	renderer InterstitialRenderer // nil означает фолбек на delayed страницу
	logger   *zap.Logger
}

func NewRedirectController(
	links LinkResolver,
	clicks ClickRecorder,
	renderer InterstitialRenderer,
	logger *zap.Logger,
) *RedirectController {
	return &RedirectController{
		links:    links,
		clicks:   clicks,
		renderer: renderer,
		logger:   logger.With(zap.String("module", "controllers/redirect")),
	}
}

// Redirect обрабатывает GET /:code.
func (c *RedirectController) Redirect(ctx *gin.Context) {
	code := ctx.Param("code")

	reqCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	res, err := c.links.Resolve(reqCtx, code)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			ctx.String(http.StatusNotFound, ErrRecordNotFound.Error())
			return
		}
		_ = ctx.Error(err)
		ctx.String(http.StatusInternalServerError, ErrInternal.Error())
		return
	}

	now := time.Now()
	if !res.Redirectable(now) {
		if res.Status == models.LinkStatusBlocked {
			ctx.String(http.StatusNotFound, ErrRecordNotFound.Error())
			return
		}
		// Истечение могло обнаружиться поверх кешированного резолва,
		// переход статуса персистится здесь лениво.
		if !res.IsExpired {
			c.links.MarkExpired(reqCtx, res.LinkID)
		}
		ctx.String(http.StatusGone, ErrExpired.Error())
		return
	}

	c.recordClick(ctx, res, services.RawClick{
		Timestamp:      now,
		IPAddress:      ctx.ClientIP(),
		UserAgent:      ctx.Request.UserAgent(),
		Referrer:       ctx.Request.Referer(),
		AcceptLanguage: ctx.GetHeader("Accept-Language"),
	})

	switch res.Settings.RedirectType {
	case models.RedirectTypeDelayed:
		c.renderDelayed(ctx, res)
	case models.RedirectTypeInterstitial:
		if c.renderer != nil {
			c.renderer.Render(ctx, res)
			return
		}
		c.renderDelayed(ctx, res)
	default:
		ctx.Redirect(http.StatusFound, res.OriginalURL)
	}
}

// recordClick пишет событие перехода в фоне. Ошибка записи логируется
// и глотается: редирект пользователя важнее потерянного инкремента.
// Фоновый контекст наследуется от ctx.Request.Context(), а не от самого
// gin.Context: gin переиспользует контексты через pool, и после ответа
// читать значения из них нельзя.
func (c *RedirectController) recordClick(ctx *gin.Context, res *cache.Resolution, raw services.RawClick) {
	bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx.Request.Context()), clickRecordTimeout)
	go func() {
		defer cancel()
		if err := c.clicks.Record(bgCtx, res.LinkID, res.Settings, raw); err != nil {
			c.logger.Warn("record click failed",
				zap.String("linkID", res.LinkID),
				zap.Error(err),
			)
		}
	}()
}

func (c *RedirectController) renderDelayed(ctx *gin.Context, res *cache.Resolution) {
	delay := res.Settings.RedirectDelay
	if delay < 0 {
		delay = 0
	}
	ctx.Status(http.StatusOK)
	ctx.Header("Content-Type", "text/html; charset=utf-8")
	tmplErr := delayedPageTmpl.Execute(ctx.Writer, map[string]any{
		"Delay": delay,
		"URL":   res.OriginalURL,
	})
	if tmplErr != nil {
		_ = ctx.Error(errors.Wrap(tmplErr, "delayed page render"))
	}
}
