package controllers

import (
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fsdevblog/linkstats/internal/controllers/middlewares"
	"github.com/fsdevblog/linkstats/internal/services"
)

// RouterParams зависимости маршрутизатора.
type RouterParams struct {
	Services  *services.Services
	BaseURL   *url.URL
	JWTSecret []byte
	// Renderer промежуточной страницы, nil допустим.
	Renderer InterstitialRenderer
	Logger   *zap.Logger
}

func SetupRouter(params RouterParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware(params.Logger))
	r.Use(middlewares.GzipMiddleware())

	redirectController := NewRedirectController(
		params.Services.LinkService,
		params.Services.AnalyticsService,
		params.Renderer,
		params.Logger,
	)
	linksController := NewLinksController(params.Services.LinkService, params.BaseURL)
	reportsController := NewReportsController(params.Services.ReportService)
	pingController := NewPingController(params.Services.PingService)

	r.GET("/ping", pingController.Ping)
	r.GET("/:code", redirectController.Redirect)

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware(params.JWTSecret))

	api.POST("/links", linksController.Create)
	api.GET("/links", linksController.List)
	api.GET("/links/:id", linksController.Get)
	api.GET("/links/:id/stats", linksController.Stats)
	api.PATCH("/links/:id", linksController.Update)
	api.DELETE("/links/:id", linksController.Delete)
	api.GET("/links/:id/qr", linksController.QRCode)

	api.GET("/reports/overview", reportsController.Overview)

	return r
}
