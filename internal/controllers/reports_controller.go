package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReportsController портфельные отчеты владельца.
type ReportsController struct {
	reports ReportBuilder
}

func NewReportsController(reports ReportBuilder) *ReportsController {
	return &ReportsController{reports: reports}
}

// Overview обрабатывает GET /api/reports/overview.
func (c *ReportsController) Overview(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	overview, err := c.reports.BuildOverview(reqCtx, currentOwnerID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, overview)
}
