package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/fsdevblog/linkstats/internal/services"
)

// Ошибки.
var (
	ErrRecordNotFound = errors.New("record not found") // Запись не найдена
	ErrExpired        = errors.New("link expired")     // Срок действия ссылки истек
	ErrInternal       = errors.New("internal error")   // Прочая ошибка
)

// respondError транслирует сервисную ошибку в HTTP ответ. Детали
// валидационных ошибок отдаются клиенту, прочие скрываются за
// обобщенным сообщением.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRecordNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": ErrRecordNotFound.Error()})
	case errors.Is(err, services.ErrExpired):
		ctx.JSON(http.StatusGone, gin.H{"error": ErrExpired.Error()})
	case errors.Is(err, services.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": ErrInternal.Error()})
	}
}
