// Package notify описывает контракт транзакционных уведомлений.
// Отправка fire-and-forget: ядро никогда не ждет и не падает из-за
// недоставленного письма.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/fsdevblog/linkstats/internal/models"
)

// Notifier внешний сервис уведомлений.
type Notifier interface {
	// LinkExpired уведомляет владельца об истечении срока ссылки.
	LinkExpired(ctx context.Context, link *models.Link)
}

// LogNotifier реализация по умолчанию: только пишет в лог. Реальная
// почта живет за пределами ядра.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(zap.String("module", "notify"))}
}

func (n *LogNotifier) LinkExpired(_ context.Context, link *models.Link) {
	n.logger.Info("link expired notification",
		zap.String("linkID", link.ID),
		zap.String("ownerID", link.OwnerID),
		zap.String("shortCode", link.ShortCode),
	)
}
