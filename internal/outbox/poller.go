// Package outbox публикует события из таблицы outbox_events во внешний брокер.
package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/linemk/e-cart/internal/domain/models"
	"github.com/linemk/e-cart/internal/storage"
)

// Publisher отправляет одно событие во внешний брокер
type Publisher interface {
	Publish(ctx context.Context, event *models.OutboxEvent) error
}

const defaultLease = 30 * time.Second

// Poller публикует события пачками. Несколько экземпляров могут работать с одной таблицей:
// каждое событие захватывается на время lease только одним из них.
type Poller struct {
	log       *slog.Logger
	repo      storage.OutboxStorage
	publisher Publisher
	interval  time.Duration
	batchSize int
	lease     time.Duration
}

func NewPoller(log *slog.Logger, repo storage.OutboxStorage, publisher Publisher, interval time.Duration, batchSize int, lease time.Duration) *Poller {
	if batchSize <= 0 {
		batchSize = 100
	}
	if lease <= 0 {
		lease = defaultLease
	}
	return &Poller{
		log:       log,
		repo:      repo,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		lease:     lease,
	}
}

// Run блокируется до отмены ctx
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info("outbox poller started", slog.Duration("interval", p.interval))
	for {
		select {
		case <-ticker.C:
			p.ProcessBatch(ctx)
		case <-ctx.Done():
			p.log.Info("outbox poller stopped")
			return
		}
	}
}

// ProcessBatch публикует одну пачку событий. Неопубликованное событие остаётся до следующего тика.
// Возвращает число опубликованных событий.
func (p *Poller) ProcessBatch(ctx context.Context) int {
	const op = "outbox.Poller.ProcessBatch"
	logger := p.log.With(slog.String("op", op))

	events, err := p.repo.ClaimEvents(ctx, p.batchSize, p.lease)
	if err != nil {
		logger.Error("failed to claim events", slog.Any("error", err))
		return 0
	}

	published := 0
	for _, event := range events {
		if err := p.publisher.Publish(ctx, event); err != nil {
			logger.Error("failed to publish event", slog.Int64("id", event.ID), slog.Any("error", err))
			if err := p.repo.ReleaseEvent(ctx, event.ID); err != nil {
				// аренда истечёт сама
				logger.Warn("failed to release event", slog.Int64("id", event.ID), slog.Any("error", err))
			}
			continue
		}
		if err := p.repo.MarkEventProcessed(ctx, event.ID); err != nil {
			// событие будет опубликовано повторно, потребители должны быть идемпотентны по ключу
			logger.Error("failed to mark event as processed", slog.Int64("id", event.ID), slog.Any("error", err))
			continue
		}
		published++
	}

	if published > 0 {
		logger.Debug("events published", slog.Int("count", published))
	}
	return published
}
