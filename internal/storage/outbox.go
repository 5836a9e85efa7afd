package storage

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/linemk/e-cart/internal/domain/models"
)

// OutboxStorage описывает методы для работы с таблицей outbox_events.
type OutboxStorage interface {
	// AddEventTx записывает событие в той же транзакции, что и заказ.
	AddEventTx(ctx context.Context, tx *sql.Tx, event *models.OutboxEvent) error
	// ClaimEvents захватывает до limit неопубликованных событий на время lease и возвращает их в порядке записи.
	// Захваченные события не выдаются другим экземплярам, пока аренда не истечёт.
	ClaimEvents(ctx context.Context, limit int, lease time.Duration) ([]*models.OutboxEvent, error)
	// ReleaseEvent снимает аренду, чтобы событие было выбрано на следующем проходе.
	ReleaseEvent(ctx context.Context, id int64) error
	MarkEventProcessed(ctx context.Context, id int64) error
}

type outboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) OutboxStorage {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) AddEventTx(ctx context.Context, tx *sql.Tx, event *models.OutboxEvent) error {
	query := `INSERT INTO outbox_events (aggregate_id, event_type, payload)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`
	err := tx.QueryRowContext(ctx, query, event.AggregateID, event.EventType, string(event.Payload)).
		Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepository) ClaimEvents(ctx context.Context, limit int, lease time.Duration) ([]*models.OutboxEvent, error) {
	query := `
		UPDATE outbox_events
		SET locked_until = NOW() + make_interval(secs => $2)
		WHERE id IN (
			SELECT id
			FROM outbox_events
			WHERE processed_at IS NULL
			  AND (locked_until IS NULL OR locked_until < NOW())
			ORDER BY id
			LIMIT $1
			FOR UPDATE SKIP LOCKED)
		RETURNING id, aggregate_id, event_type, payload, created_at`
	rows, err := r.db.QueryContext(ctx, query, limit, lease.Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to claim outbox events: %w", err)
	}
	defer rows.Close()

	var events []*models.OutboxEvent
	for rows.Next() {
		e := &models.OutboxEvent{}
		var payload []byte
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		e.Payload = payload
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// RETURNING не сохраняет порядок подзапроса
	slices.SortFunc(events, func(a, b *models.OutboxEvent) int { return cmp.Compare(a.ID, b.ID) })
	return events, nil
}

func (r *outboxRepository) ReleaseEvent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE outbox_events SET locked_until = NULL WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to release outbox event %d: %w", id, err)
	}
	return nil
}

func (r *outboxRepository) MarkEventProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE outbox_events SET processed_at = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event %d: %w", id, err)
	}
	return nil
}
