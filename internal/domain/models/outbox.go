package models

import (
	"encoding/json"
	"time"
)

// EventOrderCompleted - тип события об оформленном заказе
const EventOrderCompleted = "order.completed"

// OutboxEvent - событие, записанное в той же транзакции, что и заказ
type OutboxEvent struct {
	ID          int64           `json:"id"`
	AggregateID string          `json:"aggregate_id"` // номер заказа
	EventType   string          `json:"event_type"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}
