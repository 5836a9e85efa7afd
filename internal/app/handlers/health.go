package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/linemk/e-cart/internal/lib/api/response"
)

// Pinger - то, что умеет проверить соединение с БД (*sql.DB)
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthHandler обрабатывает запрос GET /api/health
func HealthHandler(log *slog.Logger, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.HealthHandler"

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			requestLogger(log, r, op).Error("database is unreachable", slog.Any("error", err))
			response.Error(w, r, http.StatusServiceUnavailable, "Database is unreachable", err)
			return
		}

		response.JSON(w, r, http.StatusOK, HealthResponse{
			Status:    "OK",
			Message:   "E-Cart API is running",
			Timestamp: time.Now().UTC(),
		})
	}
}

// NotFoundHandler отвечает JSON на неизвестные маршруты
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.Message(w, r, http.StatusNotFound, "Route not found")
	}
}
