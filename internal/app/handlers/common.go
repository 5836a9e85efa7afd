package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/linemk/e-cart/internal/lib/api/response"
	"github.com/linemk/e-cart/internal/session"
)

var validate = validator.New()

// requestLogger добавляет к логгеру op и request id
func requestLogger(log *slog.Logger, r *http.Request, op string) *slog.Logger {
	return log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// cartOwner достаёт владельца корзины, положенного session middleware. При ошибке ответ уже записан
func cartOwner(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	ownerID, ok := session.FromContext(r.Context())
	if !ok {
		logger.Error("cart owner not found in context")
		response.Message(w, r, http.StatusInternalServerError, "Cart session is missing")
		return "", false
	}
	return ownerID, true
}
