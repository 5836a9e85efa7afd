package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Header - заголовок, в котором клиент передаёт и получает токен корзины
const Header = "X-Cart-Token"

type contextKey string

const OwnerIDKey contextKey = "cartOwnerID"

// NewMiddleware кладёт владельца корзины в контекст запроса.
// Если токена нет или он недействителен, выдаётся новая пустая корзина.
func NewMiddleware(log *slog.Logger, secret string, ttl time.Duration) func(http.Handler) http.Handler {
	if secret == "" {
		panic("cart session secret is not set")
	}
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := r.Header.Get(Header)

			ownerID, err := ParseToken(key, tokenStr)
			if err != nil {
				if tokenStr != "" {
					log.Debug("cart token rejected, issuing a new one", slog.Any("error", err))
				}
				ownerID = NewOwnerID()
				tokenStr, err = NewToken(key, ownerID, ttl)
				if err != nil {
					log.Error("failed to sign cart token", slog.Any("error", err))
					http.Error(w, "failed to create cart session", http.StatusInternalServerError)
					return
				}
			}

			w.Header().Set(Header, tokenStr)
			next.ServeHTTP(w, r.WithContext(WithOwnerID(r.Context(), ownerID)))
		})
	}
}

func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, OwnerIDKey, ownerID)
}

// FromContext извлекает владельца корзины из контекста.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(OwnerIDKey).(string)
	return id, ok && id != ""
}
