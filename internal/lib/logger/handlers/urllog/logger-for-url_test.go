package urllog_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linemk/e-cart/internal/lib/logger/handlers/urllog"
)

func TestCustomLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := urllog.CustomLoggerMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/cart", nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	out := buf.String()
	assert.Contains(t, out, `"msg":"request completed"`)
	assert.Contains(t, out, `"method":"POST"`)
	assert.Contains(t, out, `"url":"/api/cart"`)
	assert.Contains(t, out, `"status":201`)
	assert.Contains(t, out, `"bytes":2`)
}
