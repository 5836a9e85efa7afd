package response_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linemk/e-cart/internal/lib/api/response"
)

func TestError_DetailsToggle(t *testing.T) {
	defer func(prev bool) { response.ExposeDetails = prev }(response.ExposeDetails)

	response.ExposeDetails = true
	rr := httptest.NewRecorder()
	response.Error(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusInternalServerError, "Error fetching cart", errors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"Error fetching cart","error":"db down"}`, rr.Body.String())

	response.ExposeDetails = false
	rr = httptest.NewRecorder()
	response.Error(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusInternalServerError, "Error fetching cart", errors.New("db down"))
	assert.JSONEq(t, `{"message":"Error fetching cart"}`, rr.Body.String())
}

func TestMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	response.Message(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNotFound, "Route not found")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Route not found"}`, rr.Body.String())
}
