package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/linemk/e-cart/internal/lib/api/response"
	"github.com/linemk/e-cart/internal/service"
	"github.com/linemk/e-cart/internal/storage"
)

// ListProductsHandler обрабатывает запрос GET /api/products
func ListProductsHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := requestLogger(log, r, op)

		products, err := productService.ListProducts(r.Context())
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			response.Error(w, r, http.StatusInternalServerError, "Error fetching products", err)
			return
		}
		render.JSON(w, r, products)
	}
}

// GetProductHandler обрабатывает запрос GET /api/products/{id}
func GetProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := requestLogger(log, r, op)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.Message(w, r, http.StatusBadRequest, "Invalid product id")
			return
		}

		product, err := productService.GetProduct(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				response.Message(w, r, http.StatusNotFound, "Product not found")
				return
			}
			logger.Error("failed to get product", slog.Any("error", err))
			response.Error(w, r, http.StatusInternalServerError, "Error fetching product", err)
			return
		}
		render.JSON(w, r, product)
	}
}
