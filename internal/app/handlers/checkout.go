package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/linemk/e-cart/internal/domain/models"
	"github.com/linemk/e-cart/internal/lib/api/response"
	"github.com/linemk/e-cart/internal/service"
	"github.com/linemk/e-cart/internal/storage"
)

// CheckoutRequest - тело POST /api/checkout. cartItems только указывают, какие позиции корзины оформить
type CheckoutRequest struct {
	CustomerName  string                 `json:"customerName"`
	CustomerEmail string                 `json:"customerEmail"`
	CartItems     []service.CheckoutItem `json:"cartItems"`
}

type CheckoutResponse struct {
	Message string          `json:"message"`
	Receipt *models.Receipt `json:"receipt"`
}

// CheckoutHandler обрабатывает запрос POST /api/checkout
func CheckoutHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := requestLogger(log, r, op)

		ownerID, ok := cartOwner(w, r, logger)
		if !ok {
			return
		}

		var req CheckoutRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			logger.Warn("invalid request: decoding error", slog.Any("error", err))
			response.Message(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		receipt, err := checkoutService.Checkout(r.Context(), ownerID, service.CheckoutRequest{
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			Items:         req.CartItems,
		})
		if err != nil {
			var verr *service.ValidationError
			switch {
			case errors.As(err, &verr):
				response.Message(w, r, http.StatusBadRequest, verr.Reason)
			case errors.Is(err, service.ErrOrderConflict):
				response.Error(w, r, http.StatusConflict, "Order number conflict, please try again", err)
			default:
				logger.Error("checkout failed", slog.Any("error", err))
				response.Error(w, r, http.StatusInternalServerError, "Error processing checkout", err)
			}
			return
		}

		response.JSON(w, r, http.StatusCreated, CheckoutResponse{
			Message: "Order placed successfully",
			Receipt: receipt,
		})
	}
}

// ListOrdersHandler обрабатывает запрос GET /api/checkout/orders
func ListOrdersHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := requestLogger(log, r, op)

		orders, err := checkoutService.ListOrders(r.Context())
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			response.Error(w, r, http.StatusInternalServerError, "Error fetching orders", err)
			return
		}
		render.JSON(w, r, orders)
	}
}

// GetOrderHandler обрабатывает запрос GET /api/checkout/orders/{orderNumber}
func GetOrderHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := requestLogger(log, r, op)

		order, err := checkoutService.GetOrder(r.Context(), chi.URLParam(r, "orderNumber"))
		if err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				response.Message(w, r, http.StatusNotFound, "Order not found")
				return
			}
			logger.Error("failed to get order", slog.Any("error", err))
			response.Error(w, r, http.StatusInternalServerError, "Error fetching order", err)
			return
		}
		render.JSON(w, r, order)
	}
}
