package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"github.com/linemk/e-cart/internal/domain/models"
	"github.com/linemk/e-cart/internal/lib/api/response"
	"github.com/linemk/e-cart/internal/service"
	"github.com/linemk/e-cart/internal/storage"
)

// AddToCartRequest - тело POST /api/cart
type AddToCartRequest struct {
	ProductID int64           `json:"productId" validate:"required"`
	Title     string          `json:"title" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gte=0,lte=1000"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"lte=1000"`
}

type CartItemResponse struct {
	Message string           `json:"message"`
	Item    *models.CartLine `json:"item"`
}

type RemoveCartItemResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

const missingFieldsMessage = "Missing required fields: productId, title, price, image"

// maxPrice соответствует колонке NUMERIC(10, 2)
var maxPrice = decimal.New(1, 8)

// validPrice проверяет, что цена положительна и хранится в БД без округления
func validPrice(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThan(maxPrice) && p.Equal(p.Round(2))
}

// GetCartHandler обрабатывает запрос GET /api/cart
func GetCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := requestLogger(log, r, op)

		ownerID, ok := cartOwner(w, r, logger)
		if !ok {
			return
		}

		cart, err := cartService.GetCart(r.Context(), ownerID)
		if err != nil {
			logger.Error("failed to get cart", slog.Any("error", err))
			response.Error(w, r, http.StatusInternalServerError, "Error fetching cart", err)
			return
		}
		render.JSON(w, r, cart)
	}
}

// AddToCartHandler обрабатывает запрос POST /api/cart. Новая позиция - 201, дополненная - 200
func AddToCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddToCartHandler"
		logger := requestLogger(log, r, op)

		ownerID, ok := cartOwner(w, r, logger)
		if !ok {
			return
		}

		var req AddToCartRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			logger.Warn("invalid request: decoding error", slog.Any("error", err))
			response.Message(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil || req.Price.IsZero() {
			logger.Warn("invalid request: validation error", slog.Any("error", err))
			response.Message(w, r, http.StatusBadRequest, missingFieldsMessage)
			return
		}
		if !validPrice(req.Price) {
			logger.Warn("invalid request: bad price", slog.String("price", req.Price.String()))
			response.Message(w, r, http.StatusBadRequest, "Price must be positive with at most 2 decimal places")
			return
		}

		line, created, err := cartService.AddItem(r.Context(), ownerID, service.AddItemInput{
			ProductID: req.ProductID,
			Title:     req.Title,
			Price:     req.Price,
			Image:     req.Image,
			Quantity:  req.Quantity,
		})
		if err != nil {
			logger.Error("failed to add cart item", slog.Any("error", err))
			response.Error(w, r, http.StatusInternalServerError, "Error adding to cart", err)
			return
		}

		if created {
			response.JSON(w, r, http.StatusCreated, CartItemResponse{Message: "Item added to cart successfully", Item: line})
			return
		}
		response.JSON(w, r, http.StatusOK, CartItemResponse{Message: "Cart updated successfully", Item: line})
	}
}

// UpdateCartItemHandler обрабатывает запрос PUT /api/cart/{id}
func UpdateCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateCartItemHandler"
		logger := requestLogger(log, r, op)

		ownerID, ok := cartOwner(w, r, logger)
		if !ok {
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.Message(w, r, http.StatusBadRequest, "Invalid cart item id")
			return
		}

		var req UpdateCartItemRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			logger.Warn("invalid request: decoding error", slog.Any("error", err))
			response.Message(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Warn("invalid request: validation error", slog.Any("error", err))
			response.Message(w, r, http.StatusBadRequest, "Quantity must be at most 1000")
			return
		}

		line, err := cartService.UpdateQuantity(r.Context(), ownerID, id, req.Quantity)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidQuantity):
				response.Message(w, r, http.StatusBadRequest, "Quantity must be at least 1")
			case errors.Is(err, storage.ErrCartItemNotFound):
				response.Message(w, r, http.StatusNotFound, "Cart item not found")
			default:
				logger.Error("failed to update cart item", slog.Any("error", err))
				response.Error(w, r, http.StatusInternalServerError, "Error updating cart item", err)
			}
			return
		}
		render.JSON(w, r, CartItemResponse{Message: "Cart item updated successfully", Item: line})
	}
}

// RemoveCartItemHandler обрабатывает запрос DELETE /api/cart/{id}
func RemoveCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveCartItemHandler"
		logger := requestLogger(log, r, op)

		ownerID, ok := cartOwner(w, r, logger)
		if !ok {
			return
		}

		rawID := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			response.Message(w, r, http.StatusBadRequest, "Invalid cart item id")
			return
		}

		if err := cartService.RemoveItem(r.Context(), ownerID, id); err != nil {
			if errors.Is(err, storage.ErrCartItemNotFound) {
				response.Message(w, r, http.StatusNotFound, "Cart item not found")
				return
			}
			logger.Error("failed to remove cart item", slog.Any("error", err))
			response.Error(w, r, http.StatusInternalServerError, "Error removing cart item", err)
			return
		}
		render.JSON(w, r, RemoveCartItemResponse{Message: "Item removed from cart successfully", ID: rawID})
	}
}

// ClearCartHandler обрабатывает запрос DELETE /api/cart
func ClearCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ClearCartHandler"
		logger := requestLogger(log, r, op)

		ownerID, ok := cartOwner(w, r, logger)
		if !ok {
			return
		}

		if err := cartService.Clear(r.Context(), ownerID); err != nil {
			logger.Error("failed to clear cart", slog.Any("error", err))
			response.Error(w, r, http.StatusInternalServerError, "Error clearing cart", err)
			return
		}
		response.Message(w, r, http.StatusOK, "Cart cleared successfully")
	}
}
