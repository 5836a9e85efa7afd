package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/linemk/e-cart/internal/domain/models"
	"github.com/linemk/e-cart/internal/storage"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

type AddItemInput struct {
	ProductID int64
	Title     string
	Price     decimal.Decimal
	Image     string
	Quantity  int // 0 - одна штука
}

type CartService interface {
	GetCart(ctx context.Context, ownerID string) (models.Cart, error)
	// AddItem возвращает позицию и true, если она была создана, а не дополнена
	AddItem(ctx context.Context, ownerID string, in AddItemInput) (*models.CartLine, bool, error)
	UpdateQuantity(ctx context.Context, ownerID string, id int64, quantity int) (*models.CartLine, error)
	RemoveItem(ctx context.Context, ownerID string, id int64) error
	Clear(ctx context.Context, ownerID string) error
}

type cartService struct {
	log      *slog.Logger
	cartRepo storage.CartStorage
}

func NewCartService(log *slog.Logger, cartRepo storage.CartStorage) CartService {
	return &cartService{
		log:      log,
		cartRepo: cartRepo,
	}
}

func (s *cartService) GetCart(ctx context.Context, ownerID string) (models.Cart, error) {
	const op = "service.CartService.GetCart"

	lines, err := s.cartRepo.GetItems(ctx, ownerID)
	if err != nil {
		s.log.Error("failed to get cart items", slog.String("op", op), slog.Any("error", err))
		return models.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewCart(lines), nil
}

func (s *cartService) AddItem(ctx context.Context, ownerID string, in AddItemInput) (*models.CartLine, bool, error) {
	const op = "service.CartService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.String("ownerID", ownerID), slog.Int64("productID", in.ProductID))

	quantity := in.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	line := &models.CartLine{
		OwnerID:   ownerID,
		ProductID: in.ProductID,
		Title:     in.Title,
		Price:     in.Price,
		Image:     in.Image,
		Quantity:  quantity,
	}
	created, err := s.cartRepo.AddItem(ctx, line)
	if err != nil {
		logger.Error("failed to add cart item", slog.Any("error", err))
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("cart item saved", slog.Bool("created", created), slog.Int("quantity", line.Quantity))
	return line, created, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, ownerID string, id int64, quantity int) (*models.CartLine, error) {
	const op = "service.CartService.UpdateQuantity"

	if quantity < 1 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	line, err := s.cartRepo.UpdateQuantity(ctx, ownerID, id, quantity)
	if err != nil {
		if !errors.Is(err, storage.ErrCartItemNotFound) {
			s.log.Error("failed to update cart item", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return line, nil
}

func (s *cartService) RemoveItem(ctx context.Context, ownerID string, id int64) error {
	const op = "service.CartService.RemoveItem"

	if err := s.cartRepo.RemoveItem(ctx, ownerID, id); err != nil {
		if !errors.Is(err, storage.ErrCartItemNotFound) {
			s.log.Error("failed to remove cart item", slog.String("op", op), slog.Any("error", err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *cartService) Clear(ctx context.Context, ownerID string) error {
	const op = "service.CartService.Clear"

	if err := s.cartRepo.Clear(ctx, ownerID); err != nil {
		s.log.Error("failed to clear cart", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
