package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/linemk/e-cart/internal/domain/models"
	"github.com/linemk/e-cart/internal/storage"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrOrderConflict = errors.New("order number already exists")
)

// ValidationError - ошибка входных данных с сообщением для клиента
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// в RE2 \s покрывает только ASCII, поэтому юникодные пробелы исключаются отдельно
var emailRe = regexp.MustCompile(`^[^\p{Z}\s\x{FEFF}@]+@[^\p{Z}\s\x{FEFF}@]+\.[^\p{Z}\s\x{FEFF}@]+$`)

// CheckoutItem - ссылка клиента на позицию корзины. Цена и количество берутся из корзины, а не из запроса
type CheckoutItem struct {
	ProductID int64           `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

type CheckoutRequest struct {
	CustomerName  string
	CustomerEmail string
	Items         []CheckoutItem
}

// OrderNumberFunc генерирует номер заказа
type OrderNumberFunc func() string

// DefaultOrderNumber возвращает номер вида ORD-<unix millis>-<0..999>
func DefaultOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%d", time.Now().UnixMilli(), rand.IntN(1000))
}

type CheckoutService interface {
	Checkout(ctx context.Context, ownerID string, req CheckoutRequest) (*models.Receipt, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, orderNumber string) (*models.Order, error)
}

type checkoutService struct {
	log            *slog.Logger
	db             *sql.DB
	cartRepo       storage.CartStorage
	orderRepo      storage.OrderStorage
	outboxRepo     storage.OutboxStorage // nil - outbox выключен
	newOrderNumber OrderNumberFunc
}

func NewCheckoutService(
	log *slog.Logger,
	db *sql.DB,
	cartRepo storage.CartStorage,
	orderRepo storage.OrderStorage,
	outboxRepo storage.OutboxStorage,
	newOrderNumber OrderNumberFunc,
) CheckoutService {
	if newOrderNumber == nil {
		newOrderNumber = DefaultOrderNumber
	}
	return &checkoutService{
		log:            log,
		db:             db,
		cartRepo:       cartRepo,
		orderRepo:      orderRepo,
		outboxRepo:     outboxRepo,
		newOrderNumber: newOrderNumber,
	}
}

func validateCheckout(req *CheckoutRequest) error {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)

	if req.CustomerName == "" {
		return &ValidationError{Reason: "customer name is required"}
	}
	if req.CustomerEmail == "" {
		return &ValidationError{Reason: "customer email is required"}
	}
	if !emailRe.MatchString(req.CustomerEmail) {
		return &ValidationError{Reason: "invalid email address"}
	}
	if len(req.Items) == 0 {
		return &ValidationError{Reason: "cart is empty"}
	}
	return nil
}

// resolveItems сопоставляет ссылки клиента с заблокированными позициями корзины.
// Повторные ссылки на один товар схлопываются, порядок берётся из запроса.
// Ссылки должны покрывать всю корзину: после оформления она очищается целиком.
func resolveItems(refs []CheckoutItem, lines []models.CartLine) ([]models.OrderItem, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Reason: "cart is empty"}
	}

	byProduct := make(map[int64]models.CartLine, len(lines))
	for _, l := range lines {
		byProduct[l.ProductID] = l
	}

	items := make([]models.OrderItem, 0, len(refs))
	seen := make(map[int64]struct{}, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.ProductID]; ok {
			continue
		}
		line, ok := byProduct[ref.ProductID]
		if !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("product %d is not in the cart", ref.ProductID)}
		}
		seen[ref.ProductID] = struct{}{}
		items = append(items, models.OrderItemFromLine(line))
	}
	if len(seen) != len(byProduct) {
		return nil, &ValidationError{Reason: "cart has changed, please review it"}
	}
	return items, nil
}

func (s *checkoutService) rollback(logger *slog.Logger, tx *sql.Tx) {
	if rbErr := tx.Rollback(); rbErr != nil {
		logger.Error("transaction rollback failed", slog.Any("error", rbErr))
	}
}

// Checkout оформляет заказ по корзине владельца.
// Блокировка корзины, запись заказа, событие outbox и очистка корзины выполняются в одной транзакции:
// либо заказ создан и корзина пуста, либо ничего не изменилось.
func (s *checkoutService) Checkout(ctx context.Context, ownerID string, req CheckoutRequest) (*models.Receipt, error) {
	const op = "service.CheckoutService.Checkout"
	logger := s.log.With(slog.String("op", op), slog.String("ownerID", ownerID))

	if err := validateCheckout(&req); err != nil {
		logger.Warn("invalid checkout request", slog.String("reason", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("starting checkout transaction", slog.Int("items", len(req.Items)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	lines, err := s.cartRepo.LockItemsTx(ctx, tx, ownerID)
	if err != nil {
		s.rollback(logger, tx)
		logger.Error("failed to lock cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to lock cart: %w", op, err)
	}

	items, err := resolveItems(req.Items, lines)
	if err != nil {
		s.rollback(logger, tx)
		logger.Warn("checkout items do not match cart", slog.String("reason", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order := &models.Order{
		OrderNumber:   s.newOrderNumber(),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Items:         items,
		Total:         models.OrderTotal(items),
		Status:        models.OrderStatusCompleted,
	}

	if err := s.orderRepo.CreateOrderTx(ctx, tx, order); err != nil {
		s.rollback(logger, tx)
		if errors.Is(err, storage.ErrOrderExists) {
			logger.Error("order number collision", slog.String("orderNumber", order.OrderNumber))
			return nil, fmt.Errorf("%s: %s: %w", op, order.OrderNumber, ErrOrderConflict)
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	receipt := order.Receipt()

	if s.outboxRepo != nil {
		payload, err := json.Marshal(receipt)
		if err != nil {
			s.rollback(logger, tx)
			return nil, fmt.Errorf("%s: failed to marshal event: %w", op, err)
		}
		event := &models.OutboxEvent{
			AggregateID: order.OrderNumber,
			EventType:   models.EventOrderCompleted,
			Payload:     payload,
		}
		if err := s.outboxRepo.AddEventTx(ctx, tx, event); err != nil {
			s.rollback(logger, tx)
			logger.Error("failed to write outbox event", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to write outbox event: %w", op, err)
		}
	}

	if err := s.cartRepo.ClearTx(ctx, tx, ownerID); err != nil {
		s.rollback(logger, tx)
		logger.Error("failed to clear cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to clear cart: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order placed",
		slog.String("orderNumber", order.OrderNumber),
		slog.String("total", order.Total.StringFixed(2)),
	)
	return receipt, nil
}

func (s *checkoutService) ListOrders(ctx context.Context) ([]models.Order, error) {
	const op = "service.CheckoutService.ListOrders"
	logger := s.log.With(slog.String("op", op))

	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		logger.Error("failed to list orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}
	return orders, nil
}

func (s *checkoutService) GetOrder(ctx context.Context, orderNumber string) (*models.Order, error) {
	const op = "service.CheckoutService.GetOrder"
	logger := s.log.With(slog.String("op", op), slog.String("orderNumber", orderNumber))

	order, err := s.orderRepo.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		if !errors.Is(err, storage.ErrOrderNotFound) {
			logger.Error("failed to get order", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}
