package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/linemk/e-cart/internal/domain/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderExists   = errors.New("order number already exists")
)

// код ошибки postgres unique_violation
const uniqueViolation = "23505"

// OrderStorage описывает методы для работы с заказами. Обновления и удаления заказов нет намеренно.
type OrderStorage interface {
	// CreateOrderTx вставляет заказ и его позиции, заполняет ID и время создания.
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error
	// ListOrders возвращает все заказы, новые первыми.
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
}

// orderRepository - конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = "id, order_number, customer_name, customer_email, total, status, created_at, updated_at"

func scanOrder(row interface{ Scan(dest ...any) error }, o *models.Order) error {
	return row.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// CreateOrderTx вставляет новый заказ в таблицы orders и order_items.
func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	query := `INSERT INTO orders (order_number, customer_name, customer_email, total, status)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at, updated_at`
	err := tx.QueryRowContext(ctx, query,
		order.OrderNumber, order.CustomerName, order.CustomerEmail, order.Total, order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrOrderExists
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (order_id, position, product_id, title, price, quantity, image)
	              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i, item := range order.Items {
		_, err := tx.ExecContext(ctx, itemQuery,
			order.ID, i, item.ProductID, item.Title, item.Price, item.Quantity, item.Image,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []models.OrderItem{}
	}

	// позиции всех заказов одним запросом
	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, title, price, quantity, image
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID int64
		var item models.OrderItem
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Title, &item.Price, &item.Quantity, &item.Image); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	order := &models.Order{}
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE order_number = $1", orderNumber)
	if err := scanOrder(row, order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, title, price, quantity, image
		FROM order_items
		WHERE order_id = $1
		ORDER BY position`, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	order.Items = []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Title, &item.Price, &item.Quantity, &item.Image); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return order, nil
}
