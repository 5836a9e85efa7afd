package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/e-cart/internal/domain/models"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartStorage описывает методы для работы с корзиной. Все операции ограничены владельцем корзины.
type CartStorage interface {
	GetItems(ctx context.Context, ownerID string) ([]models.CartLine, error)
	// AddItem добавляет позицию или увеличивает количество уже существующей позиции того же товара.
	// Возвращает true, если позиция была создана.
	AddItem(ctx context.Context, line *models.CartLine) (bool, error)
	UpdateQuantity(ctx context.Context, ownerID string, id int64, quantity int) (*models.CartLine, error)
	RemoveItem(ctx context.Context, ownerID string, id int64) error
	Clear(ctx context.Context, ownerID string) error
	// LockItemsTx читает корзину с блокировкой строк до конца транзакции.
	LockItemsTx(ctx context.Context, tx *sql.Tx, ownerID string) ([]models.CartLine, error)
	ClearTx(ctx context.Context, tx *sql.Tx, ownerID string) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт новый репозиторий корзины.
func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

const (
	cartColumns    = "id, owner_id, product_id, title, price, image, quantity, created_at, updated_at"
	clearCartQuery = "DELETE FROM cart_items WHERE owner_id = $1"
)

func scanCartLine(row interface{ Scan(dest ...any) error }, l *models.CartLine) error {
	return row.Scan(&l.ID, &l.OwnerID, &l.ProductID, &l.Title, &l.Price, &l.Image, &l.Quantity, &l.CreatedAt, &l.UpdatedAt)
}

func collectCartLines(rows *sql.Rows) ([]models.CartLine, error) {
	defer rows.Close()

	lines := []models.CartLine{}
	for rows.Next() {
		var l models.CartLine
		if err := scanCartLine(rows, &l); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *cartRepository) GetItems(ctx context.Context, ownerID string) ([]models.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+cartColumns+" FROM cart_items WHERE owner_id = $1 ORDER BY id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	return collectCartLines(rows)
}

func (r *cartRepository) AddItem(ctx context.Context, line *models.CartLine) (bool, error) {
	// при повторном добавлении товара сохраняются исходные название и цена, растёт только количество
	query := `INSERT INTO cart_items (owner_id, product_id, title, price, image, quantity)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (owner_id, product_id)
	          DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
	          RETURNING id, title, price, image, quantity, created_at, updated_at, (xmax = 0) AS created`
	var created bool
	err := r.db.QueryRowContext(ctx, query,
		line.OwnerID, line.ProductID, line.Title, line.Price, line.Image, line.Quantity,
	).Scan(&line.ID, &line.Title, &line.Price, &line.Image, &line.Quantity, &line.CreatedAt, &line.UpdatedAt, &created)
	if err != nil {
		return false, fmt.Errorf("failed to add cart item: %w", err)
	}
	return created, nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, ownerID string, id int64, quantity int) (*models.CartLine, error) {
	query := `UPDATE cart_items SET quantity = $1, updated_at = NOW()
	          WHERE id = $2 AND owner_id = $3
	          RETURNING ` + cartColumns
	line := &models.CartLine{}
	row := r.db.QueryRowContext(ctx, query, quantity, id, ownerID)
	if err := scanCartLine(row, line); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return line, nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, ownerID string, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, ownerID string) error {
	if _, err := r.db.ExecContext(ctx, clearCartQuery, ownerID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (r *cartRepository) LockItemsTx(ctx context.Context, tx *sql.Tx, ownerID string) ([]models.CartLine, error) {
	rows, err := tx.QueryContext(ctx, "SELECT "+cartColumns+" FROM cart_items WHERE owner_id = $1 ORDER BY id FOR UPDATE", ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart items: %w", err)
	}
	return collectCartLines(rows)
}

func (r *cartRepository) ClearTx(ctx context.Context, tx *sql.Tx, ownerID string) error {
	if _, err := tx.ExecContext(ctx, clearCartQuery, ownerID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
