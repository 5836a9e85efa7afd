package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/e-cart/internal/domain/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStorage описывает локальную копию внешнего каталога.
type ProductStorage interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	// InsertProducts сохраняет товары как есть; уже существующие id пропускаются.
	InsertProducts(ctx context.Context, products []models.Product) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт новый репозиторий товаров.
func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = "id, title, price, description, category, image, rating_rate, rating_count"

func scanProduct(row interface{ Scan(dest ...any) error }, p *models.Product) error {
	return row.Scan(&p.ID, &p.Title, &p.Price, &p.Description, &p.Category, &p.Image, &p.Rating.Rate, &p.Rating.Count)
}

func (r *productRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p := &models.Product{}
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	if err := scanProduct(row, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) InsertProducts(ctx context.Context, products []models.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `INSERT INTO products (` + productColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (id) DO NOTHING`
	for _, p := range products {
		_, err := tx.ExecContext(ctx, query,
			p.ID, p.Title, p.Price, p.Description, p.Category, p.Image, p.Rating.Rate, p.Rating.Count,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert product %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit products: %w", err)
	}
	return nil
}
