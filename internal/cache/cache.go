package cache

import (
	"context"
	"errors"

	"github.com/linemk/e-cart/internal/domain/models"
)

// ProductCache - горячий кэш списка товаров поверх таблицы products
type ProductCache interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	SetProducts(ctx context.Context, products []models.Product) error
}

var ErrCacheMiss = errors.New("cache miss")

// NoopCache используется, когда Redis не настроен: всегда промах
type NoopCache struct{}

func (NoopCache) GetProducts(context.Context) ([]models.Product, error) {
	return nil, ErrCacheMiss
}

func (NoopCache) SetProducts(context.Context, []models.Product) error {
	return nil
}
