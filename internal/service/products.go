package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/linemk/e-cart/internal/cache"
	"github.com/linemk/e-cart/internal/domain/models"
	"github.com/linemk/e-cart/internal/storage"
)

// loadTimeout ограничивает общую загрузку, которая не зависит от отмены отдельного запроса
const loadTimeout = 30 * time.Second

// CatalogFetcher - источник товаров для первичного наполнения таблицы products
type CatalogFetcher interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

type productService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
	cache       cache.ProductCache
	catalog     CatalogFetcher
	sfg         singleflight.Group
}

func NewProductService(log *slog.Logger, productRepo storage.ProductStorage, productCache cache.ProductCache, catalog CatalogFetcher) ProductService {
	if productCache == nil {
		productCache = cache.NoopCache{}
	}
	return &productService{
		log:         log,
		productRepo: productRepo,
		cache:       productCache,
		catalog:     catalog,
	}
}

// ListProducts читает товары из кэша, затем из БД. Пустая БД наполняется из внешнего каталога.
// Одновременные промахи внутри процесса схлопываются в один запрос.
func (s *productService) ListProducts(ctx context.Context) ([]models.Product, error) {
	const op = "service.ProductService.ListProducts"
	logger := s.log.With(slog.String("op", op))

	products, err := s.cache.GetProducts(ctx)
	if err == nil {
		return products, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// кэш не обязателен, идём в БД
		logger.Warn("cache get error", slog.Any("error", err))
	}

	ch := s.sfg.DoChan("products", func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.loadProducts(loadCtx, logger)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	}
	if res.Err != nil {
		return nil, fmt.Errorf("%s: %w", op, res.Err)
	}
	products = res.Val.([]models.Product)

	if len(products) > 0 {
		if err := s.cache.SetProducts(ctx, products); err != nil {
			logger.Warn("cache set error", slog.Any("error", err))
		}
	}
	return products, nil
}

func (s *productService) loadProducts(ctx context.Context, logger *slog.Logger) ([]models.Product, error) {
	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		logger.Error("failed to list products", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if len(products) > 0 {
		return products, nil
	}

	logger.Info("product table is empty, fetching catalog")
	products, err = s.catalog.FetchProducts(ctx)
	if err != nil {
		logger.Error("failed to fetch catalog", slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	// повторная вставка тех же id безвредна, поэтому гонка между процессами допустима
	if err := s.productRepo.InsertProducts(ctx, products); err != nil {
		logger.Error("failed to store catalog", slog.Any("error", err))
		return nil, fmt.Errorf("failed to store catalog: %w", err)
	}
	logger.Info("products cached in database", slog.Int("count", len(products)))

	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.ProductService.GetProduct"

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrProductNotFound) {
			s.log.Error("failed to get product", slog.String("op", op), slog.Int64("id", id), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}
