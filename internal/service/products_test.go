package service_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/e-cart/internal/domain/models"
	"github.com/linemk/e-cart/internal/service"
	"github.com/linemk/e-cart/internal/storage"
)

func sampleProducts() []models.Product {
	return []models.Product{
		{ID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95")},
		{ID: 2, Title: "T-Shirt", Price: decimal.RequireFromString("22.30")},
	}
}

func newProductService(repo *fakeProductRepo, c *fakeProductCache, catalog *fakeCatalog) service.ProductService {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return service.NewProductService(log, repo, c, catalog)
}

func TestListProducts_PopulatesEmptyTable(t *testing.T) {
	repo := &fakeProductRepo{}
	c := &fakeProductCache{}
	catalog := &fakeCatalog{products: sampleProducts()}
	svc := newProductService(repo, c, catalog)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, 1, catalog.calls)
	assert.Equal(t, 1, repo.inserts)
	assert.Equal(t, 1, c.sets)

	// дальше товары читаются из кэша
	products, err = svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, 1, catalog.calls)
	assert.Equal(t, 1, repo.inserts)
}

func TestListProducts_ServesFromDatabase(t *testing.T) {
	repo := &fakeProductRepo{products: sampleProducts()}
	catalog := &fakeCatalog{}
	svc := newProductService(repo, &fakeProductCache{}, catalog)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Backpack", products[0].Title)
	assert.Equal(t, 0, catalog.calls)
	assert.Equal(t, 0, repo.inserts)
}

func TestListProducts_CacheErrorFallsBackToDatabase(t *testing.T) {
	repo := &fakeProductRepo{products: sampleProducts()}
	c := &fakeProductCache{getErr: errors.New("redis down")}
	svc := newProductService(repo, c, &fakeCatalog{})

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestListProducts_NilCache(t *testing.T) {
	repo := &fakeProductRepo{products: sampleProducts()}
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	svc := service.NewProductService(log, repo, nil, &fakeCatalog{})

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestListProducts_CatalogUnavailable(t *testing.T) {
	repo := &fakeProductRepo{}
	c := &fakeProductCache{}
	catalog := &fakeCatalog{err: errors.New("upstream unreachable")}
	svc := newProductService(repo, c, catalog)

	products, err := svc.ListProducts(context.Background())
	assert.Error(t, err)
	assert.Nil(t, products)
	assert.Equal(t, 0, repo.inserts)
	assert.Equal(t, 0, c.sets)
}

func TestListProducts_InsertFails(t *testing.T) {
	boom := errors.New("insert failed")
	repo := &fakeProductRepo{insertErr: boom}
	svc := newProductService(repo, &fakeProductCache{}, &fakeCatalog{products: sampleProducts()})

	_, err := svc.ListProducts(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestListProducts_ConcurrentFirstReadsPopulateOnce(t *testing.T) {
	repo := &fakeProductRepo{}
	catalog := &fakeCatalog{products: sampleProducts(), delay: 50 * time.Millisecond}
	svc := newProductService(repo, &fakeProductCache{}, catalog)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			products, err := svc.ListProducts(context.Background())
			assert.NoError(t, err)
			assert.Len(t, products, 2)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, catalog.calls)
	assert.Equal(t, 1, repo.inserts)
}

func TestListProducts_CancelledCallerDoesNotFailOthers(t *testing.T) {
	repo := &fakeProductRepo{}
	catalog := &fakeCatalog{products: sampleProducts(), delay: 100 * time.Millisecond}
	svc := newProductService(repo, &fakeProductCache{}, catalog)

	leaderCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	leaderErr := make(chan error, 1)
	go func() {
		_, err := svc.ListProducts(leaderCtx)
		leaderErr <- err
	}()
	require.Eventually(t, func() bool { return catalog.callCount() == 1 }, time.Second, time.Millisecond)

	type result struct {
		products []models.Product
		err      error
	}
	follower := make(chan result, 1)
	go func() {
		products, err := svc.ListProducts(context.Background())
		follower <- result{products, err}
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	got := <-follower
	require.NoError(t, got.err)
	assert.Len(t, got.products, 2)
	assert.Equal(t, 1, catalog.callCount())
	assert.Equal(t, 1, repo.inserts)
}

func TestGetProduct(t *testing.T) {
	repo := &fakeProductRepo{products: sampleProducts()}
	svc := newProductService(repo, &fakeProductCache{}, &fakeCatalog{})

	p, err := svc.GetProduct(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "T-Shirt", p.Title)

	p, err = svc.GetProduct(context.Background(), 42)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, storage.ErrProductNotFound)
}
