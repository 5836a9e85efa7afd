package service_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/linemk/e-cart/internal/cache"
	"github.com/linemk/e-cart/internal/domain/models"
	"github.com/linemk/e-cart/internal/service"
	"github.com/linemk/e-cart/internal/storage"
)

type fakeCartRepo struct {
	mu       sync.Mutex
	nextID   int64
	lines    map[string][]models.CartLine // ключ: ownerID
	lockErr  error
	clearErr error
}

var _ storage.CartStorage = (*fakeCartRepo)(nil)

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{lines: make(map[string][]models.CartLine)}
}

func (f *fakeCartRepo) snapshot(ownerID string) []models.CartLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.CartLine, len(f.lines[ownerID]))
	copy(out, f.lines[ownerID])
	return out
}

func (f *fakeCartRepo) GetItems(ctx context.Context, ownerID string) ([]models.CartLine, error) {
	return f.snapshot(ownerID), nil
}

func (f *fakeCartRepo) AddItem(ctx context.Context, line *models.CartLine) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := f.lines[line.OwnerID]
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Quantity += line.Quantity
			*line = lines[i]
			return false, nil
		}
	}
	f.nextID++
	line.ID = f.nextID
	line.CreatedAt = time.Now()
	line.UpdatedAt = line.CreatedAt
	f.lines[line.OwnerID] = append(lines, *line)
	return true, nil
}

func (f *fakeCartRepo) UpdateQuantity(ctx context.Context, ownerID string, id int64, quantity int) (*models.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := f.lines[ownerID]
	for i := range lines {
		if lines[i].ID == id {
			lines[i].Quantity = quantity
			l := lines[i]
			return &l, nil
		}
	}
	return nil, storage.ErrCartItemNotFound
}

func (f *fakeCartRepo) RemoveItem(ctx context.Context, ownerID string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := f.lines[ownerID]
	for i := range lines {
		if lines[i].ID == id {
			f.lines[ownerID] = append(lines[:i:i], lines[i+1:]...)
			return nil
		}
	}
	return storage.ErrCartItemNotFound
}

func (f *fakeCartRepo) Clear(ctx context.Context, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lines, ownerID)
	return nil
}

func (f *fakeCartRepo) LockItemsTx(ctx context.Context, tx *sql.Tx, ownerID string) ([]models.CartLine, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	return f.snapshot(ownerID), nil
}

func (f *fakeCartRepo) ClearTx(ctx context.Context, tx *sql.Tx, ownerID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	return f.Clear(ctx, ownerID)
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    []models.Order
	createErr error
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func copyOrder(o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

func (f *fakeOrderRepo) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	for _, o := range f.orders {
		if o.OrderNumber == order.OrderNumber {
			return storage.ErrOrderExists
		}
	}
	order.ID = int64(len(f.orders) + 1)
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	f.orders = append(f.orders, copyOrder(*order))
	return nil
}

func (f *fakeOrderRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Order, 0, len(f.orders))
	for i := len(f.orders) - 1; i >= 0; i-- {
		out = append(out, copyOrder(f.orders[i]))
	}
	return out, nil
}

func (f *fakeOrderRepo) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, o := range f.orders {
		if o.OrderNumber == orderNumber {
			c := copyOrder(o)
			return &c, nil
		}
	}
	return nil, storage.ErrOrderNotFound
}

func (f *fakeOrderRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type fakeOutboxRepo struct {
	events []*models.OutboxEvent
	addErr error
}

var _ storage.OutboxStorage = (*fakeOutboxRepo)(nil)

func (f *fakeOutboxRepo) AddEventTx(ctx context.Context, tx *sql.Tx, event *models.OutboxEvent) error {
	if f.addErr != nil {
		return f.addErr
	}
	event.ID = int64(len(f.events) + 1)
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepo) ClaimEvents(ctx context.Context, limit int, lease time.Duration) ([]*models.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeOutboxRepo) ReleaseEvent(ctx context.Context, id int64) error {
	return nil
}

func (f *fakeOutboxRepo) MarkEventProcessed(ctx context.Context, id int64) error {
	return nil
}

type fakeProductRepo struct {
	mu        sync.Mutex
	products  []models.Product
	listErr   error
	insertErr error
	inserts   int
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func (f *fakeProductRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, storage.ErrProductNotFound
}

func (f *fakeProductRepo) InsertProducts(ctx context.Context, products []models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserts++
	f.products = append(f.products, products...)
	return nil
}

type fakeProductCache struct {
	mu       sync.Mutex
	products []models.Product
	getErr   error
	sets     int
}

var _ cache.ProductCache = (*fakeProductCache)(nil)

func (f *fakeProductCache) GetProducts(ctx context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.products == nil {
		return nil, cache.ErrCacheMiss
	}
	return f.products, nil
}

func (f *fakeProductCache) SetProducts(ctx context.Context, products []models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.products = products
	return nil
}

type fakeCatalog struct {
	mu       sync.Mutex
	products []models.Product
	err      error
	calls    int
	delay    time.Duration
}

var _ service.CatalogFetcher = (*fakeCatalog)(nil)

func (f *fakeCatalog) FetchProducts(ctx context.Context) ([]models.Product, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
