// Package catalog - клиент внешнего каталога товаров (fakestoreapi.com)
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/linemk/e-cart/internal/config"
	"github.com/linemk/e-cart/internal/domain/models"
)

var ErrUnavailable = errors.New("catalog unavailable")

type Client struct {
	log        *slog.Logger
	httpClient *http.Client
	baseURL    string
	pageSize   int
	cb         *gobreaker.CircuitBreaker[[]models.Product]
}

func New(log *slog.Logger, cfg config.CatalogConfig) *Client {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 1
	}

	cb := gobreaker.NewCircuitBreaker[[]models.Product](gobreaker.Settings{
		Name:    "catalog",
		Timeout: cfg.BreakerReset,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Client{
		log:        log,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		pageSize:   cfg.PageSize,
		cb:         cb,
	}
}

// FetchProducts загружает каталог и оставляет первые pageSize товаров
func (c *Client) FetchProducts(ctx context.Context) ([]models.Product, error) {
	const op = "catalog.Client.FetchProducts"

	products, err := c.cb.Execute(func() ([]models.Product, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if c.pageSize > 0 && len(products) > c.pageSize {
		products = products[:c.pageSize]
	}
	return products, nil
}

func (c *Client) fetch(ctx context.Context) ([]models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug("catalog responded",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}
