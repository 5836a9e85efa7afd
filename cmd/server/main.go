package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/linemk/e-cart/internal/app"
	"github.com/linemk/e-cart/internal/cache"
	"github.com/linemk/e-cart/internal/catalog"
	"github.com/linemk/e-cart/internal/config"
	"github.com/linemk/e-cart/internal/lib/api/response"
	"github.com/linemk/e-cart/internal/lib/logger"
	"github.com/linemk/e-cart/internal/outbox"
	"github.com/linemk/e-cart/internal/service"
	"github.com/linemk/e-cart/internal/storage"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// деньги в JSON - числа, как их ждёт фронтенд
	decimal.MarshalJSONWithoutQuotes = true
	response.ExposeDetails = cfg.Env != logger.EnvProd

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(ctx, log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.Close()

	// реализация слоев по работе с БД по каждому направлению
	productRepo := storage.NewProductRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	var productCache cache.ProductCache = cache.NoopCache{}
	if application.Redis != nil {
		productCache = cache.NewRedisCache(application.Redis, cfg.Redis.TTL)
	}

	// outbox включается только при настроенных брокерах
	var outboxRepo storage.OutboxStorage
	if cfg.OutboxEnabled() {
		outboxRepo = storage.NewOutboxRepository(application.DB)

		publisher := outbox.NewKafkaPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("failed to close kafka writer", slog.Any("error", err))
			}
		}()

		poller := outbox.NewPoller(log, outboxRepo, publisher, cfg.Kafka.PollInterval, cfg.Kafka.BatchSize, cfg.Kafka.ClaimLease)
		go poller.Run(ctx)
	} else {
		log.Info("kafka brokers are not configured, order events disabled")
	}

	catalogClient := catalog.New(log, cfg.Catalog)

	router := app.NewRouter(log, cfg, app.Services{
		Products: service.NewProductService(log, productRepo, productCache, catalogClient),
		Cart:     service.NewCartService(log, cartRepo),
		Checkout: service.NewCheckoutService(log, application.DB, cartRepo, orderRepo, outboxRepo, service.DefaultOrderNumber),
		DB:       application.DB,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.Any("error", err))
			stop()
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	log.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
