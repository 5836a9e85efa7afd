package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/linemk/e-cart/internal/config"
	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "config_test_*.yaml")
	assert.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(content)
	assert.NoError(t, err)
	assert.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

func TestMustLoadByPath_Success(t *testing.T) {
	// Устанавливаем обязательные переменные окружения
	t.Setenv("DB_PASSWORD", "mypassword")
	t.Setenv("CART_SECRET", "mysecret")

	content := `
env: "local"
http_server:
  address: "localhost:5000"
  timeout: "4s"
  idle_timeout: "60s"
database:
  host: "localhost"
  port: 5432
  user: "postgres"
  name: "ecart"
migrations:
  path: "./migrations"
catalog:
  base_url: "https://fakestoreapi.com"
  page_size: 10
  timeout: "3s"
session:
  token_ttl: "24h"
redis:
  address: "localhost:6379"
  ttl: "10m"
kafka:
  brokers: ["localhost:9092"]
  topic: "orders"
cors:
  allowed_origins: ["http://localhost:5173"]
`
	cfg := config.MustLoadByPath(writeConfig(t, content))

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "localhost:5000", cfg.HTTPServer.Address)
	assert.Equal(t, 4*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, 60*time.Second, cfg.HTTPServer.IdleTimeout)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "mypassword", cfg.Database.Password)
	assert.Equal(t, "ecart", cfg.Database.Name)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "./migrations", cfg.Migrations.Path)
	assert.Equal(t, "https://fakestoreapi.com", cfg.Catalog.BaseURL)
	assert.Equal(t, 10, cfg.Catalog.PageSize)
	assert.Equal(t, 3*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, uint32(3), cfg.Catalog.MaxFailures)
	assert.Equal(t, "mysecret", cfg.Session.Secret)
	assert.Equal(t, 24*time.Hour, cfg.Session.TokenTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "orders", cfg.Kafka.Topic)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.OutboxEnabled())
}

func TestMustLoadByPath_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "mypassword")
	t.Setenv("CART_SECRET", "mysecret")

	content := `
database:
  user: "postgres"
  name: "ecart"
`
	cfg := config.MustLoadByPath(writeConfig(t, content))

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "localhost:5000", cfg.HTTPServer.Address)
	assert.Equal(t, 10, cfg.Catalog.PageSize)
	assert.Equal(t, 720*time.Hour, cfg.Session.TokenTTL)
	assert.Empty(t, cfg.Redis.Address)
	assert.False(t, cfg.OutboxEnabled())
	assert.Equal(t, 100, cfg.Kafka.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Kafka.ClaimLease)
}

func TestMustLoadByPath_FileNotFound(t *testing.T) {
	// Ожидаем панику, если файла не существует
	assert.Panics(t, func() {
		config.MustLoadByPath("non_existent_config.yaml")
	})
}
