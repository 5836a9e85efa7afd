package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	Migrations MigrationsConfig `yaml:"migrations"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Session    SessionConfig    `yaml:"session"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	CORS       CORSConfig       `yaml:"cors"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:5000"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// CatalogConfig - внешний каталог товаров, из которого один раз наполняется локальная таблица
type CatalogConfig struct {
	BaseURL  string        `yaml:"base_url" env:"CATALOG_BASE_URL" env-default:"https://fakestoreapi.com"`
	PageSize int           `yaml:"page_size" env-default:"10"`
	Timeout  time.Duration `yaml:"timeout" env-default:"5s"`
	// после стольких ошибок подряд circuit breaker размыкается
	MaxFailures  uint32        `yaml:"max_failures" env-default:"3"`
	BreakerReset time.Duration `yaml:"breaker_reset" env-default:"30s"`
}

// SessionConfig - подпись токенов корзины
type SessionConfig struct {
	Secret   string        `yaml:"-" env:"CART_SECRET" env-required:"true"`
	TokenTTL time.Duration `yaml:"token_ttl" env-default:"720h"`
}

// RedisConfig - горячий кэш каталога. Пустой адрес отключает кэш
type RedisConfig struct {
	Address  string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password string        `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env-default:"15m"`
}

// KafkaConfig - публикация событий из outbox. Пустой список брокеров отключает outbox
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic        string        `yaml:"topic" env-default:"orders"`
	PollInterval time.Duration `yaml:"poll_interval" env-default:"1s"`
	BatchSize    int           `yaml:"batch_size" env-default:"100"`
	ClaimLease   time.Duration `yaml:"claim_lease" env-default:"30s"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	// .env необязателен, переменные могут прийти из окружения
	_ = godotenv.Load()

	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s: %v", configPath, err)
	}

	return &cfg
}

// OutboxEnabled сообщает, настроена ли публикация событий в Kafka
func (c *Config) OutboxEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}
