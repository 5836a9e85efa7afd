package main

import (
	"errors"
	"flag"
	"log"
	"net/url"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"

	"github.com/linemk/e-cart/internal/app"
	"github.com/linemk/e-cart/internal/config"
)

const migrationsTable = "migrations"

// buildMigrateDSN добавляет к DSN приложения таблицу версий golang-migrate
func buildMigrateDSN(dbCfg config.DatabaseConfig, table string) string {
	u, err := url.Parse(app.PostgresDSN(dbCfg))
	if err != nil {
		log.Fatalf("invalid database config: %v", err)
	}
	q := u.Query()
	q.Set("x-migrations-table", table)
	u.RawQuery = q.Encode()
	return u.String()
}

func main() {
	var configPath, migrationsPathFlag string
	var down bool
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&migrationsPathFlag, "migrations-path", "", "path to migration files")
	flag.BoolVar(&down, "down", false, "roll back all migrations")
	flag.Parse()

	_ = godotenv.Load()
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		log.Fatal("config path is required: -config or CONFIG_PATH")
	}
	cfg := config.MustLoadByPath(configPath)

	migrationsPath := cfg.Migrations.Path
	if migrationsPathFlag != "" {
		migrationsPath = migrationsPathFlag
	}

	m, err := migrate.New("file://"+migrationsPath, buildMigrateDSN(cfg.Database, migrationsTable))
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}
	defer m.Close()

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("no migrations to apply")
			return
		}
		log.Fatalf("migration failed: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatalf("failed to read migration version: %v", err)
	}
	log.Printf("migrations applied successfully, version=%d dirty=%t", version, dirty)
}
