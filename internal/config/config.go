package config

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config is read once from the environment (a .env file is loaded
// automatically when present).
type Config struct {
	Env         string
	DatabaseURL string // postgres DSN; empty selects sqlite or no store
	SQLitePath  string
	RedisAddr   string // empty disables the cache and update queue
	ContentDir  string // file-store directory for the file-backed deployment
	Compression string // codec for stored page payloads
	HTTPPort    string
}

func LoadConfig() *Config {
	cnf := &Config{
		Env:         getenv("ENV", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		ContentDir:  getenv("CONTENT_DIR", "./content-data"),
		Compression: os.Getenv("CONTENT_COMPRESSION"),
		HTTPPort:    getenv("HTTP_PORT", "4001"),
	}

	return cnf
}

// GetDb opens the configured database: postgres in production, sqlite
// for dev and tests. Both absent is a valid, configuration-absent state
// and returns nil; callers fall back to the no-op store.
func GetDb(cnf *Config) *gorm.DB {
	if cnf.DatabaseURL != "" {
		db, err := gorm.Open(postgres.Open(cnf.DatabaseURL), &gorm.Config{})
		if err != nil {
			logrus.Fatalf("error connecting to postgres: %v", err)
		}
		return db
	}

	if cnf.SQLitePath != "" {
		db, err := gorm.Open(sqlite.Open(cnf.SQLitePath), &gorm.Config{})
		if err != nil {
			logrus.Fatalf("error opening sqlite db: %v", err)
		}
		return db
	}

	logrus.Warn("no database configured, content resolves to defaults only")
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
