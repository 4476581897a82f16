package stores

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"order-metrics/internal/shared/configs"

	sqlite "github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenRedis connects to the bucket store and verifies it answers.
func OpenRedis(ctx context.Context, cfg configs.RedisConfig) (redis.UniversalClient, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       cfg.Addrs,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: time.Duration(cfg.DialTimeoutMs) * time.Millisecond,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// OpenOrderDB opens the order database for the configured driver.
func OpenOrderDB(cfg configs.OrderStoreConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	case "sqlite":
		if err := ensureSQLiteDir(cfg.DSN); err != nil {
			return nil, err
		}
		db, err = gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
		if err == nil {
			db.Exec("PRAGMA journal_mode=WAL;")
			db.Exec("PRAGMA synchronous=NORMAL;")
			db.Exec("PRAGMA foreign_keys=ON;")
			db.Exec("PRAGMA busy_timeout=5000;")
		}
	default:
		return nil, fmt.Errorf("unsupported order store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open order store: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil && cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if cfg.AutoMigrate {
		if err := MigrateOrderStore(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// MigrateOrderStore creates or updates the order tables.
func MigrateOrderStore(db *gorm.DB) error {
	if err := db.AutoMigrate(&orderRecord{}, &orderItemRecord{}); err != nil {
		return fmt.Errorf("failed to migrate order store: %w", err)
	}
	return nil
}

// ensureSQLiteDir fails early when the database file's directory is missing.
func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("sqlite directory %q: %w", dir, err)
		}
	}
	return nil
}
