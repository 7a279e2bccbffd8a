package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/infrastructure/store"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotConfigured 未設定資料庫
var ErrNotConfigured = errors.New("database not configured")

// Open 依設定開啟資料庫連線；Driver 為空時回傳 ErrNotConfigured
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "":
		return nil, ErrNotConfigured
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case config.DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = ":memory:"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite 只允許單一寫入者，:memory: 每條連線各自一個資料庫
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	common.LogInfo("資料庫已連線",
		zap.String("driver", cfg.Driver),
		zap.Int("max_open_conns", sqlDB.Stats().MaxOpenConnections),
	)

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	if cfg.Seed {
		if err := Seed(db); err != nil {
			common.LogWarn("寫入示範資料失敗", zap.Error(err))
		}
	}

	return db, nil
}

// Migrate 建立或更新資料表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(store.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close 關閉資料庫連線
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}
