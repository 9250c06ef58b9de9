package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/microblog-app/microblog-back/internal/config"
)

var DB *gorm.DB

// Connect opens the configured database and stores the handle in DB.
func Connect(cfg *config.Config) error {
	db, err := Open(cfg.DBDriver, cfg.DBUrl, cfg.DBMaxConns, cfg.DBDebug)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open builds a gorm handle. Postgres goes through a pgx pool, sqlite is kept
// on a single connection so writes serialize.
func Open(driver, dsn string, maxConns int32, debug bool) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         newLogger(debug),
		TranslateError: true,
	}

	switch driver {
	case "postgres":
		poolCfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
		}
		if maxConns > 0 {
			poolCfg.MaxConns = maxConns
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
		if err != nil {
			return nil, fmt.Errorf("pgx pool: %w", err)
		}
		sqlDB := stdlib.OpenDBFromPool(pool)

		db, err := gorm.Open(postgres.New(postgres.Config{
			Conn:                 sqlDB,
			PreferSimpleProtocol: true,
		}), gormCfg)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connexion postgres: %w", err)
		}
		return db, nil

	case "sqlite":
		db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("connexion sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil

	default:
		return nil, fmt.Errorf("driver inconnu: %q", driver)
	}
}

// IsPostgres tells whether row locks can be requested on db.
func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

func newLogger(debug bool) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return logger.New(log.New(os.Stdout, "", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
