package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/settlement/logger"
)

var DB *pgxpool.Pool

// PoolSettings bounds the shared pool.
type PoolSettings struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

var defaultPool = PoolSettings{
	MaxConns:        10,
	MinConns:        2,
	MaxConnLifetime: time.Hour,
	MaxConnIdleTime: 30 * time.Minute,
}

// Connect opens the shared pool and stores it in DB. The first ping runs in
// the background so a cold database does not block startup.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	cfg.MaxConns = defaultPool.MaxConns
	cfg.MinConns = defaultPool.MinConns
	cfg.MaxConnLifetime = defaultPool.MaxConnLifetime
	cfg.MaxConnIdleTime = defaultPool.MaxConnIdleTime

	start := time.Now()
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open settlement pool: %w", err)
	}

	go func() {
		pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			logger.WarnLogger.Warnf("Settlement database unreachable at startup: %v", err)
			return
		}
		logger.InfoLogger.Infof("Settlement database ready in %v", time.Since(start))
	}()

	DB = pool
	logger.InfoLogger.Infof("Settlement pool opened (max=%d min=%d)", cfg.MaxConns, cfg.MinConns)
	return pool, nil
}

func Close() {
	if DB != nil {
		DB.Close()
		logger.InfoLogger.Info("Settlement pool closed.")
	}
}
