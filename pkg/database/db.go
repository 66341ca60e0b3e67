package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
	RetryAttempts   int
	RetryBaseDelay  time.Duration
	Debug           bool
}

// Connect opens the pool once and pings it. Cold databases get a few
// attempts with exponential backoff before the error is returned.
func Connect(ctx context.Context, opts Options) (*gorm.DB, error) {
	logLevel := logger.Warn
	if opts.Debug {
		logLevel = logger.Info
	}

	var db *gorm.DB
	err := WithRetry(ctx, opts.RetryAttempts, opts.RetryBaseDelay, func() error {
		conn, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logLevel),
		})
		if err != nil {
			return err
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

		pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			_ = sqlDB.Close()
			return err
		}

		db = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}

// Close releases the underlying pool.
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

const (
	readAttempts  = 3
	readBaseDelay = 50 * time.Millisecond
)

// Read retries an idempotent query that may hit a cold connection. A missing
// row is an answer, so it is returned without retrying.
func Read(ctx context.Context, op func() error) error {
	return WithRetry(ctx, readAttempts, readBaseDelay, func() error {
		err := op()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return backoff.Permanent(err)
		}
		return err
	})
}

// WithRetry runs op up to attempts times, waiting base, 2*base, 4*base...
// between tries. Errors wrapped with backoff.Permanent and context
// cancellation stop the loop immediately.
func WithRetry(ctx context.Context, attempts int, base time.Duration, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = base
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	tries := 0
	notify := func(err error, wait time.Duration) {
		log.Printf("database operation failed (attempt %d/%d), retrying in %s: %v", tries, attempts, wait, err)
	}

	wrapped := func() error {
		tries++
		err := op()
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.RetryNotify(
		wrapped,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(attempts-1)), ctx),
		notify,
	)
}
