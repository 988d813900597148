package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Options struct {
	Driver          string
	DataSource      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	Logger          *zap.Logger
}

type Option func(*Options)

func WithDriver(driver string) Option {
	return func(o *Options) { o.Driver = driver }
}

func WithDataSource(dsn string) Option {
	return func(o *Options) { o.DataSource = dsn }
}

func WithMaxOpenConns(count int) Option {
	return func(o *Options) { o.MaxOpenConns = count }
}

func WithMaxIdleConns(count int) Option {
	return func(o *Options) { o.MaxIdleConns = count }
}

// WithConnMaxLifetime sets how long a connection may be reused. Zero keeps
// connections forever, which an in-memory sqlite database needs to survive.
func WithConnMaxLifetime(duration time.Duration) Option {
	return func(o *Options) { o.ConnMaxLifetime = duration }
}

func WithConnMaxIdleTime(duration time.Duration) Option {
	return func(o *Options) { o.ConnMaxIdleTime = duration }
}

func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = attempts
		o.RetryDelay = delay
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// InMemory configures a single long-lived connection to a named shared-cache
// sqlite database, so every query sees the same data.
func InMemory(name string) Option {
	return func(o *Options) {
		o.Driver = "sqlite3"
		o.DataSource = fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
		o.MaxOpenConns = 1
		o.MaxIdleConns = 1
		o.ConnMaxLifetime = 0
		o.ConnMaxIdleTime = 0
	}
}

func defaultOptions() *Options {
	return &Options{
		Driver:          "sqlite3",
		DataSource:      ":memory:",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		Logger:          zap.NewNop(),
	}
}

func (o *Options) validate() error {
	if o.Driver == "" {
		return errors.New("database driver cannot be empty")
	}
	if o.DataSource == "" {
		return errors.New("database data source cannot be empty")
	}
	if o.RetryAttempts < 1 {
		o.RetryAttempts = 1
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return nil
}

// open makes a single pooled connection attempt and verifies it with a ping.
func open(ctx context.Context, o *Options) (*sql.DB, error) {
	db, err := sql.Open(o.Driver, o.DataSource)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(o.MaxOpenConns)
	db.SetMaxIdleConns(o.MaxIdleConns)
	db.SetConnMaxLifetime(o.ConnMaxLifetime)
	db.SetConnMaxIdleTime(o.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// New opens a connection pool, retrying with a linear backoff until the
// database answers a ping or the attempts run out.
func New(ctx context.Context, opts ...Option) (*sql.DB, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= options.RetryAttempts; attempt++ {
		db, err := open(ctx, options)
		if err == nil {
			return db, nil
		}
		lastErr = err

		options.Logger.Warn("database connection attempt failed",
			zap.String("driver", options.Driver),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", options.RetryAttempts),
			zap.Error(err))

		if attempt == options.RetryAttempts {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * options.RetryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("database connect cancelled: %w", ctx.Err())
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", options.RetryAttempts, lastErr)
}
