// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
)

const (
	defaultPage     uint64 = 1
	defaultPageSize uint64 = 100
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	TracingEnabled  bool
	// RowLevelSecurity binds every transaction touching tenant data to the
	// tenant through the app.current_tenant setting.
	RowLevelSecurity bool
}

// ErrPageOutOfRange is returned for pages whose offset does not fit a
// postgres bigint.
var ErrPageOutOfRange = errors.New("page out of range")

// Offset returns the rows skipped before the 1-based page, page 0 is the
// first page.
func Offset(page, pageSize uint64) (uint64, error) {
	if page <= defaultPage {
		return 0, nil
	}

	if pageSize > 0 && page-1 > math.MaxInt64/pageSize {
		return 0, fmt.Errorf("%w: page %d of %d rows", ErrPageOutOfRange, page, pageSize)
	}

	return (page - 1) * pageSize, nil
}

func PageSize(size int64) uint64 {
	if size <= 0 {
		return defaultPageSize
	}
	return uint64(size)
}

var _ DBClientInterface = (*DBClient)(nil)

type DBClient struct {
	pool *pgxpool.Pool
	db   *sql.DB

	rls bool

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Statement returns a builder running on the transaction carried by ctx,
// started on first use, or on the pool outside of one.
func (d *DBClient) Statement(ctx context.Context) sq.StatementBuilderType {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	lt := lazyTxFromContext(ctx)
	if lt == nil {
		return builder.RunWith(d.db)
	}

	tx, err := lt.get(ctx)
	if err != nil {
		d.logger.Errorf("failed to start transaction, running outside of it: %v", err)
		return builder.RunWith(d.db)
	}

	return builder.RunWith(tx)
}

// WithTx runs fn in a transaction committed when fn succeeds. The transaction
// only begins when fn runs its first statement. Hooks registered through
// AfterCommit run once the commit succeeded.
func (d *DBClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	lt := &lazyTx{db: d.db, rls: d.rls}
	defer lt.close(d.logger)

	if err := fn(contextWithLazyTx(ctx, lt)); err != nil {
		return err
	}

	if err := lt.commit(); err != nil {
		return err
	}

	lt.runAfterCommit()
	return nil
}

// RowLevelSecurity reports whether transactions are bound to the request tenant.
func (d *DBClient) RowLevelSecurity() bool {
	return d.rls
}

func (d *DBClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DBClient) Close() {
	if d.db != nil {
		_ = d.db.Close()
	}

	if d.pool != nil {
		d.pool.Close()
	}
}

// NewDBClient opens a pgx pool and exposes it through database/sql for squirrel.
func NewDBClient(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*DBClient, error) {
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid DSN: %v", err)
	}

	if cfg.TracingEnabled {
		config.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	config.MaxConns = cfg.MaxConns
	config.MinConns = cfg.MinConns
	config.MaxConnLifetime = cfg.MaxConnLifetime
	config.MaxConnLifetimeJitter = cfg.MaxConnLifetime / 10
	config.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create db pool: %v", err)
	}

	if cfg.TracingEnabled {
		if err := otelpgx.RecordStats(pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to record database stats: %v", err)
		}
	}

	db := stdlib.OpenDBFromPool(pool)
	if err := db.Ping(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to the database: %v", err)
	}

	if cfg.RowLevelSecurity {
		logger.Info("Row level security is enforced on tenant data")
	}

	d := NewDBClientFromDB(db, cfg.RowLevelSecurity, tracer, monitor, logger)
	d.pool = pool

	return d, nil
}

// NewDBClientFromDB wraps an already opened database handle.
func NewDBClientFromDB(db *sql.DB, rls bool, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *DBClient {
	return &DBClient{
		db:      db,
		rls:     rls,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
