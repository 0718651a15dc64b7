// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/canonical/tenant-sites/internal/logging"
)

const txTimeout = 60 * time.Second

type lazyTxContextKey struct{}

// lazyTx begins on the first statement and follows the tenant of the
// statements run in it.
type lazyTx struct {
	db  *sql.DB
	rls bool

	tx     TxInterface
	cancel context.CancelFunc
	done   bool
	tenant string

	afterCommit []func()
}

func (lt *lazyTx) get(ctx context.Context) (TxInterface, error) {
	if lt.tx == nil {
		// detached from the request, a cancelled request must not roll back
		// a transaction the handler still owns
		txCtx, cancel := context.WithTimeout(context.Background(), txTimeout)

		tx, err := lt.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			cancel()
			return nil, err
		}

		lt.tx, lt.cancel = tx, cancel
	}

	if err := lt.bindTenant(TenantFromContext(ctx)); err != nil {
		return nil, err
	}

	return lt.tx, nil
}

// bindTenant sets the transaction local tenant, a later statement for
// another tenant rebinds it.
func (lt *lazyTx) bindTenant(tenantID string) error {
	if !lt.rls || tenantID == "" || tenantID == lt.tenant {
		return nil
	}

	if _, err := lt.tx.Exec(setTenantQuery, tenantID); err != nil {
		return fmt.Errorf("failed to bind transaction to tenant: %v", err)
	}

	lt.tenant = tenantID
	return nil
}

func (lt *lazyTx) commit() error {
	if lt.tx == nil {
		return nil
	}

	if err := lt.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	lt.done = true
	return nil
}

// runAfterCommit runs the hooks registered by AfterCommit, once.
func (lt *lazyTx) runAfterCommit() {
	hooks := lt.afterCommit
	lt.afterCommit = nil

	for _, fn := range hooks {
		fn()
	}
}

// AfterCommit defers fn until the transaction carried by ctx commits, a
// rolled back transaction drops it. Outside of a transaction fn runs at once.
func AfterCommit(ctx context.Context, fn func()) {
	lt := lazyTxFromContext(ctx)
	if lt == nil {
		fn()
		return
	}

	lt.afterCommit = append(lt.afterCommit, fn)
}

// close rolls back a started transaction that was not committed.
func (lt *lazyTx) close(logger logging.LoggerInterface) {
	if lt.tx != nil && !lt.done {
		if err := lt.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logger.Errorf("failed to rollback transaction: %v", err)
		}
	}

	if lt.cancel != nil {
		lt.cancel()
	}
}

func lazyTxFromContext(ctx context.Context) *lazyTx {
	lt, _ := ctx.Value(lazyTxContextKey{}).(*lazyTx)
	return lt
}

func contextWithLazyTx(ctx context.Context, lt *lazyTx) context.Context {
	return context.WithValue(ctx, lazyTxContextKey{}, lt)
}
