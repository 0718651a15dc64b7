// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/canonical/tenant-sites/internal/logging"
)

// TransactionMiddleware wraps each mutating request in a lazily started
// transaction, committed when the handler answers below 400.
// With row level security enforced reads are wrapped too, the tenant binding
// is transaction local.
func TransactionMiddleware(db DBClientInterface, logger logging.LoggerInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			readOnly := r.Method == http.MethodGet || r.Method == http.MethodHead
			if readOnly && !db.RowLevelSecurity() {
				next.ServeHTTP(w, r)
				return
			}

			err := db.WithTx(ctx, func(txCtx context.Context) error {
				rw := &responseWriter{
					ResponseWriter: w,
					statusCode:     http.StatusOK,
				}

				next.ServeHTTP(rw, r.WithContext(txCtx))

				if rw.statusCode >= 400 {
					return fmt.Errorf("%w with status %d", errRequestFailed, rw.statusCode)
				}

				return nil
			})

			if err != nil && !errors.Is(err, errRequestFailed) {
				logger.Errorf("transaction for %s %s failed: %v", r.Method, r.URL.Path, err)
			}
		})
	}
}

var errRequestFailed = errors.New("request failed")

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
