// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package monitoring

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/tenant-sites/internal/logging"
)

// Middleware is the monitoring middleware object implementing Prometheus monitoring
type Middleware struct {
	service string

	monitor MonitorInterface
	logger  logging.LoggerInterface
}

// ResponseTime records the latency of every request labelled by route pattern and status.
// The route pattern is used instead of the raw path so that ids do not explode cardinality.
func (mdw *Middleware) ResponseTime() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				startTime := time.Now()

				ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

				next.ServeHTTP(ww, r)

				route := r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					route = rctx.RoutePattern()
				}

				tags := map[string]string{
					"route":  fmt.Sprintf("%s%s", r.Method, route),
					"status": fmt.Sprint(ww.Status()),
				}

				if err := mdw.monitor.SetResponseTimeMetric(tags, time.Since(startTime).Seconds()); err != nil {
					mdw.logger.Debugf("error recording response time metric: %v", err)
				}
			},
		)
	}
}

// NewMiddleware returns a Middleware based on the type of monitor
func NewMiddleware(monitor MonitorInterface, logger logging.LoggerInterface) *Middleware {
	mdw := new(Middleware)

	mdw.monitor = monitor
	mdw.service = monitor.GetService()
	mdw.logger = logger

	return mdw
}
