// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
)

var _ monitoring.MonitorInterface = (*Monitor)(nil)

type Monitor struct {
	service string

	responseTime      *prometheus.HistogramVec
	dependencies      *prometheus.GaugeVec
	tenantResolutions *prometheus.CounterVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

func (m *Monitor) SetResponseTimeMetric(tags map[string]string, value float64) error {
	if m.responseTime == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.responseTime.With(m.withService(tags)).Observe(value)

	return nil
}

func (m *Monitor) SetDependencyAvailability(tags map[string]string, value float64) error {
	if m.dependencies == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.dependencies.With(m.withService(tags)).Set(value)

	return nil
}

// IncTenantResolution counts resolver outcomes, tags must carry "source" and "outcome".
func (m *Monitor) IncTenantResolution(tags map[string]string) error {
	if m.tenantResolutions == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.tenantResolutions.With(m.withService(tags)).Inc()

	return nil
}

func (m *Monitor) withService(tags map[string]string) prometheus.Labels {
	labels := prometheus.Labels{"service": m.service}
	for k, v := range tags {
		labels[k] = v
	}
	return labels
}

func (m *Monitor) registerHistograms() {
	m.responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_time_seconds",
			Help: "http_response_time_seconds",
		},
		[]string{"route", "status", "service"},
	)

	if err := prometheus.Register(m.responseTime); err != nil {
		m.logger.Errorf("failed to register response time histogram: %v", err)
	}
}

func (m *Monitor) registerGauges() {
	m.dependencies = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dependency_available",
			Help: "dependency_available",
		},
		[]string{"component", "service"},
	)

	if err := prometheus.Register(m.dependencies); err != nil {
		m.logger.Errorf("failed to register dependency gauge: %v", err)
	}
}

func (m *Monitor) registerCounters() {
	m.tenantResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_resolutions_total",
			Help: "tenant resolutions by source and outcome",
		},
		[]string{"source", "outcome", "service"},
	)

	if err := prometheus.Register(m.tenantResolutions); err != nil {
		m.logger.Errorf("failed to register tenant resolution counter: %v", err)
	}
}

func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger

	m.registerHistograms()
	m.registerGauges()
	m.registerCounters()

	return m
}
