// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package site exposes the resolved tenant to frontends.
package site

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/tenant-sites/internal/access"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/query"
	"github.com/canonical/tenant-sites/internal/storage"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/internal/types"
	"github.com/canonical/tenant-sites/pkg/resolver"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) Site(ctx context.Context) (*Site, error) {
	ctx, span := s.tracer.Start(ctx, "site.Service.Site")
	defer span.End()

	res, ok := resolver.ResolutionFromContext(ctx)
	if !ok {
		return nil, query.ErrMissingTenant
	}

	t, err := s.storage.GetTenantByID(ctx, res.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	site := &Site{
		Tenant:   Tenant{ID: t.ID, Name: t.Name, Slug: t.Slug},
		Source:   res.Source,
		Hostname: res.Hostname,
		Features: res.Features,
	}

	if site.Header, err = s.first(ctx, t.ID, "headers"); err != nil {
		return nil, err
	}

	if site.Footer, err = s.first(ctx, t.ID, "footers"); err != nil {
		return nil, err
	}

	return site, nil
}

func (s *Service) first(ctx context.Context, tenantID, collection string) (*types.Document, error) {
	page, err := s.storage.FindDocuments(ctx, tenantID, collection, query.Eq(query.FieldStatus, types.StatusPublished), "createdAt", 1, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", collection, err)
	}

	if len(page.Docs) == 0 {
		return nil, nil
	}

	return page.Docs[0], nil
}

// CanSwitch checks the caller may pin tenantID on the current host: super
// admins may pick any enabled tenant, other callers one they belong to.
func (s *Service) CanSwitch(ctx context.Context, tenantID string) error {
	ctx, span := s.tracer.Start(ctx, "site.Service.CanSwitch")
	defer span.End()

	p := access.PrincipalFromContext(ctx)
	if !p.Authenticated() {
		return ErrUnauthenticated
	}

	t, err := s.storage.GetTenantByID(ctx, tenantID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return fmt.Errorf("failed to get tenant: %w", err)
	}

	if !t.Enabled {
		return ErrForbidden
	}

	if p.SuperAdmin {
		return nil
	}

	if _, err := s.storage.GetMembership(ctx, tenantID, p.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Security().AuthzFailure(p.UserID, "tenant:"+tenantID)
			return ErrForbidden
		}
		return fmt.Errorf("failed to get membership: %w", err)
	}

	return nil
}

func NewService(storage StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	s := new(Service)
	s.storage = storage

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
