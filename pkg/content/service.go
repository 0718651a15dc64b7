// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package content serves the generic CRUD surface of the tenant scoped
// collections.
package content

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/tenant-sites/internal/access"
	"github.com/canonical/tenant-sites/internal/collections"
	"github.com/canonical/tenant-sites/internal/db"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/query"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/internal/types"
	"github.com/canonical/tenant-sites/pkg/resolver"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage     StorageInterface
	collections *collections.Registry
	validate    *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// authorize resolves the collection and the tenant of ctx and returns the
// constraint op runs with.
func (s *Service) authorize(ctx context.Context, slug string, op access.Operation) (collections.Collection, string, query.Where, error) {
	c, ok := s.collections.Get(slug)
	if !ok {
		return c, "", query.Where{}, fmt.Errorf("%w: %s", ErrUnknownCollection, slug)
	}

	tenantID, ok := resolver.TenantIDFromContext(ctx)
	if !ok {
		return c, "", query.Where{}, query.ErrMissingTenant
	}

	p := access.PrincipalFromContext(ctx)

	d := access.Decide(p, op, c, tenantID)
	if d.Allowed {
		return c, tenantID, d.Constraint, nil
	}

	if d.Reason == access.ReasonUnauthenticated {
		return c, "", query.Where{}, ErrUnauthenticated
	}

	userID := ""
	if p.Authenticated() {
		userID = p.UserID
	}
	s.logger.Security().AuthzFailure(userID, fmt.Sprintf("%s:%s:%s", tenantID, slug, op))

	return c, "", query.Where{}, ErrForbidden
}

func (s *Service) Find(ctx context.Context, collection string, params url.Values) (*types.Page, error) {
	ctx, span := s.tracer.Start(ctx, "content.Service.Find")
	defer span.End()

	_, tenantID, constraint, err := s.authorize(ctx, collection, access.Read)
	if err != nil {
		return nil, err
	}

	where, err := query.Parse(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	limit, err := uintParam(params, "limit", defaultLimit)
	if err != nil {
		return nil, err
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	page, err := uintParam(params, "page", 1)
	if err != nil {
		return nil, err
	}

	if _, err := db.Offset(page, limit); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	sort := params.Get("sort")
	if sort == "" {
		sort = query.DefaultSort
	}

	return s.storage.FindDocuments(ctx, tenantID, collection, query.And(where, constraint), sort, limit, page)
}

func (s *Service) Get(ctx context.Context, collection, id string) (*types.Document, error) {
	ctx, span := s.tracer.Start(ctx, "content.Service.Get")
	defer span.End()

	_, tenantID, constraint, err := s.authorize(ctx, collection, access.Read)
	if err != nil {
		return nil, err
	}

	return s.storage.GetDocument(ctx, tenantID, collection, id, constraint)
}

func (s *Service) Create(ctx context.Context, collection string, input *DocumentInput) (*types.Document, error) {
	ctx, span := s.tracer.Start(ctx, "content.Service.Create")
	defer span.End()

	c, tenantID, _, err := s.authorize(ctx, collection, access.Create)
	if err != nil {
		return nil, err
	}

	if err := s.check(input); err != nil {
		return nil, err
	}

	d := &types.Document{
		Collection: collection,
		TenantID:   tenantID,
		Status:     types.StatusPublished,
		Data:       input.Data,
	}

	if p := access.PrincipalFromContext(ctx); p.Authenticated() {
		d.OwnerID = p.UserID
	}

	if c.Drafts {
		d.Status = types.StatusDraft
		if input.Status != nil {
			d.Status = *input.Status
		}
	}

	if input.Slug != nil {
		d.Slug = *input.Slug
	}

	if input.Title != nil {
		d.Title = *input.Title
	}

	return s.storage.CreateDocument(ctx, d)
}

func (s *Service) Update(ctx context.Context, collection, id string, input *DocumentInput) (*types.Document, error) {
	ctx, span := s.tracer.Start(ctx, "content.Service.Update")
	defer span.End()

	c, tenantID, constraint, err := s.authorize(ctx, collection, access.Update)
	if err != nil {
		return nil, err
	}

	if err := s.check(input); err != nil {
		return nil, err
	}

	patch := &types.DocumentPatch{
		Slug:  input.Slug,
		Title: input.Title,
		Data:  input.Data,
	}

	if c.Drafts {
		patch.Status = input.Status
	}

	return s.storage.UpdateDocument(ctx, tenantID, collection, id, constraint, patch)
}

func (s *Service) Delete(ctx context.Context, collection, id string) error {
	ctx, span := s.tracer.Start(ctx, "content.Service.Delete")
	defer span.End()

	_, tenantID, constraint, err := s.authorize(ctx, collection, access.Delete)
	if err != nil {
		return err
	}

	return s.storage.DeleteDocument(ctx, tenantID, collection, id, constraint)
}

func (s *Service) check(input *DocumentInput) error {
	if input == nil {
		return fmt.Errorf("%w: empty body", ErrInvalidInput)
	}

	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if data := bytes.TrimSpace(input.Data); len(data) > 0 && data[0] != '{' {
		return fmt.Errorf("%w: data must be an object", ErrInvalidInput)
	}

	return nil
}

func uintParam(params url.Values, name string, fallback uint64) (uint64, error) {
	v := params.Get(name)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrInvalidInput, name)
	}

	return n, nil
}

func NewService(storage StorageInterface, registry *collections.Registry, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	s := new(Service)
	s.storage = storage
	s.collections = registry
	s.validate = validator.New(validator.WithRequiredStructEnabled())

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
