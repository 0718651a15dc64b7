// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenant-sites/internal/types"
)

var tenantColumns = []string{"id", "name", "slug", "agency_owner", "created_at", "enabled"}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTenant(row scanner) (*types.Tenant, error) {
	var t types.Tenant
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.AgencyOwner, &t.CreatedAt, &t.Enabled); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Storage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTenant")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
	}

	tenant, err := scanTenant(
		s.db.Statement(ctx).
			Insert("tenants").
			Columns("id", "name", "slug", "agency_owner", "enabled").
			Values(id.String(), t.Name, t.Slug, t.AgencyOwner, t.Enabled).
			Suffix("RETURNING id, name, slug, agency_owner, created_at, enabled").
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapConstraintError(err, "insert tenant")
	}

	return tenant, nil
}

func (s *Storage) getTenant(ctx context.Context, where sq.Sqlizer) (*types.Tenant, error) {
	t, err := scanTenant(
		s.db.Statement(ctx).
			Select(tenantColumns...).
			From("tenants").
			Where(where).
			QueryRowContext(ctx),
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return t, nil
}

func (s *Storage) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByID")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	return s.getTenant(ctx, sq.Eq{"id": id})
}

func (s *Storage) GetTenantBySlug(ctx context.Context, slug string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantBySlug")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"slug": slug})
}

// GetAgencyOwnerTenant returns the tenant of the agency operating the deployment.
func (s *Storage) GetAgencyOwnerTenant(ctx context.Context) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetAgencyOwnerTenant")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"agency_owner": true})
}

func (s *Storage) listTenants(ctx context.Context, query sq.SelectBuilder) ([]*types.Tenant, error) {
	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*types.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tenants, nil
}

func (s *Storage) ListTenants(ctx context.Context) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTenants")
	defer span.End()

	return s.listTenants(ctx, s.db.Statement(ctx).
		Select(tenantColumns...).
		From("tenants").
		OrderBy("name"),
	)
}

func (s *Storage) ListActiveTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error) {
	return s.listTenantsByUserID(ctx, userID, false)
}

func (s *Storage) ListTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error) {
	return s.listTenantsByUserID(ctx, userID, true)
}

func (s *Storage) listTenantsByUserID(ctx context.Context, userID string, showDisabled bool) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTenantsByUserID")
	defer span.End()

	query := s.db.Statement(ctx).
		Select("t.id", "t.name", "t.slug", "t.agency_owner", "t.created_at", "t.enabled").
		From("tenants t").
		Join("memberships m ON t.id = m.tenant_id").
		Where(sq.Eq{"m.kratos_identity_id": userID}).
		OrderBy("t.name")

	if !showDisabled {
		query = query.Where(sq.Eq{"t.enabled": true})
	}

	return s.listTenants(ctx, query)
}

// UpdateTenant updates the fields named in paths, unknown paths are ignored.
func (s *Storage) UpdateTenant(ctx context.Context, tenant *types.Tenant, paths []string) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateTenant")
	defer span.End()

	updateMap := make(map[string]interface{})
	for _, p := range paths {
		switch p {
		case "name":
			updateMap["name"] = tenant.Name
		case "slug":
			updateMap["slug"] = tenant.Slug
		case "enabled":
			updateMap["enabled"] = tenant.Enabled
		case "agency_owner":
			updateMap["agency_owner"] = tenant.AgencyOwner
		}
	}

	if len(updateMap) == 0 {
		return nil
	}

	res, err := s.db.Statement(ctx).
		Update("tenants").
		SetMap(updateMap).
		Where(sq.Eq{"id": tenant.ID}).
		ExecContext(ctx)
	if err != nil {
		return wrapConstraintError(err, "update tenant")
	}

	return expectRows(res)
}

func (s *Storage) DeleteTenant(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteTenant")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("tenants").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}

	return expectRows(res)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectRows(res rowsAffecter) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
