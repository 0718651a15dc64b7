// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenant-sites/internal/types"
)

var domainColumns = []string{"id", "hostname", "tenant_id", "active", "features", "created_at"}

func scanDomain(row scanner) (*types.Domain, error) {
	var (
		d        types.Domain
		features []byte
	)

	if err := row.Scan(&d.ID, &d.Hostname, &d.TenantID, &d.Active, &features, &d.CreatedAt); err != nil {
		return nil, err
	}

	d.Features = map[string]bool{}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &d.Features); err != nil {
			return nil, fmt.Errorf("invalid features of domain %s: %w", d.ID, err)
		}
	}

	return &d, nil
}

func marshalFeatures(features map[string]bool) (string, error) {
	if features == nil {
		features = map[string]bool{}
	}

	b, err := json.Marshal(features)
	if err != nil {
		return "", fmt.Errorf("failed to encode features: %w", err)
	}

	return string(b), nil
}

func (s *Storage) CreateDomain(ctx context.Context, d *types.Domain) (*types.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateDomain")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate domain ID: %w", err)
	}

	features, err := marshalFeatures(d.Features)
	if err != nil {
		return nil, err
	}

	domain, err := scanDomain(
		s.db.Statement(ctx).
			Insert("domains").
			Columns("id", "hostname", "tenant_id", "active", "features").
			Values(id.String(), d.Hostname, d.TenantID, d.Active, features).
			Suffix("RETURNING id, hostname, tenant_id, active, features, created_at").
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapConstraintError(err, "insert domain")
	}

	return domain, nil
}

func (s *Storage) GetDomain(ctx context.Context, id string) (*types.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetDomain")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	return s.getDomain(ctx, sq.Eq{"id": id})
}

// GetActiveDomainByHostname looks up an already normalized hostname.
func (s *Storage) GetActiveDomainByHostname(ctx context.Context, hostname string) (*types.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetActiveDomainByHostname")
	defer span.End()

	return s.getDomain(ctx, sq.Eq{"hostname": hostname, "active": true})
}

func (s *Storage) getDomain(ctx context.Context, where sq.Sqlizer) (*types.Domain, error) {
	d, err := scanDomain(
		s.db.Statement(ctx).
			Select(domainColumns...).
			From("domains").
			Where(where).
			QueryRowContext(ctx),
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get domain: %w", err)
	}

	return d, nil
}

// ListDomains lists the domains of tenantID, or every domain when tenantID is empty.
func (s *Storage) ListDomains(ctx context.Context, tenantID string) ([]*types.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListDomains")
	defer span.End()

	query := s.db.Statement(ctx).
		Select(domainColumns...).
		From("domains").
		OrderBy("hostname")

	if tenantID != "" {
		query = query.Where(sq.Eq{"tenant_id": tenantID})
	}

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []*types.Domain
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return domains, nil
}

func (s *Storage) UpdateDomain(ctx context.Context, d *types.Domain, paths []string) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateDomain")
	defer span.End()

	updateMap := make(map[string]interface{})
	for _, p := range paths {
		switch p {
		case "hostname":
			updateMap["hostname"] = d.Hostname
		case "tenant_id":
			updateMap["tenant_id"] = d.TenantID
		case "active":
			updateMap["active"] = d.Active
		case "features":
			features, err := marshalFeatures(d.Features)
			if err != nil {
				return err
			}
			updateMap["features"] = features
		}
	}

	if len(updateMap) == 0 {
		return nil
	}

	res, err := s.db.Statement(ctx).
		Update("domains").
		SetMap(updateMap).
		Where(sq.Eq{"id": d.ID}).
		ExecContext(ctx)
	if err != nil {
		return wrapConstraintError(err, "update domain")
	}

	return expectRows(res)
}

func (s *Storage) DeleteDomain(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteDomain")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("domains").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete domain: %w", err)
	}

	return expectRows(res)
}
