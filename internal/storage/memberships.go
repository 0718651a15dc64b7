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

func (s *Storage) AddMember(ctx context.Context, tenantID, userID, role string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.AddMember")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate membership ID: %w", err)
	}

	_, err = s.db.Statement(ctx).
		Insert("memberships").
		Columns("id", "tenant_id", "kratos_identity_id", "role").
		Values(id.String(), tenantID, userID, role).
		ExecContext(ctx)
	if err != nil {
		return "", wrapConstraintError(err, "add member")
	}

	return id.String(), nil
}

func (s *Storage) GetMembership(ctx context.Context, tenantID, userID string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetMembership")
	defer span.End()

	var m types.Membership
	err := s.db.Statement(ctx).
		Select("id", "tenant_id", "kratos_identity_id", "role", "created_at").
		From("memberships").
		Where(sq.Eq{"tenant_id": tenantID, "kratos_identity_id": userID}).
		QueryRowContext(ctx).
		Scan(&m.ID, &m.TenantID, &m.KratosIdentityID, &m.Role, &m.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return &m, nil
}

func (s *Storage) ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListMembersByTenantID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("id", "tenant_id", "kratos_identity_id", "role", "created_at").
		From("memberships").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*types.Membership
	for rows.Next() {
		var m types.Membership
		if err := rows.Scan(&m.ID, &m.TenantID, &m.KratosIdentityID, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return members, nil
}

func (s *Storage) UpdateMember(ctx context.Context, tenantID, userID, role string) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateMember")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("memberships").
		Set("role", role).
		Where(sq.Eq{
			"tenant_id":          tenantID,
			"kratos_identity_id": userID,
		}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}

	return expectRows(res)
}

func (s *Storage) RemoveMember(ctx context.Context, tenantID, userID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.RemoveMember")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("memberships").
		Where(sq.Eq{
			"tenant_id":          tenantID,
			"kratos_identity_id": userID,
		}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return expectRows(res)
}
