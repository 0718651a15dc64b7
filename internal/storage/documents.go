// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenant-sites/internal/db"
	"github.com/canonical/tenant-sites/internal/query"
	"github.com/canonical/tenant-sites/internal/types"
)

var documentColumns = []string{"id", "collection", "tenant_id", "owner_id", "status", "slug", "title", "data", "created_at", "updated_at"}

const documentReturning = "RETURNING id, collection, tenant_id, owner_id, status, slug, title, data, created_at, updated_at"

func scanDocument(row scanner) (*types.Document, error) {
	var (
		d     types.Document
		owner sql.NullString
		data  []byte
	)

	if err := row.Scan(&d.ID, &d.Collection, &d.TenantID, &owner, &d.Status, &d.Slug, &d.Title, &data, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}

	d.OwnerID = owner.String
	d.Data = data

	return &d, nil
}

// scope returns the predicate every document statement runs with: the tenant,
// the collection and the caller supplied where clause, ANDed.
func scope(tenantID, collection string, where ...query.Where) (sq.Sqlizer, error) {
	scoped, err := query.ForTenant(
		query.And(append([]query.Where{query.Eq("collection", collection)}, where...)...),
		tenantID,
	)
	if err != nil {
		return nil, err
	}

	return query.ToSql(scoped)
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (s *Storage) FindDocuments(ctx context.Context, tenantID, collection string, where query.Where, sort string, limit, page uint64) (*types.Page, error) {
	ctx, span := s.tracer.Start(ctx, "storage.FindDocuments")
	defer span.End()

	cond, err := scope(tenantID, collection, where)
	if err != nil {
		return nil, err
	}

	orderBy, err := query.OrderBy(sort)
	if err != nil {
		return nil, err
	}

	if limit == 0 {
		limit = db.PageSize(0)
	}
	if page == 0 {
		page = 1
	}

	offset, err := db.Offset(page, limit)
	if err != nil {
		return nil, err
	}

	ctx = db.ContextWithTenant(ctx, tenantID)

	var total uint64
	err = s.db.Statement(ctx).
		Select("count(*)").
		From("documents").
		Where(cond).
		QueryRowContext(ctx).
		Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	rows, err := s.db.Statement(ctx).
		Select(documentColumns...).
		From("documents").
		Where(cond).
		OrderBy(orderBy...).
		Limit(limit).
		Offset(offset).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*types.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	totalPages := (total + limit - 1) / limit

	return &types.Page{
		Docs:        docs,
		TotalDocs:   total,
		Limit:       limit,
		Page:        page,
		TotalPages:  totalPages,
		HasPrevPage: page > 1,
		HasNextPage: page < totalPages,
	}, nil
}

func (s *Storage) GetDocument(ctx context.Context, tenantID, collection, id string, constraint query.Where) (*types.Document, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetDocument")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	cond, err := scope(tenantID, collection, query.Eq("id", id), constraint)
	if err != nil {
		return nil, err
	}

	ctx = db.ContextWithTenant(ctx, tenantID)

	d, err := scanDocument(
		s.db.Statement(ctx).
			Select(documentColumns...).
			From("documents").
			Where(cond).
			QueryRowContext(ctx),
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return d, nil
}

// CreateDocument inserts d under d.TenantID, which must be set.
func (s *Storage) CreateDocument(ctx context.Context, d *types.Document) (*types.Document, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateDocument")
	defer span.End()

	if d.TenantID == "" {
		return nil, query.ErrMissingTenant
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document ID: %w", err)
	}

	data := string(d.Data)
	if data == "" {
		data = "{}"
	}

	ctx = db.ContextWithTenant(ctx, d.TenantID)

	doc, err := scanDocument(
		s.db.Statement(ctx).
			Insert("documents").
			Columns("id", "collection", "tenant_id", "owner_id", "status", "slug", "title", "data").
			Values(id.String(), d.Collection, d.TenantID, nullable(d.OwnerID), d.Status, d.Slug, d.Title, data).
			Suffix(documentReturning).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapConstraintError(err, "insert document")
	}

	return doc, nil
}

// UpdateDocument applies patch to the document when it matches the tenant,
// the collection and constraint, ErrNotFound otherwise.
func (s *Storage) UpdateDocument(ctx context.Context, tenantID, collection, id string, constraint query.Where, patch *types.DocumentPatch) (*types.Document, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateDocument")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	cond, err := scope(tenantID, collection, query.Eq("id", id), constraint)
	if err != nil {
		return nil, err
	}

	updateMap := map[string]interface{}{
		"updated_at": sq.Expr("now()"),
	}
	if patch.Status != nil {
		updateMap["status"] = *patch.Status
	}
	if patch.Slug != nil {
		updateMap["slug"] = *patch.Slug
	}
	if patch.Title != nil {
		updateMap["title"] = *patch.Title
	}
	if len(patch.Data) > 0 {
		updateMap["data"] = sq.Expr("data || ?::jsonb", string(patch.Data))
	}

	ctx = db.ContextWithTenant(ctx, tenantID)

	d, err := scanDocument(
		s.db.Statement(ctx).
			Update("documents").
			SetMap(updateMap).
			Where(cond).
			Suffix(documentReturning).
			QueryRowContext(ctx),
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, wrapConstraintError(err, "update document")
	}

	return d, nil
}

func (s *Storage) DeleteDocument(ctx context.Context, tenantID, collection, id string, constraint query.Where) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteDocument")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	cond, err := scope(tenantID, collection, query.Eq("id", id), constraint)
	if err != nil {
		return err
	}

	ctx = db.ContextWithTenant(ctx, tenantID)

	res, err := s.db.Statement(ctx).
		Delete("documents").
		Where(cond).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return expectRows(res)
}
