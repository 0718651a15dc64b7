// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package content

import (
	"context"
	"net/url"

	"github.com/canonical/tenant-sites/internal/query"
	"github.com/canonical/tenant-sites/internal/types"
)

type ServiceInterface interface {
	Find(ctx context.Context, collection string, params url.Values) (*types.Page, error)
	Get(ctx context.Context, collection, id string) (*types.Document, error)
	Create(ctx context.Context, collection string, input *DocumentInput) (*types.Document, error)
	Update(ctx context.Context, collection, id string, input *DocumentInput) (*types.Document, error)
	Delete(ctx context.Context, collection, id string) error
}

type StorageInterface interface {
	FindDocuments(ctx context.Context, tenantID, collection string, where query.Where, sort string, limit, page uint64) (*types.Page, error)
	GetDocument(ctx context.Context, tenantID, collection, id string, constraint query.Where) (*types.Document, error)
	CreateDocument(ctx context.Context, d *types.Document) (*types.Document, error)
	UpdateDocument(ctx context.Context, tenantID, collection, id string, constraint query.Where, patch *types.DocumentPatch) (*types.Document, error)
	DeleteDocument(ctx context.Context, tenantID, collection, id string, constraint query.Where) error
}
