// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/ory/hydra/v2/oauth2"

	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/storage"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/internal/types"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage  StorageInterface
	authz    AuthorizerInterface
	resolver ResolverInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	authz AuthorizerInterface,
	resolver ResolverInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:  storage,
		authz:    authz,
		resolver: resolver,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}

// HandleRegistration attaches a newly registered identity to the tenant
// serving the site it registered on, as a plain user. It returns the tenant
// id, empty when the identity carries no site.
func (s *Service) HandleRegistration(ctx context.Context, identity *KratosIdentity) (string, error) {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleRegistration")
	defer span.End()

	if identity == nil || identity.ID == "" {
		return "", ErrInvalidIdentity
	}

	s.logger.Debugf("handling registration for identity %s", identity.ID)

	if identity.Traits.Site == "" {
		s.logger.Infof("identity %s registered without a site, no tenant attached", identity.ID)
		return "", nil
	}

	res, err := s.resolver.Resolve(ctx, identity.Traits.Site, "")
	if err != nil {
		return "", fmt.Errorf("failed to resolve site %q: %w", identity.Traits.Site, err)
	}

	// Kratos retries hooks, a second delivery finds the membership in place
	if _, err := s.storage.AddMember(ctx, res.TenantID, identity.ID, types.RoleUser); err != nil {
		if !errors.Is(err, storage.ErrDuplicateKey) {
			return "", fmt.Errorf("failed to add member: %w", err)
		}
	}

	if err := s.authz.AssignRole(ctx, res.TenantID, identity.ID, types.RoleUser); err != nil {
		return "", fmt.Errorf("failed to assign role in authz: %w", err)
	}

	s.logger.Infof("attached identity %s to tenant %s", identity.ID, res.TenantID)

	return res.TenantID, nil
}

// HandleTokenHook adds the enabled tenants of the token subject to the
// ID and access token claims.
func (s *Service) HandleTokenHook(ctx context.Context, req *oauth2.TokenHookRequest) (*TokenHookResponse, error) {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleTokenHook")
	defer span.End()

	if req == nil || req.Session == nil || req.Session.DefaultSession == nil || req.Session.DefaultSession.Subject == "" {
		return nil, ErrInvalidSession
	}

	subject := req.Session.DefaultSession.Subject
	s.logger.Debugf("handling token hook for subject %s", subject)

	tenants, err := s.storage.ListActiveTenantsByUserID(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	resp := &TokenHookResponse{
		Session: TokenHookSession{
			IDToken:     map[string]interface{}{},
			AccessToken: map[string]interface{}{},
		},
	}

	if len(tenants) == 0 {
		return resp, nil
	}

	ids := make([]string, 0, len(tenants))
	for _, t := range tenants {
		ids = append(ids, t.ID)
	}

	resp.Session.IDToken[TenantsClaim] = ids
	resp.Session.AccessToken[TenantsClaim] = ids

	return resp, nil
}
