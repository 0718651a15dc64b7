// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package tenant administers tenants, their domain mappings and their members.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/canonical/tenant-sites/internal/access"
	"github.com/canonical/tenant-sites/internal/authorization"
	"github.com/canonical/tenant-sites/internal/db"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/storage"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/internal/types"
	"github.com/canonical/tenant-sites/pkg/resolver"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface
	authz   AuthzInterface
	kratos  KratosClientInterface
	cache   ResolverCacheInterface

	invitationLifetime string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) CreateTenant(ctx context.Context, in *CreateTenantRequest) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.CreateTenant")
	defer span.End()

	t := &types.Tenant{
		Name:        in.Name,
		Slug:        strings.ToLower(in.Slug),
		AgencyOwner: in.AgencyOwner,
		Enabled:     true,
	}

	created, err := s.storage.CreateTenant(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.audit(ctx, "create_tenant", created.ID)

	// a cached miss on the slug would hide the new tenant from the subdomain lookup
	s.invalidateTenants(ctx, created)

	return created, nil
}

func (s *Service) GetTenant(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.GetTenant")
	defer span.End()

	return s.storage.GetTenantByID(ctx, id)
}

func (s *Service) ListTenants(ctx context.Context) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListTenants")
	defer span.End()

	tenants, err := s.storage.ListTenants(ctx)
	if err != nil {
		return nil, err
	}

	return tenants, nil
}

func (s *Service) ListMyTenants(ctx context.Context, userID string) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListMyTenants")
	defer span.End()

	return s.storage.ListTenantsByUserID(ctx, userID)
}

func (s *Service) UpdateTenant(ctx context.Context, id string, in *UpdateTenantRequest) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.UpdateTenant")
	defer span.End()

	before, err := s.storage.GetTenantByID(ctx, id)
	if err != nil {
		return nil, err
	}

	t := &types.Tenant{ID: id}
	paths := make([]string, 0, 4)

	if in.Name != nil {
		t.Name = *in.Name
		paths = append(paths, "name")
	}
	if in.Slug != nil {
		t.Slug = strings.ToLower(*in.Slug)
		paths = append(paths, "slug")
	}
	if in.Enabled != nil {
		t.Enabled = *in.Enabled
		paths = append(paths, "enabled")
	}
	if in.AgencyOwner != nil {
		t.AgencyOwner = *in.AgencyOwner
		paths = append(paths, "agency_owner")
	}

	if err := s.storage.UpdateTenant(ctx, t, paths); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	updated, err := s.storage.GetTenantByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get updated tenant: %w", err)
	}

	s.audit(ctx, "update_tenant", id)
	s.invalidateTenants(ctx, before, updated)

	return updated, nil
}

func (s *Service) DeleteTenant(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.DeleteTenant")
	defer span.End()

	t, err := s.storage.GetTenantByID(ctx, id)
	if err != nil {
		return err
	}

	domains, err := s.storage.ListDomains(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list tenant domains: %w", err)
	}

	if err := s.storage.DeleteTenant(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tenant from storage: %w", err)
	}

	if err := s.authz.DeleteTenant(ctx, id); err != nil {
		// storage is the source of truth, stale tuples only grant access to a missing tenant
		s.logger.Errorf("failed to delete tenant from authz: %v", err)
	}

	s.audit(ctx, "delete_tenant", id)
	s.invalidateTenants(ctx, t)
	s.invalidateHosts(ctx, hostnames(domains...)...)

	return nil
}

func (s *Service) CreateDomain(ctx context.Context, in *CreateDomainRequest) (*types.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.CreateDomain")
	defer span.End()

	hostname := resolver.NormalizeHost(in.Hostname)
	if hostname == "" {
		return nil, fmt.Errorf("%w: hostname", ErrInvalidInput)
	}

	d := &types.Domain{
		Hostname: hostname,
		TenantID: in.TenantID,
		Active:   true,
		Features: in.Features,
	}
	if in.Active != nil {
		d.Active = *in.Active
	}
	if d.Features == nil {
		d.Features = map[string]bool{}
	}

	created, err := s.storage.CreateDomain(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("failed to create domain: %w", err)
	}

	s.audit(ctx, "create_domain", created.Hostname)
	s.invalidateHosts(ctx, created.Hostname)

	return created, nil
}

func (s *Service) ListDomains(ctx context.Context, tenantID string) ([]*types.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListDomains")
	defer span.End()

	return s.storage.ListDomains(ctx, tenantID)
}

func (s *Service) UpdateDomain(ctx context.Context, id string, in *UpdateDomainRequest) (*types.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.UpdateDomain")
	defer span.End()

	before, err := s.storage.GetDomain(ctx, id)
	if err != nil {
		return nil, err
	}

	d := &types.Domain{ID: id}
	paths := make([]string, 0, 4)

	if in.Hostname != nil {
		if d.Hostname = resolver.NormalizeHost(*in.Hostname); d.Hostname == "" {
			return nil, fmt.Errorf("%w: hostname", ErrInvalidInput)
		}
		paths = append(paths, "hostname")
	}
	if in.TenantID != nil {
		d.TenantID = *in.TenantID
		paths = append(paths, "tenant_id")
	}
	if in.Active != nil {
		d.Active = *in.Active
		paths = append(paths, "active")
	}
	if in.Features != nil {
		d.Features = in.Features
		paths = append(paths, "features")
	}

	if err := s.storage.UpdateDomain(ctx, d, paths); err != nil {
		return nil, fmt.Errorf("failed to update domain: %w", err)
	}

	updated, err := s.storage.GetDomain(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get updated domain: %w", err)
	}

	s.audit(ctx, "update_domain", updated.Hostname)
	s.invalidateHosts(ctx, before.Hostname, updated.Hostname)

	return updated, nil
}

func (s *Service) DeleteDomain(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.DeleteDomain")
	defer span.End()

	d, err := s.storage.GetDomain(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteDomain(ctx, id); err != nil {
		return fmt.Errorf("failed to delete domain: %w", err)
	}

	s.audit(ctx, "delete_domain", d.Hostname)
	s.invalidateHosts(ctx, d.Hostname)

	return nil
}

// CanManageMembers lets super admins through, then callers holding can_edit
// on the tenant in OpenFGA, then owners and admins of the membership table.
func (s *Service) CanManageMembers(ctx context.Context, tenantID string) error {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.CanManageMembers")
	defer span.End()

	p := access.PrincipalFromContext(ctx)
	if !p.Authenticated() {
		return ErrUnauthenticated
	}

	if p.SuperAdmin {
		return nil
	}

	allowed, err := s.authz.CheckTenantAccess(ctx, tenantID, p.UserID, authorization.CAN_EDIT_PERMISSION)
	if err != nil {
		s.logger.Warnf("authorization check failed, falling back to memberships: %v", err)
	}
	if allowed {
		return nil
	}

	m, err := s.storage.GetMembership(ctx, tenantID, p.UserID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to get membership: %w", err)
	}

	if m != nil && (m.Role == types.RoleOwner || m.Role == types.RoleAdmin) {
		return nil
	}

	s.logger.Security().AuthzFailure(p.UserID, authorization.TenantTuple(tenantID))

	return ErrForbidden
}

func (s *Service) ListMembers(ctx context.Context, tenantID string) ([]*types.TenantUser, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListMembers")
	defer span.End()

	members, err := s.storage.ListMembersByTenantID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	users := make([]*types.TenantUser, 0, len(members))
	for _, m := range members {
		users = append(users, &types.TenantUser{
			UserID: m.KratosIdentityID,
			Email:  s.email(ctx, m.KratosIdentityID),
			Role:   m.Role,
		})
	}

	return users, nil
}

// ProvisionMember adds the identity owning email to the tenant, creating the
// identity when Kratos does not know it.
func (s *Service) ProvisionMember(ctx context.Context, tenantID, email, role string) (*types.TenantUser, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ProvisionMember")
	defer span.End()

	identityID, err := s.identity(ctx, email)
	if err != nil {
		return nil, err
	}

	if _, err := s.storage.AddMember(ctx, tenantID, identityID, role); err != nil {
		return nil, fmt.Errorf("failed to add member to storage: %w", err)
	}

	if err := s.authz.AssignRole(ctx, tenantID, identityID, role); err != nil {
		return nil, fmt.Errorf("failed to assign role in authz: %w", err)
	}

	s.audit(ctx, "provision_member", tenantID+"/"+identityID)

	return &types.TenantUser{UserID: identityID, Email: email, Role: role}, nil
}

// InviteMember provisions the member and returns a recovery link and code
// the invitee uses to set their credentials. Inviting an existing member
// issues a fresh link.
func (s *Service) InviteMember(ctx context.Context, tenantID, email, role string) (string, string, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.InviteMember")
	defer span.End()

	identityID, err := s.identity(ctx, email)
	if err != nil {
		return "", "", err
	}

	if _, err := s.storage.AddMember(ctx, tenantID, identityID, role); err != nil {
		if !errors.Is(err, storage.ErrDuplicateKey) {
			return "", "", fmt.Errorf("failed to add member: %w", err)
		}
	} else if err := s.authz.AssignRole(ctx, tenantID, identityID, role); err != nil {
		return "", "", fmt.Errorf("failed to assign role in authz: %w", err)
	}

	link, code, err := s.kratos.CreateRecoveryLink(ctx, identityID, s.invitationLifetime)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate invitation link: %w", err)
	}

	s.audit(ctx, "invite_member", tenantID+"/"+identityID)

	return link, code, nil
}

func (s *Service) UpdateMember(ctx context.Context, tenantID, userID, role string) (*types.TenantUser, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.UpdateMember")
	defer span.End()

	current, err := s.storage.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if current.Role != role {
		if err := s.authz.ChangeRole(ctx, tenantID, userID, current.Role, role); err != nil {
			return nil, fmt.Errorf("failed to change role in authz: %w", err)
		}

		if err := s.storage.UpdateMember(ctx, tenantID, userID, role); err != nil {
			return nil, fmt.Errorf("failed to update member: %w", err)
		}

		s.audit(ctx, "update_member", tenantID+"/"+userID)
	}

	return &types.TenantUser{UserID: userID, Email: s.email(ctx, userID), Role: role}, nil
}

func (s *Service) RemoveMember(ctx context.Context, tenantID, userID string) error {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.RemoveMember")
	defer span.End()

	current, err := s.storage.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return err
	}

	if err := s.storage.RemoveMember(ctx, tenantID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	if err := s.authz.RemoveRole(ctx, tenantID, userID, current.Role); err != nil {
		s.logger.Errorf("failed to remove role from authz: %v", err)
	}

	s.audit(ctx, "remove_member", tenantID+"/"+userID)

	return nil
}

func (s *Service) identity(ctx context.Context, email string) (string, error) {
	identityID, err := s.kratos.GetIdentityIDByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to look up identity: %w", err)
	}

	if identityID != "" {
		return identityID, nil
	}

	s.logger.Infof("creating identity for %s", email)

	identityID, err = s.kratos.CreateIdentity(ctx, email, "")
	if err != nil {
		return "", fmt.Errorf("failed to create identity: %w", err)
	}

	return identityID, nil
}

// email returns "unknown" for members Kratos no longer knows.
func (s *Service) email(ctx context.Context, identityID string) string {
	i, err := s.kratos.GetIdentity(ctx, identityID)
	if err != nil {
		s.logger.Warn("failed to get identity for user", "user_id", identityID, "err", err)
		return "unknown"
	}
	return i.Email
}

func (s *Service) audit(ctx context.Context, action, object string) {
	actor := ""
	if p := access.PrincipalFromContext(ctx); p.Authenticated() {
		actor = p.UserID
	}
	s.logger.Security().AdminAction(actor, action, object)
}

// invalidateTenants drops the cached resolutions of tenants once the request
// transaction commits, a reload before that would cache the old rows.
func (s *Service) invalidateTenants(ctx context.Context, tenants ...*types.Tenant) {
	ctx = context.WithoutCancel(ctx)

	db.AfterCommit(ctx, func() {
		if err := s.cache.InvalidateTenant(ctx, tenants...); err != nil {
			s.logger.Errorf("failed to invalidate tenant cache: %v", err)
		}
	})
}

func (s *Service) invalidateHosts(ctx context.Context, hosts ...string) {
	if len(hosts) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)

	db.AfterCommit(ctx, func() {
		if err := s.cache.Invalidate(ctx, hosts...); err != nil {
			s.logger.Errorf("failed to invalidate domain cache: %v", err)
		}
	})
}

func hostnames(domains ...*types.Domain) []string {
	hosts := make([]string, 0, len(domains))
	for _, d := range domains {
		hosts = append(hosts, d.Hostname)
	}
	return hosts
}

func NewService(
	storage StorageInterface,
	authz AuthzInterface,
	kratos KratosClientInterface,
	cache ResolverCacheInterface,
	invitationLifetime string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:            storage,
		authz:              authz,
		kratos:             kratos,
		cache:              cache,
		invitationLifetime: invitationLifetime,
		tracer:             tracer,
		monitor:            monitor,
		logger:             logger,
	}
}
