// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/canonical/tenant-sites/internal/access"
	"github.com/canonical/tenant-sites/internal/http/types"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
)

type API struct {
	service  ServiceInterface
	validate *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/api/v0/me/tenants", a.listMyTenants)

	r.Route("/api/v0/admin", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(a.superAdmin)

			r.Get("/tenants", a.listTenants)
			r.Post("/tenants", a.createTenant)
			r.Get("/tenants/{id}", a.getTenant)
			r.Patch("/tenants/{id}", a.updateTenant)
			r.Delete("/tenants/{id}", a.deleteTenant)

			r.Get("/domains", a.listDomains)
			r.Post("/domains", a.createDomain)
			r.Patch("/domains/{id}", a.updateDomain)
			r.Delete("/domains/{id}", a.deleteDomain)
		})

		r.Group(func(r chi.Router) {
			r.Use(a.memberManager)

			r.Get("/tenants/{id}/members", a.listMembers)
			r.Post("/tenants/{id}/members", a.provisionMember)
			r.Post("/tenants/{id}/invitations", a.inviteMember)
			r.Patch("/tenants/{id}/members/{userID}", a.updateMember)
			r.Delete("/tenants/{id}/members/{userID}", a.removeMember)
		})
	})
}

func (a *API) superAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := access.PrincipalFromContext(r.Context())

		switch {
		case !p.Authenticated():
			a.writeError(w, ErrUnauthenticated)
		case !p.SuperAdmin:
			a.logger.Security().AuthzFailure(p.UserID, r.URL.Path)
			a.writeError(w, ErrForbidden)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (a *API) memberManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// group middlewares run after routing, the tenant param is set
		if err := a.service.CanManageMembers(r.Context(), chi.URLParam(r, "id")); err != nil {
			a.writeError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *API) listMyTenants(w http.ResponseWriter, r *http.Request) {
	p := access.PrincipalFromContext(r.Context())
	if !p.Authenticated() {
		a.writeError(w, ErrUnauthenticated)
		return
	}

	tenants, err := a.service.ListMyTenants(r.Context(), p.UserID)
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusOK, "list of tenants", tenants)
}

func (a *API) listTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := a.service.ListTenants(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusOK, "list of tenants", tenants)
}

func (a *API) createTenant(w http.ResponseWriter, r *http.Request) {
	req := new(CreateTenantRequest)
	if !a.decode(w, r, req) {
		return
	}

	t, err := a.service.CreateTenant(r.Context(), req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusCreated, "tenant created", t)
}

func (a *API) getTenant(w http.ResponseWriter, r *http.Request) {
	t, err := a.service.GetTenant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusOK, "tenant", t)
}

func (a *API) updateTenant(w http.ResponseWriter, r *http.Request) {
	req := new(UpdateTenantRequest)
	if !a.decode(w, r, req) {
		return
	}

	t, err := a.service.UpdateTenant(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusOK, "tenant updated", t)
}

func (a *API) deleteTenant(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteTenant(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusOK, "tenant deleted", nil)
}

func (a *API) listDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := a.service.ListDomains(r.Context(), r.URL.Query().Get("tenant_id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusOK, "list of domains", domains)
}

func (a *API) createDomain(w http.ResponseWriter, r *http.Request) {
	req := new(CreateDomainRequest)
	if !a.decode(w, r, req) {
		return
	}

	d, err := a.service.CreateDomain(r.Context(), req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusCreated, "domain created", d)
}

func (a *API) updateDomain(w http.ResponseWriter, r *http.Request) {
	req := new(UpdateDomainRequest)
	if !a.decode(w, r, req) {
		return
	}

	d, err := a.service.UpdateDomain(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusOK, "domain updated", d)
}

func (a *API) deleteDomain(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteDomain(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusOK, "domain deleted", nil)
}

func (a *API) listMembers(w http.ResponseWriter, r *http.Request) {
	users, err := a.service.ListMembers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusOK, "list of members", users)
}

func (a *API) provisionMember(w http.ResponseWriter, r *http.Request) {
	req := new(MemberRequest)
	if !a.decode(w, r, req) {
		return
	}

	user, err := a.service.ProvisionMember(r.Context(), chi.URLParam(r, "id"), req.Email, req.Role)
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusCreated, "member provisioned", user)
}

func (a *API) inviteMember(w http.ResponseWriter, r *http.Request) {
	req := new(MemberRequest)
	if !a.decode(w, r, req) {
		return
	}

	link, code, err := a.service.InviteMember(r.Context(), chi.URLParam(r, "id"), req.Email, req.Role)
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusCreated, "invited", InviteResponse{Link: link, Code: code})
}

func (a *API) updateMember(w http.ResponseWriter, r *http.Request) {
	req := new(UpdateMemberRequest)
	if !a.decode(w, r, req) {
		return
	}

	user, err := a.service.UpdateMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID"), req.Role)
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusOK, "member updated", user)
}

func (a *API) removeMember(w http.ResponseWriter, r *http.Request) {
	if err := a.service.RemoveMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID")); err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusOK, "member removed", nil)
}

// decode reads and validates a JSON body into v, answering 400 itself.
func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		types.WriteError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := a.validate.Struct(v); err != nil {
		types.WriteError(w, http.StatusBadRequest, err.Error())
		return false
	}

	return true
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		types.WriteError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, ErrForbidden):
		types.WriteError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrInvalidInput):
		types.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		if status := types.WriteErrorFrom(w, err); status == http.StatusInternalServerError {
			a.logger.Errorf("admin request failed: %v", err)
		}
	}
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)
	a.service = service
	a.validate = validator.New(validator.WithRequiredStructEnabled())

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
