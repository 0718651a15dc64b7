// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package resolver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCookie = errors.New("invalid tenant cookie")

// cookieClaims marks with Switched the cookies set by an explicit tenant
// switch, only those may take precedence over the domain registry.
type cookieClaims struct {
	Tenant   string `json:"tenant"`
	Switched bool   `json:"switched,omitempty"`
	jwt.RegisteredClaims
}

// CookieTenant is the verified content of a tenant cookie.
type CookieTenant struct {
	TenantID string
	Switched bool
}

// CookieSigner issues and verifies the tenant cookie, an HS256 token bound
// to the host it was issued for.
type CookieSigner struct {
	name string
	key  []byte
	ttl  time.Duration

	now func() time.Time
}

func (c *CookieSigner) Name() string {
	return c.name
}

func (c *CookieSigner) Issue(tenantID, host string, switched bool) (string, error) {
	now := c.now()

	claims := cookieClaims{
		Tenant:   tenantID,
		Switched: switched,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{NormalizeHost(host)},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Parse returns the tenant of a cookie value issued for host.
func (c *CookieSigner) Parse(value, host string) (CookieTenant, error) {
	claims := new(cookieClaims)

	_, err := jwt.ParseWithClaims(
		value,
		claims,
		func(*jwt.Token) (any, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(NormalizeHost(host)),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return CookieTenant{}, fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}

	if claims.Tenant == "" {
		return CookieTenant{}, fmt.Errorf("%w: no tenant", ErrInvalidCookie)
	}

	return CookieTenant{TenantID: claims.Tenant, Switched: claims.Switched}, nil
}

// FromRequest returns the tenant of the request cookie, zero when there is
// none or it does not verify.
func (c *CookieSigner) FromRequest(r *http.Request) CookieTenant {
	ck, err := r.Cookie(c.name)
	if err != nil || ck.Value == "" {
		return CookieTenant{}
	}

	tenant, err := c.Parse(ck.Value, r.Host)
	if err != nil {
		return CookieTenant{}
	}

	return tenant
}

// SetCookie writes a fresh tenant cookie for the request host, it tells the
// client which tenant the host resolved to.
func (c *CookieSigner) SetCookie(w http.ResponseWriter, r *http.Request, tenantID string) error {
	return c.set(w, r, tenantID, false)
}

// SetSwitchCookie writes a cookie that selects tenantID on the request host
// until it expires, whatever the domain registry says.
func (c *CookieSigner) SetSwitchCookie(w http.ResponseWriter, r *http.Request, tenantID string) error {
	return c.set(w, r, tenantID, true)
}

func (c *CookieSigner) set(w http.ResponseWriter, r *http.Request, tenantID string, switched bool) error {
	value, err := c.Issue(tenantID, r.Host, switched)
	if err != nil {
		return err
	}

	http.SetCookie(
		w,
		&http.Cookie{
			Name:     c.name,
			Value:    value,
			Path:     "/",
			MaxAge:   int(c.ttl.Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		},
	)

	return nil
}

func NewCookieSigner(name string, key []byte, ttl time.Duration) *CookieSigner {
	c := new(CookieSigner)
	c.name = name
	c.key = key
	c.ttl = ttl
	c.now = time.Now

	return c
}
