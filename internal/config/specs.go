// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	KratosAdminURL string `envconfig:"kratos_admin_url" required:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`

	// ServerURL is the public base URL of the agency front end, the default CORS origin
	ServerURL string `envconfig:"server_url" default:"http://localhost:3000"`
	// CORSAllowedOrigins overrides ServerURL as the allowed origins, "*" reflects any origin
	CORSAllowedOrigins []string `envconfig:"cors_allowed_origins"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`
	RLSEnforce        bool          `envconfig:"rls_enforce" default:"false"`

	SecretKey string `envconfig:"secret_key" required:"true"`

	DefaultTenantID   string        `envconfig:"default_tenant_id"`
	DevTenantFallback bool          `envconfig:"dev_tenant_fallback" default:"true"`
	TenantCookieName  string        `envconfig:"tenant_cookie_name" default:"tenant"`
	TenantCookieTTL   time.Duration `envconfig:"tenant_cookie_ttl" default:"1h"`
	DomainCacheTTL    time.Duration `envconfig:"domain_cache_ttl" default:"5m"`

	RedisAddr     string `envconfig:"redis_addr"`
	RedisPassword string `envconfig:"redis_password"`
	RedisDB       int    `envconfig:"redis_db" default:"0"`

	// RateLimit caps site API requests per host and client, "300-M" style, empty disables it
	RateLimit string `envconfig:"rate_limit"`

	SuperAdmins []string `envconfig:"super_admins"`

	AuthenticationEnabled bool     `envconfig:"authentication_enabled" default:"false"`
	OIDCIssuer            string   `envconfig:"oidc_issuer"`
	OIDCJWKSURL           string   `envconfig:"oidc_jwks_url"`
	OIDCAllowedSubjects   []string `envconfig:"oidc_allowed_subjects"`
	OIDCRequiredScope     string   `envconfig:"oidc_required_scope"`

	AuthorizationEnabled bool   `envconfig:"authorization_enabled" default:"false"`
	OpenfgaApiScheme     string `envconfig:"openfga_api_scheme" default:""`
	OpenfgaApiHost       string `envconfig:"openfga_api_host"`
	OpenfgaApiToken      string `envconfig:"openfga_api_token"`
	OpenfgaStoreId       string `envconfig:"openfga_store_id"`
	OpenfgaModelId       string `envconfig:"openfga_authorization_model_id" default:""`

	InvitationLifetime string `envconfig:"invitation_lifetime" default:"24h"`
	// TrustIdentityHeader accepts the Kratos identity header from the proxy when authentication is off
	TrustIdentityHeader bool `envconfig:"trust_identity_header" default:"false"`
}
