// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/canonical/tenant-sites/internal/authorization"
	"github.com/canonical/tenant-sites/internal/cache"
	"github.com/canonical/tenant-sites/internal/collections"
	"github.com/canonical/tenant-sites/internal/config"
	"github.com/canonical/tenant-sites/internal/db"
	"github.com/canonical/tenant-sites/internal/identity"
	"github.com/canonical/tenant-sites/internal/kratos"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/monitoring/prometheus"
	"github.com/canonical/tenant-sites/internal/openfga"
	"github.com/canonical/tenant-sites/internal/storage"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/pkg/authentication"
	"github.com/canonical/tenant-sites/pkg/content"
	"github.com/canonical/tenant-sites/pkg/resolver"
	"github.com/canonical/tenant-sites/pkg/site"
	"github.com/canonical/tenant-sites/pkg/tenant"
	"github.com/canonical/tenant-sites/pkg/web"
	"github.com/canonical/tenant-sites/pkg/webhooks"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	RunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		return serve(envFile)
	},
}

func init() {
	serveCmd.Flags().String("env-file", "", "Load environment variables from a dotenv file before starting")

	rootCmd.AddCommand(serveCmd)
}

func serve(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return fmt.Errorf("issues with environment sourcing: %w", err)
	}

	logger := logging.NewLogger(specs.LogLevel)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("tenant-sites", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbClient, err := db.NewDBClient(
		db.Config{
			DSN:              specs.DSN,
			MaxConns:         specs.DBMaxConns,
			MinConns:         specs.DBMinConns,
			MaxConnLifetime:  specs.DBMaxConnLifetime,
			MaxConnIdleTime:  specs.DBMaxConnIdleTime,
			TracingEnabled:   specs.TracingEnabled,
			RowLevelSecurity: specs.RLSEnforce,
		},
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create database client: %w", err)
	}
	defer dbClient.Close()

	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	var redisClient *redis.Client
	if specs.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     specs.RedisAddr,
			Password: specs.RedisPassword,
			DB:       specs.RedisDB,
		})
		defer redisClient.Close()
	}

	domainCache := newCache(redisClient, specs, tracer, logger)

	tenantResolver := resolver.NewResolver(
		s,
		domainCache,
		resolver.Config{
			DefaultTenantID: specs.DefaultTenantID,
			DevFallback:     specs.DevTenantFallback,
			CacheTTL:        specs.DomainCacheTTL,
		},
		tracer,
		monitor,
		logger,
	)
	cookies := resolver.NewCookieSigner(specs.TenantCookieName, []byte(specs.SecretKey), specs.TenantCookieTTL)

	authorizer, err := newAuthorizer(specs, tracer, monitor, logger)
	if err != nil {
		return err
	}

	verifier, err := newVerifier(specs, tracer, monitor, logger)
	if err != nil {
		return err
	}

	kratosClient := kratos.NewClient(specs.KratosAdminURL, http.DefaultClient, tracer, monitor, logger)

	rateLimit, err := newRateLimit(specs.RateLimit, redisClient, logger)
	if err != nil {
		return err
	}

	mdw := web.Middlewares{
		RateLimit:      rateLimit,
		Resolver:       resolver.NewMiddleware(tenantResolver, cookies, tracer, monitor, logger),
		Authentication: authentication.NewMiddleware(verifier, tracer, monitor, logger),
		Identity: identity.NewMiddleware(
			s,
			resolver.TenantIDFromContext,
			specs.SuperAdmins,
			!specs.AuthenticationEnabled && specs.TrustIdentityHeader,
			tracer,
			monitor,
			logger,
		),
	}

	contentService := content.NewService(s, collections.Default(), tracer, monitor, logger)
	siteService := site.NewService(s, tracer, monitor, logger)
	tenantService := tenant.NewService(s, authorizer, kratosClient, tenantResolver, specs.InvitationLifetime, tracer, monitor, logger)
	webhookService := webhooks.NewService(s, authorizer, tenantResolver, tracer, monitor, logger)

	apis := web.APIs{
		// the site routes go first, /api/{collection} must not shadow them
		Site: []web.APIInterface{
			site.NewAPI(siteService, cookies, tracer, monitor, logger),
			content.NewAPI(contentService, tracer, monitor, logger),
		},
		Admin: []web.APIInterface{tenant.NewAPI(tenantService, tracer, monitor, logger)},
		Hooks: []web.APIInterface{webhooks.NewAPI(webhookService, tracer, monitor, logger)},
	}

	origins := specs.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{specs.ServerURL}
	}

	router := web.NewRouter(apis, mdw, dbClient, origins, tracer, monitor, logger)

	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}

// newCache picks redis when a client is configured, replicas then share
// resolutions and invalidations.
func newCache(client *redis.Client, specs *config.EnvSpec, tracer tracing.TracingInterface, logger logging.LoggerInterface) cache.CacheInterface {
	if client == nil {
		logger.Info("Using in-memory domain cache")
		return cache.NewMemory(specs.DomainCacheTTL)
	}

	logger.Infof("Using redis domain cache at %s", specs.RedisAddr)

	return cache.NewRedis(client, "tenant-sites:", tracer, logger)
}

func newRateLimit(rate string, client *redis.Client, logger logging.LoggerInterface) (func(http.Handler) http.Handler, error) {
	if rate == "" {
		return nil, nil
	}

	logger.Infof("Rate limiting the site API to %s", rate)

	return web.NewRateLimit(rate, client)
}

func newAuthorizer(specs *config.EnvSpec, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*authorization.Authorizer, error) {
	if !specs.AuthorizationEnabled {
		logger.Info("Using noop authorizer")
		return authorization.NewAuthorizer(openfga.NewNoopClient(tracer, monitor, logger), tracer, monitor, logger), nil
	}

	ofga := openfga.NewClient(
		openfga.NewConfig(
			specs.OpenfgaApiScheme,
			specs.OpenfgaApiHost,
			specs.OpenfgaStoreId,
			specs.OpenfgaApiToken,
			specs.OpenfgaModelId,
			specs.Debug,
			tracer,
			monitor,
			logger,
		),
	)
	authorizer := authorization.NewAuthorizer(ofga, tracer, monitor, logger)

	logger.Info("Authorization is enabled")
	if err := authorizer.ValidateModel(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid authorization model provided: %w", err)
	}

	return authorizer, nil
}

func newVerifier(specs *config.EnvSpec, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (authentication.TokenVerifierInterface, error) {
	if !specs.AuthenticationEnabled {
		logger.Info("Authentication is disabled")
		return authentication.NewNoopVerifier(), nil
	}

	verifier, err := authentication.NewJWTAuthenticator(
		context.Background(),
		specs.OIDCIssuer,
		specs.OIDCJWKSURL,
		specs.OIDCAllowedSubjects,
		specs.OIDCRequiredScope,
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	return verifier, nil
}
