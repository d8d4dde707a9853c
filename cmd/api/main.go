// Package main provides the entrypoint for the slanglate API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/slanglate/slanglate/internal/admission"
	"github.com/slanglate/slanglate/internal/analytics"
	"github.com/slanglate/slanglate/internal/api"
	"github.com/slanglate/slanglate/internal/api/middleware"
	"github.com/slanglate/slanglate/internal/database"
	"github.com/slanglate/slanglate/internal/device"
	"github.com/slanglate/slanglate/internal/policy"
	"github.com/slanglate/slanglate/internal/provider/resilience"
	"github.com/slanglate/slanglate/internal/purchase"
	"github.com/slanglate/slanglate/internal/quota"
	"github.com/slanglate/slanglate/internal/telemetry"
	"github.com/slanglate/slanglate/internal/translate"
	"github.com/slanglate/slanglate/internal/translate/openai"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "slanglate-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting slanglate API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Device identity and entitlement storage
	devices := device.NewService(device.ServiceConfig{
		Repository: device.NewPostgresRepository(pool),
	})

	// Policy table (daily limits, ad cadence) with short-TTL caching
	policyService := policy.NewService(policy.ServiceConfig{
		Repository: policy.NewPostgresRepository(pool),
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})

	// Usage ledger and admission decider. The reference timezone for the
	// daily buckets is fixed at startup, never taken from callers.
	usageLocation := time.UTC
	if tz := os.Getenv("USAGE_TIMEZONE"); tz != "" {
		loc, tzErr := time.LoadLocation(tz)
		if tzErr != nil {
			log.Fatal().Err(tzErr).Str("timezone", tz).Msg("invalid USAGE_TIMEZONE")
		}
		usageLocation = loc
	}

	ledger := quota.NewPostgresLedger(pool)
	decider := admission.NewDecider(admission.DeciderConfig{
		Devices:  devices,
		Ledger:   ledger,
		Policy:   policyService,
		Logger:   log,
		Location: usageLocation,
	})
	log.Info().Str("usage_timezone", usageLocation.String()).Msg("admission decider initialized")

	// Translation provider behind the resilient client
	providers := resilience.NewRegistry()

	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set - translation requests will fail")
	}
	translator := translate.NewService(translate.ServiceConfig{
		Provider: openai.NewClient(openai.ClientConfig{
			APIKey:   openaiKey,
			BaseURL:  os.Getenv("OPENAI_BASE_URL"),
			Model:    os.Getenv("OPENAI_MODEL"),
			Registry: providers,
			Logger:   log,
		}),
		Logger: log,
	})
	log.Info().Msg("translation service initialized")

	// Purchase verification and premium upgrades
	bundleID := os.Getenv("APP_BUNDLE_ID")
	if bundleID == "" {
		bundleID = "com.slanglate.app"
	}
	productIDs := splitList(os.Getenv("PREMIUM_PRODUCT_IDS"))
	if len(productIDs) == 0 {
		productIDs = []string{"com.slanglate.premium.monthly"}
	}
	allowUnverified := os.Getenv("ALLOW_UNVERIFIED_PURCHASES") == "true"
	if allowUnverified {
		log.Warn().Msg("purchase signature verification disabled - not secure for production")
	}

	purchases := purchase.NewService(purchase.ServiceConfig{
		Verifier: purchase.NewStoreKitVerifier(purchase.StoreKitConfig{
			BundleID:        bundleID,
			ProductIDs:      productIDs,
			AllowUnverified: allowUnverified,
		}),
		Repository: purchase.NewPostgresRepository(pool),
		Devices:    devices,
		Logger:     log,
	})
	log.Info().Str("bundle_id", bundleID).Msg("purchase service initialized")

	// Optional analytics pipeline
	var publisher analytics.Publisher = analytics.NopPublisher{}
	if projectID := os.Getenv("PUBSUB_PROJECT_ID"); projectID != "" {
		topic := os.Getenv("PUBSUB_TOPIC")
		if topic == "" {
			topic = "slanglate-usage-events"
		}
		ps, psErr := analytics.NewPubSubPublisher(ctx, analytics.PubSubConfig{
			ProjectID: projectID,
			TopicName: topic,
			Logger:    log,
		})
		if psErr != nil {
			log.Fatal().Err(psErr).Msg("failed to initialize analytics publisher")
		}
		publisher = ps
		log.Info().Str("topic", topic).Msg("analytics publisher initialized")
	}
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close analytics publisher")
		}
	}()

	deviceAuthEnabled := os.Getenv("DEVICE_AUTH_ENABLED") != "false"
	if !deviceAuthEnabled {
		log.Warn().Msg("device auth disabled - all requests share the dev device token")
	}

	adminKey := os.Getenv("ADMIN_KEY")
	if adminKey == "" {
		log.Warn().Msg("ADMIN_KEY not set - admin endpoints are disabled")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Decider:     decider,
		Translator:  translator,
		Devices:     devices,
		Purchases:   purchases,
		Reporter:    ledger,
		Analytics:   publisher,
		DB:          pool,
		Providers:   providers,
		DeviceAuth:  middleware.DeviceAuthConfig{Enabled: deviceAuthEnabled},
		AdminKey:    adminKey,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
