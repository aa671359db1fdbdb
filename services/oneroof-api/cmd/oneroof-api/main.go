package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/daddycoders/oneroof/libs/appwrite"
	"github.com/daddycoders/oneroof/libs/config"
	"github.com/daddycoders/oneroof/libs/httpx"
	"github.com/daddycoders/oneroof/libs/kafkax"
	"github.com/daddycoders/oneroof/libs/otelx"
	"github.com/daddycoders/oneroof/libs/runtime"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/booking"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/catalog"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/events"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/handlers"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/identity"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/profile"
)

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func appwriteConfig() (appwrite.Config, error) {
	endpoint, err := config.RequiredString("APPWRITE_ENDPOINT")
	if err != nil {
		return appwrite.Config{}, err
	}
	project, err := config.RequiredString("APPWRITE_PROJECT_ID")
	if err != nil {
		return appwrite.Config{}, err
	}
	return appwrite.Config{
		Endpoint:             endpoint,
		Project:              project,
		Platform:             config.String("APPWRITE_PLATFORM", "com.daddycoders.oneroof"),
		Key:                  config.String("APPWRITE_API_KEY", ""),
		DatabaseID:           config.String("APPWRITE_DATABASE_ID", "oneroof"),
		UserCollectionID:     config.String("APPWRITE_USER_COLLECTION_ID", "users"),
		ServicesCollectionID: config.String("APPWRITE_SERVICES_COLLECTION_ID", "services"),
		BookingCollectionID:  config.String("APPWRITE_BOOKING_COLLECTION_ID", "bookings"),
		StorageBucketID:      config.String("APPWRITE_STORAGE_BUCKET_ID", "storage"),
		Timeout:              config.Duration("APPWRITE_TIMEOUT", 10*time.Second),
	}, nil
}

func main() {
	service := config.String("SERVICE_NAME", "oneroof-api")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	awCfg, err := appwriteConfig()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		panic(err)
	}
	gw, err := appwrite.New(awCfg)
	if err != nil {
		logger.Error("remote store client init failed", "err", err)
		panic(err)
	}

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	publisher := events.NewPublisher(kafkaBrokers, logger)
	defer func() { _ = publisher.Close() }()

	identitySvc := identity.New(gw, logger)
	catalogReader := catalog.NewReader(gw)
	ledger := booking.NewLedger(gw, publisher, logger)
	facade := profile.New(identitySvc, ledger)

	authHandler := handlers.NewAuthHandler(identitySvc, logger)
	servicesHandler := handlers.NewServicesHandler(catalogReader)
	bookingHandler := handlers.NewBookingHandler(ledger, facade, logger)

	checks := []runtime.ReadyCheck{
		{Name: "appwrite", Check: appwrite.ReadyCheck(gw)},
	}
	if strings.TrimSpace(kafkaBrokers) != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}

	var rdb *redis.Client
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	mux := runtime.NewBaseMux(checks...)
	mux.HandleFunc("/api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("/api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("/api/v1/auth/logout", authHandler.Logout)
	mux.HandleFunc("/api/v1/auth/me", authHandler.Me)
	mux.HandleFunc("/api/v1/services", servicesHandler.List)
	mux.HandleFunc("/api/v1/services/", servicesHandler.Get)
	mux.HandleFunc("/api/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			bookingHandler.Create(w, r)
		case http.MethodGet:
			bookingHandler.List(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/bookings/cancel", bookingHandler.Cancel)

	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 60)
	var rateLimitMW httpx.Middleware
	if rdb != nil {
		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		rateLimitMW = rl.Middleware(logger, isTruthy(config.String("RATE_LIMIT_FAIL_OPEN", "true")))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute)
	} else {
		rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods:   parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,PATCH,DELETE,OPTIONS")),
			AllowedHeaders:   parseList(config.String("CORS_ALLOWED_HEADERS", "Content-Type,X-Request-Id,X-Session")),
			AllowCredentials: isTruthy(config.String("CORS_ALLOW_CREDENTIALS", "false")),
			MaxAge:           config.Duration("CORS_MAX_AGE", 10*time.Minute),
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(config.Duration("REQUEST_TIMEOUT", 10*time.Second)),
		rateLimitMW,
	)
	handler = otelhttp.NewHandler(handler, "oneroof-api")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
