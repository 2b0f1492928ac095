package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/riskboard/internal/adapters/http/api"
	"github.com/okian/riskboard/internal/adapters/http/dashboard"
	"github.com/okian/riskboard/internal/adapters/http/site"
	"github.com/okian/riskboard/internal/adapters/http/swagger"
	"github.com/okian/riskboard/internal/adapters/repository"
	"github.com/okian/riskboard/internal/adapters/riskapi"
	service "github.com/okian/riskboard/internal/app"
	"github.com/okian/riskboard/internal/config"
	"github.com/okian/riskboard/pkg/logger"
	"github.com/okian/riskboard/pkg/metrics"
	"github.com/okian/riskboard/pkg/requestid"
)

// HTTP server timeout constants. Writes are not bounded because upstream
// calls carry no timeout unless api_timeout_ms is set.
const (
	readTimeout       = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		os.Stderr.WriteString("failed to read .env: " + err.Error() + "\n")
		return
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	metrics.Init(metricsOptions(cfg)...)

	if cfg.MongoDBURI == "" {
		log.Warn(ctx, "mongodb_uri not set; personal data lookups will report no data")
	}

	handler, err := newRouter(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build router", logger.Error(err))
		return
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("api_url", cfg.APIURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// newRouter builds the collaborators from cfg and mounts every route.
func newRouter(ctx context.Context, cfg *config.Config, log logger.Logger) (http.Handler, error) {
	client := riskapi.NewClient(cfg.APIURL,
		riskapi.WithTimeout(cfg.APITimeout()),
		riskapi.WithMaxMarkupBytes(cfg.APIMaxMarkupBytes),
		riskapi.WithLogger(log.Named("riskapi")),
	)
	store := repository.NewMongoStore(cfg.MongoDBURI,
		repository.WithDatabase(cfg.MongoDBDatabase),
		repository.WithCollection(cfg.MongoDBCollection),
		repository.WithTimeout(cfg.MongoDBTimeout()),
		repository.WithLogger(log.Named("repository")),
	)
	svc := service.New(client, store, service.WithLogger(log.Named("service")))

	dash, err := dashboard.NewHandler(svc,
		dashboard.WithLogger(log.Named("dashboard")),
		dashboard.WithSettings(dashboard.Settings{
			DefaultClientID:          cfg.DefaultClientID,
			DefaultJobID:             cfg.DefaultJobID,
			ExplorationFrameHeight:   cfg.ExplorationFrameHeight,
			VisualizationFrameHeight: cfg.VisualizationFrameHeight,
		}),
	)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)

	api.NewServer(svc, log.Named("api")).Register(ctx, r)
	swagger.Register(ctx, r)
	site.Register(ctx, r)
	dash.Register(r)
	return r, nil
}

// metricsOptions maps the metrics settings onto manager options.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithConstLabels(map[string]string{"env": cfg.MetricsEnvironment}),
	}
}
