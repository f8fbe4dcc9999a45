package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/hdmquan/logos-living-capital/internal/config"
	apierrors "github.com/hdmquan/logos-living-capital/internal/errors"
	"github.com/hdmquan/logos-living-capital/internal/infrastructure"
	customMiddleware "github.com/hdmquan/logos-living-capital/internal/middleware"
	"github.com/hdmquan/logos-living-capital/internal/narrative"
	"github.com/hdmquan/logos-living-capital/internal/operations"
	"github.com/hdmquan/logos-living-capital/internal/services"
	handlers "github.com/hdmquan/logos-living-capital/internal/transport/http"
	ws "github.com/hdmquan/logos-living-capital/internal/websocket"
)

const (
	// snapshotMaxAge is how long finished run snapshots stay queryable
	snapshotMaxAge  = time.Hour
	cleanupInterval = 10 * time.Minute

	// maxJSONBody caps JSON request bodies
	maxJSONBody = 64 << 10
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	WebSocketHub  *ws.Hub
	Broadcaster   *operations.StatusBroadcaster
	Health        *services.HealthService
	Services      *ServiceContainer
	Router        *chi.Mux
	Server        *http.Server

	listener net.Listener
	stop     chan struct{}
}

// Option customises NewApplication
type Option func(*options)

type options struct {
	logger *slog.Logger
	model  narrative.Model
}

// WithLogger uses logger instead of the configured global logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithModel replaces the configured narrative model.
func WithModel(model narrative.Model) Option {
	return func(o *options) { o.model = model }
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(ctx context.Context, cfg *config.Config, opts ...Option) (*Application, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		if logger, err = infrastructure.InitializeLogger(cfg.Logging); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(cfg.Observability, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreatePipelineMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	hub := ws.NewHub(logger)
	broadcaster := operations.NewStatusBroadcaster(hub, logger)

	container, err := NewServiceContainer(ctx, cfg, paths, logger, Dependencies{
		Meter:    otelProviders.Meter,
		Metrics:  metrics,
		Reporter: broadcaster,
		Model:    o.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		WebSocketHub:  hub,
		Broadcaster:   broadcaster,
		Health:        services.NewHealthService(config.AppVersion, paths.UploadsDir, hub, logger),
		Services:      container,
		stop:          make(chan struct{}),
	}

	if err := a.setupRouter(); err != nil {
		return nil, err
	}
	a.createServer()

	return a, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Observability.Environment == "development")
	validator := customMiddleware.NewValidator(a.Logger)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}

	r := chi.NewRouter()

	// These don't wrap the ResponseWriter, so the WebSocket upgrade still works
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", ws.NewHandler(a.WebSocketHub, a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	runHandler := handlers.NewRunHandler(
		a.Services.Runs,
		a.Services.Analyses,
		a.Services.Reports,
		validator,
		a.Config.Server.MaxUploadBytes,
		a.Logger,
		errorHandler,
	)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → logging/recovery → security → rate limit
		r.Use(otelMiddleware.Handler)
		r.Use(apierrors.NewErrorMiddleware(errorHandler, a.Logger).Handler)
		r.Use(customMiddleware.SecurityHeaders)

		if rl := a.Config.Server.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, errorHandler, a.Logger).Handler)
		}

		r.Get("/healthz", handlers.NewHealthHandler(a.Health, a.Logger).HealthCheck)

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))

			r.Mount("/runs", runHandler.Routes())
			r.Get("/layouts", handlers.NewLayoutHandler(a.Services.Registry, a.Logger, errorHandler).List)
			r.Get("/progress/{runID}", handlers.NewProgressHandler(a.Broadcaster, a.Logger, errorHandler).Get)
			r.With(customMiddleware.MaxBodySize(maxJSONBody)).
				Post("/logs", handlers.NewClientLogHandler(validator, a.Logger, errorHandler).Handle)
		})
	})

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	a.Router = r
	return nil
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Addr returns the address the server listens on once started.
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Start starts the hub, the snapshot cleanup and the HTTP server. Server
// failures after startup cancel through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	a.WebSocketHub.Start()
	go a.cleanupSnapshots()

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", a.Addr()),
		slog.String("uploads_dir", a.Paths.UploadsDir),
		slog.Int("layout_sheets", a.Services.Registry.Len()))
	return nil
}

func (a *Application) cleanupSnapshots() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			if n := a.Broadcaster.CleanupOldRuns(snapshotMaxAge); n > 0 {
				a.Logger.Debug("Dropped finished run snapshots", slog.Int("count", n))
			}
		}
	}
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	close(a.stop)
	a.WebSocketHub.Stop()

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	// Graceful shutdown
	return a.Stop(context.Background())
}
