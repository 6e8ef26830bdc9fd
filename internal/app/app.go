package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/admision/internal/config"
	"github.com/simp-lee/admision/internal/domain"
	"github.com/simp-lee/admision/internal/middleware"
	"github.com/simp-lee/admision/internal/module/especialidad"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the database (migrating the especialidades table when
// asked to), the especialidad repository, service and handler, the middleware
// stack and the routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false
	ctx := context.Background()

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Setup database.
	db, err := config.SetupDatabase(ctx, &cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", slog.Any("error", err))
		}
	}()

	// 3. AutoMigrate in debug mode or when explicitly enabled.
	if shouldAutoMigrate(cfg) {
		if err := db.WithContext(ctx).AutoMigrate(&domain.Especialidad{}); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed", slog.String("table", domain.Especialidad{}.TableName()))
	}

	// 4. Manual dependency injection: repository → service → handler → module.
	repo := especialidad.NewEspecialidadRepository(db)
	svc := especialidad.NewEspecialidadService(repo)
	handler := especialidad.NewHandler(svc)

	// 5. Create Gin engine with custom middleware (not gin.Default()).
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	middlewares, err := buildMiddleware(cfg, log.Logger)
	if err != nil {
		return nil, err
	}
	engine.Use(middlewares...)

	// 6. Register all routes.
	if err := RegisterRoutes(engine, &RouteDeps{
		Modules: []Module{especialidad.NewModule(handler)},
		DB:      db,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

// Handler exposes the configured engine, mainly for in-process clients and tests.
func (a *App) Handler() http.Handler {
	return a.engine
}

func shouldAutoMigrate(cfg *config.Config) bool {
	return cfg.Database.AutoMigrate || cfg.Server.Mode == gin.DebugMode
}

// buildMiddleware assembles the global middleware chain in order: recovery,
// request id, request log, CORS, then the optional rate limit and timeout.
func buildMiddleware(cfg *config.Config, log *slog.Logger) ([]gin.HandlerFunc, error) {
	corsConfig, err := resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)
	if err != nil {
		return nil, err
	}

	chain := []gin.HandlerFunc{
		middleware.Recovery(log),
		// The console sends its own X-Request-ID; reuse it so both sides log the same id.
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{TrustUpstream: true}),
		middleware.LoggerWithConfig(log, middleware.LoggerConfig{SkipPaths: []string{"/health"}}),
		middleware.CORSWithConfig(corsConfig),
	}

	if rl := cfg.Server.RateLimit; rl.Enabled {
		chain = append(chain, middleware.RateLimit(middleware.RateLimitConfig{
			RPS:   rl.RPS,
			Burst: rl.Burst,
		}))
	}

	if t := strings.TrimSpace(cfg.Server.Timeout); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return nil, fmt.Errorf("invalid server.timeout %q: %w", cfg.Server.Timeout, err)
		}
		chain = append(chain, middleware.Timeout(d))
	}

	return chain, nil
}

// resolveCORSConfig builds the CORS settings from configuration.
// In release mode, when no allowlist is configured, cross-origin requests are denied.
func resolveCORSConfig(mode string, cfg config.CORSConfig) (middleware.CORSConfig, error) {
	corsConfig := middleware.DefaultCORSConfig()

	switch {
	case len(cfg.AllowOrigins) > 0:
		corsConfig.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		corsConfig.AllowOrigins = []string{}
	}
	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials

	if ma := strings.TrimSpace(cfg.MaxAge); ma != "" {
		d, err := time.ParseDuration(ma)
		if err != nil {
			return middleware.CORSConfig{}, fmt.Errorf("invalid server.cors.max_age %q: %w", cfg.MaxAge, err)
		}
		corsConfig.MaxAge = strconv.Itoa(int(d.Seconds()))
	}

	return corsConfig, nil
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and closes the database
// connection.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		if a.logger != nil {
			a.logger.Info("server started", slog.String("addr", addr))
		} else {
			slog.Info("server started", slog.String("addr", addr))
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		if a.logger != nil {
			a.logger.Info("shutdown signal received")
		} else {
			slog.Info("shutdown signal received")
		}
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		// Graceful shutdown with 5-second deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			if a.logger != nil {
				a.logger.Error("server shutdown error", slog.Any("error", err))
			} else {
				slog.Error("server shutdown error", slog.Any("error", err))
			}
		}
	}

	// Close database connection.
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				if a.logger != nil {
					a.logger.Error("database close error", slog.Any("error", err))
				} else {
					slog.Error("database close error", slog.Any("error", err))
				}
			} else {
				if a.logger != nil {
					a.logger.Info("database connection closed")
				} else {
					slog.Info("database connection closed")
				}
			}
		}
	}

	if a.logger != nil {
		a.logger.Info("server stopped")
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	} else {
		slog.Info("server stopped")
	}

	if runErr != nil {
		return runErr
	}

	return nil
}
