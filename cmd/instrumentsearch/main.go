package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	_ "github.com/sijms/go-ora/v2"

	"github.com/jmanzanog/instrument-search/internal/application"
	"github.com/jmanzanog/instrument-search/internal/domain"
	"github.com/jmanzanog/instrument-search/internal/infrastructure/config"
	"github.com/jmanzanog/instrument-search/internal/infrastructure/metrics"
	"github.com/jmanzanog/instrument-search/internal/infrastructure/persistence/memory"
	"github.com/jmanzanog/instrument-search/internal/infrastructure/persistence/sqldb"
	httpHandler "github.com/jmanzanog/instrument-search/internal/interfaces/http"
	"github.com/jmanzanog/instrument-search/internal/search"
)

// setupLogger configures and returns a structured logger with source information
func setupLogger(level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLevel(level),
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initializeDatabase sets up the catalog repository and runs migrations
func initializeDatabase(cfg *config.Config) (domain.CatalogRepository, error) {
	if cfg.DBDriver == config.DBDriverMemory {
		slog.Warn("Using in-memory catalog repository; data is lost on restart")
		return memory.NewInstrumentRepository(), nil
	}

	dialect, driverName, err := sqldb.DialectFor(cfg.DBDriver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() // Close connection if ping fails
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := sqldb.NewRepository(sqldb.New(db, dialect))

	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close() // Close connection if migration fails
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func engineOptions(cfg *config.Config) search.Options {
	return search.Options{
		NameThreshold:       cfg.Search.NameThreshold,
		TickerThreshold:     cfg.Search.TickerThreshold,
		IdentifierThreshold: cfg.Search.IdentifierThreshold,
		ParallelMinRecords:  cfg.Search.ParallelMinRecords,
	}
}

// newRegistry returns a registry carrying the Go runtime and process collectors
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// buildServer creates and configures the HTTP server with all routes and handlers
func buildServer(cfg *config.Config, searchService httpHandler.SearchService, gatherer prometheus.Gatherer) *http.Server {
	router := gin.Default()
	handler := httpHandler.NewHandler(searchService, httpHandler.SearchDefaults{
		Threshold:  cfg.Search.DefaultThreshold,
		MaxResults: cfg.Search.DefaultMaxResults,
	})
	httpHandler.SetupRoutes(router, handler, gatherer)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server
}

// App wraps the application components for easier testing
type App struct {
	Server        *http.Server
	Reloader      *application.CatalogReloader
	CancelContext context.CancelFunc
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	if a.Reloader != nil {
		a.Reloader.Stop()
	}
	a.CancelContext()

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	return nil
}

// run contains the main application logic without os.Exit calls
func run() error {
	setupLogger("info")

	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogger(cfg.LogLevel)

	repo, err := initializeDatabase(cfg)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	slog.Info("Catalog repository ready", "driver", cfg.DBDriver)

	reg := newRegistry()
	engine := search.NewEngine(nil, engineOptions(cfg))
	searchService := application.NewSearchService(repo, engine, metrics.New(reg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loadCtx, loadCancel := context.WithTimeout(ctx, 60*time.Second)
	if _, err := searchService.Reload(loadCtx); err != nil {
		// searches return empty results until a reload succeeds
		slog.Error("Initial catalog load failed", "error", err)
	}
	loadCancel()

	var reloader *application.CatalogReloader
	if cfg.CatalogReloadInterval > 0 {
		reloader = application.NewCatalogReloader(searchService, cfg.CatalogReloadInterval)
		go reloader.Start(ctx)
	}

	server := buildServer(cfg, searchService, reg)

	app := &App{
		Server:        server,
		Reloader:      reloader,
		CancelContext: cancel,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "host", cfg.ServerHost, "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	// Wait for termination signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
		slog.Info("Received shutdown signal")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	slog.Info("Server exited gracefully")
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}
