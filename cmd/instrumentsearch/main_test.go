package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jmanzanog/instrument-search/internal/application"
	"github.com/jmanzanog/instrument-search/internal/domain"
	"github.com/jmanzanog/instrument-search/internal/infrastructure/config"
	"github.com/jmanzanog/instrument-search/internal/infrastructure/metrics"
	"github.com/jmanzanog/instrument-search/internal/infrastructure/persistence/memory"
	"github.com/jmanzanog/instrument-search/internal/infrastructure/persistence/sqldb"
	"github.com/jmanzanog/instrument-search/internal/search"
)

func TestSetupLogger(t *testing.T) {
	// Capture the original logger to restore it later
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	logger := setupLogger("debug")

	if logger == nil {
		t.Fatal("setupLogger returned nil logger")
	}

	// Verify the logger is set as default
	if slog.Default() != logger {
		t.Error("setupLogger did not set the logger as default")
	}

	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug level to be enabled")
	}

	logger.Info("test message", "key", "value")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitializeDatabase_Memory(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DBDriverMemory}

	repo, err := initializeDatabase(cfg)
	if err != nil {
		t.Fatalf("initializeDatabase failed: %v", err)
	}

	if _, ok := repo.(*memory.InstrumentRepository); !ok {
		t.Errorf("expected *memory.InstrumentRepository, got %T", repo)
	}
}

func TestInitializeDatabase_Success(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg, cleanup := createTestDBConfig(t)
	defer cleanup()

	repo, err := initializeDatabase(cfg)
	if err != nil {
		t.Fatalf("initializeDatabase failed: %v", err)
	}

	if repo == nil {
		t.Fatal("initializeDatabase returned nil repository")
	}

	// Verify the repository is of the correct type
	if _, ok := repo.(*sqldb.Repository); !ok {
		t.Errorf("expected *sqldb.Repository, got %T", repo)
	}

	records, err := repo.LoadInstruments(context.Background())
	if err != nil {
		t.Fatalf("LoadInstruments failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty catalog, got %d records", len(records))
	}
}

func TestInitializeDatabase_UnsupportedDriver(t *testing.T) {
	cfg := &config.Config{
		DBDriver: "mysql", // Unsupported driver
		DBDSN:    "some-connection-string",
	}

	repo, err := initializeDatabase(cfg)

	if err == nil {
		t.Fatal("expected error for unsupported driver, got nil")
	}

	if repo != nil {
		t.Errorf("expected nil repository, got %v", repo)
	}

	expectedErrMsg := "unsupported database driver: mysql"
	if err.Error() != expectedErrMsg {
		t.Errorf("expected error message %q, got %q", expectedErrMsg, err.Error())
	}
}

func TestInitializeDatabase_InvalidDSN(t *testing.T) {
	cfg := &config.Config{
		DBDriver: "postgres",
		DBDSN:    "invalid-connection-string",
	}

	repo, err := initializeDatabase(cfg)

	if err == nil {
		t.Fatal("expected error for invalid DSN, got nil")
	}

	if repo != nil {
		t.Errorf("expected nil repository, got %v", repo)
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := &config.Config{Search: config.SearchConfig{
		NameThreshold:       55,
		TickerThreshold:     85,
		IdentifierThreshold: 90,
		ParallelMinRecords:  100,
	}}

	want := search.Options{NameThreshold: 55, TickerThreshold: 85, IdentifierThreshold: 90, ParallelMinRecords: 100}
	if got := engineOptions(cfg); got != want {
		t.Errorf("engineOptions = %+v, want %+v", got, want)
	}
}

func newTestSearchService(t *testing.T, records ...domain.InstrumentRecord) *application.SearchService {
	t.Helper()
	repo := memory.NewInstrumentRepository(records...)
	engine := search.NewEngine(nil, search.DefaultOptions())
	service := application.NewSearchService(repo, engine, metrics.New(newRegistry()))
	if _, err := service.Reload(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	return service
}

func testConfig(host, port string) *config.Config {
	return &config.Config{
		ServerHost: host,
		ServerPort: port,
		Search:     config.SearchConfig{DefaultThreshold: 70, DefaultMaxResults: 20},
	}
}

func TestBuildServer(t *testing.T) {
	// Suppress Gin debug output during test
	t.Setenv("GIN_MODE", "release")

	service := newTestSearchService(t,
		domain.NewInstrumentRecord("1", "Apple Inc", "AAPL", "US0378331005", "", "NYSE", true, "1"),
	)
	reg := newRegistry()

	server := buildServer(testConfig("localhost", "8080"), service, reg)

	if server == nil {
		t.Fatal("buildServer returned nil server")
	}

	expectedAddr := "localhost:8080"
	if server.Addr != expectedAddr {
		t.Errorf("expected server address %q, got %q", expectedAddr, server.Addr)
	}

	if server.Handler == nil {
		t.Fatal("server handler is nil")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status code 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/instruments/search?q=AAPL&wallet=1", nil)
	w = httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status code 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"exact_ticker"`) {
		t.Errorf("expected an exact ticker match, got %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status code 200 for /metrics, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected runtime collectors in /metrics output")
	}
}

func TestBuildServer_DifferentPorts(t *testing.T) {
	t.Setenv("GIN_MODE", "release")

	testCases := []struct {
		name string
		host string
		port string
		want string
	}{
		{
			name: "default localhost",
			host: "localhost",
			port: "8080",
			want: "localhost:8080",
		},
		{
			name: "all interfaces",
			host: "0.0.0.0",
			port: "3000",
			want: "0.0.0.0:3000",
		},
		{
			name: "custom port",
			host: "127.0.0.1",
			port: "9090",
			want: "127.0.0.1:9090",
		},
	}

	service := newTestSearchService(t)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := buildServer(testConfig(tc.host, tc.port), service, nil)

			if server.Addr != tc.want {
				t.Errorf("expected server address %q, got %q", tc.want, server.Addr)
			}
		})
	}
}

func TestApp_Shutdown(t *testing.T) {
	service := newTestSearchService(t)
	reloader := application.NewCatalogReloader(service, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go reloader.Start(ctx)

	app := &App{
		Server:        buildServer(testConfig("localhost", "0"), service, nil),
		Reloader:      reloader,
		CancelContext: cancel,
	}

	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	select {
	case <-reloader.Done():
	case <-time.After(time.Second):
		t.Fatal("reloader did not stop")
	}
}

// TestMain is a special test function that runs before all tests
// We use it to setup global test configuration
func TestMain(m *testing.M) {
	// Suppress all logging during tests to reduce noise
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	os.Exit(m.Run())
}

// BenchmarkSetupLogger benchmarks the logger setup
func BenchmarkSetupLogger(b *testing.B) {
	for i := 0; i < b.N; i++ {
		setupLogger("info")
	}
}

// Integration test helper to create a test database configuration
func createTestDBConfig(t *testing.T) (*config.Config, func()) {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	cfg := &config.Config{
		DBDriver: "postgres",
		DBDSN:    connStr,
	}

	cleanup := func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return cfg, cleanup
}

// TestFullInitializationFlow tests the complete initialization flow
func TestFullInitializationFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg, cleanup := createTestDBConfig(t)
	defer cleanup()

	repo, err := initializeDatabase(cfg)
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}

	err = repo.SaveInstruments(context.Background(), []domain.InstrumentRecord{
		domain.NewInstrumentRecord("1", "Apple Inc", "AAPL", "US0378331005", "", "NYSE", true, "1"),
	})
	if err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	reg := newRegistry()
	service := application.NewSearchService(repo, search.NewEngine(nil, search.DefaultOptions()), metrics.New(reg))
	if _, err := service.Reload(context.Background()); err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	cfg.ServerHost = "localhost"
	cfg.ServerPort = "0" // random port
	cfg.Search = config.SearchConfig{DefaultThreshold: 70, DefaultMaxResults: 20}

	server := buildServer(cfg, service, reg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/instruments/search?q=Apple%20Inc&wallet=1", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("search failed: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"exact_name"`) {
		t.Errorf("expected exact name match, got %s", w.Body.String())
	}
}
