package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmanzanog/instrument-search/internal/domain"
	"github.com/jmanzanog/instrument-search/internal/infrastructure/metrics"
	"github.com/jmanzanog/instrument-search/internal/search"
)

// CatalogInfo summarizes the snapshot searches currently run against.
type CatalogInfo struct {
	Version  string    `json:"version"`
	LoadedAt time.Time `json:"loaded_at"`
	Records  int       `json:"records"`
	Active   int       `json:"active"`
	Wallets  []string  `json:"wallets"`
}

type SearchService struct {
	repo    domain.CatalogRepository
	engine  *search.Engine
	metrics *metrics.Metrics

	// reloadMu keeps catalog reloads exclusive; searches never take it.
	reloadMu sync.Mutex
}

func NewSearchService(repo domain.CatalogRepository, engine *search.Engine, m *metrics.Metrics) *SearchService {
	return &SearchService{
		repo:    repo,
		engine:  engine,
		metrics: m,
	}
}

func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery) ([]domain.RankedMatch, error) {
	start := time.Now()
	mode := string(q.EffectiveMode())

	matches, err := s.engine.Search(q)
	if err != nil {
		s.metrics.ObserveSearch(mode, "invalid", 0, time.Since(start))
		if errors.Is(err, domain.ErrInvalidQuery) {
			slog.WarnContext(ctx, "Rejected search query", "query", q.Text, "error", err)
		}
		return nil, err
	}

	outcome := "ok"
	if len(matches) == 0 {
		outcome = "empty"
		if w := q.NormalizedWallet(); w != "" && !s.engine.Catalog().HasWallet(w) {
			slog.InfoContext(ctx, "Search for unknown wallet", "wallet", w)
		}
	}
	s.metrics.ObserveSearch(mode, outcome, len(matches), time.Since(start))

	slog.DebugContext(ctx, "Search completed",
		"query", q.Text,
		"wallet", q.Wallet,
		"mode", mode,
		"results", len(matches),
		"elapsed", time.Since(start),
	)

	return matches, nil
}

// Reload fetches the catalog from the repository and swaps it in. On failure
// the previous snapshot keeps serving.
func (s *SearchService) Reload(ctx context.Context) (CatalogInfo, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	records, err := s.repo.LoadInstruments(ctx)
	if err != nil {
		s.metrics.ObserveReload(err, 0, 0)
		return s.info(s.engine.Catalog()), fmt.Errorf("failed to load instruments: %w", err)
	}

	next := search.NewCatalog(records)
	prev := s.engine.Swap(next)
	s.metrics.ObserveReload(nil, next.Len(), next.ActiveCount())

	slog.InfoContext(ctx, "Catalog reloaded",
		"version", next.Version(),
		"previous_version", prev.Version(),
		"records", next.Len(),
		"active", next.ActiveCount(),
	)

	return s.info(next), nil
}

// ImportInstruments upserts records into the repository and reloads the
// catalog so they become searchable.
func (s *SearchService) ImportInstruments(ctx context.Context, records []domain.InstrumentRecord) (CatalogInfo, error) {
	if err := s.repo.SaveInstruments(ctx, records); err != nil {
		slog.ErrorContext(ctx, "Failed to import instruments", "count", len(records), "error", err)
		return CatalogInfo{}, fmt.Errorf("failed to save instruments: %w", err)
	}
	slog.InfoContext(ctx, "Instruments imported", "count", len(records))

	return s.Reload(ctx)
}

func (s *SearchService) CatalogInfo(ctx context.Context) (CatalogInfo, error) {
	c := s.engine.Catalog()
	if c == nil {
		return CatalogInfo{}, domain.ErrCatalogUnavailable
	}
	return s.info(c), nil
}

func (s *SearchService) info(c *search.Catalog) CatalogInfo {
	wallets := c.Wallets()
	if wallets == nil {
		wallets = []string{}
	}
	return CatalogInfo{
		Version:  c.Version(),
		LoadedAt: c.LoadedAt(),
		Records:  c.Len(),
		Active:   c.ActiveCount(),
		Wallets:  wallets,
	}
}
