package search

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jmanzanog/instrument-search/internal/domain"
)

// Options tunes the per-strategy score floors. A strategy accepts a candidate
// only when it scores at least max(query threshold, strategy floor).
type Options struct {
	NameThreshold       int
	TickerThreshold     int
	IdentifierThreshold int

	// ParallelMinRecords is the filtered view size from which strategies run
	// concurrently. Zero or less disables the fan-out.
	ParallelMinRecords int
}

func DefaultOptions() Options {
	return Options{
		NameThreshold:       60,
		TickerThreshold:     80,
		IdentifierThreshold: 80,
		ParallelMinRecords:  2048,
	}
}

// Engine runs searches against the current catalog snapshot. Searches never
// block each other; Swap replaces the snapshot atomically.
type Engine struct {
	catalog atomic.Pointer[Catalog]
	opts    Options
}

func NewEngine(catalog *Catalog, opts Options) *Engine {
	e := &Engine{opts: opts}
	e.catalog.Store(catalog)
	return e
}

// Catalog returns the snapshot searches currently run against. It may be nil.
func (e *Engine) Catalog() *Catalog {
	return e.catalog.Load()
}

// Swap installs next and returns the snapshot it replaced.
func (e *Engine) Swap(next *Catalog) *Catalog {
	return e.catalog.Swap(next)
}

func (e *Engine) Options() Options {
	return e.opts
}

// Search validates q and returns ranked matches. Blank queries, unknown
// wallets and empty catalogs produce an empty list and no error.
func (e *Engine) Search(q domain.SearchQuery) ([]domain.RankedMatch, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if q.IsBlank() {
		return []domain.RankedMatch{}, nil
	}

	catalog := e.catalog.Load()
	view := Filter(catalog, q.NormalizedWallet())
	if view.Len() == 0 {
		return []domain.RankedMatch{}, nil
	}

	mode := q.EffectiveMode()
	strategies := strategiesFor(mode)
	pq := prepare(q.Text)
	f := newFloors(q.Threshold, e.opts)

	lists := make([][]candidate, len(strategies))
	if e.opts.ParallelMinRecords > 0 && view.Len() >= e.opts.ParallelMinRecords {
		var g errgroup.Group
		for i, s := range strategies {
			i, s := i, s
			g.Go(func() error {
				lists[i] = run(s, view, pq, f, mode)
				return nil
			})
		}
		// strategies cannot fail; Wait only joins
		_ = g.Wait()
	} else {
		for i, s := range strategies {
			lists[i] = run(s, view, pq, f, mode)
		}
	}

	return merge(catalog, lists, q.MaxResults), nil
}
