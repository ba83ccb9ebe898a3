package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jmanzanog/instrument-search/internal/domain"
)

// InstrumentRepository keeps the catalog in process memory. Used by the
// memory DB driver and in tests.
type InstrumentRepository struct {
	mu          sync.RWMutex
	instruments map[string]domain.InstrumentRecord
}

func NewInstrumentRepository(seed ...domain.InstrumentRecord) *InstrumentRepository {
	r := &InstrumentRepository{
		instruments: make(map[string]domain.InstrumentRecord, len(seed)),
	}
	for _, rec := range seed {
		r.instruments[rec.ID] = clone(rec)
	}
	return r
}

// SaveInstruments upserts by id. Nothing is stored if any record lacks an id.
func (r *InstrumentRepository) SaveInstruments(ctx context.Context, records []domain.InstrumentRecord) error {
	for i := range records {
		if !records[i].IsValid() {
			return fmt.Errorf("instrument at position %d has no id", i)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		r.instruments[rec.ID] = clone(rec)
	}
	return nil
}

// LoadInstruments returns copies of every stored record ordered by id.
func (r *InstrumentRepository) LoadInstruments(ctx context.Context) ([]domain.InstrumentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]domain.InstrumentRecord, 0, len(r.instruments))
	for _, rec := range r.instruments {
		records = append(records, clone(rec))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})

	return records, nil
}

func clone(rec domain.InstrumentRecord) domain.InstrumentRecord {
	rec.Eligibility = rec.Eligibility.Clone()
	return rec
}
