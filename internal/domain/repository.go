package domain

import "context"

// CatalogRepository supplies already-normalized instrument records.
// All methods accept context.Context so loads honour caller timeouts.
type CatalogRepository interface {
	LoadInstruments(ctx context.Context) ([]InstrumentRecord, error)
	SaveInstruments(ctx context.Context, records []InstrumentRecord) error
}
