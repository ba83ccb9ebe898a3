package sqldb

import (
	"context"
	"database/sql"

	"github.com/jmanzanog/instrument-search/internal/domain"
)

type Dialect interface {
	Name() string
	Migrate(ctx context.Context, db *sql.DB) error
	UpsertInstrument(ctx context.Context, tx *sql.Tx, r *domain.InstrumentRecord) error
}

func activeFlag(active bool) int {
	if active {
		return 1
	}
	return 0
}
