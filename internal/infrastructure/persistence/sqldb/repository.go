package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmanzanog/instrument-search/internal/domain"
)

type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Migrate applies the dialect's schema migrations.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.Dialect.Migrate(ctx, r.db.DB)
}

// LoadInstruments returns every stored instrument, inactive ones included,
// with its wallet eligibility set. Rows come back ordered by id.
func (r *Repository) LoadInstruments(ctx context.Context) ([]domain.InstrumentRecord, error) {
	query := `
        SELECT
            i.id, i.name, i.ticker, i.identifier_code, i.contract_code, i.exchange, i.active,
            w.wallet_id
        FROM instruments i
        LEFT JOIN instrument_wallets w ON i.id = w.instrument_id
        ORDER BY i.id, w.wallet_id
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Error("Failed to load instruments", "error", err)
		return nil, fmt.Errorf("querying instruments: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}(rows)

	records := make([]domain.InstrumentRecord, 0)
	index := make(map[string]int)

	for rows.Next() {
		var id, name string
		var ticker, identifierCode, contractCode, exchange sql.NullString
		var active int64
		var walletID sql.NullString

		err := rows.Scan(
			&id, &name, &ticker, &identifierCode, &contractCode, &exchange, &active,
			&walletID,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		pos, exists := index[id]
		if !exists {
			records = append(records, domain.InstrumentRecord{
				ID:             id,
				Name:           name,
				Ticker:         ticker.String,
				IdentifierCode: identifierCode.String,
				ContractCode:   contractCode.String,
				Exchange:       exchange.String,
				Active:         active != 0,
				Eligibility:    domain.NewWalletSet(),
			})
			pos = len(records) - 1
			index[id] = pos
		}

		if walletID.Valid {
			if w := strings.TrimSpace(walletID.String); w != "" {
				records[pos].Eligibility[w] = struct{}{}
			}
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	slog.Debug("Instruments loaded", "count", len(records))
	return records, nil
}

// SaveInstruments upserts the records and replaces their wallet sets in one
// transaction.
func (r *Repository) SaveInstruments(ctx context.Context, records []domain.InstrumentRecord) error {
	for i := range records {
		if !records[i].IsValid() {
			return fmt.Errorf("instrument at position %d has no id", i)
		}
	}

	deleteWallets := r.rebind("DELETE FROM instrument_wallets WHERE instrument_id = $1")
	insertWallet := r.rebind("INSERT INTO instrument_wallets (instrument_id, wallet_id) VALUES ($1, $2)")

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for i := range records {
			rec := &records[i]

			if err := r.db.Dialect.UpsertInstrument(ctx, tx, rec); err != nil {
				slog.Error("Failed to save instrument", "id", rec.ID, "error", err)
				return fmt.Errorf("upsert instrument: %w", err)
			}

			if _, err := tx.ExecContext(ctx, deleteWallets, rec.ID); err != nil {
				return fmt.Errorf("failed to clear wallets for %s: %w", rec.ID, err)
			}

			for _, wallet := range rec.Wallets() {
				if _, err := tx.ExecContext(ctx, insertWallet, rec.ID, wallet); err != nil {
					return fmt.Errorf("failed to insert wallet %s for %s: %w", wallet, rec.ID, err)
				}
			}
		}
		return nil
	})
}

func (r *Repository) rebind(query string) string {
	if r.db.Dialect.Name() == "oracle" {
		for i := 1; i <= 10; i++ {
			query = strings.ReplaceAll(query, fmt.Sprintf("$%d", i), fmt.Sprintf(":%d", i))
		}
	}
	return query
}
