package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/jmanzanog/instrument-search/internal/domain"
	"github.com/jmanzanog/instrument-search/internal/infrastructure/persistence/sqldb/migrations"
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.PostgresFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "postgres"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

func (d *PostgresDialect) UpsertInstrument(ctx context.Context, tx *sql.Tx, r *domain.InstrumentRecord) error {
	query := `
		INSERT INTO instruments (id, name, ticker, identifier_code, contract_code, exchange, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			ticker = EXCLUDED.ticker,
			identifier_code = EXCLUDED.identifier_code,
			contract_code = EXCLUDED.contract_code,
			exchange = EXCLUDED.exchange,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`
	_, err := tx.ExecContext(ctx, query,
		r.ID, r.Name, r.Ticker, r.IdentifierCode, r.ContractCode, r.Exchange, activeFlag(r.Active))
	return err
}
