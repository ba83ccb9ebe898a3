package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmanzanog/instrument-search/internal/domain"
	"github.com/jmanzanog/instrument-search/internal/infrastructure/persistence/sqldb/migrations"
)

type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) Migrate(ctx context.Context, db *sql.DB) error {
	// goose has no go-ora dialect; run the script directly.
	content, err := migrations.OracleFS.ReadFile("oracle/20240101000000_init.sql")
	if err != nil {
		return fmt.Errorf("reading migration file: %w", err)
	}

	// Statements are separated by '/' lines, as in SQL*Plus scripts.
	statements := strings.Split(string(content), "/")

	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			// ORA-00955: name is already used by an existing object
			if !strings.Contains(err.Error(), "ORA-00955") {
				return fmt.Errorf("migrating: %s: %w", stmt, err)
			}
		}
	}
	return nil
}

func (d *OracleDialect) UpsertInstrument(ctx context.Context, tx *sql.Tx, r *domain.InstrumentRecord) error {
	query := `MERGE INTO instruments i
             USING (SELECT :1 as id_val FROM dual) s
             ON (i.id = s.id_val)
             WHEN MATCHED THEN
               UPDATE SET
                 name = :2,
                 ticker = :3,
                 identifier_code = :4,
                 contract_code = :5,
                 exchange = :6,
                 active = :7,
                 updated_at = SYSTIMESTAMP
             WHEN NOT MATCHED THEN
               INSERT (id, name, ticker, identifier_code, contract_code, exchange, active, updated_at)
               VALUES (:8, :9, :10, :11, :12, :13, :14, SYSTIMESTAMP)`

	active := activeFlag(r.Active)
	_, err := tx.ExecContext(ctx, query,
		r.ID,             // 1 (s.id_val)
		r.Name,           // 2 (UPDATE)
		r.Ticker,         // 3
		r.IdentifierCode, // 4
		r.ContractCode,   // 5
		r.Exchange,       // 6
		active,           // 7
		r.ID,             // 8 (INSERT)
		r.Name,           // 9
		r.Ticker,         // 10
		r.IdentifierCode, // 11
		r.ContractCode,   // 12
		r.Exchange,       // 13
		active,           // 14
	)
	return err
}
