package sqldb

import (
	"context"
	"database/sql"
	"fmt"
)

type DB struct {
	*sql.DB
	Dialect Dialect
}

// DialectFor maps a configured DB_DRIVER value to its dialect and the
// database/sql driver name registered for it.
func DialectFor(driver string) (Dialect, string, error) {
	switch driver {
	case "postgres":
		return &PostgresDialect{}, "pgx", nil
	case "oracle":
		return &OracleDialect{}, "oracle", nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

func New(db *sql.DB, dialect Dialect) *DB {
	return &DB{
		DB:      db,
		Dialect: dialect,
	}
}

func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
