package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id               UUID PRIMARY KEY,
		version          INTEGER NOT NULL DEFAULT 0,
		last_name        TEXT NOT NULL,
		email            TEXT NOT NULL,
		category         INTEGER NOT NULL DEFAULT 0,
		newsletter       BOOLEAN NOT NULL DEFAULT FALSE,
		birth_date       DATE,
		revenue_amount   NUMERIC(15, 2),
		revenue_currency CHAR(3),
		homepage         TEXT,
		gender           TEXT,
		marital_status   TEXT,
		interests        TEXT[] NOT NULL DEFAULT '{}',
		postal_code      TEXT NOT NULL,
		city             TEXT NOT NULL,
		username         TEXT,
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS customers_email_key ON customers (lower(email))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS customers_username_key ON customers (username)`,
	`CREATE INDEX IF NOT EXISTS customers_last_name_idx ON customers (last_name)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		roles         TEXT[] NOT NULL DEFAULT '{}',
		created_at    TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema создает таблицы и индексы, если их еще нет
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
