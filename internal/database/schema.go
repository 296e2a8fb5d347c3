package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema is the DDL for the coupons table. It is safe to apply repeatedly.
const Schema = `
	CREATE TABLE IF NOT EXISTS coupons (
		id UUID PRIMARY KEY,
		code VARCHAR(6) NOT NULL,
		description TEXT NOT NULL,
		discount_value NUMERIC NOT NULL CHECK (discount_value >= 0.5),
		expiration_date TIMESTAMPTZ NOT NULL,
		status VARCHAR(16) NOT NULL CHECK (status IN ('ACTIVE', 'INACTIVE', 'DELETED')),
		published BOOLEAN NOT NULL DEFAULT FALSE,
		redeemed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT coupons_code_key UNIQUE (code)
	);

	CREATE INDEX IF NOT EXISTS idx_coupons_status_expiration ON coupons(status, expiration_date, id);
`

// EnsureSchema creates the tables and indexes the service needs.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		logger.Error().Err(err).Msg("failed to apply database schema")
		return fmt.Errorf("failed to apply database schema: %w", err)
	}

	logger.Info().Msg("database schema applied")

	return nil
}
