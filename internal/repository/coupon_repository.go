package repository

import (
	"context"
	"errors"
	"fmt"

	"coupon-service/internal/coupon"
	"coupon-service/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
	uniqueViolation = "23505"

	codeConstraint = "coupons_code_key"

	// discount_value travels as text so no precision is lost in either direction.
	couponColumns = `id, code, description, discount_value::text, expiration_date,
		status, published, redeemed, created_at, updated_at`
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *couponRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// FindByCode retrieves a coupon by its normalised code.
func (r *couponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	c, err := r.findOne(ctx, r.pool, query, code)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon by code")
		return nil, fmt.Errorf("failed to query coupon by code: %w", err)
	}
	return c, nil
}

// FindByID retrieves a coupon by its ID.
func (r *couponRepository) FindByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	c, err := r.findOne(ctx, r.pool, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}
	return c, nil
}

// FindByIDForUpdate retrieves a coupon by its ID and locks its row.
func (r *couponRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*coupon.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1 FOR UPDATE`

	c, err := r.findOne(ctx, tx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to lock coupon")
		return nil, fmt.Errorf("failed to lock coupon: %w", err)
	}
	return c, nil
}

// Save inserts or updates a coupon within the provided transaction.
// Only the lifecycle columns change on update; code, description, discount
// and expiration are fixed at creation.
func (r *couponRepository) Save(ctx context.Context, tx pgx.Tx, c *coupon.Coupon) (*coupon.Coupon, error) {
	s := c.Snapshot()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	query := `
		INSERT INTO coupons (id, code, description, discount_value, expiration_date,
			status, published, redeemed, created_at, updated_at)
		VALUES ($1, $2, $3, CAST($4::text AS NUMERIC), $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			published = EXCLUDED.published,
			redeemed = EXCLUDED.redeemed,
			updated_at = NOW()
		RETURNING ` + couponColumns

	saved, err := scanCoupon(tx.QueryRow(ctx, query,
		s.ID,
		s.Code,
		s.Description,
		s.DiscountValue.String(),
		s.ExpirationDate,
		s.Status.String(),
		s.Published,
		s.Redeemed,
		s.CreatedAt,
	))
	if err != nil {
		if isUniqueViolation(err, codeConstraint) {
			r.logger.Warn().Str("code", s.Code).Msg("coupon code already exists")
			return nil, model.ErrDuplicateCode
		}
		r.logger.Error().Err(err).Str("coupon_id", s.ID.String()).Msg("failed to save coupon")
		return nil, fmt.Errorf("failed to save coupon: %w", err)
	}

	r.logger.Debug().
		Str("coupon_id", saved.ID().String()).
		Str("status", saved.Status().String()).
		Msg("coupon saved successfully")

	return saved, nil
}

// ListByStatus retrieves one page of coupons with the given status. The count
// and the page are read from one snapshot so the totals match the content.
func (r *couponRepository) ListByStatus(ctx context.Context, status coupon.Status, page model.PageRequest) (model.Page[*coupon.Coupon], error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin read transaction")
		return model.Page[*coupon.Coupon]{}, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	// Read-only, so rolling back after the reads is the same as committing.
	defer func() { _ = tx.Rollback(ctx) }()

	var total int64
	countQuery := `SELECT COUNT(*) FROM coupons WHERE status = $1`
	if err := tx.QueryRow(ctx, countQuery, status.String()).Scan(&total); err != nil {
		r.logger.Error().Err(err).Str("status", status.String()).Msg("failed to count coupons")
		return model.Page[*coupon.Coupon]{}, fmt.Errorf("failed to count coupons: %w", err)
	}

	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE status = $1
		ORDER BY expiration_date ASC, id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := tx.Query(ctx, query, status.String(), page.Size, page.Offset())
	if err != nil {
		r.logger.Error().Err(err).
			Str("status", status.String()).
			Int("page", page.Page).
			Int("size", page.Size).
			Msg("failed to query coupons")
		return model.Page[*coupon.Coupon]{}, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	coupons := make([]*coupon.Coupon, 0, page.Size)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan coupon row")
			return model.Page[*coupon.Coupon]{}, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating coupon rows")
		return model.Page[*coupon.Coupon]{}, fmt.Errorf("error iterating coupons: %w", err)
	}

	return model.NewPage(coupons, page, total), nil
}

// findOne runs a single-row coupon query and maps no rows to (nil, nil).
func (r *couponRepository) findOne(ctx context.Context, q querier, query string, arg any) (*coupon.Coupon, error) {
	c, err := scanCoupon(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Interface("key", arg).Msg("coupon not found")
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// scanCoupon reads one row selected with couponColumns.
func scanCoupon(row pgx.Row) (*coupon.Coupon, error) {
	var (
		s        coupon.Snapshot
		discount string
		status   string
	)

	err := row.Scan(
		&s.ID,
		&s.Code,
		&s.Description,
		&discount,
		&s.ExpirationDate,
		&status,
		&s.Published,
		&s.Redeemed,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if s.DiscountValue, err = decimal.NewFromString(discount); err != nil {
		return nil, fmt.Errorf("invalid stored discount value %q: %w", discount, err)
	}
	if s.Status, err = coupon.ParseStatus(status); err != nil {
		return nil, err
	}

	return coupon.Restore(s), nil
}

// isUniqueViolation reports whether err is a unique_violation on constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}
