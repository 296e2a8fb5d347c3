package repository

import (
	"context"

	"coupon-service/internal/coupon"
	"coupon-service/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CouponRepository defines the interface for coupon data access operations.
// Lookups return (nil, nil) when no row matches.
type CouponRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// FindByCode retrieves a coupon by its normalised code, whatever its status.
	FindByCode(ctx context.Context, code string) (*coupon.Coupon, error)

	// FindByID retrieves a coupon by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error)

	// FindByIDForUpdate retrieves a coupon by its ID within the provided
	// transaction and locks the row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*coupon.Coupon, error)

	// Save inserts or updates a coupon within the provided transaction and
	// returns the stored representation. A code already used by another
	// coupon yields model.ErrDuplicateCode.
	Save(ctx context.Context, tx pgx.Tx, c *coupon.Coupon) (*coupon.Coupon, error)

	// ListByStatus retrieves one page of coupons with the given status,
	// ordered by expiration date ascending.
	ListByStatus(ctx context.Context, status coupon.Status, page model.PageRequest) (model.Page[*coupon.Coupon], error)
}
