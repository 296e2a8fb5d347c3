package service

import (
	"context"

	"coupon-service/internal/coupon"
	"coupon-service/internal/model"

	"github.com/google/uuid"
)

// CouponService defines operations for coupon lifecycle management.
type CouponService interface {
	// Create validates the request and stores a new ACTIVE coupon.
	Create(ctx context.Context, req *model.CouponRequest) (*coupon.Coupon, error)

	// GetByID retrieves a coupon by ID, whatever its status.
	GetByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error)

	// List retrieves one page of ACTIVE coupons ordered by expiration date.
	List(ctx context.Context, page model.PageRequest) (model.Page[*coupon.Coupon], error)

	// Delete soft-deletes a coupon.
	Delete(ctx context.Context, id uuid.UUID) error
}
