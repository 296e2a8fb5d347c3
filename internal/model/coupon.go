package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CouponRequest represents the request payload for creating a coupon.
// Pointer fields distinguish an absent value from a zero value.
type CouponRequest struct {
	Code           string           `json:"code"`
	Description    string           `json:"description"`
	DiscountValue  *decimal.Decimal `json:"discountValue"`
	ExpirationDate *time.Time       `json:"expirationDate"`
	Published      bool             `json:"published"`
}

// CouponResponse represents the response payload for a coupon.
type CouponResponse struct {
	ID             uuid.UUID       `json:"id"`
	Code           string          `json:"code"`
	Description    string          `json:"description"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	ExpirationDate time.Time       `json:"expirationDate"`
	Status         string          `json:"status"`
	Published      bool            `json:"published"`
	Redeemed       bool            `json:"redeemed"`
}
