// Package coupon holds the coupon aggregate and the validators that guard its
// construction.
package coupon

import (
	"fmt"
	"time"

	"coupon-service/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a coupon.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusDeleted  Status = "DELETED"
)

// ParseStatus converts a stored status string back into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusInactive, StatusDeleted:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown coupon status %q", s)
	}
}

// String returns the status name.
func (s Status) String() string {
	return string(s)
}

// Params carries the raw, untrusted input for creating a coupon.
type Params struct {
	Code           string
	Description    string
	DiscountValue  *decimal.Decimal
	ExpirationDate *time.Time
	Published      bool
}

// Coupon is the coupon aggregate root. Its status only changes through
// MarkDeleted.
type Coupon struct {
	id             uuid.UUID
	code           Code
	description    string
	discountValue  decimal.Decimal
	expirationDate time.Time
	status         Status
	published      bool
	redeemed       bool
	createdAt      time.Time
	updatedAt      time.Time
}

// New validates p against now and returns an ACTIVE, unredeemed coupon.
// Validation runs code, then discount, then expiration and stops at the first
// failure; no coupon is returned on error.
func New(p Params, now time.Time) (*Coupon, error) {
	code, err := ParseCode(p.Code)
	if err != nil {
		return nil, err
	}

	discount, err := ParseDiscount(p.DiscountValue)
	if err != nil {
		return nil, err
	}

	expiration, err := ParseExpiration(p.ExpirationDate, now)
	if err != nil {
		return nil, err
	}

	return &Coupon{
		id:             uuid.New(),
		code:           code,
		description:    p.Description,
		discountValue:  discount.Decimal(),
		expirationDate: expiration.Time(),
		status:         StatusActive,
		published:      p.Published,
		redeemed:       false,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// MarkDeleted soft-deletes the coupon. Deleting an already deleted coupon
// fails with ErrAlreadyDeleted rather than succeeding silently.
func (c *Coupon) MarkDeleted() error {
	if c.status == StatusDeleted {
		return model.ErrAlreadyDeleted
	}
	c.status = StatusDeleted
	return nil
}

// IsDeleted reports whether the coupon has been soft-deleted.
func (c *Coupon) IsDeleted() bool {
	return c.status == StatusDeleted
}

func (c *Coupon) ID() uuid.UUID                  { return c.id }
func (c *Coupon) Code() Code                     { return c.code }
func (c *Coupon) Description() string            { return c.description }
func (c *Coupon) DiscountValue() decimal.Decimal { return c.discountValue }
func (c *Coupon) ExpirationDate() time.Time      { return c.expirationDate }
func (c *Coupon) Status() Status                 { return c.status }
func (c *Coupon) Published() bool                { return c.published }
func (c *Coupon) Redeemed() bool                 { return c.redeemed }
func (c *Coupon) CreatedAt() time.Time           { return c.createdAt }
func (c *Coupon) UpdatedAt() time.Time           { return c.updatedAt }

// Snapshot is the flat, persisted form of a coupon.
type Snapshot struct {
	ID             uuid.UUID
	Code           string
	Description    string
	DiscountValue  decimal.Decimal
	ExpirationDate time.Time
	Status         Status
	Published      bool
	Redeemed       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Snapshot returns the coupon's current state for storage.
func (c *Coupon) Snapshot() Snapshot {
	return Snapshot{
		ID:             c.id,
		Code:           c.code.String(),
		Description:    c.description,
		DiscountValue:  c.discountValue,
		ExpirationDate: c.expirationDate,
		Status:         c.status,
		Published:      c.published,
		Redeemed:       c.redeemed,
		CreatedAt:      c.createdAt,
		UpdatedAt:      c.updatedAt,
	}
}

// Restore rebuilds a coupon from stored state. Creation-time rules are not
// re-applied: a stored coupon may legitimately be past its expiration date.
func Restore(s Snapshot) *Coupon {
	return &Coupon{
		id:             s.ID,
		code:           Code(s.Code),
		description:    s.Description,
		discountValue:  s.DiscountValue,
		expirationDate: s.ExpirationDate,
		status:         s.Status,
		published:      s.Published,
		redeemed:       s.Redeemed,
		createdAt:      s.CreatedAt,
		updatedAt:      s.UpdatedAt,
	}
}
