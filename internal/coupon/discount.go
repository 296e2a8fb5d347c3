package coupon

import (
	"coupon-service/internal/model"

	"github.com/shopspring/decimal"
)

// MinDiscount is the smallest accepted discount value, inclusive.
var MinDiscount = decimal.RequireFromString("0.5")

// Discount is a validated discount value.
type Discount struct {
	value decimal.Decimal
}

// ParseDiscount rejects an absent value or one strictly below MinDiscount.
func ParseDiscount(v *decimal.Decimal) (Discount, error) {
	if v == nil || v.LessThan(MinDiscount) {
		return Discount{}, model.ErrInvalidDiscount
	}
	return Discount{value: *v}, nil
}

// Decimal returns the underlying decimal value.
func (d Discount) Decimal() decimal.Decimal {
	return d.value
}
