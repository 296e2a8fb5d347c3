package coupon

import (
	"time"

	"coupon-service/internal/model"
)

// Expiration is a validated expiration timestamp.
type Expiration struct {
	at time.Time
}

// ParseExpiration rejects an absent timestamp or one strictly before now.
// A timestamp equal to now is accepted.
func ParseExpiration(t *time.Time, now time.Time) (Expiration, error) {
	if t == nil || t.IsZero() || t.Before(now) {
		return Expiration{}, model.ErrInvalidExpiration
	}
	return Expiration{at: *t}, nil
}

// Time returns the expiration timestamp.
func (e Expiration) Time() time.Time {
	return e.at
}
