package coupon

import (
	"strings"

	"coupon-service/internal/model"
)

// CodeLength is the exact length of a normalised coupon code.
const CodeLength = 6

// Code is a normalised coupon code made of uppercase ASCII letters and digits.
type Code string

// NormalizeCode strips every character that is not an ASCII letter or digit
// and uppercases what remains. It performs no length check.
func NormalizeCode(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	// Multi-byte runes only contain bytes >= 0x80 and are dropped with the rest.
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		}
	}

	return b.String()
}

// ParseCode normalises raw and checks that exactly CodeLength characters remain.
// The check runs on the normalised form, so "a#b1c2d3" fails with eight
// characters left while "a-b1!c2d" becomes "AB1C2D".
func ParseCode(raw string) (Code, error) {
	normalized := NormalizeCode(raw)
	if len(normalized) != CodeLength {
		return "", model.ErrInvalidCode
	}
	return Code(normalized), nil
}

// String returns the code as a plain string.
func (c Code) String() string {
	return string(c)
}
