// Package coupon holds the pure discount computation. It is a function of
// (cartTotal, coupon) only, so callers can re-derive a cart's discount for
// display without re-applying the coupon.
package coupon

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/al-shaimon/zkart-backend/internal/model"
)

var hundred = decimal.NewFromInt(100)

type Kind string

const (
	// KindFlat means the full percentage discount applied.
	KindFlat Kind = "FLAT"
	// KindUpto means the percentage discount was clamped to the coupon's
	// money ceiling.
	KindUpto Kind = "UPTO"
)

type Discount struct {
	Amount decimal.Decimal
	Kind   Kind
}

// Message renders the customer-facing description of the applied discount.
func (d Discount) Message(c *model.Coupon, currency string) string {
	if d.Kind == KindUpto && c.UsageLimit != nil {
		return fmt.Sprintf("%g%% off (up to %g %s)", c.Discount, *c.UsageLimit, currency)
	}
	return fmt.Sprintf("%g%% off on your order", c.Discount)
}

// Compute returns the discount for the given cart total. The raw discount is
// cartTotal * percent / 100; when the coupon carries a money cap and the raw
// discount exceeds it, the cap wins and the result is labeled UPTO.
func Compute(cartTotal decimal.Decimal, c *model.Coupon) Discount {
	raw := cartTotal.Mul(decimal.NewFromFloat(c.Discount)).Div(hundred).Round(2)

	if c.UsageLimit != nil {
		cap := decimal.NewFromFloat(*c.UsageLimit)
		if raw.GreaterThan(cap) {
			return Discount{Amount: cap, Kind: KindUpto}
		}
	}
	return Discount{Amount: raw, Kind: KindFlat}
}

// Usable reports whether the coupon can be redeemed at the given instant.
// Shop scoping is the caller's concern; this checks activity and the
// validity window only.
func Usable(c *model.Coupon, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}
	return true
}

// MinorUnits converts a major-unit amount to the gateway's integer
// minor-unit representation, rounding to the nearest unit.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
