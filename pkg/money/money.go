// Package money keeps every amount in integer minor units (cents) and owns the
// single shipping and tax formula used by checkout and order display.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrNegative = errors.New("amount must not be negative")

var hundred = decimal.NewFromInt(100)

// Policy holds the pricing knobs. TaxRateBPS is in basis points: 1000 is 10%.
type Policy struct {
	ShippingCents  int64
	TaxRateBPS     int64
	MinAmountCents int64
	Currency       string
}

func DefaultPolicy() Policy {
	return Policy{
		ShippingCents:  1000,
		TaxRateBPS:     1000,
		MinAmountCents: 50,
		Currency:       "usd",
	}
}

type Line struct {
	UnitCents int64
	Quantity  int64
}

type Totals struct {
	Subtotal int64 `json:"subtotal_cents"`
	Shipping int64 `json:"shipping_cents"`
	Tax      int64 `json:"tax_cents"`
	Total    int64 `json:"total_cents"`
}

// Tax is round(rate * base), half up.
func (p Policy) Tax(base int64) int64 {
	if base <= 0 {
		return 0
	}
	return (base*p.TaxRateBPS + 5000) / 10000
}

func (p Policy) Compute(lines []Line) Totals {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.UnitCents * l.Quantity
	}
	return p.FromSubtotal(subtotal)
}

func (p Policy) FromSubtotal(subtotal int64) Totals {
	base := subtotal + p.ShippingCents
	tax := p.Tax(base)
	return Totals{
		Subtotal: subtotal,
		Shipping: p.ShippingCents,
		Tax:      tax,
		Total:    base + tax,
	}
}

// SplitTotal recovers the breakdown from a stored total, so that
// total == subtotal + shipping + tax holds for display.
func (p Policy) SplitTotal(total int64) Totals {
	den := 10000 + p.TaxRateBPS
	guess := (total*10000 + den/2) / den

	base := guess
	for _, b := range []int64{guess, guess - 1, guess + 1} {
		if b+p.Tax(b) == total {
			base = b
			break
		}
	}

	subtotal := base - p.ShippingCents
	if subtotal < 0 {
		subtotal = 0
	}
	return Totals{
		Subtotal: subtotal,
		Shipping: p.ShippingCents,
		Tax:      total - subtotal - p.ShippingCents,
		Total:    total,
	}
}

func (p Policy) BelowMinimum(total int64) bool {
	return total < p.MinAmountCents
}

// Parse converts a decimal string such as "24.99" into cents.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, ErrNegative
	}
	return d.Mul(hundred).Round(0).IntPart(), nil
}

func Format(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func FromUnits(units int64) int64 {
	return units * 100
}
