package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/storefront/pkg/money"
)

func TestLoadPayment_Defaults(t *testing.T) {
	t.Setenv("STRIPE_API_KEY", "")
	t.Setenv("SHIPPING_FEE_CENTS", "")
	t.Setenv("TAX_RATE_BPS", "")
	t.Setenv("PAYMENT_MIN_AMOUNT_CENTS", "")
	t.Setenv("PAYMENT_CURRENCY", "")

	p := LoadPayment()
	assert.Equal(t, money.DefaultPolicy(), p.Money)
	assert.False(t, p.StripeConfigured())
}

func TestLoadPayment_Overrides(t *testing.T) {
	t.Setenv("STRIPE_API_KEY", "sk_test_123")
	t.Setenv("SHIPPING_FEE_CENTS", "500")
	t.Setenv("TAX_RATE_BPS", "825")
	t.Setenv("PAYMENT_CURRENCY", "EUR")

	p := LoadPayment()
	assert.True(t, p.StripeConfigured())
	assert.EqualValues(t, 500, p.Money.ShippingCents)
	assert.EqualValues(t, 825, p.Money.TaxRateBPS)
	assert.Equal(t, "eur", p.Money.Currency)

	t.Setenv("STRIPE_API_KEY", "pk_test_123")
	assert.False(t, LoadPayment().StripeConfigured())
}
