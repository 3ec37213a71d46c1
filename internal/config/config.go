// Package config loads the checkout settings that sit on top of the shared
// service configuration.
package config

import (
	"os"
	"strings"

	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/money"
)

type Payment struct {
	StripeAPIKey        string
	StripeWebhookSecret string
	Money               money.Policy
}

func LoadPayment() Payment {
	def := money.DefaultPolicy()
	return Payment{
		StripeAPIKey:        strings.TrimSpace(os.Getenv("STRIPE_API_KEY")),
		StripeWebhookSecret: strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET")),
		Money: money.Policy{
			ShippingCents:  int64(pkgconfig.EnvIntDefault("SHIPPING_FEE_CENTS", int(def.ShippingCents))),
			TaxRateBPS:     int64(pkgconfig.EnvIntDefault("TAX_RATE_BPS", int(def.TaxRateBPS))),
			MinAmountCents: int64(pkgconfig.EnvIntDefault("PAYMENT_MIN_AMOUNT_CENTS", int(def.MinAmountCents))),
			Currency:       strings.ToLower(pkgconfig.EnvDefault("PAYMENT_CURRENCY", def.Currency)),
		},
	}
}

// StripeConfigured reports whether the API key looks like a server key.
func (p Payment) StripeConfigured() bool {
	return strings.HasPrefix(p.StripeAPIKey, "sk_") || strings.HasPrefix(p.StripeAPIKey, "rk_")
}
