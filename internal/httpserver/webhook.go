package httpserver

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const maxWebhookBody = 65536

type WebhookHTTP struct {
	Svc *service.FulfillmentService
}

// Stripe acknowledges every verified delivery with 200. Only a failed
// fulfillment transaction answers 500 so that the gateway redelivers.
func (h *WebhookHTTP) Stripe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webhook.stripe")

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody+1))
	if err != nil {
		return fail(c, l, "webhook", echo.NewHTTPError(http.StatusServiceUnavailable, "read body").SetInternal(err))
	}
	if len(payload) > maxWebhookBody {
		return fail(c, l, "webhook", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "payload too large"))
	}

	outcome, err := h.Svc.HandleWebhook(ctx, payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return fail(c, l, "webhook", err)
	}

	l.Info("webhook processed", "outcome", outcome)
	return ok(c, http.StatusOK, envelope{"received": true, "outcome": outcome})
}
