package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CheckoutHTTP struct {
	Svc *service.CheckoutService
	// BaseURL overrides the origin derived from the request.
	BaseURL string
}

func (h *CheckoutHTTP) baseURL(c echo.Context) string {
	if h.BaseURL != "" {
		return strings.TrimRight(h.BaseURL, "/")
	}
	req := c.Request()
	proto := req.Header.Get(echo.HeaderXForwardedProto)
	if proto == "" {
		proto = c.Scheme()
	}
	host := req.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = req.Host
	}
	proto, _, _ = strings.Cut(proto, ",")
	host, _, _ = strings.Cut(host, ",")
	return strings.TrimSpace(proto) + "://" + strings.TrimSpace(host)
}

func (h *CheckoutHTTP) PaymentIntent(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.payment_intent")

	userID, err := GetID(c)
	if err != nil {
		return fail(c, l, "payment_intent", err)
	}
	var req transport.CheckoutRequest
	if err := bindValid(c, &req); err != nil {
		return fail(c, l, "payment_intent", err)
	}

	res, err := h.Svc.CreatePaymentIntent(ctx, userID, req.AddressID)
	if err != nil {
		return fail(c, l, "payment_intent", err)
	}
	return ok(c, http.StatusOK, envelope{
		"order_id":      res.OrderID,
		"client_secret": res.ClientSecret,
		"totals":        transport.Totals(res.Totals),
	})
}

func (h *CheckoutHTTP) Session(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.session")

	userID, err := GetID(c)
	if err != nil {
		return fail(c, l, "checkout_session", err)
	}
	var req transport.CheckoutRequest
	if err := bindValid(c, &req); err != nil {
		return fail(c, l, "checkout_session", err)
	}

	res, err := h.Svc.CreateCheckoutSession(ctx, userID, req.AddressID, h.baseURL(c))
	if err != nil {
		return fail(c, l, "checkout_session", err)
	}
	return ok(c, http.StatusOK, envelope{
		"order_id":   res.OrderID,
		"session_id": res.SessionID,
		"url":        res.RedirectURL,
		"totals":     transport.Totals(res.Totals),
	})
}
