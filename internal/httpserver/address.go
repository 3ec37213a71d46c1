package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AddressHTTP struct {
	Svc *service.AddressService
}

func (h *AddressHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.list")

	userID, err := GetID(c)
	if err != nil {
		return fail(c, l, "list_addresses", err)
	}
	addrs, err := h.Svc.List(ctx, userID)
	if err != nil {
		return fail(c, l, "list_addresses", err)
	}
	return ok(c, http.StatusOK, envelope{"addresses": addrs})
}

func (h *AddressHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.create")

	userID, err := GetID(c)
	if err != nil {
		return fail(c, l, "create_address", err)
	}
	var req transport.CreateAddressRequest
	if err := bindValid(c, &req); err != nil {
		return fail(c, l, "create_address", err)
	}

	a, err := h.Svc.Create(ctx, userID, service.AddressInput{
		Label:      req.Label,
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	})
	if err != nil {
		return fail(c, l, "create_address", err)
	}

	l.Info("address created", "address_id", a.ID, "default", a.IsDefault)
	return ok(c, http.StatusCreated, envelope{"address": a})
}
