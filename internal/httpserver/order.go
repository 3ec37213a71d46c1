package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func orderResponse(d *service.OrderDetails) transport.OrderResponse {
	return transport.Order(d.Order, d.Totals, d.Updating)
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	userID, err := GetID(c)
	if err != nil {
		return fail(c, l, "list_orders", err)
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))

	res, err := h.Svc.List(ctx, userID, page)
	if err != nil {
		return fail(c, l, "list_orders", err)
	}
	orders := make([]transport.OrderResponse, 0, len(res.Orders))
	for i := range res.Orders {
		orders = append(orders, orderResponse(&res.Orders[i]))
	}
	return ok(c, http.StatusOK, envelope{
		"orders": orders,
		"total":  res.Total,
		"page":   res.Page,
		"pages":  res.Pages,
	})
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := GetID(c)
	if err != nil {
		return fail(c, l, "get_order", err)
	}
	orderID, err := paramID(c, "id")
	if err != nil {
		return fail(c, l, "get_order", err)
	}

	d, err := h.Svc.Get(ctx, userID, orderID)
	if err != nil {
		return fail(c, l, "get_order", err)
	}
	return ok(c, http.StatusOK, envelope{"order": orderResponse(d)})
}

func (h *OrderHTTP) GetBySession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.by_session")

	userID, err := GetID(c)
	if err != nil {
		return fail(c, l, "get_order_by_session", err)
	}

	d, err := h.Svc.GetBySession(ctx, userID, c.Param("session_id"))
	if err != nil {
		return fail(c, l, "get_order_by_session", err)
	}
	return ok(c, http.StatusOK, envelope{"order": orderResponse(d)})
}
