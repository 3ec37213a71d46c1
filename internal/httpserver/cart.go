package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/guestcart"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc          *service.CartService
	SecureCookie bool
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := GetID(c)
	if err != nil {
		return fail(c, l, "get_cart", err)
	}

	view, err := h.Svc.List(ctx, userID)
	if err != nil {
		return fail(c, l, "get_cart", err)
	}
	return ok(c, http.StatusOK, envelope{"cart": transport.CartResponse{
		Items:  transport.CartItems(view.Items),
		Count:  view.Count,
		Totals: transport.Totals(view.Totals),
	}})
}

func (h *CartHTTP) Count(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.count")

	userID, err := GetID(c)
	if err != nil {
		return fail(c, l, "cart_count", err)
	}

	n, err := h.Svc.Count(ctx, userID)
	if err != nil {
		return fail(c, l, "cart_count", err)
	}
	return ok(c, http.StatusOK, envelope{"count": n})
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := GetID(c)
	if err != nil {
		return fail(c, l, "add_to_cart", err)
	}
	var req transport.AddToCartRequest
	if err := bindValid(c, &req); err != nil {
		return fail(c, l, "add_to_cart", err)
	}

	item, err := h.Svc.Add(ctx, userID, req.ProductID, req.Qty())
	if err != nil {
		return fail(c, l, "add_to_cart", err)
	}

	l.Info("item added to cart", "product_id", req.ProductID, "quantity", item.Quantity)
	return ok(c, http.StatusOK, envelope{"item": transport.CartItem(item)})
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, err := GetID(c)
	if err != nil {
		return fail(c, l, "update_cart_item", err)
	}
	itemID, err := paramID(c, "id")
	if err != nil {
		return fail(c, l, "update_cart_item", err)
	}
	var req transport.UpdateQuantityRequest
	if err := bindValid(c, &req); err != nil {
		return fail(c, l, "update_cart_item", err)
	}

	item, err := h.Svc.UpdateQuantity(ctx, userID, itemID, req.Quantity)
	if err != nil {
		return fail(c, l, "update_cart_item", err)
	}
	return ok(c, http.StatusOK, envelope{"item": transport.CartItem(item)})
}

func (h *CartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := GetID(c)
	if err != nil {
		return fail(c, l, "remove_cart_item", err)
	}
	itemID, err := paramID(c, "id")
	if err != nil {
		return fail(c, l, "remove_cart_item", err)
	}

	if err := h.Svc.Remove(ctx, userID, itemID); err != nil {
		return fail(c, l, "remove_cart_item", err)
	}
	return ok(c, http.StatusOK, nil)
}

// Merge folds the request's guest cart cookie into the user's cart.
func (h *CartHTTP) Merge(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.merge")

	userID, err := GetID(c)
	if err != nil {
		return fail(c, l, "merge_cart", err)
	}

	store := guestcart.NewStore(guestcart.NewCookieStorage(c, h.SecureCookie))
	store.Rehydrate()
	m := &guestcart.Merger{Cart: h.Svc, Store: store}

	res, err := m.Run(ctx, userID)
	if err != nil {
		return fail(c, l, "merge_cart", err)
	}

	l.Info("guest cart merged", "ran", res.Ran, "merged", res.Merged)
	return ok(c, http.StatusOK, envelope{"ran": res.Ran, "merged": res.Merged})
}
