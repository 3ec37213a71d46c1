package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/guestcart"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// GuestCartHTTP serves the cookie backed cart of a visitor who has not
// signed in.
type GuestCartHTTP struct {
	Cart         *service.CartService
	SecureCookie bool
}

func (h *GuestCartHTTP) store(c echo.Context) *guestcart.Store {
	s := guestcart.NewStore(guestcart.NewCookieStorage(c, h.SecureCookie))
	s.Rehydrate()
	return s
}

func (h *GuestCartHTTP) render(c echo.Context, s *guestcart.Store) error {
	items, err := s.Items()
	if err != nil {
		return err
	}
	count, err := s.TotalCount()
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if id, err := uuid.Parse(it.ProductID); err == nil {
			ids = append(ids, id)
		}
	}
	products, err := h.Cart.ProductsByIDs(c.Request().Context(), ids)
	if err != nil {
		return err
	}
	cards := make(map[string]transport.ProductCard, len(products))
	for i := range products {
		cards[products[i].ID.String()] = transport.Card(&products[i])
	}

	resp := transport.GuestCartResponse{Items: make([]transport.GuestCartItemDTO, 0, len(items)), Count: count}
	for _, it := range items {
		dto := transport.GuestCartItemDTO{Quantity: it.Quantity}
		dto.ProductID, _ = uuid.Parse(it.ProductID)
		if card, found := cards[it.ProductID]; found {
			dto.Product = &card
		}
		resp.Items = append(resp.Items, dto)
	}
	return ok(c, http.StatusOK, envelope{"cart": resp})
}

func (h *GuestCartHTTP) Get(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "guest_cart.get")
	if err := h.render(c, h.store(c)); err != nil {
		return fail(c, l, "get_guest_cart", err)
	}
	return nil
}

func (h *GuestCartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "guest_cart.add")

	var req transport.GuestItemRequest
	if err := bindValid(c, &req); err != nil {
		return fail(c, l, "add_guest_item", err)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity > 0 {
		found, err := h.Cart.ProductsByIDs(ctx, []uuid.UUID{req.ProductID})
		if err != nil {
			return fail(c, l, "add_guest_item", err)
		}
		if len(found) == 0 {
			return fail(c, l, "add_guest_item", service.ErrNotFound)
		}
		if found[0].Stock < 1 {
			return fail(c, l, "add_guest_item", service.ErrOutOfStock)
		}
	}

	s := h.store(c)
	if err := s.AddItem(req.ProductID.String(), req.Quantity); err != nil {
		return fail(c, l, "add_guest_item", err)
	}
	if err := h.render(c, s); err != nil {
		return fail(c, l, "add_guest_item", err)
	}
	return nil
}

func (h *GuestCartHTTP) UpdateItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "guest_cart.update")

	productID, err := paramID(c, "product_id")
	if err != nil {
		return fail(c, l, "update_guest_item", err)
	}
	var req transport.UpdateQuantityRequest
	if err := bindValid(c, &req); err != nil {
		return fail(c, l, "update_guest_item", err)
	}

	s := h.store(c)
	if err := s.UpdateQuantity(productID.String(), req.Quantity); err != nil {
		return fail(c, l, "update_guest_item", err)
	}
	if err := h.render(c, s); err != nil {
		return fail(c, l, "update_guest_item", err)
	}
	return nil
}

func (h *GuestCartHTTP) RemoveItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "guest_cart.remove")

	productID, err := paramID(c, "product_id")
	if err != nil {
		return fail(c, l, "remove_guest_item", err)
	}

	s := h.store(c)
	if err := s.RemoveItem(productID.String()); err != nil {
		return fail(c, l, "remove_guest_item", err)
	}
	if err := h.render(c, s); err != nil {
		return fail(c, l, "remove_guest_item", err)
	}
	return nil
}

func (h *GuestCartHTTP) Clear(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "guest_cart.clear")

	if err := h.store(c).Clear(); err != nil {
		return fail(c, l, "clear_guest_cart", err)
	}
	return ok(c, http.StatusOK, nil)
}
