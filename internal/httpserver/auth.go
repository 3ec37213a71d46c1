package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/guestcart"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	Cart         *service.CartService
	SecureCookie bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bindValid(c, &req); err != nil {
		return fail(c, l, "register", err)
	}

	user, err := h.Svc.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return fail(c, l, "register", err)
	}

	l.Info("user registered", "user_id", user.ID)
	return ok(c, http.StatusCreated, envelope{"user": user})
}

// Login sets the access cookie and folds the request's guest cart into the
// user's cart. A failed merge leaves the guest cart in place and does not
// fail the login.
func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bindValid(c, &req); err != nil {
		return fail(c, l, "login", err)
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, l, "login", err)
	}
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookieName, res.AccessToken, "/", res.AccessExp, h.SecureCookie))

	merged := 0
	if h.Cart != nil {
		store := guestcart.NewStore(guestcart.NewCookieStorage(c, h.SecureCookie))
		store.Rehydrate()
		m := &guestcart.Merger{Cart: h.Cart, Store: store}
		out, err := m.Run(ctx, res.User.ID)
		if err != nil {
			l.Warn("guest_merge_error", "user_id", res.User.ID, "error", err)
		}
		merged = out.Merged
	}

	l.Info("user logged in", "user_id", res.User.ID, "merged", merged)
	return ok(c, http.StatusOK, envelope{
		"user":         res.User,
		"access_token": res.AccessToken,
		"expires_at":   res.AccessExp.UTC().Format(time.RFC3339),
		"merged":       merged,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookieName, "/", h.SecureCookie))
	return ok(c, http.StatusOK, nil)
}
