package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type envelope map[string]any

func ok(c echo.Context, status int, body envelope) error {
	if body == nil {
		body = envelope{}
	}
	body["ok"] = true
	return c.JSON(status, body)
}

func GetID(c echo.Context) (uuid.UUID, error) {
	s, isStr := c.Get(middleware.ContextUserID).(string)
	if !isStr || s == "" {
		return uuid.Nil, service.ErrUnauthenticated
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, service.ErrUnauthenticated
	}
	return id, nil
}

// paramID parses a uuid path parameter; a malformed id is reported as
// not found.
func paramID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, service.ErrNotFound
	}
	return id, nil
}

func classify(err error) (int, string) {
	var (
		verr *service.ValidationError
		uerr *service.ItemUnavailableError
		herr *echo.HTTPError
	)
	switch {
	case errors.As(err, &herr):
		if msg, isStr := herr.Message.(string); isStr {
			return herr.Code, msg
		}
		return herr.Code, http.StatusText(herr.Code)
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.As(err, &uerr):
		return http.StatusConflict, uerr.Error()
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, service.ErrUnauthenticated.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidAddress),
		errors.Is(err, service.ErrInvalidWebhook):
		return http.StatusBadRequest, sentinelText(err)
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, service.ErrNotFound.Error()
	case errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrAmountTooSmall),
		errors.Is(err, service.ErrConflict):
		return http.StatusConflict, sentinelText(err)
	case errors.Is(err, service.ErrGatewayMisconfigured):
		return http.StatusInternalServerError, err.Error()
	case errors.Is(err, service.ErrGatewayAuth), errors.Is(err, service.ErrPaymentGateway):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func sentinelText(err error) string {
	for _, s := range []error{
		service.ErrInvalidQuantity, service.ErrEmptyCart, service.ErrInvalidAddress,
		service.ErrInvalidWebhook, service.ErrOutOfStock, service.ErrAmountTooSmall,
		service.ErrConflict,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return err.Error()
}

// fail logs err under op and hands it to the error handler as an
// echo.HTTPError carrying the mapped status.
func fail(c echo.Context, l *slog.Logger, op string, err error) error {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error(op+"_error", "status", status, "error", err)
	} else {
		l.Warn(op+"_error", "status", status, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(status, msg).SetInternal(err)
}

func genericMessage(status int) string {
	switch status {
	case http.StatusBadGateway:
		return "payment service unavailable"
	case http.StatusInternalServerError:
		return "internal error"
	default:
		return http.StatusText(status)
	}
}

// ErrorHandler renders every error as {"ok": false, "error": msg}. Server
// side messages are replaced by generic text when detailed is false.
func ErrorHandler(detailed bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := classify(err)
		if !detailed && status >= http.StatusInternalServerError {
			msg = genericMessage(status)
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, envelope{"ok": false, "error": msg})
	}
}
