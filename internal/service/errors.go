package service

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrValidation           = errors.New("validation")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrNotFound             = errors.New("not found")
	ErrOutOfStock           = errors.New("out of stock")
	ErrInvalidAddress       = errors.New("invalid shipping address")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrItemUnavailable      = errors.New("item unavailable")
	ErrAmountTooSmall       = errors.New("amount below payment minimum")
	ErrPaymentGateway       = errors.New("payment gateway error")
	ErrGatewayMisconfigured = errors.New("payment gateway misconfigured")
	ErrGatewayAuth          = errors.New("payment gateway rejected credentials")
	ErrConflict             = errors.New("conflict")
	ErrInvalidCredentials   = errors.New("invalid email or password")
)

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ItemUnavailableError names the cart product that can no longer be bought.
type ItemUnavailableError struct {
	Product string
	Reason  string
}

func (e *ItemUnavailableError) Error() string {
	if e.Reason == "" {
		return "item unavailable: " + e.Product
	}
	return "item unavailable: " + e.Product + " (" + e.Reason + ")"
}

func (e *ItemUnavailableError) Unwrap() error { return ErrItemUnavailable }

// ErrInvalidWebhook covers unsigned, badly signed and undecodable webhook
// payloads.
var ErrInvalidWebhook = errors.New("invalid webhook")
