// Package payment hides the payment processor behind a small interface used by
// checkout and webhook fulfillment.
package payment

import (
	"context"
	"errors"
)

var (
	ErrMisconfigured = errors.New("payment gateway misconfigured")
	ErrAuth          = errors.New("payment gateway authentication failed")
	ErrGateway       = errors.New("payment gateway error")
	ErrSignature     = errors.New("invalid webhook signature")
	ErrPayload       = errors.New("malformed webhook payload")
)

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentSucceeded  = "payment_intent.succeeded"

	// MetadataOrderID is the correlation key echoed back in webhook events.
	MetadataOrderID = "orderId"
)

type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type IntentRequest struct {
	OrderID  string
	Amount   int64
	Currency string
}

type Intent struct {
	ID           string
	ClientSecret string
}

type SessionRequest struct {
	OrderID       string
	Currency      string
	Items         []LineItem
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
}

type Session struct {
	ID              string
	URL             string
	PaymentIntentID string
}

// Event is a verified webhook notification reduced to what fulfillment needs.
type Event struct {
	ID        string
	Type      string
	OrderRef  string
	PaymentID string
	SessionID string
}

func (e Event) Fulfills() bool {
	return e.Type == EventCheckoutCompleted || e.Type == EventPaymentSucceeded
}

type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (Intent, error)
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (Session, error)
}

type WebhookVerifier interface {
	ParseEvent(payload []byte, signature string) (Event, error)
}

// Error carries the failure class alongside the processor's own error.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Unconfigured is used when no API key is available; every call fails with
// ErrMisconfigured.
type Unconfigured struct{}

func (Unconfigured) CreatePaymentIntent(context.Context, IntentRequest) (Intent, error) {
	return Intent{}, &Error{Kind: ErrMisconfigured, Op: "create payment intent"}
}

func (Unconfigured) CreateCheckoutSession(context.Context, SessionRequest) (Session, error) {
	return Session{}, &Error{Kind: ErrMisconfigured, Op: "create checkout session"}
}

func (Unconfigured) ParseEvent([]byte, string) (Event, error) {
	return Event{}, &Error{Kind: ErrMisconfigured, Op: "parse webhook"}
}
