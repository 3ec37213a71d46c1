package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

type stripeSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripePaymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type StripeClients struct {
	Sessions stripeSessionAPI
	Intents  stripePaymentIntentAPI
}

type StripeConfig struct {
	APIKey        string
	WebhookSecret string
	Backends      *stripe.Backends
	Clients       *StripeClients
}

type Stripe struct {
	api           StripeClients
	webhookSecret string
}

func validKey(key string) bool {
	return strings.HasPrefix(key, "sk_") || strings.HasPrefix(key, "rk_")
}

func NewStripe(cfg StripeConfig) (*Stripe, error) {
	key := strings.TrimSpace(cfg.APIKey)

	var clients StripeClients
	if cfg.Clients != nil {
		clients = *cfg.Clients
	} else {
		if !validKey(key) {
			return nil, &Error{Kind: ErrMisconfigured, Op: "stripe", Err: errors.New("api key must start with sk_ or rk_")}
		}
		sc := client.New(key, cfg.Backends)
		clients = StripeClients{Sessions: sc.CheckoutSessions, Intents: sc.PaymentIntents}
	}
	if clients.Sessions == nil || clients.Intents == nil {
		return nil, &Error{Kind: ErrMisconfigured, Op: "stripe", Err: errors.New("incomplete client configuration")}
	}

	return &Stripe{api: clients, webhookSecret: strings.TrimSpace(cfg.WebhookSecret)}, nil
}

func classify(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.HTTPStatusCode == http.StatusUnauthorized {
		return &Error{Kind: ErrAuth, Op: op, Err: err}
	}
	return &Error{Kind: ErrGateway, Op: op, Err: err}
}

func (s *Stripe) CreatePaymentIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(strings.ToLower(req.Currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Metadata:           map[string]string{MetadataOrderID: req.OrderID},
	}
	params.Context = ctx
	params.SetIdempotencyKey("pi-" + req.OrderID)

	pi, err := s.api.Intents.New(params)
	if err != nil {
		return Intent{}, classify("stripe: create payment intent", err)
	}
	if pi == nil || pi.ClientSecret == "" {
		return Intent{}, &Error{Kind: ErrGateway, Op: "stripe: create payment intent", Err: errors.New("missing client secret")}
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, req SessionRequest) (Session, error) {
	currency := strings.ToLower(req.Currency)
	meta := map[string]string{MetadataOrderID: req.OrderID}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.OrderID),
		Metadata:          meta,
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{MetadataOrderID: req.OrderID},
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.SetIdempotencyKey("cs-" + req.OrderID)

	lines := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(max(item.Quantity, 1)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}
	params.LineItems = lines

	cs, err := s.api.Sessions.New(params)
	if err != nil {
		return Session{}, classify("stripe: create checkout session", err)
	}
	if cs == nil || cs.URL == "" {
		return Session{}, &Error{Kind: ErrGateway, Op: "stripe: create checkout session", Err: errors.New("missing redirect url")}
	}

	out := Session{ID: cs.ID, URL: cs.URL}
	if cs.PaymentIntent != nil {
		out.PaymentIntentID = cs.PaymentIntent.ID
	}
	return out, nil
}

// ParseEvent verifies the Stripe-Signature header against the raw body and
// extracts the order correlation key.
func (s *Stripe) ParseEvent(payload []byte, signature string) (Event, error) {
	if s.webhookSecret == "" {
		return Event{}, &Error{Kind: ErrMisconfigured, Op: "stripe: webhook", Err: errors.New("webhook secret not set")}
	}
	if signature == "" {
		return Event{}, &Error{Kind: ErrSignature, Op: "stripe: webhook", Err: webhook.ErrNotSigned}
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrNotSigned),
			errors.Is(err, webhook.ErrInvalidHeader),
			errors.Is(err, webhook.ErrNoValidSignature),
			errors.Is(err, webhook.ErrTooOld):
			return Event{}, &Error{Kind: ErrSignature, Op: "stripe: webhook", Err: err}
		}
		return Event{}, &Error{Kind: ErrPayload, Op: "stripe: webhook", Err: err}
	}

	out := Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return Event{}, &Error{Kind: ErrPayload, Op: "stripe: webhook", Err: fmt.Errorf("decode checkout session: %w", err)}
		}
		out.SessionID = cs.ID
		out.OrderRef = cs.ClientReferenceID
		if out.OrderRef == "" {
			out.OrderRef = cs.Metadata[MetadataOrderID]
		}
		if cs.PaymentIntent != nil {
			out.PaymentID = cs.PaymentIntent.ID
		}
	case EventPaymentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return Event{}, &Error{Kind: ErrPayload, Op: "stripe: webhook", Err: fmt.Errorf("decode payment intent: %w", err)}
		}
		out.PaymentID = pi.ID
		out.OrderRef = pi.Metadata[MetadataOrderID]
	}
	return out, nil
}
