package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/money"
)

type CheckoutService struct {
	Repo    *repo.GormRepo
	Gateway payment.Gateway
	Money   money.Policy
	Events  events.Publisher
}

type PaymentIntentResult struct {
	OrderID      uuid.UUID
	ClientSecret string
	Totals       money.Totals
}

type CheckoutSessionResult struct {
	OrderID     uuid.UUID
	SessionID   string
	RedirectURL string
	Totals      money.Totals
}

type draft struct {
	order *models.Order
	cart  []models.CartItem
}

// prepare validates the cart and address, prices the cart and stores a
// PENDING order.
func (s *CheckoutService) prepare(ctx context.Context, userID, addressID uuid.UUID) (*draft, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	cart, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	if addressID == uuid.Nil {
		return nil, ErrInvalidAddress
	}
	addr, err := s.Repo.GetAddress(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAddress
		}
		return nil, fmt.Errorf("load address: %w", err)
	}

	lines := make([]money.Line, 0, len(cart))
	for _, it := range cart {
		p := it.Product
		switch {
		case p == nil:
			return nil, &ItemUnavailableError{Product: it.ProductID.String(), Reason: "no longer sold"}
		case p.PriceCents < 0:
			return nil, &ItemUnavailableError{Product: p.Name, Reason: "invalid price"}
		case p.Stock < it.Quantity:
			return nil, &ItemUnavailableError{Product: p.Name, Reason: fmt.Sprintf("only %d left", p.Stock)}
		}
		lines = append(lines, money.Line{UnitCents: p.PriceCents, Quantity: int64(it.Quantity)})
	}

	totals := s.Money.Compute(lines)
	if s.Money.BelowMinimum(totals.Total) {
		return nil, fmt.Errorf("total %s: %w", money.Format(totals.Total), ErrAmountTooSmall)
	}

	order := &models.Order{
		UserID:            userID,
		Status:            models.OrderStatusPending,
		SubtotalCents:     totals.Subtotal,
		ShippingCents:     totals.Shipping,
		TaxCents:          totals.Tax,
		TotalCents:        totals.Total,
		ShippingAddressID: &addr.ID,
	}
	if _, err := s.Repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &draft{order: order, cart: cart}, nil
}

func (s *CheckoutService) totals(o *models.Order) money.Totals {
	return money.Totals{Subtotal: o.SubtotalCents, Shipping: o.ShippingCents, Tax: o.TaxCents, Total: o.TotalCents}
}

// compensate removes the PENDING order after the gateway refused it.
func (s *CheckoutService) compensate(ctx context.Context, order *models.Order, cause error) {
	l := logging.FromContext(ctx)
	if err := s.Repo.DeletePendingOrder(context.WithoutCancel(ctx), order.ID); err != nil {
		l.Error("checkout_compensation_error", "order_id", order.ID, "error", err)
	}
	checkoutFailures.Add(ctx, 1)
	publish(ctx, s.Events, events.TopicOrders, order.ID.String(), events.OrderEvent{
		Type:       events.OrderCancelled,
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalCents: order.TotalCents,
		Reason:     cause.Error(),
		OccurredAt: time.Now().UTC(),
	})
}

func gatewayErr(err error) error {
	switch {
	case errors.Is(err, payment.ErrMisconfigured):
		return fmt.Errorf("%w: %w", ErrGatewayMisconfigured, err)
	case errors.Is(err, payment.ErrAuth):
		return fmt.Errorf("%w: %w", ErrGatewayAuth, err)
	default:
		return fmt.Errorf("%w: %w", ErrPaymentGateway, err)
	}
}

func (s *CheckoutService) accepted(ctx context.Context, order *models.Order, paymentRef string) {
	ordersCreated.Add(ctx, 1)
	publish(ctx, s.Events, events.TopicOrders, order.ID.String(), events.OrderEvent{
		Type:       events.OrderCreated,
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalCents: order.TotalCents,
		PaymentID:  paymentRef,
		OccurredAt: time.Now().UTC(),
	})
}

// CreatePaymentIntent creates a PENDING order for the cart and an embedded
// card payment for its total. The client secret is returned, never stored.
func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, userID, addressID uuid.UUID) (res *PaymentIntentResult, err error) {
	ctx, span := tracer.Start(ctx, "checkout.payment_intent")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	l := logging.FromContext(ctx).With("svc", "checkout.payment_intent")

	d, err := s.prepare(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", d.order.ID.String()),
		attribute.Int64("order.total_cents", d.order.TotalCents),
	)

	intent, err := s.Gateway.CreatePaymentIntent(ctx, payment.IntentRequest{
		OrderID:  d.order.ID.String(),
		Amount:   d.order.TotalCents,
		Currency: s.Money.Currency,
	})
	if err == nil && intent.ClientSecret == "" {
		err = &payment.Error{Kind: payment.ErrGateway, Op: "create payment intent", Err: errors.New("empty client secret")}
	}
	if err != nil {
		l.Error("payment_intent_error", "order_id", d.order.ID, "error", err)
		s.compensate(ctx, d.order, err)
		return nil, gatewayErr(err)
	}

	s.accepted(ctx, d.order, intent.ID)
	l.Info("payment intent created", "order_id", d.order.ID, "total_cents", d.order.TotalCents)
	return &PaymentIntentResult{OrderID: d.order.ID, ClientSecret: intent.ClientSecret, Totals: s.totals(d.order)}, nil
}

// CreateCheckoutSession creates a PENDING order and a hosted checkout page
// for it. baseURL is the public origin the gateway redirects back to.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, userID, addressID uuid.UUID, baseURL string) (res *CheckoutSessionResult, err error) {
	ctx, span := tracer.Start(ctx, "checkout.session")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	l := logging.FromContext(ctx).With("svc", "checkout.session")

	d, err := s.prepare(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", d.order.ID.String()),
		attribute.Int64("order.total_cents", d.order.TotalCents),
	)

	items := make([]payment.LineItem, 0, len(d.cart)+2)
	for _, it := range d.cart {
		items = append(items, payment.LineItem{
			Name:       it.Product.Name,
			UnitAmount: it.Product.PriceCents,
			Quantity:   int64(it.Quantity),
		})
	}
	if d.order.ShippingCents > 0 {
		items = append(items, payment.LineItem{Name: "Shipping", UnitAmount: d.order.ShippingCents, Quantity: 1})
	}
	if d.order.TaxCents > 0 {
		items = append(items, payment.LineItem{Name: "Tax", UnitAmount: d.order.TaxCents, Quantity: 1})
	}

	req := payment.SessionRequest{
		OrderID:    d.order.ID.String(),
		Currency:   s.Money.Currency,
		Items:      items,
		SuccessURL: strings.TrimRight(baseURL, "/") + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  strings.TrimRight(baseURL, "/") + "/checkout",
	}
	if u, uerr := s.Repo.GetUserByID(ctx, userID); uerr == nil {
		req.CustomerEmail = u.Email
	}

	sess, err := s.Gateway.CreateCheckoutSession(ctx, req)
	if err == nil && sess.URL == "" {
		err = &payment.Error{Kind: payment.ErrGateway, Op: "create checkout session", Err: errors.New("empty redirect url")}
	}
	if err != nil {
		l.Error("checkout_session_error", "order_id", d.order.ID, "error", err)
		s.compensate(ctx, d.order, err)
		return nil, gatewayErr(err)
	}

	if err := s.Repo.SetPaymentSession(ctx, d.order.ID, sess.ID); err != nil {
		l.Error("checkout_session_persist_error", "order_id", d.order.ID, "error", err)
		s.compensate(ctx, d.order, err)
		return nil, fmt.Errorf("store checkout session: %w", err)
	}

	s.accepted(ctx, d.order, sess.ID)
	l.Info("checkout session created", "order_id", d.order.ID, "session_id", sess.ID)
	return &CheckoutSessionResult{
		OrderID:     d.order.ID,
		SessionID:   sess.ID,
		RedirectURL: sess.URL,
		Totals:      s.totals(d.order),
	}, nil
}
