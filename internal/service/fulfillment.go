package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/cache"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type Outcome string

const (
	OutcomeFulfilled        Outcome = "fulfilled"
	OutcomeIgnored          Outcome = "ignored"
	OutcomeMissingReference Outcome = "missing_reference"
	OutcomeOrderNotFound    Outcome = "order_not_found"
	OutcomeAlreadyProcessed Outcome = "already_processed"
)

type FulfillmentService struct {
	Repo     *repo.GormRepo
	Verifier payment.WebhookVerifier
	Cache    *cache.Pages
	Events   events.Publisher
}

// HandleWebhook verifies a raw webhook delivery and fulfills the order it
// refers to. A returned error other than ErrInvalidWebhook means the gateway
// should redeliver.
func (s *FulfillmentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	ev, err := s.Verifier.ParseEvent(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrMisconfigured) {
			return "", fmt.Errorf("%w: %w", ErrGatewayMisconfigured, err)
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidWebhook, err)
	}
	return s.Fulfill(ctx, ev)
}

// Fulfill marks the referenced order PAID exactly once. Deliveries that cannot
// be matched to a PENDING order are acknowledged without writes.
func (s *FulfillmentService) Fulfill(ctx context.Context, ev payment.Event) (out Outcome, err error) {
	ctx, span := tracer.Start(ctx, "webhook.fulfill")
	span.SetAttributes(attribute.String("event.type", ev.Type), attribute.String("event.id", ev.ID))
	defer func() {
		span.SetAttributes(attribute.String("fulfillment.outcome", string(out)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	l := logging.FromContext(ctx).With("svc", "webhook.fulfill", "event_type", ev.Type, "event_id", ev.ID)

	if !ev.Fulfills() {
		return OutcomeIgnored, nil
	}
	if ev.OrderRef == "" {
		l.Warn("webhook_skip", "reason", "missing order reference")
		return OutcomeMissingReference, nil
	}

	orderID, err := uuid.Parse(ev.OrderRef)
	if err != nil {
		l.Warn("webhook_skip", "reason", "order reference is not an id", "order_ref", ev.OrderRef)
		return OutcomeOrderNotFound, nil
	}
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("webhook_skip", "reason", "order not found", "order_id", orderID)
			return OutcomeOrderNotFound, nil
		}
		return "", fmt.Errorf("load order: %w", err)
	}
	if order.Status != models.OrderStatusPending {
		l.Info("webhook_skip", "reason", "order already processed", "order_id", orderID, "status", order.Status)
		return OutcomeAlreadyProcessed, nil
	}

	items, err := s.Repo.FulfillOrder(ctx, order, ev.PaymentID)
	if err != nil {
		if errors.Is(err, repo.ErrAlreadyProcessed) {
			l.Info("webhook_skip", "reason", "lost status race", "order_id", orderID)
			return OutcomeAlreadyProcessed, nil
		}
		l.Error("webhook_fulfill_error", "order_id", orderID, "error", err)
		return "", fmt.Errorf("fulfill order %s: %w", orderID, err)
	}

	if err := s.Cache.InvalidateStock(ctx); err != nil {
		l.Warn("cache_invalidate_error", "error", err)
	}
	ordersPaid.Add(ctx, 1)
	publish(ctx, s.Events, events.TopicOrders, order.ID.String(), events.OrderEvent{
		Type:       events.OrderPaid,
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalCents: order.TotalCents,
		PaymentID:  ev.PaymentID,
		ItemCount:  len(items),
		OccurredAt: time.Now().UTC(),
	})
	l.Info("order paid", "order_id", order.ID, "items", len(items), "payment_id", ev.PaymentID)
	return OutcomeFulfilled, nil
}
