// Package service holds the storefront use cases: cart, addresses, checkout,
// webhook fulfillment, order queries, catalog, reviews and auth.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const instrumentation = "github.com/Skotchmaster/storefront/internal/service"

var (
	tracer = otel.Tracer(instrumentation)
	meter  = otel.Meter(instrumentation)

	ordersCreated, _    = meter.Int64Counter("orders_created", metric.WithDescription("PENDING orders accepted by the payment gateway"))
	ordersPaid, _       = meter.Int64Counter("orders_paid", metric.WithDescription("orders moved to PAID by a webhook"))
	checkoutFailures, _ = meter.Int64Counter("checkout_failures", metric.WithDescription("checkout attempts rolled back after a gateway error"))
)

func publish(ctx context.Context, pub events.Publisher, topic, key string, event any) {
	if pub == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := pub.PublishEvent(pctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "key", key, "error", err)
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func requireUser(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}
	return nil
}
