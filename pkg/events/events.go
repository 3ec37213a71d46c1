package events

import (
	"time"

	"github.com/google/uuid"
)

type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    uuid.UUID `json:"orderID"`
	UserID     uuid.UUID `json:"userID"`
	TotalCents int64     `json:"totalCents"`
	PaymentID  string    `json:"paymentID,omitempty"`
	ItemCount  int       `json:"itemCount,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type CartEvent struct {
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"userID"`
	ProductID  uuid.UUID `json:"productID,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	Merged     int       `json:"merged,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

const (
	OrderCreated   = "order_created"
	OrderPaid      = "order_paid"
	OrderCancelled = "order_cancelled"

	CartItemAdded = "cart_item_added"
	CartMerged    = "cart_merged"
)
