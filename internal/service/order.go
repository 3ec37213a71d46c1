package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/money"
)

const orderPageSize = 10

type OrderService struct {
	Repo  *repo.GormRepo
	Money money.Policy
}

type OrderDetails struct {
	Order    *models.Order
	Totals   money.Totals
	Updating bool
}

type OrderPage struct {
	Orders []OrderDetails
	Total  int64
	Page   int
	Pages  int
}

// breakdown prefers the stored columns and falls back to splitting the total
// for rows written before they existed.
func (s *OrderService) breakdown(o *models.Order) money.Totals {
	if o.SubtotalCents == 0 && o.ShippingCents == 0 && o.TaxCents == 0 && o.TotalCents > 0 {
		return s.Money.SplitTotal(o.TotalCents)
	}
	return money.Totals{
		Subtotal: o.SubtotalCents,
		Shipping: o.ShippingCents,
		Tax:      o.TaxCents,
		Total:    o.TotalCents,
	}
}

func (s *OrderService) details(o *models.Order) OrderDetails {
	return OrderDetails{
		Order:    o,
		Totals:   s.breakdown(o),
		Updating: o.Status == models.OrderStatusPending,
	}
}

func (s *OrderService) Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDetails, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	o, err := s.Repo.GetOrderForUser(ctx, userID, orderID)
	if err != nil {
		return nil, notFound(err, "order")
	}
	d := s.details(o)
	return &d, nil
}

func (s *OrderService) GetBySession(ctx context.Context, userID uuid.UUID, sessionID string) (*OrderDetails, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, &ValidationError{Fields: []string{"session_id"}}
	}
	o, err := s.Repo.GetOrderBySessionForUser(ctx, userID, sessionID)
	if err != nil {
		return nil, notFound(err, "order")
	}
	d := s.details(o)
	return &d, nil
}

func (s *OrderService) List(ctx context.Context, userID uuid.UUID, page int) (*OrderPage, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	p := util.Normalize(page, orderPageSize)
	total, orders, err := s.Repo.ListOrders(ctx, userID, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}

	out := &OrderPage{
		Orders: make([]OrderDetails, 0, len(orders)),
		Total:  total,
		Page:   p.Page,
		Pages:  util.PageCount(total, p.Limit),
	}
	for i := range orders {
		out.Orders = append(out.Orders, s.details(&orders[i]))
	}
	return out, nil
}
