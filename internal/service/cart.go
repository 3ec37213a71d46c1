package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/guestcart"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/cache"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/money"
)

type CartService struct {
	Repo   *repo.GormRepo
	Cache  *cache.Pages
	Events events.Publisher
	Money  money.Policy
}

type CartView struct {
	Items  []models.CartItem
	Count  int
	Totals money.Totals
}

func (s *CartService) mapCartErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrOutOfStock):
		return ErrOutOfStock
	default:
		return notFound(err, "product")
	}
}

// Add puts quantity units of a product into the user's cart, capped at the
// product's current stock.
func (s *CartService) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add")

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if productID == uuid.Nil {
		return nil, &ValidationError{Fields: []string{"product_id"}}
	}

	item, err := s.Repo.AddToCart(ctx, userID, productID, quantity)
	if err != nil {
		err = s.mapCartErr(err)
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrOutOfStock) {
			l.Error("add_to_cart_error", "product_id", productID, "error", err)
		}
		return nil, err
	}

	if err := s.Cache.InvalidateStock(ctx); err != nil {
		l.Warn("cache_invalidate_error", "error", err)
	}
	publish(ctx, s.Events, events.TopicCart, userID.String(), events.CartEvent{
		Type:       events.CartItemAdded,
		UserID:     userID,
		ProductID:  productID,
		Quantity:   item.Quantity,
		OccurredAt: time.Now().UTC(),
	})
	return item, nil
}

func (s *CartService) List(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	view := &CartView{Items: items}
	lines := make([]money.Line, 0, len(items))
	for _, it := range items {
		view.Count += it.Quantity
		if it.Product != nil {
			lines = append(lines, money.Line{UnitCents: it.Product.PriceCents, Quantity: int64(it.Quantity)})
		}
	}
	if len(items) > 0 {
		view.Totals = s.Money.Compute(lines)
	}
	return view, nil
}

func (s *CartService) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	return s.Repo.CountCart(ctx, userID)
}

// UpdateQuantity sets the quantity of one of the user's rows, capped at stock.
// A quantity below 1 is rejected and leaves the row unchanged.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.Repo.UpdateCartQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		if errors.Is(err, repo.ErrOutOfStock) {
			return nil, ErrOutOfStock
		}
		return nil, notFound(err, "cart item")
	}
	if err := s.Cache.InvalidateStock(ctx); err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_error", "svc", "cart.update", "error", err)
	}
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.Repo.RemoveCartItem(ctx, userID, itemID); err != nil {
		return notFound(err, "cart item")
	}
	if err := s.Cache.InvalidateStock(ctx); err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_error", "svc", "cart.remove", "error", err)
	}
	return nil
}

// ProductsByIDs returns products in the order of ids. Unknown ids are skipped.
func (s *CartService) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	found, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	out := make([]models.Product, 0, len(found))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, p)
		}
	}
	return out, nil
}

// MergeGuest adds guest cart entries one by one with the same clamp and
// increment rules as Add. Entries for unknown or sold out products and
// non-positive quantities are skipped. It returns how many entries merged.
func (s *CartService) MergeGuest(ctx context.Context, userID uuid.UUID, items []guestcart.Item) (int, error) {
	l := logging.FromContext(ctx).With("svc", "cart.merge")

	if err := requireUser(userID); err != nil {
		return 0, err
	}

	merged := 0
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			l.Warn("merge_skip", "reason", "invalid product id", "product_id", it.ProductID)
			continue
		}
		if _, err := s.Repo.AddToCart(ctx, userID, productID, it.Quantity); err != nil {
			mapped := s.mapCartErr(err)
			if errors.Is(mapped, ErrNotFound) || errors.Is(mapped, ErrOutOfStock) {
				l.Info("merge_skip", "reason", mapped.Error(), "product_id", productID)
				continue
			}
			return merged, fmt.Errorf("merge product %s: %w", productID, err)
		}
		merged++
	}

	if merged > 0 {
		if err := s.Cache.InvalidateStock(ctx); err != nil {
			l.Warn("cache_invalidate_error", "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicCart, userID.String(), events.CartEvent{
		Type:       events.CartMerged,
		UserID:     userID,
		Merged:     merged,
		OccurredAt: time.Now().UTC(),
	})
	return merged, nil
}
