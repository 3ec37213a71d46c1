package guestcart

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

type CartMerger interface {
	MergeGuest(ctx context.Context, userID uuid.UUID, items []Item) (int, error)
}

// Merger moves a guest cart into the signed-in user's cart at most once.
type Merger struct {
	Cart  CartMerger
	Store *Store

	started atomic.Bool
}

type MergeResult struct {
	Ran    bool
	Merged int
}

// Run merges when userID is set and the guest cart has items. A call whose
// precondition fails does not consume the once-guard. The guest cart is
// cleared only after the merge succeeded.
func (m *Merger) Run(ctx context.Context, userID uuid.UUID) (MergeResult, error) {
	if userID == uuid.Nil {
		return MergeResult{}, nil
	}
	items, err := m.Store.Items()
	if err != nil {
		return MergeResult{}, err
	}
	if len(items) == 0 {
		return MergeResult{}, nil
	}
	if !m.started.CompareAndSwap(false, true) {
		return MergeResult{}, nil
	}

	merged, err := m.Cart.MergeGuest(ctx, userID, items)
	if err != nil {
		return MergeResult{Ran: true}, fmt.Errorf("merge guest cart: %w", err)
	}
	if err := m.Store.Clear(); err != nil {
		return MergeResult{Ran: true, Merged: merged}, err
	}
	return MergeResult{Ran: true, Merged: merged}, nil
}
