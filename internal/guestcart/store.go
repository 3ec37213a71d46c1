// Package guestcart holds the cart of a visitor who has not signed in yet.
package guestcart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// StorageKey is the entry name the cart is persisted under.
const StorageKey = "guest-cart"

var ErrNotHydrated = errors.New("guest cart used before rehydration")

type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Store is the guest cart state for one client session. Rehydrate must be
// called once before any read or mutation.
type Store struct {
	storage Storage

	mu       sync.Mutex
	hydrated bool
	items    []Item
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Rehydrate loads the persisted entry. A missing or corrupt entry yields an
// empty cart. Later calls are no-ops.
func (s *Store) Rehydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrated {
		return
	}
	s.hydrated = true
	s.items = decode(s.storage)
}

func decode(storage Storage) []Item {
	raw, ok := storage.Get(StorageKey)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	var stored []Item
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil
	}

	out := make([]Item, 0, len(stored))
	for _, it := range stored {
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		if i := indexOf(out, it.ProductID); i >= 0 {
			out[i].Quantity += it.Quantity
			continue
		}
		out = append(out, it)
	}
	return out
}

func indexOf(items []Item, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) persist() error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("encode guest cart: %w", err)
	}
	if len(s.items) == 0 {
		data = []byte("[]")
	}
	return s.storage.Set(StorageKey, string(data))
}

// AddItem adds delta to the entry for productID. The entry is dropped when the
// result is not positive; a missing entry is created only for a positive delta.
func (s *Store) AddItem(productID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}

	i := indexOf(s.items, productID)
	switch {
	case i >= 0:
		q := s.items[i].Quantity + delta
		if q <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		} else {
			s.items[i].Quantity = q
		}
	case delta > 0:
		s.items = append(s.items, Item{ProductID: productID, Quantity: delta})
	default:
		return nil
	}
	return s.persist()
}

// UpdateQuantity replaces the quantity of an existing entry, removing it when
// quantity < 1. Unknown products are ignored.
func (s *Store) UpdateQuantity(productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}

	i := indexOf(s.items, productID)
	if i < 0 {
		return nil
	}
	if quantity < 1 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	} else {
		s.items[i].Quantity = quantity
	}
	return s.persist()
}

func (s *Store) RemoveItem(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}

	i := indexOf(s.items, productID)
	if i < 0 {
		return nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return s.persist()
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}
	s.items = nil
	return s.persist()
}

// Items returns a copy of the current entries in insertion order.
func (s *Store) Items() ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return nil, ErrNotHydrated
	}
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) TotalCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return 0, ErrNotHydrated
	}
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n, nil
}

// MemoryStorage keeps entries in process memory.
type MemoryStorage struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{m: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.m[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = value
	return nil
}
