package guestcart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hydrated(t *testing.T, st Storage) *Store {
	t.Helper()
	s := NewStore(st)
	s.Rehydrate()
	return s
}

func TestStore_RequiresRehydrate(t *testing.T) {
	t.Parallel()

	s := NewStore(NewMemoryStorage())

	_, err := s.Items()
	assert.ErrorIs(t, err, ErrNotHydrated)
	assert.ErrorIs(t, s.AddItem("p1", 1), ErrNotHydrated)
	_, err = s.TotalCount()
	assert.ErrorIs(t, err, ErrNotHydrated)
}

func TestStore_AddItem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ops    []Item
		expect []Item
	}{
		{name: "insert", ops: []Item{{"p1", 2}}, expect: []Item{{"p1", 2}}},
		{name: "merge", ops: []Item{{"p1", 2}, {"p1", 3}}, expect: []Item{{"p1", 5}}},
		{name: "decrement to zero removes", ops: []Item{{"p1", 2}, {"p1", -2}}, expect: []Item{}},
		{name: "negative on missing ignored", ops: []Item{{"p1", -1}}, expect: []Item{}},
		{name: "order kept", ops: []Item{{"p1", 1}, {"p2", 1}, {"p1", 1}}, expect: []Item{{"p1", 2}, {"p2", 1}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := hydrated(t, NewMemoryStorage())
			for _, op := range tt.ops {
				require.NoError(t, s.AddItem(op.ProductID, op.Quantity))
			}
			items, err := s.Items()
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.expect, items)
		})
	}
}

func TestStore_UpdateAndRemove(t *testing.T) {
	t.Parallel()

	s := hydrated(t, NewMemoryStorage())
	require.NoError(t, s.AddItem("p1", 1))
	require.NoError(t, s.AddItem("p2", 1))

	require.NoError(t, s.UpdateQuantity("p1", 4))
	require.NoError(t, s.UpdateQuantity("missing", 4))
	require.NoError(t, s.UpdateQuantity("p2", 0))

	items, err := s.Items()
	require.NoError(t, err)
	assert.Equal(t, []Item{{"p1", 4}}, items)

	n, err := s.TotalCount()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, s.RemoveItem("p1"))
	n, err = s.TotalCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_PersistsAndRehydrates(t *testing.T) {
	t.Parallel()

	st := NewMemoryStorage()
	s := hydrated(t, st)
	require.NoError(t, s.AddItem("p1", 2))

	raw, ok := st.Get(StorageKey)
	require.True(t, ok)
	var stored []Item
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, []Item{{"p1", 2}}, stored)
	assert.Contains(t, raw, `"productId"`)

	again := hydrated(t, st)
	items, err := again.Items()
	require.NoError(t, err)
	assert.Equal(t, []Item{{"p1", 2}}, items)
}

func TestStore_CorruptEntryIsEmpty(t *testing.T) {
	t.Parallel()

	st := NewMemoryStorage()
	require.NoError(t, st.Set(StorageKey, "{not json"))

	s := hydrated(t, st)
	items, err := s.Items()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStore_RehydrateOnce(t *testing.T) {
	t.Parallel()

	st := NewMemoryStorage()
	s := hydrated(t, st)
	require.NoError(t, s.AddItem("p1", 1))
	require.NoError(t, st.Set(StorageKey, `[{"productId":"p9","quantity":9}]`))

	s.Rehydrate()
	items, err := s.Items()
	require.NoError(t, err)
	assert.Equal(t, []Item{{"p1", 1}}, items)
}
