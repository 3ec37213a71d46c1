package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

func newPages(t *testing.T) (*Pages, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, 0), mr
}

func TestPages_GetSet(t *testing.T) {
	t.Parallel()

	p, _ := newPages(t)
	ctx := context.Background()

	_, ok := p.Get(ctx, ProductPrefix+"tee")
	assert.False(t, ok)

	p.Set(ctx, ProductPrefix+"tee", []byte(`{"name":"tee"}`))
	got, ok := p.Get(ctx, ProductPrefix+"tee")
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"tee"}`, string(got))
}

func TestPages_InvalidateStock(t *testing.T) {
	t.Parallel()

	p, mr := newPages(t)
	ctx := context.Background()

	p.Set(ctx, ProductPrefix+"a", []byte("1"))
	p.Set(ctx, ListingPrefix+"q=", []byte("2"))
	p.Set(ctx, CategoryPrefix, []byte("3"))
	require.NoError(t, mr.Set("session:x", "keep"))

	require.NoError(t, p.InvalidateStock(ctx))

	assert.False(t, mr.Exists(ProductPrefix+"a"))
	assert.False(t, mr.Exists(ListingPrefix+"q="))
	assert.False(t, mr.Exists(CategoryPrefix))
	assert.True(t, mr.Exists("session:x"))
}

func TestPages_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	var nilPages *Pages
	ctx := context.Background()

	nilPages.Set(ctx, "k", []byte("v"))
	_, ok := nilPages.Get(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, nilPages.InvalidateStock(ctx))

	p := Connect(ctx, "", logging.Discard())
	assert.False(t, p.Enabled())
	p = Connect(ctx, "://bad", logging.Discard())
	assert.False(t, p.Enabled())
}
