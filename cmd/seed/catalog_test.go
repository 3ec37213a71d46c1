package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
	pkg_hash "github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

func TestParseCatalog_Default(t *testing.T) {
	t.Parallel()

	c, err := parseCatalog(defaultCatalog)
	require.NoError(t, err)
	assert.Len(t, c.Users, 2)
	assert.Len(t, c.Categories, 3)
	require.Len(t, c.Products, 6)
	assert.EqualValues(t, 2499, c.Products[0].cents())
}

func TestParseCatalog_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"unknown category", "products:\n  - name: A\n    price: \"1.00\"\n    category: hats\n"},
		{"negative price", "products:\n  - name: A\n    price: \"-1\"\n"},
		{"bad price", "products:\n  - name: A\n    price: abc\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseCatalog([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestApply_IsIdempotent(t *testing.T) {
	t.Parallel()

	db := testutil.NewDB(t)
	r := repo.New(db)
	c, err := parseCatalog(defaultCatalog)
	require.NoError(t, err)

	require.NoError(t, apply(context.Background(), r, nil, c, logging.Discard()))
	require.NoError(t, apply(context.Background(), r, nil, c, logging.Discard()))

	var products, users int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 6, products)
	assert.EqualValues(t, 2, users)

	admin, err := r.GetUserByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, pkg_hash.CheckPassword(admin.PasswordHash, "admin123"))

	p, err := r.GetProductBySlug(context.Background(), "running-sneakers")
	require.NoError(t, err)
	assert.EqualValues(t, 8999, p.PriceCents)
	require.NotNil(t, p.Category)
	assert.Equal(t, "shoes", p.Category.Slug)
}
