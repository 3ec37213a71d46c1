// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
// A single connection keeps the whole test on one database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := pkgdb.OpenDialector(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), pkgdb.Pool{MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, pkgdb.Ping(context.Background(), db))

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func User(t testing.TB, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: email, PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(u).Error)
	return u
}

func Category(t testing.TB, db *gorm.DB, slug string, parent *uuid.UUID) *models.Category {
	t.Helper()
	c := &models.Category{Name: slug, Slug: slug, ParentID: parent}
	require.NoError(t, db.Create(c).Error)
	return c
}

func Product(t testing.TB, db *gorm.DB, slug string, priceCents int64, stock int, category *uuid.UUID) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        slug,
		Slug:        slug,
		Description: "about " + slug,
		PriceCents:  priceCents,
		Stock:       stock,
		Images:      models.StringList{"https://img.test/" + slug + ".jpg"},
		CategoryID:  category,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func Address(t testing.TB, db *gorm.DB, userID uuid.UUID, isDefault bool) *models.Address {
	t.Helper()
	a := &models.Address{
		UserID:     userID,
		Street:     "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
		IsDefault:  isDefault,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func CartItem(t testing.TB, db *gorm.DB, userID, productID uuid.UUID, quantity int) *models.CartItem {
	t.Helper()
	ci := &models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	require.NoError(t, db.Create(ci).Error)
	return ci
}

// Stock reads the current stock of a product.
func Stock(t testing.TB, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.Where("id = ?", productID).First(&p).Error)
	return p.Stock
}
