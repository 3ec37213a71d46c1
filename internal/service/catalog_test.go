package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

type fakeIndex struct {
	ids     []uuid.UUID
	err     error
	indexed []uuid.UUID
	deleted []uuid.UUID
}

func (f *fakeIndex) SearchIDs(context.Context, string, int) ([]uuid.UUID, error) { return f.ids, f.err }

func (f *fakeIndex) Index(_ context.Context, p *models.Product) error {
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

func slugs(ps []models.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Slug)
	}
	return out
}

func TestCatalog_ListProducts(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	kitchen := testutil.Category(t, e.db, "kitchen", nil)
	cups := testutil.Category(t, e.db, "cups", &kitchen.ID)
	garden := testutil.Category(t, e.db, "garden", nil)
	testutil.Product(t, e.db, "blue-mug", 2499, 5, &cups.ID)
	testutil.Product(t, e.db, "red-kettle", 4500, 5, &kitchen.ID)
	testutil.Product(t, e.db, "shovel", 150000, 5, &garden.ID)

	svc := &CatalogService{Repo: e.repo}

	tests := []struct {
		name  string
		query ProductQuery
		want  []string
	}{
		{name: "default sort", query: ProductQuery{}, want: []string{"blue-mug", "red-kettle", "shovel"}},
		{name: "price desc", query: ProductQuery{Sort: repo.SortPriceDesc}, want: []string{"shovel", "red-kettle", "blue-mug"}},
		{name: "text match", query: ProductQuery{Query: "MUG"}, want: []string{"blue-mug"}},
		{name: "category includes children", query: ProductQuery{Category: "kitchen"}, want: []string{"blue-mug", "red-kettle"}},
		{name: "price bounds in units", query: ProductQuery{MinPrice: ptr(int64(30)), MaxPrice: ptr(int64(100))}, want: []string{"red-kettle"}},
		{name: "max clamped to 1000", query: ProductQuery{MinPrice: ptr(int64(-5)), MaxPrice: ptr(int64(99999))}, want: []string{"blue-mug", "red-kettle"}},
	}

	for _, tt := range tests {
		page, err := svc.ListProducts(ctx, tt.query)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, slugs(page.Products), tt.name)
		assert.EqualValues(t, len(tt.want), page.Total, tt.name)
	}
}

func TestCatalog_ListProductsUsesIndex(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	mug := testutil.Product(t, e.db, "mug", 2499, 5, nil)
	testutil.Product(t, e.db, "kettle", 4500, 5, nil)

	idx := &fakeIndex{ids: []uuid.UUID{mug.ID}}
	svc := &CatalogService{Repo: e.repo, Search: idx}

	page, err := svc.ListProducts(ctx, ProductQuery{Query: "cup"})
	require.NoError(t, err)
	assert.Equal(t, []string{"mug"}, slugs(page.Products))

	idx.ids = nil
	page, err = svc.ListProducts(ctx, ProductQuery{Query: "cup"})
	require.NoError(t, err)
	assert.Empty(t, page.Products)

	idx.err = errors.New("cluster down")
	page, err = svc.ListProducts(ctx, ProductQuery{Query: "kettle"})
	require.NoError(t, err)
	assert.Equal(t, []string{"kettle"}, slugs(page.Products))
}

func TestCatalog_PagesOfTwelve(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	for i := 0; i < 13; i++ {
		testutil.Product(t, e.db, "p-"+uuid.NewString()[:8], int64(100+i), 1, nil)
	}
	svc := &CatalogService{Repo: e.repo}

	page, err := svc.ListProducts(context.Background(), ProductQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Products, 1)
	assert.Equal(t, 2, page.Pages)
}

func TestCatalog_ProductBySlugAndRelated(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	cat := testutil.Category(t, e.db, "kitchen", nil)
	mug := testutil.Product(t, e.db, "mug", 2499, 5, &cat.ID)
	testutil.Product(t, e.db, "kettle", 4500, 5, &cat.ID)
	testutil.Product(t, e.db, "loner", 4500, 5, nil)
	u := testutil.User(t, e.db, "a@test.io")

	reviews := &ReviewService{Repo: e.repo}
	_, err := reviews.Submit(ctx, u.ID, mug.ID, 4, "<b>great</b> mug")
	require.NoError(t, err)

	svc := &CatalogService{Repo: e.repo}
	d, err := svc.ProductBySlug(ctx, "mug")
	require.NoError(t, err)
	require.NotNil(t, d.Product.Category)
	assert.Equal(t, "kitchen", d.Product.Category.Slug)
	require.Len(t, d.Reviews, 1)
	assert.EqualValues(t, 1, d.Stats.Count)
	assert.InDelta(t, 4.0, d.Stats.Average, 0.001)

	related, err := svc.Related(ctx, "mug")
	require.NoError(t, err)
	assert.Equal(t, []string{"kettle"}, slugs(related))

	_, err = svc.ProductBySlug(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.EqualValues(t, 2, cats[0].ProductCount)
}

func TestCatalog_AdminWrites(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	testutil.Category(t, e.db, "kitchen", nil)
	idx := &fakeIndex{}
	svc := &CatalogService{Repo: e.repo, Search: idx}

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Blue Mug!", Price: "24.99", Stock: 3, CategorySlug: "kitchen"})
	require.NoError(t, err)
	assert.Equal(t, "blue-mug", p.Slug)
	assert.EqualValues(t, 2499, p.PriceCents)
	require.NotNil(t, p.CategoryID)
	assert.Equal(t, []uuid.UUID{p.ID}, idx.indexed)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Blue mug", Price: "1"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "", Price: "abc", Stock: -1})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"name", "price", "stock"}, verr.Fields)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Pan", Price: "5", CategorySlug: "nope"})
	assert.ErrorIs(t, err, ErrValidation)

	patched, err := svc.PatchProduct(ctx, p.ID, ProductPatchInput{Price: ptr("19.5"), Stock: ptr(7)})
	require.NoError(t, err)
	assert.EqualValues(t, 1950, patched.PriceCents)
	assert.Equal(t, 7, patched.Stock)
	assert.Equal(t, "Blue Mug!", patched.Name)

	_, err = svc.PatchProduct(ctx, uuid.New(), ProductPatchInput{Stock: ptr(1)})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	assert.Equal(t, []uuid.UUID{p.ID}, idx.deleted)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), ErrNotFound)
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "blue-mug-2", Slugify("  Blue   Mug #2 "))
	assert.Equal(t, "", Slugify("!!!"))
}
