package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/cache"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/money"
)

const (
	CatalogPageSize = 12
	relatedLimit    = 8
	searchHitLimit  = 500

	minPriceUnits = 0
	maxPriceUnits = 1000
)

// ProductIndex is the search backend. A nil index falls back to SQL matching.
type ProductIndex interface {
	SearchIDs(ctx context.Context, query string, size int) ([]uuid.UUID, error)
	Index(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Search ProductIndex
	Cache  *cache.Pages
}

type ProductQuery struct {
	Query    string
	Category string
	Sort     string
	MinPrice *int64
	MaxPrice *int64
	Page     int
}

type ProductPage struct {
	Products []models.Product
	Total    int64
	Page     int
	Pages    int
}

type ProductDetails struct {
	Product *models.Product
	Reviews []models.Review
	Stats   repo.ReviewStats
}

type ProductInput struct {
	Name         string
	Slug         string
	Description  string
	Price        string
	Stock        int
	Images       []string
	CategorySlug string
}

type ProductPatchInput struct {
	Name         *string
	Slug         *string
	Description  *string
	Price        *string
	Stock        *int
	Images       *[]string
	CategorySlug *string
}

func clampUnits(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := min(max(*v, minPriceUnits), maxPriceUnits)
	cents := money.FromUnits(c)
	return &cents
}

func normalizeSort(s string) string {
	switch s {
	case repo.SortPriceDesc, repo.SortNewest:
		return s
	default:
		return repo.SortPriceAsc
	}
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.list")
	p := util.Normalize(q.Page, CatalogPageSize)

	f := repo.ProductFilter{
		Query:        strings.TrimSpace(q.Query),
		CategorySlug: strings.TrimSpace(q.Category),
		MinCents:     clampUnits(q.MinPrice),
		MaxCents:     clampUnits(q.MaxPrice),
		Sort:         normalizeSort(q.Sort),
		Offset:       p.Offset,
		Limit:        p.Limit,
	}

	if s.Search != nil && f.Query != "" {
		ids, err := s.Search.SearchIDs(ctx, f.Query, searchHitLimit)
		if err != nil {
			l.Warn("search_error", "reason", "falling back to database match", "error", err)
		} else {
			f.IDs, f.RestrictIDs = ids, true
		}
	}

	total, products, err := s.Repo.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ProductPage{
		Products: products,
		Total:    total,
		Page:     p.Page,
		Pages:    util.PageCount(total, p.Limit),
	}, nil
}

func (s *CatalogService) ProductBySlug(ctx context.Context, slug string) (*ProductDetails, error) {
	p, err := s.Repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "product")
	}
	reviews, err := s.Repo.ListReviews(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	stats, err := s.Repo.ReviewStats(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &ProductDetails{Product: p, Reviews: reviews, Stats: stats}, nil
}

func (s *CatalogService) Related(ctx context.Context, slug string) ([]models.Product, error) {
	p, err := s.Repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return s.Repo.RelatedProducts(ctx, p, relatedLimit)
}

func (s *CatalogService) Categories(ctx context.Context) ([]repo.CategoryCount, error) {
	return s.Repo.TopCategories(ctx)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func (s *CatalogService) categoryID(ctx context.Context, slug string) (*uuid.UUID, error) {
	if slug == "" {
		return nil, nil
	}
	c, err := s.Repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Fields: []string{"category"}}
		}
		return nil, err
	}
	return &c.ID, nil
}

func writeErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

func (s *CatalogService) afterWrite(ctx context.Context, p *models.Product) {
	l := logging.FromContext(ctx).With("svc", "catalog.write")
	if s.Search != nil && p != nil {
		if err := s.Search.Index(ctx, p); err != nil {
			l.Warn("search_index_error", "product_id", p.ID, "error", err)
		}
	}
	if err := s.Cache.InvalidateStock(ctx); err != nil {
		l.Warn("cache_invalidate_error", "error", err)
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	var bad []string
	name := strings.TrimSpace(in.Name)
	if name == "" {
		bad = append(bad, "name")
	}
	price, err := money.Parse(strings.TrimSpace(in.Price))
	if err != nil {
		bad = append(bad, "price")
	}
	if in.Stock < 0 {
		bad = append(bad, "stock")
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" && name != "" {
		bad = append(bad, "slug")
	}
	if len(bad) > 0 {
		return nil, &ValidationError{Fields: bad}
	}

	catID, err := s.categoryID(ctx, strings.TrimSpace(in.CategorySlug))
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
		PriceCents:  price,
		Stock:       in.Stock,
		Images:      models.StringList(in.Images),
		CategoryID:  catID,
	}
	if _, err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, writeErr(err)
	}
	s.afterWrite(ctx, p)
	return p, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, in ProductPatchInput) (*models.Product, error) {
	patch := repo.ProductPatch{
		Description: in.Description,
		Stock:       in.Stock,
		Images:      in.Images,
	}
	var bad []string
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			bad = append(bad, "name")
		}
		patch.Name = &n
	}
	if in.Slug != nil {
		sl := Slugify(*in.Slug)
		if sl == "" {
			bad = append(bad, "slug")
		}
		patch.Slug = &sl
	}
	if in.Price != nil {
		cents, err := money.Parse(strings.TrimSpace(*in.Price))
		if err != nil {
			bad = append(bad, "price")
		}
		patch.PriceCents = &cents
	}
	if in.Stock != nil && *in.Stock < 0 {
		bad = append(bad, "stock")
	}
	if len(bad) > 0 {
		return nil, &ValidationError{Fields: bad}
	}
	if in.CategorySlug != nil {
		catID, err := s.categoryID(ctx, strings.TrimSpace(*in.CategorySlug))
		if err != nil {
			return nil, err
		}
		patch.CategoryID = catID
	}

	p, err := s.Repo.PatchProduct(ctx, id, patch)
	if err != nil {
		return nil, writeErr(notFound(err, "product"))
	}
	s.afterWrite(ctx, p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrConflict
		}
		return notFound(err, "product")
	}
	if s.Search != nil {
		if err := s.Search.Delete(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_delete_error", "product_id", id, "error", err)
		}
	}
	s.afterWrite(ctx, nil)
	return nil
}
