package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

type ProductFilter struct {
	Query        string
	IDs          []uuid.UUID
	RestrictIDs  bool
	CategorySlug string
	MinCents     *int64
	MaxCents     *int64
	Sort         string
	Offset       int
	Limit        int
}

type ProductPatch struct {
	Name        *string
	Slug        *string
	Description *string
	PriceCents  *int64
	Stock       *int
	Images      *[]string
	CategoryID  *uuid.UUID
}

type CategoryCount struct {
	models.Category
	ProductCount int64 `json:"product_count"`
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) filtered(ctx context.Context, f ProductFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&models.Product{})

	if f.RestrictIDs {
		if len(f.IDs) == 0 {
			q = q.Where("1 = 0")
		} else {
			q = q.Where("products.id IN ?", f.IDs)
		}
	} else if s := strings.ToLower(strings.TrimSpace(f.Query)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", like, like)
	}

	if f.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ? OR categories.parent_id IN (?)",
				f.CategorySlug,
				r.DB.Model(&models.Category{}).Select("id").Where("slug = ?", f.CategorySlug),
			)
	}
	if f.MinCents != nil {
		q = q.Where("products.price_cents >= ?", *f.MinCents)
	}
	if f.MaxCents != nil {
		q = q.Where("products.price_cents <= ?", *f.MaxCents)
	}
	return q
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) (int64, []models.Product, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	order := "products.price_cents ASC, products.created_at DESC"
	switch f.Sort {
	case SortPriceDesc:
		order = "products.price_cents DESC, products.created_at DESC"
	case SortNewest:
		order = "products.created_at DESC"
	}

	items := make([]models.Product, 0, f.Limit)
	if err := r.filtered(ctx, f).
		Preload("Category").
		Order(order).
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) RelatedProducts(ctx context.Context, p *models.Product, limit int) ([]models.Product, error) {
	items := make([]models.Product, 0, limit)
	if p.CategoryID == nil {
		return items, nil
	}
	err := r.DB.WithContext(ctx).
		Where("category_id = ? AND id <> ?", *p.CategoryID, p.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *GormRepo) TopCategories(ctx context.Context) ([]CategoryCount, error) {
	var out []CategoryCount
	err := r.DB.WithContext(ctx).
		Model(&models.Category{}).
		Select("categories.*, (SELECT COUNT(*) FROM products WHERE products.category_id = categories.id) AS product_count").
		Where("categories.parent_id IS NULL").
		Order("categories.name ASC").
		Scan(&out).Error
	return out, err
}

func (r *GormRepo) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *GormRepo) PatchProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&prod).Error; err != nil {
		return nil, err
	}

	if patch.Name != nil {
		prod.Name = *patch.Name
	}
	if patch.Slug != nil {
		prod.Slug = *patch.Slug
	}
	if patch.Description != nil {
		prod.Description = *patch.Description
	}
	if patch.PriceCents != nil {
		prod.PriceCents = *patch.PriceCents
	}
	if patch.Stock != nil {
		prod.Stock = *patch.Stock
	}
	if patch.Images != nil {
		prod.Images = models.StringList(*patch.Images)
	}
	if patch.CategoryID != nil {
		prod.CategoryID = patch.CategoryID
	}

	if err := r.DB.WithContext(ctx).Save(&prod).Error; err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) UpsertCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).
		Where(models.Category{Slug: c.Slug}).
		Assign(models.Category{Name: c.Name, Image: c.Image, ParentID: c.ParentID}).
		FirstOrCreate(c).Error
}

func (r *GormRepo) UpsertProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).
		Where(models.Product{Slug: p.Slug}).
		Assign(models.Product{
			Name:        p.Name,
			Description: p.Description,
			PriceCents:  p.PriceCents,
			Images:      p.Images,
			Stock:       p.Stock,
			CategoryID:  p.CategoryID,
		}).
		FirstOrCreate(p).Error
}
