package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ReviewStats struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

func (r *GormRepo) UpsertReview(ctx context.Context, rv *models.Review) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "body", "updated_at"}),
	}).Create(rv).Error
}

func (r *GormRepo) ListReviews(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	var out []models.Review
	err := r.DB.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *GormRepo) ReviewStats(ctx context.Context, productID uuid.UUID) (ReviewStats, error) {
	var s ReviewStats
	err := r.DB.WithContext(ctx).
		Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("product_id = ?", productID).
		Scan(&s).Error
	return s, err
}
