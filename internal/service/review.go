package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/cache"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type ReviewService struct {
	Repo  *repo.GormRepo
	Cache *cache.Pages
}

var reviewPolicy = bluemonday.StrictPolicy()

// Submit creates or replaces the user's review of a product. The body is
// stripped of markup; an empty body is stored as null.
func (s *ReviewService) Submit(ctx context.Context, userID, productID uuid.UUID, rating int, body string) (*models.Review, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if rating < 1 || rating > 5 {
		return nil, &ValidationError{Fields: []string{"rating"}}
	}

	p, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product")
	}

	rv := &models.Review{
		UserID:    userID,
		ProductID: p.ID,
		Rating:    rating,
		Body:      optional(reviewPolicy.Sanitize(strings.TrimSpace(body))),
	}
	if err := s.Repo.UpsertReview(ctx, rv); err != nil {
		return nil, err
	}

	if err := s.Cache.Invalidate(ctx, cache.ProductPrefix+p.Slug); err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_error", "svc", "review.submit", "error", err)
	}
	return rv, nil
}
