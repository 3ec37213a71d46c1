package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func TestReviewService_Submit(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := testutil.User(t, e.db, "a@test.io")
	p := testutil.Product(t, e.db, "mug", 2499, 5, nil)
	svc := &ReviewService{Repo: e.repo}

	rv, err := svc.Submit(ctx, u.ID, p.ID, 5, `<script>alert(1)</script>Nice <i>mug</i>`)
	require.NoError(t, err)
	require.NotNil(t, rv.Body)
	assert.Equal(t, "Nice mug", *rv.Body)

	_, err = svc.Submit(ctx, u.ID, p.ID, 2, "   ")
	require.NoError(t, err)

	var stored []models.Review
	require.NoError(t, e.db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, 2, stored[0].Rating)
	assert.Nil(t, stored[0].Body)
}

func TestReviewService_SubmitErrors(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := testutil.User(t, e.db, "a@test.io")
	p := testutil.Product(t, e.db, "mug", 2499, 5, nil)
	svc := &ReviewService{Repo: e.repo}

	_, err := svc.Submit(ctx, u.ID, p.ID, 6, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Submit(ctx, u.ID, p.ID, 0, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Submit(ctx, u.ID, uuid.New(), 3, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Submit(ctx, uuid.Nil, p.ID, 3, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
