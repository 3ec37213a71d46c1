package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/testutil"
)

func TestAddressService_CreateValidation(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	u := testutil.User(t, e.db, "a@test.io")
	svc := &AddressService{Repo: e.repo}

	_, err := svc.Create(context.Background(), u.ID, AddressInput{Street: "  ", City: "Paris", Country: "FR"})
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"street", "postal_code"}, verr.Fields)

	_, err = svc.Create(context.Background(), uuid.Nil, AddressInput{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAddressService_SingleDefault(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := testutil.User(t, e.db, "a@test.io")
	other := testutil.User(t, e.db, "b@test.io")
	otherDefault := testutil.Address(t, e.db, other.ID, true)
	svc := &AddressService{Repo: e.repo}

	in := AddressInput{Street: "1 Rue", City: "Paris", PostalCode: "75001", Country: "FR", Label: " Home ", State: "  ", IsDefault: true}
	first, err := svc.Create(ctx, u.ID, in)
	require.NoError(t, err)
	require.NotNil(t, first.Label)
	assert.Equal(t, "Home", *first.Label)
	assert.Nil(t, first.State)

	in.Label = "Work"
	second, err := svc.Create(ctx, u.ID, in)
	require.NoError(t, err)

	list, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	got, err := svc.Get(ctx, other.ID, otherDefault.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)

	_, err = svc.Get(ctx, u.ID, otherDefault.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
