package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type AddressService struct {
	Repo *repo.GormRepo
}

type AddressInput struct {
	Label      string
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
	IsDefault  bool
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Create stores a new address. Making it the default and clearing the
// previous default happen in one transaction.
func (s *AddressService) Create(ctx context.Context, userID uuid.UUID, in AddressInput) (*models.Address, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	a := &models.Address{
		UserID:     userID,
		Label:      optional(in.Label),
		Street:     strings.TrimSpace(in.Street),
		City:       strings.TrimSpace(in.City),
		State:      optional(in.State),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.TrimSpace(in.Country),
		IsDefault:  in.IsDefault,
	}

	var missing []string
	for _, f := range []struct{ name, val string }{
		{"street", a.Street},
		{"city", a.City},
		{"postal_code", a.PostalCode},
		{"country", a.Country},
	} {
		if f.val == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	if err := s.Repo.CreateAddress(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.Repo.ListAddresses(ctx, userID)
}

func (s *AddressService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	a, err := s.Repo.GetAddress(ctx, userID, id)
	if err != nil {
		return nil, notFound(err, "address")
	}
	return a, nil
}
