package repo

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrOutOfStock        = errors.New("out of stock")
	ErrAlreadyProcessed  = errors.New("order already processed")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockError names the product whose stock could not cover a quantity.
type StockError struct {
	ProductID uuid.UUID
	Name      string
}

func (e *StockError) Error() string {
	return "insufficient stock for " + e.Name
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}
