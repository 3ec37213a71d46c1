package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/money"
)

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  *int      `json:"quantity"`
}

// Qty defaults a missing quantity to one unit.
func (r AddToCartRequest) Qty() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CreateAddressRequest struct {
	Label      string `json:"label"       validate:"max=100"`
	Street     string `json:"street"      validate:"max=200"`
	City       string `json:"city"        validate:"max=100"`
	State      string `json:"state"       validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	Country    string `json:"country"     validate:"max=100"`
	IsDefault  bool   `json:"is_default"`
}

type CheckoutRequest struct {
	AddressID uuid.UUID `json:"address_id"`
}

type CreateProductRequest struct {
	Name         string   `json:"name"        validate:"required,max=200"`
	Slug         string   `json:"slug"        validate:"max=200"`
	Description  string   `json:"description"`
	Price        string   `json:"price"       validate:"required,numeric"`
	Stock        int      `json:"stock"       validate:"gte=0"`
	Images       []string `json:"images"      validate:"dive,url"`
	CategorySlug string   `json:"category"`
}

type PatchProductRequest struct {
	Name         *string   `json:"name"        validate:"omitempty,max=200"`
	Slug         *string   `json:"slug"        validate:"omitempty,max=200"`
	Description  *string   `json:"description"`
	Price        *string   `json:"price"       validate:"omitempty,numeric"`
	Stock        *int      `json:"stock"       validate:"omitempty,gte=0"`
	Images       *[]string `json:"images"      validate:"omitempty,dive,url"`
	CategorySlug *string   `json:"category"`
}

type ReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Body   string `json:"body"   validate:"max=2000"`
}

type GuestItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"`
}

type TotalsDTO struct {
	SubtotalCents int64  `json:"subtotal_cents"`
	ShippingCents int64  `json:"shipping_cents"`
	TaxCents      int64  `json:"tax_cents"`
	TotalCents    int64  `json:"total_cents"`
	Subtotal      string `json:"subtotal"`
	Shipping      string `json:"shipping"`
	Tax           string `json:"tax"`
	Total         string `json:"total"`
}

func Totals(t money.Totals) TotalsDTO {
	return TotalsDTO{
		SubtotalCents: t.Subtotal,
		ShippingCents: t.Shipping,
		TaxCents:      t.Tax,
		TotalCents:    t.Total,
		Subtotal:      money.Format(t.Subtotal),
		Shipping:      money.Format(t.Shipping),
		Tax:           money.Format(t.Tax),
		Total:         money.Format(t.Total),
	}
}

type ProductCard struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	PriceCents int64     `json:"price_cents"`
	Price      string    `json:"price"`
	Image      string    `json:"image,omitempty"`
	Stock      int       `json:"stock"`
}

func Card(p *models.Product) ProductCard {
	card := ProductCard{
		ID:         p.ID,
		Name:       p.Name,
		Slug:       p.Slug,
		PriceCents: p.PriceCents,
		Price:      money.Format(p.PriceCents),
		Stock:      p.Stock,
	}
	if len(p.Images) > 0 {
		card.Image = p.Images[0]
	}
	return card
}

func Cards(ps []models.Product) []ProductCard {
	out := make([]ProductCard, 0, len(ps))
	for i := range ps {
		out = append(out, Card(&ps[i]))
	}
	return out
}

type ProductDetail struct {
	ProductCard
	Description string           `json:"description"`
	Images      []string         `json:"images"`
	Category    *models.Category `json:"category,omitempty"`
	Reviews     []ReviewDTO      `json:"reviews"`
	Rating      repo.ReviewStats `json:"rating"`
}

type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	Rating    int       `json:"rating"`
	Body      *string   `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

func Reviews(rs []models.Review) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(rs))
	for _, r := range rs {
		dto := ReviewDTO{ID: r.ID, Rating: r.Rating, Body: r.Body, CreatedAt: r.CreatedAt}
		if r.User != nil {
			dto.Author = r.User.Name
		}
		out = append(out, dto)
	}
	return out
}

type CartItemDTO struct {
	ID        uuid.UUID   `json:"id"`
	Quantity  int         `json:"quantity"`
	LineCents int64       `json:"line_total_cents"`
	LineTotal string      `json:"line_total"`
	Product   ProductCard `json:"product"`
}

type CartResponse struct {
	Items  []CartItemDTO `json:"items"`
	Count  int           `json:"count"`
	Totals TotalsDTO     `json:"totals"`
}

func CartItem(it *models.CartItem) CartItemDTO {
	dto := CartItemDTO{ID: it.ID, Quantity: it.Quantity}
	if it.Product != nil {
		dto.Product = Card(it.Product)
		dto.LineCents = it.Product.PriceCents * int64(it.Quantity)
	}
	dto.LineTotal = money.Format(dto.LineCents)
	return dto
}

func CartItems(items []models.CartItem) []CartItemDTO {
	out := make([]CartItemDTO, 0, len(items))
	for i := range items {
		out = append(out, CartItem(&items[i]))
	}
	return out
}

type GuestCartItemDTO struct {
	ProductID uuid.UUID    `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Product   *ProductCard `json:"product,omitempty"`
}

type GuestCartResponse struct {
	Items []GuestCartItemDTO `json:"items"`
	Count int                `json:"count"`
}

type OrderItemResponse struct {
	ProductID            uuid.UUID `json:"product_id"`
	Name                 string    `json:"name"`
	Slug                 string    `json:"slug"`
	Image                string    `json:"image,omitempty"`
	Quantity             int       `json:"quantity"`
	PriceAtPurchaseCents int64     `json:"price_at_purchase_cents"`
	PriceAtPurchase      string    `json:"price_at_purchase"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	Status          models.OrderStatus  `json:"status"`
	Updating        bool                `json:"updating"`
	Totals          TotalsDTO           `json:"totals"`
	ShippingAddress *models.Address     `json:"shipping_address,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
}

func Order(o *models.Order, t money.Totals, updating bool) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID,
		Status:          o.Status,
		Updating:        updating,
		Totals:          Totals(t),
		ShippingAddress: o.ShippingAddress,
		Items:           make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:       o.CreatedAt,
	}
	for _, it := range o.Items {
		item := OrderItemResponse{
			ProductID:            it.ProductID,
			Quantity:             it.Quantity,
			PriceAtPurchaseCents: it.PriceAtPurchaseCents,
			PriceAtPurchase:      money.Format(it.PriceAtPurchaseCents),
		}
		if it.Product != nil {
			item.Name = it.Product.Name
			item.Slug = it.Product.Slug
			if len(it.Product.Images) > 0 {
				item.Image = it.Product.Images[0]
			}
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
