package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
)

type User struct {
	ID           uuid.UUID `gorm:"primaryKey"               json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	Name         string    `gorm:"not null;default:''"      json:"name"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	CreatedAt    time.Time `                                json:"created_at"`
}

type Category struct {
	ID        uuid.UUID  `gorm:"primaryKey"            json:"id"`
	Name      string     `gorm:"not null"              json:"name"`
	Slug      string     `gorm:"uniqueIndex;not null"  json:"slug"`
	Image     string     `                             json:"image"`
	ParentID  *uuid.UUID `gorm:"index"                 json:"parent_id,omitempty"`
	CreatedAt time.Time  `                             json:"created_at"`
}

type Product struct {
	ID          uuid.UUID  `gorm:"primaryKey"                       json:"id"`
	Name        string     `gorm:"not null"                         json:"name"`
	Slug        string     `gorm:"uniqueIndex;not null"             json:"slug"`
	Description string     `gorm:"not null"                         json:"description"`
	PriceCents  int64      `gorm:"not null"                         json:"price_cents"`
	Images      StringList `gorm:"type:text"                        json:"images"`
	Stock       int        `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CategoryID  *uuid.UUID `gorm:"index"                            json:"category_id,omitempty"`
	Category    *Category  `gorm:"constraint:OnDelete:SET NULL"     json:"category,omitempty"`
	CreatedAt   time.Time  `gorm:"index"                            json:"created_at"`
	UpdatedAt   time.Time  `                                        json:"updated_at"`
}

type Review struct {
	ID        uuid.UUID `gorm:"primaryKey"                                 json:"id"`
	UserID    uuid.UUID `gorm:"uniqueIndex:idx_review_user_product;not null" json:"user_id"`
	ProductID uuid.UUID `gorm:"uniqueIndex:idx_review_user_product;not null" json:"product_id"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5"      json:"rating"`
	Body      *string   `                                                  json:"body"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE"                json:"-"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE"                json:"-"`
	CreatedAt time.Time `                                                  json:"created_at"`
	UpdatedAt time.Time `                                                  json:"updated_at"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"primaryKey"                            json:"id"`
	UserID    uuid.UUID `gorm:"uniqueIndex:idx_user_product;not null" json:"user_id"`
	ProductID uuid.UUID `gorm:"uniqueIndex:idx_user_product;not null" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0" json:"quantity"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE"           json:"product,omitempty"`
	CreatedAt time.Time `                                             json:"created_at"`
	UpdatedAt time.Time `                                             json:"updated_at"`
}

type Address struct {
	ID         uuid.UUID `gorm:"primaryKey"          json:"id"`
	UserID     uuid.UUID `gorm:"index;not null"      json:"user_id"`
	Label      *string   `                           json:"label"`
	Street     string    `gorm:"not null"            json:"street"`
	City       string    `gorm:"not null"            json:"city"`
	State      *string   `                           json:"state"`
	PostalCode string    `gorm:"not null"            json:"postal_code"`
	Country    string    `gorm:"not null"            json:"country"`
	IsDefault  bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt  time.Time `gorm:"index"               json:"created_at"`
}

type Order struct {
	ID                uuid.UUID   `gorm:"primaryKey"                     json:"id"`
	UserID            uuid.UUID   `gorm:"index;not null"                 json:"user_id"`
	Status            OrderStatus `gorm:"not null;default:PENDING;index" json:"status"`
	SubtotalCents     int64       `gorm:"not null;default:0"             json:"subtotal_cents"`
	ShippingCents     int64       `gorm:"not null;default:0"             json:"shipping_cents"`
	TaxCents          int64       `gorm:"not null;default:0"             json:"tax_cents"`
	TotalCents        int64       `gorm:"not null"                       json:"total_cents"`
	ShippingAddressID *uuid.UUID  `gorm:"index"                          json:"shipping_address_id"`
	ShippingAddress   *Address    `gorm:"constraint:OnDelete:SET NULL"   json:"shipping_address,omitempty"`
	PaymentSessionID  *string     `gorm:"uniqueIndex"                    json:"payment_session_id,omitempty"`
	PaymentID         *string     `                                      json:"payment_id,omitempty"`
	Items             []OrderItem `gorm:"constraint:OnDelete:CASCADE"    json:"items,omitempty"`
	CreatedAt         time.Time   `gorm:"index"                          json:"created_at"`
	UpdatedAt         time.Time   `                                      json:"updated_at"`
}

type OrderItem struct {
	ID                   uuid.UUID `gorm:"primaryKey"                            json:"id"`
	OrderID              uuid.UUID `gorm:"index;not null"                        json:"order_id"`
	ProductID            uuid.UUID `gorm:"index;not null"                        json:"product_id"`
	Product              *Product  `                                             json:"product,omitempty"`
	Quantity             int       `gorm:"not null;check:quantity > 0"           json:"quantity"`
	PriceAtPurchaseCents int64     `gorm:"not null"                              json:"price_at_purchase_cents"`
}

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error      { newID(&u.ID); return nil }
func (c *Category) BeforeCreate(tx *gorm.DB) error  { newID(&c.ID); return nil }
func (p *Product) BeforeCreate(tx *gorm.DB) error   { newID(&p.ID); return nil }
func (r *Review) BeforeCreate(tx *gorm.DB) error    { newID(&r.ID); return nil }
func (c *CartItem) BeforeCreate(tx *gorm.DB) error  { newID(&c.ID); return nil }
func (a *Address) BeforeCreate(tx *gorm.DB) error   { newID(&a.ID); return nil }
func (o *Order) BeforeCreate(tx *gorm.DB) error     { newID(&o.ID); return nil }
func (o *OrderItem) BeforeCreate(tx *gorm.DB) error { newID(&o.ID); return nil }

func (User) TableName() string      { return "users" }
func (Category) TableName() string  { return "categories" }
func (Product) TableName() string   { return "products" }
func (Review) TableName() string    { return "reviews" }
func (CartItem) TableName() string  { return "cart_items" }
func (Address) TableName() string   { return "addresses" }
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// All lists every table in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &Category{}, &Product{}, &Review{},
		&CartItem{}, &Address{}, &Order{}, &OrderItem{},
	}
}
