package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID        string `gorm:"primaryKey;size:36;not null"`
	Email     string `gorm:"size:128;uniqueIndex;not null"`
	Name      string `gorm:"size:128"`
	IsDeleted bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Vendor struct {
	ID        string `gorm:"primaryKey;size:36;not null"`
	Email     string `gorm:"size:128;uniqueIndex;not null"`
	Name      string `gorm:"size:128"`
	IsDeleted bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

type Shop struct {
	ID       string `gorm:"primaryKey;size:36;not null"`
	Name     string `gorm:"size:128;not null"`
	VendorID string `gorm:"size:36;index;not null"`
	Vendor   *Vendor
}

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

type Product struct {
	ID        string  `gorm:"primaryKey;size:36;not null"`
	Name      string  `gorm:"size:128;not null"`
	Price     float64 `gorm:"not null"`
	Stock     int     `gorm:"not null"`
	ShopID    string  `gorm:"size:36;index;not null"`
	Shop      *Shop
	IsDeleted bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Cart is the customer's single in-progress, single-shop selection.
// The unique index on CustomerID enforces at most one live cart per customer.
type Cart struct {
	ID         string  `gorm:"primaryKey;size:36;not null"`
	CustomerID string  `gorm:"size:36;uniqueIndex;not null"`
	ShopID     string  `gorm:"size:36;index;not null"`
	CouponID   *string `gorm:"size:36"`
	Coupon     *Coupon
	Discount   float64 `gorm:"not null;default:0"` // cached, re-derived for display
	Items      []CartItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type CartItem struct {
	ID        string `gorm:"primaryKey;size:36;not null"`
	CartID    string `gorm:"size:36;index:idx_cart_product,unique;not null"`
	ProductID string `gorm:"size:36;index:idx_cart_product,unique;not null"`
	Product   *Product
	Quantity  int `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Coupon is a shop-issued percentage discount. UsageLimit is a money ceiling
// on the computed discount, not a redemption count; UsageCount only counts
// redemptions.
type Coupon struct {
	ID         string  `gorm:"primaryKey;size:36;not null"`
	Code       string  `gorm:"size:64;index:idx_code_shop,unique;not null"`
	ShopID     string  `gorm:"size:36;index:idx_code_shop,unique;not null"`
	Discount   float64 `gorm:"not null"` // percent, 0..100
	ValidFrom  time.Time
	ValidUntil *time.Time
	UsageLimit *float64
	UsageCount int  `gorm:"not null;default:0"`
	IsActive   bool `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// vendor-driven transitions; CANCELLED is reconciler-only
var orderStatusNext = map[OrderStatus]OrderStatus{
	OrderPending:    OrderProcessing,
	OrderProcessing: OrderShipped,
	OrderShipped:    OrderDelivered,
}

// CanTransition reports whether a vendor may move an order from this status
// to the given one.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	return orderStatusNext[s] == to
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

// Order is created once at checkout from a cart snapshot and never deleted.
// TotalAmount is the final amount after discount.
type Order struct {
	ID            string `gorm:"primaryKey;size:36;not null"`
	CustomerID    string `gorm:"size:36;index;not null"`
	ShopID        string `gorm:"size:36;index;not null"`
	TotalAmount   float64
	Discount      float64
	CouponID      *string       `gorm:"size:36"`
	Status        OrderStatus   `gorm:"size:32;index;not null"`
	PaymentStatus PaymentStatus `gorm:"size:32;index;not null"`
	PaymentMethod string        `gorm:"size:32;not null"`
	PaymentID     string        `gorm:"size:64;uniqueIndex;not null"` // gateway intent id
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem freezes the product price at checkout time; later price edits
// must not show through.
type OrderItem struct {
	ID        string  `gorm:"primaryKey;size:36;not null"`
	OrderID   string  `gorm:"size:36;index;not null"`
	ProductID string  `gorm:"size:36;index;not null"`
	Quantity  int     `gorm:"not null"`
	Price     float64 `gorm:"not null"`
	CreatedAt time.Time
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
