package entity

import (
	"strings"
	"time"
)

type OrderProduct struct {
	ID              string    `json:"id"`
	Description     string    `json:"description"     validate:"required,max=2000"`
	EndorsementType string    `json:"endorsementType" validate:"required,max=50"`
	EndorseMonth    YearMonth `json:"endorseMonth"`
	Price           int64     `json:"price"           validate:"gte=0"`
	Photo           string    `json:"photo,omitempty" validate:"max=500"`
}

// Order is the persisted UMKM partnership order. The JSON layout is shared
// with documents written by the original web client.
type Order struct {
	ID            string         `json:"id"`
	OrderID       string         `json:"orderId"                 validate:"required,max=32"`
	CustomerName  string         `json:"customerName"            validate:"required,max=100"`
	BrandName     string         `json:"brandName"               validate:"required,max=100"`
	Instagram     string         `json:"instagram"               validate:"required,max=100"`
	Email         string         `json:"email,omitempty"         validate:"omitempty,email,max=100"`
	Phone         string         `json:"phone,omitempty"         validate:"max=30"`
	Products      []OrderProduct `json:"products"                validate:"required,min=1,dive"`
	TotalAmount   int64          `json:"totalAmount"`
	Status        OrderStatus    `json:"status"`
	Priority      Priority       `json:"priority,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	ExpiresAt     *time.Time     `json:"expiresAt,omitempty"`
	ScheduledDate string         `json:"scheduledDate,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	CancelledAt   *time.Time     `json:"cancelledAt,omitempty"`
	LastUpdated   *time.Time     `json:"lastUpdated,omitempty"`
}

// NormalizeOrderID lower-cases an order ID for comparison; lookups are
// case-insensitive.
func NormalizeOrderID(orderID string) string {
	return strings.ToLower(strings.TrimSpace(orderID))
}

func (o *Order) HasOrderID(orderID string) bool {
	return NormalizeOrderID(o.OrderID) == NormalizeOrderID(orderID)
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	if o.Products != nil {
		c.Products = make([]OrderProduct, len(o.Products))
		copy(c.Products, o.Products)
	}
	c.ExpiresAt = cloneTime(o.ExpiresAt)
	c.CancelledAt = cloneTime(o.CancelledAt)
	c.LastUpdated = cloneTime(o.LastUpdated)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
