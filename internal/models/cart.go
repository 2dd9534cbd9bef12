package models

import (
	"github.com/google/uuid"
)

// MaxLineQuantity is the absolute per-line ceiling; the effective ceiling is
// min(stock, MaxLineQuantity).
const MaxLineQuantity = 10

// CartItem is a server-backed cart line. Monetary amounts are integers in
// minor currency units (paisa); TotalPrice is always UnitPrice * Quantity.
type CartItem struct {
	ID           uuid.UUID  `json:"id"`
	ProductID    uuid.UUID  `json:"productId"`
	ProductName  string     `json:"productName"`
	ProductImage string     `json:"productImage"`
	VariantID    *uuid.UUID `json:"variantId,omitempty"`
	VariantValue *string    `json:"variantValue,omitempty"`
	Quantity     int        `json:"quantity"`
	UnitPrice    int64      `json:"unitPrice"`
	TotalPrice   int64      `json:"totalPrice"`
	Stock        int        `json:"stock"`
	Available    bool       `json:"available"`
	SalonID      *uuid.UUID `json:"salonId,omitempty"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

// CartResponse matches the gateway wire shape: { "cart": { "items": [...] } }.
type CartResponse struct {
	Cart Cart `json:"cart"`
}

func (c *Cart) Subtotal() int64 {
	var subtotal int64

	for _, item := range c.Items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}

	return subtotal
}

func (c *Cart) ItemCount() int {
	var count int

	for _, item := range c.Items {
		count += item.Quantity
	}

	return count
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

type CouponResult struct {
	Code       string `json:"code"`
	PercentOff int    `json:"percentOff"`
	Subtotal   int64  `json:"subtotal"`
	Discount   int64  `json:"discount"`
	Payable    int64  `json:"payable"`
}
