package cart

import (
	"time"

	"gorm.io/gorm"
)

// Cart holds the session-scoped cart contents. One cart per shopper session,
// keyed by the session cookie; the host serializes access per session.
type Cart struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	SessionID   string     `json:"session_id" gorm:"column:session_id;not null;uniqueIndex"`
	Currency    string     `json:"currency" gorm:"column:currency;not null"`
	TotalAmount float64    `json:"total_amount" gorm:"column:total_amount;default:0"`
	Items       []CartItem `json:"items" gorm:"foreignKey:CartID"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

func (c *Cart) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = time.Now().UTC()
	return nil
}

type CartItem struct {
	ID          int64   `json:"id" gorm:"primaryKey"`
	CartID      int64   `json:"cart_id" gorm:"column:cart_id;not null;index"`
	ProductID   int64   `json:"product_id" gorm:"column:product_id;not null"`
	ArtNo       string  `json:"artno" gorm:"column:artno"`
	Description string  `json:"description" gorm:"column:description"`
	Qty         int     `json:"qty" gorm:"column:qty;not null"`
	UnitPrice   float64 `json:"unit_price" gorm:"column:unit_price;not null"`
	LineTotal   float64 `json:"line_total" gorm:"column:line_total;not null"`
	VAT         float64 `json:"vat" gorm:"column:vat;default:0"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
