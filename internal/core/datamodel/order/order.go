package order

import (
	"time"

	"gorm.io/gorm"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// Order is a pending purchase created from a cart snapshot. The checkout
// integration reads it and attaches the instant-checkout flag; everything
// else is owned by the order service.
type Order struct {
	ID              int64       `json:"id" gorm:"primaryKey"`
	OrderKey        string      `json:"order_key" gorm:"column:order_key;not null;uniqueIndex"`
	CustomerID      int64       `json:"customer_id" gorm:"column:customer_id;default:0"`
	Currency        string      `json:"currency" gorm:"column:currency;not null"`
	Status          string      `json:"status" gorm:"column:status;default:pending"`
	PaymentMethod   string      `json:"payment_method" gorm:"column:payment_method"`
	TotalAmount     float64     `json:"total_amount" gorm:"column:total_amount;not null"`
	InstantCheckout bool        `json:"instant_checkout" gorm:"column:instant_checkout;default:false"`
	TransactionID   *string     `json:"transaction_id,omitempty" gorm:"column:transaction_id"`
	GatewayResponse string      `json:"gateway_response,omitempty" gorm:"column:gateway_response;type:text"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time   `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time   `json:"updated_at" gorm:"column:updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	return nil
}

func (o *Order) BeforeUpdate(tx *gorm.DB) error {
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// OrderItem is one priced line of an order. Amount is the line total
// including tax, VAT the tax portion of that total.
type OrderItem struct {
	ID          int64   `json:"id" gorm:"primaryKey"`
	OrderID     int64   `json:"order_id" gorm:"column:order_id;not null;index"`
	ProductID   int64   `json:"product_id" gorm:"column:product_id"`
	ArtNo       string  `json:"artno" gorm:"column:artno"`
	Description string  `json:"description" gorm:"column:description"`
	Qty         int     `json:"qty" gorm:"column:qty;not null"`
	Amount      float64 `json:"amount" gorm:"column:amount;not null"`
	VAT         float64 `json:"vat" gorm:"column:vat;default:0"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
