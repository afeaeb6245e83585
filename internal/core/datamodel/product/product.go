package product

import "time"

// Product is the minimal catalog entry the checkout buttons and the
// buy-product flow need to resolve a purchasable item.
type Product struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	ArtNo       string    `json:"artno" gorm:"column:artno;not null;uniqueIndex"`
	Name        string    `json:"name" gorm:"column:name;not null"`
	Description string    `json:"description" gorm:"column:description"`
	Price       float64   `json:"price" gorm:"column:price;not null"`
	VATRate     float64   `json:"vat_rate" gorm:"column:vat_rate;default:0"`
	Active      bool      `json:"active" gorm:"column:active;default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Product) TableName() string {
	return "products"
}
