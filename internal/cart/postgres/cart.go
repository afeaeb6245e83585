package postgres

import (
	cartpkg "github.com/mondido/hosted-checkout/internal/cart"
	cartDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/cart"
	"gorm.io/gorm"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) cartpkg.RepositoryAPI {
	return &CartRepository{
		db: db,
	}
}

func (r *CartRepository) GetBySessionID(sessionID string) (*cartDatamodel.Cart, error) {
	var c cartDatamodel.Cart
	err := r.db.Preload("Items").Where("session_id = ?", sessionID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CartRepository) Save(c *cartDatamodel.Cart) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(c).Error
}

func (r *CartRepository) ClearItems(cartID int64) error {
	return r.db.Where("cart_id = ?", cartID).Delete(&cartDatamodel.CartItem{}).Error
}
