package postgres

import (
	"time"

	orderDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/order"
	orderpkg "github.com/mondido/hosted-checkout/internal/order"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) orderpkg.RepositoryAPI {
	return &OrderRepository{
		db: db,
	}
}

func (r *OrderRepository) Create(o *orderDatamodel.Order) error {
	return r.db.Create(o).Error
}

func (r *OrderRepository) GetByID(id int64) (*orderDatamodel.Order, error) {
	var o orderDatamodel.Order
	err := r.db.Preload("Items").First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) SetInstantCheckout(id int64) error {
	return r.db.Model(&orderDatamodel.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"instant_checkout": true,
		"updated_at":       time.Now().UTC(),
	}).Error
}

func (r *OrderRepository) UpdateStatus(id int64, status string, transactionID *string, gatewayResponse []byte) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}

	if transactionID != nil {
		updates["transaction_id"] = *transactionID
	}

	if gatewayResponse != nil {
		updates["gateway_response"] = string(gatewayResponse)
	}

	return r.db.Model(&orderDatamodel.Order{}).Where("id = ?", id).Updates(updates).Error
}
