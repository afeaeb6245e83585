package postgres

import (
	productDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/product"
	productpkg "github.com/mondido/hosted-checkout/internal/product"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) productpkg.RepositoryAPI {
	return &ProductRepository{
		db: db,
	}
}

func (r *ProductRepository) GetByID(id int64) (*productDatamodel.Product, error) {
	var p productDatamodel.Product
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
