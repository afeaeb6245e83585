package product

import (
	"log/slog"

	"github.com/mondido/hosted-checkout/internal"
	productDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/product"
)

type RepositoryAPI interface {
	GetByID(id int64) (*productDatamodel.Product, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetByID resolves an active catalog product; inactive or missing products
// are both "not found" to callers.
func (s *Service) GetByID(id int64) (*productDatamodel.Product, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrProductNotFound
	}
	if !p.Active {
		return nil, internal.ErrProductNotFound
	}
	return p, nil
}
