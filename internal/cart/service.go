// Package cart is the session-scoped cart store. It exposes only the
// operations the checkout integration uses: load, empty, add item and
// recalculate totals. Concurrency across sessions is the store's problem;
// within a session the host serializes requests.
package cart

import (
	"log/slog"
	"math"

	"github.com/mondido/hosted-checkout/internal"
	cartDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/cart"
	productDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/product"
)

type RepositoryAPI interface {
	GetBySessionID(sessionID string) (*cartDatamodel.Cart, error)
	Save(c *cartDatamodel.Cart) error
	ClearItems(cartID int64) error
}

// ProductCatalog resolves purchasable products for cart lines.
type ProductCatalog interface {
	GetByID(id int64) (*productDatamodel.Product, error)
}

type Service struct {
	repo     RepositoryAPI
	catalog  ProductCatalog
	currency string
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, catalog ProductCatalog, currency string, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		currency: currency,
		logger:   logger,
	}
}

// Load returns the session's cart, creating an empty one on first use.
func (s *Service) Load(sessionID string) (*cartDatamodel.Cart, error) {
	c, err := s.repo.GetBySessionID(sessionID)
	if err == nil {
		return c, nil
	}

	c = &cartDatamodel.Cart{
		SessionID: sessionID,
		Currency:  s.currency,
	}
	if err := s.repo.Save(c); err != nil {
		s.logger.Error("failed to create cart", "error", err, "session_id", sessionID)
		return nil, internal.NewInternalError("failed to create cart", err)
	}
	return c, nil
}

// Empty removes every line from the session's cart.
func (s *Service) Empty(sessionID string) error {
	c, err := s.Load(sessionID)
	if err != nil {
		return err
	}

	if err := s.repo.ClearItems(c.ID); err != nil {
		s.logger.Error("failed to empty cart", "error", err, "session_id", sessionID)
		return internal.NewInternalError("failed to empty cart", err)
	}

	c.Items = nil
	c.TotalAmount = 0
	return s.repo.Save(c)
}

// AddItem appends a product line. Qty arrives verbatim from the caller;
// the catalog decides whether the product exists, nothing more.
func (s *Service) AddItem(sessionID string, productID int64, qty int) error {
	p, err := s.catalog.GetByID(productID)
	if err != nil {
		return err
	}

	c, err := s.Load(sessionID)
	if err != nil {
		return err
	}

	lineTotal := round2(p.Price * float64(qty))

	// catalog prices are tax inclusive; VAT is the tax portion of the line
	vat := 0.0
	if p.VATRate > 0 {
		vat = round2(lineTotal * p.VATRate / (100 + p.VATRate))
	}

	c.Items = append(c.Items, cartDatamodel.CartItem{
		CartID:      c.ID,
		ProductID:   p.ID,
		ArtNo:       p.ArtNo,
		Description: p.Name,
		Qty:         qty,
		UnitPrice:   p.Price,
		LineTotal:   lineTotal,
		VAT:         vat,
	})

	if err := s.repo.Save(c); err != nil {
		s.logger.Error("failed to add cart item", "error", err, "session_id", sessionID, "product_id", productID)
		return internal.NewInternalError("failed to add cart item", err)
	}

	s.logger.Info("cart item added",
		"session_id", sessionID,
		"product_id", productID,
		"qty", qty,
		"line_total", lineTotal)

	return nil
}

// RecalculateTotals re-sums line totals into the cart total.
func (s *Service) RecalculateTotals(sessionID string) error {
	c, err := s.Load(sessionID)
	if err != nil {
		return err
	}

	var total float64
	for _, line := range c.Items {
		total += line.LineTotal
	}
	c.TotalAmount = round2(total)

	return s.repo.Save(c)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
