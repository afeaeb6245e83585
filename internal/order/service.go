package order

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mondido/hosted-checkout/internal"
	cartDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/cart"
	orderDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/order"
)

// RepositoryAPI is what the order service needs from storage.
type RepositoryAPI interface {
	Create(o *orderDatamodel.Order) error
	GetByID(id int64) (*orderDatamodel.Order, error)
	SetInstantCheckout(id int64) error
	UpdateStatus(id int64, status string, transactionID *string, gatewayResponse []byte) error
}

type Service struct {
	repo    RepositoryAPI
	baseURL string
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, baseURL string, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// CreateFromCart snapshots the session cart into a pending order. No
// partial mutation: a repository failure leaves nothing behind for the
// caller to clean up.
func (s *Service) CreateFromCart(c *cartDatamodel.Cart, customerID int64, paymentMethod string) (*orderDatamodel.Order, error) {
	if c == nil || len(c.Items) == 0 {
		return nil, internal.ErrCartEmpty
	}

	items := make([]orderDatamodel.OrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, orderDatamodel.OrderItem{
			ProductID:   line.ProductID,
			ArtNo:       line.ArtNo,
			Description: line.Description,
			Qty:         line.Qty,
			Amount:      line.LineTotal,
			VAT:         line.VAT,
		})
	}

	o := &orderDatamodel.Order{
		OrderKey:      uuid.NewString(),
		CustomerID:    customerID,
		Currency:      c.Currency,
		Status:        orderDatamodel.StatusPending,
		PaymentMethod: paymentMethod,
		TotalAmount:   c.TotalAmount,
		Items:         items,
	}

	if err := s.repo.Create(o); err != nil {
		s.logger.Error("failed to create order", "error", err, "session_id", c.SessionID)
		return nil, internal.NewOrderCreationError("failed to create order", err)
	}

	s.logger.Info("order created",
		"order_id", o.ID,
		"customer_id", customerID,
		"total", o.TotalAmount,
		"currency", o.Currency)

	return o, nil
}

func (s *Service) Get(id int64) (*orderDatamodel.Order, error) {
	o, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrOrderNotFound
	}
	return o, nil
}

// MarkInstantCheckout flags the order as placed via the instant-checkout
// path. Called exactly once, after successful creation.
func (s *Service) MarkInstantCheckout(id int64) error {
	if err := s.repo.SetInstantCheckout(id); err != nil {
		s.logger.Error("failed to flag order as instant checkout", "error", err, "order_id", id)
		return err
	}
	return nil
}

// ApplyTransaction records a provider webhook outcome against the order the
// payment ref points at.
func (s *Service) ApplyTransaction(paymentRef, transactionID, transactionStatus string, payload []byte) error {
	orderID, err := strconv.ParseInt(paymentRef, 10, 64)
	if err != nil {
		return internal.NewValidationFieldError("payment_ref", "payment_ref must be numeric", internal.ErrCodeValidationFailed)
	}

	o, err := s.repo.GetByID(orderID)
	if err != nil {
		return internal.ErrOrderNotFound
	}

	status := MapTransactionStatus(transactionStatus)

	s.logger.Info("applying transaction to order",
		"order_id", o.ID,
		"transaction_id", transactionID,
		"transaction_status", transactionStatus,
		"old_status", o.Status,
		"new_status", status)

	var txID *string
	if transactionID != "" {
		txID = &transactionID
	}

	if err := s.repo.UpdateStatus(o.ID, status, txID, payload); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}

// MapTransactionStatus translates provider transaction statuses into order
// statuses. Unknown statuses leave the order pending rather than guessing.
func MapTransactionStatus(transactionStatus string) string {
	switch strings.ToLower(transactionStatus) {
	case "approved", "authorized":
		return orderDatamodel.StatusProcessing
	case "declined", "failed", "error":
		return orderDatamodel.StatusFailed
	default:
		return orderDatamodel.StatusPending
	}
}

// PaymentURL is the order-pay page for the order, keyed so only the holder
// of the order key can open it.
func (s *Service) PaymentURL(o *orderDatamodel.Order) string {
	return fmt.Sprintf("%s/checkout/pay/%d?key=%s", s.baseURL, o.ID, o.OrderKey)
}

// ReturnURL is where the shopper lands after a successful payment.
func (s *Service) ReturnURL(o *orderDatamodel.Order) string {
	return fmt.Sprintf("%s/checkout/thank-you/%d?key=%s", s.baseURL, o.ID, o.OrderKey)
}

// CancelURL is where the shopper lands after abandoning or failing payment.
func (s *Service) CancelURL(o *orderDatamodel.Order) string {
	return fmt.Sprintf("%s/cart?cancel_order=%d&key=%s", s.baseURL, o.ID, o.OrderKey)
}
