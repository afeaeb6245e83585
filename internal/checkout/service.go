package checkout

import (
	"context"
	"log/slog"

	"github.com/mondido/hosted-checkout/internal"
	cartDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/cart"
	orderDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/order"
	"github.com/mondido/hosted-checkout/internal/core/events"
)

// TransactionCreator is the remote checkout client surface the service
// depends on.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, req *SessionRequest) (*SessionResponse, error)
}

// OrderAPI is what the checkout flow needs from the order service.
type OrderAPI interface {
	Get(id int64) (*orderDatamodel.Order, error)
	CreateFromCart(c *cartDatamodel.Cart, customerID int64, paymentMethod string) (*orderDatamodel.Order, error)
	MarkInstantCheckout(id int64) error
	PaymentURL(o *orderDatamodel.Order) string
	ReturnURL(o *orderDatamodel.Order) string
	CancelURL(o *orderDatamodel.Order) string
}

// CartAPI is the session cart surface the ajax endpoints drive.
type CartAPI interface {
	Load(sessionID string) (*cartDatamodel.Cart, error)
	Empty(sessionID string) error
	AddItem(sessionID string, productID int64, qty int) error
	RecalculateTotals(sessionID string) error
}

type Service struct {
	builder  *Builder
	client   TransactionCreator
	orders   OrderAPI
	carts    CartAPI
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(builder *Builder, client TransactionCreator, orders OrderAPI, carts CartAPI, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		builder:  builder,
		client:   client,
		orders:   orders,
		carts:    carts,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateSessionForOrder runs the receipt-page flow: look up the order,
// assemble the session request, call the provider once. The caller renders
// the returned href inside an iframe, or the error inline.
func (s *Service) CreateSessionForOrder(ctx context.Context, orderID int64, orderKey string) (*SessionResponse, error) {
	o, err := s.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if orderKey == "" || o.OrderKey != orderKey {
		return nil, internal.ErrOrderNotFound
	}

	req, err := s.builder.Build(o, s.orders.ReturnURL(o), s.orders.CancelURL(o))
	if err != nil {
		return nil, err
	}

	session, err := s.client.CreateTransaction(ctx, req)
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(ctx, events.NewSessionCreatedEvent(o.ID, req.PaymentRef, session.Href))

	return session, nil
}

// PlaceOrder creates a pending order from the session cart and hands back
// the payment page URL. The instant-checkout flag is set only after the
// order exists; a creation failure mutates nothing.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, customerID int64) (*PlaceOrderResult, error) {
	c, err := s.carts.Load(sessionID)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.CreateFromCart(c, customerID, internal.GatewayID)
	if err != nil {
		return nil, err
	}

	if err := s.orders.MarkInstantCheckout(o.ID); err != nil {
		// order exists and is payable; losing the flag is not worth
		// failing the checkout over
		s.logger.Warn("order placed but instant-checkout flag not set", "order_id", o.ID, "error", err)
	}

	s.eventBus.Publish(ctx, events.NewOrderPlacedEvent(o.ID, customerID, o.TotalAmount, o.Currency))

	return &PlaceOrderResult{
		OrderID:     o.ID,
		RedirectURL: s.orders.PaymentURL(o),
	}, nil
}

// BuyProduct replaces the cart contents with a single product line and
// recalculates totals. Product variations are not supported.
func (s *Service) BuyProduct(ctx context.Context, sessionID string, productID int64, qty int) error {
	if err := s.carts.Empty(sessionID); err != nil {
		return err
	}

	if err := s.carts.AddItem(sessionID, productID, qty); err != nil {
		return err
	}

	return s.carts.RecalculateTotals(sessionID)
}
