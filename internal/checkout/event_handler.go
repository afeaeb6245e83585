package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mondido/hosted-checkout/internal/core/events"
)

// EventHandler writes the checkout audit trail. It subscribes to the order
// and payment events the checkout flows publish and records the order state
// each one left behind.
type EventHandler struct {
	orders OrderAPI
	logger *slog.Logger
}

func NewEventHandler(orders OrderAPI, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		orders: orders,
		logger: logger,
	}
}

func (h *EventHandler) HandleOrderPlaced(ctx context.Context, event events.Event) error {
	placed, ok := event.(*events.OrderPlacedEvent)
	if !ok {
		h.logger.Error("invalid event type for order placed handler", "event_type", event.EventType())
		return fmt.Errorf("expected OrderPlacedEvent, got %T", event)
	}

	o, err := h.orders.Get(placed.OrderID)
	if err != nil {
		h.logger.Error("placed order not found for audit",
			"error", err,
			"order_id", placed.OrderID,
			"event_id", placed.EventID())
		return fmt.Errorf("audit lookup failed for order %d: %w", placed.OrderID, err)
	}

	h.logger.Info("order placed",
		"order_id", o.ID,
		"customer_id", placed.CustomerID,
		"amount", placed.Amount,
		"currency", placed.Currency,
		"status", o.Status,
		"event_id", placed.EventID())

	return nil
}

func (h *EventHandler) HandleWebhookReceived(ctx context.Context, event events.Event) error {
	webhook, ok := event.(*events.PaymentWebhookReceivedEvent)
	if !ok {
		h.logger.Error("invalid event type for webhook received handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentWebhookReceivedEvent, got %T", event)
	}

	orderID, err := strconv.ParseInt(webhook.PaymentRef, 10, 64)
	if err != nil {
		return fmt.Errorf("payment_ref %q is not an order id: %w", webhook.PaymentRef, err)
	}

	o, err := h.orders.Get(orderID)
	if err != nil {
		h.logger.Error("order not found for webhook audit",
			"error", err,
			"order_id", orderID,
			"event_id", webhook.EventID())
		return fmt.Errorf("audit lookup failed for order %d: %w", orderID, err)
	}

	h.logger.Info("payment webhook applied",
		"order_id", o.ID,
		"transaction_id", webhook.TransactionID,
		"transaction_status", webhook.Status,
		"order_status", o.Status,
		"event_id", webhook.EventID())

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeOrderPlaced, h.HandleOrderPlaced)
	eventBus.Subscribe(events.EventTypePaymentWebhookReceived, h.HandleWebhookReceived)

	h.logger.Info("checkout event handlers registered",
		"handlers", []string{events.EventTypeOrderPlaced, events.EventTypePaymentWebhookReceived})
}
