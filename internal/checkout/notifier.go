package checkout

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/mondido/hosted-checkout/internal/core/events"
	"github.com/mondido/hosted-checkout/internal/transport"
)

// Notifier handles provider callbacks that are not shopper redirects. The
// callback endpoint delegates here whenever no redirect was requested.
type Notifier interface {
	HandleNotification(w http.ResponseWriter, r *http.Request)
}

// TransactionApplier is what the notifier needs from the order side.
type TransactionApplier interface {
	ApplyTransaction(paymentRef, transactionID, transactionStatus string, payload []byte) error
}

type WebhookNotifier struct {
	*transport.BaseHandler
	orders   TransactionApplier
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewWebhookNotifier(baseHandler *transport.BaseHandler, orders TransactionApplier, eventBus *events.EventBus, logger *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		BaseHandler: baseHandler,
		orders:      orders,
		eventBus:    eventBus,
		logger:      logger,
	}
}

type webhookPayload struct {
	ID         json.Number `json:"id"`
	Status     string      `json:"status"`
	PaymentRef string      `json:"payment_ref"`
}

type webhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HandleNotification processes a provider transaction webhook. The raw body
// is stored against the order alongside the mapped status.
func (n *WebhookNotifier) HandleNotification(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		n.logger.Error("failed to read webhook body", "error", err)
		n.writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		n.logger.Error("invalid webhook payload", "error", err)
		n.writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n.logger.Info("received payment webhook",
		"transaction_id", payload.ID.String(),
		"status", payload.Status,
		"payment_ref", payload.PaymentRef)

	if payload.PaymentRef == "" {
		n.logger.Error("payment webhook missing payment_ref")
		n.writeErrorResponse(w, http.StatusBadRequest, "payment_ref is required")
		return
	}

	if payload.Status == "" {
		n.logger.Error("payment webhook missing status", "payment_ref", payload.PaymentRef)
		n.writeErrorResponse(w, http.StatusBadRequest, "status is required")
		return
	}

	if err := n.orders.ApplyTransaction(payload.PaymentRef, payload.ID.String(), payload.Status, body); err != nil {
		n.logger.Error("failed to process payment webhook",
			"error", err,
			"payment_ref", payload.PaymentRef,
			"status", payload.Status)
		n.HandleError(w, err)
		return
	}

	// subscribers complete before the 200 is written; their failures do
	// not fail the webhook
	if err := n.eventBus.PublishSync(r.Context(), events.NewPaymentWebhookReceivedEvent(payload.PaymentRef, payload.ID.String(), payload.Status)); err != nil {
		n.logger.Warn("webhook subscriber failed", "error", err, "payment_ref", payload.PaymentRef)
	}

	n.WriteJSON(w, http.StatusOK, webhookResponse{
		Status:  "success",
		Message: "webhook processed successfully",
	})
}

func (n *WebhookNotifier) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	n.WriteJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
