package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeOrderPlaced            = "order.placed"
	EventTypeSessionCreated         = "checkout.session_created"
	EventTypePaymentWebhookReceived = "payment.webhook_received"
)

type OrderPlacedEvent struct {
	BaseEvent
	OrderID    int64   `json:"order_id"`
	CustomerID int64   `json:"customer_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}

func NewOrderPlacedEvent(orderID, customerID int64, amount float64, currency string) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeOrderPlaced,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"order_id":    orderID,
				"customer_id": customerID,
				"amount":      amount,
				"currency":    currency,
			},
		},
		OrderID:    orderID,
		CustomerID: customerID,
		Amount:     amount,
		Currency:   currency,
	}
}

type SessionCreatedEvent struct {
	BaseEvent
	OrderID    int64  `json:"order_id"`
	PaymentRef string `json:"payment_ref"`
	PaymentURL string `json:"payment_url"`
}

func NewSessionCreatedEvent(orderID int64, paymentRef, paymentURL string) *SessionCreatedEvent {
	return &SessionCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSessionCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"order_id":    orderID,
				"payment_ref": paymentRef,
				"payment_url": paymentURL,
			},
		},
		OrderID:    orderID,
		PaymentRef: paymentRef,
		PaymentURL: paymentURL,
	}
}

type PaymentWebhookReceivedEvent struct {
	BaseEvent
	PaymentRef    string `json:"payment_ref"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

func NewPaymentWebhookReceivedEvent(paymentRef, transactionID, status string) *PaymentWebhookReceivedEvent {
	return &PaymentWebhookReceivedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentWebhookReceived,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_ref":    paymentRef,
				"transaction_id": transactionID,
				"status":         status,
			},
		},
		PaymentRef:    paymentRef,
		TransactionID: transactionID,
		Status:        status,
	}
}
