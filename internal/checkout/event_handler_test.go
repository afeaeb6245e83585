package checkout_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/mondido/hosted-checkout/internal"
	checkoutpkg "github.com/mondido/hosted-checkout/internal/checkout"
	"github.com/mondido/hosted-checkout/internal/core/events"
)

var _ = ginkgo.Describe("EventHandler", func() {
	var (
		orders  *mockOrderAPI
		handler *checkoutpkg.EventHandler
	)

	ginkgo.BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		orders = &mockOrderAPI{order: testOrder()}
		handler = checkoutpkg.NewEventHandler(orders, logger)
	})

	ginkgo.Describe("HandleOrderPlaced", func() {
		ginkgo.It("should audit the placed order against its stored state", func() {
			event := events.NewOrderPlacedEvent(42, 7, 15.50, "SEK")

			err := handler.HandleOrderPlaced(context.Background(), event)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(orders.getCalls).To(gomega.Equal(1))
		})

		ginkgo.It("should reject an event of the wrong type", func() {
			event := events.NewSessionCreatedEvent(42, "42", "https://pay.example/s/1")

			err := handler.HandleOrderPlaced(context.Background(), event)

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(orders.getCalls).To(gomega.Equal(0))
		})

		ginkgo.It("should fail when the order cannot be loaded", func() {
			orders.getErr = internal.ErrOrderNotFound
			event := events.NewOrderPlacedEvent(42, 7, 15.50, "SEK")

			err := handler.HandleOrderPlaced(context.Background(), event)

			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("HandleWebhookReceived", func() {
		ginkgo.It("should audit the order named by the payment reference", func() {
			event := events.NewPaymentWebhookReceivedEvent("42", "900", "approved")

			err := handler.HandleWebhookReceived(context.Background(), event)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(orders.getCalls).To(gomega.Equal(1))
		})

		ginkgo.It("should fail on a non-numeric payment reference", func() {
			event := events.NewPaymentWebhookReceivedEvent("not-an-order", "900", "approved")

			err := handler.HandleWebhookReceived(context.Background(), event)

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(orders.getCalls).To(gomega.Equal(0))
		})

		ginkgo.It("should reject an event of the wrong type", func() {
			event := events.NewOrderPlacedEvent(42, 7, 15.50, "SEK")

			err := handler.HandleWebhookReceived(context.Background(), event)

			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("RegisterEventHandlers", func() {
		ginkgo.It("should receive published order and webhook events through the bus", func() {
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
			bus := events.NewEventBus(logger)
			handler.RegisterEventHandlers(bus)

			err := bus.PublishSync(context.Background(), events.NewOrderPlacedEvent(42, 7, 15.50, "SEK"))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			err = bus.PublishSync(context.Background(), events.NewPaymentWebhookReceivedEvent("42", "900", "approved"))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(orders.getCalls).To(gomega.Equal(2))
		})
	})
})
