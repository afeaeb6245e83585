package checkout_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/mondido/hosted-checkout/internal"
	checkoutpkg "github.com/mondido/hosted-checkout/internal/checkout"
	cartDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/cart"
	orderDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/order"
	"github.com/mondido/hosted-checkout/internal/core/events"
	"github.com/mondido/hosted-checkout/internal/storefront"
	"github.com/mondido/hosted-checkout/internal/transport"
)

type mockTransactionCreator struct {
	response *checkoutpkg.SessionResponse
	err      error
	requests []*checkoutpkg.SessionRequest
}

func (m *mockTransactionCreator) CreateTransaction(_ context.Context, req *checkoutpkg.SessionRequest) (*checkoutpkg.SessionResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

type mockOrderAPI struct {
	order                *orderDatamodel.Order
	getErr               error
	getCalls             int
	createErr            error
	markErr              error
	markCalls            int
	applyErr             error
	appliedRefs          []string
	createdFromCartCalls int
}

func (m *mockOrderAPI) Get(id int64) (*orderDatamodel.Order, error) {
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.order, nil
}

func (m *mockOrderAPI) CreateFromCart(c *cartDatamodel.Cart, customerID int64, paymentMethod string) (*orderDatamodel.Order, error) {
	m.createdFromCartCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.order, nil
}

func (m *mockOrderAPI) MarkInstantCheckout(id int64) error {
	m.markCalls++
	return m.markErr
}

func (m *mockOrderAPI) ApplyTransaction(paymentRef, transactionID, transactionStatus string, payload []byte) error {
	m.appliedRefs = append(m.appliedRefs, paymentRef)
	return m.applyErr
}

func (m *mockOrderAPI) PaymentURL(o *orderDatamodel.Order) string {
	return "https://shop.example/checkout/pay/42?key=key-42"
}

func (m *mockOrderAPI) ReturnURL(o *orderDatamodel.Order) string {
	return "https://shop.example/thanks"
}

func (m *mockOrderAPI) CancelURL(o *orderDatamodel.Order) string {
	return "https://shop.example/cart"
}

type mockCartAPI struct {
	cart        *cartDatamodel.Cart
	loadErr     error
	emptyErr    error
	addErr      error
	recalcErr   error
	emptyCalls  int
	addCalls    int
	recalcCalls int
	addedIDs    []int64
	addedQtys   []int
}

func (m *mockCartAPI) Load(sessionID string) (*cartDatamodel.Cart, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.cart, nil
}

func (m *mockCartAPI) Empty(sessionID string) error {
	m.emptyCalls++
	return m.emptyErr
}

func (m *mockCartAPI) AddItem(sessionID string, productID int64, qty int) error {
	m.addCalls++
	m.addedIDs = append(m.addedIDs, productID)
	m.addedQtys = append(m.addedQtys, qty)
	return m.addErr
}

func (m *mockCartAPI) RecalculateTotals(sessionID string) error {
	m.recalcCalls++
	return m.recalcErr
}

var _ = ginkgo.Describe("Handler", func() {
	var (
		client   *mockTransactionCreator
		orders   *mockOrderAPI
		carts    *mockCartAPI
		handler  *checkoutpkg.Handler
		router   *chi.Mux
		recorder *httptest.ResponseRecorder
	)

	ginkgo.BeforeEach(func() {
		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		cfg := internal.DefaultGatewayConfig()
		cfg.Enabled = true
		cfg.MerchantID = "merchant-1"

		client = &mockTransactionCreator{
			response: &checkoutpkg.SessionResponse{ID: 900, Href: "https://pay.mondido.example/session/900"},
		}
		orders = &mockOrderAPI{
			order: &orderDatamodel.Order{
				ID:          42,
				OrderKey:    "key-42",
				CustomerID:  7,
				Currency:    "SEK",
				TotalAmount: 15.50,
				Items: []orderDatamodel.OrderItem{
					{ArtNo: "A-1", Description: "First item", Qty: 1, Amount: 15.50},
				},
			},
		}
		carts = &mockCartAPI{
			cart: &cartDatamodel.Cart{
				SessionID: "session-1",
				Currency:  "SEK",
				Items:     []cartDatamodel.CartItem{{ProductID: 1, Qty: 1, LineTotal: 15.50}},
			},
		}

		builder := checkoutpkg.NewBuilder(cfg, "https://shop.example/gateway/callback")
		eventBus := events.NewEventBus(testLogger)
		service := checkoutpkg.NewService(builder, client, orders, carts, eventBus, testLogger)

		renderer, err := storefront.NewRenderer()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		selector := storefront.NewSelector(cfg)

		baseHandler := transport.NewBaseHandler(testLogger)
		notifier := checkoutpkg.NewWebhookNotifier(baseHandler, orders, eventBus, testLogger)
		handler = checkoutpkg.NewHandler(baseHandler, service, renderer, selector, notifier)

		router = chi.NewRouter()
		router.Get("/checkout/pay/{id}", handler.ReceiptPage)
		router.Get("/gateway/callback", handler.Callback)
		router.Post("/gateway/callback", handler.Callback)
		router.Post("/ajax", handler.Ajax)

		recorder = httptest.NewRecorder()
	})

	ginkgo.Describe("ReceiptPage", func() {
		ginkgo.Context("when the session is created", func() {
			ginkgo.It("should embed the payment page in an iframe", func() {
				req := httptest.NewRequest("GET", "/checkout/pay/42?key=key-42", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				gomega.Expect(recorder.Body.String()).To(gomega.ContainSubstring(`id="mondido-iframe"`))
				gomega.Expect(recorder.Body.String()).To(gomega.ContainSubstring(`src="https://pay.mondido.example/session/900"`))
			})

			ginkgo.It("should create exactly one session per page view", func() {
				req := httptest.NewRequest("GET", "/checkout/pay/42?key=key-42", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(client.requests).To(gomega.HaveLen(1))
				gomega.Expect(client.requests[0].PaymentRef).To(gomega.Equal("42"))
			})
		})

		ginkgo.Context("when the provider rejects the session", func() {
			ginkgo.It("should render the provider message inline without an iframe", func() {
				client.err = internal.NewRemoteAPIError("card declined")
				req := httptest.NewRequest("GET", "/checkout/pay/42?key=key-42", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				gomega.Expect(recorder.Body.String()).To(gomega.ContainSubstring("Error: card declined"))
				gomega.Expect(recorder.Body.String()).ToNot(gomega.ContainSubstring("mondido-iframe"))
			})
		})

		ginkgo.Context("when the provider is unreachable", func() {
			ginkgo.It("should render the transport error inline", func() {
				client.err = internal.NewRemoteTransportError(context.DeadlineExceeded)
				req := httptest.NewRequest("GET", "/checkout/pay/42?key=key-42", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				gomega.Expect(recorder.Body.String()).To(gomega.ContainSubstring("Error:"))
			})
		})

		ginkgo.Context("when the order cannot be resolved", func() {
			ginkgo.It("should return not found for an unknown order", func() {
				orders.getErr = internal.ErrOrderNotFound
				req := httptest.NewRequest("GET", "/checkout/pay/42?key=key-42", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusNotFound))
			})

			ginkgo.It("should return not found for a wrong order key", func() {
				req := httptest.NewRequest("GET", "/checkout/pay/42?key=wrong", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusNotFound))
				gomega.Expect(client.requests).To(gomega.BeEmpty())
			})

			ginkgo.It("should return not found for a non-numeric order id", func() {
				req := httptest.NewRequest("GET", "/checkout/pay/nope?key=key-42", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusNotFound))
			})
		})
	})

	ginkgo.Describe("Callback", func() {
		ginkgo.Context("when a goto target is present", func() {
			ginkgo.It("should redirect the shopper to the decoded target", func() {
				req := httptest.NewRequest("GET", "/gateway/callback?goto=https%3A%2F%2Fshop.example%2Fthanks", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				gomega.Expect(recorder.Body.String()).To(gomega.ContainSubstring("https://shop.example/thanks"))
			})

			ginkgo.It("should not touch any order", func() {
				req := httptest.NewRequest("GET", "/gateway/callback?goto=https%3A%2F%2Fshop.example%2Fthanks", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(orders.appliedRefs).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when no goto target is present", func() {
			ginkgo.It("should process the webhook against the referenced order", func() {
				body := strings.NewReader(`{"id":900,"status":"approved","payment_ref":"42"}`)
				req := httptest.NewRequest("POST", "/gateway/callback?wp_hook=1", body)
				req.Header.Set("Content-Type", "application/json")

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				gomega.Expect(orders.appliedRefs).To(gomega.Equal([]string{"42"}))
			})

			ginkgo.It("should reject a payload without payment_ref", func() {
				body := strings.NewReader(`{"id":900,"status":"approved"}`)
				req := httptest.NewRequest("POST", "/gateway/callback", body)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})

			ginkgo.It("should reject a payload without status", func() {
				body := strings.NewReader(`{"id":900,"payment_ref":"42"}`)
				req := httptest.NewRequest("POST", "/gateway/callback", body)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})

			ginkgo.It("should report an unknown order as not found", func() {
				orders.applyErr = internal.ErrOrderNotFound
				body := strings.NewReader(`{"id":900,"status":"approved","payment_ref":"42"}`)
				req := httptest.NewRequest("POST", "/gateway/callback", body)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusNotFound))
			})
		})
	})

	ginkgo.Describe("Ajax", func() {
		newAjaxRequest := func(action string, form url.Values) *http.Request {
			req := httptest.NewRequest("POST", "/ajax?action="+action, strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			ctx := internal.ContextWithSessionID(req.Context(), "session-1")
			ctx = internal.ContextWithCustomerID(ctx, 7)
			return req.WithContext(ctx)
		}

		decodeEnvelope := func() map[string]interface{} {
			var envelope map[string]interface{}
			err := json.Unmarshal(recorder.Body.Bytes(), &envelope)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			return envelope
		}

		ginkgo.Context("place order", func() {
			ginkgo.It("should answer with the order id and payment page URL", func() {
				req := newAjaxRequest("mondido_place_order", url.Values{})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				envelope := decodeEnvelope()
				gomega.Expect(envelope["success"]).To(gomega.BeTrue())
				data := envelope["data"].(map[string]interface{})
				gomega.Expect(data["order_id"]).To(gomega.BeNumerically("==", 42))
				gomega.Expect(data["redirect_url"]).To(gomega.Equal("https://shop.example/checkout/pay/42?key=key-42"))
			})

			ginkgo.It("should flag the order as instant checkout exactly once", func() {
				req := newAjaxRequest("mondido_place_order", url.Values{})

				router.ServeHTTP(recorder, req)

				gomega.Expect(orders.markCalls).To(gomega.Equal(1))
			})

			ginkgo.It("should fail inside the envelope when order creation fails", func() {
				orders.createErr = internal.ErrCartEmpty
				req := newAjaxRequest("mondido_place_order", url.Values{})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				envelope := decodeEnvelope()
				gomega.Expect(envelope["success"]).To(gomega.BeFalse())
				gomega.Expect(envelope["data"]).To(gomega.Equal("Cart is empty"))
			})

			ginkgo.It("should not flag the order when creation fails", func() {
				orders.createErr = internal.ErrCartEmpty
				req := newAjaxRequest("mondido_place_order", url.Values{})

				router.ServeHTTP(recorder, req)

				gomega.Expect(orders.markCalls).To(gomega.Equal(0))
			})
		})

		ginkgo.Context("buy product", func() {
			ginkgo.It("should empty the cart, add the product and recalculate", func() {
				form := url.Values{"product_id": {"5"}, "qty": {"3"}}
				req := newAjaxRequest("mondido_buy_product", form)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				envelope := decodeEnvelope()
				gomega.Expect(envelope["success"]).To(gomega.BeTrue())
				gomega.Expect(carts.emptyCalls).To(gomega.Equal(1))
				gomega.Expect(carts.addedIDs).To(gomega.Equal([]int64{5}))
				gomega.Expect(carts.addedQtys).To(gomega.Equal([]int{3}))
				gomega.Expect(carts.recalcCalls).To(gomega.Equal(1))
			})

			ginkgo.It("should fail inside the envelope for a non-numeric product id", func() {
				form := url.Values{"product_id": {"abc"}, "qty": {"1"}}
				req := newAjaxRequest("mondido_buy_product", form)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				envelope := decodeEnvelope()
				gomega.Expect(envelope["success"]).To(gomega.BeFalse())
				gomega.Expect(carts.addCalls).To(gomega.Equal(0))
			})

			ginkgo.It("should fail inside the envelope when the product does not exist", func() {
				carts.addErr = internal.ErrProductNotFound
				form := url.Values{"product_id": {"5"}, "qty": {"1"}}
				req := newAjaxRequest("mondido_buy_product", form)

				router.ServeHTTP(recorder, req)

				envelope := decodeEnvelope()
				gomega.Expect(envelope["success"]).To(gomega.BeFalse())
				gomega.Expect(carts.recalcCalls).To(gomega.Equal(0))
			})
		})

		ginkgo.Context("unknown action", func() {
			ginkgo.It("should return bad request with a failed envelope", func() {
				req := newAjaxRequest("mondido_refund", url.Values{})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
				envelope := decodeEnvelope()
				gomega.Expect(envelope["success"]).To(gomega.BeFalse())
			})
		})

		ginkgo.Context("without a cart session", func() {
			ginkgo.It("should fail inside the envelope", func() {
				req := httptest.NewRequest("POST", "/ajax?action=mondido_place_order", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				envelope := decodeEnvelope()
				gomega.Expect(envelope["success"]).To(gomega.BeFalse())
			})
		})
	})
})
