package storefront_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/mondido/hosted-checkout/internal"
	cartDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/cart"
	orderDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/order"
	productDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/product"
	"github.com/mondido/hosted-checkout/internal/storefront"
	"github.com/mondido/hosted-checkout/internal/transport"
)

type mockProducts struct {
	product *productDatamodel.Product
	err     error
}

func (m *mockProducts) GetByID(id int64) (*productDatamodel.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.product, nil
}

type mockCarts struct {
	cart *cartDatamodel.Cart
	err  error
}

func (m *mockCarts) Load(sessionID string) (*cartDatamodel.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

type mockOrders struct {
	order *orderDatamodel.Order
	err   error
}

func (m *mockOrders) Get(id int64) (*orderDatamodel.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

var _ = ginkgo.Describe("Handler", func() {
	var (
		cfg      internal.GatewayConfig
		products *mockProducts
		carts    *mockCarts
		orders   *mockOrders
		recorder *httptest.ResponseRecorder
	)

	newRouter := func() *chi.Mux {
		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		renderer, err := storefront.NewRenderer()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		selector := storefront.NewSelector(cfg)
		handler := storefront.NewHandler(transport.NewBaseHandler(testLogger), cfg, renderer, selector, products, carts, orders)

		router := chi.NewRouter()
		router.Get("/cart", handler.CartPage)
		router.Get("/product/{id}", handler.ProductPage)
		router.Get("/checkout", handler.CheckoutPage)
		router.Get("/checkout/thank-you/{id}", handler.ThankYouPage)
		return router
	}

	ginkgo.BeforeEach(func() {
		cfg = internal.DefaultGatewayConfig()
		cfg.Enabled = true
		products = &mockProducts{
			product: &productDatamodel.Product{ID: 5, ArtNo: "A-5", Name: "Widget", Price: 15.50, Active: true},
		}
		carts = &mockCarts{
			cart: &cartDatamodel.Cart{
				SessionID:   "session-1",
				Currency:    "SEK",
				TotalAmount: 15.50,
				Items:       []cartDatamodel.CartItem{{ProductID: 5, Description: "Widget", Qty: 1, LineTotal: 15.50}},
			},
		}
		orders = &mockOrders{
			order: &orderDatamodel.Order{ID: 42, OrderKey: "key-42", Currency: "SEK", TotalAmount: 15.50},
		}
		recorder = httptest.NewRecorder()
	})

	ginkgo.Describe("CartPage", func() {
		ginkgo.It("should render the cart with the checkout button", func() {
			req := httptest.NewRequest("GET", "/cart", nil)

			newRouter().ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(recorder.Body.String()).To(gomega.ContainSubstring("Widget"))
			gomega.Expect(recorder.Body.String()).To(gomega.ContainSubstring("mondido-checkout-button"))
			gomega.Expect(recorder.Body.String()).To(gomega.ContainSubstring("Pay with Mondido"))
		})

		ginkgo.It("should omit the button under instant checkout", func() {
			cfg.InstantCheckout = true
			req := httptest.NewRequest("GET", "/cart", nil)

			newRouter().ServeHTTP(recorder, req)

			gomega.Expect(recorder.Body.String()).ToNot(gomega.ContainSubstring("mondido-checkout-button"))
		})
	})

	ginkgo.Describe("ProductPage", func() {
		ginkgo.It("should render the product with the buy button", func() {
			req := httptest.NewRequest("GET", "/product/5", nil)

			newRouter().ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(recorder.Body.String()).To(gomega.ContainSubstring("Widget"))
			gomega.Expect(recorder.Body.String()).To(gomega.ContainSubstring(`data-product-id="5"`))
		})

		ginkgo.It("should return not found for an unknown product", func() {
			products.err = internal.ErrProductNotFound
			req := httptest.NewRequest("GET", "/product/5", nil)

			newRouter().ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusNotFound))
		})
	})

	ginkgo.Describe("CheckoutPage", func() {
		ginkgo.It("should render the standard form by default", func() {
			req := httptest.NewRequest("GET", "/checkout", nil)

			newRouter().ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(recorder.Body.String()).To(gomega.ContainSubstring(`id="checkout-form"`))
		})

		ginkgo.It("should render the gateway checkout under instant checkout", func() {
			cfg.InstantCheckout = true
			req := httptest.NewRequest("GET", "/checkout", nil)

			newRouter().ServeHTTP(recorder, req)

			gomega.Expect(recorder.Body.String()).To(gomega.ContainSubstring(`id="mondido-checkout"`))
			gomega.Expect(recorder.Body.String()).ToNot(gomega.ContainSubstring(`id="checkout-form"`))
		})
	})

	ginkgo.Describe("ThankYouPage", func() {
		ginkgo.It("should render the confirmation with the order key", func() {
			req := httptest.NewRequest("GET", "/checkout/thank-you/42?key=key-42", nil)

			newRouter().ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(recorder.Body.String()).To(gomega.ContainSubstring("Order number: 42"))
		})

		ginkgo.It("should return not found for a wrong key", func() {
			req := httptest.NewRequest("GET", "/checkout/thank-you/42?key=wrong", nil)

			newRouter().ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusNotFound))
		})

		ginkgo.It("should return not found without a key", func() {
			req := httptest.NewRequest("GET", "/checkout/thank-you/42", nil)

			newRouter().ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusNotFound))
		})
	})
})
