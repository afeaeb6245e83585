package storefront

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/mondido/hosted-checkout/internal"
	cartDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/cart"
	orderDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/order"
	productDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/product"
	"github.com/mondido/hosted-checkout/internal/transport"
)

// ProductResolver looks up the product a single-product page is for.
type ProductResolver interface {
	GetByID(id int64) (*productDatamodel.Product, error)
}

// CartReader loads the session cart for the cart page.
type CartReader interface {
	Load(sessionID string) (*cartDatamodel.Cart, error)
}

// OrderReader loads an order for the thank-you page.
type OrderReader interface {
	Get(id int64) (*orderDatamodel.Order, error)
}

type Handler struct {
	*transport.BaseHandler
	cfg      internal.GatewayConfig
	renderer *Renderer
	selector *Selector
	products ProductResolver
	carts    CartReader
	orders   OrderReader
}

func NewHandler(baseHandler *transport.BaseHandler, cfg internal.GatewayConfig, renderer *Renderer, selector *Selector, products ProductResolver, carts CartReader, orders OrderReader) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		cfg:         cfg,
		renderer:    renderer,
		selector:    selector,
		products:    products,
		carts:       carts,
		orders:      orders,
	}
}

// CartPage renders the session cart. The checkout button appears per the
// gateway flags; instant checkout suppresses it.
func (h *Handler) CartPage(w http.ResponseWriter, r *http.Request) {
	sessionID := internal.SessionIDFromContext(r.Context())
	c, err := h.carts.Load(sessionID)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.render(w, TemplateCartPage, map[string]interface{}{
		"Cart":       c,
		"ShowButton": h.selector.ShowCartButton(),
		"ButtonText": h.cfg.OrderButtonText,
	})
}

// ProductPage renders a single product. The buy button only appears when a
// product was resolved, so a missing product is a plain 404.
func (h *Handler) ProductPage(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.ErrProductNotFound)
		return
	}

	p, err := h.products.GetByID(productID)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.render(w, TemplateProductPage, map[string]interface{}{
		"Product":    p,
		"ProductID":  p.ID,
		"ShowButton": h.selector.ShowProductButton(),
		"ButtonText": h.cfg.OrderButtonText,
	})
}

// CheckoutPage renders whichever checkout template the selection rules pick
// for the current configuration.
func (h *Handler) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	sessionID := internal.SessionIDFromContext(r.Context())
	c, err := h.carts.Load(sessionID)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.render(w, h.selector.ResolveTemplate(TemplateFormCheckout), map[string]interface{}{
		"Title": h.cfg.Title,
		"Cart":  c,
	})
}

// ThankYouPage shows the order confirmation, keyed by the order key.
func (h *Handler) ThankYouPage(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.ErrOrderNotFound)
		return
	}

	o, err := h.orders.Get(orderID)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	if key := r.URL.Query().Get("key"); key == "" || key != o.OrderKey {
		h.HandleError(w, internal.ErrOrderNotFound)
		return
	}

	h.render(w, TemplateThankYou, map[string]interface{}{
		"Order": o,
	})
}

func (h *Handler) render(w http.ResponseWriter, name string, data interface{}) {
	h.WriteHTML(w, http.StatusOK)
	if err := h.renderer.Render(w, name, data); err != nil {
		h.Logger.Error("failed to render storefront page", "template", name, "error", err)
	}
}
