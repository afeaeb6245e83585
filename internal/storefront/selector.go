package storefront

import "github.com/mondido/hosted-checkout/internal"

const EndpointOrderPay = "order-pay"

// orderPayTitle replaces the page title at the order-pay endpoint.
const orderPayTitle = "Checkout"

// PageQuery describes the request context a title lookup runs in.
type PageQuery struct {
	Endpoint  string
	Admin     bool
	MainQuery bool
}

// Selector decides which template a page context renders. Pure selection
// over configuration flags, no business rules.
type Selector struct {
	cfg internal.GatewayConfig
}

func NewSelector(cfg internal.GatewayConfig) *Selector {
	return &Selector{cfg: cfg}
}

// ShowCartButton reports whether the cart page gets the checkout button.
// Instant checkout replaces the whole checkout page, so the button would be
// redundant there.
func (s *Selector) ShowCartButton() bool {
	return s.cfg.Enabled && s.cfg.CartButton && !s.cfg.InstantCheckout
}

// ShowProductButton reports whether a single-product page gets the buy
// button. The caller must have resolved a product for the page first.
func (s *Selector) ShowProductButton() bool {
	return s.cfg.Enabled && s.cfg.ProductButton
}

// ResolveTemplate swaps the standard checkout form for the gateway's own
// checkout template when instant checkout is on. Exact-match on the known
// path; every other lookup passes through unchanged.
func (s *Selector) ResolveTemplate(name string) string {
	if !s.cfg.Enabled || !s.cfg.InstantCheckout {
		return name
	}
	if name == TemplateFormCheckout {
		return TemplateMondidoCheckout
	}
	return name
}

// PageTitle overrides the title at the order-pay endpoint, but only for the
// primary content query of a front-end request.
func (s *Selector) PageTitle(q PageQuery, fallback string) string {
	if q.Endpoint == EndpointOrderPay && !q.Admin && q.MainQuery {
		return orderPayTitle
	}
	return fallback
}
