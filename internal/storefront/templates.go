package storefront

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

// Template slot names. The checkout/* names mirror the template lookup paths
// the selection rules match on.
const (
	TemplateCartButton      = "checkout/cart-button"
	TemplateProductButton   = "checkout/product-button"
	TemplateIframe          = "checkout/mondido-iframe"
	TemplateRedirect        = "checkout/mondido-redirect"
	TemplateMondidoCheckout = "checkout/mondido-checkout"
	TemplateFormCheckout    = "checkout/form-checkout"
	TemplateErrorList       = "checkout/error-list"
	TemplateCartPage        = "cart-page"
	TemplateProductPage     = "product-page"
	TemplateThankYou        = "thank-you"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer holds the parsed template set for every slot the storefront and
// the checkout flow render into.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse storefront templates: %w", err)
	}
	return &Renderer{templates: templates}, nil
}

// Render executes the template behind a slot name. Each template file
// defines its slot name, so the lookup is direct.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
