package checkout

import (
	"fmt"
	"net/url"
	"strconv"

	errors "github.com/mondido/hosted-checkout/internal"
	"github.com/mondido/hosted-checkout/internal/core/common/validation"
)

// SessionRequest carries every field of a hosted-checkout transaction
// request. It is transient: built per order, possibly amended by transforms,
// encoded once and discarded.
type SessionRequest struct {
	Amount      string
	VATAmount   string
	MerchantID  string
	Currency    string
	CustomerRef string
	PaymentRef  string
	SuccessURL  string
	ErrorURL    string
	Metadata    map[string]string
	Test        string
	Authorize   string
	Items       []Item
	Webhook     WebhookDescriptor
	Process     string
	Hash        string
}

// Item is one priced line of the session request. Amount is the line total
// including tax.
type Item struct {
	ArtNo       string
	Description string
	Qty         int
	Amount      float64
	VAT         float64
}

// WebhookDescriptor tells the provider how to deliver the payment webhook.
type WebhookDescriptor struct {
	URL        string
	Trigger    string
	HTTPMethod string
	DataFormat string
	Type       string
}

// SessionResponse is the provider's answer to a created transaction. Only
// Href matters to the flow; it lives exactly as long as the receipt render.
type SessionResponse struct {
	ID     int64  `json:"id"`
	Href   string `json:"href"`
	Status string `json:"status"`
}

// ErrorResponse is the provider's non-200 body shape.
type ErrorResponse struct {
	Name        string `json:"name"`
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// FormatAmount renders a monetary value with exactly two fraction digits,
// decimal point, no thousands separator.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// EncodeForm flattens the request into PHP-style bracketed form fields
// (items[0][artno], webhook[url], metadata[key]) so the body matches what
// the provider already accepts from its existing storefront integrations.
func (r *SessionRequest) EncodeForm() url.Values {
	v := url.Values{}

	v.Set("amount", r.Amount)
	v.Set("vat_amount", r.VATAmount)
	v.Set("merchant_id", r.MerchantID)
	v.Set("currency", r.Currency)
	v.Set("customer_ref", r.CustomerRef)
	v.Set("payment_ref", r.PaymentRef)
	v.Set("success_url", r.SuccessURL)
	v.Set("error_url", r.ErrorURL)
	v.Set("test", r.Test)
	v.Set("authorize", r.Authorize)
	v.Set("process", r.Process)

	for key, value := range r.Metadata {
		v.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	for i, item := range r.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		v.Set(prefix+"[artno]", item.ArtNo)
		v.Set(prefix+"[description]", item.Description)
		v.Set(prefix+"[qty]", strconv.Itoa(item.Qty))
		v.Set(prefix+"[amount]", FormatAmount(item.Amount))
		v.Set(prefix+"[vat]", FormatAmount(item.VAT))
	}

	v.Set("webhook[url]", r.Webhook.URL)
	v.Set("webhook[trigger]", r.Webhook.Trigger)
	v.Set("webhook[http_method]", r.Webhook.HTTPMethod)
	v.Set("webhook[data_format]", r.Webhook.DataFormat)
	v.Set("webhook[type]", r.Webhook.Type)

	if r.Hash != "" {
		v.Set("hash", r.Hash)
	}

	return v
}

// PlaceOrderResult is the ajax place-order success payload.
type PlaceOrderResult struct {
	OrderID     int64  `json:"order_id"`
	RedirectURL string `json:"redirect_url"`
}

// AjaxResponse is the JSON envelope both ajax endpoints answer with.
type AjaxResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// BuyProductRequest carries the buy-product form fields. Qty is passed
// through verbatim; only parseability is enforced here, the cart layer does
// the rest.
type BuyProductRequest struct {
	ProductID int64
	Qty       int
}

func (r *BuyProductRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("product_id", r.ProductID).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ParseBuyProductRequest reads product_id and qty form fields.
func ParseBuyProductRequest(productID, qty string) (*BuyProductRequest, error) {
	id, err := strconv.ParseInt(productID, 10, 64)
	if err != nil {
		return nil, errors.NewValidationFieldError("product_id", "product_id must be numeric", errors.ErrCodeValidationFailed)
	}

	q, err := strconv.Atoi(qty)
	if err != nil {
		return nil, errors.NewValidationFieldError("qty", "qty must be numeric", errors.ErrCodeInvalidQuantity)
	}

	req := &BuyProductRequest{ProductID: id, Qty: q}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
