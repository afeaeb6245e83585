package checkout

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mondido/hosted-checkout/internal"
	orderDatamodel "github.com/mondido/hosted-checkout/internal/core/datamodel/order"
)

// Transform amends or replaces session request fields before submission.
// Transforms run in registration order and receive the full request plus the
// order it was built from.
type Transform func(req *SessionRequest, o *orderDatamodel.Order) error

// Builder assembles a SessionRequest from an order and the gateway
// configuration. It has no side effects; the one local invariant it upholds
// is that Amount equals the sum of the item amounts, by construction.
type Builder struct {
	cfg         internal.GatewayConfig
	callbackURL string
	transforms  []Transform
}

func NewBuilder(cfg internal.GatewayConfig, callbackURL string, transforms ...Transform) *Builder {
	return &Builder{
		cfg:         cfg,
		callbackURL: callbackURL,
		transforms:  transforms,
	}
}

// Use appends a transform to the pipeline.
func (b *Builder) Use(t Transform) {
	b.transforms = append(b.transforms, t)
}

// Build produces the session request for an order. returnURL and cancelURL
// are where the shopper ultimately lands; both are routed through the
// callback endpoint via a goto parameter so redirect handling stays
// centralized.
func (b *Builder) Build(o *orderDatamodel.Order, returnURL, cancelURL string) (*SessionRequest, error) {
	if o.Currency == "" {
		return nil, internal.NewValidationFieldError("currency", "order has no currency", internal.ErrCodeValidationFailed)
	}
	if len(o.Items) == 0 {
		return nil, internal.NewValidationError("order has no items", internal.ErrCodeValidationFailed)
	}

	items := make([]Item, 0, len(o.Items))
	var amount float64
	for _, line := range o.Items {
		items = append(items, Item{
			ArtNo:       line.ArtNo,
			Description: line.Description,
			Qty:         line.Qty,
			Amount:      line.Amount,
			VAT:         line.VAT,
		})
		amount += line.Amount
	}

	customerRef := ""
	if o.CustomerID != 0 {
		customerRef = strconv.FormatInt(o.CustomerID, 10)
	}

	paymentRef := strconv.FormatInt(o.ID, 10)

	metadata := map[string]string{
		"order_id": paymentRef,
	}
	if customerRef != "" {
		metadata["customer_id"] = customerRef
	}

	test := "false"
	if b.cfg.TestMode {
		test = "true"
	}

	// authorize is sent as "true" or left empty, never "false"
	authorize := ""
	if b.cfg.Authorize {
		authorize = "true"
	}

	req := &SessionRequest{
		Amount:      FormatAmount(amount),
		VATAmount:   "0",
		MerchantID:  b.cfg.MerchantID,
		Currency:    o.Currency,
		CustomerRef: customerRef,
		PaymentRef:  paymentRef,
		SuccessURL:  appendQuery(b.callbackURL, "goto", returnURL),
		ErrorURL:    appendQuery(b.callbackURL, "goto", cancelURL),
		Metadata:    metadata,
		Test:        test,
		Authorize:   authorize,
		Items:       items,
		Webhook: WebhookDescriptor{
			URL:        appendQuery(b.callbackURL, "wp_hook", "1"),
			Trigger:    "payment",
			HTTPMethod: "post",
			DataFormat: "json",
			Type:       "CustomHttp",
		},
		Process: "false",
	}

	for _, transform := range b.transforms {
		if err := transform(req, o); err != nil {
			return nil, fmt.Errorf("session transform failed: %w", err)
		}
	}

	return req, nil
}

// HashTransform signs the request with the merchant secret. The digest
// covers merchant id, payment ref, customer ref, amount, lowercased
// currency and the test flag.
func HashTransform(secret string) Transform {
	return func(req *SessionRequest, _ *orderDatamodel.Order) error {
		sum := md5.Sum([]byte(
			req.MerchantID +
				req.PaymentRef +
				req.CustomerRef +
				req.Amount +
				strings.ToLower(req.Currency) +
				req.Test +
				secret,
		))
		req.Hash = hex.EncodeToString(sum[:])
		return nil
	}
}

// appendQuery adds one query parameter to a URL, keeping whatever query it
// already carries.
func appendQuery(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
