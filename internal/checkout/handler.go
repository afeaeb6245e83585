package checkout

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/mondido/hosted-checkout/internal"
	"github.com/mondido/hosted-checkout/internal/storefront"
	"github.com/mondido/hosted-checkout/internal/transport"
)

// Ajax action names, kept verbatim from the storefront scripts that post
// them.
const (
	ActionPlaceOrder = "mondido_place_order"
	ActionBuyProduct = "mondido_buy_product"
)

type Handler struct {
	*transport.BaseHandler
	service  *Service
	renderer *storefront.Renderer
	selector *storefront.Selector
	notifier Notifier
}

func NewHandler(baseHandler *transport.BaseHandler, service *Service, renderer *storefront.Renderer, selector *storefront.Selector, notifier Notifier) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		service:     service,
		renderer:    renderer,
		selector:    selector,
		notifier:    notifier,
	}
}

// ReceiptPage shows the payment iframe for an order. A failed session
// creation renders the provider's message inline on the same page; the
// shopper stays on the receipt and can retry.
func (h *Handler) ReceiptPage(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.ErrOrderNotFound)
		return
	}
	orderKey := r.URL.Query().Get("key")

	session, err := h.service.CreateSessionForOrder(r.Context(), orderID, orderKey)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			switch appErr.Code {
			case internal.ErrCodeRemoteTransport, internal.ErrCodeRemoteAPI:
				h.WriteHTML(w, http.StatusOK)
				if renderErr := h.renderer.Render(w, storefront.TemplateErrorList, map[string]interface{}{
					"Errors": []string{"Error: " + appErr.Message},
				}); renderErr != nil {
					h.Logger.Error("failed to render checkout error", "error", renderErr)
				}
				return
			}
		}
		h.HandleError(w, err)
		return
	}

	title := h.selector.PageTitle(storefront.PageQuery{
		Endpoint:  storefront.EndpointOrderPay,
		MainQuery: true,
	}, "Checkout")

	h.WriteHTML(w, http.StatusOK)
	if err := h.renderer.Render(w, storefront.TemplateIframe, map[string]interface{}{
		"Title":      title,
		"PaymentURL": session.Href,
	}); err != nil {
		h.Logger.Error("failed to render payment iframe", "error", err)
	}
}

// Callback is the single gateway callback endpoint. A goto parameter turns
// the request into a pure shopper redirect and nothing else runs; without
// one the request is treated as a provider notification.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	if target := r.URL.Query().Get("goto"); target != "" {
		h.Logger.Info("gateway callback redirect", "target", target)
		h.WriteHTML(w, http.StatusOK)
		if err := h.renderer.Render(w, storefront.TemplateRedirect, map[string]interface{}{
			"URL": target,
		}); err != nil {
			h.Logger.Error("failed to render redirect", "error", err)
		}
		return
	}

	h.notifier.HandleNotification(w, r)
}

// Ajax dispatches the storefront ajax actions. Responses always use the
// {success, data} envelope with HTTP 200; errors live inside the envelope.
func (h *Handler) Ajax(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeAjaxError(w, "invalid form body")
		return
	}

	action := r.URL.Query().Get("action")
	if action == "" {
		action = r.PostFormValue("action")
	}

	switch action {
	case ActionPlaceOrder:
		h.placeOrder(w, r)
	case ActionBuyProduct:
		h.buyProduct(w, r)
	default:
		h.Logger.Warn("unknown ajax action", "action", action)
		h.WriteJSON(w, http.StatusBadRequest, AjaxResponse{Success: false, Data: "unknown action"})
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := internal.SessionIDFromContext(r.Context())
	if sessionID == "" {
		h.writeAjaxError(w, "no cart session")
		return
	}
	customerID := internal.CustomerIDFromContext(r.Context())

	result, err := h.service.PlaceOrder(r.Context(), sessionID, customerID)
	if err != nil {
		h.Logger.Error("place order failed", "error", err, "session_id", sessionID)
		h.writeAjaxError(w, ajaxErrorMessage(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, AjaxResponse{Success: true, Data: result})
}

func (h *Handler) buyProduct(w http.ResponseWriter, r *http.Request) {
	sessionID := internal.SessionIDFromContext(r.Context())
	if sessionID == "" {
		h.writeAjaxError(w, "no cart session")
		return
	}

	req, err := ParseBuyProductRequest(r.PostFormValue("product_id"), r.PostFormValue("qty"))
	if err != nil {
		h.writeAjaxError(w, ajaxErrorMessage(err))
		return
	}

	if err := h.service.BuyProduct(r.Context(), sessionID, req.ProductID, req.Qty); err != nil {
		h.Logger.Error("buy product failed", "error", err, "session_id", sessionID, "product_id", req.ProductID)
		h.writeAjaxError(w, ajaxErrorMessage(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, AjaxResponse{Success: true})
}

func (h *Handler) writeAjaxError(w http.ResponseWriter, message string) {
	h.WriteJSON(w, http.StatusOK, AjaxResponse{Success: false, Data: message})
}

func ajaxErrorMessage(err error) string {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr.Message
	}
	return "internal error"
}
