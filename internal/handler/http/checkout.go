package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zaastore/storefront/internal/cart"
	"github.com/zaastore/storefront/internal/checkout"
	"github.com/zaastore/storefront/internal/currency"
	"github.com/zaastore/storefront/internal/domain"
	"github.com/zaastore/storefront/internal/event"
	apperrors "github.com/zaastore/storefront/pkg/errors"
	"github.com/zaastore/storefront/pkg/httputil"
	"github.com/zaastore/storefront/pkg/validator"
)

// CheckoutHandler handles both checkout surfaces: the bare token proxy the
// payment widget talks to and the versioned cart-backed checkout API.
type CheckoutHandler struct {
	assembler *checkout.Assembler
	gateway   checkout.TokenCreator
	manager   *cart.Manager
	events    *event.Producer
	clientKey string
	snapJSURL string
	logger    *slog.Logger
}

func NewCheckoutHandler(
	assembler *checkout.Assembler,
	gateway checkout.TokenCreator,
	manager *cart.Manager,
	events *event.Producer,
	clientKey, snapJSURL string,
	logger *slog.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		assembler: assembler,
		gateway:   gateway,
		manager:   manager,
		events:    events,
		clientKey: clientKey,
		snapJSURL: snapJSURL,
		logger:    logger,
	}
}

// proxyAddress mirrors the gateway address object.
type proxyAddress struct {
	Address string `json:"address"`
}

// proxyItem is one line item in the proxy payload. Prices arrive as numbers
// from the browser and are re-rounded server-side before forwarding.
type proxyItem struct {
	ID       string  `json:"id" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"required,gte=1"`
	Name     string  `json:"name" validate:"required,max=50"`
}

type proxyCustomerDetails struct {
	FirstName       string       `json:"first_name"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	BillingAddress  proxyAddress `json:"billing_address"`
	ShippingAddress proxyAddress `json:"shipping_address"`
}

// proxyRequest is the typed schema the proxy accepts. Anything that does not
// fit it is rejected before a single byte reaches the gateway.
type proxyRequest struct {
	OrderID         string               `json:"order_id" validate:"required"`
	GrossAmount     float64              `json:"gross_amount" validate:"required,gt=0"`
	Items           []proxyItem          `json:"items" validate:"required,min=1,dive"`
	CustomerDetails proxyCustomerDetails `json:"customer_details"`
}

// proxyTokenResponse and proxyErrorResponse are the proxy's wire shapes. The
// payment widget consumes these directly, so they stay bare: no envelope, no
// error code, just the token or a message.
type proxyTokenResponse struct {
	Token string `json:"token"`
}

type proxyErrorResponse struct {
	Error string `json:"error"`
}

// CreateTransaction handles POST /api/checkout, the trust-boundary proxy in
// front of the payment gateway. The server key never leaves this process;
// the browser only ever sees the resulting token.
func (h *CheckoutHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req proxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProxyError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validator.Validate(req); err != nil {
		writeProxyError(w, http.StatusBadRequest, err.Error())
		return
	}

	order := h.orderFromProxy(req)

	token, err := h.gateway.CreateTransaction(r.Context(), order)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "proxy transaction failed",
			slog.String("order_id", req.OrderID),
			slog.String("error", err.Error()),
		)

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			writeProxyError(w, http.StatusInternalServerError, appErr.Message)
			return
		}
		writeProxyError(w, http.StatusInternalServerError, "Gagal membuat transaksi Midtrans")
		return
	}

	writeProxyJSON(w, http.StatusOK, proxyTokenResponse{Token: token})
}

// orderFromProxy re-rounds every amount the client sent. The proxy does not
// trust the browser's arithmetic: fractional or drifted values are snapped
// back to whole IDR here.
func (h *CheckoutHandler) orderFromProxy(req proxyRequest) *domain.Order {
	items := make([]domain.OrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = domain.OrderItem{
			ID:       it.ID,
			Price:    currency.Round(it.Price),
			Quantity: it.Quantity,
			Name:     it.Name,
		}
	}

	return &domain.Order{
		OrderID:     req.OrderID,
		GrossAmount: currency.Round(req.GrossAmount),
		Items:       items,
		CustomerDetails: domain.CustomerDetails{
			FirstName:       req.CustomerDetails.FirstName,
			Email:           req.CustomerDetails.Email,
			Phone:           req.CustomerDetails.Phone,
			BillingAddress:  domain.Address{Address: req.CustomerDetails.BillingAddress.Address},
			ShippingAddress: domain.Address{Address: req.CustomerDetails.ShippingAddress.Address},
		},
	}
}

// CheckoutRequest is the body of POST /api/v1/checkout.
type CheckoutRequest struct {
	checkout.CustomerForm
}

// Checkout handles POST /api/v1/checkout: assemble the order from the live
// cart and open a payment session. An X-Idempotency-Key header makes the
// submission safe to repeat.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openStore(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	res, err := h.assembler.Checkout(r.Context(), store, req.CustomerForm, r.Header.Get("X-Idempotency-Key"))
	if err != nil {
		var vErr *validator.ValidationError
		if errors.As(err, &vErr) {
			httputil.WriteValidationError(w, vErr)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: res})
}

// CompleteRequest is the body of POST /api/v1/checkout/complete.
type CompleteRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

// Complete handles POST /api/v1/checkout/complete: the widget reported a
// successful payment, so the cart is emptied.
func (h *CheckoutHandler) Complete(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openStore(w, r)
	if !ok {
		return
	}

	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.assembler.Complete(r.Context(), store, req.OrderID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if h.events != nil {
		if err := h.events.PublishCheckoutCompleted(r.Context(), store.CartID(), req.OrderID); err != nil {
			h.logger.WarnContext(r.Context(), "publish checkout.completed failed", slog.String("error", err.Error()))
		}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"order_id": req.OrderID,
		"status":   "completed",
	}})
}

// ConfigResponse is the widget bootstrap payload: the publishable client key
// and where to load snap.js from. The server key is never part of it.
type ConfigResponse struct {
	ClientKey string `json:"client_key"`
	SnapJSURL string `json:"snap_js_url"`
}

// Config handles GET /api/v1/checkout/config
func (h *CheckoutHandler) Config(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ConfigResponse{
		ClientKey: h.clientKey,
		SnapJSURL: h.snapJSURL,
	}})
}

func (h *CheckoutHandler) openStore(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	return openCartStore(h.manager, h.logger, w, r)
}

func writeProxyJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProxyError(w http.ResponseWriter, status int, message string) {
	writeProxyJSON(w, status, proxyErrorResponse{Error: message})
}
