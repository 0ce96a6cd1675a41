package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zaastore/storefront/internal/cart"
	"github.com/zaastore/storefront/internal/currency"
	"github.com/zaastore/storefront/internal/domain"
	"github.com/zaastore/storefront/internal/event"
	"github.com/zaastore/storefront/pkg/httputil"
	"github.com/zaastore/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	manager *cart.Manager
	events  *event.Producer
	logger  *slog.Logger
}

// NewCartHandler creates a cart HTTP handler. events may be nil when no
// broker is configured.
func NewCartHandler(manager *cart.Manager, events *event.Producer, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		manager: manager,
		events:  events,
		logger:  logger,
	}
}

// AddItemRequest is the JSON request body for adding a product to the cart.
// It carries the product copy the cart keeps; the catalog is not consulted
// again.
type AddItemRequest struct {
	ID          int     `json:"id" validate:"required"`
	Title       string  `json:"title" validate:"required,max=500"`
	Price       float64 `json:"price" validate:"gte=0"`
	Thumbnail   string  `json:"thumbnail"`
	Description string  `json:"description"`
}

// cartEntryPayload is a cart entry plus its display price in rounded IDR,
// so the summary column can render per-line prices without re-deriving them.
type cartEntryPayload struct {
	domain.CartEntry
	PriceIDR int64 `json:"price_idr"`
}

// cartPayload is the cart read model returned by every cart endpoint.
type cartPayload struct {
	Entries       []cartEntryPayload `json:"entries"`
	Notification  string             `json:"notification,omitempty"`
	TotalCount    int                `json:"total_count"`
	TotalPriceIDR int64              `json:"total_price_idr"`
	FreeShipping  bool               `json:"free_shipping"`
}

func buildCartPayload(store *cart.Store) cartPayload {
	snap := store.Snapshot()
	entries := make([]cartEntryPayload, len(snap.Entries))
	for i, e := range snap.Entries {
		entries[i] = cartEntryPayload{
			CartEntry: e,
			PriceIDR:  currency.ToIDR(e.Price),
		}
	}
	return cartPayload{
		Entries:       entries,
		Notification:  snap.Notification,
		TotalCount:    len(snap.Entries),
		TotalPriceIDR: store.TotalPriceIDR(),
		FreeShipping:  true, // shipping is always free in this storefront
	}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openStore(w, r)
	if !ok {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: buildCartPayload(store)})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openStore(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
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

	product := domain.Product{
		ID:          req.ID,
		Title:       req.Title,
		Price:       req.Price,
		Thumbnail:   req.Thumbnail,
		Description: req.Description,
	}

	if err := store.Add(r.Context(), product); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.publishUpdated(r, store)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: buildCartPayload(store)})
}

// RemoveItem handles DELETE /api/v1/cart/items/{index}. Removal is
// positional; an out-of-range index is a no-op, not an error.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openStore(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "index must be an integer"},
		})
		return
	}

	if err := store.RemoveAt(r.Context(), index); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.publishUpdated(r, store)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: buildCartPayload(store)})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openStore(w, r)
	if !ok {
		return
	}

	if err := store.Clear(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if h.events != nil {
		if err := h.events.PublishCartCleared(r.Context(), store.CartID()); err != nil {
			h.logger.WarnContext(r.Context(), "publish cart.cleared failed", slog.String("error", err.Error()))
		}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: buildCartPayload(store)})
}

func (h *CartHandler) openStore(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	return openCartStore(h.manager, h.logger, w, r)
}

// openCartStore resolves the caller's cart store from the request context.
// Responses for the failure cases are written here so handlers can just
// bail out.
func openCartStore(manager *cart.Manager, logger *slog.Logger, w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	cartID, ok := cartIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-Cart-ID header is required"},
		})
		return nil, false
	}

	store, err := manager.Open(r.Context(), cartID)
	if err != nil {
		httputil.WriteError(w, r, err, logger)
		return nil, false
	}
	return store, true
}

// publishUpdated emits cart.updated fire-and-forget: publish failures are
// logged, never surfaced to the shopper.
func (h *CartHandler) publishUpdated(r *http.Request, store *cart.Store) {
	if h.events == nil {
		return
	}
	if err := h.events.PublishCartUpdated(r.Context(), store.CartID(), store.Snapshot(), store.TotalPriceIDR()); err != nil {
		h.logger.WarnContext(r.Context(), "publish cart.updated failed", slog.String("error", err.Error()))
	}
}
