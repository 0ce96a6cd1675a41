package http

import (
	"log/slog"
	"net/http"

	"github.com/zaastore/storefront/internal/catalog"
	"github.com/zaastore/storefront/pkg/httputil"
	"github.com/zaastore/storefront/pkg/pagination"
)

// Flash-sale products are a fixed window of the upstream catalog.
const (
	flashSaleLimit = 8
	flashSaleSkip  = 15
)

// CatalogHandler handles HTTP requests for product listing and search.
type CatalogHandler struct {
	client *catalog.Client
	home   *catalog.HomeCache
	logger *slog.Logger
}

func NewCatalogHandler(client *catalog.Client, home *catalog.HomeCache, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		client: client,
		home:   home,
		logger: logger,
	}
}

// ListProducts handles GET /api/v1/products. The home listing is served from
// the warmed cache, never refetched per request.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := h.home.Page()
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

// FlashSale handles GET /api/v1/products/flash-sale. Unlike the home
// listing, the window is fetched fresh on every request.
func (h *CatalogHandler) FlashSale(w http.ResponseWriter, r *http.Request) {
	page, err := h.client.List(r.Context(), flashSaleLimit, flashSaleSkip)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

// SearchProducts handles GET /api/v1/products/search?q=&limit=&skip=
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "query parameter q is required"},
		})
		return
	}

	page, err := h.client.Search(r.Context(), query, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}
