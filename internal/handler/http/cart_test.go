package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaastore/storefront/internal/cart"
	"github.com/zaastore/storefront/internal/domain"
	apperrors "github.com/zaastore/storefront/pkg/errors"
	"github.com/zaastore/storefront/pkg/httputil"
)

// ============================================================================
// Test helpers
// ============================================================================

type memRepo struct {
	snaps map[string]domain.CartSnapshot
}

func newMemRepo() *memRepo {
	return &memRepo{snaps: map[string]domain.CartSnapshot{}}
}

func (r *memRepo) Get(_ context.Context, cartID string) (*domain.CartSnapshot, error) {
	snap, ok := r.snaps[cartID]
	if !ok {
		return nil, apperrors.NotFound("cart", cartID)
	}
	return &snap, nil
}

func (r *memRepo) Save(_ context.Context, cartID string, snap *domain.CartSnapshot) error {
	r.snaps[cartID] = snap.Clone()
	return nil
}

func (r *memRepo) Delete(_ context.Context, cartID string) error {
	delete(r.snaps, cartID)
	return nil
}

type noopScheduler struct{}

func (noopScheduler) AfterFunc(time.Duration, func()) {}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testManager() *cart.Manager {
	return cart.NewManager(newMemRepo(), noopScheduler{}, testLogger())
}

// setupCartRouter creates a chi router matching the production route layout
// for the cart endpoints, including the CartIDFromHeader and ContentTypeJSON
// middleware so header behavior is tested end-to-end.
func setupCartRouter(handler *CartHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(CartIDFromHeader)

		r.Get("/", handler.GetCart)
		r.Delete("/", handler.ClearCart)

		r.Post("/items", handler.AddItem)
		r.Delete("/items/{index}", handler.RemoveItem)
	})
	return r
}

// decodeResponse reads the response body into the standard Response struct.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

// decodeCartPayload re-decodes Response.Data into the cart payload shape.
func decodeCartPayload(t *testing.T, rec *httptest.ResponseRecorder) cartPayload {
	t.Helper()
	resp := decodeResponse(t, rec)
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var payload cartPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	return payload
}

func doJSON(t *testing.T, router http.Handler, method, target, cartID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cartID != "" {
		req.Header.Set("X-Cart-ID", cartID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func addItemBody(id int, title string, price float64) AddItemRequest {
	return AddItemRequest{ID: id, Title: title, Price: price, Thumbnail: "https://cdn/p.jpg"}
}

// ============================================================================
// Cart handler tests
// ============================================================================

func TestGetCart_Empty(t *testing.T) {
	router := setupCartRouter(NewCartHandler(testManager(), nil, testLogger()))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/cart", "cart-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeCartPayload(t, rec)
	assert.Empty(t, payload.Entries)
	assert.Zero(t, payload.TotalCount)
	assert.Zero(t, payload.TotalPriceIDR)
	assert.True(t, payload.FreeShipping)
}

func TestGetCart_MissingCartIDHeader(t *testing.T) {
	router := setupCartRouter(NewCartHandler(testManager(), nil, testLogger()))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/cart", "", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestAddItem_DuplicatesStaySeparateLines(t *testing.T) {
	router := setupCartRouter(NewCartHandler(testManager(), nil, testLogger()))

	body := addItemBody(1, "Kasur Lipat Premium", 10.0)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "cart-1", body)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "cart-1", body)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeCartPayload(t, rec)
	require.Len(t, payload.Entries, 2)
	assert.Equal(t, 2, payload.TotalCount)
	assert.Equal(t, int64(300000), payload.TotalPriceIDR)
	assert.Equal(t, int64(150000), payload.Entries[0].PriceIDR)
}

func TestAddItem_SetsNotification(t *testing.T) {
	router := setupCartRouter(NewCartHandler(testManager(), nil, testLogger()))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "cart-1",
		addItemBody(1, "Kasur Lipat Premium Extra", 10.0))

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeCartPayload(t, rec)
	assert.Equal(t, "Berhasil menambah Kasur Lipat Pre...", payload.Notification)
}

func TestAddItem_ValidationFailure(t *testing.T) {
	router := setupCartRouter(NewCartHandler(testManager(), nil, testLogger()))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "cart-1",
		AddItemRequest{ID: 1, Price: 10}) // missing title

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "Title")
}

func TestRemoveItem_Positional(t *testing.T) {
	router := setupCartRouter(NewCartHandler(testManager(), nil, testLogger()))

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "cart-1", addItemBody(1, "A", 10))
	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "cart-1", addItemBody(2, "B", 20))
	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "cart-1", addItemBody(3, "C", 30))

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/1", "cart-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeCartPayload(t, rec)
	require.Len(t, payload.Entries, 2)
	assert.Equal(t, 1, payload.Entries[0].ID)
	assert.Equal(t, 3, payload.Entries[1].ID)
}

func TestRemoveItem_OutOfRangeIsNoOp(t *testing.T) {
	router := setupCartRouter(NewCartHandler(testManager(), nil, testLogger()))

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "cart-1", addItemBody(1, "A", 10))

	for _, target := range []string{"/api/v1/cart/items/5", "/api/v1/cart/items/-1"} {
		rec := doJSON(t, router, http.MethodDelete, target, "cart-1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		payload := decodeCartPayload(t, rec)
		assert.Len(t, payload.Entries, 1, "out-of-range removal must leave the cart unchanged")
	}
}

func TestRemoveItem_NonNumericIndex(t *testing.T) {
	router := setupCartRouter(NewCartHandler(testManager(), nil, testLogger()))

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/abc", "cart-1", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearCart_KeepsNotification(t *testing.T) {
	router := setupCartRouter(NewCartHandler(testManager(), nil, testLogger()))

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "cart-1", addItemBody(1, "Kasur Lipat Premium", 10))

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/cart", "cart-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeCartPayload(t, rec)
	assert.Empty(t, payload.Entries)
	assert.Equal(t, "Berhasil menambah Kasur Lipat Pre...", payload.Notification,
		"clearing entries must not dismiss the notification")
}

func TestCart_IsolatedPerCartID(t *testing.T) {
	router := setupCartRouter(NewCartHandler(testManager(), nil, testLogger()))

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "cart-a", addItemBody(1, "A", 10))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/cart", "cart-b", nil)
	payload := decodeCartPayload(t, rec)
	assert.Empty(t, payload.Entries)
}

func TestCart_UnsupportedMediaType(t *testing.T) {
	router := setupCartRouter(NewCartHandler(testManager(), nil, testLogger()))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("id=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Cart-ID", "cart-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
