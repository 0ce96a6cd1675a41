package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/zaastore/storefront/internal/domain"
	"github.com/zaastore/storefront/pkg/httpclient"
	"github.com/zaastore/storefront/pkg/pagination"
)

// Doer issues outbound GET requests. Both httpclient.Client and the
// circuit-breaking wrapper satisfy it.
type Doer interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Client reads product pages from the public catalog API. The upstream needs
// no authentication and the client makes no decisions of its own: it fetches,
// decodes, and hands the page over.
type Client struct {
	http    Doer
	baseURL string
}

// NewClient creates a catalog client over the given base URL, e.g.
// "https://dummyjson.com".
func NewClient(baseURL string, doer Doer) *Client {
	return &Client{
		http:    doer,
		baseURL: baseURL,
	}
}

// Search fetches products matching a free-text query, one page at a time.
func (c *Client) Search(ctx context.Context, query string, page pagination.Params) (*domain.ProductPage, error) {
	u := fmt.Sprintf("%s/products/search?q=%s&limit=%d&skip=%d",
		c.baseURL, url.QueryEscape(query), page.Limit, page.Skip)
	return c.fetch(ctx, u)
}

// List fetches one page of products using the upstream's limit/skip window.
func (c *Client) List(ctx context.Context, limit, skip int) (*domain.ProductPage, error) {
	u := fmt.Sprintf("%s/products?limit=%d&skip=%d", c.baseURL, limit, skip)
	return c.fetch(ctx, u)
}

func (c *Client) fetch(ctx context.Context, url string) (*domain.ProductPage, error) {
	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("catalog fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var page domain.ProductPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	return &page, nil
}
