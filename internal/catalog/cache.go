package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/zaastore/storefront/internal/domain"
	apperrors "github.com/zaastore/storefront/pkg/errors"
)

// HomeCache holds the home listing fetched once at startup, the moral
// equivalent of a statically generated page. The flash-sale and search read
// paths bypass it and hit the upstream per request.
type HomeCache struct {
	client *Client
	limit  int

	mu   sync.RWMutex
	page *domain.ProductPage
}

// NewHomeCache creates a cache that warms with the first `limit` products.
func NewHomeCache(client *Client, limit int) *HomeCache {
	return &HomeCache{
		client: client,
		limit:  limit,
	}
}

// Warm fetches the home listing and stores it. Called once at startup;
// calling it again replaces the cached page.
func (c *HomeCache) Warm(ctx context.Context) error {
	page, err := c.client.List(ctx, c.limit, 0)
	if err != nil {
		return fmt.Errorf("warm home listing: %w", err)
	}

	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
	return nil
}

// Page returns the warmed listing. It fails with Unavailable when Warm has
// not succeeded yet rather than falling through to the upstream.
func (c *HomeCache) Page() (*domain.ProductPage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.page == nil {
		return nil, apperrors.Unavailable("home listing is not warmed yet")
	}
	return c.page, nil
}
