package repository

import (
	"context"

	"github.com/zaastore/storefront/internal/domain"
)

// SnapshotRepository defines persistence for whole cart snapshots. The
// snapshot is the unit of storage: it is written as one blob on every
// mutation and read back as one blob when a cart is opened.
type SnapshotRepository interface {
	// Get retrieves the snapshot for a cart ID. Returns a NotFound error
	// when the cart has never been saved.
	Get(ctx context.Context, cartID string) (*domain.CartSnapshot, error)

	// Save persists the snapshot, overwriting any existing one.
	Save(ctx context.Context, cartID string, snap *domain.CartSnapshot) error

	// Delete removes the snapshot for a cart ID.
	Delete(ctx context.Context, cartID string) error
}
