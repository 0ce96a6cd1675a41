package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zaastore/storefront/internal/domain"
	apperrors "github.com/zaastore/storefront/pkg/errors"
)

// keyPrefix matches the store name the web client persisted under, so a
// snapshot survives the storage backend swap.
const keyPrefix = "zaastore-storage:"

// SnapshotRepository implements repository.SnapshotRepository using Redis.
type SnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotRepository creates a Redis-backed snapshot repository. A zero
// TTL keeps snapshots forever.
func NewSnapshotRepository(client *redis.Client, ttl time.Duration) *SnapshotRepository {
	return &SnapshotRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cart snapshot by cart ID.
func (r *SnapshotRepository) Get(ctx context.Context, cartID string) (*domain.CartSnapshot, error) {
	data, err := r.client.Get(ctx, keyPrefix+cartID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("cart", cartID)
		}
		return nil, fmt.Errorf("redis get cart snapshot: %w", err)
	}

	var snap domain.CartSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal cart snapshot: %w", err)
	}

	return &snap, nil
}

// Save persists the whole snapshot under the cart's key.
func (r *SnapshotRepository) Save(ctx context.Context, cartID string, snap *domain.CartSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+cartID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart snapshot: %w", err)
	}

	return nil
}

// Delete removes a cart snapshot by cart ID.
func (r *SnapshotRepository) Delete(ctx context.Context, cartID string) error {
	if err := r.client.Del(ctx, keyPrefix+cartID).Err(); err != nil {
		return fmt.Errorf("redis del cart snapshot: %w", err)
	}

	return nil
}
