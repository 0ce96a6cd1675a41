package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/zaastore/storefront/internal/cart/repository"
	"github.com/zaastore/storefront/internal/domain"
	apperrors "github.com/zaastore/storefront/pkg/errors"
)

// Manager owns one Store per cart ID. A store is loaded from the repository
// the first time its cart is addressed and kept in memory afterwards, so the
// snapshot is read once and written on every mutation.
type Manager struct {
	repo   repository.SnapshotRepository
	sched  Scheduler
	logger *slog.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager creates a manager over the given repository and scheduler.
func NewManager(repo repository.SnapshotRepository, sched Scheduler, logger *slog.Logger) *Manager {
	return &Manager{
		repo:   repo,
		sched:  sched,
		logger: logger,
		stores: make(map[string]*Store),
	}
}

// Open returns the store for a cart ID, loading its snapshot from the
// repository on first use. A cart that has never been saved starts empty.
func (m *Manager) Open(ctx context.Context, cartID string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[cartID]; ok {
		return store, nil
	}

	snap := domain.CartSnapshot{}
	loaded, err := m.repo.Get(ctx, cartID)
	switch {
	case err == nil:
		snap = *loaded
	case errors.Is(err, apperrors.ErrNotFound):
		// First visit for this cart.
	default:
		return nil, err
	}

	store := NewStore(cartID, snap, m.repo, m.sched, m.logger)
	m.stores[cartID] = store
	return store, nil
}
