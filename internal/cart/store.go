package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zaastore/storefront/internal/cart/repository"
	"github.com/zaastore/storefront/internal/currency"
	"github.com/zaastore/storefront/internal/domain"
)

// NotificationDelay is how long an add-to-cart notification stays visible
// before a scheduled clear wipes it.
const NotificationDelay = 3 * time.Second

// notificationTitleLen bounds the product title inside the notification text.
const notificationTitleLen = 15

// Store is the single source of truth for one in-progress cart. Mutations go
// through its operations only; every mutation persists the whole snapshot.
//
// Notification clears are deliberately unconditional: each ShowNotification
// schedules a clear that fires regardless of later notifications, so a rapid
// second add can have its message wiped early by the first add's timer.
type Store struct {
	cartID string
	repo   repository.SnapshotRepository
	sched  Scheduler
	logger *slog.Logger

	mu   sync.Mutex
	snap domain.CartSnapshot
}

// NewStore creates a store over an initial snapshot. Use Manager.Open to get
// a store whose snapshot was loaded from the repository.
func NewStore(cartID string, snap domain.CartSnapshot, repo repository.SnapshotRepository, sched Scheduler, logger *slog.Logger) *Store {
	return &Store{
		cartID: cartID,
		repo:   repo,
		sched:  sched,
		logger: logger,
		snap:   snap,
	}
}

// CartID returns the ID this store is bound to.
func (s *Store) CartID() string {
	return s.cartID
}

// Add appends a copy of the product to the cart. Duplicates are kept as
// separate entries. The add itself cannot fail; only persisting can.
func (s *Store) Add(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	s.snap.Entries = append(s.snap.Entries, domain.EntryFromProduct(p))
	s.showNotificationLocked(notificationText(p.Title))
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	return err
}

// RemoveAt removes the entry at the given position. An index outside
// [0, len) is a silent no-op.
func (s *Store) RemoveAt(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.snap.Entries) {
		return nil
	}

	s.snap.Entries = append(s.snap.Entries[:index], s.snap.Entries[index+1:]...)
	return s.persistLocked(ctx)
}

// Clear empties the entries. The notification is left untouched.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Entries = nil
	return s.persistLocked(ctx)
}

// TotalCount returns the number of entries.
func (s *Store) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snap.Entries)
}

// TotalPriceIDR sums the source-currency entry prices and converts once at
// the end: round(sum * rate). This read path rounds the total, not the
// items, and is informational only — the checkout assembler computes the
// authoritative amount by rounding per item.
func (s *Store) TotalPriceIDR() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum float64
	for _, e := range s.snap.Entries {
		sum += e.Price
	}
	return currency.ToIDR(sum)
}

// ShowNotification replaces the visible notification text and schedules an
// unconditional clear after NotificationDelay.
func (s *Store) ShowNotification(text string) {
	s.mu.Lock()
	s.showNotificationLocked(text)
	s.mu.Unlock()
}

// Notification returns the currently visible notification text, if any.
func (s *Store) Notification() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Notification
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

func (s *Store) showNotificationLocked(text string) {
	s.snap.Notification = text
	s.sched.AfterFunc(NotificationDelay, s.clearNotification)
}

// clearNotification wipes the notification whatever it currently says. The
// best-effort persist keeps the stored snapshot in step with the visible
// state.
func (s *Store) clearNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Notification = ""
	if err := s.persistLocked(context.Background()); err != nil {
		s.logger.Warn("persist after notification clear failed",
			slog.String("cart_id", s.cartID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Store) persistLocked(ctx context.Context) error {
	snap := s.snap.Clone()
	return s.repo.Save(ctx, s.cartID, &snap)
}

func notificationText(title string) string {
	if len(title) > notificationTitleLen {
		title = title[:notificationTitleLen]
	}
	return "Berhasil menambah " + title + "..."
}
