package checkout

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/zaastore/storefront/internal/cart"
	"github.com/zaastore/storefront/internal/currency"
	"github.com/zaastore/storefront/internal/domain"
	apperrors "github.com/zaastore/storefront/pkg/errors"
	"github.com/zaastore/storefront/pkg/validator"
)

// orderIDPrefix is the storefront's order namespace at the gateway.
const orderIDPrefix = "ZAASTORE-"

// itemNameLen bounds the line item name the gateway accepts.
const itemNameLen = 50

// CustomerForm is the customer-details form submitted with a checkout. All
// fields are required; validation fails fast before any network call.
type CustomerForm struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// Result is what a successful checkout hands back to the caller: the snap
// token for the payment widget plus the identifiers of this attempt.
type Result struct {
	Token          string `json:"token"`
	OrderID        string `json:"order_id"`
	IdempotencyKey string `json:"idempotency_key"`
	Replayed       bool   `json:"-"`
}

// TokenCreator is the gateway surface the assembler calls.
type TokenCreator interface {
	CreateTransaction(ctx context.Context, order *domain.Order) (string, error)
}

// Assembler turns the live cart into a gateway-ready order and drives the
// single checkout attempt. On any failure the cart is left untouched so the
// user can correct and resubmit.
type Assembler struct {
	gateway TokenCreator
	guard   *IdempotencyGuard
	logger  *slog.Logger
	now     func() time.Time
}

// NewAssembler creates a checkout assembler. The guard may be nil, in which
// case duplicate submissions are not deduplicated.
func NewAssembler(gateway TokenCreator, guard *IdempotencyGuard, logger *slog.Logger) *Assembler {
	return &Assembler{
		gateway: gateway,
		guard:   guard,
		logger:  logger,
		now:     time.Now,
	}
}

// BuildOrder assembles the gateway order from a cart snapshot and a
// validated form. Each entry becomes one line item: string product id, unit
// price rounded to whole IDR, quantity fixed at 1, title truncated to 50
// characters. The gross amount is the sum of the already-rounded item
// prices, so the gateway's sum-of-items invariant holds by construction.
func (a *Assembler) BuildOrder(snap domain.CartSnapshot, form CustomerForm) *domain.Order {
	items := make([]domain.OrderItem, len(snap.Entries))
	var gross int64
	for i, entry := range snap.Entries {
		price := currency.ToIDR(entry.Price)
		items[i] = domain.OrderItem{
			ID:       strconv.Itoa(entry.ID),
			Price:    price,
			Quantity: 1,
			Name:     truncate(entry.Title, itemNameLen),
		}
		gross += price
	}

	address := domain.Address{Address: form.Address}
	return &domain.Order{
		OrderID:     orderIDPrefix + strconv.FormatInt(a.now().UnixMilli(), 10),
		GrossAmount: gross,
		Items:       items,
		CustomerDetails: domain.CustomerDetails{
			FirstName:       form.Name,
			Email:           form.Email,
			Phone:           form.Phone,
			BillingAddress:  address,
			ShippingAddress: address,
		},
	}
}

// Checkout validates the form, assembles the order from the store's current
// snapshot, and creates a payment session. idempotencyKey may be empty; one
// is generated per attempt then. A repeated key replays the original token
// instead of opening a second gateway order.
func (a *Assembler) Checkout(ctx context.Context, store *cart.Store, form CustomerForm, idempotencyKey string) (*Result, error) {
	if err := validator.Validate(form); err != nil {
		return nil, err
	}

	snap := store.Snapshot()
	if len(snap.Entries) == 0 {
		return nil, apperrors.InvalidInput("Keranjang masih kosong!")
	}

	order := a.BuildOrder(snap, form)

	if idempotencyKey == "" {
		idempotencyKey = uuid.New().String()
	}

	create := func() (string, error) {
		return a.gateway.CreateTransaction(ctx, order)
	}

	var token string
	var replayed bool
	var err error
	if a.guard != nil {
		token, replayed, err = a.guard.Execute(ctx, idempotencyKey, create)
	} else {
		token, err = create()
	}
	if err != nil {
		return nil, err
	}

	if replayed {
		a.logger.InfoContext(ctx, "checkout replayed from idempotency guard",
			slog.String("cart_id", store.CartID()),
			slog.String("idempotency_key", idempotencyKey),
		)
	} else {
		a.logger.InfoContext(ctx, "checkout session created",
			slog.String("cart_id", store.CartID()),
			slog.String("order_id", order.OrderID),
			slog.Int64("gross_amount", order.GrossAmount),
		)
	}

	return &Result{
		Token:          token,
		OrderID:        order.OrderID,
		IdempotencyKey: idempotencyKey,
		Replayed:       replayed,
	}, nil
}

// Complete clears the cart after the payment widget reports success.
func (a *Assembler) Complete(ctx context.Context, store *cart.Store, orderID string) error {
	if err := store.Clear(ctx); err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "checkout completed",
		slog.String("cart_id", store.CartID()),
		slog.String("order_id", orderID),
	)

	return nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
