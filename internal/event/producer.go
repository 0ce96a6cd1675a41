package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zaastore/storefront/internal/domain"
	pkgkafka "github.com/zaastore/storefront/pkg/kafka"
)

// Kafka topics for storefront lifecycle events.
var (
	TopicCartUpdated       = pkgkafka.Topic("cart", "updated")
	TopicCartCleared       = pkgkafka.Topic("cart", "cleared")
	TopicCheckoutCompleted = pkgkafka.Topic("checkout", "completed")
)

const (
	aggregateTypeCart = "cart"
	source            = "storefront"
)

// Publisher is the kafka producer surface the event producer needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	CartID        string `json:"cart_id"`
	EntryCount    int    `json:"entry_count"`
	TotalPriceIDR int64  `json:"total_price_idr"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	CartID string `json:"cart_id"`
}

// CheckoutCompletedData is the payload for a checkout.completed event.
type CheckoutCompletedData struct {
	CartID  string `json:"cart_id"`
	OrderID string `json:"order_id"`
}

// Producer publishes storefront lifecycle events. Publishing is
// fire-and-forget for callers: they log failures and move on, the shopping
// flow never blocks on the broker.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates an event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event after an add or removal.
func (p *Producer) PublishCartUpdated(ctx context.Context, cartID string, snap domain.CartSnapshot, totalIDR int64) error {
	data := CartUpdatedData{
		CartID:        cartID,
		EntryCount:    len(snap.Entries),
		TotalPriceIDR: totalIDR,
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cartID, aggregateTypeCart, source, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("cart_id", cartID),
		slog.Int("entry_count", data.EntryCount),
	)

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, cartID string) error {
	event, err := pkgkafka.NewEvent(TopicCartCleared, cartID, aggregateTypeCart, source, CartClearedData{CartID: cartID})
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("cart_id", cartID),
	)

	return nil
}

// PublishCheckoutCompleted publishes a checkout.completed event once the
// payment widget reports success.
func (p *Producer) PublishCheckoutCompleted(ctx context.Context, cartID, orderID string) error {
	data := CheckoutCompletedData{
		CartID:  cartID,
		OrderID: orderID,
	}

	event, err := pkgkafka.NewEvent(TopicCheckoutCompleted, cartID, aggregateTypeCart, source, data)
	if err != nil {
		return fmt.Errorf("create checkout.completed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCheckoutCompleted, event); err != nil {
		return fmt.Errorf("publish checkout.completed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published checkout.completed event",
		slog.String("cart_id", cartID),
		slog.String("order_id", orderID),
	)

	return nil
}
