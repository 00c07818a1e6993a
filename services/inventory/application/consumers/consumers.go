// Package consumers holds the worker-side handlers for inventory ledger
// events.
package consumers

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	pkgcache "github.com/uconn-hacklab/inventory-tracking/pkg/cache"
	"github.com/uconn-hacklab/inventory-tracking/pkg/events"
	"github.com/uconn-hacklab/inventory-tracking/pkg/logger"
	appsvcs "github.com/uconn-hacklab/inventory-tracking/services/inventory/application/services"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain"
	domainevents "github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/events"
)

// ErrNegativeStock is reported when an item's derived quantity drops below
// zero. It is a signal for a human, never a handler failure.
var ErrNegativeStock = errors.New("derived quantity is negative")

// QuantityReader is the slice of LedgerService the consumers need.
type QuantityReader interface {
	CurrentQuantity(ctx context.Context, itemID uuid.UUID) (int64, error)
}

// Subscriber is satisfied by *events.EventBus.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler events.Handler) (<-chan error, error)
}

// ReportFunc forwards an anomaly to crash reporting.
type ReportFunc func(err error, tags map[string]string)

// Consumers reacts to events published by the ledger.
type Consumers struct {
	cache  appsvcs.ItemCache
	ledger QuantityReader
	log    logger.Logger
	report ReportFunc
}

// New returns Consumers. itemCache and report may be nil.
func New(itemCache appsvcs.ItemCache, ledger QuantityReader, log logger.Logger, report ReportFunc) *Consumers {
	return &Consumers{cache: itemCache, ledger: ledger, log: log, report: report}
}

// Register subscribes every handler and drains the error channels until they
// close. It returns the subscribed topics.
func (c *Consumers) Register(ctx context.Context, sub Subscriber) ([]string, error) {
	handlers := []struct {
		topic   string
		handler events.Handler
	}{
		{domainevents.TopicItemRegistered, c.HandleItemRegistered},
		{domainevents.TopicTransactionRecorded, c.HandleTransactionRecorded},
	}

	topics := make([]string, 0, len(handlers))
	for _, h := range handlers {
		errCh, err := sub.Subscribe(ctx, h.topic, h.handler)
		if err != nil {
			return nil, err
		}
		go c.drain(ctx, h.topic, errCh)
		topics = append(topics, h.topic)
	}
	return topics, nil
}

func (c *Consumers) drain(ctx context.Context, topic string, errCh <-chan error) {
	for err := range errCh {
		c.log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
	}
}

// HandleItemRegistered warms the item cache. Cache failures are logged and
// swallowed; a malformed payload is returned so the bus retries and Nacks it.
func (c *Consumers) HandleItemRegistered(ctx context.Context, msg *message.Message) error {
	evt, err := events.Decode[domainevents.ItemRegisteredEvent](msg)
	if err != nil {
		return err
	}
	if c.cache == nil {
		return nil
	}

	if err := c.cache.Set(ctx, &pkgcache.CachedItem{
		ID:          evt.ItemID,
		Name:        evt.Name,
		Description: evt.Description,
		CreatedAt:   evt.OccurredAt,
	}); err != nil {
		c.log.WarnContext(ctx, "cache warm failed", "item_uuid", evt.ItemID, "error", err)
		return nil
	}
	c.log.DebugContext(ctx, "cache warmed", "item_uuid", evt.ItemID)
	return nil
}

// HandleTransactionRecorded re-derives the item's quantity and flags it when
// the history has gone negative.
func (c *Consumers) HandleTransactionRecorded(ctx context.Context, msg *message.Message) error {
	evt, err := events.Decode[domainevents.TransactionRecordedEvent](msg)
	if err != nil {
		return err
	}

	qty, err := c.ledger.CurrentQuantity(ctx, evt.ItemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			c.log.WarnContext(ctx, "transaction event for unknown item", "item_uuid", evt.ItemID)
			return nil
		}
		return fmt.Errorf("derive quantity for %s: %w", evt.ItemID, err)
	}

	if qty < 0 {
		c.log.WarnContext(ctx, "item quantity is negative",
			"item_uuid", evt.ItemID,
			"quantity", qty,
			"sequence", evt.Sequence,
			"method", evt.Method,
		)
		if c.report != nil {
			c.report(fmt.Errorf("%w: item %s at %d", ErrNegativeStock, evt.ItemID, qty), map[string]string{
				"item_uuid": evt.ItemID.String(),
				"method":    evt.Method,
			})
		}
	}
	return nil
}
