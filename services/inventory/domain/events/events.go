package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics for inventory ledger events.
const (
	TopicItemRegistered      = "item.registered"
	TopicTransactionRecorded = "transaction.recorded"
)

// Version is the current schema version of every event in this package.
const Version = 1

// ItemRegisteredEvent is published in the same database transaction that
// persists a new Item.
type ItemRegisteredEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	Version     int       `json:"version"`
	ItemID      uuid.UUID `json:"item_uuid"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TransactionRecordedEvent is published in the same database transaction that
// appends a Transaction to an item's history. Sequence orders events for a
// single item.
type TransactionRecordedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	Sequence   int64     `json:"sequence"`
	ItemID     uuid.UUID `json:"item_uuid"`
	Method     string    `json:"method"`
	Quantity   int64     `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}
