package repositories

import (
	"context"
	"iter"

	"github.com/google/uuid"

	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/models"
)

// ItemRepository is the persistence interface for the Item aggregate.
// The domain layer owns this interface; infrastructure implements it.
type ItemRepository interface {
	// Save persists a new Item. Returns ErrDuplicateIdentifier when the ID is
	// already taken.
	Save(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// TransactionRepository is the append-only store of item transactions.
type TransactionRepository interface {
	// Append assigns t its Sequence and RecordedAt and stores it. Appends for
	// the same item are serialized, so a later Sequence always means a later
	// append. Returns ErrUnknownItem when the item does not exist.
	Append(ctx context.Context, t *models.Transaction) error

	// History yields the item's transactions in ascending Sequence order. The
	// sequence is lazy and may be ranged over more than once; each range
	// observes a consistent prefix of the history. A storage failure is
	// yielded as the final element's error.
	History(ctx context.Context, itemID uuid.UUID) iter.Seq2[models.Transaction, error]
}
