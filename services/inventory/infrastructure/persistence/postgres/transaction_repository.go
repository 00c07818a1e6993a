package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/uconn-hacklab/inventory-tracking/pkg/database"
	"github.com/uconn-hacklab/inventory-tracking/pkg/events"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain"
	domainevents "github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/events"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/models"
)

const (
	lockItemSQL = `SELECT uuid FROM item WHERE uuid = $1 FOR UPDATE`

	insertTransactionSQL = `
INSERT INTO "transaction" (item_uuid, method, quantity, comments)
VALUES ($1, $2, $3, $4)
RETURNING sequence, recorded_at`

	historySQL = `
SELECT sequence, method, quantity, comments, recorded_at
FROM "transaction"
WHERE item_uuid = $1
ORDER BY sequence`
)

// TransactionRepository implements repositories.TransactionRepository against
// PostgreSQL.
type TransactionRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewTransactionRepository returns a TransactionRepository. bus may be nil.
func NewTransactionRepository(db *database.Database, bus *events.EventBus) *TransactionRepository {
	return &TransactionRepository{db: db, bus: bus}
}

// Append locks the item row for the duration of the transaction, so appends
// for one item commit one at a time in sequence order.
func (r *TransactionRepository) Append(ctx context.Context, t *models.Transaction) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var locked string
		err := tx.QueryRowContext(ctx, lockItemSQL, t.ItemID.String()).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUnknownItem
		}
		if err != nil {
			return fmt.Errorf("lock item: %w", err)
		}

		var (
			seq        int64
			recordedAt time.Time
		)
		err = tx.QueryRowContext(ctx, insertTransactionSQL,
			t.ItemID.String(), t.Method.String(), t.Quantity, t.Comments,
		).Scan(&seq, &recordedAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrUnknownItem
			}
			return fmt.Errorf("insert transaction: %w", err)
		}
		t.Sequence = seq
		t.RecordedAt = recordedAt.UTC()

		if r.bus == nil {
			return nil
		}
		return r.publishRecorded(ctx, tx, t)
	})
	if err != nil {
		return unavailable("append transaction", err)
	}
	return nil
}

// History runs a fresh query each time the returned sequence is ranged over.
func (r *TransactionRepository) History(ctx context.Context, itemID uuid.UUID) iter.Seq2[models.Transaction, error] {
	return func(yield func(models.Transaction, error) bool) {
		rows, err := r.db.DB().QueryContext(ctx, historySQL, itemID.String())
		if err != nil {
			yield(models.Transaction{}, unavailable("query history", err))
			return
		}
		defer rows.Close() //nolint:errcheck

		for rows.Next() {
			t := models.Transaction{ItemID: itemID}
			var method string
			if err := rows.Scan(&t.Sequence, &method, &t.Quantity, &t.Comments, &t.RecordedAt); err != nil {
				yield(models.Transaction{}, unavailable("scan history", err))
				return
			}
			t.Method = models.Method(method)
			t.RecordedAt = t.RecordedAt.UTC()
			if !yield(t, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.Transaction{}, unavailable("iterate history", err))
		}
	}
}

func (r *TransactionRepository) publishRecorded(ctx context.Context, tx *sql.Tx, t *models.Transaction) error {
	event := domainevents.TransactionRecordedEvent{
		EventID:    uuid.New(),
		Version:    domainevents.Version,
		Sequence:   t.Sequence,
		ItemID:     t.ItemID,
		Method:     t.Method.String(),
		Quantity:   t.Quantity,
		OccurredAt: t.RecordedAt,
	}
	msg, err := events.NewMessage(ctx, event.EventID.String(), event.Version, event)
	if err != nil {
		return err
	}
	if err := r.bus.PublishTx(tx, domainevents.TopicTransactionRecorded, msg); err != nil {
		return fmt.Errorf("publish transaction recorded: %w", err)
	}
	return nil
}
