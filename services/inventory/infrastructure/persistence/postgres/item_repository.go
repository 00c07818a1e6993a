package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uconn-hacklab/inventory-tracking/pkg/database"
	"github.com/uconn-hacklab/inventory-tracking/pkg/events"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain"
	domainevents "github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/events"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/models"
)

const (
	insertItemSQL = `INSERT INTO item (uuid, name, description, created_at) VALUES ($1, $2, $3, $4)`
	getItemSQL    = `SELECT uuid, name, description, created_at FROM item WHERE uuid = $1`
	itemExistsSQL = `SELECT EXISTS (SELECT 1 FROM item WHERE uuid = $1)`
)

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewItemRepository returns an ItemRepository. bus may be nil, in which case
// no item.registered event is published.
func NewItemRepository(db *database.Database, bus *events.EventBus) *ItemRepository {
	return &ItemRepository{db: db, bus: bus}
}

// Save inserts item and publishes item.registered in the same transaction.
// A primary key collision returns ErrDuplicateIdentifier.
func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertItemSQL,
			item.ID.String(), item.Name.String(), item.Description, item.CreatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateIdentifier
			}
			return fmt.Errorf("insert item: %w", err)
		}

		if r.bus == nil {
			return nil
		}
		return r.publishRegistered(ctx, tx, item)
	})
	if err != nil {
		return unavailable("save item", err)
	}
	return nil
}

// GetByID returns ErrItemNotFound when no row matches.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var (
		rawID     string
		name      string
		desc      string
		createdAt time.Time
	)
	err := r.db.DB().QueryRowContext(ctx, getItemSQL, id.String()).Scan(&rawID, &name, &desc, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, unavailable("get item", err)
	}

	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return nil, unavailable("get item", fmt.Errorf("parse stored uuid %q: %w", rawID, err))
	}
	return &models.Item{
		ID:          parsed,
		Name:        models.ItemName(name),
		Description: desc,
		CreatedAt:   createdAt.UTC(),
	}, nil
}

func (r *ItemRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.DB().QueryRowContext(ctx, itemExistsSQL, id.String()).Scan(&exists); err != nil {
		return false, unavailable("check item exists", err)
	}
	return exists, nil
}

func (r *ItemRepository) publishRegistered(ctx context.Context, tx *sql.Tx, item *models.Item) error {
	event := domainevents.ItemRegisteredEvent{
		EventID:     uuid.New(),
		Version:     domainevents.Version,
		ItemID:      item.ID,
		Name:        item.Name.String(),
		Description: item.Description,
		OccurredAt:  item.CreatedAt,
	}
	msg, err := events.NewMessage(ctx, event.EventID.String(), event.Version, event)
	if err != nil {
		return err
	}
	if err := r.bus.PublishTx(tx, domainevents.TopicItemRegistered, msg); err != nil {
		return fmt.Errorf("publish item registered: %w", err)
	}
	return nil
}
