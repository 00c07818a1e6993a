package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxDescriptionLength caps free-form item descriptions and transaction comments.
const MaxDescriptionLength = 4096

// Item is an inventory object with a stable identity. It carries no quantity;
// the on-hand count is always derived from the item's transaction history.
type Item struct {
	ID          uuid.UUID
	Name        ItemName
	Description string
	CreatedAt   time.Time
}

// NewItem constructs an Item with the given identifier and the current UTC time.
func NewItem(id uuid.UUID, name ItemName, description string) *Item {
	return &Item{
		ID:          id,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}
