package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/models"
)

// ValidateTransaction rejects a transaction before it reaches storage. The
// returned error wraps ErrInvalidQuantity, ErrInvalidMethod, ErrInvalidComments
// or ErrUnknownItem so callers can tell the failures apart.
func ValidateTransaction(t *models.Transaction) error {
	if t == nil {
		return fmt.Errorf("transaction cannot be nil")
	}
	if t.ItemID == uuid.Nil {
		return fmt.Errorf("%w: item uuid must be set", domain.ErrUnknownItem)
	}
	if !t.Method.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidMethod, t.Method)
	}
	if t.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be non-negative, got %d", domain.ErrInvalidQuantity, t.Quantity)
	}
	if err := ValidateFreeText("comments", t.Comments); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidComments, err)
	}
	return nil
}
