// Package services contains stateless domain services for the inventory ledger.
// They operate purely on domain types and have no dependencies beyond the
// standard library and the domain layer.
package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/models"
)

// ValidateName enforces content rules for ItemName beyond the length checks of
// the ItemName constructor:
//   - no leading or trailing whitespace
//   - not only whitespace
//   - no control characters
//   - no consecutive spaces
func ValidateName(name models.ItemName) error {
	s := name.String()

	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("item name must not be only whitespace")
	}

	if s != strings.TrimSpace(s) {
		return fmt.Errorf("item name must not have leading or trailing whitespace")
	}

	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("item name must not contain control characters")
		}
	}

	if strings.Contains(s, "  ") {
		return fmt.Errorf("item name must not contain consecutive spaces")
	}

	return nil
}

// ValidateFreeText checks descriptions and comments: valid UTF-8, no NUL
// bytes, at most models.MaxDescriptionLength bytes. Empty is allowed.
func ValidateFreeText(field, s string) error {
	if len(s) > models.MaxDescriptionLength {
		return fmt.Errorf("%s must not exceed %d bytes", field, models.MaxDescriptionLength)
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%s must be valid UTF-8", field)
	}
	if strings.ContainsRune(s, 0) {
		return fmt.Errorf("%s must not contain NUL bytes", field)
	}
	return nil
}

// ValidateItemForRegistration performs the checks an Item must pass before it
// is persisted.
func ValidateItemForRegistration(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}

	if item.ID == uuid.Nil {
		return fmt.Errorf("id must be set")
	}

	if err := ValidateName(item.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	return ValidateFreeText("description", item.Description)
}
