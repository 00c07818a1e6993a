package models

import (
	"fmt"
	"unicode/utf8"
)

// ItemName is a value object holding a short display label for an item.
type ItemName string

const (
	minItemNameLength = 1
	maxItemNameLength = 100
)

// NewItemName constructs a valid ItemName or returns an error if the length
// constraints are violated. Length is counted in characters (runes), matching
// the char_length CHECK on item.name. Content rules live in
// domain/services.ValidateName.
func NewItemName(s string) (ItemName, error) {
	n := utf8.RuneCountInString(s)
	if n < minItemNameLength {
		return "", fmt.Errorf("item name must be at least %d character", minItemNameLength)
	}
	if n > maxItemNameLength {
		return "", fmt.Errorf("item name must not exceed %d characters", maxItemNameLength)
	}
	return ItemName(s), nil
}

func (n ItemName) String() string {
	return string(n)
}
