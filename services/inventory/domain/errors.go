package domain

import "errors"

// Sentinel errors for the inventory ledger. Use errors.Is() to check these;
// storage failures wrap ErrStorageUnavailable around the driver error.
var (
	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrUnknownItem indicates a transaction references an item that does not exist.
	ErrUnknownItem = errors.New("unknown item")

	// ErrInvalidQuantity indicates a negative transaction quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidMethod indicates a transaction method outside ADD, LOST, BORROW, RETURN.
	ErrInvalidMethod = errors.New("invalid transaction method")

	// ErrDuplicateIdentifier indicates an item uuid collided with an existing one.
	ErrDuplicateIdentifier = errors.New("duplicate item identifier")

	// ErrInvalidItemName indicates the item name violates domain constraints.
	ErrInvalidItemName = errors.New("invalid item name")

	// ErrInvalidDescription indicates the item description violates domain constraints.
	ErrInvalidDescription = errors.New("invalid item description")

	// ErrInvalidComments indicates transaction comments violate domain constraints.
	ErrInvalidComments = errors.New("invalid transaction comments")

	// ErrStorageUnavailable indicates the store was unreachable or the
	// transaction aborted. Callers may retry.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
