package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Method is the kind of quantity-affecting event a Transaction records.
type Method string

const (
	MethodAdd    Method = "ADD"
	MethodLost   Method = "LOST"
	MethodBorrow Method = "BORROW"
	// MethodReturn puts previously borrowed units back on hand. It is not tied
	// to a particular BORROW record.
	MethodReturn Method = "RETURN"
)

// Methods lists every valid Method in display order.
var Methods = []Method{MethodAdd, MethodLost, MethodBorrow, MethodReturn}

// ParseMethod maps s (case-insensitive, surrounding space ignored) to a Method.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown transaction method %q", s)
	}
	return m, nil
}

// Valid reports whether m is one of the closed set of methods.
func (m Method) Valid() bool {
	switch m {
	case MethodAdd, MethodLost, MethodBorrow, MethodReturn:
		return true
	}
	return false
}

// Sign is +1 for methods that increase available quantity and -1 for those
// that decrease it. Invalid methods contribute nothing.
func (m Method) Sign() int64 {
	switch m {
	case MethodAdd, MethodReturn:
		return 1
	case MethodLost, MethodBorrow:
		return -1
	}
	return 0
}

func (m Method) String() string {
	return string(m)
}

// Transaction is an immutable record of one quantity-affecting event against
// an item. Sequence and RecordedAt are assigned by storage on append.
type Transaction struct {
	Sequence   int64
	ItemID     uuid.UUID
	Method     Method
	Quantity   int64
	Comments   string
	RecordedAt time.Time
}

// Delta is the signed change this transaction applies to available quantity.
func (t Transaction) Delta() int64 {
	return t.Method.Sign() * t.Quantity
}
