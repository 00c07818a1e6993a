package services

import (
	"iter"

	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/models"
)

// Resolve folds an ordered transaction history into the item's available
// quantity. ADD and RETURN add, LOST and BORROW subtract. An empty history
// resolves to zero and a negative result is returned as-is.
func Resolve(history iter.Seq[models.Transaction]) int64 {
	var qty int64
	for t := range history {
		qty += t.Delta()
	}
	return qty
}

// Summarize is Resolve with a per-method breakdown. Its OnHand always equals
// Resolve over the same history.
func Summarize(history iter.Seq[models.Transaction]) models.QuantitySummary {
	var s models.QuantitySummary
	for t := range history {
		s = s.Apply(t)
	}
	return s
}
