package models

// QuantitySummary breaks an item's derived quantity down by method.
type QuantitySummary struct {
	Added    int64 `json:"added"`
	Lost     int64 `json:"lost"`
	Borrowed int64 `json:"borrowed"`
	Returned int64 `json:"returned"`
	// OnHand is the available quantity: Added + Returned - Lost - Borrowed.
	// It may be negative when an item is over-committed.
	OnHand int64 `json:"on_hand"`
}

// Outstanding is the number of borrowed units not yet returned.
func (s QuantitySummary) Outstanding() int64 {
	return s.Borrowed - s.Returned
}

// Apply folds one transaction into the summary and returns the result.
func (s QuantitySummary) Apply(t Transaction) QuantitySummary {
	switch t.Method {
	case MethodAdd:
		s.Added += t.Quantity
	case MethodLost:
		s.Lost += t.Quantity
	case MethodBorrow:
		s.Borrowed += t.Quantity
	case MethodReturn:
		s.Returned += t.Quantity
	}
	s.OnHand += t.Delta()
	return s
}
