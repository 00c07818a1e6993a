package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/models"
)

// ItemResponse is the JSON view of an Item.
type ItemResponse struct {
	UUID        uuid.UUID `json:"uuid"        example:"123e4567-e89b-12d3-a456-426614174000"`
	Name        string    `json:"name"        example:"Resistor 10k"`
	Description string    `json:"description" example:"1/4W carbon film"`
	CreatedAt   time.Time `json:"created_at"  example:"2025-01-15T10:30:00Z"`
} // @name ItemResponse

// TransactionResponse is the JSON view of a Transaction.
type TransactionResponse struct {
	Sequence   int64     `json:"sequence"    example:"42"`
	ItemUUID   uuid.UUID `json:"item_uuid"   example:"123e4567-e89b-12d3-a456-426614174000"`
	Method     string    `json:"method"      example:"BORROW"`
	Quantity   int64     `json:"quantity"    example:"30"`
	Comments   string    `json:"comments"    example:"robotics team"`
	RecordedAt time.Time `json:"recorded_at" example:"2025-01-15T10:30:00Z"`
} // @name TransactionResponse

// SummaryResponse breaks the on-hand quantity down by method.
type SummaryResponse struct {
	Added       int64 `json:"added"       example:"100"`
	Lost        int64 `json:"lost"        example:"5"`
	Borrowed    int64 `json:"borrowed"    example:"30"`
	Returned    int64 `json:"returned"    example:"0"`
	OnHand      int64 `json:"on_hand"     example:"65"`
	Outstanding int64 `json:"outstanding" example:"30"`
} // @name SummaryResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"item not found"`
	Code  string `json:"code,omitempty" example:"item_not_found"`
} // @name ErrorResponse

func toItemResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		UUID:        item.ID,
		Name:        item.Name.String(),
		Description: item.Description,
		CreatedAt:   item.CreatedAt,
	}
}

func toTransactionResponse(t models.Transaction) TransactionResponse {
	return TransactionResponse{
		Sequence:   t.Sequence,
		ItemUUID:   t.ItemID,
		Method:     t.Method.String(),
		Quantity:   t.Quantity,
		Comments:   t.Comments,
		RecordedAt: t.RecordedAt,
	}
}

func toTransactionResponses(history []models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(history))
	for i, t := range history {
		out[i] = toTransactionResponse(t)
	}
	return out
}

func toSummaryResponse(s models.QuantitySummary) SummaryResponse {
	return SummaryResponse{
		Added:       s.Added,
		Lost:        s.Lost,
		Borrowed:    s.Borrowed,
		Returned:    s.Returned,
		OnHand:      s.OnHand,
		Outstanding: s.Outstanding(),
	}
}

// itemIDParam parses the {itemID} path segment. A malformed value can never
// name a registered item, so the caller's not-found sentinel is returned.
func itemIDParam(r *http.Request, notFound error) (uuid.UUID, error) {
	raw := chi.URLParam(r, "itemID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", notFound, raw)
	}
	return id, nil
}
