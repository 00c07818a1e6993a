package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/uconn-hacklab/inventory-tracking/pkg/errhttp"
	"github.com/uconn-hacklab/inventory-tracking/pkg/httpx"
	appsvcs "github.com/uconn-hacklab/inventory-tracking/services/inventory/application/services"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain"
)

// QuantityResponse carries the derived quantity. It may be negative when
// more units were removed than were ever added.
type QuantityResponse struct {
	ItemUUID uuid.UUID       `json:"item_uuid"`
	Quantity int64           `json:"quantity" example:"65"`
	Summary  SummaryResponse `json:"summary"`
} // @name QuantityResponse

type GetQuantityHandler struct {
	svc  *appsvcs.Services
	errw *errhttp.Writer
}

func NewGetQuantityHandler(svc *appsvcs.Services, errw *errhttp.Writer) *GetQuantityHandler {
	return &GetQuantityHandler{svc: svc, errw: errw}
}

// Execute folds the item's history into its current quantity.
//
//	@Summary	Current quantity
//	@Tags		items
//	@Produce	json
//	@Param		itemID	path		string	true	"Item uuid"
//	@Success	200		{object}	QuantityResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/items/{itemID}/quantity [get]
func (h *GetQuantityHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemIDParam(r, domain.ErrItemNotFound)
	if err != nil {
		h.errw.WriteError(w, r, err)
		return
	}

	summary, err := h.svc.Ledger.QuantitySummary(r.Context(), id)
	if err != nil {
		h.errw.WriteError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, QuantityResponse{
		ItemUUID: id,
		Quantity: summary.OnHand,
		Summary:  toSummaryResponse(summary),
	})
}
