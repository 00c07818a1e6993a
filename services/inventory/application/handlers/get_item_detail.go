package handlers

import (
	"net/http"

	"github.com/uconn-hacklab/inventory-tracking/pkg/errhttp"
	"github.com/uconn-hacklab/inventory-tracking/pkg/httpx"
	appsvcs "github.com/uconn-hacklab/inventory-tracking/services/inventory/application/services"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain"
)

// ItemDetailResponse is an item with its quantity and history taken from one
// consistent read.
type ItemDetailResponse struct {
	Item     ItemResponse          `json:"item"`
	Quantity int64                 `json:"quantity" example:"65"`
	Summary  SummaryResponse       `json:"summary"`
	History  []TransactionResponse `json:"history"`
} // @name ItemDetailResponse

type GetItemDetailHandler struct {
	svc  *appsvcs.Services
	errw *errhttp.Writer
}

func NewGetItemDetailHandler(svc *appsvcs.Services, errw *errhttp.Writer) *GetItemDetailHandler {
	return &GetItemDetailHandler{svc: svc, errw: errw}
}

// Execute returns the item, its quantity and its full history.
//
//	@Summary	Item detail
//	@Tags		items
//	@Produce	json
//	@Param		itemID	path		string	true	"Item uuid"
//	@Success	200		{object}	ItemDetailResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/items/{itemID}/detail [get]
func (h *GetItemDetailHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemIDParam(r, domain.ErrItemNotFound)
	if err != nil {
		h.errw.WriteError(w, r, err)
		return
	}

	detail, err := h.svc.Ledger.ItemDetail(r.Context(), id)
	if err != nil {
		h.errw.WriteError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, ItemDetailResponse{
		Item:     toItemResponse(detail.Item),
		Quantity: detail.Quantity,
		Summary:  toSummaryResponse(detail.Summary),
		History:  toTransactionResponses(detail.History),
	})
}
