package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/uconn-hacklab/inventory-tracking/pkg/errhttp"
	"github.com/uconn-hacklab/inventory-tracking/pkg/httpx"
	appsvcs "github.com/uconn-hacklab/inventory-tracking/services/inventory/application/services"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain"
)

// HistoryResponse lists an item's transactions in append order.
type HistoryResponse struct {
	ItemUUID     uuid.UUID             `json:"item_uuid"`
	Transactions []TransactionResponse `json:"transactions"`
} // @name HistoryResponse

type GetHistoryHandler struct {
	svc  *appsvcs.Services
	errw *errhttp.Writer
}

func NewGetHistoryHandler(svc *appsvcs.Services, errw *errhttp.Writer) *GetHistoryHandler {
	return &GetHistoryHandler{svc: svc, errw: errw}
}

// Execute returns the item's full transaction history.
//
//	@Summary	List transactions
//	@Tags		transactions
//	@Produce	json
//	@Param		itemID	path		string	true	"Item uuid"
//	@Success	200		{object}	HistoryResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/items/{itemID}/transactions [get]
func (h *GetHistoryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemIDParam(r, domain.ErrItemNotFound)
	if err != nil {
		h.errw.WriteError(w, r, err)
		return
	}

	history, err := h.svc.Ledger.History(r.Context(), id)
	if err != nil {
		h.errw.WriteError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, HistoryResponse{
		ItemUUID:     id,
		Transactions: toTransactionResponses(history),
	})
}
