package handlers

import (
	"net/http"

	"github.com/uconn-hacklab/inventory-tracking/pkg/errhttp"
	"github.com/uconn-hacklab/inventory-tracking/pkg/httpx"
	appsvcs "github.com/uconn-hacklab/inventory-tracking/services/inventory/application/services"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain"
)

// GetItemHandler handles GET /items/{itemID}.
type GetItemHandler struct {
	svc  *appsvcs.Services
	errw *errhttp.Writer
}

func NewGetItemHandler(svc *appsvcs.Services, errw *errhttp.Writer) *GetItemHandler {
	return &GetItemHandler{svc: svc, errw: errw}
}

// Execute returns item metadata.
//
//	@Summary	Get item
//	@Tags		items
//	@Produce	json
//	@Param		itemID	path		string	true	"Item uuid"
//	@Success	200		{object}	ItemResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/items/{itemID} [get]
func (h *GetItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemIDParam(r, domain.ErrItemNotFound)
	if err != nil {
		h.errw.WriteError(w, r, err)
		return
	}

	item, err := h.svc.Ledger.GetItem(r.Context(), id)
	if err != nil {
		h.errw.WriteError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}
