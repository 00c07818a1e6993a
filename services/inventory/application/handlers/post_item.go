package handlers

import (
	"net/http"

	"github.com/uconn-hacklab/inventory-tracking/pkg/errhttp"
	"github.com/uconn-hacklab/inventory-tracking/pkg/httpx"
	pkgvalidator "github.com/uconn-hacklab/inventory-tracking/pkg/validator"
	appsvcs "github.com/uconn-hacklab/inventory-tracking/services/inventory/application/services"
)

// CreateItemRequest is the request body for POST /items.
type CreateItemRequest struct {
	Name        string `json:"name"        validate:"required,max=100" example:"Resistor 10k"`
	Description string `json:"description" validate:"max=4096"         example:"1/4W carbon film"`
} // @name CreateItemRequest

// PostItemHandler handles POST /items requests.
type PostItemHandler struct {
	svc  *appsvcs.Services
	errw *errhttp.Writer
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services, errw *errhttp.Writer) *PostItemHandler {
	return &PostItemHandler{svc: svc, errw: errw}
}

// Execute registers a new item. Its quantity starts at zero.
//
//	@Summary		Register item
//	@Description	Registers a new inventory item under a freshly generated uuid
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateItemRequest	true	"Item registration request"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Ledger.RegisterItem(r.Context(), req.Name, req.Description)
	if err != nil {
		h.errw.WriteError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toItemResponse(item))
}
