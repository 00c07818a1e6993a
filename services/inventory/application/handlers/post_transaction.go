package handlers

import (
	"fmt"
	"net/http"

	"github.com/uconn-hacklab/inventory-tracking/pkg/errhttp"
	"github.com/uconn-hacklab/inventory-tracking/pkg/httpx"
	pkgvalidator "github.com/uconn-hacklab/inventory-tracking/pkg/validator"
	appsvcs "github.com/uconn-hacklab/inventory-tracking/services/inventory/application/services"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/models"
)

// RecordTransactionRequest is the request body for POST /items/{itemID}/transactions.
// Quantity is a pointer so an omitted field is told apart from zero.
type RecordTransactionRequest struct {
	Method   string `json:"method"   validate:"required" example:"BORROW"`
	Quantity *int64 `json:"quantity" validate:"required" example:"30"`
	Comments string `json:"comments" validate:"max=4096" example:"robotics team"`
} // @name RecordTransactionRequest

// PostTransactionHandler handles POST /items/{itemID}/transactions.
type PostTransactionHandler struct {
	svc  *appsvcs.Services
	errw *errhttp.Writer
}

// NewPostTransactionHandler returns a PostTransactionHandler backed by the given services.
func NewPostTransactionHandler(svc *appsvcs.Services, errw *errhttp.Writer) *PostTransactionHandler {
	return &PostTransactionHandler{svc: svc, errw: errw}
}

// Execute appends one transaction to the item's history.
//
//	@Summary		Record transaction
//	@Description	Appends an ADD, LOST, BORROW or RETURN transaction. Quantity must be non-negative.
//	@Tags			transactions
//	@Accept			json
//	@Produce		json
//	@Param			itemID	path		string						true	"Item uuid"
//	@Param			request	body		RecordTransactionRequest	true	"Transaction"
//	@Success		201		{object}	TransactionResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/items/{itemID}/transactions [post]
func (h *PostTransactionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemIDParam(r, domain.ErrUnknownItem)
	if err != nil {
		h.errw.WriteError(w, r, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[RecordTransactionRequest](w, r)
	if !ok {
		return
	}

	method, err := models.ParseMethod(req.Method)
	if err != nil {
		h.errw.WriteError(w, r, fmt.Errorf("%w: %w", domain.ErrInvalidMethod, err))
		return
	}

	txn, err := h.svc.Ledger.RecordTransaction(r.Context(), id, method, *req.Quantity, req.Comments)
	if err != nil {
		h.errw.WriteError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toTransactionResponse(*txn))
}
