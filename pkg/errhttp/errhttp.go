// Package errhttp maps inventory domain errors to HTTP responses.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/uconn-hacklab/inventory-tracking/pkg/httpx"
	"github.com/uconn-hacklab/inventory-tracking/pkg/logger"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain"
)

type mapping struct {
	err    error
	status int
	code   string
}

// Order matters only for errors that wrap more than one sentinel.
var mappings = []mapping{
	{domain.ErrItemNotFound, http.StatusNotFound, "item_not_found"},
	{domain.ErrUnknownItem, http.StatusNotFound, "unknown_item"},
	{domain.ErrDuplicateIdentifier, http.StatusConflict, "duplicate_identifier"},
	{domain.ErrInvalidQuantity, http.StatusUnprocessableEntity, "invalid_quantity"},
	{domain.ErrInvalidMethod, http.StatusUnprocessableEntity, "invalid_method"},
	{domain.ErrInvalidItemName, http.StatusUnprocessableEntity, "invalid_item_name"},
	{domain.ErrInvalidDescription, http.StatusUnprocessableEntity, "invalid_description"},
	{domain.ErrInvalidComments, http.StatusUnprocessableEntity, "invalid_comments"},
	{domain.ErrStorageUnavailable, http.StatusServiceUnavailable, "storage_unavailable"},
}

const codeInternal = "internal"

// Writer renders errors as {"error": "...", "code": "..."} responses. In
// production the message of a 5xx response is replaced by the status text.
type Writer struct {
	log          logger.Logger
	isProduction bool
}

// New returns a Writer. 5xx errors are logged through log.
func New(log logger.Logger, isProduction bool) *Writer {
	return &Writer{log: log, isProduction: isProduction}
}

// WriteError matches err with errors.Is, so wrapped sentinels map correctly.
// Unrecognized errors become 500.
func (e *Writer) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Classify(err)
	if status >= http.StatusInternalServerError {
		e.log.ErrorContext(r.Context(), "request failed", "status", status, "code", code, "error", err)
	}
	httpx.JSONErrorCode(w, status, code, httpx.SafeError(err, status, e.isProduction))
}

// Classify returns the HTTP status and error code for err.
func Classify(err error) (int, string) {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, codeInternal
}

// StatusFor returns the HTTP status code for err.
func StatusFor(err error) int {
	status, _ := Classify(err)
	return status
}
