package handler

import (
	"errors"
	"net/http"

	htmlconv "github.com/porticus-lab/go-html-convert"
	"github.com/porticus-lab/go-html-convert/internal/convert"
	"github.com/porticus-lab/go-html-convert/internal/httputil"
)

// Client-facing messages. Internal error details stay in the logs.
const (
	msgMissingFields     = "base64Html and format are required."
	msgInvalidBase64     = "Invalid base64 encoding."
	msgNotHTML           = "Only HTML files are accepted."
	msgUnsupportedFormat = "Unsupported format"
	msgInvalidJSON       = "Invalid JSON body."
	msgBodyTooLarge      = "Request body too large."
	msgProcessing        = "Error processing HTML content"
)

// handleError converts conversion errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, httputil.ErrBodyTooLarge):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
	case errors.Is(err, httputil.ErrInvalidJSON):
		httputil.RespondError(w, http.StatusBadRequest, msgInvalidJSON)
	case errors.Is(err, convert.ErrMissingFields):
		httputil.RespondError(w, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, htmlconv.ErrDecode):
		httputil.RespondError(w, http.StatusBadRequest, msgInvalidBase64)
	case errors.Is(err, htmlconv.ErrNotHTML):
		httputil.RespondError(w, http.StatusBadRequest, msgNotHTML)
	case errors.Is(err, htmlconv.ErrUnsupportedFormat):
		httputil.RespondError(w, http.StatusBadRequest, msgUnsupportedFormat)
	case errors.Is(err, htmlconv.ErrInvalidInput):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, msgProcessing)
	}
}
