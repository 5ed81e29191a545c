package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/porticus-lab/go-html-convert/internal/convert"
	"github.com/porticus-lab/go-html-convert/internal/httputil"
)

// ConvertResponse is the body of a successful conversion.
type ConvertResponse struct {
	Message     string `json:"message"`
	DownloadURL string `json:"downloadUrl"`
}

// ConvertHandler handles conversion requests
type ConvertHandler struct {
	service      *convert.Service
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewConvertHandler creates a handler reading bodies of at most
// maxBodyBytes (httputil.DefaultMaxBodyBytes when <= 0).
func NewConvertHandler(service *convert.Service, maxBodyBytes int64, logger *slog.Logger) *ConvertHandler {
	return &ConvertHandler{
		service:      service,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// Convert renders the posted HTML and returns a download link
// POST /convert-html
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req convert.Request
	if err := httputil.ParseJSON(w, r, &req, h.maxBodyBytes); err != nil {
		h.logger.Debug("rejected request body", "error", err)
		handleError(w, err)
		return
	}

	// A started conversion is not abandoned when the client goes away;
	// the renderer timeout still bounds it.
	ctx := context.WithoutCancel(r.Context())

	res, err := h.service.Convert(ctx, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ConvertResponse{
		Message:     res.Message,
		DownloadURL: res.File.URL,
	})
}
