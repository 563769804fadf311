package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "hpicpulse/internal/errors"
	"hpicpulse/internal/services"
)

// InfoHandler serves the organization profile used by the About panel.
type InfoHandler struct {
	service      *services.InfoService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewInfoHandler creates a new info handler
func NewInfoHandler(service *services.InfoService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *InfoHandler {
	return &InfoHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "info_handler")),
		errorHandler: errorHandler,
	}
}

// GetInfo handles GET /api/info. The profile is static copy plus live
// dataset provenance, so failures here are always loader failures.
func (h *InfoHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching organization info",
		slog.String("request_id", reqID),
	)

	info, err := h.service.OrganizationInfo(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get organization info",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   info,
	})
}
