package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "hpicpulse/internal/errors"
	custommw "hpicpulse/internal/middleware"
	"hpicpulse/internal/services"
	apiv1 "hpicpulse/pkg/contracts/api/v1"
)

// dateLayout is the wire format for range bounds (ISO 8601 calendar date).
const dateLayout = "2006-01-02"

// DashboardHandler serves the dashboard view-model endpoints with RFC 7807
// compliance. All three endpoints run the same pipeline; they differ only
// in how much of the view they return.
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *custommw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler with RFC 7807 error handling
func NewDashboardHandler(service DashboardServiceInterface, validator *custommw.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// GetDashboard handles GET /api/dashboard. The full view model is returned
// even for empty ranges: view_state "no_data" with a warning is a valid
// 200 response, not an error.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	filters, err := h.bindFilters(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "computing dashboard view",
		slog.String("request_id", reqID),
		slog.Time("start", filters.Start),
		slog.Time("end", filters.End),
	)

	view, err := h.service.Compute(r.Context(), filters)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dashboard pass failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// GetTimeline handles GET /api/membership/timeline. Returns the filtered
// rows together with their scalar bundle and the timeline figure.
func (h *DashboardHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	filters, err := h.bindFilters(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "fetching membership timeline",
		slog.String("request_id", reqID),
		slog.Time("start", filters.Start),
		slog.Time("end", filters.End),
	)

	view, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get membership timeline",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
		"count":  len(view.Records),
	})
}

// GetRevenueBreakdown handles GET /api/revenue/breakdown. The revenue table
// is not date-filtered; it always aggregates the full snapshot.
func (h *DashboardHandler) GetRevenueBreakdown(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching revenue breakdown",
		slog.String("request_id", reqID),
	)

	view, err := h.service.RevenueBreakdown(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get revenue breakdown",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
		"count":  len(view.Rows),
	})
}

// bindFilters decodes and validates the start/end query parameters, then
// parses them into pipeline filters. Bounds outside the data span are fine
// here; the pipeline clamps them.
func (h *DashboardHandler) bindFilters(r *http.Request) (services.DashboardFilters, error) {
	req := apiv1.DashboardRequest{
		Start: r.URL.Query().Get("start"),
		End:   r.URL.Query().Get("end"),
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return services.DashboardFilters{}, err
	}
	return parseFilters(req)
}

// parseFilters converts validated date strings into time bounds. A zero
// time means unbounded on that side; start after end is the one range
// shape the pipeline refuses to clamp.
func parseFilters(req apiv1.DashboardRequest) (services.DashboardFilters, error) {
	var filters services.DashboardFilters

	if req.Start != "" {
		start, err := time.Parse(dateLayout, req.Start)
		if err != nil {
			return filters, apierrors.ErrValidation("start", "must be a valid ISO8601 date (YYYY-MM-DD)")
		}
		filters.Start = start
	}
	if req.End != "" {
		end, err := time.Parse(dateLayout, req.End)
		if err != nil {
			return filters, apierrors.ErrValidation("end", "must be a valid ISO8601 date (YYYY-MM-DD)")
		}
		filters.End = end
	}

	if !filters.Start.IsZero() && !filters.End.IsZero() && filters.Start.After(filters.End) {
		return filters, apierrors.ErrInvalidDateRange
	}
	return filters, nil
}
