package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apierrors "hpicpulse/internal/errors"
	"hpicpulse/internal/exporter"
	"hpicpulse/internal/infrastructure"
	custommw "hpicpulse/internal/middleware"
	"hpicpulse/internal/services"
	apiv1 "hpicpulse/pkg/contracts/api/v1"
)

// ExportHandler streams snapshot downloads. CSV exports carry one dataset
// each; the XLSX workbook always carries both. Membership exports honor the
// same start/end filters as the dashboard so a download never disagrees
// with the page it was taken from.
type ExportHandler struct {
	service      DashboardServiceInterface
	validator    *custommw.ValidationMiddleware
	metrics      *infrastructure.BusinessMetrics
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler with RFC 7807 error handling
func NewExportHandler(service DashboardServiceInterface, validator *custommw.ValidationMiddleware, metrics *infrastructure.BusinessMetrics, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		validator:    validator,
		metrics:      metrics,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes with proper Chi patterns
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/csv", h.DownloadCSV)
	r.Get("/xlsx", h.DownloadXLSX)

	return r
}

// DownloadCSV handles GET /api/export/csv. The dataset parameter picks the
// sheet; it defaults to membership because that is the dataset the filters
// apply to.
func (h *ExportHandler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	req, filters, err := h.bindExport(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dataset := req.Dataset
	if dataset == "" {
		dataset = "membership"
	}

	h.logger.InfoContext(r.Context(), "exporting csv",
		slog.String("request_id", reqID),
		slog.String("dataset", dataset),
		slog.Time("start", filters.Start),
		slog.Time("end", filters.End),
	)

	// Buffer the body before touching headers so a loader failure still
	// produces a clean problem response.
	var buf bytes.Buffer
	switch dataset {
	case "membership":
		records, err := h.service.FilteredMembership(r.Context(), filters)
		if err != nil {
			h.failExport(w, r, "csv", dataset, err)
			return
		}
		if err := exporter.WriteMembershipCSV(&buf, records); err != nil {
			h.failExport(w, r, "csv", dataset, apierrors.ExportError("csv", err))
			return
		}
	case "revenue":
		categories, err := h.service.RevenueCategories(r.Context())
		if err != nil {
			h.failExport(w, r, "csv", dataset, err)
			return
		}
		if err := exporter.WriteRevenueCSV(&buf, categories); err != nil {
			h.failExport(w, r, "csv", dataset, apierrors.ExportError("csv", err))
			return
		}
	}

	h.sendAttachment(w, r, buf.Bytes(), exportFilename(dataset, "csv"), "text/csv; charset=utf-8")
	infrastructure.RecordExportDownload(r.Context(), h.metrics, "csv")
}

// DownloadXLSX handles GET /api/export/xlsx. Both sheets always ship; the
// date filters narrow the membership sheet only.
func (h *ExportHandler) DownloadXLSX(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	_, filters, err := h.bindExport(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "exporting xlsx workbook",
		slog.String("request_id", reqID),
		slog.Time("start", filters.Start),
		slog.Time("end", filters.End),
	)

	records, err := h.service.FilteredMembership(r.Context(), filters)
	if err != nil {
		h.failExport(w, r, "xlsx", "workbook", err)
		return
	}
	categories, err := h.service.RevenueCategories(r.Context())
	if err != nil {
		h.failExport(w, r, "xlsx", "workbook", err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteWorkbook(&buf, records, categories); err != nil {
		h.failExport(w, r, "xlsx", "workbook", apierrors.ExportError("xlsx", err))
		return
	}

	h.sendAttachment(w, r, buf.Bytes(), exportFilename("snapshot", "xlsx"),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	infrastructure.RecordExportDownload(r.Context(), h.metrics, "xlsx")
}

// bindExport decodes and validates export query parameters, reusing the
// dashboard filter parsing for the date bounds.
func (h *ExportHandler) bindExport(r *http.Request) (apiv1.ExportRequest, services.DashboardFilters, error) {
	req := apiv1.ExportRequest{
		DashboardRequest: apiv1.DashboardRequest{
			Start: r.URL.Query().Get("start"),
			End:   r.URL.Query().Get("end"),
		},
		Format:  r.URL.Query().Get("format"),
		Dataset: r.URL.Query().Get("dataset"),
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return req, services.DashboardFilters{}, err
	}
	filters, err := parseFilters(req.DashboardRequest)
	if err != nil {
		return req, services.DashboardFilters{}, err
	}
	return req, filters, nil
}

func (h *ExportHandler) failExport(w http.ResponseWriter, r *http.Request, format, dataset string, err error) {
	infrastructure.RecordError(r.Context(), err)
	h.logger.ErrorContext(r.Context(), "export failed",
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("format", format),
		slog.String("dataset", dataset),
	)
	h.errorHandler.HandleError(w, r, err)
}

func (h *ExportHandler) sendAttachment(w http.ResponseWriter, r *http.Request, body []byte, filename, contentType string) {
	infrastructure.AddSpanEvent(r.Context(), "attachment ready", map[string]interface{}{
		"filename": filename,
		"bytes":    len(body),
	})

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to stream export",
			slog.String("error", err.Error()),
			slog.String("filename", filename),
		)
	}
}

// exportFilename stamps downloads with the export date so repeated pulls
// sort naturally on disk.
func exportFilename(dataset, ext string) string {
	return fmt.Sprintf("hpic_%s_%s.%s", dataset, time.Now().Format(dateLayout), ext)
}
