package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"ptaregistry.org/internal/audit"
	"ptaregistry.org/internal/auth"
	"ptaregistry.org/internal/export"
	"ptaregistry.org/internal/obs"
	"ptaregistry.org/internal/registry"
)

// handleExport streams the filtered report as a downloadable artifact. The
// same filter parameters as /v1/views/reports apply.
func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireView(w, r, auth.ViewReports); !ok {
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = export.FormatCSV
	}
	if format != export.FormatCSV && format != export.FormatPDF {
		respondError(w, http.StatusBadRequest, "format must be csv or pdf")
		return
	}

	permits := registry.FilterReport(a.svc.Cache().Permits(), filterFromQuery(r))
	now := time.Now().UTC()

	var artifact []byte
	var contentType string
	switch format {
	case export.FormatCSV:
		data, err := export.CSV(permits)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "report generation failed")
			return
		}
		artifact, contentType = data, "text/csv; charset=utf-8"
	case export.FormatPDF:
		artifact, contentType = export.TextReport(permits, now), "text/plain; charset=utf-8"
	}

	obs.ObserveExport(format)
	audit.LogEvent(r.Context(), "registry.report.export", map[string]any{
		"format": format,
		"count":  len(permits),
	})

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(format, now)))
	w.Header().Set("X-Report-Notification", export.Notification(format, len(permits)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact)
}
