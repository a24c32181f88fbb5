package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/gestion/httpx"
	"github.com/diewo77/gestion/internal/services"
)

type ReportHandler struct {
	reports *services.ReportingService
}

func NewReportHandler(reports *services.ReportingService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func pathYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < 1 || year > 9999 {
		fail(w, r, http.StatusBadRequest, "invalid_year")
		return 0, false
	}
	return year, true
}

// Monthly handles GET /api/reports/{year}/monthly.
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	year, ok := pathYear(w, r)
	if !ok {
		return
	}
	buckets, err := h.reports.MonthlySummary(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, buckets)
}

// Yearly handles GET /api/reports/{year}/yearly.
func (h *ReportHandler) Yearly(w http.ResponseWriter, r *http.Request) {
	year, ok := pathYear(w, r)
	if !ok {
		return
	}
	summary, err := h.reports.YearlySummary(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
