package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const defaultReportLimit = 100

// handleListReports summarizes archived reports.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		jsonError(w, "report archive not configured", http.StatusServiceUnavailable)
		return
	}

	limit := defaultReportLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	reports, err := s.archive.ListReports(r.Context(), limit)
	if err != nil {
		jsonError(w, "failed to list reports: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"reports": reports})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		jsonError(w, "report archive not configured", http.StatusServiceUnavailable)
		return
	}

	rep, err := s.archive.GetReport(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		jsonError(w, "failed to read report: "+err.Error(), http.StatusBadGateway)
		return
	}
	if rep == nil {
		jsonError(w, "report not found", http.StatusNotFound)
		return
	}
	writeReport(w, rep)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		jsonError(w, "report archive not configured", http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "reportID")
	if err := s.archive.DeleteReport(r.Context(), id); err != nil {
		jsonError(w, "failed to delete report: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"report_id": id, "deleted": true})
}
