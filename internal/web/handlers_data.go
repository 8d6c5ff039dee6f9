package web

import (
	"bytes"
	"net/http"

	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/JonMunkholm/gaslog/internal/export"
	"github.com/go-chi/chi/v5"
)

// handleListEntries returns the filtered entries, oldest first.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	filter, period, err := parseEntryFilter(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	store, _, ok := s.userStore(w, r)
	if !ok {
		return
	}
	entries, err := store.ListAll(r.Context())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	entries = selectEntries(entries, filter, period, s.now())
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleListVehicles returns the user's vehicles.
func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	store, _, ok := s.userStore(w, r)
	if !ok {
		return
	}
	vehicles, err := store.ListVehicles(r.Context())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if vehicles == nil {
		vehicles = []core.Vehicle{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles})
}

// handleAnalytics returns summaries of the filtered entries, the current
// month and the current year, plus the per-fill-up efficiency series.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	filter, period, err := parseEntryFilter(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	store, _, ok := s.userStore(w, r)
	if !ok {
		return
	}
	entries, err := store.ListAll(r.Context())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	vehicles, err := store.ListVehicles(r.Context())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	now := s.now()
	selected := selectEntries(entries, filter, period, now)
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":    core.Summarize(selected, vehicles),
		"month":      core.Summarize(core.CurrentMonth(entries, now), vehicles),
		"year":       core.Summarize(core.CurrentYear(entries, now), vehicles),
		"efficiency": core.EfficiencyPoints(selected, vehicles),
	})
}

// handleExport downloads the filtered entries as CSV, XLSX or PDF. The file
// is rendered in memory first so a failure still gets a proper error.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.respondError(w, r, &core.InputError{Field: "format", Msg: err.Error()}, http.StatusBadRequest)
		return
	}
	filter, period, err := parseEntryFilter(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	store, sess, ok := s.userStore(w, r)
	if !ok {
		return
	}
	entries, err := store.ListAll(r.Context())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	vehicles, err := store.ListVehicles(r.Context())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	now := s.now()
	var buf bytes.Buffer
	err = export.Write(&buf, format, export.Report{
		Title:       "Gas Log - " + sess.Email,
		GeneratedAt: now,
		Entries:     selectEntries(entries, filter, period, now),
		Vehicles:    vehicles,
	})
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.FileName(now)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
