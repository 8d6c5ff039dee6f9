package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/JonMunkholm/gaslog/internal/logging"
)

// handlePreview maps and converts an uploaded file without saving it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	_, data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	overrides, err := parseMapping(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	result, err := s.service.Preview(data, overrides)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleImport imports an uploaded file into the user's spreadsheet. A run
// aborted by an expired session still returns what was saved.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	overrides, err := parseMapping(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	vehicleID := strings.TrimSpace(r.FormValue("vehicle_id"))
	if vehicleID == "" {
		s.respondError(w, r, core.ErrNoVehicle, http.StatusBadRequest)
		return
	}

	store, sess, ok := s.userStore(w, r)
	if !ok {
		return
	}
	vehicles, err := store.ListVehicles(r.Context())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if _, found := core.FindVehicle(vehicles, vehicleID); !found {
		s.respondError(w, r, core.ErrVehicleNotFound, http.StatusNotFound)
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	logger := logging.WithFields(ctx, "file", name, "vehicle_id", vehicleID)
	logger.Info("import requested", "bytes", len(data))

	result, err := s.service.Import(ctx, store, core.ImportRequest{
		Owner:     sess.Email,
		FileName:  name,
		Data:      data,
		VehicleID: vehicleID,
		Overrides: overrides,
	})
	if err != nil && result != nil {
		msg := core.MapError(err)
		logger.Warn("import aborted", "error", err, "succeeded", result.Succeeded)
		writeJSON(w, statusFor(err), map[string]any{
			"error":   msg.Message,
			"message": msg.Message,
			"action":  msg.Action,
			"code":    msg.Code,
			"result":  result,
		})
		return
	}
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
