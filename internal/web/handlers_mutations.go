package web

import (
	"net/http"

	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/JonMunkholm/gaslog/internal/logging"
	"github.com/go-chi/chi/v5"
)

// vehicleInput is the body of the vehicle create and update endpoints.
type vehicleInput struct {
	Name        string  `json:"name"`
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	Year        int     `json:"year"`
	ExpectedMPG float64 `json:"expected_mpg"`
	IsDefault   bool    `json:"is_default"`
}

func (in vehicleInput) vehicle(id string) core.Vehicle {
	return core.Vehicle{
		ID:          id,
		Name:        in.Name,
		Make:        in.Make,
		Model:       in.Model,
		Year:        in.Year,
		ExpectedMPG: in.ExpectedMPG,
		IsDefault:   in.IsDefault,
	}
}

// handleCreateEntry stores one manually entered fill-up.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var in core.EntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	store, _, ok := s.userStore(w, r)
	if !ok {
		return
	}

	entry, err := core.AddEntry(r.Context(), store, store, in, float64(s.cfg.Import.NearEmptyThreshold))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	logging.WithFields(r.Context(), "entry_id", entry.ID, "vehicle_id", entry.VehicleID).Info("entry added")
	writeJSON(w, http.StatusCreated, entry)
}

// handleCreateVehicle adds a vehicle.
func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var in vehicleInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	store, _, ok := s.userStore(w, r)
	if !ok {
		return
	}

	v, err := core.CreateVehicle(r.Context(), store, in.vehicle(""))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// handleUpdateVehicle replaces a vehicle's details.
func (s *Server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var in vehicleInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	store, _, ok := s.userStore(w, r)
	if !ok {
		return
	}

	v, err := core.UpdateVehicle(r.Context(), store, in.vehicle(chi.URLParam(r, "id")))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleSetDefaultVehicle makes one vehicle the default.
func (s *Server) handleSetDefaultVehicle(w http.ResponseWriter, r *http.Request) {
	store, _, ok := s.userStore(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := core.SetDefaultVehicle(r.Context(), store, id); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "is_default": true})
}
