package http

import (
	"errors"
	"log/slog"
	"net/http"

	"haulbook/internal/core"
	"haulbook/internal/storage"
)

type truckRequest struct {
	Registration string `json:"registration"`
	Model        string `json:"model"`
	CapacityTons int    `json:"capacity_tons"`
	Active       *bool  `json:"active"`
}

type truckResponse struct {
	ID           int64  `json:"id"`
	Registration string `json:"registration"`
	Model        string `json:"model"`
	CapacityTons int    `json:"capacity_tons"`
	Active       bool   `json:"active"`
}

func truckToResponse(t core.Truck) truckResponse {
	return truckResponse{
		ID:           t.ID,
		Registration: t.Registration,
		Model:        t.Model,
		CapacityTons: t.CapacityTons,
		Active:       t.Active,
	}
}

func (s *Server) handleTrucks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		trucks, err := s.repo.ListTrucks(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "List trucks failed", "error", err)
			writeError(w, http.StatusInternalServerError, "list trucks failed")
			return
		}
		out := make([]truckResponse, len(trucks))
		for i, t := range trucks {
			out[i] = truckToResponse(t)
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req truckRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		truck := core.Truck{
			Registration: sanitizeInput(req.Registration),
			Model:        sanitizeInput(req.Model),
			CapacityTons: req.CapacityTons,
			Active:       true,
		}
		if req.Active != nil {
			truck.Active = *req.Active
		}
		if err := truck.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		saved, err := s.repo.CreateTruck(r.Context(), truck)
		if err != nil {
			slog.ErrorContext(r.Context(), "Create truck failed", "error", err)
			writeError(w, http.StatusInternalServerError, "create truck failed")
			return
		}
		writeJSON(w, http.StatusCreated, truckToResponse(saved))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleTruckItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/trucks/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid truck id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		truck, err := s.repo.GetTruck(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "truck not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Get truck failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "get truck failed")
			return
		}
		writeJSON(w, http.StatusOK, truckToResponse(truck))

	case http.MethodDelete:
		err := s.repo.DeleteTruck(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "truck not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Delete truck failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "delete truck failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}

type driverRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	LicenseNo string `json:"license_no"`
	TruckID   int64  `json:"truck_id"`
}

type driverResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	LicenseNo string `json:"license_no"`
	TruckID   int64  `json:"truck_id,omitempty"`
}

func driverToResponse(d core.Driver) driverResponse {
	return driverResponse{
		ID:        d.ID,
		Name:      d.Name,
		Phone:     d.Phone,
		LicenseNo: d.LicenseNo,
		TruckID:   d.TruckID,
	}
}

func (s *Server) handleDrivers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		drivers, err := s.repo.ListDrivers(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "List drivers failed", "error", err)
			writeError(w, http.StatusInternalServerError, "list drivers failed")
			return
		}
		out := make([]driverResponse, len(drivers))
		for i, d := range drivers {
			out[i] = driverToResponse(d)
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req driverRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		driver := core.Driver{
			Name:      sanitizeInput(req.Name),
			Phone:     sanitizeInput(req.Phone),
			LicenseNo: sanitizeInput(req.LicenseNo),
			TruckID:   req.TruckID,
		}
		if err := driver.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		// Assigned truck must exist
		if driver.TruckID > 0 {
			if _, err := s.repo.GetTruck(r.Context(), driver.TruckID); errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "assigned truck not found")
				return
			} else if err != nil {
				writeError(w, http.StatusInternalServerError, "verify truck failed")
				return
			}
		}

		saved, err := s.repo.CreateDriver(r.Context(), driver)
		if err != nil {
			slog.ErrorContext(r.Context(), "Create driver failed", "error", err)
			writeError(w, http.StatusInternalServerError, "create driver failed")
			return
		}
		writeJSON(w, http.StatusCreated, driverToResponse(saved))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleDriverItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/drivers/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid driver id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		driver, err := s.repo.GetDriver(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "driver not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Get driver failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "get driver failed")
			return
		}
		writeJSON(w, http.StatusOK, driverToResponse(driver))

	case http.MethodDelete:
		err := s.repo.DeleteDriver(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "driver not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Delete driver failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "delete driver failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}

type partyRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type partyResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (s *Server) handleParties(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		parties, err := s.repo.ListParties(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "List parties failed", "error", err)
			writeError(w, http.StatusInternalServerError, "list parties failed")
			return
		}
		out := make([]partyResponse, len(parties))
		for i, p := range parties {
			out[i] = partyResponse{ID: p.ID, Name: p.Name, Phone: p.Phone}
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req partyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		party := core.Party{
			Name:  sanitizeInput(req.Name),
			Phone: sanitizeInput(req.Phone),
		}
		if err := party.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		saved, err := s.repo.CreateParty(r.Context(), party)
		if err != nil {
			slog.ErrorContext(r.Context(), "Create party failed", "error", err)
			writeError(w, http.StatusInternalServerError, "create party failed")
			return
		}
		writeJSON(w, http.StatusCreated, partyResponse{ID: saved.ID, Name: saved.Name, Phone: saved.Phone})

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handlePartyItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/parties/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid party id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		party, err := s.repo.GetParty(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "party not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Get party failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "get party failed")
			return
		}
		writeJSON(w, http.StatusOK, partyResponse{ID: party.ID, Name: party.Name, Phone: party.Phone})

	case http.MethodDelete:
		err := s.repo.DeleteParty(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "party not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Delete party failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "delete party failed")
			return
		}
		s.invalidateAnalytics(id)
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}
