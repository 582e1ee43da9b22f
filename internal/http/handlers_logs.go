package http

import (
	"errors"
	"log/slog"
	"net/http"

	"haulbook/internal/core"
	"haulbook/internal/storage"
)

type fuelLogRequest struct {
	TruckID    int64  `json:"truck_id"`
	DriverID   int64  `json:"driver_id"`
	Date       string `json:"date"`
	Liters     string `json:"liters"`
	Cost       string `json:"cost"`
	OdometerKm int64  `json:"odometer_km"`
	Station    string `json:"station"`
}

type fuelLogResponse struct {
	ID            int64  `json:"id"`
	TruckID       int64  `json:"truck_id"`
	DriverID      int64  `json:"driver_id,omitempty"`
	Date          string `json:"date"`
	LitersMilli   int64  `json:"liters_milli"`
	Liters        string `json:"liters"`
	CostPaise     int64  `json:"cost_paise"`
	Cost          string `json:"cost"`
	OdometerKm    int64  `json:"odometer_km,omitempty"`
	Station       string `json:"station,omitempty"`
	Source        string `json:"source"`
	LedgerEntryID int64  `json:"ledger_entry_id,omitempty"`
}

func fuelLogToResponse(f core.FuelLog) fuelLogResponse {
	return fuelLogResponse{
		ID:            f.ID,
		TruckID:       f.TruckID,
		DriverID:      f.DriverID,
		Date:          f.Date.Format("2006-01-02"),
		LitersMilli:   f.Quantity.Milli,
		Liters:        f.Quantity.Liters(),
		CostPaise:     f.Cost.Paise,
		Cost:          f.Cost.Rupees(),
		OdometerKm:    f.OdometerKm,
		Station:       f.Station,
		Source:        f.Source,
		LedgerEntryID: f.LedgerEntryID,
	}
}

// monthWindow returns the first and last day of the requested month.
func monthWindow(r *http.Request) (core.Date, core.Date) {
	year, month := parseYearMonth(r)
	first := core.NewDate(year, month, 1)
	last := core.Date{Time: first.AddDate(0, 1, -1)}
	return first, last
}

func (s *Server) handleFuelLogs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		from, to := monthWindow(r)
		logs, err := s.repo.ListFuelLogsBetween(r.Context(), from, to)
		if err != nil {
			slog.ErrorContext(r.Context(), "List fuel logs failed", "error", err)
			writeError(w, http.StatusInternalServerError, "list fuel logs failed")
			return
		}
		out := make([]fuelLogResponse, len(logs))
		for i, l := range logs {
			out[i] = fuelLogToResponse(l)
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req fuelLogRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		date, err := parseDateParam(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		quantity, err := core.ParseLitersToMilli(req.Liters)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid liters")
			return
		}
		cost, err := core.ParseDecimalToPaise(req.Cost)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid cost")
			return
		}

		fuelLog := core.FuelLog{
			TruckID:    req.TruckID,
			DriverID:   req.DriverID,
			Date:       date,
			Quantity:   core.Volume{Milli: quantity},
			Cost:       core.Money{Paise: cost},
			OdometerKm: req.OdometerKm,
			Station:    sanitizeInput(req.Station),
			Source:     core.FuelSourcePump,
		}
		if err := fuelLog.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		saved, err := s.repo.CreateFuelLog(r.Context(), fuelLog)
		if err != nil {
			slog.ErrorContext(r.Context(), "Create fuel log failed", "error", err)
			writeError(w, http.StatusInternalServerError, "create fuel log failed")
			return
		}
		s.invalidateAnalytics(0)
		writeJSON(w, http.StatusCreated, fuelLogToResponse(saved))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleFuelLogItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/fuel-logs/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fuel log id")
		return
	}

	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}

	err = s.repo.DeleteFuelLog(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "fuel log not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete fuel log failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "delete fuel log failed")
		return
	}
	s.invalidateAnalytics(0)
	w.WriteHeader(http.StatusNoContent)
}

type coalLogRequest struct {
	TruckID     int64  `json:"truck_id"`
	DriverID    int64  `json:"driver_id"`
	Date        string `json:"date"`
	Trips       int    `json:"trips"`
	TonnageKg   int64  `json:"tonnage_kg"`
	Site        string `json:"site"`
	Destination string `json:"destination"`
}

type coalLogResponse struct {
	ID          int64  `json:"id"`
	TruckID     int64  `json:"truck_id"`
	DriverID    int64  `json:"driver_id,omitempty"`
	Date        string `json:"date"`
	Trips       int    `json:"trips"`
	TonnageKg   int64  `json:"tonnage_kg"`
	Site        string `json:"site,omitempty"`
	Destination string `json:"destination,omitempty"`
}

func coalLogToResponse(c core.CoalLog) coalLogResponse {
	return coalLogResponse{
		ID:          c.ID,
		TruckID:     c.TruckID,
		DriverID:    c.DriverID,
		Date:        c.Date.Format("2006-01-02"),
		Trips:       c.Trips,
		TonnageKg:   c.TonnageKg,
		Site:        c.Site,
		Destination: c.Destination,
	}
}

func (s *Server) handleCoalLogs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		from, to := monthWindow(r)
		logs, err := s.repo.ListCoalLogsBetween(r.Context(), from, to)
		if err != nil {
			slog.ErrorContext(r.Context(), "List coal logs failed", "error", err)
			writeError(w, http.StatusInternalServerError, "list coal logs failed")
			return
		}
		out := make([]coalLogResponse, len(logs))
		for i, l := range logs {
			out[i] = coalLogToResponse(l)
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req coalLogRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		date, err := parseDateParam(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}

		coalLog := core.CoalLog{
			TruckID:     req.TruckID,
			DriverID:    req.DriverID,
			Date:        date,
			Trips:       req.Trips,
			TonnageKg:   req.TonnageKg,
			Site:        sanitizeInput(req.Site),
			Destination: sanitizeInput(req.Destination),
		}
		if err := coalLog.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		saved, err := s.repo.CreateCoalLog(r.Context(), coalLog)
		if err != nil {
			slog.ErrorContext(r.Context(), "Create coal log failed", "error", err)
			writeError(w, http.StatusInternalServerError, "create coal log failed")
			return
		}
		s.invalidateAnalytics(0)
		writeJSON(w, http.StatusCreated, coalLogToResponse(saved))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleCoalLogItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/coal-logs/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid coal log id")
		return
	}

	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}

	err = s.repo.DeleteCoalLog(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "coal log not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete coal log failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "delete coal log failed")
		return
	}
	s.invalidateAnalytics(0)
	w.WriteHeader(http.StatusNoContent)
}

type miningLogRequest struct {
	Date     string `json:"date"`
	Site     string `json:"site"`
	Material string `json:"material"`
	OutputKg int64  `json:"output_kg"`
}

type miningLogResponse struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	Site     string `json:"site"`
	Material string `json:"material,omitempty"`
	OutputKg int64  `json:"output_kg"`
}

func miningLogToResponse(m core.MiningLog) miningLogResponse {
	return miningLogResponse{
		ID:       m.ID,
		Date:     m.Date.Format("2006-01-02"),
		Site:     m.Site,
		Material: m.Material,
		OutputKg: m.OutputKg,
	}
}

func (s *Server) handleMiningLogs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		from, to := monthWindow(r)
		logs, err := s.repo.ListMiningLogsBetween(r.Context(), from, to)
		if err != nil {
			slog.ErrorContext(r.Context(), "List mining logs failed", "error", err)
			writeError(w, http.StatusInternalServerError, "list mining logs failed")
			return
		}
		out := make([]miningLogResponse, len(logs))
		for i, l := range logs {
			out[i] = miningLogToResponse(l)
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req miningLogRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		date, err := parseDateParam(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}

		miningLog := core.MiningLog{
			Date:     date,
			Site:     sanitizeInput(req.Site),
			Material: sanitizeInput(req.Material),
			OutputKg: req.OutputKg,
		}
		if err := miningLog.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		saved, err := s.repo.CreateMiningLog(r.Context(), miningLog)
		if err != nil {
			slog.ErrorContext(r.Context(), "Create mining log failed", "error", err)
			writeError(w, http.StatusInternalServerError, "create mining log failed")
			return
		}
		s.invalidateAnalytics(0)
		writeJSON(w, http.StatusCreated, miningLogToResponse(saved))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleMiningLogItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/mining-logs/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid mining log id")
		return
	}

	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}

	err = s.repo.DeleteMiningLog(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "mining log not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete mining log failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "delete mining log failed")
		return
	}
	s.invalidateAnalytics(0)
	w.WriteHeader(http.StatusNoContent)
}
