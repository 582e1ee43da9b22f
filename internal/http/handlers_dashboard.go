package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"haulbook/internal/analytics"
	"haulbook/internal/core"
	"haulbook/internal/report"
	"haulbook/internal/storage"
)

type metricResponse struct {
	Current    int64   `json:"current"`
	Previous   int64   `json:"previous"`
	Delta      int64   `json:"delta"`
	PctChange  float64 `json:"pct_change"`
	NoBaseline bool    `json:"no_baseline,omitempty"`
}

type mtdResponse struct {
	CurrentFrom  string         `json:"current_from"`
	CurrentTo    string         `json:"current_to"`
	PreviousFrom string         `json:"previous_from"`
	PreviousTo   string         `json:"previous_to"`
	DieselLiters metricResponse `json:"diesel_liters"`
	DieselCost   metricResponse `json:"diesel_cost"`
	CoalTrips    metricResponse `json:"coal_trips"`
	CoalKg       metricResponse `json:"coal_kg"`
	MiningKg     metricResponse `json:"mining_kg"`
}

func metricToResponse(m analytics.Metric) metricResponse {
	return metricResponse{
		Current:    m.Current,
		Previous:   m.Previous,
		Delta:      m.Delta,
		PctChange:  m.PctChange,
		NoBaseline: m.NoBaseline,
	}
}

// mtdReport builds (or fetches from cache) the month-to-date comparison
// as of now.
func (s *Server) mtdReport(r *http.Request, now time.Time) (analytics.Report, error) {
	key := mtdCacheKey(now)
	if rep, ok := s.mtdCache.Get(key); ok {
		return rep, nil
	}

	current, previous := analytics.Windows(now)
	from := previous.From
	to := current.To

	fuel, err := s.repo.ListFuelLogsBetween(r.Context(), from, to)
	if err != nil {
		return analytics.Report{}, fmt.Errorf("list fuel logs: %w", err)
	}
	coal, err := s.repo.ListCoalLogsBetween(r.Context(), from, to)
	if err != nil {
		return analytics.Report{}, fmt.Errorf("list coal logs: %w", err)
	}
	mining, err := s.repo.ListMiningLogsBetween(r.Context(), from, to)
	if err != nil {
		return analytics.Report{}, fmt.Errorf("list mining logs: %w", err)
	}

	rep := analytics.Compare(now, fuel, coal, mining)
	s.mtdCache.Set(key, rep)
	return rep, nil
}

func (s *Server) handleDashboardMTD(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	rep, err := s.mtdReport(r, time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Build MTD report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "build report failed")
		return
	}

	writeJSON(w, http.StatusOK, mtdResponse{
		CurrentFrom:  rep.Current.From.Format("2006-01-02"),
		CurrentTo:    rep.Current.To.Format("2006-01-02"),
		PreviousFrom: rep.Previous.From.Format("2006-01-02"),
		PreviousTo:   rep.Previous.To.Format("2006-01-02"),
		DieselLiters: metricToResponse(rep.DieselMilli),
		DieselCost:   metricToResponse(rep.DieselPaise),
		CoalTrips:    metricToResponse(rep.CoalTrips),
		CoalKg:       metricToResponse(rep.CoalKg),
		MiningKg:     metricToResponse(rep.MiningKg),
	})
}

func (s *Server) handleStatementPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	partyID, err := parsePartyID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing or invalid party_id")
		return
	}

	party, st, err := s.partyStatement(r, partyID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "party not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Build statement failed", "party_id", partyID, "error", err)
		writeError(w, http.StatusInternalServerError, "build statement failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"statement-party-%d.pdf\"", partyID))

	if err := report.WriteStatementPDF(w, party, st); err != nil {
		slog.ErrorContext(r.Context(), "Render statement PDF failed", "party_id", partyID, "error", err)
	}
}

func (s *Server) handleMonthXLSX(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	year, month := parseYearMonth(r)
	from := core.NewDate(year, month, 1)
	to := core.Date{Time: from.AddDate(0, 1, -1)}

	fuel, err := s.repo.ListFuelLogsBetween(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list fuel logs failed")
		return
	}
	coal, err := s.repo.ListCoalLogsBetween(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list coal logs failed")
		return
	}
	mining, err := s.repo.ListMiningLogsBetween(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list mining logs failed")
		return
	}

	trucks, err := s.repo.ListTrucks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list trucks failed")
		return
	}
	drivers, err := s.repo.ListDrivers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list drivers failed")
		return
	}

	data := report.MonthData{
		Year:    year,
		Month:   month,
		Fuel:    fuel,
		Coal:    coal,
		Mining:  mining,
		Trucks:  make(map[int64]string, len(trucks)),
		Drivers: make(map[int64]string, len(drivers)),
	}
	for _, t := range trucks {
		data.Trucks[t.ID] = t.Registration
	}
	for _, d := range drivers {
		data.Drivers[d.ID] = d.Name
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"haulbook-%04d-%02d.xlsx\"", year, month))

	if err := report.WriteMonthXLSX(w, data); err != nil {
		slog.ErrorContext(r.Context(), "Render month workbook failed",
			"year", year, "month", month, "error", err)
	}
}
