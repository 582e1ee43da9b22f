package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"haulbook/internal/core"
	"haulbook/internal/ledger"
	"haulbook/internal/storage"
)

type ledgerEntryRequest struct {
	PartyID int64  `json:"party_id"`
	Date    string `json:"date"`
	Kind    string `json:"kind"`
	Liters  string `json:"liters"`
	Amount  string `json:"amount"`
	Rate    string `json:"rate"`
	TruckID int64  `json:"truck_id"`
	Note    string `json:"note"`
}

type ledgerEntryResponse struct {
	ID          int64  `json:"id"`
	PartyID     int64  `json:"party_id"`
	Date        string `json:"date"`
	Kind        string `json:"kind"`
	LitersMilli int64  `json:"liters_milli"`
	Liters      string `json:"liters,omitempty"`
	AmountPaise int64  `json:"amount_paise"`
	Amount      string `json:"amount,omitempty"`
	RatePaise   int64  `json:"rate_paise,omitempty"`
	TruckID     int64  `json:"truck_id,omitempty"`
	Note        string `json:"note,omitempty"`
}

func ledgerEntryToResponse(e core.LedgerEntry) ledgerEntryResponse {
	resp := ledgerEntryResponse{
		ID:          e.ID,
		PartyID:     e.PartyID,
		Date:        e.Date.Format("2006-01-02"),
		Kind:        string(e.Kind),
		LitersMilli: e.Quantity.Milli,
		AmountPaise: e.Amount.Paise,
		RatePaise:   e.Rate,
		TruckID:     e.TruckID,
		Note:        e.Note,
	}
	if e.Quantity.Milli > 0 {
		resp.Liters = e.Quantity.Liters()
	}
	if e.Amount.Paise > 0 {
		resp.Amount = e.Amount.Rupees()
	}
	return resp
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := s.listLedgerEntries(r)
		if errors.Is(err, errInvalidListQuery) {
			writeError(w, http.StatusBadRequest, "invalid party_id")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "List ledger entries failed", "error", err)
			writeError(w, http.StatusInternalServerError, "list ledger entries failed")
			return
		}
		out := make([]ledgerEntryResponse, len(entries))
		for i, e := range entries {
			out[i] = ledgerEntryToResponse(e)
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		s.handleCreateLedgerEntry(w, r)

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

// errInvalidListQuery marks client errors in list query parameters.
var errInvalidListQuery = errors.New("invalid list query")

func (s *Server) listLedgerEntries(r *http.Request) ([]core.LedgerEntry, error) {
	if v := strings.TrimSpace(r.URL.Query().Get("party_id")); v != "" {
		partyID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || partyID <= 0 {
			return nil, fmt.Errorf("%w: party_id %q", errInvalidListQuery, v)
		}
		return s.repo.ListLedgerEntriesByParty(r.Context(), partyID)
	}

	limit := 100
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	return s.repo.ListLedgerEntries(r.Context(), limit)
}

func (s *Server) handleCreateLedgerEntry(w http.ResponseWriter, r *http.Request) {
	var req ledgerEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := parseDateParam(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	entry := core.LedgerEntry{
		PartyID: req.PartyID,
		Date:    date,
		Kind:    core.LedgerKind(strings.TrimSpace(req.Kind)),
		TruckID: req.TruckID,
		Note:    sanitizeInput(req.Note),
	}

	if v := strings.TrimSpace(req.Liters); v != "" {
		quantity, err := core.ParseLitersToMilli(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid liters")
			return
		}
		entry.Quantity = core.Volume{Milli: quantity}
	}
	if v := strings.TrimSpace(req.Amount); v != "" {
		amount, err := core.ParseDecimalToPaise(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		entry.Amount = core.Money{Paise: amount}
	}
	if v := strings.TrimSpace(req.Rate); v != "" {
		rate, err := core.ParseDecimalToPaise(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid rate")
			return
		}
		entry.Rate = rate
	}

	if err := entry.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Party must exist before we open the transaction
	if _, err := s.repo.GetParty(r.Context(), entry.PartyID); errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "party not found")
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "verify party failed")
		return
	}

	saved, err := s.ledgerSvc.CreateEntry(r.Context(), entry)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create ledger entry failed", "error", err)
		writeError(w, http.StatusInternalServerError, "create ledger entry failed")
		return
	}

	atomic.AddInt64(&s.metrics.entriesCreated, 1)
	s.invalidateAnalytics(saved.PartyID)
	writeJSON(w, http.StatusCreated, ledgerEntryToResponse(saved))
}

func (s *Server) handleLedgerItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/ledger/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ledger entry id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		entry, err := s.repo.GetLedgerEntry(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "ledger entry not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Get ledger entry failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "get ledger entry failed")
			return
		}
		writeJSON(w, http.StatusOK, ledgerEntryToResponse(entry))

	case http.MethodDelete:
		entry, err := s.repo.GetLedgerEntry(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "ledger entry not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "get ledger entry failed")
			return
		}

		if err := s.ledgerSvc.DeleteEntry(r.Context(), id); err != nil {
			slog.ErrorContext(r.Context(), "Delete ledger entry failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "delete ledger entry failed")
			return
		}
		s.invalidateAnalytics(entry.PartyID)
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}

type statementLineResponse struct {
	EntryID      int64  `json:"entry_id"`
	Date         string `json:"date"`
	Kind         string `json:"kind"`
	Side         string `json:"side"`
	LitersMilli  int64  `json:"liters_milli"`
	Liters       string `json:"liters"`
	CashPaise    int64  `json:"cash_paise,omitempty"`
	Cash         string `json:"cash,omitempty"`
	BalanceMilli int64  `json:"balance_milli"`
	Balance      string `json:"balance"`
	Note         string `json:"note,omitempty"`
}

type statementResponse struct {
	PartyID     int64                   `json:"party_id"`
	PartyName   string                  `json:"party_name"`
	Lines       []statementLineResponse `json:"lines"`
	DebitMilli  int64                   `json:"debit_milli"`
	Debit       string                  `json:"debit"`
	CreditMilli int64                   `json:"credit_milli"`
	Credit      string                  `json:"credit"`
	NetMilli    int64                   `json:"net_milli"`
	Net         string                  `json:"net"`
	CashPaise   int64                   `json:"cash_paise"`
	Cash        string                  `json:"cash"`
	Skipped     int                     `json:"skipped,omitempty"`
}

func statementToResponse(party core.Party, st ledger.Statement) statementResponse {
	resp := statementResponse{
		PartyID:     st.PartyID,
		PartyName:   party.Name,
		Lines:       make([]statementLineResponse, len(st.Lines)),
		DebitMilli:  st.DebitMilli,
		Debit:       core.Volume{Milli: st.DebitMilli}.Liters(),
		CreditMilli: st.CreditMilli,
		Credit:      core.Volume{Milli: st.CreditMilli}.Liters(),
		NetMilli:    st.NetMilli,
		Net:         core.Volume{Milli: st.NetMilli}.Liters(),
		CashPaise:   st.CashPaise,
		Cash:        core.Money{Paise: st.CashPaise}.Rupees(),
		Skipped:     st.Skipped,
	}
	for i, line := range st.Lines {
		lr := statementLineResponse{
			EntryID:      line.Entry.ID,
			Date:         line.Entry.Date.Format("2006-01-02"),
			Kind:         string(line.Entry.Kind),
			Side:         line.Side,
			LitersMilli:  line.LitersMilli,
			Liters:       core.Volume{Milli: line.LitersMilli}.Liters(),
			BalanceMilli: line.BalanceMilli,
			Balance:      core.Volume{Milli: line.BalanceMilli}.Liters(),
			Note:         line.Entry.Note,
		}
		if line.CashPaise != 0 {
			lr.CashPaise = line.CashPaise
			lr.Cash = core.Money{Paise: line.CashPaise}.Rupees()
		}
		resp.Lines[i] = lr
	}
	return resp
}

// partyStatement builds (or fetches from cache) the reconciled statement
// for one party.
func (s *Server) partyStatement(r *http.Request, partyID int64) (core.Party, ledger.Statement, error) {
	party, err := s.repo.GetParty(r.Context(), partyID)
	if err != nil {
		return core.Party{}, ledger.Statement{}, err
	}

	key := statementCacheKey(partyID)
	if st, ok := s.statementCache.Get(key); ok {
		return party, st, nil
	}

	entries, err := s.repo.ListLedgerEntriesByParty(r.Context(), partyID)
	if err != nil {
		return core.Party{}, ledger.Statement{}, err
	}

	st := ledger.Reconcile(partyID, entries, s.defaultRatePaise)
	s.statementCache.Set(key, st)
	return party, st, nil
}

func parsePartyID(r *http.Request) (int64, error) {
	v := strings.TrimSpace(r.URL.Query().Get("party_id"))
	partyID, err := strconv.ParseInt(v, 10, 64)
	if err != nil || partyID <= 0 {
		return 0, fmt.Errorf("invalid party_id %q", v)
	}
	return partyID, nil
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, statementToResponse(party, st))
}
