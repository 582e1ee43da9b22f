package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"haulbook/internal/services"
	"haulbook/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	svc := services.NewLedgerService(repo, nil)
	s := NewServer(":0", repo, svc, 9_000)
	t.Cleanup(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
	})
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:12345"
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func createTruck(t *testing.T, s *Server) truckResponse {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/trucks", map[string]any{
		"registration":  "JH01AB1234",
		"model":         "Tata 2518",
		"capacity_tons": 25,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create truck: status %d body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[truckResponse](t, rec)
}

func createParty(t *testing.T, s *Server, name string) partyResponse {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/parties", map[string]any{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create party: status %d body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[partyResponse](t, rec)
}

func TestTruckEndpoints(t *testing.T) {
	s := newTestServer(t)

	truck := createTruck(t, s)
	if truck.ID == 0 || !truck.Active {
		t.Errorf("unexpected truck: %+v", truck)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/trucks", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list trucks: status %d", rec.Code)
	}
	trucks := decodeBody[[]truckResponse](t, rec)
	if len(trucks) != 1 {
		t.Fatalf("expected 1 truck, got %d", len(trucks))
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/trucks/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing truck: status %d, want 404", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPut, "/api/trucks", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT trucks: status %d, want 405", rec.Code)
	}
}

func TestCreateTruckValidation(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/trucks", map[string]any{"model": "no reg"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("truck without registration: status %d, want 400", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/trucks", map[string]any{"registration": "X", "bogus": true})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field: status %d, want 400", rec.Code)
	}
}

func TestLedgerFlow(t *testing.T) {
	s := newTestServer(t)
	party := createParty(t, s, "Sharma Fuels")
	truck := createTruck(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/ledger", map[string]any{
		"party_id": party.ID,
		"date":     "2026-08-01",
		"kind":     "borrow",
		"liters":   "100",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create borrow: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, "/api/ledger", map[string]any{
		"party_id": party.ID,
		"date":     "2026-08-10",
		"kind":     "settle_liters",
		"liters":   "40",
		"truck_id": truck.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create settle: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, "/api/ledger", map[string]any{
		"party_id": party.ID,
		"date":     "2026-08-15",
		"kind":     "settle_cash",
		"amount":   "2700",
		"rate":     "90",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create cash settle: status %d body %s", rec.Code, rec.Body.String())
	}

	// Statement: 100 borrowed, 40 settled in liters, 2700/90 = 30 settled in cash
	rec = doJSON(t, s, http.MethodGet, "/api/ledger/statement?party_id="+itoa(party.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("statement: status %d body %s", rec.Code, rec.Body.String())
	}
	st := decodeBody[statementResponse](t, rec)
	if st.NetMilli != 30_000 {
		t.Errorf("net = %d milli, want 30000", st.NetMilli)
	}
	if len(st.Lines) != 3 {
		t.Errorf("expected 3 statement lines, got %d", len(st.Lines))
	}
	if st.CashPaise != 270_000 {
		t.Errorf("cash = %d paise, want 270000", st.CashPaise)
	}

	// The liter settlement bridged into fuel logs
	rec = doJSON(t, s, http.MethodGet, "/api/fuel-logs?year=2026&month=8", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list fuel logs: status %d", rec.Code)
	}
	logs := decodeBody[[]fuelLogResponse](t, rec)
	if len(logs) != 1 {
		t.Fatalf("expected 1 bridged fuel log, got %d", len(logs))
	}
	if logs[0].Source != "party_bridge" || logs[0].LitersMilli != 40_000 {
		t.Errorf("unexpected bridged log: %+v", logs[0])
	}
}

func TestLedgerEntryValidation(t *testing.T) {
	s := newTestServer(t)
	party := createParty(t, s, "Verma Transport")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"unknown kind", map[string]any{"party_id": party.ID, "date": "2026-08-01", "kind": "loan", "liters": "10"}},
		{"borrow without liters", map[string]any{"party_id": party.ID, "date": "2026-08-01", "kind": "borrow"}},
		{"cash settle without amount", map[string]any{"party_id": party.ID, "date": "2026-08-01", "kind": "settle_cash"}},
		{"bad date", map[string]any{"party_id": party.ID, "date": "01-08-2026", "kind": "borrow", "liters": "10"}},
		{"missing party", map[string]any{"party_id": 999, "date": "2026-08-01", "kind": "borrow", "liters": "10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/ledger", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestDeleteLedgerEntryInvalidatesStatement(t *testing.T) {
	s := newTestServer(t)
	party := createParty(t, s, "Gupta Diesels")

	rec := doJSON(t, s, http.MethodPost, "/api/ledger", map[string]any{
		"party_id": party.ID,
		"date":     "2026-08-01",
		"kind":     "borrow",
		"liters":   "50",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d", rec.Code)
	}
	entry := decodeBody[ledgerEntryResponse](t, rec)

	rec = doJSON(t, s, http.MethodGet, "/api/ledger/statement?party_id="+itoa(party.ID), nil)
	st := decodeBody[statementResponse](t, rec)
	if st.NetMilli != 50_000 {
		t.Fatalf("net before delete = %d", st.NetMilli)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/ledger/"+itoa(entry.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/ledger/statement?party_id="+itoa(party.ID), nil)
	st = decodeBody[statementResponse](t, rec)
	if st.NetMilli != 0 || len(st.Lines) != 0 {
		t.Errorf("statement after delete: net=%d lines=%d, want empty", st.NetMilli, len(st.Lines))
	}
}

func TestDashboardMTD(t *testing.T) {
	s := newTestServer(t)
	truck := createTruck(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/fuel-logs", map[string]any{
		"truck_id": truck.ID,
		"date":     today(),
		"liters":   "60",
		"cost":     "5400",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create fuel log: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/dashboard/mtd", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mtd: status %d body %s", rec.Code, rec.Body.String())
	}
	mtd := decodeBody[mtdResponse](t, rec)
	if mtd.DieselLiters.Current != 60_000 {
		t.Errorf("diesel current = %d milli, want 60000", mtd.DieselLiters.Current)
	}
	if !mtd.DieselLiters.NoBaseline {
		t.Errorf("expected no baseline for empty previous month")
	}
}

func TestReportEndpoints(t *testing.T) {
	s := newTestServer(t)
	party := createParty(t, s, "Sharma Fuels")

	rec := doJSON(t, s, http.MethodPost, "/api/ledger", map[string]any{
		"party_id": party.ID,
		"date":     "2026-08-01",
		"kind":     "borrow",
		"liters":   "75.5",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create entry: status %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/reports/ledger.pdf?party_id="+itoa(party.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf: status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("pdf content type %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("pdf body missing header")
	}

	rec = doJSON(t, s, http.MethodGet, "/api/reports/month.xlsx?year=2026&month=8", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx: status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheet") {
		t.Errorf("xlsx content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty xlsx body")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz: status %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("readyz: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Errorf("metrics body missing counters: %s", rec.Body.String())
	}
}

func TestPartyEndpoints(t *testing.T) {
	s := newTestServer(t)
	party := createParty(t, s, "Yadav Transport")

	rec := doJSON(t, s, http.MethodGet, "/api/parties/"+itoa(party.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get party: status %d body %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[partyResponse](t, rec)
	if got.Name != "Yadav Transport" {
		t.Errorf("unexpected party: %+v", got)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/parties/"+itoa(party.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete party: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/parties/"+itoa(party.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted party: status %d, want 404", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/parties/"+itoa(party.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("double delete: status %d, want 404", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/parties", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list parties: status %d", rec.Code)
	}
	if parties := decodeBody[[]partyResponse](t, rec); len(parties) != 0 {
		t.Errorf("expected no parties after delete, got %+v", parties)
	}
}

func TestCreateLedgerEntryParsedAmounts(t *testing.T) {
	s := newTestServer(t)
	party := createParty(t, s, "Sharma Fuels")

	rec := doJSON(t, s, http.MethodPost, "/api/ledger", map[string]any{
		"party_id": party.ID,
		"date":     "2026-08-10",
		"kind":     "settle_cash",
		"amount":   "2700.50",
		"rate":     "90.25",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create settle_cash: status %d body %s", rec.Code, rec.Body.String())
	}
	entry := decodeBody[ledgerEntryResponse](t, rec)
	if entry.AmountPaise != 270_050 {
		t.Errorf("amount_paise = %d, want 270050", entry.AmountPaise)
	}
	if entry.RatePaise != 9_025 {
		t.Errorf("rate_paise = %d, want 9025", entry.RatePaise)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/ledger", map[string]any{
		"party_id": party.ID,
		"date":     "2026-08-11",
		"kind":     "borrow",
		"liters":   "85.250",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create borrow: status %d body %s", rec.Code, rec.Body.String())
	}
	entry = decodeBody[ledgerEntryResponse](t, rec)
	if entry.LitersMilli != 85_250 {
		t.Errorf("liters_milli = %d, want 85250", entry.LitersMilli)
	}
}

func TestListLedgerInvalidPartyID(t *testing.T) {
	s := newTestServer(t)

	for _, q := range []string{"abc", "0", "-3"} {
		rec := doJSON(t, s, http.MethodGet, "/api/ledger?party_id="+q, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("party_id=%q: status %d, want 400", q, rec.Code)
		}
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func today() string {
	return time.Now().Format("2006-01-02")
}
