package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locatio-dev/locatio/internal/catalog"
	"github.com/locatio-dev/locatio/internal/model"
	"github.com/locatio-dev/locatio/internal/report"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

type memBooks struct {
	entries []model.JournalEntry
	assets  []model.Asset
	err     error
}

func (b memBooks) Entries() ([]model.JournalEntry, error) { return b.entries, b.err }
func (b memBooks) Assets() ([]model.Asset, error)         { return b.assets, b.err }

func sampleBooks() memBooks {
	return memBooks{
		entries: []model.JournalEntry{
			{ID: "2025-01-001", UserID: "u1", Type: model.EntryTypeSale, Date: date(2025, 1, 5), Designation: "Loyer janvier", AccountCode: "706", Amount: dec("850")},
			{ID: "2025-01-002", UserID: "u1", Type: model.EntryTypeSale, Date: date(2025, 1, 6), Designation: "Dépôt", AccountCode: "165", Amount: dec("1700"), IsDeposit: true},
			{ID: "2025-01-003", UserID: "u1", Type: model.EntryTypePurchase, Date: date(2025, 1, 20), Designation: "Assurance PNO", AccountCode: "616", Amount: dec("120")},
			{ID: "2025-01-004", UserID: "u2", Type: model.EntryTypeSale, Date: date(2025, 1, 21), Designation: "Loyer autre", AccountCode: "706", Amount: dec("999")},
			{ID: "2024-12-001", UserID: "u1", Type: model.EntryTypeSale, Date: date(2024, 12, 5), Designation: "Loyer décembre", AccountCode: "706", Amount: dec("800")},
		},
		assets: []model.Asset{
			{ID: "a1", UserID: "u1", Label: "Cuisine", AmountHT: dec("10000"), DurationYears: 5, AcquisitionDate: date(2024, 7, 1), AccountCode: "2184"},
			{ID: "a2", UserID: "u2", Label: "Autre", AmountHT: dec("5000"), DurationYears: 5, AcquisitionDate: date(2024, 7, 1), AccountCode: "2184"},
		},
	}
}

func newTestServer(t *testing.T, books Books, maxRows int) *Server {
	t.Helper()
	c := catalog.MustDefault()
	engine, err := report.New(c, report.Options{MaxRows: maxRows})
	require.NoError(t, err)
	return New(books, engine, c, "u1", zerolog.Nop())
}

func get(t *testing.T, s *Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(t, newTestServer(t, sampleBooks(), 0), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListEntries(t *testing.T) {
	s := newTestServer(t, sampleBooks(), 0)

	w := get(t, s, "/api/v1/entries?year=2025")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got []entryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 3, "other users and other years are hidden")
	assert.Equal(t, "2025-01-001", got[0].ID)
	assert.Equal(t, "850.00", got[0].Amount)
	assert.True(t, got[1].IsDeposit)

	w = get(t, s, "/api/v1/entries?year=2025&q=assurance")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "616", got[0].AccountCode)
}

func TestListAssets(t *testing.T) {
	w := get(t, newTestServer(t, sampleBooks(), 0), "/api/v1/assets")
	require.Equal(t, http.StatusOK, w.Code)

	var got []assetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "2024-07-01", got[0].AcquisitionDate)
	assert.Equal(t, "10000.00", got[0].AmountHT)
}

func TestBalanceAndIncome(t *testing.T) {
	s := newTestServer(t, sampleBooks(), 0)

	w := get(t, s, "/api/v1/balance?year=2025")
	require.Equal(t, http.StatusOK, w.Code)
	var balances []balanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &balances))
	require.Len(t, balances, 3)
	assert.Equal(t, balanceResponse{AccountCode: "706", Debit: "0.00", Credit: "850.00", Balance: "-850.00"}, balances[2])

	w = get(t, s, "/api/v1/income?year=2025")
	require.Equal(t, http.StatusOK, w.Code)
	var inc incomeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inc))
	assert.Equal(t, "850.00", inc.Revenus)
	assert.Equal(t, "120.00", inc.Depenses)
	assert.Equal(t, "730.00", inc.Resultat)
	assert.Equal(t, 3, inc.Count)
}

func TestSearchCatalog(t *testing.T) {
	s := newTestServer(t, sampleBooks(), 0)

	w := get(t, s, "/api/v1/catalog?type=sale&q=loyer")
	require.Equal(t, http.StatusOK, w.Code)
	var got []catalogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotEmpty(t, got)
	assert.Equal(t, "706", got[0].Code)

	w = get(t, s, "/api/v1/catalog?limit=2")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/v1/catalog?type=gift").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/v1/catalog?limit=x").Code)
}

func TestReport(t *testing.T) {
	s := newTestServer(t, sampleBooks(), 0)

	w := get(t, s, "/api/v1/reports/immobilisations?year=2025")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Cuisine;2184;2024-07-01;5;10000.00;1005.46;2000.00;3005.46;6994.54")
	assert.NotContains(t, w.Body.String(), "Autre")
	assert.Empty(t, w.Header().Get("X-Report-Truncated"))

	w = get(t, s, "/api/v1/reports/bilan?year=2025&format=pdf")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="bilan-2025.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	w = get(t, s, "/api/v1/reports/resultat?year=2025&format=xlsx")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "compte-de-resultat-2025.xlsx")
}

func TestReport_Errors(t *testing.T) {
	s := newTestServer(t, sampleBooks(), 0)

	tests := []struct {
		url    string
		status int
	}{
		{"/api/v1/reports/liasse?year=2025", http.StatusNotFound},
		{"/api/v1/reports/bilan?year=2025&format=docx", http.StatusBadRequest},
		{"/api/v1/reports/bilan?year=abc", http.StatusBadRequest},
		{"/api/v1/reports/bilan?year=2025&from=31/01/2025", http.StatusBadRequest},
		{"/api/v1/reports/bilan?year=2025&from=2025-12-31&to=2025-01-01", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			w := get(t, s, tt.url)
			assert.Equal(t, tt.status, w.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestReport_Truncated(t *testing.T) {
	s := newTestServer(t, sampleBooks(), 1)

	w := get(t, s, "/api/v1/reports/resultat?year=2025")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Report-Truncated"))
}

func TestBooksError(t *testing.T) {
	s := newTestServer(t, memBooks{err: errors.New("disk on fire")}, 0)

	w := get(t, s, "/api/v1/entries?year=2025")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "disk on fire")
}

func TestServe_StopsOnCancel(t *testing.T) {
	s := newTestServer(t, sampleBooks(), 0)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
